// seehuhn.de/go/pdfdoc - write and read PDF documents
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/icc"

	"seehuhn.de/go/pdfdoc"
	"seehuhn.de/go/pdfdoc/font/standard"
	"seehuhn.de/go/pdfdoc/metadata"
	"seehuhn.de/go/pdfdoc/numtree"
	"seehuhn.de/go/pdfdoc/oc"
	"seehuhn.de/go/pdfdoc/structure"
)

var testDate = time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

func readBack(t *testing.T, data []byte) *pdfdoc.File {
	t.Helper()
	file, err := pdfdoc.Read(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(file.Warnings) > 0 {
		t.Errorf("unexpected warnings: %v", file.Warnings)
	}
	return file
}

// pageContent returns the decoded content of all content streams of a page.
func pageContent(file *pdfdoc.File, page *pdfdoc.IndirectObject) string {
	var parts []string
	for _, n := range page.GetObjectNumbers("Contents") {
		parts = append(parts, string(file.Objects[n].Data))
	}
	return strings.Join(parts, "")
}

func isPrecondition(err error) bool {
	var pe *pdfdoc.PreconditionError
	return errors.As(err, &pe)
}

func TestHello(t *testing.T) {
	buf := &bytes.Buffer{}
	doc, err := New(buf, &Options{CreationDate: testDate})
	if err != nil {
		t.Fatal(err)
	}
	font, err := doc.AddFont(standard.Helvetica)
	if err != nil {
		t.Fatal(err)
	}
	page, err := doc.NewPage(A4)
	if err != nil {
		t.Fatal(err)
	}
	err = page.DrawString(font, 12, vec.Vec2{X: 100, Y: 100}, "Hello")
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Close()
	if err != nil {
		t.Fatal(err)
	}

	file := readBack(t, buf.Bytes())
	pages, err := file.GetPageObjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if tp := pages[0].GetValue("Type"); tp != pdfdoc.Name("Page") {
		t.Errorf("page type is %s", pdfdoc.Format(tp))
	}
	content := pageContent(file, pages[0])
	if !strings.Contains(content, "(Hello) Tj") {
		t.Errorf("content %q does not show Hello", content)
	}
	if !strings.Contains(content, "100 100 Td") {
		t.Errorf("content %q has wrong position", content)
	}

	// the font is listed in the shared resources
	res := file.Objects.Resolve(pages[0].GetValue("Resources")).(pdfdoc.Dict)
	fonts := file.Objects.Resolve(res["Font"]).(pdfdoc.Dict)
	fontRef, ok := fonts[font.Name].(pdfdoc.Reference)
	if !ok {
		t.Fatalf("font %s missing from resources", font.Name)
	}
	if base := file.Objects[fontRef.Number].GetValue("BaseFont"); base != pdfdoc.Name("Helvetica") {
		t.Errorf("wrong BaseFont %s", pdfdoc.Format(base))
	}

	info, err := pdfdoc.ExtractInfo(file.Objects, file.Trailer["Info"])
	if err != nil {
		t.Fatal(err)
	}
	if !info.CreationDate.Equal(testDate) || info.Producer != defaultProducer {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestRoundTrip(t *testing.T) {
	sizes := []rect.Rect{A4, Letter, Landscape(A5), {LLx: 10, LLy: 20, URx: 110.5, URy: 220.25}}

	buf := &bytes.Buffer{}
	doc, err := New(buf, &Options{CreationDate: testDate})
	if err != nil {
		t.Fatal(err)
	}
	font, err := doc.AddFont(standard.TimesRoman)
	if err != nil {
		t.Fatal(err)
	}
	var refs []pdfdoc.Reference
	for i, size := range sizes {
		page, err := doc.NewPage(size)
		if err != nil {
			t.Fatal(err)
		}
		err = page.DrawString(font, 10, vec.Vec2{X: 50, Y: 50}, strings.Repeat("x", i+1))
		if err != nil {
			t.Fatal(err)
		}
		refs = append(refs, page.Ref())
	}
	err = doc.Close()
	if err != nil {
		t.Fatal(err)
	}

	file := readBack(t, buf.Bytes())
	pages, err := file.GetPageObjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != len(sizes) {
		t.Fatalf("got %d pages, want %d", len(pages), len(sizes))
	}
	for i, page := range pages {
		if page.Number != refs[i].Number {
			t.Errorf("page %d: object %d, want %d", i, page.Number, refs[i].Number)
		}
		box, err := page.MediaBox(file.Objects)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(sizes[i], box, cmpopts.EquateApprox(0, 0.001)); d != "" {
			t.Errorf("page %d: media box (-want +got):\n%s", i, d)
		}
		want := "(" + strings.Repeat("x", i+1) + ") Tj"
		if content := pageContent(file, page); !strings.Contains(content, want) {
			t.Errorf("page %d: content %q", i, content)
		}
	}
}

func TestXRefEncodings(t *testing.T) {
	build := func(opt *Options) *pdfdoc.File {
		buf := &bytes.Buffer{}
		doc, err := New(buf, opt)
		if err != nil {
			t.Fatal(err)
		}
		doc.SetTitle("Encodings")
		font, err := doc.AddFont(standard.Courier)
		if err != nil {
			t.Fatal(err)
		}
		for i := range 3 {
			page, err := doc.NewPage(Letter)
			if err != nil {
				t.Fatal(err)
			}
			err = page.DrawString(font, 9, vec.Vec2{X: 72, Y: 700 - 10*float64(i)}, "line")
			if err != nil {
				t.Fatal(err)
			}
		}
		err = doc.Close()
		if err != nil {
			t.Fatal(err)
		}
		return readBack(t, buf.Bytes())
	}

	classic := build(&Options{CreationDate: testDate})
	stream := build(&Options{CreationDate: testDate, XRefStream: true})
	packed := build(&Options{CreationDate: testDate, ObjectStreams: true})

	if d := cmp.Diff(classic.Objects, stream.Objects); d != "" {
		t.Errorf("xref stream (-classic +stream):\n%s", d)
	}
	if d := cmp.Diff(classic.Objects, packed.Objects); d != "" {
		t.Errorf("object streams (-classic +packed):\n%s", d)
	}
}

func TestContentReleased(t *testing.T) {
	doc, err := New(&bytes.Buffer{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	first, err := doc.NewPage(A4)
	if err != nil {
		t.Fatal(err)
	}
	_, err = first.Write([]byte("0 0 m 10 10 l S\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(first.contents) != 0 {
		t.Fatal("content written too early")
	}

	_, err = doc.NewPage(A4)
	if err != nil {
		t.Fatal(err)
	}
	if first.content != nil {
		t.Error("content buffer of the first page was not released")
	}
	if len(first.contents) != 1 {
		t.Errorf("got %d content streams, want 1", len(first.contents))
	}
	_, err = first.Write([]byte("S\n"))
	if !isPrecondition(err) {
		t.Errorf("writing to a released page: got %v", err)
	}
}

func TestPreconditions(t *testing.T) {
	other, err := New(&bytes.Buffer{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	foreign, err := other.AddFont(standard.Helvetica)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := New(&bytes.Buffer{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Flush()
	if !isPrecondition(err) {
		t.Errorf("Flush without pages: got %v", err)
	}
	page, err := doc.NewPage(A4)
	if err != nil {
		t.Fatal(err)
	}
	err = page.DrawString(nil, 12, vec.Vec2{}, "x")
	if !isPrecondition(err) {
		t.Errorf("DrawString without font: got %v", err)
	}
	err = page.DrawString(foreign, 12, vec.Vec2{}, "x")
	if !isPrecondition(err) {
		t.Errorf("DrawString with foreign font: got %v", err)
	}
	err = page.EndTag()
	if !isPrecondition(err) {
		t.Errorf("EndTag without BeginTag: got %v", err)
	}
	err = doc.SetPageLayout("Diagonal")
	if !isPrecondition(err) {
		t.Errorf("invalid page layout: got %v", err)
	}
	err = doc.SetPageMode("UseOC")
	if err != nil {
		t.Errorf("valid page mode: %v", err)
	}
	_, err = doc.AddFont("Comic-Sans")
	if !isPrecondition(err) {
		t.Errorf("non-standard font: got %v", err)
	}
	_, err = doc.NewPage(rect.Rect{})
	if !isPrecondition(err) {
		t.Errorf("empty media box: got %v", err)
	}

	err = page.BeginTag(structure.Tag{Type: structure.Paragraph})
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Flush()
	if !isPrecondition(err) {
		t.Errorf("Flush with open tag: got %v", err)
	}
	err = page.EndTag()
	if err != nil {
		t.Fatal(err)
	}

	err = doc.Flush()
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Flush()
	if !isPrecondition(err) {
		t.Errorf("second Flush: got %v", err)
	}
	_, err = doc.NewPage(A4)
	if !isPrecondition(err) {
		t.Errorf("NewPage after Flush: got %v", err)
	}
}

func TestPDFA(t *testing.T) {
	_, err := New(&bytes.Buffer{}, &Options{Compliance: PDFA1B, XRefStream: true})
	if !isPrecondition(err) {
		t.Errorf("PDF/A-1b with xref stream: got %v", err)
	}

	buf := &bytes.Buffer{}
	doc, err := New(buf, &Options{Compliance: PDFA1B, CreationDate: testDate})
	if err != nil {
		t.Fatal(err)
	}
	doc.SetTitle("Archive")
	_, err = doc.AddOptionalContentGroup(&oc.Group{Name: "layer"})
	if !isPrecondition(err) {
		t.Errorf("optional content in PDF/A-1b: got %v", err)
	}
	_, err = doc.NewPage(A4)
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Close()
	if err != nil {
		t.Fatal(err)
	}

	file := readBack(t, buf.Bytes())
	catalog := file.Catalog()
	intents, ok := catalog.GetValue("OutputIntents").(pdfdoc.Array)
	if !ok || len(intents) != 1 {
		t.Fatalf("wrong /OutputIntents %s", pdfdoc.Format(catalog.GetValue("OutputIntents")))
	}
	intent := file.Objects.Resolve(intents[0]).(pdfdoc.Dict)
	if intent["S"] != pdfdoc.Name("GTS_PDFA1") {
		t.Errorf("wrong output intent subtype %s", pdfdoc.Format(intent["S"]))
	}
	profile := file.Objects[intent["DestOutputProfile"].(pdfdoc.Reference).Number]
	if profile.GetValue("N") != pdfdoc.Integer(3) {
		t.Errorf("ICC profile has /N %s", pdfdoc.Format(profile.GetValue("N")))
	}
	if !bytes.Equal(profile.Data, srgbProfile) {
		t.Error("embedded ICC profile differs from the sRGB profile")
	}

	meta, err := metadata.Extract(file.Objects, catalog.GetValue("Metadata"))
	if err != nil {
		t.Fatal(err)
	}
	part, conformance := meta.PDFA()
	if part != 1 || conformance != "B" {
		t.Errorf("got PDF/A part %d conformance %q", part, conformance)
	}
	if catalog.GetValue("StructTreeRoot") != nil {
		t.Error("PDF/A-1b document has a structure tree")
	}
}

func TestSRGBProfile(t *testing.T) {
	p, err := icc.Decode(srgbProfile)
	if err != nil {
		t.Fatal(err)
	}
	if p.ColorSpace != icc.RGBSpace {
		t.Errorf("profile color space is %v", p.ColorSpace)
	}
	if n := p.ColorSpace.NumComponents(); n != 3 {
		t.Errorf("profile has %d components", n)
	}
	if srgbProfile[8] != 2 {
		t.Errorf("profile version %d, PDF/A-1 needs version 2", srgbProfile[8])
	}
}

func TestPDFUA(t *testing.T) {
	buf := &bytes.Buffer{}
	doc, err := New(buf, &Options{Compliance: PDFUA, CreationDate: testDate})
	if err != nil {
		t.Fatal(err)
	}
	doc.SetTitle("Tagged")
	font, err := doc.AddFont(standard.Helvetica)
	if err != nil {
		t.Fatal(err)
	}

	// page 0: two paragraphs and a link, page 1: a link and a paragraph
	p0, err := doc.NewPage(A4)
	if err != nil {
		t.Fatal(err)
	}
	for _, text := range []string{"one", "two"} {
		err = p0.BeginTag(structure.Tag{Type: structure.Paragraph})
		if err != nil {
			t.Fatal(err)
		}
		err = p0.DrawString(font, 12, vec.Vec2{X: 72, Y: 700}, text)
		if err != nil {
			t.Fatal(err)
		}
		err = p0.EndTag()
		if err != nil {
			t.Fatal(err)
		}
	}
	err = p0.AddLink(rect.Rect{LLx: 72, LLy: 600, URx: 200, URy: 620}, "https://example.com/", "example")
	if err != nil {
		t.Fatal(err)
	}
	p1, err := doc.NewPage(A4)
	if err != nil {
		t.Fatal(err)
	}
	err = p1.AddLinkToDestination(rect.Rect{LLx: 72, LLy: 72, URx: 144, URy: 90}, "top", "back to top")
	if err != nil {
		t.Fatal(err)
	}
	err = p1.BeginTag(structure.Tag{Type: structure.Paragraph})
	if err != nil {
		t.Fatal(err)
	}
	err = p1.DrawString(font, 12, vec.Vec2{X: 72, Y: 700}, "three")
	if err != nil {
		t.Fatal(err)
	}
	err = p1.EndTag()
	if err != nil {
		t.Fatal(err)
	}
	// destinations can be added after the page content was written
	err = p0.AddDestination("top", 800)
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Close()
	if err != nil {
		t.Fatal(err)
	}

	file := readBack(t, buf.Bytes())
	objs := file.Objects
	catalog := file.Catalog()
	if catalog.GetValue("Lang") == nil || catalog.GetValue("MarkInfo") == nil {
		t.Errorf("catalog lacks /Lang or /MarkInfo: %s", pdfdoc.Format(catalog.Value))
	}
	meta, err := metadata.Extract(objs, catalog.GetValue("Metadata"))
	if err != nil {
		t.Fatal(err)
	}
	if meta.PDFUA() != 1 {
		t.Errorf("metadata does not claim PDF/UA-1")
	}

	rootRef := catalog.GetValue("StructTreeRoot").(pdfdoc.Reference)
	root := objs[rootRef.Number]
	parentTree := root.GetValue("ParentTree")

	pages, err := file.GetPageObjects()
	if err != nil {
		t.Fatal(err)
	}
	wantMCIDs := []int{2, 1}
	for i, page := range pages {
		if page.GetValue("Tabs") != pdfdoc.Name("S") {
			t.Errorf("page %d: missing /Tabs /S", i)
		}
		key, ok := page.GetValue("StructParents").(pdfdoc.Integer)
		if !ok || key != pdfdoc.Integer(i) {
			t.Errorf("page %d: /StructParents %s", i, pdfdoc.Format(page.GetValue("StructParents")))
			continue
		}
		val, err := numtree.Lookup(objs, parentTree, key)
		if err != nil {
			t.Fatal(err)
		}
		arr := objs.Resolve(val).(pdfdoc.Array)
		if len(arr) != wantMCIDs[i] {
			t.Errorf("page %d: %d content elements, want %d", i, len(arr), wantMCIDs[i])
		}
		content := pageContent(file, page)
		for mcid := range arr {
			if !strings.Contains(content, fmt.Sprintf("/P <</MCID %d>>\nBDC", mcid)) {
				t.Errorf("page %d: MCID %d not found in %q", i, mcid, content)
			}
		}

		// annotation keys follow the page keys
		for j, n := range page.GetObjectNumbers("Annots") {
			annot := objs[n]
			key, ok := annot.GetValue("StructParent").(pdfdoc.Integer)
			wantKey := pdfdoc.Integer(len(pages) + i + j)
			if !ok || key != wantKey {
				t.Errorf("annotation %d: /StructParent %s, want %d", n, pdfdoc.Format(annot.GetValue("StructParent")), wantKey)
				continue
			}
			val, err := numtree.Lookup(objs, parentTree, key)
			if err != nil {
				t.Fatal(err)
			}
			elem := objs[val.(pdfdoc.Reference).Number]
			objr := elem.GetValue("K").(pdfdoc.Dict)
			if objr["Obj"] != pdfdoc.NewReference(n) {
				t.Errorf("annotation %d: element points to %s", n, pdfdoc.Format(objr["Obj"]))
			}
		}
	}

	// the link on page 1 jumps to the top of page 0
	link := objs[pages[1].GetObjectNumbers("Annots")[0]]
	want := pdfdoc.Array{pdfdoc.NewReference(pages[0].Number), pdfdoc.Name("XYZ"), pdfdoc.Integer(0), pdfdoc.Integer(800), pdfdoc.Integer(0)}
	if d := cmp.Diff(want, link.GetValue("Dest")); d != "" {
		t.Errorf("link destination (-want +got):\n%s", d)
	}

	// structure elements, struct tree root, parent tree, info and catalog
	// are the last objects, in this order
	info := file.Trailer["Info"].(pdfdoc.Reference)
	order := []int{rootRef.Number, parentTree.(pdfdoc.Reference).Number, info.Number, catalog.Number}
	for _, n := range root.GetObjectNumbers("K") {
		if n >= rootRef.Number {
			t.Errorf("structure element %d follows the struct tree root", n)
		}
	}
	for i := 1; i < len(order); i++ {
		if doc.Out.Offset(order[i-1]) >= doc.Out.Offset(order[i]) {
			t.Errorf("object %d written after object %d", order[i-1], order[i])
		}
	}
}

func TestUndefinedDestination(t *testing.T) {
	doc, err := New(&bytes.Buffer{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	page, err := doc.NewPage(A4)
	if err != nil {
		t.Fatal(err)
	}
	err = page.AddLinkToDestination(rect.Rect{URx: 10, URy: 10}, "nowhere", "")
	if err != nil {
		t.Fatal(err)
	}
	err = page.AddDestination("here", 100)
	if err != nil {
		t.Fatal(err)
	}
	err = page.AddDestination("here", 200)
	if !isPrecondition(err) {
		t.Errorf("duplicate destination: got %v", err)
	}
	err = doc.Flush()
	if !isPrecondition(err) {
		t.Errorf("link to undefined destination: got %v", err)
	}
}

func TestOptionalContent(t *testing.T) {
	buf := &bytes.Buffer{}
	doc, err := New(buf, &Options{CreationDate: testDate})
	if err != nil {
		t.Fatal(err)
	}
	g, err := doc.AddOptionalContentGroup(&oc.Group{Name: "Notes", Visible: true, Printable: false})
	if err != nil {
		t.Fatal(err)
	}
	err = doc.SetPageLayout("TwoColumnLeft")
	if err != nil {
		t.Fatal(err)
	}
	page, err := doc.NewPage(A5)
	if err != nil {
		t.Fatal(err)
	}
	err = page.BeginOptionalContent(g)
	if err != nil {
		t.Fatal(err)
	}
	_, err = page.Write([]byte("0 0 10 10 re f\n"))
	if err != nil {
		t.Fatal(err)
	}
	err = page.EndTag()
	if !isPrecondition(err) {
		t.Errorf("EndTag closing optional content: got %v", err)
	}
	err = page.EndOptionalContent()
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Close()
	if err != nil {
		t.Fatal(err)
	}

	file := readBack(t, buf.Bytes())
	catalog := file.Catalog()
	if catalog.GetValue("PageLayout") != pdfdoc.Name("TwoColumnLeft") {
		t.Errorf("wrong page layout %s", pdfdoc.Format(catalog.GetValue("PageLayout")))
	}
	props, ok := catalog.GetValue("OCProperties").(pdfdoc.Dict)
	if !ok {
		t.Fatal("missing /OCProperties")
	}
	if d := cmp.Diff(pdfdoc.Array{g.Ref}, props["OCGs"]); d != "" {
		t.Errorf("OCGs (-want +got):\n%s", d)
	}

	pages, err := file.GetPageObjects()
	if err != nil {
		t.Fatal(err)
	}
	content := pageContent(file, pages[0])
	if !strings.Contains(content, "/OC /OC1 BDC\n0 0 10 10 re f\nEMC") {
		t.Errorf("unexpected content %q", content)
	}
	res := file.Objects.Resolve(pages[0].GetValue("Resources")).(pdfdoc.Dict)
	if p, _ := res["Properties"].(pdfdoc.Dict); p["OC1"] != g.Ref {
		t.Errorf("group missing from resources: %s", pdfdoc.Format(res))
	}
}
