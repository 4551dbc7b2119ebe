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
	"fmt"
	"log/slog"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfdoc"
	"seehuhn.de/go/pdfdoc/annotation"
	"seehuhn.de/go/pdfdoc/codec"
	"seehuhn.de/go/pdfdoc/structure"
)

// Page is a page of a document.
//
// Content is added using the drawing methods, or written directly in
// content stream syntax using [Page.Write].  The content can be changed
// until the next page is started or the document is finalized.
type Page struct {
	// MediaBox is the size of the page.
	MediaBox rect.Rect

	// These optional boxes are written to the page dictionary if set.
	CropBox  *rect.Rect
	BleedBox *rect.Rect
	TrimBox  *rect.Rect
	ArtBox   *rect.Rect

	doc   *Document
	index int
	ref   pdfdoc.Reference

	content  *bytes.Buffer // nil once the content has been written
	contents []pdfdoc.Reference
	annots   []*pendingAnnot
	marked   []markKind
}

type pendingAnnot struct {
	ref         pdfdoc.Reference
	link        *annotation.Link
	destName    pdfdoc.Name
	structIndex int
}

type markKind int

const (
	markTag markKind = iota
	markOptional
)

func newContentBuffer() *bytes.Buffer {
	return &bytes.Buffer{}
}

// Ref returns the reference of the page object.  The page object itself
// is written when the document is finalized.
func (p *Page) Ref() pdfdoc.Reference {
	return p.ref
}

// Index returns the zero-based position of the page in the document.
func (p *Page) Index() int {
	return p.index
}

func (p *Page) check(op string) error {
	if p.content == nil {
		return &pdfdoc.PreconditionError{
			Op:  op,
			Msg: fmt.Sprintf("page %d has already been written", p.index+1),
		}
	}
	return nil
}

// Write appends raw content stream operators to the page.
func (p *Page) Write(data []byte) (int, error) {
	if err := p.check("Write"); err != nil {
		return 0, err
	}
	return p.content.Write(data)
}

// DrawString shows text at the given position, using a font registered
// with the document.
func (p *Page) DrawString(f *Font, size float64, pos vec.Vec2, text string) error {
	if err := p.check("DrawString"); err != nil {
		return err
	}
	if f == nil || f.doc != p.doc {
		return &pdfdoc.PreconditionError{
			Op:  "DrawString",
			Msg: "font is not registered with this document",
		}
	}
	s, err := f.Encode(text)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.content, "BT\n/%s %s Tf\n%s %s Td\n%s Tj\nET\n",
		f.Name, pdfdoc.FormatReal(size),
		pdfdoc.FormatReal(pos.X), pdfdoc.FormatReal(pos.Y),
		pdfdoc.Format(s))
	return nil
}

// DrawImage draws an image, scaled to fill the rectangle r.
func (p *Page) DrawImage(im *Image, r rect.Rect) error {
	if err := p.check("DrawImage"); err != nil {
		return err
	}
	if im == nil || im.doc != p.doc {
		return &pdfdoc.PreconditionError{
			Op:  "DrawImage",
			Msg: "image is not registered with this document",
		}
	}
	fmt.Fprintf(p.content, "q\n%s 0 0 %s %s %s cm\n/%s Do\nQ\n",
		pdfdoc.FormatReal(r.URx-r.LLx), pdfdoc.FormatReal(r.URy-r.LLy),
		pdfdoc.FormatReal(r.LLx), pdfdoc.FormatReal(r.LLy),
		im.Name)
	return nil
}

// BeginTag starts a marked-content sequence for a new structure element.
// In documents without PDF/UA compliance, this only checks nesting.
func (p *Page) BeginTag(tag structure.Tag) error {
	if err := p.check("BeginTag"); err != nil {
		return err
	}
	if tag.Type == "" {
		return &pdfdoc.PreconditionError{Op: "BeginTag", Msg: "missing structure type"}
	}
	p.marked = append(p.marked, markTag)

	tree := p.doc.tree
	if tree == nil {
		return nil
	}
	mcid, err := tree.AddContent(p.index, tag)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.content, "/%s <</MCID %d>>\nBDC\n", tag.Type, mcid)
	return nil
}

// EndTag ends the marked-content sequence started by [Page.BeginTag].
func (p *Page) EndTag() error {
	err := p.endMarked("EndTag", markTag)
	if err != nil {
		return err
	}
	if p.doc.tree != nil {
		p.content.WriteString("EMC\n")
	}
	return nil
}

// BeginOptionalContent starts content which belongs to the optional
// content group g.
func (p *Page) BeginOptionalContent(g *OptionalContent) error {
	if err := p.check("BeginOptionalContent"); err != nil {
		return err
	}
	if g == nil || g.doc != p.doc {
		return &pdfdoc.PreconditionError{
			Op:  "BeginOptionalContent",
			Msg: "optional content group is not registered with this document",
		}
	}
	p.marked = append(p.marked, markOptional)
	fmt.Fprintf(p.content, "/OC /%s BDC\n", g.Name)
	return nil
}

// EndOptionalContent ends the content started by
// [Page.BeginOptionalContent].
func (p *Page) EndOptionalContent() error {
	err := p.endMarked("EndOptionalContent", markOptional)
	if err != nil {
		return err
	}
	p.content.WriteString("EMC\n")
	return nil
}

func (p *Page) endMarked(op string, kind markKind) error {
	if err := p.check(op); err != nil {
		return err
	}
	n := len(p.marked)
	if n == 0 || p.marked[n-1] != kind {
		return &pdfdoc.PreconditionError{Op: op, Msg: "no matching begin"}
	}
	p.marked = p.marked[:n-1]
	return nil
}

// AddLink adds a link to an external URI.  The text alt describes the
// link for assistive technology.
func (p *Page) AddLink(r rect.Rect, uri string, alt string) error {
	if uri == "" {
		return &pdfdoc.PreconditionError{Op: "AddLink", Msg: "empty URI"}
	}
	return p.addLink("AddLink", r, &annotation.Link{URI: uri}, "", alt)
}

// AddLinkToDestination adds a link to a named destination.  The
// destination can be defined on any page, before or after the link,
// using [Page.AddDestination].
func (p *Page) AddLinkToDestination(r rect.Rect, name pdfdoc.Name, alt string) error {
	if name == "" {
		return &pdfdoc.PreconditionError{Op: "AddLinkToDestination", Msg: "empty destination name"}
	}
	return p.addLink("AddLinkToDestination", r, &annotation.Link{}, name, alt)
}

func (p *Page) addLink(op string, r rect.Rect, link *annotation.Link, dest pdfdoc.Name, alt string) error {
	if err := p.doc.checkOpen(op); err != nil {
		return err
	}
	link.Rect = r
	link.Contents = alt
	link.Flags = annotation.FlagPrint

	a := &pendingAnnot{
		ref:         p.doc.Out.Alloc(),
		link:        link,
		destName:    dest,
		structIndex: -1,
	}
	if tree := p.doc.tree; tree != nil {
		j, err := tree.AddAnnotation(p.index, structure.Tag{Type: structure.Link, Alt: alt}, a.ref)
		if err != nil {
			return err
		}
		a.structIndex = j
	}
	p.annots = append(p.annots, a)
	return nil
}

// AddDestination defines a named destination which shows this page,
// scrolled to the vertical position top.
func (p *Page) AddDestination(name pdfdoc.Name, top float64) error {
	if err := p.doc.checkOpen("AddDestination"); err != nil {
		return err
	}
	if _, dup := p.doc.dests[name]; dup {
		return &pdfdoc.PreconditionError{
			Op:  "AddDestination",
			Msg: "duplicate destination name /" + string(name),
		}
	}
	p.doc.dests[name] = &namedDest{page: p, top: top}
	return nil
}

// flush compresses the page content into a new content stream and
// releases the buffer.
func (p *Page) flush() error {
	if p.content == nil {
		return nil
	}
	if len(p.marked) > 0 {
		return &pdfdoc.PreconditionError{
			Op:  "NewPage",
			Msg: fmt.Sprintf("page %d has unclosed marked content", p.index+1),
		}
	}

	data := p.content.Bytes()
	ref := p.doc.Out.Alloc()
	err := p.doc.Out.PutStream(ref, pdfdoc.Dict{
		"Filter": pdfdoc.Name("FlateDecode"),
	}, codec.Compress(data))
	if err != nil {
		return err
	}
	p.contents = append(p.contents, ref)

	p.doc.log.Debug("page content released",
		slog.Int("page", p.index+1),
		slog.Int("bytes", len(data)))
	p.content = nil
	return nil
}

func (p *Page) asDict(parent, resources pdfdoc.Reference) pdfdoc.Dict {
	dict := pdfdoc.Dict{
		"Type":      pdfdoc.Name("Page"),
		"Parent":    parent,
		"MediaBox":  rectArray(p.MediaBox),
		"Resources": resources,
	}
	boxes := []struct {
		key pdfdoc.Name
		box *rect.Rect
	}{
		{"CropBox", p.CropBox},
		{"BleedBox", p.BleedBox},
		{"TrimBox", p.TrimBox},
		{"ArtBox", p.ArtBox},
	}
	for _, b := range boxes {
		if b.box != nil {
			dict[b.key] = rectArray(*b.box)
		}
	}

	contents := make(pdfdoc.Array, len(p.contents))
	for i, ref := range p.contents {
		contents[i] = ref
	}
	dict["Contents"] = contents

	if len(p.annots) > 0 {
		annots := make(pdfdoc.Array, len(p.annots))
		for i, a := range p.annots {
			annots[i] = a.ref
		}
		dict["Annots"] = annots
	}

	if tree := p.doc.tree; tree != nil {
		dict["Tabs"] = pdfdoc.Name("S")
		dict["StructParents"] = tree.PageKey(p.index).AsObject()
	}
	return dict
}

func rectArray(r rect.Rect) pdfdoc.Array {
	return pdfdoc.Array{
		pdfdoc.Real(r.LLx), pdfdoc.Real(r.LLy),
		pdfdoc.Real(r.URx), pdfdoc.Real(r.URy),
	}
}
