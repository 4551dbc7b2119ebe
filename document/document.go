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

// Package document writes complete PDF documents.
//
// A [Document] owns the output file.  Fonts, images and optional content
// groups are registered with the document and can then be used on any
// page.  Pages are added in the order they appear in the file.  When a
// new page is started, the content of the previous page is compressed,
// written and released, so that only one page of uncompressed content
// is held in memory at any time.  The page objects, the page tree and
// all document level objects are written when the document is finalized
// using [Document.Flush] or [Document.Close].
package document

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/icc"

	"seehuhn.de/go/pdfdoc"
	"seehuhn.de/go/pdfdoc/codec"
	"seehuhn.de/go/pdfdoc/destination"
	"seehuhn.de/go/pdfdoc/font/standard"
	"seehuhn.de/go/pdfdoc/image"
	"seehuhn.de/go/pdfdoc/internal/docid"
	"seehuhn.de/go/pdfdoc/metadata"
	"seehuhn.de/go/pdfdoc/oc"
	"seehuhn.de/go/pdfdoc/structure"
)

// Document is a PDF document which is being written.
type Document struct {
	// Out is the underlying PDF writer.  This can be used to write
	// additional objects.
	Out *pdfdoc.Writer

	opt  Options
	log  *slog.Logger
	base io.Writer

	info pdfdoc.Info
	lang language.Tag

	fonts    []*Font
	fontByID map[standard.Font]*Font
	images   []*Image
	groups   []*OptionalContent
	ocProps  oc.Properties
	pages    []*Page
	dests    map[pdfdoc.Name]*namedDest

	tree *structure.Tree

	pageLayout   pdfdoc.Name
	pageMode     pdfdoc.Name
	outputIntent pdfdoc.Reference

	finished bool
}

type namedDest struct {
	page *Page
	top  float64
}

// Create creates a new document, written to the named file.
// The file is closed by [Document.Close].
func Create(name string, opt *Options) (*Document, error) {
	fd, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	doc, err := New(fd, opt)
	if err != nil {
		fd.Close()
		return nil, err
	}
	return doc, nil
}

// New starts a new document, written to w.
func New(w io.Writer, opt *Options) (*Document, error) {
	if opt == nil {
		opt = defaultOptions
	}
	if opt.Compliance == PDFA1B && (opt.XRefStream || opt.ObjectStreams) {
		return nil, &pdfdoc.PreconditionError{
			Op:  "New",
			Msg: "PDF/A-1b files must use a cross-reference table",
		}
	}

	doc := &Document{
		opt:      *opt,
		base:     w,
		fontByID: make(map[standard.Font]*Font),
		dests:    make(map[pdfdoc.Name]*namedDest),
	}
	doc.log = opt.Logger
	if doc.log == nil {
		doc.log = slog.New(slog.DiscardHandler)
	}
	if doc.opt.CreationDate.IsZero() {
		doc.opt.CreationDate = time.Now()
	}
	if doc.opt.Producer == "" {
		doc.opt.Producer = defaultProducer
	}
	doc.lang = opt.Language
	if doc.lang == language.Und && opt.Compliance == PDFUA {
		doc.lang = language.AmericanEnglish
	}
	doc.info.Producer = doc.opt.Producer
	doc.info.CreationDate = doc.opt.CreationDate

	out, err := pdfdoc.NewWriter(w, &pdfdoc.WriterOptions{
		XRefStream:    opt.XRefStream,
		ObjectStreams: opt.ObjectStreams,
		Logger:        doc.log,
	})
	if err != nil {
		return nil, err
	}
	doc.Out = out

	if opt.Compliance != None {
		if opt.Compliance == PDFUA {
			doc.tree = structure.NewTree()
		}
		doc.outputIntent, err = doc.writeOutputIntent()
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Compliance returns the conformance level of the document.
func (doc *Document) Compliance() Compliance {
	return doc.opt.Compliance
}

// srgbProfile is a version 2 ICC profile for the sRGB color space, as
// required for PDF/A-1 output intents.
//
//go:embed srgb.icc
var srgbProfile []byte

// writeOutputIntent writes an sRGB output intent, together with the ICC
// profile it refers to.
func (doc *Document) writeOutputIntent() (pdfdoc.Reference, error) {
	profile := srgbProfile
	p, err := icc.Decode(profile)
	if err != nil {
		return pdfdoc.Reference{}, err
	}

	profileRef := doc.Out.Alloc()
	err = doc.Out.PutStream(profileRef, pdfdoc.Dict{
		"N":      pdfdoc.Integer(p.ColorSpace.NumComponents()),
		"Filter": pdfdoc.Name("FlateDecode"),
	}, codec.Compress(profile))
	if err != nil {
		return pdfdoc.Reference{}, err
	}

	const condition = "sRGB IEC61966-2.1"
	ref := doc.Out.Alloc()
	err = doc.Out.Put(ref, pdfdoc.Dict{
		"Type":                      pdfdoc.Name("OutputIntent"),
		"S":                         pdfdoc.Name("GTS_PDFA1"),
		"OutputCondition":           pdfdoc.String(condition),
		"OutputConditionIdentifier": pdfdoc.String(condition),
		"Info":                      pdfdoc.String(condition),
		"DestOutputProfile":         profileRef,
	})
	if err != nil {
		return pdfdoc.Reference{}, err
	}
	return ref, nil
}

// SetTitle sets the document title.
func (doc *Document) SetTitle(title string) {
	doc.info.Title = title
}

// SetAuthor sets the name of the person who created the document.
func (doc *Document) SetAuthor(author string) {
	doc.info.Author = author
}

// SetSubject sets the subject of the document.
func (doc *Document) SetSubject(subject string) {
	doc.info.Subject = subject
}

// SetKeywords sets the keywords associated with the document.
func (doc *Document) SetKeywords(keywords string) {
	doc.info.Keywords = keywords
}

// SetCreator sets the name of the application the document was converted
// from.
func (doc *Document) SetCreator(creator string) {
	doc.info.Creator = creator
}

var validPageLayouts = map[pdfdoc.Name]bool{
	"SinglePage":     true,
	"OneColumn":      true,
	"TwoColumnLeft":  true,
	"TwoColumnRight": true,
	"TwoPageLeft":    true,
	"TwoPageRight":   true,
}

var validPageModes = map[pdfdoc.Name]bool{
	"UseNone":        true,
	"UseOutlines":    true,
	"UseThumbs":      true,
	"FullScreen":     true,
	"UseOC":          true,
	"UseAttachments": true,
}

// SetPageLayout sets the page layout used when the document is opened.
func (doc *Document) SetPageLayout(layout pdfdoc.Name) error {
	if !validPageLayouts[layout] {
		return &pdfdoc.PreconditionError{Op: "SetPageLayout", Msg: "invalid page layout /" + string(layout)}
	}
	doc.pageLayout = layout
	return nil
}

// SetPageMode sets how the document is displayed when opened.
func (doc *Document) SetPageMode(mode pdfdoc.Name) error {
	if !validPageModes[mode] {
		return &pdfdoc.PreconditionError{Op: "SetPageMode", Msg: "invalid page mode /" + string(mode)}
	}
	doc.pageMode = mode
	return nil
}

// Font is a font registered with a document.
type Font struct {
	standard.Font

	// Ref is the font dictionary.
	Ref pdfdoc.Reference

	// Name is the name of the font in the resource dictionary.
	Name pdfdoc.Name

	doc *Document
}

// AddFont registers one of the standard fonts.  Registering the same font
// twice returns the same value.
func (doc *Document) AddFont(f standard.Font) (*Font, error) {
	if err := doc.checkOpen("AddFont"); err != nil {
		return nil, err
	}
	if font, ok := doc.fontByID[f]; ok {
		return font, nil
	}
	if !f.IsValid() {
		return nil, &pdfdoc.PreconditionError{Op: "AddFont", Msg: fmt.Sprintf("%q is not a standard font", f)}
	}

	ref := doc.Out.Alloc()
	err := doc.Out.Put(ref, f.Dict())
	if err != nil {
		return nil, err
	}
	font := &Font{
		Font: f,
		Ref:  ref,
		Name: standard.ResourceID(ref.Number),
		doc:  doc,
	}
	doc.fonts = append(doc.fonts, font)
	doc.fontByID[f] = font
	return font, nil
}

// Image is an image registered with a document.
type Image struct {
	Ref    pdfdoc.Reference
	Name   pdfdoc.Name
	Width  int
	Height int

	doc *Document
}

// AddImage writes an image to the file.
func (doc *Document) AddImage(im *image.Image) (*Image, error) {
	if err := doc.checkOpen("AddImage"); err != nil {
		return nil, err
	}
	if im.Mask != nil && doc.opt.Compliance == PDFA1B {
		return nil, &pdfdoc.PreconditionError{Op: "AddImage", Msg: "PDF/A-1b does not allow transparency"}
	}

	ref, err := im.Embed(doc.Out)
	if err != nil {
		return nil, err
	}
	res := &Image{
		Ref:    ref,
		Name:   image.ResourceID(ref.Number),
		Width:  im.Width,
		Height: im.Height,
		doc:    doc,
	}
	doc.images = append(doc.images, res)
	return res, nil
}

// OptionalContent is an optional content group registered with a document.
type OptionalContent struct {
	Ref  pdfdoc.Reference
	Name pdfdoc.Name

	doc *Document
}

// AddOptionalContentGroup writes an optional content group to the file.
// Content drawn between [Page.BeginOptionalContent] and
// [Page.EndOptionalContent] belongs to the group.
func (doc *Document) AddOptionalContentGroup(g *oc.Group) (*OptionalContent, error) {
	if err := doc.checkOpen("AddOptionalContentGroup"); err != nil {
		return nil, err
	}
	if doc.opt.Compliance == PDFA1B {
		return nil, &pdfdoc.PreconditionError{
			Op:  "AddOptionalContentGroup",
			Msg: "PDF/A-1b does not allow optional content",
		}
	}
	dict, err := g.AsDict()
	if err != nil {
		return nil, err
	}
	ref := doc.Out.Alloc()
	err = doc.Out.Put(ref, dict)
	if err != nil {
		return nil, err
	}
	doc.ocProps.Add(ref, g)
	res := &OptionalContent{
		Ref:  ref,
		Name: pdfdoc.Name("OC" + strconv.Itoa(len(doc.groups)+1)),
		doc:  doc,
	}
	doc.groups = append(doc.groups, res)
	return res, nil
}

// NewPage appends a new page with the given media box.  The content of
// the previous page is written to the file and can no longer be changed.
func (doc *Document) NewPage(mediaBox rect.Rect) (*Page, error) {
	if err := doc.checkOpen("NewPage"); err != nil {
		return nil, err
	}
	if mediaBox.URx <= mediaBox.LLx || mediaBox.URy <= mediaBox.LLy {
		return nil, &pdfdoc.PreconditionError{Op: "NewPage", Msg: "empty media box"}
	}
	if n := len(doc.pages); n > 0 {
		err := doc.pages[n-1].flush()
		if err != nil {
			return nil, err
		}
	}

	p := &Page{
		MediaBox: mediaBox,
		doc:      doc,
		index:    len(doc.pages),
		ref:      doc.Out.Alloc(),
		content:  newContentBuffer(),
	}
	if doc.tree != nil {
		doc.tree.AddPage()
	}
	doc.pages = append(doc.pages, p)
	return p, nil
}

// NumPages returns the number of pages added so far.
func (doc *Document) NumPages() int {
	return len(doc.pages)
}

func (doc *Document) checkOpen(op string) error {
	if doc.finished {
		return &pdfdoc.PreconditionError{Op: op, Msg: "document already finalized"}
	}
	return nil
}

// Close finalizes the document.  If the underlying writer implements
// [io.Closer], it is closed afterwards.
func (doc *Document) Close() error {
	err := doc.Flush()
	if err != nil {
		return err
	}
	if c, ok := doc.base.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Flush finalizes the document, without closing the underlying writer.
// No further changes are possible after Flush has been called.
//
// The objects are written in the following order: the content of the
// last page, annotations, the shared resource dictionary, the page
// objects and the page tree, the XMP metadata, the structure elements,
// the structure tree root and parent tree, the information dictionary
// and finally the document catalog.
func (doc *Document) Flush() error {
	if err := doc.checkOpen("Flush"); err != nil {
		return err
	}
	if len(doc.pages) == 0 {
		return &pdfdoc.PreconditionError{Op: "Flush", Msg: "document has no pages"}
	}
	if p := doc.pages[len(doc.pages)-1]; len(p.marked) > 0 {
		return &pdfdoc.PreconditionError{
			Op:  "Flush",
			Msg: fmt.Sprintf("page %d has unclosed marked content", p.index+1),
		}
	}
	doc.finished = true

	err := doc.pages[len(doc.pages)-1].flush()
	if err != nil {
		return err
	}

	err = doc.writeAnnotations()
	if err != nil {
		return err
	}

	resRef, err := doc.writeResources()
	if err != nil {
		return err
	}

	pagesRef := doc.Out.Alloc()
	pageRefs := make([]pdfdoc.Reference, len(doc.pages))
	kids := make(pdfdoc.Array, len(doc.pages))
	for i, p := range doc.pages {
		err = doc.Out.Put(p.ref, p.asDict(pagesRef, resRef))
		if err != nil {
			return err
		}
		pageRefs[i] = p.ref
		kids[i] = p.ref
	}
	err = doc.Out.Put(pagesRef, pdfdoc.Dict{
		"Type":  pdfdoc.Name("Pages"),
		"Kids":  kids,
		"Count": pdfdoc.Integer(len(doc.pages)),
	})
	if err != nil {
		return err
	}

	var metaRef pdfdoc.Reference
	if doc.opt.Compliance != None {
		metaRef, err = doc.writeMetadata()
		if err != nil {
			return err
		}
	}

	var structRoot pdfdoc.Reference
	if doc.tree != nil {
		structRoot, err = doc.tree.Write(doc.Out, pageRefs)
		if err != nil {
			return err
		}
	}

	trailer := pdfdoc.Dict{}
	if infoDict := doc.info.AsDict(); infoDict != nil {
		infoRef := doc.Out.Alloc()
		err = doc.Out.Put(infoRef, infoDict)
		if err != nil {
			return err
		}
		trailer["Info"] = infoRef
	}

	catalog, err := doc.catalog(pagesRef, structRoot, metaRef)
	if err != nil {
		return err
	}
	rootRef := doc.Out.Alloc()
	err = doc.Out.Put(rootRef, catalog)
	if err != nil {
		return err
	}
	trailer["Root"] = rootRef

	created := []byte(doc.opt.CreationDate.Format(time.RFC3339Nano))
	id := pdfdoc.String(docid.New(created, []byte(doc.info.Title), []byte(strconv.Itoa(doc.Out.Count()))))
	trailer["ID"] = pdfdoc.Array{id, id}

	doc.log.Debug("document finalized",
		slog.Int("pages", len(doc.pages)),
		slog.String("compliance", doc.opt.Compliance.String()))
	return doc.Out.Close(trailer)
}

// writeAnnotations writes the link annotations of all pages.  Annotations
// which are tagged get the parent tree keys following the page keys.
func (doc *Document) writeAnnotations() error {
	for _, p := range doc.pages {
		for _, a := range p.annots {
			link := a.link
			if a.destName != "" {
				nd, ok := doc.dests[a.destName]
				if !ok {
					return &pdfdoc.PreconditionError{
						Op:  "Flush",
						Msg: "link to undefined destination /" + string(a.destName),
					}
				}
				dest := &destination.XYZ{Page: nd.page.ref, Left: 0, Top: nd.top, Zoom: 0}
				arr, err := dest.Encode()
				if err != nil {
					return err
				}
				link.Dest = arr
			}
			if doc.opt.Compliance != None && !link.Flags.Printable() {
				return &pdfdoc.PreconditionError{
					Op:  "Flush",
					Msg: fmt.Sprintf("link on page %d is not printable", p.index+1),
				}
			}
			if a.structIndex >= 0 {
				link.StructParent = doc.tree.AnnotationKey(a.structIndex)
			}
			dict, err := link.AsDict()
			if err != nil {
				return err
			}
			err = doc.Out.Put(a.ref, dict)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// writeResources writes the single resource dictionary shared by all
// pages.  Every font, image and optional content group appears exactly
// once.
func (doc *Document) writeResources() (pdfdoc.Reference, error) {
	res := pdfdoc.Dict{
		"ProcSet": pdfdoc.Array{pdfdoc.Name("PDF"), pdfdoc.Name("Text"), pdfdoc.Name("ImageC")},
	}
	if len(doc.fonts) > 0 {
		fonts := pdfdoc.Dict{}
		for _, f := range doc.fonts {
			fonts[f.Name] = f.Ref
		}
		res["Font"] = fonts
	}
	if len(doc.images) > 0 {
		xobj := pdfdoc.Dict{}
		for _, im := range doc.images {
			xobj[im.Name] = im.Ref
		}
		res["XObject"] = xobj
	}
	if len(doc.groups) > 0 {
		props := pdfdoc.Dict{}
		for _, g := range doc.groups {
			props[g.Name] = g.Ref
		}
		res["Properties"] = props
	}

	ref := doc.Out.Alloc()
	err := doc.Out.Put(ref, res)
	if err != nil {
		return pdfdoc.Reference{}, err
	}
	return ref, nil
}

func (doc *Document) writeMetadata() (pdfdoc.Reference, error) {
	info := &metadata.Info{
		Title:           doc.info.Title,
		Author:          doc.info.Author,
		Subject:         doc.info.Subject,
		Keywords:        doc.info.Keywords,
		Producer:        doc.info.Producer,
		Created:         doc.info.CreationDate,
		Lang:            doc.lang,
		PDFAPart:        1,
		PDFAConformance: "B",
	}
	if doc.opt.Compliance == PDFUA {
		info.PDFAPart = 0
		info.PDFUAPart = 1
	}
	m, err := metadata.New(info)
	if err != nil {
		return pdfdoc.Reference{}, err
	}
	return m.Embed(doc.Out)
}

func (doc *Document) catalog(pages, structRoot, meta pdfdoc.Reference) (pdfdoc.Dict, error) {
	dict := pdfdoc.Dict{
		"Type":  pdfdoc.Name("Catalog"),
		"Pages": pages,
	}
	if doc.lang != language.Und {
		dict["Lang"] = pdfdoc.TextString(doc.lang.String())
	}
	if doc.opt.Compliance == PDFUA {
		dict["StructTreeRoot"] = structRoot
		dict["MarkInfo"] = pdfdoc.Dict{"Marked": pdfdoc.Bool(true)}
		dict["ViewerPreferences"] = pdfdoc.Dict{"DisplayDocTitle": pdfdoc.Bool(true)}
	}
	if doc.pageLayout != "" {
		dict["PageLayout"] = doc.pageLayout
	}
	if doc.pageMode != "" {
		dict["PageMode"] = doc.pageMode
	}
	if ocp := doc.ocProps.AsDict(); ocp != nil {
		dict["OCProperties"] = ocp
	}
	if len(doc.dests) > 0 {
		var names destination.Names
		for name, nd := range doc.dests {
			err := names.Add(name, &destination.XYZ{Page: nd.page.ref, Left: 0, Top: nd.top, Zoom: 0})
			if err != nil {
				return nil, err
			}
		}
		dests, err := names.AsDict()
		if err != nil {
			return nil, err
		}
		dict["Dests"] = dests
	}
	if doc.opt.Compliance != None {
		dict["Metadata"] = meta
		dict["OutputIntents"] = pdfdoc.Array{doc.outputIntent}
	}
	return dict, nil
}
