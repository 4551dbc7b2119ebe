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

// Package structure records the logical structure of a tagged PDF file.
//
// Elements are collected while page content is generated.  Content
// elements are identified by a marked-content identifier (MCID), which is
// numbered from zero on every page.  Annotation elements refer to their
// annotation by object reference.  The two kinds use disjoint keys in the
// parent tree: page i uses key i, and the j-th annotation element uses
// key n+j, where n is the number of pages.
package structure

import (
	"fmt"
	"iter"

	"golang.org/x/text/language"

	"seehuhn.de/go/pdfdoc"
	"seehuhn.de/go/pdfdoc/numtree"
)

// Standard structure types used by the document package.
const (
	Document  pdfdoc.Name = "Document"
	Paragraph pdfdoc.Name = "P"
	Span      pdfdoc.Name = "Span"
	Figure    pdfdoc.Name = "Figure"
	Link      pdfdoc.Name = "Link"
	Artifact  pdfdoc.Name = "Artifact"
)

// Tag describes a structure element.
type Tag struct {
	// Type is the structure type, for example [Paragraph].
	Type pdfdoc.Name

	// Lang optionally overrides the document language.
	Lang language.Tag

	// Alt is an alternate description, for example for figures.
	Alt string

	// ActualText is the replacement text for the content.
	ActualText string
}

// Element is a recorded structure element.
type Element struct {
	Tag

	// Page is the zero-based index of the page the element belongs to.
	Page int

	// MCID is the marked-content identifier of a content element.
	// It is -1 for annotation elements.
	MCID int

	// Annot is the annotation of an annotation element.
	Annot pdfdoc.Reference

	ref pdfdoc.Reference
}

// IsAnnotation reports whether the element refers to an annotation.
func (e *Element) IsAnnotation() bool {
	return e.MCID < 0
}

// Tree collects the structure elements of a document.
type Tree struct {
	pages  [][]*Element
	annots []*Element
}

// NewTree returns an empty structure tree.
func NewTree() *Tree {
	return &Tree{}
}

// AddPage starts a new page and returns its index.
func (t *Tree) AddPage() int {
	t.pages = append(t.pages, nil)
	return len(t.pages) - 1
}

// NumPages returns the number of pages added so far.
func (t *Tree) NumPages() int {
	return len(t.pages)
}

// AddContent records a content element on the given page and returns the
// MCID to use for the marked-content sequence.
func (t *Tree) AddContent(page int, tag Tag) (int, error) {
	if err := t.checkPage("AddContent", page); err != nil {
		return 0, err
	}
	mcid := 0
	for _, e := range t.pages[page] {
		if !e.IsAnnotation() {
			mcid++
		}
	}
	t.pages[page] = append(t.pages[page], &Element{Tag: tag, Page: page, MCID: mcid})
	return mcid, nil
}

// AddAnnotation records an annotation element on the given page.
// The return value is the index of the element among all annotation
// elements, see [Tree.AnnotationKey].
func (t *Tree) AddAnnotation(page int, tag Tag, annot pdfdoc.Reference) (int, error) {
	if err := t.checkPage("AddAnnotation", page); err != nil {
		return 0, err
	}
	e := &Element{Tag: tag, Page: page, MCID: -1, Annot: annot}
	t.pages[page] = append(t.pages[page], e)
	t.annots = append(t.annots, e)
	return len(t.annots) - 1, nil
}

func (t *Tree) checkPage(op string, page int) error {
	if page < 0 || page >= len(t.pages) {
		return &pdfdoc.PreconditionError{
			Op:  op,
			Msg: fmt.Sprintf("page %d does not exist", page),
		}
	}
	return nil
}

// PageKey returns the /StructParents key of a page.
func (t *Tree) PageKey(page int) Key {
	return NewKey(pdfdoc.Integer(page))
}

// AnnotationKey returns the /StructParent key of the j-th annotation
// element.  The key is only valid once all pages have been added.
func (t *Tree) AnnotationKey(j int) Key {
	return NewKey(pdfdoc.Integer(len(t.pages) + j))
}

// Elements returns the elements of a page, in the order they were added.
func (t *Tree) Elements(page int) []*Element {
	if page < 0 || page >= len(t.pages) {
		return nil
	}
	return t.pages[page]
}

// Write writes the structure elements, the structure tree root and the
// parent tree, in this order.  The slice pages gives the page objects,
// in the order the pages were added.  The return value is the reference
// of the structure tree root.
func (t *Tree) Write(w *pdfdoc.Writer, pages []pdfdoc.Reference) (pdfdoc.Reference, error) {
	if len(pages) != len(t.pages) {
		return pdfdoc.Reference{}, &pdfdoc.PreconditionError{
			Op:  "structure.Write",
			Msg: fmt.Sprintf("got %d page references for %d pages", len(pages), len(t.pages)),
		}
	}

	var kids pdfdoc.Array
	for _, elems := range t.pages {
		for _, e := range elems {
			e.ref = w.Alloc()
			kids = append(kids, e.ref)
		}
	}
	rootRef := w.Alloc()
	parentTreeRef := w.Alloc()

	for i, elems := range t.pages {
		for _, e := range elems {
			err := w.Put(e.ref, e.asDict(rootRef, pages[i]))
			if err != nil {
				return pdfdoc.Reference{}, err
			}
		}
	}

	root := pdfdoc.Dict{
		"Type":              pdfdoc.Name("StructTreeRoot"),
		"K":                 kids,
		"ParentTree":        parentTreeRef,
		"ParentTreeNextKey": pdfdoc.Integer(len(t.pages) + len(t.annots)),
	}
	err := w.Put(rootRef, root)
	if err != nil {
		return pdfdoc.Reference{}, err
	}

	err = numtree.WriteAt(w, parentTreeRef, t.parentTree())
	if err != nil {
		return pdfdoc.Reference{}, err
	}
	return rootRef, nil
}

// parentTree lists the parent tree entries in key order: first one array
// of content elements per page, indexed by MCID, then one entry per
// annotation element.
func (t *Tree) parentTree() iter.Seq2[pdfdoc.Integer, pdfdoc.Object] {
	return func(yield func(pdfdoc.Integer, pdfdoc.Object) bool) {
		for i, elems := range t.pages {
			arr := pdfdoc.Array{}
			for _, e := range elems {
				if !e.IsAnnotation() {
					arr = append(arr, e.ref)
				}
			}
			if !yield(pdfdoc.Integer(i), arr) {
				return
			}
		}
		for j, e := range t.annots {
			if !yield(pdfdoc.Integer(len(t.pages)+j), e.ref) {
				return
			}
		}
	}
}

func (e *Element) asDict(parent, page pdfdoc.Reference) pdfdoc.Dict {
	dict := pdfdoc.Dict{
		"Type": pdfdoc.Name("StructElem"),
		"S":    e.Type,
		"P":    parent,
		"Pg":   page,
	}
	if e.IsAnnotation() {
		dict["K"] = pdfdoc.Dict{
			"Type": pdfdoc.Name("OBJR"),
			"Obj":  e.Annot,
		}
	} else {
		dict["K"] = pdfdoc.Integer(e.MCID)
	}
	if e.Lang != language.Und {
		dict["Lang"] = pdfdoc.TextString(e.Lang.String())
	}
	if e.Alt != "" {
		dict["Alt"] = pdfdoc.TextString(e.Alt)
	}
	if e.ActualText != "" {
		dict["ActualText"] = pdfdoc.TextString(e.ActualText)
	}
	return dict
}
