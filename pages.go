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

package pdfdoc

import (
	"errors"
	"fmt"
)

// Catalog returns the document catalog.  If the trailer has no usable
// /Root entry, the lowest numbered object with /Type /Catalog is used.
func (f *File) Catalog() *IndirectObject {
	if ref, ok := f.Trailer["Root"].(Reference); ok {
		if obj := f.Objects[ref.Number]; obj != nil && obj.Dict() != nil {
			return obj
		}
	}
	return f.Objects.findType("Catalog")
}

// GetPageObjects returns the page objects of the file, in document order.
func (f *File) GetPageObjects() ([]*IndirectObject, error) {
	var root *IndirectObject
	if catalog := f.Catalog(); catalog != nil {
		if ref, ok := catalog.GetValue("Pages").(Reference); ok {
			root = f.Objects[ref.Number]
		}
	}
	return GetPageObjects(f.Objects, root)
}

// GetPageObjects walks the page tree starting at root and returns the
// page objects in document order.  If root is nil, the lowest numbered
// /Pages node without a /Parent is used.
func GetPageObjects(objs Objects, root *IndirectObject) ([]*IndirectObject, error) {
	if root == nil {
		root = objs.pageTreeRoot()
	}
	if root == nil {
		return nil, &FormatError{Err: errors.New("page tree not found")}
	}

	var pages []*IndirectObject
	seen := make(map[int]bool)
	var walk func(node *IndirectObject, depth int) error
	walk = func(node *IndirectObject, depth int) error {
		if seen[node.Number] {
			return &FormatError{Err: fmt.Errorf("page tree: object %d visited twice", node.Number)}
		}
		seen[node.Number] = true
		if depth > maxNesting {
			return &FormatError{Err: errors.New("page tree too deep")}
		}

		if node.IsPage() {
			pages = append(pages, node)
			return nil
		}
		// an intermediate node without /Kids holds no pages
		kids, _ := objs.Resolve(node.GetValue("Kids")).(Array)
		for _, kid := range kids {
			ref, ok := kid.(Reference)
			if !ok {
				return &FormatError{Err: fmt.Errorf("page tree: invalid kid %s in object %d", Format(kid), node.Number)}
			}
			child := objs[ref.Number]
			if child == nil || child.Dict() == nil {
				return &FormatError{Err: fmt.Errorf("page tree: missing object %d", ref.Number)}
			}
			err := walk(child, depth+1)
			if err != nil {
				return err
			}
		}
		return nil
	}

	err := walk(root, 0)
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func (objs Objects) findType(tp Name) *IndirectObject {
	for _, n := range objs.Numbers() {
		obj := objs[n]
		if obj.GetValue("Type") == tp && !obj.IsStream() {
			return obj
		}
	}
	return nil
}

func (objs Objects) pageTreeRoot() *IndirectObject {
	for _, n := range objs.Numbers() {
		obj := objs[n]
		if obj.GetValue("Type") == Name("Pages") && obj.GetValue("Parent") == nil {
			return obj
		}
	}
	return nil
}
