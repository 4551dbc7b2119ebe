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

package annotation

import (
	"errors"
	"fmt"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfdoc"
	"seehuhn.de/go/pdfdoc/structure"
)

// Link represents a hypertext link annotation.
type Link struct {
	// Rect is the active area of the link, in default user space.
	Rect rect.Rect

	// URI, if set, is opened when the link is activated.
	// Mutually exclusive with Dest.
	URI string

	// Dest, if set, is shown when the link is activated.  This is either an
	// explicit destination array or the name of a destination in the
	// /Dests dictionary of the catalog.
	Dest pdfdoc.Object

	// Contents is a text description of the link.
	Contents string

	// Flags is written as the /F entry.
	Flags Flags

	// Highlight is the highlighting mode, one of N, I, O and P.
	// The empty value means I.
	Highlight pdfdoc.Name

	// StructParent is the key of the link in the parent tree.
	StructParent structure.Key
}

var errLinkTarget = errors.New("link must have exactly one of URI and Dest")

// AsDict returns the annotation dictionary.  The link is drawn without
// a border.
func (l *Link) AsDict() (pdfdoc.Dict, error) {
	if (l.URI == "") == (l.Dest == nil) {
		return nil, errLinkTarget
	}
	switch l.Highlight {
	case "", "N", "I", "O", "P":
		// pass
	default:
		return nil, fmt.Errorf("invalid highlighting mode /%s", l.Highlight)
	}

	dict := pdfdoc.Dict{
		"Type":    pdfdoc.Name("Annot"),
		"Subtype": pdfdoc.Name("Link"),
		"Rect": pdfdoc.Array{
			pdfdoc.Real(l.Rect.LLx), pdfdoc.Real(l.Rect.LLy),
			pdfdoc.Real(l.Rect.URx), pdfdoc.Real(l.Rect.URy),
		},
		"Border":       pdfdoc.Array{pdfdoc.Integer(0), pdfdoc.Integer(0), pdfdoc.Integer(0)},
		"StructParent": l.StructParent.AsObject(),
	}
	if l.Flags != 0 {
		dict["F"] = pdfdoc.Integer(l.Flags)
	}
	if l.Contents != "" {
		dict["Contents"] = pdfdoc.TextString(l.Contents)
	}
	if l.Highlight != "" && l.Highlight != "I" {
		dict["H"] = l.Highlight
	}
	if l.URI != "" {
		dict["A"] = pdfdoc.Dict{
			"S":   pdfdoc.Name("URI"),
			"URI": pdfdoc.String(l.URI),
		}
	} else {
		dict["Dest"] = l.Dest
	}
	return dict, nil
}

// ExtractLink decodes a link annotation dictionary.  References are
// resolved using objs.
func ExtractLink(objs pdfdoc.Objects, obj pdfdoc.Object) (*Link, error) {
	dict, ok := objs.Resolve(obj).(pdfdoc.Dict)
	if !ok || dict["Subtype"] != pdfdoc.Name("Link") {
		return nil, &pdfdoc.FormatError{Err: fmt.Errorf("not a link annotation: %s", pdfdoc.Format(obj))}
	}

	l := &Link{}
	r, err := pdfdoc.GetNumbers(objs.Resolve(dict["Rect"]))
	if err != nil || len(r) != 4 {
		return nil, &pdfdoc.FormatError{Err: errors.New("link annotation: invalid /Rect")}
	}
	l.Rect = rect.Rect{
		LLx: min(r[0], r[2]),
		LLy: min(r[1], r[3]),
		URx: max(r[0], r[2]),
		URy: max(r[1], r[3]),
	}

	if action, ok := objs.Resolve(dict["A"]).(pdfdoc.Dict); ok && action["S"] == pdfdoc.Name("URI") {
		if uri, ok := objs.Resolve(action["URI"]).(pdfdoc.String); ok {
			l.URI = string(uri)
		}
	}
	l.Dest = objs.Resolve(dict["Dest"])
	if s, ok := objs.Resolve(dict["Contents"]).(pdfdoc.String); ok {
		l.Contents = s.AsTextString()
	}
	if f, ok := objs.Resolve(dict["F"]).(pdfdoc.Integer); ok {
		l.Flags = Flags(f)
	}
	if h, ok := objs.Resolve(dict["H"]).(pdfdoc.Name); ok {
		l.Highlight = h
	}
	if key, ok := dict["StructParent"].(pdfdoc.Integer); ok && key >= 0 {
		l.StructParent.Set(key)
	}
	return l, nil
}
