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

// Package oc implements optional content groups.
//
// Content on a page can be made optional by enclosing it in a marked
// content sequence tagged /OC, which refers to a [Group] through the
// /Properties resource dictionary.  Viewers let the user switch groups on
// and off.  The default state of all groups is described by the
// /OCProperties entry of the document catalog, see [Properties].
package oc

import (
	"errors"

	"seehuhn.de/go/pdfdoc"
)

// Group represents an optional content group.
type Group struct {
	// Name is shown in the user interface of viewers.
	Name string

	// Intent represents the intended use of the group.
	// If empty, the intent is /View.
	Intent []pdfdoc.Name

	// Visible is the initial state of the group when viewed on screen.
	Visible bool

	// Printable controls whether the content is printed.
	Printable bool

	// Exportable controls whether the content is included when the
	// document is exported to another format.
	Exportable bool
}

var errNoName = errors.New("optional content group without name")

// AsDict returns the optional content group dictionary.
func (g *Group) AsDict() (pdfdoc.Dict, error) {
	if g.Name == "" {
		return nil, errNoName
	}

	dict := pdfdoc.Dict{
		"Type": pdfdoc.Name("OCG"),
		"Name": pdfdoc.TextString(g.Name),
		"Usage": pdfdoc.Dict{
			"Print":  pdfdoc.Dict{"PrintState": onOff(g.Printable)},
			"Export": pdfdoc.Dict{"ExportState": onOff(g.Exportable)},
		},
	}
	switch len(g.Intent) {
	case 0:
		// use default
	case 1:
		dict["Intent"] = g.Intent[0]
	default:
		a := make(pdfdoc.Array, len(g.Intent))
		for i, intent := range g.Intent {
			a[i] = intent
		}
		dict["Intent"] = a
	}
	return dict, nil
}

func onOff(on bool) pdfdoc.Name {
	if on {
		return "ON"
	}
	return "OFF"
}

// Properties collects the optional content groups of a document.
type Properties struct {
	refs   []pdfdoc.Reference
	groups []*Group
}

// Add registers a group, which has been written to the file as the
// object ref.
func (p *Properties) Add(ref pdfdoc.Reference, g *Group) {
	p.refs = append(p.refs, ref)
	p.groups = append(p.groups, g)
}

// Len returns the number of registered groups.
func (p *Properties) Len() int {
	return len(p.refs)
}

// AsDict returns the /OCProperties dictionary for the document catalog,
// or nil if no groups have been registered.  The usage application
// dictionaries in /AS make viewers apply the print and export states of
// the groups automatically.
func (p *Properties) AsDict() pdfdoc.Dict {
	if len(p.refs) == 0 {
		return nil
	}

	all := make(pdfdoc.Array, len(p.refs))
	var on, off pdfdoc.Array
	for i, ref := range p.refs {
		all[i] = ref
		if p.groups[i].Visible {
			on = append(on, ref)
		} else {
			off = append(off, ref)
		}
	}

	config := pdfdoc.Dict{
		"Name":      pdfdoc.String("Default"),
		"BaseState": pdfdoc.Name("ON"),
		"Order":     all,
		"AS": pdfdoc.Array{
			pdfdoc.Dict{
				"Event":    pdfdoc.Name("Print"),
				"Category": pdfdoc.Array{pdfdoc.Name("Print")},
				"OCGs":     all,
			},
			pdfdoc.Dict{
				"Event":    pdfdoc.Name("Export"),
				"Category": pdfdoc.Array{pdfdoc.Name("Export")},
				"OCGs":     all,
			},
		},
	}
	if on != nil {
		config["ON"] = on
	}
	if off != nil {
		config["OFF"] = off
	}

	return pdfdoc.Dict{
		"OCGs": all,
		"D":    config,
	}
}
