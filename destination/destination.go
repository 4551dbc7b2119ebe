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

package destination

import (
	"errors"
	"math"
	"slices"

	"golang.org/x/exp/maps"

	"seehuhn.de/go/pdfdoc"
)

// Destination is an explicit destination.
type Destination interface {
	// Encode returns the destination array.
	Encode() (pdfdoc.Array, error)
}

// Unset is a sentinel value for coordinates that should retain their
// current value.  Use math.IsNaN() to test for this value.
var Unset = math.NaN()

// XYZ displays the page with coordinates (Left, Top) positioned at the
// upper-left corner of the window and contents magnified by Zoom factor.
// Use Unset for parameters that should retain their current value.
// A Zoom of 0 has the same meaning as Unset.
type XYZ struct {
	Page            pdfdoc.Reference
	Left, Top, Zoom float64
}

// Encode implements the [Destination] interface.
func (d *XYZ) Encode() (pdfdoc.Array, error) {
	for _, v := range []float64{d.Left, d.Top, d.Zoom} {
		if math.IsInf(v, 0) {
			return nil, errInfinite
		}
	}
	if d.Page.Number == 0 {
		return nil, errNoPage
	}
	return pdfdoc.Array{
		d.Page,
		pdfdoc.Name("XYZ"),
		optionalNumber(d.Left),
		optionalNumber(d.Top),
		optionalNumber(d.Zoom),
	}, nil
}

// Fit displays the page with its contents magnified just enough to fit
// the entire page within the window.
type Fit struct {
	Page pdfdoc.Reference
}

// Encode implements the [Destination] interface.
func (d *Fit) Encode() (pdfdoc.Array, error) {
	if d.Page.Number == 0 {
		return nil, errNoPage
	}
	return pdfdoc.Array{d.Page, pdfdoc.Name("Fit")}, nil
}

var (
	errInfinite = errors.New("destination coordinates must be finite or Unset")
	errNoPage   = errors.New("destination without page")
)

func optionalNumber(v float64) pdfdoc.Object {
	if math.IsNaN(v) {
		return nil
	}
	return pdfdoc.Real(v)
}

// Names collects named destinations for the /Dests dictionary of the
// document catalog.
type Names struct {
	dests map[pdfdoc.Name]Destination
}

// Add registers a named destination.  Names must be unique.
func (n *Names) Add(name pdfdoc.Name, dest Destination) error {
	if n.dests == nil {
		n.dests = make(map[pdfdoc.Name]Destination)
	}
	if _, dup := n.dests[name]; dup {
		return &pdfdoc.PreconditionError{
			Op:  "AddDestination",
			Msg: "duplicate destination name /" + string(name),
		}
	}
	n.dests[name] = dest
	return nil
}

// Len returns the number of named destinations.
func (n *Names) Len() int {
	return len(n.dests)
}

// Names returns the destination names in sorted order.
func (n *Names) Names() []pdfdoc.Name {
	names := maps.Keys(n.dests)
	slices.Sort(names)
	return names
}

// AsDict returns the /Dests dictionary, or nil if no destinations have
// been registered.
func (n *Names) AsDict() (pdfdoc.Dict, error) {
	if len(n.dests) == 0 {
		return nil, nil
	}
	res := make(pdfdoc.Dict, len(n.dests))
	for name, dest := range n.dests {
		a, err := dest.Encode()
		if err != nil {
			return nil, err
		}
		res[name] = a
	}
	return res, nil
}
