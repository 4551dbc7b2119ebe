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
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfdoc"
)

func TestEncode(t *testing.T) {
	page := pdfdoc.NewReference(5)
	cases := []struct {
		dest Destination
		want string
	}{
		{&XYZ{Page: page, Left: 0, Top: 792, Zoom: Unset}, "[5 0 R /XYZ 0 792 null]"},
		{&XYZ{Page: page, Left: Unset, Top: Unset, Zoom: 1.5}, "[5 0 R /XYZ null null 1.5]"},
		{&Fit{Page: page}, "[5 0 R /Fit]"},
	}
	for _, test := range cases {
		a, err := test.dest.Encode()
		if err != nil {
			t.Fatal(err)
		}
		if got := pdfdoc.Format(a); got != test.want {
			t.Errorf("got %q, want %q", got, test.want)
		}
	}

	_, err := (&XYZ{Page: page, Top: math.Inf(1)}).Encode()
	if err == nil {
		t.Error("infinite coordinate accepted")
	}
	_, err = (&Fit{}).Encode()
	if err == nil {
		t.Error("destination without page accepted")
	}
}

func TestNames(t *testing.T) {
	n := &Names{}
	d, err := n.AsDict()
	if d != nil || err != nil {
		t.Errorf("empty Names gave %v, %v", d, err)
	}

	p1 := pdfdoc.NewReference(3)
	p2 := pdfdoc.NewReference(8)
	err = n.Add("intro", &XYZ{Page: p1, Top: 700, Left: Unset, Zoom: Unset})
	if err != nil {
		t.Fatal(err)
	}
	err = n.Add("appendix", &Fit{Page: p2})
	if err != nil {
		t.Fatal(err)
	}
	err = n.Add("intro", &Fit{Page: p2})
	var pErr *pdfdoc.PreconditionError
	if !errors.As(err, &pErr) {
		t.Errorf("duplicate name: %v", err)
	}

	if d := cmp.Diff([]pdfdoc.Name{"appendix", "intro"}, n.Names()); d != "" {
		t.Error(d)
	}
	dict, err := n.AsDict()
	if err != nil {
		t.Fatal(err)
	}
	want := pdfdoc.Dict{
		"intro":    pdfdoc.Array{p1, pdfdoc.Name("XYZ"), nil, pdfdoc.Real(700), nil},
		"appendix": pdfdoc.Array{p2, pdfdoc.Name("Fit")},
	}
	if d := cmp.Diff(want, dict); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}
