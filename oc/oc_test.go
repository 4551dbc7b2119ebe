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

package oc

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfdoc"
)

func TestGroupDict(t *testing.T) {
	g := &Group{Name: "Watermark", Visible: false, Printable: true}
	dict, err := g.AsDict()
	if err != nil {
		t.Fatal(err)
	}
	want := pdfdoc.Dict{
		"Type": pdfdoc.Name("OCG"),
		"Name": pdfdoc.String("Watermark"),
		"Usage": pdfdoc.Dict{
			"Print":  pdfdoc.Dict{"PrintState": pdfdoc.Name("ON")},
			"Export": pdfdoc.Dict{"ExportState": pdfdoc.Name("OFF")},
		},
	}
	if d := cmp.Diff(want, dict); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}

	g.Intent = []pdfdoc.Name{"View", "Design"}
	dict, err = g.AsDict()
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(pdfdoc.Array{pdfdoc.Name("View"), pdfdoc.Name("Design")}, dict["Intent"]); d != "" {
		t.Error(d)
	}

	_, err = (&Group{}).AsDict()
	if err == nil {
		t.Error("group without name accepted")
	}
}

func TestProperties(t *testing.T) {
	p := &Properties{}
	if p.AsDict() != nil {
		t.Error("empty properties gave a dictionary")
	}

	r1 := pdfdoc.NewReference(4)
	r2 := pdfdoc.NewReference(9)
	p.Add(r1, &Group{Name: "a", Visible: true})
	p.Add(r2, &Group{Name: "b"})

	dict := p.AsDict()
	if d := cmp.Diff(pdfdoc.Array{r1, r2}, dict["OCGs"]); d != "" {
		t.Error(d)
	}
	config := dict["D"].(pdfdoc.Dict)
	if d := cmp.Diff(pdfdoc.Array{r1}, config["ON"]); d != "" {
		t.Error(d)
	}
	if d := cmp.Diff(pdfdoc.Array{r2}, config["OFF"]); d != "" {
		t.Error(d)
	}
	if len(config["AS"].(pdfdoc.Array)) != 2 {
		t.Errorf("wrong /AS %v", config["AS"])
	}
}
