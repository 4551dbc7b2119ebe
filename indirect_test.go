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
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"
)

func TestGetValue(t *testing.T) {
	obj := &IndirectObject{Number: 3, Value: Dict{
		"Type":     Name("Page"),
		"Contents": Array{NewReference(4), Integer(7), NewReference(5)},
		"Parent":   NewReference(2),
	}}
	if obj.GetValue("Type") != Name("Page") {
		t.Errorf("wrong /Type %v", obj.GetValue("Type"))
	}
	if obj.GetValue("Missing") != nil {
		t.Error("missing key found")
	}
	if d := cmp.Diff([]int{4, 5}, obj.GetObjectNumbers("Contents")); d != "" {
		t.Error(d)
	}
	if d := cmp.Diff([]int{2}, obj.GetObjectNumbers("Parent")); d != "" {
		t.Error(d)
	}
	if obj.GetObjectNumbers("Type") != nil {
		t.Error("numbers found in a name")
	}

	notDict := &IndirectObject{Number: 1, Value: Integer(1)}
	if notDict.GetValue("Type") != nil {
		t.Error("value found in a non-dictionary")
	}
}

func TestAddContentObject(t *testing.T) {
	cases := []struct {
		before Object
		after  Object
	}{
		{nil, Array{NewReference(9)}},
		{NewReference(4), Array{NewReference(4), NewReference(9)}},
		{Array{NewReference(4), NewReference(5)}, Array{NewReference(4), NewReference(5), NewReference(9)}},
	}
	for _, test := range cases {
		page := &IndirectObject{Number: 3, Value: Dict{"Type": Name("Page")}}
		if test.before != nil {
			page.Dict()["Contents"] = test.before
		}
		err := page.AddContentObject(9)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(test.after, page.GetValue("Contents")); d != "" {
			t.Errorf("%v: (-want +got)\n%s", test.before, d)
		}
	}

	page := &IndirectObject{Number: 3, Value: Dict{"Contents": Name("x")}}
	err := page.AddContentObject(9)
	var pErr *PreconditionError
	if !errors.As(err, &pErr) {
		t.Errorf("invalid /Contents accepted: %v", err)
	}
}

func TestAddContent(t *testing.T) {
	objs := Objects{
		3: {Number: 3, Value: Dict{"Type": Name("Page"), "Contents": NewReference(4)}},
		4: {Number: 4, Value: Dict{}, Stream: []byte("q Q"), Data: []byte("q Q")},
	}
	page := objs[3]
	n, err := page.AddContent([]byte("BT (Stamp) Tj ET"), objs)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("new object numbered %d", n)
	}
	if d := cmp.Diff([]int{4, 5}, page.GetObjectNumbers("Contents")); d != "" {
		t.Error(d)
	}

	stream := objs[5]
	if stream.GetValue("Filter") != Name("FlateDecode") {
		t.Errorf("wrong filter %v", stream.GetValue("Filter"))
	}
	if stream.GetValue("Length") != Integer(len(stream.Stream)) {
		t.Errorf("wrong length %v", stream.GetValue("Length"))
	}
	if !bytes.Equal(stream.Data, []byte("BT (Stamp) Tj ET")) {
		t.Errorf("wrong data %q", stream.Data)
	}
}

func TestAddContentIndirectArray(t *testing.T) {
	objs := Objects{
		3: {Number: 3, Value: Dict{"Type": Name("Page"), "Contents": NewReference(6)}},
		4: {Number: 4, Value: Dict{}, Stream: []byte("q"), Data: []byte("q")},
		5: {Number: 5, Value: Dict{}, Stream: []byte("Q"), Data: []byte("Q")},
		6: {Number: 6, Value: Array{NewReference(4), NewReference(5)}},
	}
	page := objs[3]
	n, err := page.AddContent([]byte("BT (Stamp) Tj ET"), objs)
	if err != nil {
		t.Fatal(err)
	}

	if page.GetValue("Contents") != NewReference(6) {
		t.Errorf("/Contents changed to %v", page.GetValue("Contents"))
	}
	want := Array{NewReference(4), NewReference(5), NewReference(n)}
	if d := cmp.Diff(want, objs[6].Value); d != "" {
		t.Errorf("wrong contents array (-want +got)\n%s", d)
	}
}

func TestAddFontResource(t *testing.T) {
	font := Dict{"Type": Name("Font"), "Subtype": Name("Type1"), "BaseFont": Name("Courier")}

	t.Run("direct", func(t *testing.T) {
		objs := Objects{
			1: {Number: 1, Value: Dict{
				"Type":      Name("Page"),
				"Resources": Dict{"Font": Dict{"F1": NewReference(7)}},
			}},
			7: {Number: 7, Value: Dict{}},
		}
		n, err := objs[1].AddFontResource("F2", font, objs)
		if err != nil {
			t.Fatal(err)
		}
		if n != 8 {
			t.Errorf("font numbered %d", n)
		}
		fonts := objs[1].GetValue("Resources").(Dict)["Font"].(Dict)
		want := Dict{"F1": NewReference(7), "F2": NewReference(8)}
		if d := cmp.Diff(want, fonts); d != "" {
			t.Error(d)
		}
	})

	t.Run("indirect", func(t *testing.T) {
		objs := Objects{
			1: {Number: 1, Value: Dict{"Type": Name("Page"), "Resources": NewReference(2)}},
			2: {Number: 2, Value: Dict{"Font": NewReference(3)}},
			3: {Number: 3, Value: Dict{}},
		}
		_, err := objs[1].AddFontResource("F1", font, objs)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(Dict{"F1": NewReference(4)}, objs[3].Value); d != "" {
			t.Error(d)
		}
		if d := cmp.Diff(font, objs[4].Value); d != "" {
			t.Error(d)
		}
	})

	t.Run("inherited", func(t *testing.T) {
		shared := Dict{"ProcSet": Array{Name("PDF")}}
		objs := Objects{
			1: {Number: 1, Value: Dict{"Type": Name("Pages"), "Resources": shared}},
			2: {Number: 2, Value: Dict{"Type": Name("Page"), "Parent": NewReference(1)}},
		}
		_, err := objs[2].AddFontResource("F1", font, objs)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := shared["Font"]; ok {
			t.Error("inherited resources were modified")
		}
		res := objs[2].GetValue("Resources").(Dict)
		if res["ProcSet"] == nil || res["Font"] == nil {
			t.Errorf("wrong resources %v", res)
		}
	})
}

func TestMediaBox(t *testing.T) {
	objs := Objects{
		1: {Number: 1, Value: Dict{
			"Type":     Name("Pages"),
			"MediaBox": Array{Integer(0), Integer(0), Real(595.5), Integer(842)},
		}},
		2: {Number: 2, Value: Dict{"Type": Name("Page"), "Parent": NewReference(1)}},
		3: {Number: 3, Value: Dict{
			"Type":     Name("Page"),
			"Parent":   NewReference(1),
			"MediaBox": Array{Integer(100), Integer(200), Integer(0), Integer(0)},
		}},
		4: {Number: 4, Value: Dict{"Type": Name("Page")}},
	}

	box, err := objs[2].MediaBox(objs)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(rect.Rect{URx: 595.5, URy: 842}, box); d != "" {
		t.Error(d)
	}

	box, err = objs[3].MediaBox(objs)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(rect.Rect{URx: 100, URy: 200}, box); d != "" {
		t.Error(d)
	}

	_, err = objs[4].MediaBox(objs)
	if err == nil {
		t.Error("missing media box not detected")
	}
}

func TestResolve(t *testing.T) {
	objs := Objects{
		1: {Number: 1, Value: NewReference(2)},
		2: {Number: 2, Value: Integer(42)},
		3: {Number: 3, Value: NewReference(4)},
		4: {Number: 4, Value: NewReference(3)},
	}
	if got := objs.Resolve(NewReference(1)); got != Integer(42) {
		t.Errorf("got %v", got)
	}
	if got := objs.Resolve(NewReference(3)); got != nil {
		t.Errorf("reference loop resolved to %v", got)
	}
	if got := objs.Resolve(NewReference(99)); got != nil {
		t.Errorf("missing object resolved to %v", got)
	}
	if got := objs.Resolve(Name("x")); got != Name("x") {
		t.Errorf("direct object resolved to %v", got)
	}
}
