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

package numtree

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfdoc"
)

// writeTree writes a number tree with n entries, mapping i to 10*i, and
// reads the file back.
func writeTree(t *testing.T, n int) (*pdfdoc.File, pdfdoc.Reference) {
	t.Helper()

	buf := &bytes.Buffer{}
	w, err := pdfdoc.NewWriter(buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	catalog := w.Alloc()

	data := func(yield func(pdfdoc.Integer, pdfdoc.Object) bool) {
		for i := range n {
			if !yield(pdfdoc.Integer(i), pdfdoc.Integer(10*i)) {
				return
			}
		}
	}
	root, err := Write(w, data)
	if err != nil {
		t.Fatal(err)
	}
	err = w.Put(catalog, pdfdoc.Dict{"Type": pdfdoc.Name("Catalog"), "PageLabels": root})
	if err != nil {
		t.Fatal(err)
	}
	err = w.Close(pdfdoc.Dict{"Root": catalog})
	if err != nil {
		t.Fatal(err)
	}

	f, err := pdfdoc.Parse(buf.Bytes(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return f, root
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 5, 63, 64, 65, 64 * 64, 64*64 + 1, 10000} {
		f, root := writeTree(t, n)

		var keys []pdfdoc.Integer
		for key, value := range All(f.Objects, root) {
			if value != 10*key {
				t.Fatalf("n=%d: wrong value %v for key %d", n, value, key)
			}
			keys = append(keys, key)
		}
		if len(keys) != n {
			t.Fatalf("n=%d: %d keys found", n, len(keys))
		}
		if !slices.IsSorted(keys) {
			t.Errorf("n=%d: keys not sorted", n)
		}

		for _, key := range []int{0, n / 2, n - 1} {
			if key < 0 || key >= n {
				continue
			}
			val, err := Lookup(f.Objects, root, pdfdoc.Integer(key))
			if err != nil {
				t.Errorf("n=%d: key %d: %s", n, key, err)
			} else if val != pdfdoc.Integer(10*key) {
				t.Errorf("n=%d: key %d: got %v", n, key, val)
			}
		}
		_, err := Lookup(f.Objects, root, pdfdoc.Integer(n))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("n=%d: missing key found: %v", n, err)
		}
	}
}

func TestRootHasNoLimits(t *testing.T) {
	for _, n := range []int{3, 200} {
		f, root := writeTree(t, n)
		if f.Objects[root.Number].GetValue("Limits") != nil {
			t.Errorf("n=%d: root has /Limits", n)
		}
		for _, kid := range f.Objects[root.Number].GetObjectNumbers("Kids") {
			if f.Objects[kid].GetValue("Limits") == nil {
				t.Errorf("n=%d: node %d has no /Limits", n, kid)
			}
		}
	}
}

func TestUnsorted(t *testing.T) {
	w, err := pdfdoc.NewWriter(&bytes.Buffer{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, keys := range [][]pdfdoc.Integer{{2, 1}, {1, 1}} {
		_, err = Write(w, func(yield func(pdfdoc.Integer, pdfdoc.Object) bool) {
			for _, k := range keys {
				if !yield(k, pdfdoc.Name("x")) {
					return
				}
			}
		})
		if err == nil {
			t.Errorf("keys %v accepted", keys)
		}
	}
}

func TestAllOrder(t *testing.T) {
	objs := pdfdoc.Objects{
		1: {Number: 1, Value: pdfdoc.Dict{"Kids": pdfdoc.Array{pdfdoc.NewReference(2), pdfdoc.NewReference(3)}}},
		2: {Number: 2, Value: pdfdoc.Dict{
			"Limits": pdfdoc.Array{pdfdoc.Integer(1), pdfdoc.Integer(2)},
			"Nums":   pdfdoc.Array{pdfdoc.Integer(1), pdfdoc.Name("one"), pdfdoc.Integer(2), pdfdoc.Name("two")},
		}},
		3: {Number: 3, Value: pdfdoc.Dict{
			"Limits": pdfdoc.Array{pdfdoc.Integer(7), pdfdoc.Integer(7)},
			"Nums":   pdfdoc.Array{pdfdoc.Integer(7), pdfdoc.Name("seven")},
		}},
	}
	got := map[pdfdoc.Integer]pdfdoc.Object{}
	var order []pdfdoc.Integer
	for k, v := range All(objs, pdfdoc.NewReference(1)) {
		got[k] = v
		order = append(order, k)
	}
	want := map[pdfdoc.Integer]pdfdoc.Object{
		1: pdfdoc.Name("one"),
		2: pdfdoc.Name("two"),
		7: pdfdoc.Name("seven"),
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Error(d)
	}
	if d := cmp.Diff([]pdfdoc.Integer{1, 2, 7}, order); d != "" {
		t.Error(d)
	}

	val, err := Lookup(objs, pdfdoc.NewReference(1), 7)
	if err != nil || val != pdfdoc.Name("seven") {
		t.Errorf("Lookup(7) = %v, %v", val, err)
	}
}
