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
	"errors"
	"iter"

	"seehuhn.de/go/pdfdoc"
)

// ErrKeyNotFound is returned by [Lookup] if the key is not in the tree.
var ErrKeyNotFound = errors.New("key not found")

// All iterates over the entries of the number tree with the given root, in
// the order they are stored.  References are resolved using objs.
// Iteration stops at the first malformed node.
func All(objs pdfdoc.Objects, root pdfdoc.Object) iter.Seq2[pdfdoc.Integer, pdfdoc.Object] {
	return func(yield func(pdfdoc.Integer, pdfdoc.Object) bool) {
		seen := make(map[pdfdoc.Reference]bool)
		todo := []pdfdoc.Object{root}
		for len(todo) > 0 {
			node := todo[len(todo)-1]
			todo = todo[:len(todo)-1]

			if ref, ok := node.(pdfdoc.Reference); ok {
				if seen[ref] {
					return
				}
				seen[ref] = true
			}
			dict, ok := objs.Resolve(node).(pdfdoc.Dict)
			if !ok {
				return
			}

			nums, _ := objs.Resolve(dict["Nums"]).(pdfdoc.Array)
			for i := 0; i+1 < len(nums); i += 2 {
				key, ok := nums[i].(pdfdoc.Integer)
				if !ok {
					return
				}
				if !yield(key, nums[i+1]) {
					return
				}
			}

			kids, _ := objs.Resolve(dict["Kids"]).(pdfdoc.Array)
			for i := len(kids) - 1; i >= 0; i-- {
				todo = append(todo, kids[i])
			}
		}
	}
}

// Lookup returns the value stored under key in the number tree with the
// given root.  The /Limits entries of intermediate nodes are used to skip
// subtrees which cannot contain the key.
func Lookup(objs pdfdoc.Objects, root pdfdoc.Object, key pdfdoc.Integer) (pdfdoc.Object, error) {
	node, _ := objs.Resolve(root).(pdfdoc.Dict)
	for depth := 0; node != nil && depth < 32; depth++ {
		nums, _ := objs.Resolve(node["Nums"]).(pdfdoc.Array)
		for i := 0; i+1 < len(nums); i += 2 {
			if nums[i] == key {
				return nums[i+1], nil
			}
		}

		kids, _ := objs.Resolve(node["Kids"]).(pdfdoc.Array)
		var next pdfdoc.Dict
		for _, kid := range kids {
			dict, ok := objs.Resolve(kid).(pdfdoc.Dict)
			if !ok {
				continue
			}
			limits, _ := objs.Resolve(dict["Limits"]).(pdfdoc.Array)
			if len(limits) == 2 {
				lo, ok1 := limits[0].(pdfdoc.Integer)
				hi, ok2 := limits[1].(pdfdoc.Integer)
				if ok1 && ok2 && (key < lo || key > hi) {
					continue
				}
			}
			next = dict
			break
		}
		node = next
	}
	return nil, ErrKeyNotFound
}
