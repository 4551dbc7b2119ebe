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

// maxChildren is the maximum number of children of a node, when writing
// a number tree.
const maxChildren = 64

type entry struct {
	key   pdfdoc.Integer
	value pdfdoc.Object
}

type nodeInfo struct {
	ref    pdfdoc.Reference
	depth  int
	minKey pdfdoc.Integer
	maxKey pdfdoc.Integer
}

type treeWriter struct {
	w           *pdfdoc.Writer
	tail        []*nodeInfo // completed nodes, at decreasing depths
	pendingLeaf []entry
	lastKey     pdfdoc.Integer
	hasEntries  bool
}

// Write creates a number tree in the PDF file.
// The iterator data provides the key-value pairs.  The keys must be
// returned in sorted order, and must not contain duplicates.
// The return value is the reference to the root node.
func Write(w *pdfdoc.Writer, data iter.Seq2[pdfdoc.Integer, pdfdoc.Object]) (pdfdoc.Reference, error) {
	root := w.Alloc()
	err := WriteAt(w, root, data)
	if err != nil {
		return pdfdoc.Reference{}, err
	}
	return root, nil
}

// WriteAt is like [Write], but stores the root node under a previously
// allocated reference.  This allows other objects to refer to the tree
// before it is written.
func WriteAt(w *pdfdoc.Writer, root pdfdoc.Reference, data iter.Seq2[pdfdoc.Integer, pdfdoc.Object]) error {
	tw := &treeWriter{w: w}
	for key, value := range data {
		err := tw.addEntry(key, value)
		if err != nil {
			return err
		}
	}
	return tw.finish(root)
}

func (tw *treeWriter) addEntry(key pdfdoc.Integer, value pdfdoc.Object) error {
	if tw.hasEntries && key <= tw.lastKey {
		return errors.New("keys must be in sorted order")
	}
	tw.lastKey = key
	tw.hasEntries = true

	tw.pendingLeaf = append(tw.pendingLeaf, entry{key: key, value: value})
	if len(tw.pendingLeaf) >= maxChildren {
		return tw.completePendingLeaf()
	}
	return nil
}

func (tw *treeWriter) completePendingLeaf() error {
	if len(tw.pendingLeaf) == 0 {
		return nil
	}
	leaf := tw.pendingLeaf
	tw.pendingLeaf = nil

	ref := tw.w.Alloc()
	node := pdfdoc.Dict{
		"Nums":   numsArray(leaf),
		"Limits": pdfdoc.Array{leaf[0].key, leaf[len(leaf)-1].key},
	}
	err := tw.w.Put(ref, node)
	if err != nil {
		return err
	}

	tw.tail = append(tw.tail, &nodeInfo{
		ref:    ref,
		minKey: leaf[0].key,
		maxKey: leaf[len(leaf)-1].key,
	})
	return tw.mergeTail()
}

// mergeTail combines runs of maxChildren nodes of equal depth into a new
// intermediate node.
func (tw *treeWriter) mergeTail() error {
	for {
		n := len(tw.tail)
		if n < maxChildren || tw.tail[n-1].depth != tw.tail[n-maxChildren].depth {
			return nil
		}
		err := tw.mergeNodes(n - maxChildren)
		if err != nil {
			return err
		}
	}
}

// mergeNodes replaces all nodes from start to the end of the tail by a
// new intermediate node.
func (tw *treeWriter) mergeNodes(start int) error {
	children := tw.tail[start:]
	ref := tw.w.Alloc()
	node := pdfdoc.Dict{
		"Kids":   kidsArray(children),
		"Limits": pdfdoc.Array{children[0].minKey, children[len(children)-1].maxKey},
	}
	err := tw.w.Put(ref, node)
	if err != nil {
		return err
	}

	merged := &nodeInfo{
		ref:    ref,
		depth:  children[0].depth + 1,
		minKey: children[0].minKey,
		maxKey: children[len(children)-1].maxKey,
	}
	tw.tail = append(tw.tail[:start], merged)
	return nil
}

// finish writes the root node.  The root has no /Limits entry.
func (tw *treeWriter) finish(root pdfdoc.Reference) error {
	if len(tw.tail) == 0 {
		// small trees consist of a single root node with /Nums
		return tw.w.Put(root, pdfdoc.Dict{"Nums": numsArray(tw.pendingLeaf)})
	}

	err := tw.completePendingLeaf()
	if err != nil {
		return err
	}

	// The depths in the tail are non-increasing and every depth occurs
	// fewer than maxChildren times, so the tail is short.  If needed,
	// merge the nodes of the smallest depth until the root can hold
	// all remaining nodes.
	for len(tw.tail) > maxChildren {
		start := len(tw.tail) - 1
		for start > 0 && tw.tail[start-1].depth == tw.tail[start].depth {
			start--
		}
		err := tw.mergeNodes(start)
		if err != nil {
			return err
		}
	}

	return tw.w.Put(root, pdfdoc.Dict{"Kids": kidsArray(tw.tail)})
}

func numsArray(entries []entry) pdfdoc.Array {
	nums := make(pdfdoc.Array, 0, 2*len(entries))
	for _, e := range entries {
		nums = append(nums, e.key, e.value)
	}
	return nums
}

func kidsArray(nodes []*nodeInfo) pdfdoc.Array {
	kids := make(pdfdoc.Array, len(nodes))
	for i, node := range nodes {
		kids[i] = node.ref
	}
	return kids
}
