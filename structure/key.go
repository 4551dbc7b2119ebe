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

package structure

import "seehuhn.de/go/pdfdoc"

// Key represents a key for the parent tree.
// This is used for the /StructParent entry of annotations and the
// /StructParents entry of pages.  The zero value is an unset key.
type Key struct {
	val uint64
}

// NewKey returns a key set to v.
func NewKey(v pdfdoc.Integer) Key {
	var k Key
	k.Set(v)
	return k
}

// Get returns the value of the key, and whether the key is set.
func (k Key) Get() (pdfdoc.Integer, bool) {
	if k.val == 0 {
		return 0, false
	}
	return pdfdoc.Integer(k.val - 1), true
}

// Set sets the key to v.  Negative values are not allowed.
func (k *Key) Set(v pdfdoc.Integer) {
	if v < 0 {
		panic("key value out of range")
	}
	k.val = uint64(v) + 1
}

// Clear unsets the key.
func (k *Key) Clear() {
	k.val = 0
}

// Equal compares two Keys for equality.
func (k Key) Equal(other Key) bool {
	return k.val == other.val
}

// AsObject returns the key as a PDF integer, or nil if the key is unset.
func (k Key) AsObject() pdfdoc.Object {
	if v, ok := k.Get(); ok {
		return v
	}
	return nil
}
