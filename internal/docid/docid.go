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

// Package docid generates the file identifiers stored in the /ID entry
// of a PDF trailer.
package docid

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/salsa20"
)

// Size is the length of an identifier in bytes.
const Size = 16

// New returns an identifier derived from the given seed data.  Equal
// seeds give equal identifiers.
//
// The seed is hashed into a Salsa20 key, and the identifier is the start
// of the resulting key stream.
func New(seed ...[]byte) []byte {
	h := sha256.New()
	for _, s := range seed {
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:])
		h.Write(s)
	}
	var key [32]byte
	copy(key[:], h.Sum(nil))

	var nonce [8]byte
	out := make([]byte, Size)
	salsa20.XORKeyStream(out, out, nonce[:], &key)
	return out
}
