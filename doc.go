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

// Package pdfdoc implements the object layer of PDF files.
//
// Files are written sequentially using a [Writer].  Every object is
// numbered in allocation order and its byte offset is recorded, so that
// the cross-reference section can be emitted by [Writer.Close]:
//
//	w, err := pdfdoc.NewWriter(out, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ref := w.Alloc()
//	... write objects using w.Put() and w.PutStream() ...
//	err = w.Close(pdfdoc.Dict{"Root": catalogRef})
//
// Existing files are read completely into an [Objects] map using [Read]
// or [ReadFile].  Both classic cross-reference tables and compressed
// cross-reference streams are supported, as are object streams.  The
// objects can be modified, for example using
// [IndirectObject.AddContent], and written back using [AddObjects].
//
// The following types implement the native PDF object types.
// All of these implement the [Object] interface:
//
//	Array
//	Bool
//	Dict
//	Integer
//	Name
//	Real
//	Reference
//	String
//
// The subpackage document uses this package to produce PDF files
// containing pages of text and images.
package pdfdoc
