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
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/bits-and-blooms/bitset"

	"seehuhn.de/go/pdfdoc/codec"
	"seehuhn.de/go/pdfdoc/internal/docid"
)

// AddObjects writes a complete PDF file containing objs.  Object numbers
// are preserved.  Unused numbers below the largest object number are
// written as null objects, so that every number has an offset in the
// cross-reference table.
//
// The document catalog is the lowest numbered object with /Type /Catalog.
// If there is none, a catalog pointing to the root of the page tree is
// added using the next free object number.
func AddObjects(w io.Writer, objs Objects, opt *WriterOptions) error {
	return writeObjects(w, objs, nil, opt)
}

// Write writes the file to w.  The /Root, /Info and /ID entries of the
// trailer are preserved.
func (f *File) Write(w io.Writer, opt *WriterOptions) error {
	return writeObjects(w, f.Objects, f.Trailer, opt)
}

func writeObjects(w io.Writer, objs Objects, trailer Dict, opt *WriterOptions) error {
	maxNum := objs.Max()

	var root Reference
	var catalog Dict
	if ref, ok := trailer["Root"].(Reference); ok && objs[ref.Number].Dict() != nil {
		root = ref
	} else if obj := objs.findType("Catalog"); obj != nil {
		root = NewReference(obj.Number)
	} else {
		pages := objs.pageTreeRoot()
		if pages == nil {
			return &PreconditionError{Op: "AddObjects", Msg: "no document catalog and no page tree"}
		}
		maxNum++
		root = NewReference(maxNum)
		catalog = Dict{
			"Type":  Name("Catalog"),
			"Pages": NewReference(pages.Number),
		}
	}

	pdf, err := NewWriter(w, opt)
	if err != nil {
		return err
	}

	present := bitset.New(uint(maxNum + 1))
	for n, obj := range objs {
		if n > 0 && obj != nil {
			present.Set(uint(n))
		}
	}

	gaps := 0
	for n := 1; n <= maxNum; n++ {
		ref := pdf.Alloc()
		switch {
		case ref == root && catalog != nil:
			err = pdf.Put(ref, catalog)
		case !present.Test(uint(n)):
			gaps++
			err = pdf.Put(ref, nil)
		default:
			obj := objs[n]
			if obj.Stream != nil || obj.Data != nil {
				err = putStream(pdf, ref, obj)
			} else {
				err = pdf.Put(ref, obj.Value)
			}
		}
		if err != nil {
			return err
		}
	}
	if gaps > 0 {
		pdf.log.Debug("unused object numbers filled", slog.Int("count", gaps))
	}

	out := Dict{"Root": root}
	if ref, ok := trailer["Info"].(Reference); ok && objs[ref.Number] != nil {
		out["Info"] = ref
	}
	now := []byte(time.Now().Format(time.RFC3339Nano))
	id := docid.New([]byte(strconv.Itoa(maxNum)), now)
	first := String(id)
	if old, ok := trailer["ID"].(Array); ok && len(old) == 2 {
		if s, ok := old[0].(String); ok {
			first = s
		}
	}
	out["ID"] = Array{first, String(id)}

	return pdf.Close(out)
}

// putStream writes a stream object.  Objects which only carry decoded
// Data, for example new streams added by the caller, are compressed.
func putStream(pdf *Writer, ref Reference, obj *IndirectObject) error {
	dict := obj.Dict()
	if dict == nil {
		return &PreconditionError{
			Op:  "AddObjects",
			Msg: "stream object " + strconv.Itoa(obj.Number) + " has no dictionary",
		}
	}
	if obj.Stream != nil {
		return pdf.PutStream(ref, dict, obj.Stream)
	}

	dict = dict.Clone()
	dict["Filter"] = Name("FlateDecode")
	delete(dict, "DecodeParms")
	return pdf.PutStream(ref, dict, codec.Compress(obj.Data))
}
