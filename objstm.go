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
	"fmt"
	"log/slog"
	"strconv"

	"seehuhn.de/go/pdfdoc/codec"
)

// getFromObjectStream returns an object stored in an object stream.
func (r *reader) getFromObjectStream(number int, entry xRefEntry) (*IndirectObject, error) {
	contents, err := r.expandObjectStream(entry.InStream)
	if err != nil {
		return nil, err
	}
	obj := contents[number]
	if obj == nil {
		return nil, &FormatError{
			Err: fmt.Errorf("object %d not found in object stream %d", number, entry.InStream),
		}
	}
	return obj, nil
}

// expandObjectStream parses all objects contained in an object stream.
// The result is cached.
func (r *reader) expandObjectStream(number int) (Objects, error) {
	if res, ok := r.objStm[number]; ok {
		return res, nil
	}

	stm, err := r.get(number)
	if err != nil {
		return nil, err
	}
	if stm == nil || stm.Stream == nil || stm.GetValue("Type") != Name("ObjStm") {
		return nil, &FormatError{Err: fmt.Errorf("object %d is not an object stream", number)}
	}
	r.structural[number] = true

	res, err := parseObjectStream(stm)
	if err != nil {
		return nil, err
	}
	r.objStm[number] = res
	return res, nil
}

// parseObjectStream splits the decoded body of an object stream into the
// contained objects.  The header of the body lists pairs of object
// numbers and offsets relative to /First.
func parseObjectStream(stm *IndirectObject) (Objects, error) {
	n, ok1 := stm.GetValue("N").(Integer)
	first, ok2 := stm.GetValue("First").(Integer)
	data := stm.Data
	if !ok1 || !ok2 || n < 0 || first < 0 || int(first) > len(data) {
		return nil, &FormatError{Err: fmt.Errorf("object stream %d: invalid /N or /First", stm.Number)}
	}

	header, err := Tokenize(data[:first])
	if err != nil {
		return nil, err
	}
	if len(header) < 2*int(n) {
		return nil, &FormatError{Err: fmt.Errorf("object stream %d: header too short", stm.Number)}
	}

	numbers := make([]int, n)
	offsets := make([]int, n+1)
	for i := range int(n) {
		a, err1 := strconv.Atoi(header[2*i].Text)
		b, err2 := strconv.Atoi(header[2*i+1].Text)
		if err1 != nil || err2 != nil || a <= 0 || b < 0 || int(first)+b > len(data) {
			return nil, &FormatError{Err: fmt.Errorf("object stream %d: malformed header", stm.Number)}
		}
		numbers[i] = a
		offsets[i] = int(first) + b
	}
	offsets[n] = len(data)

	res := make(Objects, n)
	for i, number := range numbers {
		end := offsets[i+1]
		if end < offsets[i] {
			end = len(data)
		}
		p := &parser{lex: newLexer(data[:end], offsets[i])}
		value, err := p.readObject()
		if err != nil {
			return nil, fmt.Errorf("object stream %d: %w", stm.Number, err)
		}
		if _, seen := res[number]; !seen {
			res[number] = &IndirectObject{Number: number, Value: value}
		}
	}
	return res, nil
}

// flushObjectStream packs all pending objects into a new object stream.
func (pdf *Writer) flushObjectStream() error {
	if len(pdf.pending) == 0 {
		return nil
	}
	pending := pdf.pending
	pdf.pending = nil

	header := &bytes.Buffer{}
	body := &bytes.Buffer{}
	for i, p := range pending {
		if i > 0 {
			header.WriteByte(' ')
			body.WriteByte('\n')
		}
		fmt.Fprintf(header, "%d %d", p.ref.Number, body.Len())
		err := writeObject(body, p.obj)
		if err != nil {
			return err
		}
	}
	header.WriteByte('\n')
	first := header.Len()
	header.Write(body.Bytes())

	ref := pdf.Alloc()
	dict := Dict{
		"Type":   Name("ObjStm"),
		"N":      Integer(len(pending)),
		"First":  Integer(first),
		"Filter": Name("FlateDecode"),
	}
	err := pdf.PutStream(ref, dict, codec.Compress(header.Bytes()))
	if err != nil {
		return err
	}

	for i, p := range pending {
		pdf.xref[p.ref.Number-1] = xRefEntry{Pos: int64(i), InStream: ref.Number}
	}
	pdf.log.Debug("object stream written",
		slog.Int("obj", ref.Number),
		slog.Int("objects", len(pending)))
	return nil
}
