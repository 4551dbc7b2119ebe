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
	"fmt"
	"io"
	"math/bits"
	"strconv"

	"seehuhn.de/go/pdfdoc/codec"
	"seehuhn.de/go/pdfdoc/internal/filter/predict"
)

type xRefEntry struct {
	// Pos is the byte offset of the object, or -1 for free objects.
	Pos int64

	// InStream is the number of the object stream containing the object,
	// or 0 if the object is stored directly.  For objects in a stream, Pos
	// is the index within the stream.
	InStream int
}

func (entry xRefEntry) IsFree() bool {
	return entry.InStream == 0 && entry.Pos < 0
}

func (pdf *Writer) writeXRefTable(trailer Dict) (int64, error) {
	xRefPos := pdf.w.pos
	n := len(pdf.xref)

	_, err := fmt.Fprintf(pdf.w, "xref\n0 %d\n", n+1)
	if err != nil {
		return 0, err
	}
	_, err = io.WriteString(pdf.w, "0000000000 65535 f \n")
	if err != nil {
		return 0, err
	}
	for _, entry := range pdf.xref {
		if entry.InStream != 0 {
			return 0, errors.New("object streams require a cross-reference stream")
		}
		if entry.Pos >= 0 {
			_, err = fmt.Fprintf(pdf.w, "%010d 00000 n \n", entry.Pos)
		} else {
			_, err = io.WriteString(pdf.w, "0000000000 65535 f \n")
		}
		if err != nil {
			return 0, err
		}
	}

	trailer["Size"] = Integer(n + 1)
	_, err = io.WriteString(pdf.w, "trailer\n")
	if err != nil {
		return 0, err
	}
	err = trailer.PDF(pdf.w)
	if err != nil {
		return 0, err
	}
	_, err = io.WriteString(pdf.w, "\n")
	return xRefPos, err
}

func (pdf *Writer) writeXRefStream(trailer Dict) (int64, error) {
	// The cross-reference stream describes itself.
	ref := pdf.Alloc()
	xRefPos := pdf.w.pos
	pdf.xref[ref.Number-1] = xRefEntry{Pos: xRefPos}

	n := len(pdf.xref)
	maxField2 := uint64(0)
	maxField3 := uint64(0)
	for _, entry := range pdf.xref {
		if entry.InStream != 0 {
			maxField2 = max(maxField2, uint64(entry.InStream))
			maxField3 = max(maxField3, uint64(entry.Pos))
		} else if entry.Pos >= 0 {
			maxField2 = max(maxField2, uint64(entry.Pos))
		}
	}
	w2 := max((bits.Len64(maxField2)+7)/8, 1)
	w3 := max((bits.Len64(maxField3)+7)/8, 1)
	columns := 1 + w2 + w3

	data := &bytes.Buffer{}
	data.Grow((n + 1) * columns)
	data.WriteByte(0)
	encodeInt(data, 0, w2)
	encodeInt(data, 0, w3)
	for _, entry := range pdf.xref {
		switch {
		case entry.InStream != 0:
			data.WriteByte(2)
			encodeInt(data, uint64(entry.InStream), w2)
			encodeInt(data, uint64(entry.Pos), w3)
		case entry.Pos >= 0:
			data.WriteByte(1)
			encodeInt(data, uint64(entry.Pos), w2)
			encodeInt(data, 0, w3)
		default:
			data.WriteByte(0)
			encodeInt(data, 0, w2)
			encodeInt(data, 0, w3)
		}
	}

	rows, err := predict.EncodeUp(data.Bytes(), columns)
	if err != nil {
		return 0, err
	}

	trailer["Type"] = Name("XRef")
	trailer["Size"] = Integer(n + 1)
	trailer["W"] = Array{Integer(1), Integer(w2), Integer(w3)}
	trailer["Filter"] = Name("FlateDecode")
	trailer["DecodeParms"] = Dict{
		"Predictor": Integer(12),
		"Columns":   Integer(columns),
	}

	// written by hand, since Begin would record a second offset
	pdf.written.Set(uint(ref.Number))
	body := codec.Compress(rows)
	trailer["Length"] = Integer(len(body))
	_, err = fmt.Fprintf(pdf.w, "%d 0 obj\n", ref.Number)
	if err != nil {
		return 0, err
	}
	err = trailer.PDF(pdf.w)
	if err != nil {
		return 0, err
	}
	_, err = io.WriteString(pdf.w, "\nstream\n")
	if err != nil {
		return 0, err
	}
	_, err = pdf.w.Write(body)
	if err != nil {
		return 0, err
	}
	_, err = io.WriteString(pdf.w, "\nendstream\nendobj\n")
	if err != nil {
		return 0, err
	}
	return xRefPos, nil
}

func encodeInt(data *bytes.Buffer, x uint64, w int) {
	for i := w - 1; i >= 0; i-- {
		data.WriteByte(byte(x >> (i * 8)))
	}
}

func decodeInt(buf []byte) (res int64) {
	for _, x := range buf {
		res = res<<8 | int64(x)
	}
	return res
}

// findXRef locates the last startxref keyword, determines the end-of-line
// convention used after it, and returns the offset it points to.
func (r *reader) findXRef() (int64, error) {
	idx := bytes.LastIndex(r.data, []byte("startxref"))
	if idx < 0 {
		return 0, &FormatError{Err: errors.New("startxref not found")}
	}
	pos := idx + len("startxref")

	rest := r.data[pos:]
	switch {
	case bytes.HasPrefix(rest, []byte("\r\n")):
		r.eol = []byte("\r\n")
	case bytes.HasPrefix(rest, []byte("\r")):
		r.eol = []byte("\r")
	default:
		r.eol = []byte("\n")
	}

	l := newLexer(r.data, pos)
	tok, err := l.next()
	if err != nil || tok.Kind != TokenInteger {
		return 0, &FormatError{Pos: int64(pos), Err: errors.New("invalid startxref value")}
	}
	xRefPos, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil || xRefPos <= 0 || xRefPos >= int64(len(r.data)) {
		return 0, &FormatError{Pos: int64(pos), Err: errors.New("invalid xref position")}
	}
	return xRefPos, nil
}

// readXRef reads the chain of cross-reference sections, starting with
// the most recent one.  Entries found first take precedence, so that
// newer sections shadow older ones.
func (r *reader) readXRef() error {
	start, err := r.findXRef()
	if err != nil {
		return err
	}

	first := true
	seen := make(map[int64]bool)
	for {
		if seen[start] {
			return &FormatError{Pos: start, Err: errors.New("cross-reference sections form a loop")}
		}
		seen[start] = true
		if len(seen) > r.opt.MaxXRefSections {
			return &FormatError{Pos: start, Err: errors.New("too many cross-reference sections")}
		}

		l := newLexer(r.data, int(start))
		tok, err := l.peek()
		if err != nil {
			return &FormatError{Pos: start, Err: errors.New("invalid cross-reference section")}
		}

		var dict Dict
		if tok.IsKeyword("xref") {
			dict, err = r.readXRefTable(l)
		} else {
			dict, err = r.readXRefStream(start)
		}
		if err != nil {
			return err
		}

		if first {
			for _, key := range []Name{"Root", "Info", "ID", "Size"} {
				if val, ok := dict[key]; ok {
					r.trailer[key] = val
				}
			}
			first = false
		}

		prev, ok := dict["Prev"]
		if !ok {
			break
		}
		prevStart, ok := prev.(Integer)
		if !ok || prevStart <= 0 || int64(prevStart) >= int64(len(r.data)) {
			return &FormatError{
				Pos: start,
				Err: fmt.Errorf("invalid /Prev value %s", Format(prev)),
			}
		}
		start = int64(prevStart)
	}
	return nil
}

func (r *reader) readXRefTable(l *lexer) (Dict, error) {
	l.next() // "xref"

	var entries []struct {
		number int
		entry  xRefEntry
	}
	for {
		pos := l.pos
		tok, err := l.next()
		if err != nil {
			return nil, &FormatError{Pos: int64(pos), Err: io.ErrUnexpectedEOF}
		}
		if tok.IsKeyword("trailer") {
			break
		}

		start, err1 := strconv.Atoi(tok.Text)
		tok, _ = l.next()
		count, err2 := strconv.Atoi(tok.Text)
		if err1 != nil || err2 != nil || start < 0 || count < 0 {
			return nil, &FormatError{Pos: int64(pos), Err: errors.New("invalid xref subsection header")}
		}

		for i := range count {
			pos := l.pos
			a, _ := l.next()
			b, _ := l.next()
			c, _ := l.next()
			offs, err1 := strconv.ParseInt(a.Text, 10, 64)
			_, err2 := strconv.ParseUint(b.Text, 10, 32)
			if err1 != nil || err2 != nil {
				return nil, &FormatError{Pos: int64(pos), Err: errors.New("malformed xref table")}
			}

			var entry xRefEntry
			switch {
			case c.IsKeyword("n"):
				entry.Pos = offs
			case c.IsKeyword("f"):
				// Free records do not hide entries from older sections.
				continue
			default:
				return nil, &FormatError{Pos: int64(pos), Err: errors.New("malformed xref table")}
			}
			entries = append(entries, struct {
				number int
				entry  xRefEntry
			}{start + i, entry})
		}
	}

	p := &parser{lex: l}
	obj, err := p.readObject()
	if err != nil {
		return nil, err
	}
	dict, ok := obj.(Dict)
	if !ok {
		return nil, &FormatError{Pos: int64(l.pos), Err: errors.New("invalid trailer")}
	}

	// Hybrid files list the compressed objects in an additional
	// cross-reference stream, which takes precedence over the table.
	if xRefStm, ok := dict["XRefStm"]; ok {
		zStart, ok := xRefStm.(Integer)
		if !ok || zStart <= 0 || int64(zStart) >= int64(len(r.data)) {
			return nil, &FormatError{Err: errors.New("invalid /XRefStm")}
		}
		_, err = r.readXRefStream(int64(zStart))
		if err != nil {
			return nil, err
		}
	}

	for _, e := range entries {
		if e.number == 0 {
			continue
		}
		if _, seen := r.xref[e.number]; !seen {
			r.xref[e.number] = e.entry
		}
	}
	return dict, nil
}

func (r *reader) readXRefStream(pos int64) (Dict, error) {
	obj, err := r.parseAt(pos, 0)
	if err != nil {
		return nil, err
	}
	dict := obj.Dict()
	if dict == nil || obj.Stream == nil || dict["Type"] != Name("XRef") {
		return nil, &FormatError{Pos: pos, Err: errors.New("invalid xref stream")}
	}
	r.structural[obj.Number] = true

	w, ss, err := checkXRefStreamDict(dict)
	if err != nil {
		return nil, &FormatError{Pos: pos, Err: err}
	}

	err = r.decodeXRefStream(obj.Data, w, ss)
	if err != nil {
		return nil, &FormatError{Pos: pos, Err: err}
	}
	return dict, nil
}

type xRefSubSection struct {
	Start, Size int
}

func checkXRefStreamDict(dict Dict) ([]int, []xRefSubSection, error) {
	size, ok := dict["Size"].(Integer)
	if !ok || size < 0 {
		return nil, nil, errors.New("missing /Size in xref stream")
	}
	W, ok := dict["W"].(Array)
	if !ok || len(W) < 3 {
		return nil, nil, errors.New("invalid /W in xref stream")
	}
	var w []int
	for i, Wi := range W {
		wi, ok := Wi.(Integer)
		if !ok || i < 3 && (wi < 0 || wi > 8) {
			return nil, nil, errors.New("invalid /W in xref stream")
		}
		w = append(w, int(wi))
	}

	var ss []xRefSubSection
	switch ind := dict["Index"].(type) {
	case nil:
		ss = append(ss, xRefSubSection{0, int(size)})
	case Array:
		if len(ind)%2 != 0 {
			return nil, nil, errors.New("invalid /Index in xref stream")
		}
		for i := 0; i < len(ind); i += 2 {
			start, ok1 := ind[i].(Integer)
			size, ok2 := ind[i+1].(Integer)
			if !ok1 || !ok2 || start < 0 || size < 0 {
				return nil, nil, errors.New("invalid /Index in xref stream")
			}
			ss = append(ss, xRefSubSection{int(start), int(size)})
		}
	default:
		return nil, nil, errors.New("invalid /Index in xref stream")
	}
	return w, ss, nil
}

func (r *reader) decodeXRefStream(data []byte, w []int, ss []xRefSubSection) error {
	wTotal := 0
	for _, wi := range w {
		wTotal += wi
	}
	if wTotal == 0 {
		return errors.New("xref stream entries have zero width")
	}

	w0, w1, w2 := w[0], w[1], w[2]
	for _, sec := range ss {
		for i := sec.Start; i < sec.Start+sec.Size; i++ {
			if len(data) < wTotal {
				return io.ErrUnexpectedEOF
			}
			buf := data[:wTotal]
			data = data[wTotal:]

			if _, seen := r.xref[i]; seen || i == 0 {
				continue
			}

			tp := int64(1)
			if w0 > 0 {
				tp = decodeInt(buf[:w0])
			}
			a := decodeInt(buf[w0 : w0+w1])
			b := decodeInt(buf[w0+w1 : w0+w1+w2])
			switch tp {
			case 0:
				// free objects are skipped, like "f" records in tables
			case 1:
				// a = byte offset of the object
				r.xref[i] = xRefEntry{Pos: a}
			case 2:
				// a = object number of the object stream, b = index
				r.xref[i] = xRefEntry{Pos: b, InStream: int(a)}
			default:
				// reserved types are treated as null references
			}
		}
	}
	return nil
}
