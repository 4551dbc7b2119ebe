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
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/exp/maps"

	"seehuhn.de/go/pdfdoc/codec"
	"seehuhn.de/go/pdfdoc/internal/filter/predict"
)

// File is the result of reading a PDF file.
type File struct {
	// Version is the version from the file header, for example "1.5".
	Version string

	// Objects contains all objects of the file.  Objects stored in object
	// streams appear as ordinary objects; the object streams themselves and
	// cross-reference streams are omitted.
	Objects Objects

	// Trailer contains the /Root, /Info, /ID and /Size entries of the
	// most recent trailer.
	Trailer Dict

	// Warnings lists problems which did not prevent reading the file,
	// for example streams with unsupported filters.
	Warnings []error
}

// ReaderOptions control how a file is read.
type ReaderOptions struct {
	// MaxXRefSections bounds the length of the /Prev chain.
	// The default is 1024.
	MaxXRefSections int

	// Logger receives one message for every warning.  If nil, nothing is
	// logged.
	Logger *slog.Logger
}

var defaultReaderOptions = &ReaderOptions{}

// Read reads a complete PDF file from r.
func Read(r io.Reader, opt *ReaderOptions) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data, opt)
}

// ReadFile reads the named PDF file.  The file is memory mapped while it
// is being parsed.
func ReadFile(name string, opt *ReaderOptions) (*File, error) {
	fd, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	fi, err := fd.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, &FormatError{Err: errors.New("empty file")}
	}

	m, err := mmap.Map(fd, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer m.Unmap()

	return Parse(m, opt)
}

// Parse reads a PDF file held in memory.  The returned objects do not
// share memory with data.
func Parse(data []byte, opt *ReaderOptions) (*File, error) {
	if opt == nil {
		opt = defaultReaderOptions
	}
	r := &reader{
		data:       data,
		opt:        *opt,
		xref:       make(map[int]xRefEntry),
		objs:       make(Objects),
		trailer:    Dict{},
		structural: make(map[int]bool),
		busy:       make(map[int]bool),
		objStm:     make(map[int]Objects),
	}
	if r.opt.MaxXRefSections <= 0 {
		r.opt.MaxXRefSections = 1024
	}
	r.log = r.opt.Logger
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}

	version, err := r.readHeader()
	if err != nil {
		return nil, err
	}
	err = r.readXRef()
	if err != nil {
		return nil, err
	}

	numbers := maps.Keys(r.xref)
	slices.Sort(numbers)
	for _, n := range numbers {
		_, err := r.get(n)
		if err != nil {
			return nil, err
		}
	}

	res := make(Objects, len(r.objs))
	for n, obj := range r.objs {
		if obj == nil || r.structural[n] {
			continue
		}
		res[n] = obj
	}

	return &File{
		Version:  version,
		Objects:  res,
		Trailer:  r.trailer,
		Warnings: r.warnings,
	}, nil
}

type reader struct {
	data []byte
	eol  []byte
	opt  ReaderOptions
	log  *slog.Logger

	xref    map[int]xRefEntry
	objs    Objects
	trailer Dict

	// structural marks cross-reference streams and object streams
	structural map[int]bool

	busy   map[int]bool
	objStm map[int]Objects

	warnings []error
}

func (r *reader) warn(number int, err error) {
	r.warnings = append(r.warnings, err)
	r.log.Warn(err.Error(), slog.Int("obj", number))
}

func (r *reader) readHeader() (string, error) {
	head := r.data[:min(len(r.data), 1024)]
	idx := bytes.Index(head, []byte("%PDF-"))
	if idx < 0 {
		return "", &FormatError{Err: errors.New("PDF header not found")}
	}
	l := newLexer(r.data, idx+len("%PDF-"))
	l.skipRegular()
	version := string(r.data[idx+len("%PDF-") : l.pos])
	if version == "" {
		return "", &FormatError{Pos: int64(idx), Err: errors.New("missing PDF version")}
	}
	return version, nil
}

// get returns the object with the given number, reading it if needed.
// Free and missing objects are returned as nil.
func (r *reader) get(number int) (*IndirectObject, error) {
	if obj, ok := r.objs[number]; ok {
		return obj, nil
	}
	entry, ok := r.xref[number]
	if !ok || entry.IsFree() {
		return nil, nil
	}
	if r.busy[number] {
		return nil, &FormatError{Err: fmt.Errorf("object %d depends on itself", number)}
	}
	r.busy[number] = true
	defer delete(r.busy, number)

	var obj *IndirectObject
	var err error
	if entry.InStream != 0 {
		obj, err = r.getFromObjectStream(number, entry)
	} else {
		obj, err = r.parseAt(entry.Pos, number)
	}
	if err != nil {
		return nil, err
	}
	r.objs[number] = obj
	return obj, nil
}

// parseAt parses the indirect object starting at pos.  If number is
// non-zero, the object must have this number.
func (r *reader) parseAt(pos int64, number int) (*IndirectObject, error) {
	if pos < 0 || pos >= int64(len(r.data)) {
		return nil, &FormatError{Err: fmt.Errorf("object %d: offset %d outside file", number, pos)}
	}
	l := newLexer(r.data, int(pos))

	a, _ := l.next()
	b, _ := l.next()
	c, _ := l.next()
	if a.Kind != TokenInteger || b.Kind != TokenInteger || !c.IsKeyword("obj") {
		return nil, &FormatError{Pos: pos, Err: errors.New("expected \"n g obj\"")}
	}
	n, err := strconv.Atoi(a.Text)
	if err != nil || number != 0 && n != number {
		return nil, &FormatError{Pos: pos, Err: fmt.Errorf("expected object %d, found %s", number, a.Text)}
	}

	p := &parser{lex: l}
	value, err := p.readObject()
	if err != nil {
		return nil, err
	}
	obj := &IndirectObject{Number: n, Value: value}

	tok, err := l.peek()
	if err == nil && tok.IsKeyword("stream") {
		l.next()
		dict, ok := value.(Dict)
		if !ok {
			return nil, &FormatError{Pos: int64(l.pos), Err: errors.New("stream without dictionary")}
		}
		raw, end, err := r.readStreamData(n, dict, l.pos)
		if err != nil {
			return nil, err
		}
		l.pos = end
		obj.Stream = bytes.Clone(raw)
		if obj.Stream == nil {
			obj.Stream = []byte{}
		}

		data, err := r.decodeStream(n, dict, obj.Stream)
		if err != nil && dict["Type"] == Name("XRef") {
			// without its entries, the file cannot be read
			return nil, &FormatError{Pos: pos, Err: err}
		} else if err != nil {
			r.warn(n, err)
			data = obj.Stream
		}
		obj.Data = data

		if dict["Type"] == Name("ObjStm") {
			r.structural[n] = true
		}

		tok, _ = l.next()
		if !tok.IsKeyword("endstream") {
			return nil, &FormatError{Pos: int64(l.pos), Err: errors.New("missing endstream")}
		}
	}

	// A missing "endobj" is tolerated.
	return obj, nil
}

// readStreamData locates the stream data which starts after the
// "stream" keyword at pos.  It returns the data and the position just
// after it.
func (r *reader) readStreamData(number int, dict Dict, pos int) ([]byte, int, error) {
	switch {
	case bytes.HasPrefix(r.data[pos:], r.eol):
		pos += len(r.eol)
	case bytes.HasPrefix(r.data[pos:], []byte("\r\n")):
		pos += 2
	case bytes.HasPrefix(r.data[pos:], []byte("\n")), bytes.HasPrefix(r.data[pos:], []byte("\r")):
		pos++
	}

	length := int64(-1)
	switch x := dict["Length"].(type) {
	case Integer:
		length = int64(x)
	case Reference:
		target, err := r.get(x.Number)
		if err == nil && target != nil {
			if l, ok := target.Value.(Integer); ok {
				length = int64(l)
			}
		}
	}

	if length >= 0 && int64(pos)+length <= int64(len(r.data)) {
		end := pos + int(length)
		l := newLexer(r.data, end)
		tok, err := l.peek()
		if err == nil && tok.IsKeyword("endstream") {
			return r.data[pos:end], end, nil
		}
	}

	// Recover by searching for the end of the stream.
	idx := bytes.Index(r.data[pos:], []byte("endstream"))
	if idx < 0 {
		return nil, 0, &FormatError{Pos: int64(pos), Err: fmt.Errorf("object %d: unterminated stream", number)}
	}
	end := pos + idx
	data := r.data[pos:end]
	data = bytes.TrimSuffix(data, []byte("\n"))
	data = bytes.TrimSuffix(data, []byte("\r"))
	r.warn(number, &FormatError{
		Pos: int64(pos),
		Err: fmt.Errorf("object %d: invalid /Length, using %d bytes", number, len(data)),
	})
	return data, end, nil
}

// decodeStream applies the /FlateDecode filter and the associated
// predictor.  Unsupported filters are reported as *UnsupportedFilterError,
// decoding failures as *InflateError.
func (r *reader) decodeStream(number int, dict Dict, raw []byte) ([]byte, error) {
	var filters []Name
	var parms []Object
	switch f := r.resolve(dict["Filter"]).(type) {
	case nil:
		return raw, nil
	case Name:
		filters = []Name{f}
		parms = []Object{r.resolve(dict["DecodeParms"])}
	case Array:
		p, _ := r.resolve(dict["DecodeParms"]).(Array)
		for i, elem := range f {
			name, _ := r.resolve(elem).(Name)
			filters = append(filters, name)
			if i < len(p) {
				parms = append(parms, r.resolve(p[i]))
			} else {
				parms = append(parms, nil)
			}
		}
	default:
		return raw, &UnsupportedFilterError{Number: number, Filter: Name(Format(f))}
	}

	data := raw
	for i, filter := range filters {
		if filter != "FlateDecode" && filter != "Fl" {
			return raw, &UnsupportedFilterError{Number: number, Filter: filter}
		}
		out, err := codec.Decompress(data)
		if err != nil {
			return raw, &InflateError{Number: number, Err: err}
		}
		if p, ok := parms[i].(Dict); ok {
			out, err = unpredict(out, p)
			if err != nil {
				return raw, &InflateError{Number: number, Err: err}
			}
		}
		data = out
	}
	return data, nil
}

func unpredict(data []byte, parms Dict) ([]byte, error) {
	get := func(key Name, def int) int {
		if x, ok := parms[key].(Integer); ok {
			return int(x)
		}
		return def
	}
	p := &predict.Params{
		Predictor:        get("Predictor", 1),
		Colors:           get("Colors", 1),
		BitsPerComponent: get("BitsPerComponent", 8),
		Columns:          get("Columns", 1),
	}
	return predict.Decode(data, p)
}

// resolve follows a reference to an already readable object.
func (r *reader) resolve(obj Object) Object {
	ref, ok := obj.(Reference)
	if !ok {
		return obj
	}
	target, err := r.get(ref.Number)
	if err != nil || target == nil {
		return nil
	}
	return target.Value
}
