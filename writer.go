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
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bits-and-blooms/bitset"
)

// Header is written at the start of every file.  The comment line with
// bytes above 127 marks the file as binary.
const Header = "%PDF-1.5\n%\xF2\xF3\xF4\xF5\xF6\n"

// WriterOptions control the file structure produced by a [Writer].
type WriterOptions struct {
	// XRefStream selects a compressed cross-reference stream instead of
	// the classic cross-reference table.
	XRefStream bool

	// ObjectStreams enables packing of non-stream objects written with
	// [Writer.Put] into object streams.  This implies XRefStream.
	ObjectStreams bool

	// ObjectsPerStream is the maximal number of objects packed into one
	// object stream.  The default is 100.
	ObjectsPerStream int

	// Logger receives debug messages.  If nil, nothing is logged.
	Logger *slog.Logger
}

var defaultWriterOptions = &WriterOptions{}

// Writer writes a PDF file sequentially.  Objects are numbered in the
// order they are allocated, and the byte offset of every object is
// recorded for the cross-reference section.  The writer never seeks.
type Writer struct {
	w   *posWriter
	opt WriterOptions
	log *slog.Logger

	xref    []xRefEntry // xref[i] describes object i+1
	written *bitset.BitSet
	open    int // number of the object between Begin and Endobj

	pending []pendingObject

	closed bool
}

type pendingObject struct {
	ref Reference
	obj Object
}

// NewWriter starts a new PDF file and writes the file header.
func NewWriter(w io.Writer, opt *WriterOptions) (*Writer, error) {
	if opt == nil {
		opt = defaultWriterOptions
	}
	pdf := &Writer{
		w:       &posWriter{w: w},
		opt:     *opt,
		log:     opt.Logger,
		written: bitset.New(64),
	}
	if pdf.opt.ObjectStreams {
		pdf.opt.XRefStream = true
	}
	if pdf.opt.ObjectsPerStream <= 0 {
		pdf.opt.ObjectsPerStream = 100
	}
	if pdf.log == nil {
		pdf.log = slog.New(slog.DiscardHandler)
	}

	_, err := io.WriteString(pdf.w, Header)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// Alloc reserves the next object number.  Objects which are allocated
// but never written appear as free entries in the cross-reference section.
func (pdf *Writer) Alloc() Reference {
	pdf.xref = append(pdf.xref, xRefEntry{Pos: -1})
	return NewReference(len(pdf.xref))
}

// Count returns the number of object numbers allocated so far.
func (pdf *Writer) Count() int {
	return len(pdf.xref)
}

// Offset returns the byte offset at which the given object starts, or -1
// if the object has not been written or is stored in an object stream.
func (pdf *Writer) Offset(number int) int64 {
	if number < 1 || number > len(pdf.xref) {
		return -1
	}
	return pdf.xref[number-1].Pos
}

// Pos returns the number of bytes written so far.
func (pdf *Writer) Pos() int64 {
	return pdf.w.pos
}

// Newobj allocates a new object number and starts writing the object.
// The body is written using [Writer.Write] and the object is completed
// with [Writer.Endobj].
func (pdf *Writer) Newobj() (Reference, error) {
	ref := pdf.Alloc()
	err := pdf.Begin(ref)
	if err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// Begin starts writing a previously allocated object.
func (pdf *Writer) Begin(ref Reference) error {
	if pdf.closed {
		return ErrClosed
	}
	if pdf.open != 0 {
		return &PreconditionError{
			Op:  "Begin",
			Msg: fmt.Sprintf("object %d is still open", pdf.open),
		}
	}
	if ref.Number < 1 || ref.Number > len(pdf.xref) {
		return &PreconditionError{
			Op:  "Begin",
			Msg: fmt.Sprintf("object %d has not been allocated", ref.Number),
		}
	}
	if pdf.written.Test(uint(ref.Number)) {
		return &PreconditionError{
			Op:  "Begin",
			Msg: fmt.Sprintf("object %d already written", ref.Number),
		}
	}

	pdf.xref[ref.Number-1] = xRefEntry{Pos: pdf.w.pos}
	pdf.written.Set(uint(ref.Number))
	pdf.open = ref.Number
	_, err := fmt.Fprintf(pdf.w, "%d %d obj\n", ref.Number, ref.Generation)
	return err
}

// Write writes part of the body of the currently open object.
func (pdf *Writer) Write(p []byte) (int, error) {
	if pdf.closed {
		return 0, ErrClosed
	}
	if pdf.open == 0 {
		return 0, &PreconditionError{Op: "Write", Msg: "no object is open"}
	}
	return pdf.w.Write(p)
}

// Endobj completes the currently open object.
func (pdf *Writer) Endobj() error {
	if pdf.closed {
		return ErrClosed
	}
	if pdf.open == 0 {
		return &PreconditionError{Op: "Endobj", Msg: "no object is open"}
	}
	pdf.open = 0
	_, err := io.WriteString(pdf.w, "\nendobj\n")
	return err
}

// Put writes obj as the indirect object ref.  If object streams are
// enabled, the object may be buffered and packed into an object stream
// later.  The value nil is written as a null object.
func (pdf *Writer) Put(ref Reference, obj Object) error {
	if pdf.opt.ObjectStreams && obj != nil && ref.Generation == 0 {
		if pdf.closed {
			return ErrClosed
		}
		if ref.Number < 1 || ref.Number > len(pdf.xref) || pdf.written.Test(uint(ref.Number)) {
			return &PreconditionError{
				Op:  "Put",
				Msg: fmt.Sprintf("object %d is not available for writing", ref.Number),
			}
		}
		pdf.written.Set(uint(ref.Number))
		pdf.pending = append(pdf.pending, pendingObject{ref, obj})
		if len(pdf.pending) >= pdf.opt.ObjectsPerStream {
			return pdf.flushObjectStream()
		}
		return nil
	}

	err := pdf.Begin(ref)
	if err != nil {
		return err
	}
	err = writeObject(pdf, obj)
	if err != nil {
		return err
	}
	return pdf.Endobj()
}

// PutStream writes a stream object.  The data must already be encoded as
// described by the /Filter entry in dict.  The /Length entry is set
// automatically.
func (pdf *Writer) PutStream(ref Reference, dict Dict, data []byte) error {
	dict = dict.Clone()
	if dict == nil {
		dict = Dict{}
	}
	dict["Length"] = Integer(len(data))

	err := pdf.Begin(ref)
	if err != nil {
		return err
	}
	err = dict.PDF(pdf)
	if err != nil {
		return err
	}
	_, err = io.WriteString(pdf, "\nstream\n")
	if err != nil {
		return err
	}
	_, err = pdf.Write(data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(pdf, "\nendstream")
	if err != nil {
		return err
	}
	return pdf.Endobj()
}

// Close writes any pending object streams, the cross-reference section
// and the trailer.  The /Size entry of the trailer is set automatically.
// The underlying io.Writer is not closed.
func (pdf *Writer) Close(trailer Dict) error {
	if pdf.closed {
		return ErrClosed
	}
	if pdf.open != 0 {
		return &PreconditionError{
			Op:  "Close",
			Msg: fmt.Sprintf("object %d is still open", pdf.open),
		}
	}
	if trailer["Root"] == nil {
		return errors.New("missing /Root in trailer")
	}

	err := pdf.flushObjectStream()
	if err != nil {
		return err
	}

	trailer = trailer.Clone()
	var xRefPos int64
	if pdf.opt.XRefStream {
		xRefPos, err = pdf.writeXRefStream(trailer)
	} else {
		xRefPos, err = pdf.writeXRefTable(trailer)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(pdf.w, "startxref\n%d\n%%%%EOF\n", xRefPos)
	if err != nil {
		return err
	}
	pdf.closed = true

	pdf.log.Debug("file complete",
		slog.Int("objects", len(pdf.xref)),
		slog.Bool("xref_stream", pdf.opt.XRefStream),
		slog.Int64("bytes", pdf.w.pos))
	return nil
}

type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}
