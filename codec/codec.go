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

// Package codec implements the zlib envelope used for /FlateDecode streams.
//
// Data is stored as a two byte header, a raw deflate payload and a
// big-endian Adler-32 checksum of the uncompressed data.
package codec

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"hash"
	"hash/adler32"
	"io"
)

// Header is the two byte stream header written by [NewWriter].
// CM=8 (deflate), CINFO=5, and the check bits make the 16-bit value
// divisible by 31.
var Header = [2]byte{0x58, 0x85}

var (
	// ErrHeader is returned by [Decompress] if the data does not start with
	// a valid deflate stream header.
	ErrHeader = errors.New("codec: invalid header")

	// ErrChecksum is returned by [Decompress] if the trailing Adler-32
	// checksum does not match the inflated data.
	ErrChecksum = errors.New("codec: invalid checksum")
)

// Writer compresses data written to it.  Close must be called to flush
// the deflate stream and to write the checksum.
type Writer struct {
	w      io.Writer
	fw     *flate.Writer
	sum    hash.Hash32
	header bool
	closed bool
}

// NewWriter returns a new Writer which writes the compressed form of
// the data to w.  The level is one of the compress/flate levels.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	fw, err := flate.NewWriter(w, level)
	if err != nil {
		return nil, err
	}
	return &Writer{
		w:   w,
		fw:  fw,
		sum: adler32.New(),
	}, nil
}

func (z *Writer) writeHeader() error {
	if z.header {
		return nil
	}
	z.header = true
	_, err := z.w.Write(Header[:])
	return err
}

// Write implements the [io.Writer] interface.
func (z *Writer) Write(p []byte) (int, error) {
	if z.closed {
		return 0, errors.New("codec: write after close")
	}
	err := z.writeHeader()
	if err != nil {
		return 0, err
	}
	n, err := z.fw.Write(p)
	z.sum.Write(p[:n])
	return n, err
}

// Close flushes the remaining data and writes the checksum.
// The underlying writer is not closed.
func (z *Writer) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true

	err := z.writeHeader()
	if err != nil {
		return err
	}
	err = z.fw.Close()
	if err != nil {
		return err
	}
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], z.sum.Sum32())
	_, err = z.w.Write(tail[:])
	return err
}

// Compress returns the compressed form of data.
func Compress(data []byte) []byte {
	buf := &bytes.Buffer{}
	z, _ := NewWriter(buf, flate.BestCompression) // level is valid
	z.Write(data)                                 // writes to a bytes.Buffer cannot fail
	z.Close()
	return buf.Bytes()
}

// Decompress inverts [Compress].
//
// Any zlib header using the deflate method is accepted, so that data from
// other producers can be read.  If the trailing checksum is present, it is
// verified.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, ErrHeader
	}
	cmf, flg := data[0], data[1]
	if cmf&0x0F != 8 || (uint16(cmf)<<8|uint16(flg))%31 != 0 {
		return nil, ErrHeader
	}
	if flg&0x20 != 0 {
		// preset dictionaries are not used in PDF
		return nil, ErrHeader
	}

	body := bytes.NewReader(data[2:])
	fr := flate.NewReader(body)
	defer fr.Close()

	out := &bytes.Buffer{}
	_, err := io.Copy(out, fr)
	if err != nil {
		return nil, err
	}

	// bytes.Reader is an io.ByteReader, so the inflater does not read
	// beyond the end of the deflate stream.
	if body.Len() >= 4 {
		var tail [4]byte
		body.Read(tail[:])
		if binary.BigEndian.Uint32(tail[:]) != adler32.Checksum(out.Bytes()) {
			return nil, ErrChecksum
		}
	}

	return out.Bytes(), nil
}
