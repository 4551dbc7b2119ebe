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
	"strconv"
)

// FormatError indicates that a PDF file could not be parsed.
type FormatError struct {
	Pos int64
	Err error
}

func (err *FormatError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	tail := ""
	if err.Pos > 0 {
		tail = " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return "malformed PDF file" + middle + tail
}

func (err *FormatError) Unwrap() error {
	return err.Err
}

// UnsupportedFilterError is reported as a warning if a stream uses a filter
// other than /FlateDecode.  The stream data is then returned undecoded.
type UnsupportedFilterError struct {
	Number int
	Filter Name
}

func (err *UnsupportedFilterError) Error() string {
	return fmt.Sprintf("object %d: unsupported filter /%s, data left encoded",
		err.Number, err.Filter)
}

// InflateError is reported as a warning if a /FlateDecode stream cannot be
// decompressed.  The stream data is then returned as stored in the file.
type InflateError struct {
	Number int
	Err    error
}

func (err *InflateError) Error() string {
	return fmt.Sprintf("object %d: cannot decode stream, using raw data: %v",
		err.Number, err.Err)
}

func (err *InflateError) Unwrap() error {
	return err.Err
}

// PreconditionError indicates that a method was called in a state where
// the call is not allowed.  This always indicates a bug in the caller.
type PreconditionError struct {
	Op  string
	Msg string
}

func (err *PreconditionError) Error() string {
	return err.Op + ": " + err.Msg
}

// ErrClosed is returned when writing to a [Writer] which has already been
// closed.
var ErrClosed = errors.New("pdfdoc: writer is closed")
