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
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// TextString creates a String object using the "text string" encoding.
// Printable ASCII is stored as is, everything else is stored as UTF-16BE
// with a byte order mark.
func TextString(s string) String {
	s = norm.NFC.String(s)

	ascii := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 32 || c > 126) && c != '\t' && c != '\n' && c != '\r' {
			ascii = false
			break
		}
	}
	if ascii {
		return String(s)
	}

	enc, err := utf16BE.NewEncoder().String(s)
	if err != nil {
		// only possible for invalid UTF-8, which the encoder replaces
		return String(s)
	}
	return String(enc)
}

// AsTextString interprets x as a PDF "text string" and returns the
// corresponding UTF-8 string.  Strings without a UTF-16 byte order mark
// are decoded as ISO 8859-1, which agrees with PDFDocEncoding for all
// printable characters outside the range 0x80 to 0xA0.
func (x String) AsTextString() string {
	if len(x) >= 2 && x[0] == 0xFE && x[1] == 0xFF {
		s, err := utf16BE.NewDecoder().Bytes(x)
		if err == nil {
			return string(s)
		}
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(x)
	if err != nil {
		return string(x)
	}
	return string(s)
}

// Date creates a PDF String object encoding the given date and time.
func Date(t time.Time) String {
	s := t.Format("D:20060102150405-0700")
	k := len(s) - 2
	s = s[:k] + "'" + s[k:] + "'"
	return String(s)
}

var errNoDate = errors.New("not a valid date string")

// AsDate converts a PDF date string to a time.Time object.
func (x String) AsDate() (time.Time, error) {
	s := x.AsTextString()
	s = strings.ReplaceAll(s, "'", "")

	formats := []string{
		"D:20060102150405-0700",
		"D:20060102150405-07",
		"D:20060102150405Z0000",
		"D:20060102150405Z",
		"D:20060102150405",
		"D:200601021504",
		"D:20060102",
		"D:2006",
	}
	for _, format := range formats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNoDate
}

// FormatReal formats a number for use in a PDF file.  The output uses a
// period as the decimal separator, has at most three digits after it, and
// omits trailing zeros.  The argument must be finite.
func FormatReal(x float64) string {
	s := strconv.FormatFloat(x, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}
