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

// Package standard provides access to the 14 standard PDF fonts.
//
// The standard fonts are referenced by name and are never embedded.
// Text is encoded using WinAnsiEncoding, except for the Symbol and
// ZapfDingbats fonts which use their built-in encodings.
package standard

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"seehuhn.de/go/pdfdoc"
)

// Font identifies the individual fonts.
type Font string

// Constants for the 14 standard PDF fonts.
const (
	Courier              Font = "Courier"
	CourierBold          Font = "Courier-Bold"
	CourierBoldOblique   Font = "Courier-BoldOblique"
	CourierOblique       Font = "Courier-Oblique"
	Helvetica            Font = "Helvetica"
	HelveticaBold        Font = "Helvetica-Bold"
	HelveticaBoldOblique Font = "Helvetica-BoldOblique"
	HelveticaOblique     Font = "Helvetica-Oblique"
	TimesRoman           Font = "Times-Roman"
	TimesBold            Font = "Times-Bold"
	TimesBoldItalic      Font = "Times-BoldItalic"
	TimesItalic          Font = "Times-Italic"
	Symbol               Font = "Symbol"
	ZapfDingbats         Font = "ZapfDingbats"
)

// All lists the standard fonts.
var All = []Font{
	Courier, CourierBold, CourierBoldOblique, CourierOblique,
	Helvetica, HelveticaBold, HelveticaBoldOblique, HelveticaOblique,
	TimesRoman, TimesBold, TimesBoldItalic, TimesItalic,
	Symbol, ZapfDingbats,
}

// IsValid reports whether f is one of the 14 standard fonts.
func (f Font) IsValid() bool {
	for _, g := range All {
		if f == g {
			return true
		}
	}
	return false
}

// IsSymbolic reports whether the font uses its own built-in encoding.
func (f Font) IsSymbolic() bool {
	return f == Symbol || f == ZapfDingbats
}

// Dict returns the font dictionary.
func (f Font) Dict() pdfdoc.Dict {
	dict := pdfdoc.Dict{
		"Type":     pdfdoc.Name("Font"),
		"Subtype":  pdfdoc.Name("Type1"),
		"BaseFont": pdfdoc.Name(f),
	}
	if !f.IsSymbolic() {
		dict["Encoding"] = pdfdoc.Name("WinAnsiEncoding")
	}
	return dict
}

// ResourceID returns the name used for the font in a /Font resource
// dictionary, given the object number of the font dictionary.
func ResourceID(number int) pdfdoc.Name {
	return pdfdoc.Name(fmt.Sprintf("F%d", number))
}

// EncodeError is returned by [Font.Encode] if a character cannot be
// represented in the font's encoding.
type EncodeError struct {
	Font Font
	Rune rune
}

func (err *EncodeError) Error() string {
	return fmt.Sprintf("font %s cannot show %q", err.Font, err.Rune)
}

// Encode converts s to a string of character codes.
func (f Font) Encode(s string) (pdfdoc.String, error) {
	res := make(pdfdoc.String, 0, len(s))
	for _, r := range s {
		if f.IsSymbolic() {
			if r > 0xFF {
				return nil, &EncodeError{Font: f, Rune: r}
			}
			res = append(res, byte(r))
			continue
		}
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			return nil, &EncodeError{Font: f, Rune: r}
		}
		res = append(res, c)
	}
	return res, nil
}
