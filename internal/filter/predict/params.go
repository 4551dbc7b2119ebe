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

// Package predict implements the PNG predictors used together with
// /FlateDecode.  Cross-reference streams use Predictor 12 (PNG Up) with
// one byte per sample and one row per cross-reference entry.
package predict

import "fmt"

// rowLimit bounds the number of bytes in one row.
const rowLimit = 1 << 24

// Params are the /DecodeParms entries relevant for prediction.
type Params struct {
	Predictor        int // 1 for none, 10 to 15 for PNG
	Colors           int
	BitsPerComponent int
	Columns          int // for xref streams: bytes per entry
}

// Validate checks that the parameters describe a supported predictor.
func (p *Params) Validate() error {
	switch {
	case p.Predictor == 1:
		return nil
	case p.Predictor < 10 || p.Predictor > 15:
		return fmt.Errorf("predictor %d not supported", p.Predictor)
	case p.Colors < 1 || p.Colors > 256:
		return fmt.Errorf("invalid /Colors %d", p.Colors)
	case p.BitsPerComponent != 1 && p.BitsPerComponent != 2 &&
		p.BitsPerComponent != 4 && p.BitsPerComponent != 8 &&
		p.BitsPerComponent != 16:
		return fmt.Errorf("invalid /BitsPerComponent %d", p.BitsPerComponent)
	case p.Columns < 1 || int64(p.Colors*p.BitsPerComponent)*int64(p.Columns) > 8*rowLimit:
		return fmt.Errorf("invalid /Columns %d", p.Columns)
	}
	return nil
}

// bytesPerRow excludes the filter type byte.
func (p *Params) bytesPerRow() int {
	return (p.Colors*p.BitsPerComponent*p.Columns + 7) / 8
}

// bytesPerPixel is the distance used by the Sub, Average and Paeth
// filters.  It is at least 1.
func (p *Params) bytesPerPixel() int {
	return (p.Colors*p.BitsPerComponent + 7) / 8
}
