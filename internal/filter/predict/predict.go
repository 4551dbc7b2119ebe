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

package predict

import (
	"errors"
	"fmt"
)

// PNG filter types, stored as the first byte of every row.
const (
	pngNone    = 0
	pngSub     = 1
	pngUp      = 2
	pngAverage = 3
	pngPaeth   = 4
)

// Decode undoes the prediction.  A trailing partial row is decoded as far
// as it goes.
func Decode(data []byte, p *Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Predictor == 1 {
		return data, nil
	}

	rowLen := p.bytesPerRow()
	bpp := p.bytesPerPixel()
	prev := make([]byte, rowLen)
	out := make([]byte, 0, len(data)/(rowLen+1)*rowLen+rowLen)

	for len(data) > 0 {
		tag := data[0]
		n := min(rowLen, len(data)-1)
		row := data[1 : 1+n]
		data = data[1+n:]

		cur := make([]byte, n)
		for i, x := range row {
			var left, up, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up = prev[i]

			var pred byte
			switch tag {
			case pngNone:
				// pass
			case pngSub:
				pred = left
			case pngUp:
				pred = up
			case pngAverage:
				pred = byte((int(left) + int(up)) / 2)
			case pngPaeth:
				pred = paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("invalid PNG filter type %d", tag)
			}
			cur[i] = x + pred
		}
		out = append(out, cur...)
		copy(prev, cur)
	}
	return out, nil
}

// EncodeUp applies the PNG Up filter to rows of the given length.
// The result can be decoded using Predictor 12.
func EncodeUp(data []byte, columns int) ([]byte, error) {
	if columns < 1 {
		return nil, errors.New("invalid Columns value")
	}
	if len(data)%columns != 0 {
		return nil, errors.New("data is not a whole number of rows")
	}

	out := make([]byte, 0, len(data)/columns*(columns+1))
	prev := make([]byte, columns)
	for start := 0; start < len(data); start += columns {
		row := data[start : start+columns]
		out = append(out, pngUp)
		for i, x := range row {
			out = append(out, x-prev[i])
		}
		prev = row
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
