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

package image

import (
	"bytes"
	"image"
	"image/jpeg"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"seehuhn.de/go/pdfdoc"
)

// FromJPEG stores a JPEG file without decoding it.  Only the header is
// read, to find the dimensions and the color space.
func FromJPEG(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	cs, err := colorSpaceOf(cfg.ColorModel)
	if err != nil {
		return nil, err
	}

	res := &Image{
		Width:      cfg.Width,
		Height:     cfg.Height,
		ColorSpace: cs,
		Filter:     pdfdoc.Name("DCTDecode"),
		Data:       data,
	}
	if cs == "DeviceCMYK" {
		// Adobe applications write inverted CMYK samples.
		res.Decode = []float64{1, 0, 1, 0, 1, 0, 1, 0}
	}
	return res, nil
}

// EncodeJPEG converts src into a JPEG image, using lossy compression.
func EncodeJPEG(src image.Image, opts *jpeg.Options) (*Image, error) {
	b := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)

	buf := &bytes.Buffer{}
	err := jpeg.Encode(buf, img, opts)
	if err != nil {
		return nil, err
	}
	return &Image{
		Width:      b.Dx(),
		Height:     b.Dy(),
		ColorSpace: pdfdoc.Name("DeviceRGB"),
		Filter:     pdfdoc.Name("DCTDecode"),
		Data:       buf.Bytes(),
	}, nil
}

// FromBMP decodes a BMP file and converts it using [FromImage].
func FromBMP(r io.Reader) (*Image, error) {
	src, err := bmp.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(src), nil
}
