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

// Package image converts raster images into PDF image XObjects.
package image

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"seehuhn.de/go/pdfdoc"
	"seehuhn.de/go/pdfdoc/codec"
)

// Image is an image XObject, ready to be written to a PDF file.
type Image struct {
	Width  int
	Height int

	// ColorSpace is one of DeviceGray, DeviceRGB or DeviceCMYK.
	ColorSpace pdfdoc.Name

	// Filter is FlateDecode or DCTDecode and describes how Data is encoded.
	Filter pdfdoc.Name

	// Data holds the encoded samples, 8 bits per component.
	Data []byte

	// Mask is an optional soft mask giving the opacity of every pixel.
	Mask *Image

	// Decode, if set, is written as the /Decode array.  This is used for
	// inverted CMYK JPEG files.
	Decode []float64
}

// FromImage converts src into a losslessly compressed image.  Grayscale
// images are stored in the DeviceGray color space, everything else as
// DeviceRGB.  If src has transparent pixels, an alpha mask is added.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	width, height := b.Dx(), b.Dy()

	if gray, ok := src.(*image.Gray); ok {
		samples := make([]byte, 0, width*height)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := gray.PixOffset(b.Min.X, y)
			samples = append(samples, gray.Pix[i:i+width]...)
		}
		return &Image{
			Width:      width,
			Height:     height,
			ColorSpace: pdfdoc.Name("DeviceGray"),
			Filter:     pdfdoc.Name("FlateDecode"),
			Data:       codec.Compress(samples),
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)

	samples := make([]byte, 0, 3*width*height)
	alpha := make([]byte, 0, width*height)
	opaque := true
	for y := range height {
		for x := range width {
			c := img.NRGBAAt(x, y)
			samples = append(samples, c.R, c.G, c.B)
			alpha = append(alpha, c.A)
			if c.A != 0xFF {
				opaque = false
			}
		}
	}

	res := &Image{
		Width:      width,
		Height:     height,
		ColorSpace: pdfdoc.Name("DeviceRGB"),
		Filter:     pdfdoc.Name("FlateDecode"),
		Data:       codec.Compress(samples),
	}
	if !opaque {
		res.Mask = &Image{
			Width:      width,
			Height:     height,
			ColorSpace: pdfdoc.Name("DeviceGray"),
			Filter:     pdfdoc.Name("FlateDecode"),
			Data:       codec.Compress(alpha),
		}
	}
	return res
}

// Dict returns the image dictionary.  The /SMask entry is not included.
func (im *Image) Dict() pdfdoc.Dict {
	dict := pdfdoc.Dict{
		"Type":             pdfdoc.Name("XObject"),
		"Subtype":          pdfdoc.Name("Image"),
		"Width":            pdfdoc.Integer(im.Width),
		"Height":           pdfdoc.Integer(im.Height),
		"ColorSpace":       im.ColorSpace,
		"BitsPerComponent": pdfdoc.Integer(8),
		"Filter":           im.Filter,
	}
	if im.Decode != nil {
		arr := make(pdfdoc.Array, len(im.Decode))
		for i, x := range im.Decode {
			arr[i] = pdfdoc.Real(x)
		}
		dict["Decode"] = arr
	}
	return dict
}

// Embed writes the image, and its mask if present, to w.  The return
// value is the reference of the image.
func (im *Image) Embed(w *pdfdoc.Writer) (pdfdoc.Reference, error) {
	ref := w.Alloc()
	dict := im.Dict()

	var maskRef pdfdoc.Reference
	if im.Mask != nil {
		maskRef = w.Alloc()
		dict["SMask"] = maskRef
	}

	err := w.PutStream(ref, dict, im.Data)
	if err != nil {
		return pdfdoc.Reference{}, err
	}
	if im.Mask != nil {
		err = w.PutStream(maskRef, im.Mask.Dict(), im.Mask.Data)
		if err != nil {
			return pdfdoc.Reference{}, err
		}
	}
	return ref, nil
}

// ResourceID returns the name used for an image in an /XObject resource
// dictionary, given the object number of the image.
func ResourceID(number int) pdfdoc.Name {
	return pdfdoc.Name(fmt.Sprintf("Im%d", number))
}

// colorSpaceOf maps a color model to the matching PDF color space.
func colorSpaceOf(m color.Model) (pdfdoc.Name, error) {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return "DeviceGray", nil
	case color.YCbCrModel, color.RGBAModel, color.NRGBAModel:
		return "DeviceRGB", nil
	case color.CMYKModel:
		return "DeviceCMYK", nil
	default:
		return "", fmt.Errorf("unsupported color model %T", m)
	}
}
