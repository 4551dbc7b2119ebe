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
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/bmp"

	"seehuhn.de/go/pdfdoc"
	"seehuhn.de/go/pdfdoc/codec"
)

func testImage(alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := range 3 {
		for x := range 4 {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(60 * x), G: uint8(80 * y), B: 7, A: alpha})
		}
	}
	return img
}

func TestFromImage(t *testing.T) {
	im := FromImage(testImage(0xFF))
	if im.Width != 4 || im.Height != 3 || im.ColorSpace != "DeviceRGB" {
		t.Fatalf("unexpected image %dx%d %s", im.Width, im.Height, im.ColorSpace)
	}
	if im.Mask != nil {
		t.Error("opaque image has a mask")
	}
	samples, err := codec.Decompress(im.Data)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3*4*3 {
		t.Fatalf("got %d samples, want 36", len(samples))
	}
	// pixel (2, 1)
	want := []byte{120, 80, 7}
	if d := cmp.Diff(want, samples[3*(1*4+2):3*(1*4+2)+3]); d != "" {
		t.Errorf("pixel (2,1) (-want +got):\n%s", d)
	}
}

func TestFromImageAlpha(t *testing.T) {
	im := FromImage(testImage(0x80))
	if im.Mask == nil {
		t.Fatal("mask missing")
	}
	alpha, err := codec.Decompress(im.Mask.Data)
	if err != nil {
		t.Fatal(err)
	}
	if len(alpha) != 12 || alpha[0] != 0x80 {
		t.Errorf("wrong alpha channel % x", alpha)
	}
}

func TestFromImageGray(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 7, 7))
	src.SetGray(6, 6, color.Gray{Y: 200})
	im := FromImage(src)
	if im.ColorSpace != "DeviceGray" {
		t.Fatalf("got color space %s", im.ColorSpace)
	}
	samples, err := codec.Decompress(im.Data)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]byte{0, 0, 0, 200}, samples); d != "" {
		t.Errorf("samples (-want +got):\n%s", d)
	}
}

func TestFromJPEG(t *testing.T) {
	buf := &bytes.Buffer{}
	err := jpeg.Encode(buf, testImage(0xFF), nil)
	if err != nil {
		t.Fatal(err)
	}
	im, err := FromJPEG(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if im.Width != 4 || im.Height != 3 || im.Filter != "DCTDecode" || im.ColorSpace != "DeviceRGB" {
		t.Errorf("unexpected image %+v", im.Dict())
	}
	if !bytes.Equal(im.Data, buf.Bytes()) {
		t.Error("JPEG data was modified")
	}

	_, err = FromJPEG(bytes.NewReader([]byte("not a jpeg")))
	if err == nil {
		t.Error("invalid JPEG accepted")
	}
}

func TestFromBMP(t *testing.T) {
	buf := &bytes.Buffer{}
	err := bmp.Encode(buf, testImage(0xFF))
	if err != nil {
		t.Fatal(err)
	}
	im, err := FromBMP(buf)
	if err != nil {
		t.Fatal(err)
	}
	direct := FromImage(testImage(0xFF))
	if d := cmp.Diff(direct.Dict(), im.Dict()); d != "" {
		t.Errorf("dict (-want +got):\n%s", d)
	}
}

func TestEmbed(t *testing.T) {
	im := FromImage(testImage(0x40))

	buf := &bytes.Buffer{}
	w, err := pdfdoc.NewWriter(buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := im.Embed(w)
	if err != nil {
		t.Fatal(err)
	}
	catalog := w.Alloc()
	err = w.Put(catalog, pdfdoc.Dict{"Type": pdfdoc.Name("Catalog"), "Image": ref})
	if err != nil {
		t.Fatal(err)
	}
	err = w.Close(pdfdoc.Dict{"Root": catalog})
	if err != nil {
		t.Fatal(err)
	}

	file, err := pdfdoc.Read(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatal(err)
	}
	obj := file.Objects[ref.Number]
	if obj.GetValue("Subtype") != pdfdoc.Name("Image") {
		t.Errorf("wrong subtype %s", pdfdoc.Format(obj.GetValue("Subtype")))
	}
	if len(obj.Data) != 36 {
		t.Errorf("got %d decoded bytes, want 36", len(obj.Data))
	}
	mask := obj.GetObjectNumbers("SMask")
	if len(mask) != 1 || len(file.Objects[mask[0]].Data) != 12 {
		t.Errorf("soft mask not found")
	}
}

func TestResourceID(t *testing.T) {
	if got := ResourceID(3); got != "Im3" {
		t.Errorf("got %s, want Im3", got)
	}
}
