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

// Pdfstamp adds a line of text to a page of an existing PDF file.
//
// The file is read completely, a font resource and a new content stream
// are added to the page, and all objects are written to the output file.
// Object numbers are preserved.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfdoc"
	"seehuhn.de/go/pdfdoc/font/standard"
)

var (
	pageNum    = flag.Int("page", 1, "page to stamp, starting from 1")
	fontName   = flag.String("font", string(standard.Helvetica), "standard font")
	fontSize   = flag.Float64("size", 12, "font size")
	posX       = flag.Float64("x", 72, "horizontal position of the text")
	posY       = flag.Float64("y", 72, "vertical position of the text")
	xrefStm    = flag.Bool("xref-stream", false, "write a cross-reference stream")
	objStreams = flag.Bool("object-streams", false, "pack objects into object streams")
)

func main() {
	flag.CommandLine.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [options] <in.pdf> <out.pdf> <text>\n\nOptions:\n",
			filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 3 {
		flag.CommandLine.Usage()
		os.Exit(1)
	}

	err := run(flag.Arg(0), flag.Arg(1), flag.Arg(2))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(in, out, text string) error {
	file, err := pdfdoc.ReadFile(in, nil)
	if err != nil {
		return err
	}

	s := &stamp{
		Page: *pageNum,
		Font: standard.Font(*fontName),
		Size: *fontSize,
		Pos:  vec.Vec2{X: *posX, Y: *posY},
		Text: text,
	}
	err = s.apply(file)
	if err != nil {
		return err
	}

	fd, err := os.Create(out)
	if err != nil {
		return err
	}
	err = file.Write(fd, &pdfdoc.WriterOptions{
		XRefStream:    *xrefStm,
		ObjectStreams: *objStreams,
	})
	if err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

type stamp struct {
	Page int
	Font standard.Font
	Size float64
	Pos  vec.Vec2
	Text string
}

// apply adds the text to the selected page of file.
func (s *stamp) apply(file *pdfdoc.File) error {
	if !s.Font.IsValid() {
		return fmt.Errorf("%q is not a standard font", s.Font)
	}
	pages, err := file.GetPageObjects()
	if err != nil {
		return err
	}
	if s.Page < 1 || s.Page > len(pages) {
		return fmt.Errorf("page %d not found, file has %d pages", s.Page, len(pages))
	}
	page := pages[s.Page-1]

	encoded, err := s.Font.Encode(s.Text)
	if err != nil {
		return err
	}

	id := standard.ResourceID(file.Objects.Max() + 1)
	_, err = page.AddFontResource(id, s.Font.Dict(), file.Objects)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("q BT /%s %s Tf %s %s Td %s Tj ET Q",
		id, pdfdoc.FormatReal(s.Size),
		pdfdoc.FormatReal(s.Pos.X), pdfdoc.FormatReal(s.Pos.Y),
		pdfdoc.Format(encoded))
	_, err = page.AddContent([]byte(content), file.Objects)
	return err
}
