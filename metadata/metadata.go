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

// Package metadata builds and reads XMP metadata streams.
//
// The packets written by this package carry the Dublin Core, XMP basic and
// Adobe PDF schemas, plus the identification schemas required by PDF/A and
// PDF/UA.
package metadata

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"seehuhn.de/go/xmp"

	"seehuhn.de/go/pdfdoc"
)

// PDF is the XMP namespace for PDF metadata.
type PDF struct {
	_        xmp.Namespace `xmp:"http://ns.adobe.com/pdf/1.3/"`
	_        xmp.Prefix    `xmp:"pdf"`
	Keywords xmp.Text
	Producer xmp.AgentName
}

// PDFA is the PDF/A identification schema.
type PDFA struct {
	_           xmp.Namespace `xmp:"http://www.aiim.org/pdfa/ns/id/"`
	_           xmp.Prefix    `xmp:"pdfaid"`
	Part        xmp.Text      `xmp:"part"`
	Conformance xmp.Text      `xmp:"conformance"`
}

// PDFUA is the PDF/UA identification schema.
type PDFUA struct {
	_    xmp.Namespace `xmp:"http://www.aiim.org/pdfua/ns/id/"`
	_    xmp.Prefix    `xmp:"pdfuaid"`
	Part xmp.Text      `xmp:"part"`
}

// Info lists the document properties recorded in the packet.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Producer string
	Created  time.Time
	Modified time.Time
	Lang     language.Tag

	// PDFAPart and PDFAConformance are written to the pdfaid schema if
	// PDFAPart is non-zero, for example 1 and "B" for PDF/A-1b.
	PDFAPart        int
	PDFAConformance string

	// PDFUAPart is written to the pdfuaid schema if non-zero.
	PDFUAPart int
}

// Stream represents an XMP metadata stream.
type Stream struct {
	Data *xmp.Packet
}

// New builds a metadata packet from info.
func New(info *Info) (*Stream, error) {
	lang := info.Lang
	if lang == language.Und {
		lang = language.MustParse("x-default")
	}

	dc := &xmp.DublinCore{}
	if info.Title != "" {
		dc.Title.Set(lang, info.Title)
	}
	if info.Author != "" {
		dc.Creator.Append(xmp.NewProperName(info.Author))
	}
	if info.Subject != "" {
		dc.Description.Set(lang, info.Subject)
	}

	basic := &xmp.Basic{}
	if !info.Created.IsZero() {
		basic.CreateDate = xmp.NewDate(info.Created)
	}
	if !info.Modified.IsZero() {
		basic.ModifyDate = xmp.NewDate(info.Modified)
	}

	pdfInfo := &PDF{}
	if info.Keywords != "" {
		pdfInfo.Keywords = xmp.NewText(info.Keywords)
	}
	if info.Producer != "" {
		pdfInfo.Producer = xmp.NewAgentName(info.Producer)
	}

	packet := xmp.NewPacket()
	err := packet.Set(dc, basic, pdfInfo)
	if err != nil {
		return nil, err
	}

	if info.PDFAPart > 0 {
		id := &PDFA{
			Part:        xmp.NewText(strconv.Itoa(info.PDFAPart)),
			Conformance: xmp.NewText(info.PDFAConformance),
		}
		err = packet.Set(id)
		if err != nil {
			return nil, err
		}
	}
	if info.PDFUAPart > 0 {
		id := &PDFUA{Part: xmp.NewText(strconv.Itoa(info.PDFUAPart))}
		err = packet.Set(id)
		if err != nil {
			return nil, err
		}
	}

	return &Stream{Data: packet}, nil
}

// Bytes serializes the packet.
func (s *Stream) Bytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	err := s.Data.Write(buf, &xmp.PacketOptions{Pretty: true})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Embed writes the packet as a metadata stream.  The stream is not
// compressed, so that the metadata can be found by tools which do not
// understand PDF.
func (s *Stream) Embed(w *pdfdoc.Writer) (pdfdoc.Reference, error) {
	body, err := s.Bytes()
	if err != nil {
		return pdfdoc.Reference{}, err
	}
	ref := w.Alloc()
	dict := pdfdoc.Dict{
		"Type":    pdfdoc.Name("Metadata"),
		"Subtype": pdfdoc.Name("XML"),
	}
	err = w.PutStream(ref, dict, body)
	if err != nil {
		return pdfdoc.Reference{}, err
	}
	return ref, nil
}

// Extract reads a metadata stream from a file.
func Extract(objs pdfdoc.Objects, ref pdfdoc.Object) (*Stream, error) {
	r, ok := ref.(pdfdoc.Reference)
	if !ok {
		return nil, errors.New("metadata must be an indirect stream")
	}
	obj := objs[r.Number]
	if !obj.IsStream() {
		return nil, &pdfdoc.FormatError{Err: errors.New("metadata is not a stream")}
	}

	packet, err := xmp.Read(bytes.NewReader(obj.Data))
	if err != nil {
		return nil, err
	}
	return &Stream{Data: packet}, nil
}

// PDFA returns the PDF/A part and conformance level recorded in the packet.
// The part is 0 if the packet does not claim PDF/A conformance.
func (s *Stream) PDFA() (int, string) {
	id := &PDFA{}
	s.Data.Get(id)
	part, _ := strconv.Atoi(id.Part.V)
	return part, id.Conformance.V
}

// PDFUA returns the PDF/UA part recorded in the packet, or 0.
func (s *Stream) PDFUA() int {
	id := &PDFUA{}
	s.Data.Get(id)
	part, _ := strconv.Atoi(id.Part.V)
	return part
}

// Equal reports whether s and other represent the same XMP metadata.
func (s *Stream) Equal(other *Stream) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Data.Equal(other.Data)
}
