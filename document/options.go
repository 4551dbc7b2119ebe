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

package document

import (
	"log/slog"
	"time"

	"golang.org/x/text/language"
)

// Compliance selects the conformance level of the generated file.
type Compliance int

// These are the supported conformance levels.
const (
	// None writes a plain PDF 1.5 file.
	None Compliance = iota

	// PDFA1B adds XMP metadata and an sRGB output intent, as required by
	// PDF/A-1b.  Features which PDF/A-1 forbids are rejected.
	PDFA1B

	// PDFUA additionally tags the document: marked content and link
	// annotations are recorded in a structure tree.
	PDFUA
)

func (c Compliance) String() string {
	switch c {
	case None:
		return "none"
	case PDFA1B:
		return "PDF/A-1b"
	case PDFUA:
		return "PDF/UA"
	default:
		return "unknown"
	}
}

// Options control the generation of a document.
type Options struct {
	Compliance Compliance

	// XRefStream selects a cross-reference stream instead of the classic
	// cross-reference table.  Not allowed for PDF/A-1b.
	XRefStream bool

	// ObjectStreams packs small objects into object streams.  This
	// implies XRefStream.
	ObjectStreams bool

	// CreationDate is recorded in the info dictionary and the metadata.
	// If zero, the current time is used.
	CreationDate time.Time

	// Language is the natural language of the document.  PDF/UA documents
	// default to US English.
	Language language.Tag

	// Producer names the software which generated the file.
	Producer string

	// Logger receives debug messages.  If nil, nothing is logged.
	Logger *slog.Logger
}

var defaultOptions = &Options{}

const defaultProducer = "seehuhn.de/go/pdfdoc"
