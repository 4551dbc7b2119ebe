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

package annotation

// Flags is the /F entry of an annotation dictionary.
type Flags uint16

// Annotation flags used for links.  PDF/A-1 requires FlagPrint and forbids
// FlagInvisible, FlagHidden and FlagNoView.
const (
	FlagInvisible Flags = 1 << 0
	FlagHidden    Flags = 1 << 1
	FlagPrint     Flags = 1 << 2
	FlagNoZoom    Flags = 1 << 3
	FlagNoRotate  Flags = 1 << 4
	FlagNoView    Flags = 1 << 5
	FlagReadOnly  Flags = 1 << 6
)

// Printable reports whether an annotation with these flags appears both
// on screen and in print.
func (f Flags) Printable() bool {
	return f&FlagPrint != 0 && f&(FlagInvisible|FlagHidden|FlagNoView) == 0
}
