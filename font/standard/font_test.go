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

package standard

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfdoc"
)

func TestDict(t *testing.T) {
	for _, f := range All {
		if !f.IsValid() {
			t.Errorf("%s is not valid", f)
		}
		dict := f.Dict()
		if dict["BaseFont"] != pdfdoc.Name(f) {
			t.Errorf("%s: wrong BaseFont %s", f, pdfdoc.Format(dict["BaseFont"]))
		}
		_, hasEncoding := dict["Encoding"]
		if hasEncoding == f.IsSymbolic() {
			t.Errorf("%s: unexpected /Encoding state", f)
		}
	}
	if Font("Arial").IsValid() {
		t.Error("Arial is not a standard font")
	}
}

func TestEncode(t *testing.T) {
	cases := []struct {
		font Font
		in   string
		want pdfdoc.String
	}{
		{Helvetica, "Hello", pdfdoc.String("Hello")},
		{Helvetica, "", pdfdoc.String{}},
		{TimesRoman, "café €", pdfdoc.String("caf\xe9 \x80")},
		{Courier, "“q”", pdfdoc.String("\x93q\x94")},
		{Symbol, "abc", pdfdoc.String("abc")},
	}
	for _, c := range cases {
		got, err := c.font.Encode(c.in)
		if err != nil {
			t.Errorf("%s %q: %v", c.font, c.in, err)
			continue
		}
		if d := cmp.Diff(c.want, got); d != "" {
			t.Errorf("%s %q (-want +got):\n%s", c.font, c.in, d)
		}
	}
}

func TestEncodeError(t *testing.T) {
	_, err := Helvetica.Encode("中")
	var ee *EncodeError
	if !errors.As(err, &ee) || ee.Rune != '中' {
		t.Errorf("expected EncodeError, got %v", err)
	}
}

func TestResourceID(t *testing.T) {
	if got := ResourceID(12); got != "F12" {
		t.Errorf("got %s, want F12", got)
	}
}
