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

package pdfdoc

import (
	"fmt"
	"time"
)

// Info represents a PDF Document Information Dictionary.
//
// All fields in this structure are optional.  The zero value represents
// an empty information dictionary.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Keywords string

	// Creator gives the name of the application that created the original
	// document, if the document was converted to PDF from another format.
	Creator string

	// Producer gives the name of the application that converted the document
	// to PDF.
	Producer string

	// CreationDate gives the date and time the document was created.
	CreationDate time.Time

	// ModDate gives the date and time the document was most recently modified.
	ModDate time.Time

	// Custom contains non-standard fields from the Info dictionary.
	Custom map[string]string
}

var standardInfoKeys = map[Name]bool{
	"Title": true, "Author": true, "Subject": true, "Keywords": true,
	"Creator": true, "Producer": true, "CreationDate": true, "ModDate": true,
	"Trapped": true,
}

// ExtractInfo decodes an Info dictionary.  References are resolved
// using objs.  If obj is nil, the function returns nil.
func ExtractInfo(objs Objects, obj Object) (*Info, error) {
	obj = objs.Resolve(obj)
	if obj == nil {
		return nil, nil
	}
	dict, ok := obj.(Dict)
	if !ok {
		return nil, &FormatError{Err: fmt.Errorf("invalid Info dictionary %s", Format(obj))}
	}

	text := func(key Name) string {
		s, _ := objs.Resolve(dict[key]).(String)
		return s.AsTextString()
	}
	date := func(key Name) time.Time {
		s, ok := objs.Resolve(dict[key]).(String)
		if !ok {
			return time.Time{}
		}
		t, err := s.AsDate()
		if err != nil {
			// ignore malformed dates
			return time.Time{}
		}
		return t
	}

	info := &Info{
		Title:        text("Title"),
		Author:       text("Author"),
		Subject:      text("Subject"),
		Keywords:     text("Keywords"),
		Creator:      text("Creator"),
		Producer:     text("Producer"),
		CreationDate: date("CreationDate"),
		ModDate:      date("ModDate"),
	}

	for key, val := range dict {
		if standardInfoKeys[key] {
			continue
		}
		if s, ok := objs.Resolve(val).(String); ok && len(s) > 0 {
			if info.Custom == nil {
				info.Custom = make(map[string]string)
			}
			info.Custom[string(key)] = s.AsTextString()
		}
	}

	return info, nil
}

// AsDict converts the Info dictionary to a PDF dictionary.
// If all fields are empty, the function returns nil.
func (info *Info) AsDict() Dict {
	if info == nil {
		return nil
	}

	dict := Dict{}
	set := func(key Name, val string) {
		if val != "" {
			dict[key] = TextString(val)
		}
	}
	set("Title", info.Title)
	set("Author", info.Author)
	set("Subject", info.Subject)
	set("Keywords", info.Keywords)
	set("Creator", info.Creator)
	set("Producer", info.Producer)
	if !info.CreationDate.IsZero() {
		dict["CreationDate"] = Date(info.CreationDate)
	}
	if !info.ModDate.IsZero() {
		dict["ModDate"] = Date(info.ModDate)
	}
	for key, val := range info.Custom {
		if !standardInfoKeys[Name(key)] {
			set(Name(key), val)
		}
	}

	if len(dict) == 0 {
		return nil
	}
	return dict
}
