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
	"slices"

	"golang.org/x/exp/maps"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfdoc/codec"
)

// IndirectObject is a numbered object of a PDF file.
//
// For stream objects, Value holds the stream dictionary, Stream holds the
// stream data as stored in the file and Data holds the decoded data.
// For all other objects, Stream and Data are nil.
type IndirectObject struct {
	Number int
	Value  Object
	Stream []byte
	Data   []byte
}

// Dict returns the value of the object if it is a dictionary, and nil
// otherwise.  It is safe to call Dict on a nil object.
func (obj *IndirectObject) Dict() Dict {
	if obj == nil {
		return nil
	}
	dict, _ := obj.Value.(Dict)
	return dict
}

// IsStream reports whether the object is a stream.
func (obj *IndirectObject) IsStream() bool {
	return obj != nil && obj.Stream != nil
}

// GetValue returns the value stored under key in the object's dictionary.
// If the object is not a dictionary or the key is absent, nil is returned.
func (obj *IndirectObject) GetValue(key Name) Object {
	return obj.Dict()[key]
}

// GetObjectNumbers returns the object numbers referenced by the entry for
// key.  The entry can be a single reference or an array of references.
// Array elements which are not references are skipped.
func (obj *IndirectObject) GetObjectNumbers(key Name) []int {
	switch x := obj.GetValue(key).(type) {
	case Reference:
		return []int{x.Number}
	case Array:
		var res []int
		for _, elem := range x {
			if ref, ok := elem.(Reference); ok {
				res = append(res, ref.Number)
			}
		}
		return res
	default:
		return nil
	}
}

// IsPage reports whether the object is a page object.
func (obj *IndirectObject) IsPage() bool {
	return obj.GetValue("Type") == Name("Page")
}

// AddContentObject appends the content stream with the given number to the
// /Contents of a page object.  A single reference is turned into an array
// first.
func (obj *IndirectObject) AddContentObject(number int) error {
	dict := obj.Dict()
	if dict == nil {
		return &PreconditionError{
			Op:  "AddContentObject",
			Msg: fmt.Sprintf("object %d is not a dictionary", obj.Number),
		}
	}

	ref := NewReference(number)
	switch x := dict["Contents"].(type) {
	case nil:
		dict["Contents"] = Array{ref}
	case Reference:
		dict["Contents"] = Array{x, ref}
	case Array:
		dict["Contents"] = append(x, ref)
	default:
		return &PreconditionError{
			Op:  "AddContentObject",
			Msg: fmt.Sprintf("object %d has invalid /Contents %s", obj.Number, Format(x)),
		}
	}
	return nil
}

// AddContent creates a new compressed content stream holding content and
// appends it to the page.  The new object is added to objs, using the
// next free object number, which is returned.
// If /Contents refers to an indirect array, the array object is extended.
func (obj *IndirectObject) AddContent(content []byte, objs Objects) (int, error) {
	stream := &IndirectObject{
		Number: objs.Max() + 1,
		Value: Dict{
			"Filter": Name("FlateDecode"),
		},
		Stream: codec.Compress(content),
		Data:   content,
	}
	stream.Dict()["Length"] = Integer(len(stream.Stream))

	if list := contentsArray(obj, objs); list != nil {
		list.Value = append(list.Value.(Array), NewReference(stream.Number))
	} else {
		err := obj.AddContentObject(stream.Number)
		if err != nil {
			return 0, err
		}
	}
	objs[stream.Number] = stream
	return stream.Number, nil
}

// contentsArray returns the object holding the page's /Contents array,
// if /Contents is a reference to an array.
func contentsArray(page *IndirectObject, objs Objects) *IndirectObject {
	ref, ok := page.GetValue("Contents").(Reference)
	if !ok {
		return nil
	}
	target := objs[ref.Number]
	if target == nil || target.IsStream() {
		return nil
	}
	if _, ok := target.Value.(Array); !ok {
		return nil
	}
	return target
}

// AddFontResource adds the font dictionary font as a new object to objs and
// registers it in the page's /Font resources under the name id.
// The /Resources of the page, and the /Font dictionary inside it, may be
// direct objects or references.  Resources inherited from a parent node
// are copied into the page first, so that other pages are not affected.
func (obj *IndirectObject) AddFontResource(id Name, font Dict, objs Objects) (int, error) {
	dict := obj.Dict()
	if dict == nil {
		return 0, &PreconditionError{
			Op:  "AddFontResource",
			Msg: fmt.Sprintf("object %d is not a dictionary", obj.Number),
		}
	}

	var res Dict
	switch x := dict["Resources"].(type) {
	case Dict:
		res = x
	case Reference:
		target := objs[x.Number]
		if target == nil || target.Dict() == nil {
			return 0, &FormatError{
				Err: fmt.Errorf("object %d: unresolved /Resources %s", obj.Number, x),
			}
		}
		res = target.Dict()
	case nil:
		inherited, _ := objs.Resolve(objs.inherited(obj, "Resources")).(Dict)
		res = inherited.Clone()
		if res == nil {
			res = Dict{}
		}
		dict["Resources"] = res
	default:
		return 0, &FormatError{
			Err: fmt.Errorf("object %d: invalid /Resources %s", obj.Number, Format(x)),
		}
	}

	var fonts Dict
	switch x := res["Font"].(type) {
	case Dict:
		fonts = x
	case Reference:
		target := objs[x.Number]
		if target == nil || target.Dict() == nil {
			return 0, &FormatError{
				Err: fmt.Errorf("object %d: unresolved /Font %s", obj.Number, x),
			}
		}
		fonts = target.Dict()
	case nil:
		fonts = Dict{}
		res["Font"] = fonts
	default:
		return 0, &FormatError{
			Err: fmt.Errorf("object %d: invalid /Font %s", obj.Number, Format(x)),
		}
	}

	number := objs.Max() + 1
	objs[number] = &IndirectObject{Number: number, Value: font}
	fonts[id] = NewReference(number)
	return number, nil
}

// MediaBox returns the media box of a page object, taking into account
// values inherited from the page tree.
func (obj *IndirectObject) MediaBox(objs Objects) (rect.Rect, error) {
	box := objs.Resolve(objs.inherited(obj, "MediaBox"))
	x, err := GetNumbers(box)
	if err != nil || len(x) != 4 {
		return rect.Rect{}, &FormatError{
			Err: fmt.Errorf("object %d: invalid /MediaBox %s", obj.Number, Format(box)),
		}
	}
	return rect.Rect{
		LLx: min(x[0], x[2]),
		LLy: min(x[1], x[3]),
		URx: max(x[0], x[2]),
		URy: max(x[1], x[3]),
	}, nil
}

// Objects maps object numbers to the objects of a PDF file.
type Objects map[int]*IndirectObject

// Numbers returns the object numbers in increasing order.
func (objs Objects) Numbers() []int {
	numbers := maps.Keys(objs)
	slices.Sort(numbers)
	return numbers
}

// Max returns the largest object number in use, or 0 if objs is empty.
func (objs Objects) Max() int {
	res := 0
	for n := range objs {
		res = max(res, n)
	}
	return res
}

// Resolve follows references until a direct object is found.  Missing
// objects and reference loops resolve to nil.
func (objs Objects) Resolve(obj Object) Object {
	for range 32 {
		ref, ok := obj.(Reference)
		if !ok {
			return obj
		}
		target := objs[ref.Number]
		if target == nil {
			return nil
		}
		obj = target.Value
	}
	return nil
}

// inherited looks up an inheritable page attribute, walking up the
// /Parent chain if needed.
func (objs Objects) inherited(obj *IndirectObject, key Name) Object {
	seen := make(map[int]bool)
	for obj != nil && !seen[obj.Number] {
		seen[obj.Number] = true
		if val := obj.GetValue(key); val != nil {
			return val
		}
		parent, ok := obj.GetValue("Parent").(Reference)
		if !ok {
			break
		}
		obj = objs[parent.Number]
	}
	return nil
}
