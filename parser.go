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
	"errors"
	"fmt"
	"io"
	"strconv"
)

// maxNesting limits the depth of nested arrays and dictionaries.
const maxNesting = 256

// parser builds the object tree from the token sequence.
type parser struct {
	lex *lexer
}

// ParseObject parses the PDF representation of a single direct object.
func ParseObject(data []byte) (Object, error) {
	p := &parser{lex: newLexer(data, 0)}
	obj, err := p.readObject()
	if err != nil {
		return nil, err
	}
	p.lex.skipWhiteSpace()
	if p.lex.pos < len(data) {
		return nil, p.lex.errorf(p.lex.pos, errors.New("unexpected data after object"))
	}
	return obj, nil
}

func (p *parser) readObject() (Object, error) {
	return p.readObjectDepth(0)
}

func (p *parser) readObjectDepth(depth int) (Object, error) {
	if depth > maxNesting {
		return nil, p.lex.errorf(p.lex.pos, errors.New("objects nested too deeply"))
	}

	pos := p.lex.pos
	tok, err := p.lex.next()
	if err == io.EOF {
		return nil, p.lex.errorf(pos, io.ErrUnexpectedEOF)
	} else if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case TokenInteger:
		x, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			// too large for an integer
			f, err := strconv.ParseFloat(tok.Text, 64)
			if err != nil {
				return nil, p.lex.errorf(pos, err)
			}
			return Real(f), nil
		}
		if ref, ok := p.tryReference(x); ok {
			return ref, nil
		}
		return Integer(x), nil
	case TokenReal:
		x, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.lex.errorf(pos, err)
		}
		return Real(x), nil
	case TokenName:
		return decodeName(tok.Text), nil
	case TokenString:
		return decodeLiteralString(tok.Text), nil
	case TokenHexString:
		return decodeHexString(tok.Text), nil
	case TokenArrayStart:
		return p.readArray(depth)
	case TokenDictStart:
		return p.readDict(depth)
	case TokenKeyword:
		switch tok.Text {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return nil, nil
		}
	}
	return nil, p.lex.errorf(pos, fmt.Errorf("unexpected token %q", tok.Text))
}

// tryReference checks whether the integer x just read is the start of an
// "n g R" reference and consumes the rest of the reference if so.
func (p *parser) tryReference(x int64) (Reference, bool) {
	save := p.lex.pos
	gen, err := p.lex.next()
	if err != nil || gen.Kind != TokenInteger {
		p.lex.pos = save
		return Reference{}, false
	}
	r, err := p.lex.next()
	if err != nil || !r.IsKeyword("R") {
		p.lex.pos = save
		return Reference{}, false
	}
	g, err := strconv.ParseUint(gen.Text, 10, 16)
	if err != nil || x < 0 || x > 1<<31-1 {
		p.lex.pos = save
		return Reference{}, false
	}
	return Reference{Number: int(x), Generation: uint16(g)}, true
}

func (p *parser) readArray(depth int) (Array, error) {
	res := Array{}
	for {
		tok, err := p.lex.peek()
		if err == io.EOF {
			return nil, p.lex.errorf(p.lex.pos, io.ErrUnexpectedEOF)
		} else if err != nil {
			return nil, err
		}
		if tok.Kind == TokenArrayEnd {
			p.lex.next()
			return res, nil
		}
		obj, err := p.readObjectDepth(depth + 1)
		if err != nil {
			return nil, err
		}
		res = append(res, obj)
	}
}

func (p *parser) readDict(depth int) (Dict, error) {
	res := Dict{}
	for {
		pos := p.lex.pos
		tok, err := p.lex.next()
		if err == io.EOF {
			return nil, p.lex.errorf(pos, io.ErrUnexpectedEOF)
		} else if err != nil {
			return nil, err
		}
		if tok.Kind == TokenDictEnd {
			return res, nil
		}
		if tok.Kind != TokenName {
			return nil, p.lex.errorf(pos, fmt.Errorf("expected name but got %q", tok.Text))
		}
		key := decodeName(tok.Text)

		obj, err := p.readObjectDepth(depth + 1)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			res[key] = obj
		}
	}
}

func decodeName(text string) Name {
	s := text[1:]
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '#' && i+2 < len(s) && unhex(s[i+1]) >= 0 && unhex(s[i+2]) >= 0 {
			buf = append(buf, byte(unhex(s[i+1])<<4|unhex(s[i+2])))
			i += 2
			continue
		}
		buf = append(buf, c)
	}
	return Name(buf)
}

func decodeLiteralString(text string) String {
	s := text[1 : len(text)-1]
	res := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\r':
			// an end-of-line marker in the string is read as \n
			res = append(res, '\n')
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			continue
		case '\\':
			// handled below
		default:
			res = append(res, c)
			continue
		}

		i++
		if i >= len(s) {
			break
		}
		c = s[i]
		switch c {
		case 'n':
			res = append(res, '\n')
		case 'r':
			res = append(res, '\r')
		case 't':
			res = append(res, '\t')
		case 'b':
			res = append(res, '\b')
		case 'f':
			res = append(res, '\f')
		case '\r':
			// line continuation
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\n':
			// line continuation
		case '0', '1', '2', '3', '4', '5', '6', '7':
			x := int(c - '0')
			for k := 0; k < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; k++ {
				i++
				x = 8*x + int(s[i]-'0')
			}
			res = append(res, byte(x))
		default:
			// this includes \(, \) and \\
			res = append(res, c)
		}
	}
	return String(res)
}

func decodeHexString(text string) String {
	s := text[1 : len(text)-1]
	res := make([]byte, 0, len(s)/2+1)
	var hi int
	odd := false
	for i := 0; i < len(s); i++ {
		d := unhex(s[i])
		if d < 0 {
			continue
		}
		if odd {
			res = append(res, byte(hi<<4|d))
		} else {
			hi = d
		}
		odd = !odd
	}
	if odd {
		res = append(res, byte(hi<<4))
	}
	return String(res)
}
