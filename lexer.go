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
	"io"
)

// lexer splits a byte slice into tokens.  Stream data is not tokenized;
// the caller takes over after a "stream" keyword.
type lexer struct {
	data []byte
	pos  int

	// base is added to pos when reporting errors, for lexers which run
	// on a slice of a larger file.
	base int64
}

func newLexer(data []byte, pos int) *lexer {
	return &lexer{data: data, pos: pos}
}

func (l *lexer) errorf(pos int, err error) error {
	return &FormatError{Pos: l.base + int64(pos), Err: err}
}

// skipWhiteSpace skips white space and comments.
func (l *lexer) skipWhiteSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isSpace[c] {
			l.pos++
		} else if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		} else {
			break
		}
	}
}

// next returns the next token.  At the end of input, io.EOF is returned.
func (l *lexer) next() (Token, error) {
	l.skipWhiteSpace()
	if l.pos >= len(l.data) {
		return Token{}, io.EOF
	}

	start := l.pos
	c := l.data[l.pos]
	switch c {
	case '(':
		return l.readLiteralString()
	case '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return Token{Kind: TokenDictStart, Text: "<<"}, nil
		}
		return l.readHexString()
	case '>':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return Token{Kind: TokenDictEnd, Text: ">>"}, nil
		}
		return Token{}, l.errorf(start, errors.New("unexpected '>'"))
	case '[':
		l.pos++
		return Token{Kind: TokenArrayStart, Text: "["}, nil
	case ']':
		l.pos++
		return Token{Kind: TokenArrayEnd, Text: "]"}, nil
	case '{':
		l.pos++
		return Token{Kind: TokenBraceOpen, Text: "{"}, nil
	case '}':
		l.pos++
		return Token{Kind: TokenBraceClose, Text: "}"}, nil
	case ')':
		return Token{}, l.errorf(start, errors.New("unbalanced ')'"))
	case '/':
		l.pos++
		l.skipRegular()
		return Token{Kind: TokenName, Text: string(l.data[start:l.pos])}, nil
	}

	l.skipRegular()
	text := string(l.data[start:l.pos])
	return Token{Kind: classifyRegular(text), Text: text}, nil
}

// peek returns the next token without consuming it.
func (l *lexer) peek() (Token, error) {
	pos := l.pos
	tok, err := l.next()
	l.pos = pos
	return tok, err
}

func (l *lexer) skipRegular() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isSpace[c] || isDelimiter[c] {
			break
		}
		l.pos++
	}
}

func (l *lexer) readLiteralString() (Token, error) {
	start := l.pos
	l.pos++ // skip '('
	level := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			l.pos++
		case '(':
			level++
		case ')':
			level--
			if level == 0 {
				return Token{Kind: TokenString, Text: string(l.data[start:l.pos])}, nil
			}
		}
	}
	l.pos = len(l.data)
	return Token{}, l.errorf(start, errUnterminatedString)
}

func (l *lexer) readHexString() (Token, error) {
	start := l.pos
	l.pos++ // skip '<'
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			return Token{Kind: TokenHexString, Text: string(l.data[start:l.pos])}, nil
		}
		if !isSpace[c] && unhex(c) < 0 {
			return Token{}, l.errorf(l.pos-1, errors.New("invalid character in hex string"))
		}
	}
	return Token{}, l.errorf(start, errUnterminatedString)
}

// classifyRegular determines whether a run of regular characters
// is an integer, a real number, or a keyword.
func classifyRegular(s string) TokenKind {
	digits := 0
	dots := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		case (c == '+' || c == '-') && i == 0:
			// sign
		default:
			return TokenKeyword
		}
	}
	if digits == 0 || dots > 1 {
		return TokenKeyword
	}
	if dots == 1 {
		return TokenReal
	}
	return TokenInteger
}

var errUnterminatedString = errors.New("unterminated string")

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

var isSpace = [256]bool{
	0:  true,
	9:  true,
	10: true,
	12: true,
	13: true,
	32: true,
}

var isDelimiter = [256]bool{
	'(': true,
	')': true,
	'<': true,
	'>': true,
	'[': true,
	']': true,
	'{': true,
	'}': true,
	'/': true,
	'%': true,
}
