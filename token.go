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
	"io"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
)

// TokenKind classifies the atoms of PDF syntax.
type TokenKind int

// These are the token kinds produced by [Tokenize].
const (
	TokenInvalid TokenKind = iota
	TokenInteger
	TokenReal
	TokenName
	TokenString    // literal string, including the parentheses
	TokenHexString // hexadecimal string, including the angle brackets
	TokenKeyword   // true, false, null, R, obj, endobj, stream, ...
	TokenDictStart
	TokenDictEnd
	TokenArrayStart
	TokenArrayEnd
	TokenBraceOpen
	TokenBraceClose
)

// Token is a single atom of PDF syntax.  Text holds the token exactly as it
// appears in the file.
type Token struct {
	Kind TokenKind
	Text string
}

func (t Token) String() string {
	return t.Text
}

// IsKeyword reports whether t is the given keyword.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == TokenKeyword && t.Text == kw
}

// Tokenize splits PDF syntax into tokens.  The input must not contain
// stream data.
func Tokenize(data []byte) ([]Token, error) {
	l := newLexer(data, 0)
	var res []Token
	for {
		tok, err := l.next()
		if err == io.EOF {
			return res, nil
		} else if err != nil {
			return nil, err
		}
		res = append(res, tok)
	}
}

// Flatten converts an object into the flat token sequence used on the
// wire.  Every reference becomes exactly three tokens: the object number,
// the generation number and the keyword R.
func Flatten(obj Object) []Token {
	return appendTokens(nil, obj)
}

func appendTokens(res []Token, obj Object) []Token {
	switch x := obj.(type) {
	case nil:
		res = append(res, Token{Kind: TokenKeyword, Text: "null"})
	case Bool:
		res = append(res, Token{Kind: TokenKeyword, Text: Format(x)})
	case Integer:
		res = append(res, Token{Kind: TokenInteger, Text: Format(x)})
	case Real:
		res = append(res, Token{Kind: classifyRegular(Format(x)), Text: Format(x)})
	case Name:
		res = append(res, Token{Kind: TokenName, Text: Format(x)})
	case String:
		text := Format(x)
		kind := TokenString
		if strings.HasPrefix(text, "<") {
			kind = TokenHexString
		}
		res = append(res, Token{Kind: kind, Text: text})
	case Reference:
		res = append(res,
			Token{Kind: TokenInteger, Text: strconv.Itoa(x.Number)},
			Token{Kind: TokenInteger, Text: strconv.Itoa(int(x.Generation))},
			Token{Kind: TokenKeyword, Text: "R"})
	case Array:
		res = append(res, Token{Kind: TokenArrayStart, Text: "["})
		for _, elem := range x {
			res = appendTokens(res, elem)
		}
		res = append(res, Token{Kind: TokenArrayEnd, Text: "]"})
	case Dict:
		res = append(res, Token{Kind: TokenDictStart, Text: "<<"})
		keys := maps.Keys(x)
		slices.Sort(keys)
		for _, key := range keys {
			if x[key] == nil {
				continue
			}
			res = append(res, Token{Kind: TokenName, Text: Format(key)})
			res = appendTokens(res, x[key])
		}
		res = append(res, Token{Kind: TokenDictEnd, Text: ">>"})
	default:
		res = append(res, Token{Kind: TokenInvalid, Text: Format(x)})
	}
	return res
}

// JoinTokens formats a token sequence as text, separating tokens
// by single spaces.
func JoinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}
