/*
 * Cadence - The resource-oriented smart contract programming language
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package fixture

import (
	"unicode"
	"unicode/utf8"
)

//go:generate go tool stringer -type=TokenType -trimprefix=TokenType

type TokenType uint8

const (
	TokenTypeEOF TokenType = iota
	TokenTypeIdentifier
	TokenTypeLess
	TokenTypeGreater
	TokenTypeComma
	TokenTypeDot
	TokenTypeColon
	TokenTypeEqualEqual
	TokenTypeArrow
	TokenTypeParenOpen
	TokenTypeParenClose
	TokenTypeBraceOpen
	TokenTypeBraceClose
)

type Token struct {
	Type   TokenType
	Text   string
	Offset int
}

func (t Token) Is(tokenType TokenType) bool {
	return t.Type == tokenType
}

func (t Token) IsKeyword(keyword string) bool {
	return t.Type == TokenTypeIdentifier && t.Text == keyword
}

var singleCharacterTokens = map[rune]TokenType{
	'<': TokenTypeLess,
	'>': TokenTypeGreater,
	',': TokenTypeComma,
	'.': TokenTypeDot,
	':': TokenTypeColon,
	'(': TokenTypeParenOpen,
	')': TokenTypeParenClose,
	'{': TokenTypeBraceOpen,
	'}': TokenTypeBraceClose,
}

// Lex splits the type expression into tokens.
// The last token is always an EOF token.
func Lex(input string) ([]Token, error) {
	var tokens []Token

	offset := 0
	for offset < len(input) {
		r, width := utf8.DecodeRuneInString(input[offset:])

		switch {
		case unicode.IsSpace(r):
			offset += width

		case isIdentifierHead(r):
			start := offset
			offset += width
			for offset < len(input) {
				r, width = utf8.DecodeRuneInString(input[offset:])
				if !isIdentifierHead(r) && !unicode.IsDigit(r) {
					break
				}
				offset += width
			}
			tokens = append(tokens, Token{
				Type:   TokenTypeIdentifier,
				Text:   input[start:offset],
				Offset: start,
			})

		case r == '=' && offset+1 < len(input) && input[offset+1] == '=':
			tokens = append(tokens, Token{
				Type:   TokenTypeEqualEqual,
				Text:   "==",
				Offset: offset,
			})
			offset += 2

		case r == '-' && offset+1 < len(input) && input[offset+1] == '>':
			tokens = append(tokens, Token{
				Type:   TokenTypeArrow,
				Text:   "->",
				Offset: offset,
			})
			offset += 2

		default:
			tokenType, ok := singleCharacterTokens[r]
			if !ok {
				return nil, &TypeSyntaxError{
					Input:   input,
					Offset:  offset,
					Message: "unexpected character " + string(r),
				}
			}
			tokens = append(tokens, Token{
				Type:   tokenType,
				Text:   string(r),
				Offset: offset,
			})
			offset += width
		}
	}

	return append(tokens, Token{
		Type:   TokenTypeEOF,
		Offset: len(input),
	}), nil
}

func isIdentifierHead(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
