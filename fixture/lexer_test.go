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
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/onflow/generics/test_utils/common_utils"
)

func TestLex(t *testing.T) {

	t.Parallel()

	t.Run("nominal with arguments", func(t *testing.T) {
		t.Parallel()

		tokens, err := Lex("Array<Box<T>>")
		require.NoError(t, err)

		AssertEqualWithDiff(t,
			[]Token{
				{Type: TokenTypeIdentifier, Text: "Array", Offset: 0},
				{Type: TokenTypeLess, Text: "<", Offset: 5},
				{Type: TokenTypeIdentifier, Text: "Box", Offset: 6},
				{Type: TokenTypeLess, Text: "<", Offset: 9},
				{Type: TokenTypeIdentifier, Text: "T", Offset: 10},
				{Type: TokenTypeGreater, Text: ">", Offset: 11},
				{Type: TokenTypeGreater, Text: ">", Offset: 12},
				{Type: TokenTypeEOF, Offset: 13},
			},
			tokens,
		)
	})

	t.Run("two-character tokens", func(t *testing.T) {
		t.Parallel()

		tokens, err := Lex("(A)->B == C")
		require.NoError(t, err)

		types := make([]TokenType, 0, len(tokens))
		for _, token := range tokens {
			types = append(types, token.Type)
		}

		assert.Equal(t,
			[]TokenType{
				TokenTypeParenOpen,
				TokenTypeIdentifier,
				TokenTypeParenClose,
				TokenTypeArrow,
				TokenTypeIdentifier,
				TokenTypeEqualEqual,
				TokenTypeIdentifier,
				TokenTypeEOF,
			},
			types,
		)
	})

	t.Run("identifiers", func(t *testing.T) {
		t.Parallel()

		tokens, err := Lex(" _a1 τ_0_0\tSelf ")
		require.NoError(t, err)
		require.Len(t, tokens, 4)

		assert.Equal(t, "_a1", tokens[0].Text)
		assert.Equal(t, "τ_0_0", tokens[1].Text)
		assert.Equal(t, 5, tokens[1].Offset)
		assert.True(t, tokens[2].IsKeyword(KeywordSelf))
		assert.True(t, tokens[3].Is(TokenTypeEOF))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		tokens, err := Lex("")
		require.NoError(t, err)
		assert.Equal(t, []Token{{Type: TokenTypeEOF}}, tokens)
	})

	t.Run("unexpected character", func(t *testing.T) {
		t.Parallel()

		_, err := Lex("Array<Int]")
		RequireUserError(t, err)

		var syntaxErr *TypeSyntaxError
		require.ErrorAs(t, err, &syntaxErr)
		assert.Equal(t, 9, syntaxErr.Offset)
		assert.Equal(t, "Array<Int]\n         ^", syntaxErr.SecondaryError())
	})

	t.Run("single equals", func(t *testing.T) {
		t.Parallel()

		_, err := Lex("A = B")
		var syntaxErr *TypeSyntaxError
		require.ErrorAs(t, err, &syntaxErr)
		assert.Equal(t, 2, syntaxErr.Offset)
	})
}

func TestLexProperties(t *testing.T) {

	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property(
		"identifiers separated by commas lex to alternating tokens",
		prop.ForAll(
			func(names []string) bool {
				input := ""
				for i, name := range names {
					if i > 0 {
						input += ", "
					}
					input += name
				}

				tokens, err := Lex(input)
				if err != nil {
					return false
				}

				expectedCount := 2*len(names) + 1
				if len(names) == 0 {
					expectedCount = 1
				}
				if len(tokens) != expectedCount {
					return false
				}

				for i, name := range names {
					token := tokens[2*i]
					if !token.Is(TokenTypeIdentifier) || token.Text != name {
						return false
					}
					if input[token.Offset:token.Offset+len(name)] != name {
						return false
					}
				}
				return tokens[len(tokens)-1].Is(TokenTypeEOF)
			},
			gen.SliceOf(gen.Identifier()),
		),
	)

	properties.Property(
		"keywords are exactly the reserved identifiers",
		prop.ForAll(
			func(name string) bool {
				reserved := false
				for _, keyword := range allKeywords {
					if keyword == name {
						reserved = true
					}
				}
				return IsKeyword(name) == reserved
			},
			gen.OneGenOf(
				gen.Identifier(),
				gen.OneConstOf(
					KeywordEach,
					KeywordRepeat,
					KeywordAny,
					KeywordPack,
					KeywordSelf,
				),
			),
		),
	)

	properties.TestingRun(t)
}
