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
	"fmt"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/onflow/generics/errors"
)

//go:generate go tool stringer -type=DeclarationKind -trimprefix=DeclarationKind

type DeclarationKind uint8

const (
	DeclarationKindUnknown DeclarationKind = iota
	DeclarationKindInterface
	DeclarationKindNominal
	DeclarationKindType
	DeclarationKindAssociatedType
	DeclarationKindContext
	DeclarationKindMember
	DeclarationKindMap
	DeclarationKindConformance
)

// Name returns the lower-case name of the kind, as used in error messages.
func (k DeclarationKind) Name() string {
	switch k {
	case DeclarationKindInterface:
		return "interface"
	case DeclarationKindNominal:
		return "nominal type"
	case DeclarationKindType:
		return "type"
	case DeclarationKindAssociatedType:
		return "associated type"
	case DeclarationKindContext:
		return "generic context"
	case DeclarationKindMember:
		return "member"
	case DeclarationKindMap:
		return "substitution map"
	case DeclarationKindConformance:
		return "conformance"
	}

	return "declaration"
}

// UnknownDeclarationError

type UnknownDeclarationError struct {
	Name         string
	ExpectedKind DeclarationKind
	// Candidates are the names declared with the expected kind
	Candidates []string
}

var _ errors.UserError = &UnknownDeclarationError{}
var _ errors.SecondaryError = &UnknownDeclarationError{}

func (*UnknownDeclarationError) IsUserError() {}

func (e *UnknownDeclarationError) Error() string {
	return fmt.Sprintf(
		"cannot find %s: `%s`",
		e.ExpectedKind.Name(),
		e.Name,
	)
}

func (e *UnknownDeclarationError) SecondaryError() string {
	closest := e.findClosestCandidate()
	if closest == "" {
		return "not declared"
	}
	return fmt.Sprintf("did you mean `%s`?", closest)
}

// findClosestCandidate finds the candidate with the smallest edit distance from the name.
// In cases of typos, this should provide a helpful hint.
func (e *UnknownDeclarationError) findClosestCandidate() (closest string) {
	nameRunes := []rune(e.Name)

	closestDistance := len(e.Name)

	sortedCandidates := make([]string, len(e.Candidates))
	copy(sortedCandidates, e.Candidates)
	sort.Strings(sortedCandidates)

	for _, candidate := range sortedCandidates {
		distance := levenshtein.DistanceForStrings(
			nameRunes,
			[]rune(candidate),
			levenshtein.DefaultOptions,
		)

		// Skip candidates which would require a complete replacement of the name
		if distance < closestDistance && distance < len(candidate) {
			closest = candidate
			closestDistance = distance
		}
	}

	return
}

// DuplicateDeclarationError

type DuplicateDeclarationError struct {
	Name string
	Kind DeclarationKind
}

var _ errors.UserError = &DuplicateDeclarationError{}

func (*DuplicateDeclarationError) IsUserError() {}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf(
		"cannot redeclare %s: `%s` is already declared",
		e.Kind.Name(),
		e.Name,
	)
}

// TypeSyntaxError

type TypeSyntaxError struct {
	Input   string
	Offset  int
	Message string
}

var _ errors.UserError = &TypeSyntaxError{}
var _ errors.SecondaryError = &TypeSyntaxError{}

func (*TypeSyntaxError) IsUserError() {}

func (e *TypeSyntaxError) Error() string {
	return fmt.Sprintf(
		"invalid type `%s` at offset %d: %s",
		e.Input,
		e.Offset,
		e.Message,
	)
}

func (e *TypeSyntaxError) SecondaryError() string {
	var sb strings.Builder
	sb.WriteString(e.Input)
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat(" ", len([]rune(e.Input[:e.Offset]))))
	sb.WriteByte('^')
	return sb.String()
}

// InvalidDeclarationError

// InvalidDeclarationError reports a declaration which is well-formed,
// but cannot be expressed in the type universe.
type InvalidDeclarationError struct {
	Name    string
	Kind    DeclarationKind
	Message string
}

var _ errors.UserError = &InvalidDeclarationError{}

func (*InvalidDeclarationError) IsUserError() {}

func (e *InvalidDeclarationError) Error() string {
	return fmt.Sprintf(
		"invalid %s `%s`: %s",
		e.Kind.Name(),
		e.Name,
		e.Message,
	)
}

// InvalidQueryError

type InvalidQueryError struct {
	Index   int
	Message string
}

var _ errors.UserError = &InvalidQueryError{}

func (*InvalidQueryError) IsUserError() {}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query #%d: %s", e.Index, e.Message)
}
