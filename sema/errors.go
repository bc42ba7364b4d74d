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

package sema

import (
	"fmt"

	"github.com/onflow/generics/errors"
)

//go:generate go tool stringer -type=SubstitutionMapArityKind -trimprefix=SubstitutionMapArityKind

type SubstitutionMapArityKind uint8

const (
	SubstitutionMapArityKindReplacementTypes SubstitutionMapArityKind = iota
	SubstitutionMapArityKindConformances
)

// SubstitutionMapArityError is reported when a substitution map is created
// with the wrong number of replacement types or conformances.
type SubstitutionMapArityError struct {
	Context  *GenericContext
	Kind     SubstitutionMapArityKind
	Expected int
	Actual   int
}

var _ errors.InternalError = &SubstitutionMapArityError{}

func (*SubstitutionMapArityError) IsInternalError() {}

func (e *SubstitutionMapArityError) Error() string {
	kind := "replacement types"
	if e.Kind == SubstitutionMapArityKindConformances {
		kind = "conformances"
	}
	if e.Context == nil {
		return fmt.Sprintf(
			"substitution map without generic context cannot have %s",
			kind,
		)
	}
	return fmt.Sprintf(
		"substitution map for %s expects %d %s, got %d",
		e.Context,
		e.Expected,
		kind,
		e.Actual,
	)
}

// PackShapeMismatchError is reported when a parameter pack is not replaced by a pack type,
// or a scalar parameter is replaced by a pack type.
type PackShapeMismatchError struct {
	Param           *GenericParamType
	ReplacementType Type
}

var _ errors.InternalError = &PackShapeMismatchError{}

func (*PackShapeMismatchError) IsInternalError() {}

func (e *PackShapeMismatchError) Error() string {
	if e.Param.IsPack {
		return fmt.Sprintf(
			"parameter pack %s must be replaced by a pack type, got %s",
			e.Param,
			e.ReplacementType,
		)
	}
	return fmt.Sprintf(
		"generic parameter %s cannot be replaced by pack type %s",
		e.Param,
		e.ReplacementType,
	)
}

// VerificationError is reported when a conformance of a substitution map
// is inconsistent with its replacement type.
type VerificationError struct {
	Map         SubstitutionMap
	Requirement Requirement
	SubstType   Type
	Conformance ConformanceRef
	Message     string
}

var _ errors.InternalError = &VerificationError{}
var _ errors.SecondaryError = &VerificationError{}

func (*VerificationError) IsInternalError() {}

func (e *VerificationError) Error() string {
	return fmt.Sprintf(
		"invalid substitution map: %s: requirement `%s`, substituted type `%s`, conformance `%s`",
		e.Message,
		e.Requirement,
		e.SubstType,
		e.Conformance,
	)
}

func (e *VerificationError) SecondaryError() string {
	return "substitution map:\n" + e.Map.String()
}
