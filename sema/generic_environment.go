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
	"sync"

	"github.com/onflow/generics/common"
	"github.com/onflow/generics/errors"
)

//go:generate go tool stringer -type=GenericEnvironmentKind -trimprefix=GenericEnvironmentKind

type GenericEnvironmentKind uint8

const (
	GenericEnvironmentKindPrimary GenericEnvironmentKind = iota
	// GenericEnvironmentKindOpaque environments bind the opaque result types of a declaration
	GenericEnvironmentKindOpaque
)

// GenericEnvironment maps the type parameters of a generic context
// to type variables (archetypes) and back.
type GenericEnvironment struct {
	id      uint64
	context *GenericContext
	kind    GenericEnvironmentKind
	// underlying maps the parameters of an opaque environment
	// to the types they stand for
	underlying SubstitutionMap

	mu            sync.Mutex
	typeVariables map[TypeID]*TypeVariable
}

func (u *Universe) NewGenericEnvironment(context *GenericContext) *GenericEnvironment {
	common.UseMemory(u.config.MemoryGauge, common.GenericEnvironmentMemoryUsage)

	return &GenericEnvironment{
		id:      u.environmentCount.Add(1),
		context: context,
		kind:    GenericEnvironmentKindPrimary,
	}
}

// NewOpaqueEnvironment returns an environment for opaque result types.
// The underlying map is over the given context and provides the types
// the opaque type variables stand for.
func (u *Universe) NewOpaqueEnvironment(
	context *GenericContext,
	underlying SubstitutionMap,
) *GenericEnvironment {
	if !underlying.Empty() && underlying.Context() != context {
		panic(errors.NewUnexpectedError(
			"underlying substitution map is over %s, expected %s",
			underlying.Context(),
			context,
		))
	}

	common.UseMemory(u.config.MemoryGauge, common.GenericEnvironmentMemoryUsage)

	return &GenericEnvironment{
		id:         u.environmentCount.Add(1),
		context:    context,
		kind:       GenericEnvironmentKindOpaque,
		underlying: underlying,
	}
}

func (e *GenericEnvironment) Context() *GenericContext {
	return e.context
}

func (e *GenericEnvironment) Kind() GenericEnvironmentKind {
	return e.kind
}

// UnderlyingSubstitutions returns the types the opaque type variables stand for.
// Empty for primary environments.
func (e *GenericEnvironment) UnderlyingSubstitutions() SubstitutionMap {
	return e.underlying
}

// TypeVariable returns the type variable for the given type parameter of the context.
// Type variables are unique per environment and type parameter.
func (e *GenericEnvironment) TypeVariable(interfaceType Type) *TypeVariable {
	interfaceType = interfaceType.Canonical()

	if AssertionsEnabled && !e.context.ContainsTypeParameter(interfaceType) {
		panic(errors.NewUnexpectedError(
			"type %s is not a type parameter of %s",
			interfaceType,
			e.context,
		))
	}

	id := interfaceType.ID()

	e.mu.Lock()
	defer e.mu.Unlock()

	typeVariable, ok := e.typeVariables[id]
	if ok {
		return typeVariable
	}

	common.UseMemory(e.context.universe.config.MemoryGauge, common.TypeVariableMemoryUsage)

	typeVariable = &TypeVariable{
		Environment:   e,
		InterfaceType: interfaceType,
	}
	if e.typeVariables == nil {
		e.typeVariables = map[TypeID]*TypeVariable{}
	}
	e.typeVariables[id] = typeVariable
	return typeVariable
}

// MapTypeIntoContext replaces the type parameters of the context in the given type
// with the type variables of this environment.
func (e *GenericEnvironment) MapTypeIntoContext(ty Type) Type {
	ifs := NewInFlightSubstitution(
		func(ty SubstitutableType) Type {
			param, ok := ty.(*GenericParamType)
			if !ok || e.context.ParamIndex(param) < 0 {
				return ty
			}
			if param.IsPack {
				return &PackType{
					Elements: []Type{
						&PackExpansionType{
							Pattern: e.TypeVariable(param),
							Count:   e.TypeVariable(param),
						},
					},
				}
			}
			return e.TypeVariable(param)
		},
		MakeAbstractConformanceForGenericType,
		0,
	)
	return ifs.SubstType(ty)
}

// MapTypeOutOfContext replaces the type variables in the given type
// with their interface types.
func (e *GenericEnvironment) MapTypeOutOfContext(ty Type) Type {
	ifs := NewInFlightSubstitution(
		MapTypeOutOfContext,
		MakeAbstractConformanceForGenericType,
		SubstOptionSubstituteTypeVariables|SubstOptionSubstituteOpaqueResults,
	)
	return ifs.SubstType(ty)
}

func (e *GenericEnvironment) String() string {
	return fmt.Sprintf("%s environment #%d %s", e.kind, e.id, e.context)
}

// MapTypeOutOfContext is a type substitution which replaces type variables with their interface types.
func MapTypeOutOfContext(ty SubstitutableType) Type {
	switch ty := ty.(type) {
	case *TypeVariable:
		return ty.InterfaceType
	case *GenericParamType:
		return ty
	default:
		panic(errors.NewUnreachableError())
	}
}
