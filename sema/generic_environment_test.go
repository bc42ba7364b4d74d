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
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/generics/common"
)

func TestGenericEnvironment_MapTypeIntoContext(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	param := NewGenericParamType(0, 0, false)
	context := d.universe.NewGenericContext(
		[]*GenericParamType{param},
		[]Requirement{
			NewConformanceRequirement(param, d.sequence),
		},
	)
	environment := context.Environment()
	assert.Same(t, environment, context.Environment())

	t.Run("generic parameter", func(t *testing.T) {
		t.Parallel()

		mapped := environment.MapTypeIntoContext(param)
		require.IsType(t, &TypeVariable{}, mapped)

		typeVariable := mapped.(*TypeVariable)
		assert.Same(t, environment, typeVariable.Environment)
		assert.True(t, typeVariable.IsRoot())
		assert.Equal(t, TypeVariableKindPrimary, typeVariable.Kind())
		assert.True(t, HasTypeVariable(mapped))
		assert.False(t, HasTypeParameter(mapped))

		assert.Equal(t, param.ID(), environment.MapTypeOutOfContext(mapped).ID())
	})

	t.Run("dependent member", func(t *testing.T) {
		t.Parallel()

		element := member(param, d.sequence, "Element")

		mapped := environment.MapTypeIntoContext(element)
		require.IsType(t, &TypeVariable{}, mapped)

		typeVariable := mapped.(*TypeVariable)
		assert.False(t, typeVariable.IsRoot())
		assert.Same(t, environment.TypeVariable(param), typeVariable.Root())

		assert.Equal(t, element.ID(), environment.MapTypeOutOfContext(mapped).ID())
	})

	t.Run("structural", func(t *testing.T) {
		t.Parallel()

		ty := &FunctionType{
			Parameters: []Type{d.arrayOf(param)},
			Result:     member(param, d.sequence, "Element"),
		}

		mapped := environment.MapTypeIntoContext(ty)
		assert.False(t, HasTypeParameter(mapped))
		assert.True(t, HasTypeVariable(mapped))

		assert.True(t, ty.Equal(environment.MapTypeOutOfContext(mapped)))
	})

	t.Run("concrete", func(t *testing.T) {
		t.Parallel()

		assert.Same(t, d.intType, environment.MapTypeIntoContext(d.intType))
	})

	t.Run("other context", func(t *testing.T) {
		t.Parallel()

		outer := NewGenericParamType(1, 0, false)
		mapped := environment.MapTypeIntoContext(outer)
		assert.Same(t, outer, mapped)
	})
}

func TestGenericEnvironment_TypeVariable(t *testing.T) {

	t.Parallel()

	counter := common.NewMemoryCounter(0)
	d := newTestDeclarations(t, Config{
		MemoryGauge: counter,
	})

	param := &GenericParamType{Name: "T"}
	context := d.universe.NewGenericContext(
		[]*GenericParamType{param},
		nil,
	)
	environment := d.universe.NewGenericEnvironment(context)

	const goroutineCount = 8

	results := make([]*TypeVariable, goroutineCount)

	var wg sync.WaitGroup
	wg.Add(goroutineCount)
	for i := 0; i < goroutineCount; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = environment.TypeVariable(param)
		}(i)
	}
	wg.Wait()

	for _, result := range results {
		assert.Same(t, results[0], result)
	}
	assert.Equal(t, uint64(1), counter.Usages[common.MemoryKindTypeVariable])

	// Sugared and canonical parameters share their type variable
	assert.Same(t, results[0], environment.TypeVariable(NewGenericParamType(0, 0, false)))

	// Environments have distinct type variables
	other := d.universe.NewGenericEnvironment(context)
	otherVariable := other.TypeVariable(param)
	assert.NotSame(t, results[0], otherVariable)
	assert.False(t, results[0].Equal(otherVariable))
	assert.Equal(t, "τ_0_0", otherVariable.String())

	if AssertionsEnabled {
		recovered := catchPanic(func() {
			environment.TypeVariable(d.intType)
		})
		assert.NotNil(t, recovered)
	}
}

func TestGenericEnvironment_Packs(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	param := NewGenericParamType(0, 0, true)
	context := d.universe.NewGenericContext(
		[]*GenericParamType{param},
		nil,
	)
	environment := context.Environment()

	mapped := environment.MapTypeIntoContext(param)
	require.IsType(t, &PackType{}, mapped)

	elements := mapped.(*PackType).Elements
	require.Len(t, elements, 1)
	require.IsType(t, &PackExpansionType{}, elements[0])

	expansion := elements[0].(*PackExpansionType)
	typeVariable := environment.TypeVariable(param)
	assert.Same(t, typeVariable, expansion.Pattern)
	assert.Same(t, typeVariable, expansion.Count)
	assert.Equal(t, TypeVariableKindPack, typeVariable.Kind())
	assert.True(t, HasParameterPack(mapped))
}

func TestGenericEnvironment_PackExpansionLevel(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	param := NewGenericParamType(0, 0, true)
	context := d.universe.NewGenericContext(
		[]*GenericParamType{param},
		nil,
	)
	environment := context.Environment()
	typeVariable := environment.TypeVariable(param)

	// repeat Array<each τ_0_0>
	expansion := &PackExpansionType{
		Pattern: d.arrayOf(param),
		Count:   param,
	}

	mapped := environment.MapTypeIntoContext(expansion)
	require.IsType(t, &PackExpansionType{}, mapped)
	mappedExpansion := mapped.(*PackExpansionType)
	assert.Same(t, typeVariable, mappedExpansion.Count)
	assert.True(t, mappedExpansion.Pattern.Equal(d.arrayOf(typeVariable)))

	unmapped := environment.MapTypeOutOfContext(mapped)
	require.IsType(t, &PackExpansionType{}, unmapped)
	assert.True(t, unmapped.Equal(expansion))
}

func TestGenericEnvironment_Opaque(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	param := NewGenericParamType(0, 0, false)
	context := d.universe.NewGenericContext(
		[]*GenericParamType{param},
		[]Requirement{
			NewConformanceRequirement(param, d.equatable),
		},
	)

	underlying := d.newMap(context, d.intType)
	environment := d.universe.NewOpaqueEnvironment(context, underlying)
	assert.Equal(t, GenericEnvironmentKindOpaque, environment.Kind())
	assert.Equal(t, underlying, environment.UnderlyingSubstitutions())

	typeVariable := environment.TypeVariable(param)
	assert.True(t, typeVariable.IsOpaque())
	assert.Equal(t, TypeVariableKindOpaque, typeVariable.Kind())
	assert.True(t, strings.HasPrefix(string(typeVariable.ID()), "some τ_0_0@"))
	assert.True(t, HasOpaqueResult(typeVariable))

	primary := context.Environment()
	assert.Equal(t, GenericEnvironmentKindPrimary, primary.Kind())
	assert.True(t, primary.UnderlyingSubstitutions().Empty())

	t.Run("mismatched underlying map", func(t *testing.T) {
		t.Parallel()

		recovered := catchPanic(func() {
			d.universe.NewOpaqueEnvironment(
				context,
				d.newMap(d.boxDecl.GenericContext, d.intType),
			)
		})
		assert.NotNil(t, recovered)
	})
}

func TestTypeVariable_Superclass(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	base := &NominalDecl{
		Identifier: "Base",
		Kind:       NominalKindClass,
	}

	bounded := NewGenericParamType(0, 0, false)
	unbounded := NewGenericParamType(0, 1, false)
	context := d.universe.NewGenericContext(
		[]*GenericParamType{bounded, unbounded},
		[]Requirement{
			NewSuperclassRequirement(bounded, base.DeclaredInterfaceType()),
		},
	)
	environment := context.Environment()

	superclass := environment.TypeVariable(bounded).Superclass()
	require.NotNil(t, superclass)
	assert.Equal(t, TypeID("Base"), superclass.ID())

	assert.Nil(t, environment.TypeVariable(unbounded).Superclass())
}
