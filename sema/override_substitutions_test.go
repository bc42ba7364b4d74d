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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// overrideDeclarations declares
//
//	class Base<T1: P> { func f<U1: Equatable>() }
//	class Derived<T2: Q>: Base<Wrapper<T2>> { override func f<U2: Equatable>() }
type overrideDeclarations struct {
	*testDeclarations

	baseDecl    *NominalDecl
	derivedDecl *NominalDecl

	baseMember    *MemberDecl
	derivedMember *MemberDecl

	t1, t2, u1, u2 *GenericParamType
}

func newOverrideDeclarations(t *testing.T, config Config) *overrideDeclarations {
	d := &overrideDeclarations{
		testDeclarations: newTestDeclarations(t, config),
		t1:               &GenericParamType{Name: "T1"},
		t2:               &GenericParamType{Name: "T2"},
		u1:               &GenericParamType{Name: "U1", Depth: 1},
		u2:               &GenericParamType{Name: "U2", Depth: 1},
	}

	universe := d.universe

	d.baseDecl = &NominalDecl{
		Identifier: "Base",
		Kind:       NominalKindClass,
		GenericContext: universe.NewGenericContext(
			[]*GenericParamType{d.t1},
			[]Requirement{
				NewConformanceRequirement(d.t1, d.p),
			},
		),
	}

	d.derivedDecl = &NominalDecl{
		Identifier: "Derived",
		Kind:       NominalKindClass,
		GenericContext: universe.NewGenericContext(
			[]*GenericParamType{d.t2},
			[]Requirement{
				NewConformanceRequirement(d.t2, d.q),
			},
		),
		Superclass: &NominalType{
			Decl:          d.baseDecl,
			TypeArguments: []Type{d.wrapperOf(d.t2)},
		},
	}

	d.baseMember = &MemberDecl{
		Identifier: "f",
		Owner:      d.baseDecl,
		GenericContext: universe.NewGenericContext(
			[]*GenericParamType{d.t1, d.u1},
			[]Requirement{
				NewConformanceRequirement(d.t1, d.p),
				NewConformanceRequirement(d.u1, d.equatable),
			},
		),
		GenericParams: []*GenericParamType{d.u1},
	}

	d.derivedMember = &MemberDecl{
		Identifier: "f",
		Owner:      d.derivedDecl,
		GenericContext: universe.NewGenericContext(
			[]*GenericParamType{d.t2, d.u2},
			[]Requirement{
				NewConformanceRequirement(d.t2, d.q),
				NewConformanceRequirement(d.u2, d.equatable),
			},
		),
		GenericParams: []*GenericParamType{d.u2},
	}

	return d
}

func TestOverrideSubstitutions(t *testing.T) {

	t.Parallel()

	t.Run("class members", func(t *testing.T) {
		t.Parallel()

		d := newOverrideDeclarations(t, Config{})

		m := OverrideSubstitutions(d.baseMember, d.derivedMember)
		assert.Same(t, d.baseMember.GenericContext, m.Context())

		replacementTypes := m.ReplacementTypes()
		require.Len(t, replacementTypes, 2)
		assert.Equal(t, TypeID("Wrapper<τ_0_0>"), replacementTypes[0].ID())
		assert.Same(t, d.u2, replacementTypes[1])

		conformances := m.Conformances()
		require.Len(t, conformances, 2)

		// The conformance is obtained through the superclass, it is not abstract
		require.True(t, IsConcreteConformance(conformances[0]))
		assert.Equal(t, "Wrapper<τ_0_0>: P", conformances[0].ID())
		assert.Equal(t, conformances[0], m.LookupConformance(d.t1, d.p))

		assert.Equal(t, NewAbstractConformance(d.equatable), conformances[1])
	})

	t.Run("shifted member parameters", func(t *testing.T) {
		t.Parallel()

		d := newOverrideDeclarations(t, Config{})

		m := OverrideSubstitutionsForNominals(
			d.baseDecl,
			d.derivedDecl,
			d.baseMember.GenericContext,
			nil,
		)

		replacementTypes := m.ReplacementTypes()
		require.Len(t, replacementTypes, 2)
		assert.Equal(t, TypeID("Wrapper<τ_0_0>"), replacementTypes[0].ID())
		assert.Equal(t, TypeID("τ_1_0"), replacementTypes[1].ID())
	})

	t.Run("class context", func(t *testing.T) {
		t.Parallel()

		d := newOverrideDeclarations(t, Config{})

		m := OverrideSubstitutionsForNominals(
			d.baseDecl,
			d.derivedDecl,
			d.baseDecl.GenericContext,
			nil,
		)

		assert.Equal(t, TypeID("Wrapper<τ_0_0>"), m.ReplacementTypes()[0].ID())
		assert.True(t, IsConcreteConformance(m.Conformances()[0]))
	})

	t.Run("interface members", func(t *testing.T) {
		t.Parallel()

		d := newOverrideDeclarations(t, Config{})

		context := d.universe.NewGenericContext(
			[]*GenericParamType{SelfType},
			[]Requirement{
				NewConformanceRequirement(SelfType, d.p),
			},
		)
		base := &MemberDecl{
			Identifier:     "g",
			Owner:          d.p,
			GenericContext: context,
		}
		derived := &MemberDecl{
			Identifier:     "g",
			Owner:          d.q,
			GenericContext: context,
		}

		m := OverrideSubstitutions(base, derived)
		assert.True(t, m.IsIdentity())
		assert.True(t, m.Equal(context.IdentityMap()))
	})

	t.Run("not derived", func(t *testing.T) {
		t.Parallel()

		d := newOverrideDeclarations(t, Config{})

		recovered := catchPanic(func() {
			OverrideSubstitutions(d.derivedMember, d.baseMember)
		})
		assert.NotNil(t, recovered)
	})
}

func TestContextSubstitutionMap(t *testing.T) {

	t.Parallel()

	d := newOverrideDeclarations(t, Config{})

	derivedType := &NominalType{
		Decl:          d.derivedDecl,
		TypeArguments: []Type{d.intType},
	}

	m := ContextSubstitutionMap(derivedType, d.baseDecl, d.table)
	assert.Same(t, d.baseDecl.GenericContext, m.Context())
	assert.Equal(t, TypeID("Wrapper<Int>"), m.ReplacementTypes()[0].ID())
	assert.Equal(t, "Wrapper<Int>: P", m.Conformances()[0].String())

	same := ContextSubstitutionMap(derivedType, d.derivedDecl, d.table)
	assert.Equal(t, TypeID("Int"), same.ReplacementTypes()[0].ID())

	assert.True(t, ContextSubstitutionMap(d.intType, d.intDecl, d.table).Empty())
}

func TestCombineSubstitutionMaps(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	outer := NewGenericParamType(0, 0, false)

	t.Run("at depth", func(t *testing.T) {
		t.Parallel()

		inner := NewGenericParamType(1, 0, false)

		context := d.universe.NewGenericContext(
			[]*GenericParamType{outer, inner},
			[]Requirement{
				NewConformanceRequirement(outer, d.equatable),
				NewConformanceRequirement(inner, d.sequence),
			},
		)

		first := d.newMap(
			d.universe.NewGenericContext(
				[]*GenericParamType{outer},
				[]Requirement{
					NewConformanceRequirement(outer, d.equatable),
				},
			),
			d.intType,
		)
		second := d.newMap(
			d.universe.NewGenericContext(
				[]*GenericParamType{outer},
				[]Requirement{
					NewConformanceRequirement(outer, d.sequence),
				},
			),
			d.arrayOf(d.boolType),
		)

		m := CombineSubstitutionMaps(
			first,
			second,
			CombineSubstitutionMapsKindAtDepth,
			1,
			0,
			context,
		)

		assert.Same(t, context, m.Context())

		replacementTypes := m.ReplacementTypes()
		require.Len(t, replacementTypes, 2)
		assert.Equal(t, TypeID("Int"), replacementTypes[0].ID())
		assert.Equal(t, TypeID("Array<Bool>"), replacementTypes[1].ID())

		conformances := m.Conformances()
		require.Len(t, conformances, 2)
		assert.Equal(t, "Int: Equatable", conformances[0].String())
		assert.Equal(t, "Array<Bool>: Sequence", conformances[1].String())

		element := m.LookupConformance(member(inner, d.sequence, "Element"), d.equatable)
		assert.Equal(t, "Bool: Equatable", element.String())
	})

	t.Run("at index", func(t *testing.T) {
		t.Parallel()

		second := NewGenericParamType(0, 1, false)

		context := d.universe.NewGenericContext(
			[]*GenericParamType{outer, second},
			nil,
		)

		plain := d.universe.NewGenericContext(
			[]*GenericParamType{outer},
			nil,
		)

		m := CombineSubstitutionMaps(
			d.newMap(plain, d.intType),
			d.newMap(plain, d.stringType),
			CombineSubstitutionMapsKindAtIndex,
			1,
			0,
			context,
		)

		replacementTypes := m.ReplacementTypes()
		require.Len(t, replacementTypes, 2)
		assert.Equal(t, TypeID("Int"), replacementTypes[0].ID())
		assert.Equal(t, TypeID("String"), replacementTypes[1].ID())
	})

	t.Run("global lookup fallback", func(t *testing.T) {
		t.Parallel()

		inner := NewGenericParamType(1, 0, false)

		context := d.universe.NewGenericContext(
			[]*GenericParamType{outer, inner},
			[]Requirement{
				NewConformanceRequirement(outer, d.equatable),
			},
		)

		// The first map's context does not require the conformance
		plain := d.universe.NewGenericContext(
			[]*GenericParamType{outer},
			nil,
		)

		m := CombineSubstitutionMaps(
			d.newMap(plain, d.intType),
			d.newMap(plain, d.boolType),
			CombineSubstitutionMapsKindAtDepth,
			1,
			0,
			context,
		)

		require.Len(t, m.Conformances(), 1)
		assert.Equal(t, "Int: Equatable", m.Conformances()[0].String())
	})

	t.Run("type parameter fallback", func(t *testing.T) {
		t.Parallel()

		inner := NewGenericParamType(1, 0, false)

		context := d.universe.NewGenericContext(
			[]*GenericParamType{outer, inner},
			[]Requirement{
				NewConformanceRequirement(outer, d.equatable),
			},
		)

		plain := d.universe.NewGenericContext(
			[]*GenericParamType{outer},
			nil,
		)

		m := CombineSubstitutionMaps(
			plain.IdentityMap(),
			d.newMap(plain, d.boolType),
			CombineSubstitutionMapsKindAtDepth,
			1,
			0,
			context,
		)

		assert.Equal(t, NewAbstractConformance(d.equatable), m.Conformances()[0])
	})

	t.Run("no context", func(t *testing.T) {
		t.Parallel()

		m := CombineSubstitutionMaps(
			SubstitutionMap{},
			SubstitutionMap{},
			CombineSubstitutionMapsKindAtDepth,
			0,
			0,
			nil,
		)
		assert.True(t, m.Empty())
	})
}
