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
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/generics/common"
)

func TestConformanceTable_LookupConformance(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	t.Run("non-generic nominal", func(t *testing.T) {
		t.Parallel()

		conformance := d.table.LookupConformance(d.intType, d.equatable)
		require.IsType(t, &NormalConformance{}, conformance)

		normal := conformance.(*NormalConformance)
		assert.Same(t, d.intDecl, normal.Nominal())
		assert.Same(t, d.equatable, normal.Interface())
	})

	t.Run("specialized nominal", func(t *testing.T) {
		t.Parallel()

		conformance := d.table.LookupConformance(d.arrayOf(d.intType), d.sequence)
		require.IsType(t, &SpecializedConformance{}, conformance)

		specialized := conformance.(*SpecializedConformance)
		assert.Equal(t, TypeID("Array<Int>"), specialized.ConformingType().ID())
		assert.Same(t, d.arrayDecl.GenericContext, specialized.Substitutions().Context())
		assert.Equal(t, TypeID("Int"), specialized.TypeWitness("Element").ID())
		assert.IsType(t, &ErrorType{}, specialized.TypeWitness("Index"))

		associated := specialized.AssociatedConformance(
			d.sequence.AssociatedType("Element").Canonical(),
			d.equatable,
		)
		assert.Equal(t, "Int: Equatable", associated.String())
	})

	t.Run("generic nominal", func(t *testing.T) {
		t.Parallel()

		conformance := d.table.LookupConformance(d.arrayDecl.DeclaredInterfaceType(), d.sequence)
		require.IsType(t, &NormalConformance{}, conformance)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		conformance := d.table.LookupConformance(d.boxOf(d.intType), d.sequence)
		assert.True(t, IsMissingConformance(conformance))
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		assert.True(t, d.table.LookupConformance(&ErrorType{}, d.equatable).IsInvalid())
		assert.True(t, d.table.LookupConformance(NewGenericParamType(0, 0, false), d.equatable).IsInvalid())
	})

	t.Run("invertible", func(t *testing.T) {
		t.Parallel()

		function := &FunctionType{
			Parameters: []Type{d.intType},
			Result:     d.boolType,
		}

		conformance := d.table.LookupConformance(function, d.copyable)
		require.IsType(t, &NormalConformance{}, conformance)
		assert.Same(t, conformance, d.table.LookupConformance(function, d.copyable))

		assert.True(t, IsMissingConformance(d.table.LookupConformance(function, d.equatable)))

		specialized := d.table.LookupConformance(d.boxOf(d.intType), d.copyable)
		require.IsType(t, &SpecializedConformance{}, specialized)
		assert.Equal(t, "Box<Int>: Copyable", specialized.String())
	})

	t.Run("pack", func(t *testing.T) {
		t.Parallel()

		pack := &PackType{
			Elements: []Type{
				d.intType,
				&PackExpansionType{
					Pattern: NewGenericParamType(0, 0, true),
					Count:   NewGenericParamType(0, 0, true),
				},
			},
		}

		conformance := d.table.LookupConformance(pack, d.equatable)
		require.IsType(t, &PackConformance{}, conformance)

		elements := conformance.(*PackConformance).Elements()
		require.Len(t, elements, 2)
		assert.Equal(t, "Int: Equatable", elements[0].String())
		assert.Equal(t, NewAbstractConformance(d.equatable), elements[1])

		invalid := d.table.LookupConformance(
			&PackType{
				Elements: []Type{d.intType, &ErrorType{}},
			},
			d.equatable,
		)
		assert.True(t, invalid.IsInvalid())
	})
}

func TestConformanceTable_Existentials(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})
	d.table.RegisterSelfConformance(d.p)

	conformance := d.table.LookupConformance(&ExistentialType{Interface: d.p}, d.p)
	require.IsType(t, &NormalConformance{}, conformance)
	assert.True(t, conformance.(*NormalConformance).IsSelfConformance())

	other := d.table.LookupConformance(&ExistentialType{Interface: d.q}, d.q)
	assert.True(t, IsMissingConformance(other))
}

func TestConformanceTable_Inheritance(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	parent := &NominalDecl{
		Identifier: "Parent",
		Kind:       NominalKindClass,
	}
	d.table.Register(parent, d.p, nil)

	param := &GenericParamType{Name: "C"}
	child := &NominalDecl{
		Identifier: "Child",
		Kind:       NominalKindClass,
		GenericContext: d.universe.NewGenericContext(
			[]*GenericParamType{param},
			nil,
		),
		Superclass: parent.DeclaredInterfaceType(),
	}

	childType := &NominalType{
		Decl:          child,
		TypeArguments: []Type{d.intType},
	}

	conformance := d.table.LookupConformance(childType, d.p)
	require.IsType(t, &InheritedConformance{}, conformance)

	inherited := conformance.(*InheritedConformance)
	assert.Equal(t, TypeID("Child<Int>"), inherited.ConformingType().ID())
	assert.Equal(t, "Parent: P", inherited.InheritedConformance().String())
	assert.Same(t, inherited.InheritedConformance().RootNormalConformance(), inherited.RootNormalConformance())
}

func TestConformanceTable_Register(t *testing.T) {

	t.Parallel()

	counter := common.NewMemoryCounter(0)
	d := newTestDeclarations(t, Config{
		MemoryGauge: counter,
	})

	conformances := d.table.Conformances()
	require.Len(t, conformances, 7)
	assert.Equal(t, "Int: Equatable", conformances[0].String())
	assert.Equal(t, uint64(7), counter.Usages[common.MemoryKindNormalConformance])

	recovered := catchPanic(func() {
		d.table.Register(d.intDecl, d.equatable, nil)
	})
	assert.NotNil(t, recovered)
}

func TestConformanceTable_Complete(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	for _, conformance := range d.table.Conformances() {
		require.False(t, conformance.HasComputedAssociatedConformances())
	}

	d.table.Complete()

	for _, conformance := range d.table.Conformances() {
		assert.True(t, conformance.HasComputedAssociatedConformances())
	}

	arrayConformance := d.table.LookupConformance(d.arrayDecl.DeclaredInterfaceType(), d.sequence)
	entries := arrayConformance.(*NormalConformance).AssociatedConformances()
	require.Len(t, entries, 1)
	assert.Same(t, d.equatable, entries[0].Interface)
	assert.Equal(t, TypeID("τ_0_0"), entries[0].ConformingType.ID())
	assert.Equal(t, NewAbstractConformance(d.equatable), entries[0].Conformance)
}

func TestConformanceTable_SetLogger(t *testing.T) {

	t.Parallel()

	newLogger := func(buffer *bytes.Buffer) *slog.Logger {
		return slog.New(slog.NewTextHandler(
			buffer,
			&slog.HandlerOptions{
				Level: slog.LevelDebug,
			},
		))
	}

	t.Run("synthesized conformance", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		d := newTestDeclarations(t, Config{
			Logger: newLogger(&logs),
		})

		functionType := &FunctionType{
			Parameters: []Type{d.intType},
			Result:     d.intType,
		}
		conformance := d.table.LookupConformance(functionType, d.copyable)
		require.IsType(t, &NormalConformance{}, conformance)

		conformance.(*NormalConformance).logCycle()
		assert.Contains(t, logs.String(), "associated conformances requested while being computed")
		assert.Contains(t, logs.String(), "conformance=\"(Int) -> Int: Copyable\"")
	})

	t.Run("replaced after synthesis", func(t *testing.T) {
		t.Parallel()

		d := newTestDeclarations(t, Config{})

		existential := &ExistentialType{
			Interface: d.p,
		}
		conformance := d.table.LookupConformance(existential, d.copyable)
		require.IsType(t, &NormalConformance{}, conformance)

		var logs bytes.Buffer
		d.table.SetLogger(newLogger(&logs))

		conformance.(*NormalConformance).logCycle()
		assert.Contains(t, logs.String(), "associated conformances requested while being computed")
	})

	t.Run("concurrent with cycle reports", func(t *testing.T) {
		t.Parallel()

		d := newTestDeclarations(t, Config{})
		conformance := d.table.Register(d.boolDecl, d.q, nil)

		var logs bytes.Buffer
		logger := newLogger(&logs)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				d.table.SetLogger(logger)
			}()
			go func() {
				defer wg.Done()
				conformance.logCycle()
			}()
		}
		wg.Wait()

		conformance.logCycle()
		assert.Contains(t, logs.String(), "conformance=\"Bool: Q\"")
	})
}
