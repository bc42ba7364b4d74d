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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestSubstitutionMap_LookupConformance(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	param := &GenericParamType{Name: "T"}
	element := member(param, d.sequence, "Element")

	sequenceContext := d.universe.NewGenericContext(
		[]*GenericParamType{param},
		[]Requirement{
			NewConformanceRequirement(param, d.sequence),
		},
	)

	t.Run("exact match", func(t *testing.T) {
		t.Parallel()

		m := d.newMap(sequenceContext, d.arrayOf(d.intType))

		conformance := m.LookupConformance(param, d.sequence)
		require.IsType(t, &SpecializedConformance{}, conformance)
		assert.Equal(t, "Array<Int>: Sequence", conformance.String())
	})

	t.Run("exact match takes precedence over path", func(t *testing.T) {
		t.Parallel()

		context := d.universe.NewGenericContext(
			[]*GenericParamType{param},
			[]Requirement{
				NewConformanceRequirement(param, d.sequence),
				NewConformanceRequirement(element, d.equatable),
			},
		)

		arrayType := d.arrayOf(d.intType)
		m := NewSubstitutionMap(
			context,
			[]Type{arrayType},
			[]ConformanceRef{
				d.table.LookupConformance(arrayType, d.sequence),
				NewAbstractConformance(d.equatable),
			},
		)

		conformance := m.LookupConformance(element, d.equatable)
		assert.Equal(t, NewAbstractConformance(d.equatable), conformance)
	})

	t.Run("path through specialized conformance", func(t *testing.T) {
		t.Parallel()

		m := d.newMap(sequenceContext, d.arrayOf(d.intType))

		conformance := m.LookupConformance(element, d.equatable)
		require.IsType(t, &NormalConformance{}, conformance)
		assert.Equal(t, "Int: Equatable", conformance.String())
	})

	t.Run("path through inherited interface", func(t *testing.T) {
		t.Parallel()

		context := d.universe.NewGenericContext(
			[]*GenericParamType{param},
			[]Requirement{
				NewConformanceRequirement(param, d.hashable),
			},
		)
		m := d.newMap(context, d.intType)

		conformance := m.LookupConformance(param, d.equatable)
		require.IsType(t, &NormalConformance{}, conformance)
		assert.Equal(t, "Int: Equatable", conformance.String())
	})

	t.Run("path through abstract conformance", func(t *testing.T) {
		t.Parallel()

		m := sequenceContext.IdentityMap()

		conformance := m.LookupConformance(element, d.equatable)
		assert.Equal(t, NewAbstractConformance(d.equatable), conformance)
	})

	t.Run("abstract conformance of concrete type without witness", func(t *testing.T) {
		t.Parallel()

		m := NewSubstitutionMap(
			sequenceContext,
			[]Type{d.arrayOf(d.intType)},
			[]ConformanceRef{
				NewAbstractConformance(d.sequence),
			},
		)

		// The element type cannot be resolved, so the conformance stays abstract
		conformance := m.LookupConformance(element, d.equatable)
		assert.Equal(t, NewAbstractConformance(d.equatable), conformance)
	})

	t.Run("type variable", func(t *testing.T) {
		t.Parallel()

		m := d.newMap(sequenceContext, d.arrayOf(d.intType))
		typeVariable := sequenceContext.Environment().TypeVariable(element)

		conformance := m.LookupConformance(typeVariable, d.equatable)
		assert.Equal(t, "Int: Equatable", conformance.String())
	})

	t.Run("not a type parameter", func(t *testing.T) {
		t.Parallel()

		m := d.newMap(sequenceContext, d.arrayOf(d.intType))

		conformance := m.LookupConformance(d.intType, d.equatable)
		assert.True(t, conformance.IsInvalid())
	})

	t.Run("empty map", func(t *testing.T) {
		t.Parallel()

		var empty SubstitutionMap
		assert.True(t, empty.LookupConformance(param, d.equatable).IsInvalid())
	})
}

func TestSubstitutionMap_LookupMissingConformance(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	param := NewGenericParamType(0, 0, false)
	context := d.universe.NewGenericContext(
		[]*GenericParamType{param},
		nil,
	)

	t.Run("type parameter", func(t *testing.T) {
		t.Parallel()

		conformance := context.IdentityMap().LookupConformance(param, d.p)
		require.IsType(t, &MissingConformance{}, conformance)

		missing := conformance.(*MissingConformance)
		assert.True(t, missing.Type.Equal(param))
		assert.Same(t, d.p, missing.Interface())
		assert.False(t, missing.IsInvalid())
	})

	t.Run("concrete type", func(t *testing.T) {
		t.Parallel()

		m := d.newMap(context, d.intType)

		conformance := m.LookupConformance(param, d.p)
		require.IsType(t, &MissingConformance{}, conformance)
		assert.Equal(t, "missing Int: P", conformance.String())
	})

	t.Run("error type", func(t *testing.T) {
		t.Parallel()

		m := NewSubstitutionMap(context, []Type{&ErrorType{}}, nil)

		conformance := m.LookupConformance(param, d.p)
		assert.True(t, conformance.IsInvalid())
	})
}

func TestSubstitutionMap_LookupInvertibleConformance(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	// interface Movable: Copyable
	movable := &InterfaceDecl{
		Identifier: "Movable",
		RequirementSignature: []Requirement{
			NewConformanceRequirement(SelfType, d.copyable),
		},
	}
	d.table.Register(d.intDecl, movable, nil)

	param := NewGenericParamType(0, 0, false)
	context := d.universe.NewGenericContext(
		[]*GenericParamType{param},
		[]Requirement{
			NewConformanceRequirement(param, movable),
		},
	)

	t.Run("concrete", func(t *testing.T) {
		t.Parallel()

		m := d.newMap(context, d.intType)

		conformance := m.LookupConformance(param, d.copyable)
		require.IsType(t, &NormalConformance{}, conformance)
		assert.Equal(t, "Int: Copyable", conformance.String())
	})

	t.Run("abstract", func(t *testing.T) {
		t.Parallel()

		conformance := context.IdentityMap().LookupConformance(param, d.copyable)
		assert.Equal(t, NewAbstractConformance(d.copyable), conformance)
	})
}

type producerDeclarations struct {
	producer *InterfaceDecl
	// product is `τ_0_0.Product`, where `τ_0_0: Producer`
	product *DependentMemberType
}

// newProducerDeclarations declares
// `interface Producer { associatedtype Product: Q }` and `Int: Q`.
func newProducerDeclarations(d *testDeclarations) producerDeclarations {
	producer := &InterfaceDecl{
		Identifier:      "Producer",
		AssociatedTypes: []string{"Product"},
	}
	producer.RequirementSignature = []Requirement{
		NewConformanceRequirement(producer.AssociatedType("Product"), d.q),
	}

	d.table.Register(d.intDecl, d.q, nil)

	return producerDeclarations{
		producer: producer,
		product:  member(NewGenericParamType(0, 0, false), producer, "Product"),
	}
}

// newFactory declares a struct conforming to Producer, with Int as its product,
// and returns the conformance and the map of `τ_0_0: Producer` to the struct.
func (p producerDeclarations) newFactory(d *testDeclarations, name string) (*NormalConformance, SubstitutionMap) {
	factoryDecl := &NominalDecl{
		Identifier: name,
		Kind:       NominalKindStruct,
	}
	conformance := d.table.Register(
		factoryDecl,
		p.producer,
		map[string]Type{
			"Product": d.intType,
		},
	)

	context := d.universe.NewGenericContext(
		[]*GenericParamType{p.product.Base.(*GenericParamType)},
		[]Requirement{
			NewConformanceRequirement(p.product.Base, p.producer),
		},
	)
	return conformance, d.newMap(context, factoryDecl.DeclaredInterfaceType())
}

func TestSubstitutionMap_LookupConformanceCycle(t *testing.T) {

	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(
		&logs,
		&slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	))

	d := newTestDeclarations(t, Config{
		Logger: logger,
	})

	p := newProducerDeclarations(d)
	conformance, m := p.newFactory(d, "Factory")

	// Resolving the associated conformance requires the associated conformance itself
	var inner ConformanceRef
	conformance.SetAssociatedConformanceResolver(
		func(
			conformance *NormalConformance,
			subject Type,
			conformingType Type,
			iface *InterfaceDecl,
		) ConformanceRef {
			inner = m.LookupConformance(p.product, d.q)
			return DefaultAssociatedConformanceResolver(conformance, subject, conformingType, iface)
		},
	)

	outer := m.LookupConformance(p.product, d.q)

	require.NotNil(t, inner)
	assert.True(t, inner.IsInvalid())

	require.IsType(t, &NormalConformance{}, outer)
	assert.Equal(t, "Int: Q", outer.String())

	assert.True(t, conformance.HasComputedAssociatedConformances())
	assert.False(t, conformance.IsComputingAssociatedConformances())

	assert.Contains(t, logs.String(), "associated conformances requested while being computed")
	assert.Contains(t, logs.String(), "conformance=\"Factory: Producer\"")

	// Once computed, the table is reused
	assert.Equal(t, outer, m.LookupConformance(p.product, d.q))
}

func TestSubstitutionMap_LookupConformanceConcurrentTableBuild(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	p := newProducerDeclarations(d)
	conformance, m := p.newFactory(d, "Factory")

	entered := make(chan struct{})
	proceed := make(chan struct{})

	conformance.SetAssociatedConformanceResolver(
		func(
			conformance *NormalConformance,
			subject Type,
			conformingType Type,
			iface *InterfaceDecl,
		) ConformanceRef {
			close(entered)
			<-proceed
			return DefaultAssociatedConformanceResolver(conformance, subject, conformingType, iface)
		},
	)

	results := make([]ConformanceRef, 2)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		results[0] = m.LookupConformance(p.product, d.q)
	}()

	<-entered

	// The second lookup starts while the first one is computing the table
	go func() {
		defer wg.Done()
		results[1] = m.LookupConformance(p.product, d.q)
	}()

	require.Eventually(
		t,
		func() bool {
			return associatedConformanceBuilds.isWaitingFor(conformance)
		},
		5*time.Second,
		time.Millisecond,
	)
	assert.True(t, conformance.IsComputingAssociatedConformances())

	close(proceed)
	wg.Wait()

	for _, result := range results {
		require.IsType(t, &NormalConformance{}, result)
		assert.Equal(t, "Int: Q", result.String())
	}

	assert.True(t, conformance.HasComputedAssociatedConformances())
	assert.False(t, conformance.IsComputingAssociatedConformances())
	assert.False(t, associatedConformanceBuilds.isWaitingFor(conformance))
}

func TestSubstitutionMap_LookupConformanceCrossGoroutineCycle(t *testing.T) {

	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(
		&logs,
		&slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	))

	d := newTestDeclarations(t, Config{
		Logger: logger,
	})

	p := newProducerDeclarations(d)
	first, _ := p.newFactory(d, "FirstFactory")
	second, _ := p.newFactory(d, "SecondFactory")

	subject := member(SelfType, p.producer, "Product")

	firstStarted := make(chan struct{})
	secondStarted := make(chan struct{})

	// The table of the first conformance requires the table of the second one
	var fromFirst ConformanceRef
	first.SetAssociatedConformanceResolver(
		func(
			conformance *NormalConformance,
			subject Type,
			conformingType Type,
			iface *InterfaceDecl,
		) ConformanceRef {
			close(firstStarted)
			<-secondStarted
			fromFirst = second.AssociatedConformance(subject, iface)
			return DefaultAssociatedConformanceResolver(conformance, subject, conformingType, iface)
		},
	)

	// ... and the table of the second one requires the table of the first one,
	// once the first goroutine waits for the second table
	var fromSecond ConformanceRef
	second.SetAssociatedConformanceResolver(
		func(
			conformance *NormalConformance,
			subject Type,
			conformingType Type,
			iface *InterfaceDecl,
		) ConformanceRef {
			close(secondStarted)
			<-firstStarted
			for !associatedConformanceBuilds.isWaitingFor(second) {
				time.Sleep(time.Millisecond)
			}
			fromSecond = first.AssociatedConformance(subject, iface)
			return DefaultAssociatedConformanceResolver(conformance, subject, conformingType, iface)
		},
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		first.AssociatedConformances()
	}()

	go func() {
		defer wg.Done()
		second.AssociatedConformances()
	}()

	wg.Wait()

	// The second goroutine would wait for the first one, which waits for the second one
	require.NotNil(t, fromSecond)
	assert.True(t, fromSecond.IsInvalid())

	// The first goroutine waited for the table of the second one
	require.IsType(t, &NormalConformance{}, fromFirst)
	assert.Equal(t, "Int: Q", fromFirst.String())

	assert.Equal(t, "Int: Q", first.AssociatedConformance(subject, d.q).String())
	assert.Equal(t, "Int: Q", second.AssociatedConformance(subject, d.q).String())

	assert.Contains(t, logs.String(), "conformance=\"FirstFactory: Producer\"")
}

func TestSubstitutionMap_WalkConformancePathWithoutRequirement(t *testing.T) {

	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(
		&logs,
		&slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	))

	d := newTestDeclarations(t, Config{
		Logger: logger,
	})

	p := newProducerDeclarations(d)
	_, m := p.newFactory(d, "Factory")

	// The context has no requirement `τ_0_0: Equatable`
	path := ConformancePath{
		{
			Subject:   p.product.Base,
			Interface: d.equatable,
		},
		{
			Subject:   member(SelfType, p.producer, "Product"),
			Interface: d.q,
		},
	}

	var conformance ConformanceRef
	require.NotPanics(t, func() {
		conformance = m.walkConformancePath(p.product, d.q, path)
	})
	assert.True(t, conformance.IsInvalid())
	assert.Contains(t, logs.String(), "conformance path does not start at a requirement")
}

func TestSubstitutionMap_LookupPackConformance(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	pack := &GenericParamType{Name: "T", IsPack: true}
	element := member(pack, d.sequence, "Element")

	context := d.universe.NewGenericContext(
		[]*GenericParamType{pack},
		[]Requirement{
			NewConformanceRequirement(pack, d.sequence),
		},
	)

	t.Run("associated conformances", func(t *testing.T) {
		t.Parallel()

		m := d.newMap(
			context,
			&PackType{
				Elements: []Type{
					d.arrayOf(d.intType),
					d.arrayOf(d.boolType),
					d.arrayOf(d.stringType),
				},
			},
		)

		sequenceConformance := m.LookupConformance(pack, d.sequence)
		require.IsType(t, &PackConformance{}, sequenceConformance)
		assert.Len(t, sequenceConformance.(*PackConformance).Elements(), 3)

		conformance := m.LookupConformance(element, d.equatable)
		require.IsType(t, &PackConformance{}, conformance)

		packConformance := conformance.(*PackConformance)
		elements := packConformance.Elements()
		require.Len(t, elements, 3)

		for i, expected := range []string{
			"Int: Equatable",
			"Bool: Equatable",
			"String: Equatable",
		} {
			require.IsType(t, &NormalConformance{}, elements[i])
			assert.Equal(t, expected, elements[i].String())
		}

		assert.Equal(t,
			TypeID("Pack{Int, Bool, String}"),
			packConformance.ConformingType().ID(),
		)
	})

	t.Run("pack expansion", func(t *testing.T) {
		t.Parallel()

		m := d.newMap(
			context,
			&PackType{
				Elements: []Type{
					d.arrayOf(d.intType),
					d.arrayOf(d.boolType),
					d.arrayOf(d.stringType),
				},
			},
		)

		result := m.SubstType(&PackExpansionType{
			Pattern: element,
			Count:   pack,
		})
		assert.Equal(t, TypeID("Pack{Int, Bool, String}"), result.ID())
	})

	t.Run("element failure", func(t *testing.T) {
		t.Parallel()

		m := d.newMap(
			context,
			&PackType{
				Elements: []Type{
					d.arrayOf(d.intType),
					d.boxOf(d.intType),
				},
			},
		)

		conformance := m.LookupConformance(element, d.equatable)
		assert.True(t, conformance.IsInvalid())
	})
}

func TestSubstitutionMap_LookupSuperclassBoundConformance(t *testing.T) {

	t.Parallel()

	test := func(t *testing.T, config Config) ConformanceRef {
		d := newTestDeclarations(t, config)

		// interface Container { associatedtype Item: P }
		container := &InterfaceDecl{
			Identifier:      "Container",
			AssociatedTypes: []string{"Item"},
		}
		container.RequirementSignature = []Requirement{
			NewConformanceRequirement(container.AssociatedType("Item"), d.p),
		}

		baseDecl := &NominalDecl{
			Identifier: "Base",
			Kind:       NominalKindClass,
		}
		d.table.Register(baseDecl, d.p, nil)

		param := NewGenericParamType(0, 0, false)

		// <X where X.Item: Base>
		boundContext := d.universe.NewGenericContext(
			[]*GenericParamType{param},
			[]Requirement{
				NewSuperclassRequirement(
					member(param, container, "Item"),
					baseDecl.DeclaredInterfaceType(),
				),
			},
		)
		typeVariable := boundContext.Environment().TypeVariable(param)

		// <T where T: Container>
		context := d.universe.NewGenericContext(
			[]*GenericParamType{param},
			[]Requirement{
				NewConformanceRequirement(param, container),
			},
		)

		m := NewSubstitutionMap(
			context,
			[]Type{typeVariable},
			[]ConformanceRef{
				NewAbstractConformance(container),
			},
		)

		return m.LookupConformance(member(param, container, "Item"), d.p)
	}

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		conformance := test(t, Config{})
		assert.True(t, IsAbstractConformance(conformance))
	})

	t.Run("resolve globally", func(t *testing.T) {
		t.Parallel()

		conformance := test(t, Config{
			ResolveSuperclassBoundTypeVariablesGlobally: true,
		})
		require.IsType(t, &InheritedConformance{}, conformance)
		assert.Equal(t, "Base: P", conformance.(*InheritedConformance).InheritedConformance().String())
	})
}

func TestSubstitutionMap_Tracing(t *testing.T) {

	t.Parallel()

	var mu sync.Mutex
	traces := map[string][]attribute.KeyValue{}

	d := newTestDeclarations(t, Config{
		TracingEnabled: true,
		OnRecordTrace: func(operationName string, _ time.Duration, attrs []attribute.KeyValue) {
			mu.Lock()
			defer mu.Unlock()
			traces[operationName] = attrs
		},
	})

	param := NewGenericParamType(0, 0, false)
	context := d.universe.NewGenericContext(
		[]*GenericParamType{param},
		[]Requirement{
			NewConformanceRequirement(param, d.sequence),
		},
	)

	m := context.IdentityMap().SubstMap(d.newMap(context, d.arrayOf(d.intType)), 0)
	m.LookupConformance(member(param, d.sequence, "Element"), d.equatable)

	mu.Lock()
	defer mu.Unlock()

	require.Contains(t, traces, "substitutionMap.subst")
	assert.Contains(t,
		traces["substitutionMap.subst"],
		attribute.Int("Replacement count", 1),
	)

	require.Contains(t, traces, "substitutionMap.lookupConformance")
	assert.Contains(t,
		traces["substitutionMap.lookupConformance"],
		attribute.Int("Path length", 2),
	)
}

func TestGenericContext_ConformancePath(t *testing.T) {

	t.Parallel()

	d := newTestDeclarations(t, Config{})

	param := NewGenericParamType(0, 0, false)

	t.Run("associated type", func(t *testing.T) {
		t.Parallel()

		context := d.universe.NewGenericContext(
			[]*GenericParamType{param},
			[]Requirement{
				NewConformanceRequirement(param, d.sequence),
			},
		)

		path := context.ConformancePath(member(param, d.sequence, "Element"), d.equatable)
		require.Len(t, path, 2)
		assert.Same(t, d.sequence, path[0].Interface)
		assert.Same(t, d.equatable, path[1].Interface)
		assert.Equal(t, "(τ_0_0: Sequence) -> (τ_0_0.Element: Equatable)", path.String())

		assert.True(t, context.RequiresInterface(param, d.sequence))
		assert.False(t, context.RequiresInterface(param, d.equatable))
		assert.Nil(t, context.ConformancePath(d.intType, d.equatable))
	})

	t.Run("shortest path", func(t *testing.T) {
		t.Parallel()

		context := d.universe.NewGenericContext(
			[]*GenericParamType{param},
			[]Requirement{
				NewConformanceRequirement(param, d.hashable),
				NewConformanceRequirement(param, d.equatable),
			},
		)

		path := context.ConformancePath(param, d.equatable)
		require.Len(t, path, 1)
		assert.Same(t, d.equatable, path[0].Interface)
	})
}
