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
	"log/slog"
	"sync"

	"github.com/onflow/generics/common"
	"github.com/onflow/generics/common/orderedmap"
	"github.com/onflow/generics/errors"
)

// ConformanceLookup finds the conformance of a type to an interface,
// independent of any generic context.
type ConformanceLookup interface {
	LookupConformance(ty Type, iface *InterfaceDecl) ConformanceRef
}

// ConformanceLookupFunc is a function which implements ConformanceLookup.
type ConformanceLookupFunc func(ty Type, iface *InterfaceDecl) ConformanceRef

var _ ConformanceLookup = ConformanceLookupFunc(nil)

func (f ConformanceLookupFunc) LookupConformance(ty Type, iface *InterfaceDecl) ConformanceRef {
	return f(ty, iface)
}

type conformanceKey struct {
	typeID TypeID
	iface  *InterfaceDecl
}

// ConformanceTable is the table of declared conformances of nominal types,
// and self-conformances of existentials.
//
// ConformanceTable is safe for concurrent use.
type ConformanceTable struct {
	memoryGauge common.MemoryGauge
	logger      *slog.Logger

	mu sync.RWMutex
	// conformances are keyed by the declared type of the nominal
	conformances *orderedmap.OrderedMap[conformanceKey, *NormalConformance]
	// synthesized conformances of structural types to invertible interfaces
	synthesized *orderedmap.OrderedMap[conformanceKey, *NormalConformance]
}

var _ ConformanceLookup = &ConformanceTable{}

func NewConformanceTable(memoryGauge common.MemoryGauge) *ConformanceTable {
	return &ConformanceTable{
		memoryGauge:  memoryGauge,
		conformances: orderedmap.New[orderedmap.OrderedMap[conformanceKey, *NormalConformance]](0),
		synthesized:  orderedmap.New[orderedmap.OrderedMap[conformanceKey, *NormalConformance]](0),
	}
}

// SetLogger sets the logger which receives records about conformance cycles.
func (t *ConformanceTable) SetLogger(logger *slog.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logger = logger
	setLogger := func(_ conformanceKey, conformance *NormalConformance) {
		conformance.SetLogger(logger)
	}
	t.conformances.Foreach(setLogger)
	t.synthesized.Foreach(setLogger)
}

// Register declares the conformance of the nominal to the interface.
// The type witnesses are written in terms of the nominal's generic parameters.
func (t *ConformanceTable) Register(
	nominal *NominalDecl,
	iface *InterfaceDecl,
	typeWitnesses map[string]Type,
) *NormalConformance {
	return t.register(
		nominal.DeclaredInterfaceType(),
		nominal,
		iface,
		typeWitnesses,
	)
}

// RegisterSelfConformance declares the conformance of the existential `any I` to I.
func (t *ConformanceTable) RegisterSelfConformance(iface *InterfaceDecl) *NormalConformance {
	return t.register(
		&ExistentialType{
			Interface: iface,
		},
		nil,
		iface,
		nil,
	)
}

func (t *ConformanceTable) register(
	conformingType Type,
	nominal *NominalDecl,
	iface *InterfaceDecl,
	typeWitnesses map[string]Type,
) *NormalConformance {
	conformance := NewNormalConformance(
		t.memoryGauge,
		conformingType,
		iface,
		nominal,
		typeWitnesses,
		t,
	)

	key := conformanceKey{
		typeID: conformingType.ID(),
		iface:  iface,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.conformances.Get(key); ok {
		panic(errors.NewUnexpectedError(
			"conformance %s is already registered",
			existing,
		))
	}

	conformance.SetLogger(t.logger)
	t.conformances.Set(key, conformance)
	return conformance
}

// Conformances returns all registered conformances, in registration order.
func (t *ConformanceTable) Conformances() []*NormalConformance {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]*NormalConformance, 0, t.conformances.Len())
	t.conformances.Foreach(func(_ conformanceKey, conformance *NormalConformance) {
		result = append(result, conformance)
	})
	return result
}

// Complete computes the associated conformance tables of all registered conformances.
// Once completed, concurrent lookups never observe a table under construction.
func (t *ConformanceTable) Complete() {
	for _, conformance := range t.Conformances() {
		conformance.AssociatedConformances()
	}
}

func (t *ConformanceTable) get(ty Type, iface *InterfaceDecl) *NormalConformance {
	t.mu.RLock()
	defer t.mu.RUnlock()

	conformance, _ := t.conformances.Get(conformanceKey{
		typeID: ty.ID(),
		iface:  iface,
	})
	return conformance
}

func (t *ConformanceTable) LookupConformance(ty Type, iface *InterfaceDecl) ConformanceRef {
	ty = ty.Canonical()

	switch ty := ty.(type) {
	case *ErrorType:
		return InvalidConformanceRef

	case *NominalType:
		return t.lookupNominalConformance(ty, iface)

	case *TypeVariable:
		return t.lookupTypeVariableConformance(ty, iface)

	case *PackType:
		return t.lookupPackConformance(ty, iface)

	case *ExistentialType:
		conformance := t.get(ty, iface)
		if conformance != nil {
			return conformance
		}
		if iface.IsInvertible() {
			return t.synthesizedConformance(ty, iface)
		}
		return ForMissingOrInvalid(ty, iface)

	case *FunctionType:
		if iface.IsInvertible() {
			return t.synthesizedConformance(ty, iface)
		}
		return ForMissingOrInvalid(ty, iface)

	case *GenericParamType, *DependentMemberType:
		// Type parameters only conform within a generic context
		return InvalidConformanceRef

	case *PackExpansionType:
		return t.LookupConformance(ty.Pattern, iface)

	default:
		panic(errors.NewUnreachableError())
	}
}

func (t *ConformanceTable) lookupNominalConformance(ty *NominalType, iface *InterfaceDecl) ConformanceRef {
	decl := ty.Decl

	conformance := t.get(decl.DeclaredInterfaceType(), iface)
	if conformance == nil {
		if decl.Superclass != nil {
			superclass := ty.superclass()
			inherited := t.LookupConformance(superclass, iface)
			if concrete, ok := inherited.(ConcreteConformance); ok {
				return NewInheritedConformance(ty, concrete)
			}
		}

		if !iface.IsInvertible() {
			return ForMissingOrInvalid(ty, iface)
		}

		conformance = t.synthesizedConformance(decl.DeclaredInterfaceType(), iface)
	}

	if !decl.IsGeneric() {
		return conformance
	}

	substitutions := SubstitutionMapFromReplacementTypes(
		decl.GenericContext,
		ty.TypeArguments,
		LookUpConformanceIn(t),
	)
	if substitutions.IsIdentity() {
		return conformance
	}

	return NewSpecializedConformance(
		t.memoryGauge,
		ty,
		conformance,
		substitutions,
	)
}

func (t *ConformanceTable) lookupTypeVariableConformance(ty *TypeVariable, iface *InterfaceDecl) ConformanceRef {
	context := ty.Environment.context

	if ty.IsOpaque() {
		underlying := ty.Environment.underlying
		if !underlying.Empty() && iface.IsInvertible() {
			return t.LookupConformance(underlying.SubstType(ty.InterfaceType), iface)
		}
	}

	if context.RequiresInterface(ty.InterfaceType, iface) {
		return NewAbstractConformance(iface)
	}

	if superclass := ty.Superclass(); superclass != nil {
		inherited := t.LookupConformance(superclass, iface)
		if concrete, ok := inherited.(ConcreteConformance); ok {
			return NewInheritedConformance(ty, concrete)
		}
	}

	if iface.IsInvertible() {
		return NewAbstractConformance(iface)
	}

	return ForMissingOrInvalid(ty, iface)
}

func (t *ConformanceTable) lookupPackConformance(ty *PackType, iface *InterfaceDecl) ConformanceRef {
	elements := make([]ConformanceRef, 0, len(ty.Elements))
	for _, element := range ty.Elements {
		pattern := element
		if expansion, ok := element.(*PackExpansionType); ok {
			pattern = expansion.Pattern
		}

		var conformance ConformanceRef
		if IsTypeParameter(pattern) {
			conformance = NewAbstractConformance(iface)
		} else {
			conformance = t.LookupConformance(pattern, iface)
		}
		if conformance.IsInvalid() {
			return InvalidConformanceRef
		}
		elements = append(elements, conformance)
	}

	return NewPackConformance(
		t.memoryGauge,
		ty,
		iface,
		elements,
	)
}

// synthesizedConformance returns the conformance of a type to an invertible interface,
// which every type satisfies unless it opts out.
func (t *ConformanceTable) synthesizedConformance(ty Type, iface *InterfaceDecl) *NormalConformance {
	key := conformanceKey{
		typeID: ty.ID(),
		iface:  iface,
	}

	t.mu.RLock()
	conformance, ok := t.synthesized.Get(key)
	t.mu.RUnlock()
	if ok {
		return conformance
	}

	var nominal *NominalDecl
	if nominalType, ok := ty.(*NominalType); ok {
		nominal = nominalType.Decl
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	conformance, ok = t.synthesized.Get(key)
	if ok {
		return conformance
	}

	conformance = NewNormalConformance(
		t.memoryGauge,
		ty,
		iface,
		nominal,
		nil,
		t,
	)
	conformance.SetLogger(t.logger)
	t.synthesized.Set(key, conformance)
	return conformance
}

// superclass returns the superclass of the nominal type,
// with the type arguments of this type applied.
func (t *NominalType) superclass() Type {
	decl := t.Decl
	if decl.Superclass == nil {
		return nil
	}
	if !decl.IsGeneric() {
		return decl.Superclass
	}

	substitutions := SubstitutionMapFromReplacementTypes(
		decl.GenericContext,
		t.TypeArguments,
		MakeAbstractConformanceForGenericType,
	)
	return substitutions.SubstType(decl.Superclass)
}
