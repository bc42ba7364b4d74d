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

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testDeclarations is a small universe of declarations:
//
//	interface Equatable
//	interface Hashable: Equatable
//	interface Sequence { associatedtype Element: Equatable }
//	interface P, Q
//	struct Int, Bool, String: Equatable
//	struct Int: Hashable
//	struct Array<T: Equatable>: Sequence { Element = T }
//	struct Box<X>: Equatable
//	struct Wrapper<W>: P
type testDeclarations struct {
	universe *Universe
	table    *ConformanceTable

	equatable *InterfaceDecl
	hashable  *InterfaceDecl
	sequence  *InterfaceDecl
	p         *InterfaceDecl
	q         *InterfaceDecl
	copyable  *InterfaceDecl

	intDecl     *NominalDecl
	boolDecl    *NominalDecl
	stringDecl  *NominalDecl
	arrayDecl   *NominalDecl
	boxDecl     *NominalDecl
	wrapperDecl *NominalDecl

	intType    *NominalType
	boolType   *NominalType
	stringType *NominalType
}

func newTestDeclarations(t testing.TB, config Config) *testDeclarations {
	t.Helper()

	table := NewConformanceTable(config.MemoryGauge)
	if config.Logger != nil {
		table.SetLogger(config.Logger)
	}
	config.ConformanceLookup = table
	universe := NewUniverse(config)

	d := &testDeclarations{
		universe: universe,
		table:    table,
	}

	d.equatable = &InterfaceDecl{
		Identifier: "Equatable",
	}
	d.hashable = &InterfaceDecl{
		Identifier: "Hashable",
	}
	d.hashable.RequirementSignature = []Requirement{
		NewConformanceRequirement(SelfType, d.equatable),
	}
	d.sequence = &InterfaceDecl{
		Identifier:      "Sequence",
		AssociatedTypes: []string{"Element"},
	}
	d.sequence.RequirementSignature = []Requirement{
		NewConformanceRequirement(d.sequence.AssociatedType("Element"), d.equatable),
	}
	d.p = &InterfaceDecl{
		Identifier: "P",
	}
	d.q = &InterfaceDecl{
		Identifier: "Q",
	}
	d.copyable = &InterfaceDecl{
		Identifier: "Copyable",
		Invertible: InvertibleInterfaceKindCopyable,
	}

	d.intDecl = &NominalDecl{
		Identifier: "Int",
		Kind:       NominalKindStruct,
	}
	d.boolDecl = &NominalDecl{
		Identifier: "Bool",
		Kind:       NominalKindStruct,
	}
	d.stringDecl = &NominalDecl{
		Identifier: "String",
		Kind:       NominalKindStruct,
	}
	d.intType = d.intDecl.DeclaredInterfaceType()
	d.boolType = d.boolDecl.DeclaredInterfaceType()
	d.stringType = d.stringDecl.DeclaredInterfaceType()

	for _, decl := range []*NominalDecl{d.intDecl, d.boolDecl, d.stringDecl} {
		table.Register(decl, d.equatable, nil)
	}
	table.Register(d.intDecl, d.hashable, nil)

	arrayParam := &GenericParamType{Name: "T"}
	d.arrayDecl = &NominalDecl{
		Identifier: "Array",
		Kind:       NominalKindStruct,
		GenericContext: universe.NewGenericContext(
			[]*GenericParamType{arrayParam},
			[]Requirement{
				NewConformanceRequirement(arrayParam, d.equatable),
			},
		),
	}
	table.Register(
		d.arrayDecl,
		d.sequence,
		map[string]Type{
			"Element": arrayParam,
		},
	)

	d.boxDecl = &NominalDecl{
		Identifier: "Box",
		Kind:       NominalKindStruct,
		GenericContext: universe.NewGenericContext(
			[]*GenericParamType{{Name: "X"}},
			nil,
		),
	}
	table.Register(d.boxDecl, d.equatable, nil)

	d.wrapperDecl = &NominalDecl{
		Identifier: "Wrapper",
		Kind:       NominalKindStruct,
		GenericContext: universe.NewGenericContext(
			[]*GenericParamType{{Name: "W"}},
			nil,
		),
	}
	table.Register(d.wrapperDecl, d.p, nil)

	return d
}

func (d *testDeclarations) arrayOf(element Type) *NominalType {
	return &NominalType{
		Decl:          d.arrayDecl,
		TypeArguments: []Type{element},
	}
}

func (d *testDeclarations) boxOf(element Type) *NominalType {
	return &NominalType{
		Decl:          d.boxDecl,
		TypeArguments: []Type{element},
	}
}

func (d *testDeclarations) wrapperOf(element Type) *NominalType {
	return &NominalType{
		Decl:          d.wrapperDecl,
		TypeArguments: []Type{element},
	}
}

// newMap returns the map over the context with the given replacement types,
// with conformances found in the conformance table.
func (d *testDeclarations) newMap(context *GenericContext, replacementTypes ...Type) SubstitutionMap {
	return SubstitutionMapFromReplacementTypes(
		context,
		replacementTypes,
		LookUpConformanceIn(d.table),
	)
}

func member(base Type, iface *InterfaceDecl, name string) *DependentMemberType {
	return &DependentMemberType{
		Base:      base,
		Interface: iface,
		Name:      name,
	}
}

func catchPanic(f func()) (recovered any) {
	defer func() {
		recovered = recover()
	}()
	f()
	return nil
}
