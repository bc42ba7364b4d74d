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
	"strings"

	"github.com/onflow/generics/common"
	"github.com/onflow/generics/errors"
)

// ConformanceRef is a reference to the evidence that a type conforms to an interface.
//
// The variants are:
//   - InvalidConformance: no evidence
//   - AbstractConformance: the conformance of a type parameter, known only by its interface
//   - MissingConformance: a concrete type which does not conform, kept for diagnostics
//   - ConcreteConformance: a normal, specialized, or inherited conformance of a concrete type
//   - *PackConformance: one conformance per element of a pack
type ConformanceRef interface {
	isConformanceRef()
	// Interface returns the interface conformed to, or nil for an invalid conformance.
	Interface() *InterfaceDecl
	IsInvalid() bool
	ID() string
	String() string
	Equal(other ConformanceRef) bool
	Canonical() ConformanceRef
}

func conformancesEqual(a, b ConformanceRef) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// InvalidConformance

type InvalidConformance struct{}

var InvalidConformanceRef ConformanceRef = InvalidConformance{}

func (InvalidConformance) isConformanceRef() {}

func (InvalidConformance) Interface() *InterfaceDecl {
	return nil
}

func (InvalidConformance) IsInvalid() bool {
	return true
}

func (InvalidConformance) ID() string {
	return "invalid"
}

func (c InvalidConformance) String() string {
	return c.ID()
}

func (c InvalidConformance) Equal(other ConformanceRef) bool {
	return conformancesEqual(c, other)
}

func (c InvalidConformance) Canonical() ConformanceRef {
	return c
}

// AbstractConformance

// AbstractConformance is the conformance of a type parameter or type variable.
// Abstract conformances are values and compare equal if their interfaces are the same.
type AbstractConformance struct {
	iface *InterfaceDecl
}

func NewAbstractConformance(iface *InterfaceDecl) AbstractConformance {
	return AbstractConformance{
		iface: iface,
	}
}

func (AbstractConformance) isConformanceRef() {}

func (c AbstractConformance) Interface() *InterfaceDecl {
	return c.iface
}

func (AbstractConformance) IsInvalid() bool {
	return false
}

func (c AbstractConformance) ID() string {
	return "abstract " + c.iface.Identifier
}

func (c AbstractConformance) String() string {
	return c.ID()
}

func (c AbstractConformance) Equal(other ConformanceRef) bool {
	return conformancesEqual(c, other)
}

func (c AbstractConformance) Canonical() ConformanceRef {
	return c
}

// MissingConformance

// MissingConformance records that a concrete type does not conform to an interface.
// Unlike an invalid conformance, it keeps the type and interface for diagnostics.
type MissingConformance struct {
	Type  Type
	iface *InterfaceDecl
}

// ForMissingOrInvalid returns a missing conformance of the type to the interface,
// or an invalid conformance if the type contains errors.
func ForMissingOrInvalid(ty Type, iface *InterfaceDecl) ConformanceRef {
	if ty == nil || HasError(ty) {
		return InvalidConformanceRef
	}
	return &MissingConformance{
		Type:  ty,
		iface: iface,
	}
}

func (*MissingConformance) isConformanceRef() {}

func (c *MissingConformance) Interface() *InterfaceDecl {
	return c.iface
}

func (*MissingConformance) IsInvalid() bool {
	return false
}

func (c *MissingConformance) ID() string {
	return fmt.Sprintf("missing %s: %s", c.Type.ID(), c.iface.Identifier)
}

func (c *MissingConformance) String() string {
	return fmt.Sprintf("missing %s: %s", c.Type, c.iface.Identifier)
}

func (c *MissingConformance) Equal(other ConformanceRef) bool {
	return conformancesEqual(c, other)
}

func (c *MissingConformance) Canonical() ConformanceRef {
	if c.Type.IsCanonical() {
		return c
	}
	return &MissingConformance{
		Type:  c.Type.Canonical(),
		iface: c.iface,
	}
}

// ConcreteConformance

// ConcreteConformance is the conformance of a concrete type,
// which provides type witnesses for the interface's associated types,
// and the conformances of those witnesses.
type ConcreteConformance interface {
	ConformanceRef
	ConformingType() Type
	// RootNormalConformance returns the normal conformance this conformance is derived from.
	RootNormalConformance() *NormalConformance
	// TypeWitness returns the type for the associated type with the given name,
	// or an error type if there is none.
	TypeWitness(name string) Type
	// AssociatedConformance returns the conformance for the requirement `subject: iface`
	// of the interface's requirement signature. The subject is written in terms of Self.
	AssociatedConformance(subject Type, iface *InterfaceDecl) ConformanceRef
	Subst(ifs *InFlightSubstitution) ConcreteConformance
}

func concreteConformanceID(c ConcreteConformance) string {
	return fmt.Sprintf("%s: %s", c.ConformingType().ID(), c.Interface().Identifier)
}

func concreteConformanceString(c ConcreteConformance) string {
	return fmt.Sprintf("%s: %s", c.ConformingType(), c.Interface().Identifier)
}

// SpecializedConformance

// SpecializedConformance is a normal conformance of a generic type,
// applied to the type arguments of a specific instance of the type.
type SpecializedConformance struct {
	conformingType Type
	generic        *NormalConformance
	substitutions  SubstitutionMap
}

var _ ConcreteConformance = &SpecializedConformance{}

// NewSpecializedConformance returns the conformance of the given type,
// derived from the generic conformance by applying the substitutions.
// The substitutions are over the generic context of the conforming nominal type.
func NewSpecializedConformance(
	memoryGauge common.MemoryGauge,
	conformingType Type,
	generic *NormalConformance,
	substitutions SubstitutionMap,
) *SpecializedConformance {
	common.UseMemory(memoryGauge, common.SpecializedConformanceUsage)

	return &SpecializedConformance{
		conformingType: conformingType,
		generic:        generic,
		substitutions:  substitutions,
	}
}

func (*SpecializedConformance) isConformanceRef() {}

func (c *SpecializedConformance) Interface() *InterfaceDecl {
	return c.generic.iface
}

func (*SpecializedConformance) IsInvalid() bool {
	return false
}

func (c *SpecializedConformance) ID() string {
	return concreteConformanceID(c)
}

func (c *SpecializedConformance) String() string {
	return concreteConformanceString(c)
}

func (c *SpecializedConformance) Equal(other ConformanceRef) bool {
	return conformancesEqual(c, other)
}

func (c *SpecializedConformance) Canonical() ConformanceRef {
	if c.conformingType.IsCanonical() && c.substitutions.hasCanonicalEntries() {
		return c
	}
	return &SpecializedConformance{
		conformingType: c.conformingType.Canonical(),
		generic:        c.generic,
		substitutions:  c.substitutions.Canonical(false),
	}
}

func (c *SpecializedConformance) ConformingType() Type {
	return c.conformingType
}

func (c *SpecializedConformance) GenericConformance() *NormalConformance {
	return c.generic
}

func (c *SpecializedConformance) Substitutions() SubstitutionMap {
	return c.substitutions
}

func (c *SpecializedConformance) RootNormalConformance() *NormalConformance {
	return c.generic
}

func (c *SpecializedConformance) TypeWitness(name string) Type {
	witness := c.generic.TypeWitness(name)
	return c.substitutions.SubstType(witness)
}

func (c *SpecializedConformance) AssociatedConformance(subject Type, iface *InterfaceDecl) ConformanceRef {
	entry, ok := c.generic.associatedConformanceEntry(subject, iface)
	if !ok {
		return InvalidConformanceRef
	}
	return substConformance(
		entry.Conformance,
		entry.ConformingType,
		NewInFlightSubstitutionViaMap(c.substitutions, 0),
	)
}

func (c *SpecializedConformance) Subst(ifs *InFlightSubstitution) ConcreteConformance {
	return NewSpecializedConformance(
		c.generic.memoryGauge,
		ifs.SubstType(c.conformingType),
		c.generic,
		c.substitutions.Subst(ifs),
	)
}

// InheritedConformance

// InheritedConformance is the conformance of a class type
// which it inherits from its superclass.
type InheritedConformance struct {
	conformingType Type
	inherited      ConcreteConformance
}

var _ ConcreteConformance = &InheritedConformance{}

func NewInheritedConformance(conformingType Type, inherited ConcreteConformance) *InheritedConformance {
	return &InheritedConformance{
		conformingType: conformingType,
		inherited:      inherited,
	}
}

func (*InheritedConformance) isConformanceRef() {}

func (c *InheritedConformance) Interface() *InterfaceDecl {
	return c.inherited.Interface()
}

func (*InheritedConformance) IsInvalid() bool {
	return false
}

func (c *InheritedConformance) ID() string {
	return concreteConformanceID(c)
}

func (c *InheritedConformance) String() string {
	return concreteConformanceString(c)
}

func (c *InheritedConformance) Equal(other ConformanceRef) bool {
	return conformancesEqual(c, other)
}

func (c *InheritedConformance) Canonical() ConformanceRef {
	return &InheritedConformance{
		conformingType: c.conformingType.Canonical(),
		inherited:      c.inherited.Canonical().(ConcreteConformance),
	}
}

func (c *InheritedConformance) ConformingType() Type {
	return c.conformingType
}

func (c *InheritedConformance) InheritedConformance() ConcreteConformance {
	return c.inherited
}

func (c *InheritedConformance) RootNormalConformance() *NormalConformance {
	return c.inherited.RootNormalConformance()
}

func (c *InheritedConformance) TypeWitness(name string) Type {
	return c.inherited.TypeWitness(name)
}

func (c *InheritedConformance) AssociatedConformance(subject Type, iface *InterfaceDecl) ConformanceRef {
	return c.inherited.AssociatedConformance(subject, iface)
}

func (c *InheritedConformance) Subst(ifs *InFlightSubstitution) ConcreteConformance {
	return &InheritedConformance{
		conformingType: ifs.SubstType(c.conformingType),
		inherited:      c.inherited.Subst(ifs),
	}
}

// PackConformance

// PackConformance is the conformance of a pack type: one conformance per pack element.
type PackConformance struct {
	conformingType *PackType
	iface          *InterfaceDecl
	elements       []ConformanceRef
}

func NewPackConformance(
	memoryGauge common.MemoryGauge,
	conformingType *PackType,
	iface *InterfaceDecl,
	elements []ConformanceRef,
) *PackConformance {
	if len(conformingType.Elements) != len(elements) {
		panic(errors.NewUnexpectedError(
			"pack conformance for %s has %d element conformances",
			conformingType,
			len(elements),
		))
	}

	common.UseMemory(memoryGauge, common.PackConformanceMemoryUsage)

	return &PackConformance{
		conformingType: conformingType,
		iface:          iface,
		elements:       elements,
	}
}

func (*PackConformance) isConformanceRef() {}

func (c *PackConformance) Interface() *InterfaceDecl {
	return c.iface
}

func (*PackConformance) IsInvalid() bool {
	return false
}

func (c *PackConformance) ConformingType() *PackType {
	return c.conformingType
}

func (c *PackConformance) Elements() []ConformanceRef {
	return c.elements
}

func (c *PackConformance) ID() string {
	var sb strings.Builder
	sb.WriteString("Pack{")
	for i, element := range c.elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(element.ID())
	}
	sb.WriteString("}")
	return sb.String()
}

func (c *PackConformance) String() string {
	var sb strings.Builder
	sb.WriteString("Pack{")
	for i, element := range c.elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(element.String())
	}
	sb.WriteString("}")
	return sb.String()
}

func (c *PackConformance) Equal(other ConformanceRef) bool {
	return conformancesEqual(c, other)
}

func (c *PackConformance) Canonical() ConformanceRef {
	elements := make([]ConformanceRef, 0, len(c.elements))
	for _, element := range c.elements {
		elements = append(elements, element.Canonical())
	}
	return &PackConformance{
		conformingType: c.conformingType.Canonical().(*PackType),
		iface:          c.iface,
		elements:       elements,
	}
}

// AssociatedConformance maps each element conformance to its associated conformance.
// If any element has no associated conformance, the result is invalid.
func (c *PackConformance) AssociatedConformance(subject Type, iface *InterfaceDecl) ConformanceRef {
	elementTypes := make([]Type, 0, len(c.elements))
	elements := make([]ConformanceRef, 0, len(c.elements))

	for i, element := range c.elements {
		elementType := c.conformingType.Elements[i]

		var associated ConformanceRef
		switch element := element.(type) {
		case ConcreteConformance:
			associated = element.AssociatedConformance(subject, iface)
		case *PackConformance:
			associated = element.AssociatedConformance(subject, iface)
		case AbstractConformance:
			associated = NewAbstractConformance(iface)
		case InvalidConformance, *MissingConformance:
			associated = InvalidConformanceRef
		default:
			panic(errors.NewUnreachableError())
		}

		if associated.IsInvalid() {
			return InvalidConformanceRef
		}

		elements = append(elements, associated)
		elementTypes = append(elementTypes, associatedConformingType(associated, subject, elementType))
	}

	return &PackConformance{
		conformingType: &PackType{
			Elements: elementTypes,
		},
		iface:    iface,
		elements: elements,
	}
}

// associatedConformingType returns the type which conforms in the given associated conformance.
func associatedConformingType(associated ConformanceRef, subject Type, conformingType Type) Type {
	switch associated := associated.(type) {
	case ConcreteConformance:
		return associated.ConformingType()
	case *PackConformance:
		return associated.ConformingType()
	}

	if expansion, ok := conformingType.(*PackExpansionType); ok {
		return &PackExpansionType{
			Pattern: replaceSelf(subject, expansion.Pattern),
			Count:   expansion.Count,
		}
	}
	return replaceSelf(subject, conformingType)
}

func IsConcreteConformance(conformance ConformanceRef) bool {
	_, ok := conformance.(ConcreteConformance)
	return ok
}

func IsAbstractConformance(conformance ConformanceRef) bool {
	_, ok := conformance.(AbstractConformance)
	return ok
}

func IsMissingConformance(conformance ConformanceRef) bool {
	_, ok := conformance.(*MissingConformance)
	return ok
}

func IsPackConformance(conformance ConformanceRef) bool {
	_, ok := conformance.(*PackConformance)
	return ok
}

// isResolved returns true if the conformance is neither invalid nor missing.
func isResolved(conformance ConformanceRef) bool {
	return !conformance.IsInvalid() &&
		!IsMissingConformance(conformance)
}

// typeWitness returns the type witness for the associated type with the given name,
// for the given conforming type and its conformance.
func typeWitness(conformance ConformanceRef, conformingType Type, member *DependentMemberType) Type {
	switch conformance := conformance.(type) {
	case ConcreteConformance:
		return conformance.TypeWitness(member.Name)

	case AbstractConformance:
		if IsTypeParameter(conformingType) {
			return &DependentMemberType{
				Base:      conformingType,
				Interface: member.Interface,
				Name:      member.Name,
			}
		}
		if typeVariable, ok := conformingType.(*TypeVariable); ok {
			return typeVariable.Environment.TypeVariable(&DependentMemberType{
				Base:      typeVariable.InterfaceType,
				Interface: member.Interface,
				Name:      member.Name,
			})
		}

	case *PackConformance:
		pack, ok := conformingType.(*PackType)
		if !ok || len(pack.Elements) != len(conformance.elements) {
			break
		}
		elements := make([]Type, 0, len(pack.Elements))
		for i, element := range conformance.elements {
			elementType := pack.Elements[i]
			if expansion, ok := elementType.(*PackExpansionType); ok {
				elements = append(elements, &PackExpansionType{
					Pattern: typeWitness(element, expansion.Pattern, member),
					Count:   expansion.Count,
				})
				continue
			}
			elements = append(elements, typeWitness(element, elementType, member))
		}
		return &PackType{
			Elements: elements,
		}
	}

	return &ErrorType{
		Original: &DependentMemberType{
			Base:      conformingType,
			Interface: member.Interface,
			Name:      member.Name,
		},
	}
}
