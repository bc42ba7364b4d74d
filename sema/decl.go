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

//go:generate go tool stringer -type=NominalKind -trimprefix=NominalKind
//go:generate go tool stringer -type=InvertibleInterfaceKind -trimprefix=InvertibleInterfaceKind

type NominalKind uint8

const (
	NominalKindUnknown NominalKind = iota
	NominalKindStruct
	NominalKindClass
	NominalKindEnum
)

// InvertibleInterfaceKind identifies the marker interfaces
// every type satisfies unless it explicitly opts out.
type InvertibleInterfaceKind uint8

const (
	InvertibleInterfaceKindNone InvertibleInterfaceKind = iota
	InvertibleInterfaceKindCopyable
	InvertibleInterfaceKindEscapable
)

// SelfType is the implicit first generic parameter of every interface context.
var SelfType = &GenericParamType{
	Name: "Self",
}

// InterfaceDecl

// InterfaceDecl is an interface (protocol) declaration.
//
// The requirement signature is written in terms of SelfType and lists
// the conformance requirements the interface imposes on Self and on its associated types,
// e.g. `Self: Equatable` for an inherited interface,
// or `Self.Element: Hashable` for a constrained associated type.
type InterfaceDecl struct {
	Identifier           string
	AssociatedTypes      []string
	RequirementSignature []Requirement
	Invertible           InvertibleInterfaceKind
	// SelfConforming interfaces are conformed to by their own existential type.
	SelfConforming bool
}

func (d *InterfaceDecl) IsInvertible() bool {
	return d.Invertible != InvertibleInterfaceKindNone
}

func (d *InterfaceDecl) HasAssociatedType(name string) bool {
	for _, associatedType := range d.AssociatedTypes {
		if associatedType == name {
			return true
		}
	}
	return false
}

// AssociatedType returns the type `Self.name`.
func (d *InterfaceDecl) AssociatedType(name string) *DependentMemberType {
	return &DependentMemberType{
		Base:      SelfType,
		Interface: d,
		Name:      name,
	}
}

func (d *InterfaceDecl) conformanceRequirements() []Requirement {
	var result []Requirement
	for _, requirement := range d.RequirementSignature {
		if requirement.Kind != RequirementKindConformance {
			continue
		}
		result = append(result, requirement)
	}
	return result
}

func (d *InterfaceDecl) String() string {
	return d.Identifier
}

// NominalDecl

// NominalDecl is a struct, class, or enum declaration.
type NominalDecl struct {
	Identifier     string
	Kind           NominalKind
	GenericContext *GenericContext
	// Superclass is written in terms of the declaration's generic parameters.
	Superclass Type
}

func (d *NominalDecl) IsGeneric() bool {
	return d.GenericContext != nil && len(d.GenericContext.Params()) > 0
}

// DeclaredInterfaceType returns the type of the declaration,
// applied to its own generic parameters.
func (d *NominalDecl) DeclaredInterfaceType() *NominalType {
	var typeArguments []Type
	if d.GenericContext != nil {
		params := d.GenericContext.Params()
		typeArguments = make([]Type, 0, len(params))
		for _, param := range params {
			typeArguments = append(typeArguments, param)
		}
	}
	return &NominalType{
		Decl:          d,
		TypeArguments: typeArguments,
	}
}

// NextDepth returns the depth at which generic parameters
// of members of this declaration start.
func (d *NominalDecl) NextDepth() uint {
	if d.GenericContext == nil {
		return 0
	}
	return d.GenericContext.NextDepth()
}

func (d *NominalDecl) String() string {
	return d.Identifier
}

// DeclOwner is a declaration which can own members.
type DeclOwner interface {
	isDeclOwner()
	String() string
}

func (*NominalDecl) isDeclOwner()   {}
func (*InterfaceDecl) isDeclOwner() {}

// MemberDecl

// MemberDecl is a member (e.g. a method) of a nominal type or interface.
type MemberDecl struct {
	Identifier string
	Owner      DeclOwner
	// GenericContext is the full context of the member,
	// i.e. the parameters and requirements of the owner, followed by those of the member.
	GenericContext *GenericContext
	// GenericParams are the member's own generic parameters, if any.
	GenericParams []*GenericParamType
}

func (d *MemberDecl) IsGeneric() bool {
	return len(d.GenericParams) > 0
}

func (d *MemberDecl) String() string {
	return d.Owner.String() + "." + d.Identifier
}
