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

	"github.com/onflow/generics/errors"
)

// TypeID is the identity of a type. Two types are equal if and only if
// their IDs are equal. IDs are formed from canonical types, so sugar
// (parameter names, aliases) never takes part in identity.
type TypeID string

// Type is the closed set of types the substitution engine operates on.
type Type interface {
	isType()
	ID() TypeID
	String() string
	Equal(other Type) bool
	// Canonical returns the type with all sugar removed.
	Canonical() Type
	IsCanonical() bool
	// properties returns the recursive properties of the type.
	properties() typeProperties
}

type typeProperties uint8

const (
	typePropertyHasTypeParameter typeProperties = 1 << iota
	typePropertyHasTypeVariable
	typePropertyHasOpaqueResult
	typePropertyHasError
	typePropertyHasParameterPack
)

func (p typeProperties) has(other typeProperties) bool {
	return p&other != 0
}

func propertiesOf(types ...Type) (result typeProperties) {
	for _, ty := range types {
		if ty == nil {
			continue
		}
		result |= ty.properties()
	}
	return
}

func typesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

func joinTypeIDs(types []Type) string {
	var sb strings.Builder
	for i, ty := range types {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(ty.ID()))
	}
	return sb.String()
}

func joinTypeStrings(types []Type) string {
	var sb strings.Builder
	for i, ty := range types {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ty.String())
	}
	return sb.String()
}

func canonicalTypes(types []Type) ([]Type, bool) {
	var result []Type
	for i, ty := range types {
		if ty.IsCanonical() {
			if result != nil {
				result[i] = ty
			}
			continue
		}
		if result == nil {
			result = make([]Type, len(types))
			copy(result, types[:i])
		}
		result[i] = ty.Canonical()
	}
	if result == nil {
		return types, false
	}
	return result, true
}

func allCanonical(types []Type) bool {
	for _, ty := range types {
		if !ty.IsCanonical() {
			return false
		}
	}
	return true
}

// GenericParamType

// GenericParamType is a generic parameter, identified by its depth and index.
// A parameter pack (variadic parameter) stands for a sequence of types.
type GenericParamType struct {
	// Name is sugar only, it does not take part in identity.
	Name   string
	Depth  uint
	Index  uint
	IsPack bool
}

var _ Type = &GenericParamType{}
var _ SubstitutableType = &GenericParamType{}

func (*GenericParamType) isType()              {}
func (*GenericParamType) isSubstitutableType() {}

func NewGenericParamType(depth, index uint, isPack bool) *GenericParamType {
	return &GenericParamType{
		Depth:  depth,
		Index:  index,
		IsPack: isPack,
	}
}

func (t *GenericParamType) ID() TypeID {
	if t.IsPack {
		return TypeID(fmt.Sprintf("each τ_%d_%d", t.Depth, t.Index))
	}
	return TypeID(fmt.Sprintf("τ_%d_%d", t.Depth, t.Index))
}

func (t *GenericParamType) String() string {
	if t.Name == "" {
		return string(t.ID())
	}
	if t.IsPack {
		return "each " + t.Name
	}
	return t.Name
}

func (t *GenericParamType) Equal(other Type) bool {
	otherParam, ok := other.(*GenericParamType)
	if !ok {
		return false
	}
	return t.key() == otherParam.key()
}

func (t *GenericParamType) key() genericParamKey {
	return genericParamKey{
		depth:  t.Depth,
		index:  t.Index,
		isPack: t.IsPack,
	}
}

func (t *GenericParamType) Canonical() Type {
	if t.Name == "" {
		return t
	}
	return NewGenericParamType(t.Depth, t.Index, t.IsPack)
}

func (t *GenericParamType) IsCanonical() bool {
	return t.Name == ""
}

func (t *GenericParamType) properties() typeProperties {
	if t.IsPack {
		return typePropertyHasTypeParameter | typePropertyHasParameterPack
	}
	return typePropertyHasTypeParameter
}

type genericParamKey struct {
	depth  uint
	index  uint
	isPack bool
}

// DependentMemberType

// DependentMemberType is a reference to an associated type of a type parameter,
// e.g. `T.Element`.
type DependentMemberType struct {
	Base Type
	// Interface is the interface declaring the associated type.
	Interface *InterfaceDecl
	Name      string
}

var _ Type = &DependentMemberType{}

func (*DependentMemberType) isType() {}

func (t *DependentMemberType) ID() TypeID {
	return TypeID(fmt.Sprintf("%s.[%s]%s", t.Base.ID(), t.Interface.Identifier, t.Name))
}

func (t *DependentMemberType) String() string {
	return fmt.Sprintf("%s.%s", t.Base.String(), t.Name)
}

func (t *DependentMemberType) Equal(other Type) bool {
	return typesEqual(t, other)
}

func (t *DependentMemberType) Canonical() Type {
	if t.Base.IsCanonical() {
		return t
	}
	return &DependentMemberType{
		Base:      t.Base.Canonical(),
		Interface: t.Interface,
		Name:      t.Name,
	}
}

func (t *DependentMemberType) IsCanonical() bool {
	return t.Base.IsCanonical()
}

func (t *DependentMemberType) properties() typeProperties {
	return t.Base.properties()
}

// NominalType

// NominalType is a reference to a nominal declaration,
// applied to type arguments if the declaration is generic, e.g. `Wrapper<Int>`.
type NominalType struct {
	Decl          *NominalDecl
	TypeArguments []Type
}

var _ Type = &NominalType{}

func (*NominalType) isType() {}

func (t *NominalType) ID() TypeID {
	if len(t.TypeArguments) == 0 {
		return TypeID(t.Decl.Identifier)
	}
	return TypeID(fmt.Sprintf("%s<%s>", t.Decl.Identifier, joinTypeIDs(t.TypeArguments)))
}

func (t *NominalType) String() string {
	if len(t.TypeArguments) == 0 {
		return t.Decl.Identifier
	}
	return fmt.Sprintf("%s<%s>", t.Decl.Identifier, joinTypeStrings(t.TypeArguments))
}

func (t *NominalType) Equal(other Type) bool {
	return typesEqual(t, other)
}

func (t *NominalType) Canonical() Type {
	arguments, changed := canonicalTypes(t.TypeArguments)
	if !changed {
		return t
	}
	return &NominalType{
		Decl:          t.Decl,
		TypeArguments: arguments,
	}
}

func (t *NominalType) IsCanonical() bool {
	return allCanonical(t.TypeArguments)
}

func (t *NominalType) properties() typeProperties {
	return propertiesOf(t.TypeArguments...)
}

// FunctionType

type FunctionType struct {
	Parameters []Type
	Result     Type
}

var _ Type = &FunctionType{}

func (*FunctionType) isType() {}

func (t *FunctionType) ID() TypeID {
	return TypeID(fmt.Sprintf("(%s) -> %s", joinTypeIDs(t.Parameters), t.Result.ID()))
}

func (t *FunctionType) String() string {
	return fmt.Sprintf("(%s) -> %s", joinTypeStrings(t.Parameters), t.Result.String())
}

func (t *FunctionType) Equal(other Type) bool {
	return typesEqual(t, other)
}

func (t *FunctionType) Canonical() Type {
	parameters, changed := canonicalTypes(t.Parameters)
	if !changed && t.Result.IsCanonical() {
		return t
	}
	return &FunctionType{
		Parameters: parameters,
		Result:     t.Result.Canonical(),
	}
}

func (t *FunctionType) IsCanonical() bool {
	return allCanonical(t.Parameters) && t.Result.IsCanonical()
}

func (t *FunctionType) properties() typeProperties {
	return propertiesOf(t.Parameters...) | t.Result.properties()
}

// AliasType

// AliasType is a named alias for another type. It is sugar:
// its canonical type is the canonical type of the underlying type.
type AliasType struct {
	Name       string
	Underlying Type
}

var _ Type = &AliasType{}

func (*AliasType) isType() {}

func (t *AliasType) ID() TypeID {
	return t.Underlying.ID()
}

func (t *AliasType) String() string {
	return t.Name
}

func (t *AliasType) Equal(other Type) bool {
	return typesEqual(t, other)
}

func (t *AliasType) Canonical() Type {
	return t.Underlying.Canonical()
}

func (*AliasType) IsCanonical() bool {
	return false
}

func (t *AliasType) properties() typeProperties {
	return t.Underlying.properties()
}

// PackType

// PackType is a sequence of types, the replacement of a parameter pack.
// Elements may be pack expansions.
type PackType struct {
	Elements []Type
}

var _ Type = &PackType{}

func (*PackType) isType() {}

func NewSingletonPackExpansion(param *GenericParamType) *PackType {
	return &PackType{
		Elements: []Type{
			&PackExpansionType{
				Pattern: param,
				Count:   param,
			},
		},
	}
}

func (t *PackType) ID() TypeID {
	return TypeID(fmt.Sprintf("Pack{%s}", joinTypeIDs(t.Elements)))
}

func (t *PackType) String() string {
	return fmt.Sprintf("Pack{%s}", joinTypeStrings(t.Elements))
}

func (t *PackType) Equal(other Type) bool {
	return typesEqual(t, other)
}

func (t *PackType) Canonical() Type {
	elements, changed := canonicalTypes(t.Elements)
	if !changed {
		return t
	}
	return &PackType{
		Elements: elements,
	}
}

func (t *PackType) IsCanonical() bool {
	return allCanonical(t.Elements)
}

func (t *PackType) properties() typeProperties {
	return propertiesOf(t.Elements...)
}

// PackExpansionType

// PackExpansionType is `repeat Pattern`, expanded once per element of the Count pack.
type PackExpansionType struct {
	Pattern Type
	Count   Type
}

var _ Type = &PackExpansionType{}

func (*PackExpansionType) isType() {}

func (t *PackExpansionType) ID() TypeID {
	if t.Pattern.Equal(t.Count) {
		return TypeID("repeat " + t.Pattern.ID())
	}
	return TypeID(fmt.Sprintf("repeat %s for %s", t.Pattern.ID(), t.Count.ID()))
}

func (t *PackExpansionType) String() string {
	return "repeat " + t.Pattern.String()
}

func (t *PackExpansionType) Equal(other Type) bool {
	return typesEqual(t, other)
}

func (t *PackExpansionType) Canonical() Type {
	if t.IsCanonical() {
		return t
	}
	return &PackExpansionType{
		Pattern: t.Pattern.Canonical(),
		Count:   t.Count.Canonical(),
	}
}

func (t *PackExpansionType) IsCanonical() bool {
	return t.Pattern.IsCanonical() && t.Count.IsCanonical()
}

func (t *PackExpansionType) properties() typeProperties {
	return t.Pattern.properties() | t.Count.properties()
}

// ExistentialType

// ExistentialType is `any I`, a value of some type conforming to the interface.
type ExistentialType struct {
	Interface *InterfaceDecl
}

var _ Type = &ExistentialType{}

func (*ExistentialType) isType() {}

func (t *ExistentialType) ID() TypeID {
	return TypeID("any " + t.Interface.Identifier)
}

func (t *ExistentialType) String() string {
	return string(t.ID())
}

func (t *ExistentialType) Equal(other Type) bool {
	return typesEqual(t, other)
}

func (t *ExistentialType) Canonical() Type {
	return t
}

func (*ExistentialType) IsCanonical() bool {
	return true
}

func (*ExistentialType) properties() typeProperties {
	return 0
}

// ErrorType

// ErrorType is the result of a failed substitution.
type ErrorType struct {
	Original Type
}

var _ Type = &ErrorType{}

func (*ErrorType) isType() {}

func (*ErrorType) ID() TypeID {
	return "<<error type>>"
}

func (t *ErrorType) String() string {
	if t.Original == nil {
		return string(t.ID())
	}
	return fmt.Sprintf("<<error type: %s>>", t.Original)
}

func (t *ErrorType) Equal(other Type) bool {
	return typesEqual(t, other)
}

func (t *ErrorType) Canonical() Type {
	return t
}

func (*ErrorType) IsCanonical() bool {
	return true
}

func (*ErrorType) properties() typeProperties {
	return typePropertyHasError
}

// SubstitutableType is a type which can be replaced by a substitution:
// a generic parameter or a root type variable.
type SubstitutableType interface {
	Type
	isSubstitutableType()
}

// IsTypeParameter returns true if the type is a generic parameter,
// or an associated type of a type parameter.
func IsTypeParameter(ty Type) bool {
	switch ty := ty.(type) {
	case *GenericParamType:
		return true
	case *DependentMemberType:
		return IsTypeParameter(ty.Base)
	case *AliasType:
		return IsTypeParameter(ty.Underlying)
	default:
		return false
	}
}

// RootGenericParam returns the generic parameter a type parameter is rooted in.
func RootGenericParam(ty Type) *GenericParamType {
	switch ty := ty.(type) {
	case *GenericParamType:
		return ty
	case *DependentMemberType:
		return RootGenericParam(ty.Base)
	case *AliasType:
		return RootGenericParam(ty.Underlying)
	case *TypeVariable:
		return RootGenericParam(ty.InterfaceType)
	default:
		panic(errors.NewUnreachableError())
	}
}

// typeParameterDepth returns the number of member projections of a type parameter,
// e.g. 0 for `T` and 2 for `T.A.B`.
func typeParameterDepth(ty Type) int {
	switch ty := ty.(type) {
	case *DependentMemberType:
		return typeParameterDepth(ty.Base) + 1
	case *AliasType:
		return typeParameterDepth(ty.Underlying)
	default:
		return 0
	}
}

func HasError(ty Type) bool {
	return ty.properties().has(typePropertyHasError)
}

func HasTypeParameter(ty Type) bool {
	return ty.properties().has(typePropertyHasTypeParameter)
}

func HasTypeVariable(ty Type) bool {
	return ty.properties().has(typePropertyHasTypeVariable)
}

func HasOpaqueResult(ty Type) bool {
	return ty.properties().has(typePropertyHasOpaqueResult)
}

func HasParameterPack(ty Type) bool {
	return ty.properties().has(typePropertyHasParameterPack)
}

func IsExistential(ty Type) bool {
	_, ok := ty.Canonical().(*ExistentialType)
	return ok
}

func isPackType(ty Type) bool {
	_, ok := ty.Canonical().(*PackType)
	return ok
}

// replaceSelf rebases a type written in terms of `Self` (the first generic parameter
// of an interface context) onto the given base type.
func replaceSelf(ty Type, base Type) Type {
	switch ty := ty.(type) {
	case *GenericParamType:
		return base
	case *DependentMemberType:
		return &DependentMemberType{
			Base:      replaceSelf(ty.Base, base),
			Interface: ty.Interface,
			Name:      ty.Name,
		}
	case *AliasType:
		return replaceSelf(ty.Underlying, base)
	default:
		panic(errors.NewUnreachableError())
	}
}
