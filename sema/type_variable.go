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
)

//go:generate go tool stringer -type=TypeVariableKind -trimprefix=TypeVariableKind

type TypeVariableKind uint8

const (
	TypeVariableKindPrimary TypeVariableKind = iota
	TypeVariableKindPack
	TypeVariableKindOpaque
)

// TypeVariable is a type parameter bound to a generic environment (an archetype).
// Type variables are created by GenericEnvironment.TypeVariable, and unique per environment.
type TypeVariable struct {
	Environment *GenericEnvironment
	// InterfaceType is the type parameter this type variable stands for.
	InterfaceType Type

	superclassOnce sync.Once
	superclass     Type
}

var _ Type = &TypeVariable{}
var _ SubstitutableType = &TypeVariable{}

func (*TypeVariable) isType()              {}
func (*TypeVariable) isSubstitutableType() {}

func (t *TypeVariable) Kind() TypeVariableKind {
	if t.Environment.kind == GenericEnvironmentKindOpaque {
		return TypeVariableKindOpaque
	}
	if param, ok := t.InterfaceType.(*GenericParamType); ok && param.IsPack {
		return TypeVariableKindPack
	}
	return TypeVariableKindPrimary
}

func (t *TypeVariable) IsOpaque() bool {
	return t.Environment.kind == GenericEnvironmentKindOpaque
}

// IsRoot returns true if the type variable stands for a generic parameter,
// and not for an associated type.
func (t *TypeVariable) IsRoot() bool {
	_, ok := t.InterfaceType.(*GenericParamType)
	return ok
}

// Root returns the type variable for the generic parameter this type variable is rooted in.
func (t *TypeVariable) Root() *TypeVariable {
	if t.IsRoot() {
		return t
	}
	return t.Environment.TypeVariable(RootGenericParam(t.InterfaceType))
}

// Superclass returns the superclass bound of the type variable, if any.
func (t *TypeVariable) Superclass() Type {
	t.superclassOnce.Do(func() {
		for _, requirement := range t.Environment.context.requirements {
			if requirement.Kind != RequirementKindSuperclass ||
				!requirement.Subject.Equal(t.InterfaceType) {

				continue
			}
			t.superclass = t.Environment.MapTypeIntoContext(requirement.Constraint)
			return
		}
	})
	return t.superclass
}

// dependentMemberOverRoot returns the interface type of the type variable,
// with its root generic parameter replaced by the root type variable.
func (t *TypeVariable) dependentMemberOverRoot() Type {
	var rebase func(ty Type) Type
	rebase = func(ty Type) Type {
		switch ty := ty.(type) {
		case *DependentMemberType:
			return &DependentMemberType{
				Base:      rebase(ty.Base),
				Interface: ty.Interface,
				Name:      ty.Name,
			}
		default:
			return t.Root()
		}
	}
	return rebase(t.InterfaceType)
}

func (t *TypeVariable) ID() TypeID {
	if t.IsOpaque() {
		return TypeID(fmt.Sprintf("some %s@%d", t.InterfaceType.ID(), t.Environment.id))
	}
	return TypeID(fmt.Sprintf("%s@%d", t.InterfaceType.ID(), t.Environment.id))
}

func (t *TypeVariable) String() string {
	if t.IsOpaque() {
		return "some " + t.InterfaceType.String()
	}
	return t.InterfaceType.String()
}

func (t *TypeVariable) Equal(other Type) bool {
	return typesEqual(t, other)
}

func (t *TypeVariable) Canonical() Type {
	return t
}

func (*TypeVariable) IsCanonical() bool {
	return true
}

func (t *TypeVariable) properties() typeProperties {
	result := typePropertyHasTypeVariable
	if t.IsOpaque() {
		result |= typePropertyHasOpaqueResult
	}
	if t.Kind() == TypeVariableKindPack {
		result |= typePropertyHasParameterPack
	}
	return result
}
