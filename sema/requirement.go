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

	"github.com/onflow/generics/errors"
)

//go:generate go tool stringer -type=RequirementKind -trimprefix=RequirementKind

type RequirementKind uint8

const (
	RequirementKindUnknown RequirementKind = iota
	// RequirementKindConformance is `Subject: Interface`
	RequirementKindConformance
	// RequirementKindSuperclass is `Subject: Constraint`, where the constraint is a class type
	RequirementKindSuperclass
	// RequirementKindSameType is `Subject == Constraint`
	RequirementKindSameType
)

// Requirement is a constraint of a generic context on one of its type parameters.
type Requirement struct {
	Kind    RequirementKind
	Subject Type
	// Interface is set for conformance requirements
	Interface *InterfaceDecl
	// Constraint is set for superclass and same-type requirements
	Constraint Type
}

func NewConformanceRequirement(subject Type, iface *InterfaceDecl) Requirement {
	return Requirement{
		Kind:      RequirementKindConformance,
		Subject:   subject,
		Interface: iface,
	}
}

func NewSuperclassRequirement(subject Type, superclass Type) Requirement {
	return Requirement{
		Kind:       RequirementKindSuperclass,
		Subject:    subject,
		Constraint: superclass,
	}
}

func NewSameTypeRequirement(subject Type, constraint Type) Requirement {
	return Requirement{
		Kind:       RequirementKindSameType,
		Subject:    subject,
		Constraint: constraint,
	}
}

func (r Requirement) Canonical() Requirement {
	result := r
	result.Subject = r.Subject.Canonical()
	if r.Constraint != nil {
		result.Constraint = r.Constraint.Canonical()
	}
	return result
}

func (r Requirement) IsCanonical() bool {
	return r.Subject.IsCanonical() &&
		(r.Constraint == nil || r.Constraint.IsCanonical())
}

func (r Requirement) ID() string {
	switch r.Kind {
	case RequirementKindConformance:
		return fmt.Sprintf("%s: %s", r.Subject.ID(), r.Interface.Identifier)
	case RequirementKindSuperclass:
		return fmt.Sprintf("%s: %s", r.Subject.ID(), r.Constraint.ID())
	case RequirementKindSameType:
		return fmt.Sprintf("%s == %s", r.Subject.ID(), r.Constraint.ID())
	default:
		panic(errors.NewUnreachableError())
	}
}

func (r Requirement) String() string {
	switch r.Kind {
	case RequirementKindConformance:
		return fmt.Sprintf("%s: %s", r.Subject, r.Interface.Identifier)
	case RequirementKindSuperclass:
		return fmt.Sprintf("%s: %s", r.Subject, r.Constraint)
	case RequirementKindSameType:
		return fmt.Sprintf("%s == %s", r.Subject, r.Constraint)
	default:
		panic(errors.NewUnreachableError())
	}
}
