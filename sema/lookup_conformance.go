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
	"time"

	"github.com/onflow/generics/errors"
)

// LookupConformance returns the conformance of the given type parameter to the interface,
// as recorded by this map.
//
// If the context requires the conformance through a chain of requirements
// rather than directly, the chain is walked, starting from the directly recorded conformance,
// through the associated conformances of each step.
func (m SubstitutionMap) LookupConformance(ty Type, iface *InterfaceDecl) ConformanceRef {
	if m.storage == nil {
		return InvalidConformanceRef
	}

	ty = ty.Canonical()

	if typeVariable, ok := ty.(*TypeVariable); ok && !typeVariable.IsOpaque() {
		ty = typeVariable.InterfaceType
	}

	if !IsTypeParameter(ty) {
		return InvalidConformanceRef
	}

	if conformance, ok := m.requirementConformance(ty, iface); ok {
		return conformance
	}

	context := m.storage.context

	if !context.RequiresInterface(ty, iface) {
		return ForMissingOrInvalid(m.SubstType(ty), iface)
	}

	if iface.IsInvertible() {
		substType := m.SubstType(ty)
		if !IsTypeParameter(substType) {
			return context.universe.conformanceLookup.LookupConformance(substType, iface)
		}
		return NewAbstractConformance(iface)
	}

	path := context.ConformancePath(ty, iface)

	universe := context.universe
	if universe.tracingEnabled() {
		start := time.Now()
		defer func() {
			universe.reportLookupConformanceTrace(
				ty.String(),
				iface.Identifier,
				len(path),
				time.Since(start),
			)
		}()
	}

	return m.walkConformancePath(ty, iface, path)
}

// requirementConformance returns the conformance recorded for the conformance requirement `ty: iface`.
func (m SubstitutionMap) requirementConformance(ty Type, iface *InterfaceDecl) (ConformanceRef, bool) {
	for i, requirement := range m.storage.context.conformanceRequirements {
		if requirement.Interface == iface &&
			requirement.Subject.Canonical().Equal(ty) {

			return m.storage.conformances[i], true
		}
	}
	return nil, false
}

func (m SubstitutionMap) walkConformancePath(
	ty Type,
	iface *InterfaceDecl,
	path ConformancePath,
) ConformanceRef {

	var conformance ConformanceRef

	for i, step := range path {
		if i == 0 {
			var ok bool
			conformance, ok = m.requirementConformance(step.Subject, step.Interface)
			if !ok {
				m.storage.context.universe.logger.Debug(
					"conformance path does not start at a requirement",
					slog.String("type", ty.String()),
					slog.String("interface", iface.Identifier),
					slog.String("path", path.String()),
				)
				return InvalidConformanceRef
			}
			continue
		}

		switch current := conformance.(type) {
		case InvalidConformance:
			return current

		case AbstractConformance:
			return m.resolveAbstractConformance(ty, iface)

		case *MissingConformance:
			return ForMissingOrInvalid(m.SubstType(ty), iface)

		case *PackConformance:
			conformance = current.AssociatedConformance(step.Subject, step.Interface)

		case ConcreteConformance:
			conformance = current.AssociatedConformance(step.Subject, step.Interface)

		default:
			panic(errors.NewUnreachableError())
		}
	}

	return conformance
}

// resolveAbstractConformance handles a conformance path walk which reached an abstract conformance.
// The conformance stays abstract, unless substituting the type parameter through this map
// yields a type whose conformance can be found globally.
func (m SubstitutionMap) resolveAbstractConformance(ty Type, iface *InterfaceDecl) ConformanceRef {
	substType := m.SubstType(ty)

	// Unresolved error types stay abstract
	if HasError(substType) {
		return NewAbstractConformance(iface)
	}

	universe := m.storage.context.universe

	if resolvesConformanceGlobally(substType, universe.config) {
		return universe.conformanceLookup.LookupConformance(substType, iface)
	}

	return NewAbstractConformance(iface)
}

// resolvesConformanceGlobally returns true if the conformance of the substituted type
// can be found by global lookup: the type is neither a type parameter nor an existential.
//
// Type variables count as type parameters, unless they have a superclass bound
// and the configuration opts into resolving those globally.
func resolvesConformanceGlobally(substType Type, config Config) bool {
	if typeVariable, ok := substType.(*TypeVariable); ok {
		if !config.ResolveSuperclassBoundTypeVariablesGlobally ||
			typeVariable.Superclass() == nil {

			return false
		}
	}
	return !IsTypeParameter(substType) &&
		!IsExistential(substType)
}
