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
)

// Verify checks that every conformance of the map is consistent with its replacement types:
// for each conformance requirement whose subject substitutes to a concrete type,
// the conformance must be concrete, for that very type,
// and a self-conformance if the type is an existential.
//
// Verification is skipped in release builds.
func (m SubstitutionMap) Verify() error {
	if !AssertionsEnabled || m.storage == nil {
		return nil
	}

	context := m.storage.context

	for i, requirement := range context.conformanceRequirements {
		substType := m.SubstType(requirement.Subject.Canonical())
		conformance := m.storage.conformances[i]

		err := m.verifyConformance(requirement, substType, conformance)
		if err != nil {
			context.universe.logger.Debug(
				"substitution map verification failed",
				slog.String("map", m.String()),
				slog.String("error", err.Error()),
			)
			return err
		}
	}

	return nil
}

func (m SubstitutionMap) verifyConformance(
	requirement Requirement,
	substType Type,
	conformance ConformanceRef,
) error {
	if IsTypeParameter(substType) ||
		HasTypeVariable(substType) ||
		HasError(substType) {

		return nil
	}

	if conformance.IsInvalid() {
		return nil
	}

	if pack, ok := substType.(*PackType); ok {
		packConformance, ok := conformance.(*PackConformance)
		if !ok || len(packConformance.elements) != len(pack.Elements) {
			return &VerificationError{
				Map:         m,
				Requirement: requirement,
				SubstType:   substType,
				Conformance: conformance,
				Message:     "pack type must have pack conformance of the same length",
			}
		}
		for i, element := range packConformance.elements {
			elementType := pack.Elements[i]
			if expansion, ok := elementType.(*PackExpansionType); ok {
				elementType = expansion.Pattern
			}
			err := m.verifyConformance(requirement, elementType, element)
			if err != nil {
				return err
			}
		}
		return nil
	}

	concrete, ok := conformance.(ConcreteConformance)
	if !ok {
		if IsMissingConformance(conformance) {
			return nil
		}
		return &VerificationError{
			Map:         m,
			Requirement: requirement,
			SubstType:   substType,
			Conformance: conformance,
			Message:     "concrete type cannot have abstract conformance",
		}
	}

	conformingType := concrete.ConformingType()
	if HasTypeParameter(conformingType) && !HasTypeParameter(substType) {
		if nominal := concrete.RootNormalConformance().nominal; nominal != nil &&
			nominal.GenericContext != nil {

			conformingType = nominal.GenericContext.Environment().MapTypeIntoContext(conformingType)
		}
	}

	if !substType.Equal(conformingType) {
		return &VerificationError{
			Map:         m,
			Requirement: requirement,
			SubstType:   substType,
			Conformance: conformance,
			Message:     "conformance must match concrete replacement type",
		}
	}

	if IsExistential(substType) && !concrete.RootNormalConformance().IsSelfConformance() {
		return &VerificationError{
			Map:         m,
			Requirement: requirement,
			SubstType:   substType,
			Conformance: conformance,
			Message:     "existential type cannot have normal conformance",
		}
	}

	return nil
}
