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

// SubstOptions control which types a substitution replaces.
//
// Substitution always keeps the expansion level of packs:
// a pack expansion whose count is a pack parameter or pack type variable
// stays an expansion when its count is replaced by another such parameter.
type SubstOptions uint8

const (
	// SubstOptionSubstituteOpaqueResults replaces opaque type variables,
	// and forces concrete conformances through lookup
	SubstOptionSubstituteOpaqueResults SubstOptions = 1 << iota
	// SubstOptionSubstituteTypeVariables replaces primary type variables
	SubstOptionSubstituteTypeVariables
)

func (o SubstOptions) Contains(option SubstOptions) bool {
	return o&option == option
}

// TypeSubstitutionFunc returns the replacement for a generic parameter or root type variable,
// or nil if there is no replacement.
type TypeSubstitutionFunc func(ty SubstitutableType) Type

// LookupConformanceFunc returns the conformance of the substituted type to the interface.
// The original type is the type before substitution.
type LookupConformanceFunc func(origType Type, substType Type, iface *InterfaceDecl) ConformanceRef

// InFlightSubstitution is a single substitution operation in progress:
// a type substitution, a conformance lookup, options,
// and the state of the pack expansions currently being expanded.
//
// An InFlightSubstitution is not safe for concurrent use.
type InFlightSubstitution struct {
	substitution TypeSubstitutionFunc
	lookup       LookupConformanceFunc
	options      SubstOptions
	// packExpansionIndices is the stack of element indices of the active pack expansions
	packExpansionIndices []int
}

func NewInFlightSubstitution(
	substitution TypeSubstitutionFunc,
	lookup LookupConformanceFunc,
	options SubstOptions,
) *InFlightSubstitution {
	return &InFlightSubstitution{
		substitution: substitution,
		lookup:       lookup,
		options:      options,
	}
}

// NewInFlightSubstitutionViaMap returns a substitution which replays the given map.
func NewInFlightSubstitutionViaMap(substitutions SubstitutionMap, options SubstOptions) *InFlightSubstitution {
	return NewInFlightSubstitution(
		QuerySubstitutionMap(substitutions),
		LookUpConformanceInSubstitutionMap(substitutions),
		options,
	)
}

// NewReplacementTypeArraySubstitution returns a substitution which replaces
// the parameters of the context with the type at the same position.
func NewReplacementTypeArraySubstitution(
	context *GenericContext,
	replacementTypes []Type,
	lookup LookupConformanceFunc,
	options SubstOptions,
) *InFlightSubstitution {
	return NewInFlightSubstitution(
		QueryReplacementTypeArray(context, replacementTypes),
		lookup,
		options,
	)
}

func (s *InFlightSubstitution) Options() SubstOptions {
	return s.options
}

func (s *InFlightSubstitution) ShouldSubstituteOpaqueResults() bool {
	return s.options.Contains(SubstOptionSubstituteOpaqueResults)
}

func (s *InFlightSubstitution) ShouldSubstituteTypeVariables() bool {
	return s.options.Contains(SubstOptionSubstituteTypeVariables)
}

// packExpansionIndex returns the element index of the innermost active pack expansion.
func (s *InFlightSubstitution) packExpansionIndex() (int, bool) {
	count := len(s.packExpansionIndices)
	if count == 0 {
		return 0, false
	}
	return s.packExpansionIndices[count-1], true
}

// withPackExpansionIndex calls the function with the given element index active.
func (s *InFlightSubstitution) withPackExpansionIndex(index int, f func()) {
	s.packExpansionIndices = append(s.packExpansionIndices, index)
	defer func() {
		s.packExpansionIndices = s.packExpansionIndices[:len(s.packExpansionIndices)-1]
	}()
	f()
}

// LookupConformance looks up the conformance through the substitution's lookup function.
// If a pack expansion is being expanded and the result is a pack conformance,
// the element conformance for the active index is returned.
func (s *InFlightSubstitution) LookupConformance(origType Type, substType Type, iface *InterfaceDecl) ConformanceRef {
	conformance := s.lookup(origType, substType, iface)

	index, ok := s.packExpansionIndex()
	if !ok {
		return conformance
	}

	pack, ok := conformance.(*PackConformance)
	if !ok {
		return conformance
	}

	if index >= len(pack.elements) {
		return InvalidConformanceRef
	}
	return pack.elements[index]
}

// QuerySubstitutionMap returns a type substitution which replays the given map.
func QuerySubstitutionMap(substitutions SubstitutionMap) TypeSubstitutionFunc {
	return func(ty SubstitutableType) Type {
		return substitutions.LookupSubstitution(ty)
	}
}

// QueryReplacementTypeArray returns a type substitution which replaces
// the parameters of the context with the type at the same position.
func QueryReplacementTypeArray(context *GenericContext, replacementTypes []Type) TypeSubstitutionFunc {
	return func(ty SubstitutableType) Type {
		param, ok := ty.(*GenericParamType)
		if !ok {
			return nil
		}
		index := context.ParamIndex(param)
		if index < 0 || index >= len(replacementTypes) {
			return nil
		}
		return replacementTypes[index]
	}
}

// LookUpConformanceInSubstitutionMap returns a conformance lookup
// which finds conformances of the original type in the given map.
func LookUpConformanceInSubstitutionMap(substitutions SubstitutionMap) LookupConformanceFunc {
	return func(origType Type, _ Type, iface *InterfaceDecl) ConformanceRef {
		return substitutions.LookupConformance(origType.Canonical(), iface)
	}
}

// LookUpConformanceIn returns a conformance lookup
// which finds conformances of the substituted type in the given global lookup.
func LookUpConformanceIn(lookup ConformanceLookup) LookupConformanceFunc {
	return func(_ Type, substType Type, iface *InterfaceDecl) ConformanceRef {
		if IsTypeParameter(substType) {
			return NewAbstractConformance(iface)
		}
		return lookup.LookupConformance(substType, iface)
	}
}

// MakeAbstractConformanceForGenericType is a conformance lookup
// which returns an abstract conformance for any type.
func MakeAbstractConformanceForGenericType(_ Type, _ Type, iface *InterfaceDecl) ConformanceRef {
	return NewAbstractConformance(iface)
}
