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
	"slices"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/fxamacker/circlehash"

	"github.com/onflow/generics/common"
	"github.com/onflow/generics/errors"
)

// SubstitutionMap records, for a generic context, the replacement type of each generic parameter
// and the conformance for each conformance requirement.
//
// Substitution maps are immutable values. Maps are interned:
// two maps over the same context with the same replacement types and conformances
// share their storage, so equality is a pointer comparison.
//
// The zero value is the empty map, which has no generic context.
// It is distinct from a map over a context with no parameters.
type SubstitutionMap struct {
	storage *substitutionMapStorage
}

type substitutionMapStorage struct {
	context *GenericContext
	// replacementTypes has one entry per generic parameter of the context,
	// in order. A nil entry means there is no replacement
	replacementTypes []Type
	// conformances has one entry per conformance requirement of the context, in order
	conformances []ConformanceRef
	hash         uint64
}

// substitutionMapKey is the content of a substitution map, used as its interning key.
type substitutionMapKey struct {
	Context          string   `cbor:"1,keyasint"`
	ReplacementTypes []string `cbor:"2,keyasint"`
	Conformances     []string `cbor:"3,keyasint"`
}

var substitutionMapKeyEncMode = func() cbor.EncMode {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return encMode
}()

const substitutionMapHashSeed uint64 = 0x9e3779b97f4a7c15

func substitutionMapKeyOf(
	context *GenericContext,
	replacementTypes []Type,
	conformances []ConformanceRef,
) []byte {
	key := substitutionMapKey{
		Context:          context.key,
		ReplacementTypes: make([]string, 0, len(replacementTypes)),
		Conformances:     make([]string, 0, len(conformances)),
	}

	// Sugar is part of the key: a map with sugared replacement types
	// is a different map than its canonical form

	for _, replacementType := range replacementTypes {
		if replacementType == nil {
			key.ReplacementTypes = append(key.ReplacementTypes, "")
			continue
		}
		key.ReplacementTypes = append(
			key.ReplacementTypes,
			string(replacementType.ID())+"\x00"+replacementType.String(),
		)
	}

	for _, conformance := range conformances {
		key.Conformances = append(
			key.Conformances,
			conformance.ID()+"\x00"+conformance.String(),
		)
	}

	encoded, err := substitutionMapKeyEncMode.Marshal(key)
	if err != nil {
		panic(errors.NewUnexpectedErrorFromCause(err))
	}
	return encoded
}

// NewSubstitutionMap returns the map over the given context with the given replacement types and conformances.
// There must be exactly one replacement type per generic parameter,
// and one conformance per conformance requirement of the context.
func NewSubstitutionMap(
	context *GenericContext,
	replacementTypes []Type,
	conformances []ConformanceRef,
) SubstitutionMap {
	if context == nil {
		if len(replacementTypes) > 0 || len(conformances) > 0 {
			panic(&SubstitutionMapArityError{
				Kind:     SubstitutionMapArityKindReplacementTypes,
				Expected: 0,
				Actual:   len(replacementTypes) + len(conformances),
			})
		}
		return SubstitutionMap{}
	}

	if len(replacementTypes) != len(context.params) {
		panic(&SubstitutionMapArityError{
			Context:  context,
			Kind:     SubstitutionMapArityKindReplacementTypes,
			Expected: len(context.params),
			Actual:   len(replacementTypes),
		})
	}

	if len(conformances) != len(context.conformanceRequirements) {
		panic(&SubstitutionMapArityError{
			Context:  context,
			Kind:     SubstitutionMapArityKindConformances,
			Expected: len(context.conformanceRequirements),
			Actual:   len(conformances),
		})
	}

	if AssertionsEnabled {
		assertPackShapes(context, replacementTypes)
	}

	key := substitutionMapKeyOf(context, replacementTypes, conformances)

	storage, inserted := context.storage.getOrInsert(
		string(key),
		func() *substitutionMapStorage {
			return &substitutionMapStorage{
				context:          context,
				replacementTypes: slices.Clone(replacementTypes),
				conformances:     slices.Clone(conformances),
				hash:             circlehash.Hash64(key, substitutionMapHashSeed),
			}
		},
	)

	result := SubstitutionMap{
		storage: storage,
	}

	if inserted {
		universe := context.universe
		memoryGauge := universe.config.MemoryGauge
		common.UseMemory(memoryGauge, common.SubstitutionMapStorageUsage)
		common.UseMemory(memoryGauge, common.NewSubstitutionMapReplacementTypesMemoryUsage(len(replacementTypes)))
		common.UseMemory(memoryGauge, common.NewSubstitutionMapConformancesMemoryUsage(len(conformances)))

		if universe.verifyNewSubstitutionMaps() {
			err := result.Verify()
			if err != nil {
				panic(err)
			}
		}
	}

	return result
}

func assertPackShapes(context *GenericContext, replacementTypes []Type) {
	for i, param := range context.params {
		replacementType := replacementTypes[i]
		if replacementType == nil || HasError(replacementType) {
			continue
		}
		if param.IsPack != isPackType(replacementType) {
			panic(&PackShapeMismatchError{
				Param:           param,
				ReplacementType: replacementType,
			})
		}
	}
}

// SubstitutionMapFromDriver returns the map over the given context,
// which replaces each parameter and resolves each conformance requirement
// through the given substitution.
func SubstitutionMapFromDriver(context *GenericContext, ifs *InFlightSubstitution) SubstitutionMap {
	if context == nil {
		return SubstitutionMap{}
	}

	replacementTypes := make([]Type, 0, len(context.params))
	for _, param := range context.params {
		replacementTypes = append(replacementTypes, ifs.SubstType(param.Canonical()))
	}

	conformances := make([]ConformanceRef, 0, len(context.conformanceRequirements))
	for _, requirement := range context.conformanceRequirements {
		subject := requirement.Subject.Canonical()
		substType := ifs.SubstType(subject)
		conformances = append(
			conformances,
			ifs.LookupConformance(subject, substType, requirement.Interface),
		)
	}

	return NewSubstitutionMap(context, replacementTypes, conformances)
}

// SubstitutionMapFromFuncs returns the map over the given context,
// which replaces each parameter through the given type substitution,
// and resolves each conformance requirement through the given conformance lookup.
func SubstitutionMapFromFuncs(
	context *GenericContext,
	substitution TypeSubstitutionFunc,
	lookup LookupConformanceFunc,
) SubstitutionMap {
	return SubstitutionMapFromDriver(
		context,
		NewInFlightSubstitution(substitution, lookup, 0),
	)
}

// SubstitutionMapFromReplacementTypes returns the map over the given context,
// which replaces each parameter with the type at the same position,
// and resolves each conformance requirement through the given conformance lookup.
func SubstitutionMapFromReplacementTypes(
	context *GenericContext,
	replacementTypes []Type,
	lookup LookupConformanceFunc,
) SubstitutionMap {
	return SubstitutionMapFromDriver(
		context,
		NewReplacementTypeArraySubstitution(context, replacementTypes, lookup, 0),
	)
}

// SubstitutionMapFromMap returns the map over the given context,
// which replays the given map.
func SubstitutionMapFromMap(context *GenericContext, substitutions SubstitutionMap) SubstitutionMap {
	return SubstitutionMapFromDriver(
		context,
		NewInFlightSubstitutionViaMap(substitutions, 0),
	)
}

// InterfaceSubstitutions returns the map over the interface's context `<Self where Self: I>`,
// which replaces Self with the given type.
func (u *Universe) InterfaceSubstitutions(
	iface *InterfaceDecl,
	selfType Type,
	conformance ConformanceRef,
) SubstitutionMap {
	return NewSubstitutionMap(
		u.InterfaceContext(iface),
		[]Type{selfType},
		[]ConformanceRef{conformance},
	)
}

func (m SubstitutionMap) Empty() bool {
	return m.storage == nil
}

// Context returns the generic context of the map, or nil for the empty map.
func (m SubstitutionMap) Context() *GenericContext {
	if m.storage == nil {
		return nil
	}
	return m.storage.context
}

// ReplacementTypes returns the replacement type of each generic parameter, in order.
func (m SubstitutionMap) ReplacementTypes() []Type {
	if m.storage == nil {
		return nil
	}
	return m.storage.replacementTypes
}

// InnermostReplacementTypes returns the replacement types of the innermost parameters.
func (m SubstitutionMap) InnermostReplacementTypes() []Type {
	if m.storage == nil {
		return nil
	}
	innermost := len(m.storage.context.InnermostParams())
	replacementTypes := m.storage.replacementTypes
	return replacementTypes[len(replacementTypes)-innermost:]
}

// Conformances returns the conformance for each conformance requirement, in order.
func (m SubstitutionMap) Conformances() []ConformanceRef {
	if m.storage == nil {
		return nil
	}
	return m.storage.conformances
}

// HasAnySubstitutableParams returns true if some parameter of the context is not fixed to a concrete type.
func (m SubstitutionMap) HasAnySubstitutableParams() bool {
	context := m.Context()
	return context != nil &&
		!context.AreAllParamsConcrete()
}

func (m SubstitutionMap) replacementTypesHave(property typeProperties) bool {
	for _, replacementType := range m.ReplacementTypes() {
		if replacementType != nil && replacementType.properties().has(property) {
			return true
		}
	}
	return false
}

func (m SubstitutionMap) HasTypeVariables() bool {
	return m.replacementTypesHave(typePropertyHasTypeVariable)
}

func (m SubstitutionMap) HasOpaqueResults() bool {
	return m.replacementTypesHave(typePropertyHasOpaqueResult)
}

func (m SubstitutionMap) HasErrors() bool {
	return m.replacementTypesHave(typePropertyHasError)
}

// Equal returns true if both maps are the same map.
func (m SubstitutionMap) Equal(other SubstitutionMap) bool {
	return m.storage == other.storage
}

// Hash returns a hash of the content of the map. The empty map hashes to 0.
func (m SubstitutionMap) Hash() uint64 {
	if m.storage == nil {
		return 0
	}
	return m.storage.hash
}

// LookupSubstitution returns the replacement for a generic parameter,
// or for the root type variable of a primary environment.
// It returns nil if the map has no replacement.
func (m SubstitutionMap) LookupSubstitution(ty SubstitutableType) Type {
	if m.storage == nil {
		return nil
	}

	var param *GenericParamType

	switch ty := ty.(type) {
	case *GenericParamType:
		param = ty

	case *TypeVariable:
		if ty.IsOpaque() || !ty.IsRoot() {
			return nil
		}
		param = ty.InterfaceType.(*GenericParamType)

	default:
		panic(errors.NewUnreachableError())
	}

	index := m.storage.context.ParamIndex(param)
	if index < 0 {
		return nil
	}
	return m.storage.replacementTypes[index]
}

// SubstType applies the map to the type.
func (m SubstitutionMap) SubstType(ty Type) Type {
	return NewInFlightSubstitutionViaMap(m, 0).SubstType(ty)
}

// SubstMap applies the other map to the replacement types and conformances of this map.
func (m SubstitutionMap) SubstMap(other SubstitutionMap, options SubstOptions) SubstitutionMap {
	return m.Subst(NewInFlightSubstitutionViaMap(other, options))
}

// SubstFuncs applies the type substitution and conformance lookup
// to the replacement types and conformances of this map.
func (m SubstitutionMap) SubstFuncs(
	substitution TypeSubstitutionFunc,
	lookup LookupConformanceFunc,
	options SubstOptions,
) SubstitutionMap {
	return m.Subst(NewInFlightSubstitution(substitution, lookup, options))
}

// Subst applies the substitution to the replacement types and conformances of this map.
// The result is a map over the same context.
func (m SubstitutionMap) Subst(ifs *InFlightSubstitution) SubstitutionMap {
	if m.storage == nil {
		return m
	}

	context := m.storage.context
	universe := context.universe

	var start time.Time
	tracingEnabled := universe.tracingEnabled()
	if tracingEnabled {
		start = time.Now()
	}

	replacementTypes := make([]Type, len(m.storage.replacementTypes))
	for i, replacementType := range m.storage.replacementTypes {
		if replacementType == nil {
			continue
		}
		replacementTypes[i] = ifs.SubstType(replacementType)
	}

	conformances := make([]ConformanceRef, 0, len(m.storage.conformances))
	for i, requirement := range context.conformanceRequirements {
		conformance := m.storage.conformances[i]

		// Concrete conformances can be substituted directly,
		// unless opaque result types must be looked through
		if concrete, ok := conformance.(ConcreteConformance); ok &&
			!ifs.ShouldSubstituteOpaqueResults() {

			conformances = append(conformances, concrete.Subst(ifs))
			continue
		}

		origType := NewInFlightSubstitutionViaMap(m, ifs.Options()).
			SubstType(requirement.Subject.Canonical())

		conformances = append(
			conformances,
			substConformance(conformance, origType, ifs),
		)
	}

	result := NewSubstitutionMap(context, replacementTypes, conformances)

	if tracingEnabled {
		universe.reportSubstTrace(
			context.String(),
			len(replacementTypes),
			time.Since(start),
		)
	}

	return result
}

// MapReplacementTypesOutOfContext replaces the type variables in the replacement types
// with their interface types.
func (m SubstitutionMap) MapReplacementTypesOutOfContext() SubstitutionMap {
	return m.SubstFuncs(
		MapTypeOutOfContext,
		MakeAbstractConformanceForGenericType,
		SubstOptionSubstituteTypeVariables,
	)
}

// MapOpaqueResultTypesToUnderlying replaces the opaque type variables in the replacement types
// with the types they stand for.
func (m SubstitutionMap) MapOpaqueResultTypesToUnderlying() SubstitutionMap {
	if m.storage == nil {
		return m
	}

	lookup := m.storage.context.universe.conformanceLookup

	return m.SubstFuncs(
		replaceOpaqueTypeVariablesWithUnderlyingTypes,
		func(origType Type, substType Type, iface *InterfaceDecl) ConformanceRef {
			if IsTypeParameter(substType) {
				return NewAbstractConformance(iface)
			}
			return lookup.LookupConformance(substType, iface)
		},
		SubstOptionSubstituteOpaqueResults,
	)
}

func replaceOpaqueTypeVariablesWithUnderlyingTypes(ty SubstitutableType) Type {
	typeVariable, ok := ty.(*TypeVariable)
	if !ok {
		return ty
	}
	if !typeVariable.IsOpaque() || !typeVariable.IsRoot() {
		return nil
	}
	underlying := typeVariable.Environment.underlying
	if underlying.Empty() {
		return nil
	}
	return underlying.LookupSubstitution(typeVariable.InterfaceType.(*GenericParamType))
}

// IsIdentity returns true if the map replaces each parameter with itself,
// and each conformance requirement with an abstract conformance.
func (m SubstitutionMap) IsIdentity() bool {
	if m.storage == nil {
		return true
	}

	for _, conformance := range m.storage.conformances {
		switch conformance := conformance.(type) {
		case AbstractConformance:
			continue

		case *PackConformance:
			if len(conformance.elements) == 1 &&
				IsAbstractConformance(conformance.elements[0]) {

				continue
			}
		}

		return false
	}

	isIdentity := true
	replacementTypes := m.storage.replacementTypes

	m.storage.context.ForEachParam(func(param *GenericParamType, isCanonical bool) {
		replacementType := replacementTypes[0]
		replacementTypes = replacementTypes[1:]

		if !isCanonical {
			return
		}

		var expected Type = param
		if param.IsPack {
			expected = NewSingletonPackExpansion(param)
		}
		if replacementType == nil || !expected.Equal(replacementType) {
			isIdentity = false
		}
	})

	return isIdentity
}

// IsCanonical returns true if the context, the replacement types,
// and the conformances of the map have no sugar.
func (m SubstitutionMap) IsCanonical() bool {
	if m.storage == nil {
		return true
	}

	return m.storage.context.IsCanonical() &&
		m.hasCanonicalEntries()
}

// hasCanonicalEntries returns true if the replacement types and the conformances
// of the map have no sugar. The context may have sugar.
func (m SubstitutionMap) hasCanonicalEntries() bool {
	if m.storage == nil {
		return true
	}

	for _, replacementType := range m.storage.replacementTypes {
		if replacementType != nil && !replacementType.IsCanonical() {
			return false
		}
	}

	for _, conformance := range m.storage.conformances {
		if !isCanonicalConformance(conformance) {
			return false
		}
	}

	return true
}

func isCanonicalConformance(conformance ConformanceRef) bool {
	switch conformance := conformance.(type) {
	case InvalidConformance, AbstractConformance, *NormalConformance:
		return true

	case *MissingConformance:
		return conformance.Type.IsCanonical()

	case *SpecializedConformance:
		return conformance.conformingType.IsCanonical() &&
			conformance.substitutions.hasCanonicalEntries()

	case *InheritedConformance:
		return conformance.conformingType.IsCanonical() &&
			isCanonicalConformance(conformance.inherited)

	case *PackConformance:
		if !conformance.conformingType.IsCanonical() {
			return false
		}
		for _, element := range conformance.elements {
			if !isCanonicalConformance(element) {
				return false
			}
		}
		return true

	default:
		panic(errors.NewUnreachableError())
	}
}

// Canonical returns the map with all sugar removed.
// If canonicalizeContext is false, the context is kept as is.
func (m SubstitutionMap) Canonical(canonicalizeContext bool) SubstitutionMap {
	if m.storage == nil {
		return m
	}

	if canonicalizeContext {
		if m.IsCanonical() {
			return m
		}
	} else if m.hasCanonicalEntries() {
		return m
	}

	context := m.storage.context
	if canonicalizeContext {
		context = context.Canonical()
	}

	replacementTypes := make([]Type, 0, len(m.storage.replacementTypes))
	for _, replacementType := range m.storage.replacementTypes {
		if replacementType != nil {
			replacementType = replacementType.Canonical()
		}
		replacementTypes = append(replacementTypes, replacementType)
	}

	conformances := make([]ConformanceRef, 0, len(m.storage.conformances))
	for _, conformance := range m.storage.conformances {
		conformances = append(conformances, conformance.Canonical())
	}

	return NewSubstitutionMap(context, replacementTypes, conformances)
}
