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
	"time"

	"github.com/onflow/generics/errors"
)

// overrideSubstitutionsInfo relates the generic context of a base class member
// to the generic parameters of an overriding member in a derived class.
type overrideSubstitutionsInfo struct {
	// baseDepth is the depth of the base member's own generic parameters
	baseDepth uint
	// origDepth is the depth of the derived member's own generic parameters
	origDepth uint
	// baseSubstitutions maps the base class's parameters,
	// in terms of the derived class's parameters
	baseSubstitutions SubstitutionMap
	derivedParams     []*GenericParamType
	lookup            ConformanceLookup
}

func newOverrideSubstitutionsInfo(
	baseNominal *NominalDecl,
	derivedNominal *NominalDecl,
	derivedParams []*GenericParamType,
	lookup ConformanceLookup,
) overrideSubstitutionsInfo {

	info := overrideSubstitutionsInfo{
		derivedParams: derivedParams,
		lookup:        lookup,
	}

	if baseNominal.GenericContext != nil {
		info.baseDepth = baseNominal.NextDepth()

		// Map the derived class's type into its context and back,
		// so that conformances implied by requirements of the derived class,
		// e.g. a superclass bound, are found as concrete conformances

		var derivedType Type = derivedNominal.DeclaredInterfaceType()
		if derivedNominal.GenericContext != nil {
			derivedType = derivedNominal.GenericContext.Environment().MapTypeIntoContext(derivedType)
		}

		info.baseSubstitutions = ContextSubstitutionMap(derivedType, baseNominal, lookup).
			MapReplacementTypesOutOfContext()
	}

	if derivedNominal.GenericContext != nil {
		info.origDepth = derivedNominal.NextDepth()
	}

	return info
}

func (info overrideSubstitutionsInfo) substitution(ty SubstitutableType) Type {
	if param, ok := ty.(*GenericParamType); ok && param.Depth >= info.baseDepth {
		if AssertionsEnabled && param.Depth != info.baseDepth {
			panic(errors.NewUnexpectedError(
				"generic parameter %s is deeper than the base member's parameters at depth %d",
				param,
				info.baseDepth,
			))
		}

		if info.derivedParams != nil {
			if int(param.Index) >= len(info.derivedParams) {
				return nil
			}
			return info.derivedParams[param.Index]
		}

		return NewGenericParamType(
			param.Depth+info.origDepth-info.baseDepth,
			param.Index,
			param.IsPack,
		)
	}

	return info.baseSubstitutions.SubstType(ty)
}

func (info overrideSubstitutionsInfo) lookupConformance(
	origType Type,
	substType Type,
	iface *InterfaceDecl,
) ConformanceRef {
	if RootGenericParam(origType).Depth >= info.baseDepth {
		return NewAbstractConformance(iface)
	}

	conformance := info.baseSubstitutions.LookupConformance(origType, iface)
	if isResolved(conformance) {
		return conformance
	}

	if IsTypeParameter(substType) {
		return NewAbstractConformance(iface)
	}

	return info.lookup.LookupConformance(substType, iface)
}

// OverrideSubstitutions returns the map over the base member's generic context,
// which expresses the base member's generic parameters and requirements
// in terms of the derived (overriding) member's generic parameters.
//
// Members of interfaces have no type-level specialization to encode:
// the result is the identity map over the base member's context.
func OverrideSubstitutions(base *MemberDecl, derived *MemberDecl) SubstitutionMap {
	baseNominal, ok := base.Owner.(*NominalDecl)
	if !ok {
		if base.GenericContext == nil {
			return SubstitutionMap{}
		}
		return base.GenericContext.IdentityMap()
	}
	derivedNominal, ok := derived.Owner.(*NominalDecl)
	if !ok {
		panic(errors.NewUnexpectedError("overriding member %s is not a class member", derived))
	}

	return OverrideSubstitutionsForNominals(
		baseNominal,
		derivedNominal,
		base.GenericContext,
		derived.GenericParams,
	)
}

// OverrideSubstitutionsForNominals returns the map over the given base context,
// which maps the base class's parameters through the derived class's superclass,
// and the base member's own parameters to the derived parameters.
// If derivedParams is nil, the base member's own parameters are shifted
// to the depth of the derived class's member parameters.
func OverrideSubstitutionsForNominals(
	baseNominal *NominalDecl,
	derivedNominal *NominalDecl,
	baseContext *GenericContext,
	derivedParams []*GenericParamType,
) SubstitutionMap {
	if baseContext == nil {
		return SubstitutionMap{}
	}

	universe := baseContext.universe

	var start time.Time
	tracingEnabled := universe.tracingEnabled()
	if tracingEnabled {
		start = time.Now()
	}

	info := newOverrideSubstitutionsInfo(
		baseNominal,
		derivedNominal,
		derivedParams,
		universe.conformanceLookup,
	)

	result := SubstitutionMapFromFuncs(
		baseContext,
		info.substitution,
		info.lookupConformance,
	)

	if tracingEnabled {
		universe.reportOverrideTrace(
			baseNominal.Identifier,
			derivedNominal.Identifier,
			time.Since(start),
		)
	}

	return result
}

// ContextSubstitutionMap returns the map over the generic context of the target nominal,
// which replaces its parameters with the type arguments of the given type,
// or of its superclass chain, where the target is found.
func ContextSubstitutionMap(ty Type, target *NominalDecl, lookup ConformanceLookup) SubstitutionMap {
	if target.GenericContext == nil {
		return SubstitutionMap{}
	}

	current := ty
	for current != nil {
		var nominalType *NominalType
		switch currentType := current.(type) {
		case *NominalType:
			nominalType = currentType
		case *TypeVariable:
			current = currentType.Superclass()
			continue
		default:
			current = nil
			continue
		}

		if nominalType.Decl == target {
			return SubstitutionMapFromReplacementTypes(
				target.GenericContext,
				nominalType.TypeArguments,
				LookUpConformanceIn(lookup),
			)
		}

		current = nominalType.superclass()
	}

	panic(errors.NewUnexpectedError(
		"type %s is not derived from %s",
		ty,
		target,
	))
}
