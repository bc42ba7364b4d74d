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

//go:generate go tool stringer -type=CombineSubstitutionMapsKind -trimprefix=CombineSubstitutionMapsKind

type CombineSubstitutionMapsKind uint8

const (
	// CombineSubstitutionMapsKindAtDepth splits the parameters by depth
	CombineSubstitutionMapsKindAtDepth CombineSubstitutionMapsKind = iota
	// CombineSubstitutionMapsKindAtIndex splits the parameters by index
	CombineSubstitutionMapsKindAtIndex
)

// CombineSubstitutionMaps returns a map over the given context,
// which takes the replacements for parameters below the threshold
// (firstDepthOrIndex, by depth or by index) from the first map,
// and those for the remaining parameters from the second map,
// after shifting them by secondDepthOrIndex - firstDepthOrIndex.
func CombineSubstitutionMaps(
	first SubstitutionMap,
	second SubstitutionMap,
	how CombineSubstitutionMapsKind,
	firstDepthOrIndex uint,
	secondDepthOrIndex uint,
	context *GenericContext,
) SubstitutionMap {
	if context == nil {
		return SubstitutionMap{}
	}

	universe := context.universe

	var start time.Time
	tracingEnabled := universe.tracingEnabled()
	if tracingEnabled {
		start = time.Now()
	}

	// replaceGenericParam returns the shifted parameter,
	// or nil if the parameter is below the threshold
	replaceGenericParam := func(param *GenericParamType) *GenericParamType {
		switch how {
		case CombineSubstitutionMapsKindAtDepth:
			if param.Depth < firstDepthOrIndex {
				return nil
			}
			return NewGenericParamType(
				param.Depth+secondDepthOrIndex-firstDepthOrIndex,
				param.Index,
				param.IsPack,
			)

		case CombineSubstitutionMapsKindAtIndex:
			if param.Index < firstDepthOrIndex {
				return nil
			}
			return NewGenericParamType(
				param.Depth,
				param.Index+secondDepthOrIndex-firstDepthOrIndex,
				param.IsPack,
			)

		default:
			panic(errors.NewUnreachableError())
		}
	}

	lookup := universe.conformanceLookup

	result := SubstitutionMapFromFuncs(
		context,
		func(ty SubstitutableType) Type {
			if param, ok := ty.(*GenericParamType); ok {
				replacement := replaceGenericParam(param)
				if replacement != nil {
					return second.SubstType(replacement)
				}
			}
			return first.SubstType(ty)
		},
		func(origType Type, substType Type, iface *InterfaceDecl) ConformanceRef {
			replacement, ok := rebaseTypeParameter(origType, replaceGenericParam)
			if ok {
				return second.LookupConformance(replacement.Canonical(), iface)
			}

			conformance := first.LookupConformance(origType, iface)
			if isResolved(conformance) {
				return conformance
			}

			// The maps alone may not have enough information,
			// e.g. for a conformance the first map's context does not require

			if IsTypeParameter(substType) {
				return NewAbstractConformance(iface)
			}

			return lookup.LookupConformance(substType, iface)
		},
	)

	if tracingEnabled {
		universe.reportCombineTrace(how, context.String(), time.Since(start))
	}

	return result
}

// rebaseTypeParameter replaces the root generic parameter of the type parameter.
// It returns false if the replacement function returns nil.
func rebaseTypeParameter(
	ty Type,
	replace func(param *GenericParamType) *GenericParamType,
) (Type, bool) {
	switch ty := ty.(type) {
	case *GenericParamType:
		replacement := replace(ty)
		if replacement == nil {
			return nil, false
		}
		return replacement, true

	case *DependentMemberType:
		base, ok := rebaseTypeParameter(ty.Base, replace)
		if !ok {
			return nil, false
		}
		return &DependentMemberType{
			Base:      base,
			Interface: ty.Interface,
			Name:      ty.Name,
		}, true

	default:
		return nil, false
	}
}
