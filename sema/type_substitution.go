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
	"github.com/onflow/generics/errors"
)

// SubstType applies the substitution to the type.
//
// Generic parameters without a replacement become error types.
// Type variables are only replaced if the options ask for it.
func (s *InFlightSubstitution) SubstType(ty Type) Type {
	if ty == nil {
		return nil
	}

	switch ty := ty.(type) {
	case *GenericParamType:
		return s.substGenericParam(ty)

	case *TypeVariable:
		return s.substTypeVariable(ty)

	case *DependentMemberType:
		return s.substDependentMember(ty)

	case *NominalType:
		if len(ty.TypeArguments) == 0 {
			return ty
		}
		typeArguments, changed := s.substTypes(ty.TypeArguments)
		if !changed {
			return ty
		}
		return &NominalType{
			Decl:          ty.Decl,
			TypeArguments: typeArguments,
		}

	case *FunctionType:
		parameters, parametersChanged := s.substTypes(ty.Parameters)
		result := s.SubstType(ty.Result)
		if !parametersChanged && result == ty.Result {
			return ty
		}
		return &FunctionType{
			Parameters: parameters,
			Result:     result,
		}

	case *AliasType:
		underlying := s.SubstType(ty.Underlying)
		if underlying == ty.Underlying {
			return ty
		}
		return &AliasType{
			Name:       ty.Name,
			Underlying: underlying,
		}

	case *PackType:
		elements := make([]Type, 0, len(ty.Elements))
		for _, element := range ty.Elements {
			if expansion, ok := element.(*PackExpansionType); ok {
				elements = append(elements, s.expandPackExpansion(expansion)...)
				continue
			}
			elements = append(elements, s.SubstType(element))
		}
		return &PackType{
			Elements: elements,
		}

	case *PackExpansionType:
		elements := s.expandPackExpansion(ty)
		if len(elements) == 1 {
			if expansion, ok := elements[0].(*PackExpansionType); ok {
				return expansion
			}
		}
		return &PackType{
			Elements: elements,
		}

	case *ExistentialType, *ErrorType:
		return ty

	default:
		panic(errors.NewUnreachableError())
	}
}

func (s *InFlightSubstitution) substTypes(types []Type) ([]Type, bool) {
	var changed bool
	result := make([]Type, 0, len(types))
	for _, ty := range types {
		substituted := s.SubstType(ty)
		if substituted != ty {
			changed = true
		}
		result = append(result, substituted)
	}
	return result, changed
}

func (s *InFlightSubstitution) substGenericParam(param *GenericParamType) Type {
	replacement := s.substitution(param)
	if replacement == nil {
		return &ErrorType{
			Original: param,
		}
	}
	if param.IsPack {
		return s.projectPackElement(replacement)
	}
	return replacement
}

// projectPackElement returns the element of the replacement pack
// for the active pack expansion, if any.
// If the element is itself an expansion, its pattern is returned:
// the caller re-wraps it.
func (s *InFlightSubstitution) projectPackElement(replacement Type) Type {
	index, ok := s.packExpansionIndex()
	if !ok {
		return replacement
	}
	pack, ok := replacement.(*PackType)
	if !ok {
		return replacement
	}
	if index >= len(pack.Elements) {
		return &ErrorType{
			Original: replacement,
		}
	}
	element := pack.Elements[index]
	if expansion, ok := element.(*PackExpansionType); ok {
		return expansion.Pattern
	}
	return element
}

func (s *InFlightSubstitution) substTypeVariable(typeVariable *TypeVariable) Type {
	if typeVariable.IsOpaque() {
		if !s.ShouldSubstituteOpaqueResults() {
			return typeVariable
		}
	} else if !s.ShouldSubstituteTypeVariables() {
		return typeVariable
	}

	if !typeVariable.IsRoot() {
		return s.SubstType(typeVariable.dependentMemberOverRoot())
	}

	replacement := s.substitution(typeVariable)
	if replacement == nil {
		return typeVariable
	}
	if typeVariable.Kind() == TypeVariableKindPack {
		return s.projectPackElement(replacement)
	}
	return replacement
}

func (s *InFlightSubstitution) substDependentMember(member *DependentMemberType) Type {
	base := s.SubstType(member.Base)

	if _, ok := base.(*ErrorType); ok {
		return &ErrorType{
			Original: member,
		}
	}

	if IsTypeParameter(base) {
		if base == member.Base {
			return member
		}
		return &DependentMemberType{
			Base:      base,
			Interface: member.Interface,
			Name:      member.Name,
		}
	}

	if typeVariable, ok := base.(*TypeVariable); ok {
		return typeVariable.Environment.TypeVariable(&DependentMemberType{
			Base:      typeVariable.InterfaceType,
			Interface: member.Interface,
			Name:      member.Name,
		})
	}

	conformance := s.LookupConformance(member.Base.Canonical(), base, member.Interface)
	return typeWitness(conformance, base, member)
}

// expandPackExpansion substitutes the count of the expansion,
// and substitutes the pattern once per element of the resulting pack.
func (s *InFlightSubstitution) expandPackExpansion(expansion *PackExpansionType) []Type {
	count := s.SubstType(expansion.Count)

	countPack, ok := count.(*PackType)
	if !ok {
		// The count is not (yet) known, e.g. a pack type variable mapped out of context
		return []Type{
			&PackExpansionType{
				Pattern: s.SubstType(expansion.Pattern),
				Count:   count,
			},
		}
	}

	result := make([]Type, 0, len(countPack.Elements))
	for index, element := range countPack.Elements {
		var pattern Type
		s.withPackExpansionIndex(index, func() {
			pattern = s.SubstType(expansion.Pattern)
		})

		if elementExpansion, ok := element.(*PackExpansionType); ok {
			result = append(result, &PackExpansionType{
				Pattern: pattern,
				Count:   elementExpansion.Count,
			})
			continue
		}
		result = append(result, pattern)
	}
	return result
}

// SubstConformance substitutes the conformance of the original type.
func (s *InFlightSubstitution) SubstConformance(conformance ConformanceRef, origType Type) ConformanceRef {
	return substConformance(conformance, origType, s)
}

func substConformance(conformance ConformanceRef, origType Type, ifs *InFlightSubstitution) ConformanceRef {
	switch conformance := conformance.(type) {
	case InvalidConformance:
		return conformance

	case *MissingConformance:
		return ForMissingOrInvalid(ifs.SubstType(conformance.Type), conformance.iface)

	case AbstractConformance:
		substType := ifs.SubstType(origType)
		return ifs.LookupConformance(origType, substType, conformance.iface)

	case ConcreteConformance:
		return conformance.Subst(ifs)

	case *PackConformance:
		return substPackConformance(conformance, origType, ifs)

	default:
		panic(errors.NewUnreachableError())
	}
}

func substPackConformance(conformance *PackConformance, origType Type, ifs *InFlightSubstitution) ConformanceRef {
	origPack, ok := origType.(*PackType)
	if !ok || len(origPack.Elements) != len(conformance.elements) {
		origPack = conformance.conformingType
	}

	var elementTypes []Type
	var elements []ConformanceRef

	for i, element := range conformance.elements {
		origElement := origPack.Elements[i]

		expansion, ok := origElement.(*PackExpansionType)
		if !ok {
			elementTypes = append(elementTypes, ifs.SubstType(origElement))
			elements = append(elements, substConformance(element, origElement, ifs))
			continue
		}

		count := ifs.SubstType(expansion.Count)
		countPack, ok := count.(*PackType)
		if !ok {
			elementTypes = append(elementTypes, &PackExpansionType{
				Pattern: ifs.SubstType(expansion.Pattern),
				Count:   count,
			})
			elements = append(elements, substConformance(element, expansion.Pattern, ifs))
			continue
		}

		for index, countElement := range countPack.Elements {
			ifs.withPackExpansionIndex(index, func() {
				pattern := ifs.SubstType(expansion.Pattern)
				if countExpansion, ok := countElement.(*PackExpansionType); ok {
					elementTypes = append(elementTypes, &PackExpansionType{
						Pattern: pattern,
						Count:   countExpansion.Count,
					})
				} else {
					elementTypes = append(elementTypes, pattern)
				}
				elements = append(elements, substConformance(element, expansion.Pattern, ifs))
			})
		}
	}

	return &PackConformance{
		conformingType: &PackType{
			Elements: elementTypes,
		},
		iface:    conformance.iface,
		elements: elements,
	}
}
