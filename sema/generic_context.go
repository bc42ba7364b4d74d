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
	"strings"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/onflow/generics/common"
	"github.com/onflow/generics/errors"
)

// GenericContext is a generic signature:
// an ordered list of generic parameters and a list of requirements on them.
//
// Contexts are interned per universe, and can be compared by pointer.
// The order of the requirements is significant:
// the conformances of a substitution map are stored in the order
// of the context's conformance requirements.
type GenericContext struct {
	universe                *Universe
	params                  []*GenericParamType
	requirements            []Requirement
	conformanceRequirements []Requirement
	paramIndices            map[[2]uint]int
	// sameTypeParams marks the positions of parameters which are fixed by a same-type requirement.
	sameTypeParams *bitset.BitSet
	// concreteParams marks the positions of parameters which are fixed to a concrete type.
	concreteParams *bitset.BitSet
	id             string
	key            string

	canonicalOnce sync.Once
	canonical     *GenericContext

	identityMapOnce sync.Once
	identityMap     SubstitutionMap

	environmentOnce sync.Once
	environment     *GenericEnvironment

	storage          internTable[string, *substitutionMapStorage]
	conformancePaths internTable[string, ConformancePath]
}

// NewGenericContext returns the interned context for the given parameters and requirements.
// Parameters are ordered by depth and index. Requirements keep their order.
func (u *Universe) NewGenericContext(
	params []*GenericParamType,
	requirements []Requirement,
) *GenericContext {

	sortedParams := slices.Clone(params)
	slices.SortStableFunc(
		sortedParams,
		func(a, b *GenericParamType) int {
			if a.Depth != b.Depth {
				return int(a.Depth) - int(b.Depth)
			}
			return int(a.Index) - int(b.Index)
		},
	)
	sortedParams = slices.CompactFunc(
		sortedParams,
		func(a, b *GenericParamType) bool {
			return a.Depth == b.Depth && a.Index == b.Index
		},
	)

	id := genericContextID(sortedParams, requirements, false)
	key := id + "|" + genericContextID(sortedParams, requirements, true)

	context, inserted := u.contexts.getOrInsert(
		key,
		func() *GenericContext {
			return newGenericContext(u, sortedParams, slices.Clone(requirements), id, key)
		},
	)
	if inserted {
		common.UseMemory(u.config.MemoryGauge, common.GenericContextMemoryUsage)
	}
	return context
}

func newGenericContext(
	universe *Universe,
	params []*GenericParamType,
	requirements []Requirement,
	id string,
	key string,
) *GenericContext {

	context := &GenericContext{
		universe:       universe,
		params:         params,
		requirements:   requirements,
		paramIndices:   make(map[[2]uint]int, len(params)),
		sameTypeParams: bitset.New(uint(len(params))),
		concreteParams: bitset.New(uint(len(params))),
		id:             id,
		key:            key,
	}

	for i, param := range params {
		context.paramIndices[[2]uint{param.Depth, param.Index}] = i
	}

	for _, requirement := range requirements {
		if AssertionsEnabled {
			context.assertValidRequirement(requirement)
		}

		switch requirement.Kind {
		case RequirementKindConformance:
			context.conformanceRequirements = append(context.conformanceRequirements, requirement)

		case RequirementKindSameType:
			param, ok := requirement.Subject.Canonical().(*GenericParamType)
			if !ok {
				continue
			}
			index := context.ParamIndex(param)
			if index < 0 {
				continue
			}
			context.sameTypeParams.Set(uint(index))
			if !IsTypeParameter(requirement.Constraint) {
				context.concreteParams.Set(uint(index))
			}

		case RequirementKindSuperclass:
			// Only used to bound type variables

		default:
			panic(errors.NewUnreachableError())
		}
	}

	return context
}

func (c *GenericContext) assertValidRequirement(requirement Requirement) {
	if !IsTypeParameter(requirement.Subject) {
		panic(errors.NewUnexpectedError(
			"requirement subject is not a type parameter: %s",
			requirement,
		))
	}
	if c.ParamIndex(RootGenericParam(requirement.Subject)) < 0 {
		panic(errors.NewUnexpectedError(
			"requirement subject is not rooted in a parameter of the context: %s",
			requirement,
		))
	}
}

func genericContextID(
	params []*GenericParamType,
	requirements []Requirement,
	sugared bool,
) string {
	var sb strings.Builder
	sb.WriteByte('<')
	for i, param := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if sugared {
			sb.WriteString(param.String())
		} else {
			sb.WriteString(string(param.ID()))
		}
	}
	if len(requirements) > 0 {
		sb.WriteString(" where ")
		for i, requirement := range requirements {
			if i > 0 {
				sb.WriteString(", ")
			}
			if sugared {
				sb.WriteString(requirement.String())
			} else {
				sb.WriteString(requirement.ID())
			}
		}
	}
	sb.WriteByte('>')
	return sb.String()
}

func (c *GenericContext) Universe() *Universe {
	return c.universe
}

// ID returns the identity of the context, without sugar.
func (c *GenericContext) ID() string {
	return c.id
}

func (c *GenericContext) String() string {
	return genericContextID(c.params, c.requirements, true)
}

func (c *GenericContext) Params() []*GenericParamType {
	return c.params
}

func (c *GenericContext) Requirements() []Requirement {
	return c.requirements
}

// ConformanceRequirements returns the conformance requirements of the context, in order.
func (c *GenericContext) ConformanceRequirements() []Requirement {
	return c.conformanceRequirements
}

// ParamIndex returns the position of the given parameter in the context,
// or -1 if the context has no such parameter.
func (c *GenericContext) ParamIndex(param *GenericParamType) int {
	index, ok := c.paramIndices[[2]uint{param.Depth, param.Index}]
	if !ok {
		return -1
	}
	return index
}

// ContainsTypeParameter returns true if the type parameter is rooted in a parameter of this context.
func (c *GenericContext) ContainsTypeParameter(ty Type) bool {
	return IsTypeParameter(ty) &&
		c.ParamIndex(RootGenericParam(ty)) >= 0
}

// NextDepth returns the depth of parameters of a context nested in this one.
func (c *GenericContext) NextDepth() uint {
	if len(c.params) == 0 {
		return 0
	}
	return c.params[len(c.params)-1].Depth + 1
}

// InnermostParams returns the parameters at the greatest depth.
func (c *GenericContext) InnermostParams() []*GenericParamType {
	if len(c.params) == 0 {
		return nil
	}
	depth := c.params[len(c.params)-1].Depth
	start := len(c.params)
	for start > 0 && c.params[start-1].Depth == depth {
		start--
	}
	return c.params[start:]
}

// ForEachParam calls the function for each parameter, in order.
// A parameter is not canonical if it is fixed by a same-type requirement.
func (c *GenericContext) ForEachParam(f func(param *GenericParamType, isCanonical bool)) {
	for i, param := range c.params {
		f(param, !c.sameTypeParams.Test(uint(i)))
	}
}

// AreAllParamsConcrete returns true if every parameter is fixed to a concrete type.
func (c *GenericContext) AreAllParamsConcrete() bool {
	return c.concreteParams.Count() == uint(len(c.params))
}

func (c *GenericContext) IsCanonical() bool {
	for _, param := range c.params {
		if !param.IsCanonical() {
			return false
		}
	}
	for _, requirement := range c.requirements {
		if !requirement.IsCanonical() {
			return false
		}
	}
	return true
}

// Canonical returns the context without sugar.
func (c *GenericContext) Canonical() *GenericContext {
	c.canonicalOnce.Do(func() {
		if c.IsCanonical() {
			c.canonical = c
			return
		}

		params := make([]*GenericParamType, 0, len(c.params))
		for _, param := range c.params {
			params = append(params, param.Canonical().(*GenericParamType))
		}

		requirements := make([]Requirement, 0, len(c.requirements))
		for _, requirement := range c.requirements {
			requirements = append(requirements, requirement.Canonical())
		}

		c.canonical = c.universe.NewGenericContext(params, requirements)
	})
	return c.canonical
}

// IdentityMap returns the substitution map which maps each parameter to itself,
// and each conformance requirement to an abstract conformance.
func (c *GenericContext) IdentityMap() SubstitutionMap {
	c.identityMapOnce.Do(func() {
		replacementTypes := make([]Type, 0, len(c.params))
		for _, param := range c.params {
			canonicalParam := param.Canonical().(*GenericParamType)
			if param.IsPack {
				replacementTypes = append(replacementTypes, NewSingletonPackExpansion(canonicalParam))
			} else {
				replacementTypes = append(replacementTypes, canonicalParam)
			}
		}

		conformances := make([]ConformanceRef, 0, len(c.conformanceRequirements))
		for _, requirement := range c.conformanceRequirements {
			conformances = append(conformances, NewAbstractConformance(requirement.Interface))
		}

		c.identityMap = NewSubstitutionMap(c, replacementTypes, conformances)
	})
	return c.identityMap
}

// Environment returns the primary environment of the context,
// in which each type parameter is mapped to a type variable.
func (c *GenericContext) Environment() *GenericEnvironment {
	c.environmentOnce.Do(func() {
		c.environment = c.universe.NewGenericEnvironment(c)
	})
	return c.environment
}
