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
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// ConformancePathStep is one step of a conformance path.
//
// The subject of the first step is written in terms of the generic context,
// the subjects of all following steps are written in terms of `Self`
// of the previous step's interface.
type ConformancePathStep struct {
	Subject   Type
	Interface *InterfaceDecl
}

// ConformancePath is a derivation of a conformance requirement of a type parameter:
// the first step is a conformance requirement of the context,
// each following step is a requirement of the previous step's interface.
type ConformancePath []ConformancePathStep

func (p ConformancePath) String() string {
	var sb strings.Builder
	for i, step := range p {
		if i > 0 {
			sb.WriteString(" -> ")
		}
		sb.WriteByte('(')
		sb.WriteString(step.Subject.String())
		sb.WriteString(": ")
		sb.WriteString(step.Interface.Identifier)
		sb.WriteByte(')')
	}
	return sb.String()
}

// RequiresInterface returns true if the context requires
// the type parameter to conform to the interface,
// directly or through the requirements of other interfaces.
func (c *GenericContext) RequiresInterface(ty Type, iface *InterfaceDecl) bool {
	return c.ConformancePath(ty, iface) != nil
}

// ConformancePath returns the shortest derivation of the conformance of the type parameter to the interface,
// or nil if the context does not require the conformance.
func (c *GenericContext) ConformancePath(ty Type, iface *InterfaceDecl) ConformancePath {
	ty = ty.Canonical()
	if !IsTypeParameter(ty) {
		return nil
	}

	key := string(ty.ID()) + ": " + iface.Identifier
	path, _ := c.conformancePaths.getOrInsert(
		key,
		func() ConformancePath {
			return c.findConformancePath(ty, iface)
		},
	)
	return path
}

type conformancePathNode struct {
	parent *conformancePathNode
	step   ConformancePathStep
	// depth is the number of member projections of the step's conforming type
	depth int
}

// findConformancePath performs a breadth-first search over the requirements
// of the context and of the interfaces they name.
// Only subjects which are a prefix of the target type are explored,
// e.g. for `T.A.B` the subjects `T`, `T.A` and `T.A.B`.
func (c *GenericContext) findConformancePath(ty Type, iface *InterfaceDecl) ConformancePath {

	targetDepth := typeParameterDepth(ty)

	prefixes := make([]Type, targetDepth+1)
	prefix := ty
	for depth := targetDepth; depth >= 0; depth-- {
		prefixes[depth] = prefix
		if member, ok := prefix.(*DependentMemberType); ok {
			prefix = member.Base
		}
	}

	// visited[depth] is indexed by the interface's slot
	visited := make([]*bitset.BitSet, targetDepth+1)
	for depth := range visited {
		visited[depth] = &bitset.BitSet{}
	}
	slots := map[*InterfaceDecl]uint{}

	visit := func(depth int, iface *InterfaceDecl) bool {
		slot, ok := slots[iface]
		if !ok {
			slot = uint(len(slots))
			slots[iface] = slot
		}
		if visited[depth].Test(slot) {
			return false
		}
		visited[depth].Set(slot)
		return true
	}

	var queue []*conformancePathNode

	for _, requirement := range c.conformanceRequirements {
		subject := requirement.Subject.Canonical()
		depth := typeParameterDepth(subject)
		if depth > targetDepth || !prefixes[depth].Equal(subject) {
			continue
		}
		if !visit(depth, requirement.Interface) {
			continue
		}
		queue = append(queue, &conformancePathNode{
			step: ConformancePathStep{
				Subject:   subject,
				Interface: requirement.Interface,
			},
			depth: depth,
		})
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.depth == targetDepth && node.step.Interface == iface {
			return node.path()
		}

		for _, requirement := range node.step.Interface.conformanceRequirements() {
			subject := requirement.Subject.Canonical()
			depth := node.depth + typeParameterDepth(subject)
			if depth > targetDepth {
				continue
			}
			rebased := replaceSelf(subject, prefixes[node.depth])
			if !prefixes[depth].Equal(rebased) {
				continue
			}
			if !visit(depth, requirement.Interface) {
				continue
			}
			queue = append(queue, &conformancePathNode{
				parent: node,
				step: ConformancePathStep{
					Subject:   subject,
					Interface: requirement.Interface,
				},
				depth: depth,
			})
		}
	}

	return nil
}

func (n *conformancePathNode) path() ConformancePath {
	var length int
	for node := n; node != nil; node = node.parent {
		length++
	}
	path := make(ConformancePath, length)
	for node := n; node != nil; node = node.parent {
		length--
		path[length] = node.step
	}
	return path
}
