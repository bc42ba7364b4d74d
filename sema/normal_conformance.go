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
	"sync"

	"github.com/petermattis/goid"

	"github.com/onflow/generics/common"
)

// AssociatedConformanceResolver resolves the conformance of the given conforming type
// for the requirement `subject: iface` of the conformance's interface.
type AssociatedConformanceResolver func(
	conformance *NormalConformance,
	subject Type,
	conformingType Type,
	iface *InterfaceDecl,
) ConformanceRef

// AssociatedConformance is an entry of the associated conformance table of a normal conformance.
type AssociatedConformance struct {
	// Subject is written in terms of Self
	Subject   Type
	Interface *InterfaceDecl
	// ConformingType is the subject, with Self replaced by the conforming type
	ConformingType Type
	Conformance    ConformanceRef
}

// NormalConformance is the declared conformance of a nominal type
// (or the synthesized conformance of a structural type) to an interface.
//
// The associated conformance table is computed lazily, on first use.
// Other goroutines requesting the table while it is being computed wait for it.
// Requests which would never complete yield an invalid conformance instead:
// the computing goroutine requesting the table itself,
// or goroutines computing tables which wait on each other.
type NormalConformance struct {
	conformingType Type
	iface          *InterfaceDecl
	nominal        *NominalDecl
	typeWitnesses  map[string]Type
	lookup         ConformanceLookup
	resolver       AssociatedConformanceResolver
	memoryGauge    common.MemoryGauge
	logger         *slog.Logger

	mu                     sync.Mutex
	computed               bool
	associatedConformances []AssociatedConformance
}

var _ ConcreteConformance = &NormalConformance{}

// NewNormalConformance returns the conformance of the given type to the interface.
// The conforming type is written in terms of the nominal's generic parameters.
// The lookup is used to resolve the associated conformances.
func NewNormalConformance(
	memoryGauge common.MemoryGauge,
	conformingType Type,
	iface *InterfaceDecl,
	nominal *NominalDecl,
	typeWitnesses map[string]Type,
	lookup ConformanceLookup,
) *NormalConformance {
	common.UseMemory(memoryGauge, common.NormalConformanceMemoryUsage)

	return &NormalConformance{
		conformingType: conformingType,
		iface:          iface,
		nominal:        nominal,
		typeWitnesses:  typeWitnesses,
		lookup:         lookup,
		memoryGauge:    memoryGauge,
	}
}

func (*NormalConformance) isConformanceRef() {}

func (c *NormalConformance) Interface() *InterfaceDecl {
	return c.iface
}

func (*NormalConformance) IsInvalid() bool {
	return false
}

func (c *NormalConformance) ID() string {
	return concreteConformanceID(c)
}

func (c *NormalConformance) String() string {
	return concreteConformanceString(c)
}

func (c *NormalConformance) Equal(other ConformanceRef) bool {
	return conformancesEqual(c, other)
}

func (c *NormalConformance) Canonical() ConformanceRef {
	return c
}

func (c *NormalConformance) ConformingType() Type {
	return c.conformingType
}

// Nominal returns the declaration of the conforming type,
// or nil if the conformance is synthesized for a structural type or an existential.
func (c *NormalConformance) Nominal() *NominalDecl {
	return c.nominal
}

// IsSelfConformance returns true if this is the conformance of an existential to its own interface.
func (c *NormalConformance) IsSelfConformance() bool {
	existential, ok := c.conformingType.(*ExistentialType)
	return ok && existential.Interface == c.iface
}

func (c *NormalConformance) RootNormalConformance() *NormalConformance {
	return c
}

func (c *NormalConformance) TypeWitness(name string) Type {
	witness, ok := c.typeWitnesses[name]
	if !ok {
		return &ErrorType{
			Original: &DependentMemberType{
				Base:      c.conformingType,
				Interface: c.iface,
				Name:      name,
			},
		}
	}
	return witness
}

// SetAssociatedConformanceResolver replaces the default resolution of associated conformances.
// It must be called before the table is first used.
func (c *NormalConformance) SetAssociatedConformanceResolver(resolver AssociatedConformanceResolver) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resolver = resolver
}

func (c *NormalConformance) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger = logger
}

// HasComputedAssociatedConformances returns true if the associated conformance table is available.
func (c *NormalConformance) HasComputedAssociatedConformances() bool {
	return c.hasComputedAssociatedConformances()
}

func (c *NormalConformance) hasComputedAssociatedConformances() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.computed
}

// IsComputingAssociatedConformances returns true if the associated conformance table
// is currently being computed.
func (c *NormalConformance) IsComputingAssociatedConformances() bool {
	return associatedConformanceBuilds.isBuilding(c)
}

func (c *NormalConformance) AssociatedConformance(subject Type, iface *InterfaceDecl) ConformanceRef {
	entry, ok := c.associatedConformanceEntry(subject, iface)
	if !ok {
		return InvalidConformanceRef
	}
	return entry.Conformance
}

// AssociatedConformances returns the associated conformance table,
// computing it if needed. The result is nil if requesting the table closes a cycle.
func (c *NormalConformance) AssociatedConformances() []AssociatedConformance {
	entries, _ := c.associatedConformanceTable()
	return entries
}

func (c *NormalConformance) associatedConformanceEntry(subject Type, iface *InterfaceDecl) (AssociatedConformance, bool) {
	entries, ok := c.associatedConformanceTable()
	if !ok {
		return AssociatedConformance{}, false
	}

	subject = subject.Canonical()
	for _, entry := range entries {
		if entry.Interface == iface && entry.Subject.Equal(subject) {
			return entry, true
		}
	}
	return AssociatedConformance{}, false
}

func (c *NormalConformance) associatedConformanceTable() ([]AssociatedConformance, bool) {
	goroutine := goid.Get()

	for {
		build, status := associatedConformanceBuilds.acquire(c, goroutine)
		switch status {
		case tableBuildComputed:
			c.mu.Lock()
			entries := c.associatedConformances
			c.mu.Unlock()
			return entries, true

		case tableBuildCycle:
			c.logCycle()
			return nil, false

		case tableBuildWait:
			<-build.done
			associatedConformanceBuilds.stopWaiting(goroutine)

		case tableBuildOwner:
			return c.buildAssociatedConformances(build), true
		}
	}
}

func (c *NormalConformance) buildAssociatedConformances(build *tableBuild) []AssociatedConformance {
	defer associatedConformanceBuilds.release(c, build)

	c.mu.Lock()
	resolver := c.resolver
	c.mu.Unlock()

	entries := c.computeAssociatedConformances(resolver)

	c.mu.Lock()
	c.associatedConformances = entries
	c.computed = true
	c.mu.Unlock()

	return entries
}

func (c *NormalConformance) logCycle() {
	c.mu.Lock()
	logger := c.logger
	c.mu.Unlock()

	if logger == nil {
		return
	}
	logger.Debug(
		"associated conformances requested while being computed",
		slog.String("conformance", c.String()),
	)
}

func (c *NormalConformance) computeAssociatedConformances(resolver AssociatedConformanceResolver) []AssociatedConformance {
	if resolver == nil {
		resolver = DefaultAssociatedConformanceResolver
	}

	requirements := c.iface.conformanceRequirements()
	if len(requirements) == 0 {
		return nil
	}

	common.UseMemory(c.memoryGauge, common.AssociatedConformanceTableUsage)

	entries := make([]AssociatedConformance, 0, len(requirements))
	for _, requirement := range requirements {
		subject := requirement.Subject.Canonical()
		conformingType := c.projectSubject(subject)
		entries = append(entries, AssociatedConformance{
			Subject:        subject,
			Interface:      requirement.Interface,
			ConformingType: conformingType,
			Conformance:    resolver(c, subject, conformingType, requirement.Interface),
		})
	}
	return entries
}

// projectSubject replaces Self in the given type with the conforming type,
// and resolves associated types through the type witnesses.
func (c *NormalConformance) projectSubject(subject Type) Type {
	ifs := NewInFlightSubstitution(
		func(ty SubstitutableType) Type {
			if param, ok := ty.(*GenericParamType); ok && param.Equal(SelfType) {
				return c.conformingType
			}
			return nil
		},
		func(origType Type, substType Type, iface *InterfaceDecl) ConformanceRef {
			if iface == c.iface && origType.Equal(SelfType) {
				return c
			}
			return c.lookupConformance(substType, iface)
		},
		0,
	)
	return ifs.SubstType(subject)
}

// lookupConformance looks up the conformance of a type written in terms of
// the conforming nominal's generic parameters.
func (c *NormalConformance) lookupConformance(ty Type, iface *InterfaceDecl) ConformanceRef {
	if IsTypeParameter(ty) {
		if c.nominal == nil || c.nominal.GenericContext == nil {
			return InvalidConformanceRef
		}
		return c.nominal.GenericContext.IdentityMap().LookupConformance(ty, iface)
	}
	if c.lookup == nil {
		return ForMissingOrInvalid(ty, iface)
	}
	return c.lookup.LookupConformance(ty, iface)
}

// DefaultAssociatedConformanceResolver resolves an associated conformance
// through the requirements of the conforming nominal's generic context,
// or through the conformance's lookup.
func DefaultAssociatedConformanceResolver(
	conformance *NormalConformance,
	_ Type,
	conformingType Type,
	iface *InterfaceDecl,
) ConformanceRef {
	return conformance.lookupConformance(conformingType, iface)
}

// Subst returns the conformance of the substituted conforming type.
func (c *NormalConformance) Subst(ifs *InFlightSubstitution) ConcreteConformance {
	substType := ifs.SubstType(c.conformingType)
	if substType.Equal(c.conformingType) {
		return c
	}

	var substitutions SubstitutionMap
	if c.nominal != nil && c.nominal.GenericContext != nil {
		substitutions = c.nominal.GenericContext.IdentityMap().Subst(ifs)
	}

	return NewSpecializedConformance(
		c.memoryGauge,
		substType,
		c,
		substitutions,
	)
}
