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

package common

import (
	"sync"

	"github.com/onflow/generics/errors"
)

type MemoryUsage struct {
	Kind   MemoryKind
	Amount uint64
}

type MemoryGauge interface {
	MeterMemory(usage MemoryUsage) error
}

var (
	GenericContextMemoryUsage       = NewConstantMemoryUsage(MemoryKindGenericContext)
	GenericEnvironmentMemoryUsage   = NewConstantMemoryUsage(MemoryKindGenericEnvironment)
	TypeVariableMemoryUsage         = NewConstantMemoryUsage(MemoryKindTypeVariable)
	SubstitutionMapStorageUsage     = NewConstantMemoryUsage(MemoryKindSubstitutionMapStorage)
	NormalConformanceMemoryUsage    = NewConstantMemoryUsage(MemoryKindNormalConformance)
	SpecializedConformanceUsage     = NewConstantMemoryUsage(MemoryKindSpecializedConformance)
	PackConformanceMemoryUsage      = NewConstantMemoryUsage(MemoryKindPackConformance)
	AssociatedConformanceTableUsage = NewConstantMemoryUsage(MemoryKindAssociatedConformanceTable)
)

func UseMemory(gauge MemoryGauge, usage MemoryUsage) {
	if gauge == nil {
		return
	}

	err := gauge.MeterMemory(usage)
	if err != nil {
		panic(errors.MemoryError{Err: err})
	}
}

func NewConstantMemoryUsage(kind MemoryKind) MemoryUsage {
	return MemoryUsage{
		Kind:   kind,
		Amount: 1,
	}
}

func NewSubstitutionMapReplacementTypesMemoryUsage(count int) MemoryUsage {
	return MemoryUsage{
		Kind:   MemoryKindSubstitutionMapReplacementType,
		Amount: uint64(count),
	}
}

func NewSubstitutionMapConformancesMemoryUsage(count int) MemoryUsage {
	return MemoryUsage{
		Kind:   MemoryKindSubstitutionMapConformance,
		Amount: uint64(count),
	}
}

// MemoryCounter is a MemoryGauge which sums up all usages per kind.
type MemoryCounter struct {
	mu     sync.Mutex
	Usages map[MemoryKind]uint64
	Limit  uint64
	total  uint64
}

var _ MemoryGauge = &MemoryCounter{}

func NewMemoryCounter(limit uint64) *MemoryCounter {
	return &MemoryCounter{
		Usages: map[MemoryKind]uint64{},
		Limit:  limit,
	}
}

func (c *MemoryCounter) MeterMemory(usage MemoryUsage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Usages[usage.Kind] += usage.Amount
	c.total += usage.Amount
	if c.Limit > 0 && c.total > c.Limit {
		return MemoryLimitExceededError{Limit: c.Limit}
	}
	return nil
}

func (c *MemoryCounter) Total() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.total
}

type MemoryLimitExceededError struct {
	Limit uint64
}

func (e MemoryLimitExceededError) Error() string {
	return "memory limit exceeded"
}
