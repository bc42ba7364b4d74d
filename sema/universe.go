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
	"sync/atomic"
)

// Universe owns the interning tables for generic contexts and substitution maps.
// All maps created within a universe share identity:
// two maps with equal content are the same storage.
//
// A Universe is safe for concurrent use.
type Universe struct {
	config            Config
	logger            *slog.Logger
	conformanceLookup ConformanceLookup
	contexts          internTable[string, *GenericContext]
	interfaceContexts internTable[*InterfaceDecl, *GenericContext]
	environmentCount  atomic.Uint64
}

func NewUniverse(config Config) *Universe {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	conformanceLookup := config.ConformanceLookup
	if conformanceLookup == nil {
		conformanceLookup = NewConformanceTable(config.MemoryGauge)
	}

	return &Universe{
		config:            config,
		logger:            logger,
		conformanceLookup: conformanceLookup,
	}
}

func (u *Universe) Config() Config {
	return u.config
}

// ConformanceLookup returns the global conformance lookup.
func (u *Universe) ConformanceLookup() ConformanceLookup {
	return u.conformanceLookup
}

func (u *Universe) Logger() *slog.Logger {
	return u.logger
}

// InterfaceContext returns the generic context of the interface,
// `<Self where Self: I>`.
func (u *Universe) InterfaceContext(iface *InterfaceDecl) *GenericContext {
	context, _ := u.interfaceContexts.getOrInsert(
		iface,
		func() *GenericContext {
			return u.NewGenericContext(
				[]*GenericParamType{SelfType},
				[]Requirement{
					NewConformanceRequirement(SelfType, iface),
				},
			)
		},
	)
	return context
}

func (u *Universe) verifyNewSubstitutionMaps() bool {
	return AssertionsEnabled && u.config.VerifyAllSubstitutionMaps
}
