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
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onflow/generics/common"
)

// OnRecordTraceFunc is a function that records a trace.
type OnRecordTraceFunc func(
	operationName string,
	duration time.Duration,
	attrs []attribute.KeyValue,
)

type Config struct {
	// ConformanceLookup is the global conformance lookup,
	// used when a conformance cannot be resolved from a substitution map alone.
	// If nil, an empty ConformanceTable is used.
	ConformanceLookup ConformanceLookup
	// Logger receives debug records, e.g. when a conformance cycle is cut off.
	// If nil, records are discarded.
	Logger *slog.Logger
	// VerifyAllSubstitutionMaps determines if every newly created substitution map is verified.
	// Verification failures panic. Has no effect in release builds.
	VerifyAllSubstitutionMaps bool
	// TracingEnabled determines if tracing is enabled.
	// Tracing reports substitutions, conformance path walks, and map combinations.
	TracingEnabled bool
	// OnRecordTrace is triggered when a trace is recorded.
	OnRecordTrace OnRecordTraceFunc
	// ResolveSuperclassBoundTypeVariablesGlobally determines if a conformance path walk
	// which reached an abstract conformance looks up the conformance globally
	// when the type substitutes to a type variable with a superclass bound.
	// By default, such type variables are treated like type parameters,
	// and the conformance stays abstract.
	ResolveSuperclassBoundTypeVariablesGlobally bool

	MemoryGauge common.MemoryGauge
}
