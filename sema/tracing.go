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

	"go.opentelemetry.io/otel/attribute"
)

const (
	tracingSubstitutionMapPrefix = "substitutionMap."

	tracingSubstPostfix             = "subst"
	tracingLookupConformancePostfix = "lookupConformance"
	tracingOverridePostfix          = "override"
	tracingCombinePostfix           = "combine"
)

func (u *Universe) tracingEnabled() bool {
	return u.config.TracingEnabled &&
		u.config.OnRecordTrace != nil
}

func (u *Universe) reportSubstTrace(
	context string,
	replacementCount int,
	duration time.Duration,
) {
	u.config.OnRecordTrace(
		tracingSubstitutionMapPrefix+tracingSubstPostfix,
		duration,
		[]attribute.KeyValue{
			attribute.String("Generic context", context),
			attribute.Int("Replacement count", replacementCount),
		},
	)
}

func (u *Universe) reportLookupConformanceTrace(
	typ string,
	iface string,
	pathLength int,
	duration time.Duration,
) {
	u.config.OnRecordTrace(
		tracingSubstitutionMapPrefix+tracingLookupConformancePostfix,
		duration,
		[]attribute.KeyValue{
			attribute.String("Type", typ),
			attribute.String("Interface", iface),
			attribute.Int("Path length", pathLength),
		},
	)
}

func (u *Universe) reportOverrideTrace(
	base string,
	derived string,
	duration time.Duration,
) {
	u.config.OnRecordTrace(
		tracingSubstitutionMapPrefix+tracingOverridePostfix,
		duration,
		[]attribute.KeyValue{
			attribute.String("Base", base),
			attribute.String("Derived", derived),
		},
	)
}

func (u *Universe) reportCombineTrace(
	how CombineSubstitutionMapsKind,
	context string,
	duration time.Duration,
) {
	u.config.OnRecordTrace(
		tracingSubstitutionMapPrefix+tracingCombinePostfix,
		duration,
		[]attribute.KeyValue{
			attribute.String("How", how.String()),
			attribute.String("Generic context", context),
		},
	)
}
