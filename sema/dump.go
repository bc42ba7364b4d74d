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
	"io"
	"strings"

	"github.com/turbolent/prettier"
)

const dumpMaxLineWidth = 80

const dumpIndent = "    "

var emptySubstitutionMapDoc prettier.Doc = prettier.Text("<empty substitution map>")
var substitutionArrowDoc prettier.Doc = prettier.Text(" -> ")
var noReplacementDoc prettier.Doc = prettier.Text("<<no replacement>>")

// Doc returns a document of the map:
// its context, one line per replacement type, and one line per conformance,
// with the substitutions of specialized conformances nested.
func (m SubstitutionMap) Doc() prettier.Doc {
	if m.storage == nil {
		return emptySubstitutionMapDoc
	}

	context := m.storage.context

	var entries prettier.Concat

	for i, param := range context.params {
		var replacementDoc prettier.Doc = noReplacementDoc
		if replacementType := m.storage.replacementTypes[i]; replacementType != nil {
			replacementDoc = prettier.Text(replacementType.String())
		}

		entries = append(
			entries,
			prettier.HardLine{},
			prettier.Text(param.String()),
			substitutionArrowDoc,
			replacementDoc,
		)
	}

	for i, requirement := range context.conformanceRequirements {
		entries = append(
			entries,
			prettier.HardLine{},
			prettier.Text(requirement.String()),
			substitutionArrowDoc,
			conformanceDoc(m.storage.conformances[i]),
		)
	}

	return prettier.Concat{
		prettier.Text("substitution map for "),
		prettier.Text(context.String()),
		prettier.Text(" {"),
		prettier.Indent{
			Doc: entries,
		},
		prettier.HardLine{},
		prettier.Text("}"),
	}
}

func conformanceDoc(conformance ConformanceRef) prettier.Doc {
	specialized, ok := conformance.(*SpecializedConformance)
	if !ok || specialized.substitutions.Empty() {
		return prettier.Text(conformance.String())
	}

	return prettier.Concat{
		prettier.Text(conformance.String()),
		prettier.Text(" specialized with "),
		specialized.substitutions.Doc(),
	}
}

func (m SubstitutionMap) String() string {
	var builder strings.Builder
	m.Dump(&builder)
	return builder.String()
}

// Dump writes the document of the map to the writer.
func (m SubstitutionMap) Dump(w io.StringWriter) {
	prettier.Prettier(w, m.Doc(), dumpMaxLineWidth, dumpIndent)
}
