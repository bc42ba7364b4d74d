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

package fixture

import "github.com/SaveTheRbtz/mph"

// NOTE: ensure to update allKeywords when adding a new keyword
const (
	KeywordEach   = "each"
	KeywordRepeat = "repeat"
	KeywordAny    = "any"
	KeywordPack   = "Pack"
	KeywordSelf   = "Self"
	// NOTE: ensure to update allKeywords when adding a new keyword
)

var allKeywords = []string{
	KeywordEach,
	KeywordRepeat,
	KeywordAny,
	KeywordPack,
	KeywordSelf,
}

var keywordsTable = mph.Build(allKeywords)

// IsKeyword returns true if the identifier is reserved in type expressions,
// and cannot be used as a declaration or parameter name.
func IsKeyword(identifier string) bool {
	_, ok := keywordsTable.Lookup(identifier)
	return ok
}
