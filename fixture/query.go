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

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/onflow/generics/sema"
)

//go:generate go tool stringer -type=QueryKind -trimprefix=QueryKind

type QueryKind uint8

const (
	QueryKindUnknown QueryKind = iota
	QueryKindLookupSubstitution
	QueryKindLookupConformance
	QueryKindSubst
	QueryKindCanonical
	QueryKindIdentity
	QueryKindOverride
	QueryKindCombine
	QueryKindOutOfContext
	QueryKindVerify
)

// Name returns the name of the query kind, as used in fixture files.
func (k QueryKind) Name() string {
	switch k {
	case QueryKindLookupSubstitution:
		return "lookup-substitution"
	case QueryKindLookupConformance:
		return "lookup-conformance"
	case QueryKindSubst:
		return "subst"
	case QueryKindCanonical:
		return "canonical"
	case QueryKindIdentity:
		return "identity"
	case QueryKindOverride:
		return "override"
	case QueryKindCombine:
		return "combine"
	case QueryKindOutOfContext:
		return "out-of-context"
	case QueryKindVerify:
		return "verify"
	}

	return "unknown"
}

// Query is a single question about the declared universe.
// Exactly one of the query fields must be set.
type Query struct {
	LookupSubstitution *LookupSubstitutionQuery `yaml:"lookup-substitution"`
	LookupConformance  *LookupConformanceQuery  `yaml:"lookup-conformance"`
	Subst              *SubstQuery              `yaml:"subst"`
	Canonical          *CanonicalQuery          `yaml:"canonical"`
	Identity           *IdentityQuery           `yaml:"identity"`
	Override           *OverrideQuery           `yaml:"override"`
	Combine            *CombineQuery            `yaml:"combine"`
	OutOfContext       *MapQuery                `yaml:"out-of-context"`
	Verify             *MapQuery                `yaml:"verify"`
	// Expect is the expected output, if any
	Expect string `yaml:"expect"`
}

type MapQuery struct {
	Map string `yaml:"map"`
}

// LookupSubstitutionQuery asks for the replacement of a generic parameter of the map's context.
type LookupSubstitutionQuery struct {
	Map  string `yaml:"map"`
	Type string `yaml:"type"`
}

// LookupConformanceQuery asks for the conformance of a type parameter of the map's context.
type LookupConformanceQuery struct {
	Map       string `yaml:"map"`
	Type      string `yaml:"type"`
	Interface string `yaml:"interface"`
}

// SubstQuery applies the map to a type written in terms of the map's context,
// or applies another map to the map.
type SubstQuery struct {
	Map  string `yaml:"map"`
	Type string `yaml:"type"`
	With string `yaml:"with"`
}

type CanonicalQuery struct {
	Map         string `yaml:"map"`
	KeepContext bool   `yaml:"keepContext"`
}

// IdentityQuery asks if a map is an identity map,
// or for the identity map of a context.
type IdentityQuery struct {
	Map     string `yaml:"map"`
	Context string `yaml:"context"`
}

// OverrideQuery asks for the override substitutions of two members, written as `Owner.name`.
type OverrideQuery struct {
	Base    string `yaml:"base"`
	Derived string `yaml:"derived"`
}

type CombineQuery struct {
	First  string `yaml:"first"`
	Second string `yaml:"second"`
	// How is `depth` (the default) or `index`
	How                string `yaml:"how"`
	FirstDepthOrIndex  uint   `yaml:"firstDepthOrIndex"`
	SecondDepthOrIndex uint   `yaml:"secondDepthOrIndex"`
	Context            string `yaml:"context"`
}

// Kind returns the kind of the query.
func (q Query) Kind() QueryKind {
	kind := QueryKindUnknown

	set := func(isSet bool, queryKind QueryKind) {
		if !isSet {
			return
		}
		if kind != QueryKindUnknown {
			// More than one kind is set
			kind = QueryKindUnknown
			return
		}
		kind = queryKind
	}

	set(q.LookupSubstitution != nil, QueryKindLookupSubstitution)
	set(q.LookupConformance != nil, QueryKindLookupConformance)
	set(q.Subst != nil, QueryKindSubst)
	set(q.Canonical != nil, QueryKindCanonical)
	set(q.Identity != nil, QueryKindIdentity)
	set(q.Override != nil, QueryKindOverride)
	set(q.Combine != nil, QueryKindCombine)
	set(q.OutOfContext != nil, QueryKindOutOfContext)
	set(q.Verify != nil, QueryKindVerify)

	return kind
}

// Result is the outcome of a query.
type Result struct {
	Index    int    `json:"index"`
	Kind     string `json:"kind"`
	Query    string `json:"query"`
	Output   string `json:"output,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Expected string `json:"expected,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Passed returns true if the query was evaluated,
// and produced the expected output, if any.
func (r Result) Passed() bool {
	return r.Error == "" &&
		(r.Expected == "" || r.Output == r.Expected)
}

// EvaluateAll evaluates the queries of the fixture file, in order.
func (u *Universe) EvaluateAll() []Result {
	results := make([]Result, 0, len(u.queries))
	for index, query := range u.queries {
		results = append(results, u.Evaluate(index, query))
	}
	return results
}

// Evaluate evaluates the query.
// Errors in the query, e.g. unknown names, are reported in the result.
func (u *Universe) Evaluate(index int, query Query) Result {
	kind := query.Kind()

	result := Result{
		Index:    index,
		Kind:     kind.Name(),
		Expected: strings.TrimSpace(query.Expect),
	}

	var err error

	switch kind {
	case QueryKindLookupSubstitution:
		err = u.evaluateLookupSubstitution(query.LookupSubstitution, &result)
	case QueryKindLookupConformance:
		err = u.evaluateLookupConformance(query.LookupConformance, &result)
	case QueryKindSubst:
		err = u.evaluateSubst(query.Subst, &result)
	case QueryKindCanonical:
		err = u.evaluateCanonical(query.Canonical, &result)
	case QueryKindIdentity:
		err = u.evaluateIdentity(query.Identity, &result)
	case QueryKindOverride:
		err = u.evaluateOverride(query.Override, &result)
	case QueryKindCombine:
		err = u.evaluateCombine(query.Combine, &result)
	case QueryKindOutOfContext:
		err = u.evaluateOutOfContext(query.OutOfContext, &result)
	case QueryKindVerify:
		err = u.evaluateVerify(query.Verify, &result)
	default:
		err = &InvalidQueryError{
			Index:   index,
			Message: "expected exactly one query kind",
		}
	}

	if err != nil {
		result.Error = err.Error()
	}

	return result
}

func (u *Universe) evaluateLookupSubstitution(query *LookupSubstitutionQuery, result *Result) error {
	result.Query = fmt.Sprintf("%s in %s", query.Type, query.Map)

	m, err := u.Map(query.Map)
	if err != nil {
		return err
	}

	ty, err := u.ParseType(query.Type, m.Context())
	if err != nil {
		return err
	}

	param, ok := ty.(*sema.GenericParamType)
	if !ok {
		return &InvalidQueryError{
			Index:   result.Index,
			Message: "`" + query.Type + "` is not a generic parameter",
		}
	}

	replacement := m.LookupSubstitution(param)
	if replacement == nil {
		result.Output = "<none>"
	} else {
		result.Output = replacement.String()
	}
	return nil
}

func (u *Universe) evaluateLookupConformance(query *LookupConformanceQuery, result *Result) error {
	result.Query = fmt.Sprintf("%s: %s in %s", query.Type, query.Interface, query.Map)

	m, err := u.Map(query.Map)
	if err != nil {
		return err
	}

	ty, err := u.ParseType(query.Type, m.Context())
	if err != nil {
		return err
	}

	iface, err := u.Interface(query.Interface)
	if err != nil {
		return err
	}

	conformance := m.LookupConformance(ty, iface)
	result.Output = conformance.String()
	if specialized, ok := conformance.(*sema.SpecializedConformance); ok {
		result.Detail = specialized.Substitutions().String()
	}
	return nil
}

func (u *Universe) evaluateSubst(query *SubstQuery, result *Result) error {
	m, err := u.Map(query.Map)
	if err != nil {
		return err
	}

	if query.Type != "" {
		result.Query = fmt.Sprintf("%s with %s", query.Type, query.Map)

		ty, err := u.ParseType(query.Type, m.Context())
		if err != nil {
			return err
		}

		result.Output = m.SubstType(ty).String()
		return nil
	}

	result.Query = fmt.Sprintf("%s with %s", query.Map, query.With)

	with, err := u.Map(query.With)
	if err != nil {
		return err
	}

	setMapResult(result, m.SubstMap(with.SubstitutionMap, 0))
	return nil
}

func (u *Universe) evaluateCanonical(query *CanonicalQuery, result *Result) error {
	result.Query = query.Map

	m, err := u.Map(query.Map)
	if err != nil {
		return err
	}

	setMapResult(result, m.Canonical(!query.KeepContext))
	return nil
}

func (u *Universe) evaluateIdentity(query *IdentityQuery, result *Result) error {
	var m sema.SubstitutionMap

	if query.Context != "" {
		result.Query = "context " + query.Context

		context, err := u.Context(query.Context)
		if err != nil {
			return err
		}
		if context != nil {
			m = context.IdentityMap()
		}
	} else {
		result.Query = query.Map

		named, err := u.Map(query.Map)
		if err != nil {
			return err
		}
		m = named.SubstitutionMap
	}

	result.Output = strconv.FormatBool(m.IsIdentity())
	result.Detail = m.String()
	return nil
}

func (u *Universe) evaluateOverride(query *OverrideQuery, result *Result) error {
	result.Query = fmt.Sprintf("%s overridden by %s", query.Base, query.Derived)

	base, err := u.Member(query.Base)
	if err != nil {
		return err
	}

	derived, err := u.Member(query.Derived)
	if err != nil {
		return err
	}

	if baseNominal, ok := base.Owner.(*sema.NominalDecl); ok {
		derivedNominal, ok := derived.Owner.(*sema.NominalDecl)
		if !ok || !isSubclass(derivedNominal, baseNominal) {
			return &InvalidQueryError{
				Index:   result.Index,
				Message: fmt.Sprintf("%s is not a subclass of %s", derived.Owner, baseNominal),
			}
		}
	}

	setMapResult(result, sema.OverrideSubstitutions(base, derived))
	return nil
}

// isSubclass returns true if the derived class is the base class,
// or inherits from it.
func isSubclass(derived *sema.NominalDecl, base *sema.NominalDecl) bool {
	for current := derived; current != nil; {
		if current == base {
			return true
		}
		superclass, ok := current.Superclass.(*sema.NominalType)
		if !ok {
			return false
		}
		current = superclass.Decl
	}
	return false
}

func (u *Universe) evaluateCombine(query *CombineQuery, result *Result) error {
	result.Query = fmt.Sprintf(
		"%s and %s at %s %d/%d for %s",
		query.First,
		query.Second,
		query.How,
		query.FirstDepthOrIndex,
		query.SecondDepthOrIndex,
		query.Context,
	)

	first, err := u.Map(query.First)
	if err != nil {
		return err
	}

	second, err := u.Map(query.Second)
	if err != nil {
		return err
	}

	context, err := u.Context(query.Context)
	if err != nil {
		return err
	}

	var how sema.CombineSubstitutionMapsKind
	switch query.How {
	case "", "depth":
		how = sema.CombineSubstitutionMapsKindAtDepth
	case "index":
		how = sema.CombineSubstitutionMapsKindAtIndex
	default:
		return &InvalidQueryError{
			Index:   result.Index,
			Message: "unknown combination `" + query.How + "`",
		}
	}

	setMapResult(
		result,
		sema.CombineSubstitutionMaps(
			first.SubstitutionMap,
			second.SubstitutionMap,
			how,
			query.FirstDepthOrIndex,
			query.SecondDepthOrIndex,
			context,
		),
	)
	return nil
}

// evaluateOutOfContext maps the replacement types of the map
// into the environment of the context they are written in, and back out.
func (u *Universe) evaluateOutOfContext(query *MapQuery, result *Result) error {
	result.Query = query.Map

	m, err := u.Map(query.Map)
	if err != nil {
		return err
	}

	if m.Over == nil {
		return &InvalidQueryError{
			Index:   result.Index,
			Message: "replacement types of " + query.Map + " are not written in a generic context",
		}
	}

	environment := m.Over.Environment()

	inContext := m.SubstFuncs(
		func(ty sema.SubstitutableType) sema.Type {
			return environment.MapTypeIntoContext(ty)
		},
		sema.MakeAbstractConformanceForGenericType,
		0,
	)

	setMapResult(result, inContext.MapReplacementTypesOutOfContext())
	result.Detail = inContext.String()
	return nil
}

func (u *Universe) evaluateVerify(query *MapQuery, result *Result) error {
	result.Query = query.Map

	m, err := u.Map(query.Map)
	if err != nil {
		return err
	}

	verificationErr := m.Verify()
	if verificationErr != nil {
		result.Output = verificationErr.Error()
	} else {
		result.Output = "valid"
	}
	return nil
}

func setMapResult(result *Result, m sema.SubstitutionMap) {
	result.Output = Describe(m)
	result.Detail = m.String()
}

// Describe returns a one-line description of the map:
// the replacement type of each parameter, followed by the conformances.
func Describe(m sema.SubstitutionMap) string {
	if m.Empty() {
		return "<empty>"
	}

	var sb strings.Builder

	replacementTypes := m.ReplacementTypes()
	for i, param := range m.Context().Params() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(param.String())
		sb.WriteString(" := ")
		if replacementTypes[i] == nil {
			sb.WriteString("<none>")
		} else {
			sb.WriteString(replacementTypes[i].String())
		}
	}

	conformances := m.Conformances()
	if len(conformances) > 0 {
		sb.WriteString(" where ")
		for i, conformance := range conformances {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(conformance.String())
		}
	}

	return sb.String()
}
