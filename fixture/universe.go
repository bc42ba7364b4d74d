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
	"github.com/onflow/generics/common/orderedmap"
	"github.com/onflow/generics/sema"
)

// Universe is the type universe declared by a fixture file.
type Universe struct {
	Sema  *sema.Universe
	Table *sema.ConformanceTable

	interfaces *orderedmap.OrderedMap[string, *sema.InterfaceDecl]
	nominals   *orderedmap.OrderedMap[string, *sema.NominalDecl]
	aliases    *orderedmap.OrderedMap[string, *sema.AliasType]
	members    *orderedmap.OrderedMap[string, *sema.MemberDecl]
	// scopes are the named generic contexts:
	// standalone contexts, nominals, members, and interfaces
	scopes *orderedmap.OrderedMap[string, *scope]
	maps   *orderedmap.OrderedMap[string, Map]
	// registered conformances, by `Type: Interface`
	registered map[string]struct{}

	queries []Query
}

// Map is a named substitution map of a fixture.
type Map struct {
	Name string
	sema.SubstitutionMap
	// Over is the context the replacement types are written in, if any
	Over *sema.GenericContext
}

// NewUniverse declares everything in the file.
// The conformance table of the universe is completed before it is returned.
func NewUniverse(file *File, config sema.Config) (*Universe, error) {
	table := sema.NewConformanceTable(config.MemoryGauge)
	if config.Logger != nil {
		table.SetLogger(config.Logger)
	}
	config.ConformanceLookup = table

	u := &Universe{
		Sema:       sema.NewUniverse(config),
		Table:      table,
		interfaces: orderedmap.New[orderedmap.OrderedMap[string, *sema.InterfaceDecl]](len(file.Interfaces)),
		nominals:   orderedmap.New[orderedmap.OrderedMap[string, *sema.NominalDecl]](len(file.Nominals)),
		aliases:    orderedmap.New[orderedmap.OrderedMap[string, *sema.AliasType]](len(file.Aliases)),
		members:    orderedmap.New[orderedmap.OrderedMap[string, *sema.MemberDecl]](len(file.Members)),
		scopes:     orderedmap.New[orderedmap.OrderedMap[string, *scope]](0),
		maps:       orderedmap.New[orderedmap.OrderedMap[string, Map]](len(file.Maps)),
		registered: map[string]struct{}{},
		queries:    file.Queries,
	}

	err := u.declareInterfaces(file.Interfaces)
	if err != nil {
		return nil, err
	}

	for _, spec := range file.Nominals {
		err = u.declareNominal(spec)
		if err != nil {
			return nil, err
		}
	}

	for _, spec := range file.Aliases {
		err = u.declareAlias(spec)
		if err != nil {
			return nil, err
		}
	}

	for _, spec := range file.Conformances {
		err = u.declareConformances(spec)
		if err != nil {
			return nil, err
		}
	}

	for _, spec := range file.Contexts {
		err = u.declareContext(spec)
		if err != nil {
			return nil, err
		}
	}

	for _, spec := range file.Members {
		err = u.declareMember(spec)
		if err != nil {
			return nil, err
		}
	}

	for _, spec := range file.Maps {
		err = u.declareMap(spec)
		if err != nil {
			return nil, err
		}
	}

	table.Complete()

	return u, nil
}

func (u *Universe) scopeOf(context *sema.GenericContext) *scope {
	s := &scope{
		universe: u,
		context:  context,
		params:   map[string]*sema.GenericParamType{},
	}
	if context != nil {
		for _, param := range context.Params() {
			name := param.Name
			if name == "" {
				name = param.String()
			}
			s.params[name] = param
		}
		s.requirements = context.Requirements()
	}
	return s
}

func (u *Universe) declareScope(name string, s *scope) error {
	if u.scopes.Contains(name) {
		return &DuplicateDeclarationError{
			Name: name,
			Kind: DeclarationKindContext,
		}
	}
	u.scopes.Set(name, s)
	return nil
}

// newScope declares the parameters at the next depth of the parent scope,
// and parses the requirements in the resulting scope.
// The context of the result is nil if it has neither parameters nor requirements.
func (u *Universe) newScope(
	name string,
	kind DeclarationKind,
	parent *scope,
	paramDecls []string,
	requirementDecls []string,
) (*scope, []*sema.GenericParamType, error) {

	s := &scope{
		universe: u,
		params:   map[string]*sema.GenericParamType{},
	}

	var params []*sema.GenericParamType
	var depth uint

	if parent != nil {
		for paramName, param := range parent.params { //nolint:maprange
			s.params[paramName] = param
		}
		s.self = parent.self
		s.requirements = append(s.requirements, parent.requirements...)
		if parent.context != nil {
			params = append(params, parent.context.Params()...)
			depth = parent.context.NextDepth()
		}
	}

	ownParams := make([]*sema.GenericParamType, 0, len(paramDecls))
	declared := map[string]struct{}{}

	for index, paramDecl := range paramDecls {
		paramName, isPack, err := parseParamDeclaration(paramDecl)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := declared[paramName]; ok {
			return nil, nil, &DuplicateDeclarationError{
				Name: paramName,
				Kind: DeclarationKindType,
			}
		}
		declared[paramName] = struct{}{}

		param := &sema.GenericParamType{
			Name:   paramName,
			Depth:  depth,
			Index:  uint(index),
			IsPack: isPack,
		}
		s.params[paramName] = param
		ownParams = append(ownParams, param)
	}
	params = append(params, ownParams...)

	for _, requirementDecl := range requirementDecls {
		requirement, err := s.parseRequirement(requirementDecl)
		if err != nil {
			return nil, nil, err
		}

		root := sema.RootGenericParam(requirement.Subject)
		if root == nil || !containsParam(params, root) {
			return nil, nil, &InvalidDeclarationError{
				Name:    name,
				Kind:    kind,
				Message: "requirement `" + requirementDecl + "` is not on a parameter of the context",
			}
		}

		s.requirements = append(s.requirements, requirement)
	}

	if len(params) > 0 || len(s.requirements) > 0 {
		s.context = u.Sema.NewGenericContext(params, s.requirements)
	}

	return s, ownParams, nil
}

func containsParam(params []*sema.GenericParamType, param *sema.GenericParamType) bool {
	for _, candidate := range params {
		if candidate.Depth == param.Depth && candidate.Index == param.Index {
			return true
		}
	}
	return false
}

func (u *Universe) declareInterfaces(specs []InterfaceSpec) error {
	// Declare all interfaces first, so requirements may refer to any of them
	for _, spec := range specs {
		if IsKeyword(spec.Name) {
			return &InvalidDeclarationError{
				Name:    spec.Name,
				Kind:    DeclarationKindInterface,
				Message: "keyword cannot be used as name",
			}
		}
		if u.interfaces.Contains(spec.Name) {
			return &DuplicateDeclarationError{
				Name: spec.Name,
				Kind: DeclarationKindInterface,
			}
		}

		iface := &sema.InterfaceDecl{
			Identifier:      spec.Name,
			AssociatedTypes: spec.AssociatedTypes,
			SelfConforming:  spec.SelfConforming,
		}

		switch spec.Invertible {
		case "":
			break
		case sema.InvertibleInterfaceKindCopyable.String():
			iface.Invertible = sema.InvertibleInterfaceKindCopyable
		case sema.InvertibleInterfaceKindEscapable.String():
			iface.Invertible = sema.InvertibleInterfaceKindEscapable
		default:
			return &InvalidDeclarationError{
				Name:    spec.Name,
				Kind:    DeclarationKindInterface,
				Message: "unknown invertible interface kind `" + spec.Invertible + "`",
			}
		}

		u.interfaces.Set(spec.Name, iface)
	}

	for _, spec := range specs {
		iface, _ := u.interfaces.Get(spec.Name)

		for _, inherited := range spec.Inherits {
			inheritedInterface, err := u.Interface(inherited)
			if err != nil {
				return err
			}
			iface.RequirementSignature = append(
				iface.RequirementSignature,
				sema.NewConformanceRequirement(sema.SelfType, inheritedInterface),
			)
		}

		s := &scope{
			universe: u,
			params: map[string]*sema.GenericParamType{
				KeywordSelf: sema.SelfType,
			},
			self: iface,
		}

		for _, requirementDecl := range spec.Requirements {
			requirement, err := s.parseRequirement(requirementDecl)
			if err != nil {
				return err
			}
			if sema.RootGenericParam(requirement.Subject) != sema.SelfType {
				return &InvalidDeclarationError{
					Name:    spec.Name,
					Kind:    DeclarationKindInterface,
					Message: "requirement `" + requirementDecl + "` is not on Self",
				}
			}
			iface.RequirementSignature = append(iface.RequirementSignature, requirement)
		}

		if spec.SelfConforming {
			u.Table.RegisterSelfConformance(iface)
		}
	}

	// Interface contexts are only available once all requirement signatures are complete
	for _, spec := range specs {
		iface, _ := u.interfaces.Get(spec.Name)
		context := u.Sema.InterfaceContext(iface)

		s := u.scopeOf(context)
		s.params[KeywordSelf] = sema.SelfType
		s.self = iface

		err := u.declareScope(spec.Name, s)
		if err != nil {
			return err
		}
	}

	return nil
}

func parseNominalKind(kind string) (sema.NominalKind, bool) {
	switch kind {
	case "", "struct":
		return sema.NominalKindStruct, true
	case "class":
		return sema.NominalKindClass, true
	case "enum":
		return sema.NominalKindEnum, true
	}
	return sema.NominalKindUnknown, false
}

func (u *Universe) declareNominal(spec NominalSpec) error {
	if IsKeyword(spec.Name) {
		return &InvalidDeclarationError{
			Name:    spec.Name,
			Kind:    DeclarationKindNominal,
			Message: "keyword cannot be used as name",
		}
	}
	if u.nominals.Contains(spec.Name) || u.aliases.Contains(spec.Name) {
		return &DuplicateDeclarationError{
			Name: spec.Name,
			Kind: DeclarationKindNominal,
		}
	}

	kind, ok := parseNominalKind(spec.Kind)
	if !ok {
		return &InvalidDeclarationError{
			Name:    spec.Name,
			Kind:    DeclarationKindNominal,
			Message: "unknown kind `" + spec.Kind + "`",
		}
	}

	s, _, err := u.newScope(
		spec.Name,
		DeclarationKindNominal,
		nil,
		spec.Params,
		spec.Requirements,
	)
	if err != nil {
		return err
	}

	decl := &sema.NominalDecl{
		Identifier:     spec.Name,
		Kind:           kind,
		GenericContext: s.context,
	}

	if spec.Superclass != "" {
		if kind != sema.NominalKindClass {
			return &InvalidDeclarationError{
				Name:    spec.Name,
				Kind:    DeclarationKindNominal,
				Message: "only classes can have a superclass",
			}
		}

		superclass, err := s.parseType(spec.Superclass)
		if err != nil {
			return err
		}
		superclassType, ok := superclass.(*sema.NominalType)
		if !ok || superclassType.Decl.Kind != sema.NominalKindClass {
			return &InvalidDeclarationError{
				Name:    spec.Name,
				Kind:    DeclarationKindNominal,
				Message: "superclass `" + spec.Superclass + "` is not a class",
			}
		}
		decl.Superclass = superclass
	}

	u.nominals.Set(spec.Name, decl)

	return u.declareScope(spec.Name, s)
}

func (u *Universe) declareAlias(spec AliasSpec) error {
	if u.nominals.Contains(spec.Name) || u.aliases.Contains(spec.Name) {
		return &DuplicateDeclarationError{
			Name: spec.Name,
			Kind: DeclarationKindType,
		}
	}

	underlying, err := u.ParseType(spec.Type, nil)
	if err != nil {
		return err
	}

	u.aliases.Set(spec.Name, &sema.AliasType{
		Name:       spec.Name,
		Underlying: underlying,
	})
	return nil
}

func (u *Universe) declareConformances(spec ConformanceSpec) error {
	decl, err := u.Nominal(spec.Type)
	if err != nil {
		return err
	}

	s := u.scopeOf(decl.GenericContext)

	for _, interfaceName := range spec.Interfaces {
		iface, err := u.Interface(interfaceName)
		if err != nil {
			return err
		}

		var typeWitnesses map[string]sema.Type
		for name, witnessDecl := range spec.Witnesses { //nolint:maprange
			if !iface.HasAssociatedType(name) {
				continue
			}
			witness, err := s.parseType(witnessDecl)
			if err != nil {
				return err
			}
			if typeWitnesses == nil {
				typeWitnesses = map[string]sema.Type{}
			}
			typeWitnesses[name] = witness
		}

		for _, associatedType := range iface.AssociatedTypes {
			if _, ok := typeWitnesses[associatedType]; !ok {
				return &InvalidDeclarationError{
					Name:    spec.Type,
					Kind:    DeclarationKindNominal,
					Message: "conformance to " + iface.Identifier + " has no witness for " + associatedType,
				}
			}
		}

		key := spec.Type + ": " + iface.Identifier
		if _, ok := u.registered[key]; ok {
			return &DuplicateDeclarationError{
				Name: key,
				Kind: DeclarationKindConformance,
			}
		}
		u.registered[key] = struct{}{}

		u.Table.Register(decl, iface, typeWitnesses)
	}

	return nil
}

func (u *Universe) declareContext(spec ContextSpec) error {
	var parent *scope
	if spec.Parent != "" {
		var err error
		parent, err = u.scope(spec.Parent)
		if err != nil {
			return err
		}
	}

	s, _, err := u.newScope(
		spec.Name,
		DeclarationKindContext,
		parent,
		spec.Params,
		spec.Requirements,
	)
	if err != nil {
		return err
	}

	return u.declareScope(spec.Name, s)
}

func (u *Universe) declareMember(spec MemberSpec) error {
	var owner sema.DeclOwner
	if nominal, ok := u.nominals.Get(spec.Owner); ok {
		owner = nominal
	} else if iface, ok := u.interfaces.Get(spec.Owner); ok {
		owner = iface
	} else {
		return &UnknownDeclarationError{
			Name:         spec.Owner,
			ExpectedKind: DeclarationKindNominal,
			Candidates:   append(u.nominals.Keys(), u.interfaces.Keys()...),
		}
	}

	parent, err := u.scope(spec.Owner)
	if err != nil {
		return err
	}

	name := spec.Owner + "." + spec.Name

	s, ownParams, err := u.newScope(
		name,
		DeclarationKindMember,
		parent,
		spec.Params,
		spec.Requirements,
	)
	if err != nil {
		return err
	}

	if u.members.Contains(name) {
		return &DuplicateDeclarationError{
			Name: name,
			Kind: DeclarationKindMember,
		}
	}

	u.members.Set(name, &sema.MemberDecl{
		Identifier:     spec.Name,
		Owner:          owner,
		GenericContext: s.context,
		GenericParams:  ownParams,
	})

	return u.declareScope(name, s)
}

func (u *Universe) declareMap(spec MapSpec) error {
	if u.maps.Contains(spec.Name) {
		return &DuplicateDeclarationError{
			Name: spec.Name,
			Kind: DeclarationKindMap,
		}
	}

	over := u.scopeOf(nil)
	if spec.Over != "" {
		var err error
		over, err = u.scope(spec.Over)
		if err != nil {
			return err
		}
	}

	var m sema.SubstitutionMap

	switch {
	case spec.Interface != "":
		iface, err := u.Interface(spec.Interface)
		if err != nil {
			return err
		}
		selfType, err := over.parseType(spec.Self)
		if err != nil {
			return err
		}
		conformance := sema.LookUpConformanceIn(u.Table)(sema.SelfType, selfType, iface)
		m = u.Sema.InterfaceSubstitutions(iface, selfType, conformance)

	case spec.Context == "":
		if len(spec.Replacements) > 0 {
			return &InvalidDeclarationError{
				Name:    spec.Name,
				Kind:    DeclarationKindMap,
				Message: "replacement types require a context",
			}
		}

	default:
		context, err := u.Context(spec.Context)
		if err != nil {
			return err
		}

		var paramCount int
		if context != nil {
			paramCount = len(context.Params())
		}
		if len(spec.Replacements) != paramCount {
			return &InvalidDeclarationError{
				Name:    spec.Name,
				Kind:    DeclarationKindMap,
				Message: "wrong number of replacement types",
			}
		}

		replacementTypes := make([]sema.Type, 0, len(spec.Replacements))
		for _, replacementDecl := range spec.Replacements {
			replacementType, err := over.parseType(replacementDecl)
			if err != nil {
				return err
			}
			replacementTypes = append(replacementTypes, replacementType)
		}

		m = sema.SubstitutionMapFromReplacementTypes(
			context,
			replacementTypes,
			sema.LookUpConformanceIn(u.Table),
		)
	}

	u.maps.Set(spec.Name, Map{
		Name:            spec.Name,
		SubstitutionMap: m,
		Over:            over.context,
	})
	return nil
}

func (u *Universe) scope(name string) (*scope, error) {
	s, ok := u.scopes.Get(name)
	if !ok {
		return nil, &UnknownDeclarationError{
			Name:         name,
			ExpectedKind: DeclarationKindContext,
			Candidates:   u.scopes.Keys(),
		}
	}
	return s, nil
}

// Interface returns the interface with the given name.
func (u *Universe) Interface(name string) (*sema.InterfaceDecl, error) {
	iface, ok := u.interfaces.Get(name)
	if !ok {
		return nil, &UnknownDeclarationError{
			Name:         name,
			ExpectedKind: DeclarationKindInterface,
			Candidates:   u.interfaces.Keys(),
		}
	}
	return iface, nil
}

// Nominal returns the nominal type declaration with the given name.
func (u *Universe) Nominal(name string) (*sema.NominalDecl, error) {
	decl, ok := u.nominals.Get(name)
	if !ok {
		return nil, &UnknownDeclarationError{
			Name:         name,
			ExpectedKind: DeclarationKindNominal,
			Candidates:   u.nominals.Keys(),
		}
	}
	return decl, nil
}

// Member returns the member with the given name, written as `Owner.name`.
func (u *Universe) Member(name string) (*sema.MemberDecl, error) {
	member, ok := u.members.Get(name)
	if !ok {
		return nil, &UnknownDeclarationError{
			Name:         name,
			ExpectedKind: DeclarationKindMember,
			Candidates:   u.members.Keys(),
		}
	}
	return member, nil
}

// Context returns the generic context with the given name:
// a standalone context, or the context of a nominal, member, or interface.
// The result is nil for non-generic nominals and members.
func (u *Universe) Context(name string) (*sema.GenericContext, error) {
	s, err := u.scope(name)
	if err != nil {
		return nil, err
	}
	return s.context, nil
}

// Map returns the substitution map with the given name.
func (u *Universe) Map(name string) (Map, error) {
	m, ok := u.maps.Get(name)
	if !ok {
		return Map{}, &UnknownDeclarationError{
			Name:         name,
			ExpectedKind: DeclarationKindMap,
			Candidates:   u.maps.Keys(),
		}
	}
	return m, nil
}

// Maps returns the substitution maps, in declaration order.
func (u *Universe) Maps() []Map {
	result := make([]Map, 0, u.maps.Len())
	u.maps.Foreach(func(_ string, m Map) {
		result = append(result, m)
	})
	return result
}

// Queries returns the queries of the fixture file.
func (u *Universe) Queries() []Query {
	return u.queries
}
