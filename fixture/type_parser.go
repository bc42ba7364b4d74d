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
	"github.com/onflow/generics/sema"
)

// scope resolves the names of type expressions:
// generic parameters first, then aliases, then nominal types.
type scope struct {
	universe *Universe
	context  *sema.GenericContext
	params   map[string]*sema.GenericParamType
	// requirements are the requirements declared so far
	requirements []sema.Requirement
	// self is the interface being declared, if any
	self *sema.InterfaceDecl
}

func (s *scope) lookupParam(name string) *sema.GenericParamType {
	if s == nil {
		return nil
	}
	return s.params[name]
}

func (s *scope) candidates() []string {
	var names []string
	if s != nil {
		for name := range s.params { //nolint:maprange
			names = append(names, name)
		}
	}
	names = append(names, s.universe.aliases.Keys()...)
	names = append(names, s.universe.nominals.Keys()...)
	return names
}

type typeParser struct {
	input  string
	tokens []Token
	index  int
	scope  *scope
}

// ParseType parses a type expression in the scope of the given generic context.
// Generic parameters are resolved by their (sugared) names.
// The context may be nil, in which case only declared types are in scope.
func (u *Universe) ParseType(input string, context *sema.GenericContext) (sema.Type, error) {
	return u.scopeOf(context).parseType(input)
}

func (s *scope) newParser(input string) (*typeParser, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	return &typeParser{
		input:  input,
		tokens: tokens,
		scope:  s,
	}, nil
}

func (s *scope) parseType(input string) (sema.Type, error) {
	p, err := s.newParser(input)
	if err != nil {
		return nil, err
	}

	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}

	err = p.expect(TokenTypeEOF)
	if err != nil {
		return nil, err
	}

	return ty, nil
}

// parseRequirement parses `Subject: Interface`, `Subject: Superclass`, or `Subject == Type`.
func (s *scope) parseRequirement(input string) (sema.Requirement, error) {
	p, err := s.newParser(input)
	if err != nil {
		return sema.Requirement{}, err
	}

	subject, err := p.parseType()
	if err != nil {
		return sema.Requirement{}, err
	}

	var requirement sema.Requirement

	switch p.current().Type {
	case TokenTypeColon:
		p.next()

		current := p.current()
		if current.Is(TokenTypeIdentifier) && p.peek().Is(TokenTypeEOF) {
			if iface, ok := s.universe.interfaces.Get(current.Text); ok {
				p.next()
				requirement = sema.NewConformanceRequirement(subject, iface)
				break
			}
		}

		superclass, err := p.parseType()
		if err != nil {
			return sema.Requirement{}, err
		}
		nominalType, ok := superclass.(*sema.NominalType)
		if !ok || nominalType.Decl.Kind != sema.NominalKindClass {
			return sema.Requirement{}, p.syntaxError(
				current,
				"constraint is neither an interface nor a class",
			)
		}
		requirement = sema.NewSuperclassRequirement(subject, superclass)

	case TokenTypeEqualEqual:
		p.next()

		constraint, err := p.parseType()
		if err != nil {
			return sema.Requirement{}, err
		}
		requirement = sema.NewSameTypeRequirement(subject, constraint)

	default:
		return sema.Requirement{}, p.syntaxError(p.current(), "expected `:` or `==`")
	}

	err = p.expect(TokenTypeEOF)
	if err != nil {
		return sema.Requirement{}, err
	}

	if !sema.IsTypeParameter(subject) {
		return sema.Requirement{}, &TypeSyntaxError{
			Input:   input,
			Offset:  0,
			Message: "requirement subject is not a type parameter",
		}
	}

	return requirement, nil
}

// parseParamDeclaration parses `Name` or `each Name`.
func parseParamDeclaration(input string) (name string, isPack bool, err error) {
	tokens, err := Lex(input)
	if err != nil {
		return "", false, err
	}

	p := &typeParser{
		input:  input,
		tokens: tokens,
	}

	if p.current().IsKeyword(KeywordEach) {
		isPack = true
		p.next()
	}

	current := p.current()
	if !current.Is(TokenTypeIdentifier) {
		return "", false, p.syntaxError(current, "expected parameter name")
	}
	if IsKeyword(current.Text) {
		return "", false, p.syntaxError(current, "keyword cannot be used as parameter name")
	}
	p.next()

	err = p.expect(TokenTypeEOF)
	if err != nil {
		return "", false, err
	}

	return current.Text, isPack, nil
}

func (p *typeParser) current() Token {
	return p.tokens[p.index]
}

func (p *typeParser) peek() Token {
	if p.index+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.index+1]
}

func (p *typeParser) next() {
	if p.index < len(p.tokens)-1 {
		p.index++
	}
}

func (p *typeParser) expect(tokenType TokenType) error {
	current := p.current()
	if !current.Is(tokenType) {
		return p.syntaxError(current, "expected "+tokenType.String()+", got "+current.Type.String())
	}
	p.next()
	return nil
}

func (p *typeParser) syntaxError(token Token, message string) *TypeSyntaxError {
	return &TypeSyntaxError{
		Input:   p.input,
		Offset:  token.Offset,
		Message: message,
	}
}

func (p *typeParser) parseType() (sema.Type, error) {
	current := p.current()

	switch {
	case current.IsKeyword(KeywordRepeat):
		p.next()
		pattern, err := p.parseType()
		if err != nil {
			return nil, err
		}
		count := findPackParam(pattern)
		if count == nil {
			return nil, p.syntaxError(current, "pattern of pack expansion has no parameter pack")
		}
		return &sema.PackExpansionType{
			Pattern: pattern,
			Count:   count,
		}, nil

	case current.IsKeyword(KeywordEach):
		p.next()
		ty, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		param, ok := ty.(*sema.GenericParamType)
		if !ok || !param.IsPack {
			return nil, p.syntaxError(current, "`each` requires a parameter pack")
		}
		return param, nil

	case current.Is(TokenTypeParenOpen):
		return p.parseFunctionType()

	default:
		return p.parsePostfix()
	}
}

func (p *typeParser) parseFunctionType() (sema.Type, error) {
	err := p.expect(TokenTypeParenOpen)
	if err != nil {
		return nil, err
	}

	parameters, err := p.parseTypeList(TokenTypeParenClose)
	if err != nil {
		return nil, err
	}

	err = p.expect(TokenTypeArrow)
	if err != nil {
		return nil, err
	}

	result, err := p.parseType()
	if err != nil {
		return nil, err
	}

	return &sema.FunctionType{
		Parameters: parameters,
		Result:     result,
	}, nil
}

// parseTypeList parses a comma-separated list of types, and the closing token.
func (p *typeParser) parseTypeList(end TokenType) ([]sema.Type, error) {
	var types []sema.Type

	if p.current().Is(end) {
		p.next()
		return types, nil
	}

	for {
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		types = append(types, ty)

		if !p.current().Is(TokenTypeComma) {
			break
		}
		p.next()
	}

	err := p.expect(end)
	if err != nil {
		return nil, err
	}

	return types, nil
}

func (p *typeParser) parsePostfix() (sema.Type, error) {
	ty, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.current().Is(TokenTypeDot) {
		p.next()

		name := p.current()
		if !name.Is(TokenTypeIdentifier) {
			return nil, p.syntaxError(name, "expected associated type name")
		}
		p.next()

		iface, err := p.scope.associatedTypeInterface(ty, name.Text)
		if err != nil {
			return nil, err
		}

		ty = &sema.DependentMemberType{
			Base:      ty,
			Interface: iface,
			Name:      name.Text,
		}
	}

	return ty, nil
}

func (p *typeParser) parsePrimary() (sema.Type, error) {
	current := p.current()
	if !current.Is(TokenTypeIdentifier) {
		return nil, p.syntaxError(current, "expected type")
	}
	p.next()

	universe := p.scope.universe

	switch current.Text {
	case KeywordAny:
		name := p.current()
		if !name.Is(TokenTypeIdentifier) {
			return nil, p.syntaxError(name, "expected interface name")
		}
		p.next()

		iface, err := universe.Interface(name.Text)
		if err != nil {
			return nil, err
		}
		return &sema.ExistentialType{
			Interface: iface,
		}, nil

	case KeywordPack:
		err := p.expect(TokenTypeBraceOpen)
		if err != nil {
			return nil, err
		}
		elements, err := p.parseTypeList(TokenTypeBraceClose)
		if err != nil {
			return nil, err
		}
		return &sema.PackType{
			Elements: elements,
		}, nil
	}

	if param := p.scope.lookupParam(current.Text); param != nil {
		return param, nil
	}

	if alias, ok := universe.aliases.Get(current.Text); ok {
		return alias, nil
	}

	decl, ok := universe.nominals.Get(current.Text)
	if !ok {
		return nil, &UnknownDeclarationError{
			Name:         current.Text,
			ExpectedKind: DeclarationKindType,
			Candidates:   p.scope.candidates(),
		}
	}

	var typeArguments []sema.Type
	if p.current().Is(TokenTypeLess) {
		p.next()
		var err error
		typeArguments, err = p.parseTypeList(TokenTypeGreater)
		if err != nil {
			return nil, err
		}
	}

	var paramCount int
	if decl.GenericContext != nil {
		paramCount = len(decl.GenericContext.Params())
	}
	if len(typeArguments) != paramCount {
		return nil, p.syntaxError(
			current,
			"wrong number of type arguments for "+decl.Identifier,
		)
	}

	return &sema.NominalType{
		Decl:          decl,
		TypeArguments: typeArguments,
	}, nil
}

// associatedTypeInterface finds the interface which declares the associated type of the base.
// Interfaces the base is required to conform to are preferred.
func (s *scope) associatedTypeInterface(base sema.Type, name string) (*sema.InterfaceDecl, error) {
	if s.self != nil &&
		base.Equal(sema.SelfType) &&
		s.self.HasAssociatedType(name) {

		return s.self, nil
	}

	for _, requirement := range s.requirements {
		if requirement.Kind != sema.RequirementKindConformance ||
			!requirement.Subject.Equal(base) {

			continue
		}
		iface := s.universe.declaringInterface(requirement.Interface, name)
		if iface != nil {
			return iface, nil
		}
	}

	var candidates []string
	var result *sema.InterfaceDecl
	s.universe.interfaces.Foreach(func(_ string, iface *sema.InterfaceDecl) {
		candidates = append(candidates, iface.AssociatedTypes...)
		if result == nil && iface.HasAssociatedType(name) {
			result = iface
		}
	})
	if result != nil {
		return result, nil
	}

	return nil, &UnknownDeclarationError{
		Name:         name,
		ExpectedKind: DeclarationKindAssociatedType,
		Candidates:   candidates,
	}
}

// declaringInterface returns the interface or the inherited interface
// which declares the associated type.
func (u *Universe) declaringInterface(iface *sema.InterfaceDecl, name string) *sema.InterfaceDecl {
	visited := map[*sema.InterfaceDecl]struct{}{}

	var visit func(iface *sema.InterfaceDecl) *sema.InterfaceDecl
	visit = func(iface *sema.InterfaceDecl) *sema.InterfaceDecl {
		if _, ok := visited[iface]; ok {
			return nil
		}
		visited[iface] = struct{}{}

		if iface.HasAssociatedType(name) {
			return iface
		}
		for _, requirement := range iface.RequirementSignature {
			if requirement.Kind != sema.RequirementKindConformance ||
				!requirement.Subject.Equal(sema.SelfType) {

				continue
			}
			if result := visit(requirement.Interface); result != nil {
				return result
			}
		}
		return nil
	}

	return visit(iface)
}

// findPackParam returns the first parameter pack in the type.
func findPackParam(ty sema.Type) *sema.GenericParamType {
	switch ty := ty.(type) {
	case *sema.GenericParamType:
		if ty.IsPack {
			return ty
		}
	case *sema.DependentMemberType:
		return findPackParam(ty.Base)
	case *sema.NominalType:
		for _, argument := range ty.TypeArguments {
			if param := findPackParam(argument); param != nil {
				return param
			}
		}
	case *sema.FunctionType:
		for _, parameter := range ty.Parameters {
			if param := findPackParam(parameter); param != nil {
				return param
			}
		}
		return findPackParam(ty.Result)
	case *sema.AliasType:
		return findPackParam(ty.Underlying)
	}
	return nil
}
