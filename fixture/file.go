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
	"os"

	"github.com/goccy/go-yaml"

	"github.com/onflow/generics/errors"
)

// File is the YAML description of a type universe,
// and of the queries to evaluate against it.
//
// Declarations may only refer to nominal types and aliases declared before them.
// Interfaces may refer to each other in any order.
type File struct {
	Interfaces   []InterfaceSpec   `yaml:"interfaces"`
	Nominals     []NominalSpec     `yaml:"nominals"`
	Aliases      []AliasSpec       `yaml:"aliases"`
	Conformances []ConformanceSpec `yaml:"conformances"`
	Contexts     []ContextSpec     `yaml:"contexts"`
	Members      []MemberSpec      `yaml:"members"`
	Maps         []MapSpec         `yaml:"maps"`
	Queries      []Query           `yaml:"queries"`
}

type InterfaceSpec struct {
	Name            string   `yaml:"name"`
	Inherits        []string `yaml:"inherits"`
	AssociatedTypes []string `yaml:"associatedTypes"`
	// Requirements are written in terms of Self, e.g. `Self.Element: Equatable`
	Requirements []string `yaml:"requirements"`
	// Invertible is empty, `Copyable`, or `Escapable`
	Invertible     string `yaml:"invertible"`
	SelfConforming bool   `yaml:"selfConforming"`
}

type NominalSpec struct {
	Name string `yaml:"name"`
	// Kind is `struct` (the default), `class`, or `enum`
	Kind         string   `yaml:"kind"`
	Params       []string `yaml:"params"`
	Requirements []string `yaml:"requirements"`
	Superclass   string   `yaml:"superclass"`
}

type AliasSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type ConformanceSpec struct {
	Type       string   `yaml:"type"`
	Interfaces []string `yaml:"interfaces"`
	// Witnesses are written in terms of the nominal's generic parameters
	Witnesses map[string]string `yaml:"witnesses"`
}

// ContextSpec declares a standalone generic context.
// The parameters of the parent (a context, nominal, member, or interface)
// are outer parameters of the context.
type ContextSpec struct {
	Name         string   `yaml:"name"`
	Parent       string   `yaml:"parent"`
	Params       []string `yaml:"params"`
	Requirements []string `yaml:"requirements"`
}

// MemberSpec declares a member of a nominal type or interface.
// Members are referred to as `Owner.name`.
type MemberSpec struct {
	Name         string   `yaml:"name"`
	Owner        string   `yaml:"owner"`
	Params       []string `yaml:"params"`
	Requirements []string `yaml:"requirements"`
}

// MapSpec declares a substitution map.
//
// Either Context and Replacements are given, and the conformances are looked up,
// or Interface and Self are given, and the map is the interface substitution map.
// Replacement types are written in terms of the parameters of Over, if any.
type MapSpec struct {
	Name         string   `yaml:"name"`
	Context      string   `yaml:"context"`
	Over         string   `yaml:"over"`
	Replacements []string `yaml:"replacements"`
	Interface    string   `yaml:"interface"`
	Self         string   `yaml:"self"`
}

// Parse decodes a fixture file.
// Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	var file File
	err := yaml.UnmarshalWithOptions(data, &file, yaml.Strict())
	if err != nil {
		return nil, errors.NewDefaultUserError("failed to parse fixture: %w", err)
	}
	return &file, nil
}

// Load reads and decodes the fixture file at the given path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewDefaultUserError("failed to read fixture: %w", err)
	}
	return Parse(data)
}
