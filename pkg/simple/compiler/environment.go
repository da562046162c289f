// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package compiler

import (
	"github.com/consensys/go-simple/pkg/simple/ast/data"
	"github.com/consensys/go-simple/pkg/simple/ast/decl"
)

// Environment captures the set of declarations visible at a given point during
// parsing.  Environments are nested, such that the declarations of a procedure
// shadow those of the program.
type Environment struct {
	// Enclosing environment, or nil for the universe.
	parent *Environment
	// Declarations made in this environment.
	declarations map[string]decl.Declaration
}

// NewUniverse constructs the outermost environment, which contains only the
// predeclared INTEGER type.
func NewUniverse() *Environment {
	env := NewEnvironment(nil)
	env.Declare(decl.NewTypeAlias("INTEGER", data.INTEGER))
	//
	return env
}

// NewEnvironment constructs an initially empty environment nested within a
// given parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent, make(map[string]decl.Declaration)}
}

// Declare a new name in this environment.  This returns false if the name is
// already declared in this environment (though it may shadow a declaration in
// an enclosing environment).
func (p *Environment) Declare(d decl.Declaration) bool {
	if _, ok := p.declarations[d.Name()]; ok {
		return false
	}
	//
	p.declarations[d.Name()] = d
	//
	return true
}

// Lookup the declaration for a given name, searching outwards through the
// enclosing environments.  This returns nil if no such declaration exists.
func (p *Environment) Lookup(name string) decl.Declaration {
	for env := p; env != nil; env = env.parent {
		if d, ok := env.declarations[name]; ok {
			return d
		}
	}
	//
	return nil
}
