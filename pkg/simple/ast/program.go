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
package ast

import (
	"github.com/consensys/go-simple/pkg/simple/ast/decl"
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
	"github.com/consensys/go-simple/pkg/simple/ast/variable"
)

// Program represents a validated SIMPLE program.  Declarations are retained in
// the order they were declared, which determines the memory layout of
// variables.
type Program struct {
	// Name given in the program header.
	Name string
	// Named constants, whose uses have already been folded.
	Constants []*decl.Constant
	// Named types.
	Types []*decl.TypeAlias
	// Global variables.
	Variables []*variable.Variable
	// Declared procedures.
	Procedures []*decl.Procedure
	// Main body of the program.
	Body []stmt.Stmt
}

// Procedure returns the procedure of a given name, or nil if no such procedure
// exists.
func (p *Program) Procedure(name string) *decl.Procedure {
	for _, proc := range p.Procedures {
		if proc.Name() == name {
			return proc
		}
	}
	//
	return nil
}
