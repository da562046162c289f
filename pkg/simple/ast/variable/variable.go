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
package variable

import (
	"fmt"

	"github.com/consensys/go-simple/pkg/simple/ast/data"
)

// Kind determines where a variable was declared.
type Kind uint8

const (
	// GLOBAL indicates a variable declared at the program level.
	GLOBAL Kind = 0
	// PARAMETER indicates a formal parameter of a procedure.
	PARAMETER Kind = 1
	// LOCAL indicates a variable declared within a procedure.
	LOCAL Kind = 2
)

// Variable describes a declared variable.  The byte offset of a variable is
// assigned exactly once, during layout planning, and identifies the first
// scalar leaf of the variable within the data region.
type Variable struct {
	name   string
	kind   Kind
	typ    data.Type
	offset *uint
}

// New constructs a new variable of a given kind and type.
func New(name string, kind Kind, typ data.Type) *Variable {
	return &Variable{name, kind, typ, nil}
}

// Name implementation for Declaration interface
func (p *Variable) Name() string {
	return p.name
}

// Kind returns the kind of this variable.
func (p *Variable) Kind() Kind {
	return p.kind
}

// Type returns the declared type of this variable.
func (p *Variable) Type() data.Type {
	return p.typ
}

// Offset returns the byte offset of this variable, or false if it has not yet
// been assigned.
func (p *Variable) Offset() (uint, bool) {
	if p.offset == nil {
		return 0, false
	}
	//
	return *p.offset, true
}

// SetOffset assigns the byte offset of this variable.  This panics if a
// different offset was already assigned.
func (p *Variable) SetOffset(offset uint) {
	if p.offset != nil && *p.offset != offset {
		panic(fmt.Sprintf("variable %s already has an offset", p.name))
	}
	//
	p.offset = &offset
}

func (p *Variable) String() string {
	return fmt.Sprintf("%s: %s", p.name, p.typ.String())
}
