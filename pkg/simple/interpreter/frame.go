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
package interpreter

import (
	"github.com/consensys/go-simple/pkg/simple/ast/data"
	"github.com/consensys/go-simple/pkg/simple/ast/decl"
	"github.com/consensys/go-simple/pkg/simple/ast/variable"
)

// Cells represents the storage of some location, with one word per leaf of its
// type.  The cells of a component (e.g. an array element) are a window onto
// those of the enclosing variable, hence writes through either are visible
// through the other.
type Cells []int64

// Allocate storage for a value of the given type, where every leaf is
// initially zero.
func Allocate(t data.Type) Cells {
	return make(Cells, t.Size()/data.WORD)
}

// Frame holds the storage for the parameters and local variables of an
// executing procedure.
type Frame struct {
	procedure *decl.Procedure
	storage   map[*variable.Variable]Cells
}

// NewFrame constructs a new frame for a given procedure, where parameters are
// bound to the given cells and locals are freshly allocated.
func NewFrame(procedure *decl.Procedure, args []Cells) *Frame {
	var storage = make(map[*variable.Variable]Cells)
	//
	for i, param := range procedure.Parameters {
		storage[param] = args[i]
	}
	//
	for _, local := range procedure.Locals {
		storage[local] = Allocate(local.Type())
	}
	//
	return &Frame{procedure, storage}
}

// Procedure returns the procedure being executed in this frame.
func (p *Frame) Procedure() *decl.Procedure {
	return p.procedure
}

// Lookup the storage of a given variable, returning false if it does not
// belong to this frame.
func (p *Frame) Lookup(v *variable.Variable) (Cells, bool) {
	cells, ok := p.storage[v]
	return cells, ok
}
