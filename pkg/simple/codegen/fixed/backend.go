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
package fixed

import (
	"fmt"

	"github.com/consensys/go-simple/pkg/simple/ast/variable"
	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util/source"
	log "github.com/sirupsen/logrus"
)

const (
	// VALUE holds the result of evaluating an expression.
	VALUE = amd64.R14
	// ADDRESS holds the result of resolving a location.
	ADDRESS = amd64.R15
	// SCRATCH is used for copying aggregates.
	SCRATCH = amd64.R13
)

// Names of the cells, subroutines and strings used by generated code.
const (
	BASE       = "_base"
	REGION     = "_region"
	READ       = "_read"
	WRITE      = "_write"
	READ_FN    = "_readInt"
	WRITE_FN   = "_writeInt"
	FORMAT_IN  = "_fmtIn"
	FORMAT_OUT = "_fmtOut"
)

// Backend is a simple code generator which evaluates every expression into a
// fixed register, using the machine stack to hold intermediate values.  Every
// scalar leaf is given its own named cell, and every array access site is
// given its own bounds trap.
type Backend struct {
	srcmap *source.Map[any]
	out    *amd64.Program
	layout *codegen.Layout
	// Bounds traps required so far.
	traps []trap
}

// trap describes the array access site guarded by a bounds trap.
type trap struct {
	line   int
	column int
}

// New constructs a fresh backend for a single compilation.
func New(srcmap *source.Map[any]) *Backend {
	return &Backend{srcmap: srcmap}
}

// Name implementation for codegen.Backend interface.
func (p *Backend) Name() string {
	return "fixed"
}

// Begin implementation for codegen.Backend interface.
func (p *Backend) Begin(out *amd64.Program, vars []*variable.Variable) *codegen.Layout {
	p.out = out
	p.layout = codegen.PlanLayout(vars)
	// Data section
	out.Quad(BASE, 0)
	out.Zero(REGION, 0)
	//
	for _, leaf := range p.layout.Leaves() {
		out.Quad(codegen.Mangle(leaf.Path), 0)
	}
	//
	out.Quad(READ, 0)
	out.Quad(WRITE, 0)
	out.Asciz(FORMAT_IN, "%ld")
	out.Asciz(FORMAT_OUT, "%ld\n")
	// Prologue
	out.Label(amd64.ENTRY)
	out.Emit(amd64.PUSHQ, amd64.RBP)
	out.Emit(amd64.MOVQ, amd64.RSP, amd64.RBP)
	out.Emit(amd64.LEAQ, amd64.Static(REGION), amd64.RAX)
	out.Emit(amd64.MOVQ, amd64.RAX, amd64.Static(BASE))
	//
	return p.layout
}

// End implementation for codegen.Backend interface.
func (p *Backend) End() {
	// Epilogue
	p.out.Emit(amd64.XORQ, amd64.RDI, amd64.RDI)
	p.out.Emit(amd64.CALL, amd64.Symbol("exit"))
	// Subroutines
	p.subroutine(READ_FN, func() {
		p.out.Emit(amd64.LEAQ, amd64.Static(FORMAT_IN), amd64.RDI)
		p.out.Emit(amd64.LEAQ, amd64.Static(READ), amd64.RSI)
		p.out.Emit(amd64.XORQ, amd64.RAX, amd64.RAX)
		p.out.Emit(amd64.CALL, amd64.Symbol("scanf"))
	})
	//
	p.subroutine(WRITE_FN, func() {
		p.out.Emit(amd64.LEAQ, amd64.Static(FORMAT_OUT), amd64.RDI)
		p.out.Emit(amd64.MOVQ, amd64.Static(WRITE), amd64.RSI)
		p.out.Emit(amd64.XORQ, amd64.RAX, amd64.RAX)
		p.out.Emit(amd64.CALL, amd64.Symbol("printf"))
	})
	// Bounds traps
	for i, t := range p.traps {
		var (
			label = trapLabel(uint(i))
			msg   = label + "_msg"
		)
		//
		p.out.Asciz(msg, fmt.Sprintf("error: array index out of range at %d:%d\n", t.line, t.column))
		p.out.Label(label)
		p.out.Emit(amd64.ANDQ, amd64.Immediate(-16), amd64.RSP)
		p.out.Emit(amd64.MOVQ, amd64.Static("stderr"), amd64.RDI)
		p.out.Emit(amd64.LEAQ, amd64.Static(msg), amd64.RSI)
		p.out.Emit(amd64.XORQ, amd64.RAX, amd64.RAX)
		p.out.Emit(amd64.CALL, amd64.Symbol("fprintf"))
		p.out.Emit(amd64.MOVQ, amd64.Immediate(1), amd64.RDI)
		p.out.Emit(amd64.CALL, amd64.Symbol("exit"))
	}
	//
	log.Debugf("fixed backend emitted %d bounds traps", len(p.traps))
}

// Release implementation for codegen.Backend interface.  Registers are
// allocated statically, hence there is nothing to release.
func (p *Backend) Release(operand codegen.Operand) {
}

// Emit a subroutine whose body calls an external function.  The stack is
// aligned before the call, as required by the calling convention.
func (p *Backend) subroutine(name string, body func()) {
	p.out.Label(name)
	p.out.Emit(amd64.PUSHQ, amd64.RBP)
	p.out.Emit(amd64.MOVQ, amd64.RSP, amd64.RBP)
	p.out.Emit(amd64.ANDQ, amd64.Immediate(-16), amd64.RSP)
	body()
	p.out.Emit(amd64.MOVQ, amd64.RBP, amd64.RSP)
	p.out.Emit(amd64.POPQ, amd64.RBP)
	p.out.Emit(amd64.RET)
}

// Register a new bounds trap for an access site, returning its label.
func (p *Backend) trap(site any) string {
	line, column := codegen.Position(p.srcmap, site)
	p.traps = append(p.traps, trap{line, column})
	//
	return trapLabel(uint(len(p.traps) - 1))
}

func trapLabel(n uint) string {
	return fmt.Sprintf("A%d", n)
}

// Move an operand into a given register (if it is not already there).
func (p *Backend) materialise(operand codegen.Operand, target amd64.Register) {
	if r, ok := operand.(codegen.Register); !ok || r.Register != target {
		p.out.Emit(amd64.MOVQ, operand.Asm(), target)
	}
}
