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
package pooled

import (
	"github.com/consensys/go-simple/pkg/simple/ast/variable"
	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util/source"
	log "github.com/sirupsen/logrus"
)

// BASE holds the address of the variable region throughout execution.  Since
// it is caller-saved, it must be reloaded after calling into the host.
const BASE = amd64.R8

// TEMP is used for intermediate values which need not survive beyond a single
// operation.  Bounds traps overwrite it.
const TEMP = amd64.RCX

const (
	// SPACE names the region holding all variables.
	SPACE       = "space"
	READ_FN     = "_read"
	WRITE_FN    = "_write"
	COPY_FN     = "_copy"
	BOUNDS_TRAP = "_boundsTrap"
	FORMAT_IN   = "_fmtIn"
	FORMAT_OUT  = "_fmtOut"
	FORMAT_TRAP = "_fmtTrap"
)

// Backend generates code by dispensing scratch registers from a pool, spilling
// onto the machine stack only when an expression is too deep for the pool.
// All variables are held in a single region addressed relative to the BASE
// register.
type Backend struct {
	srcmap *source.Map[any]
	out    *amd64.Program
	layout *codegen.Layout
	pool   *Pool
	// Indicates whether any runtime bounds check was emitted.
	checked bool
}

// New constructs a pooled backend, which reports errors against the given
// source map.
func New(srcmap *source.Map[any]) *Backend {
	return &Backend{srcmap: srcmap}
}

// Name implementation for codegen.Backend interface.
func (p *Backend) Name() string {
	return "pooled"
}

// Pool returns the register pool used by this backend.
func (p *Backend) Pool() *Pool {
	return p.pool
}

// Begin implementation for codegen.Backend interface.
func (p *Backend) Begin(out *amd64.Program, vars []*variable.Variable) *codegen.Layout {
	p.out = out
	p.pool = NewPool(out)
	p.layout = codegen.PlanLayout(vars)
	//
	out.Zero(SPACE, p.layout.Size())
	out.Asciz(FORMAT_IN, "%ld")
	out.Asciz(FORMAT_OUT, "%ld\n")
	//
	out.Label(amd64.ENTRY)
	out.Emit(amd64.PUSHQ, amd64.RBP)
	out.Emit(amd64.MOVQ, amd64.RSP, amd64.RBP)
	out.Emit(amd64.LEAQ, amd64.Static(SPACE), BASE)
	//
	return p.layout
}

// End implementation for codegen.Backend interface.
func (p *Backend) End() {
	p.out.Emit(amd64.XORQ, amd64.RDI, amd64.RDI)
	p.out.Emit(amd64.CALL, amd64.Symbol("exit"))
	// Host calls expect the address of the destination in %rsi.
	p.subroutine(READ_FN, func() {
		p.out.Emit(amd64.LEAQ, amd64.Static(FORMAT_IN), amd64.RDI)
		p.out.Emit(amd64.XORQ, amd64.RAX, amd64.RAX)
		p.out.Emit(amd64.CALL, amd64.Symbol("scanf"))
	})
	// Value to write in %rsi.
	p.subroutine(WRITE_FN, func() {
		p.out.Emit(amd64.LEAQ, amd64.Static(FORMAT_OUT), amd64.RDI)
		p.out.Emit(amd64.XORQ, amd64.RAX, amd64.RAX)
		p.out.Emit(amd64.CALL, amd64.Symbol("printf"))
	})
	// Destination in %rdi, source in %rsi and size in %rdx.
	p.subroutine(COPY_FN, func() {
		p.out.Emit(amd64.CALL, amd64.Symbol("memmove"))
	})
	// Index in %rdx, line in %rcx and column in %rax.
	if p.checked {
		p.out.Asciz(FORMAT_TRAP, "error: array index %ld out of range at %ld:%ld\n")
		p.out.Label(BOUNDS_TRAP)
		p.out.Emit(amd64.ANDQ, amd64.Immediate(-16), amd64.RSP)
		p.out.Emit(amd64.MOVQ, amd64.RAX, amd64.R8)
		p.out.Emit(amd64.MOVQ, amd64.Static("stderr"), amd64.RDI)
		p.out.Emit(amd64.LEAQ, amd64.Static(FORMAT_TRAP), amd64.RSI)
		p.out.Emit(amd64.XORQ, amd64.RAX, amd64.RAX)
		p.out.Emit(amd64.CALL, amd64.Symbol("fprintf"))
		p.out.Emit(amd64.MOVQ, amd64.Immediate(1), amd64.RDI)
		p.out.Emit(amd64.CALL, amd64.Symbol("exit"))
	}
	//
	log.Debugf("pooled backend spilled %d values (at most %d words per statement)", p.pool.Spills(),
		p.pool.HighWater())
}

// Release implementation for codegen.Backend interface.
func (p *Backend) Release(operand codegen.Operand) {
	p.pool.Release(operand)
}

// Emit a subroutine which calls into the host.  Pooled registers which are
// caller-saved are preserved, and the base register restored, since these may
// be live across the call.
func (p *Backend) subroutine(name string, body func()) {
	var saved = []amd64.Register{amd64.R9, amd64.R10, amd64.R11}
	//
	p.out.Label(name)
	//
	for _, r := range saved {
		p.out.Emit(amd64.PUSHQ, r)
	}
	//
	p.out.Emit(amd64.PUSHQ, amd64.RBP)
	p.out.Emit(amd64.MOVQ, amd64.RSP, amd64.RBP)
	p.out.Emit(amd64.ANDQ, amd64.Immediate(-16), amd64.RSP)
	body()
	p.out.Emit(amd64.MOVQ, amd64.RBP, amd64.RSP)
	p.out.Emit(amd64.POPQ, amd64.RBP)
	//
	for i := len(saved); i > 0; i-- {
		p.out.Emit(amd64.POPQ, saved[i-1])
	}
	//
	p.out.Emit(amd64.LEAQ, amd64.Static(SPACE), BASE)
	p.out.Emit(amd64.RET)
}

// Acquire a register from the pool, returning it as an operand.
func (p *Backend) acquire() codegen.Register {
	return codegen.NewRegister(p.pool.Acquire())
}

// Disentangle two operands which are live at the same time.  When the pool
// is exhausted, the second operand may have been dispensed the same register
// as the first (whose value was spilled).  In such case, the second is moved
// into TEMP and its register released, thus restoring the first.
func (p *Backend) disentangle(first codegen.Operand, second codegen.Operand) codegen.Operand {
	r1, ok1 := first.(codegen.Register)
	r2, ok2 := second.(codegen.Register)
	//
	if ok1 && ok2 && r1.Register == r2.Register {
		p.out.Emit(amd64.MOVQ, r2.Register, TEMP)
		p.pool.Release(r2)
		//
		return codegen.NewRegister(TEMP)
	}
	//
	return second
}

// Ensure an operand is a valid source for an instruction, by moving constants
// which are unsuitable as immediates into TEMP.
func (p *Backend) source(operand codegen.Operand, immediate bool) amd64.Operand {
	if c, ok := operand.(codegen.Constant); ok && (!immediate || !c.Fits()) {
		p.out.Emit(amd64.MOVQ, c.Asm(), TEMP)
		return TEMP
	}
	//
	return operand.Asm()
}
