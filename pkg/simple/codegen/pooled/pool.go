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
	"slices"

	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util/collection/stack"
)

// SCRATCH identifies the registers dispensed by a pool, in order of preference.
var SCRATCH = []amd64.Register{amd64.R9, amd64.R10, amd64.R11, amd64.R12, amd64.R13, amd64.R14, amd64.R15}

// UNSPILLED marks a register acquired whilst free, such that there is no
// previous value to reload when it is released.
const UNSPILLED = -1

// Pool dispenses scratch registers for the duration of a single statement.
// When every register is in use, a register is borrowed by spilling its
// current value into a stack slot, and reloading that value when the borrower
// releases it.  Stack slots are only reclaimed by Reset at the end of each
// statement.
type Pool struct {
	out *amd64.Program
	// Per register, the slots holding its spilled values.  An empty stack
	// indicates the register is free.
	depths []*stack.Stack[int]
	// Number of words pushed onto the stack since the last reset.
	words uint
	// Slots which have been reloaded, and can hold another spilled value.
	free []uint
	// Largest number of words held at any reset.
	highWater uint
	// Total number of values spilled.
	spills uint
}

// NewPool constructs a pool which emits spill code into a given program.
func NewPool(out *amd64.Program) *Pool {
	var depths = make([]*stack.Stack[int], len(SCRATCH))
	//
	for i := range depths {
		depths[i] = stack.NewStack[int]()
	}
	//
	return &Pool{out: out, depths: depths}
}

// Acquire a register for exclusive use, spilling its current value if
// necessary.  The register with the fewest outstanding borrowers is selected,
// with ties broken in order of preference.
func (p *Pool) Acquire() amd64.Register {
	var index = 0
	//
	for i, depth := range p.depths {
		if depth.Len() < p.depths[index].Len() {
			index = i
		}
	}
	//
	var (
		register = SCRATCH[index]
		depth    = p.depths[index]
	)
	//
	if depth.IsEmpty() {
		depth.Push(UNSPILLED)
		return register
	}
	// Register is occupied, so spill its value.
	p.spills++
	//
	if len(p.free) > 0 {
		slot := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.out.Emit(amd64.MOVQ, register, p.slot(slot))
		depth.Push(int(slot))
	} else {
		p.out.Emit(amd64.PUSHQ, register)
		depth.Push(int(p.words))
		p.words++
	}
	//
	return register
}

// Release an operand.  This has no effect unless the operand is a register
// dispensed by this pool, in which case either the register becomes free or
// its previous value is reloaded.
func (p *Pool) Release(operand codegen.Operand) {
	var index = -1
	//
	if r, ok := operand.(codegen.Register); ok {
		index = slices.Index(SCRATCH, r.Register)
	}
	//
	if index < 0 {
		return
	} else if p.depths[index].IsEmpty() {
		panic("register " + SCRATCH[index].String() + " released but not acquired")
	}
	//
	slot := p.depths[index].Pop()
	//
	if slot != UNSPILLED {
		p.out.Emit(amd64.MOVQ, p.slot(uint(slot)), SCRATCH[index])
		p.free = append(p.free, uint(slot))
	}
}

// Reset deallocates all stack slots used for spilling.  Every register must
// have been released beforehand.  The stack pointer is adjusted without
// affecting the condition codes, hence this can follow a comparison.
func (p *Pool) Reset() {
	if p.Busy() {
		panic("register pool reset whilst registers are busy")
	}
	//
	if p.words > 0 {
		p.out.Emit(amd64.LEAQ, amd64.Indirect(amd64.RSP, int64(p.words*8)), amd64.RSP)
	}
	//
	p.highWater = max(p.highWater, p.words)
	p.words = 0
	p.free = p.free[:0]
}

// Busy determines whether any register is currently acquired.
func (p *Pool) Busy() bool {
	for _, depth := range p.depths {
		if !depth.IsEmpty() {
			return true
		}
	}
	//
	return false
}

// Words returns the number of stack words currently allocated for spilling.
func (p *Pool) Words() uint {
	return p.words
}

// HighWater returns the largest number of stack words allocated for spilling
// within any one statement.
func (p *Pool) HighWater() uint {
	return p.highWater
}

// Spills returns the total number of values spilled.
func (p *Pool) Spills() uint {
	return p.spills
}

// Memory operand for a given slot, where slot 0 is the first word pushed.
func (p *Pool) slot(slot uint) amd64.Memory {
	return amd64.Indirect(amd64.RSP, int64(8*(p.words-1-slot)))
}
