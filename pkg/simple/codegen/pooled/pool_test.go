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
	"testing"

	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util/assert"
)

func Test_Pool_Free(t *testing.T) {
	var (
		out  = amd64.NewProgram()
		pool = NewPool(out)
	)
	//
	for i := range SCRATCH {
		assert.Equal(t, SCRATCH[i], pool.Acquire())
	}
	//
	for i := len(SCRATCH); i > 0; i-- {
		pool.Release(codegen.NewRegister(SCRATCH[i-1]))
	}
	//
	pool.Reset()
	// No spills, hence no code
	assert.Equal(t, uint(0), out.Instructions())
	assert.Equal(t, uint(0), pool.HighWater())
	assert.False(t, pool.Busy())
}

func Test_Pool_Balance(t *testing.T) {
	for n := uint(0); n <= 3*uint(len(SCRATCH)); n++ {
		var (
			out  = amd64.NewProgram()
			pool = NewPool(out)
			regs []amd64.Register
		)
		//
		for i := uint(0); i < n; i++ {
			regs = append(regs, pool.Acquire())
		}
		//
		spilled := pool.Words()
		//
		for i := len(regs); i > 0; i-- {
			pool.Release(codegen.NewRegister(regs[i-1]))
		}
		//
		pool.Reset()
		//
		assert.Equal(t, uint(max(0, int(n)-len(SCRATCH))), spilled)
		assert.Equal(t, spilled, pool.HighWater())
		assert.False(t, pool.Busy())
		checkReclaimed(t, out, spilled)
	}
}

func Test_Pool_Spill(t *testing.T) {
	var (
		out  = amd64.NewProgram()
		pool = NewPool(out)
	)
	//
	for range SCRATCH {
		pool.Acquire()
	}
	// Least used register is spilled
	assert.Equal(t, amd64.R9, pool.Acquire())
	assert.Equal(t, amd64.R10, pool.Acquire())
	assert.Equal(t, uint(2), pool.Words())
	checkLast(t, out, "pushq %r10")
	// Reload from the slot below the top of the stack
	pool.Release(codegen.NewRegister(amd64.R9))
	checkLast(t, out, "movq 8(%rsp),%r9")
	// Freed slot is reused
	assert.Equal(t, amd64.R9, pool.Acquire())
	checkLast(t, out, "movq %r9,8(%rsp)")
	assert.Equal(t, uint(2), pool.Words())
	assert.Equal(t, uint(3), pool.Spills())
}

func Test_Pool_Reuse(t *testing.T) {
	var (
		out  = amd64.NewProgram()
		pool = NewPool(out)
		regs []amd64.Register
	)
	// Acquire and release repeatedly whilst the pool is exhausted
	for range SCRATCH {
		regs = append(regs, pool.Acquire())
	}
	//
	for i := 0; i < 10; i++ {
		r := pool.Acquire()
		pool.Release(codegen.NewRegister(r))
	}
	//
	assert.Equal(t, uint(1), pool.Words())
	//
	for _, r := range regs {
		pool.Release(codegen.NewRegister(r))
	}
	//
	pool.Reset()
	checkReclaimed(t, out, 1)
}

func Test_Pool_Ignore(t *testing.T) {
	var pool = NewPool(amd64.NewProgram())
	// Non-pooled operands have no effect
	pool.Release(codegen.Constant(1))
	pool.Release(codegen.NewRegister(TEMP))
	pool.Release(codegen.StackSlot(0))
	//
	assert.False(t, pool.Busy())
}

func Test_Pool_Busy(t *testing.T) {
	var pool = NewPool(amd64.NewProgram())
	//
	pool.Acquire()
	//
	defer func() {
		assert.True(t, recover() != nil, "expected panic")
	}()
	//
	pool.Reset()
}

func Test_Pool_Unacquired(t *testing.T) {
	var pool = NewPool(amd64.NewProgram())
	//
	defer func() {
		assert.True(t, recover() != nil, "expected panic")
	}()
	//
	pool.Release(codegen.NewRegister(amd64.R12))
}

// ===================================================================
// Test Helpers
// ===================================================================

func checkLast(t *testing.T, out *amd64.Program, expected string) {
	text := out.Text()
	//
	assert.Equal(t, expected, text[len(text)-1].String())
}

// Check the last instruction reclaims exactly the given number of words, or
// that nothing was emitted when there is nothing to reclaim.
func checkReclaimed(t *testing.T, out *amd64.Program, words uint) {
	text := out.Text()
	//
	if words == 0 {
		assert.Equal(t, 0, len(text))
		return
	}
	//
	insn := text[len(text)-1].(*amd64.Instruction)
	//
	assert.Equal(t, amd64.LEAQ, insn.Opcode)
	assert.Equal(t, amd64.Indirect(amd64.RSP, int64(8*words)), insn.Operand(0))
	assert.Equal(t, amd64.RSP, insn.Operand(1))
}
