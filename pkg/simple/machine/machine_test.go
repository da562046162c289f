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
package machine

import (
	"strings"
	"testing"

	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util/assert"
)

func Test_Machine_Exit(t *testing.T) {
	program := amd64.NewProgram()
	program.Label(amd64.ENTRY)
	program.Emit(amd64.PUSHQ, amd64.RBP)
	program.Emit(amd64.MOVQ, amd64.Immediate(3), amd64.RDI)
	program.Emit(amd64.CALL, amd64.Symbol("exit"))
	//
	status, out, _ := run(t, program, "")
	//
	assert.Equal(t, 3, status)
	assert.Equal(t, "", out)
}

func Test_Machine_Return(t *testing.T) {
	program := amd64.NewProgram()
	program.Label(amd64.ENTRY)
	program.Emit(amd64.MOVQ, amd64.Immediate(7), amd64.RAX)
	program.Emit(amd64.RET)
	//
	status, _, _ := run(t, program, "")
	//
	assert.Equal(t, 7, status)
}

func Test_Machine_Division(t *testing.T) {
	var cases = [][4]int64{{7, 2, 3, 1}, {-7, 2, -3, -1}, {7, -2, -3, 1}, {-7, -2, 3, -1}}
	//
	for _, c := range cases {
		program := amd64.NewProgram()
		program.Label(amd64.ENTRY)
		program.Emit(amd64.MOVQ, amd64.Immediate(c[0]), amd64.RAX)
		program.Emit(amd64.MOVQ, amd64.Immediate(c[1]), amd64.RCX)
		program.Emit(amd64.CQTO)
		program.Emit(amd64.IDIVQ, amd64.RCX)
		program.Emit(amd64.MOVQ, amd64.RAX, amd64.R12)
		program.Emit(amd64.MOVQ, amd64.RDX, amd64.R13)
		program.Emit(amd64.RET)
		//
		m := load(t, program, "")
		_, err := m.Run()
		//
		assert.NoError(t, err)
		assert.Equal(t, c[2], m.Register(amd64.R12))
		assert.Equal(t, c[3], m.Register(amd64.R13))
	}
}

func Test_Machine_DivideByZero(t *testing.T) {
	program := amd64.NewProgram()
	program.Label(amd64.ENTRY)
	program.Emit(amd64.MOVQ, amd64.Immediate(1), amd64.RAX)
	program.Emit(amd64.CQTO)
	program.Emit(amd64.IDIVQ, amd64.RCX)
	program.Emit(amd64.RET)
	//
	_, err := load(t, program, "").Run()
	fault, ok := err.(*Fault)
	//
	assert.True(t, ok, "expected fault")
	assert.Equal(t, uint(2), fault.Position)
}

func Test_Machine_Conditions(t *testing.T) {
	var cases = []struct {
		lhs, rhs int64
		jump     amd64.Opcode
		taken    bool
	}{
		{1, 2, amd64.JL, true},
		{2, 2, amd64.JL, false},
		{2, 2, amd64.JLE, true},
		{3, 2, amd64.JG, true},
		{-1, 2, amd64.JGE, false},
		{-1, 2, amd64.JAE, true},
		{1, 2, amd64.JAE, false},
		{2, 2, amd64.JE, true},
		{2, 3, amd64.JNE, true},
	}
	//
	for _, c := range cases {
		program := amd64.NewProgram()
		program.Label(amd64.ENTRY)
		program.Emit(amd64.MOVQ, amd64.Immediate(c.lhs), amd64.RBX)
		program.Emit(amd64.MOVQ, amd64.Immediate(1), amd64.RAX)
		program.Emit(amd64.CMPQ, amd64.Immediate(c.rhs), amd64.RBX)
		program.Emit(c.jump, amd64.Symbol("done"))
		program.Emit(amd64.MOVQ, amd64.Immediate(0), amd64.RAX)
		program.Label("done")
		program.Emit(amd64.RET)
		//
		status, _, _ := run(t, program, "")
		//
		assert.Equal(t, c.taken, status == 1, "%d %s %d", c.lhs, c.jump.String(), c.rhs)
	}
}

func Test_Machine_ReadWrite(t *testing.T) {
	program := amd64.NewProgram()
	program.Quad("x", 0)
	program.Asciz("in", "%ld")
	program.Asciz("out", "%ld\n")
	program.Label(amd64.ENTRY)
	program.Emit(amd64.PUSHQ, amd64.RBP)
	program.Label("loop")
	program.Emit(amd64.LEAQ, amd64.Static("in"), amd64.RDI)
	program.Emit(amd64.LEAQ, amd64.Static("x"), amd64.RSI)
	program.Emit(amd64.CALL, amd64.Symbol("scanf"))
	program.Emit(amd64.CMPQ, amd64.Immediate(1), amd64.RAX)
	program.Emit(amd64.JNE, amd64.Symbol("done"))
	program.Emit(amd64.LEAQ, amd64.Static("out"), amd64.RDI)
	program.Emit(amd64.MOVQ, amd64.Static("x"), amd64.RSI)
	program.Emit(amd64.IMULQ, amd64.Immediate(2), amd64.RSI)
	program.Emit(amd64.CALL, amd64.Symbol("printf"))
	program.Emit(amd64.JMP, amd64.Symbol("loop"))
	program.Label("done")
	program.Emit(amd64.XORQ, amd64.RDI, amd64.RDI)
	program.Emit(amd64.CALL, amd64.Symbol("exit"))
	//
	status, out, _ := run(t, program, " 1\n-21 +4 x 5")
	//
	assert.Equal(t, 0, status)
	assert.Equal(t, "2\n-42\n8\n", out)
}

func Test_Machine_Stderr(t *testing.T) {
	program := amd64.NewProgram()
	program.Asciz("msg", "index %ld at %ld:%ld\n")
	program.Label(amd64.ENTRY)
	program.Emit(amd64.PUSHQ, amd64.RBP)
	program.Emit(amd64.MOVQ, amd64.Static("stderr"), amd64.RDI)
	program.Emit(amd64.LEAQ, amd64.Static("msg"), amd64.RSI)
	program.Emit(amd64.MOVQ, amd64.Immediate(5), amd64.RDX)
	program.Emit(amd64.MOVQ, amd64.Immediate(3), amd64.RCX)
	program.Emit(amd64.MOVQ, amd64.Immediate(14), amd64.R8)
	program.Emit(amd64.CALL, amd64.Symbol("fprintf"))
	program.Emit(amd64.MOVQ, amd64.Immediate(1), amd64.RDI)
	program.Emit(amd64.CALL, amd64.Symbol("exit"))
	//
	status, out, errs := run(t, program, "")
	//
	assert.Equal(t, 1, status)
	assert.Equal(t, "", out)
	assert.Equal(t, "index 5 at 3:14\n", errs)
}

func Test_Machine_Memmove(t *testing.T) {
	program := amd64.NewProgram()
	program.Quad("a", 11)
	program.Quad("b", 22)
	program.Quad("c", 0)
	program.Label(amd64.ENTRY)
	program.Emit(amd64.PUSHQ, amd64.RBP)
	program.Emit(amd64.LEAQ, amd64.Static("b"), amd64.RDI)
	program.Emit(amd64.LEAQ, amd64.Static("a"), amd64.RSI)
	program.Emit(amd64.MOVQ, amd64.Immediate(16), amd64.RDX)
	program.Emit(amd64.CALL, amd64.Symbol("memmove"))
	program.Emit(amd64.MOVQ, amd64.Static("c"), amd64.RDI)
	program.Emit(amd64.CALL, amd64.Symbol("exit"))
	//
	status, _, _ := run(t, program, "")
	//
	assert.Equal(t, 22, status)
}

func Test_Machine_Misaligned(t *testing.T) {
	program := amd64.NewProgram()
	program.Label(amd64.ENTRY)
	program.Emit(amd64.XORQ, amd64.RDI, amd64.RDI)
	program.Emit(amd64.CALL, amd64.Symbol("exit"))
	//
	_, err := load(t, program, "").Run()
	//
	assert.True(t, err != nil, "expected misaligned call")
}

func Test_Machine_Clobber(t *testing.T) {
	program := amd64.NewProgram()
	program.Quad("a", 0)
	program.Label(amd64.ENTRY)
	program.Emit(amd64.PUSHQ, amd64.RBP)
	program.Emit(amd64.MOVQ, amd64.Immediate(5), amd64.R9)
	program.Emit(amd64.MOVQ, amd64.Immediate(6), amd64.R12)
	program.Emit(amd64.LEAQ, amd64.Static("a"), amd64.RDI)
	program.Emit(amd64.MOVQ, amd64.RDI, amd64.RSI)
	program.Emit(amd64.XORQ, amd64.RDX, amd64.RDX)
	program.Emit(amd64.CALL, amd64.Symbol("memmove"))
	program.Emit(amd64.POPQ, amd64.RBP)
	program.Emit(amd64.RET)
	//
	m := load(t, program, "")
	_, err := m.Run()
	//
	assert.NoError(t, err)
	assert.Equal(t, POISON, m.Register(amd64.R9))
	assert.Equal(t, int64(6), m.Register(amd64.R12))
}

func Test_Machine_Segfault(t *testing.T) {
	program := amd64.NewProgram()
	program.Label(amd64.ENTRY)
	program.Emit(amd64.MOVQ, amd64.Indirect(amd64.RAX, 0), amd64.RBX)
	program.Emit(amd64.RET)
	//
	_, err := load(t, program, "").Run()
	fault, ok := err.(*Fault)
	//
	assert.True(t, ok, "expected fault")
	assert.True(t, strings.HasPrefix(fault.Message, "segmentation fault"))
}

func Test_Machine_StepLimit(t *testing.T) {
	program := amd64.NewProgram()
	program.Label(amd64.ENTRY)
	program.Emit(amd64.JMP, amd64.Symbol(amd64.ENTRY))
	//
	m := load(t, program, "")
	m.SetLimit(100)
	_, err := m.Run()
	//
	assert.Equal(t, ErrStepLimit, err)
	assert.Equal(t, uint(100), m.Steps())
}

func Test_Machine_Undefined(t *testing.T) {
	program := amd64.NewProgram()
	program.Label(amd64.ENTRY)
	program.Emit(amd64.CALL, amd64.Symbol("puts"))
	//
	_, err := New(program, strings.NewReader(""), &strings.Builder{}, &strings.Builder{})
	//
	assert.True(t, err != nil, "expected undefined symbol")
}

// ===================================================================
// Test Helpers
// ===================================================================

func load(t *testing.T, program *amd64.Program, input string) *Machine {
	m, err := New(program, strings.NewReader(input), &strings.Builder{}, &strings.Builder{})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return m
}

func run(t *testing.T, program *amd64.Program, input string) (int, string, string) {
	var out, errs strings.Builder
	//
	m, err := New(program, strings.NewReader(input), &out, &errs)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	status, err := m.Run()
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return status, out.String(), errs.String()
}
