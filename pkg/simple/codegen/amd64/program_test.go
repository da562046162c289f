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
package amd64

import (
	"strings"
	"testing"

	"github.com/consensys/go-simple/pkg/util/assert"
)

func Test_Amd64_Operands(t *testing.T) {
	assert.Equal(t, "%r8", R8.String())
	assert.Equal(t, "$-5", Immediate(-5).String())
	assert.Equal(t, "(%r15)", Indirect(R15, 0).String())
	assert.Equal(t, "16(%rsp)", Indirect(RSP, 16).String())
	assert.Equal(t, "-8(%rbp)", Indirect(RBP, -8).String())
	assert.Equal(t, "_base(%rip)", Static("_base").String())
	assert.Equal(t, "v_a+8(%rip)", Memory{RIP, 8, "v_a"}.String())
}

func Test_Amd64_ParseRegister(t *testing.T) {
	r, ok := ParseRegister("%r13")
	//
	assert.True(t, ok)
	assert.Equal(t, R13, r)
	//
	_, ok = ParseRegister("%r16")
	assert.False(t, ok)
}

func Test_Amd64_Immediates(t *testing.T) {
	assert.True(t, FitsImmediate(2147483647))
	assert.True(t, FitsImmediate(-2147483648))
	assert.False(t, FitsImmediate(2147483648))
}

func Test_Amd64_Listing(t *testing.T) {
	var (
		program = NewProgram()
		builder strings.Builder
	)
	//
	program.Quad("_base", 0)
	program.Zero("space", 16)
	program.Asciz("_fmt", "%ld\n")
	program.Label(ENTRY)
	program.Emit(MOVQ, Immediate(1), Indirect(R8, 8))
	program.Emit(CQTO)
	program.Emit(JMP, Symbol("L0"))
	//
	_, err := program.WriteTo(&builder)
	//
	assert.NoError(t, err)
	assert.Equal(t, uint(3), program.Instructions())
	assert.Equal(t, `	.data
_base:	.quad 0
space:	.zero 16
_fmt:	.asciz "%ld\n"
	.text
	.globl main
main:
	movq $1,8(%r8)
	cqto
	jmp L0
`, builder.String())
}

func Test_Amd64_Arity(t *testing.T) {
	var (
		program = NewProgram()
		builder strings.Builder
	)
	//
	program.Emit(IMULQ, Immediate(3), R9, R10)
	//
	defer func() {
		assert.True(t, recover() != nil, "expected panic")
	}()
	//
	_, _ = program.WriteTo(&builder)
}
