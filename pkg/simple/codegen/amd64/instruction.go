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
	"fmt"
	"strings"
)

// Opcode identifies the operation performed by an instruction.
type Opcode uint8

const (
	// MOVQ copies its first operand into its second.
	MOVQ Opcode = iota
	// LEAQ loads the address of its first operand into its second.  This does
	// not affect the condition codes.
	LEAQ
	// ADDQ adds its first operand to its second.
	ADDQ
	// SUBQ subtracts its first operand from its second.
	SUBQ
	// IMULQ multiplies its second operand by its first.
	IMULQ
	// IDIVQ divides %rdx:%rax by its operand, leaving the quotient in %rax and
	// the remainder in %rdx.  The quotient is truncated towards zero.
	IDIVQ
	// CQTO sign-extends %rax into %rdx:%rax.
	CQTO
	// CMPQ sets the condition codes by subtracting its first operand from its
	// second.
	CMPQ
	// ANDQ performs a bitwise and of its first operand into its second.
	ANDQ
	// XORQ performs a bitwise xor of its first operand into its second.
	XORQ
	// PUSHQ pushes its operand onto the stack.
	PUSHQ
	// POPQ pops the top of the stack into its operand.
	POPQ
	// JMP jumps unconditionally.
	JMP
	// JE jumps if equal.
	JE
	// JNE jumps if not equal.
	JNE
	// JL jumps if less (signed).
	JL
	// JLE jumps if less or equal (signed).
	JLE
	// JG jumps if greater (signed).
	JG
	// JGE jumps if greater or equal (signed).
	JGE
	// JAE jumps if above or equal (unsigned).
	JAE
	// CALL pushes the return address and jumps to its operand.
	CALL
	// RET pops the return address and jumps to it.
	RET
)

var opcodeNames = []string{
	"movq", "leaq", "addq", "subq", "imulq", "idivq", "cqto", "cmpq", "andq", "xorq",
	"pushq", "popq", "jmp", "je", "jne", "jl", "jle", "jg", "jge", "jae", "call", "ret",
}

func (p Opcode) String() string {
	return opcodeNames[p]
}

// IsJump determines whether this is a (conditional or unconditional) jump.
func (p Opcode) IsJump() bool {
	return p >= JMP && p <= JAE
}

// Instruction represents a single machine instruction.  Operands are given in
// AT&T order, meaning the destination (if any) is last.
type Instruction struct {
	Opcode   Opcode
	Operands []Operand
}

// NewInstruction constructs a new instruction.
func NewInstruction(opcode Opcode, operands ...Operand) *Instruction {
	return &Instruction{opcode, operands}
}

// Operand returns the ith operand of this instruction.
func (p *Instruction) Operand(i int) Operand {
	return p.Operands[i]
}

func (p *Instruction) String() string {
	var builder strings.Builder
	// Instructions have at most two operands
	if len(p.Operands) > 2 {
		panic(fmt.Sprintf("instruction %s has %d operands", p.Opcode.String(), len(p.Operands)))
	}
	//
	builder.WriteString(p.Opcode.String())
	//
	for i, operand := range p.Operands {
		if i == 0 {
			builder.WriteString(" ")
		} else {
			builder.WriteString(",")
		}
		//
		builder.WriteString(operand.String())
	}
	//
	return builder.String()
}

// Label marks a position in the text section which can be the target of a
// jump or call.
type Label struct {
	Name string
}

func (p *Label) String() string {
	return p.Name + ":"
}

// Statement is either a Label or an Instruction.
type Statement interface {
	fmt.Stringer
}
