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

// Register identifies one of the general-purpose 64-bit registers.  The
// instruction pointer is included only for use as the base of a memory
// operand.
type Register uint8

const (
	// RAX is the accumulator, which also holds the result of external calls.
	RAX Register = iota
	// RBX is a callee-saved register.
	RBX
	// RCX holds the fourth argument of external calls.
	RCX
	// RDX holds the third argument of external calls.
	RDX
	// RSI holds the second argument of external calls.
	RSI
	// RDI holds the first argument of external calls.
	RDI
	// RBP is the frame pointer.
	RBP
	// RSP is the stack pointer.
	RSP
	// R8 holds the fifth argument of external calls.
	R8
	// R9 holds the sixth argument of external calls.
	R9
	// R10 is a caller-saved register.
	R10
	// R11 is a caller-saved register.
	R11
	// R12 is a callee-saved register.
	R12
	// R13 is a callee-saved register.
	R13
	// R14 is a callee-saved register.
	R14
	// R15 is a callee-saved register.
	R15
	// RIP is the instruction pointer.
	RIP
)

// NUM_REGISTERS determines the number of registers, including the instruction
// pointer.
const NUM_REGISTERS = int(RIP) + 1

// ARGUMENTS identifies the registers used to pass arguments to external calls,
// in order.
var ARGUMENTS = []Register{RDI, RSI, RDX, RCX, R8, R9}

// CALLER_SAVED identifies those registers which an external call may clobber.
var CALLER_SAVED = []Register{RAX, RCX, RDX, RSI, RDI, R8, R9, R10, R11}

var registerNames = []string{
	"rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rbp", "rsp",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15", "rip",
}

func (r Register) String() string {
	return "%" + registerNames[r]
}

// ParseRegister returns the register with a given name (e.g. "%r8"), or false
// if no such register exists.
func ParseRegister(name string) (Register, bool) {
	for i, n := range registerNames {
		if "%"+n == name {
			return Register(i), true
		}
	}
	//
	return 0, false
}
