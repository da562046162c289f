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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
)

// Execute the instruction at a given position, returning the position of the
// next instruction to execute.
func (p *Machine) execute(pc uint) (next uint, err error) {
	var insn = p.code[pc]
	//
	defer func() {
		// Memory faults are raised by panicking with a message
		if r := recover(); r != nil {
			msg, ok := r.(string)
			//
			if !ok {
				panic(r)
			}
			//
			next, err = pc, &Fault{pc, insn, msg}
		}
	}()
	//
	switch insn.Opcode {
	case amd64.MOVQ:
		p.write(insn.Operand(1), p.read(insn.Operand(0)))
	case amd64.LEAQ:
		p.write(insn.Operand(1), p.address(insn.Operand(0)))
	case amd64.ADDQ:
		lhs, rhs := p.read(insn.Operand(1)), p.read(insn.Operand(0))
		res := lhs + rhs
		p.arithmetic(res, (lhs >= 0) == (rhs >= 0) && (res >= 0) != (lhs >= 0), uint64(res) < uint64(lhs))
		p.write(insn.Operand(1), res)
	case amd64.SUBQ:
		p.write(insn.Operand(1), p.subtract(p.read(insn.Operand(1)), p.read(insn.Operand(0))))
	case amd64.CMPQ:
		p.subtract(p.read(insn.Operand(1)), p.read(insn.Operand(0)))
	case amd64.IMULQ:
		lhs, rhs := p.read(insn.Operand(1)), p.read(insn.Operand(0))
		res := lhs * rhs
		overflow := lhs != 0 && (res/lhs != rhs || (lhs == -1 && rhs == math.MinInt64))
		p.arithmetic(res, overflow, overflow)
		p.write(insn.Operand(1), res)
	case amd64.ANDQ:
		res := p.read(insn.Operand(1)) & p.read(insn.Operand(0))
		p.arithmetic(res, false, false)
		p.write(insn.Operand(1), res)
	case amd64.XORQ:
		res := p.read(insn.Operand(1)) ^ p.read(insn.Operand(0))
		p.arithmetic(res, false, false)
		p.write(insn.Operand(1), res)
	case amd64.CQTO:
		p.registers[amd64.RDX] = p.registers[amd64.RAX] >> 63
	case amd64.IDIVQ:
		p.divide(p.read(insn.Operand(0)))
	case amd64.PUSHQ:
		p.push(p.read(insn.Operand(0)))
	case amd64.POPQ:
		p.write(insn.Operand(0), p.pop())
	case amd64.JMP, amd64.JE, amd64.JNE, amd64.JL, amd64.JLE, amd64.JG, amd64.JGE, amd64.JAE:
		if p.taken(insn.Opcode) {
			return p.labels[string(insn.Operand(0).(amd64.Symbol))], nil
		}
	case amd64.CALL:
		return p.call(pc, string(insn.Operand(0).(amd64.Symbol)))
	case amd64.RET:
		if ret := p.pop(); ret != RETURN {
			return uint(ret), nil
		}
		// Returning from main
		p.status = int(p.registers[amd64.RAX] & 0xff)
		//
		return HALT, nil
	default:
		return pc, &Fault{pc, insn, fmt.Sprintf("unsupported instruction %s", insn.Opcode.String())}
	}
	//
	return pc + 1, nil
}

// Subtract two values, setting the condition codes accordingly.
func (p *Machine) subtract(lhs int64, rhs int64) int64 {
	res := lhs - rhs
	p.arithmetic(res, (lhs >= 0) != (rhs >= 0) && (res >= 0) != (lhs >= 0), uint64(lhs) < uint64(rhs))
	//
	return res
}

func (p *Machine) arithmetic(res int64, overflow bool, carry bool) {
	p.zf = res == 0
	p.sf = res < 0
	p.of = overflow
	p.cf = carry
}

// Divide the 128-bit value in %rdx:%rax by a given divisor, leaving the
// quotient in %rax and remainder in %rdx.  The dividend is assumed to have
// been sign extended with cqto.
func (p *Machine) divide(divisor int64) {
	var dividend = p.registers[amd64.RAX]
	//
	if p.registers[amd64.RDX] != dividend>>63 {
		panic("dividend exceeds 64 bits")
	} else if divisor == 0 || (divisor == -1 && dividend == math.MinInt64) {
		panic("divide error")
	}
	//
	p.registers[amd64.RAX] = dividend / divisor
	p.registers[amd64.RDX] = dividend % divisor
}

// Determine whether a jump is taken, given the current condition codes.
func (p *Machine) taken(opcode amd64.Opcode) bool {
	switch opcode {
	case amd64.JMP:
		return true
	case amd64.JE:
		return p.zf
	case amd64.JNE:
		return !p.zf
	case amd64.JL:
		return p.sf != p.of
	case amd64.JLE:
		return p.zf || p.sf != p.of
	case amd64.JG:
		return !p.zf && p.sf == p.of
	case amd64.JGE:
		return p.sf == p.of
	case amd64.JAE:
		return !p.cf
	default:
		panic("unknown jump")
	}
}

// Call either a label within the program, or a host function.
func (p *Machine) call(pc uint, target string) (uint, error) {
	if next, ok := p.labels[target]; ok {
		p.push(int64(pc + 1))
		return next, nil
	}
	//
	if p.registers[amd64.RSP]%16 != 0 {
		return pc, &Fault{pc, p.code[pc], fmt.Sprintf("misaligned stack on call to %s", target)}
	}
	//
	halt, err := HOST_FUNCTIONS[target](p)
	//
	if err != nil {
		return pc, fmt.Errorf("%s: %w", target, err)
	} else if halt {
		return HALT, nil
	}
	// Host function may clobber any caller-saved register
	for _, r := range amd64.CALLER_SAVED {
		if r != amd64.RAX {
			p.registers[r] = POISON
		}
	}
	//
	return pc + 1, nil
}

// Read the value of an operand.
func (p *Machine) read(operand amd64.Operand) int64 {
	switch operand := operand.(type) {
	case amd64.Register:
		return p.registers[operand]
	case amd64.Immediate:
		return int64(operand)
	case amd64.Memory:
		return p.load(p.address(operand))
	default:
		panic(fmt.Sprintf("cannot read operand %s", operand.String()))
	}
}

// Write a value into an operand.
func (p *Machine) write(operand amd64.Operand, value int64) {
	switch operand := operand.(type) {
	case amd64.Register:
		p.registers[operand] = value
	case amd64.Memory:
		p.store(p.address(operand), value)
	default:
		panic(fmt.Sprintf("cannot write operand %s", operand.String()))
	}
}

// Determine the effective address of a memory operand.
func (p *Machine) address(operand amd64.Operand) int64 {
	mem, ok := operand.(amd64.Memory)
	//
	if !ok {
		panic(fmt.Sprintf("operand %s has no address", operand.String()))
	} else if mem.Symbol != "" {
		return p.symbols[mem.Symbol] + mem.Disp
	}
	//
	return p.registers[mem.Base] + mem.Disp
}

func (p *Machine) push(value int64) {
	p.registers[amd64.RSP] -= 8
	p.store(p.registers[amd64.RSP], value)
}

func (p *Machine) pop() int64 {
	value := p.load(p.registers[amd64.RSP])
	p.registers[amd64.RSP] += 8
	//
	return value
}

func (p *Machine) load(address int64) int64 {
	return int64(binary.LittleEndian.Uint64(p.bytes(address, 8)))
}

func (p *Machine) store(address int64, value int64) {
	binary.LittleEndian.PutUint64(p.bytes(address, 8), uint64(value))
}

// Access a range of memory, faulting if any part of it is invalid.
func (p *Machine) bytes(address int64, n int64) []byte {
	var offset = address - DATA_BASE
	//
	if offset < 0 || n < 0 || offset+n > int64(len(p.memory)) {
		panic(fmt.Sprintf("segmentation fault at address %#x", address))
	}
	//
	return p.memory[offset : offset+n]
}
