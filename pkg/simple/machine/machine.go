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
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	log "github.com/sirupsen/logrus"
)

// DATA_BASE is the address at which the data section is loaded.  Addresses
// below this are never valid.
const DATA_BASE = 0x1000

// STACK_SIZE determines the number of bytes available for the stack.
const STACK_SIZE = 1 << 16

// POISON is written into caller-saved registers after each host call, such
// that code relying on their preservation misbehaves visibly.
const POISON = int64(0x5a5a5a5a5a5a5a5a)

// HALT is the pc value indicating execution has finished.
const HALT = math.MaxUint

// RETURN is the (invalid) return address pushed before entering main.
const RETURN = int64(-1)

// Stream numbers held by the host's stdout and stderr cells.
const (
	STDOUT = 1
	STDERR = 2
)

// ErrStepLimit is reported when a program executes more instructions than
// permitted.
var ErrStepLimit = errors.New("step limit exceeded")

// Fault describes a condition under which real hardware would have raised an
// exception, such as accessing an invalid address or dividing by zero.
type Fault struct {
	// Index of the faulting instruction within the text section
	Position uint
	// Faulting instruction
	Instruction *amd64.Instruction
	// Description of the fault
	Message string
}

func (p *Fault) Error() string {
	return fmt.Sprintf("%s (at %s)", p.Message, p.Instruction.String())
}

// Machine emulates the subset of an x86-64 processor used by generated code,
// along with the handful of C library functions which generated code calls.
// Memory is a single flat little-endian segment holding the data section
// followed by the stack.
type Machine struct {
	// Instructions of the text section, and the targets of its labels.
	code    []*amd64.Instruction
	labels  map[string]uint
	symbols map[string]int64
	// Register file, indexed by register
	registers [amd64.NUM_REGISTERS]int64
	// Condition codes
	zf, sf, of, cf bool
	memory         []byte
	input          *bufio.Reader
	output         io.Writer
	errors         io.Writer
	// Exit status, once halted.
	status int
	// Number of instructions executed, and the maximum permitted (or zero if
	// unlimited).
	steps uint
	limit uint
}

// New constructs a machine for executing a given program, whose host functions
// operate on the given streams.  An error is returned if the program refers to
// a symbol which it does not define.
func New(program *amd64.Program, input io.Reader, output io.Writer, errs io.Writer) (*Machine, error) {
	var (
		m = &Machine{
			labels:  make(map[string]uint),
			symbols: make(map[string]int64),
			input:   bufio.NewReader(input),
			output:  output,
			errors:  errs,
		}
		address = int64(DATA_BASE)
	)
	// Layout data section, followed by the host's stream cells.
	for _, d := range program.Data() {
		m.symbols[d.Name] = address
		address += int64(align(d.Size()))
	}
	//
	m.symbols["stdout"] = address
	m.symbols["stderr"] = address + 8
	address += 16
	// Memory spans the data and the stack
	m.memory = make([]byte, address-DATA_BASE+STACK_SIZE)
	//
	for _, d := range program.Data() {
		base := m.symbols[d.Name] - DATA_BASE
		//
		switch d.Kind {
		case amd64.QUAD:
			binary.LittleEndian.PutUint64(m.memory[base:], uint64(d.Value))
		case amd64.ASCIZ:
			copy(m.memory[base:], d.Text)
		}
	}
	//
	binary.LittleEndian.PutUint64(m.memory[m.symbols["stdout"]-DATA_BASE:], STDOUT)
	binary.LittleEndian.PutUint64(m.memory[m.symbols["stderr"]-DATA_BASE:], STDERR)
	// Flatten text section
	for _, s := range program.Text() {
		switch s := s.(type) {
		case *amd64.Label:
			m.labels[s.Name] = uint(len(m.code))
		case *amd64.Instruction:
			m.code = append(m.code, s)
		}
	}
	//
	if err := m.validate(); err != nil {
		return nil, err
	}
	// Stack pointer is 16-byte aligned before the call to main
	m.registers[amd64.RSP] = (DATA_BASE + int64(len(m.memory))) &^ 15
	m.push(RETURN)
	//
	return m, nil
}

// SetLimit bounds the number of instructions which can be executed, where zero
// means unlimited.
func (p *Machine) SetLimit(limit uint) {
	p.limit = limit
}

// Register returns the current contents of a given register.
func (p *Machine) Register(r amd64.Register) int64 {
	return p.registers[r]
}

// Steps returns the number of instructions executed so far.
func (p *Machine) Steps() uint {
	return p.steps
}

// Run the program from its entry point until it exits, returning its exit
// status.  An error is returned if execution faults, or exceeds the step
// limit.
func (p *Machine) Run() (int, error) {
	pc, ok := p.labels[amd64.ENTRY]
	//
	if !ok {
		return 0, fmt.Errorf("missing entry point %s", amd64.ENTRY)
	}
	//
	for pc != HALT {
		var err error
		//
		if pc >= uint(len(p.code)) {
			return 0, fmt.Errorf("execution ran off the end of the program")
		} else if p.limit != 0 && p.steps >= p.limit {
			return 0, ErrStepLimit
		}
		//
		p.steps++
		//
		if pc, err = p.execute(pc); err != nil {
			return 0, err
		}
	}
	//
	log.Debugf("executed %d instructions", p.steps)
	//
	return p.status, nil
}

// Check every symbol referenced by the text section is defined.
func (p *Machine) validate() error {
	for _, insn := range p.code {
		for _, operand := range insn.Operands {
			switch operand := operand.(type) {
			case amd64.Symbol:
				_, label := p.labels[string(operand)]
				_, host := HOST_FUNCTIONS[string(operand)]
				//
				if !label && !host {
					return fmt.Errorf("undefined symbol %s", string(operand))
				}
			case amd64.Memory:
				if _, ok := p.symbols[operand.Symbol]; operand.Symbol != "" && !ok {
					return fmt.Errorf("undefined symbol %s", operand.Symbol)
				}
			}
		}
	}
	//
	return nil
}

func align(n uint) uint {
	return (n + 7) &^ 7
}
