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
	"math"
)

// Operand represents an operand of a machine instruction.  This is either a
// Register, an Immediate, a Memory reference or a Symbol.
type Operand interface {
	fmt.Stringer
}

// Immediate is a constant operand embedded in the instruction.
type Immediate int64

func (p Immediate) String() string {
	return fmt.Sprintf("$%d", int64(p))
}

// FitsImmediate determines whether a given value can be embedded directly in an
// arithmetic instruction, which permits only sign-extended 32-bit immediates.
func FitsImmediate(value int64) bool {
	return value >= math.MinInt32 && value <= math.MaxInt32
}

// Memory is an operand referring to the word stored at some address.  The
// address is either "Disp(Base)", or "Symbol+Disp(%rip)" when a symbol is
// given.
type Memory struct {
	Base   Register
	Disp   int64
	Symbol string
}

// Indirect constructs a memory operand at a given displacement from the
// address held in a register.
func Indirect(base Register, disp int64) Memory {
	return Memory{base, disp, ""}
}

// Static constructs a memory operand referring to a named location in the
// data section.
func Static(symbol string) Memory {
	return Memory{RIP, 0, symbol}
}

func (p Memory) String() string {
	switch {
	case p.Symbol != "" && p.Disp != 0:
		return fmt.Sprintf("%s%+d(%s)", p.Symbol, p.Disp, p.Base.String())
	case p.Symbol != "":
		return fmt.Sprintf("%s(%s)", p.Symbol, p.Base.String())
	case p.Disp != 0:
		return fmt.Sprintf("%d(%s)", p.Disp, p.Base.String())
	default:
		return fmt.Sprintf("(%s)", p.Base.String())
	}
}

// Symbol is an operand naming a code label or external function, as used by
// jumps and calls.
type Symbol string

func (p Symbol) String() string {
	return string(p)
}
