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
package codegen

import (
	"fmt"

	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
)

// Operand describes where a value computed by a backend lives.  This is either
// a Register, a Constant or a StackSlot.
type Operand interface {
	// Asm returns the machine operand corresponding to this operand.
	Asm() amd64.Operand
	fmt.Stringer
}

// Register is an operand held in a machine register.
type Register struct {
	amd64.Register
}

// NewRegister constructs an operand for a given machine register.
func NewRegister(r amd64.Register) Register {
	return Register{r}
}

// Asm implementation for Operand interface.
func (p Register) Asm() amd64.Operand {
	return p.Register
}

// Constant is an operand whose value is known at compile time.
type Constant int64

// Asm implementation for Operand interface.
func (p Constant) Asm() amd64.Operand {
	return amd64.Immediate(p)
}

func (p Constant) String() string {
	return fmt.Sprintf("%d", int64(p))
}

// Fits determines whether this constant can be used as an immediate operand of
// an arithmetic instruction.
func (p Constant) Fits() bool {
	return amd64.FitsImmediate(int64(p))
}

// StackSlot is an operand held in the machine stack, where slot 0 is the word
// at the top of the stack.
type StackSlot uint

// Asm implementation for Operand interface.
func (p StackSlot) Asm() amd64.Operand {
	return amd64.Indirect(amd64.RSP, int64(p)*8)
}

func (p StackSlot) String() string {
	return fmt.Sprintf("slot%d", uint(p))
}
