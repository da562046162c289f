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
package expr

import (
	"fmt"

	"github.com/consensys/go-simple/pkg/simple/ast/data"
)

const (
	// ADD represents integer addition
	ADD Operator = 0
	// SUB represents integer subtraction
	SUB Operator = 1
	// MUL represents integer multiplication
	MUL Operator = 2
	// DIV represents integer division, truncating towards zero.
	DIV Operator = 3
	// MOD represents the remainder of integer division, which has the sign of
	// the dividend.
	MOD Operator = 4
)

// Operator represents an arithmetic operator.
type Operator uint8

func (p Operator) String() string {
	switch p {
	case ADD:
		return "+"
	case SUB:
		return "-"
	case MUL:
		return "*"
	case DIV:
		return "DIV"
	case MOD:
		return "MOD"
	default:
		panic("unknown operator")
	}
}

// Number represents an integer literal, or a folded constant expression.
type Number struct {
	Value int64
}

// NewNumber constructs a new integer literal.
func NewNumber(value int64) *Number {
	return &Number{value}
}

// Type implementation for Expr interface
func (p *Number) Type() data.Type {
	return data.INTEGER
}

func (p *Number) String() string {
	return fmt.Sprintf("%d", p.Value)
}

// Binary represents an arithmetic operation over two integer operands.
type Binary struct {
	Operator Operator
	Left     Expr
	Right    Expr
}

// NewBinary constructs a new binary expression.
func NewBinary(op Operator, left Expr, right Expr) *Binary {
	return &Binary{op, left, right}
}

// Type implementation for Expr interface
func (p *Binary) Type() data.Type {
	return data.INTEGER
}

func (p *Binary) String() string {
	var lhs, rhs = p.Left.String(), p.Right.String()
	//
	if needsBraces(p.Left) {
		lhs = fmt.Sprintf("(%s)", lhs)
	}
	//
	if needsBraces(p.Right) {
		rhs = fmt.Sprintf("(%s)", rhs)
	}
	//
	return fmt.Sprintf("%s %s %s", lhs, p.Operator.String(), rhs)
}

// Evaluate applies this operator to two values.  False is returned when the
// operation is undefined (i.e. division or remainder by zero).
func (p Operator) Evaluate(lhs int64, rhs int64) (int64, bool) {
	switch p {
	case ADD:
		return lhs + rhs, true
	case SUB:
		return lhs - rhs, true
	case MUL:
		return lhs * rhs, true
	case DIV:
		if rhs == 0 {
			return 0, false
		}
		//
		return lhs / rhs, true
	case MOD:
		if rhs == 0 {
			return 0, false
		}
		//
		return lhs % rhs, true
	default:
		panic("unknown operator")
	}
}
