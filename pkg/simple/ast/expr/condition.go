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

import "fmt"

const (
	// EQ indicates an equality condition
	EQ Relation = 0
	// NEQ indicates a non-equality condition
	NEQ Relation = 1
	// LT indicates a less-than condition
	LT Relation = 2
	// GT indicates a greater-than condition
	GT Relation = 3
	// LTEQ indicates a less-than-or-equals condition
	LTEQ Relation = 4
	// GTEQ indicates a greater-than-or-equals condition
	GTEQ Relation = 5
)

// Relation represents the set of possible comparisons between two integers.
type Relation uint8

// Negate returns the relation which holds exactly when this does not.
func (p Relation) Negate() Relation {
	switch p {
	case EQ:
		return NEQ
	case NEQ:
		return EQ
	case LT:
		return GTEQ
	case GT:
		return LTEQ
	case LTEQ:
		return GT
	case GTEQ:
		return LT
	default:
		panic("unknown relation")
	}
}

// Holds determines whether this relation holds between two values.
func (p Relation) Holds(lhs int64, rhs int64) bool {
	switch p {
	case EQ:
		return lhs == rhs
	case NEQ:
		return lhs != rhs
	case LT:
		return lhs < rhs
	case GT:
		return lhs > rhs
	case LTEQ:
		return lhs <= rhs
	case GTEQ:
		return lhs >= rhs
	default:
		panic("unknown relation")
	}
}

func (p Relation) String() string {
	switch p {
	case EQ:
		return "="
	case NEQ:
		return "#"
	case LT:
		return "<"
	case GT:
		return ">"
	case LTEQ:
		return "<="
	case GTEQ:
		return ">="
	default:
		panic("unknown relation")
	}
}

// Condition represents a comparison between two integer expressions.
type Condition struct {
	Left     Expr
	Relation Relation
	Right    Expr
}

// NewCondition constructs a new condition.
func NewCondition(left Expr, rel Relation, right Expr) Condition {
	return Condition{left, rel, right}
}

// Negate returns the condition which holds exactly when this does not.
func (p Condition) Negate() Condition {
	return Condition{p.Left, p.Relation.Negate(), p.Right}
}

func (p Condition) String() string {
	return fmt.Sprintf("%s %s %s", p.Left.String(), p.Relation.String(), p.Right.String())
}
