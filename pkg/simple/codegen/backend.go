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

	"github.com/consensys/go-simple/pkg/simple/ast/expr"
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
	"github.com/consensys/go-simple/pkg/simple/ast/variable"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util/source"
)

// Backend is a strategy for translating the statements of a program into
// machine instructions.  A backend holds the state of a single compilation
// (e.g. its layout and registers), and emits into the program given to Begin.
// Control flow is handled by the Driver, which asks the backend to emit
// comparisons.
type Backend interface {
	// Name returns the name of this backend (e.g. "pooled").
	Name() string
	// Begin generation into a given program.  This plans the layout of the
	// given global variables, emits the data section and emits the prologue.
	Begin(out *amd64.Program, vars []*variable.Variable) *Layout
	// AddressOf emits code to compute the address of a given location,
	// returning the operand which holds it.
	AddressOf(loc expr.Location) (Operand, *source.SyntaxError)
	// ValueOf emits code to compute the value of a given expression, returning
	// the operand which holds it.
	ValueOf(e expr.Expr) (Operand, *source.SyntaxError)
	// Release an operand returned by AddressOf or ValueOf, which is no longer
	// required.
	Release(operand Operand)
	// Assign emits an assignment statement.
	Assign(s *stmt.Assign) *source.SyntaxError
	// Read emits a statement which reads an integer from the input.
	Read(s *stmt.Read) *source.SyntaxError
	// Write emits a statement which writes an integer to the output.
	Write(s *stmt.Write) *source.SyntaxError
	// Compare emits code which sets the condition codes, such that a jump
	// selected by Jump() is taken exactly when the condition holds.
	Compare(cond expr.Condition) *source.SyntaxError
	// End generation, emitting the epilogue of the main body followed by any
	// subroutines and bounds traps.
	End()
}

// Jump returns the conditional jump which is taken after a comparison exactly
// when a given relation holds.
func Jump(rel expr.Relation) amd64.Opcode {
	switch rel {
	case expr.EQ:
		return amd64.JE
	case expr.NEQ:
		return amd64.JNE
	case expr.LT:
		return amd64.JL
	case expr.LTEQ:
		return amd64.JLE
	case expr.GT:
		return amd64.JG
	case expr.GTEQ:
		return amd64.JGE
	default:
		panic("unknown relation")
	}
}

// Label returns the name of the nth jump target.
func Label(n uint) string {
	return fmt.Sprintf("L%d", n)
}

// Error constructs an error reported against a given node.  When the node has
// no recorded position, the error is reported against the start of the file.
func Error(srcmap *source.Map[any], node any, msg string) *source.SyntaxError {
	if srcmap.Has(node) {
		return srcmap.SyntaxError(node, msg)
	}
	//
	return srcmap.Source().SyntaxError(source.NewSpan(0, 0), msg)
}

// OutOfRange constructs an error for an index which is known at compile time to
// be out of range.
func OutOfRange(srcmap *source.Map[any], loc expr.Location) *source.SyntaxError {
	return Error(srcmap, loc, fmt.Sprintf("array index out of range in %s", loc.String()))
}

// Unsupported constructs an error for an expression which cannot be compiled.
func Unsupported(srcmap *source.Map[any], e expr.Expr) *source.SyntaxError {
	return Error(srcmap, e, fmt.Sprintf("unsupported construct %s", e.String()))
}

// Position returns the line and column of a given node, or zeros if it has no
// recorded position.
func Position(srcmap *source.Map[any], node any) (int, int) {
	if srcmap.Has(node) {
		return srcmap.Position(node)
	}
	//
	return 0, 0
}
