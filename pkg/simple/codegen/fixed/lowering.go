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
package fixed

import (
	"github.com/consensys/go-simple/pkg/simple/ast/expr"
	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util/source"
)

// ValueOf implementation for codegen.Backend interface.  The result is either a
// constant, or is left in the VALUE register.
func (p *Backend) ValueOf(e expr.Expr) (codegen.Operand, *source.SyntaxError) {
	switch e := e.(type) {
	case *expr.Number:
		return codegen.Constant(e.Value), nil
	case expr.Location:
		mem, err := p.memoryOf(e)
		//
		if err != nil {
			return nil, err
		}
		//
		p.out.Emit(amd64.MOVQ, mem, VALUE)
		//
		return codegen.NewRegister(VALUE), nil
	case *expr.Binary:
		return p.valueOfBinary(e)
	case *expr.Function:
		return nil, codegen.Unsupported(p.srcmap, e)
	default:
		panic("unknown expression")
	}
}

func (p *Backend) valueOfBinary(e *expr.Binary) (codegen.Operand, *source.SyntaxError) {
	var division = e.Operator == expr.DIV || e.Operator == expr.MOD
	//
	rhs, _, err := p.operands(e.Left, e.Right, !division)
	//
	if err != nil {
		return nil, err
	}
	//
	switch e.Operator {
	case expr.ADD:
		p.out.Emit(amd64.ADDQ, rhs.Asm(), VALUE)
	case expr.SUB:
		p.out.Emit(amd64.SUBQ, rhs.Asm(), VALUE)
	case expr.MUL:
		p.out.Emit(amd64.IMULQ, rhs.Asm(), VALUE)
	case expr.DIV, expr.MOD:
		p.out.Emit(amd64.MOVQ, VALUE, amd64.RAX)
		p.out.Emit(amd64.CQTO)
		p.out.Emit(amd64.IDIVQ, rhs.Asm())
		//
		if e.Operator == expr.DIV {
			p.out.Emit(amd64.MOVQ, amd64.RAX, VALUE)
		} else {
			p.out.Emit(amd64.MOVQ, amd64.RDX, VALUE)
		}
	default:
		panic("unknown operator")
	}
	//
	p.drop(rhs)
	//
	return codegen.NewRegister(VALUE), nil
}

// Compare implementation for codegen.Backend interface.
func (p *Backend) Compare(cond expr.Condition) *source.SyntaxError {
	rhs, _, err := p.operands(cond.Left, cond.Right, true)
	//
	if err != nil {
		return err
	}
	//
	p.out.Emit(amd64.CMPQ, rhs.Asm(), VALUE)
	p.drop(rhs)
	//
	return nil
}

// Evaluate the operands of a binary operation, such that the left-hand side is
// left in the VALUE register.  The right-hand side is returned as an
// immediate (when permitted and possible), or is held in stack slot 0.
func (p *Backend) operands(left expr.Expr, right expr.Expr,
	immediate bool) (codegen.Operand, codegen.Operand, *source.SyntaxError) {
	//
	rhs, err := p.ValueOf(right)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	if c, ok := rhs.(codegen.Constant); !ok || !immediate || !c.Fits() {
		p.materialise(rhs, VALUE)
		p.out.Emit(amd64.PUSHQ, VALUE)
		rhs = codegen.StackSlot(0)
	}
	//
	lhs, err := p.ValueOf(left)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	p.materialise(lhs, VALUE)
	//
	return rhs, codegen.NewRegister(VALUE), nil
}

// Drop an operand held on the stack.  This does not affect the condition
// codes.
func (p *Backend) drop(operand codegen.Operand) {
	if _, ok := operand.(codegen.StackSlot); ok {
		p.out.Emit(amd64.LEAQ, amd64.Indirect(amd64.RSP, 8), amd64.RSP)
	}
}
