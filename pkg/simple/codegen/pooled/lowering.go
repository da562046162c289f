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
package pooled

import (
	"github.com/consensys/go-simple/pkg/simple/ast/expr"
	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util/source"
)

// ValueOf implementation for codegen.Backend interface.  Values are returned
// either as constants or in pooled registers.
func (p *Backend) ValueOf(e expr.Expr) (codegen.Operand, *source.SyntaxError) {
	switch e := e.(type) {
	case *expr.Number:
		return codegen.Constant(e.Value), nil
	case expr.Location:
		mem, held, err := p.memoryOf(e)
		//
		if err != nil {
			return nil, err
		}
		// Reuse address register where possible
		r, ok := held.(codegen.Register)
		//
		if !ok {
			r = p.acquire()
		}
		//
		p.out.Emit(amd64.MOVQ, mem, r.Register)
		//
		return r, nil
	case *expr.Binary:
		return p.valueOfBinary(e)
	case *expr.Function:
		return nil, codegen.Unsupported(p.srcmap, e)
	default:
		panic("unknown expression")
	}
}

func (p *Backend) valueOfBinary(e *expr.Binary) (codegen.Operand, *source.SyntaxError) {
	lhs, rhs, err := p.operands(e.Left, e.Right)
	//
	if err != nil {
		return nil, err
	}
	// Both constant only when folding was not possible
	if _, ok := lhs.(codegen.Constant); ok {
		if _, ok := rhs.(codegen.Constant); ok {
			r := p.acquire()
			p.out.Emit(amd64.MOVQ, lhs.Asm(), r.Register)
			lhs = r
		}
	}
	//
	if l, ok := p.pooled(lhs); ok {
		p.apply(e.Operator, p.source(rhs, !isDivision(e.Operator)), l.Register)
		p.pool.Release(rhs)
		//
		return l, nil
	}
	// Left operand is either a constant or in TEMP, hence the right operand
	// is pooled and holds the result.
	r, _ := p.pooled(rhs)
	//
	if lhs.Asm() != TEMP {
		p.out.Emit(amd64.MOVQ, lhs.Asm(), TEMP)
	}
	//
	p.apply(e.Operator, r.Register, TEMP)
	p.out.Emit(amd64.MOVQ, TEMP, r.Register)
	//
	return r, nil
}

// Apply an operator to a given target, where division uses the target as the
// dividend.
func (p *Backend) apply(op expr.Operator, rhs amd64.Operand, target amd64.Register) {
	switch op {
	case expr.ADD:
		p.out.Emit(amd64.ADDQ, rhs, target)
	case expr.SUB:
		p.out.Emit(amd64.SUBQ, rhs, target)
	case expr.MUL:
		p.out.Emit(amd64.IMULQ, rhs, target)
	case expr.DIV, expr.MOD:
		p.out.Emit(amd64.MOVQ, target, amd64.RAX)
		p.out.Emit(amd64.CQTO)
		p.out.Emit(amd64.IDIVQ, rhs)
		//
		if op == expr.DIV {
			p.out.Emit(amd64.MOVQ, amd64.RAX, target)
		} else {
			p.out.Emit(amd64.MOVQ, amd64.RDX, target)
		}
	default:
		panic("unknown operator")
	}
}

// Compare implementation for codegen.Backend interface.
func (p *Backend) Compare(cond expr.Condition) *source.SyntaxError {
	lhs, rhs, err := p.operands(cond.Left, cond.Right)
	//
	if err != nil {
		return err
	}
	//
	if l, ok := p.pooled(lhs); ok {
		p.out.Emit(amd64.CMPQ, p.source(rhs, true), l.Register)
	} else if lhs.Asm() == TEMP {
		// Right operand is pooled
		p.out.Emit(amd64.CMPQ, rhs.Asm(), TEMP)
	} else {
		// Constant left operand, with right operand moved aside if necessary
		var right = rhs.Asm()
		//
		if c, ok := rhs.(codegen.Constant); ok && !c.Fits() {
			p.out.Emit(amd64.MOVQ, c.Asm(), amd64.RAX)
			right = amd64.RAX
		}
		//
		p.out.Emit(amd64.MOVQ, lhs.Asm(), TEMP)
		p.out.Emit(amd64.CMPQ, right, TEMP)
	}
	// Releasing and resetting leave the condition codes intact
	p.pool.Release(lhs)
	p.pool.Release(rhs)
	p.pool.Reset()
	//
	return nil
}

// Evaluate the operands of a binary operation or comparison, starting with the
// deeper operand to minimise the number of live registers.
func (p *Backend) operands(left expr.Expr, right expr.Expr) (codegen.Operand, codegen.Operand,
	*source.SyntaxError) {
	//
	if expr.Depth(right) > expr.Depth(left) {
		rhs, err := p.ValueOf(right)
		//
		if err != nil {
			return nil, nil, err
		}
		//
		lhs, err := p.ValueOf(left)
		//
		if err != nil {
			return nil, nil, err
		}
		//
		return p.disentangle(rhs, lhs), rhs, nil
	}
	//
	lhs, err := p.ValueOf(left)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	rhs, err := p.ValueOf(right)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	return lhs, p.disentangle(lhs, rhs), nil
}

// Check whether an operand is held in a pooled register.
func (p *Backend) pooled(operand codegen.Operand) (codegen.Register, bool) {
	if r, ok := operand.(codegen.Register); ok && r.Register != TEMP {
		return r, true
	}
	//
	return codegen.Register{}, false
}

func isDivision(op expr.Operator) bool {
	return op == expr.DIV || op == expr.MOD
}
