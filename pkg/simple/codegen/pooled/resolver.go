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

// AddressOf implementation for codegen.Backend interface.  The address is
// always returned in a pooled register, which the caller must release.
func (p *Backend) AddressOf(loc expr.Location) (codegen.Operand, *source.SyntaxError) {
	offset, err := p.offsetOf(loc)
	//
	if err != nil {
		return nil, err
	}
	//
	switch offset := offset.(type) {
	case codegen.Constant:
		r := p.acquire()
		p.out.Emit(amd64.LEAQ, amd64.Indirect(BASE, int64(offset)), r.Register)
		//
		return r, nil
	case codegen.Register:
		p.out.Emit(amd64.ADDQ, BASE, offset.Register)
		return offset, nil
	default:
		panic("unreachable")
	}
}

// Determine the memory operand through which a scalar location is accessed,
// along with any register holding its address (which must be released once
// the access is complete).
func (p *Backend) memoryOf(loc expr.Location) (amd64.Memory, codegen.Operand, *source.SyntaxError) {
	offset, err := p.offsetOf(loc)
	//
	if err != nil {
		return amd64.Memory{}, nil, err
	}
	//
	switch offset := offset.(type) {
	case codegen.Constant:
		return amd64.Indirect(BASE, int64(offset)), offset, nil
	case codegen.Register:
		p.out.Emit(amd64.ADDQ, BASE, offset.Register)
		return amd64.Indirect(offset.Register, 0), offset, nil
	default:
		panic("unreachable")
	}
}

// Determine the offset of a location within the region, either as a constant
// or in a pooled register.
func (p *Backend) offsetOf(loc expr.Location) (codegen.Operand, *source.SyntaxError) {
	if loc.IsStatic() {
		path := expr.Root(loc).Variable.Name() + expr.Path(loc)
		//
		if offset, ok := p.layout.Lookup(path); ok {
			return codegen.Constant(offset), nil
		}
		//
		return nil, codegen.OutOfRange(p.srcmap, loc)
	}
	//
	switch loc := loc.(type) {
	case *expr.Field:
		base, err := p.offsetOf(loc.Base)
		//
		if err != nil {
			return nil, err
		}
		//
		return p.displace(base, loc.Field.Offset), nil
	case *expr.Index:
		return p.offsetOfIndex(loc)
	default:
		panic("unknown location")
	}
}

func (p *Backend) offsetOfIndex(loc *expr.Index) (codegen.Operand, *source.SyntaxError) {
	var elemSize = loc.Array.Element.Size()
	//
	base, err := p.offsetOf(loc.Base)
	//
	if err != nil {
		return nil, err
	} else if n, ok := loc.Subscript.(*expr.Number); ok {
		if n.Value < 0 || n.Value >= int64(loc.Array.Length) {
			return nil, codegen.OutOfRange(p.srcmap, loc)
		}
		//
		return p.displace(base, uint(n.Value)*elemSize), nil
	}
	//
	index, err := p.ValueOf(loc.Subscript)
	//
	if err != nil {
		return nil, err
	}
	//
	index = p.disentangle(base, index)
	// Runtime bounds check (negative indices are caught by unsigned comparison)
	line, column := codegen.Position(p.srcmap, loc)
	p.checked = true
	p.out.Emit(amd64.MOVQ, index.Asm(), amd64.RDX)
	p.out.Emit(amd64.MOVQ, amd64.Immediate(line), amd64.RCX)
	p.out.Emit(amd64.MOVQ, amd64.Immediate(column), amd64.RAX)
	p.out.Emit(amd64.CMPQ, amd64.Immediate(loc.Array.Length), amd64.RDX)
	p.out.Emit(amd64.JAE, amd64.Symbol(BOUNDS_TRAP))
	p.out.Emit(amd64.IMULQ, amd64.Immediate(elemSize), amd64.RDX)
	//
	switch base := base.(type) {
	case codegen.Constant:
		// Index cannot be TEMP, since only one operand is a register
		r := index.(codegen.Register)
		p.out.Emit(amd64.LEAQ, amd64.Indirect(amd64.RDX, int64(base)), r.Register)
		//
		return r, nil
	case codegen.Register:
		p.out.Emit(amd64.ADDQ, amd64.RDX, base.Register)
		p.pool.Release(index)
		//
		return base, nil
	default:
		panic("unreachable")
	}
}

// Displace an offset by a constant amount, folding constant offsets.
func (p *Backend) displace(offset codegen.Operand, delta uint) codegen.Operand {
	switch offset := offset.(type) {
	case codegen.Constant:
		return offset + codegen.Constant(delta)
	case codegen.Register:
		if delta != 0 {
			p.out.Emit(amd64.ADDQ, amd64.Immediate(delta), offset.Register)
		}
		//
		return offset
	default:
		panic("unreachable")
	}
}
