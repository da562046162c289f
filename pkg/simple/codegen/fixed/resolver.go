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
	"github.com/consensys/go-simple/pkg/simple/ast/data"
	"github.com/consensys/go-simple/pkg/simple/ast/expr"
	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util/source"
)

// AddressOf implementation for codegen.Backend interface.  The address is
// always left in the ADDRESS register.
func (p *Backend) AddressOf(loc expr.Location) (codegen.Operand, *source.SyntaxError) {
	offset, err := p.offsetOf(loc)
	//
	if err != nil {
		return nil, err
	}
	//
	switch offset := offset.(type) {
	case codegen.Constant:
		p.out.Emit(amd64.MOVQ, amd64.Static(BASE), ADDRESS)
		//
		if offset != 0 {
			p.out.Emit(amd64.ADDQ, offset.Asm(), ADDRESS)
		}
	case codegen.Register:
		p.out.Emit(amd64.ADDQ, amd64.Static(BASE), ADDRESS)
	default:
		panic("unreachable")
	}
	//
	return codegen.NewRegister(ADDRESS), nil
}

// Determine the memory operand through which a scalar location is accessed.
// Statically known leaves are accessed through their named cell, whilst
// others are accessed through the ADDRESS register.
func (p *Backend) memoryOf(loc expr.Location) (amd64.Memory, *source.SyntaxError) {
	if loc.IsStatic() && data.IsInteger(loc.Type()) {
		path := expr.Root(loc).Variable.Name() + expr.Path(loc)
		//
		if _, ok := p.layout.Lookup(path); !ok {
			return amd64.Memory{}, codegen.OutOfRange(p.srcmap, loc)
		}
		//
		return amd64.Static(codegen.Mangle(path)), nil
	}
	//
	if _, err := p.AddressOf(loc); err != nil {
		return amd64.Memory{}, err
	}
	//
	return amd64.Indirect(ADDRESS, 0), nil
}

// Determine the offset of a location from the start of the region.  This is
// either a constant, or is left in the ADDRESS register.
func (p *Backend) offsetOf(loc expr.Location) (codegen.Operand, *source.SyntaxError) {
	switch loc := loc.(type) {
	case *expr.VarAccess:
		offset, ok := loc.Variable.Offset()
		//
		if !ok {
			panic("variable " + loc.Variable.Name() + " has no offset")
		}
		//
		return codegen.Constant(offset), nil
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
	// Literal subscripts are checked at compile time
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
	// Preserve base whilst subscript is evaluated
	if _, ok := base.(codegen.Register); ok {
		p.out.Emit(amd64.PUSHQ, ADDRESS)
	}
	//
	index, err := p.ValueOf(loc.Subscript)
	//
	if err != nil {
		return nil, err
	}
	//
	p.materialise(index, VALUE)
	// Runtime bounds check (negative indices are caught by unsigned comparison)
	p.out.Emit(amd64.CMPQ, amd64.Immediate(loc.Array.Length), VALUE)
	p.out.Emit(amd64.JAE, amd64.Symbol(p.trap(loc)))
	p.out.Emit(amd64.IMULQ, amd64.Immediate(elemSize), VALUE)
	//
	switch base := base.(type) {
	case codegen.Constant:
		p.out.Emit(amd64.LEAQ, amd64.Indirect(VALUE, int64(base)), ADDRESS)
	case codegen.Register:
		p.out.Emit(amd64.POPQ, ADDRESS)
		p.out.Emit(amd64.ADDQ, VALUE, ADDRESS)
	}
	//
	return codegen.NewRegister(ADDRESS), nil
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
