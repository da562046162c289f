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
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util/source"
)

// Assign implementation for codegen.Backend interface.
func (p *Backend) Assign(s *stmt.Assign) *source.SyntaxError {
	if !data.IsInteger(s.Target.Type()) {
		return p.copy(s.Target, s.Source.(expr.Location))
	}
	//
	value, err := p.ValueOf(s.Source)
	//
	if err != nil {
		return err
	}
	// Preserve value whilst target is resolved
	_, constant := value.(codegen.Constant)
	//
	if !constant {
		p.out.Emit(amd64.PUSHQ, VALUE)
	}
	//
	target, err := p.memoryOf(s.Target)
	//
	if err != nil {
		return err
	} else if !constant {
		p.out.Emit(amd64.POPQ, VALUE)
	} else if c := value.(codegen.Constant); !c.Fits() {
		p.materialise(c, VALUE)
		value = codegen.NewRegister(VALUE)
	}
	//
	p.out.Emit(amd64.MOVQ, value.Asm(), target)
	//
	return nil
}

// Copy an aggregate one word at a time.
func (p *Backend) copy(target expr.Location, src expr.Location) *source.SyntaxError {
	if _, err := p.AddressOf(src); err != nil {
		return err
	}
	//
	p.out.Emit(amd64.PUSHQ, ADDRESS)
	//
	if _, err := p.AddressOf(target); err != nil {
		return err
	}
	//
	p.out.Emit(amd64.POPQ, VALUE)
	//
	for offset := int64(0); offset < int64(target.Type().Size()); offset += int64(data.WORD) {
		p.out.Emit(amd64.MOVQ, amd64.Indirect(VALUE, offset), SCRATCH)
		p.out.Emit(amd64.MOVQ, SCRATCH, amd64.Indirect(ADDRESS, offset))
	}
	//
	return nil
}

// Read implementation for codegen.Backend interface.
func (p *Backend) Read(s *stmt.Read) *source.SyntaxError {
	target, err := p.memoryOf(s.Target)
	//
	if err != nil {
		return err
	}
	// ADDRESS is callee-saved, hence survives the call.
	p.out.Emit(amd64.CALL, amd64.Symbol(READ_FN))
	p.out.Emit(amd64.MOVQ, amd64.Static(READ), VALUE)
	p.out.Emit(amd64.MOVQ, VALUE, target)
	//
	return nil
}

// Write implementation for codegen.Backend interface.
func (p *Backend) Write(s *stmt.Write) *source.SyntaxError {
	value, err := p.ValueOf(s.Source)
	//
	if err != nil {
		return err
	}
	//
	if c, ok := value.(codegen.Constant); ok && !c.Fits() {
		p.materialise(c, VALUE)
		value = codegen.NewRegister(VALUE)
	}
	//
	p.out.Emit(amd64.MOVQ, value.Asm(), amd64.Static(WRITE))
	p.out.Emit(amd64.CALL, amd64.Symbol(WRITE_FN))
	//
	return nil
}
