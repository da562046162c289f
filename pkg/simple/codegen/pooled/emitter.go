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
	//
	target, held, err := p.memoryOf(s.Target)
	//
	if err != nil {
		return err
	}
	// Address register may have displaced the value
	if moved := p.disentangle(value, held); moved != held {
		target = amd64.Indirect(TEMP, 0)
		held = moved
	}
	//
	if c, ok := value.(codegen.Constant); ok && !c.Fits() {
		p.out.Emit(amd64.MOVQ, c.Asm(), amd64.RAX)
		p.out.Emit(amd64.MOVQ, amd64.RAX, target)
	} else {
		p.out.Emit(amd64.MOVQ, value.Asm(), target)
	}
	//
	p.pool.Release(held)
	p.pool.Release(value)
	p.pool.Reset()
	//
	return nil
}

// Copy an aggregate value between two locations.
func (p *Backend) copy(target expr.Location, src expr.Location) *source.SyntaxError {
	to, err := p.AddressOf(target)
	//
	if err != nil {
		return err
	}
	//
	from, err := p.AddressOf(src)
	//
	if err != nil {
		return err
	}
	//
	from = p.disentangle(to, from)
	p.out.Emit(amd64.MOVQ, to.Asm(), amd64.RDI)
	p.out.Emit(amd64.MOVQ, from.Asm(), amd64.RSI)
	p.out.Emit(amd64.MOVQ, amd64.Immediate(target.Type().Size()), amd64.RDX)
	p.out.Emit(amd64.CALL, amd64.Symbol(COPY_FN))
	p.pool.Release(from)
	p.pool.Release(to)
	p.pool.Reset()
	//
	return nil
}

// Read implementation for codegen.Backend interface.
func (p *Backend) Read(s *stmt.Read) *source.SyntaxError {
	address, err := p.AddressOf(s.Target)
	//
	if err != nil {
		return err
	}
	//
	p.out.Emit(amd64.MOVQ, address.Asm(), amd64.RSI)
	p.out.Emit(amd64.CALL, amd64.Symbol(READ_FN))
	p.pool.Release(address)
	p.pool.Reset()
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
	p.out.Emit(amd64.MOVQ, value.Asm(), amd64.RSI)
	p.out.Emit(amd64.CALL, amd64.Symbol(WRITE_FN))
	p.pool.Release(value)
	p.pool.Reset()
	//
	return nil
}
