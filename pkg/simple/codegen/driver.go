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

	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/util"
	"github.com/consensys/go-simple/pkg/util/source"
	log "github.com/sirupsen/logrus"
)

// Generate translates the main body of a program into an assembly listing
// using a given backend.  Generation stops at the first error encountered, in
// which case no listing is returned.  Procedure declarations are not
// translated, and calls to them generate no code.
func Generate(program *ast.Program, backend Backend) (*amd64.Program, []source.SyntaxError) {
	var (
		stats  = util.NewPerfStats()
		out    = amd64.NewProgram()
		layout = backend.Begin(out, program.Variables)
		driver = &Driver{backend, out, 0}
	)
	//
	log.Debugf("%s backend placed %d leaves in %d bytes", backend.Name(), len(layout.Leaves()), layout.Size())
	//
	if err := driver.GenerateAll(program.Body); err != nil {
		return nil, []source.SyntaxError{*err}
	}
	// Close the body
	out.Label(Label(driver.next))
	backend.End()
	//
	stats.Log(fmt.Sprintf("Generating code (%s)", backend.Name()))
	//
	return out, nil
}

// Driver walks the statements of a program, handling control flow itself and
// delegating everything else to a backend.  Jump targets are numbered in the
// order they are reserved by statements (see Count), such that the target of
// every forward jump is known before the code it skips is emitted.
type Driver struct {
	backend Backend
	out     *amd64.Program
	// Next jump target to be placed.
	next uint
}

// GenerateAll emits a sequence of statements.
func (p *Driver) GenerateAll(stmts []stmt.Stmt) *source.SyntaxError {
	for _, s := range stmts {
		if err := p.Generate(s); err != nil {
			return err
		}
	}
	//
	return nil
}

// Generate emits a single statement, preceded by its jump target.
func (p *Driver) Generate(s stmt.Stmt) *source.SyntaxError {
	var start = p.place()
	//
	switch s := s.(type) {
	case *stmt.Assign:
		return p.backend.Assign(s)
	case *stmt.Read:
		return p.backend.Read(s)
	case *stmt.Write:
		return p.backend.Write(s)
	case *stmt.Call:
		return nil
	case *stmt.If:
		return p.generateIf(start, s)
	case *stmt.Repeat:
		return p.generateRepeat(start, s)
	default:
		panic("unknown statement")
	}
}

// A conditional starting at target k, with branches reserving t and f targets,
// is laid out as follows:
//
//	L<k>:     cmpq ...; j<not cond> L<k+1+t>
//	L<k+1>:   true branch; jmp L<k+2+t+f>
//	L<k+1+t>: false branch
//	L<k+2+t+f>:
//
// When there is no false branch, the jump and final target are omitted.
func (p *Driver) generateIf(start uint, s *stmt.If) *source.SyntaxError {
	var (
		t      = CountAll(s.TrueBranch)
		f      = CountAll(s.FalseBranch)
		orElse = start + 1 + t
		end    = orElse + 1 + f
	)
	//
	if err := p.backend.Compare(s.Condition); err != nil {
		return err
	}
	//
	p.out.Emit(Jump(s.Condition.Relation.Negate()), amd64.Symbol(Label(orElse)))
	//
	if err := p.GenerateAll(s.TrueBranch); err != nil {
		return err
	} else if len(s.FalseBranch) > 0 {
		p.out.Emit(amd64.JMP, amd64.Symbol(Label(end)))
	}
	//
	p.check(orElse)
	p.place()
	//
	if len(s.FalseBranch) > 0 {
		if err := p.GenerateAll(s.FalseBranch); err != nil {
			return err
		}
		//
		p.check(end)
		p.place()
	}
	//
	return nil
}

// A loop starting at target k jumps back to L<k> whilst its condition does not
// hold.
func (p *Driver) generateRepeat(start uint, s *stmt.Repeat) *source.SyntaxError {
	if err := p.GenerateAll(s.Body); err != nil {
		return err
	} else if err := p.backend.Compare(s.Until); err != nil {
		return err
	}
	//
	p.out.Emit(Jump(s.Until.Relation.Negate()), amd64.Symbol(Label(start)))
	//
	return nil
}

// Place the next jump target at the current position, returning its number.
func (p *Driver) place() uint {
	var n = p.next
	//
	p.out.Label(Label(n))
	p.next++
	//
	return n
}

// Check the next jump target is the one expected.  A mismatch indicates Count
// is inconsistent with the code generated.
func (p *Driver) check(expected uint) {
	if p.next != expected {
		panic(fmt.Sprintf("inconsistent jump target (expected L%d, was L%d)", expected, p.next))
	}
}
