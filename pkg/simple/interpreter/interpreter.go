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
package interpreter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/simple/ast/data"
	"github.com/consensys/go-simple/pkg/simple/ast/expr"
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
	"github.com/consensys/go-simple/pkg/simple/ast/variable"
	"github.com/consensys/go-simple/pkg/util/collection/stack"
	"github.com/consensys/go-simple/pkg/util/source"
	log "github.com/sirupsen/logrus"
)

// ErrEndOfInput is returned when a READ statement finds no further input.
var ErrEndOfInput = errors.New("unexpected end of input")

// Interpreter executes a program directly from its abstract syntax tree.
// Integers are read from a given input stream, and written to a given output
// stream (one per line).
type Interpreter struct {
	program *ast.Program
	// Source mapping used for reporting runtime errors (if available).
	srcmap *source.Map[any]
	input  *bufio.Scanner
	output io.Writer
	// Storage for global variables
	globals map[*variable.Variable]Cells
	// Active procedure invocations
	callstack *stack.Stack[*Frame]
}

// New constructs an interpreter for a given program.  The source map can be
// nil, in which case runtime errors carry no position.
func New(program *ast.Program, srcmap *source.Map[any], input io.Reader, output io.Writer) *Interpreter {
	var (
		scanner = bufio.NewScanner(input)
		globals = make(map[*variable.Variable]Cells)
	)
	//
	scanner.Split(bufio.ScanWords)
	//
	for _, v := range program.Variables {
		globals[v] = Allocate(v.Type())
	}
	//
	return &Interpreter{program, srcmap, scanner, output, globals, stack.NewStack[*Frame]()}
}

// Run executes the main body of the program, returning an error if execution
// fails (e.g. an array index is out of range).
func (p *Interpreter) Run() error {
	log.Debugf("interpreting program %s", p.program.Name)
	//
	return p.executeAll(p.program.Body)
}

// Global returns the storage of a given global variable.  This is primarily
// useful for inspecting the final state of a program.
func (p *Interpreter) Global(name string) (Cells, bool) {
	for v, cells := range p.globals {
		if v.Name() == name {
			return cells, true
		}
	}
	//
	return nil, false
}

func (p *Interpreter) executeAll(stmts []stmt.Stmt) error {
	for _, s := range stmts {
		if err := p.execute(s); err != nil {
			return err
		}
	}
	//
	return nil
}

func (p *Interpreter) execute(s stmt.Stmt) error {
	switch s := s.(type) {
	case *stmt.Assign:
		return p.executeAssign(s)
	case *stmt.If:
		return p.executeIf(s)
	case *stmt.Repeat:
		return p.executeRepeat(s)
	case *stmt.Read:
		return p.executeRead(s)
	case *stmt.Write:
		return p.executeWrite(s)
	case *stmt.Call:
		_, err := p.invoke(s, s.Name, s.Args)
		return err
	default:
		panic("unreachable")
	}
}

func (p *Interpreter) executeAssign(s *stmt.Assign) error {
	target, err := p.locate(s.Target)
	//
	if err != nil {
		return err
	} else if data.IsInteger(s.Target.Type()) {
		var value int64
		//
		if value, err = p.evaluate(s.Source); err == nil {
			target[0] = value
		}
		//
		return err
	}
	// Aggregate source must be a location
	src, err := p.locate(s.Source.(expr.Location))
	//
	if err == nil {
		copy(target, src)
	}
	//
	return err
}

func (p *Interpreter) executeIf(s *stmt.If) error {
	holds, err := p.check(s.Condition)
	//
	if err != nil {
		return err
	} else if holds {
		return p.executeAll(s.TrueBranch)
	}
	//
	return p.executeAll(s.FalseBranch)
}

func (p *Interpreter) executeRepeat(s *stmt.Repeat) error {
	for {
		if err := p.executeAll(s.Body); err != nil {
			return err
		} else if holds, err := p.check(s.Until); err != nil || holds {
			return err
		}
	}
}

// Read the next integer from the input stream.  Tokens which are not integers
// are skipped.
func (p *Interpreter) executeRead(s *stmt.Read) error {
	target, err := p.locate(s.Target)
	//
	if err != nil {
		return err
	}
	//
	for p.input.Scan() {
		if value, err := strconv.ParseInt(p.input.Text(), 10, 64); err == nil {
			target[0] = value
			return nil
		}
		//
		log.Warnf("ignoring non-integer input \"%s\"", p.input.Text())
	}
	//
	if err = p.input.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	//
	return p.runtimeError(s, ErrEndOfInput.Error())
}

func (p *Interpreter) executeWrite(s *stmt.Write) error {
	value, err := p.evaluate(s.Source)
	//
	if err != nil {
		return err
	} else if _, err = fmt.Fprintln(p.output, value); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	//
	return nil
}

// Invoke a given procedure with the given arguments, returning its result (if
// it has one).  Arguments which are locations are passed by reference, and all
// others by value.
func (p *Interpreter) invoke(site any, name string, args []expr.Expr) (int64, error) {
	var (
		procedure = p.program.Procedure(name)
		cells     = make([]Cells, len(args))
		err       error
	)
	//
	if procedure == nil {
		panic(fmt.Sprintf("unknown procedure %s", name))
	}
	//
	for i, arg := range args {
		if loc, ok := arg.(expr.Location); ok {
			cells[i], err = p.locate(loc)
		} else {
			var value int64
			value, err = p.evaluate(arg)
			cells[i] = Cells{value}
		}
		//
		if err != nil {
			return 0, err
		}
	}
	//
	p.callstack.Push(NewFrame(procedure, cells))
	defer p.callstack.Pop()
	//
	if err = p.executeAll(procedure.Body); err != nil {
		return 0, err
	} else if procedure.Return != nil {
		return p.evaluate(procedure.Return)
	}
	//
	return 0, nil
}

func (p *Interpreter) check(cond expr.Condition) (bool, error) {
	lhs, err := p.evaluate(cond.Left)
	//
	if err != nil {
		return false, err
	}
	//
	rhs, err := p.evaluate(cond.Right)
	//
	if err != nil {
		return false, err
	}
	//
	return cond.Relation.Holds(lhs, rhs), nil
}

func (p *Interpreter) evaluate(e expr.Expr) (int64, error) {
	switch e := e.(type) {
	case *expr.Number:
		return e.Value, nil
	case *expr.Binary:
		return p.evaluateBinary(e)
	case *expr.Function:
		return p.invoke(e, e.Name, e.Args)
	case expr.Location:
		cells, err := p.locate(e)
		//
		if err != nil {
			return 0, err
		}
		//
		return cells[0], nil
	default:
		panic("unreachable")
	}
}

func (p *Interpreter) evaluateBinary(e *expr.Binary) (int64, error) {
	lhs, err := p.evaluate(e.Left)
	//
	if err != nil {
		return 0, err
	}
	//
	rhs, err := p.evaluate(e.Right)
	//
	if err != nil {
		return 0, err
	}
	//
	if value, ok := e.Operator.Evaluate(lhs, rhs); ok {
		return value, nil
	} else if e.Operator == expr.DIV {
		return 0, p.runtimeError(e, "division by zero")
	}
	//
	return 0, p.runtimeError(e, "modulus by zero")
}

// Locate the storage for a given location.
func (p *Interpreter) locate(l expr.Location) (Cells, error) {
	switch l := l.(type) {
	case *expr.VarAccess:
		return p.lookup(l.Variable), nil
	case *expr.Field:
		base, err := p.locate(l.Base)
		//
		if err != nil {
			return nil, err
		}
		//
		start := l.Field.Offset / data.WORD
		//
		return base[start : start+l.Field.Type.Size()/data.WORD], nil
	case *expr.Index:
		base, err := p.locate(l.Base)
		//
		if err != nil {
			return nil, err
		}
		//
		index, err := p.evaluate(l.Subscript)
		//
		if err != nil {
			return nil, err
		} else if index < 0 || index >= int64(l.Array.Length) {
			return nil, p.runtimeError(l, fmt.Sprintf("array index %d out of range", index))
		}
		//
		width := int64(l.Array.Element.Size() / data.WORD)
		//
		return base[index*width : (index+1)*width], nil
	default:
		panic("unreachable")
	}
}

func (p *Interpreter) lookup(v *variable.Variable) Cells {
	if !p.callstack.IsEmpty() {
		if cells, ok := p.callstack.Peek(0).Lookup(v); ok {
			return cells
		}
	}
	//
	if cells, ok := p.globals[v]; ok {
		return cells
	}
	//
	panic(fmt.Sprintf("unknown variable %s", v.Name()))
}

// Construct a runtime error for a given node, which includes its position when
// a source map is available.
func (p *Interpreter) runtimeError(node any, msg string) error {
	if p.srcmap != nil && p.srcmap.Has(node) {
		return p.srcmap.SyntaxError(node, msg)
	}
	//
	return errors.New(msg)
}
