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
package compiler

import (
	"testing"

	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/simple/ast/data"
	"github.com/consensys/go-simple/pkg/simple/ast/expr"
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
	"github.com/consensys/go-simple/pkg/util/assert"
	"github.com/consensys/go-simple/pkg/util/source"
)

func Test_Parser_Empty(t *testing.T) {
	program := checkValid(t, "PROGRAM p; END p.")
	//
	assert.Equal(t, "p", program.Name)
	assert.Equal(t, 0, len(program.Body))
}

func Test_Parser_Comments(t *testing.T) {
	program := checkValid(t, "(* test *) PROGRAM p; (* nothing\n here *) END p.")
	//
	assert.Equal(t, "p", program.Name)
}

func Test_Parser_Folding_01(t *testing.T) {
	program := checkValid(t, "PROGRAM p; CONST n = 2 * 3 + 1; VAR x: INTEGER; BEGIN x := n END p.")
	//
	checkNumber(t, program.Body[0].(*stmt.Assign).Source, 7)
}

func Test_Parser_Folding_02(t *testing.T) {
	program := checkValid(t, "PROGRAM p; VAR x: INTEGER; BEGIN x := -(7 DIV 2) + 7 MOD 2 END p.")
	//
	checkNumber(t, program.Body[0].(*stmt.Assign).Source, -2)
}

func Test_Parser_Folding_03(t *testing.T) {
	program := checkValid(t, "PROGRAM p; CONST n = (-7) DIV 2; VAR x: INTEGER; BEGIN x := n END p.")
	//
	checkNumber(t, program.Body[0].(*stmt.Assign).Source, -3)
}

func Test_Parser_Binary(t *testing.T) {
	program := checkValid(t, "PROGRAM p; VAR x: INTEGER; BEGIN x := x * 2 + 1 END p.")
	//
	e, ok := program.Body[0].(*stmt.Assign).Source.(*expr.Binary)
	//
	assert.True(t, ok)
	assert.Equal(t, expr.ADD, e.Operator)
	assert.Equal(t, "(x * 2) + 1", e.String())
}

func Test_Parser_While(t *testing.T) {
	program := checkValid(t, "PROGRAM p; VAR x: INTEGER; BEGIN WHILE x < 10 DO x := x + 1 END END p.")
	//
	ith, ok := program.Body[0].(*stmt.If)
	assert.True(t, ok)
	assert.Equal(t, 0, len(ith.FalseBranch))
	//
	loop, ok := ith.TrueBranch[0].(*stmt.Repeat)
	assert.True(t, ok)
	assert.Equal(t, expr.LT, ith.Condition.Relation)
	assert.Equal(t, expr.GTEQ, loop.Until.Relation)
}

func Test_Parser_EmptyStatements(t *testing.T) {
	program := checkValid(t, "PROGRAM p; VAR x: INTEGER; BEGIN x := 1; ; WRITE x; END p.")
	//
	assert.Equal(t, 2, len(program.Body))
}

func Test_Parser_Record(t *testing.T) {
	program := checkValid(t, `PROGRAM p;
TYPE R = RECORD x, y: INTEGER; a: ARRAY 3 OF INTEGER; z: INTEGER END;
VAR r: R;
BEGIN r.z := r.a[2] END p.`)
	//
	record := program.Variables[0].Type().(*data.Record)
	//
	assert.Equal(t, uint(48), record.Size())
	assert.Equal(t, uint(8), record.Fields[1].Offset)
	assert.Equal(t, uint(16), record.Fields[2].Offset)
	assert.Equal(t, uint(40), record.Fields[3].Offset)
}

func Test_Parser_MultiIndex(t *testing.T) {
	program := checkValid(t, `PROGRAM p;
VAR a: ARRAY 2 OF ARRAY 3 OF INTEGER; i: INTEGER;
BEGIN a[1, i] := a[0][2] END p.`)
	//
	assign := program.Body[0].(*stmt.Assign)
	//
	assert.Equal(t, "a[1][i]", assign.Target.String())
	assert.True(t, assign.Source.(expr.Location).IsStatic())
	assert.False(t, assign.Target.IsStatic())
}

func Test_Parser_TypeEquivalence(t *testing.T) {
	checkValid(t, "PROGRAM p; TYPE A = ARRAY 3 OF INTEGER; VAR a, b: A; BEGIN a := b END p.")
}

func Test_Parser_Procedure_01(t *testing.T) {
	program := checkValid(t, `PROGRAM p;
PROCEDURE twice(x: INTEGER): INTEGER; RETURN x * 2 END twice;
BEGIN WRITE twice(3) END p.`)
	//
	assert.Equal(t, 1, len(program.Procedures))
	assert.True(t, program.Procedures[0].IsFunction())
	//
	_, ok := program.Body[0].(*stmt.Write).Source.(*expr.Function)
	assert.True(t, ok)
}

func Test_Parser_Procedure_02(t *testing.T) {
	program := checkValid(t, `PROGRAM p;
VAR n: INTEGER;
PROCEDURE fact(x: INTEGER): INTEGER;
  VAR r: INTEGER;
  BEGIN IF x > 1 THEN r := x * fact(x - 1) ELSE r := 1 END
  RETURN r
END fact;
PROCEDURE show(x: INTEGER); BEGIN WRITE x END show;
BEGIN n := fact(5); show(n) END p.`)
	//
	assert.Equal(t, 2, len(program.Procedures))
	assert.Equal(t, 1, len(program.Procedures[0].Locals))
	//
	_, ok := program.Body[1].(*stmt.Call)
	assert.True(t, ok)
}

func Test_Parser_SourceMap(t *testing.T) {
	var (
		text                  = "PROGRAM p; VAR x: INTEGER; BEGIN x := 3 + 4 END p."
		srcfile               = source.NewSourceFile("test.simple", []byte(text))
		program, srcmap, errs = Compile(srcfile)
	)
	//
	assert.Equal(t, 0, len(errs))
	//
	assign := program.Body[0]
	assert.Equal(t, "x := 3 + 4", srcfile.Text(srcmap.Get(assign)))
	assert.Equal(t, "3 + 4", srcfile.Text(srcmap.Get(assign.(*stmt.Assign).Source)))
}

// ===================================================================
// Invalid Programs
// ===================================================================

func Test_Parser_Invalid_01(t *testing.T) {
	checkInvalid(t, "PROGRAM p; VAR x: INTEGER; BEGIN x := y END p.", "y was never declared")
}

func Test_Parser_Invalid_02(t *testing.T) {
	checkInvalid(t, "PROGRAM p; END q.", "program identifiers p and q do not match")
}

func Test_Parser_Invalid_03(t *testing.T) {
	checkInvalid(t, "PROGRAM p; VAR x: INTEGER; BEGIN x := 1 DIV 0 END p.", "expression 0 divides by zero")
}

func Test_Parser_Invalid_04(t *testing.T) {
	checkInvalid(t, "PROGRAM p; VAR x: INTEGER; BEGIN x := 1 MOD (2 - 2) END p.", "expression 0 mods by zero")
}

func Test_Parser_Invalid_05(t *testing.T) {
	checkInvalid(t, "PROGRAM p; VAR x: INTEGER; a: ARRAY 2 OF INTEGER; BEGIN x := a END p.",
		"expressions x and a are not of the same type")
}

func Test_Parser_Invalid_06(t *testing.T) {
	checkInvalid(t, "PROGRAM p; VAR x: INTEGER; x: INTEGER; END p.", "x already declared in this scope")
}

func Test_Parser_Invalid_07(t *testing.T) {
	checkInvalid(t, "PROGRAM p; VAR x: INTEGER; BEGIN x[1] := 0 END p.", "x is not an array")
}

func Test_Parser_Invalid_08(t *testing.T) {
	checkInvalid(t, "PROGRAM p; TYPE R = RECORD x: INTEGER END; VAR r: R; BEGIN r.y := 0 END p.",
		"record r does not contain field y")
}

func Test_Parser_Invalid_09(t *testing.T) {
	checkInvalid(t, "PROGRAM p; VAR x: INTEGER; a: ARRAY x OF INTEGER; END p.", "expression x is not a positive constant")
}

func Test_Parser_Invalid_10(t *testing.T) {
	checkInvalid(t, "PROGRAM p; VAR a: ARRAY 0 OF INTEGER; END p.", "expression 0 is not a positive constant")
}

func Test_Parser_Invalid_11(t *testing.T) {
	checkInvalid(t, "PROGRAM p; PROCEDURE f(); RETURN 1 END f; END p.",
		"procedure f specified no return type but returns a value")
}

func Test_Parser_Invalid_12(t *testing.T) {
	checkInvalid(t, "PROGRAM p; PROCEDURE f(x: INTEGER); END f; BEGIN f(1, 2) END p.",
		"arguments do not match procedure f(x: INTEGER)")
}

func Test_Parser_Invalid_13(t *testing.T) {
	checkInvalid(t, "PROGRAM p; VAR x: INTEGER; BEGIN x := 1 ! END p.", "unknown text encountered")
}

func Test_Parser_Invalid_14(t *testing.T) {
	checkInvalid(t, "PROGRAM p; (* open END p.", "unterminated comment")
}

func Test_Parser_Invalid_15(t *testing.T) {
	checkInvalid(t, "PROGRAM p; TYPE A = ARRAY 2 OF INTEGER; VAR a: A; BEGIN READ a END p.",
		"a is not a variable of type INTEGER")
}

func Test_Parser_Invalid_16(t *testing.T) {
	checkInvalid(t, "PROGRAM p; CONST c = 1; BEGIN c := 2 END p.", "expression 1 is not a location")
}

// Errors in separate statements are reported together.
func Test_Parser_Invalid_17(t *testing.T) {
	errs := compileErrors(t, "PROGRAM p; VAR x: INTEGER; BEGIN x := y; IF z = 1 THEN x := 1 END; x := w END p.")
	//
	assert.Equal(t, 3, len(errs))
	assert.Equal(t, "y was never declared", errs[0].Message())
	assert.Equal(t, "z was never declared", errs[1].Message())
	assert.Equal(t, "w was never declared", errs[2].Message())
}

// Errors in separate declarations are reported together.
func Test_Parser_Invalid_18(t *testing.T) {
	errs := compileErrors(t, "PROGRAM p; VAR x: T; y: INTEGER; y: INTEGER; BEGIN x := 1 END p.")
	//
	assert.True(t, len(errs) >= 2)
	assert.Equal(t, "T was never declared", errs[0].Message())
	assert.Equal(t, "y already declared in this scope", errs[1].Message())
}

// ===================================================================
// Test Helpers
// ===================================================================

func checkValid(t *testing.T, text string) *ast.Program {
	var (
		srcfile          = source.NewSourceFile("test.simple", []byte(text))
		program, _, errs = Compile(srcfile)
	)
	//
	for _, err := range errs {
		t.Error(err.Error())
	}
	//
	if len(errs) > 0 {
		t.FailNow()
	}
	//
	return program
}

func checkInvalid(t *testing.T, text string, msg string) {
	errs := compileErrors(t, text)
	//
	assert.Equal(t, msg, errs[0].Message())
}

func compileErrors(t *testing.T, text string) []source.SyntaxError {
	var (
		srcfile          = source.NewSourceFile("test.simple", []byte(text))
		program, _, errs = Compile(srcfile)
	)
	//
	if len(errs) == 0 {
		t.Fatalf("program should not have compiled")
	}
	//
	assert.True(t, program == nil)
	//
	return errs
}

func checkNumber(t *testing.T, e expr.Expr, value int64) {
	n, ok := e.(*expr.Number)
	//
	assert.True(t, ok, "expected number, got %s", e.String())
	assert.Equal(t, value, n.Value)
}
