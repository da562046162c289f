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
package codegen_test

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/simple/codegen/fixed"
	"github.com/consensys/go-simple/pkg/simple/codegen/pooled"
	"github.com/consensys/go-simple/pkg/simple/compiler"
	"github.com/consensys/go-simple/pkg/simple/interpreter"
	"github.com/consensys/go-simple/pkg/simple/machine"
	"github.com/consensys/go-simple/pkg/util/assert"
	"github.com/consensys/go-simple/pkg/util/source"
)

// Available backends, indexed by name.
var BACKENDS = map[string]func(*source.Map[any]) codegen.Backend{
	"fixed":  func(srcmap *source.Map[any]) codegen.Backend { return fixed.New(srcmap) },
	"pooled": func(srcmap *source.Map[any]) codegen.Backend { return pooled.New(srcmap) },
}

// ===================================================================
// Layout
// ===================================================================

func Test_Layout_Consistency(t *testing.T) {
	program, _ := parse(t, `PROGRAM p;
TYPE R = RECORD x, y: INTEGER END;
VAR a: ARRAY 3 OF R; b: INTEGER; c: ARRAY 2 OF ARRAY 2 OF INTEGER;
END p.`)
	//
	layout := codegen.PlanLayout(program.Variables)
	leaves := layout.Leaves()
	//
	assert.Equal(t, uint(11*8), layout.Size())
	assert.Equal(t, 11, len(leaves))
	// Leaves are one word apart, in order
	for i, leaf := range leaves {
		assert.Equal(t, uint(i*8), leaf.Offset)
		//
		offset, ok := layout.Lookup(leaf.Path)
		assert.True(t, ok)
		assert.Equal(t, leaf.Offset, offset)
	}
	//
	checkLookup(t, layout, "a", 0)
	checkLookup(t, layout, "a[1]", 16)
	checkLookup(t, layout, "a[2].y", 40)
	checkLookup(t, layout, "b", 48)
	checkLookup(t, layout, "c[1]", 72)
	checkLookup(t, layout, "c[1][1]", 80)
	// Variables record the offset of their first leaf
	for i, expected := range []uint{0, 48, 56} {
		offset, ok := program.Variables[i].Offset()
		assert.True(t, ok)
		assert.Equal(t, expected, offset)
	}
	// Out of range paths
	_, ok := layout.Lookup("a[3]")
	assert.False(t, ok)
	_, ok = layout.Lookup("c[0][2]")
	assert.False(t, ok)
}

func Test_Layout_EmptyRecord(t *testing.T) {
	program, _ := parse(t, `PROGRAM p;
TYPE E = RECORD END;
VAR r: E; a: ARRAY 2 OF E; b: RECORD e: E; x: INTEGER END; c: ARRAY 1 OF INTEGER;
END p.`)
	//
	layout := codegen.PlanLayout(program.Variables)
	//
	assert.Equal(t, uint(16), layout.Size())
	assert.Equal(t, 2, len(layout.Leaves()))
	// Paths without leaves still resolve
	checkLookup(t, layout, "r", 0)
	checkLookup(t, layout, "a", 0)
	checkLookup(t, layout, "a[1]", 0)
	checkLookup(t, layout, "b.e", 0)
	checkLookup(t, layout, "b.x", 0)
	checkLookup(t, layout, "c", 8)
	checkLookup(t, layout, "c[0]", 8)
	//
	_, ok := layout.Lookup("a[2]")
	assert.False(t, ok)
}

func Test_Layout_Determinism(t *testing.T) {
	program, _ := parse(t, `PROGRAM p;
VAR a, b: ARRAY 4 OF RECORD x: INTEGER; y: ARRAY 2 OF INTEGER END;
END p.`)
	//
	first := codegen.PlanLayout(program.Variables)
	second := codegen.PlanLayout(program.Variables)
	//
	assert.Equal(t, first.Leaves(), second.Leaves())
	assert.Equal(t, uint(2*4*3*8), first.Size())
}

func Test_Layout_Mangle(t *testing.T) {
	assert.Equal(t, "v_x", codegen.Mangle("x"))
	assert.Equal(t, "v_a_0_x", codegen.Mangle("a[0].x"))
	assert.Equal(t, "v_m_1_2", codegen.Mangle("m[1][2]"))
}

func Test_Layout_Print(t *testing.T) {
	var builder strings.Builder
	//
	program, _ := parse(t, "PROGRAM p; VAR a: ARRAY 2 OF INTEGER; END p.")
	codegen.PlanLayout(program.Variables).Print(&builder, 80)
	//
	assert.Contains(t, builder.String(), "a[1]")
	assert.Contains(t, builder.String(), "v_a_1")
}

// ===================================================================
// Jump Targets
// ===================================================================

func Test_Count_01(t *testing.T) {
	program, _ := parse(t, `PROGRAM p; VAR x: INTEGER;
BEGIN x := 1; WRITE x; READ x END p.`)
	//
	assert.Equal(t, uint(3), codegen.CountAll(program.Body))
}

func Test_Count_02(t *testing.T) {
	program, _ := parse(t, `PROGRAM p; VAR x: INTEGER;
BEGIN
  IF x = 1 THEN x := 2 END;
  IF x = 1 THEN x := 2; x := 3 ELSE x := 4 END;
  REPEAT x := x + 1 UNTIL x > 9 END
END p.`)
	//
	assert.Equal(t, uint(3), codegen.Count(program.Body[0]))
	assert.Equal(t, uint(6), codegen.Count(program.Body[1]))
	assert.Equal(t, uint(2), codegen.Count(program.Body[2]))
}

func Test_Count_While(t *testing.T) {
	program, _ := parse(t, `PROGRAM p; VAR x: INTEGER;
BEGIN WHILE x < 3 DO x := x + 1 END END p.`)
	// If containing a repeat
	assert.Equal(t, uint(4), codegen.Count(program.Body[0]))
}

func Test_Driver_Labels(t *testing.T) {
	for name := range BACKENDS {
		listing := generate(t, name, `PROGRAM p; VAR x, y: INTEGER;
BEGIN
  READ x;
  IF x > 0 THEN
    IF x > 10 THEN WRITE 10 ELSE WRITE x END
  ELSE
    WHILE x < 0 DO
      REPEAT y := y + 1; IF y = 3 THEN WRITE y END UNTIL y > 5 END;
      x := x + 1
    END
  END;
  IF x = y THEN END
END p.`)
		//
		checkLabels(t, listing)
	}
}

// ===================================================================
// Backends
// ===================================================================

func Test_Backend_Arithmetic(t *testing.T) {
	checkOutput(t, `PROGRAM p; VAR x, y, z: INTEGER;
BEGIN
  x := 7; y := 2; z := -7;
  WRITE x DIV y; WRITE x MOD y; WRITE z DIV y; WRITE z MOD y;
  WRITE x - y * 3; WRITE 100 - x; WRITE 100 DIV x; WRITE (x + y) * (x - y);
  WRITE 3000000000 + x; WRITE x * 3000000000
END p.`, "", "3\n1\n-3\n-1\n1\n93\n14\n45\n3000000007\n21000000000\n")
}

func Test_Backend_Conditions(t *testing.T) {
	checkOutput(t, `PROGRAM p; VAR x: INTEGER;
BEGIN
  x := -3;
  IF x < 0 THEN WRITE 1 ELSE WRITE 2 END;
  IF x >= -3 THEN WRITE 3 END;
  IF 0 # x THEN WRITE 4 END;
  IF 1 = 1 THEN WRITE 5 ELSE WRITE 6 END;
  IF x > 3000000000 THEN WRITE 7 ELSE WRITE 8 END
END p.`, "", "1\n3\n4\n5\n8\n")
}

func Test_Backend_Loops(t *testing.T) {
	checkOutput(t, `PROGRAM p; VAR i, s: INTEGER;
BEGIN
  i := 1;
  WHILE i <= 10 DO s := s + i; i := i + 1 END;
  WRITE s;
  REPEAT i := i - 3 UNTIL i < 0 END;
  WRITE i
END p.`, "", "55\n-1\n")
}

func Test_Backend_Arrays(t *testing.T) {
	checkOutput(t, `PROGRAM p;
TYPE P = RECORD x, y: INTEGER END;
VAR a: ARRAY 5 OF INTEGER; b, c: ARRAY 3 OF P; m: ARRAY 3 OF ARRAY 3 OF INTEGER; i, j: INTEGER;
BEGIN
  i := 0;
  WHILE i < 5 DO a[i] := i * i; i := i + 1 END;
  WRITE a[4]; WRITE a[a[2]];
  b[1].x := 7; b[2].y := 9; c := b;
  WRITE c[1].x + c[2].y;
  i := 0;
  REPEAT
    j := 0;
    REPEAT m[i][j] := i * 3 + j; j := j + 1 UNTIL j = 3 END;
    i := i + 1
  UNTIL i = 3 END;
  WRITE m[2][1]; WRITE m[1][m[0][2]]
END p.`, "", "16\n16\n16\n7\n5\n")
}

func Test_Backend_EmptyRecord_01(t *testing.T) {
	checkOutput(t, `PROGRAM e; TYPE E = RECORD END; VAR r, s: E; x: INTEGER;
BEGIN r := s; x := 1; WRITE x END e.`, "", "1\n")
}

func Test_Backend_EmptyRecord_02(t *testing.T) {
	checkOutput(t, `PROGRAM e; TYPE E = RECORD END; VAR a: ARRAY 2 OF E; x, i: INTEGER;
BEGIN a[0] := a[1]; i := 1; a[i] := a[0]; x := 2; WRITE x END e.`, "", "2\n")
}

func Test_Backend_Read(t *testing.T) {
	checkOutput(t, `PROGRAM p; VAR a: ARRAY 2 OF INTEGER; i: INTEGER;
BEGIN READ i; READ a[i]; WRITE a[1] * 2 END p.`, "1 21", "42\n")
}

func Test_Backend_OutOfRange_01(t *testing.T) {
	checkCompileError(t, `PROGRAM p; VAR a: ARRAY 5 OF INTEGER;
BEGIN a[5] := 1 END p.`, "array index out of range in a[5]")
}

func Test_Backend_OutOfRange_02(t *testing.T) {
	checkCompileError(t, `PROGRAM p; VAR a: ARRAY 3 OF INTEGER; x: INTEGER;
BEGIN x := a[3] END p.`, "array index out of range in a[3]")
}

func Test_Backend_OutOfRange_03(t *testing.T) {
	checkCompileError(t, `PROGRAM p; VAR a: ARRAY 3 OF ARRAY 2 OF INTEGER; i: INTEGER;
BEGIN WRITE a[i][-1] END p.`, "array index out of range in a[i][-1]")
}

func Test_Backend_Unsupported(t *testing.T) {
	checkCompileError(t, `PROGRAM p; VAR x: INTEGER;
PROCEDURE f(): INTEGER; RETURN 1 END f;
BEGIN x := f() END p.`, "unsupported construct f()")
}

func Test_Backend_RuntimeBounds(t *testing.T) {
	for name := range BACKENDS {
		listing := generate(t, name, `PROGRAM p; VAR a: ARRAY 3 OF INTEGER; i: INTEGER;
BEGIN
  i := 2; a[i] := 1; WRITE a[i];
  i := i + 1;
  a[i] := 2;
  WRITE 0
END p.`)
		status, out, errs := execute(t, listing, "")
		//
		assert.Equal(t, 1, status, name)
		assert.Equal(t, "1\n", out, name)
		assert.Contains(t, errs, "out of range at 5:3")
	}
}

func Test_Backend_NegativeIndex(t *testing.T) {
	for name := range BACKENDS {
		listing := generate(t, name, `PROGRAM p; VAR a: ARRAY 3 OF INTEGER; i: INTEGER;
BEGIN i := -1; WRITE a[i] END p.`)
		status, _, errs := execute(t, listing, "")
		//
		assert.Equal(t, 1, status, name)
		assert.Contains(t, errs, "error: array index")
	}
}

func Test_Backend_Determinism(t *testing.T) {
	var text = `PROGRAM p; VAR a: ARRAY 4 OF INTEGER; i: INTEGER;
BEGIN REPEAT a[i] := i * (i + 1); i := i + 1 UNTIL i = 4 END END p.`
	//
	for name := range BACKENDS {
		assert.Equal(t, listing(t, generate(t, name, text)), listing(t, generate(t, name, text)))
	}
}

func Test_Backend_Procedures(t *testing.T) {
	// Procedure calls generate no code
	checkOutput(t, `PROGRAM p; VAR x: INTEGER;
PROCEDURE q(y: INTEGER); VAR z: INTEGER; BEGIN z := y END q;
BEGIN x := 3; q(x); WRITE x END p.`, "", "3\n")
}

func Test_Backend_Spilling(t *testing.T) {
	var (
		builder strings.Builder
		text    string
	)
	//
	builder.WriteString("PROGRAM p; VAR x, y, z: INTEGER;\nBEGIN x := 3; y := -2; z := 5;\n  WRITE ")
	builder.WriteString(tree(8, 0))
	builder.WriteString(";\n  IF ")
	builder.WriteString(tree(7, 1))
	builder.WriteString(" > ")
	builder.WriteString(tree(7, 2))
	builder.WriteString(" THEN WRITE 1 ELSE WRITE 0 END\nEND p.")
	text = builder.String()
	//
	checkSpills(t, text)
	checkOutput(t, text, "", interpret(t, text, ""))
}

func Test_Backend_SpillingProgram(t *testing.T) {
	bytes, err := os.ReadFile("../../../testdata/simple/spill.simple")
	//
	assert.NoError(t, err)
	checkSpills(t, string(bytes))
}

// ===================================================================
// Test Helpers
// ===================================================================

// Construct a balanced expression tree of a given depth.
func tree(depth uint, seed uint) string {
	var (
		leaves    = []string{"x", "y", "z", "(x DIV y)", "(z MOD x)"}
		operators = []string{"+", "-", "*"}
	)
	//
	if depth == 0 {
		return leaves[seed%uint(len(leaves))]
	}
	//
	return fmt.Sprintf("(%s %s %s)", tree(depth-1, seed+1), operators[(depth+seed)%3], tree(depth-1, seed+2))
}

func parse(t *testing.T, text string) (*ast.Program, *source.Map[any]) {
	var (
		srcfile               = source.NewSourceFile("test.simple", []byte(text))
		program, srcmap, errs = compiler.Compile(srcfile)
	)
	//
	for _, err := range errs {
		t.Error(err.Message())
	}
	//
	if len(errs) > 0 {
		t.FailNow()
	}
	//
	return program, srcmap
}

func generate(t *testing.T, backend string, text string) *amd64.Program {
	program, srcmap := parse(t, text)
	listing, errs := codegen.Generate(program, BACKENDS[backend](srcmap))
	//
	for _, err := range errs {
		t.Errorf("%s backend: %s", backend, err.Message())
	}
	//
	if len(errs) > 0 {
		t.FailNow()
	}
	//
	return listing
}

func execute(t *testing.T, program *amd64.Program, input string) (int, string, string) {
	var out, errs strings.Builder
	//
	m, err := machine.New(program, strings.NewReader(input), &out, &errs)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	m.SetLimit(1_000_000)
	status, err := m.Run()
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return status, out.String(), errs.String()
}

func interpret(t *testing.T, text string, input string) string {
	var (
		out             strings.Builder
		program, srcmap = parse(t, text)
	)
	//
	if err := interpreter.New(program, srcmap, strings.NewReader(input), &out).Run(); err != nil {
		t.Fatal(err)
	}
	//
	return out.String()
}

func listing(t *testing.T, program *amd64.Program) string {
	var builder strings.Builder
	//
	_, err := program.WriteTo(&builder)
	assert.NoError(t, err)
	//
	return builder.String()
}

// Check a program produces the expected output on every backend, and under the
// interpreter.
func checkOutput(t *testing.T, text string, input string, expected string) {
	assert.Equal(t, expected, interpret(t, text, input), "interpreter")
	//
	for name := range BACKENDS {
		status, out, errs := execute(t, generate(t, name, text), input)
		//
		assert.Equal(t, 0, status, "%s backend (%s)", name, errs)
		assert.Equal(t, expected, out, "%s backend", name)
		checkLabels(t, generate(t, name, text))
	}
}

// Check that the pooled backend spills at least one value for a given program.
func checkSpills(t *testing.T, text string) {
	program, srcmap := parse(t, text)
	backend := pooled.New(srcmap)
	//
	if _, errs := codegen.Generate(program, backend); len(errs) > 0 {
		t.Fatal(errs[0].Message())
	}
	//
	assert.True(t, backend.Pool().HighWater() > 0, "expected spills")
	assert.False(t, backend.Pool().Busy())
}

func checkCompileError(t *testing.T, text string, msg string) {
	for name, backend := range BACKENDS {
		program, srcmap := parse(t, text)
		listing, errs := codegen.Generate(program, backend(srcmap))
		//
		assert.True(t, listing == nil, "%s backend", name)
		assert.Equal(t, 1, len(errs), "%s backend", name)
		assert.Equal(t, msg, errs[0].Message(), "%s backend", name)
	}
}

// Check every label is defined exactly once, and every jump target is defined.
func checkLabels(t *testing.T, program *amd64.Program) {
	var labels = make(map[string]bool)
	//
	for _, s := range program.Text() {
		if l, ok := s.(*amd64.Label); ok {
			assert.False(t, labels[l.Name], "label %s defined twice", l.Name)
			labels[l.Name] = true
		}
	}
	//
	for _, s := range program.Text() {
		if insn, ok := s.(*amd64.Instruction); ok && insn.Opcode.IsJump() {
			target := string(insn.Operand(0).(amd64.Symbol))
			assert.True(t, labels[target], "jump target %s undefined", target)
		}
	}
}

func checkLookup(t *testing.T, layout *codegen.Layout, path string, expected uint) {
	offset, ok := layout.Lookup(path)
	//
	assert.True(t, ok, "path %s not found", path)
	assert.Equal(t, expected, offset)
}
