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
	"bytes"
	"strings"
	"testing"

	"github.com/consensys/go-simple/pkg/simple/compiler"
	"github.com/consensys/go-simple/pkg/util/assert"
	"github.com/consensys/go-simple/pkg/util/source"
)

func Test_Interpreter_Arithmetic(t *testing.T) {
	checkOutput(t, "PROGRAM p; VAR x: INTEGER; BEGIN x := 3 + 4; WRITE x END p.", "", "7\n")
}

func Test_Interpreter_Division(t *testing.T) {
	checkOutput(t, `PROGRAM p; VAR x, y: INTEGER;
BEGIN x := 7; y := 2; WRITE x DIV y; WRITE x MOD y; x := -7; WRITE x DIV y; WRITE x MOD y END p.`,
		"", "3\n1\n-3\n-1\n")
}

func Test_Interpreter_Array(t *testing.T) {
	checkOutput(t, `PROGRAM p; VAR a: ARRAY 3 OF INTEGER;
BEGIN a[0] := 1; a[1] := 2; a[2] := a[0] + a[1]; WRITE a[2] END p.`, "", "3\n")
}

func Test_Interpreter_Record(t *testing.T) {
	checkOutput(t, `PROGRAM p; TYPE R = RECORD x, y: INTEGER END; VAR r: R;
BEGIN r.x := 1; r.y := 2; WRITE r.y END p.`, "", "2\n")
}

func Test_Interpreter_If(t *testing.T) {
	checkOutput(t, "PROGRAM p; BEGIN IF 1 = 1 THEN WRITE 5 ELSE WRITE 6 END END p.", "", "5\n")
}

func Test_Interpreter_While(t *testing.T) {
	checkOutput(t, `PROGRAM p; VAR i, s: INTEGER;
BEGIN i := 1; WHILE i <= 10 DO s := s + i; i := i + 1 END; WRITE s END p.`, "", "55\n")
}

func Test_Interpreter_Repeat(t *testing.T) {
	checkOutput(t, `PROGRAM p; VAR i: INTEGER;
BEGIN REPEAT WRITE i; i := i + 1 UNTIL i = 3 END END p.`, "", "0\n1\n2\n")
}

func Test_Interpreter_Read(t *testing.T) {
	checkOutput(t, `PROGRAM p; VAR x, y: INTEGER;
BEGIN READ x; READ y; WRITE x * y END p.`, "6 abc\n7\n", "42\n")
}

func Test_Interpreter_AggregateCopy(t *testing.T) {
	checkOutput(t, `PROGRAM p; TYPE A = ARRAY 2 OF INTEGER; VAR a, b: A;
BEGIN a[0] := 3; a[1] := 4; b := a; a[0] := 0; WRITE b[0]; WRITE b[1] END p.`, "", "3\n4\n")
}

func Test_Interpreter_Nested(t *testing.T) {
	checkOutput(t, `PROGRAM p;
TYPE R = RECORD v: INTEGER; w: ARRAY 2 OF INTEGER END;
VAR a: ARRAY 3 OF R; i: INTEGER;
BEGIN
  i := 0;
  WHILE i < 3 DO a[i].v := i; a[i].w[1] := i * 10; i := i + 1 END;
  WRITE a[2].v + a[1].w[1]
END p.`, "", "12\n")
}

func Test_Interpreter_Function(t *testing.T) {
	checkOutput(t, `PROGRAM p;
PROCEDURE fact(x: INTEGER): INTEGER;
  VAR r: INTEGER;
  BEGIN IF x > 1 THEN r := x * fact(x - 1) ELSE r := 1 END
  RETURN r
END fact;
BEGIN WRITE fact(5) END p.`, "", "120\n")
}

func Test_Interpreter_ByReference(t *testing.T) {
	checkOutput(t, `PROGRAM p;
TYPE A = ARRAY 2 OF INTEGER;
VAR x: INTEGER; a: A;
PROCEDURE inc(v: INTEGER); BEGIN v := v + 1 END inc;
PROCEDURE set(b: A); BEGIN b[1] := 9 END set;
BEGIN x := 1; inc(x); inc(x + 1); set(a); WRITE x; WRITE a[1] END p.`, "", "2\n9\n")
}

func Test_Interpreter_OutOfRange(t *testing.T) {
	err := checkError(t, `PROGRAM p; VAR a: ARRAY 3 OF INTEGER; i: INTEGER;
BEGIN i := 5; a[i] := 1 END p.`, "")
	//
	assert.Contains(t, err.Error(), "array index 5 out of range")
	assert.Contains(t, err.Error(), "test.simple:2:")
}

func Test_Interpreter_DivideByZero(t *testing.T) {
	err := checkError(t, "PROGRAM p; VAR x: INTEGER; BEGIN WRITE 1 DIV x END p.", "")
	//
	assert.Contains(t, err.Error(), "division by zero")
}

func Test_Interpreter_EndOfInput(t *testing.T) {
	err := checkError(t, "PROGRAM p; VAR x: INTEGER; BEGIN READ x END p.", "nope")
	//
	assert.Contains(t, err.Error(), ErrEndOfInput.Error())
}

// ===================================================================
// Test Helpers
// ===================================================================

func checkOutput(t *testing.T, text string, input string, expected string) {
	var output bytes.Buffer
	//
	err := run(t, text, input, &output)
	//
	assert.NoError(t, err)
	assert.Equal(t, expected, output.String())
}

func checkError(t *testing.T, text string, input string) error {
	var output bytes.Buffer
	//
	err := run(t, text, input, &output)
	//
	assert.True(t, err != nil, "program should have failed")
	//
	return err
}

func run(t *testing.T, text string, input string, output *bytes.Buffer) error {
	var (
		srcfile               = source.NewSourceFile("test.simple", []byte(text))
		program, srcmap, errs = compiler.Compile(srcfile)
	)
	//
	if len(errs) > 0 {
		t.Fatal(errs[0].Error())
	}
	//
	return New(program, srcmap, strings.NewReader(input), output).Run()
}
