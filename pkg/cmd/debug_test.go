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
package cmd

import (
	"strings"
	"testing"

	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/simple/compiler"
	"github.com/consensys/go-simple/pkg/util/assert"
	"github.com/consensys/go-simple/pkg/util/source"
)

func Test_Debug_Tokens(t *testing.T) {
	var builder strings.Builder
	//
	errs := writeTokens(&builder, sourceFile("PROGRAM p;\n  x := 10"))
	//
	assert.Equal(t, 0, len(errs))
	assert.True(t, strings.HasPrefix(builder.String(),
		"1:1\tKEYWORD_PROGRAM\t\"PROGRAM\"\n1:9\tIDENTIFIER\t\"p\"\n1:10\tSEMICOLON\t\";\"\n"))
	assert.Contains(t, builder.String(), "2:3\tIDENTIFIER\t\"x\"\n2:5\tASSIGN\t\":=\"\n2:8\tNUMBER\t\"10\"\n")
}

func Test_Debug_Parse_01(t *testing.T) {
	checkSyntax(t, "PROGRAM p; BEGIN WRITE 1 END p.", `Program
  KEYWORD_PROGRAM "PROGRAM"
  IDENTIFIER "p"
  SEMICOLON ";"
  Declarations
  KEYWORD_BEGIN "BEGIN"
  Instructions
    Instruction
      Write
        KEYWORD_WRITE "WRITE"
        Expression
          Term
            Factor
              NUMBER "1"
  KEYWORD_END "END"
  IDENTIFIER "p"
  PERIOD "."
  END_OF ""
`)
}

func Test_Debug_Parse_02(t *testing.T) {
	var (
		builder strings.Builder
		// Neither y nor f are declared.
		text = "PROGRAM p; VAR a: ARRAY 3 OF R; BEGIN a[1].x := f(y) END p."
	)
	// Only syntax is checked
	_, _, errs := compiler.Compile(sourceFile(text))
	assert.True(t, len(errs) > 0)
	//
	errs = writeSyntax(&builder, sourceFile(text), false)
	//
	assert.Equal(t, 0, len(errs))
	assert.Contains(t, builder.String(), `
      Assign
        Designator
          IDENTIFIER "a"
          Selector
            LSQUARE "["
            ExpressionList
`)
	assert.Contains(t, builder.String(), `
            Factor
              Function
                IDENTIFIER "f"
                LBRACE "("
                ExpressionList
`)
}

func Test_Debug_Parse_03(t *testing.T) {
	var builder strings.Builder
	//
	errs := writeSyntax(&builder, sourceFile("PROGRAM p; BEGIN x := END p."), false)
	//
	assert.Equal(t, 1, len(errs))
	assert.Equal(t, "expected expression", errs[0].Message())
	assert.Equal(t, "", builder.String())
}

func Test_Debug_ParseDot(t *testing.T) {
	var builder strings.Builder
	//
	errs := writeSyntax(&builder, sourceFile("PROGRAM p; END p."), true)
	//
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, `strict digraph CST {
  L0 [label="Program",shape=box]
  L1 [label="PROGRAM",shape=diamond]
  L0 -> L1
  L2 [label="p",shape=diamond]
  L0 -> L2
  L3 [label=";",shape=diamond]
  L0 -> L3
  L4 [label="Declarations",shape=box]
  L0 -> L4
  L5 [label="END",shape=diamond]
  L0 -> L5
  L6 [label="p",shape=diamond]
  L0 -> L6
  L7 [label=".",shape=diamond]
  L0 -> L7
  L8 [label="",shape=diamond]
  L0 -> L8
}
`, builder.String())
}

func Test_Debug_AstDot(t *testing.T) {
	var (
		builder    strings.Builder
		program, _ = compile(t, "PROGRAM p; VAR x: INTEGER; BEGIN IF x < 1 THEN x := 1 ELSE x := 2 END END p.")
	)
	//
	writeAst(&builder, program, true)
	//
	assert.True(t, strings.HasPrefix(builder.String(), "strict digraph AST {\n  L0 [label=\"PROGRAM p\",shape=box]\n"))
	assert.Contains(t, builder.String(), "L1 [label=\"VAR x: INTEGER\",shape=ellipse]\n  L0 -> L1\n")
	assert.Contains(t, builder.String(), "L2 [label=\"BEGIN\",shape=box]\n  L0 -> L2\n")
	assert.Contains(t, builder.String(), "[label=\"THEN\",shape=box]")
	assert.Contains(t, builder.String(), "[label=\"ELSE\",shape=box]")
	assert.True(t, strings.HasSuffix(builder.String(), "}\n"))
}

func Test_Debug_Ast(t *testing.T) {
	var (
		builder    strings.Builder
		program, _ = compile(t, "PROGRAM p; VAR x: INTEGER; BEGIN REPEAT x := x + 1 UNTIL x = 3 END END p.")
	)
	//
	writeAst(&builder, program, false)
	//
	assert.Contains(t, builder.String(), "PROGRAM p;\nVAR x: INTEGER;\nBEGIN\n  REPEAT\n")
	assert.Contains(t, builder.String(), "END p.\n")
}

func Test_Debug_SymbolsDot(t *testing.T) {
	var (
		builder    strings.Builder
		program, _ = compile(t, `PROGRAM p; CONST n = 2; TYPE A = ARRAY n OF INTEGER;
VAR a, b: A; PROCEDURE f(x: INTEGER): INTEGER; RETURN x END f; END p.`)
	)
	//
	ast.PrintSymbolsDot(&builder, program)
	// Types are shared between declarations
	assert.Equal(t, 1, strings.Count(builder.String(), "[label=\"INTEGER\",shape=box]"))
	assert.Equal(t, 1, strings.Count(builder.String(), "[label=\"ARRAY 2\",shape=box]"))
	assert.Equal(t, 3, strings.Count(builder.String(), "shape=circle"))
	assert.Contains(t, builder.String(), "[label=\"2\",shape=diamond]")
	assert.Contains(t, builder.String(), "[label=\"OF\"]")
	assert.Contains(t, builder.String(), "[label=\"returns\"]")
}

func checkSyntax(t *testing.T, text string, expected string) {
	var builder strings.Builder
	//
	errs := writeSyntax(&builder, sourceFile(text), false)
	//
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, expected, builder.String())
}

func compile(t *testing.T, text string) (*ast.Program, *source.Map[any]) {
	program, srcmap, errs := compiler.Compile(sourceFile(text))
	//
	if len(errs) > 0 {
		t.Fatalf("unexpected error: %s", errs[0].Message())
	}
	//
	return program, srcmap
}

func sourceFile(text string) *source.File {
	return source.NewSourceFile("test.simple", []byte(text))
}
