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

	"github.com/consensys/go-simple/pkg/util/assert"
	"github.com/consensys/go-simple/pkg/util/source"
)

func Test_Lexer_TokenName(t *testing.T) {
	assert.Equal(t, "KEYWORD_PROGRAM", TokenName(KEYWORD_PROGRAM))
	assert.Equal(t, "IDENTIFIER", TokenName(IDENTIFIER))
	assert.Equal(t, "GREATER_THAN_EQUALS", TokenName(GREATER_THAN_EQUALS))
	assert.Equal(t, "END_OF", TokenName(END_OF))
	assert.Equal(t, "UNKNOWN(99)", TokenName(99))
	// Every lexed token has a name
	tokens, errs := Lex(source.NewSourceFile("test.simple", []byte(`PROGRAM p; CONST c = 1; TYPE T = RECORD
x: ARRAY 2 OF INTEGER END; VAR v: T; PROCEDURE f(a: INTEGER): INTEGER; RETURN a END f;
BEGIN IF c # 1 THEN v.x[0] := 1 ELSE REPEAT READ c UNTIL c >= 2 END END;
WHILE c <= 3 DO WRITE -c * 2 DIV 1 MOD 3 + 1 END; IF c < 1 THEN END; IF c > 1 THEN END END p.`)))
	//
	assert.Equal(t, 0, len(errs))
	//
	for _, token := range tokens {
		_, ok := tokenNames[token.Kind]
		assert.True(t, ok, "token kind %d has no name", token.Kind)
	}
}

func Test_Syntax_Procedure(t *testing.T) {
	root := checkSyntax(t, `PROGRAM p;
PROCEDURE f(x: INTEGER; a, b: A): INTEGER; VAR y: INTEGER; BEGIN g() RETURN x END f;
END p.`)
	//
	decls := root.Children[3]
	assert.Equal(t, "Declarations", decls.Symbol)
	assert.Equal(t, 1, len(decls.Children))
	//
	proc := decls.Children[0]
	assert.Equal(t, "ProcDecl", proc.Symbol)
	assert.Equal(t, []string{"PROCEDURE", "f", "(", "IdentifierList", ":", "Type", ";", "IdentifierList", ":",
		"Type", ")", ":", "Type", ";", "VAR", "VarDecl", "BEGIN", "Instructions", "RETURN", "Expression", "END",
		"f", ";"}, labels(proc))
}

func Test_Syntax_Record(t *testing.T) {
	root := checkSyntax(t, "PROGRAM p; TYPE R = RECORD x, y: INTEGER; z: ARRAY 2 OF R END; E = RECORD END; END p.")
	//
	decls := root.Children[3]
	assert.Equal(t, []string{"TYPE", "TypeDecl", "TypeDecl"}, labels(decls))
	assert.Equal(t, []string{"RECORD", "IdentifierList", ":", "Type", ";", "IdentifierList", ":", "Type", "END"},
		labels(decls.Children[1].Children[2]))
	assert.Equal(t, []string{"RECORD", "END"}, labels(decls.Children[2].Children[2]))
}

func Test_Syntax_Instructions(t *testing.T) {
	root := checkSyntax(t, "PROGRAM p; BEGIN ; x := 1;; IF x = 1 THEN f(1, 2) ELSE READ y END; END p.")
	//
	body := root.Children[5]
	assert.Equal(t, "Instructions", body.Symbol)
	assert.Equal(t, []string{";", "Instruction", ";", ";", "Instruction", ";"}, labels(body))
	assert.Equal(t, []string{"IF", "Condition", "THEN", "Instructions", "ELSE", "Instructions", "END"},
		labels(body.Children[4].Children[0]))
}

func Test_Syntax_Invalid_01(t *testing.T) {
	checkSyntaxError(t, "PROGRAM p; BEGIN x := 1 + END p.", "expected expression")
}

func Test_Syntax_Invalid_02(t *testing.T) {
	checkSyntaxError(t, "PROGRAM p; BEGIN IF x THEN END END p.", "expected comparison")
}

func Test_Syntax_Invalid_03(t *testing.T) {
	checkSyntaxError(t, "PROGRAM p; VAR x: 1; END p.", "expected type")
}

func Test_Syntax_Invalid_04(t *testing.T) {
	checkSyntaxError(t, "PROGRAM p; BEGIN 1 END p.", "expected statement")
}

func Test_Syntax_Invalid_05(t *testing.T) {
	checkSyntaxError(t, "PROGRAM p; END p", "unexpected token")
}

func checkSyntax(t *testing.T, text string) *SyntaxNode {
	root, errs := ParseSyntax(source.NewSourceFile("test.simple", []byte(text)))
	//
	if len(errs) > 0 {
		t.Fatalf("unexpected error: %s", errs[0].Message())
	}
	//
	assert.Equal(t, "Program", root.Symbol)
	//
	return root
}

func checkSyntaxError(t *testing.T, text string, msg string) {
	root, errs := ParseSyntax(source.NewSourceFile("test.simple", []byte(text)))
	//
	assert.True(t, root == nil)
	assert.Equal(t, 1, len(errs))
	assert.Equal(t, msg, errs[0].Message())
}

// Labels of the children of a given node, using the text of terminals.
func labels(node *SyntaxNode) []string {
	var labels []string
	//
	for _, child := range node.Children {
		if child.Terminal {
			labels = append(labels, child.Text)
		} else {
			labels = append(labels, child.Symbol)
		}
	}
	//
	return labels
}
