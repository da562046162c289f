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
	"fmt"
	"slices"

	"github.com/consensys/go-simple/pkg/util/source"
	"github.com/consensys/go-simple/pkg/util/source/lex"
)

// END_OF signals "end of file"
const END_OF uint = 0

// WHITESPACE signals whitespace
const WHITESPACE uint = 1

// COMMENT signals "(* ... *)"
const COMMENT uint = 2

// LBRACE signals "("
const LBRACE uint = 3

// RBRACE signals ")"
const RBRACE uint = 4

// LSQUARE signals "["
const LSQUARE uint = 5

// RSQUARE signals "]"
const RSQUARE uint = 6

// COMMA signals ","
const COMMA uint = 7

// COLON signals ":"
const COLON uint = 8

// SEMICOLON signals ";"
const SEMICOLON uint = 9

// PERIOD signals "."
const PERIOD uint = 10

// NUMBER signals an integer number
const NUMBER uint = 11

// IDENTIFIER signals a user-defined name
const IDENTIFIER uint = 12

// ASSIGN signals ":="
const ASSIGN uint = 20

// EQUALS signals "="
const EQUALS uint = 21

// NOT_EQUALS signals "#"
const NOT_EQUALS uint = 22

// LESS_THAN signals "<"
const LESS_THAN uint = 23

// LESS_THAN_EQUALS signals "<="
const LESS_THAN_EQUALS uint = 24

// GREATER_THAN signals ">"
const GREATER_THAN uint = 25

// GREATER_THAN_EQUALS signals ">="
const GREATER_THAN_EQUALS uint = 26

// ADD signals "+"
const ADD uint = 27

// SUB signals "-"
const SUB uint = 28

// MUL signals "*"
const MUL uint = 29

// KEYWORD_PROGRAM signals "PROGRAM"
const KEYWORD_PROGRAM uint = 40

// KEYWORD_BEGIN signals "BEGIN"
const KEYWORD_BEGIN uint = 41

// KEYWORD_END signals "END"
const KEYWORD_END uint = 42

// KEYWORD_CONST signals "CONST"
const KEYWORD_CONST uint = 43

// KEYWORD_TYPE signals "TYPE"
const KEYWORD_TYPE uint = 44

// KEYWORD_VAR signals "VAR"
const KEYWORD_VAR uint = 45

// KEYWORD_PROCEDURE signals "PROCEDURE"
const KEYWORD_PROCEDURE uint = 46

// KEYWORD_ARRAY signals "ARRAY"
const KEYWORD_ARRAY uint = 47

// KEYWORD_OF signals "OF"
const KEYWORD_OF uint = 48

// KEYWORD_RECORD signals "RECORD"
const KEYWORD_RECORD uint = 49

// KEYWORD_DIV signals "DIV"
const KEYWORD_DIV uint = 50

// KEYWORD_MOD signals "MOD"
const KEYWORD_MOD uint = 51

// KEYWORD_IF signals "IF"
const KEYWORD_IF uint = 52

// KEYWORD_THEN signals "THEN"
const KEYWORD_THEN uint = 53

// KEYWORD_ELSE signals "ELSE"
const KEYWORD_ELSE uint = 54

// KEYWORD_REPEAT signals "REPEAT"
const KEYWORD_REPEAT uint = 55

// KEYWORD_UNTIL signals "UNTIL"
const KEYWORD_UNTIL uint = 56

// KEYWORD_WHILE signals "WHILE"
const KEYWORD_WHILE uint = 57

// KEYWORD_DO signals "DO"
const KEYWORD_DO uint = 58

// KEYWORD_READ signals "READ"
const KEYWORD_READ uint = 59

// KEYWORD_WRITE signals "WRITE"
const KEYWORD_WRITE uint = 60

// KEYWORD_RETURN signals "RETURN"
const KEYWORD_RETURN uint = 61

// Names of each token kind, as used when printing tokens.
var tokenNames = map[uint]string{
	END_OF:              "END_OF",
	WHITESPACE:          "WHITESPACE",
	COMMENT:             "COMMENT",
	LBRACE:              "LBRACE",
	RBRACE:              "RBRACE",
	LSQUARE:             "LSQUARE",
	RSQUARE:             "RSQUARE",
	COMMA:               "COMMA",
	COLON:               "COLON",
	SEMICOLON:           "SEMICOLON",
	PERIOD:              "PERIOD",
	NUMBER:              "NUMBER",
	IDENTIFIER:          "IDENTIFIER",
	ASSIGN:              "ASSIGN",
	EQUALS:              "EQUALS",
	NOT_EQUALS:          "NOT_EQUALS",
	LESS_THAN:           "LESS_THAN",
	LESS_THAN_EQUALS:    "LESS_THAN_EQUALS",
	GREATER_THAN:        "GREATER_THAN",
	GREATER_THAN_EQUALS: "GREATER_THAN_EQUALS",
	ADD:                 "ADD",
	SUB:                 "SUB",
	MUL:                 "MUL",
	KEYWORD_PROGRAM:     "KEYWORD_PROGRAM",
	KEYWORD_BEGIN:       "KEYWORD_BEGIN",
	KEYWORD_END:         "KEYWORD_END",
	KEYWORD_CONST:       "KEYWORD_CONST",
	KEYWORD_TYPE:        "KEYWORD_TYPE",
	KEYWORD_VAR:         "KEYWORD_VAR",
	KEYWORD_PROCEDURE:   "KEYWORD_PROCEDURE",
	KEYWORD_ARRAY:       "KEYWORD_ARRAY",
	KEYWORD_OF:          "KEYWORD_OF",
	KEYWORD_RECORD:      "KEYWORD_RECORD",
	KEYWORD_DIV:         "KEYWORD_DIV",
	KEYWORD_MOD:         "KEYWORD_MOD",
	KEYWORD_IF:          "KEYWORD_IF",
	KEYWORD_THEN:        "KEYWORD_THEN",
	KEYWORD_ELSE:        "KEYWORD_ELSE",
	KEYWORD_REPEAT:      "KEYWORD_REPEAT",
	KEYWORD_UNTIL:       "KEYWORD_UNTIL",
	KEYWORD_WHILE:       "KEYWORD_WHILE",
	KEYWORD_DO:          "KEYWORD_DO",
	KEYWORD_READ:        "KEYWORD_READ",
	KEYWORD_WRITE:       "KEYWORD_WRITE",
	KEYWORD_RETURN:      "KEYWORD_RETURN",
}

// TokenName returns the name of a given token kind (e.g. "IDENTIFIER").
func TokenName(kind uint) string {
	if name, ok := tokenNames[kind]; ok {
		return name
	}
	//
	return fmt.Sprintf("UNKNOWN(%d)", kind)
}

// Rule for describing whitespace
var whitespace lex.Scanner[rune] = lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t'), lex.Unit('\r'), lex.Unit('\n')))

// Rule for describing (decimal) numbers
var number lex.Scanner[rune] = lex.Many(lex.Within('0', '9'))

var letter lex.Scanner[rune] = lex.Or(
	lex.Within('a', 'z'),
	lex.Within('A', 'Z'))

// Rule for describing identifiers
var identifier lex.Scanner[rune] = lex.SequenceNullableLast(letter,
	lex.Many(lex.Or(letter, lex.Within('0', '9'))))

// Comments are enclosed in "(*" and "*)", and do not nest.
var comment lex.Scanner[rune] = lex.Between([]rune("(*"), []rune("*)"))

// lexing rules.  Keywords precede identifiers, such that a keyword wins when
// both match the same text.
var rules []lex.LexRule[rune] = []lex.LexRule[rune]{
	lex.Rule(comment, COMMENT),
	lex.Rule(lex.Unit('('), LBRACE),
	lex.Rule(lex.Unit(')'), RBRACE),
	lex.Rule(lex.Unit('['), LSQUARE),
	lex.Rule(lex.Unit(']'), RSQUARE),
	lex.Rule(lex.Unit(','), COMMA),
	lex.Rule(lex.Unit(':', '='), ASSIGN),
	lex.Rule(lex.Unit(':'), COLON),
	lex.Rule(lex.Unit(';'), SEMICOLON),
	lex.Rule(lex.Unit('.'), PERIOD),
	lex.Rule(lex.Unit('<', '='), LESS_THAN_EQUALS),
	lex.Rule(lex.Unit('>', '='), GREATER_THAN_EQUALS),
	lex.Rule(lex.Unit('<'), LESS_THAN),
	lex.Rule(lex.Unit('>'), GREATER_THAN),
	lex.Rule(lex.Unit('='), EQUALS),
	lex.Rule(lex.Unit('#'), NOT_EQUALS),
	lex.Rule(lex.Unit('+'), ADD),
	lex.Rule(lex.Unit('-'), SUB),
	lex.Rule(lex.Unit('*'), MUL),
	lex.Rule(whitespace, WHITESPACE),
	lex.Rule(number, NUMBER),
	lex.Rule(lex.String("PROGRAM"), KEYWORD_PROGRAM),
	lex.Rule(lex.String("BEGIN"), KEYWORD_BEGIN),
	lex.Rule(lex.String("END"), KEYWORD_END),
	lex.Rule(lex.String("CONST"), KEYWORD_CONST),
	lex.Rule(lex.String("TYPE"), KEYWORD_TYPE),
	lex.Rule(lex.String("VAR"), KEYWORD_VAR),
	lex.Rule(lex.String("PROCEDURE"), KEYWORD_PROCEDURE),
	lex.Rule(lex.String("ARRAY"), KEYWORD_ARRAY),
	lex.Rule(lex.String("OF"), KEYWORD_OF),
	lex.Rule(lex.String("RECORD"), KEYWORD_RECORD),
	lex.Rule(lex.String("DIV"), KEYWORD_DIV),
	lex.Rule(lex.String("MOD"), KEYWORD_MOD),
	lex.Rule(lex.String("IF"), KEYWORD_IF),
	lex.Rule(lex.String("THEN"), KEYWORD_THEN),
	lex.Rule(lex.String("ELSE"), KEYWORD_ELSE),
	lex.Rule(lex.String("REPEAT"), KEYWORD_REPEAT),
	lex.Rule(lex.String("UNTIL"), KEYWORD_UNTIL),
	lex.Rule(lex.String("WHILE"), KEYWORD_WHILE),
	lex.Rule(lex.String("DO"), KEYWORD_DO),
	lex.Rule(lex.String("READ"), KEYWORD_READ),
	lex.Rule(lex.String("WRITE"), KEYWORD_WRITE),
	lex.Rule(lex.String("RETURN"), KEYWORD_RETURN),
	lex.Rule(identifier, IDENTIFIER),
	lex.Rule(lex.Eof[rune](), END_OF),
}

// Lex a given source file into a sequence of zero or more tokens, along with
// any syntax errors arising.  Whitespace and comments are removed.
func Lex(srcfile *source.File) ([]lex.Token, []source.SyntaxError) {
	var (
		lexer = lex.NewLexer(srcfile.Contents(), rules...)
		// Lex as many tokens as possible
		tokens = lexer.Collect()
		errors []source.SyntaxError
	)
	// Check whether anything was left (if so this is an error)
	if lexer.Remaining() != 0 {
		start := lexer.Index()
		err := srcfile.SyntaxError(source.NewSpan(int(start), int(start)+1), "unknown text encountered")
		// errors
		return nil, []source.SyntaxError{*err}
	}
	// Check comments are closed
	for _, t := range tokens {
		if t.Kind == COMMENT && !isClosedComment(srcfile.Text(t.Span)) {
			errors = append(errors, *srcfile.SyntaxError(t.Span, "unterminated comment"))
		}
	}
	// Remove any whitespace and comments
	tokens = slices.DeleteFunc(tokens, func(t lex.Token) bool {
		return t.Kind == WHITESPACE || t.Kind == COMMENT
	})
	// Done
	return tokens, errors
}

func isClosedComment(text string) bool {
	return len(text) >= 4 && text[len(text)-2:] == "*)"
}
