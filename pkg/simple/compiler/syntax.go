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
	"io"
	"slices"
	"strings"

	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/util/collection/stack"
	"github.com/consensys/go-simple/pkg/util/source"
	"github.com/consensys/go-simple/pkg/util/source/lex"
)

// SyntaxNode is a node in the concrete parse tree of a program.  Nonterminals
// are named after the grammar rule which produced them, and have the symbols
// matched by that rule as children.  Terminals are the tokens themselves.
type SyntaxNode struct {
	// Name of the grammar rule for a nonterminal, or of the token kind for a
	// terminal.
	Symbol string
	// Text matched by a terminal.
	Text string
	// Indicates whether this is a terminal.
	Terminal bool
	// Children of a nonterminal, in the order they were matched.
	Children []*SyntaxNode
}

// ParseSyntax parses a given source file into its concrete parse tree, without
// resolving names or checking types.  Hence, programs which are syntactically
// correct but otherwise invalid (e.g. using an undeclared variable) are
// accepted.  Parsing stops at the first syntax error.
func ParseSyntax(srcfile *source.File) (*SyntaxNode, []source.SyntaxError) {
	var (
		parser = &syntaxParser{srcfile: srcfile, open: stack.NewStack[*SyntaxNode]()}
		errs   []source.SyntaxError
	)
	//
	if parser.tokens, errs = Lex(srcfile); len(errs) > 0 {
		return nil, errs
	}
	//
	parser.begin("Program")
	//
	if errs = parser.parseProgram(); len(errs) > 0 {
		return nil, errs
	}
	//
	return parser.end(), nil
}

// PrintSyntax writes a given parse tree, with the children of each nonterminal
// indented beneath it.
func PrintSyntax(out io.Writer, root *SyntaxNode) {
	printSyntax(out, root, 0)
}

func printSyntax(out io.Writer, node *SyntaxNode, depth int) {
	var indent = strings.Repeat(" ", depth*ast.INDENT)
	//
	if node.Terminal {
		fmt.Fprintf(out, "%s%s %q\n", indent, node.Symbol, node.Text)
		return
	}
	//
	fmt.Fprintf(out, "%s%s\n", indent, node.Symbol)
	//
	for _, child := range node.Children {
		printSyntax(out, child, depth+1)
	}
}

// PrintSyntaxDot writes a given parse tree as a Graphviz graph, where
// nonterminals are boxes and terminals are diamonds.
func PrintSyntaxDot(out io.Writer, root *SyntaxNode) {
	var graph = ast.NewDotGraph("CST")
	//
	dotSyntax(graph, graph.Node(root.Symbol, ast.BOX), root)
	graph.Write(out)
}

func dotSyntax(graph *ast.DotGraph, id uint, node *SyntaxNode) {
	for _, child := range node.Children {
		if child.Terminal {
			graph.Child(id, child.Text, ast.DIAMOND)
		} else {
			dotSyntax(graph, graph.Child(id, child.Symbol, ast.BOX), child)
		}
	}
}

// Recognises the grammar of SIMPLE, building a parse tree as it goes.  Each
// rule opens a nonterminal on entry and closes it on exit, with matched tokens
// added to whichever nonterminal is innermost.
type syntaxParser struct {
	srcfile *source.File
	tokens  []lex.Token
	index   int
	// Nonterminals which have been opened but not yet closed.
	open *stack.Stack[*SyntaxNode]
}

func (p *syntaxParser) parseProgram() []source.SyntaxError {
	if errs := p.terminals(KEYWORD_PROGRAM, IDENTIFIER, SEMICOLON); len(errs) > 0 {
		return errs
	} else if errs := p.rule("Declarations", p.parseDeclarations); len(errs) > 0 {
		return errs
	}
	//
	if p.lookahead().Kind == KEYWORD_BEGIN {
		if errs := p.block(KEYWORD_BEGIN); len(errs) > 0 {
			return errs
		}
	}
	//
	return p.terminals(KEYWORD_END, IDENTIFIER, PERIOD, END_OF)
}

func (p *syntaxParser) parseDeclarations() []source.SyntaxError {
	for {
		var errs []source.SyntaxError
		//
		switch p.lookahead().Kind {
		case KEYWORD_CONST:
			errs = p.section(KEYWORD_CONST, "ConstDecl", p.parseConstDecl)
		case KEYWORD_TYPE:
			errs = p.section(KEYWORD_TYPE, "TypeDecl", p.parseTypeDecl)
		case KEYWORD_VAR:
			errs = p.section(KEYWORD_VAR, "VarDecl", p.parseVarDecl)
		case KEYWORD_PROCEDURE:
			errs = p.rule("ProcDecl", p.parseProcDecl)
		default:
			return nil
		}
		//
		if len(errs) > 0 {
			return errs
		}
	}
}

// Parse a keyword followed by zero or more declarations of a given rule.
func (p *syntaxParser) section(keyword uint, symbol string, fn func() []source.SyntaxError) []source.SyntaxError {
	if errs := p.terminals(keyword); len(errs) > 0 {
		return errs
	}
	//
	for p.lookahead().Kind == IDENTIFIER {
		if errs := p.rule(symbol, fn); len(errs) > 0 {
			return errs
		}
	}
	//
	return nil
}

func (p *syntaxParser) parseConstDecl() []source.SyntaxError {
	if errs := p.terminals(IDENTIFIER, EQUALS); len(errs) > 0 {
		return errs
	} else if errs := p.rule("Expression", p.parseExpression); len(errs) > 0 {
		return errs
	}
	//
	return p.terminals(SEMICOLON)
}

func (p *syntaxParser) parseTypeDecl() []source.SyntaxError {
	if errs := p.terminals(IDENTIFIER, EQUALS); len(errs) > 0 {
		return errs
	} else if errs := p.rule("Type", p.parseType); len(errs) > 0 {
		return errs
	}
	//
	return p.terminals(SEMICOLON)
}

func (p *syntaxParser) parseVarDecl() []source.SyntaxError {
	if errs := p.typedIdentifiers(); len(errs) > 0 {
		return errs
	}
	//
	return p.terminals(SEMICOLON)
}

func (p *syntaxParser) parseProcDecl() []source.SyntaxError {
	if errs := p.terminals(KEYWORD_PROCEDURE, IDENTIFIER, LBRACE); len(errs) > 0 {
		return errs
	} else if errs := p.separated(SEMICOLON, RBRACE, p.typedIdentifiers); len(errs) > 0 {
		return errs
	} else if errs := p.terminals(RBRACE); len(errs) > 0 {
		return errs
	}
	// Optional return type
	if p.lookahead().Kind == COLON {
		if errs := p.terminals(COLON); len(errs) > 0 {
			return errs
		} else if errs := p.rule("Type", p.parseType); len(errs) > 0 {
			return errs
		}
	}
	//
	if errs := p.terminals(SEMICOLON); len(errs) > 0 {
		return errs
	}
	//
	for p.lookahead().Kind == KEYWORD_VAR {
		if errs := p.section(KEYWORD_VAR, "VarDecl", p.parseVarDecl); len(errs) > 0 {
			return errs
		}
	}
	//
	if p.lookahead().Kind == KEYWORD_BEGIN {
		if errs := p.block(KEYWORD_BEGIN); len(errs) > 0 {
			return errs
		}
	}
	//
	if p.lookahead().Kind == KEYWORD_RETURN {
		if errs := p.terminals(KEYWORD_RETURN); len(errs) > 0 {
			return errs
		} else if errs := p.rule("Expression", p.parseExpression); len(errs) > 0 {
			return errs
		}
	}
	//
	return p.terminals(KEYWORD_END, IDENTIFIER, SEMICOLON)
}

func (p *syntaxParser) parseType() []source.SyntaxError {
	switch p.lookahead().Kind {
	case IDENTIFIER:
		return p.terminals(IDENTIFIER)
	case KEYWORD_ARRAY:
		if errs := p.terminals(KEYWORD_ARRAY); len(errs) > 0 {
			return errs
		} else if errs := p.rule("Expression", p.parseExpression); len(errs) > 0 {
			return errs
		} else if errs := p.terminals(KEYWORD_OF); len(errs) > 0 {
			return errs
		}
		//
		return p.rule("Type", p.parseType)
	case KEYWORD_RECORD:
		if errs := p.terminals(KEYWORD_RECORD); len(errs) > 0 {
			return errs
		}
		// Semicolon is optional before END
		for p.lookahead().Kind == IDENTIFIER {
			if errs := p.typedIdentifiers(); len(errs) > 0 {
				return errs
			} else if p.lookahead().Kind != SEMICOLON {
				break
			} else if errs := p.terminals(SEMICOLON); len(errs) > 0 {
				return errs
			}
		}
		//
		return p.terminals(KEYWORD_END)
	default:
		return p.syntaxErrors(p.lookahead(), "expected type")
	}
}

// Parse an identifier list followed by its type, such as "x, y: INTEGER".
func (p *syntaxParser) typedIdentifiers() []source.SyntaxError {
	if errs := p.rule("IdentifierList", p.parseIdentifierList); len(errs) > 0 {
		return errs
	} else if errs := p.terminals(COLON); len(errs) > 0 {
		return errs
	}
	//
	return p.rule("Type", p.parseType)
}

func (p *syntaxParser) parseIdentifierList() []source.SyntaxError {
	if errs := p.terminals(IDENTIFIER); len(errs) > 0 {
		return errs
	}
	//
	for p.lookahead().Kind == COMMA {
		if errs := p.terminals(COMMA, IDENTIFIER); len(errs) > 0 {
			return errs
		}
	}
	//
	return nil
}

// ============================================================================
// Statements
// ============================================================================

// Parse a keyword followed by a sequence of instructions.
func (p *syntaxParser) block(keyword uint) []source.SyntaxError {
	if errs := p.terminals(keyword); len(errs) > 0 {
		return errs
	}
	//
	return p.rule("Instructions", p.parseInstructions)
}

func (p *syntaxParser) parseInstructions() []source.SyntaxError {
	for {
		// Permit empty instructions (e.g. before END).
		if kind := p.lookahead().Kind; kind != SEMICOLON && !isTerminator(kind) {
			if errs := p.rule("Instruction", p.parseInstruction); len(errs) > 0 {
				return errs
			}
		}
		//
		if p.lookahead().Kind != SEMICOLON {
			return nil
		} else if errs := p.terminals(SEMICOLON); len(errs) > 0 {
			return errs
		}
	}
}

func (p *syntaxParser) parseInstruction() []source.SyntaxError {
	switch p.lookahead().Kind {
	case IDENTIFIER:
		if p.peek(1).Kind == LBRACE {
			return p.rule("Call", p.parseInvocation)
		}
		//
		return p.rule("Assign", p.parseAssign)
	case KEYWORD_IF:
		return p.rule("If", p.parseIf)
	case KEYWORD_REPEAT:
		return p.rule("Repeat", p.parseRepeat)
	case KEYWORD_WHILE:
		return p.rule("While", p.parseWhile)
	case KEYWORD_READ:
		return p.rule("Read", func() []source.SyntaxError {
			if errs := p.terminals(KEYWORD_READ); len(errs) > 0 {
				return errs
			}
			//
			return p.rule("Designator", p.parseDesignator)
		})
	case KEYWORD_WRITE:
		return p.rule("Write", func() []source.SyntaxError {
			if errs := p.terminals(KEYWORD_WRITE); len(errs) > 0 {
				return errs
			}
			//
			return p.rule("Expression", p.parseExpression)
		})
	default:
		return p.syntaxErrors(p.lookahead(), "expected statement")
	}
}

func (p *syntaxParser) parseAssign() []source.SyntaxError {
	if errs := p.rule("Designator", p.parseDesignator); len(errs) > 0 {
		return errs
	} else if errs := p.terminals(ASSIGN); len(errs) > 0 {
		return errs
	}
	//
	return p.rule("Expression", p.parseExpression)
}

func (p *syntaxParser) parseIf() []source.SyntaxError {
	if errs := p.terminals(KEYWORD_IF); len(errs) > 0 {
		return errs
	} else if errs := p.rule("Condition", p.parseCondition); len(errs) > 0 {
		return errs
	} else if errs := p.block(KEYWORD_THEN); len(errs) > 0 {
		return errs
	}
	//
	if p.lookahead().Kind == KEYWORD_ELSE {
		if errs := p.block(KEYWORD_ELSE); len(errs) > 0 {
			return errs
		}
	}
	//
	return p.terminals(KEYWORD_END)
}

func (p *syntaxParser) parseRepeat() []source.SyntaxError {
	if errs := p.block(KEYWORD_REPEAT); len(errs) > 0 {
		return errs
	} else if errs := p.terminals(KEYWORD_UNTIL); len(errs) > 0 {
		return errs
	} else if errs := p.rule("Condition", p.parseCondition); len(errs) > 0 {
		return errs
	}
	//
	return p.terminals(KEYWORD_END)
}

func (p *syntaxParser) parseWhile() []source.SyntaxError {
	if errs := p.terminals(KEYWORD_WHILE); len(errs) > 0 {
		return errs
	} else if errs := p.rule("Condition", p.parseCondition); len(errs) > 0 {
		return errs
	} else if errs := p.block(KEYWORD_DO); len(errs) > 0 {
		return errs
	}
	//
	return p.terminals(KEYWORD_END)
}

// Parse the invocation of a procedure or function, such as "f(x, 1)".
func (p *syntaxParser) parseInvocation() []source.SyntaxError {
	if errs := p.terminals(IDENTIFIER, LBRACE); len(errs) > 0 {
		return errs
	}
	//
	if p.lookahead().Kind != RBRACE {
		if errs := p.rule("ExpressionList", p.parseExpressionList); len(errs) > 0 {
			return errs
		}
	}
	//
	return p.terminals(RBRACE)
}

// ============================================================================
// Expressions
// ============================================================================

func (p *syntaxParser) parseCondition() []source.SyntaxError {
	if errs := p.rule("Expression", p.parseExpression); len(errs) > 0 {
		return errs
	} else if !slices.Contains(RELATIONS, p.lookahead().Kind) {
		return p.syntaxErrors(p.lookahead(), "expected comparison")
	} else if errs := p.terminals(p.lookahead().Kind); len(errs) > 0 {
		return errs
	}
	//
	return p.rule("Expression", p.parseExpression)
}

func (p *syntaxParser) parseExpression() []source.SyntaxError {
	// Optional sign
	if kind := p.lookahead().Kind; kind == ADD || kind == SUB {
		if errs := p.terminals(kind); len(errs) > 0 {
			return errs
		}
	}
	//
	return p.operands("Term", p.parseTerm, ADD, SUB)
}

func (p *syntaxParser) parseTerm() []source.SyntaxError {
	return p.operands("Factor", p.parseFactor, MUL, KEYWORD_DIV, KEYWORD_MOD)
}

// Parse one or more operands of a given rule, separated by the given
// operators.
func (p *syntaxParser) operands(symbol string, fn func() []source.SyntaxError, operators ...uint) []source.SyntaxError {
	if errs := p.rule(symbol, fn); len(errs) > 0 {
		return errs
	}
	//
	for slices.Contains(operators, p.lookahead().Kind) {
		if errs := p.terminals(p.lookahead().Kind); len(errs) > 0 {
			return errs
		} else if errs := p.rule(symbol, fn); len(errs) > 0 {
			return errs
		}
	}
	//
	return nil
}

func (p *syntaxParser) parseFactor() []source.SyntaxError {
	switch p.lookahead().Kind {
	case NUMBER:
		return p.terminals(NUMBER)
	case IDENTIFIER:
		if p.peek(1).Kind == LBRACE {
			return p.rule("Function", p.parseInvocation)
		}
		//
		return p.rule("Designator", p.parseDesignator)
	case LBRACE:
		if errs := p.terminals(LBRACE); len(errs) > 0 {
			return errs
		} else if errs := p.rule("Expression", p.parseExpression); len(errs) > 0 {
			return errs
		}
		//
		return p.terminals(RBRACE)
	default:
		return p.syntaxErrors(p.lookahead(), "expected expression")
	}
}

// Parse a name followed by zero or more selectors (e.g. "a[i,j].x").
func (p *syntaxParser) parseDesignator() []source.SyntaxError {
	if errs := p.terminals(IDENTIFIER); len(errs) > 0 {
		return errs
	}
	//
	for kind := p.lookahead().Kind; kind == LSQUARE || kind == PERIOD; kind = p.lookahead().Kind {
		if errs := p.rule("Selector", p.parseSelector); len(errs) > 0 {
			return errs
		}
	}
	//
	return nil
}

func (p *syntaxParser) parseSelector() []source.SyntaxError {
	if p.lookahead().Kind == PERIOD {
		return p.terminals(PERIOD, IDENTIFIER)
	} else if errs := p.terminals(LSQUARE); len(errs) > 0 {
		return errs
	} else if errs := p.rule("ExpressionList", p.parseExpressionList); len(errs) > 0 {
		return errs
	}
	//
	return p.terminals(RSQUARE)
}

func (p *syntaxParser) parseExpressionList() []source.SyntaxError {
	return p.separated(COMMA, END_OF, func() []source.SyntaxError {
		return p.rule("Expression", p.parseExpression)
	})
}

// ============================================================================
// Helpers
// ============================================================================

// Parse a nonterminal using a given function.
func (p *syntaxParser) rule(symbol string, fn func() []source.SyntaxError) []source.SyntaxError {
	p.begin(symbol)
	//
	if errs := fn(); len(errs) > 0 {
		return errs
	}
	//
	p.end()
	//
	return nil
}

// Parse one or more items separated by a given token.  No items are parsed
// when the closing token is next.
func (p *syntaxParser) separated(separator uint, closing uint, fn func() []source.SyntaxError) []source.SyntaxError {
	if p.lookahead().Kind == closing {
		return nil
	}
	//
	for {
		if errs := fn(); len(errs) > 0 {
			return errs
		} else if p.lookahead().Kind != separator {
			return nil
		} else if errs := p.terminals(separator); len(errs) > 0 {
			return errs
		}
	}
}

// Open a nonterminal beneath the innermost nonterminal.
func (p *syntaxParser) begin(symbol string) {
	var node = &SyntaxNode{Symbol: symbol}
	//
	if !p.open.IsEmpty() {
		parent := p.open.Peek(0)
		parent.Children = append(parent.Children, node)
	}
	//
	p.open.Push(node)
}

// Close the innermost nonterminal.
func (p *syntaxParser) end() *SyntaxNode {
	return p.open.Pop()
}

// Match a sequence of tokens, adding them to the innermost nonterminal.
func (p *syntaxParser) terminals(kinds ...uint) []source.SyntaxError {
	for _, kind := range kinds {
		var token = p.lookahead()
		//
		if token.Kind != kind {
			return p.syntaxErrors(token, "unexpected token")
		}
		//
		parent := p.open.Peek(0)
		parent.Children = append(parent.Children, &SyntaxNode{
			Symbol:   TokenName(kind),
			Text:     p.srcfile.Text(token.Span),
			Terminal: true,
		})
		//
		if kind != END_OF {
			p.index++
		}
	}
	//
	return nil
}

func (p *syntaxParser) lookahead() lex.Token {
	return p.peek(0)
}

func (p *syntaxParser) peek(n int) lex.Token {
	return p.tokens[min(p.index+n, len(p.tokens)-1)]
}

func (p *syntaxParser) syntaxErrors(token lex.Token, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.srcfile.SyntaxError(token.Span, msg)}
}

func isTerminator(kind uint) bool {
	return slices.Contains(TERMINATORS, kind)
}
