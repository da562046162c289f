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
	"strconv"

	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/simple/ast/data"
	"github.com/consensys/go-simple/pkg/simple/ast/decl"
	"github.com/consensys/go-simple/pkg/simple/ast/expr"
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
	"github.com/consensys/go-simple/pkg/simple/ast/variable"
	"github.com/consensys/go-simple/pkg/util/source"
	"github.com/consensys/go-simple/pkg/util/source/lex"
)

// DECLARATIONS captures the set of tokens which can start a declaration
var DECLARATIONS = []uint{KEYWORD_CONST, KEYWORD_TYPE, KEYWORD_VAR, KEYWORD_PROCEDURE}

// TERMINATORS captures the set of tokens which can end a statement sequence
var TERMINATORS = []uint{KEYWORD_END, KEYWORD_ELSE, KEYWORD_UNTIL, KEYWORD_RETURN, END_OF}

// RELATIONS captures the set of comparison operators
var RELATIONS = []uint{EQUALS, NOT_EQUALS, LESS_THAN, LESS_THAN_EQUALS, GREATER_THAN, GREATER_THAN_EQUALS}

// Parse accepts a given source file representing a SIMPLE program, and
// parses it into a validated abstract syntax tree.  Every node of the tree is
// recorded in the returned source map.
func Parse(srcfile *source.File) (*ast.Program, *source.Map[any], []source.SyntaxError) {
	parser := NewParser(srcfile)
	//
	program, errs := parser.Parse()
	//
	return program, parser.srcmap, errs
}

// ============================================================================
// Parser
// ============================================================================

// Parser is a recursive-descent parser for SIMPLE, which validates the program
// as it goes.  Errors are accumulated, with the parser recovering at the next
// statement or declaration.
type Parser struct {
	srcfile *source.File
	tokens  []lex.Token
	// Source mapping
	srcmap *source.Map[any]
	// Position within the tokens
	index int
	// Errors accumulated so far
	errors []source.SyntaxError
}

// NewParser constructs a new parser for a given source file.
func NewParser(srcfile *source.File) *Parser {
	// Construct (initially empty) source mapping
	srcmap := source.NewSourceMap[any](srcfile)
	//
	return &Parser{srcfile, nil, srcmap, 0, nil}
}

// Parse the given source file into a program and/or some number of syntax
// errors.
func (p *Parser) Parse() (*ast.Program, []source.SyntaxError) {
	var (
		program ast.Program
		errs    []source.SyntaxError
		name    string
		env     = NewEnvironment(NewUniverse())
	)
	// Convert source file into tokens
	if p.tokens, errs = Lex(p.srcfile); len(errs) > 0 {
		return nil, errs
	}
	// Parse program header
	if _, errs = p.expect(KEYWORD_PROGRAM); len(errs) > 0 {
		return nil, errs
	} else if program.Name, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	// Parse declarations
	p.parseDeclarations(env, &program)
	// Parse main body
	if p.match(KEYWORD_BEGIN) {
		program.Body = p.parseStatements(env)
	}
	// Parse program trailer
	start := p.index
	//
	if _, errs = p.expect(KEYWORD_END); len(errs) > 0 {
		return nil, append(p.errors, errs...)
	} else if name, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, append(p.errors, errs...)
	} else if name != program.Name {
		msg := fmt.Sprintf("program identifiers %s and %s do not match", program.Name, name)
		p.errors = append(p.errors, *p.srcfile.SyntaxError(p.spanOf(start, p.index-1), msg))
	}
	//
	if _, errs = p.expect(PERIOD); len(errs) > 0 {
		p.errors = append(p.errors, errs...)
	} else if _, errs = p.expect(END_OF); len(errs) > 0 {
		p.errors = append(p.errors, errs...)
	}
	//
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	//
	return &program, nil
}

func (p *Parser) parseDeclarations(env *Environment, program *ast.Program) {
	for p.follows(DECLARATIONS...) {
		switch p.lookahead().Kind {
		case KEYWORD_CONST:
			p.match(KEYWORD_CONST)
			//
			for p.follows(IDENTIFIER) {
				if c, errs := p.parseConstant(env); len(errs) > 0 {
					p.recoverDeclaration(errs)
				} else {
					program.Constants = append(program.Constants, c)
				}
			}
		case KEYWORD_TYPE:
			p.match(KEYWORD_TYPE)
			//
			for p.follows(IDENTIFIER) {
				if t, errs := p.parseTypeAlias(env); len(errs) > 0 {
					p.recoverDeclaration(errs)
				} else {
					program.Types = append(program.Types, t)
				}
			}
		case KEYWORD_VAR:
			p.match(KEYWORD_VAR)
			//
			for p.follows(IDENTIFIER) {
				if vars, errs := p.parseVariables(variable.GLOBAL, env); len(errs) > 0 {
					p.recoverDeclaration(errs)
				} else {
					program.Variables = append(program.Variables, vars...)
				}
			}
		case KEYWORD_PROCEDURE:
			if proc, errs := p.parseProcedure(env); len(errs) > 0 {
				p.recoverProcedure(errs)
			} else {
				program.Procedures = append(program.Procedures, proc)
			}
		}
	}
}

func (p *Parser) parseConstant(env *Environment) (*decl.Constant, []source.SyntaxError) {
	var (
		start = p.index
		errs  []source.SyntaxError
		name  string
		value expr.Expr
	)
	//
	if name, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(EQUALS); len(errs) > 0 {
		return nil, errs
	} else if value, errs = p.parseExpr(env); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	number, ok := value.(*expr.Number)
	//
	if !ok {
		return nil, p.srcmap.SyntaxErrors(value, fmt.Sprintf("expression %s is not a constant", value.String()))
	}
	//
	constant := decl.NewConstant(name, number.Value)
	//
	return constant, p.declare(env, constant, start)
}

func (p *Parser) parseTypeAlias(env *Environment) (*decl.TypeAlias, []source.SyntaxError) {
	var (
		start = p.index
		errs  []source.SyntaxError
		name  string
		typ   data.Type
	)
	//
	if name, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(EQUALS); len(errs) > 0 {
		return nil, errs
	} else if typ, errs = p.parseType(env); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	alias := decl.NewTypeAlias(name, typ)
	//
	return alias, p.declare(env, alias, start)
}

// Parse a declaration of one or more variables with the same type, such as
// "x, y: INTEGER;".
func (p *Parser) parseVariables(kind variable.Kind, env *Environment) ([]*variable.Variable, []source.SyntaxError) {
	var (
		errs  []source.SyntaxError
		names []lex.Token
		typ   data.Type
		vars  []*variable.Variable
	)
	//
	if names, errs = p.parseIdentifierList(); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(COLON); len(errs) > 0 {
		return nil, errs
	} else if typ, errs = p.parseType(env); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	for _, name := range names {
		v := variable.New(p.string(name), kind, typ)
		//
		if !env.Declare(v) {
			errs = append(errs, p.redeclared(name)...)
		}
		//
		vars = append(vars, v)
	}
	//
	return vars, errs
}

func (p *Parser) parseProcedure(env *Environment) (*decl.Procedure, []source.SyntaxError) {
	var (
		start  = p.index
		errs   []source.SyntaxError
		name   string
		params []*variable.Variable
		ret    data.Type
		scope  = NewEnvironment(env)
	)
	// Parse header
	if _, errs = p.expect(KEYWORD_PROCEDURE); len(errs) > 0 {
		return nil, errs
	} else if name, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	} else if params, errs = p.parseParameters(scope); len(errs) > 0 {
		return nil, errs
	}
	// Parse optional return type
	if p.match(COLON) {
		if ret, errs = p.parseType(env); len(errs) > 0 {
			return nil, errs
		} else if !data.IsInteger(ret) {
			return nil, p.syntaxErrors(p.tokens[p.index-1], "return type must be INTEGER")
		}
	}
	//
	if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	// Declare procedure before its body, such that it can be called recursively.
	proc := decl.NewProcedure(name, params, ret)
	//
	if errs = p.declare(env, proc, start); len(errs) > 0 {
		return nil, errs
	}
	// Parse local variables
	for p.match(KEYWORD_VAR) {
		for p.follows(IDENTIFIER) {
			var locals []*variable.Variable
			//
			if locals, errs = p.parseVariables(variable.LOCAL, scope); len(errs) > 0 {
				return nil, errs
			}
			//
			proc.Locals = append(proc.Locals, locals...)
		}
	}
	// Parse body
	if p.match(KEYWORD_BEGIN) {
		proc.Body = p.parseStatements(scope)
	}
	// Parse return
	if p.lookahead().Kind == KEYWORD_RETURN {
		token := p.lookahead()
		p.match(KEYWORD_RETURN)
		//
		if proc.Return, errs = p.parseIntegerExpr(scope); len(errs) > 0 {
			return nil, errs
		} else if ret == nil {
			return nil, p.syntaxErrors(token, fmt.Sprintf("procedure %s specified no return type but returns a value", name))
		}
	} else if ret != nil {
		return nil, p.syntaxErrors(p.lookahead(), fmt.Sprintf("procedure %s specified a return type but does not return a value", name))
	}
	// Parse trailer
	var (
		endToken = p.index + 1
		endName  string
	)
	//
	if _, errs = p.expect(KEYWORD_END); len(errs) > 0 {
		return nil, errs
	} else if endName, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	} else if endName != name {
		return nil, p.syntaxErrors(p.tokens[endToken], fmt.Sprintf("procedure identifiers %s and %s do not match", name, endName))
	} else if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	return proc, nil
}

// Parse the formal parameters of a procedure, such as "(x: INTEGER; a, b: A)".
func (p *Parser) parseParameters(scope *Environment) ([]*variable.Variable, []source.SyntaxError) {
	var (
		errs   []source.SyntaxError
		params []*variable.Variable
	)
	//
	if _, errs = p.expect(LBRACE); len(errs) > 0 {
		return nil, errs
	}
	//
	for p.follows(IDENTIFIER) {
		var (
			names []lex.Token
			typ   data.Type
		)
		//
		if names, errs = p.parseIdentifierList(); len(errs) > 0 {
			return nil, errs
		} else if _, errs = p.expect(COLON); len(errs) > 0 {
			return nil, errs
		} else if typ, errs = p.parseType(scope); len(errs) > 0 {
			return nil, errs
		}
		//
		for _, name := range names {
			v := variable.New(p.string(name), variable.PARAMETER, typ)
			//
			if !scope.Declare(v) {
				return nil, p.redeclared(name)
			}
			//
			params = append(params, v)
		}
		//
		if !p.match(SEMICOLON) {
			break
		}
	}
	//
	if _, errs = p.expect(RBRACE); len(errs) > 0 {
		return nil, errs
	}
	//
	return params, nil
}

func (p *Parser) parseType(env *Environment) (data.Type, []source.SyntaxError) {
	var lookahead = p.lookahead()
	//
	switch lookahead.Kind {
	case IDENTIFIER:
		p.match(IDENTIFIER)
		//
		switch d := env.Lookup(p.string(lookahead)).(type) {
		case nil:
			return nil, p.undeclared(lookahead)
		case *decl.TypeAlias:
			return d.Type, nil
		default:
			return nil, p.syntaxErrors(lookahead, fmt.Sprintf("%s is not a type", d.Name()))
		}
	case KEYWORD_ARRAY:
		return p.parseArrayType(env)
	case KEYWORD_RECORD:
		return p.parseRecordType(env)
	default:
		return nil, p.syntaxErrors(lookahead, "expected type")
	}
}

func (p *Parser) parseArrayType(env *Environment) (data.Type, []source.SyntaxError) {
	var (
		errs    []source.SyntaxError
		length  expr.Expr
		element data.Type
	)
	//
	if _, errs = p.expect(KEYWORD_ARRAY); len(errs) > 0 {
		return nil, errs
	} else if length, errs = p.parseExpr(env); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(KEYWORD_OF); len(errs) > 0 {
		return nil, errs
	} else if element, errs = p.parseType(env); len(errs) > 0 {
		return nil, errs
	}
	//
	if n, ok := length.(*expr.Number); !ok || n.Value <= 0 {
		return nil, p.srcmap.SyntaxErrors(length, fmt.Sprintf("expression %s is not a positive constant", length.String()))
	} else {
		return data.NewArray(element, uint(n.Value)), nil
	}
}

func (p *Parser) parseRecordType(env *Environment) (data.Type, []source.SyntaxError) {
	var (
		errs  []source.SyntaxError
		names []string
		types []data.Type
	)
	//
	if _, errs = p.expect(KEYWORD_RECORD); len(errs) > 0 {
		return nil, errs
	}
	//
	for p.follows(IDENTIFIER) {
		var (
			fields []lex.Token
			typ    data.Type
		)
		//
		if fields, errs = p.parseIdentifierList(); len(errs) > 0 {
			return nil, errs
		} else if _, errs = p.expect(COLON); len(errs) > 0 {
			return nil, errs
		} else if typ, errs = p.parseType(env); len(errs) > 0 {
			return nil, errs
		}
		//
		for _, field := range fields {
			name := p.string(field)
			//
			if slices.Contains(names, name) {
				return nil, p.redeclared(field)
			}
			//
			names = append(names, name)
			types = append(types, typ)
		}
		// Semicolon is optional before END
		if !p.match(SEMICOLON) {
			break
		}
	}
	//
	if _, errs = p.expect(KEYWORD_END); len(errs) > 0 {
		return nil, errs
	}
	//
	return data.NewRecord(names, types), nil
}

// ============================================================================
// Statements
// ============================================================================

// Parse a sequence of zero or more statements separated by semi-colons.  Errors
// arising in a statement are recorded, and parsing resumes from the next
// statement.
func (p *Parser) parseStatements(env *Environment) []stmt.Stmt {
	var stmts []stmt.Stmt
	//
	for {
		// Permit empty statements (e.g. before END).
		if !p.follows(SEMICOLON) && !p.follows(TERMINATORS...) {
			start := p.index
			//
			if s, errs := p.parseStatement(env); len(errs) > 0 {
				p.recoverStatement(start, errs)
			} else {
				stmts = append(stmts, s)
			}
		}
		//
		if !p.match(SEMICOLON) {
			return stmts
		}
	}
}

func (p *Parser) parseStatement(env *Environment) (stmt.Stmt, []source.SyntaxError) {
	var (
		start     = p.index
		lookahead = p.lookahead()
		s         stmt.Stmt
		errs      []source.SyntaxError
	)
	//
	switch lookahead.Kind {
	case IDENTIFIER:
		if _, ok := env.Lookup(p.string(lookahead)).(*decl.Procedure); ok || p.peek(1).Kind == LBRACE {
			s, errs = p.parseCall(env)
		} else {
			s, errs = p.parseAssignment(env)
		}
	case KEYWORD_IF:
		s, errs = p.parseIf(env)
	case KEYWORD_REPEAT:
		s, errs = p.parseRepeat(env)
	case KEYWORD_WHILE:
		s, errs = p.parseWhile(env)
	case KEYWORD_READ:
		s, errs = p.parseRead(env)
	case KEYWORD_WRITE:
		s, errs = p.parseWrite(env)
	default:
		return nil, p.syntaxErrors(lookahead, "expected statement")
	}
	// Record source mapping
	if len(errs) == 0 {
		p.srcmap.Put(s, p.spanOf(start, p.index-1))
		// Desugared loops share the span of their source
		if ith, ok := s.(*stmt.If); ok && lookahead.Kind == KEYWORD_WHILE {
			p.srcmap.Copy(s, ith.TrueBranch[0])
		}
	}
	//
	return s, errs
}

func (p *Parser) parseAssignment(env *Environment) (stmt.Stmt, []source.SyntaxError) {
	var (
		errs   []source.SyntaxError
		target expr.Location
		value  expr.Expr
	)
	//
	if target, errs = p.parseLocation(env); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(ASSIGN); len(errs) > 0 {
		return nil, errs
	} else if value, errs = p.parseExpr(env); len(errs) > 0 {
		return nil, errs
	} else if target.Type() != value.Type() {
		msg := fmt.Sprintf("expressions %s and %s are not of the same type", target.String(), value.String())
		return nil, p.srcmap.SyntaxErrors(value, msg)
	}
	//
	return stmt.NewAssign(target, value), nil
}

func (p *Parser) parseIf(env *Environment) (stmt.Stmt, []source.SyntaxError) {
	var (
		errs        []source.SyntaxError
		cond        expr.Condition
		trueBranch  []stmt.Stmt
		falseBranch []stmt.Stmt
	)
	//
	if _, errs = p.expect(KEYWORD_IF); len(errs) > 0 {
		return nil, errs
	} else if cond, errs = p.parseCondition(env); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(KEYWORD_THEN); len(errs) > 0 {
		return nil, errs
	}
	//
	trueBranch = p.parseStatements(env)
	//
	if p.match(KEYWORD_ELSE) {
		falseBranch = p.parseStatements(env)
	}
	//
	if _, errs = p.expect(KEYWORD_END); len(errs) > 0 {
		return nil, errs
	}
	//
	return stmt.NewIf(cond, trueBranch, falseBranch), nil
}

func (p *Parser) parseRepeat(env *Environment) (stmt.Stmt, []source.SyntaxError) {
	var (
		errs []source.SyntaxError
		body []stmt.Stmt
		cond expr.Condition
	)
	//
	if _, errs = p.expect(KEYWORD_REPEAT); len(errs) > 0 {
		return nil, errs
	}
	//
	body = p.parseStatements(env)
	//
	if _, errs = p.expect(KEYWORD_UNTIL); len(errs) > 0 {
		return nil, errs
	} else if cond, errs = p.parseCondition(env); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(KEYWORD_END); len(errs) > 0 {
		return nil, errs
	}
	//
	return stmt.NewRepeat(body, cond), nil
}

// Parse a while loop, which is translated into a repeat loop guarded by a
// conditional.  That is, "WHILE c DO b END" becomes "IF c THEN REPEAT b UNTIL
// NOT c END END".
func (p *Parser) parseWhile(env *Environment) (stmt.Stmt, []source.SyntaxError) {
	var (
		errs []source.SyntaxError
		body []stmt.Stmt
		cond expr.Condition
	)
	//
	if _, errs = p.expect(KEYWORD_WHILE); len(errs) > 0 {
		return nil, errs
	} else if cond, errs = p.parseCondition(env); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(KEYWORD_DO); len(errs) > 0 {
		return nil, errs
	}
	//
	body = p.parseStatements(env)
	//
	if _, errs = p.expect(KEYWORD_END); len(errs) > 0 {
		return nil, errs
	}
	//
	loop := stmt.NewRepeat(body, cond.Negate())
	//
	return stmt.NewIf(cond, []stmt.Stmt{loop}, nil), nil
}

func (p *Parser) parseRead(env *Environment) (stmt.Stmt, []source.SyntaxError) {
	var (
		errs   []source.SyntaxError
		target expr.Location
	)
	//
	if _, errs = p.expect(KEYWORD_READ); len(errs) > 0 {
		return nil, errs
	} else if target, errs = p.parseLocation(env); len(errs) > 0 {
		return nil, errs
	} else if !data.IsInteger(target.Type()) {
		return nil, p.srcmap.SyntaxErrors(target, fmt.Sprintf("%s is not a variable of type INTEGER", target.String()))
	}
	//
	return stmt.NewRead(target), nil
}

func (p *Parser) parseWrite(env *Environment) (stmt.Stmt, []source.SyntaxError) {
	var (
		errs  []source.SyntaxError
		value expr.Expr
	)
	//
	if _, errs = p.expect(KEYWORD_WRITE); len(errs) > 0 {
		return nil, errs
	} else if value, errs = p.parseIntegerExpr(env); len(errs) > 0 {
		return nil, errs
	}
	//
	return stmt.NewWrite(value), nil
}

func (p *Parser) parseCall(env *Environment) (stmt.Stmt, []source.SyntaxError) {
	var (
		name      = p.lookahead()
		errs      []source.SyntaxError
		procedure *decl.Procedure
		args      []expr.Expr
	)
	//
	if procedure, args, errs = p.parseInvocation(env); len(errs) > 0 {
		return nil, errs
	} else if procedure == nil {
		return nil, p.undeclared(name)
	}
	//
	return stmt.NewCall(procedure.Name(), args), nil
}

// Parse the invocation of a procedure, such as "f(x, 1)", checking the
// arguments against the procedure's parameters.  Arguments of aggregate type
// must be locations.
func (p *Parser) parseInvocation(env *Environment) (*decl.Procedure, []expr.Expr, []source.SyntaxError) {
	var (
		start     = p.index
		lookahead = p.lookahead()
		errs      []source.SyntaxError
		args      []expr.Expr
	)
	//
	if _, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, nil, errs
	}
	//
	procedure, ok := env.Lookup(p.string(lookahead)).(*decl.Procedure)
	//
	if env.Lookup(p.string(lookahead)) == nil {
		return nil, nil, p.undeclared(lookahead)
	} else if !ok {
		return nil, nil, p.syntaxErrors(lookahead, fmt.Sprintf("%s is not a procedure", p.string(lookahead)))
	} else if _, errs = p.expect(LBRACE); len(errs) > 0 {
		return nil, nil, errs
	}
	//
	if !p.follows(RBRACE) {
		if args, errs = p.parseExprList(env); len(errs) > 0 {
			return nil, nil, errs
		}
	}
	//
	if _, errs = p.expect(RBRACE); len(errs) > 0 {
		return nil, nil, errs
	}
	// Check arguments
	matched := len(args) == len(procedure.Parameters)
	//
	for i := 0; matched && i < len(args); i++ {
		matched = args[i].Type() == procedure.Parameters[i].Type()
	}
	//
	if !matched {
		msg := fmt.Sprintf("arguments do not match procedure %s", procedure.String())
		return nil, nil, []source.SyntaxError{*p.srcfile.SyntaxError(p.spanOf(start, p.index-1), msg)}
	}
	//
	return procedure, args, nil
}

// ============================================================================
// Expressions
// ============================================================================

func (p *Parser) parseCondition(env *Environment) (expr.Condition, []source.SyntaxError) {
	var (
		errs     []source.SyntaxError
		lhs, rhs expr.Expr
		rel      expr.Relation
	)
	//
	if lhs, errs = p.parseIntegerExpr(env); len(errs) > 0 {
		return expr.Condition{}, errs
	} else if rel, errs = p.parseRelation(); len(errs) > 0 {
		return expr.Condition{}, errs
	} else if rhs, errs = p.parseIntegerExpr(env); len(errs) > 0 {
		return expr.Condition{}, errs
	}
	//
	return expr.NewCondition(lhs, rel, rhs), nil
}

func (p *Parser) parseRelation() (expr.Relation, []source.SyntaxError) {
	var lookahead = p.lookahead()
	//
	if !slices.Contains(RELATIONS, lookahead.Kind) {
		return 0, p.syntaxErrors(lookahead, "expected comparison")
	}
	//
	p.match(lookahead.Kind)
	//
	switch lookahead.Kind {
	case EQUALS:
		return expr.EQ, nil
	case NOT_EQUALS:
		return expr.NEQ, nil
	case LESS_THAN:
		return expr.LT, nil
	case LESS_THAN_EQUALS:
		return expr.LTEQ, nil
	case GREATER_THAN:
		return expr.GT, nil
	default:
		return expr.GTEQ, nil
	}
}

// Parse an expression which must have type INTEGER.
func (p *Parser) parseIntegerExpr(env *Environment) (expr.Expr, []source.SyntaxError) {
	e, errs := p.parseExpr(env)
	//
	if len(errs) > 0 {
		return nil, errs
	} else if !data.IsInteger(e.Type()) {
		return nil, p.srcmap.SyntaxErrors(e, fmt.Sprintf("expression %s is not numeric", e.String()))
	}
	//
	return e, nil
}

// Parse an expression, which is a sequence of terms combined with "+" or "-"
// and an optional leading sign.
func (p *Parser) parseExpr(env *Environment) (expr.Expr, []source.SyntaxError) {
	var (
		start = p.index
		sign  = p.lookahead()
		lhs   expr.Expr
		rhs   expr.Expr
		errs  []source.SyntaxError
	)
	// Optional sign
	if p.match(ADD) || p.match(SUB) {
		if lhs, errs = p.parseTerm(env); len(errs) > 0 {
			return nil, errs
		} else if sign.Kind == SUB {
			lhs, errs = p.binary(expr.SUB, p.number(0, start), lhs, start)
		} else {
			lhs, errs = p.binary(expr.ADD, p.number(0, start), lhs, start)
		}
	} else {
		lhs, errs = p.parseTerm(env)
	}
	//
	for len(errs) == 0 && p.follows(ADD, SUB) {
		var op = expr.ADD
		//
		if p.match(SUB) {
			op = expr.SUB
		} else {
			p.match(ADD)
		}
		//
		if rhs, errs = p.parseTerm(env); len(errs) == 0 {
			lhs, errs = p.binary(op, lhs, rhs, start)
		}
	}
	//
	return lhs, errs
}

// Parse a term, which is a sequence of factors combined with "*", "DIV" or
// "MOD".
func (p *Parser) parseTerm(env *Environment) (expr.Expr, []source.SyntaxError) {
	var (
		start     = p.index
		lhs, errs = p.parseFactor(env)
		rhs       expr.Expr
	)
	//
	for len(errs) == 0 && p.follows(MUL, KEYWORD_DIV, KEYWORD_MOD) {
		var op expr.Operator
		//
		switch p.lookahead().Kind {
		case MUL:
			op = expr.MUL
		case KEYWORD_DIV:
			op = expr.DIV
		default:
			op = expr.MOD
		}
		//
		p.match(p.lookahead().Kind)
		//
		if rhs, errs = p.parseFactor(env); len(errs) == 0 {
			lhs, errs = p.binary(op, lhs, rhs, start)
		}
	}
	//
	return lhs, errs
}

func (p *Parser) parseFactor(env *Environment) (expr.Expr, []source.SyntaxError) {
	var lookahead = p.lookahead()
	//
	switch lookahead.Kind {
	case NUMBER:
		p.match(NUMBER)
		//
		value, err := strconv.ParseInt(p.string(lookahead), 10, 64)
		//
		if err != nil {
			return nil, p.syntaxErrors(lookahead, "integer literal out of range")
		}
		//
		return p.number(value, p.index-1), nil
	case IDENTIFIER:
		return p.parseDesignator(env)
	case LBRACE:
		p.match(LBRACE)
		//
		e, errs := p.parseExpr(env)
		//
		if len(errs) > 0 {
			return nil, errs
		} else if _, errs = p.expect(RBRACE); len(errs) > 0 {
			return nil, errs
		}
		// Don't add to source map, since it will already have been added.
		return e, nil
	default:
		return nil, p.syntaxErrors(lookahead, "expected expression")
	}
}

// Construct a binary expression, folding constant operands.  Since the type of
// an expression is determined by its operands, both must be integers.
func (p *Parser) binary(op expr.Operator, lhs expr.Expr, rhs expr.Expr, start int) (expr.Expr, []source.SyntaxError) {
	var (
		l, lok = lhs.(*expr.Number)
		r, rok = rhs.(*expr.Number)
		e      expr.Expr
	)
	//
	if !data.IsInteger(lhs.Type()) {
		return nil, p.srcmap.SyntaxErrors(lhs, fmt.Sprintf("expression %s is not numeric", lhs.String()))
	} else if !data.IsInteger(rhs.Type()) {
		return nil, p.srcmap.SyntaxErrors(rhs, fmt.Sprintf("expression %s is not numeric", rhs.String()))
	} else if rok && r.Value == 0 && op == expr.DIV {
		return nil, p.srcmap.SyntaxErrors(rhs, fmt.Sprintf("expression %s divides by zero", rhs.String()))
	} else if rok && r.Value == 0 && op == expr.MOD {
		return nil, p.srcmap.SyntaxErrors(rhs, fmt.Sprintf("expression %s mods by zero", rhs.String()))
	} else if lok && rok {
		value, _ := op.Evaluate(l.Value, r.Value)
		e = expr.NewNumber(value)
	} else {
		e = expr.NewBinary(op, lhs, rhs)
	}
	//
	p.srcmap.Put(e, p.spanOf(start, p.index-1))
	//
	return e, nil
}

// Construct a number whose span starts from a given token.
func (p *Parser) number(value int64, start int) *expr.Number {
	e := expr.NewNumber(value)
	p.srcmap.Put(e, p.spanOf(start, max(start, p.index-1)))
	//
	return e
}

// Parse a designator which must identify a location.
func (p *Parser) parseLocation(env *Environment) (expr.Location, []source.SyntaxError) {
	var lookahead = p.lookahead()
	//
	e, errs := p.parseDesignator(env)
	//
	if len(errs) > 0 {
		return nil, errs
	} else if l, ok := e.(expr.Location); ok {
		return l, nil
	}
	//
	return nil, p.syntaxErrors(lookahead, fmt.Sprintf("expression %s is not a location", e.String()))
}

// Parse a designator, which is either: a named constant; a function
// invocation; or, a variable followed by zero or more selectors (e.g.
// "a[i,j].x").
func (p *Parser) parseDesignator(env *Environment) (expr.Expr, []source.SyntaxError) {
	var (
		start     = p.index
		lookahead = p.lookahead()
		name      = p.string(lookahead)
	)
	//
	switch d := env.Lookup(name).(type) {
	case nil:
		p.match(IDENTIFIER)
		return nil, p.undeclared(lookahead)
	case *decl.Constant:
		p.match(IDENTIFIER)
		return p.number(d.Value, start), nil
	case *decl.TypeAlias:
		p.match(IDENTIFIER)
		return nil, p.syntaxErrors(lookahead, fmt.Sprintf("%s is a type", name))
	case *decl.Procedure:
		proc, args, errs := p.parseInvocation(env)
		//
		if len(errs) > 0 {
			return nil, errs
		} else if !proc.IsFunction() {
			return nil, p.syntaxErrors(lookahead, fmt.Sprintf("procedure %s does not return a value", name))
		}
		//
		e := expr.NewFunction(name, args, proc.ReturnType)
		p.srcmap.Put(e, p.spanOf(start, p.index-1))
		//
		return e, nil
	case *variable.Variable:
		p.match(IDENTIFIER)
		//
		var loc expr.Location = expr.NewVarAccess(d)
		p.srcmap.Put(loc, p.spanOf(start, start))
		//
		return p.parseSelectors(env, loc, start)
	default:
		panic("unknown declaration")
	}
}

// Parse zero or more selectors applied to a given location.
func (p *Parser) parseSelectors(env *Environment, loc expr.Location, start int) (expr.Expr, []source.SyntaxError) {
	for p.follows(LSQUARE, PERIOD) {
		if p.match(PERIOD) {
			field := p.lookahead()
			//
			if _, errs := p.parseIdentifier(); len(errs) > 0 {
				return nil, errs
			} else if record, ok := loc.Type().(*data.Record); !ok {
				return nil, p.srcmap.SyntaxErrors(loc, fmt.Sprintf("%s is not a record", loc.String()))
			} else if _, ok := record.Field(p.string(field)); !ok {
				msg := fmt.Sprintf("record %s does not contain field %s", loc.String(), p.string(field))
				return nil, p.syntaxErrors(field, msg)
			}
			//
			loc = expr.NewField(loc, p.string(field))
			p.srcmap.Put(loc, p.spanOf(start, p.index-1))
		} else {
			p.match(LSQUARE)
			//
			subscripts, errs := p.parseExprList(env)
			//
			if len(errs) > 0 {
				return nil, errs
			} else if _, errs = p.expect(RSQUARE); len(errs) > 0 {
				return nil, errs
			}
			// Multiple subscripts index nested arrays
			for _, subscript := range subscripts {
				if _, ok := loc.Type().(*data.Array); !ok {
					return nil, p.srcmap.SyntaxErrors(loc, fmt.Sprintf("%s is not an array", loc.String()))
				} else if !data.IsInteger(subscript.Type()) {
					return nil, p.srcmap.SyntaxErrors(subscript, fmt.Sprintf("expression %s is not numeric", subscript.String()))
				}
				//
				loc = expr.NewIndex(loc, subscript)
				p.srcmap.Put(loc, p.spanOf(start, p.index-1))
			}
		}
	}
	//
	return loc, nil
}

// Parse sequence of one or more expressions separated by a comma.
func (p *Parser) parseExprList(env *Environment) ([]expr.Expr, []source.SyntaxError) {
	var (
		exprs = make([]expr.Expr, 1)
		errs  []source.SyntaxError
		e     expr.Expr
	)
	//
	if exprs[0], errs = p.parseExpr(env); len(errs) > 0 {
		return nil, errs
	}
	//
	for p.match(COMMA) {
		if e, errs = p.parseExpr(env); len(errs) > 0 {
			return nil, errs
		}
		//
		exprs = append(exprs, e)
	}
	//
	return exprs, nil
}

// Parse sequence of one or more identifiers separated by a comma.
func (p *Parser) parseIdentifierList() ([]lex.Token, []source.SyntaxError) {
	var names []lex.Token
	//
	for {
		token, errs := p.expect(IDENTIFIER)
		//
		if len(errs) > 0 {
			return nil, errs
		}
		//
		names = append(names, token)
		//
		if !p.match(COMMA) {
			return names, nil
		}
	}
}

func (p *Parser) parseIdentifier() (string, []source.SyntaxError) {
	token, errs := p.expect(IDENTIFIER)
	//
	if len(errs) > 0 {
		return "", errs
	}
	//
	return p.string(token), nil
}

// ============================================================================
// Helpers
// ============================================================================

// Declare a given declaration in an environment, reporting an error if its
// name is already declared there.
func (p *Parser) declare(env *Environment, d decl.Declaration, start int) []source.SyntaxError {
	if !env.Declare(d) {
		return p.redeclared(p.tokens[start])
	}
	//
	return nil
}

func (p *Parser) redeclared(token lex.Token) []source.SyntaxError {
	return p.syntaxErrors(token, fmt.Sprintf("%s already declared in this scope", p.string(token)))
}

func (p *Parser) undeclared(token lex.Token) []source.SyntaxError {
	return p.syntaxErrors(token, fmt.Sprintf("%s was never declared", p.string(token)))
}

// Record errors arising from a declaration, and skip to the start of the next
// declaration.
func (p *Parser) recoverDeclaration(errs []source.SyntaxError) {
	p.errors = append(p.errors, errs...)
	// Check whether declaration was already terminated
	if p.tokens[p.index-1].Kind == SEMICOLON {
		return
	}
	//
	for !p.follows(SEMICOLON, KEYWORD_BEGIN, KEYWORD_END, END_OF) && !p.follows(DECLARATIONS...) {
		p.index++
	}
	//
	p.match(SEMICOLON)
}

// Record errors arising from a procedure declaration, and skip past its
// trailer (i.e. "END id;").
func (p *Parser) recoverProcedure(errs []source.SyntaxError) {
	p.errors = append(p.errors, errs...)
	// Check whether procedure was already terminated
	if p.tokens[p.index-1].Kind == SEMICOLON && p.tokens[p.index-3].Kind == KEYWORD_END {
		return
	} else if p.tokens[p.index-1].Kind == IDENTIFIER && p.tokens[p.index-2].Kind == KEYWORD_END {
		p.match(SEMICOLON)
		return
	}
	//
	for !p.follows(END_OF) {
		if p.follows(KEYWORD_END) && p.peek(1).Kind == IDENTIFIER && p.peek(2).Kind == SEMICOLON {
			p.index += 3
			return
		}
		//
		p.index++
	}
}

// Record errors arising from a statement which started at a given token, and
// skip to the end of that statement.  Nested blocks are skipped in their
// entirety, including any block opened by the statement itself.
func (p *Parser) recoverStatement(start int, errs []source.SyntaxError) {
	var depth = 0
	//
	p.errors = append(p.errors, errs...)
	// Account for blocks opened before the error
	for _, token := range p.tokens[start:p.index] {
		depth = max(0, depth+blockDelta(token.Kind))
	}
	//
	for p.lookahead().Kind != END_OF {
		switch p.lookahead().Kind {
		case KEYWORD_IF, KEYWORD_WHILE, KEYWORD_REPEAT, KEYWORD_RECORD:
			depth++
		case KEYWORD_END:
			if depth == 0 {
				return
			}
			//
			depth--
		case SEMICOLON, KEYWORD_ELSE, KEYWORD_UNTIL, KEYWORD_RETURN:
			if depth == 0 {
				return
			}
		}
		//
		p.index++
	}
}

// Determine how a given token affects the nesting of blocks.
func blockDelta(kind uint) int {
	switch kind {
	case KEYWORD_IF, KEYWORD_WHILE, KEYWORD_REPEAT, KEYWORD_RECORD:
		return 1
	case KEYWORD_END:
		return -1
	default:
		return 0
	}
}

func (p *Parser) string(token lex.Token) string {
	return p.srcfile.Text(token.Span)
}

// Lookahead returns the next token.  This must exist because EOF is always
// appended at the end of the token stream.
func (p *Parser) lookahead() lex.Token {
	return p.peek(0)
}

// Peek returns the nth token after the current position, or the final token
// if there is no such token.
func (p *Parser) peek(n int) lex.Token {
	return p.tokens[min(p.index+n, len(p.tokens)-1)]
}

// Expect a given token kind, reporting an error if it is not next.
func (p *Parser) expect(kind uint) (lex.Token, []source.SyntaxError) {
	lookahead := p.lookahead()
	//
	if lookahead.Kind != kind {
		errs := p.syntaxErrors(lookahead, "unexpected token")
		return lookahead, errs
	}
	//
	p.index++
	//
	return lookahead, nil
}

// Match attempts to match the given token.
func (p *Parser) match(kind uint) bool {
	if p.lookahead().Kind == kind && kind != END_OF {
		p.index++
		return true
	} else if p.lookahead().Kind == kind {
		return true
	}
	//
	return false
}

// Follows checks whether one of the given token kinds is next.
func (p *Parser) follows(options ...uint) bool {
	return slices.Contains(options, p.lookahead().Kind)
}

func (p *Parser) spanOf(firstToken, lastToken int) source.Span {
	//
	start := p.tokens[firstToken].Span.Start()
	end := p.tokens[lastToken].Span.End()
	//
	return source.NewSpan(start, end)
}

func (p *Parser) syntaxErrors(token lex.Token, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.srcfile.SyntaxError(token.Span, msg)}
}
