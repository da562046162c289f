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
package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/consensys/go-simple/pkg/simple/ast/decl"
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
)

// INDENT is the number of spaces used for each level of nesting.
const INDENT = 2

// Print writes a human-readable form of a given program, where nested
// statements are indented.
func Print(out io.Writer, program *Program) {
	fmt.Fprintf(out, "PROGRAM %s;\n", program.Name)
	//
	for _, c := range program.Constants {
		fmt.Fprintf(out, "CONST %s;\n", c.String())
	}
	//
	for _, t := range program.Types {
		fmt.Fprintf(out, "TYPE %s;\n", t.String())
	}
	//
	for _, v := range program.Variables {
		fmt.Fprintf(out, "VAR %s;\n", v.String())
	}
	//
	for _, p := range program.Procedures {
		printProcedure(out, p)
	}
	//
	fmt.Fprintln(out, "BEGIN")
	printStmts(out, program.Body, 1)
	fmt.Fprintf(out, "END %s.\n", program.Name)
}

func printProcedure(out io.Writer, proc *decl.Procedure) {
	fmt.Fprintf(out, "PROCEDURE %s;\n", proc.String())
	//
	for _, v := range proc.Locals {
		fmt.Fprintf(out, "%sVAR %s;\n", indent(1), v.String())
	}
	//
	fmt.Fprintln(out, "BEGIN")
	printStmts(out, proc.Body, 1)
	//
	if proc.Return != nil {
		fmt.Fprintf(out, "RETURN %s\n", proc.Return.String())
	}
	//
	fmt.Fprintf(out, "END %s;\n", proc.Name())
}

func printStmts(out io.Writer, stmts []stmt.Stmt, depth int) {
	for _, s := range stmts {
		switch s := s.(type) {
		case *stmt.If:
			fmt.Fprintf(out, "%sIF %s THEN\n", indent(depth), s.Condition.String())
			printStmts(out, s.TrueBranch, depth+1)
			//
			if len(s.FalseBranch) > 0 {
				fmt.Fprintf(out, "%sELSE\n", indent(depth))
				printStmts(out, s.FalseBranch, depth+1)
			}
			//
			fmt.Fprintf(out, "%sEND\n", indent(depth))
		case *stmt.Repeat:
			fmt.Fprintf(out, "%sREPEAT\n", indent(depth))
			printStmts(out, s.Body, depth+1)
			fmt.Fprintf(out, "%sUNTIL %s END\n", indent(depth), s.Until.String())
		default:
			fmt.Fprintf(out, "%s%s\n", indent(depth), s.String())
		}
	}
}

func indent(depth int) string {
	return strings.Repeat(" ", depth*INDENT)
}
