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
	"fmt"
	"io"
	"os"

	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/compiler"
	"github.com/consensys/go-simple/pkg/util/source"
	"github.com/consensys/go-simple/pkg/util/termio"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [flags] [source_file]",
	Short: "print the tokens of a SIMPLE program.",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			config  = configure(cmd)
			srcfile = readSourceFile(sourceArgument(args))
		)
		//
		if errs := writeTokens(os.Stdout, srcfile); len(errs) != 0 {
			printSyntaxErrors(config, errs)
			os.Exit(EXIT_SYNTAX)
		}
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse [flags] [source_file]",
	Short: "print the concrete parse tree of a SIMPLE program.",
	Long: `Print the concrete parse tree of a given SIMPLE program.  Only the syntax of
	 the program is checked, hence undeclared names and type errors are not reported.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			config  = configure(cmd)
			srcfile = readSourceFile(sourceArgument(args))
		)
		//
		if errs := writeSyntax(os.Stdout, srcfile, GetFlag(cmd, "dot")); len(errs) != 0 {
			printSyntaxErrors(config, errs)
			os.Exit(EXIT_SYNTAX)
		}
	},
}

var symbolsCmd = &cobra.Command{
	Use:   "symbols [flags] [source_file]",
	Short: "print the declarations of a SIMPLE program.",
	Long: `Print the global declarations of a given SIMPLE program and, optionally, the
	 memory layout of its variables as planned by the code generator.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			config          = configure(cmd)
			program, _      = CompileSourceFile(config, sourceArgument(args))
			width           = termio.Width(os.Stdout)
			colour          = config.UseColour(os.Stdout)
			nrows           = 1 + len(program.Constants) + len(program.Types) + len(program.Variables)
			table           = termio.NewTablePrinter(3, uint(nrows+len(program.Procedures)))
			row        uint = 1
		)
		//
		if GetFlag(cmd, "dot") {
			ast.PrintSymbolsDot(os.Stdout, program)
			return
		}
		//
		table.SetRow(0, "Kind", "Name", "Definition")
		//
		for _, c := range program.Constants {
			table.SetRow(row, "CONST", c.Name(), fmt.Sprintf("%d", c.Value))
			row++
		}
		//
		for _, t := range program.Types {
			table.SetRow(row, "TYPE", t.Name(), t.Type.String())
			row++
		}
		//
		for _, v := range program.Variables {
			table.SetRow(row, "VAR", v.Name(), v.Type().String())
			row++
		}
		//
		for _, p := range program.Procedures {
			table.SetRow(row, "PROCEDURE", p.Name(), p.String())
			row++
		}
		//
		for col := uint(0); col < 3; col++ {
			table.SetEscape(col, 0, termio.BoldAnsiEscape().Build())
		}
		//
		table.AnsiEscapes(colour)
		table.SetMaxWidths(width)
		table.Print(os.Stdout)
		//
		if GetFlag(cmd, "layout") {
			fmt.Println()
			codegen.PlanLayout(program.Variables).Print(os.Stdout, width)
		}
	},
}

var astCmd = &cobra.Command{
	Use:   "ast [flags] [source_file]",
	Short: "print the abstract syntax tree of a SIMPLE program.",
	Long: `Print the abstract syntax tree of a given SIMPLE program, after constants have
	 been folded and loops desugared.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			config     = configure(cmd)
			program, _ = CompileSourceFile(config, sourceArgument(args))
		)
		//
		writeAst(os.Stdout, program, GetFlag(cmd, "dot"))
	},
}

// Write each token of a given source file on its own line, along with its
// position and kind.
func writeTokens(out io.Writer, srcfile *source.File) []source.SyntaxError {
	tokens, errs := compiler.Lex(srcfile)
	//
	if len(errs) != 0 {
		return errs
	}
	//
	for _, t := range tokens {
		line, column := srcfile.Position(t.Span)
		fmt.Fprintf(out, "%d:%d\t%s\t%q\n", line, column, compiler.TokenName(t.Kind), srcfile.Text(t.Span))
	}
	//
	return nil
}

// Write the concrete parse tree of a given source file, either as indented
// text or as a Graphviz graph.
func writeSyntax(out io.Writer, srcfile *source.File, dot bool) []source.SyntaxError {
	tree, errs := compiler.ParseSyntax(srcfile)
	//
	if len(errs) != 0 {
		return errs
	} else if dot {
		compiler.PrintSyntaxDot(out, tree)
	} else {
		compiler.PrintSyntax(out, tree)
	}
	//
	return nil
}

func writeAst(out io.Writer, program *ast.Program, dot bool) {
	if dot {
		ast.PrintDot(out, program)
	} else {
		ast.Print(out, program)
	}
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(parseCmd)
	symbolsCmd.Flags().Bool("layout", false, "print the memory layout of global variables")
	//
	for _, cmd := range []*cobra.Command{symbolsCmd, astCmd, parseCmd} {
		cmd.Flags().Bool("dot", false, "print as a Graphviz (DOT) graph")
	}
}
