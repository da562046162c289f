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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/simple/codegen/fixed"
	"github.com/consensys/go-simple/pkg/simple/codegen/pooled"
	"github.com/consensys/go-simple/pkg/simple/compiler"
	"github.com/consensys/go-simple/pkg/util/source"
	"github.com/consensys/go-simple/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	// EXIT_FAILURE indicates a runtime failure, or a misuse of the command.
	EXIT_FAILURE = 1
	// EXIT_SYNTAX indicates the source file contained syntax or semantic errors.
	EXIT_SYNTAX = 2
	// EXIT_BACKEND indicates the backend rejected the program.
	EXIT_BACKEND = 3
	// EXIT_IO indicates a file could not be read or written.
	EXIT_IO = 4
)

// STDIN identifies the standard input, when given in place of a filename.
const STDIN = "-"

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(EXIT_FAILURE)
	}

	return r
}

// GetString gets an expected string, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(EXIT_FAILURE)
	}

	return r
}

// GetUint gets an expected unsigned integer, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(EXIT_FAILURE)
	}

	return r
}

// Configure the log level, and load the configuration (if any).
func configure(cmd *cobra.Command) *Config {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
	//
	config, err := FindConfig(GetString(cmd, "config"))
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(EXIT_IO)
	}
	//
	if colour := GetString(cmd, "colour"); colour != "" {
		config.Colour = colour
		//
		if err := config.validate("--colour"); err != nil {
			fmt.Println(err)
			os.Exit(EXIT_FAILURE)
		}
	}
	//
	return config
}

// Determine the name of the (single) source file given as an argument, where
// no argument means the standard input.
func sourceArgument(args []string) string {
	switch len(args) {
	case 0:
		return STDIN
	case 1:
		return args[0]
	default:
		fmt.Println("expected at most one source file")
		os.Exit(EXIT_FAILURE)
	}
	// unreachable
	return ""
}

// Read a source file, or the standard input.
func readSourceFile(filename string) *source.File {
	var (
		srcfile *source.File
		err     error
	)
	//
	if filename == STDIN {
		var bytes []byte
		//
		if bytes, err = io.ReadAll(os.Stdin); err == nil {
			srcfile = source.NewSourceFile("<stdin>", bytes)
		}
	} else {
		srcfile, err = source.ReadFile(filename)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(EXIT_IO)
	}
	//
	return srcfile
}

// CompileSourceFile reads and compiles a given source file, reporting any
// errors and exiting if there are any.
func CompileSourceFile(config *Config, filename string) (*ast.Program, *source.Map[any]) {
	var srcfile = readSourceFile(filename)
	//
	log.Debug(fmt.Sprintf("compiling source file %s", srcfile.Filename()))
	// Compile source file
	program, srcmap, errs := compiler.Compile(srcfile)
	// Check for errors
	if len(errs) != 0 {
		printSyntaxErrors(config, errs)
		os.Exit(EXIT_SYNTAX)
	}
	//
	return program, srcmap
}

// GenerateProgram translates a compiled program into an assembly listing using
// a given backend, reporting any errors and exiting if there are any.
func GenerateProgram(config *Config, program *ast.Program, srcmap *source.Map[any],
	backend string) *amd64.Program {
	//
	var listing, errs = codegen.Generate(program, NewBackend(backend, srcmap))
	//
	if len(errs) != 0 {
		printSyntaxErrors(config, errs)
		os.Exit(EXIT_BACKEND)
	}
	//
	return listing
}

// NewBackend constructs the backend of a given name.
func NewBackend(name string, srcmap *source.Map[any]) codegen.Backend {
	switch name {
	case FIXED_BACKEND:
		return fixed.New(srcmap)
	case POOLED_BACKEND:
		return pooled.New(srcmap)
	default:
		panic(fmt.Sprintf("unknown backend %s", name))
	}
}

// Select the backend requested on the command line, or otherwise configured.
func selectBackend(cmd *cobra.Command, config *Config) string {
	if GetFlag(cmd, "optimise") {
		return POOLED_BACKEND
	}
	//
	return config.Backend
}

// Report a runtime error, which may or may not identify a position in the
// source file.
func printRuntimeError(config *Config, err error) {
	var serr *source.SyntaxError
	//
	if errors.As(err, &serr) {
		printSyntaxErrors(config, []source.SyntaxError{*serr})
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
}

func printSyntaxErrors(config *Config, errs []source.SyntaxError) {
	var colour = config.UseColour(os.Stderr)
	//
	for _, err := range errs {
		printSyntaxError(os.Stderr, &err, colour)
	}
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(out io.Writer, err *source.SyntaxError, colour bool) {
	var (
		span       = err.Span()
		line       = err.FirstEnclosingLine()
		lineOffset = span.Start() - line.Start()
		// Calculate length (ensures don't overflow line)
		length    = max(1, min(line.Length()-lineOffset, span.Length()))
		highlight = termio.NewAnsiEscape().FgColour(termio.TERM_RED)
		bold      = termio.BoldAnsiEscape()
	)
	// Print error + line number
	fmt.Fprintf(out, "%s:%d:%d-%d %s\n", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, bold.Wrap(err.Message(), colour))
	// Print separator line
	fmt.Fprintln(out)
	// Print line
	fmt.Fprintln(out, line.String())
	// Print indent (todo: account for tabs)
	fmt.Fprint(out, strings.Repeat(" ", max(0, lineOffset)))
	// Print highlight
	fmt.Fprintln(out, highlight.Wrap(strings.Repeat("^", length), colour))
}
