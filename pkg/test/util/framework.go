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
package util

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/consensys/go-simple/pkg/cmd"
	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
	"github.com/consensys/go-simple/pkg/simple/compiler"
	"github.com/consensys/go-simple/pkg/simple/interpreter"
	"github.com/consensys/go-simple/pkg/simple/machine"
	"github.com/consensys/go-simple/pkg/util/source"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the simple test programs and their expected outputs are found.
const TestDir = "../../testdata"

// SOURCE_EXTENSION is the extension used for all simple test programs.
const SOURCE_EXTENSION = "simple"

// STEP_LIMIT bounds the number of instructions executed by the emulator for
// any one test program.
const STEP_LIMIT uint = 10_000_000

// BACKENDS identifies the code generators against which every test program is
// checked.
var BACKENDS = []string{cmd.FIXED_BACKEND, cmd.POOLED_BACKEND}

// Outcome captures the observable behaviour of running a program to
// completion.
type Outcome struct {
	// Exit status of the program
	Status int
	// Everything written to the output stream
	Output string
	// Everything written to the error stream
	Errors string
}

func (p Outcome) String() string {
	return fmt.Sprintf("status %d, output %q, errors %q", p.Status, p.Output, p.Errors)
}

// Determine the full filename of a given test file.
func testFilename(test, ext string) string {
	return fmt.Sprintf("%s/%s.%s", TestDir, test, ext)
}

func readSourceFile(t *testing.T, filename string) *source.File {
	// Read program file
	bytes, err := os.ReadFile(filename)
	// Check test file read ok
	if err != nil {
		t.Fatal(err)
	}
	// Package up as source file
	return source.NewSourceFile(filename, bytes)
}

// Read a file which may or may not exist, returning the empty string when it
// does not.
func readOptionalFile(t *testing.T, filename string) string {
	bytes, err := os.ReadFile(filename)
	//
	if errors.Is(err, os.ErrNotExist) {
		return ""
	} else if err != nil {
		t.Fatal(err)
	}
	//
	return string(bytes)
}

// Generate a program using the named backend, returning either the listing or
// the errors which prevented it.
func generate(program *ast.Program, srcmap *source.Map[any], backend string) (*amd64.Program,
	[]source.SyntaxError) {
	return codegen.Generate(program, cmd.NewBackend(backend, srcmap))
}

// Run a generated program on the emulator against a given input.
func emulate(listing *amd64.Program, input string) (Outcome, error) {
	var out, errs strings.Builder
	//
	m, err := machine.New(listing, strings.NewReader(input), &out, &errs)
	//
	if err != nil {
		return Outcome{}, err
	}
	//
	m.SetLimit(STEP_LIMIT)
	//
	status, err := m.Run()
	//
	return Outcome{status, out.String(), errs.String()}, err
}

// Run a compiled program under the interpreter against a given input.  Runtime
// errors are reported in the same manner as the generated code does.
func interpret(program *ast.Program, srcmap *source.Map[any], input string) Outcome {
	var out strings.Builder
	//
	if err := interpreter.New(program, srcmap, strings.NewReader(input), &out).Run(); err != nil {
		return Outcome{1, out.String(), err.Error()}
	}
	//
	return Outcome{0, out.String(), ""}
}

// Compile a given source file, reporting any errors arising as test failures.
func compile(t *testing.T, srcfile *source.File) (*ast.Program, *source.Map[any]) {
	program, srcmap, errs := compiler.Compile(srcfile)
	//
	for _, err := range errs {
		t.Error(errorToString(err))
	}
	//
	if len(errs) > 0 {
		t.FailNow()
	}
	//
	return program, srcmap
}
