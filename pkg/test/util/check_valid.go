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
	"strconv"
	"testing"

	"github.com/consensys/go-simple/pkg/util/source"
)

// Check that a given program compiles, and that running it produces the
// expected output.  The program is run under the interpreter, and the code
// generated by every backend is run on the emulator.  Input is read from the
// ".in" file (if present), and the expected output from the ".out" file.  By
// default, a program is expected to exit successfully, though this can be
// changed by an attribute "(*exit:N*)" at the start of the file.
func Check(t *testing.T, test string) {
	var (
		srcfile  = readSourceFile(t, testFilename(test, SOURCE_EXTENSION))
		input    = readOptionalFile(t, testFilename(test, "in"))
		expected = Outcome{Status: exitStatus(t, srcfile), Output: readOptionalFile(t, testFilename(test, "out"))}
	)
	// Enable testing each program in parallel
	t.Parallel()
	//
	program, srcmap := compile(t, srcfile)
	// Check interpreter first, since it is the reference semantics.
	checkOutcome(t, "interpreter", expected, interpret(program, srcmap, input))
	//
	for _, backend := range BACKENDS {
		listing, errs := generate(program, srcmap, backend)
		//
		for _, err := range errs {
			t.Errorf("%s backend: %s", backend, errorToString(err))
		}
		//
		if len(errs) > 0 {
			continue
		}
		//
		actual, err := emulate(listing, input)
		//
		if err != nil {
			t.Errorf("%s backend: %s", backend, err.Error())
		} else {
			checkOutcome(t, fmt.Sprintf("%s backend", backend), expected, actual)
		}
	}
}

// Check the actual outcome of running a program matches that expected.  Since
// diagnostics differ between the interpreter and the generated code, only the
// presence of an error message is checked when a program fails.
func checkOutcome(t *testing.T, name string, expected Outcome, actual Outcome) {
	switch {
	case (expected.Status == 0) != (actual.Status == 0):
		t.Errorf("%s: expected exit status %d, got %s", name, expected.Status, actual.String())
	case expected.Status != 0 && actual.Errors == "":
		t.Errorf("%s: expected error message, got %s", name, actual.String())
	case expected.Output != actual.Output:
		t.Errorf("%s: expected output %q, got %s", name, expected.Output, actual.String())
	}
}

// Determine the exit status expected for a given program.
func exitStatus(t *testing.T, srcfile *source.File) int {
	statuses, errs := ExtractAttributes(srcfile, extractExitStatus)
	//
	if len(errs) > 0 {
		t.Fatal(errors.Join(errs...))
	} else if len(statuses) > 1 {
		t.Fatalf("%s: multiple exit statuses given", srcfile.Filename())
	} else if len(statuses) == 1 {
		return statuses[0]
	}
	//
	return 0
}

// Extract the expected exit status from a given line, or return false if it
// does not describe one.
func extractExitStatus(lineno int, lines []source.Line, _ *source.File) (bool, int, error) {
	contents, ok := attributeContents(lines[lineno].String(), "exit")
	//
	if !ok {
		return false, 0, nil
	}
	//
	status, err := strconv.Atoi(contents)
	//
	return true, status, err
}
