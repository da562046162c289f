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
	"testing"

	"github.com/consensys/go-simple/pkg/simple/compiler"
	"github.com/consensys/go-simple/pkg/util/source"
)

// CheckInvalid checks that a given program fails to compile, producing exactly
// the errors described at the start of the file.  Programs which pass the front
// end are additionally given to every backend, each of which must reject them.
func CheckInvalid(t *testing.T, test string) {
	var filename = testFilename(test, SOURCE_EXTENSION)
	// Enable testing each program in parallel
	t.Parallel()
	//
	srcfile := readSourceFile(t, filename)
	// Extract expected errors for comparison
	expected, errs := ExtractAttributes(srcfile, extractSyntaxError)
	//
	if len(errs) > 0 {
		// Report any errors encountered parsing the attributes themselves.
		t.Fatal(errors.Join(errs...))
	}
	// Compile source file to produce errors
	program, srcmap, actual := compiler.Compile(srcfile)
	//
	if len(actual) > 0 {
		checkExpectedErrors(t, srcfile.Filename(), actual, expected)
		return
	}
	//
	for _, backend := range BACKENDS {
		listing, actual := generate(program, srcmap, backend)
		//
		if listing != nil && len(actual) > 0 {
			t.Errorf("%s backend produced a listing despite errors", backend)
		}
		//
		checkExpectedErrors(t, fmt.Sprintf("%s (%s backend)", filename, backend), actual, expected)
	}
}

func checkExpectedErrors(t *testing.T, name string, actual, expected []source.SyntaxError) {
	if len(actual) == 0 {
		t.Fatalf("Error %s should not have compiled\n", name)
	}
	//
	failed := false
	// Construct initial message
	msg := fmt.Sprintf("Error %s\n", name)
	// Pad out with what received
	for i := 0; i < max(len(actual), len(expected)); i++ {
		if i < len(actual) && i < len(expected) {
			// Check whether message OK
			if expected[i].Message() == actual[i].Message() && expected[i].Span() == actual[i].Span() {
				continue
			}
		}
		// Indicate error arose
		failed = true
		// actual
		if i < len(actual) {
			msg = fmt.Sprintf("%s unexpected error %s\n", msg, errorToString(actual[i]))
		}
		// expected
		if i < len(expected) {
			msg = fmt.Sprintf("%s   expected error %s\n", msg, errorToString(expected[i]))
		}
	}
	//
	if failed {
		t.Fatal(msg)
	}
}
