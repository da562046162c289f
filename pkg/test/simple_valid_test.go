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
package test

import (
	"testing"

	"github.com/consensys/go-simple/pkg/test/util"
)

// ===================================================================
// Scenarios
// ===================================================================

func Test_Valid_Scenario_01(t *testing.T) {
	util.Check(t, "simple/scenario_01")
}

func Test_Valid_Scenario_02(t *testing.T) {
	util.Check(t, "simple/scenario_02")
}

func Test_Valid_Scenario_04(t *testing.T) {
	util.Check(t, "simple/scenario_04")
}

func Test_Valid_Scenario_05(t *testing.T) {
	util.Check(t, "simple/scenario_05")
}

func Test_Valid_Scenario_06(t *testing.T) {
	util.Check(t, "simple/scenario_06")
}

// ===================================================================
// Programs
// ===================================================================

func Test_Valid_Arith(t *testing.T) {
	util.Check(t, "simple/arith")
}

func Test_Valid_Bounds(t *testing.T) {
	util.Check(t, "simple/bounds")
}

func Test_Valid_EmptyRecord(t *testing.T) {
	util.Check(t, "simple/empty_record")
}

func Test_Valid_Factorial(t *testing.T) {
	util.Check(t, "simple/factorial")
}

func Test_Valid_Fibonacci(t *testing.T) {
	util.Check(t, "simple/fibonacci")
}

func Test_Valid_Gcd(t *testing.T) {
	util.Check(t, "simple/gcd")
}

func Test_Valid_Matrix(t *testing.T) {
	util.Check(t, "simple/matrix")
}

func Test_Valid_Records(t *testing.T) {
	util.Check(t, "simple/records")
}

func Test_Valid_Sieve(t *testing.T) {
	util.Check(t, "simple/sieve")
}

func Test_Valid_Sort(t *testing.T) {
	util.Check(t, "simple/sort")
}

func Test_Valid_Spill(t *testing.T) {
	util.Check(t, "simple/spill")
}
