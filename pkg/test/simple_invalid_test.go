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
// Front End
// ===================================================================

func Test_Invalid_Undeclared(t *testing.T) {
	util.CheckInvalid(t, "simple/undeclared")
}

func Test_Invalid_Mismatch(t *testing.T) {
	util.CheckInvalid(t, "simple/mismatch")
}

func Test_Invalid_Division(t *testing.T) {
	util.CheckInvalid(t, "simple/division")
}

func Test_Invalid_NotRecord(t *testing.T) {
	util.CheckInvalid(t, "simple/not_record")
}

func Test_Invalid_ProgramName(t *testing.T) {
	util.CheckInvalid(t, "simple/program_name")
}

// ===================================================================
// Backends
// ===================================================================

func Test_Invalid_Scenario_03(t *testing.T) {
	util.CheckInvalid(t, "simple/scenario_03")
}

func Test_Invalid_NegativeIndex(t *testing.T) {
	util.CheckInvalid(t, "simple/negative_index")
}

func Test_Invalid_NestedIndex(t *testing.T) {
	util.CheckInvalid(t, "simple/nested_index")
}

func Test_Invalid_Unsupported(t *testing.T) {
	util.CheckInvalid(t, "simple/unsupported")
}
