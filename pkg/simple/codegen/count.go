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
package codegen

import (
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
)

// Count returns the number of jump targets reserved by a given statement.
// Every statement reserves one target at its start.  A conditional
// additionally reserves a target for the start of its false branch (which is
// also its end when there is no false branch), and another for its end when it
// has a false branch.  Since this is a function of the tree alone, the targets
// of forward jumps are known before the statements they skip are emitted.
func Count(s stmt.Stmt) uint {
	switch s := s.(type) {
	case *stmt.Assign, *stmt.Read, *stmt.Write, *stmt.Call:
		return 1
	case *stmt.If:
		if len(s.FalseBranch) == 0 {
			return 2 + CountAll(s.TrueBranch)
		}
		//
		return 3 + CountAll(s.TrueBranch) + CountAll(s.FalseBranch)
	case *stmt.Repeat:
		return 1 + CountAll(s.Body)
	default:
		panic("unknown statement")
	}
}

// CountAll returns the number of jump targets reserved by a sequence of
// statements.
func CountAll(stmts []stmt.Stmt) uint {
	var count uint
	//
	for _, s := range stmts {
		count += Count(s)
	}
	//
	return count
}
