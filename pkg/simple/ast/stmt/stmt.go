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
package stmt

import (
	"fmt"
	"strings"
)

// Stmt represents a statement of a SIMPLE program.  The set of statements is
// closed, consisting of: *Assign, *If, *Repeat, *Read, *Write and *Call.
// Loops written using WHILE are represented by an *If enclosing a *Repeat.
type Stmt interface {
	fmt.Stringer
}

// String returns a single-line representation of a sequence of statements.
func String(stmts []Stmt) string {
	var builder strings.Builder
	//
	for i, s := range stmts {
		if i != 0 {
			builder.WriteString("; ")
		}
		//
		builder.WriteString(s.String())
	}
	//
	return builder.String()
}
