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

	"github.com/consensys/go-simple/pkg/simple/ast/expr"
)

// If represents a conditional statement, where the false branch may be empty.
type If struct {
	Condition   expr.Condition
	TrueBranch  []Stmt
	FalseBranch []Stmt
}

// NewIf constructs a new conditional statement.
func NewIf(cond expr.Condition, trueBranch []Stmt, falseBranch []Stmt) *If {
	return &If{cond, trueBranch, falseBranch}
}

func (p *If) String() string {
	if len(p.FalseBranch) == 0 {
		return fmt.Sprintf("IF %s THEN %s END", p.Condition.String(), String(p.TrueBranch))
	}
	//
	return fmt.Sprintf("IF %s THEN %s ELSE %s END", p.Condition.String(), String(p.TrueBranch),
		String(p.FalseBranch))
}
