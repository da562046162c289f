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

// Repeat represents a loop whose body executes at least once, and then repeats
// until a given condition holds.
type Repeat struct {
	Body  []Stmt
	Until expr.Condition
}

// NewRepeat constructs a new loop.
func NewRepeat(body []Stmt, until expr.Condition) *Repeat {
	return &Repeat{body, until}
}

func (p *Repeat) String() string {
	return fmt.Sprintf("REPEAT %s UNTIL %s END", String(p.Body), p.Until.String())
}
