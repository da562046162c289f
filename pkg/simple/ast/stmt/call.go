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

	"github.com/consensys/go-simple/pkg/simple/ast/expr"
)

// Call represents the invocation of a procedure for its side effects.  The
// procedure is referred to by name, and resolved against the enclosing program.
type Call struct {
	Name string
	Args []expr.Expr
}

// NewCall constructs a new call statement.
func NewCall(name string, args []expr.Expr) *Call {
	return &Call{name, args}
}

func (p *Call) String() string {
	var args = make([]string, len(p.Args))
	//
	for i, arg := range p.Args {
		args[i] = arg.String()
	}
	//
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(args, ", "))
}
