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
package expr

import (
	"fmt"

	"github.com/consensys/go-simple/pkg/simple/ast/data"
)

// Function represents the invocation of a procedure which returns a value.
// The procedure is referred to by name, and resolved against the enclosing
// program.
type Function struct {
	Name   string
	Args   []Expr
	Return data.Type
}

// NewFunction constructs a new function invocation.
func NewFunction(name string, args []Expr, ret data.Type) *Function {
	return &Function{name, args, ret}
}

// Type implementation for Expr interface
func (p *Function) Type() data.Type {
	return p.Return
}

func (p *Function) String() string {
	return fmt.Sprintf("%s(%s)", p.Name, stringOfArgs(p.Args))
}
