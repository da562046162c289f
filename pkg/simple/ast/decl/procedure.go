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
package decl

import (
	"fmt"
	"strings"

	"github.com/consensys/go-simple/pkg/simple/ast/data"
	"github.com/consensys/go-simple/pkg/simple/ast/expr"
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
	"github.com/consensys/go-simple/pkg/simple/ast/variable"
)

// Procedure represents a named procedure with zero or more parameters and
// local variables.  A procedure which declares a return type is a function,
// and must have a return expression.
type Procedure struct {
	name string
	// Parameters in declaration order.
	Parameters []*variable.Variable
	// Local variables in declaration order.
	Locals []*variable.Variable
	// Declared return type, or nil if none.
	ReturnType data.Type
	// Body of the procedure.
	Body []stmt.Stmt
	// Return expression, or nil if none.
	Return expr.Expr
}

// NewProcedure constructs a new procedure whose body is not yet known.  This
// allows the procedure to be declared before its body is parsed, such that it
// can call itself.
func NewProcedure(name string, params []*variable.Variable, ret data.Type) *Procedure {
	return &Procedure{name, params, nil, ret, nil, nil}
}

// Name implementation for Declaration interface
func (p *Procedure) Name() string {
	return p.name
}

// IsFunction checks whether this procedure returns a value.
func (p *Procedure) IsFunction() bool {
	return p.ReturnType != nil
}

func (p *Procedure) String() string {
	var params = make([]string, len(p.Parameters))
	//
	for i, v := range p.Parameters {
		params[i] = v.String()
	}
	//
	if p.ReturnType != nil {
		return fmt.Sprintf("%s(%s): %s", p.name, strings.Join(params, "; "), p.ReturnType.String())
	}
	//
	return fmt.Sprintf("%s(%s)", p.name, strings.Join(params, "; "))
}
