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

// Assign represents the assignment of a value to a location.  When the
// location has an aggregate type, the source is a location of the same type
// and the assignment copies every leaf.
type Assign struct {
	Target expr.Location
	Source expr.Expr
}

// NewAssign constructs a new assignment.
func NewAssign(target expr.Location, source expr.Expr) *Assign {
	return &Assign{target, source}
}

func (p *Assign) String() string {
	return fmt.Sprintf("%s := %s", p.Target.String(), p.Source.String())
}
