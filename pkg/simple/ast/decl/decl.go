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

	"github.com/consensys/go-simple/pkg/simple/ast/data"
)

// Declaration represents anything which can be declared by name within a
// scope.  The set of declarations is closed, consisting of: *Constant,
// *TypeAlias, *Procedure and *variable.Variable.
type Declaration interface {
	// Name returns the declared name.
	Name() string
}

// Constant represents a named integer constant, whose value was determined at
// compile time.
type Constant struct {
	name  string
	Value int64
}

// NewConstant constructs a new named constant.
func NewConstant(name string, value int64) *Constant {
	return &Constant{name, value}
}

// Name implementation for Declaration interface
func (p *Constant) Name() string {
	return p.name
}

func (p *Constant) String() string {
	return fmt.Sprintf("%s = %d", p.name, p.Value)
}

// TypeAlias represents a named type.
type TypeAlias struct {
	name string
	Type data.Type
}

// NewTypeAlias constructs a new named type.
func NewTypeAlias(name string, t data.Type) *TypeAlias {
	return &TypeAlias{name, t}
}

// Name implementation for Declaration interface
func (p *TypeAlias) Name() string {
	return p.name
}

func (p *TypeAlias) String() string {
	return fmt.Sprintf("%s = %s", p.name, p.Type.String())
}
