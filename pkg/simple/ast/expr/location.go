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
	"github.com/consensys/go-simple/pkg/simple/ast/variable"
)

// VarAccess represents a direct reference to a declared variable.
type VarAccess struct {
	Variable *variable.Variable
}

// NewVarAccess constructs a new access of a given variable.
func NewVarAccess(v *variable.Variable) *VarAccess {
	return &VarAccess{v}
}

// Type implementation for Expr interface
func (p *VarAccess) Type() data.Type {
	return p.Variable.Type()
}

// IsStatic implementation for Location interface
func (p *VarAccess) IsStatic() bool {
	return true
}

func (p *VarAccess) String() string {
	return p.Variable.Name()
}

// Index represents the selection of an element from an array.
type Index struct {
	Base      Location
	Subscript Expr
	// Array type being indexed
	Array *data.Array
}

// NewIndex constructs a new array element selection.
func NewIndex(base Location, subscript Expr) *Index {
	array, ok := base.Type().(*data.Array)
	//
	if !ok {
		panic(fmt.Sprintf("cannot index non-array %s", base.String()))
	}
	//
	return &Index{base, subscript, array}
}

// Type implementation for Expr interface
func (p *Index) Type() data.Type {
	return p.Array.Element
}

// IsStatic implementation for Location interface
func (p *Index) IsStatic() bool {
	_, ok := p.Subscript.(*Number)
	return ok && p.Base.IsStatic()
}

func (p *Index) String() string {
	return fmt.Sprintf("%s[%s]", p.Base.String(), p.Subscript.String())
}

// Field represents the selection of a field from a record.
type Field struct {
	Base Location
	Name string
	// Selected field, including its offset within the record.
	Field data.Field
}

// NewField constructs a new record field selection.
func NewField(base Location, name string) *Field {
	record, ok := base.Type().(*data.Record)
	//
	if !ok {
		panic(fmt.Sprintf("cannot select from non-record %s", base.String()))
	}
	//
	field, ok := record.Field(name)
	//
	if !ok {
		panic(fmt.Sprintf("unknown field %s", name))
	}
	//
	return &Field{base, name, field}
}

// Type implementation for Expr interface
func (p *Field) Type() data.Type {
	return p.Field.Type
}

// IsStatic implementation for Location interface
func (p *Field) IsStatic() bool {
	return p.Base.IsStatic()
}

func (p *Field) String() string {
	return fmt.Sprintf("%s.%s", p.Base.String(), p.Name)
}
