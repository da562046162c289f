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
package data

import (
	"fmt"
	"strings"
)

// WORD is the number of bytes occupied by a single integer.
const WORD = uint(8)

// Type represents the type of a variable or expression.  Types are compared by
// identity, meaning two separately constructed array types with the same shape
// are distinct.  The only exception is INTEGER, of which there is exactly one.
type Type interface {
	fmt.Stringer
	// Size returns the number of bytes required to store an element of this
	// type.
	Size() uint
	// Flatten this type into its paths, using a given prefix.  For example, a
	// variable "x: ARRAY 2 OF INTEGER" is flattened into "x", "x[0]" and "x[1]".
	// Paths are visited in the order in which they are laid out in memory, with
	// each aggregate visited before its contents.  Aggregates without contents
	// (e.g. an empty record) are still visited.
	Flatten(prefix string, constructor func(path string, datatype Type))
}

// INTEGER is the one and only integer type.
var INTEGER Type = &Integer{}

// Integer represents a signed 64-bit integer.
type Integer struct{}

// Size implementation for Type interface
func (p *Integer) Size() uint {
	return WORD
}

// Flatten implementation for Type interface
func (p *Integer) Flatten(prefix string, constructor func(path string, datatype Type)) {
	constructor(prefix, p)
}

func (p *Integer) String() string {
	return "INTEGER"
}

// Array represents a fixed-size array of a given type.
type Array struct {
	Element Type
	Length  uint
}

// NewArray constructs a new array of a given length.
func NewArray(element Type, length uint) *Array {
	return &Array{element, length}
}

// Size implementation for Type interface
func (p *Array) Size() uint {
	return p.Length * p.Element.Size()
}

// Flatten implementation for Type interface
func (p *Array) Flatten(prefix string, constructor func(path string, datatype Type)) {
	constructor(prefix, p)
	//
	for i := uint(0); i < p.Length; i++ {
		p.Element.Flatten(fmt.Sprintf("%s[%d]", prefix, i), constructor)
	}
}

func (p *Array) String() string {
	return fmt.Sprintf("ARRAY %d OF %s", p.Length, p.Element.String())
}

// Field represents a named field within a record, along with its byte offset
// from the start of that record.
type Field struct {
	Name   string
	Type   Type
	Offset uint
}

// Record represents a data structure composed of one or more named fields,
// each of which has a declared type.  Fields are laid out contiguously in their
// declared order.
type Record struct {
	Fields []Field
	size   uint
}

// NewRecord constructs a new record from a given set of named fields, whose
// offsets are determined by the cumulative sizes of preceding fields.
func NewRecord(names []string, types []Type) *Record {
	var (
		fields = make([]Field, len(names))
		offset uint
	)
	//
	if len(names) != len(types) {
		panic("inconsistent record fields")
	}
	//
	for i, name := range names {
		fields[i] = Field{name, types[i], offset}
		offset += types[i].Size()
	}
	//
	return &Record{fields, offset}
}

// Field returns the field of a given name, or false if no such field exists.
func (p *Record) Field(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	//
	return Field{}, false
}

// Size implementation for Type interface
func (p *Record) Size() uint {
	return p.size
}

// Flatten implementation for Type interface
func (p *Record) Flatten(prefix string, constructor func(path string, datatype Type)) {
	constructor(prefix, p)
	//
	for _, f := range p.Fields {
		f.Type.Flatten(fmt.Sprintf("%s.%s", prefix, f.Name), constructor)
	}
}

func (p *Record) String() string {
	var builder strings.Builder
	//
	builder.WriteString("RECORD")
	//
	for _, f := range p.Fields {
		builder.WriteString(fmt.Sprintf(" %s: %s;", f.Name, f.Type.String()))
	}
	//
	builder.WriteString(" END")
	//
	return builder.String()
}

// IsInteger checks whether a given type is the integer type.
func IsInteger(t Type) bool {
	return t == INTEGER
}
