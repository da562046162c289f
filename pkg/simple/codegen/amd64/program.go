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
package amd64

import (
	"fmt"
	"io"
	"strconv"
)

// ENTRY is the name of the function at which execution starts.
const ENTRY = "main"

// DataKind identifies how the contents of a data item are given.
type DataKind uint8

const (
	// QUAD is a single initialised word.
	QUAD DataKind = iota
	// ZERO is a block of zeroed bytes.
	ZERO
	// ASCIZ is a null-terminated string.
	ASCIZ
)

// Datum is a named item in the data section.
type Datum struct {
	Name string
	Kind DataKind
	// Initial value (QUAD) or number of bytes (ZERO).
	Value int64
	// Contents (ASCIZ)
	Text string
}

// Size returns the number of bytes occupied by this item.
func (p *Datum) Size() uint {
	switch p.Kind {
	case QUAD:
		return 8
	case ZERO:
		return uint(p.Value)
	case ASCIZ:
		return uint(len(p.Text)) + 1
	default:
		panic("unreachable")
	}
}

func (p *Datum) String() string {
	switch p.Kind {
	case QUAD:
		return fmt.Sprintf("%s:\t.quad %d", p.Name, p.Value)
	case ZERO:
		return fmt.Sprintf("%s:\t.zero %d", p.Name, p.Value)
	case ASCIZ:
		return fmt.Sprintf("%s:\t.asciz %s", p.Name, strconv.Quote(p.Text))
	default:
		panic("unreachable")
	}
}

// Program is an assembly listing, consisting of a data section and a text
// section.  Instructions are appended to the end of the text section as they
// are emitted.
type Program struct {
	data []*Datum
	text []Statement
}

// NewProgram constructs an initially empty program.
func NewProgram() *Program {
	return &Program{}
}

// Data returns the items of the data section, in order.
func (p *Program) Data() []*Datum {
	return p.data
}

// Text returns the labels and instructions of the text section, in order.
func (p *Program) Text() []Statement {
	return p.text
}

// Quad adds an initialised word to the data section.
func (p *Program) Quad(name string, value int64) {
	p.data = append(p.data, &Datum{name, QUAD, value, ""})
}

// Zero adds a block of zeroed bytes to the data section.
func (p *Program) Zero(name string, size uint) {
	p.data = append(p.data, &Datum{name, ZERO, int64(size), ""})
}

// Asciz adds a null-terminated string to the data section.
func (p *Program) Asciz(name string, text string) {
	p.data = append(p.data, &Datum{name, ASCIZ, 0, text})
}

// Label appends a label to the text section.
func (p *Program) Label(name string) {
	p.text = append(p.text, &Label{name})
}

// Emit appends an instruction to the text section.
func (p *Program) Emit(opcode Opcode, operands ...Operand) {
	p.text = append(p.text, NewInstruction(opcode, operands...))
}

// Instructions returns the number of instructions (i.e. excluding labels) in
// the text section.
func (p *Program) Instructions() uint {
	var count uint
	//
	for _, s := range p.text {
		if _, ok := s.(*Instruction); ok {
			count++
		}
	}
	//
	return count
}

// WriteTo writes this program as an AT&T syntax listing.
func (p *Program) WriteTo(out io.Writer) (int64, error) {
	var w = listingWriter{out, 0, nil}
	//
	w.println("\t.data")
	//
	for _, d := range p.data {
		w.println(d.String())
	}
	//
	w.println("\t.text")
	w.println("\t.globl " + ENTRY)
	//
	for _, s := range p.text {
		switch s := s.(type) {
		case *Label:
			w.println(s.String())
		case *Instruction:
			w.println("\t" + s.String())
		default:
			panic("unreachable")
		}
	}
	//
	return w.written, w.err
}

// listingWriter tracks the first error encountered whilst writing.
type listingWriter struct {
	out     io.Writer
	written int64
	err     error
}

func (p *listingWriter) println(line string) {
	if p.err == nil {
		var n int
		n, p.err = fmt.Fprintln(p.out, line)
		p.written += int64(n)
	}
}
