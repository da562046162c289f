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
package codegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/consensys/go-simple/pkg/simple/ast/data"
	"github.com/consensys/go-simple/pkg/simple/ast/variable"
	"github.com/consensys/go-simple/pkg/util/termio"
)

// Leaf describes the placement of a single scalar within the memory region
// holding all global variables.
type Leaf struct {
	// Path of this leaf (e.g. "a[1].x").
	Path string
	// Byte offset of this leaf from the start of the region.
	Offset uint
}

// Layout determines the placement of every scalar leaf of the global variables
// within a single contiguous memory region.  Leaves are placed one word apart,
// in the order given by flattening each variable's type.
type Layout struct {
	leaves []Leaf
	// Maps every path (including aggregates) to its offset.
	offsets map[string]uint
}

// PlanLayout places the given variables, in order, assigning each the offset of
// its first leaf.  Planning the same variables again yields an identical
// layout.
func PlanLayout(vars []*variable.Variable) *Layout {
	var layout = &Layout{nil, make(map[string]uint)}
	//
	for _, v := range vars {
		v.SetOffset(layout.Size())
		v.Type().Flatten(v.Name(), layout.place)
	}
	//
	return layout
}

// Place a path within the region.  Aggregates (including those without any
// leaves) take the offset of whatever follows them.
func (p *Layout) place(path string, datatype data.Type) {
	if _, ok := p.offsets[path]; !ok {
		p.offsets[path] = p.Size()
	}
	//
	if data.IsInteger(datatype) {
		p.leaves = append(p.leaves, Leaf{path, p.Size()})
	}
}

// Size returns the number of bytes occupied by the region.
func (p *Layout) Size() uint {
	return uint(len(p.leaves)) * data.WORD
}

// Leaves returns every leaf in the region, ordered by offset.
func (p *Layout) Leaves() []Leaf {
	return p.leaves
}

// Lookup returns the offset of a given path, which may identify either a leaf
// or an aggregate.  This returns false if no such path exists, such as when an
// index is out of range.
func (p *Layout) Lookup(path string) (uint, bool) {
	offset, ok := p.offsets[path]
	return offset, ok
}

// Mangle converts the path of a leaf into a name which can be used as an
// assembly symbol.  For example, "a[0].x" becomes "v_a_0_x".  Since SIMPLE
// identifiers cannot contain underscores, distinct paths have distinct names.
func Mangle(path string) string {
	var replacer = strings.NewReplacer("[", "_", "]", "", ".", "_", "-", "m")
	//
	return "v_" + replacer.Replace(path)
}

// Print this layout as a table of leaves, along with their offsets and mangled
// names.
func (p *Layout) Print(out io.Writer, width uint) {
	var table = termio.NewTablePrinter(3, 1+uint(len(p.leaves)))
	//
	table.SetRow(0, "Leaf", "Offset", "Symbol")
	//
	for i, leaf := range p.leaves {
		table.SetRow(uint(i+1), leaf.Path, fmt.Sprintf("%d", leaf.Offset), Mangle(leaf.Path))
	}
	//
	table.SetMaxWidths(width)
	table.Print(out)
}
