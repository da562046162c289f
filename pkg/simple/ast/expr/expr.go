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
	"strings"

	"github.com/consensys/go-simple/pkg/simple/ast/data"
)

// Expr represents an arbitrary expression.  The set of expressions is closed,
// consisting of: *Number, *Binary, *Function and the locations *VarAccess,
// *Index and *Field.
type Expr interface {
	fmt.Stringer
	// Type returns the type of values this expression evaluates to.
	Type() data.Type
}

// Location represents an expression which identifies an addressable place in
// memory.  Every location resolves to a leaf (or group of leaves) of some
// declared variable.
type Location interface {
	Expr
	// Check whether this location is statically known.  That is, it contains no
	// index whose subscript is not a literal.
	IsStatic() bool
}

// Depth returns the height of the operator tree of a given expression.
// Literals and plain variable accesses have depth zero, whilst every binary
// operator or non-literal subscript increases the depth by one.
func Depth(e Expr) uint {
	switch e := e.(type) {
	case *Number, *VarAccess, *Function:
		return 0
	case *Field:
		return Depth(e.Base)
	case *Index:
		if _, ok := e.Subscript.(*Number); ok {
			return Depth(e.Base)
		}
		//
		return 1 + max(Depth(e.Base), Depth(e.Subscript))
	case *Binary:
		return 1 + max(Depth(e.Left), Depth(e.Right))
	default:
		panic("unreachable")
	}
}

// Root returns the variable at the root of a given location.
func Root(l Location) *VarAccess {
	for {
		switch e := l.(type) {
		case *VarAccess:
			return e
		case *Index:
			l = e.Base
		case *Field:
			l = e.Base
		default:
			panic("unknown location")
		}
	}
}

// Path returns the leaf path of a statically known location, relative to its
// root variable.  For example, "a[1].x" has the path "[1].x".  This panics if
// the location is not static.
func Path(l Location) string {
	switch e := l.(type) {
	case *VarAccess:
		return ""
	case *Index:
		n, ok := e.Subscript.(*Number)
		//
		if !ok {
			panic("location is not static")
		}
		//
		return fmt.Sprintf("%s[%d]", Path(e.Base), n.Value)
	case *Field:
		return fmt.Sprintf("%s.%s", Path(e.Base), e.Name)
	default:
		panic("unknown location")
	}
}

func needsBraces(e Expr) bool {
	_, ok := e.(*Binary)
	return ok
}

func stringOfArgs(args []Expr) string {
	var builder strings.Builder
	//
	for i, arg := range args {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(arg.String())
	}
	//
	return builder.String()
}
