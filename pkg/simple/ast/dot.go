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
package ast

import (
	"fmt"
	"io"

	"github.com/consensys/go-simple/pkg/simple/ast/data"
	"github.com/consensys/go-simple/pkg/simple/ast/decl"
	"github.com/consensys/go-simple/pkg/simple/ast/stmt"
	"github.com/consensys/go-simple/pkg/simple/ast/variable"
)

// Shapes used for nodes in a Graphviz graph.
const (
	// BOX is used for nodes with children.
	BOX = "box"
	// ELLIPSE is used for nodes without children.
	ELLIPSE = "ellipse"
	// DIAMOND is used for terminal symbols and constant values.
	DIAMOND = "diamond"
	// CIRCLE is used for variables.
	CIRCLE = "circle"
)

// DotGraph accumulates the nodes and edges of a directed graph, which can then
// be written in the Graphviz DOT language.  Nodes are named "L0", "L1", etc in
// the order they are added.
type DotGraph struct {
	name  string
	lines []string
	nodes uint
}

// NewDotGraph constructs an empty graph with a given name.
func NewDotGraph(name string) *DotGraph {
	return &DotGraph{name, nil, 0}
}

// Node adds a node with a given label and shape, returning its identifier.
func (p *DotGraph) Node(label string, shape string) uint {
	var id = p.nodes
	//
	p.nodes++
	p.lines = append(p.lines, fmt.Sprintf("L%d [label=%q,shape=%s]", id, label, shape))
	//
	return id
}

// Child adds a node beneath a given parent, returning its identifier.
func (p *DotGraph) Child(parent uint, label string, shape string) uint {
	var id = p.Node(label, shape)
	//
	p.Edge(parent, id, "")
	//
	return id
}

// Edge adds an edge between two nodes, with an optional label.
func (p *DotGraph) Edge(from uint, to uint, label string) {
	if label == "" {
		p.lines = append(p.lines, fmt.Sprintf("L%d -> L%d", from, to))
	} else {
		p.lines = append(p.lines, fmt.Sprintf("L%d -> L%d [label=%q]", from, to, label))
	}
}

// Write this graph to a given writer.
func (p *DotGraph) Write(out io.Writer) {
	fmt.Fprintf(out, "strict digraph %s {\n", p.name)
	//
	for _, line := range p.lines {
		fmt.Fprintf(out, "  %s\n", line)
	}
	//
	fmt.Fprintln(out, "}")
}

// PrintDot writes the abstract syntax tree of a given program as a Graphviz
// graph.  The graph follows the same structure as Print, with nested
// statements becoming children.
func PrintDot(out io.Writer, program *Program) {
	var (
		graph = NewDotGraph("AST")
		root  = graph.Node(fmt.Sprintf("PROGRAM %s", program.Name), BOX)
	)
	//
	for _, c := range program.Constants {
		graph.Child(root, fmt.Sprintf("CONST %s", c.String()), ELLIPSE)
	}
	//
	for _, t := range program.Types {
		graph.Child(root, fmt.Sprintf("TYPE %s", t.String()), ELLIPSE)
	}
	//
	for _, v := range program.Variables {
		graph.Child(root, fmt.Sprintf("VAR %s", v.String()), ELLIPSE)
	}
	//
	for _, proc := range program.Procedures {
		dotProcedure(graph, root, proc)
	}
	//
	dotStmts(graph, graph.Child(root, "BEGIN", BOX), program.Body)
	graph.Write(out)
}

func dotProcedure(graph *DotGraph, parent uint, proc *decl.Procedure) {
	var node = graph.Child(parent, fmt.Sprintf("PROCEDURE %s", proc.String()), BOX)
	//
	for _, v := range proc.Locals {
		graph.Child(node, fmt.Sprintf("VAR %s", v.String()), ELLIPSE)
	}
	//
	dotStmts(graph, graph.Child(node, "BEGIN", BOX), proc.Body)
	//
	if proc.Return != nil {
		graph.Child(node, fmt.Sprintf("RETURN %s", proc.Return.String()), ELLIPSE)
	}
}

func dotStmts(graph *DotGraph, parent uint, stmts []stmt.Stmt) {
	for _, s := range stmts {
		switch s := s.(type) {
		case *stmt.If:
			node := graph.Child(parent, fmt.Sprintf("IF %s", s.Condition.String()), BOX)
			dotStmts(graph, graph.Child(node, "THEN", BOX), s.TrueBranch)
			//
			if len(s.FalseBranch) > 0 {
				dotStmts(graph, graph.Child(node, "ELSE", BOX), s.FalseBranch)
			}
		case *stmt.Repeat:
			node := graph.Child(parent, "REPEAT", BOX)
			dotStmts(graph, node, s.Body)
			graph.Child(node, fmt.Sprintf("UNTIL %s", s.Until.String()), ELLIPSE)
		default:
			graph.Child(parent, s.String(), ELLIPSE)
		}
	}
}

// PrintSymbolsDot writes the declarations of a given program as a Graphviz
// graph.  Each declaration points to its type, and types are shared between
// the declarations which use them.  Procedures point to their parameters and
// locals.
func PrintSymbolsDot(out io.Writer, program *Program) {
	var (
		graph   = NewDotGraph("Symbols")
		symbols = &symbolGraph{graph, make(map[data.Type]uint)}
		root    = graph.Node(program.Name, BOX)
	)
	//
	for _, c := range program.Constants {
		node := graph.Child(root, c.Name(), BOX)
		value := graph.Child(node, fmt.Sprintf("%d", c.Value), DIAMOND)
		graph.Edge(value, symbols.typeOf(data.INTEGER), "")
	}
	//
	for _, t := range program.Types {
		node := graph.Child(root, t.Name(), BOX)
		graph.Edge(node, symbols.typeOf(t.Type), "")
	}
	//
	for _, v := range program.Variables {
		symbols.variable(root, v)
	}
	//
	for _, proc := range program.Procedures {
		node := graph.Child(root, proc.Name(), BOX)
		//
		for _, v := range proc.Parameters {
			symbols.variable(node, v)
		}
		//
		for _, v := range proc.Locals {
			symbols.variable(node, v)
		}
		//
		if proc.ReturnType != nil {
			graph.Edge(node, symbols.typeOf(proc.ReturnType), "returns")
		}
	}
	//
	graph.Write(out)
}

type symbolGraph struct {
	graph *DotGraph
	types map[data.Type]uint
}

func (p *symbolGraph) variable(parent uint, v *variable.Variable) {
	var node = p.graph.Child(parent, v.Name(), CIRCLE)
	//
	p.graph.Edge(node, p.typeOf(v.Type()), "")
}

// Determine the node of a given type, adding it (and its components) if it is
// not already present.
func (p *symbolGraph) typeOf(t data.Type) uint {
	if node, ok := p.types[t]; ok {
		return node
	}
	//
	switch t := t.(type) {
	case *data.Integer:
		p.types[t] = p.graph.Node("INTEGER", BOX)
	case *data.Array:
		p.types[t] = p.graph.Node(fmt.Sprintf("ARRAY %d", t.Length), BOX)
		p.graph.Edge(p.types[t], p.typeOf(t.Element), "OF")
	case *data.Record:
		p.types[t] = p.graph.Node("RECORD", BOX)
		//
		for _, f := range t.Fields {
			p.graph.Edge(p.types[t], p.typeOf(f.Type), f.Name)
		}
	default:
		panic("unknown type")
	}
	//
	return p.types[t]
}
