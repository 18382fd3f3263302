package graph

import (
	"funcgraph/internal/engine/parser"
)

// StartNode is the synthetic entry every top-level call hangs off. It is never
// part of the declared node set.
const StartNode = "start"

// ControlFlowGraph is a star: each top-level call statement becomes an edge
// from StartNode to the called name. Statements are not chained.
type ControlFlowGraph struct {
	nodes orderedSet
	edges []Edge
}

func NewControlFlowGraph() *ControlFlowGraph {
	return &ControlFlowGraph{nodes: newOrderedSet()}
}

// AddCall records one top-level call of name.
func (g *ControlFlowGraph) AddCall(name string) {
	g.nodes.add(name)
	g.edges = append(g.edges, Edge{From: StartNode, To: name})
}

// Nodes returns the called names in first-appearance order.
func (g *ControlFlowGraph) Nodes() []string {
	return g.nodes.list()
}

// Edges returns the recorded edges in source order, duplicates included.
func (g *ControlFlowGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *ControlFlowGraph) NodeCount() int {
	return g.nodes.len()
}

func (g *ControlFlowGraph) EdgeCount() int {
	return len(g.edges)
}

// BuildControlFlowGraph inspects the direct children of the program node and
// records every expression statement that is a bare-identifier call.
func BuildControlFlowGraph(unit *parser.SourceUnit) *ControlFlowGraph {
	g := NewControlFlowGraph()
	root := unit.Root()
	if root == nil {
		return g
	}

	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		if stmt == nil || stmt.Kind() != parser.KindExpressionStatement {
			continue
		}
		expr := parser.Unparen(parser.FirstNamedChild(stmt))
		if name, ok := parser.CalleeIdentifier(unit, expr); ok {
			g.AddCall(name)
		}
	}
	return g
}
