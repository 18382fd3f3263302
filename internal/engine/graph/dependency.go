package graph

import (
	"funcgraph/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DependencyGraph maps each declared function to the distinct functions it
// calls by bare name, both in first-encounter order.
type DependencyGraph struct {
	callers orderedSet
	callees map[string]*orderedSet
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		callers: newOrderedSet(),
		callees: make(map[string]*orderedSet),
	}
}

// AddNode registers caller with an empty edge list if it is not known yet.
func (g *DependencyGraph) AddNode(caller string) {
	if g.callers.add(caller) {
		set := newOrderedSet()
		g.callees[caller] = &set
	}
}

// AddEdge records caller -> callee once; it reports whether the edge is new.
func (g *DependencyGraph) AddEdge(caller, callee string) bool {
	g.AddNode(caller)
	return g.callees[caller].add(callee)
}

// Nodes returns the callers in insertion order.
func (g *DependencyGraph) Nodes() []string {
	return g.callers.list()
}

// Callees returns the distinct callees of caller in first-occurrence order.
func (g *DependencyGraph) Callees(caller string) []string {
	set, ok := g.callees[caller]
	if !ok {
		return nil
	}
	return set.list()
}

func (g *DependencyGraph) HasNode(caller string) bool {
	return g.callers.has(caller)
}

func (g *DependencyGraph) HasEdge(caller, callee string) bool {
	set, ok := g.callees[caller]
	return ok && set.has(callee)
}

func (g *DependencyGraph) NodeCount() int {
	return g.callers.len()
}

func (g *DependencyGraph) EdgeCount() int {
	total := 0
	for _, set := range g.callees {
		total += set.len()
	}
	return total
}

// Edges flattens the graph caller by caller, keeping per-caller order.
func (g *DependencyGraph) Edges() []Edge {
	edges := make([]Edge, 0, g.EdgeCount())
	for _, caller := range g.callers.items {
		for _, callee := range g.callees[caller].items {
			edges = append(edges, Edge{From: caller, To: callee})
		}
	}
	return edges
}

// BuildDependencyGraph registers every named function declaration as a node and
// links it to each bare-identifier callee found anywhere inside its subtree,
// default parameter values included.
// Calls inside nested declarations count for the enclosing declaration too.
func BuildDependencyGraph(unit *parser.SourceUnit) *DependencyGraph {
	g := NewDependencyGraph()
	if unit == nil {
		return g
	}

	declarations := parser.FunctionNodeKinds(parser.KindDeclaration)
	parser.NewWalker(nil).On(func(decl *sitter.Node) bool {
		caller := unit.Text(decl.ChildByFieldName("name"))
		if caller == "" {
			return false
		}
		g.AddNode(caller)

		parser.NewWalker(map[string]parser.NodeHandler{
			parser.KindCallExpression: func(call *sitter.Node) bool {
				if callee, ok := parser.CalleeIdentifier(unit, call); ok {
					g.AddEdge(caller, callee)
				}
				return false
			},
		}).Walk(decl)

		return false
	}, declarations...).Walk(unit.Root())

	return g
}
