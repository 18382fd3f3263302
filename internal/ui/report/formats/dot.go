package formats

import (
	"fmt"
	"strings"

	"funcgraph/internal/engine/graph"
)

const (
	DependencyGraphName  = "DependencyGraph"
	ControlFlowGraphName = "ControlFlowGraph"

	dotIndent = "    "
)

// DOTGenerator renders function graphs as Graphviz digraphs. Node names are
// quoted verbatim; embedded quotes are not escaped.
type DOTGenerator struct{}

func NewDOTGenerator() *DOTGenerator {
	return &DOTGenerator{}
}

// Dependency emits each caller followed by its outgoing edges.
func (d *DOTGenerator) Dependency(g *graph.DependencyGraph) string {
	var buf strings.Builder
	writeDOTHeader(&buf, DependencyGraphName)
	if g != nil {
		for _, caller := range g.Nodes() {
			writeDOTNode(&buf, caller)
			for _, callee := range g.Callees(caller) {
				writeDOTEdge(&buf, caller, callee)
			}
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

// ControlFlow emits every node, then every edge in recorded order.
func (d *DOTGenerator) ControlFlow(g *graph.ControlFlowGraph) string {
	var buf strings.Builder
	writeDOTHeader(&buf, ControlFlowGraphName)
	if g != nil {
		for _, node := range g.Nodes() {
			writeDOTNode(&buf, node)
		}
		for _, edge := range g.Edges() {
			writeDOTEdge(&buf, edge.From, edge.To)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func writeDOTHeader(buf *strings.Builder, name string) {
	buf.WriteString(fmt.Sprintf("digraph %s {\n", name))
}

func writeDOTNode(buf *strings.Builder, name string) {
	buf.WriteString(fmt.Sprintf("%s\"%s\";\n", dotIndent, name))
}

func writeDOTEdge(buf *strings.Builder, from, to string) {
	buf.WriteString(fmt.Sprintf("%s\"%s\" -> \"%s\";\n", dotIndent, from, to))
}
