package formats

import (
	"fmt"
	"strings"

	"funcgraph/internal/engine/graph"
)

// MermaidGenerator renders the same graphs as Mermaid flowcharts. Node ids
// are assigned n0, n1, ... in first-appearance order.
type MermaidGenerator struct{}

func NewMermaidGenerator() *MermaidGenerator {
	return &MermaidGenerator{}
}

func (m *MermaidGenerator) Dependency(g *graph.DependencyGraph) string {
	var nodes []string
	var edges []graph.Edge
	if g != nil {
		nodes = g.Nodes()
		edges = g.Edges()
	}
	return renderFlowchart(nodes, edges)
}

func (m *MermaidGenerator) ControlFlow(g *graph.ControlFlowGraph) string {
	var edges []graph.Edge
	if g != nil {
		edges = g.Edges()
	}
	// start is the entry of every edge, so it is placed first.
	nodes := []string{graph.StartNode}
	if g != nil {
		nodes = append(nodes, g.Nodes()...)
	}
	if len(edges) == 0 {
		nodes = nil
	}
	return renderFlowchart(nodes, edges)
}

func renderFlowchart(nodes []string, edges []graph.Edge) string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	ids := make(map[string]string)
	order := make([]string, 0, len(nodes))
	register := func(name string) {
		if _, ok := ids[name]; ok {
			return
		}
		ids[name] = fmt.Sprintf("n%d", len(order))
		order = append(order, name)
	}
	for _, n := range nodes {
		register(n)
	}
	for _, e := range edges {
		register(e.From)
		register(e.To)
	}

	for _, name := range order {
		b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", ids[name], escapeLabel(name)))
	}
	for _, e := range edges {
		b.WriteString(fmt.Sprintf("  %s --> %s\n", ids[e.From], ids[e.To]))
	}
	return b.String()
}

// escapeLabel keeps labels inside Mermaid's quoted form.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
