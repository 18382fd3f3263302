// Package payload extracts per-function metadata from a parsed source unit.
package payload

import (
	"funcgraph/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// AnonymousName is used for every function without a binding identifier.
const AnonymousName = "anonymous"

// FunctionRecord describes one function-like node. Only Name, Params and Body
// are part of the serialized payload document.
type FunctionRecord struct {
	Name   string              `json:"name" yaml:"name"`
	Params []string            `json:"params" yaml:"params"`
	Body   string              `json:"body" yaml:"body"`
	Kind   parser.FunctionKind `json:"-" yaml:"-"`
	Line   int                 `json:"-" yaml:"-"`
	Column int                 `json:"-" yaml:"-"`
}

// Extract returns one record per declaration, arrow function and function
// expression in unit, in depth-first encounter order. Records are never merged,
// so several "anonymous" entries may coexist.
func Extract(unit *parser.SourceUnit) []FunctionRecord {
	records := make([]FunctionRecord, 0)
	if unit == nil {
		return records
	}

	walker := parser.NewWalker(nil).On(func(node *sitter.Node) bool {
		if record, ok := Record(unit, node); ok {
			records = append(records, record)
		}
		return false
	}, parser.FunctionNodeKinds(parser.KindDeclaration, parser.KindArrow, parser.KindExpression)...)
	walker.Walk(unit.Root())

	return records
}

// Record turns a single function-like node into a FunctionRecord.
func Record(unit *parser.SourceUnit, node *sitter.Node) (FunctionRecord, bool) {
	kind, ok := parser.ClassifyFunction(node)
	if !ok {
		return FunctionRecord{}, false
	}

	loc := unit.Location(node)
	return FunctionRecord{
		Name:   functionName(unit, node, kind),
		Params: functionParams(unit, node),
		Body:   unit.Text(node.ChildByFieldName("body")),
		Kind:   kind,
		Line:   loc.Line,
		Column: loc.Column,
	}, true
}

func functionName(unit *parser.SourceUnit, node *sitter.Node, kind parser.FunctionKind) string {
	if kind == parser.KindArrow {
		return AnonymousName
	}
	if name := unit.Text(node.ChildByFieldName("name")); name != "" {
		return name
	}
	return AnonymousName
}

// functionParams keeps plain identifier parameters in declaration order and
// drops every other shape without a trace.
func functionParams(unit *parser.SourceUnit, node *sitter.Node) []string {
	params := make([]string, 0)

	// x => x
	if single := node.ChildByFieldName("parameter"); single != nil {
		if name, ok := plainParam(unit, single); ok {
			params = append(params, name)
		}
		return params
	}

	list := node.ChildByFieldName("parameters")
	if list == nil {
		return params
	}
	for i := uint(0); i < list.NamedChildCount(); i++ {
		if name, ok := plainParam(unit, list.NamedChild(i)); ok {
			params = append(params, name)
		}
	}
	return params
}

func plainParam(unit *parser.SourceUnit, node *sitter.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case parser.KindIdentifier:
		return unit.Text(node), true
	case parser.KindRequiredParameter, parser.KindOptionalParameter:
		if node.ChildByFieldName("value") != nil {
			return "", false
		}
		pattern := node.ChildByFieldName("pattern")
		if pattern != nil && pattern.Kind() == parser.KindIdentifier {
			return unit.Text(pattern), true
		}
	}
	return "", false
}
