package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Node kinds shared by the javascript, typescript and tsx grammars.
const (
	KindProgram                      = "program"
	KindFunctionDeclaration          = "function_declaration"
	KindGeneratorFunctionDeclaration = "generator_function_declaration"
	KindArrowFunction                = "arrow_function"
	KindFunctionExpression           = "function_expression"
	KindGeneratorFunction            = "generator_function"
	KindCallExpression               = "call_expression"
	KindExpressionStatement          = "expression_statement"
	KindParenthesizedExpression      = "parenthesized_expression"
	KindIdentifier                   = "identifier"
	KindTemplateString               = "template_string"
	KindComment                      = "comment"
	KindRequiredParameter            = "required_parameter"
	KindOptionalParameter            = "optional_parameter"
)

// FunctionKind is the closed set of function-like shapes the analysis knows about.
type FunctionKind int

const (
	KindUnknown FunctionKind = iota
	KindDeclaration
	KindArrow
	KindExpression
)

func (k FunctionKind) String() string {
	switch k {
	case KindDeclaration:
		return "declaration"
	case KindArrow:
		return "arrow"
	case KindExpression:
		return "expression"
	default:
		return "unknown"
	}
}

var functionKinds = map[string]FunctionKind{
	KindFunctionDeclaration:          KindDeclaration,
	KindGeneratorFunctionDeclaration: KindDeclaration,
	KindArrowFunction:                KindArrow,
	KindFunctionExpression:           KindExpression,
	KindGeneratorFunction:            KindExpression,
}

// ClassifyFunction maps a node onto its FunctionKind; ok is false for non-function nodes.
// Anonymous tokens never classify: the `function` keyword shares its kind name
// with older grammars' function expressions.
func ClassifyFunction(node *sitter.Node) (FunctionKind, bool) {
	if node == nil || !node.IsNamed() {
		return KindUnknown, false
	}
	kind, ok := functionKinds[node.Kind()]
	return kind, ok
}

// FunctionNodeKinds lists the node kinds that map to the given function kinds.
func FunctionNodeKinds(kinds ...FunctionKind) []string {
	want := make(map[FunctionKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make([]string, 0, len(functionKinds))
	for nodeKind, k := range functionKinds {
		if want[k] {
			out = append(out, nodeKind)
		}
	}
	return out
}

// Unparen strips any number of enclosing parenthesized_expression wrappers.
func Unparen(node *sitter.Node) *sitter.Node {
	for node != nil && node.Kind() == KindParenthesizedExpression {
		inner := FirstNamedChild(node)
		if inner == nil {
			return node
		}
		node = inner
	}
	return node
}

// FirstNamedChild returns the first named child that is not a comment.
func FirstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child != nil && child.Kind() != KindComment {
			return child
		}
	}
	return nil
}

// CalleeIdentifier returns the callee of a plain call whose target is a bare
// identifier. Member, computed, optional-chained and tagged-template calls
// report ok=false.
func CalleeIdentifier(unit *SourceUnit, call *sitter.Node) (string, bool) {
	if call == nil || call.Kind() != KindCallExpression {
		return "", false
	}
	if call.ChildByFieldName("optional_chain") != nil {
		return "", false
	}
	if args := call.ChildByFieldName("arguments"); args == nil || args.Kind() == KindTemplateString {
		return "", false
	}
	fn := Unparen(call.ChildByFieldName("function"))
	if fn == nil || fn.Kind() != KindIdentifier {
		return "", false
	}
	name := unit.Text(fn)
	return name, name != ""
}
