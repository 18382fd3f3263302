package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes a node during a walk.
// Returns true if the walker should skip the node's children.
type NodeHandler func(node *sitter.Node) bool

// Walker walks the syntax tree depth-first, parents before children, and
// dispatches node handlers by kind.
type Walker struct {
	handlers map[string]NodeHandler
}

func NewWalker(handlers map[string]NodeHandler) *Walker {
	return &Walker{handlers: handlers}
}

// On registers handler for every kind in kinds, replacing earlier registrations.
func (w *Walker) On(handler NodeHandler, kinds ...string) *Walker {
	if w.handlers == nil {
		w.handlers = make(map[string]NodeHandler, len(kinds))
	}
	for _, kind := range kinds {
		w.handlers[kind] = handler
	}
	return w
}

func (w *Walker) Walk(node *sitter.Node) {
	if node == nil {
		return
	}

	skip := false
	if handler, ok := w.handlers[node.Kind()]; ok {
		skip = handler(node)
	}
	if skip {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		w.Walk(node.Child(i))
	}
}

// FirstError returns the first ERROR or MISSING node in document order, or nil.
func FirstError(node *sitter.Node) *sitter.Node {
	if node == nil || !node.HasError() {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := FirstError(node.Child(i)); found != nil {
			return found
		}
	}
	return node
}
