package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// SourceUnit is one parsed input file. It is immutable once produced and must be
// closed when analysis completes so the underlying tree is released.
type SourceUnit struct {
	Path     string
	Language string
	Source   []byte

	tree *sitter.Tree
}

type Location struct {
	Line   int
	Column int
}

// Root returns the program node of the unit, or nil once the unit is closed.
func (u *SourceUnit) Root() *sitter.Node {
	if u == nil || u.tree == nil {
		return nil
	}
	return u.tree.RootNode()
}

func (u *SourceUnit) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(u.Source[node.StartByte():node.EndByte()])
}

func (u *SourceUnit) Location(node *sitter.Node) Location {
	if node == nil {
		return Location{}
	}
	pos := node.StartPosition()
	return Location{
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
}

func (u *SourceUnit) Close() {
	if u == nil || u.tree == nil {
		return
	}
	u.tree.Close()
	u.tree = nil
}
