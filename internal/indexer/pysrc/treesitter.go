package pysrc

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// walkTree visits node and all of its descendants in preorder. The
// visitor returns false to prune the subtree below a node.
func walkTree(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visit)
	}
}

// nodeText returns the source text spanned by a node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// findChildByKind returns the first named child of the given kind, or nil.
func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// statementsOf returns the statement nodes of a module root or definition
// body, skipping interleaved comments.
func statementsOf(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	var stmts []*sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		stmts = append(stmts, child)
	}
	return stmts
}
