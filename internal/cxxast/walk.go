package cxxast

import sitter "github.com/smacker/go-tree-sitter"

// FindAll returns every node within the subtree rooted at n (n included)
// whose Type() equals typ, in depth-first pre-order.
func FindAll(n *sitter.Node, typ string) []*sitter.Node {
	var out []*sitter.Node
	var walk func(*sitter.Node)
	walk = func(cur *sitter.Node) {
		if cur == nil {
			return
		}
		if cur.Type() == typ {
			out = append(out, cur)
		}
		count := int(cur.ChildCount())
		for i := 0; i < count; i++ {
			walk(cur.Child(i))
		}
	}
	walk(n)
	return out
}

// CallExpressions returns every call_expression within the subtree rooted
// at n, including n itself if it is one.
func CallExpressions(n *sitter.Node) []*sitter.Node {
	return FindAll(n, "call_expression")
}

// WalkCalls invokes visit once for every call_expression in the translation
// unit, in depth-first pre-order, matching the AST walker's contract in
// spec.md §4.1 ("visits every call expression").
func (t *Tree) WalkCalls(visit func(call *sitter.Node)) {
	for _, call := range CallExpressions(t.Root()) {
		visit(call)
	}
}
