package cxxast

import sitter "github.com/smacker/go-tree-sitter"

// DirectAssignment reports whether n is a plain `ident = rhs` assignment
// (not a compound assignment like `+=`) and returns its left identifier and
// right-hand expression. source is needed to read the operator token.
func DirectAssignment(n *sitter.Node, source []byte) (lhs, rhs *sitter.Node, ok bool) {
	if n == nil || n.Type() != "assignment_expression" {
		return nil, nil, false
	}
	if op := n.ChildByFieldName("operator"); op != nil && op.Content(source) != "=" {
		return nil, nil, false
	}
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || left.Type() != "identifier" || right == nil {
		return nil, nil, false
	}
	return left, right, true
}

// LocalInitDeclarator reports whether n is an `init_declarator` of the form
// `ident = value` inside a declaration statement, returning the declared
// identifier and its initializer.
func LocalInitDeclarator(n *sitter.Node) (ident, value *sitter.Node, ok bool) {
	if n == nil || n.Type() != "init_declarator" {
		return nil, nil, false
	}
	d := n.ChildByFieldName("declarator")
	v := n.ChildByFieldName("value")
	if d == nil || d.Type() != "identifier" || v == nil {
		return nil, nil, false
	}
	return d, v, true
}

// IsLocalDeclarationStatement reports whether decl (a "declaration" node) is
// nested inside a function body rather than being a file-scope declaration.
// errorck's analysis never leaves a single translation unit, but the local-
// propagation tracker is specifically scoped to variables declared inside a
// compound block (§4.4), so file-scope globals that happen to share a name
// must not be mistaken for the tracked local.
func IsLocalDeclarationStatement(decl *sitter.Node) bool {
	return EnclosingCompoundStatement(decl) != nil
}

// IdentifierName returns the text of an identifier node.
func IdentifierName(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(source)
}

// SameIdentifier reports whether two identifier nodes refer to the same
// variable name. errorck performs no scope resolution beyond the enclosing
// compound block (per spec.md's Non-goals), so "same variable" is
// approximated as "same spelling", matching the deliberately syntax-driven
// nature of the engine.
func SameIdentifier(a, b *sitter.Node, source []byte) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Type() == "identifier" && b.Type() == "identifier" && IdentifierName(a, source) == IdentifierName(b, source)
}

// ReferencesIdentifier reports whether name appears as an identifier
// anywhere within the subtree rooted at n, whether it is read there or is
// the target of an assignment. It is used by the local-propagation tracker
// to decide whether a statement "references" the tracked variable.
func ReferencesIdentifier(n *sitter.Node, name string, source []byte) bool {
	if n == nil {
		return false
	}
	if n.Type() == "identifier" && IdentifierName(n, source) == name {
		return true
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if ReferencesIdentifier(n.Child(i), name, source) {
			return true
		}
	}
	return false
}
