package cxxast

import sitter "github.com/smacker/go-tree-sitter"

// errnoAccessorNames are the builtin calls that yield the address of the
// thread-local errno cell on common platforms, expanded from the `errno`
// macro itself on some libcs (§9 "Errno recognition").
var errnoAccessorNames = map[string]bool{
	"__errno_location": true,
	"__error":          true,
}

// IsErrnoIdentifier reports whether n is the identifier `errno`.
func IsErrnoIdentifier(n *sitter.Node, source []byte) bool {
	return n != nil && n.Type() == "identifier" && IdentifierName(n, source) == "errno"
}

// isErrnoAccessorCall reports whether n is a call to __errno_location() or
// __error().
func isErrnoAccessorCall(n *sitter.Node, source []byte) bool {
	name, ok := CalleeName(n, source)
	return ok && errnoAccessorNames[name]
}

// IsErrnoReferenceNode reports whether n, taken on its own (not considering
// assignment context), is one of the three syntactic forms of an errno
// reference: the identifier `errno`, a call to an errno-address accessor, or
// a dereference of either.
func IsErrnoReferenceNode(n *sitter.Node, source []byte) bool {
	if n == nil {
		return false
	}
	if IsErrnoIdentifier(n, source) || isErrnoAccessorCall(n, source) {
		return true
	}
	if n.Type() == "pointer_expression" {
		if op := n.ChildByFieldName("operator"); op == nil || op.Content(source) == "*" {
			return IsErrnoReferenceNode(n.ChildByFieldName("argument"), source)
		}
	}
	return false
}

// ContainsErrnoReference reports whether any errno reference occurs
// anywhere in the subtree rooted at n, excluding reads that are themselves
// the target of a direct assignment (`errno = ...` does not count as a
// reference, per §4.3).
func ContainsErrnoReference(n *sitter.Node, source []byte) bool {
	return findErrnoReference(n, source) != nil
}

// FindErrnoReference returns the first node within n's subtree that is a
// genuine (read) errno reference, or nil if there is none.
func FindErrnoReference(n *sitter.Node, source []byte) *sitter.Node {
	return findErrnoReference(n, source)
}

func findErrnoReference(n *sitter.Node, source []byte) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "assignment_expression" {
		if lhs, _, ok := DirectAssignment(n, source); ok && IsErrnoReferenceNode(lhs, source) {
			// The left-hand side is a write, not a read: skip it, but still
			// scan the right-hand side for a genuine reference.
			return findErrnoReference(n.ChildByFieldName("right"), source)
		}
	}
	if IsErrnoReferenceNode(n, source) {
		return n
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if ref := findErrnoReference(n.Child(i), source); ref != nil {
			return ref
		}
	}
	return nil
}
