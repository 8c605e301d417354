package cxxast

import sitter "github.com/smacker/go-tree-sitter"

// IsCall reports whether n is a call expression.
func IsCall(n *sitter.Node) bool {
	return n != nil && n.Type() == "call_expression"
}

// CalleeName resolves the syntactically written name of a call's callee.
// Only direct identifier callees are resolved (§4.1: "if the callee is not a
// declared function ... skip"); member calls, calls through function
// pointers reached via an expression, and anything else syntactically more
// complex than a bare name yield ok=false.
func CalleeName(call *sitter.Node, source []byte) (name string, ok bool) {
	if !IsCall(call) {
		return "", false
	}
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" {
		return "", false
	}
	return fn.Content(source), true
}

// Arguments returns the call's argument expressions.
func Arguments(call *sitter.Node) []*sitter.Node {
	if !IsCall(call) {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	var out []*sitter.Node
	n := int(args.NamedChildCount())
	for i := 0; i < n; i++ {
		out = append(out, args.NamedChild(i))
	}
	return out
}

// ArgumentContainsCall reports whether call appears anywhere within any of
// enclosing's argument subtrees — the test used for the return-value
// classifier's "passed as an argument" rule (§4.2 rule 2), which must
// match a call nested arbitrarily deep inside an argument expression, not
// just a bare top-level argument.
func ArgumentContainsCall(enclosing, call *sitter.Node) bool {
	for _, arg := range Arguments(enclosing) {
		if Contains(arg, call) {
			return true
		}
	}
	return false
}

// NearestEnclosingCall returns the nearest ancestor call_expression of n, or
// nil if no ancestor up to the root is a call. It is a plain walk over the
// whole ParentsOf chain, statements included; tree-sitter's lack of
// implicit-cast nodes means no wrapper unwinding is needed.
func NearestEnclosingCall(n *sitter.Node) *sitter.Node {
	for _, p := range ParentsOf(n) {
		if IsCall(p) {
			return p
		}
	}
	return nil
}

// IsVoidCast reports whether n is an explicit cast to the void type, i.e.
// the source-level `(void)expr`.
func IsVoidCast(n *sitter.Node, source []byte) bool {
	if n == nil || n.Type() != "cast_expression" {
		return false
	}
	t := n.ChildByFieldName("type")
	if t == nil {
		return false
	}
	return typeDescriptorIsVoid(t, source)
}

// typeDescriptorIsVoid inspects a type_descriptor node (the "type" field of
// a cast_expression) for a bare `void`, ignoring any qualifiers the grammar
// hangs off the same node (e.g. `(const void)` is not valid C/C++, but
// `(void)` with attributes would still be recognized).
func typeDescriptorIsVoid(t *sitter.Node, source []byte) bool {
	n := int(t.NamedChildCount())
	for i := 0; i < n; i++ {
		c := t.NamedChild(i)
		if c.Type() == "primitive_type" && c.Content(source) == "void" {
			return true
		}
	}
	return false
}

// ReturnValueSubtree returns the returned expression of a return_statement,
// or nil for a bare `return;`.
func ReturnValueSubtree(ret *sitter.Node) *sitter.Node {
	if ret == nil || ret.Type() != "return_statement" {
		return nil
	}
	n := int(ret.NamedChildCount())
	if n == 0 {
		return nil
	}
	return ret.NamedChild(0)
}

// functionBoundaryTypes stop an upward "some ancestor is a return statement"
// search (§4.2 rule 4): a call can only propagate through the return of the
// function (or lambda) that directly encloses it.
var functionBoundaryTypes = map[string]bool{
	"function_definition": true,
	"lambda_expression":   true,
}

// EnclosingReturn walks upward from n looking for a return_statement whose
// value subtree contains n, stopping at the nearest function/lambda
// boundary. It returns the return_statement, or nil if n's enclosing
// function returns without propagating it.
func EnclosingReturn(n *sitter.Node) *sitter.Node {
	for cur := n; ; {
		p := cur.Parent()
		if p == nil || functionBoundaryTypes[p.Type()] {
			return nil
		}
		if p.Type() == "return_statement" {
			return p
		}
		cur = p
	}
}
