package cxxast

import (
	"github.com/errorck-dev/errorck/pkg/loc"
	sitter "github.com/smacker/go-tree-sitter"
)

// Position resolves a node to a 1-indexed (line, column) pair in the
// translation unit's file. tree-sitter points are 0-indexed on both axes.
func (t *Tree) Position(n *sitter.Node) loc.Location {
	if n == nil {
		return loc.Location{}
	}
	p := n.StartPoint()
	return loc.Location{
		File:   t.Filename,
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
	}
}

// wrapperTypes are the only node kinds the classifier is allowed to see
// through when walking upward from a call expression: parentheses and
// explicit casts. tree-sitter produces a pure syntax tree with no implicit
// cast or cleanup-marker nodes, so those members of the AST input contract's
// wrapper set (clang's ImplicitCastExpr, ExprWithCleanups,
// MaterializeTemporaryExpr) have no syntactic form here and are never
// encountered; parenthesized_expression and cast_expression are the only
// wrappers that exist at the syntax level.
var wrapperTypes = map[string]bool{
	"parenthesized_expression": true,
	"cast_expression":          true,
}

// IsWrapper reports whether n is an expression-only wrapper node.
func IsWrapper(n *sitter.Node) bool {
	return n != nil && wrapperTypes[n.Type()]
}

// ParentsOf returns the parent chain of n, nearest first. tree-sitter nodes
// have exactly one syntactic parent, so the list is always either empty (n
// is the root) or has exactly the ordering the AST input contract requires:
// a non-empty, ordered list whose first element is n's syntactic parent.
func ParentsOf(n *sitter.Node) []*sitter.Node {
	var parents []*sitter.Node
	for cur := n; cur != nil; {
		p := cur.Parent()
		if p == nil {
			break
		}
		parents = append(parents, p)
		cur = p
	}
	return parents
}

// UnwrapUpward walks from n through parenthesized_expression and
// cast_expression ancestors and returns the first ancestor that is not
// itself a wrapper, along with the chain of wrappers passed through
// (nearest first). If n has no parent, both returns are nil.
func UnwrapUpward(n *sitter.Node) (first *sitter.Node, wrappers []*sitter.Node) {
	cur := n
	for {
		p := cur.Parent()
		if p == nil {
			return nil, wrappers
		}
		if IsWrapper(p) {
			wrappers = append(wrappers, p)
			cur = p
			continue
		}
		return p, wrappers
	}
}

// Contains reports whether target's source range lies entirely inside
// container's source range. This is how the classifier implements "X
// contains the call anywhere in its subtree" without a second AST walk:
// tree-sitter guarantees a child's byte range is always nested within its
// parent's, so range containment is equivalent to subtree membership.
func Contains(container, target *sitter.Node) bool {
	if container == nil || target == nil {
		return false
	}
	return container.StartByte() <= target.StartByte() && target.EndByte() <= container.EndByte()
}

// statementTypes are node kinds that stand on their own as a statement
// within a compound block, independent of the surrounding construct. A call
// whose nearest non-wrapper parent is one of these has had its value
// discarded syntactically: this is the "statement position" test of the
// return-value classifier's rule 3 (ignored).
var statementTypes = map[string]bool{
	"expression_statement": true,
}

// IsStatementPosition reports whether call occupies statement position: its
// value is discarded because, after unwrapping parens/casts, it sits
// directly as a bare expression statement (covering the compound-block
// child, if/loop/switch body, and case/default/label substatement forms —
// all of which tree-sitter represents uniformly as expression_statement) or
// directly as a for-loop's initializer/update clause (which tree-sitter
// represents as a bare expression with no expression_statement wrapper).
func IsStatementPosition(call *sitter.Node) bool {
	first, _ := UnwrapUpward(call)
	if first == nil {
		return false
	}
	if statementTypes[first.Type()] {
		return true
	}
	if first.Type() == "for_statement" {
		init := first.ChildByFieldName("initializer")
		upd := first.ChildByFieldName("update")
		return fieldContains(init, call) || fieldContains(upd, call)
	}
	return false
}

// fieldContains reports whether field (a possibly-nil optional child, such
// as a for-loop's initializer or update clause) contains call.
func fieldContains(field, call *sitter.Node) bool {
	return field != nil && Contains(field, call)
}

// EnclosingCompoundStatement returns the nearest ancestor of n that is a
// compound_statement (a braced `{ ... }` block), or nil if n is not nested
// in one (e.g. it is at file scope, outside any function body).
func EnclosingCompoundStatement(n *sitter.Node) *sitter.Node {
	for _, p := range ParentsOf(n) {
		if p.Type() == "compound_statement" {
			return p
		}
	}
	return nil
}

// EnclosingBlockStatement returns the topmost ancestor of n that is a direct
// named child of the nearest enclosing compound_statement — i.e. the
// "statement in the compound block" that the errno classifier and the
// branch rules reason about. Returns nil if n is not nested in a compound
// block.
func EnclosingBlockStatement(n *sitter.Node) *sitter.Node {
	block := EnclosingCompoundStatement(n)
	if block == nil {
		return nil
	}
	var stmt *sitter.Node
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Parent() == block {
			stmt = cur
			break
		}
	}
	return stmt
}

// BlockSiblingsFrom returns the statements of block (a compound_statement)
// starting at and including from, in source order. It is the sequence the
// local-propagation tracker walks forward over.
func BlockSiblingsFrom(block, from *sitter.Node) []*sitter.Node {
	var all []*sitter.Node
	n := int(block.NamedChildCount())
	start := -1
	for i := 0; i < n; i++ {
		child := block.NamedChild(i)
		if start == -1 {
			if child == from || (child.StartByte() == from.StartByte() && child.EndByte() == from.EndByte()) {
				start = i
			}
		}
		all = append(all, child)
	}
	if start == -1 {
		return nil
	}
	return all[start:]
}

// NextStatement returns the statement immediately following stmt within its
// enclosing compound block, or nil if stmt is the block's last statement.
func NextStatement(block, stmt *sitter.Node) *sitter.Node {
	sibs := BlockSiblingsFrom(block, stmt)
	if len(sibs) < 2 {
		return nil
	}
	return sibs[1]
}
