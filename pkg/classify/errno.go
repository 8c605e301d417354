package classify

import (
	"github.com/errorck-dev/errorck/internal/cxxast"
	"github.com/errorck-dev/errorck/pkg/loc"
	"github.com/errorck-dev/errorck/pkg/registry"
	sitter "github.com/smacker/go-tree-sitter"
)

// classifyErrno implements §4.3 for a call whose callee is registered with
// reporting "errno". Unlike the return-value classifier, analysis here is
// confined to exactly two statements: the call statement itself and the one
// immediately following it in the same compound block.
func classifyErrno(tree *cxxast.Tree, reg *registry.Registry, call *sitter.Node) Result {
	block := cxxast.EnclosingCompoundStatement(call)
	callStmt := cxxast.EnclosingBlockStatement(call)
	if block == nil || callStmt == nil {
		return Result{Category: UsedOther}
	}
	next := cxxast.NextStatement(block, callStmt)

	stmts := []*sitter.Node{callStmt}
	if next != nil {
		stmts = append(stmts, next)
	}

	// Rule 1: ignored.
	anyRef := false
	for _, s := range stmts {
		if cxxast.ContainsErrnoReference(s, tree.Source) {
			anyRef = true
			break
		}
	}
	if !anyRef {
		return Result{Category: Ignored}
	}

	// Rule 2: passed to a handler.
	for _, s := range stmts {
		if errnoPassedToRole(tree, reg, s, registry.RoleHandler) {
			return Result{Category: PassedToHandlerFn}
		}
	}

	// Rule 3: propagated via return.
	for _, s := range stmts {
		for _, ret := range cxxast.FindAll(s, "return_statement") {
			if v := cxxast.ReturnValueSubtree(ret); v != nil && cxxast.ContainsErrnoReference(v, tree.Source) {
				return Result{Category: Propagated}
			}
		}
	}

	// Rule 4: branch on errno.
	for _, s := range stmts {
		if kind, catchall := errnoBranch(s, tree.Source); kind != cxxast.BranchNone {
			if catchall {
				return Result{Category: BranchedWithCatchall}
			}
			return Result{Category: BranchedNoCatchall}
		}
	}

	// Rule 5: assigned to a local — hand off to the propagation tracker.
	for _, s := range stmts {
		if varName, assignSite, ok := errnoAssignedToLocal(tree, s); ok {
			return trackLocalPropagation(tree, reg, block, s, varName, assignSite, false)
		}
	}

	// Rule 6: logged.
	for _, s := range stmts {
		if errnoPassedToRole(tree, reg, s, registry.RoleLogger) {
			return Result{Category: LoggedNotHandled}
		}
	}

	// Rule 7: fallback.
	return Result{Category: UsedOther}
}

// errnoPassedToRole reports whether stmt contains a call to a registered
// callee of the given role, any of whose arguments contains an errno
// reference.
func errnoPassedToRole(tree *cxxast.Tree, reg *registry.Registry, stmt *sitter.Node, role registry.Role) bool {
	for _, call := range cxxast.CallExpressions(stmt) {
		name, ok := cxxast.CalleeName(call, tree.Source)
		if !ok {
			continue
		}
		r, found := reg.Lookup(name)
		if !found || r != role {
			continue
		}
		for _, arg := range cxxast.Arguments(call) {
			if cxxast.ContainsErrnoReference(arg, tree.Source) {
				return true
			}
		}
	}
	return false
}

// errnoBranch reports whether stmt is itself an if/switch whose condition
// contains an errno reference.
func errnoBranch(stmt *sitter.Node, source []byte) (cxxast.BranchKind, bool) {
	switch stmt.Type() {
	case "if_statement", "switch_statement":
	default:
		return cxxast.BranchNone, false
	}
	cond := stmt.ChildByFieldName("condition")
	if cond == nil || !cxxast.ContainsErrnoReference(cond, source) {
		return cxxast.BranchNone, false
	}
	return cxxast.ClassifyBranch(stmt, cond)
}

// errnoAssignedToLocal reports whether stmt assigns an errno reference
// (after trivial paren unwrapping) to a local variable, either via a
// declaration initializer or a plain assignment.
func errnoAssignedToLocal(tree *cxxast.Tree, stmt *sitter.Node) (varName string, site loc.Location, ok bool) {
	unwrap := func(n *sitter.Node) *sitter.Node {
		for n != nil && n.Type() == "parenthesized_expression" {
			if n.NamedChildCount() == 0 {
				return nil
			}
			n = n.NamedChild(0)
		}
		return n
	}

	switch stmt.Type() {
	case "expression_statement":
		if stmt.NamedChildCount() == 0 {
			return "", loc.Location{}, false
		}
		lhs, rhs, assignOK := cxxast.DirectAssignment(stmt.NamedChild(0), tree.Source)
		if !assignOK {
			return "", loc.Location{}, false
		}
		rhs = unwrap(rhs)
		if rhs == nil || !cxxast.IsErrnoReferenceNode(rhs, tree.Source) {
			return "", loc.Location{}, false
		}
		return cxxast.IdentifierName(lhs, tree.Source), tree.Position(rhs), true
	case "declaration":
		for _, decl := range cxxast.FindAll(stmt, "init_declarator") {
			lhs, rhs, declOK := cxxast.LocalInitDeclarator(decl)
			if !declOK {
				continue
			}
			rhs = unwrap(rhs)
			if rhs == nil || !cxxast.IsErrnoReferenceNode(rhs, tree.Source) {
				continue
			}
			return cxxast.IdentifierName(lhs, tree.Source), tree.Position(rhs), true
		}
	}
	return "", loc.Location{}, false
}
