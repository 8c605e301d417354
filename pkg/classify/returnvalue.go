package classify

import (
	"github.com/errorck-dev/errorck/internal/cxxast"
	"github.com/errorck-dev/errorck/pkg/registry"
	sitter "github.com/smacker/go-tree-sitter"
)

// classifyReturnValue implements §4.2's ordered rules for a call whose
// callee is registered with reporting "return_value". The rules are checked
// in the same order as the spec, and the first match wins.
func classifyReturnValue(tree *cxxast.Tree, reg *registry.Registry, call *sitter.Node) Result {
	_, wrappers := cxxast.UnwrapUpward(call)

	// Rule 1: cast to void — the outermost paren/cast wrapper directly above
	// the call is an explicit `(void)` cast.
	if len(wrappers) > 0 && cxxast.IsVoidCast(wrappers[len(wrappers)-1], tree.Source) {
		return Result{Category: CastToVoid}
	}

	// Rule 2: passed directly as an argument to a registered handler or
	// logger function. "Directly" means call is nested within one of the
	// enclosing call's argument subtrees, which also covers the case where
	// call itself has already been unwrapped through casts/parens.
	if enclosing := cxxast.NearestEnclosingCall(call); enclosing != nil {
		if name, ok := cxxast.CalleeName(enclosing, tree.Source); ok {
			if role, found := reg.Lookup(name); found && cxxast.ArgumentContainsCall(enclosing, call) {
				switch role {
				case registry.RoleHandler:
					return Result{Category: PassedToHandlerFn}
				case registry.RoleLogger:
					return Result{Category: LoggedNotHandled}
				}
			}
		}
	}

	// Rule 3: statement position — value discarded outright.
	if cxxast.IsStatementPosition(call) {
		return Result{Category: Ignored}
	}

	// Rule 4: returned directly from the enclosing function.
	if ret := cxxast.EnclosingReturn(call); ret != nil {
		if v := cxxast.ReturnValueSubtree(ret); v != nil && cxxast.Contains(v, call) {
			return Result{Category: Propagated}
		}
	}

	// Rule 5: the call's value is the condition of (or within the condition
	// of) an enclosing if/switch — checked before the assignment rule
	// because e.g. `if ((rc = watched()) != 0)` is an assignment expression
	// nested inside a branch condition: the branch outcome takes precedence
	// over the mere fact that an assignment occurred.
	if kind, catchall := branchContaining(call); kind != cxxast.BranchNone {
		if catchall {
			return Result{Category: BranchedWithCatchall}
		}
		return Result{Category: BranchedNoCatchall}
	}

	// Rule 6: assigned to a local variable — hand off to the local-
	// propagation tracker, which walks forward through the rest of the
	// block to find the first real use.
	if lhs, block, assignStmt, ok := assignedToLocal(call); ok {
		varName := cxxast.IdentifierName(lhs, tree.Source)
		site := tree.Position(call)
		return trackLocalPropagation(tree, reg, block, assignStmt, varName, site, true)
	}

	// Rule 7: anything else the call's value flows into.
	return Result{Category: UsedOther}
}

// branchContaining walks the parent chain looking for the nearest if/switch
// whose condition subtree contains call (directly, or via an assignment
// nested in the condition).
func branchContaining(call *sitter.Node) (cxxast.BranchKind, bool) {
	for _, p := range cxxast.ParentsOf(call) {
		if kind, catchall := cxxast.ClassifyBranch(p, call); kind != cxxast.BranchNone {
			return kind, catchall
		}
		if p.Type() == "compound_statement" {
			// Crossed into a nested block without finding a branch whose
			// condition holds the call: stop, since a branch further out
			// cannot contain a call buried inside a nested block's body.
			return cxxast.BranchNone, false
		}
	}
	return cxxast.BranchNone, false
}

// assignedToLocal reports whether call's value is the right-hand side of a
// direct assignment or declaration initializer to a local identifier,
// returning that identifier, the enclosing compound block, and the
// statement to start the propagation walk from.
func assignedToLocal(call *sitter.Node) (lhs *sitter.Node, block *sitter.Node, stmt *sitter.Node, ok bool) {
	parent, _ := cxxast.UnwrapUpward(call)
	if parent == nil {
		return nil, nil, nil, false
	}

	switch parent.Type() {
	case "assignment_expression":
		left := parent.ChildByFieldName("left")
		right := parent.ChildByFieldName("right")
		if op := parent.ChildByFieldName("operator"); op != nil && op.Type() != "=" {
			return nil, nil, nil, false
		}
		if left == nil || left.Type() != "identifier" || right == nil || !cxxast.Contains(right, call) {
			return nil, nil, nil, false
		}
		lhs = left
	case "init_declarator":
		ident := parent.ChildByFieldName("declarator")
		// `T *p = call()` nests the identifier under pointer_declarators.
		for ident != nil && ident.Type() == "pointer_declarator" {
			ident = ident.ChildByFieldName("declarator")
		}
		value := parent.ChildByFieldName("value")
		if ident == nil || ident.Type() != "identifier" || value == nil || !cxxast.Contains(value, call) {
			return nil, nil, nil, false
		}
		lhs = ident
	default:
		return nil, nil, nil, false
	}

	blk := cxxast.EnclosingCompoundStatement(call)
	if blk == nil {
		return nil, nil, nil, false
	}
	enclosingStmt := cxxast.EnclosingBlockStatement(call)
	if enclosingStmt == nil {
		return nil, nil, nil, false
	}
	return lhs, blk, enclosingStmt, true
}
