package classify

import (
	"github.com/errorck-dev/errorck/internal/cxxast"
	"github.com/errorck-dev/errorck/pkg/loc"
	"github.com/errorck-dev/errorck/pkg/registry"
	sitter "github.com/smacker/go-tree-sitter"
)

// trackLocalPropagation implements §4.4: given a local variable that now
// holds the error value (or errno) as of the end of `start`, walk forward
// through start's sibling statements in the same compound block and emit the
// category implied by the first non-trivial use.
//
// allowCastToVoid controls whether an explicit cast to void of the tracked
// variable is accepted as cast_to_void: true for return-value contracts,
// false for errno contracts (§4.3 rule 7: an explicit void-cast of a locally
// copied errno value is used_other, not cast_to_void).
//
// This never leaves the compound block containing start (§8 invariant 5):
// BlockSiblingsFrom only returns statements within that one block, so the
// walk always terminates by falling off the end of the slice.
//
// The walk is linear: it visits the block's statements in source order and
// takes no account of control flow between them or inside them.
func trackLocalPropagation(tree *cxxast.Tree, reg *registry.Registry, block, start *sitter.Node, varName string, assignSite loc.Location, allowCastToVoid bool) Result {
	sibs := cxxast.BlockSiblingsFrom(block, start)
	if len(sibs) <= 1 {
		return Result{Category: AssignedNotRead, AssignSite: &assignSite}
	}

	loggedSeen := false
	currentVar := varName
	candidateSite := assignSite

	for _, stmt := range sibs[1:] {
		use := classifyStatementUse(tree, reg, stmt, currentVar, allowCastToVoid)
		switch use.kind {
		case useHandler:
			return Result{Category: PassedToHandlerFn}
		case useReturned:
			return Result{Category: Propagated}
		case useBranched:
			if use.catchall {
				return Result{Category: BranchedWithCatchall}
			}
			return Result{Category: BranchedNoCatchall}
		case useCastToVoid:
			return Result{Category: CastToVoid}
		case usePropagatedValue:
			currentVar = use.newVar
			candidateSite = use.newSite
		case useKilled:
			if loggedSeen {
				return Result{Category: LoggedNotHandled}
			}
			return Result{Category: AssignedNotRead, AssignSite: &candidateSite}
		case useLogger:
			loggedSeen = true
		case useOther:
			return Result{Category: UsedOther}
		case useNone:
			// No reference to the tracked variable in this statement; continue.
		}
	}

	if loggedSeen {
		return Result{Category: LoggedNotHandled}
	}
	return Result{Category: AssignedNotRead, AssignSite: &candidateSite}
}

type useKind int

const (
	useNone useKind = iota
	useHandler
	useReturned
	useBranched
	useCastToVoid
	usePropagatedValue
	useKilled
	useLogger
	useOther
)

type statementUse struct {
	kind     useKind
	catchall bool
	newVar   string
	newSite  loc.Location
}

// classifyStatementUse computes the single statement-use for varName within
// stmt, applying the within-statement precedence of §4.4: handler >
// returned > branched > cast_to_void > propagated-value > killed > logger >
// used_other, with "none" short-circuiting when varName does not occur in
// stmt at all.
func classifyStatementUse(tree *cxxast.Tree, reg *registry.Registry, stmt *sitter.Node, varName string, allowCastToVoid bool) statementUse {
	if !cxxast.ReferencesIdentifier(stmt, varName, tree.Source) {
		return statementUse{kind: useNone}
	}

	if isPassedToRole(tree, reg, stmt, varName, registry.RoleHandler) {
		return statementUse{kind: useHandler}
	}

	for _, ret := range cxxast.FindAll(stmt, "return_statement") {
		if v := cxxast.ReturnValueSubtree(ret); v != nil && cxxast.ReferencesIdentifier(v, varName, tree.Source) {
			return statementUse{kind: useReturned}
		}
	}

	if kind, catchall := ifOrSwitchCatchall(stmt, varName, tree.Source); kind != cxxast.BranchNone {
		return statementUse{kind: useBranched, catchall: catchall}
	}

	if allowCastToVoid && isVoidCastStatementOf(tree, stmt, varName) {
		return statementUse{kind: useCastToVoid}
	}

	if newVar, newSite, ok := propagatedValueAssignment(tree, stmt, varName); ok {
		return statementUse{kind: usePropagatedValue, newVar: newVar, newSite: newSite}
	}

	if isKillingAssignment(tree, stmt, varName) {
		return statementUse{kind: useKilled}
	}

	if isPassedToRole(tree, reg, stmt, varName, registry.RoleLogger) {
		return statementUse{kind: useLogger}
	}

	return statementUse{kind: useOther}
}

// isPassedToRole reports whether varName flows, anywhere within stmt, as an
// argument to a call whose callee is registered under role.
func isPassedToRole(tree *cxxast.Tree, reg *registry.Registry, stmt *sitter.Node, varName string, role registry.Role) bool {
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
			if cxxast.ReferencesIdentifier(arg, varName, tree.Source) {
				return true
			}
		}
	}
	return false
}

// ifOrSwitchCatchall reports whether stmt is itself an if/switch whose
// condition references varName.
func ifOrSwitchCatchall(stmt *sitter.Node, varName string, source []byte) (cxxast.BranchKind, bool) {
	switch stmt.Type() {
	case "if_statement", "switch_statement":
	default:
		return cxxast.BranchNone, false
	}
	cond := stmt.ChildByFieldName("condition")
	if cond == nil || !cxxast.ReferencesIdentifier(cond, varName, source) {
		return cxxast.BranchNone, false
	}
	// cond already matched against varName; pass it as ClassifyBranch's
	// target too, since Contains(cond, cond) is trivially true and this
	// reuses its catch-all detection without re-deriving it here.
	return cxxast.ClassifyBranch(stmt, cond)
}

// isVoidCastStatementOf reports whether stmt is an expression statement
// whose expression is an explicit cast to void of an expression referencing
// varName.
func isVoidCastStatementOf(tree *cxxast.Tree, stmt *sitter.Node, varName string) bool {
	if stmt.Type() != "expression_statement" {
		return false
	}
	if stmt.NamedChildCount() == 0 {
		return false
	}
	expr := stmt.NamedChild(0)
	for expr != nil && expr.Type() == "parenthesized_expression" {
		if expr.NamedChildCount() == 0 {
			return false
		}
		expr = expr.NamedChild(0)
	}
	if !cxxast.IsVoidCast(expr, tree.Source) {
		return false
	}
	operand := expr.ChildByFieldName("value")
	return operand != nil && cxxast.ReferencesIdentifier(operand, varName, tree.Source)
}

// propagatedValueAssignment reports whether stmt assigns exactly `newVar =
// varName` (after trivial paren unwrapping) to a distinct local, either as a
// plain assignment or as a declaration's initializer, per the GLOSSARY's
// definition of "Propagation (in the tracker)".
func propagatedValueAssignment(tree *cxxast.Tree, stmt *sitter.Node, varName string) (newVar string, site loc.Location, ok bool) {
	check := func(lhs, rhs *sitter.Node) (string, loc.Location, bool) {
		for rhs != nil && rhs.Type() == "parenthesized_expression" {
			if rhs.NamedChildCount() == 0 {
				return "", loc.Location{}, false
			}
			rhs = rhs.NamedChild(0)
		}
		if rhs == nil || rhs.Type() != "identifier" || cxxast.IdentifierName(rhs, tree.Source) != varName {
			return "", loc.Location{}, false
		}
		name := cxxast.IdentifierName(lhs, tree.Source)
		if name == "" || name == varName {
			return "", loc.Location{}, false
		}
		return name, tree.Position(rhs), true
	}

	switch stmt.Type() {
	case "expression_statement":
		if stmt.NamedChildCount() == 0 {
			return "", loc.Location{}, false
		}
		expr := stmt.NamedChild(0)
		if lhs, rhs, assignOK := cxxast.DirectAssignment(expr, tree.Source); assignOK {
			if v, s, matched := check(lhs, rhs); matched {
				return v, s, true
			}
		}
	case "declaration":
		for _, decl := range cxxast.FindAll(stmt, "init_declarator") {
			lhs, rhs, declOK := cxxast.LocalInitDeclarator(decl)
			if !declOK {
				continue
			}
			if v, s, matched := check(lhs, rhs); matched {
				return v, s, true
			}
		}
	}
	return "", loc.Location{}, false
}

// isKillingAssignment reports whether stmt assigns a new value to varName
// that does not reference varName itself.
func isKillingAssignment(tree *cxxast.Tree, stmt *sitter.Node, varName string) bool {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return false
	}
	lhs, rhs, ok := cxxast.DirectAssignment(stmt.NamedChild(0), tree.Source)
	if !ok || cxxast.IdentifierName(lhs, tree.Source) != varName {
		return false
	}
	return !cxxast.ReferencesIdentifier(rhs, varName, tree.Source)
}
