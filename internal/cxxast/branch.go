package cxxast

import sitter "github.com/smacker/go-tree-sitter"

// BranchKind distinguishes the two branching constructs the classifier
// recognizes.
type BranchKind int

const (
	BranchNone BranchKind = iota
	BranchIf
	BranchSwitch
)

// ClassifyBranch reports whether stmt is an if/switch whose condition
// contains target, and whether that branch has a catch-all per the
// GLOSSARY: a terminal `else` that is not itself another `if` (for
// if-chains), or a `default` label (for switches).
func ClassifyBranch(stmt, target *sitter.Node) (kind BranchKind, hasCatchall bool) {
	if stmt == nil {
		return BranchNone, false
	}
	switch stmt.Type() {
	case "if_statement":
		cond := stmt.ChildByFieldName("condition")
		if !Contains(cond, target) {
			return BranchNone, false
		}
		return BranchIf, ifChainHasCatchall(stmt)
	case "switch_statement":
		cond := stmt.ChildByFieldName("condition")
		if !Contains(cond, target) {
			return BranchNone, false
		}
		return BranchSwitch, switchHasDefault(stmt)
	default:
		return BranchNone, false
	}
}

// ifChainHasCatchall follows the alternative chain of an if/else-if/.../else
// ladder to its end and reports whether the final alternative exists and is
// not itself an if_statement.
func ifChainHasCatchall(ifStmt *sitter.Node) bool {
	cur := ifStmt
	for {
		alt := cur.ChildByFieldName("alternative")
		if alt == nil {
			return false
		}
		// The alternative may be an else_clause wrapping the statement that
		// follows `else`; look at that statement.
		if alt.Type() == "else_clause" {
			if alt.NamedChildCount() == 0 {
				return false
			}
			alt = alt.NamedChild(0)
		}
		if alt.Type() == "if_statement" {
			cur = alt
			continue
		}
		return true
	}
}

// switchHasDefault reports whether switchStmt's body contains a case_statement
// with no "value" field, i.e. a `default:` label.
func switchHasDefault(switchStmt *sitter.Node) bool {
	body := switchStmt.ChildByFieldName("body")
	if body == nil {
		return false
	}
	n := int(body.NamedChildCount())
	for i := 0; i < n; i++ {
		child := body.NamedChild(i)
		if child.Type() != "case_statement" {
			continue
		}
		if child.ChildByFieldName("value") == nil {
			return true
		}
	}
	return false
}
