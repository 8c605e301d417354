package cxxast

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func mustParse(t *testing.T, source string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), "test.c", []byte(source))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Cleanup(tree.Close)
	return tree
}

func firstCall(t *testing.T, tree *Tree) *sitter.Node {
	t.Helper()
	var found *sitter.Node
	tree.WalkCalls(func(call *sitter.Node) {
		if found == nil {
			found = call
		}
	})
	if found == nil {
		t.Fatalf("no call expression found")
	}
	return found
}

func firstOfType(tree *Tree, typ string) *sitter.Node {
	all := FindAll(tree.Root(), typ)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

func TestDetectLang(t *testing.T) {
	cases := map[string]Lang{
		"a.c":   LangC,
		"a.h":   LangC,
		"a.cc":  LangCpp,
		"a.cpp": LangCpp,
		"a.cxx": LangCpp,
		"a.hpp": LangCpp,
	}
	for name, want := range cases {
		if got := DetectLang(name); got != want {
			t.Errorf("DetectLang(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsStatementPositionBareCall(t *testing.T) {
	tree := mustParse(t, `int main(){ foo(); return 0; }`)
	call := firstCall(t, tree)
	if !IsStatementPosition(call) {
		t.Errorf("expected bare call statement to be in statement position")
	}
}

func TestIsStatementPositionAssigned(t *testing.T) {
	tree := mustParse(t, `int main(){ int x = foo(); return x; }`)
	call := firstCall(t, tree)
	if IsStatementPosition(call) {
		t.Errorf("expected assigned call not to be in statement position")
	}
}

func TestCalleeName(t *testing.T) {
	tree := mustParse(t, `int main(){ return foo(1,2); }`)
	call := firstCall(t, tree)
	name, ok := CalleeName(call, tree.Source)
	if !ok || name != "foo" {
		t.Errorf("CalleeName = %q, %v, want \"foo\", true", name, ok)
	}
}

func TestCalleeNameRejectsMemberCall(t *testing.T) {
	tree := mustParse(t, `int main(){ return obj.foo(1); }`)
	call := firstCall(t, tree)
	if _, ok := CalleeName(call, tree.Source); ok {
		t.Errorf("expected member call to yield ok=false")
	}
}

func TestClassifyBranchIfNoCatchall(t *testing.T) {
	tree := mustParse(t, `int main(){ int x=foo(); if (x) return 1; return 0; }`)
	ifStmt := firstOfType(tree, "if_statement")
	if ifStmt == nil {
		t.Fatalf("no if_statement found")
	}
	cond := ifStmt.ChildByFieldName("condition")
	kind, catchall := ClassifyBranch(ifStmt, cond)
	if kind != BranchIf {
		t.Errorf("expected BranchIf, got %v", kind)
	}
	if catchall {
		t.Errorf("expected no catch-all for an if with no else")
	}
}

func TestClassifyBranchIfWithCatchall(t *testing.T) {
	tree := mustParse(t, `int main(){ int x=foo(); if (x) return 1; else return 2; }`)
	ifStmt := firstOfType(tree, "if_statement")
	cond := ifStmt.ChildByFieldName("condition")
	_, catchall := ClassifyBranch(ifStmt, cond)
	if !catchall {
		t.Errorf("expected catch-all for if/else")
	}
}

func TestClassifyBranchElseIfChainWithoutFinalElse(t *testing.T) {
	tree := mustParse(t, `int main(){ int x=foo(); if (x==1) return 1; else if (x==2) return 2; return 0; }`)
	ifStmt := firstOfType(tree, "if_statement")
	cond := ifStmt.ChildByFieldName("condition")
	_, catchall := ClassifyBranch(ifStmt, cond)
	if catchall {
		t.Errorf("expected no catch-all when the else-if chain never terminates in a bare else")
	}
}

func TestSwitchHasDefault(t *testing.T) {
	tree := mustParse(t, `int main(){ int x=foo(); switch(x){ case 1: break; default: break; } return 0; }`)
	sw := firstOfType(tree, "switch_statement")
	cond := sw.ChildByFieldName("condition")
	kind, catchall := ClassifyBranch(sw, cond)
	if kind != BranchSwitch || !catchall {
		t.Errorf("expected switch with default to report catch-all, got kind=%v catchall=%v", kind, catchall)
	}
}

func TestSwitchWithoutDefault(t *testing.T) {
	tree := mustParse(t, `int main(){ int x=foo(); switch(x){ case 1: break; } return 0; }`)
	sw := firstOfType(tree, "switch_statement")
	cond := sw.ChildByFieldName("condition")
	_, catchall := ClassifyBranch(sw, cond)
	if catchall {
		t.Errorf("expected no catch-all for a switch without a default label")
	}
}

func TestIsErrnoReferenceNodeIdentifier(t *testing.T) {
	tree := mustParse(t, `int main(){ return errno; }`)
	var ident *sitter.Node
	for _, n := range FindAll(tree.Root(), "identifier") {
		if IdentifierName(n, tree.Source) == "errno" {
			ident = n
		}
	}
	if ident == nil {
		t.Fatalf("errno identifier not found")
	}
	if !IsErrnoReferenceNode(ident, tree.Source) {
		t.Errorf("expected errno identifier to be recognized as an errno reference")
	}
}

func TestIsErrnoReferenceNodeAccessorCall(t *testing.T) {
	tree := mustParse(t, `int main(){ return *__errno_location(); }`)
	ptr := firstOfType(tree, "pointer_expression")
	if ptr == nil {
		t.Fatalf("no pointer_expression found")
	}
	if !IsErrnoReferenceNode(ptr, tree.Source) {
		t.Errorf("expected dereferenced __errno_location() to be recognized as an errno reference")
	}
}

func TestContainsErrnoReferenceExcludesAssignmentTarget(t *testing.T) {
	tree := mustParse(t, `int main(){ errno = 0; return 0; }`)
	stmt := firstOfType(tree, "expression_statement")
	if ContainsErrnoReference(stmt, tree.Source) {
		t.Errorf("expected errno = 0 to not count as a reference, only a write")
	}
}

func TestContainsErrnoReferenceDetectsRead(t *testing.T) {
	tree := mustParse(t, `int main(){ int saved; saved = errno; return saved; }`)
	assigns := FindAll(tree.Root(), "assignment_expression")
	if len(assigns) != 1 {
		t.Fatalf("expected 1 assignment_expression, got %d", len(assigns))
	}
	if !ContainsErrnoReference(assigns[0], tree.Source) {
		t.Errorf("expected `saved = errno` to contain a genuine errno reference on the right-hand side")
	}
}

func TestDirectAssignmentRejectsCompoundOperator(t *testing.T) {
	tree := mustParse(t, `int main(){ int x=0; x += 1; return x; }`)
	assigns := FindAll(tree.Root(), "assignment_expression")
	if len(assigns) != 1 {
		t.Fatalf("expected 1 assignment_expression, got %d", len(assigns))
	}
	_, _, ok := DirectAssignment(assigns[0], tree.Source)
	if ok {
		t.Errorf("expected += assignment to be rejected by DirectAssignment")
	}
}

func TestDirectAssignmentAcceptsPlainAssignment(t *testing.T) {
	tree := mustParse(t, `int main(){ int x; x = 1; return x; }`)
	assigns := FindAll(tree.Root(), "assignment_expression")
	if len(assigns) != 1 {
		t.Fatalf("expected 1 assignment_expression, got %d", len(assigns))
	}
	lhs, rhs, ok := DirectAssignment(assigns[0], tree.Source)
	if !ok {
		t.Fatalf("expected plain assignment to be accepted")
	}
	if IdentifierName(lhs, tree.Source) != "x" {
		t.Errorf("lhs = %q, want \"x\"", IdentifierName(lhs, tree.Source))
	}
	if rhs == nil {
		t.Errorf("expected non-nil rhs")
	}
}

func TestUnwrapUpwardSkipsParensAndCasts(t *testing.T) {
	tree := mustParse(t, `int main(){ (void)(foo()); return 0; }`)
	call := firstCall(t, tree)
	first, wrappers := UnwrapUpward(call)
	if first == nil || first.Type() != "expression_statement" {
		t.Fatalf("expected UnwrapUpward to land on expression_statement, got %v", first)
	}
	if len(wrappers) != 2 {
		t.Errorf("expected to pass through 2 wrappers (parens, cast), got %d", len(wrappers))
	}
}

func TestIsVoidCast(t *testing.T) {
	tree := mustParse(t, `int main(){ (void)foo(); return 0; }`)
	cast := firstOfType(tree, "cast_expression")
	if cast == nil {
		t.Fatalf("no cast_expression found")
	}
	if !IsVoidCast(cast, tree.Source) {
		t.Errorf("expected (void)foo() to be recognized as a void cast")
	}
}

func TestContainsRangeContainment(t *testing.T) {
	tree := mustParse(t, `int main(){ if (foo()) return 1; return 0; }`)
	ifStmt := firstOfType(tree, "if_statement")
	call := firstCall(t, tree)
	if !Contains(ifStmt, call) {
		t.Errorf("expected the if_statement to contain the call in its condition")
	}
	if Contains(call, ifStmt) {
		t.Errorf("containment must not hold in the reverse direction")
	}
}

func TestEnclosingBlockStatementAndNextStatement(t *testing.T) {
	tree := mustParse(t, `int main(){ int x = foo(); bar(); return x; }`)
	call := firstCall(t, tree)
	stmt := EnclosingBlockStatement(call)
	if stmt == nil || stmt.Type() != "declaration" {
		t.Fatalf("expected enclosing block statement to be the declaration, got %v", stmt)
	}
	block := EnclosingCompoundStatement(call)
	next := NextStatement(block, stmt)
	if next == nil || next.Type() != "expression_statement" {
		t.Fatalf("expected next statement to be the bar() expression statement, got %v", next)
	}
}

func TestLocalInitDeclarator(t *testing.T) {
	tree := mustParse(t, `int main(){ int x = foo(); return x; }`)
	decl := firstOfType(tree, "init_declarator")
	if decl == nil {
		t.Fatalf("no init_declarator found")
	}
	ident, value, ok := LocalInitDeclarator(decl)
	if !ok {
		t.Fatalf("expected LocalInitDeclarator to resolve")
	}
	if IdentifierName(ident, tree.Source) != "x" {
		t.Errorf("ident = %q, want \"x\"", IdentifierName(ident, tree.Source))
	}
	if value == nil {
		t.Errorf("expected non-nil initializer value")
	}
}
