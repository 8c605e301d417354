package classify

import (
	"github.com/errorck-dev/errorck/internal/cxxast"
	"github.com/errorck-dev/errorck/pkg/loc"
	"github.com/errorck-dev/errorck/pkg/registry"
	sitter "github.com/smacker/go-tree-sitter"
)

// TranslationUnit classifies every watched call in tree against reg,
// visiting call expressions in the order cxxast.Tree.WalkCalls yields them
// (depth-first pre-order over the parse tree, per spec.md §4.1).
//
// A call is "watched" when its callee name, resolved syntactically, is
// registered with reporting "return_value" or "errno" (§3 "Watched call").
// Calls whose callee cannot be resolved to a plain identifier, or whose
// resolved name is not registered (including one registered only as a
// handler or logger), are not watched and produce no record.
func TranslationUnit(tree *cxxast.Tree, reg *registry.Registry) []Record {
	var records []Record
	tree.WalkCalls(func(call *sitter.Node) {
		name, ok := cxxast.CalleeName(call, tree.Source)
		if !ok {
			return
		}
		role, found := reg.Lookup(name)
		if !found {
			return
		}

		var result Result
		switch role {
		case registry.RoleWatchedReturnValue:
			result = classifyReturnValue(tree, reg, call)
		case registry.RoleWatchedErrno:
			result = classifyErrno(tree, reg, call)
		default:
			// Handler/logger-only registrations are never themselves watched.
			return
		}

		records = append(records, Record{
			Site:       Site{Name: name, Pos: tree.Position(call)},
			Category:   result.Category,
			AssignSite: assignSiteOrNil(result),
		})
	})
	return records
}

func assignSiteOrNil(r Result) *loc.Location {
	if r.Category != AssignedNotRead {
		return nil
	}
	return r.AssignSite
}
