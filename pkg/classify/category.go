// Package classify implements the per-translation-unit classification
// engine: given a parsed AST (internal/cxxast) and a notable-functions
// registry, it assigns exactly one handling category to every watched call.
package classify

import "github.com/errorck-dev/errorck/pkg/loc"

// Category is one of the nine handling-category labels a watched call can
// be assigned. It is a flat sum type: the classifier is a short ordered
// sequence of predicates returning the first match (§9 "Precedence as
// explicit ordering, not overloading"), never a type hierarchy.
type Category string

const (
	Ignored              Category = "ignored"
	CastToVoid           Category = "cast_to_void"
	AssignedNotRead      Category = "assigned_not_read"
	BranchedNoCatchall   Category = "branched_no_catchall"
	BranchedWithCatchall Category = "branched_with_catchall"
	Propagated           Category = "propagated"
	PassedToHandlerFn    Category = "passed_to_handler_fn"
	LoggedNotHandled     Category = "logged_not_handled"
	UsedOther            Category = "used_other"
)

// Result is the outcome of classifying one watched call: a category plus,
// only for AssignedNotRead, the location of the final value-bearing
// expression that was copied but never read.
type Result struct {
	Category   Category
	AssignSite *loc.Location
}

// Site identifies a watched call: its callee name, as syntactically
// written, and its resolved source location.
type Site struct {
	Name string
	Pos  loc.Location
}

// Record is one emission: a classified call site plus its category and
// optional assignment site (spec.md §3 "Emission record").
type Record struct {
	Site       Site
	Category   Category
	AssignSite *loc.Location
}
