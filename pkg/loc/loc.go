// Package loc holds the minimal source-location type shared by the AST
// adapter, the classifier and the emitter, so that none of them need to
// import one another just to talk about "a file, line and column".
package loc

// Location is a 1-indexed source position. An absent or invalid position
// (per spec.md §7, a call whose location could not be resolved) is
// represented by the zero value: empty File, Line and Column both 0.
type Location struct {
	File   string
	Line   int
	Column int
}

// Valid reports whether l carries a resolved position.
func (l Location) Valid() bool {
	return l.File != "" && l.Line > 0 && l.Column > 0
}
