// Package cxxast wraps a tree-sitter parse of a single C/C++ translation
// unit, giving the classifier the AST input contract it needs: typed nodes,
// parent-of queries and a source-location mapping. Everything outside this
// package treats *sitter.Node as an opaque, addressable AST node; this
// package is the only place that knows it is backed by tree-sitter.
package cxxast

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Lang identifies which tree-sitter grammar a translation unit was parsed
// with. C and C++ share most node kinds used by the classifier; the
// distinction only matters for language selection at parse time.
type Lang int

const (
	LangC Lang = iota
	LangCpp
)

func (l Lang) String() string {
	if l == LangCpp {
		return "c++"
	}
	return "c"
}

// DetectLang guesses the language from a filename extension. C++ sources and
// C++-specific header extensions select C++; every other extension, including
// a plain ".h" header, is parsed as C.
func DetectLang(filename string) Lang {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cc", ".cpp", ".cxx", ".c++", ".hpp", ".hh", ".hxx":
		return LangCpp
	default:
		return LangC
	}
}

// Tree is a parsed translation unit: the tree-sitter syntax tree plus the
// source bytes and filename needed to resolve node text and locations.
type Tree struct {
	tree     *sitter.Tree
	Source   []byte
	Filename string
	Lang     Lang
}

// Parse builds the AST for a single translation unit. The caller owns the
// returned Tree and must call Close when finished with it; tree-sitter
// trees hold C memory that is not reclaimed by the Go garbage collector.
func Parse(ctx context.Context, filename string, source []byte) (*Tree, error) {
	lang := DetectLang(filename)

	parser := sitter.NewParser()
	defer parser.Close()

	switch lang {
	case LangCpp:
		parser.SetLanguage(cpp.GetLanguage())
	default:
		parser.SetLanguage(c.GetLanguage())
	}

	t, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("cxxast: parse %s: %w", filename, err)
	}

	return &Tree{tree: t, Source: source, Filename: filename, Lang: lang}, nil
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Root returns the translation_unit node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Text returns the verbatim source text spanned by n.
func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(t.Source)
}
