// Package compiledb ingests a clang-style JSON compilation database,
// yielding the list of translation units the driver must classify (spec.md
// §6 "CLI surface": "path to a compilation database (directory)").
package compiledb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sourceExtensions are the file extensions treated as C/C++ translation
// units; everything else in the database (object files, linker inputs) is
// skipped.
var sourceExtensions = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true, ".c++": true,
}

// entry mirrors one element of compile_commands.json.
type entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command"`
	Arguments []string `json:"arguments"`
}

// TranslationUnit is one source file to classify, along with the compiler
// invocation context the AST frontend would need (kept even though errorck's
// tree-sitter frontend does not need preprocessing, because a conforming
// compile_commands.json reader must still surface it per §6).
type TranslationUnit struct {
	File      string
	Directory string
	Args      []string
}

// Load parses compile_commands.json found in dir and returns one
// TranslationUnit per C/C++ entry. File paths are resolved relative to each
// entry's own Directory, matching clang's compilation database semantics.
func Load(dir string) ([]TranslationUnit, error) {
	path := filepath.Join(dir, "compile_commands.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compiledb: read %s: %w", path, err)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("compiledb: parse %s: %w", path, err)
	}

	var tus []TranslationUnit
	for _, e := range entries {
		if !sourceExtensions[strings.ToLower(filepath.Ext(e.File))] {
			continue
		}

		args := e.Arguments
		if len(args) == 0 && e.Command != "" {
			args = splitCommand(e.Command)
		}

		file := e.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(e.Directory, file)
		}

		tus = append(tus, TranslationUnit{
			File:      file,
			Directory: e.Directory,
			Args:      args,
		})
	}

	// Sorted by file so the batch driver always feeds translation units to
	// the sink in the same order, independent of JSON array order or
	// worker-subprocess completion order (spec.md §8 "Round-trip laws").
	sort.Slice(tus, func(i, j int) bool { return tus[i].File < tus[j].File })

	return tus, nil
}

// splitCommand performs a minimal shell-style word split on a compile
// command string, honoring single and double quotes. It is intentionally
// small: compile_commands.json entries rarely need anything beyond quoted
// paths with spaces, and a full shell grammar is out of scope for reading a
// build artifact that is, in practice, machine-generated.
func splitCommand(cmd string) []string {
	var args []string
	var cur strings.Builder
	var quote rune

	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}

	for _, r := range cmd {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return args
}
