// Package worker implements the hidden subcommand that classifies exactly
// one translation unit and prints its records as newline-delimited JSON.
// The batch driver (pkg/driver) re-execs the errorck binary in this mode so
// that each translation unit is analyzed in its own OS process, matching
// spec.md §5's "parallel processes, not threads" requirement.
package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/errorck-dev/errorck/internal/cxxast"
	"github.com/errorck-dev/errorck/pkg/classify"
	"github.com/errorck-dev/errorck/pkg/registry"
)

// FlagName is the hidden CLI verb that selects worker mode. It is checked
// directly against os.Args before the kong parser ever sees the argument
// list, since it is not part of the user-facing CLI surface (spec.md §6
// lists only the engine driver's own flags).
const FlagName = "--worker-tu"

// Run classifies the translation unit named by args[1] against the
// notable-functions registry named by args[0], writing one JSON object per
// classified call to stdout.
func Run(args []string, stdout io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("worker: expected <notable-functions-path> <source-file>, got %d arguments", len(args))
	}
	notableFnsPath, file := args[0], args[1]

	reg, err := registry.Load(notableFnsPath)
	if err != nil {
		return fmt.Errorf("worker: %w", err)
	}

	source, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("worker: reading %s: %w", file, err)
	}

	tree, err := cxxast.Parse(context.Background(), file, source)
	if err != nil {
		return fmt.Errorf("worker: parsing %s: %w", file, err)
	}
	defer tree.Close()

	records := classify.TranslationUnit(tree, reg)

	w := bufio.NewWriter(stdout)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("worker: encoding record for %s: %w", file, err)
		}
	}
	return w.Flush()
}
