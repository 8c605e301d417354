// Package driver implements the batch engine driver: it loads the
// notable-functions registry and the compilation database, then classifies
// each translation unit in its own subprocess (spec.md §5 "parallel
// processes, not threads"), funneling every classified record back through
// a single in-process Emitter so the sink (pkg/sink) always has exactly one
// writer for the run.
package driver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"github.com/errorck-dev/errorck/internal/worker"
	"github.com/errorck-dev/errorck/pkg/classify"
	"github.com/errorck-dev/errorck/pkg/compiledb"
	"github.com/errorck-dev/errorck/pkg/emit"
	"github.com/errorck-dev/errorck/pkg/registry"
	"github.com/errorck-dev/errorck/pkg/sink"
)

// Options configures one run of the batch driver.
type Options struct {
	// NotableFnsPath is the path to the notable-functions JSON configuration.
	NotableFnsPath string
	// SinkPath is the path to the output sink database.
	SinkPath string
	// CompileDBDir is the directory containing compile_commands.json.
	CompileDBDir string
	// Overwrite permits truncating an existing sink file.
	Overwrite bool
	// WorkerBinary is the path to re-exec for each translation unit; the
	// CLI passes its own executable (os.Executable()) so the worker subcommand
	// runs the same binary in --worker-tu mode.
	WorkerBinary string
	// Concurrency bounds how many worker subprocesses run at once. Zero
	// means "let errgroup pick no limit" is not allowed here; Run defaults
	// it to a sane value instead, since an unbounded fan-out of processes
	// defeats the purpose of batching.
	Concurrency int
}

// Run classifies every translation unit named by the compilation database
// and writes the surviving records to the sink at opts.SinkPath. The
// returned error is non-nil whenever any error domain of spec.md §7 fired:
// configuration, frontend, or sink.
func Run(ctx context.Context, opts Options, logger *log.Logger) error {
	// Loaded here purely to fail fast on a bad configuration before any
	// worker subprocess is spawned; each worker reloads it independently.
	if _, err := registry.Load(opts.NotableFnsPath); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	tus, err := compiledb.Load(opts.CompileDBDir)
	if err != nil {
		return fmt.Errorf("frontend error: loading compilation database: %w", err)
	}

	s, err := sink.Open(opts.SinkPath, opts.Overwrite)
	if err != nil {
		return fmt.Errorf("sink error: %w", err)
	}
	defer s.Close()

	emitter := emit.New(s)

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	// Each translation unit's result is written to its own slot, indexed by
	// its position in tus (itself sorted by compiledb.Load). Worker
	// subprocesses race each other, but results are only ever fed to the
	// emitter afterward, in tus order — this is what keeps the round-trip
	// law of spec.md §8 true: re-running the same inputs inserts rows in
	// the same order regardless of which subprocess happened to finish
	// first.
	results := make([][]classify.Record, len(tus))
	failed := make([]bool, len(tus))

	for i, tu := range tus {
		i, tu := i, tu
		g.Go(func() error {
			records, err := runWorker(gctx, opts.WorkerBinary, opts.NotableFnsPath, tu.File)
			if err != nil {
				logger.Printf("frontend error: %s: %v", tu.File, err)
				failed[i] = true
				return nil
			}
			results[i] = records
			return nil
		})
	}

	// g.Go's closures never themselves return a non-nil error (errors are
	// logged and tallied instead), so Wait returns nil here; a cancelled
	// context shows up as failed workers, counted as frontend errors below.
	if err := g.Wait(); err != nil {
		return fmt.Errorf("driver: %w", err)
	}

	frontendFailures := 0
	for i, records := range results {
		if failed[i] {
			frontendFailures++
			continue
		}
		for _, rec := range records {
			if emitErr := emitter.Emit(rec); emitErr != nil {
				logger.Printf("sink error: %v", emitErr)
				break
			}
		}
	}

	if sinkErr := emitter.Err(); sinkErr != nil {
		return fmt.Errorf("sink error: %w", sinkErr)
	}
	if frontendFailures > 0 {
		return fmt.Errorf("frontend errors: %d translation unit(s) failed to build", frontendFailures)
	}
	return nil
}

// runWorker re-execs workerBinary in worker mode for a single translation
// unit and decodes its newline-delimited JSON output. The worker reloads
// the notable-functions registry itself rather than receiving it over a
// pipe: it is a small JSON file, and reloading it keeps the worker's
// command line self-contained and independently runnable for debugging.
func runWorker(ctx context.Context, workerBinary, notableFnsPath, file string) ([]classify.Record, error) {
	cmd := exec.CommandContext(ctx, workerBinary, worker.FlagName, notableFnsPath, file)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("piping worker stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting worker: %w", err)
	}

	var records []classify.Record
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec classify.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			cmd.Wait()
			return nil, fmt.Errorf("decoding worker output: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		cmd.Wait()
		return nil, fmt.Errorf("reading worker output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("worker exited: %w", err)
	}

	return records, nil
}
