// Package main provides the entry point for errorck, a batch static
// analyzer that classifies how C/C++ translation units handle errors from
// watched function calls.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/errorck-dev/errorck/internal/worker"
	"github.com/errorck-dev/errorck/pkg/driver"
)

// CLI is the engine driver's command-line surface (spec.md §6 "CLI surface
// (engine driver)").
type CLI struct {
	NotableFns string `arg:"" help:"Path to the notable-functions JSON configuration." type:"path"`
	Sink       string `arg:"" help:"Path to the output sink database." type:"path"`
	CompileDB  string `arg:"" help:"Directory containing compile_commands.json." type:"path"`

	Overwrite   bool `name:"overwrite-if-needed" help:"Truncate an existing sink database instead of refusing to run."`
	Concurrency int  `name:"concurrency" help:"Maximum number of translation units analyzed in parallel." default:"4"`
}

// main dispatches to worker mode (a hidden re-exec target, never invoked
// directly by a user) before handing control to kong, since the worker's
// argument shape does not fit the driver's CLI surface.
func main() {
	if len(os.Args) > 1 && os.Args[1] == worker.FlagName {
		if err := worker.Run(os.Args[2:], os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run parses arguments and executes the batch driver.
func run(args []string, stdout io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("errorck"),
		kong.Description("Classify how C/C++ code handles errors from watched function calls."),
		kong.Writers(stdout, io.Discard),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return err
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own executable path: %w", err)
	}

	logger := log.New(stdout, "", log.LstdFlags)

	opts := driver.Options{
		NotableFnsPath: cli.NotableFns,
		SinkPath:       cli.Sink,
		CompileDBDir:   cli.CompileDB,
		Overwrite:      cli.Overwrite,
		WorkerBinary:   self,
		Concurrency:    cli.Concurrency,
	}

	return driver.Run(context.Background(), opts, logger)
}
