package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/modm-io/modm-devices-go/internal/config"
	"github.com/modm-io/modm-devices-go/pkg/index"
	"github.com/modm-io/modm-devices-go/pkg/log"
)

// IndexOptions configures the index command.
type IndexOptions struct {
	commonOptions
	Out    string
	Lookup string
	Files  []string
}

// RunIndex writes the part name index of every loaded device, or with
// -lookup reads one entry back from an existing index.
func RunIndex(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseIndexArgs(args)
	if err != nil {
		return parseFailed(err, stderr, printIndexUsage)
	}

	if opts.Lookup != "" {
		return lookupIndex(ctx, opts, stdout, stderr)
	}

	e, err := openEnv(ctx, opts.commonOptions, opts.Files, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer e.Close()

	out := opts.Out
	if out == "" {
		out = e.cfg.Index.Path
	}
	if out == "" {
		fmt.Fprintln(stderr, "Error: no index path specified")
		printIndexUsage(stderr)
		return exitCommandError
	}

	if err := e.resolve(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	start := time.Now()
	idx, buildErr := index.Build(e.catalog.Devices())
	if buildErr != nil {
		e.logger.Warn("some devices were left out of the index", "error", buildErr)
	}

	store, err := index.Open(out)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer store.Close()

	event := log.Event{
		Stage:    log.StageIndex,
		Document: out,
		Index:    &log.IndexEvent{Store: store.Kind(), Entries: len(idx.Entries)},
	}
	if err := store.Save(ctx, idx); err != nil {
		event.Outcome = log.OutcomeFailed
		event.Index = nil
		event.Error = &log.ErrorEventData{Stage: log.StageIndex, Message: err.Error(), Context: out}
		event.Duration = time.Since(start)
		e.catalog.Emit(event)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	event.Duration = time.Since(start)
	e.catalog.Emit(event)

	fmt.Fprintf(stdout, "wrote %d entries to %s (%s)\n", len(idx.Entries), out, store.Kind())
	return exitSuccess
}

func lookupIndex(ctx context.Context, opts IndexOptions, stdout, stderr io.Writer) int {
	out := opts.Out
	if out == "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		out = cfg.Index.Path
	}
	if out == "" {
		fmt.Fprintln(stderr, "Error: no index path specified")
		return exitCommandError
	}

	store, err := index.Open(out)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer store.Close()

	entry, err := store.Lookup(ctx, opts.Lookup)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	data, _ := json.MarshalIndent(entry, "", "  ")
	fmt.Fprintln(stdout, string(data))
	return exitSuccess
}

func parseIndexArgs(args []string) (IndexOptions, error) {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := IndexOptions{}

	addCommonFlags(fs, &opts.commonOptions)
	fs.StringVar(&opts.Out, "out", "", "Index file (.db for SQLite, anything else JSON)")
	fs.StringVar(&opts.Lookup, "lookup", "", "Print the stored entry for this part name")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	if opts.Lookup != "" && len(opts.Files) > 0 {
		return opts, fmt.Errorf("-lookup takes no files (got %s)", strings.Join(opts.Files, ", "))
	}
	return opts, nil
}

func printIndexUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: modm-devices index -out FILE [options] [files...]
       modm-devices index -out FILE -lookup NAME

Options:
  -config FILE   Configuration file
  -events FILE   Append resolution events to FILE
  -out FILE      Index file; .db, .sqlite and .sqlite3 select SQLite, anything else JSON
  -lookup NAME   Print the stored entry for part name NAME

Examples:
  modm-devices index -out devices.db devices/
  modm-devices index -out devices.db -lookup stm32f407vg`)
}
