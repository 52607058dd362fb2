package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/modm-io/modm-devices-go/pkg/log"
)

// EventsOptions configures the events command.
type EventsOptions struct {
	Partname string
	Document string
	Session  string
	Stage    string
	Failed   bool
	Since    string
	JSON     bool
	Stats    bool
	File     string
}

// RunEvents prints the events of a captured event log.
func RunEvents(_ context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseEventsArgs(args)
	if err != nil {
		return parseFailed(err, stderr, printEventsUsage)
	}
	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: event log path required")
		printEventsUsage(stderr)
		return exitCommandError
	}

	filter, err := buildEventFilter(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	events, err := log.ReadAll(opts.File, filter)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	switch {
	case opts.Stats:
		printEventStats(stdout, events)
	case opts.JSON:
		enc := json.NewEncoder(stdout)
		for _, ev := range events {
			if err := enc.Encode(ev); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return exitCommandError
			}
		}
	default:
		for _, ev := range events {
			formatEvent(stdout, ev)
		}
	}
	return exitSuccess
}

func buildEventFilter(opts EventsOptions) (log.Filter, error) {
	filter := log.Filter{
		SessionID:  opts.Session,
		Document:   opts.Document,
		Partname:   opts.Partname,
		FailedOnly: opts.Failed,
	}
	if opts.Stage != "" {
		stage, ok := log.ParseStage(opts.Stage)
		if !ok {
			return filter, fmt.Errorf("unknown stage %q (use load, expand, resolve, lint, index)", opts.Stage)
		}
		filter.Stage = &stage
	}
	if opts.Since != "" {
		t, err := time.Parse(time.RFC3339, opts.Since)
		if err != nil {
			return filter, fmt.Errorf("invalid -since: %w", err)
		}
		filter.TimeStart = &t
	}
	return filter, nil
}

// formatEvent writes one event as a header line plus detail lines.
func formatEvent(w io.Writer, ev log.Event) {
	ts := ev.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [%s] %-7s %-6s", ts, shortenSessionID(ev.SessionID), ev.Stage, ev.Outcome)
	if ev.Partname != "" {
		fmt.Fprintf(w, " %s", ev.Partname)
	}
	if ev.Duration > 0 {
		fmt.Fprintf(w, " (%s)", ev.Duration.Round(time.Microsecond))
	}
	fmt.Fprintln(w)

	if ev.Document != "" {
		fmt.Fprintf(w, "  Document: %s\n", ev.Document)
	}
	switch {
	case ev.Load != nil:
		fmt.Fprintf(w, "  Format: %s  Devices: %d\n", ev.Load.Format, ev.Load.Devices)
	case ev.Resolve != nil:
		fmt.Fprintf(w, "  Drivers: %d  Keys: %d\n", ev.Resolve.Drivers, ev.Resolve.Keys)
	case ev.Lint != nil:
		fmt.Fprintf(w, "  Errors: %d  Warnings: %d  Infos: %d\n", ev.Lint.Errors, ev.Lint.Warnings, ev.Lint.Infos)
	case ev.Index != nil:
		fmt.Fprintf(w, "  Store: %s  Entries: %d\n", ev.Index.Store, ev.Index.Entries)
	case ev.Error != nil:
		fmt.Fprintf(w, "  Error: %s\n", ev.Error.Message)
	}
}

func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func printEventStats(w io.Writer, events []log.Event) {
	type stageStats struct {
		ok, failed int
		total      time.Duration
		slowest    log.Event
	}
	stats := make(map[log.Stage]*stageStats)
	sessions := make(map[string]bool)
	for _, ev := range events {
		sessions[ev.SessionID] = true
		s := stats[ev.Stage]
		if s == nil {
			s = &stageStats{}
			stats[ev.Stage] = s
		}
		if ev.Outcome == log.OutcomeFailed {
			s.failed++
		} else {
			s.ok++
		}
		s.total += ev.Duration
		if ev.Duration > s.slowest.Duration {
			s.slowest = ev
		}
	}

	fmt.Fprintf(w, "Events: %d  Sessions: %d\n", len(events), len(sessions))

	stages := make([]log.Stage, 0, len(stats))
	for st := range stats {
		stages = append(stages, st)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })

	for _, st := range stages {
		s := stats[st]
		fmt.Fprintf(w, "  %-7s ok=%d failed=%d total=%s", st, s.ok, s.failed, s.total.Round(time.Microsecond))
		if name := s.slowest.Partname; name != "" {
			fmt.Fprintf(w, " slowest=%s (%s)", name, s.slowest.Duration.Round(time.Microsecond))
		}
		fmt.Fprintln(w)
	}
}

func parseEventsArgs(args []string) (EventsOptions, error) {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := EventsOptions{}

	fs.StringVar(&opts.Partname, "partname", "", "Only events of this device")
	fs.StringVar(&opts.Document, "document", "", "Only events of this document")
	fs.StringVar(&opts.Session, "session", "", "Only events of this session ID")
	fs.StringVar(&opts.Stage, "stage", "", "Only events of this stage (load, expand, resolve, lint, index)")
	fs.BoolVar(&opts.Failed, "failed", false, "Only failed steps")
	fs.StringVar(&opts.Since, "since", "", "Only events at or after this time (RFC3339)")
	fs.BoolVar(&opts.JSON, "json", false, "Print events as JSON lines")
	fs.BoolVar(&opts.Stats, "stats", false, "Print per-stage statistics instead of events")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 1 {
		return opts, fmt.Errorf("expected one event log, got %d", fs.NArg())
	}
	opts.File = fs.Arg(0)
	return opts, nil
}

func printEventsUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: modm-devices events [options] <events.cbor>

Options:
  -partname NAME   Only events of device NAME
  -document PATH   Only events of document PATH
  -session ID      Only events of session ID
  -stage STAGE     Only events of STAGE: load, expand, resolve, lint, index
  -failed          Only failed steps
  -since TIME      Only events at or after TIME (RFC3339)
  -json            Print events as JSON lines
  -stats           Print per-stage statistics instead of events

Examples:
  modm-devices events -failed resolve.cbor
  modm-devices events -stage lint -partname stm32f407vg resolve.cbor`)
}
