package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/modm-io/modm-devices-go/pkg/lint"
	"github.com/modm-io/modm-devices-go/pkg/lint/rules"
	"github.com/modm-io/modm-devices-go/pkg/log"
)

// LintOptions configures the lint command.
type LintOptions struct {
	commonOptions
	JSON        bool
	Match       string
	MinSeverity string
	Disable     stringList
	Files       []string
}

// RunLint checks every matching device against the consistency rules.
// It returns exitValidation when any device has an error.
func RunLint(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseLintArgs(args)
	if err != nil {
		return parseFailed(err, stderr, printLintUsage)
	}
	minSeverity, err := lint.ParseSeverity(opts.MinSeverity)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	registry := rules.NewDefaultRegistry()
	for _, id := range opts.Disable {
		if registry.Rule(id) == nil {
			fmt.Fprintf(stderr, "Error: unknown rule %q\n", id)
			return exitCommandError
		}
		registry.Disable(id)
	}

	e, err := openEnv(ctx, opts.commonOptions, opts.Files, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer e.Close()

	devices, err := e.catalog.Match(opts.Match)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if err := e.resolve(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	validator := lint.NewValidator(registry)
	validator.MinSeverity = minSeverity

	results := make([]*lint.Result, 0, len(devices))
	hasErrors := false
	for _, dev := range devices {
		start := time.Now()
		result := validator.Validate(dev)
		results = append(results, result)

		errs, warnings, infos := result.Count()
		event := log.Event{
			Stage:    log.StageLint,
			Document: result.Document,
			Partname: result.Partname,
			Duration: time.Since(start),
			Lint:     &log.LintEvent{Errors: errs, Warnings: warnings, Infos: infos},
		}
		if errs > 0 {
			event.Outcome = log.OutcomeFailed
			hasErrors = true
		}
		e.catalog.Emit(event)

		if !opts.JSON {
			printLintResult(stdout, result)
		}
	}

	if opts.JSON {
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Fprintln(stdout, string(data))
	} else {
		printLintTotals(stdout, results)
	}

	if hasErrors {
		return exitValidation
	}
	return exitSuccess
}

func printLintResult(w io.Writer, result *lint.Result) {
	if len(result.Violations) == 0 {
		return
	}
	errs, warnings, infos := result.Count()
	fmt.Fprintf(w, "%s: %d error(s), %d warning(s), %d info(s)\n", result.Partname, errs, warnings, infos)
	for _, v := range result.Violations {
		fmt.Fprintf(w, "  %s\n", v)
	}
}

func printLintTotals(w io.Writer, results []*lint.Result) {
	clean := 0
	for _, r := range results {
		if len(r.Violations) == 0 {
			clean++
		}
	}
	fmt.Fprintf(w, "%d device(s) checked, %d clean\n", len(results), clean)
}

func parseLintArgs(args []string) (LintOptions, error) {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := LintOptions{}

	addCommonFlags(fs, &opts.commonOptions)
	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")
	fs.StringVar(&opts.Match, "match", "*", "Only check part names matching this glob")
	fs.StringVar(&opts.MinSeverity, "min-severity", "info", "Lowest severity to report (error, warning, info)")
	fs.Var(&opts.Disable, "disable", "Disable a rule by ID (repeatable)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func printLintUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: modm-devices lint [options] [files...]

Options:
  -config FILE         Configuration file
  -events FILE         Append resolution events to FILE
  -json                Output results as JSON
  -match GLOB          Only check part names matching GLOB (default "*")
  -min-severity LEVEL  Lowest severity to report: error, warning, info (default "info")
  -disable ID          Disable a rule, e.g. GPIO-003 (repeatable)

Exit status is 2 when any device has an error.

Examples:
  modm-devices lint devices/stm32
  modm-devices lint -json -match 'stm32f4*' devices/stm32`)
}
