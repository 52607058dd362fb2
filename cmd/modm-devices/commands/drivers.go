package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/modm-io/modm-devices-go/pkg/inspect"
)

// DriversOptions configures the drivers command.
type DriversOptions struct {
	commonOptions
	Device   string
	Patterns stringList
	JSON     bool
	Files    []string
}

// RunDrivers prints the drivers, instances and features of one device.
func RunDrivers(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseDriversArgs(args)
	if err != nil {
		return parseFailed(err, stderr, printDriversUsage)
	}
	if opts.Device == "" {
		fmt.Fprintln(stderr, "Error: no device specified")
		printDriversUsage(stderr)
		return exitCommandError
	}

	e, err := openEnv(ctx, opts.commonOptions, opts.Files, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer e.Close()

	dev, err := e.lookup(opts.Device)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	summary, err := inspect.Summarize(dev, opts.Patterns...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.JSON {
		data, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return exitSuccess
	}

	f := inspect.NewFormatter()
	f.ShowDocument = true
	fmt.Fprint(stdout, f.FormatSummary(summary))
	return exitSuccess
}

func parseDriversArgs(args []string) (DriversOptions, error) {
	fs := flag.NewFlagSet("drivers", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := DriversOptions{}

	addCommonFlags(fs, &opts.commonOptions)
	fs.StringVar(&opts.Device, "device", "", "Part name of the device")
	fs.Var(&opts.Patterns, "pattern", "Driver pattern NAME[:TYPE] (repeatable)")
	fs.BoolVar(&opts.JSON, "json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func printDriversUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: modm-devices drivers -device NAME [options] [files...]

Options:
  -config FILE     Configuration file
  -events FILE     Append resolution events to FILE
  -device NAME     Part name of the device
  -pattern P       Driver pattern NAME[:TYPE] with shell wildcards (repeatable)
  -json            Output as JSON

Examples:
  modm-devices drivers -device stm32f407vg devices/stm32
  modm-devices drivers -device stm32f407vg -pattern 'u*art:stm32*' devices/stm32`)
}
