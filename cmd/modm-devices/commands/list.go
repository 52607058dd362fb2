package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
)

// ListOptions configures the list command.
type ListOptions struct {
	commonOptions
	Match string
	Long  bool
	Files []string
}

// RunList prints the part names of every loaded device.
func RunList(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseListArgs(args)
	if err != nil {
		return parseFailed(err, stderr, printListUsage)
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

	for _, dev := range devices {
		if opts.Long {
			fmt.Fprintf(stdout, "%-24s %s\n", dev.Partname(), dev.File().Path())
			continue
		}
		fmt.Fprintln(stdout, dev.Partname())
	}
	return exitSuccess
}

func parseListArgs(args []string) (ListOptions, error) {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := ListOptions{}

	addCommonFlags(fs, &opts.commonOptions)
	fs.StringVar(&opts.Match, "match", "*", "Only list part names matching this glob")
	fs.BoolVar(&opts.Long, "l", false, "Also print the document of each device")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func printListUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: modm-devices list [options] [files...]

Options:
  -config FILE   Configuration file
  -events FILE   Append resolution events to FILE
  -match GLOB    Only list part names matching GLOB (default "*")
  -l             Also print the document of each device

Examples:
  modm-devices list devices/stm32
  modm-devices list -match 'stm32f4*' devices/`)
}
