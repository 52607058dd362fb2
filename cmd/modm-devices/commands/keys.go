package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/modm-io/modm-devices-go/pkg/catalog"
	"github.com/modm-io/modm-devices-go/pkg/identifier"
)

// KeysOptions configures the keys command.
type KeysOptions struct {
	commonOptions
	Match     string
	Partition bool
	Files     []string
}

// RunKeys prints the smallest set of identifier keys that selects the
// matching devices out of all loaded devices.
func RunKeys(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseKeysArgs(args)
	if err != nil {
		return parseFailed(err, stderr, printKeysUsage)
	}
	if opts.Match == "" {
		fmt.Fprintln(stderr, "Error: no match pattern specified")
		printKeysUsage(stderr)
		return exitCommandError
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
	if len(devices) == 0 {
		fmt.Fprintf(stderr, "Error: no device matches %q\n", opts.Match)
		return exitCommandError
	}

	universe := e.catalog.Universe()
	subset := catalog.Identifiers(devices)
	fmt.Fprintf(stdout, "%d of %d device(s): %s\n", subset.Len(), universe.Len(), subset)

	if opts.Partition {
		for i, group := range subset.MinimalSubtractPartition(universe, universe) {
			fmt.Fprintf(stdout, "group %d: %s\n", i+1, formatSelector(group))
		}
		return exitSuccess
	}

	selector, sign := subset.MinimalInvertibleSubtract(universe, universe)
	fmt.Fprintf(stdout, "%s: %s\n", sign, formatSelector(selector))
	return exitSuccess
}

// formatSelector prints single-key identifiers as "key=a|b" terms.
func formatSelector(m *identifier.MultiDeviceIdentifier) string {
	keys := m.Keys()
	if len(keys) == 0 {
		return "(all)"
	}
	terms := make([]string, 0, len(keys))
	for _, k := range keys {
		terms = append(terms, k+"="+strings.Join(m.Attribute(k), "|"))
	}
	return strings.Join(terms, " ")
}

func parseKeysArgs(args []string) (KeysOptions, error) {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := KeysOptions{}

	addCommonFlags(fs, &opts.commonOptions)
	fs.StringVar(&opts.Match, "match", "", "Glob selecting the devices to describe")
	fs.BoolVar(&opts.Partition, "partition", false, "Split the devices into separately selectable groups")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func printKeysUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: modm-devices keys -match GLOB [options] [files...]

Options:
  -config FILE   Configuration file
  -events FILE   Append resolution events to FILE
  -match GLOB    Glob selecting the devices to describe
  -partition     Split the devices into separately selectable groups

Examples:
  modm-devices keys -match 'stm32f4*' devices/stm32
  modm-devices keys -match 'stm32f10[37]*' -partition devices/stm32`)
}
