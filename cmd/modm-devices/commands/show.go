package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"github.com/modm-io/modm-devices-go/pkg/inspect"
	"github.com/modm-io/modm-devices-go/pkg/log"
	"github.com/modm-io/modm-devices-go/pkg/view"
)

// ShowOptions configures the show command.
type ShowOptions struct {
	commonOptions
	Device string
	Format string // text, json, yaml, cbor, dump
	Path   string
	Files  []string
}

// dumper prints trees with stable key order and without pointer noise.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// RunShow prints the canonical property tree of one device.
func RunShow(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseShowArgs(args)
	if err != nil {
		return parseFailed(err, stderr, printShowUsage)
	}
	if opts.Device == "" {
		fmt.Fprintln(stderr, "Error: no device specified")
		printShowUsage(stderr)
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
	insp, err := inspect.ForDevice(dev)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	v := insp.Root()
	if opts.Path != "" {
		v, err = insp.Lookup(opts.Path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
	}

	if err := writeValue(stdout, v, opts.Format); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

func writeValue(w io.Writer, v view.Value, format string) error {
	switch format {
	case "", "text":
		fmt.Fprint(w, inspect.NewFormatter().FormatValue(v))
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(data))
	case "cbor":
		data, err := log.Marshal(v.Native())
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "dump":
		dumper.Fdump(w, v.Native())
	default:
		return fmt.Errorf("unknown format %q (use text, json, yaml, cbor, dump)", format)
	}
	return nil
}

func parseShowArgs(args []string) (ShowOptions, error) {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := ShowOptions{}

	addCommonFlags(fs, &opts.commonOptions)
	fs.StringVar(&opts.Device, "device", "", "Part name of the device to show")
	fs.StringVar(&opts.Format, "format", "text", "Output format (text, json, yaml, cbor, dump)")
	fs.StringVar(&opts.Path, "path", "", "Only show the subtree at this path")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func printShowUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: modm-devices show -device NAME [options] [files...]

Options:
  -config FILE   Configuration file
  -events FILE   Append resolution events to FILE
  -device NAME   Part name of the device to show
  -format FMT    Output format: text, json, yaml, cbor, dump (default "text")
  -path PATH     Only show the subtree at PATH, e.g. driver/uart/instance

Examples:
  modm-devices show -device stm32f407vg devices/stm32
  modm-devices show -device stm32f407vg -path driver/gpio -format yaml devices/stm32`)
}
