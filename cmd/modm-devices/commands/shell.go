package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/modm-io/modm-devices-go/pkg/catalog"
	"github.com/modm-io/modm-devices-go/pkg/device"
	"github.com/modm-io/modm-devices-go/pkg/inspect"
)

// ShellOptions configures the shell command.
type ShellOptions struct {
	commonOptions
	Device string
	Files  []string
}

var errNoSelection = errors.New("no device selected")

// Shell is an interactive session over a loaded catalog.
type Shell struct {
	env       *env
	out       io.Writer
	formatter *inspect.Formatter

	current   *device.Device
	inspector *inspect.Inspector
}

func newShell(e *env, out io.Writer) *Shell {
	return &Shell{
		env:       e,
		out:       out,
		formatter: inspect.NewFormatter(),
	}
}

// RunShell starts the interactive shell.
func RunShell(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseShellArgs(args)
	if err != nil {
		return parseFailed(err, stderr, printShellUsage)
	}

	e, err := openEnv(ctx, opts.commonOptions, opts.Files, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer e.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "modm> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    shellCompleter(e.catalog),
		Stdout:          stdout,
		Stderr:          stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create readline: %v\n", err)
		return exitCommandError
	}
	defer rl.Close()

	s := newShell(e, rl.Stdout())
	if opts.Device != "" {
		s.Execute("use " + opts.Device)
	}
	s.printHelp()

	for {
		if ctx.Err() != nil {
			return exitSuccess
		}
		rl.SetPrompt(s.Prompt())

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return exitSuccess
		}
		if s.Execute(line) {
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return exitSuccess
		}
	}
}

func shellCompleter(c *catalog.Catalog) readline.AutoCompleter {
	names := func(string) []string { return c.Names() }
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("devices"),
		readline.PcItem("use", readline.PcItemDynamic(names)),
		readline.PcItem("info"),
		readline.PcItem("drivers"),
		readline.PcItem("get"),
		readline.PcItem("ls"),
		readline.PcItem("keys"),
		readline.PcItem("quit"),
	)
}

// Prompt shows the selected device.
func (s *Shell) Prompt() string {
	if s.current == nil {
		return "modm> "
	}
	return "modm:" + s.current.Partname() + "> "
}

// Execute runs one command line and reports whether the shell should exit.
func (s *Shell) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "devices", "d":
		s.cmdDevices(args)
	case "use", "u":
		s.cmdUse(args)
	case "info":
		s.cmdInfo()
	case "drivers":
		s.cmdDrivers(args)
	case "get", "g":
		s.cmdGet(args)
	case "ls":
		s.cmdLs(args)
	case "keys":
		s.cmdKeys(args)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
modm-devices shell commands:
  devices [glob]     - List part names
  use <partname>     - Select a device
  info               - Show the selected device's identifier
  drivers [pattern]  - Summarize drivers of the selected device
  get [path]         - Print the tree at path (part:path for another device)
  ls [path]          - List the children of path
  keys <glob>        - Minimal key set selecting the matching devices
  quit               - Leave the shell`)
}

func (s *Shell) cmdDevices(args []string) {
	pattern := "*"
	if len(args) > 0 {
		pattern = args[0]
	}
	devices, err := s.env.catalog.Match(pattern)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	for _, dev := range devices {
		fmt.Fprintln(s.out, dev.Partname())
	}
	fmt.Fprintf(s.out, "(%d device(s))\n", len(devices))
}

func (s *Shell) cmdUse(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: use <partname>")
		return
	}
	dev, err := s.env.lookup(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	insp, err := inspect.ForDevice(dev)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.current = dev
	s.inspector = insp
	fmt.Fprintf(s.out, "Using %s (%s)\n", dev.Partname(), dev.File().Path())
}

func (s *Shell) cmdInfo() {
	if s.current == nil {
		fmt.Fprintln(s.out, "No device selected (use <partname>)")
		return
	}
	id := s.current.Identifier()
	fmt.Fprintf(s.out, "Partname: %s\n", s.current.Partname())
	fmt.Fprintf(s.out, "Document: %s\n", s.current.File().Path())
	if schema, ok := id.NamingSchema(); ok {
		fmt.Fprintf(s.out, "Schema:   %s\n", schema)
	}
	for _, k := range id.Keys() {
		v, _ := id.Get(k)
		fmt.Fprintf(s.out, "  %s = %s\n", k, v)
	}
}

func (s *Shell) cmdDrivers(args []string) {
	if s.current == nil {
		fmt.Fprintln(s.out, "No device selected (use <partname>)")
		return
	}
	summary, err := inspect.Summarize(s.current, args...)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(s.out, s.formatter.FormatSummary(summary))
}

// resolve looks up a path argument against the selected device, or the
// device the path names.
func (s *Shell) resolve(args []string) (*inspect.Inspector, *inspect.Path, error) {
	if len(args) == 0 {
		if s.inspector == nil {
			return nil, nil, errNoSelection
		}
		return s.inspector, &inspect.Path{}, nil
	}

	p, err := inspect.ParsePath(args[0])
	if err != nil {
		return nil, nil, err
	}
	if p.Partname != "" {
		dev, err := s.env.lookup(p.Partname)
		if err != nil {
			return nil, nil, err
		}
		insp, err := inspect.ForDevice(dev)
		if err != nil {
			return nil, nil, err
		}
		return insp, p, nil
	}
	if s.inspector == nil {
		return nil, nil, errNoSelection
	}
	return s.inspector, p, nil
}

// reportResolve prints a resolve failure.
func (s *Shell) reportResolve(err error) {
	if errors.Is(err, errNoSelection) {
		fmt.Fprintln(s.out, "No device selected (use <partname>)")
		return
	}
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

func (s *Shell) cmdGet(args []string) {
	insp, p, err := s.resolve(args)
	if err != nil {
		s.reportResolve(err)
		return
	}
	v, err := insp.Get(p)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if sv, ok := v.Scalar(); ok {
		fmt.Fprintln(s.out, sv)
		return
	}
	fmt.Fprint(s.out, s.formatter.FormatValue(v))
}

func (s *Shell) cmdLs(args []string) {
	insp, p, err := s.resolve(args)
	if err != nil {
		s.reportResolve(err)
		return
	}
	children, err := insp.Children(p)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	for _, c := range children {
		fmt.Fprintln(s.out, c)
	}
}

func (s *Shell) cmdKeys(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: keys <glob>")
		return
	}
	devices, err := s.env.catalog.Match(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if len(devices) == 0 {
		fmt.Fprintf(s.out, "No device matches %q\n", args[0])
		return
	}
	universe := s.env.catalog.Universe()
	selector, sign := catalog.Identifiers(devices).MinimalInvertibleSubtract(universe, universe)
	fmt.Fprintf(s.out, "%s: %s\n", sign, formatSelector(selector))
}

func parseShellArgs(args []string) (ShellOptions, error) {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := ShellOptions{}

	addCommonFlags(fs, &opts.commonOptions)
	fs.StringVar(&opts.Device, "device", "", "Device to select on start")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func printShellUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: modm-devices shell [options] [files...]

Options:
  -config FILE   Configuration file
  -events FILE   Append resolution events to FILE
  -device NAME   Device to select on start`)
}
