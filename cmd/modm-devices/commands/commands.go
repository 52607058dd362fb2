// Package commands implements the modm-devices CLI commands.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/modm-io/modm-devices-go/internal/config"
	"github.com/modm-io/modm-devices-go/internal/logging"
	"github.com/modm-io/modm-devices-go/pkg/catalog"
	"github.com/modm-io/modm-devices-go/pkg/device"
	"github.com/modm-io/modm-devices-go/pkg/log"
	"github.com/modm-io/modm-devices-go/pkg/parser"
)

// Version is reported by the version command and attached to log records.
const Version = "0.1.0"

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

var (
	errNoFiles   = errors.New("no device files specified")
	errNoDevices = errors.New("no devices loaded")
)

// commonOptions are accepted by every command that loads devices.
type commonOptions struct {
	Config string
	Events string
}

func addCommonFlags(fs *flag.FlagSet, opts *commonOptions) {
	fs.StringVar(&opts.Config, "config", "", "Configuration file (YAML)")
	fs.StringVar(&opts.Events, "events", "", "Append resolution events to this file")
}

// parseFailed reports a flag parsing error. -h prints the usage and succeeds.
func parseFailed(err error, w io.Writer, usage func(io.Writer)) int {
	if errors.Is(err, flag.ErrHelp) {
		usage(w)
		return exitSuccess
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	usage(w)
	return exitCommandError
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// env is the state shared by a single command run.
type env struct {
	cfg     *config.Config
	logger  *logging.Logger
	events  *log.FileLogger
	catalog *catalog.Catalog
}

// openEnv loads the configuration and every device in files, or in the
// configured device paths when files is empty. Documents that fail to load
// are logged and skipped; an empty catalog is an error.
func openEnv(ctx context.Context, opts commonOptions, files []string, stdout, stderr io.Writer) (*env, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.Events != "" {
		cfg.Events.Path = opts.Events
	}
	if len(files) == 0 {
		files = cfg.Devices.Paths
	}
	if len(files) == 0 {
		return nil, errNoFiles
	}

	out := stderr
	if strings.EqualFold(cfg.Logging.Output, "stdout") {
		out = stdout
	}
	e := &env{
		cfg:    cfg,
		logger: logging.NewWithWriter(cfg.Logging, out, Version),
	}

	sinks := []log.Logger{log.NewSlogAdapter(e.logger.Logger)}
	if cfg.Events.Path != "" {
		e.events, err = log.NewFileLogger(cfg.Events.Path)
		if err != nil {
			return nil, fmt.Errorf("opening event log: %w", err)
		}
		sinks = append(sinks, e.events)
	}

	e.catalog = catalog.New(parser.NewParser(),
		catalog.WithLogger(e.logger.Logger),
		catalog.WithEvents(log.NewMultiLogger(sinks...)),
		catalog.WithWorkers(cfg.Resolve.Workers),
		catalog.WithDeviceOptions(device.WithDriverCacheSize(cfg.Resolve.DriverCacheSize)),
	)

	err = e.catalog.Load(ctx, files...)
	if ctx.Err() != nil {
		e.Close()
		return nil, ctx.Err()
	}
	if e.catalog.Len() == 0 {
		e.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errNoDevices, err)
		}
		return nil, errNoDevices
	}
	if err != nil {
		e.logger.Warn("some documents were skipped", "error", err)
	}
	return e, nil
}

// Close releases the event log.
func (e *env) Close() {
	if e.events != nil {
		if err := e.events.Close(); err != nil {
			e.logger.Warn("closing event log", "error", err)
		}
	}
}

// resolve canonicalizes every device in parallel. Devices that fail are
// logged; lint and index report them again in their own output.
func (e *env) resolve(ctx context.Context) error {
	results, err := e.catalog.Resolve(ctx)
	if err != nil {
		return err
	}
	if failed := catalog.Failed(results); len(failed) > 0 {
		e.logger.Warn("some devices did not resolve", "failed", len(failed), "devices", len(results))
	}
	return nil
}

// lookup returns the device named partname, or an error listing the
// devices that share its prefix.
func (e *env) lookup(partname string) (*device.Device, error) {
	dev, err := e.catalog.Lookup(partname)
	if err == nil {
		return dev, nil
	}
	var similar []string
	for _, name := range e.catalog.Names() {
		if strings.HasPrefix(name, partname) {
			similar = append(similar, name)
		}
	}
	if len(similar) > 0 {
		return nil, fmt.Errorf("%w (did you mean %s?)", err, strings.Join(similar, ", "))
	}
	return nil, err
}
