package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/modm-io/modm-devices-go/pkg/device"
	"github.com/modm-io/modm-devices-go/pkg/devicefile"
	"github.com/modm-io/modm-devices-go/pkg/identifier"
	"github.com/modm-io/modm-devices-go/pkg/log"
	"github.com/modm-io/modm-devices-go/pkg/parser"
)

// DefaultWorkers bounds parallel work when no worker count is configured.
const DefaultWorkers = 4

// Catalog errors.
var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrDuplicateDevice = errors.New("duplicate device")
	ErrInvalidPattern  = errors.New("invalid device pattern")
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = l
	}
}

// WithEvents sets the resolution event logger.
func WithEvents(l log.Logger) Option {
	return func(c *Catalog) {
		c.events = l
	}
}

// WithWorkers bounds parallel loading and resolution. Values below one
// mean one.
func WithWorkers(n int) Option {
	return func(c *Catalog) {
		c.workers = n
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(c *Catalog) {
		c.session = id
	}
}

// WithDeviceOptions passes options to every device the catalog creates.
func WithDeviceOptions(opts ...device.Option) Option {
	return func(c *Catalog) {
		c.deviceOpts = append(c.deviceOpts, opts...)
	}
}

// Catalog indexes devices by part name. It is safe for concurrent use.
type Catalog struct {
	loader     parser.Loader
	logger     *slog.Logger
	events     log.Logger
	session    string
	workers    int
	deviceOpts []device.Option

	mu      sync.RWMutex
	files   []*devicefile.DeviceFile
	devices map[string]*device.Device
	names   []string
}

// New creates an empty catalog loading documents with loader.
func New(loader parser.Loader, opts ...Option) *Catalog {
	c := &Catalog{
		loader:  loader,
		logger:  slog.Default(),
		session: log.NewSessionID(),
		workers: DefaultWorkers,
		devices: make(map[string]*device.Device),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.events = log.OrNoop(c.events)
	if c.workers < 1 {
		c.workers = 1
	}
	return c
}

// SessionID returns the ID stamped on the catalog's events.
func (c *Catalog) SessionID() string {
	return c.session
}

// Load expands paths into document paths, loads the documents in parallel
// and adds their devices. Failed documents and part names already present
// are reported in the returned error; everything else is added. Only a
// cancelled context aborts the load as a whole.
func (c *Catalog) Load(ctx context.Context, paths ...string) error {
	docs, err := parser.Expand(paths...)
	if err != nil {
		return fmt.Errorf("expanding paths: %w", err)
	}

	type loaded struct {
		file    *devicefile.DeviceFile
		devices []*device.Device
		err     error
	}
	results := make([]loaded, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := &results[i]
			r.file, r.devices, r.err = c.loadOne(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		c.files = append(c.files, r.file)
		for _, dev := range r.devices {
			name := dev.Partname()
			if prev, ok := c.devices[name]; ok {
				errs = append(errs, fmt.Errorf("%s in %s and %s: %w",
					name, prev.File().Path(), r.file.Path(), ErrDuplicateDevice))
				continue
			}
			c.devices[name] = dev
			c.names = append(c.names, name)
		}
	}
	slices.Sort(c.names)

	c.logger.Info("catalog loaded",
		"session", c.session,
		"documents", len(docs),
		"devices", len(c.names),
		"errors", len(errs),
	)
	return errors.Join(errs...)
}

func (c *Catalog) loadOne(doc string) (*devicefile.DeviceFile, []*device.Device, error) {
	start := time.Now()

	file, err := c.loader.Load(doc)
	if err != nil {
		c.fail(log.StageLoad, doc, "", start, err)
		return nil, nil, err
	}

	devices, err := device.FromFile(file, c.deviceOpts...)
	if err != nil {
		err = fmt.Errorf("%s: %w", doc, err)
		c.fail(log.StageExpand, doc, "", start, err)
		return nil, nil, err
	}

	c.Emit(log.Event{
		Stage:    log.StageLoad,
		Document: doc,
		Duration: time.Since(start),
		Load: &log.LoadEvent{
			Format:  parser.DetectFormat(doc, nil).String(),
			Devices: len(devices),
		},
	})
	return file, devices, nil
}

// Result is the outcome of resolving one device.
type Result struct {
	Device   *device.Device
	Err      error
	Duration time.Duration
}

// Resolve computes the property tree of every device in parallel. Results
// follow part name order. A device that fails to resolve is reported in its
// Result; the returned error is only set when ctx is cancelled.
func (c *Catalog) Resolve(ctx context.Context) ([]Result, error) {
	devices := c.Devices()
	results := make([]Result, len(devices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, dev := range devices {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.resolveOne(dev)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Catalog) resolveOne(dev *device.Device) Result {
	start := time.Now()
	props, err := dev.Properties()
	res := Result{Device: dev, Err: err, Duration: time.Since(start)}

	if err != nil {
		c.fail(log.StageResolve, dev.File().Path(), dev.Partname(), start, err)
		return res
	}

	var drivers int
	if list, ok := props.List("driver"); ok {
		drivers = list.Len()
	}
	c.Emit(log.Event{
		Stage:    log.StageResolve,
		Document: dev.File().Path(),
		Partname: dev.Partname(),
		Duration: res.Duration,
		Resolve: &log.ResolveEvent{
			Drivers: drivers,
			Keys:    props.Len(),
		},
	})
	return res
}

// Failed returns the results carrying an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Emit stamps event with the session ID, and the current time when it has
// none, and hands it to the event logger.
func (c *Catalog) Emit(event log.Event) {
	event.SessionID = c.session
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	c.events.Log(event)
}

func (c *Catalog) fail(stage log.Stage, doc, partname string, start time.Time, err error) {
	c.Emit(log.Event{
		Stage:    stage,
		Outcome:  log.OutcomeFailed,
		Document: doc,
		Partname: partname,
		Duration: time.Since(start),
		Error: &log.ErrorEventData{
			Stage:   stage,
			Message: err.Error(),
			Context: doc,
		},
	})
	c.logger.Warn("resolution step failed",
		"stage", stage.String(),
		"document", doc,
		"device", partname,
		"error", err,
	)
}

// Len returns the number of devices.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Files returns the loaded documents in path order.
func (c *Catalog) Files() []*devicefile.DeviceFile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.files)
}

// Names returns every part name, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.names)
}

// Devices returns every device, sorted by part name.
func (c *Catalog) Devices() []*device.Device {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*device.Device, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.devices[name])
	}
	return out
}

// Lookup returns the device with the given part name.
func (c *Catalog) Lookup(partname string) (*device.Device, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dev, ok := c.devices[partname]
	if !ok {
		return nil, fmt.Errorf("%q: %w", partname, ErrDeviceNotFound)
	}
	return dev, nil
}

// Match returns the devices whose part name matches the path.Match pattern,
// sorted by part name.
func (c *Catalog) Match(pattern string) ([]*device.Device, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%q: %w", pattern, ErrInvalidPattern)
	}

	var out []*device.Device
	for _, dev := range c.Devices() {
		if ok, _ := path.Match(pattern, dev.Partname()); ok {
			out = append(out, dev)
		}
	}
	return out, nil
}

// Universe returns the identifiers of every device.
func (c *Catalog) Universe() *identifier.MultiDeviceIdentifier {
	return Identifiers(c.Devices())
}

// Identifiers collects the identifiers of devices.
func Identifiers(devices []*device.Device) *identifier.MultiDeviceIdentifier {
	ids := make([]*identifier.DeviceIdentifier, 0, len(devices))
	for _, dev := range devices {
		ids = append(ids, dev.Identifier())
	}
	return identifier.NewMulti(ids...)
}
