package device

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/modm-io/modm-devices-go/pkg/devicefile"
	"github.com/modm-io/modm-devices-go/pkg/identifier"
	"github.com/modm-io/modm-devices-go/pkg/view"
)

// DefaultDriverCacheSize is the number of Driver lookups a device remembers.
const DefaultDriverCacheSize = 32

// Query errors.
var (
	ErrInvalidPattern = errors.New("invalid driver pattern")
	ErrDriverNotFound = errors.New("driver not found")
)

// Option configures a Device.
type Option func(*Device)

// WithDriverCacheSize bounds the Driver lookup cache. Zero or a negative
// size disables caching.
func WithDriverCacheSize(n int) Option {
	return func(d *Device) {
		d.cacheSize = n
	}
}

// Device is one concrete device of a document.
//
// The canonical property tree is computed on first use and then shared;
// Device is safe for concurrent use.
type Device struct {
	id   *identifier.DeviceIdentifier
	file *devicefile.DeviceFile

	once  sync.Once
	props *view.Map
	err   error

	mu         sync.Mutex
	cacheSize  int
	cache      map[string]*Driver
	cacheOrder []string
}

// New creates a device for id. The identifier is copied.
func New(id *identifier.DeviceIdentifier, file *devicefile.DeviceFile, opts ...Option) *Device {
	d := &Device{
		id:        id.Copy(),
		file:      file,
		cacheSize: DefaultDriverCacheSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FromFile creates one device per identifier the document describes.
func FromFile(file *devicefile.DeviceFile, opts ...Option) ([]*Device, error) {
	ids, err := file.Identifiers()
	if err != nil {
		return nil, err
	}
	devices := make([]*Device, 0, ids.Len())
	for _, id := range ids.IDs() {
		devices = append(devices, New(id, file, opts...))
	}
	return devices, nil
}

// Identifier returns a copy of the device identifier.
func (d *Device) Identifier() *identifier.DeviceIdentifier {
	return d.id.Copy()
}

// Partname returns the rendered device name.
func (d *Device) Partname() string {
	return d.id.String()
}

// File returns the document the device is described by.
func (d *Device) File() *devicefile.DeviceFile {
	return d.file
}

func (d *Device) String() string {
	return d.Partname()
}

// Properties returns the canonical property tree. It is computed at most
// once; a canonicalization error is remembered as well.
func (d *Device) Properties() (*view.Map, error) {
	d.once.Do(func() {
		d.props, d.err = d.file.Properties(d.id)
	})
	return d.props, d.err
}

// Drivers returns every driver of the device in document order.
func (d *Device) Drivers() ([]*Driver, error) {
	props, err := d.Properties()
	if err != nil {
		return nil, err
	}
	var out []*Driver
	if list, ok := props.List("driver"); ok {
		for m := range list.Maps() {
			out = append(out, &Driver{device: d, m: m})
		}
	}
	return out, nil
}

// FindDrivers returns the drivers matching any pattern. A pattern is a
// shell wildcard on the driver name, optionally followed by ":" and a
// wildcard on the driver type. Wildcards follow path.Match rather than
// fnmatch: "*" and "?" never match "/", and "\" escapes the next character.
// Results follow pattern order, then document order; a driver matching
// several patterns is returned once per pattern.
func (d *Device) FindDrivers(patterns ...string) ([]*Driver, error) {
	type matcher struct{ name, typ string }
	matchers := make([]matcher, 0, len(patterns))
	for _, p := range patterns {
		parts := strings.Split(p, ":")
		if len(parts) > 2 {
			return nil, fmt.Errorf("%q: name must contain no or one ':': %w", p, ErrInvalidPattern)
		}
		m := matcher{name: wildcard(parts[0])}
		if len(parts) == 2 {
			m.typ = wildcard(parts[1])
		}
		for _, w := range []string{m.name, m.typ} {
			if _, err := path.Match(w, ""); err != nil {
				return nil, fmt.Errorf("%q: %w", p, ErrInvalidPattern)
			}
		}
		matchers = append(matchers, m)
	}

	all, err := d.Drivers()
	if err != nil {
		return nil, err
	}

	var out []*Driver
	for i, m := range matchers {
		for _, drv := range all {
			if !match(m.name, drv.Name()) {
				continue
			}
			if strings.Contains(patterns[i], ":") {
				typ, ok := drv.m.Scalar("type")
				if !ok || !match(m.typ, typ) {
					continue
				}
			}
			out = append(out, drv)
		}
	}
	return out, nil
}

// Driver returns the first driver matching name.
func (d *Device) Driver(name string) (*Driver, error) {
	d.mu.Lock()
	drv, ok := d.cache[name]
	d.mu.Unlock()
	if ok {
		return drv, nil
	}

	found, err := d.FindDrivers(name)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%s: %q: %w", d.Partname(), name, ErrDriverNotFound)
	}
	d.remember(name, found[0])
	return found[0], nil
}

// HasDriver reports whether any driver matches any pattern.
func (d *Device) HasDriver(patterns ...string) (bool, error) {
	found, err := d.FindDrivers(patterns...)
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

func (d *Device) remember(name string, drv *Driver) {
	if d.cacheSize <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cache == nil {
		d.cache = make(map[string]*Driver)
	}
	if _, ok := d.cache[name]; ok {
		return
	}
	if len(d.cacheOrder) >= d.cacheSize {
		delete(d.cache, d.cacheOrder[0])
		d.cacheOrder = d.cacheOrder[1:]
	}
	d.cache[name] = drv
	d.cacheOrder = append(d.cacheOrder, name)
}

// wildcard translates the "[!...]" negation to path.Match syntax.
func wildcard(p string) string {
	return strings.ReplaceAll(p, "[!", "[^")
}

func match(pattern, name string) bool {
	ok, _ := path.Match(pattern, name)
	return ok
}
