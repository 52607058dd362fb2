package index

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/modm-io/modm-devices-go/pkg/device"
)

// Version is the current version of the index format.
const Version = 1

// ErrEntryNotFound is returned when a part name is not indexed.
var ErrEntryNotFound = errors.New("index entry not found")

// Entry is one indexed device.
type Entry struct {
	// Partname is the rendered device name.
	Partname string `json:"partname"`

	// Document is the path of the document describing the device.
	Document string `json:"document"`

	// Identifier holds the identifier properties.
	Identifier map[string]string `json:"identifier"`

	// Drivers lists the drivers as name or name:type, in document order.
	Drivers []string `json:"drivers,omitempty"`
}

// NewEntry describes dev. It fails when the device does not resolve.
func NewEntry(dev *device.Device) (Entry, error) {
	drivers, err := dev.Drivers()
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", dev.Partname(), err)
	}

	e := Entry{
		Partname:   dev.Partname(),
		Document:   dev.File().Path(),
		Identifier: dev.Identifier().Properties(),
	}
	for _, drv := range drivers {
		name := drv.Name()
		if drv.Type() != "" {
			name += ":" + drv.Type()
		}
		e.Drivers = append(e.Drivers, name)
	}
	return e, nil
}

// Index is a saved set of entries, sorted by part name.
type Index struct {
	// Version is the index format version.
	Version int `json:"version"`

	// SavedAt is when the index was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Entries are sorted by part name.
	Entries []Entry `json:"entries"`
}

// Build indexes devices. Devices that do not resolve are left out and
// reported in the returned error; the index holds the others.
func Build(devices []*device.Device) (*Index, error) {
	idx := &Index{Version: Version}
	var errs []error
	for _, dev := range devices {
		e, err := NewEntry(dev)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		idx.Entries = append(idx.Entries, e)
	}
	idx.sort()
	return idx, errors.Join(errs...)
}

// Lookup returns the entry for partname.
func (idx *Index) Lookup(partname string) (*Entry, error) {
	i, ok := slices.BinarySearchFunc(idx.Entries, partname, func(e Entry, name string) int {
		return strings.Compare(e.Partname, name)
	})
	if !ok {
		return nil, fmt.Errorf("%q: %w", partname, ErrEntryNotFound)
	}
	return &idx.Entries[i], nil
}

func (idx *Index) sort() {
	slices.SortFunc(idx.Entries, func(a, b Entry) int {
		return strings.Compare(a.Partname, b.Partname)
	})
}

// Store persists an index.
type Store interface {
	// Save replaces the stored index.
	Save(ctx context.Context, idx *Index) error

	// Load reads the stored index. It returns nil, nil when nothing has
	// been saved yet.
	Load(ctx context.Context) (*Index, error)

	// Lookup reads one entry. It returns ErrEntryNotFound for unknown
	// part names.
	Lookup(ctx context.Context, partname string) (*Entry, error)

	// Clear removes the stored index.
	Clear(ctx context.Context) error

	// Close releases the store.
	Close() error

	// Kind names the backend ("json" or "sqlite").
	Kind() string
}

// Open opens the store for path: SQLite for .db, .sqlite and .sqlite3
// files, JSON otherwise.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	default:
		return NewJSONStore(path), nil
	}
}

// stamp prepares idx for saving.
func stamp(idx *Index) {
	idx.Version = Version
	if idx.SavedAt.IsZero() {
		idx.SavedAt = time.Now()
	}
	idx.sort()
}
