package devicefile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/modm-io/modm-devices-go/pkg/identifier"
	"github.com/modm-io/modm-devices-go/pkg/view"
)

// Reserved document names.
const (
	DeviceTag        = "device"
	NamingSchemaTag  = "naming-schema"
	ValidDeviceTag   = "valid-device"
	InvalidDeviceTag = "invalid-device"

	SelectorPrefix  = "device-"
	AttributePrefix = "attribute-"
)

// Canonicalization errors.
var (
	ErrNoDeviceNode            = errors.New("document has no device node")
	ErrNamingSchemaMissing     = errors.New("device node has no naming-schema")
	ErrAttributeListConflict   = errors.New("attribute node is not unique")
	ErrAttributeChildCollision = errors.New("attribute collides with child group")
	ErrRootNotMap              = errors.New("device node does not canonicalize to a map")
)

// DeviceFile is one loaded conditional document.
type DeviceFile struct {
	path string
	root *Node
}

// New wraps a document tree. root is either the device node itself or an
// element holding it as a direct child.
func New(path string, root *Node) *DeviceFile {
	return &DeviceFile{path: path, root: root}
}

// Path returns the file the document was loaded from.
func (f *DeviceFile) Path() string {
	return f.path
}

// Root returns the document root.
func (f *DeviceFile) Root() *Node {
	return f.root
}

// DeviceNode returns the top-level device node, or nil.
func (f *DeviceFile) DeviceNode() *Node {
	if f.root == nil {
		return nil
	}
	if f.root.Kind == ElementNode && f.root.Tag == DeviceTag {
		return f.root
	}
	return f.root.Child(DeviceTag)
}

// NamingSchema returns the text of the naming-schema node.
func (f *DeviceFile) NamingSchema() (string, error) {
	dev := f.DeviceNode()
	if dev == nil {
		return "", fmt.Errorf("%s: %w", f.path, ErrNoDeviceNode)
	}
	n := dev.Child(NamingSchemaTag)
	if n == nil {
		return "", fmt.Errorf("%s: %w", f.path, ErrNamingSchemaMissing)
	}
	return strings.TrimSpace(n.Text), nil
}

// Identifiers returns the devices the document describes: the Cartesian
// product of the device node's attributes split on '|', filtered by the
// invalid-device and valid-device lists.
func (f *DeviceFile) Identifiers() (*identifier.MultiDeviceIdentifier, error) {
	schema, err := f.NamingSchema()
	if err != nil {
		return nil, err
	}
	dev := f.DeviceNode()

	props := make(map[string][]string, len(dev.Attrs))
	for _, a := range dev.Attrs {
		key := strings.TrimPrefix(a.Name, SelectorPrefix)
		props[key] = strings.Split(a.Value, "|")
	}
	ids := identifier.FromProduct(props, schema)

	invalid := texts(dev.ChildrenByTag(InvalidDeviceTag))
	valid := texts(dev.ChildrenByTag(ValidDeviceTag))
	if len(invalid) > 0 {
		ids = ids.Filter(func(id *identifier.DeviceIdentifier) bool {
			return !slices.Contains(invalid, id.String())
		})
	}
	if len(valid) > 0 {
		ids = ids.Filter(func(id *identifier.DeviceIdentifier) bool {
			return slices.Contains(valid, id.String())
		})
	}
	return ids, nil
}

// Properties canonicalizes the document for one identifier.
func (f *DeviceFile) Properties(id *identifier.DeviceIdentifier) (*view.Map, error) {
	dev := f.DeviceNode()
	if dev == nil {
		return nil, fmt.Errorf("%s: %w", f.path, ErrNoDeviceNode)
	}

	c := &canonicalizer{id: id, root: dev}
	v, err := c.canonicalize(dev)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", f.path, id, err)
	}
	m, ok := v.Map()
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", f.path, id, ErrRootNotMap)
	}
	return m, nil
}

// IsValid reports whether every device-<key> selector on node lists the
// identifier's value for <key>. A node without selectors is valid for every
// identifier; a selector on a key the identifier lacks never matches.
func IsValid(node *Node, id *identifier.DeviceIdentifier) bool {
	for _, a := range node.Attrs {
		key, ok := strings.CutPrefix(a.Name, SelectorPrefix)
		if !ok {
			continue
		}
		v, ok := id.Get(key)
		if !ok || !slices.Contains(strings.Split(a.Value, "|"), v) {
			return false
		}
	}
	return true
}

func texts(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, strings.TrimSpace(n.Text))
	}
	return out
}
