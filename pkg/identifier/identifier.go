package identifier

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Identifier errors.
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrSchemaMissing    = errors.New("naming schema is missing")
)

// DeviceIdentifier names one concrete device by its properties.
//
// The zero value is an empty identifier without naming schema and equals
// New(). Derived values (rendered name, canonical key) are recomputed on
// every Set, so read accessors never mutate and are safe to call
// concurrently.
type DeviceIdentifier struct {
	schema    string
	hasSchema bool

	// keys keeps insertion order for display; it carries no meaning.
	keys  []string
	props map[string]string

	rendered string
	plain    string
	key      string
}

// New creates an empty identifier without naming schema.
func New() *DeviceIdentifier {
	d := &DeviceIdentifier{props: make(map[string]string)}
	d.update()
	return d
}

// NewWithSchema creates an empty identifier rendered through schema.
func NewWithSchema(schema string) *DeviceIdentifier {
	d := &DeviceIdentifier{
		schema:    schema,
		hasSchema: true,
		props:     make(map[string]string),
	}
	d.update()
	return d
}

// NamingSchema returns the naming schema and whether one is configured.
func (d *DeviceIdentifier) NamingSchema() (string, bool) {
	return d.schema, d.hasSchema
}

// SetNamingSchema configures the naming schema.
func (d *DeviceIdentifier) SetNamingSchema(schema string) {
	d.schema = schema
	d.hasSchema = true
	d.update()
}

// Set sets a property value.
func (d *DeviceIdentifier) Set(key, value string) {
	if d.props == nil {
		d.props = make(map[string]string)
	}
	if _, exists := d.props[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.props[key] = value
	d.update()
}

// Get returns the property value and whether it is present.
func (d *DeviceIdentifier) Get(key string) (string, bool) {
	v, ok := d.props[key]
	return v, ok
}

// GetDefault returns the property value, or def if the key is absent.
func (d *DeviceIdentifier) GetDefault(key, def string) string {
	if v, ok := d.props[key]; ok {
		return v
	}
	return def
}

// Field returns the property value, failing with ErrPropertyNotFound when
// the key is absent.
func (d *DeviceIdentifier) Field(key string) (string, error) {
	v, ok := d.props[key]
	if !ok {
		return "", fmt.Errorf("%s has no property %q: %w", d, key, ErrPropertyNotFound)
	}
	return v, nil
}

// Keys returns the property keys in insertion order.
func (d *DeviceIdentifier) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Properties returns a copy of the property map.
func (d *DeviceIdentifier) Properties() map[string]string {
	props := make(map[string]string, len(d.props))
	for k, v := range d.props {
		props[k] = v
	}
	return props
}

// Len returns the number of properties.
func (d *DeviceIdentifier) Len() int {
	return len(d.props)
}

// Render returns the device name produced by the naming schema.
// Placeholders for absent properties render as empty strings.
func (d *DeviceIdentifier) Render() (string, error) {
	if !d.hasSchema {
		return "", ErrSchemaMissing
	}
	return d.rendered, nil
}

// Key returns the canonical key: the length-prefixed key/value pairs in key
// order, followed by the length-prefixed naming schema when one is set.
// Distinct property sets never share a key.
func (d *DeviceIdentifier) Key() string {
	return d.key
}

// Hash returns the FNV-1a hash of the canonical key.
func (d *DeviceIdentifier) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(d.key))
	return h.Sum64()
}

// Equal reports whether both identifiers have the same schema and the same
// property set.
func (d *DeviceIdentifier) Equal(other *DeviceIdentifier) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.key == other.key
}

// Copy returns an independent copy.
func (d *DeviceIdentifier) Copy() *DeviceIdentifier {
	c := &DeviceIdentifier{
		schema:    d.schema,
		hasSchema: d.hasSchema,
		keys:      append([]string(nil), d.keys...),
		props:     d.Properties(),
		rendered:  d.rendered,
		plain:     d.plain,
		key:       d.key,
	}
	return c
}

// String returns the rendered name, or DeviceId(<keys and values>) without
// schema.
func (d *DeviceIdentifier) String() string {
	if d.hasSchema {
		return d.rendered
	}
	return "DeviceId(" + d.plain + ")"
}

// sortKey orders identifiers by rendered name, or by the plain key/value
// concatenation without schema. Ties fall back to the canonical key.
func (d *DeviceIdentifier) sortKey() string {
	if d.hasSchema {
		return d.rendered
	}
	return d.plain
}

func (d *DeviceIdentifier) update() {
	sorted := make([]string, 0, len(d.props))
	for k := range d.props {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var plain, key strings.Builder
	for _, k := range sorted {
		v := d.props[k]
		plain.WriteString(k)
		plain.WriteString(v)
		writeFramed(&key, k)
		writeFramed(&key, v)
	}
	if d.hasSchema {
		key.WriteByte('s')
		writeFramed(&key, d.schema)
	}
	d.plain = plain.String()
	d.key = key.String()

	d.rendered = ""
	if d.hasSchema {
		d.rendered = renderSchema(d.schema, d.props)
	}
}

// writeFramed writes s as "<len>:<s>".
func writeFramed(sb *strings.Builder, s string) {
	sb.WriteString(strconv.Itoa(len(s)))
	sb.WriteByte(':')
	sb.WriteString(s)
}

// renderSchema substitutes {key} placeholders. Doubled braces render as
// literal braces; an unterminated placeholder is copied verbatim.
func renderSchema(schema string, props map[string]string) string {
	var sb strings.Builder
	for i := 0; i < len(schema); i++ {
		c := schema[i]
		switch {
		case c == '{' && i+1 < len(schema) && schema[i+1] == '{':
			sb.WriteByte('{')
			i++
		case c == '}' && i+1 < len(schema) && schema[i+1] == '}':
			sb.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(schema[i+1:], '}')
			if end < 0 {
				sb.WriteString(schema[i:])
				return sb.String()
			}
			sb.WriteString(props[schema[i+1:i+1+end]])
			i += end + 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
