package identifier

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// MultiDeviceIdentifier is a deduplicated collection of device identifiers,
// sorted by rendered name.
//
// Members are copied in on insertion, so later changes to the caller's
// identifiers do not affect the collection.
type MultiDeviceIdentifier struct {
	ids []*DeviceIdentifier
}

// NewMulti creates a collection from the given identifiers.
func NewMulti(ids ...*DeviceIdentifier) *MultiDeviceIdentifier {
	m := &MultiDeviceIdentifier{}
	m.Extend(ids...)
	return m
}

// FromProduct expands every combination of the candidate values into one
// identifier with the given naming schema.
func FromProduct(properties map[string][]string, schema string) *MultiDeviceIdentifier {
	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := &MultiDeviceIdentifier{}
	combos := [][]string{{}}
	for _, k := range keys {
		var next [][]string
		for _, combo := range combos {
			for _, v := range properties[k] {
				c := make([]string, len(combo), len(combo)+1)
				copy(c, combo)
				next = append(next, append(c, v))
			}
		}
		combos = next
	}

	for _, combo := range combos {
		id := NewWithSchema(schema)
		for i, k := range keys {
			id.Set(k, combo[i])
		}
		m.ids = append(m.ids, id)
	}
	m.normalize()
	return m
}

// Append adds an identifier. Appending an equal identifier is a no-op.
func (m *MultiDeviceIdentifier) Append(id *DeviceIdentifier) {
	m.Extend(id)
}

// Extend adds a batch of identifiers.
func (m *MultiDeviceIdentifier) Extend(ids ...*DeviceIdentifier) {
	for _, id := range ids {
		if id != nil {
			m.ids = append(m.ids, id.Copy())
		}
	}
	m.normalize()
}

// Union adds all members of other.
func (m *MultiDeviceIdentifier) Union(other *MultiDeviceIdentifier) {
	m.Extend(other.ids...)
}

// Len returns the number of identifiers.
func (m *MultiDeviceIdentifier) Len() int {
	return len(m.ids)
}

// At returns a copy of the identifier at index i.
func (m *MultiDeviceIdentifier) At(i int) *DeviceIdentifier {
	return m.ids[i].Copy()
}

// IDs returns copies of the members in sorted order.
func (m *MultiDeviceIdentifier) IDs() []*DeviceIdentifier {
	ids := make([]*DeviceIdentifier, len(m.ids))
	for i, id := range m.ids {
		ids[i] = id.Copy()
	}
	return ids
}

// Copy returns an independent copy.
func (m *MultiDeviceIdentifier) Copy() *MultiDeviceIdentifier {
	c := &MultiDeviceIdentifier{ids: make([]*DeviceIdentifier, len(m.ids))}
	for i, id := range m.ids {
		c.ids[i] = id.Copy()
	}
	return c
}

// Contains reports whether an equal identifier is a member.
func (m *MultiDeviceIdentifier) Contains(id *DeviceIdentifier) bool {
	for _, member := range m.ids {
		if member.Equal(id) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every member of other is a member.
func (m *MultiDeviceIdentifier) ContainsAll(other *MultiDeviceIdentifier) bool {
	for _, id := range other.ids {
		if !m.Contains(id) {
			return false
		}
	}
	return true
}

// Equal reports set equality.
func (m *MultiDeviceIdentifier) Equal(other *MultiDeviceIdentifier) bool {
	if len(m.ids) != len(other.ids) {
		return false
	}
	// Both sides are deduplicated, so equal length plus inclusion suffices.
	return m.ContainsAll(other)
}

// Remove removes the member equal to id, if present.
func (m *MultiDeviceIdentifier) Remove(id *DeviceIdentifier) {
	for i, member := range m.ids {
		if member.Equal(id) {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			return
		}
	}
}

// Filter returns the members for which keep returns true. keep sees the
// collection's own members and must not modify them.
func (m *MultiDeviceIdentifier) Filter(keep func(*DeviceIdentifier) bool) *MultiDeviceIdentifier {
	out := &MultiDeviceIdentifier{}
	for _, id := range m.ids {
		if keep(id) {
			out.ids = append(out.ids, id)
		}
	}
	return out
}

// Keys returns the union of member property keys, in first-seen order.
func (m *MultiDeviceIdentifier) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, id := range m.ids {
		for _, k := range id.keys {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// NamingSchema returns the concatenation of the sorted distinct member
// schemas. It is meant for display only.
func (m *MultiDeviceIdentifier) NamingSchema() string {
	set := make(map[string]bool)
	for _, id := range m.ids {
		if s, ok := id.NamingSchema(); ok {
			set[s] = true
		}
	}
	schemas := make([]string, 0, len(set))
	for s := range set {
		schemas = append(schemas, s)
	}
	sort.Strings(schemas)
	return strings.Join(schemas, "")
}

// Attribute returns the distinct values of a property across all members.
//
// Names starting with '@' read identifier-level fields: "@string" or
// "@name" (rendered name), "@naming_schema" or "@schema", and "@key".
// Any other '@' name reads the property of the same name. Absent values are
// dropped. The result is sorted numerically if every value parses as an
// integer, otherwise lexically.
func (m *MultiDeviceIdentifier) Attribute(name string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, id := range m.ids {
		v, ok := attributeOf(id, name)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sortValues(values)
	return values
}

// Product expands every combination of the collection's per-key values.
func (m *MultiDeviceIdentifier) Product() *MultiDeviceIdentifier {
	properties := make(map[string][]string)
	for _, k := range m.Keys() {
		properties[k] = m.Attribute(k)
	}
	return FromProduct(properties, m.NamingSchema())
}

// Subtract returns one single-key identifier per value of m for every key
// whose value set differs between m and baseline. All of m's values for such
// a key are emitted, including those baseline shares.
func (m *MultiDeviceIdentifier) Subtract(baseline *MultiDeviceIdentifier) *MultiDeviceIdentifier {
	out := &MultiDeviceIdentifier{}
	schema := m.NamingSchema()
	for _, k := range m.Keys() {
		mine := m.Attribute(k)
		if slices.Equal(mine, baseline.Attribute(k)) {
			continue
		}
		for _, v := range mine {
			id := NewWithSchema(schema)
			id.Set(k, v)
			out.ids = append(out.ids, id)
		}
	}
	out.normalize()
	return out
}

// String formats the collection through its aggregate naming schema, with
// multiple values of a key rendered as "[a|b]".
func (m *MultiDeviceIdentifier) String() string {
	id := NewWithSchema(m.NamingSchema())
	for _, k := range m.Keys() {
		values := m.Attribute(k)
		switch len(values) {
		case 0:
		case 1:
			id.Set(k, values[0])
		default:
			id.Set(k, "["+strings.Join(values, "|")+"]")
		}
	}
	return id.rendered
}

func (m *MultiDeviceIdentifier) normalize() {
	sort.SliceStable(m.ids, func(i, j int) bool {
		a, b := m.ids[i], m.ids[j]
		if a.sortKey() != b.sortKey() {
			return a.sortKey() < b.sortKey()
		}
		return a.key < b.key
	})
	out := m.ids[:0]
	for i, id := range m.ids {
		// Equal identifiers have equal sort keys and end up adjacent.
		if i > 0 && out[len(out)-1].key == id.key {
			continue
		}
		out = append(out, id)
	}
	m.ids = out
}

func attributeOf(id *DeviceIdentifier, name string) (string, bool) {
	field, ok := strings.CutPrefix(name, "@")
	if !ok {
		return id.Get(name)
	}
	switch field {
	case "string", "name":
		if !id.hasSchema {
			return "", false
		}
		return id.rendered, true
	case "naming_schema", "schema":
		return id.NamingSchema()
	case "key":
		return id.key, true
	default:
		return id.Get(field)
	}
}

// sortValues sorts numerically only if every value is an integer.
func sortValues(values []string) {
	nums := make(map[string]int64, len(values))
	for _, v := range values {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			sort.Strings(values)
			return
		}
		nums[v] = n
	}
	sort.Slice(values, func(i, j int) bool {
		if nums[values[i]] != nums[values[j]] {
			return nums[values[i]] < nums[values[j]]
		}
		return values[i] < values[j]
	})
}
