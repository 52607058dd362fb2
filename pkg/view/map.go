package view

import (
	"iter"
	"slices"
)

// Map is an immutable string-keyed map that remembers insertion order.
type Map struct {
	keys   []string
	values map[string]Value
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Get returns the value under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Scalar returns the string under key. It reports false when the key is
// absent or holds a map or list.
func (m *Map) Scalar(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	return v.Scalar()
}

// Map returns the map under key.
func (m *Map) Map(key string) (*Map, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return v.Map()
}

// List returns the list under key.
func (m *Map) List(key string) (*List, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return v.List()
}

// All iterates over the entries in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Native returns an independent deep copy.
func (m *Map) Native() map[string]any {
	out := make(map[string]any, m.Len())
	for k, v := range m.All() {
		out[k] = v.Native()
	}
	return out
}

// Equal reports deep equality, including key order.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		if !m.values[k].Equal(other.values[k]) {
			return false
		}
	}
	return true
}

// MapBuilder assembles a Map. The builder must not be used after Build.
type MapBuilder struct {
	m *Map
}

// NewMapBuilder creates an empty builder.
func NewMapBuilder() *MapBuilder {
	return &MapBuilder{m: &Map{values: make(map[string]Value)}}
}

// Set stores v under key. Setting an existing key replaces the value and
// keeps the original position.
func (b *MapBuilder) Set(key string, v Value) {
	if _, exists := b.m.values[key]; !exists {
		b.m.keys = append(b.m.keys, key)
	}
	b.m.values[key] = v
}

// Has reports whether key has been set.
func (b *MapBuilder) Has(key string) bool {
	_, ok := b.m.values[key]
	return ok
}

// Len returns the number of keys set so far.
func (b *MapBuilder) Len() int {
	return len(b.m.keys)
}

// Build returns the finished map.
func (b *MapBuilder) Build() *Map {
	m := b.m
	b.m = nil
	return m
}
