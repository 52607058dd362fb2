package view

import (
	"iter"
	"slices"
)

// List is an immutable ordered sequence of values.
type List struct {
	items []Value
}

// NewList creates a list holding a copy of items.
func NewList(items ...Value) *List {
	return &List{items: slices.Clone(items)}
}

// Len returns the number of items.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// At returns the item at index i. It panics when i is out of range.
func (l *List) At(i int) Value {
	return l.items[i]
}

// Values returns a copy of the items.
func (l *List) Values() []Value {
	if l == nil {
		return nil
	}
	return slices.Clone(l.items)
}

// All iterates over the items in order.
func (l *List) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if l == nil {
			return
		}
		for i, v := range l.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Maps iterates over the items that are maps, skipping any other kind.
func (l *List) Maps() iter.Seq[*Map] {
	return func(yield func(*Map) bool) {
		for _, v := range l.All() {
			if m, ok := v.Map(); ok {
				if !yield(m) {
					return
				}
			}
		}
	}
}

// Native returns an independent deep copy.
func (l *List) Native() []any {
	out := make([]any, l.Len())
	for i, v := range l.All() {
		out[i] = v.Native()
	}
	return out
}

// Equal reports deep equality.
func (l *List) Equal(other *List) bool {
	if l.Len() != other.Len() {
		return false
	}
	for i, v := range l.All() {
		if !v.Equal(other.items[i]) {
			return false
		}
	}
	return true
}
