package view

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindScalar is a string leaf.
	KindScalar Kind = iota
	// KindMap is an ordered string-keyed map.
	KindMap
	// KindList is an ordered sequence.
	KindList
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is an immutable canonical value. The zero Value is the empty scalar.
type Value struct {
	kind   Kind
	scalar string
	m      *Map
	l      *List
}

// NewScalar wraps a string.
func NewScalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// MapValue wraps a map. A nil map becomes an empty one.
func MapValue(m *Map) Value {
	if m == nil {
		m = &Map{}
	}
	return Value{kind: KindMap, m: m}
}

// ListValue wraps a list. A nil list becomes an empty one.
func ListValue(l *List) Value {
	if l == nil {
		l = &List{}
	}
	return Value{kind: KindList, l: l}
}

// Kind returns the variant.
func (v Value) Kind() Kind {
	return v.kind
}

// Scalar returns the string and whether v is a scalar.
func (v Value) Scalar() (string, bool) {
	return v.scalar, v.kind == KindScalar
}

// Map returns the map and whether v is a map.
func (v Value) Map() (*Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// List returns the list and whether v is a list.
func (v Value) List() (*List, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.l, true
}

// Native returns an independent deep copy as string, map[string]any or []any.
func (v Value) Native() any {
	switch v.kind {
	case KindMap:
		return v.m.Native()
	case KindList:
		return v.l.Native()
	default:
		return v.scalar
	}
}

// Equal reports deep equality, including map key order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindMap:
		return v.m.Equal(other.m)
	case KindList:
		return v.l.Equal(other.l)
	default:
		return v.scalar == other.scalar
	}
}
