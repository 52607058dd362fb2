package identifier

import (
	"sort"
)

// Sign tells whether a minimal key set selects (Include) or excludes
// (Exclude) the devices it matches.
type Sign int

const (
	Include Sign = 1
	Exclude Sign = -1
)

// String returns the sign name.
func (s Sign) String() string {
	switch s {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return "unknown"
	}
}

// MinimalSubtract finds the smallest combination of property keys that
// carves m out of universe, and returns one single-key identifier per
// distinguishing (key, value) pair of that combination.
//
// The distinguishing values come from m.Subtract(baseline). A combination
// matches when filtering universe by "the member's value for any key of the
// combination is a distinguishing value" yields exactly m. Combinations are
// tried by increasing size, then in lexicographic order of the sorted keys;
// the first match wins. Without a match the full key set is used.
func (m *MultiDeviceIdentifier) MinimalSubtract(universe, baseline *MultiDeviceIdentifier) *MultiDeviceIdentifier {
	diff := m.Subtract(baseline)

	keys := diff.Keys()
	sort.Strings(keys)
	values := make(map[string]map[string]bool, len(keys))
	for _, k := range keys {
		values[k] = toSet(diff.Attribute(k))
	}

	chosen, ok := firstCombination(keys, func(comb []string) bool {
		filtered := universe.Filter(func(id *DeviceIdentifier) bool {
			for _, k := range comb {
				if v, ok := id.Get(k); ok && values[k][v] {
					return true
				}
			}
			return false
		})
		return filtered.Equal(m)
	})
	if !ok {
		chosen = keys
	}

	return selectorsFor(chosen, diff, m.NamingSchema())
}

// MinimalInvertibleSubtract runs MinimalSubtract on the smaller side of
// universe. When m covers more than half of universe, the search runs on
// universe without m and the result is returned with Exclude; otherwise it
// runs on m and returns Include.
func (m *MultiDeviceIdentifier) MinimalInvertibleSubtract(universe, baseline *MultiDeviceIdentifier) (*MultiDeviceIdentifier, Sign) {
	if 2*m.Len() > universe.Len() {
		inverse := universe.Filter(func(id *DeviceIdentifier) bool {
			return !m.Contains(id)
		})
		return inverse.MinimalSubtract(universe, baseline), Exclude
	}
	return m.MinimalSubtract(universe, baseline), Include
}

// MinimalSubtractPartition splits m into groups that can each be carved out
// of parent with one shared key combination.
//
// The key combination is searched like in MinimalSubtract, over the keys on
// which some member differs from some parent member: the empty combination
// matches when parent equals m, any other when the universe members that
// agree with a member of m on every key of the combination are exactly m.
// Members are then packed first-fit: a group accepts a member if every
// combination of the extended group's per-key values that exists in
// universe also exists in m. Each group is returned as its per-key selector
// identifiers, sorted by their string form.
func (m *MultiDeviceIdentifier) MinimalSubtractPartition(universe, parent *MultiDeviceIdentifier) []*MultiDeviceIdentifier {
	var keys []string
	for _, k := range m.Keys() {
		if differsFrom(k, m, parent) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	mkeys, ok := firstCombination(keys, func(comb []string) bool {
		if len(comb) == 0 {
			return parent.Equal(m)
		}
		filtered := universe.Filter(func(id *DeviceIdentifier) bool {
			return agreesWithAny(comb, m, id)
		})
		return filtered.Equal(m)
	})
	if !ok {
		mkeys = keys
	}

	schema := m.NamingSchema()
	var groups []*MultiDeviceIdentifier
	for _, id := range m.ids {
		placed := false
		for _, g := range groups {
			if m.productInside(mkeys, g, id, universe, schema) {
				g.Append(id)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, NewMulti(id))
		}
	}

	out := make([]*MultiDeviceIdentifier, len(groups))
	for i, g := range groups {
		out[i] = selectorsFor(mkeys, g, schema)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

func (m *MultiDeviceIdentifier) productInside(mkeys []string, group *MultiDeviceIdentifier, id *DeviceIdentifier, universe *MultiDeviceIdentifier, schema string) bool {
	extended := group.Copy()
	extended.Append(id)
	for _, p := range selectorsFor(mkeys, extended, schema).Product().ids {
		if agreesWithAny(mkeys, universe, p) && !agreesWithAny(mkeys, m, p) {
			return false
		}
	}
	return true
}

// selectorsFor returns one single-key identifier per value of ids for each
// of the given keys.
func selectorsFor(keys []string, ids *MultiDeviceIdentifier, schema string) *MultiDeviceIdentifier {
	out := &MultiDeviceIdentifier{}
	for _, k := range keys {
		for _, v := range ids.Attribute(k) {
			id := NewWithSchema(schema)
			id.Set(k, v)
			out.ids = append(out.ids, id)
		}
	}
	out.normalize()
	return out
}

// agreesWithAny reports whether some member of ids has the same value (or
// the same absence) as id for every key.
func agreesWithAny(keys []string, ids *MultiDeviceIdentifier, id *DeviceIdentifier) bool {
	for _, candidate := range ids.ids {
		if sameValues(keys, candidate, id) {
			return true
		}
	}
	return false
}

func sameValues(keys []string, a, b *DeviceIdentifier) bool {
	for _, k := range keys {
		av, aok := a.Get(k)
		bv, bok := b.Get(k)
		if av != bv || aok != bok {
			return false
		}
	}
	return true
}

// differsFrom reports whether some member of m differs from some member of
// parent on key k.
func differsFrom(k string, m, parent *MultiDeviceIdentifier) bool {
	keys := []string{k}
	for _, s := range m.ids {
		for _, p := range parent.ids {
			if !sameValues(keys, s, p) {
				return true
			}
		}
	}
	return false
}

// firstCombination returns the first combination of keys, ordered by size
// and then lexicographically by index, for which match returns true.
func firstCombination(keys []string, match func([]string) bool) ([]string, bool) {
	n := len(keys)
	for size := 0; size <= n; size++ {
		idx := make([]int, size)
		for i := range idx {
			idx[i] = i
		}
		for {
			comb := make([]string, size)
			for i, j := range idx {
				comb[i] = keys[j]
			}
			if match(comb) {
				return comb, true
			}

			// Advance to the next combination in lexicographic order.
			i := size - 1
			for i >= 0 && idx[i] == n-size+i {
				i--
			}
			if i < 0 {
				break
			}
			idx[i]++
			for j := i + 1; j < size; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
	return nil, false
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
