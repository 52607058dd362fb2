package devicefile

import (
	"fmt"
	"strings"

	"github.com/modm-io/modm-devices-go/pkg/identifier"
	"github.com/modm-io/modm-devices-go/pkg/view"
)

type canonicalizer struct {
	id   *identifier.DeviceIdentifier
	root *Node
}

// childGroup collects the canonical values of all selected children sharing
// a tag, in document order.
type childGroup struct {
	tag    string
	values []view.Value
}

func (c *canonicalizer) canonicalize(n *Node) (view.Value, error) {
	// Children are resolved first so errors below a collapsed node still
	// surface.
	var groups []*childGroup
	index := make(map[string]*childGroup)
	for _, child := range n.Children {
		if !c.selected(n, child) {
			continue
		}
		v, err := c.canonicalize(child)
		if err != nil {
			return view.Value{}, err
		}
		g, ok := index[child.Tag]
		if !ok {
			g = &childGroup{tag: child.Tag}
			index[child.Tag] = g
			groups = append(groups, g)
		}
		g.values = append(g.values, v)
	}

	attrs := c.retained(n)
	if len(attrs) == 1 && attrs[0].Name == "value" {
		return view.NewScalar(attrs[0].Value), nil
	}

	b := view.NewMapBuilder()
	for _, a := range attrs {
		b.Set(a.Name, view.NewScalar(a.Value))
	}
	for _, g := range groups {
		if name, ok := strings.CutPrefix(g.tag, AttributePrefix); ok {
			if len(g.values) > 1 {
				return view.Value{}, fmt.Errorf("<%s> %q has %d members: %w", n.Tag, g.tag, len(g.values), ErrAttributeListConflict)
			}
			if b.Has(name) {
				return view.Value{}, fmt.Errorf("<%s> %q: %w", n.Tag, name, ErrAttributeChildCollision)
			}
			b.Set(name, g.values[0])
			continue
		}
		if b.Has(g.tag) {
			return view.Value{}, fmt.Errorf("<%s> %q: %w", n.Tag, g.tag, ErrAttributeChildCollision)
		}
		b.Set(g.tag, view.ListValue(view.NewList(g.values...)))
	}
	return view.MapValue(b.Build()), nil
}

// selected reports whether child takes part in canonicalization.
func (c *canonicalizer) selected(parent, child *Node) bool {
	if child.Kind != ElementNode {
		return false
	}
	if parent == c.root {
		switch child.Tag {
		case NamingSchemaTag, ValidDeviceTag, InvalidDeviceTag:
			return false
		}
	}
	return IsValid(child, c.id)
}

// retained returns the attributes that describe n rather than select it.
func (c *canonicalizer) retained(n *Node) []Attr {
	out := make([]Attr, 0, len(n.Attrs))
	for _, a := range n.Attrs {
		if strings.HasPrefix(a.Name, SelectorPrefix) {
			continue
		}
		if n == c.root {
			if _, isKey := c.id.Get(a.Name); isKey {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
