package view

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes the value, keeping map key order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindMap:
		return v.m.MarshalJSON()
	case KindList:
		return v.l.MarshalJSON()
	default:
		return json.Marshal(v.scalar)
	}
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := m.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the list as a JSON array.
func (l *List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range l.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalYAML returns a node tree keeping map key order.
func (v Value) MarshalYAML() (any, error) {
	return v.yamlNode(), nil
}

// MarshalYAML returns a mapping node keeping key order.
func (m *Map) MarshalYAML() (any, error) {
	return MapValue(m).yamlNode(), nil
}

// MarshalYAML returns a sequence node.
func (l *List) MarshalYAML() (any, error) {
	return ListValue(l).yamlNode(), nil
}

func (v Value) yamlNode() *yaml.Node {
	switch v.kind {
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, child := range v.m.All() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				child.yamlNode())
		}
		return n
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, child := range v.l.All() {
			n.Content = append(n.Content, child.yamlNode())
		}
		return n
	default:
		// Tagged as string so values like "8" or "true" keep their type.
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.scalar}
	}
}
