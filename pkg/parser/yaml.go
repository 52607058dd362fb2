package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/modm-io/modm-devices-go/pkg/devicefile"
)

// yamlNode is the YAML form of one document node:
//
//	tag: driver
//	attributes:
//	  name: gpio
//	  device-family: f1|f4
//	children:
//	  - comment: generated from vendor data
//	  - tag: gpio
//	    attributes: {port: a, pin: "0"}
//
// An entry with a comment key and no tag is a comment node. Attributes are
// kept as a raw node so their order and spelling survive decoding.
type yamlNode struct {
	Tag        string     `yaml:"tag"`
	Comment    *string    `yaml:"comment"`
	Text       string     `yaml:"text"`
	Attributes yaml.Node  `yaml:"attributes"`
	Children   []yamlNode `yaml:"children"`
}

func parseYAML(data []byte) (*devicefile.Node, error) {
	var doc yamlNode
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if doc.Tag == "" {
		return nil, ErrEmptyDocument
	}
	return doc.toNode()
}

func (y *yamlNode) toNode() (*devicefile.Node, error) {
	if y.Tag == "" {
		if y.Comment == nil {
			return nil, fmt.Errorf("%w: node without tag", ErrInvalidYAMLNode)
		}
		return devicefile.NewComment(*y.Comment), nil
	}

	n := devicefile.NewElement(y.Tag)
	n.Text = y.Text

	attrs := &y.Attributes
	switch attrs.Kind {
	case 0:
	case yaml.ScalarNode:
		if attrs.Tag != "!!null" {
			return nil, fmt.Errorf("%w: line %d: <%s> attributes must be a mapping",
				ErrInvalidYAMLNode, attrs.Line, y.Tag)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(attrs.Content); i += 2 {
			key, value := attrs.Content[i], attrs.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: <%s> attribute %q is not a scalar",
					ErrInvalidYAMLNode, value.Line, y.Tag, key.Value)
			}
			n.Attrs = append(n.Attrs, devicefile.A(key.Value, value.Value))
		}
	default:
		return nil, fmt.Errorf("%w: line %d: <%s> attributes must be a mapping",
			ErrInvalidYAMLNode, attrs.Line, y.Tag)
	}

	for i := range y.Children {
		child, err := y.Children[i].toNode()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}
