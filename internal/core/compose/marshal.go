package compose

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Indent is the indentation width of the serialized descriptor.
const Indent = 4

// MarshalYAML writes the environment as a mapping in insertion order.
func (e Environment) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, v := range e {
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Value}
		if v.Unset {
			value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Name},
			value,
		)
	}
	return node, nil
}

// MarshalYAML writes the descriptor with services in insertion order.
func (d *Descriptor) MarshalYAML() (interface{}, error) {
	services := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, svc := range d.Services {
		var body yaml.Node
		if err := body.Encode(svc); err != nil {
			return nil, NewBuildError("services."+svc.Name, err.Error(), err)
		}
		services.Content = append(services.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: svc.Name},
			&body,
		)
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "version"},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: Version, Style: yaml.SingleQuotedStyle},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "services"},
			services,
		},
	}, nil
}

// Marshal serializes the descriptor to compose YAML.
func Marshal(d *Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(Indent)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("marshal descriptor: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal descriptor: %w", err)
	}
	return buf.Bytes(), nil
}
