package tokens

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a mapping node, keeping the document's key order.
func (g *Group) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := decodeYAMLGroup(node)
	if err != nil {
		return err
	}
	g.keys = decoded.keys
	g.values = decoded.values
	return nil
}

func decodeYAMLGroup(node *yaml.Node) (*Group, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return NewGroup(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of tokens", node.Line)
	}
	g := NewGroup()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Tag == "!!merge" {
			merged, err := decodeYAMLGroup(valNode)
			if err != nil {
				return nil, err
			}
			g = MergeGroups(g, merged)
			continue
		}
		val, err := decodeYAMLValue(valNode)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", keyNode.Value, err)
		}
		g.Set(keyNode.Value, val)
	}
	return g, nil
}

func decodeYAMLValue(node *yaml.Node) (Value, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode:
		return decodeYAMLGroup(node)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, fmt.Errorf("line %d: null token value", node.Line)
		}
		return Leaf(node.Value), nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: lists may only contain scalar values", item.Line)
			}
			parts = append(parts, item.Value)
		}
		return Leaf(strings.Join(parts, ", ")), nil
	}
	return nil, fmt.Errorf("line %d: unsupported token node", node.Line)
}

// MarshalYAML encodes the group as an ordered mapping node.
func (g *Group) MarshalYAML() (any, error) {
	return g.yamlNode(), nil
}

func (g *Group) yamlNode() *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range g.All() {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		var valNode *yaml.Node
		switch val := v.(type) {
		case Leaf:
			valNode = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(val)}
		case *Group:
			valNode = val.yamlNode()
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node
}

// YAMLNode exposes the ordered mapping node for callers that edit
// documents in place.
func (g *Group) YAMLNode() *yaml.Node {
	return g.yamlNode()
}

// MarshalJSON encodes the group as an object with keys in insertion order.
func (g *Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := g.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Group) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	i := 0
	for k, v := range g.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		key, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		switch val := v.(type) {
		case Leaf:
			enc, err := json.Marshal(string(val))
			if err != nil {
				return err
			}
			buf.Write(enc)
		case *Group:
			if err := val.writeJSON(buf); err != nil {
				return err
			}
		}
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON decodes an object, keeping the document's key order.
func (g *Group) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object of tokens")
	}
	decoded, err := decodeJSONGroup(dec)
	if err != nil {
		return err
	}
	g.keys = decoded.keys
	g.values = decoded.values
	return nil
}

// decodeJSONGroup reads object members after the opening brace.
func decodeJSONGroup(dec *json.Decoder) (*Group, error) {
	g := NewGroup()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		val, err := decodeJSONValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		g.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONGroup(dec)
		case '[':
			var parts []string
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				leaf, ok := item.(Leaf)
				if !ok {
					return nil, fmt.Errorf("lists may only contain scalar values")
				}
				parts = append(parts, string(leaf))
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return Leaf(strings.Join(parts, ", ")), nil
		}
	case string:
		return Leaf(t), nil
	case json.Number:
		return Leaf(t.String()), nil
	case bool:
		if t {
			return Leaf("true"), nil
		}
		return Leaf("false"), nil
	case nil:
		return nil, fmt.Errorf("null token value")
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}
