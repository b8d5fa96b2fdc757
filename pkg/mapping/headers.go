package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Header is one response header.
type Header struct {
	Name  string
	Value string
}

// Headers keeps response headers in declaration order.
type Headers []Header

// Get returns the last value declared for name (exact match).
func (h Headers) Get(name string) (string, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].Name == name {
			return h[i].Value, true
		}
	}
	return "", false
}

// UnmarshalYAML reads a mapping node, keeping key order.
func (h *Headers) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: headers must be a map", node.Line)
	}
	out := make(Headers, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: header %q must have a scalar value", v.Line, k.Value)
		}
		out = append(out, Header{Name: k.Value, Value: v.Value})
	}
	*h = out
	return nil
}

// MarshalYAML writes headers as an ordered map.
func (h Headers) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, hdr := range h {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: hdr.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: hdr.Value},
		)
	}
	return node, nil
}

// MarshalJSON writes headers as an object with keys in declaration order.
func (h Headers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, hdr := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(hdr.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(hdr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping key order.
func (h *Headers) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("headers must be a JSON object")
	}
	out := Headers{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("header %q: %w", name, err)
		}
		out = append(out, Header{Name: name, Value: value})
	}
	*h = out
	return nil
}
