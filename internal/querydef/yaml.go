package querydef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes definitions from YAML. Each document is either a single
// definition or a mapping with a `queries` list; documents may be separated
// by ---. source is recorded on each definition and in errors.
func ParseYAML(data []byte, source string) ([]*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var defs []*Definition
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: parsing YAML: %w", source, err)
		}
		parsed, err := decodeYAMLDocument(&doc, source)
		if err != nil {
			return nil, err
		}
		defs = append(defs, parsed...)
	}
	return defs, nil
}

// LoadYAML reads and parses one YAML file.
func LoadYAML(filename string) ([]*Definition, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseYAML(data, filename)
}

func decodeYAMLDocument(doc *yaml.Node, source string) ([]*Definition, error) {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	var raw any
	if err := root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if raw == nil {
		return nil, nil
	}

	// A `queries` list holds several definitions.
	if m, ok := raw.(map[string]any); ok {
		if list, ok := m["queries"]; ok && len(m) == 1 {
			items, err := asList(list, path{"queries"})
			if err != nil {
				return nil, annotateYAML(err, root, source)
			}
			defs := make([]*Definition, 0, len(items))
			for i, item := range items {
				def, err := decodeWithin(item, path{"queries"}.index(i))
				if err != nil {
					return nil, annotateYAML(err, root, source)
				}
				def.Source = source
				defs = append(defs, def)
			}
			return defs, nil
		}
	}

	def, err := decodeWithin(raw, nil)
	if err != nil {
		return nil, annotateYAML(err, root, source)
	}
	def.Source = source
	return []*Definition{def}, nil
}

// decodeWithin decodes a definition found at prefix inside a larger
// document, so error paths point into the whole document.
func decodeWithin(raw any, prefix path) (*Definition, error) {
	def, err := decodeDefinition(raw, prefix)
	if err != nil {
		var de *DefinitionError
		if errors.As(err, &de) && def != nil {
			de.Definition = def.Name
		}
		return nil, err
	}
	return def, nil
}

func annotateYAML(err error, root *yaml.Node, source string) error {
	var de *DefinitionError
	if !errors.As(err, &de) {
		return err
	}
	de.File = source
	if n := yamlNodeAt(root, de.at); n != nil {
		de.Line, de.Column = n.Line, n.Column
	}
	return de
}

// yamlNodeAt returns the deepest node along p that exists.
func yamlNodeAt(n *yaml.Node, p path) *yaml.Node {
	for _, elem := range p {
		var next *yaml.Node
		switch v := elem.(type) {
		case string:
			if n.Kind == yaml.MappingNode {
				for i := 0; i+1 < len(n.Content); i += 2 {
					if n.Content[i].Value == v {
						next = n.Content[i+1]
						break
					}
				}
			}
		case int:
			if n.Kind == yaml.SequenceNode && v < len(n.Content) {
				next = n.Content[v]
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
	return n
}
