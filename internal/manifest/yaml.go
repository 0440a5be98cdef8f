package manifest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlFile is the document shape of a YAML manifest.
type yamlFile struct {
	Listeners []Decl `yaml:"listeners"`
}

// LoadYAMLFile reads the declarations in a YAML manifest. Unknown fields
// are rejected.
func LoadYAMLFile(path string) ([]Decl, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DeclError{Field: "load", Message: fmt.Sprintf("reading manifest: %v", err), Err: err}
	}
	return ParseYAML(path, data)
}

// ParseYAML decodes a YAML manifest. name is used in positions.
func ParseYAML(name string, data []byte) ([]Decl, error) {
	var doc yamlFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, yamlError(name, err)
	}

	// a second pass over the node tree recovers positions
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, yamlError(name, err)
	}
	positions := listenerPositions(&root)

	for i := range doc.Listeners {
		if i < len(positions) {
			doc.Listeners[i].Pos = Position{File: name, Line: positions[i].Line, Column: positions[i].Column}
		}
	}
	return doc.Listeners, nil
}

// listenerPositions returns the nodes of the listeners sequence.
func listenerPositions(root *yaml.Node) []*yaml.Node {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == "listeners" && m.Content[i+1].Kind == yaml.SequenceNode {
			return m.Content[i+1].Content
		}
	}
	return nil
}

func yamlError(name string, err error) *DeclError {
	return &DeclError{Field: "yaml", Message: err.Error(), Pos: Position{File: name}, Err: err}
}
