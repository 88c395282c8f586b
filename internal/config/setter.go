package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyKeyPath is returned for an empty configuration key.
var ErrEmptyKeyPath = errors.New("empty key path")

// ParseKeyPath splits a dotted key ("a.b") into its segments.
func ParseKeyPath(path string) ([]string, error) {
	if path == "" {
		return nil, ErrEmptyKeyPath
	}
	return strings.Split(path, "."), nil
}

// SetNestedValue sets keyPath to value inside a YAML document node, creating
// intermediate mappings as needed. Existing keys keep their position and comments.
func SetNestedValue(root *yaml.Node, keyPath []string, value interface{}) error {
	if len(keyPath) == 0 {
		return ErrEmptyKeyPath
	}

	mapping, err := documentMapping(root)
	if err != nil {
		return err
	}

	for i, key := range keyPath {
		if mapping.Kind != yaml.MappingNode {
			return fmt.Errorf("%s is not a mapping", strings.Join(keyPath[:i], "."))
		}
		existing := findMapValue(mapping, key)

		if i == len(keyPath)-1 {
			var node yaml.Node
			if err := node.Encode(value); err != nil {
				return fmt.Errorf("encoding value for %s: %w", strings.Join(keyPath, "."), err)
			}
			if existing != nil {
				existing.Kind = node.Kind
				existing.Tag = node.Tag
				existing.Value = node.Value
				existing.Style = node.Style
				existing.Content = node.Content
				return nil
			}
			mapping.Content = append(mapping.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				&node,
			)
			return nil
		}

		if existing == nil {
			existing = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			mapping.Content = append(mapping.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				existing,
			)
		}
		mapping = existing
	}
	return nil
}

// GetNestedValue returns the node at keyPath, or nil when absent.
func GetNestedValue(root *yaml.Node, keyPath []string) *yaml.Node {
	if len(keyPath) == 0 || root == nil {
		return nil
	}
	node := root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	for _, key := range keyPath {
		if node.Kind != yaml.MappingNode {
			return nil
		}
		node = findMapValue(node, key)
		if node == nil {
			return nil
		}
	}
	return node
}

// SetConfigValue validates value against the key schema and writes it to
// the YAML config file at configPath, creating the file if needed.
func SetConfigValue(configPath, key, value string) error {
	parsed, err := ValidateValue(key, value)
	if err != nil {
		return err
	}
	keyPath, err := ParseKeyPath(key)
	if err != nil {
		return err
	}

	var root yaml.Node
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := ValidateYAMLSyntaxFromBytes(data, configPath); err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parsing %s: %w", configPath, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("reading %s: %w", configPath, err)
	}

	if err := SetNestedValue(&root, keyPath, parsed.Parsed); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	return nil
}

// documentMapping returns the top-level mapping of a document node,
// initializing empty or scalar-only documents.
func documentMapping(root *yaml.Node) (*yaml.Node, error) {
	if root.Kind == 0 {
		root.Kind = yaml.DocumentNode
	}
	if root.Kind != yaml.DocumentNode {
		return nil, fmt.Errorf("expected YAML document, got node kind %d", root.Kind)
	}
	if len(root.Content) == 0 {
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		*top = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	if top.Kind != yaml.MappingNode {
		return nil, errors.New("config file must contain a YAML mapping")
	}
	return top, nil
}

func findMapValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
