package compose

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// mergeKey is the YAML merge key, honoured inside service mappings.
const mergeKey = "<<"

// LoadFile reads and parses a descriptor file.
func LoadFile(path string) (*Project, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}

	project, err := Load(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return project, nil
}

// Load parses a descriptor document.
//
// Two layouts are accepted: the flat v1 layout where every top-level key is a
// service, and the versioned layout (a top-level "version" key) where services
// live under "services". Mapping values such as environment: {FOO: bar} are
// flattened into sequences of "FOO=bar" entries.
func Load(data []byte) (*Project, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	project := NewProject()

	// Empty document
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return project, nil
	}

	root := resolve(doc.Content[0])
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return project, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping of services", ErrInvalidDescriptor)
	}

	services := root
	if lookup(root, "version") != nil {
		services = lookup(root, "services")
		if services == nil {
			return project, nil
		}
		services = resolve(services)
		if services.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: services must be a mapping", ErrInvalidDescriptor)
		}
	}

	for i := 0; i+1 < len(services.Content); i += 2 {
		name := services.Content[i].Value
		cfg, err := decodeService(resolve(services.Content[i+1]))
		if err != nil {
			return nil, fmt.Errorf("service %q: %w", name, err)
		}
		project.Set(name, cfg)
	}

	return project, nil
}

// decodeService converts a service mapping node into a ServiceConfig.
func decodeService(node *yaml.Node) (*ServiceConfig, error) {
	cfg := NewServiceConfig()

	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return cfg, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: service definition must be a mapping", ErrInvalidDescriptor)
	}

	var merged []*yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if key == mergeKey {
			merged = append(merged, resolve(node.Content[i+1]))
			continue
		}

		value, err := decodeValue(key, resolve(node.Content[i+1]))
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		cfg.Set(key, value)
	}

	// Merged anchors only fill keys the service does not set itself.
	for _, m := range merged {
		base, err := decodeService(m)
		if err != nil {
			return nil, err
		}
		for _, key := range base.Keys() {
			if cfg.Has(key) {
				continue
			}
			v, _ := base.Get(key)
			cfg.Set(key, v)
		}
	}

	return cfg, nil
}

// decodeValue converts a value node into a Value.
func decodeValue(key string, node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			// volumes: with nothing after it declares no entries.
			return Sequence(), nil
		}
		return Scalar(node.Value), nil

	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			item = resolve(item)
			if item.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("%w: nested values are not supported", ErrInvalidDescriptor)
			}
			items = append(items, item.Value)
		}
		return Sequence(items...), nil

	case yaml.MappingNode:
		sep := "="
		if key == "extra_hosts" {
			sep = ":"
		}
		items := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k := node.Content[i].Value
			v := resolve(node.Content[i+1])
			if v.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("%w: nested values are not supported", ErrInvalidDescriptor)
			}
			if v.Tag == "!!null" {
				items = append(items, k)
				continue
			}
			items = append(items, k+sep+v.Value)
		}
		return Sequence(items...), nil

	default:
		return Value{}, fmt.Errorf("%w: unsupported YAML node", ErrInvalidDescriptor)
	}
}

// resolve follows alias nodes to their anchor.
func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// lookup returns the value node for key in a mapping node.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
