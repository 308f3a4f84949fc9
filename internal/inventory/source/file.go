package source

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/resilience"
)

// File reads items from a YAML or JSON document. The document is either a
// list of items or a mapping with an "items" list.
type File struct {
	path string
}

// NewFile returns a File source for path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string {
	return "file:" + f.path
}

func (f *File) Load(ctx context.Context) ([]*inventory.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading items file %s: %w", f.path, err)
	}
	items, err := DecodeItems(data)
	if err != nil {
		return nil, resilience.Permanent(fmt.Errorf("parsing items file %s: %w", f.path, err))
	}
	return items, nil
}

type itemsDocument struct {
	Items []*inventory.Item `yaml:"items"`
}

// DecodeItems decodes a YAML or JSON items document.
func DecodeItems(data []byte) ([]*inventory.Item, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*inventory.Item{}, nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	switch node.Kind {
	case yaml.SequenceNode:
		var items []*inventory.Item
		if err := node.Decode(&items); err != nil {
			return nil, err
		}
		return items, nil
	case yaml.MappingNode:
		var doc itemsDocument
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Items, nil
	default:
		return nil, fmt.Errorf("expected a list of items or an items mapping at line %d", node.Line)
	}
}
