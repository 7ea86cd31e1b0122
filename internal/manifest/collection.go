package manifest

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// CollectionItem is one entry in a collection manifest.
type CollectionItem struct {
	Path string `yaml:"path"` // repo-relative file path
	Kind string `yaml:"kind"` // prompt, instruction, chatmode, agent, context
}

var kindSubdirs = map[string]string{
	"prompt":      "prompts",
	"instruction": "instructions",
	"chat-mode":   "chatmodes",
	"chatmode":    "chatmodes",
	"agent":       "agents",
	"context":     "contexts",
}

// Subdirectory maps the item's kind to its .apm subdirectory. Unknown
// kinds land in prompts.
func (i CollectionItem) Subdirectory() string {
	if d, ok := kindSubdirs[strings.ToLower(i.Kind)]; ok {
		return d
	}
	return "prompts"
}

// Collection is a parsed *.collection.yml manifest.
type Collection struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Items       []CollectionItem `yaml:"items"`
	Tags        []string         `yaml:"tags,omitempty"`
	Display     string           `yaml:"display,omitempty"`
}

// ItemsByKind returns every item whose kind matches, case-insensitively.
func (c *Collection) ItemsByKind(kind string) []CollectionItem {
	var out []CollectionItem
	for _, it := range c.Items {
		if strings.EqualFold(it.Kind, kind) {
			out = append(out, it)
		}
	}
	return out
}

// ParseCollection parses collection manifest bytes. id, name, description,
// and a non-empty items list are required; each item needs path and kind.
func ParseCollection(data []byte) (*Collection, error) {
	var col Collection
	if err := yaml.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("parsing collection manifest: %w", err)
	}

	var missing []string
	if col.ID == "" {
		missing = append(missing, "id")
	}
	if col.Name == "" {
		missing = append(missing, "name")
	}
	if col.Description == "" {
		missing = append(missing, "description")
	}
	if len(col.Items) == 0 {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("collection manifest missing required fields: %s", strings.Join(missing, ", "))
	}

	for i, it := range col.Items {
		if it.Path == "" {
			return nil, fmt.Errorf("collection item %d missing required field 'path'", i)
		}
		if it.Kind == "" {
			return nil, fmt.Errorf("collection item %d missing required field 'kind'", i)
		}
	}

	return &col, nil
}
