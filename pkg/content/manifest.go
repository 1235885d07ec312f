// Package content loads documentation pages from a filesystem: one
// page.yaml manifest per directory plus one markdown file per section.
package content

import (
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/actionhero/docsite/pkg/docpage"
)

// ManifestName is the file that marks a directory as a page.
const ManifestName = "page.yaml"

// Manifest is the decoded page.yaml.
//
//	path: /docs/core/chat
//	title: "Core: Chat"
//	icon: /static/images/chat.svg
//	sections:
//	  general: General
//	  methods: Methods
//	links:
//	  - link: /docs/core/file-server
//	    title: "» Core: File Server"
type Manifest struct {
	Path     string         `yaml:"path"`
	Title    string         `yaml:"title"`
	Icon     string         `yaml:"icon"`
	Sections SectionList    `yaml:"sections"`
	Blocks   []string       `yaml:"blocks"`
	Links    []docpage.Link `yaml:"links"`
}

// SectionList decodes either an ordered mapping of id to title or a
// sequence of {id, title} entries, keeping document order.
type SectionList []docpage.Section

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *SectionList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(SectionList, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: section titles must be strings", key.Line)
			}
			out = append(out, docpage.Section{ID: key.Value, Title: value.Value})
		}
		*l = out
		return nil
	case yaml.SequenceNode:
		var seq []docpage.Section
		if err := node.Decode(&seq); err != nil {
			return err
		}
		*l = seq
		return nil
	default:
		return fmt.Errorf("line %d: sections must be a mapping or a list", node.Line)
	}
}

// ParseManifest decodes and validates a manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every section and block id is usable as a URL
// anchor.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidManifest)
	}
	for _, s := range m.Sections {
		if !validID(s.ID) {
			return fmt.Errorf("%w: section id %q is not anchor-safe", ErrInvalidManifest, s.ID)
		}
	}
	for _, id := range m.Blocks {
		if !validID(id) {
			return fmt.Errorf("%w: block id %q is not anchor-safe", ErrInvalidManifest, id)
		}
	}
	return nil
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if unicode.IsSpace(r) || r == '#' || r == '"' || r == '/' {
			return false
		}
	}
	return true
}
