package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveDefaultTheme sets default_theme in the config file. An empty name
// removes the key. Comments and other sections are preserved.
func SaveDefaultTheme(configPath, name string) error {
	if name == "" {
		return saveKey(configPath, "default_theme", nil)
	}
	return saveKey(configPath, "default_theme", &yaml.Node{Kind: yaml.ScalarNode, Value: name})
}

// SaveThemes replaces the themes list in the config file. Comments and
// other sections are preserved.
func SaveThemes(configPath string, themes []ThemeConfig) error {
	return saveKey(configPath, "themes", buildThemesNode(themes))
}

// saveKey replaces the value of a top-level key, appending the key when it
// is absent. A nil value deletes the key.
func saveKey(configPath, key string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath) //nolint:gosec // path is the user's config file
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("config %s is not a mapping", configPath)
	}

	root := doc.Content[0]
	found := false
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value != key {
			continue
		}
		found = true
		if value == nil {
			root.Content = append(root.Content[:i], root.Content[i+2:]...)
		} else {
			root.Content[i+1] = value
		}
		break
	}
	if !found && value != nil {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			value,
		)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".themer.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func buildThemesNode(themes []ThemeConfig) *yaml.Node {
	node := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Content: make([]*yaml.Node, 0, len(themes)),
	}
	for _, t := range themes {
		themeNode := &yaml.Node{Kind: yaml.MappingNode}
		add := func(key string, value *yaml.Node) {
			themeNode.Content = append(themeNode.Content, scalar(key), value)
		}

		add("name", scalar(t.Name))
		if t.Preset != "" {
			add("preset", scalar(t.Preset))
		}
		if len(t.Selectors) > 0 {
			seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, s := range t.Selectors {
				seq.Content = append(seq.Content, scalar(s))
			}
			add("selectors", seq)
		}
		if t.MediaQuery != "" {
			add("media_query", scalar(t.MediaQuery))
		}
		if t.Class {
			add("class", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
		}
		if t.Extend.Len() > 0 {
			add("extend", t.Extend.YAMLNode())
		}
		node.Content = append(node.Content, themeNode)
	}
	return node
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
