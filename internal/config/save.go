package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SaveComposerDefaults updates the composer section (depth and model) in
// the config file. Comments and formatting in other sections are preserved
// by editing the yaml.Node tree instead of re-marshaling the whole config.
func SaveComposerDefaults(configPath string, c ComposerConfig) error {
	data, err := os.ReadFile(configPath) // #nosec G304 -- path chosen by config lookup
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	composerNode := buildComposerNode(c)

	if doc.Kind == 0 {
		// Empty or new file.
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{{
				Kind: yaml.MappingNode,
				Content: []*yaml.Node{
					{Kind: yaml.ScalarNode, Value: "composer"},
					composerNode,
				},
			}},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind == yaml.MappingNode {
			found := false
			for i := 0; i < len(root.Content)-1; i += 2 {
				if root.Content[i].Value == "composer" {
					root.Content[i+1] = composerNode
					found = true
					break
				}
			}
			if !found {
				root.Content = append(root.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Value: "composer"},
					composerNode,
				)
			}
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func buildComposerNode(c ComposerConfig) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	if c.Depth != "" {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "depth"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: c.Depth},
		)
	}
	if c.Model != "" {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "model"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: c.Model},
		)
	}
	return node
}
