package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/finder/internal/log"
)

// SaveQueries replaces the queries section of the config file. Comments and
// formatting in other sections are preserved by editing the yaml.Node tree.
func SaveQueries(configPath string, queries []QueryConfig) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	queriesNode := buildQueriesNode(queries)

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: "queries"},
						queriesNode,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return fmt.Errorf("parsing config: top level is not a mapping")
		}
		found := false
		for i := 0; i < len(root.Content)-1; i += 2 {
			if root.Content[i].Value == "queries" {
				root.Content[i+1] = queriesNode
				found = true
				break
			}
		}
		if !found {
			root.Content = append(root.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: "queries"},
				queriesNode,
			)
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := atomic.WriteFile(configPath, &buf); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to save queries", err, "path", configPath)
		return fmt.Errorf("writing config: %w", err)
	}

	log.Debug(log.CatConfig, "Saved queries", "path", configPath, "count", len(queries))
	return nil
}

func buildQueriesNode(queries []QueryConfig) *yaml.Node {
	node := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Content: make([]*yaml.Node, 0, len(queries)),
	}

	for _, q := range queries {
		queryNode := &yaml.Node{Kind: yaml.MappingNode}
		queryNode.Content = append(queryNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "name"},
			strNode(q.Name),
			&yaml.Node{Kind: yaml.ScalarNode, Value: "operation"},
			strNode(q.Operation),
		)
		if q.OrderBy != "" {
			queryNode.Content = append(queryNode.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: "order_by"},
				strNode(q.OrderBy),
			)
		}
		node.Content = append(node.Content, queryNode)
	}

	return node
}

// strNode keeps values such as "true" or "3" strings when read back.
func strNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// PutQuery saves q, replacing an existing query with the same name or
// appending it.
func PutQuery(configPath string, q QueryConfig, existing []QueryConfig) error {
	if err := ValidateQueries([]QueryConfig{q}); err != nil {
		return err
	}

	updated := make([]QueryConfig, 0, len(existing)+1)
	replaced := false
	for _, e := range existing {
		if e.Name == q.Name {
			updated = append(updated, q)
			replaced = true
			continue
		}
		updated = append(updated, e)
	}
	if !replaced {
		updated = append(updated, q)
	}

	return SaveQueries(configPath, updated)
}

// DeleteQuery removes the query called name and saves.
func DeleteQuery(configPath, name string, existing []QueryConfig) error {
	updated := make([]QueryConfig, 0, len(existing))
	for _, e := range existing {
		if e.Name != name {
			updated = append(updated, e)
		}
	}
	if len(updated) == len(existing) {
		return fmt.Errorf("query %q not found", name)
	}
	return SaveQueries(configPath, updated)
}
