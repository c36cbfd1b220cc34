// Package catalog holds the static topic list supplied at startup.
package catalog

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is a read-only lookup table of topics and chapters.
type Catalog struct {
	chapters []Chapter
	topics   []Topic
	byID     map[string]Topic
}

// Load reads a catalog YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	slog.Info("catalog loaded", "chapters", len(c.chapters), "topics", len(c.topics))
	return c, nil
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return New(doc.Chapters...)
}

// New builds a catalog from chapters. Topic ids must be unique across chapters.
func New(chapters ...Chapter) (*Catalog, error) {
	c := &Catalog{
		chapters: chapters,
		byID:     make(map[string]Topic),
	}

	for _, ch := range chapters {
		for _, t := range ch.Topics {
			if t.ID == "" {
				return nil, fmt.Errorf("chapter %q: topic with empty id", ch.ID)
			}
			if t.Category == "" {
				return nil, fmt.Errorf("topic %q: category is required", t.ID)
			}
			if _, dup := c.byID[t.ID]; dup {
				return nil, fmt.Errorf("duplicate topic id %q", t.ID)
			}
			c.byID[t.ID] = t
			c.topics = append(c.topics, t)
		}
	}
	return c, nil
}

// Empty returns a catalog with no topics.
func Empty() *Catalog {
	return &Catalog{byID: make(map[string]Topic)}
}

// Topic returns a topic by ID.
func (c *Catalog) Topic(id string) (Topic, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Topics returns all topics in declaration order.
func (c *Catalog) Topics() []Topic {
	return append([]Topic(nil), c.topics...)
}

// TopicIDs returns all topic ids in declaration order.
func (c *Catalog) TopicIDs() []string {
	ids := make([]string, len(c.topics))
	for i, t := range c.topics {
		ids[i] = t.ID
	}
	return ids
}

// Chapters returns the chapter list.
func (c *Catalog) Chapters() []Chapter {
	return append([]Chapter(nil), c.chapters...)
}
