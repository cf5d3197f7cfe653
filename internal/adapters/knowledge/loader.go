// Package knowledge provides the knowledge-base loader and keyword retriever.
// Clean Architecture: Adapters over the static knowledge document.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
)

// document is the on-disk JSON shape of the knowledge base.
type document struct {
	Restaurant struct {
		Name string `json:"name"`
	} `json:"restaurant"`
	Entries []entities.KnowledgeEntry `json:"entries"`
}

// JSONLoader reads the knowledge document from disk, once, at startup.
// There is no hot reload: a bad document must prevent the process from serving.
type JSONLoader struct{}

// NewJSONLoader creates a knowledge document loader.
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// Load reads and validates the knowledge document at path.
func (l *JSONLoader) Load(path string) (*entities.KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing knowledge document %s: %w", path, err)
	}

	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("knowledge document %s has no entries", path)
	}
	for i, entry := range doc.Entries {
		if entry.Topic == "" {
			return nil, fmt.Errorf("knowledge entry %d is missing a topic", i)
		}
		if entry.Content == "" {
			return nil, fmt.Errorf("knowledge entry %q is missing content", entry.Topic)
		}
		if len(entry.Keywords) == 0 {
			return nil, fmt.Errorf("knowledge entry %q has no keywords", entry.Topic)
		}
		for _, kw := range entry.Keywords {
			if kw == "" {
				return nil, fmt.Errorf("knowledge entry %q has an empty keyword", entry.Topic)
			}
		}
	}

	return &entities.KnowledgeBase{
		Restaurant: doc.Restaurant.Name,
		Entries:    doc.Entries,
	}, nil
}
