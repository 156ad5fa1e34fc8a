// Package models defines the domain types for Algiz.
package models

import (
	"fmt"
	"time"

	"github.com/starford/algiz/internal/apperr"
)

// Layer selects one of the two summarization tracks kept for every
// document. The private layer preserves full detail; the public layer
// is the only one reachable through search.
type Layer string

const (
	LayerPrivate Layer = "private"
	LayerPublic  Layer = "public"
)

// Valid reports whether l is one of the two known layers.
func (l Layer) Valid() bool {
	return l == LayerPrivate || l == LayerPublic
}

// ParseLayer maps a request mode string to a Layer. The empty string
// defaults to the public layer.
func ParseLayer(s string) (Layer, error) {
	switch Layer(s) {
	case "":
		return LayerPublic, nil
	case LayerPrivate:
		return LayerPrivate, nil
	case LayerPublic:
		return LayerPublic, nil
	}
	return "", fmt.Errorf("%w: %q", apperr.ErrInvalidLayer, s)
}

// Document represents one registered source file. Identity is the
// normalized absolute path; the id is assigned on first sighting and
// never changes.
type Document struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Chunk is the persisted summary artifact for one (document, layer)
// pair. Tags is reserved and currently always empty.
type Chunk struct {
	DocID   int64  `json:"doc_id"`
	Layer   Layer  `json:"layer"`
	Content string `json:"content"`
	Tags    string `json:"tags,omitempty"`
	Summary string `json:"summary"`
}

// SearchResult is one public-layer match returned by the query engine.
type SearchResult struct {
	Path    string `json:"path"`
	Summary string `json:"summary"`
}
