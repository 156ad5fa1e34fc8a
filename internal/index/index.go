package index

import "github.com/starford/algiz/internal/models"

// Registry is the full store surface: identity upserts, chunk
// replacement, the public query path, and lookups.
type Registry interface {
	UpsertDocument(path, source string) (int64, error)
	ReplaceChunk(docID int64, layer models.Layer, content, summary string) error
	SearchPublic(keyword string, limit int) ([]models.SearchResult, error)
	GetDocument(path string) (*models.Document, error)
	GetChunk(docID int64, layer models.Layer) (*models.Chunk, error)
	Stats() (docs, chunks int, err error)
	Close() error
}

// Verify *DB satisfies Registry at compile time.
var _ Registry = (*DB)(nil)
