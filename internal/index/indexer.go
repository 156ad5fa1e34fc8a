package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/algiz/internal/models"
	"github.com/starford/algiz/internal/summarize"
)

// Walker yields candidate file paths for one batch run. Implemented by
// scan.Scanner.
type Walker interface {
	Walk(fn func(path string) error) error
}

// Indexer drives one batch run over the note roots: read file,
// register identity, summarize both layers, replace both chunks.
// Documents are processed strictly one at a time.
type Indexer struct {
	db     *DB
	walker Walker
	summ   summarize.Summarizer
	source string
	logger *slog.Logger
}

// NewIndexer wires the batch driver. The store handle stays owned by
// the caller and must outlive the run.
func NewIndexer(db *DB, walker Walker, s summarize.Summarizer, source string, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{db: db, walker: walker, summ: s, source: source, logger: logger}
}

// RunSummary counts the outcome of one batch run.
type RunSummary struct {
	Indexed int
	Skipped int
}

// Run processes every candidate in scan order. An unreadable file is
// logged and skipped and the run continues; a summarizer or store
// failure aborts the whole run. The returned summary holds the counts
// reached so far even when an error is returned. No retry happens at
// this level; re-running the batch is always safe because chunk
// replacement is idempotent per (document, layer).
func (ix *Indexer) Run(ctx context.Context) (RunSummary, error) {
	var sum RunSummary
	err := ix.walker.Walk(func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			ix.logger.Warn("skipping unreadable file", slog.String("path", path), slog.String("error", err.Error()))
			sum.Skipped++
			return nil
		}
		text := string(data)

		docID, err := ix.db.UpsertDocument(path, ix.source)
		if err != nil {
			return err
		}

		private, err := ix.summ.Summarize(ctx, text, models.LayerPrivate)
		if err != nil {
			return fmt.Errorf("summarize %s (private): %w", path, err)
		}
		public, err := ix.summ.Summarize(ctx, text, models.LayerPublic)
		if err != nil {
			return fmt.Errorf("summarize %s (public): %w", path, err)
		}

		if err := ix.db.ReplaceChunk(docID, models.LayerPrivate, text, private); err != nil {
			return err
		}
		if err := ix.db.ReplaceChunk(docID, models.LayerPublic, text, public); err != nil {
			return err
		}

		sum.Indexed++
		ix.logger.Info("indexed", slog.String("path", path))
		return nil
	})
	return sum, err
}
