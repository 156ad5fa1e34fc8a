package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/starford/algiz/internal/apperr"
	"github.com/starford/algiz/internal/models"
)

const timeLayout = time.RFC3339Nano

// UpsertDocument registers path under the given origin tag and returns
// its stable id. A known path keeps its id and creation time and only
// moves updated_at; a new path gets both timestamps set to now.
func (db *DB) UpsertDocument(path, source string) (int64, error) {
	now := time.Now().UTC().Format(timeLayout)

	var id int64
	err := db.conn.QueryRow(`SELECT id FROM docs WHERE path = ?`, path).Scan(&id)
	switch {
	case err == nil:
		if _, err := db.conn.Exec(`UPDATE docs SET updated_at = ? WHERE id = ?`, now, id); err != nil {
			return 0, fmt.Errorf("index: touch document: %w", err)
		}
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		res, err := db.conn.Exec(`
			INSERT INTO docs (path, source, created_at, updated_at)
			VALUES (?, ?, ?, ?)
		`, path, source, now, now)
		if err != nil {
			return 0, fmt.Errorf("index: insert document: %w", err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("index: document id: %w", err)
		}
		return newID, nil
	default:
		return 0, fmt.Errorf("index: lookup document: %w", err)
	}
}

// ReplaceChunk swaps in the chunk for (docID, layer): any existing row
// for the pair is deleted and the new one inserted inside a single
// transaction, so a reader never observes zero or two rows for the
// pair. The content snapshot is clamped to the configured limit.
func (db *DB) ReplaceChunk(docID int64, layer models.Layer, content, summary string) error {
	if !layer.Valid() {
		return fmt.Errorf("index: replace chunk: %w: %q", apperr.ErrInvalidLayer, layer)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM chunks WHERE doc_id = ? AND layer = ?`, docID, string(layer)); err != nil {
		return fmt.Errorf("index: delete chunk: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO chunks (doc_id, layer, content, tags, summary)
		VALUES (?, ?, ?, '', ?)
	`, docID, string(layer), clampSnapshot(content, db.snapshotLimit), summary)
	if err != nil {
		return fmt.Errorf("index: insert chunk: %w", err)
	}

	return tx.Commit()
}

// SearchPublic returns case-insensitive substring matches of keyword
// against stored summaries. The query reads the public layer only; the
// layer restriction sits in the SQL itself and is the single privacy
// enforcement point for the whole system. Results come back in storage
// order, capped at limit (the configured query limit when limit <= 0).
// No match yields an empty result, not an error.
func (db *DB) SearchPublic(keyword string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = db.queryLimit
	}
	like := "%" + strings.ToLower(keyword) + "%"
	rows, err := db.conn.Query(`
		SELECT docs.path, chunks.summary
		FROM chunks
		JOIN docs ON docs.id = chunks.doc_id
		WHERE chunks.layer = 'public' AND lower(chunks.summary) LIKE ?
		ORDER BY chunks.id
		LIMIT ?
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.Path, &r.Summary); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetDocument returns the registered document for a normalized
// absolute path, or apperr.ErrNotFound.
func (db *DB) GetDocument(path string) (*models.Document, error) {
	var (
		d                    models.Document
		createdAt, updatedAt string
	)
	err := db.conn.QueryRow(`
		SELECT id, path, source, created_at, updated_at FROM docs WHERE path = ?
	`, path).Scan(&d.ID, &d.Path, &d.Source, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: document %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	if d.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("index: parse created_at: %w", err)
	}
	if d.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("index: parse updated_at: %w", err)
	}
	return &d, nil
}

// GetChunk returns the stored chunk for (docID, layer), or
// apperr.ErrNotFound.
func (db *DB) GetChunk(docID int64, layer models.Layer) (*models.Chunk, error) {
	c := models.Chunk{DocID: docID, Layer: layer}
	err := db.conn.QueryRow(`
		SELECT content, tags, summary FROM chunks WHERE doc_id = ? AND layer = ?
	`, docID, string(layer)).Scan(&c.Content, &c.Tags, &c.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: chunk (%d, %s): %w", docID, layer, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get chunk: %w", err)
	}
	return &c, nil
}

// Stats reports row counts for the registry and the chunk store.
func (db *DB) Stats() (docs, chunks int, err error) {
	if err = db.conn.QueryRow(`SELECT count(*) FROM docs`).Scan(&docs); err != nil {
		return 0, 0, fmt.Errorf("index: count docs: %w", err)
	}
	if err = db.conn.QueryRow(`SELECT count(*) FROM chunks`).Scan(&chunks); err != nil {
		return 0, 0, fmt.Errorf("index: count chunks: %w", err)
	}
	return docs, chunks, nil
}

// clampSnapshot bounds stored content to limit bytes without splitting
// a rune. This is a storage-size control, separate from the prompt
// budget applied by the summarizer.
func clampSnapshot(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
