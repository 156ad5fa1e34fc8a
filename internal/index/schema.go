// Package index provides the SQLite-backed document registry, chunk
// store, and public-layer query engine.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS docs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path       TEXT NOT NULL UNIQUE,
	source     TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	doc_id  INTEGER NOT NULL REFERENCES docs(id) ON DELETE CASCADE,
	layer   TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	tags    TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	UNIQUE(doc_id, layer)
);

CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id);
`

// Default bounds applied when Config fields are unset.
const (
	DefaultSnapshotLimit = 10000
	DefaultQueryLimit    = 10
)

// Config bounds the store: SnapshotLimit caps the content snapshot
// kept per chunk, QueryLimit caps search results.
type Config struct {
	SnapshotLimit int
	QueryLimit    int
}

// DB wraps a sql.DB with registry, chunk store, and query operations.
type DB struct {
	conn          *sql.DB
	snapshotLimit int
	queryLimit    int
}

// Open opens (or creates) the SQLite database and applies the schema.
// Zero Config fields fall back to the package defaults.
func Open(path string, cfg Config) (*DB, error) {
	if cfg.SnapshotLimit <= 0 {
		cfg.SnapshotLimit = DefaultSnapshotLimit
	}
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = DefaultQueryLimit
	}
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn, snapshotLimit: cfg.SnapshotLimit, queryLimit: cfg.QueryLimit}, nil
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
