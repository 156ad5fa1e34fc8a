package index

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/algiz/internal/apperr"
	"github.com/starford/algiz/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "algiz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name(), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM docs`).Scan(&count); err != nil {
		t.Fatalf("docs table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM chunks`).Scan(&count); err != nil {
		t.Fatalf("chunks table missing: %v", err)
	}
}

func TestUpsertDocumentAssignsStableID(t *testing.T) {
	db := testDB(t)

	id1, err := db.UpsertDocument("/notes/a.md", "vault")
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	id2, err := db.UpsertDocument("/notes/a.md", "vault")
	if err != nil {
		t.Fatalf("UpsertDocument (second): %v", err)
	}
	if id1 != id2 {
		t.Errorf("ids differ across upserts: %d, %d", id1, id2)
	}

	id3, err := db.UpsertDocument("/notes/b.md", "vault")
	if err != nil {
		t.Fatalf("UpsertDocument (other path): %v", err)
	}
	if id3 == id1 {
		t.Errorf("distinct paths share id %d", id1)
	}
}

func TestUpsertDocumentTouchesOnlyUpdatedAt(t *testing.T) {
	db := testDB(t)

	if _, err := db.UpsertDocument("/notes/a.md", "vault"); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	before, err := db.GetDocument("/notes/a.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := db.UpsertDocument("/notes/a.md", "vault"); err != nil {
		t.Fatalf("UpsertDocument (second): %v", err)
	}
	after, err := db.GetDocument("/notes/a.md")
	if err != nil {
		t.Fatalf("GetDocument (second): %v", err)
	}

	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("created_at moved: %v -> %v", before.CreatedAt, after.CreatedAt)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("updated_at did not move: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestReplaceChunkKeepsExactlyOneRow(t *testing.T) {
	db := testDB(t)
	id, err := db.UpsertDocument("/notes/a.md", "vault")
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := db.ReplaceChunk(id, models.LayerPublic, "content", "summary"); err != nil {
			t.Fatalf("ReplaceChunk #%d: %v", i, err)
		}
	}
	if err := db.ReplaceChunk(id, models.LayerPublic, "final content", "final summary"); err != nil {
		t.Fatalf("ReplaceChunk (final): %v", err)
	}

	var count int
	err = db.conn.QueryRow(
		`SELECT count(*) FROM chunks WHERE doc_id = ? AND layer = 'public'`, id,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if count != 1 {
		t.Errorf("chunk count = %d, want exactly 1", count)
	}

	c, err := db.GetChunk(id, models.LayerPublic)
	if err != nil {
		t.Fatalf("GetChunk: %v", err)
	}
	if c.Content != "final content" || c.Summary != "final summary" {
		t.Errorf("chunk = (%q, %q), want final values", c.Content, c.Summary)
	}
}

func TestReplaceChunkLayersIndependent(t *testing.T) {
	db := testDB(t)
	id, err := db.UpsertDocument("/notes/a.md", "vault")
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	if err := db.ReplaceChunk(id, models.LayerPrivate, "c", "full detail"); err != nil {
		t.Fatalf("ReplaceChunk private: %v", err)
	}
	if err := db.ReplaceChunk(id, models.LayerPublic, "c", "redacted"); err != nil {
		t.Fatalf("ReplaceChunk public: %v", err)
	}

	priv, err := db.GetChunk(id, models.LayerPrivate)
	if err != nil {
		t.Fatalf("GetChunk private: %v", err)
	}
	pub, err := db.GetChunk(id, models.LayerPublic)
	if err != nil {
		t.Fatalf("GetChunk public: %v", err)
	}
	if priv.Summary != "full detail" || pub.Summary != "redacted" {
		t.Errorf("summaries = (%q, %q), layers bled into each other", priv.Summary, pub.Summary)
	}
}

func TestReplaceChunkRejectsUnknownLayer(t *testing.T) {
	db := testDB(t)
	id, _ := db.UpsertDocument("/notes/a.md", "vault")

	err := db.ReplaceChunk(id, models.Layer("secret"), "c", "s")
	if !errors.Is(err, apperr.ErrInvalidLayer) {
		t.Errorf("error = %v, want ErrInvalidLayer", err)
	}
}

func TestReplaceChunkClampsSnapshot(t *testing.T) {
	db := testDB(t)
	id, _ := db.UpsertDocument("/notes/big.md", "vault")

	long := strings.Repeat("x", 20000)
	if err := db.ReplaceChunk(id, models.LayerPrivate, long, "s"); err != nil {
		t.Fatalf("ReplaceChunk: %v", err)
	}
	c, err := db.GetChunk(id, models.LayerPrivate)
	if err != nil {
		t.Fatalf("GetChunk: %v", err)
	}
	if len(c.Content) > DefaultSnapshotLimit {
		t.Errorf("snapshot length = %d, want <= %d", len(c.Content), DefaultSnapshotLimit)
	}
}

func TestSearchPublicNeverReturnsPrivate(t *testing.T) {
	db := testDB(t)
	id, _ := db.UpsertDocument("/notes/a.md", "vault")

	// Only the private layer mentions the keyword.
	if err := db.ReplaceChunk(id, models.LayerPrivate, "c", "salary for Alice is 120k"); err != nil {
		t.Fatalf("ReplaceChunk private: %v", err)
	}
	if err := db.ReplaceChunk(id, models.LayerPublic, "c", "compensation discussion"); err != nil {
		t.Fatalf("ReplaceChunk public: %v", err)
	}

	results, err := db.SearchPublic("salary", 0)
	if err != nil {
		t.Fatalf("SearchPublic: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("private-only keyword matched %d rows: %+v", len(results), results)
	}

	results, err = db.SearchPublic("compensation", 0)
	if err != nil {
		t.Fatalf("SearchPublic: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("public keyword matched %d rows, want 1", len(results))
	}
	if strings.Contains(results[0].Summary, "Alice") {
		t.Errorf("public result leaked private text: %q", results[0].Summary)
	}
}

func TestSearchPublicCaseInsensitive(t *testing.T) {
	db := testDB(t)
	id, _ := db.UpsertDocument("/notes/a.md", "vault")
	_ = db.ReplaceChunk(id, models.LayerPublic, "c", "Quarterly Planning notes")

	for _, q := range []string{"planning", "PLANNING", "Planning"} {
		results, err := db.SearchPublic(q, 0)
		if err != nil {
			t.Fatalf("SearchPublic(%q): %v", q, err)
		}
		if len(results) != 1 {
			t.Errorf("SearchPublic(%q) = %d rows, want 1", q, len(results))
		}
	}
}

func TestSearchPublicLimitAndOrder(t *testing.T) {
	db := testDB(t)

	paths := []string{"/n/1.md", "/n/2.md", "/n/3.md"}
	for _, p := range paths {
		id, err := db.UpsertDocument(p, "vault")
		if err != nil {
			t.Fatalf("UpsertDocument %s: %v", p, err)
		}
		if err := db.ReplaceChunk(id, models.LayerPublic, "c", "shared keyword for "+p); err != nil {
			t.Fatalf("ReplaceChunk %s: %v", p, err)
		}
	}

	results, err := db.SearchPublic("shared keyword", 2)
	if err != nil {
		t.Fatalf("SearchPublic: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("limit ignored: got %d rows, want 2", len(results))
	}
	// Storage order, no ranking.
	if results[0].Path != "/n/1.md" || results[1].Path != "/n/2.md" {
		t.Errorf("order = [%s, %s], want storage order", results[0].Path, results[1].Path)
	}
}

func TestSearchPublicNoMatchIsEmpty(t *testing.T) {
	db := testDB(t)
	results, err := db.SearchPublic("nothing here", 0)
	if err != nil {
		t.Fatalf("SearchPublic: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want none", results)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetDocument("/nope.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetChunkNotFound(t *testing.T) {
	db := testDB(t)
	id, _ := db.UpsertDocument("/notes/a.md", "vault")
	_, err := db.GetChunk(id, models.LayerPublic)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestStats(t *testing.T) {
	db := testDB(t)
	id, _ := db.UpsertDocument("/notes/a.md", "vault")
	_ = db.ReplaceChunk(id, models.LayerPrivate, "c", "s")
	_ = db.ReplaceChunk(id, models.LayerPublic, "c", "s")

	docs, chunks, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if docs != 1 || chunks != 2 {
		t.Errorf("stats = (%d docs, %d chunks), want (1, 2)", docs, chunks)
	}
}
