// Package testutil provides shared test helpers for setting up note
// trees, databases, and summarizer stubs.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/algiz/internal/index"
	"github.com/starford/algiz/internal/models"
	"github.com/starford/algiz/internal/summarize"
)

var _ summarize.Summarizer = (*StubSummarizer)(nil)

// TestDB creates a temporary SQLite database that is automatically
// cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "algiz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name(), index.Config{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTree creates a temporary note tree from a map of relative path
// to content and returns its root.
func TestTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// StubSummarizer is a deterministic Summarizer for tests. It records
// every call and can be set to fail from a given call number on.
type StubSummarizer struct {
	mu    sync.Mutex
	calls []StubCall

	// FailFrom makes call number n (1-based) and all later calls
	// return Err. Zero disables failures.
	FailFrom int
	Err      error
}

// StubCall records one Summarize invocation.
type StubCall struct {
	Text  string
	Layer models.Layer
}

// Summarize returns a deterministic summary derived from the input so
// idempotence checks can compare stored rows byte for byte.
func (s *StubSummarizer) Summarize(_ context.Context, text string, layer models.Layer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, StubCall{Text: text, Layer: layer})
	if s.FailFrom > 0 && len(s.calls) >= s.FailFrom {
		return "", s.Err
	}
	head := text
	if len(head) > 24 {
		head = head[:24]
	}
	return fmt.Sprintf("[%s] %s", layer, head), nil
}

// Calls returns a copy of the recorded invocations.
func (s *StubSummarizer) Calls() []StubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StubCall, len(s.calls))
	copy(out, s.calls)
	return out
}
