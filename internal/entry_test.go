package internal

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/starford/algiz/internal/index"
	"github.com/starford/algiz/internal/models"
)

// syncBuffer is a goroutine-safe buffer for captured console output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// eventually polls fn every tick until it returns true, failing the
// test when timeout elapses first.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Fatal(msg)
}

func seedPublicSummary(t *testing.T, dbPath, docPath, summary string) {
	t.Helper()
	db, err := index.Open(dbPath, index.Config{})
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer db.Close()
	id, err := db.UpsertDocument(docPath, "vault")
	if err != nil {
		t.Fatalf("upsert document: %v", err)
	}
	if err := db.ReplaceChunk(id, models.LayerPublic, "snapshot", summary); err != nil {
		t.Fatalf("replace chunk: %v", err)
	}
}

func TestRunQueryPrintsResults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "algiz.db")
	seedPublicSummary(t, dbPath, "/vault/budget.md", "quarterly compensation overview")

	cfg := NewDefaultConfig()
	cfg.SQLite.Path = dbPath

	var buf syncBuffer
	if err := RunQuery(context.Background(), "compensation", WithConfig(cfg), WithOutput(&buf)); err != nil {
		t.Fatalf("RunQuery: %v", err)
	}

	want := "---\n/vault/budget.md\nquarterly compensation overview\n"
	if got := buf.String(); got != want {
		t.Errorf("query output = %q, want %q", got, want)
	}
}

func TestRunQueryNoMatchPrintsNothing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "algiz.db")
	seedPublicSummary(t, dbPath, "/vault/budget.md", "quarterly compensation overview")

	cfg := NewDefaultConfig()
	cfg.SQLite.Path = dbPath

	var buf syncBuffer
	if err := RunQuery(context.Background(), "unrelated", WithConfig(cfg), WithOutput(&buf)); err != nil {
		t.Fatalf("RunQuery: %v", err)
	}
	if got := buf.String(); got != "" {
		t.Errorf("query output = %q, want empty", got)
	}
}

func TestRunWatchStopsOnInterrupt(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogLevel = slog.LevelError
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "algiz.db")
	cfg.Watch.Files = []string{filepath.Join(t.TempDir(), "relay.md")}
	cfg.Watch.IntervalSeconds = 1

	var buf syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- RunWatch(context.Background(), WithConfig(cfg), WithOutput(&buf))
	}()

	// The banner prints only after the signal handler is installed.
	eventually(t, 3*time.Second, 10*time.Millisecond, func() bool {
		return strings.Contains(buf.String(), "RELAY WATCHER")
	}, "watcher did not start: "+buf.String())

	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunWatch returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after interrupt")
	}
	if !strings.Contains(buf.String(), "Watcher stopped") {
		t.Errorf("missing stop notice, output:\n%s", buf.String())
	}
}
