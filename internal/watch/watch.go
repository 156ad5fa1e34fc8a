// Package watch implements the relay poller: a read-only console
// observer that reports changes to a fixed set of relay files and new
// deliveries to an inbox directory. It never writes to the index.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Defaults for zero Config fields.
const (
	DefaultInterval  = 2 * time.Second
	DefaultTailLines = 5
)

// Config describes what to watch.
type Config struct {
	// Files are the relay files to watch, by path. A missing file is
	// reported as such and picked up when it appears.
	Files []string
	// Inbox is a directory checked for new deliveries. Empty disables
	// the inbox check.
	Inbox string
	// Interval is the poll period.
	Interval time.Duration
	// TailLines is the preview length printed for a changed file.
	TailLines int
}

// fileState is the change-detection snapshot for one file. A missing
// file has the zero state.
type fileState struct {
	mtime time.Time
	size  int64
}

// Watcher polls relay files and an inbox directory and prints
// timestamped notices to its output writer.
type Watcher struct {
	files     []string
	inbox     string
	interval  time.Duration
	tailLines int
	out       io.Writer
	logger    *slog.Logger
	state     map[string]fileState
	// pending holds inbox entries sighted but not yet announced; an
	// entry moves to state once its snapshot stops changing.
	pending map[string]fileState
}

// New creates a Watcher. Zero config fields fall back to the package
// defaults; a nil out falls back to stdout.
func New(cfg Config, out io.Writer, logger *slog.Logger) *Watcher {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	tailLines := cfg.TailLines
	if tailLines <= 0 {
		tailLines = DefaultTailLines
	}
	files := make([]string, 0, len(cfg.Files))
	for _, f := range cfg.Files {
		files = append(files, filepath.Clean(f))
	}
	inbox := cfg.Inbox
	if inbox != "" {
		inbox = filepath.Clean(inbox)
	}
	return &Watcher{
		files:     files,
		inbox:     inbox,
		interval:  interval,
		tailLines: tailLines,
		out:       out,
		logger:    logger,
		state:     make(map[string]fileState),
		pending:   make(map[string]fileState),
	}
}

// Run prints the startup banner and polls until ctx is cancelled.
// fsnotify events, where the platform provides them, wake the loop
// early; the poll comparison is what actually detects changes.
func (w *Watcher) Run(ctx context.Context) error {
	w.printBanner()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if fw, err := fsnotify.NewWatcher(); err != nil {
		w.logger.Warn("watch: fsnotify unavailable, polling only", slog.String("error", err.Error()))
	} else {
		defer fw.Close()
		for _, dir := range w.watchDirs() {
			if addErr := fw.Add(dir); addErr != nil {
				w.logger.Debug("watch: cannot watch dir",
					slog.String("dir", dir),
					slog.String("error", addErr.Error()))
			}
		}
		events = fw.Events
		errs = fw.Errors
	}

	w.logger.Info("watch: started",
		slog.Int("files", len(w.files)),
		slog.String("inbox", w.inbox))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(w.out, "\n  Watcher stopped at %s.\n", time.Now().Format("15:04:05"))
			w.logger.Info("watch: stopped")
			return nil

		case <-ticker.C:
			w.poll()

		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			w.poll()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Error("watch: error", slog.String("error", err.Error()))
		}
	}
}

// printBanner writes the startup header and the baseline state of
// every watched relay file.
func (w *Watcher) printBanner() {
	line := strings.Repeat("=", 50)
	fmt.Fprintf(w.out, "\n%s\n", line)
	fmt.Fprintln(w.out, "  RELAY WATCHER")
	fmt.Fprintf(w.out, "  Started: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w.out, "  Watching: %d files\n", len(w.files))
	fmt.Fprintln(w.out, "  Press Ctrl+C to stop")
	fmt.Fprintf(w.out, "%s\n\n", line)

	for _, path := range w.files {
		st := statFile(path)
		w.state[path] = st
		status := "exists"
		if st.size == 0 {
			status = "empty/missing"
		}
		fmt.Fprintf(w.out, "  [%s] %s (%d bytes)\n", status, filepath.Base(path), st.size)
	}
	fmt.Fprintf(w.out, "\n  Watching for changes...\n\n")
}

// poll diffs every relay file against its last snapshot and checks the
// inbox for entries not seen before.
func (w *Watcher) poll() {
	for _, path := range w.files {
		cur := statFile(path)
		if prev := w.state[path]; cur != prev {
			w.printChange(path, prev, cur)
			w.state[path] = cur
		}
	}
	if w.inbox != "" {
		w.pollInbox()
	}
}

// pollInbox announces inbox entries that were not present on an
// earlier poll. README.md and dotfiles are ignored. A delivery is
// announced once, and only after its snapshot is stable across two
// consecutive polls, so an event-woken poll that sights a file between
// creation and its content write still reports the full content.
func (w *Watcher) pollInbox() {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if name == "README.md" || strings.HasPrefix(name, ".") {
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(w.inbox, name)
		if _, seen := w.state[path]; seen {
			continue
		}
		cur := statFile(path)
		if cur == (fileState{}) {
			// Listed but gone before the stat; not a delivery.
			continue
		}
		if prev, sighted := w.pending[path]; !sighted || cur != prev {
			w.pending[path] = cur
			continue
		}
		delete(w.pending, path)
		w.state[path] = cur
		w.printDelivery(path, cur)
	}
}

func (w *Watcher) printChange(path string, prev, cur fileState) {
	delta := cur.size - prev.size
	sign := ""
	if delta >= 0 {
		sign = "+"
	}
	fmt.Fprintf(w.out, "  [%s] CHANGE DETECTED: %s\n", time.Now().Format("15:04:05"), filepath.Base(path))
	fmt.Fprintf(w.out, "  Size: %d -> %d (%s%d bytes)\n", prev.size, cur.size, sign, delta)
	fmt.Fprintf(w.out, "  Preview (last %d lines):\n", w.tailLines)
	fmt.Fprintln(w.out, w.tail(path))
	fmt.Fprintln(w.out)
}

func (w *Watcher) printDelivery(path string, st fileState) {
	fmt.Fprintf(w.out, "  [%s] NEW INBOX DELIVERY: %s\n", time.Now().Format("15:04:05"), filepath.Base(path))
	fmt.Fprintf(w.out, "  Size: %d bytes\n", st.size)
	fmt.Fprintln(w.out, "  Preview:")
	fmt.Fprintln(w.out, w.tail(path))
	fmt.Fprintln(w.out)
}

// tail returns the last TailLines lines of path, each prefixed with
// "  | " for indented display.
func (w *Watcher) tail(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("  | [error reading file: %v]", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) > w.tailLines {
		lines = lines[len(lines)-w.tailLines:]
	}
	for i, line := range lines {
		lines[i] = "  | " + line
	}
	return strings.Join(lines, "\n")
}

// watchDirs returns the unique parent directories of the relay files
// plus the inbox, for fsnotify registration.
func (w *Watcher) watchDirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(d string) {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			dirs = append(dirs, d)
		}
	}
	for _, f := range w.files {
		add(filepath.Dir(f))
	}
	if w.inbox != "" {
		add(w.inbox)
	}
	return dirs
}

// statFile returns the (mtime, size) snapshot for path, or the zero
// state when the file is missing.
func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{mtime: info.ModTime(), size: info.Size()}
}
