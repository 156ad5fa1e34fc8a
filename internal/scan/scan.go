// Package scan walks the configured note roots and yields files
// eligible for indexing.
package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// indexableExts is the extension allow-list, matched case-insensitively.
var indexableExts = map[string]bool{
	".md":  true,
	".txt": true,
}

// Scanner walks root directories and applies the inclusion predicate:
// regular files with an allowed extension whose path does not fall
// under any exclusion prefix.
type Scanner struct {
	roots   []string
	exclude []string
	logger  *slog.Logger
}

// New creates a Scanner. Roots and exclusion entries are normalized to
// cleaned absolute paths so every later comparison is between like
// forms.
func New(roots, exclude []string, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scanner{logger: logger}
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("scan: resolve root %s: %w", r, err)
		}
		s.roots = append(s.roots, abs)
	}
	for _, e := range exclude {
		abs, err := filepath.Abs(e)
		if err != nil {
			return nil, fmt.Errorf("scan: resolve exclusion %s: %w", e, err)
		}
		s.exclude = append(s.exclude, abs)
	}
	return s, nil
}

// Walk visits every eligible file under the roots, in root order, and
// calls fn with its absolute path. Each call re-walks the full tree;
// no cursor is kept between runs. Missing roots contribute zero
// candidates. An error returned by fn stops the walk and is returned;
// unreadable directory entries are logged and skipped.
func (s *Scanner) Walk(fn func(path string) error) error {
	for _, root := range s.roots {
		info, err := os.Stat(root)
		if err != nil {
			s.logger.Debug("skipping missing root", slog.String("root", root))
			continue
		}
		if !info.IsDir() {
			s.logger.Warn("root is not a directory", slog.String("root", root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				s.logger.Warn("skipping unreadable entry",
					slog.String("path", path),
					slog.String("error", walkErr.Error()))
				return nil
			}
			if d.IsDir() {
				if s.Excluded(path) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !indexableExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			if s.Excluded(path) {
				return nil
			}
			return fn(path)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Excluded reports whether the absolute path is one of the exclusion
// entries or lies underneath one. The match is per path segment, so
// /a/b excludes /a/b/x.md but not /a/bc.md.
func (s *Scanner) Excluded(path string) bool {
	for _, ex := range s.exclude {
		if path == ex || strings.HasPrefix(path, ex+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
