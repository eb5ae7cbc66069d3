package files

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Filter selects which files under the root are returned.
// Empty MustContain or TempMarker disables that predicate.
type Filter struct {
	Extension   string
	MustContain string
	TempMarker  string
}

// Match reports whether path satisfies all three predicates
func (f Filter) Match(path string) bool {
	if !strings.HasSuffix(path, f.Extension) {
		return false
	}
	if f.MustContain != "" && !strings.Contains(path, f.MustContain) {
		return false
	}
	if f.TempMarker != "" && strings.Contains(path, f.TempMarker) {
		return false
	}
	return true
}

// Discovery provides file discovery operations
type Discovery struct {
	root   string
	filter Filter
	logger *slog.Logger
}

// NewDiscovery creates a new file discovery instance rooted at root
func NewDiscovery(root string, filter Filter, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		root:   root,
		filter: filter,
		logger: logger.With(slog.String("component", "discovery")),
	}
}

// FindWorkbooks walks the root recursively and returns every file whose full
// path matches the filter, in lexical walk order. A missing or unreadable
// root, or unreadable subdirectories, contribute no matches rather than an
// error.
func (d *Discovery) FindWorkbooks(ctx context.Context) []FileInfo {
	var found []FileInfo

	_ = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			d.logger.DebugContext(ctx, "Skipping unreadable path",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !d.filter.Match(path) {
			return nil
		}

		fi := FileInfo{Path: path, Name: entry.Name()}
		if info, err := entry.Info(); err == nil {
			fi.Size = info.Size()
			fi.ModTime = info.ModTime()
		}
		found = append(found, fi)
		return nil
	})

	d.logger.InfoContext(ctx, "Found files",
		slog.Int("count", len(found)),
		slog.String("root", d.root))

	return found
}
