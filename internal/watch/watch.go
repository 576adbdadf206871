// Package watch observes collection files for out-of-band modifications.
//
// The collection cache is never demoted once warm, so a file edited from
// outside the process silently diverges from the in-memory state. The
// watcher makes that visible: it logs a warning for every external write to
// a collection file and optionally invokes a callback with the type name.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a data directory.
type Watcher struct {
	dir      string
	ext      string
	logger   *slog.Logger
	onChange func(typeName string)
	w        *fsnotify.Watcher
}

// New creates a watcher for collection files (*.ext) under dir. onChange
// may be nil.
func New(dir, ext string, logger *slog.Logger, onChange func(typeName string)) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &Watcher{dir: dir, ext: ext, logger: logger, onChange: onChange, w: w}, nil
}

// Run processes events until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.w.Close() }()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, ok := w.typeName(event.Name)
			if !ok {
				continue
			}
			w.logger.WarnContext(ctx, "collection file modified on disk; warm caches may be stale",
				"type", name, "path", event.Name)
			if w.onChange != nil {
				w.onChange(name)
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.logger.WarnContext(ctx, "error watching data directory", "err", err)
		}
	}
}

// typeName maps a file path back to its collection type name.
func (w *Watcher) typeName(path string) (string, bool) {
	base := filepath.Base(path)
	suffix := "." + w.ext
	if !strings.HasSuffix(base, suffix) {
		return "", false
	}
	return strings.TrimSuffix(base, suffix), true
}
