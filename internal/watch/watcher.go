// Package watch reports changes to chat exports on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before reporting it.
const DefaultDebounce = 500 * time.Millisecond

// Watcher batches file system events on a set of exports. Files are watched
// through their parent directory so editors that replace files on save are
// still seen. A watched directory reports every export inside it.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]bool
	debounce time.Duration
	logger   *slog.Logger
	changes  chan []string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger receives watcher errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New watches paths, each a file or a directory.
func New(paths []string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		changes:  make(chan []string, 1),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, p := range paths {
		if err := w.addPath(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if info.IsDir() {
		dir = abs
		w.dirs[abs] = true
	} else {
		w.files[abs] = true
	}

	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

// relevant reports whether an event path is one of the watched exports.
func (w *Watcher) relevant(name string) bool {
	if w.files[name] {
		return true
	}
	base := filepath.Base(name)
	return w.dirs[filepath.Dir(name)] &&
		!strings.HasPrefix(base, ".") &&
		strings.EqualFold(filepath.Ext(base), parser.ExportExt)
}

// Changes delivers sorted batches of changed paths.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Run processes events until ctx is done or the watcher is closed. The
// changes channel is closed when Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			// Log error but continue running
			w.logger.Warn("file watch error", "error", err)

		case <-timer.C:
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			slices.Sort(batch)
			clear(pending)

			select {
			case w.changes <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
