// Package watch re-runs a callback when watched documents change on disk.
//
// The parent directory of every file is watched rather than the file
// itself, so editors that save by writing a temp file and renaming it
// over the original are still seen. Bursts of events for the same file
// are collapsed into one callback after a quiet period.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/logging"
)

// DefaultDebounce is the quiet period used when Config.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// ErrAlreadyRunning is returned when Watch is called twice concurrently.
var ErrAlreadyRunning = errors.New("watcher already running")

// Config contains configuration for a Watcher.
type Config struct {
	// Paths are the files to watch.
	Paths []string

	// Debounce is the time to wait after the last event for a file before
	// calling back (default: 100ms).
	Debounce time.Duration
}

// Watcher watches a fixed set of files.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	cfg     Config

	// targets maps absolute paths to the path as the caller gave it.
	targets map[string]string
	running atomic.Bool
}

// New creates a watcher for cfg.Paths. Call Close when done.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("no paths to watch")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	targets := make(map[string]string, len(cfg.Paths))
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", p)
		}
		targets[abs] = p
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}

	w := &Watcher{
		watcher: fw,
		logger:  logger,
		cfg:     cfg,
		targets: targets,
	}

	dirs := make(map[string]struct{})
	for abs := range targets {
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "watching directory %s", dir)
		}
		logger.Debug("watching directory", "path", dir)
	}

	return w, nil
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	if err := w.watcher.Close(); err != nil {
		return errors.Wrap(err, "closing watcher")
	}
	return nil
}

// Watch blocks until ctx is cancelled, calling onChange with the caller's
// path of every file that changed. Callbacks run one at a time, in path
// order within a batch. A callback error is logged and watching continues.
func (w *Watcher) Watch(ctx context.Context, onChange func(path string) error) error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer w.running.Store(false)

	w.logger.Info("watching for changes",
		"files", len(w.targets),
		"debounce_ms", w.cfg.Debounce.Milliseconds(),
	)

	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			path, ok := w.match(event)
			if !ok {
				continue
			}
			w.logger.Debug("file event", logging.Document(path), "op", event.Op.String())
			pending[path] = struct{}{}
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			slices.Sort(paths)

			for _, p := range paths {
				if err := onChange(p); err != nil {
					w.logger.Error("change handler failed", logging.Document(p), "error", err)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// match reports whether event concerns a watched file, returning the
// caller's spelling of its path.
func (w *Watcher) match(event fsnotify.Event) (string, bool) {
	// Removal is not a change worth validating; the follow-up Create is.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return "", false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	p, ok := w.targets[abs]
	return p, ok
}
