package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/pkfit/internal/ports"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Watcher re-runs a Runner whenever one of the watched files changes.
type Watcher struct {
	runner   *Runner
	files    []string
	debounce time.Duration
	logger   ports.Logger

	mu    sync.Mutex
	timer *time.Timer
	runs  chan struct{}
}

// NewWatcher creates a Watcher for the given files. Empty paths are ignored.
func NewWatcher(runner *Runner, logger ports.Logger, debounce time.Duration, files ...string) *Watcher {
	var clean []string
	for _, f := range files {
		if f != "" {
			clean = append(clean, filepath.Clean(f))
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		runner:   runner,
		files:    clean,
		debounce: debounce,
		logger:   logger,
		runs:     make(chan struct{}, 1),
	}
}

// Run performs an initial run and then one run per settled burst of changes,
// until ctx is cancelled. Failed runs are logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch directories: editors often replace files by rename.
	dirs := map[string]bool{}
	for _, f := range w.files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return err
		}
		dirs[dir] = true
	}

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case <-w.runs:
			w.runOnce(ctx)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.watched(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("input changed", ports.String("file", event.Name), ports.String("op", event.Op.String()))
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", ports.Err(err))
		}
	}
}

func (w *Watcher) watched(name string) bool {
	name = filepath.Clean(name)
	for _, f := range w.files {
		if f == name {
			return true
		}
	}
	return false
}

// schedule (re)starts the debounce timer. When it fires, a run is queued;
// runs themselves happen on the Run goroutine, one at a time.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.runs <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	if _, err := w.runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error("run failed", ports.Err(err))
	}
}
