// Package watch rebuilds a book when its chapter files change on disk.
//
// The watcher monitors the parent directories of the registered files, so
// the usual editor save strategies (write in place, write-then-rename,
// delete-and-recreate) all surface as events. Rapid bursts are absorbed
// by a debounce window and trigger a single rebuild once the files
// settle. A failing rebuild is logged and watching continues.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the settle window used when Debounce is left zero.
const DefaultDebounce = 250 * time.Millisecond

// sweepEvery drives the debounce sweep.
const sweepEvery = 50 * time.Millisecond

// Watcher triggers a rebuild callback when watched files settle after a
// change. Configure the exported fields between New and Start. A Watcher
// runs once; after Stop it cannot be restarted.
type Watcher struct {
	// Debounce is how long a file must stay quiet before a rebuild
	// fires. Zero means DefaultDebounce.
	Debounce time.Duration

	// Logger receives rebuild failures and lifecycle messages. Nil
	// disables logging.
	Logger *zap.Logger

	fsw     *fsnotify.Watcher
	rebuild func() error
	files   map[string]struct{} // absolute paths that trigger rebuilds

	mu      sync.RWMutex
	pending map[string]time.Time
	started bool
	running bool
	stats   Stats

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Stats counts watcher activity since Start.
type Stats struct {
	Events        int
	Rebuilds      int
	Failures      int
	LastEventPath string
	LastEventTime time.Time
}

// New prepares a watcher over the given files. rebuild runs after any of
// them change and the change settles.
func New(paths []string, rebuild func() error) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		rebuild: rebuild,
		files:   make(map[string]struct{}, len(paths)),
		pending: make(map[string]time.Time),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Start launches the event loop. Non-blocking; the loop runs until Stop
// is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.running = true
	w.mu.Unlock()

	if w.Debounce <= 0 {
		w.Debounce = DefaultDebounce
	}
	if w.Logger == nil {
		w.Logger = zap.NewNop()
	}

	go w.run(ctx)
}

// Stop shuts the watcher down and waits for the event loop to drain.
// Safe to call more than once, and a no-op if Start never ran.
func (w *Watcher) Stop() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if !started {
		return
	}

	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

// Watching reports whether the event loop is running.
func (w *Watcher) Watching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Stats returns a snapshot of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer func() {
		_ = w.fsw.Close()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.record(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.Logger.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			w.sweep()
		}
	}
}

// record notes an event against the debounce map. Events for files we
// were not asked about, and chmod-only events, are dropped.
func (w *Watcher) record(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	path := filepath.Clean(event.Name)
	if _, ok := w.files[path]; !ok {
		return
	}

	now := time.Now()
	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventPath = path
	w.stats.LastEventTime = now
	w.pending[path] = now
	w.mu.Unlock()
}

// sweep fires one rebuild when pending changes have settled past the
// debounce window.
func (w *Watcher) sweep() {
	w.mu.Lock()
	now := time.Now()
	settled := 0
	for path, at := range w.pending {
		if now.Sub(at) >= w.Debounce {
			delete(w.pending, path)
			settled++
		}
	}
	if settled > 0 {
		w.stats.Rebuilds++
	}
	w.mu.Unlock()

	if settled == 0 {
		return
	}

	if err := w.rebuild(); err != nil {
		w.mu.Lock()
		w.stats.Failures++
		w.mu.Unlock()
		w.Logger.Warn("rebuild failed", zap.Error(err))
		return
	}
	w.Logger.Info("rebuilt")
}
