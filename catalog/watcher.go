package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Catalog when *.txt files in its directory change.
type Watcher struct {
	cat      *Catalog
	debounce time.Duration
	ready    chan struct{}
	onReload func(count int)
}

type WatcherOption func(*Watcher)

// WithDebounce sets how long the directory must stay quiet before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// OnReload registers a callback invoked after each successful reload.
func OnReload(fn func(count int)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

func NewWatcher(cat *Catalog, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		cat:      cat,
		debounce: 300 * time.Millisecond,
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ready is closed once the directory is being watched.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is cancelled. The directory is created if missing.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog %s: %w", w.cat.Name(), err)
	}
	defer fsw.Close()

	if err := os.MkdirAll(w.cat.Dir(), 0o755); err != nil {
		return fmt.Errorf("catalog %s: %w", w.cat.Name(), err)
	}
	if err := fsw.Add(w.cat.Dir()); err != nil {
		return fmt.Errorf("catalog %s: watch %s: %w", w.cat.Name(), w.cat.Dir(), err)
	}
	close(w.ready)
	w.cat.log.Debug("watching catalog directory", "dir", w.cat.Dir())

	tick := w.debounce / 3
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var (
		pending   bool
		lastEvent time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			pending = true
			lastEvent = time.Now()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.cat.log.Warn("catalog watcher error", "error", err)

		case <-ticker.C:
			if !pending || time.Since(lastEvent) < w.debounce {
				continue
			}
			pending = false
			if err := w.cat.Reload(); err != nil {
				w.cat.log.Error("catalog reload failed", "error", err)
				continue
			}
			if w.onReload != nil {
				w.onReload(w.cat.Len())
			}
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if filepath.Ext(ev.Name) != snippetExt {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
