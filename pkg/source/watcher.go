package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/seqbatch/pkg/log"
)

// DefaultDebounce is how long a file must stay quiet before it is processed.
const DefaultDebounce = 250 * time.Millisecond

// Handler processes one spool file. Errors are logged and the file is not
// retried until the watcher restarts.
type Handler func(ctx context.Context, path string) error

// Watcher follows a spool directory and hands every new file with the
// configured extension to a Handler exactly once.
//
// Producers should write under a temporary name and rename into place;
// in-place writes are debounced but a file that keeps growing after it was
// handled is not picked up again.
type Watcher struct {
	dir      string
	ext      string
	debounce time.Duration
	handle   Handler
	skip     func(name string) bool
	logger   log.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	done   map[string]bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtension overrides the default ".jsonl" extension.
func WithExtension(ext string) WatcherOption {
	return func(w *Watcher) { w.ext = ext }
}

// WithSkip reports files (by base name) that were already processed.
func WithSkip(fn func(name string) bool) WatcherOption {
	return func(w *Watcher) { w.skip = fn }
}

// WithWatcherLogger sets the logger; the default discards.
func WithWatcherLogger(l log.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher creates a watcher for dir.
func NewWatcher(dir string, handle Handler, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:      dir,
		ext:      ".jsonl",
		debounce: DefaultDebounce,
		handle:   handle,
		logger:   log.NewNoopLogger(),
		timers:   make(map[string]*time.Timer),
		done:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes files already present, then follows the directory until
// ctx is cancelled. It returns an error only if watching cannot start.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	defer w.stopTimers()

	existing, err := w.scan()
	if err != nil {
		return err
	}
	for _, p := range existing {
		if ctx.Err() != nil {
			return nil
		}
		w.process(ctx, p)
	}

	ready := make(chan string, 16)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.wants(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name, ready)

		case p := <-ready:
			w.process(ctx, p)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("spool watcher error", log.Err(err))
		}
	}
}

// scan lists matching files in name order.
func (w *Watcher) scan() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", w.dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(w.dir, e.Name())
		if w.wants(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (w *Watcher) wants(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, w.ext) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.done[name]
}

// schedule debounces path; once quiet it is sent to ready.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) process(ctx context.Context, path string) {
	name := filepath.Base(path)

	w.mu.Lock()
	if w.done[name] {
		w.mu.Unlock()
		return
	}
	w.done[name] = true
	w.mu.Unlock()

	if w.skip != nil && w.skip(name) {
		w.logger.Debug("spool file already processed", log.String("file", name))
		return
	}

	start := time.Now()
	if err := w.handle(ctx, path); err != nil {
		w.logger.Error("spool file failed", log.String("file", name), log.Err(err))
		return
	}
	w.logger.Debug("spool file processed", log.String("file", name), log.Duration("took", time.Since(start)))
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
}
