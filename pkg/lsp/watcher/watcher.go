// Package watcher watches a workspace on the server side and reports debounced batches of
// changed documents, for editors that do not send file-watch notifications.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	errUtils "github.com/cloudposse/specls/errors"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/literate"
	"github.com/cloudposse/specls/pkg/lsp/uri"
)

// Handler receives the URIs changed during one debounce window, sorted.
type Handler func(uris []string)

// Filter reports whether a changed path is of interest.
type Filter func(path string) bool

// skippedDirs are never watched.
var skippedDirs = []string{".git", "node_modules", ".idea", ".vscode"}

// Watcher debounces file system events below one or more roots.
type Watcher struct {
	watcher *fsnotify.Watcher
	delay   time.Duration
	handler Handler
	filters []Filter

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	closed  bool
}

// New creates a Watcher calling handler at most once per delay window.
func New(delay time.Duration, handler Handler, filters ...Filter) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errUtils.Build(err).WithSentinel(errUtils.ErrWatcher).Err()
	}
	return &Watcher{
		watcher: w,
		delay:   delay,
		handler: handler,
		filters: filters,
		pending: make(map[string]struct{}),
	}, nil
}

// Relevant accepts configuration and OpenAPI documents.
func Relevant(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return literate.IsConfigurationExtension(ext) || literate.IsSpecExtension(ext)
}

// AddRecursive watches root and every folder below it.
func (w *Watcher) AddRecursive(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug("Skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && slices.Contains(skippedDirs, d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
	if err != nil {
		return errUtils.Build(errors.Wrapf(err, "watching %s", root)).
			WithSentinel(errUtils.ErrWatcher).
			WithHint("Check the inotify watch limit of the system").
			Err()
	}
	log.Debug("Watching workspace", "root", root, "folders", len(w.watcher.WatchList()))
	return nil
}

// Start processes events until ctx is done or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Close stops watching. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.AddRecursive(event.Name); err != nil {
				log.Debug("Unable to watch new folder", "path", event.Name, "error", err)
			}
			return
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	for _, keep := range w.filters {
		if !keep(event.Name) {
			return
		}
	}

	log.Trace("File changed", "path", event.Name, "op", event.Op.String())
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.pending[uri.FromPath(event.Name)] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	uris := lo.Keys(w.pending)
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	slices.Sort(uris)
	log.Debug("Dispatching file changes", "count", len(uris))
	w.handler(uris)
}
