// Package watch reports changed unit files so a run can be repeated.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"jet/internal/naming"
)

// DefaultDebounce is how long a file must stay quiet before it is reported
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches a test directory tree for changes to unit files
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	root        string
	skipDirs    []string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	logger      *zap.Logger
}

// New creates a Watcher over root and its subdirectories, except the skipped ones
func New(root string, skipDirs []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:     watcher,
		root:        root,
		skipDirs:    skipDirs,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		logger:      logger,
	}
	if err := w.addTree(root); err != nil {
		watcher.Close()
		return nil, err
	}
	return w, nil
}

// Run calls onChange with the settled unit files, sorted, until ctx is done.
// onChange runs on the watcher goroutine; events arriving meanwhile are queued.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer w.watcher.Close()

	// Debounce timer for batching rapid changes
	debounceTicker := time.NewTicker(w.debounceDur / 3)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-debounceTicker.C:
			if paths := w.settled(time.Now()); len(paths) > 0 {
				onChange(paths)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("cannot watch directory", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
	}

	if !naming.IsUnitFile(filepath.Base(event.Name)) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("unit changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// settled returns the paths that have been quiet for the debounce window
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var paths []string
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			paths = append(paths, path)
			delete(w.debounceMap, path)
		}
	}
	slices.Sort(paths)
	return paths
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skip(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) skip(name string) bool {
	return strings.HasPrefix(name, ".") || slices.Contains(w.skipDirs, name)
}
