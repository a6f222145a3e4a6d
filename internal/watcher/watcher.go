// Package watcher notifies when the config file, or a file it pulls in,
// changes on disk. Bursts of events are debounced into one notification.
package watcher

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/themer/internal/log"
)

// Watcher monitors a set of files for changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher

	mu      sync.RWMutex
	files   map[string]struct{}
	dirs    []string
	started bool

	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Paths       []string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(paths ...string) Config {
	return Config{
		Paths:       paths,
		DebounceDur: 300 * time.Millisecond,
	}
}

// New creates a watcher for cfg.Paths. Empty paths are ignored.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	files, dirs, err := resolve(cfg.Paths)
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{
		fsWatcher: fsw,
		files:     files,
		dirs:      dirs,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// resolve makes paths absolute and lists their directories in order.
func resolve(paths []string) (map[string]struct{}, []string, error) {
	files := make(map[string]struct{}, len(paths))
	var dirs []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		files[abs] = struct{}{}
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return files, dirs, nil
}

// Start begins watching. Directories are watched rather than the files
// themselves, so editors that save by renaming are still seen.
func (w *Watcher) Start() (<-chan struct{}, error) {
	w.mu.Lock()
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.mu.Unlock()
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	w.started = true
	log.Debug(log.CatWatcher, "Watching files", "files", len(w.files), "debounce", w.debounce)
	w.mu.Unlock()

	go w.loop()

	return w.onChange, nil
}

// SetPaths replaces the watched files, for example after a config reload
// names a different utilities stylesheet. Directories that are no longer
// needed stop being watched. It reports whether the set changed.
func (w *Watcher) SetPaths(paths []string) (bool, error) {
	files, dirs, err := resolve(paths)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if maps.Equal(files, w.files) {
		return false, nil
	}
	if w.started {
		for _, dir := range dirs {
			if slices.Contains(w.dirs, dir) {
				continue
			}
			if err := w.fsWatcher.Add(dir); err != nil {
				return false, fmt.Errorf("watching directory %s: %w", dir, err)
			}
		}
		for _, dir := range w.dirs {
			if !slices.Contains(dirs, dir) {
				_ = w.fsWatcher.Remove(dir)
			}
		}
	}
	w.files, w.dirs = files, dirs
	log.Debug(log.CatWatcher, "Watch list changed", "files", len(files), "dirs", len(dirs))
	return true, nil
}

// Paths lists the watched files in sorted order.
func (w *Watcher) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Sorted(maps.Keys(w.files))
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			// Drop the signal if the previous one is still unread.
			select {
			case w.onChange <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatcher, "Watcher error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	w.mu.RLock()
	_, ok := w.files[abs]
	w.mu.RUnlock()
	return ok
}
