package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"tracetour/internal/logging"
)

// Watcher monitors scenario directories and reports debounced batches of
// changed scenario files.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	roots      []string
	pattern    string
	debounceMs int
	maxWatches int
	onChange   ChangeHandler
	pending    map[string]time.Time
	created    map[string]bool
	mu         sync.Mutex
	done       chan struct{}
	running    bool
	stopOnce   sync.Once
}

// NewWatcher creates a watcher for the given scenario directories. A
// disabled config, or no directories, yields a watcher that does nothing.
func NewWatcher(roots []string, cfg Config) (*Watcher, error) {
	if !cfg.Enabled || len(roots) == 0 {
		return &Watcher{running: false}, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	def := DefaultConfig()
	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = def.DebounceMs
	}
	// pending changes are polled every DebounceMs/2, which must not be zero
	if cfg.DebounceMs < minDebounceMs {
		cfg.DebounceMs = minDebounceMs
	}
	if cfg.MaxWatches <= 0 {
		cfg.MaxWatches = def.MaxWatches
	}
	if cfg.Pattern == "" {
		cfg.Pattern = def.Pattern
	}

	return &Watcher{
		fsWatcher:  fsWatcher,
		roots:      roots,
		pattern:    cfg.Pattern,
		debounceMs: cfg.DebounceMs,
		maxWatches: cfg.MaxWatches,
		pending:    make(map[string]time.Time),
		created:    make(map[string]bool),
		done:       make(chan struct{}),
	}, nil
}

// SetOnChange sets the callback for batches of changes.
func (w *Watcher) SetOnChange(handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = handler
}

// Start begins watching.
func (w *Watcher) Start() error {
	if w.fsWatcher == nil {
		return nil
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, root := range w.roots {
		if err := w.addDirectories(root); err != nil {
			return err
		}
	}

	go w.processEvents()
	go w.processDebounce()

	logging.Debug("scenario watcher started", "roots", w.roots, "watched", w.WatchedPaths())
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	if w.fsWatcher == nil {
		return nil
	}

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		close(w.done)
	})
	return w.fsWatcher.Close()
}

// addDirectories watches root and its subdirectories up to maxWatches.
func (w *Watcher) addDirectories(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip inaccessible paths
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}

		w.mu.Lock()
		full := len(w.fsWatcher.WatchList()) >= w.maxWatches
		w.mu.Unlock()
		if full {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			logging.Debug("cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return len(name) > 0 && (name[0] == '.' || name == "node_modules")
}

// processEvents processes raw fsnotify events.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logging.Warn("scenario watcher error", "error", err)
		}
	}
}

// handleEvent handles a single fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// Editors write temporary siblings; ignore them.
	base := filepath.Base(path)
	if len(base) > 0 && (base[0] == '.' || base[0] == '#' || base[len(base)-1] == '~') {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !skipDir(info.Name()) {
				_ = w.addDirectories(path)
			}
			return
		}
	}

	if !w.Matches(path) {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	if event.Op&fsnotify.Create != 0 {
		w.created[path] = true
	}
	w.mu.Unlock()
}

// Matches reports whether path is a scenario file under one of the roots.
func (w *Watcher) Matches(path string) bool {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
			continue
		}
		if ok, _ := doublestar.PathMatch(w.pattern, rel); ok {
			return true
		}
	}
	return false
}

// processDebounce processes debounced events.
func (w *Watcher) processDebounce() {
	ticker := time.NewTicker(time.Duration(w.debounceMs/2) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.flushPending()
		}
	}
}

// flushPending reports the paths that have been stable for the debounce
// interval as one batch.
func (w *Watcher) flushPending() {
	w.mu.Lock()
	handler := w.onChange
	if handler == nil || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	now := time.Now()
	debounce := time.Duration(w.debounceMs) * time.Millisecond
	var batch []Event

	for path, eventTime := range w.pending {
		if now.Sub(eventTime) < debounce {
			continue
		}
		op := OpModify
		if w.created[path] {
			op = OpCreate
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			op = OpDelete
		}
		batch = append(batch, Event{Path: path, Operation: op, Time: now})
		delete(w.pending, path)
		delete(w.created, path)
	}
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	handler(batch)
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// WatchedPaths returns the number of watched directories.
func (w *Watcher) WatchedPaths() int {
	if w.fsWatcher == nil {
		return 0
	}
	return len(w.fsWatcher.WatchList())
}
