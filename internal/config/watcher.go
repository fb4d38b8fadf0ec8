package config

import (
	"path/filepath"
	"sync"
	"time"

	"mcpkeep/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the time to wait before triggering a reload
// after the last file change is detected.
const DefaultDebounceInterval = 500 * time.Millisecond

// Watcher calls OnChange when the state file is written by another process.
// The parent directory is watched because editors and Save replace the file.
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher for the file at path.
func NewWatcher(path string, onChange func()) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounceInterval,
	}
}

// Start begins watching. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	w.fsWatcher = watcher
	w.stopCh = make(chan struct{})
	w.running = true

	go w.processEvents(watcher.Events, watcher.Errors, w.stopCh)

	logging.Info("Watcher", "Watching %s for changes", w.path)
	return nil
}

// Stop ends watching and cancels any pending callback.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	w.fsWatcher.Close()
	w.fsWatcher = nil

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()
}

func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error, stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug("Watcher", "State file changed: %s (%s)", event.Name, event.Op)
	w.triggerDebounced()
}

func (w *Watcher) triggerDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()

		if running && w.onChange != nil {
			w.onChange()
		}
	})
}
