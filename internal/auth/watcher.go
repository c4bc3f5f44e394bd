package auth

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"streamkit/pkg/logging"
)

// DefaultDebounceInterval is the quiet period after the last change before OnChange fires.
const DefaultDebounceInterval = 200 * time.Millisecond

// StoreWatcher notices the session file being replaced or removed by another
// process, for example a login from a second terminal.
//
// The parent directory is watched rather than the file itself because FileStore
// replaces the file with a rename.
type StoreWatcher struct {
	mu sync.Mutex

	path     string
	onChange func()
	debounce time.Duration

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewStoreWatcher creates a watcher for the session file at path.
func NewStoreWatcher(path string, onChange func()) *StoreWatcher {
	return &StoreWatcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: DefaultDebounceInterval,
	}
}

// Start begins watching. The parent directory must exist.
func (w *StoreWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.fsWatcher = watcher
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	go w.processEvents(watcher.Events, watcher.Errors, w.stopCh, w.doneCh)

	logging.Debug("UserToken", "Watching %s for session changes", w.path)
	return nil
}

func (w *StoreWatcher) processEvents(events <-chan fsnotify.Event, errs <-chan error, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logging.Debug("UserToken", "Session file changed (%s)", event.Op)
			w.triggerDebounced()

		case err, ok := <-errs:
			if !ok {
				return
			}
			logging.Error("UserToken", err, "file watcher error")
		}
	}
}

func (w *StoreWatcher) triggerDebounced() {
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

// Stop stops watching and waits for the event loop to exit.
func (w *StoreWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	doneCh := w.doneCh
	watcher := w.fsWatcher
	w.fsWatcher = nil
	w.mu.Unlock()

	<-doneCh

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	return watcher.Close()
}
