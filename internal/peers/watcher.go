package peers

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mojo333/battlelan/internal/logger"
)

// debounceDelay coalesces the burst of fsnotify events an editor or the
// control surface produces for one save.
const debounceDelay = 500 * time.Millisecond

// Watcher monitors the receiver list file and calls onChange with the
// re-loaded addresses whenever it is rewritten.
type Watcher struct {
	path     string
	onChange func([]string)
	log      *logger.Logger

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
}

// NewWatcher creates a receiver list watcher. onChange receives the full
// re-loaded list.
func NewWatcher(path string, onChange func([]string), log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Discard()
	}
	return &Watcher{
		path:     path,
		onChange: onChange,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching. The file's directory is watched so replace-by-rename
// saves are seen too.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}

	go w.loop()
	w.log.Info("Watching receiver list %s", w.path)
	return nil
}

// Stop shuts down the watcher. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stopCh)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) loop() {
	var debounce *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warning("Receiver list watcher error: %s", err)

		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	addrs, err := Load(w.path)
	if err != nil {
		w.log.Warning("Cannot reload receiver list: %s", err)
		return
	}
	w.log.Info("Receiver list changed, now %d entries", len(addrs))
	w.onChange(addrs)
}
