// Package docwatch watches a markdown document on disk and reports debounced
// change events, driving live re-extraction of the outline.
package docwatch

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/marknav/internal/logging"
	"github.com/dshills/marknav/internal/timing"
)

// ErrWatcherClosed is returned for operations on a closed watcher.
var ErrWatcherClosed = errors.New("docwatch: watcher closed")

// DefaultDebounce groups save bursts (editors often write twice) into one
// change notification.
const DefaultDebounce = 100 * time.Millisecond

// Handler receives the document content after a change settles.
type Handler func(path string, content []byte)

// Watcher monitors a single document file.
type Watcher struct {
	mu      sync.Mutex
	path    string
	watcher *fsnotify.Watcher
	handler Handler
	log     *logging.Logger

	debounce *timing.Debouncer
	closed   bool
	closeCh  chan struct{}
	done     sync.WaitGroup
}

// New starts watching path. The handler runs after each debounced change
// with the freshly read file content. A nil logger disables logging.
func New(path string, debounce time.Duration, handler Handler, log *logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.Null
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors that replace the file on save (rename
	// over) would otherwise drop the watch.
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    absPath,
		watcher: fsw,
		handler: handler,
		log:     log.WithComponent("docwatch"),
		closeCh: make(chan struct{}),
	}
	w.debounce = timing.NewDebouncer(debounce, w.fire)

	w.done.Add(1)
	go w.loop()

	return w, nil
}

// Close stops the watcher and cancels pending notifications.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debounce.Cancel()
	err := w.watcher.Close()
	w.done.Wait()
	return err
}

// loop consumes fsnotify events until closed.
func (w *Watcher) loop() {
	defer w.done.Done()

	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.debounce.Call()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// relevant reports whether the event touches the watched document.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Name != w.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}

// fire is the debounced continuation: read the file and notify.
func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	content, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warn("read after change failed: %v", err)
		return
	}
	if w.handler != nil {
		w.handler(w.path, content)
	}
}
