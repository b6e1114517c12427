// Package watcher reports changes to a single file on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which save by writing a temporary file and renaming it over the
// original are still noticed. Rapid bursts of events are coalesced into one
// callback after a quiet period.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/brackets/internal/logging"
)

// DefaultDelay is the quiet period before a change is reported.
const DefaultDelay = 100 * time.Millisecond

// Errors returned by the watcher.
var (
	// ErrWatcherClosed is returned when operating on a closed watcher.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrPathNotExist is returned when the watched file's directory does not exist.
	ErrPathNotExist = errors.New("path does not exist")

	// ErrNilCallback is returned when no change callback is supplied.
	ErrNilCallback = errors.New("nil change callback")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay. Non-positive values are ignored.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the logger used for watch errors.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// Watcher calls a function after the watched file changes.
type Watcher struct {
	path     string
	delay    time.Duration
	onChange func(path string)
	log      *logging.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	changes int
	closed  bool

	closeCh  chan struct{}
	closedWg sync.WaitGroup
	// inflight counts onChange calls that have started and not returned.
	inflight sync.WaitGroup
}

// New starts watching path. onChange runs on a timer goroutine once the file
// has been quiet for the debounce delay after a write, create or rename.
func New(path string, onChange func(path string), opts ...Option) (*Watcher, error) {
	if onChange == nil {
		return nil, ErrNilCallback
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(absPath)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotExist, dir)
		}
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		path:     absPath,
		delay:    DefaultDelay,
		onChange: onChange,
		log:      logging.Nop(),
		fsw:      fsw,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("watcher")

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Changes returns how many debounced change notifications have been delivered.
func (w *Watcher) Changes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changes
}

// Close stops the watcher. Pending notifications are discarded. A callback
// that is already running is waited for, so onChange is never called after
// Close returns. Close must not be called from onChange.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	w.closedWg.Wait()
	w.inflight.Wait()
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return
	}
	w.log.Debug("%s: %s", ev.Op, ev.Name)
	w.schedule()
}

// schedule (re)starts the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.changes++
	// Added under mu so that Close, which sets closed under mu, cannot
	// start waiting before this call is counted.
	w.inflight.Add(1)
	w.mu.Unlock()

	defer w.inflight.Done()
	w.onChange(w.path)
}
