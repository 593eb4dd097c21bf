package hostsfile

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettleDelay is how long the watcher waits after the last change
// notification before re-reading the file.
const DefaultSettleDelay = 500 * time.Millisecond

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Watcher observes the directory holding a file and calls onSettled once a
// burst of change notifications for that file has gone quiet.
type Watcher struct {
	path      string
	dir       string
	settle    time.Duration
	onSettled func()
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	fsw     *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher creates a Watcher for path. It does nothing until Start.
func NewWatcher(path string, settle time.Duration, onSettled func(), logger *zap.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	clean := filepath.Clean(path)
	return &Watcher{
		path:      clean,
		dir:       filepath.Dir(clean),
		settle:    settle,
		onSettled: onSettled,
		logger:    logger,
	}
}

// Start subscribes to change notifications. Watching the parent directory
// keeps the subscription alive when editors replace the file by rename.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch directory %s: %w", w.dir, err)
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	w.running = true
	w.wg.Add(1)
	go w.run(fsw, w.done)

	w.logger.Debug("watcher started", zap.String("path", w.path), zap.Duration("settle", w.settle))
	return nil
}

// Stop tears down the subscription and waits for the event loop to exit,
// including any reconciliation already in progress.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	fsw := w.fsw
	done := w.done
	w.fsw = nil
	w.mu.Unlock()

	close(done)
	err := fsw.Close()
	w.wg.Wait()

	w.logger.Debug("watcher stopped", zap.String("path", w.path))
	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// Running reports whether a subscription is live.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) run(fsw *fsnotify.Watcher, done <-chan struct{}) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-done:
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change notification", zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				timer.Reset(w.settle)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.String("path", w.path), zap.Error(err))

		case <-fire:
			fire = nil
			select {
			case <-done:
				return
			default:
			}
			if w.onSettled != nil {
				w.onSettled()
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&relevantOps != 0
}
