package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher reports when a trace file changes on disk. Bursts of writes inside
// the debounce window collapse into one notification.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *zap.Logger
	fw       *fsnotify.Watcher
	changes  chan string
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewWatcher watches the file's directory rather than the file so editors
// that save by rename keep being seen.
func NewWatcher(path string, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		log:      log,
		fw:       fw,
		changes:  make(chan string, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Changes is closed once the watcher stops.
func (w *Watcher) Changes() <-chan string { return w.changes }

func (w *Watcher) Path() string { return w.path }

// Start runs the event loop until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	defer close(w.changes)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			w.log.Debug("trace file event", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("trace watcher error", zap.Error(err))
		case <-timer.C:
			select {
			case w.changes <- w.path:
			default:
			}
		}
	}
}

// Close stops the loop and releases the fsnotify handle. Safe to call more
// than once, and before Start.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fw.Close()
	})
	return err
}

// Wait blocks until a started loop has exited.
func (w *Watcher) Wait() { <-w.done }
