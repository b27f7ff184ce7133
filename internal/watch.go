package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultSettle = 100 * time.Millisecond

// Watcher calls a handler whenever a watched file is written.
type Watcher struct {
	watcher *fsnotify.Watcher
	handle  func(ctx context.Context, filename string)
	logger  *zap.Logger
	// settle is how long to wait after a write so that several writes
	// count as one.
	settle time.Duration

	mu      sync.Mutex
	files   map[string]bool
	pending map[string]*time.Timer
}

func NewWatcher(logger *zap.Logger, handle func(ctx context.Context, filename string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher: fw,
		handle:  handle,
		logger:  logger,
		settle:  defaultSettle,
		files:   make(map[string]bool),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Add watches files. Their directories are watched, since editors often
// replace a file instead of writing it.
func (w *Watcher) Add(files ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		w.files[abs] = true
		if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	return nil
}

// Run handles events until ctx is done, then closes the watcher. Handler
// calls run one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	fire := make(chan string)
	done := make(chan struct{})
	defer func() {
		close(done)
		w.mu.Lock()
		for _, t := range w.pending {
			t.Stop()
		}
		w.mu.Unlock()
		w.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event, fire, done)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		case name := <-fire:
			w.logger.Info("file changed", zap.String("file", name))
			w.handle(ctx, name)
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event, fire chan<- string, done <-chan struct{}) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[name] {
		return
	}
	if t, ok := w.pending[name]; ok {
		t.Stop()
	}
	w.pending[name] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()

		select {
		case fire <- name:
		case <-done:
		}
	})
}
