package platform

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must be quiet before it is reported
const DefaultDebounce = 500 * time.Millisecond

// FolderWatcher reports image files created or rewritten in one folder
type FolderWatcher struct {
	dir      string
	accept   func(name string) bool
	debounce time.Duration
	watcher  *fsnotify.Watcher
	events   chan string

	mu       sync.Mutex
	pending  map[string]*time.Timer
	started  bool
	stopped  bool
	done     chan struct{}
	loopDone chan struct{}
	stopOnce sync.Once
}

// NewFolderWatcher creates a watcher for dir. accept filters file names and
// defaults to IsImageFile; a zero debounce uses DefaultDebounce.
func NewFolderWatcher(dir string, accept func(name string) bool, debounce time.Duration) (*FolderWatcher, error) {
	if accept == nil {
		accept = IsImageFile
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FolderWatcher{
		dir:      dir,
		accept:   accept,
		debounce: debounce,
		watcher:  fsWatcher,
		events:   make(chan string, 100),
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}, nil
}

// Start begins watching the folder
func (w *FolderWatcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.dir, err)
	}
	log.Printf("Watching folder: %s", w.dir)

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.processEvents()
	return nil
}

// Events delivers paths of files that settled. It is closed by Stop.
func (w *FolderWatcher) Events() <-chan string {
	return w.events
}

// processEvents debounces fsnotify events per file
func (w *FolderWatcher) processEvents() {
	defer close(w.loopDone)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") || !w.accept(name) {
				continue
			}

			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// schedule (re)starts the quiet timer of path
func (w *FolderWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	if timer, exists := w.pending[path]; exists {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.stopped {
			return
		}
		delete(w.pending, path)
		select {
		case w.events <- path:
		case <-w.done:
		}
	})
}

// Stop stops watching and closes the events channel
func (w *FolderWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.mu.Lock()
		started := w.started
		w.mu.Unlock()
		if started {
			<-w.loopDone
		}

		w.mu.Lock()
		w.stopped = true
		for path, timer := range w.pending {
			timer.Stop()
			delete(w.pending, path)
		}
		close(w.events)
		w.mu.Unlock()
	})
	return err
}
