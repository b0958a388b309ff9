package catalog

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a catalog whenever its backing file changes. It watches the
// parent directory so editors that replace the file by rename are picked up.
// A file that fails to parse or validate is logged and the previous catalog
// stays in place.
type Watcher struct {
	catalog *Catalog
	path    string
	watcher *fsnotify.Watcher

	// OnReload is called after every reload attempt. Nil by default.
	OnReload func(err error)

	done chan struct{}
	once sync.Once
}

// NewWatcher starts watching path. Call Watch to process events and Close to stop.
func NewWatcher(c *Catalog, path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		catalog: c,
		path:    abs,
		watcher: w,
		done:    make(chan struct{}),
	}, nil
}

// Watch blocks until Close is called.
func (w *Watcher) Watch() {
	log.Printf("[Catalog] Watching %s", w.path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[Catalog] Watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	err := w.catalog.LoadFile(w.path)
	if err != nil {
		log.Printf("[Catalog] Reload FAILED: %v (keeping previous catalog)", err)
	}
	if w.OnReload != nil {
		w.OnReload(err)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
