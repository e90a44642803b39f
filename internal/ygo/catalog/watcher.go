package catalog

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates cached catalogs when their files change on disk, e.g.
// when a second instance of the application re-syncs a language. It watches
// the catalog directory and maps filenames back to languages.
type Watcher struct {
	cache   *Cache
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher starts watching the store's directory for catalog file changes.
// Close must be called to release the underlying watcher.
func NewWatcher(store *Store, cache *Cache) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fsWatcher.Add(store.Dir()); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", store.Dir(), err)
	}

	w := &Watcher{
		cache:   cache,
		watcher: fsWatcher,
		done:    make(chan struct{}),
	}
	go w.run()

	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			lang, ok := LanguageForFile(filepath.Base(event.Name))
			if !ok {
				continue
			}
			log.Printf("[CatalogWatcher] %s changed on disk, invalidating %q cache", filepath.Base(event.Name), lang)
			w.cache.Invalidate(lang)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[CatalogWatcher] watch error: %v", err)
		}
	}
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
