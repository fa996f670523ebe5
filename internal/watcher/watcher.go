// Package watcher bridges file-system events into the annotation engine
// for watch mode: a write to a tracked file rescans just that file, while
// structural changes (create, remove, rename) fold into a debounced
// workspace refresh.
package watcher

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/codemarks/codemarks/internal/config"
	"github.com/codemarks/codemarks/internal/document"
	"github.com/codemarks/codemarks/internal/engine"
)

// Watcher monitors a workspace root and feeds changes to the engine
type Watcher struct {
	fsw    *fsnotify.Watcher
	eng    *engine.Engine
	cfg    config.ScanConfig
	root   string
	done   chan struct{}
	wg     sync.WaitGroup
	closed sync.Once
}

// New creates a watcher for root, delivering events to eng.
func New(root string, cfg config.ScanConfig, eng *engine.Engine) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsw:  fsw,
		eng:  eng,
		cfg:  cfg,
		root: root,
		done: make(chan struct{}),
	}, nil
}

// Start adds recursive directory watches and begins processing events.
func (w *Watcher) Start() error {
	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("failed to add watches under %s: %w", w.root, err)
	}

	w.wg.Add(1)
	go w.processEvents()

	log.Printf("watcher: watching %s", w.root)
	return nil
}

// Stop closes the watcher and waits for the event goroutine to exit.
func (w *Watcher) Stop() error {
	var err error
	w.closed.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

// addWatches walks root and registers every directory that is not ignored.
func (w *Watcher) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("watcher: cannot access %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || w.ignoredDir(path)) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// processEvents routes fsnotify events until the watcher stops.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// handleEvent maps one fsnotify event to an engine action.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories must be watched before their contents change.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.ignoredDir(event.Name) {
				if err := w.fsw.Add(event.Name); err != nil {
					log.Printf("watcher: failed to watch %s: %v", event.Name, err)
				}
			}
			w.eng.Refresh()
			return
		}
	}

	if !w.tracked(event.Name) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Write):
		w.rescanFile(event.Name)
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.eng.Refresh()
	}
}

// rescanFile re-reads one file from disk and replaces its index entry.
func (w *Watcher) rescanFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// The file may already be gone; the next refresh reconciles.
		log.Printf("watcher: cannot read %s: %v", path, err)
		w.eng.Refresh()
		return
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	w.eng.HandleSave(document.New(filepath.ToSlash(rel), string(data)))
}

// tracked checks the extension allow-list and ignore globs for a file.
func (w *Watcher) tracked(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	allowed := false
	for _, e := range w.cfg.Extensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}
	return !w.ignoredPath(path)
}

// ignoredDir matches a directory path against the ignore globs.
func (w *Watcher) ignoredDir(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.matchGlobs(filepath.ToSlash(rel) + "/x")
}

// ignoredPath matches a file path against the ignore globs.
func (w *Watcher) ignoredPath(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.matchGlobs(filepath.ToSlash(rel))
}

func (w *Watcher) matchGlobs(rel string) bool {
	for _, glob := range w.cfg.IgnoreGlobs {
		if ok, err := doublestar.Match(glob, rel); err == nil && ok {
			return true
		}
	}
	return false
}
