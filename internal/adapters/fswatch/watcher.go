// Package fswatch watches a directory tree for SQL file changes using
// github.com/fsnotify/fsnotify. It recursively watches the root, filters to
// .sql files, and debounces rapid events (editors often trigger multiple
// writes per save). Used by the CLI watch command for lint-on-save.
package fswatch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Directories never worth descending into.
var ignoreDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".venv":        true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
}

const debounceInterval = 50 * time.Millisecond

// Watcher watches for .sql file changes under a root directory.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	mu      sync.Mutex
	stopped bool
}

// New creates a watcher. Call Watch to start it and Stop to release it.
func New() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fw: fw, done: make(chan struct{})}, nil
}

// Watch starts monitoring root recursively. onChange is called with the
// absolute path of each changed .sql file, debounced. New subdirectories
// are picked up as they appear.
func (w *Watcher) Watch(root string, onChange func(path string)) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			if ignoreDirs[info.Name()] && path != absRoot {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	debounce := make(map[string]time.Time)
	var dmu sync.Mutex

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name

				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(path); err == nil && info.IsDir() {
						if !ignoreDirs[info.Name()] {
							w.fw.Add(path)
						}
						continue
					}
				}

				if !isSQL(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				dmu.Lock()
				last := debounce[path]
				now := time.Now()
				debounce[path] = now
				dmu.Unlock()
				if now.Sub(last) < debounceInterval {
					continue
				}

				onChange(path)
			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
			case <-w.done:
				return
			}
		}
	}()
	return nil
}

// Stop halts watching. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.done)
	w.fw.Close()
}

func isSQL(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sql")
}
