// Package watch monitors a session's target file for modifications made
// outside the session while it is streaming.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Monitor watches a single file and records whether anything other than the
// session wrote to it. The session brackets its own persists with
// Mask/Unmask so they are not counted.
type Monitor struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	path    string
	masked  int
	changed bool
	done    chan struct{}
}

// Start begins watching the file at path. The parent directory is watched
// because editors and atomic writers replace files via rename, which the
// file's own watch would lose.
func Start(path string) (*Monitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting file monitor: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	m := &Monitor{watcher: watcher, path: path, done: make(chan struct{})}
	go m.run(watcher)
	return m, nil
}

func (m *Monitor) run(watcher *fsnotify.Watcher) {
	defer close(m.done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != m.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				m.mu.Lock()
				if m.masked == 0 {
					m.changed = true
				}
				m.mu.Unlock()
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// Watcher errors are non-fatal; external-change detection is
			// best-effort.
		}
	}
}

// Mask suppresses change recording while the session performs its own write.
func (m *Monitor) Mask() {
	m.mu.Lock()
	m.masked++
	m.mu.Unlock()
}

// Unmask re-enables change recording.
func (m *Monitor) Unmask() {
	m.mu.Lock()
	if m.masked > 0 {
		m.masked--
	}
	m.mu.Unlock()
}

// Changed reports whether the file was modified outside a masked window.
func (m *Monitor) Changed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changed
}

// Stop closes the watcher and waits for the event loop to exit. Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	w := m.watcher
	m.watcher = nil
	m.mu.Unlock()
	if w == nil {
		return
	}
	w.Close()
	<-m.done
}
