package catalog

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reports changes to a library directory. Events carries the path
// of each changed file relevant to the catalog.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

// Poll drains pending events without blocking and reports whether any
// catalog file changed. Meant to be called once per frame.
func (w *Watcher) Poll() (changed bool, err error) {
	for {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return changed, err
			}
			changed = true
		case e, ok := <-w.Errors:
			if ok && err == nil {
				err = e
			}
		default:
			return changed, err
		}
	}
}

// run reports a file once it has been quiet for watchDebounce, so a save
// that lands in several writes is seen only after the last one.
func (w *Watcher) run() {
	defer close(w.done)

	due := make(map[string]time.Time)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()
	armed := false

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isLibraryFile(event.Name) {
				continue
			}
			due[event.Name] = time.Now().Add(watchDebounce)
			if !armed {
				timer.Reset(watchDebounce)
				armed = true
			}
		case <-timer.C:
			armed = false
			now := time.Now()
			var next time.Time
			for name, at := range due {
				if at.After(now) {
					if next.IsZero() || at.Before(next) {
						next = at
					}
					continue
				}
				delete(due, name)
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
			if !next.IsZero() {
				timer.Reset(next.Sub(now))
				armed = true
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func isLibraryFile(path string) bool {
	if filepath.Base(path) == CatalogFile {
		return true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj", ".mtl":
		return true
	}
	return false
}
