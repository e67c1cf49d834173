package assets

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

// Watcher reports image and region files that changed under a set of
// directories.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching dirs.
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

// Close stops the watcher and closes its channels.
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

// Poll returns the changed image paths seen since the last call without
// blocking. A path is reported once no write to it has been seen for 100ms.
// A JSON region file is reported as its image's path.
func (w *Watcher) Poll() []string {
	var out []string
	for {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return out
			}
			out = append(out, path)
		default:
			return out
		}
	}
}

func (w *Watcher) run() {
	defer close(w.done)
	// One timer per path, pushed back by every event; the path is reported
	// once writes to it have been quiet for the debounce interval.
	pending := make(map[string]*time.Timer)
	ready := make(chan string)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			path, ok := watchedPath(event.Name)
			if !ok {
				continue
			}
			if t, ok := pending[path]; ok {
				t.Reset(debounce)
				continue
			}
			pending[path] = time.AfterFunc(debounce, func() {
				select {
				case ready <- path:
				case <-w.closeCh:
				}
			})
		case path := <-ready:
			delete(pending, path)
			select {
			case w.Events <- path:
			case <-w.closeCh:
				return
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

// watchedPath maps a changed file to the image path to reload.
func watchedPath(path string) (string, bool) {
	if IsImageFile(path) {
		return path, true
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		// Region tables are named after their image; png is the usual pairing.
		return strings.TrimSuffix(path, filepath.Ext(path)) + ".png", true
	}
	return "", false
}
