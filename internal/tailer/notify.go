package tailer

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Notifier signals when the directory holding the followed file reports
// activity for it. Signals are coalesced: at most one is pending.
//
// The parent directory is watched instead of the file so that creation and
// rotation are seen as well as writes.
type Notifier struct {
	watcher *fsnotify.Watcher
	path    string
	wake    chan struct{}
	done    chan struct{}
}

// NewNotifier starts watching the directory of path.
func NewNotifier(path string) (*Notifier, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	n := &Notifier{
		watcher: w,
		path:    abs,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go n.run()
	return n, nil
}

// Wake returns the signal channel.
func (n *Notifier) Wake() <-chan struct{} {
	return n.wake
}

// Close stops the watcher.
func (n *Notifier) Close() error {
	err := n.watcher.Close()
	<-n.done
	return err
}

func (n *Notifier) run() {
	defer close(n.done)
	for {
		select {
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != n.path {
				continue
			}
			select {
			case n.wake <- struct{}{}:
			default:
			}
		case _, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			// Polling still runs on its own tick, so watcher errors are ignored.
		}
	}
}
