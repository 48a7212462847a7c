// Package watcher notifies the UI when the opened file changes on disk.
//
// The session treats data files as static: a change never triggers a
// re-read, only a status-bar notice telling the user to restart. Watching
// uses fsnotify on the file's directory (editors often replace files rather
// than write in place) with a debounce so a burst of events coalesces into
// one notice.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default coalescing window for change events.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a single file for changes.
type Watcher struct {
	path     string
	debounce time.Duration
	fs       *fsnotify.Watcher
	changes  chan struct{}
}

// New creates a watcher for the given file path.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		fs:       fs,
		changes:  make(chan struct{}, 1),
	}, nil
}

// Changes delivers one value per debounced change of the watched file.
// The channel has capacity 1: a notice not yet consumed absorbs later ones.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run processes events until the context is canceled. It is intended to run
// in its own goroutine (the UI event loop stays single-threaded; only this
// delivery channel crosses between them).
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fired <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fired = timer.C
		case <-fired:
			fired = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			// Watch errors are not worth killing the session over; the
			// notice feature just degrades.
			_ = err
		}
	}
}
