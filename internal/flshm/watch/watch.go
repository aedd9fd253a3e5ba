// Package watch provides a best-effort fsnotify watch over a segment's
// backing filesystem path, for platform backends that expose one. It is
// never load-bearing: every caller must still be able to fall back to
// polling Channel.TickOf, since most backends (SysV shared memory, a
// POSIX named semaphore with no stable path, a Windows named file
// mapping) expose no filesystem object to watch at all.
package watch

import (
	"errors"
	"log"

	"github.com/fsnotify/fsnotify"
)

// ErrUnwatchable is returned by New when the underlying segment exposes
// no filesystem path an fsnotify.Watcher can observe.
var ErrUnwatchable = errors.New("flshm/watch: segment exposes no watchable path")

// PathSource is implemented by a platform backend that can name a
// filesystem path standing in for its segment. None of this module's
// three backends (SysV shared memory, the macOS POSIX semaphore, the
// Windows named file mapping) currently satisfy it; it exists so a
// future backend (e.g. POSIX shared memory under /dev/shm) can opt in
// without changing this package.
type PathSource interface {
	WatchPath() (string, bool)
}

// TickFunc is called with the segment's current tick after a write event
// on its watched path.
type TickFunc func(tick uint32)

// TickSource reads the current tick, used to resolve a raw fsnotify
// write event into the value callers actually want.
type TickSource interface {
	TickOf() (uint32, error)
}

// Watcher is an fsnotify watch over a single segment path.
type Watcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
}

// New starts watching src's backing path for write events, invoking fn
// with the freshly read tick on each one. It returns ErrUnwatchable if
// src exposes no path (the common case for this module's backends).
func New(src PathSource, ticks TickSource, fn TickFunc) (*Watcher, error) {
	path, ok := src.WatchPath()
	if !ok {
		return nil, ErrUnwatchable
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}

	watcher := &Watcher{w: fw, done: make(chan struct{})}
	go watcher.loop(ticks, fn)
	return watcher, nil
}

func (w *Watcher) loop(ticks TickSource, fn TickFunc) {
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			tick, err := ticks.TickOf()
			if err != nil {
				log.Printf("ERROR: watch: failed to read tick after segment event: %v", err)
				continue
			}
			fn(tick)

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			log.Printf("ERROR: watch: segment watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return w.w.Close()
}
