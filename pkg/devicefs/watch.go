package devicefs

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// ExternalChangeWatcher advisorily detects writes to the control directory
// made by something other than the current process, so a long-lived caller
// can be warned that the exclusive-access assumption of spec §5 ("the
// device's on-disk files are assumed under the exclusive control of the
// caller between parse() and write()") may have been violated. It never
// blocks or vetoes a write; it only logs.
type ExternalChangeWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchControlDir starts watching dir for filesystem events and logs a
// warning for each one seen before the watcher is closed.
func WatchControlDir(dir string) (*ExternalChangeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	ecw := &ExternalChangeWatcher{watcher: w, done: make(chan struct{})}
	go ecw.loop()
	return ecw, nil
}

func (w *ExternalChangeWatcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			slog.Warn("device control directory changed externally", "path", ev.Name, "op", ev.Op.String())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("device watcher error", "err", err)
		case <-w.done:
			return
		}
	}
}

// Close stops watching.
func (w *ExternalChangeWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
