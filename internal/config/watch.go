package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kgraph/kgcore/internal/obslog"
)

var log = obslog.For("config")

// Watcher reloads a Registry's backing file on write, debounced the same
// way the teacher's `bd list --watch` coalesces bursty fsnotify events
// (cmd/bd/list.go: a single debounce timer reset on every qualifying
// event, firing the reload once activity settles).
type Watcher struct {
	watcher *fsnotify.Watcher
	stop    chan struct{}
}

// WatchDebounce is the delay after the last write before reloading,
// matching the teacher's 500ms debounce window.
const WatchDebounce = 500 * time.Millisecond

// Watch starts reloading r from path whenever the file changes, invoking
// onReload after each successful reload (and logging, not propagating,
// reload errors, since a transient write-in-progress should not crash the
// watch loop). Call Stop to end the watch.
func Watch(r *Registry, path string, onReload func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{watcher: fsw, stop: make(chan struct{})}
	go w.loop(r, path, onReload)
	return w, nil
}

func (w *Watcher) loop(r *Registry, path string, onReload func()) {
	var timer *time.Timer
	reload := func() {
		if err := r.v.ReadInConfig(); err != nil {
			log.Warn("config reload failed", "path", path, "err", err)
			return
		}
		if onReload != nil {
			onReload()
		}
	}

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(path) || !event.Has(fsnotify.Write) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(WatchDebounce, reload)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Stop ends the watch and releases the underlying OS handle.
func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
}
