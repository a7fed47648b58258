package main

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/soypat/arrview/render"
)

// reloader reports changes to a set of files. Directories are watched so
// editors that replace files are noticed.
type reloader struct {
	w       *fsnotify.Watcher
	files   map[string]bool
	changed time.Time
	settle  time.Duration
}

func newReloader(settle time.Duration, files ...string) (*reloader, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	r := &reloader{w: w, files: make(map[string]bool), settle: settle}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.Close()
			return nil, err
		}
		r.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return r, nil
}

// poll drains pending events without blocking. It returns true once a watched
// file changed and no further change arrived for the settle time.
func (r *reloader) poll(now time.Time) bool {
	for {
		select {
		case ev, ok := <-r.w.Events:
			if !ok {
				return false
			}
			abs, err := filepath.Abs(ev.Name)
			if err == nil && r.files[abs] && ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				r.changed = now
			}
			continue
		case err, ok := <-r.w.Errors:
			if ok {
				render.Logger().Warn("file watcher", "err", err)
			}
			continue
		default:
		}
		break
	}
	if r.changed.IsZero() || now.Sub(r.changed) < r.settle {
		return false
	}
	r.changed = time.Time{}
	return true
}

func (r *reloader) Close() error { return r.w.Close() }
