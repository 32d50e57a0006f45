package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/nfries/dispmode/internal/logging"
)

// Watcher reports external rewrites of the store file. The display server
// and other processes overwrite it at will; long-running callers use this
// to know their snapshots have gone stale instead of discovering it via a
// failed write precondition.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching the store file. The parent directory is
// watched rather than the file itself: the display server replaces the
// file atomically, which drops a file-level watch.
func NewWatcher(path string) (*Watcher, error) {
	if path == "" {
		path = DefaultPath
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create store watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{path: path, watcher: fw}, nil
}

// Run invokes onChange for every write/create/rename touching the store
// file until ctx is done or the watcher closes.
func (w *Watcher) Run(ctx context.Context, onChange func()) {
	log := logging.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("op", ev.Op.String()).Msg("persisted store changed externally")
			onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("store watcher error")
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
