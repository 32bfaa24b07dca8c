// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs corpus processing when command files change on
// disk. Events are debounced so a burst of editor writes triggers one
// rebuild.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler is invoked after the debounce window closes.
type Handler func(ctx context.Context) error

// Watcher monitors a corpus directory tree.
type Watcher struct {
	log      *zap.SugaredLogger
	dir      string
	debounce time.Duration
	handler  Handler
}

// New returns a watcher over dir calling handler after changes settle.
func New(log *zap.Logger, dir string, debounce time.Duration, handler Handler) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{log: log.Sugar(), dir: dir, debounce: debounce, handler: handler}
}

// Run watches until the context is canceled. The handler runs once
// after each settled burst of changes; handler errors are logged, not
// fatal, so a transient parse failure does not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.dir); err != nil {
		return err
	}
	w.log.Infow("watching", "dir", w.dir, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debugw("change detected", "path", ev.Name, "op", ev.Op.String())

			// New category directories need their own watch.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, ev.Name); err != nil {
						w.log.Warnw("watching new directory failed", "path", ev.Name, "error", err)
					}
				}
			}

			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", "error", err)

		case <-timer.C:
			if err := w.handler(ctx); err != nil {
				w.log.Errorw("rebuild failed", "error", err)
			}
		}
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
		}
		return nil
	})
}

// relevant filters events down to command file and directory changes.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, "pb-") && strings.HasSuffix(base, ".md") {
		return true
	}
	// Directory events matter for new categories.
	info, err := os.Stat(ev.Name)
	return err == nil && info.IsDir()
}
