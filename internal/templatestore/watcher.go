package templatestore

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long a path must stay quiet before it is re-imported.
// Editors often save a file in several writes.
const debounce = 150 * time.Millisecond

// EventCallback is called after a watcher-driven store change.
// kind is one of "updated", "deleted".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the template directory and processes
// file change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful store mutation.
//
// Writes are debounced per path. Remove and rename events drop the templates
// sourced from the old path immediately, then a short full sync catches the
// new name.
func Watch(ctx context.Context, db *DB, dir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := addDirsRecursive(w, dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dir))

	pending := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	resetTimer := func(t **time.Timer, ch *<-chan time.Time, d time.Duration) {
		if *t == nil {
			*t = time.NewTimer(d)
			*ch = (*t).C
		} else {
			(*t).Reset(d)
		}
	}

	notify := func(kind, rel string) {
		if cb != nil {
			cb(kind, rel)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for rel := range pending {
				delete(pending, rel)
				data, readErr := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				ids, impErr := importFile(db, rel, data)
				if impErr != nil {
					logger.Warn("watcher: import failed", slog.String("path", rel), slog.String("error", impErr.Error()))
					if len(ids) == 0 {
						continue
					}
				}
				logger.Debug("watcher: imported", slog.String("path", rel), slog.Int("templates", len(ids)))
				notify("updated", rel)
			}

		case <-reconcileCh:
			if syncErr := SyncDir(db, dir, logger); syncErr != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", syncErr.Error()))
			} else {
				notify("updated", "")
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					resetTimer(&reconcileTimer, &reconcileCh, 4*debounce)
					continue
				}
			}

			if !isTemplateFile(absPath) {
				continue
			}
			rel, relErr := filepath.Rel(dir, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[rel] = struct{}{}
				resetTimer(&flushTimer, &flushCh, debounce)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, rel)
				ids, delErr := db.DeleteSource(rel)
				if delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				if len(ids) > 0 {
					logger.Debug("watcher: deleted", slog.String("path", rel), slog.Int("templates", len(ids)))
					notify("deleted", rel)
				}
				if ev.Op&fsnotify.Rename != 0 {
					resetTimer(&reconcileTimer, &reconcileCh, 4*debounce)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
