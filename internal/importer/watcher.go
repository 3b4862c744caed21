package importer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/canvas/internal/checksum"
)

// settleDelay batches the burst of write events editors emit for one save.
const settleDelay = 150 * time.Millisecond

// ImportedFunc is called after a watcher-driven import.
type ImportedFunc func(path, postID string)

// Watch imports files as they are created or modified until ctx is
// cancelled. New subdirectories are watched automatically. Removing a file
// leaves its post in place.
func (im *Importer) Watch(ctx context.Context, cb ImportedFunc) error {
	root := im.files.Root()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	im.logger.Info("import watcher: started", slog.String("root", root))

	pending := make(map[string]struct{})
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	schedule := func(rel string) {
		pending[rel] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(settleDelay)
			timerCh = timer.C
			return
		}
		timer.Reset(settleDelay)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			im.logger.Info("import watcher: stopped")
			return nil

		case <-timerCh:
			for rel := range pending {
				im.importChanged(ctx, rel, cb)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						im.logger.Warn("import watcher: add dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
						continue
					}
					_ = filepath.WalkDir(ev.Name, func(p string, d fs.DirEntry, err error) error {
						if err == nil && !d.IsDir() && strings.HasSuffix(p, ".md") {
							if rel, relErr := filepath.Rel(root, p); relErr == nil {
								schedule(filepath.ToSlash(rel))
							}
						}
						return nil
					})
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil || strings.HasPrefix(filepath.Base(rel), ".") {
				continue
			}
			schedule(filepath.ToSlash(rel))

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.logger.Error("import watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// importChanged imports rel unless its content matches the last import.
func (im *Importer) importChanged(ctx context.Context, rel string, cb ImportedFunc) {
	data, err := im.files.Read(rel)
	if err != nil {
		im.logger.Warn("import watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	src, err := im.sources.GetImportSource(ctx, rel)
	if err != nil {
		im.logger.Warn("import watcher: lookup failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if src != nil && src.Checksum == checksum.Sum(data) {
		return
	}

	id, err := im.ImportFile(ctx, rel, data)
	if err != nil {
		im.logger.Warn("import watcher: save failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	im.logger.Info("import watcher: saved", slog.String("path", rel), slog.String("post_id", id))
	if cb != nil {
		cb(rel, id)
	}
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
