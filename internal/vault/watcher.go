package vault

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces bursts of raw file-system events into one batch.
const debounceWindow = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the vault root and delivers debounced
// batches of changed paths (relative to root, slash-separated) until ctx is
// cancelled. New directories created at runtime are added to the watch list;
// hidden dot-entries never produce events, so the index directory inside the
// vault cannot feed back into the watch loop.
func Watch(ctx context.Context, root string, logger *slog.Logger) (<-chan []string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addDirsRecursive(w, root); err != nil {
		w.Close()
		return nil, err
	}

	out := make(chan []string, 16)

	go func() {
		defer w.Close()
		defer close(out)

		logger.Info("watcher: started", slog.String("root", root))

		// flushTimer debounces event bursts into one coalesced batch.
		var flushTimer *time.Timer
		var flushCh <-chan time.Time
		pending := make(map[string]struct{})

		scheduleFlush := func() {
			if flushTimer == nil {
				flushTimer = time.NewTimer(debounceWindow)
				flushCh = flushTimer.C
			} else {
				flushTimer.Reset(debounceWindow)
			}
		}

		enqueue := func(abs string) {
			rel, relErr := filepath.Rel(root, abs)
			if relErr != nil || hiddenPath(rel) {
				return
			}
			pending[filepath.ToSlash(rel)] = struct{}{}
			scheduleFlush()
		}

		for {
			select {
			case <-ctx.Done():
				if flushTimer != nil {
					flushTimer.Stop()
				}
				logger.Info("watcher: stopped")
				return

			case <-flushCh:
				if len(pending) == 0 {
					continue
				}
				batch := make([]string, 0, len(pending))
				for p := range pending {
					batch = append(batch, p)
				}
				sort.Strings(batch)
				pending = make(map[string]struct{})
				select {
				case out <- batch:
				case <-ctx.Done():
					return
				}

			case ev, ok := <-w.Events:
				if !ok {
					return
				}

				// --- Handle new directories: add to watcher ---
				if ev.Op&fsnotify.Create != 0 {
					if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
						if hiddenPath(relOrSelf(root, ev.Name)) {
							continue
						}
						if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
							logger.Warn("watcher: add new dir failed",
								slog.String("path", ev.Name),
								slog.String("error", addErr.Error()))
						} else {
							logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
						}
						// Queue files that landed before the watch was added.
						enqueueDirFiles(ev.Name, enqueue)
						continue
					}
				}

				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				enqueue(ev.Name)

			case watchErr, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher: error", slog.String("error", watchErr.Error()))
			}
		}
	}()

	return out, nil
}

// hiddenPath reports whether any segment of a relative path is a dot-entry.
func hiddenPath(rel string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}

func relOrSelf(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return abs
	}
	return rel
}

// enqueueDirFiles queues every visible file already present in a newly
// watched directory.
func enqueueDirFiles(dir string, enqueue func(abs string)) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		enqueue(path)
		return nil
	})
}

// addDirsRecursive adds root and all its visible subdirectories to the
// watcher.
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
