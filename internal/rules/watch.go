package rules

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultReloadDebounce = 300 * time.Millisecond

// ReloadFunc observes the outcome of each reload attempt.
type ReloadFunc func(t *Table, err error)

// Watch reloads path into engine whenever the file changes. A file that fails
// to load is reported and the previous table stays active. It blocks until ctx
// is done.
func Watch(ctx context.Context, path string, engine *Engine, logger *slog.Logger, onReload ReloadFunc) error {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files by rename, so watch the directory and filter.
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve rules path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch rules dir: %w", err)
	}
	logger.Info("rules_watch_start", "path", abs)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRulesEvent(event, abs) {
				continue
			}
			if !pending {
				timer.Reset(defaultReloadDebounce)
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("rules_watch_error", "error", err)
		case <-timer.C:
			pending = false
			t, err := LoadFile(abs)
			if err != nil {
				logger.Warn("rules_reload_failed", "path", abs, "error", err)
			} else {
				engine.Replace(t)
				logger.Info("rules_reloaded", "path", abs, "rules", t.Len())
			}
			if onReload != nil {
				onReload(t, err)
			}
		}
	}
}

func isRulesEvent(event fsnotify.Event, abs string) bool {
	if filepath.Clean(event.Name) != abs {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
