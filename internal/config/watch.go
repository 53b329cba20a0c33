package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the config file and invokes apply with the freshly loaded
// config after each change. It blocks until ctx is canceled. Editors and
// orchestrators typically replace the file rather than write in place, so the
// parent directory is watched and events are filtered by name.
func Watch(ctx context.Context, path string, logger *slog.Logger, apply func(*Config)) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("fsnotify unavailable, live config reload disabled", "error", err)
		return
	}
	defer w.Close() //nolint:errcheck

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		logger.Warn("watching config directory failed, live config reload disabled",
			slog.String("dir", dir), slog.Any("error", err))
		return
	}

	target := filepath.Clean(path)
	logger.Debug("config watcher starting", slog.String("path", target))

	// Debounce timer coalescing bursts of write events into a single reload.
	// Starts stopped; reset on each relevant event.
	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			logger.Debug("config watcher stopping")
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			debounce.Reset(500 * time.Millisecond)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Error("config watcher error", "error", err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			cfg, err := Load(path)
			if err != nil {
				logger.Error("reloading config", "error", err)
				continue
			}
			logger.Info("config reloaded", slog.String("path", target))
			apply(cfg)
		}
	}
}
