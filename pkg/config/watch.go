package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads path into store whenever the file is written, created or
// renamed into place, then calls onChange with the new snapshot. A file that
// fails to parse leaves the previous snapshot in place. Watch blocks until ctx
// is cancelled.
func Watch(ctx context.Context, path string, store *Store, onChange func(Config), logger *log.Logger) error {
	if store == nil {
		return fmt.Errorf("config: watch requires a store")
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			changed, _ := filepath.Abs(event.Name)
			if changed != target || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := Load(target)
			if err != nil {
				logf(logger, "config: reload failed, keeping previous settings: %v", err)
				continue
			}
			store.Set(cfg)
			logf(logger, "config: reloaded %s", target)
			if onChange != nil {
				onChange(cfg)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logf(logger, "config: watch error: %v", err)
		}
	}
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, args...)
}
