package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses the burst of events editors emit for one save.
const debounce = 500 * time.Millisecond

// Watch reloads c from path whenever the file is written or replaced, until
// ctx is cancelled. The parent directory is watched so atomic renames are seen.
func (c *Catalog) Watch(ctx context.Context, path string, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()

		var timer <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					timer = time.After(debounce)
				}
			case <-timer:
				timer = nil
				if err := c.Reload(path); err != nil {
					log.Warn("catalog reload failed, keeping previous catalog", "path", path, "error", err)
					continue
				}
				log.Info("catalog reloaded", "path", path, "exercises", c.Len())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("catalog watcher", "error", err)
			}
		}
	}()
	return nil
}
