package preview

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the bursts of write events editors emit for a
// single save.
const debounceWindow = 250 * time.Millisecond

// WatchFile watches a single file and calls onChange with its new content
// after each (debounced) modification. Editors that replace the file on save
// are handled by watching the parent directory. Blocks until ctx is
// cancelled.
func WatchFile(ctx context.Context, path string, logger *slog.Logger, onChange func(content string)) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	var timer *time.Timer

	fire := func() {
		content, err := os.ReadFile(target)
		if err != nil {
			logger.Warn("failed to read watched file", "path", target, "error", err)
			return
		}
		onChange(string(content))
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, fire)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)
		}
	}
}
