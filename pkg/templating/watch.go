package templating

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is the quiet period after the last change before Watch
// reloads. Changes arriving within it are batched into one Refresh.
var WatchDebounce = 100 * time.Millisecond

func isTemplateFile(name string) bool {
	return strings.HasSuffix(name, pageSuffix) || strings.HasSuffix(name, partialSuffix)
}

// Watch starts reloading templates whenever a page or partial in the
// template directory is created, written, removed or renamed. The watch is
// active when Watch returns and stops when ctx is cancelled.
func (tm *TemplateManager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create template watcher: %w", err)
	}
	dir := tm.GetTemplateDir()
	if err = w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch template dir %s: %w", dir, err)
	}

	tm.logger.Info("Watching template directory", slog.String("dir", dir))
	go tm.watchLoop(ctx, w)
	return nil
}

func (tm *TemplateManager) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer func(w *fsnotify.Watcher) {
		_ = w.Close()
	}(w)

	timer := time.NewTimer(WatchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			tm.logger.Info("Template watcher stopped")
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod || !isTemplateFile(event.Name) {
				continue
			}
			tm.logger.Debug("Template change detected",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()))
			timer.Reset(WatchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			tm.logger.Warn("Template watcher error", slog.String("error", err.Error()))
		case <-timer.C:
			if err := tm.Refresh(); err != nil {
				tm.logger.Error("Template reload failed, keeping previous set", slog.String("error", err.Error()))
			}
		}
	}
}
