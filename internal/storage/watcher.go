package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after a watcher-observed document change.
// kind is one of "added", "removed".
type EventCallback func(kind string, filename string)

// Watch starts an fsnotify watcher on the uploads directory and
// processes file change events until ctx is cancelled. It calls cb (if
// non-nil) for each document added to or removed from the directory.
//
// Create and Write events for the same file are debounced so a single
// slow copy into the directory announces the document once, after
// writes have settled.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	const settle = 300 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case now := <-ticker.C:
			for name, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, name)
				logger.Debug("watcher: document added", slog.String("filename", name))
				if cb != nil {
					cb("added", name)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".") || !AllowedName(name) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[name] = time.Now()

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, name)
				logger.Debug("watcher: document removed", slog.String("filename", name))
				if cb != nil {
					cb("removed", name)
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
