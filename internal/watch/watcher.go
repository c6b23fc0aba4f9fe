// Package watch reports edits to the content file made outside the application.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/vitrine/internal/metrics"
	"github.com/starford/vitrine/internal/storage"
)

// EventExternalChange is the kind passed to the callback.
const EventExternalChange = "content.changed"

// DefaultDebounce coalesces the burst of events one save produces.
const DefaultDebounce = 200 * time.Millisecond

// Callback is invoked after an external change has been detected.
type Callback func(kind string, data map[string]string)

// Content watches the directory of store's file until ctx is cancelled.
// Writes whose checksum equals store.LastWritten() are our own and ignored.
//
// The directory is watched rather than the file because saves replace the
// file by rename.
func Content(ctx context.Context, store storage.Provider, debounce time.Duration, logger *slog.Logger, cb Callback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := store.Path()
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", target))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			timer, timerCh = nil, nil
			check(store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// check compares the file on disk with the last write made by store.
func check(store storage.Provider, logger *slog.Logger, cb Callback) {
	data, err := os.ReadFile(store.Path())
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("watcher: content file removed", slog.String("path", store.Path()))
		metrics.ExternalEdits.Inc()
		if cb != nil {
			cb(EventExternalChange, map[string]string{"reason": "removed"})
		}
		return
	}
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("path", store.Path()), slog.String("error", err.Error()))
		return
	}

	if storage.Checksum(data) == store.LastWritten() {
		return
	}
	logger.Info("watcher: content edited outside the app", slog.String("path", store.Path()))
	metrics.ExternalEdits.Inc()
	if cb != nil {
		cb(EventExternalChange, map[string]string{"reason": "modified"})
	}
}
