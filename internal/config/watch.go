// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// WatchOption configures Watch.
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
	logger   *slog.Logger
}

// withDebounce sets how long Watch waits after the last event before reloading.
func withDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) { o.debounce = d }
}

// WithWatchLogger sets the logger for reload failures.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(o *watchOptions) { o.logger = l }
}

// Watch calls onChange with the re-read config whenever path is written,
// created or replaced. A file that fails to load or validate is logged and
// skipped, so onChange only ever sees valid configs. Watch blocks until ctx
// is done.
//
// The parent directory is watched rather than the file, since editors
// commonly save by renaming a temp file over the original.
func Watch(ctx context.Context, path string, onChange func(*Config), opts ...WatchOption) error {
	o := watchOptions{debounce: DefaultDebounce, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	var (
		mu      sync.Mutex
		pending *time.Timer
	)
	reload := func() {
		cfg, err := LoadFromPath(absPath)
		if err != nil {
			o.logger.Warn("config reload skipped", "path", absPath, "error", err)
			return
		}
		o.logger.Debug("config reloaded", "path", absPath)
		onChange(cfg)
	}
	defer func() {
		mu.Lock()
		if pending != nil {
			pending.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(o.debounce, reload)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.logger.Warn("config watcher error", "error", err)
		}
	}
}
