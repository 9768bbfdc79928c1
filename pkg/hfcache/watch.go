// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-scans root whenever the cache directory changes on disk,
// debouncing bursts of events (a single blob write can touch several
// paths) before rescanning.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	rescan chan struct{}
}

// NewWatcher creates a Watcher for root. debounce of zero uses a 2 second
// default.
func NewWatcher(root string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		logger:   logger,
		watcher:  fsw,
		rescan:   make(chan struct{}, 1),
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// addTree registers a watch on root and every directory beneath it; cache
// repos are shallow (repo/refs|blobs|snapshots/commit) so this is cheap
// even for a large cache.
func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if fi.IsDir() {
			_ = w.watcher.Add(path)
		}
		return nil
	})
}

// Close releases the underlying filesystem watch.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run blocks until ctx is cancelled, calling onScan with a fresh report
// every time the cache directory settles after a burst of changes (and
// once on start, after the same debounce window).
func (w *Watcher) Run(ctx context.Context, onScan func(*HFCacheInfo)) {
	w.triggerRescan()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = w.watcher.Add(event.Name)
				}
			}
			w.triggerRescan()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("cache watcher error", "error", err)
			}

		case <-w.rescan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				info, err := ScanCacheDir(w.root)
				if err != nil {
					if w.logger != nil {
						w.logger.Warn("rescan failed", "error", err)
					}
					return
				}
				onScan(info)
			})
		}
	}
}

func (w *Watcher) triggerRescan() {
	select {
	case w.rescan <- struct{}{}:
	default:
	}
}
