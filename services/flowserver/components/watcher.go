// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package components

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates the catalog when a custom component directory
// changes. Events are debounced so a burst of writes from an editor save
// triggers one rebuild, not one per write.
type Watcher struct {
	catalog  *Catalog
	paths    []string
	debounce time.Duration
	log      *slog.Logger

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher over the catalog's directories.
func NewWatcher(catalog *Catalog, log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		catalog:  catalog,
		paths:    catalog.paths,
		debounce: 250 * time.Millisecond,
		log:      log,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. Directories that do not exist yet are skipped with
// a warning; they can be picked up on a restart.
func (w *Watcher) Start(ctx context.Context) error {
	watched := 0
	for _, path := range w.paths {
		if err := w.watcher.Add(path); err != nil {
			w.log.Warn("cannot watch component directory", "path", path, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		w.log.Info("component watcher idle, no watchable directories")
	}

	go w.loop(ctx)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("component watcher error", "error", err)
		case <-timerC:
			w.log.Info("custom components changed, reloading catalog")
			w.catalog.Invalidate()
			timer = nil
			timerC = nil
		}
	}
}
