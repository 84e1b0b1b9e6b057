// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-runs validation whenever the documentation corpus
// changes on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces editor save bursts into one run.
const defaultDebounce = 500 * time.Millisecond

// Runner is the callback invoked after the corpus settles.
type Runner func(ctx context.Context) error

// Watcher monitors a corpus root recursively and triggers a runner
// after changes settle.
//
// # Thread Safety
//
// One goroutine owns the event loop; Run blocks until the context is
// cancelled.
type Watcher struct {
	root     string
	debounce time.Duration
	run      Runner
}

// New creates a watcher over root. A non-positive debounce uses the
// default.
func New(root string, debounce time.Duration, run Runner) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{root: root, debounce: debounce, run: run}
}

// Run watches until ctx is cancelled.
//
// # Description
//
// Watches every directory under the root (fsnotify is not recursive),
// adds newly created directories as they appear, and triggers the
// runner once per settled burst of markdown changes. Runner errors
// are logged and the watch continues; a broken run must not stop the
// feedback loop.
func (w *Watcher) Run(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("ctx must not be nil")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := addRecursive(fsw, w.root); err != nil {
		return err
	}

	slog.Info("Watching corpus", "root", w.root, "debounce", w.debounce)

	// First run happens immediately so the operator sees current state.
	if err := w.run(ctx); err != nil {
		slog.Error("Run failed", "error", err)
	}

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				// New directories must be watched too.
				addIfDir(fsw, ev.Name)
			}
			if !relevant(ev) {
				continue
			}
			slog.Debug("Corpus change", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.run(ctx); err != nil {
				slog.Error("Run failed", "error", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

// relevant reports whether an event should trigger a run: markdown
// writes, creates, removes, and renames.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.EqualFold(filepath.Ext(ev.Name), ".md")
}

// addRecursive registers root and all non-hidden subdirectories.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// addIfDir adds path to the watch set when it is a directory.
func addIfDir(fsw *fsnotify.Watcher, path string) {
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		return
	}
	if err := addRecursive(fsw, path); err != nil {
		slog.Warn("Could not watch new directory", "path", path, "error", err)
	}
}
