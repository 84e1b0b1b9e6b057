// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	cases := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"markdown write", fsnotify.Event{Name: "a.md", Op: fsnotify.Write}, true},
		{"markdown create", fsnotify.Event{Name: "b.md", Op: fsnotify.Create}, true},
		{"markdown remove", fsnotify.Event{Name: "c.md", Op: fsnotify.Remove}, true},
		{"markdown rename", fsnotify.Event{Name: "d.md", Op: fsnotify.Rename}, true},
		{"markdown chmod", fsnotify.Event{Name: "e.md", Op: fsnotify.Chmod}, false},
		{"upper-case extension", fsnotify.Event{Name: "F.MD", Op: fsnotify.Write}, true},
		{"other file", fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}, false},
		{"editor swap file", fsnotify.Event{Name: ".a.md.swp", Op: fsnotify.Write}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, relevant(tc.ev))
		})
	}
}

func TestNewDefaultDebounce(t *testing.T) {
	w := New("docs", 0, func(ctx context.Context) error { return nil })
	assert.Equal(t, defaultDebounce, w.debounce)

	w = New("docs", time.Second, nil)
	assert.Equal(t, time.Second, w.debounce)
}

func TestRunNilContext(t *testing.T) {
	w := New("docs", 0, func(ctx context.Context) error { return nil })
	assert.Error(t, w.Run(nil))
}

func TestRunTriggersOnMarkdownChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("# A\n"), 0o640))

	var runs atomic.Int32
	w := New(root, 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The immediate first run.
	require.Eventually(t, func() bool { return runs.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("# A changed\n"), 0o640))

	require.Eventually(t, func() bool { return runs.Load() >= 2 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunIgnoresNonMarkdown(t *testing.T) {
	root := t.TempDir()

	var runs atomic.Int32
	w := New(root, 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o640))
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int32(1), runs.Load(), "non-markdown changes do not trigger runs")

	cancel()
	<-done
}

func TestAddRecursiveSkipsHiddenDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "guides"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o750))

	fsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer fsw.Close()

	require.NoError(t, addRecursive(fsw, root))

	watched := fsw.WatchList()
	assert.Contains(t, watched, root)
	assert.Contains(t, watched, filepath.Join(root, "guides"))
	assert.NotContains(t, watched, filepath.Join(root, ".git"))
	assert.NotContains(t, watched, filepath.Join(root, "node_modules"))
}
