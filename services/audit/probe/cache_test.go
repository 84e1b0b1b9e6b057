// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/DocAudit/services/audit/store"
)

func openCache(t *testing.T, ttl time.Duration) (*StoreCache, *store.Store) {
	t.Helper()
	s, err := store.Open(store.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewStoreCache(s, ttl), s
}

func TestStoreCacheRoundTrip(t *testing.T) {
	cache, _ := openCache(t, time.Hour)

	in := Result{
		URL:       "https://example.com",
		Status:    StatusReachable,
		CheckedAt: time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC),
	}
	cache.Put("https://example.com", in)

	out, ok := cache.Get("https://example.com")
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestStoreCacheMiss(t *testing.T) {
	cache, _ := openCache(t, time.Hour)

	_, ok := cache.Get("https://never-seen.example")
	assert.False(t, ok)
}

func TestStoreCacheSkipsNonTerminalStatuses(t *testing.T) {
	cache, _ := openCache(t, time.Hour)

	cache.Put("https://a.example", Result{URL: "https://a.example", Status: StatusSkipped})
	cache.Put("https://b.example", Result{URL: "https://b.example", Status: StatusExempted})

	_, ok := cache.Get("https://a.example")
	assert.False(t, ok, "rate-limit skips depend on per-run budget")
	_, ok = cache.Get("https://b.example")
	assert.False(t, ok, "exemptions depend on the current list")
}

func TestStoreCacheExpiry(t *testing.T) {
	cache, _ := openCache(t, 50*time.Millisecond)

	cache.Put("https://example.com", Result{URL: "https://example.com", Status: StatusReachable})

	_, ok := cache.Get("https://example.com")
	require.True(t, ok)

	time.Sleep(120 * time.Millisecond)

	_, ok = cache.Get("https://example.com")
	assert.False(t, ok, "expired entries force a re-probe")
}

func TestStoreCacheDropsCorruptEntries(t *testing.T) {
	cache, s := openCache(t, time.Hour)

	require.NoError(t, s.Set("link:https://example.com", []byte("{not json")))

	_, ok := cache.Get("https://example.com")
	assert.False(t, ok)

	_, found, err := s.Get("link:https://example.com")
	require.NoError(t, err)
	assert.False(t, found, "corrupt entry was deleted")
}
