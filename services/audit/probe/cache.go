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
	"log/slog"
	"time"

	"github.com/AleutianAI/DocAudit/services/audit/store"
)

// linkCachePrefix namespaces probe results inside the shared store.
const linkCachePrefix = "link:"

// StoreCache is the badger-backed cross-run probe cache.
//
// Entries expire via the store's TTL support; a Get after expiry
// simply misses and the URL is re-probed.
type StoreCache struct {
	store *store.Store
	ttl   time.Duration
}

// NewStoreCache wraps a store as a probe cache with the given TTL.
func NewStoreCache(s *store.Store, ttl time.Duration) *StoreCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StoreCache{store: s, ttl: ttl}
}

// Get implements Cache.
func (c *StoreCache) Get(rawURL string) (Result, bool) {
	data, found, err := c.store.Get(linkCachePrefix + rawURL)
	if err != nil {
		slog.Warn("Link cache read failed",
			"url", rawURL,
			"error", err)
		return Result{}, false
	}
	if !found {
		return Result{}, false
	}

	r, err := UnmarshalResult(data)
	if err != nil {
		// Corrupt entry; drop it and re-probe.
		_ = c.store.Delete(linkCachePrefix + rawURL)
		return Result{}, false
	}
	return r, true
}

// Put implements Cache. Skipped and exempted results are not cached:
// both depend on per-run state (rate budget, exemption list), not on
// the remote resource.
func (c *StoreCache) Put(rawURL string, r Result) {
	if r.Status != StatusReachable && r.Status != StatusUnreachable {
		return
	}

	data, err := MarshalResult(r)
	if err != nil {
		return
	}
	if err := c.store.SetTTL(linkCachePrefix+rawURL, data, c.ttl); err != nil {
		slog.Warn("Link cache write failed",
			"url", rawURL,
			"error", err)
	}
}
