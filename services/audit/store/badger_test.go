// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestSetGet(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("k", []byte("v")))

	val, found, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	val, found, err := s.Get("absent")
	require.NoError(t, err, "missing keys are not errors")
	assert.False(t, found)
	assert.Nil(t, val)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("k", []byte("v")))
	require.NoError(t, s.Delete("k"))

	_, found, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, s.Delete("never-existed"))
}

func TestKeysPrefixOrder(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("report:2025-11-02T10:00:00Z", []byte("b")))
	require.NoError(t, s.Set("report:2025-11-01T10:00:00Z", []byte("a")))
	require.NoError(t, s.Set("link:https://example.com", []byte("x")))

	keys, err := s.Keys("report:")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"report:2025-11-01T10:00:00Z",
		"report:2025-11-02T10:00:00Z",
	}, keys, "keys come back sorted, other prefixes excluded")

	keys, err = s.Keys("nothing:")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSetTTLExpiry(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetTTL("short", []byte("v"), 50*time.Millisecond))

	_, found, err := s.Get("short")
	require.NoError(t, err)
	assert.True(t, found, "fresh entry is visible")

	time.Sleep(120 * time.Millisecond)

	_, found, err = s.Get("short")
	require.NoError(t, err)
	assert.False(t, found, "expired entry reads as missing")
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Set("k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	val, found, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)
}
