// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store provides the durable, cross-run key-value state of the
// engine: the external link cache and the metrics report history.
//
// Both are append-mostly logs keyed by deterministic keys (URL, run
// timestamp). BadgerDB gives atomic writes and TTL expiry without any
// locking discipline on our side.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Config holds configuration for a store instance.
type Config struct {
	// Path is the directory for BadgerDB files. Required unless
	// InMemory is set.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// Logger receives BadgerDB's internal log output. Nil disables it.
	Logger *slog.Logger
}

// Store is a thin key-value wrapper over BadgerDB.
//
// # Thread Safety
//
// Safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open creates or opens a store.
//
// # Inputs
//
//   - cfg: Store configuration.
//
// # Outputs
//
//   - *Store: Ready-to-use store. Callers must Close.
//   - error: Non-nil if the directory cannot be created or opened.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("store: path is required for persistent mode")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", filepath.Clean(cfg.Path), err)
	}

	return &Store{db: db}, nil
}

// Get returns the value for key, with found=false for missing or
// expired keys.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store get %q: %w", key, err)
	}
	return out, true, nil
}

// Set stores key=value without expiry.
func (s *Store) Set(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// SetTTL stores key=value with an expiry.
func (s *Store) SetTTL(key string, value []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// Delete removes a key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Keys returns all keys with the given prefix, in lexicographic order.
func (s *Store) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store keys %q: %w", prefix, err)
	}
	return keys, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
