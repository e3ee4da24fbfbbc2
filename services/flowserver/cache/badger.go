// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "cache:"

// BadgerStore persists cached results in an embedded BadgerDB. Entries carry
// an optional TTL; Badger drops them on expiry, which downstream readers just
// observe as a miss.
type BadgerStore struct {
	db    *badger.DB
	codec *codec
	ttl   time.Duration
}

// NewBadgerStore creates a store over an already-open database. A zero ttl
// keeps entries until explicit invalidation or eviction.
func NewBadgerStore(db *badger.DB, ttl time.Duration) (*BadgerStore, error) {
	if db == nil {
		return nil, errors.New("db must not be nil")
	}
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db, codec: c, ttl: ttl}, nil
}

func badgerKey(key string) []byte {
	return []byte(badgerKeyPrefix + key)
}

// Get returns the stored value, treating expired or missing keys as a miss.
func (s *BadgerStore) Get(_ context.Context, key string) (any, bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	value, err := s.codec.decode(raw)
	if err != nil {
		// A corrupt entry is unreadable forever; treat it as a miss so
		// the next computation overwrites it.
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores value under key. Badger transactions serialize conflicting
// writers, so the last committed write wins cleanly.
func (s *BadgerStore) Set(_ context.Context, key string, value any) error {
	raw, err := s.codec.encode(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(badgerKey(key), raw)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes the entry for key.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(badgerKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

var _ Store = (*BadgerStore)(nil)
