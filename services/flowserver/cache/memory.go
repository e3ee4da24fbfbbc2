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
	"container/list"
	"context"
	"sync"
)

// DefaultMemoryCapacity bounds the in-memory store when no capacity is given.
const DefaultMemoryCapacity = 512

// MemoryStore is an LRU-bounded in-memory Store. It is the default backing
// store for single-process deployments.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	lru      *list.List
}

type memoryEntry struct {
	key   string
	value any
}

// NewMemoryStore creates a MemoryStore holding at most capacity entries.
// A non-positive capacity falls back to DefaultMemoryCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the stored value and marks the entry most recently used.
func (s *MemoryStore) Get(_ context.Context, key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	s.lru.MoveToFront(elem)
	return elem.Value.(*memoryEntry).value, true, nil
}

// Set stores value under key, evicting the least recently used entry when
// the store is full.
func (s *MemoryStore) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		elem.Value.(*memoryEntry).value = value
		s.lru.MoveToFront(elem)
		return nil
	}

	for s.lru.Len() >= s.capacity {
		oldest := s.lru.Back()
		if oldest == nil {
			break
		}
		s.lru.Remove(oldest)
		delete(s.entries, oldest.Value.(*memoryEntry).key)
	}

	s.entries[key] = s.lru.PushFront(&memoryEntry{key: key, value: value})
	return nil
}

// Delete removes the entry for key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.lru.Remove(elem)
		delete(s.entries, key)
	}
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

var _ Store = (*MemoryStore)(nil)
