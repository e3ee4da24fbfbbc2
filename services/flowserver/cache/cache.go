// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache deduplicates graph evaluations.
//
// A ComputationCache sits between the task backends and the graph evaluator.
// It guarantees at most one in-flight computation per key: concurrent callers
// for the same key coalesce onto the running computation via singleflight and
// all observe the same result. Failed computations are never stored.
//
// The backing Store is pluggable (in-memory LRU, BadgerDB, Redis) and may
// evict entries at any point between requests; a miss is always a valid,
// just slower, response.
package cache

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/vbarsoum1/langflow/services/flowserver/observability"
)

// ComputeFunc produces the value for a cache key. It is invoked at most once
// per key across all concurrent callers.
type ComputeFunc func(ctx context.Context) (any, error)

// Store is the backing storage for computed results.
//
// Implementations must be safe for concurrent use and must serialize writes
// so two writers cannot leave divergent values for the same key.
type Store interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key string) (any, bool, error)

	// Set stores the value under key, replacing any previous entry.
	Set(ctx context.Context, key string, value any) error

	// Delete removes the entry for key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}

// ComputationCache wraps a Store with per-key computation dedup.
type ComputationCache struct {
	store   Store
	flight  singleflight.Group
	metrics *observability.Metrics

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a ComputationCache over the given store.
func New(store Store) *ComputationCache {
	return &ComputationCache{store: store, metrics: observability.DefaultMetrics()}
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss.
//
// When clear is true any existing entry is invalidated first, so compute runs
// at least once and its result replaces the old value. When compute fails the
// error propagates to every coalesced caller and nothing is stored: the next
// call with the same key recomputes.
func (c *ComputationCache) GetOrCompute(ctx context.Context, key string, clear bool, compute ComputeFunc) (any, error) {
	if clear {
		if err := c.store.Delete(ctx, key); err != nil {
			return nil, err
		}
	} else {
		value, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			c.hits.Add(1)
			c.metrics.CacheHits.Inc()
			return value, nil
		}
	}
	c.misses.Add(1)
	c.metrics.CacheMisses.Inc()

	value, err, _ := c.flight.Do(key, func() (any, error) {
		// A coalesced caller that lost the race to start the flight may
		// arrive after the winner already stored; the winner's return
		// value is shared by singleflight, so no re-read is needed here.
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(ctx, key, v); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Invalidate removes the cached entry for key.
func (c *ComputationCache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Stats returns cumulative hit and miss counts.
func (c *ComputationCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
