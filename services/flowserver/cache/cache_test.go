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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCompute_MissThenHit(t *testing.T) {
	c := New(NewMemoryStore(0))
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) (any, error) {
		calls++
		return "computed", nil
	}

	v, err := c.GetOrCompute(ctx, "k1", false, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls)

	v, err = c.GetOrCompute(ctx, "k1", false, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls, "second call must be served from the store")

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestGetOrCompute_ConcurrentCallersComputeOnce(t *testing.T) {
	c := New(NewMemoryStore(0))
	ctx := context.Background()

	var calls atomic.Int64
	gate := make(chan struct{})
	compute := func(context.Context) (any, error) {
		calls.Add(1)
		<-gate
		return 42, nil
	}

	const goroutines = 16
	results := make([]any, goroutines)
	errs := make([]error, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrCompute(ctx, "shared", false, compute)
		}(i)
	}

	// Give every goroutine time to reach the flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "concurrent same-key callers must coalesce")
	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 42, results[i])
	}
}

func TestGetOrCompute_ClearCacheRecomputes(t *testing.T) {
	c := New(NewMemoryStore(0))
	ctx := context.Background()

	serial := 0
	compute := func(context.Context) (any, error) {
		serial++
		return serial, nil
	}

	v, err := c.GetOrCompute(ctx, "k", false, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = c.GetOrCompute(ctx, "k", true, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "clear must force recomputation even on a warm key")

	v, err = c.GetOrCompute(ctx, "k", false, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "new result must have replaced the old one")
}

func TestGetOrCompute_FailureIsNotCached(t *testing.T) {
	c := New(NewMemoryStore(0))
	ctx := context.Background()

	calls := 0
	boom := errors.New("boom")
	compute := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	_, err := c.GetOrCompute(ctx, "k", false, compute)
	require.ErrorIs(t, err, boom)

	v, err := c.GetOrCompute(ctx, "k", false, compute)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls, "a failed computation must be retried, not memoized")
}

func TestInvalidate(t *testing.T) {
	c := New(NewMemoryStore(0))
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	_, err := c.GetOrCompute(ctx, "k", false, compute)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "k"))

	v, err := c.GetOrCompute(ctx, "k", false, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}
