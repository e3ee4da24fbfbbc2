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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Set(ctx, fmt.Sprintf("k%d", i), i))
	}

	// Touch k1 so k2 becomes the eviction candidate.
	_, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Set(ctx, "k4", 4))

	_, ok, _ = s.Get(ctx, "k2")
	assert.False(t, ok, "least recently used entry should have been evicted")
	for _, k := range []string{"k1", "k3", "k4"} {
		_, ok, _ = s.Get(ctx, k)
		assert.True(t, ok, "%s should survive eviction", k)
	}
	assert.Equal(t, 3, s.Len())
}

func TestMemoryStore_SetReplacesValue(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "old"))
	require.NoError(t, s.Set(ctx, "k", "new"))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_DeleteAbsentKeyIsNoop(t *testing.T) {
	s := NewMemoryStore(0)
	assert.NoError(t, s.Delete(context.Background(), "missing"))
}
