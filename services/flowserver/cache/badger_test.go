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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbarsoum1/langflow/services/flowserver/storage/badgerdb"
)

func newBadgerTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	db, err := badgerdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewBadgerStore(db, 0)
	require.NoError(t, err)
	return s
}

func TestBadgerStore_RoundTrip(t *testing.T) {
	s := newBadgerTestStore(t)
	ctx := context.Background()

	value := map[string]any{
		"result":     "hello",
		"session_id": "sess-1",
		"steps":      []any{"a", "b"},
	}
	require.NoError(t, s.Set(ctx, "k", value))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	decoded, ok := got.(map[string]any)
	require.True(t, ok, "values round-trip as generic maps")
	assert.Equal(t, "hello", decoded["result"])
	assert.Equal(t, "sess-1", decoded["session_id"])
}

func TestBadgerStore_MissAndDelete(t *testing.T) {
	s := newBadgerTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Delete(ctx, "absent"))
}

func TestBadgerStore_SetReplaces(t *testing.T) {
	s := newBadgerTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "old"))
	require.NoError(t, s.Set(ctx, "k", "new"))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got)
}
