// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package flows

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
	"github.com/vbarsoum1/langflow/services/flowserver/storage/badgerdb"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	db, err := badgerdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewBadgerStore(db)
	require.NoError(t, err)
	return s
}

func testFlow(ownerID string) *datatypes.Flow {
	return &datatypes.Flow{
		ID:      uuid.NewString(),
		Name:    "test flow",
		OwnerID: ownerID,
		Data: datatypes.GraphDefinition{
			"nodes": []any{map[string]any{"id": "nodeA", "data": map[string]any{"value": 1}}},
		},
	}
}

func TestBadgerStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	flow := testFlow("user-1")
	require.NoError(t, s.SaveFlow(ctx, flow))

	got, err := s.GetFlow(ctx, flow.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, flow.ID, got.ID)
	assert.Equal(t, "test flow", got.Name)
	assert.NotZero(t, got.UpdatedAt)
	require.Contains(t, got.Data, "nodes")
}

func TestBadgerStore_GetUnknownFlow(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetFlow(context.Background(), uuid.NewString(), "user-1")
	assert.ErrorIs(t, err, datatypes.ErrNotFound)
}

func TestBadgerStore_MalformedIDIsInvalidInput(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetFlow(context.Background(), "not-a-uuid", "user-1")
	assert.ErrorIs(t, err, datatypes.ErrInvalidInput)
	assert.NotErrorIs(t, err, datatypes.ErrNotFound,
		"malformed ids must be distinguishable from missing flows")
}

func TestBadgerStore_OwnershipMismatchReadsAsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	flow := testFlow("owner")
	require.NoError(t, s.SaveFlow(ctx, flow))

	_, err := s.GetFlow(ctx, flow.ID, "intruder")
	assert.ErrorIs(t, err, datatypes.ErrNotFound,
		"another owner's flow must not be observable")
}

func TestBadgerStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	flow := testFlow("user-1")
	require.NoError(t, s.SaveFlow(ctx, flow))

	require.ErrorIs(t, s.DeleteFlow(ctx, flow.ID, "intruder"), datatypes.ErrNotFound)
	require.NoError(t, s.DeleteFlow(ctx, flow.ID, "user-1"))

	_, err := s.GetFlow(ctx, flow.ID, "user-1")
	assert.ErrorIs(t, err, datatypes.ErrNotFound)
}

func TestBadgerStore_SaveValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.SaveFlow(ctx, &datatypes.Flow{ID: "bad-id", OwnerID: "u"})
	assert.ErrorIs(t, err, datatypes.ErrInvalidInput)

	err = s.SaveFlow(ctx, &datatypes.Flow{ID: uuid.NewString()})
	assert.ErrorIs(t, err, datatypes.ErrInvalidInput)
}
