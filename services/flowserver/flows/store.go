// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package flows persists flow definitions and enforces ownership on reads.
package flows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// Store is the flow persistence contract consumed by the handlers.
type Store interface {
	// GetFlow returns the flow with the given id if ownerID owns it.
	//
	// A malformed id fails with ErrInvalidInput, a missing flow with
	// ErrNotFound. An ownership mismatch also fails with ErrNotFound:
	// the caller must not learn that someone else's flow exists.
	GetFlow(ctx context.Context, id, ownerID string) (*datatypes.Flow, error)

	// SaveFlow stores or replaces a flow.
	SaveFlow(ctx context.Context, flow *datatypes.Flow) error

	// DeleteFlow removes a flow owned by ownerID.
	DeleteFlow(ctx context.Context, id, ownerID string) error
}

// ValidateFlowID checks that id is a well-formed flow identifier.
//
// Malformed ids are rejected up front with ErrInvalidInput so they never
// reach storage and get conflated with a missing flow.
func ValidateFlowID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("flow id %q: %w", id, datatypes.ErrInvalidInput)
	}
	return nil
}
