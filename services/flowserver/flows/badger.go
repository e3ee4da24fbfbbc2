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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

const flowKeyPrefix = "flow:"

// BadgerStore persists flows in the embedded BadgerDB shared with the rest
// of flowserver.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a Store over an already-open database.
func NewBadgerStore(db *badger.DB) (*BadgerStore, error) {
	if db == nil {
		return nil, errors.New("db must not be nil")
	}
	return &BadgerStore{db: db}, nil
}

func flowKey(id string) []byte {
	return []byte(flowKeyPrefix + id)
}

// GetFlow implements Store.
func (s *BadgerStore) GetFlow(_ context.Context, id, ownerID string) (*datatypes.Flow, error) {
	if err := ValidateFlowID(id); err != nil {
		return nil, err
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(flowKey(id))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("flow %s: %w", id, datatypes.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read flow %s: %w", id, err)
	}

	var flow datatypes.Flow
	if err := json.Unmarshal(raw, &flow); err != nil {
		return nil, fmt.Errorf("decode flow %s: %w", id, err)
	}

	// An ownership mismatch reads exactly like a missing flow so callers
	// cannot probe for other owners' flows.
	if flow.OwnerID != ownerID {
		return nil, fmt.Errorf("flow %s: %w", id, datatypes.ErrNotFound)
	}
	return &flow, nil
}

// SaveFlow implements Store.
func (s *BadgerStore) SaveFlow(_ context.Context, flow *datatypes.Flow) error {
	if flow == nil {
		return errors.New("flow must not be nil")
	}
	if err := ValidateFlowID(flow.ID); err != nil {
		return err
	}
	if flow.OwnerID == "" {
		return fmt.Errorf("flow %s has no owner: %w", flow.ID, datatypes.ErrInvalidInput)
	}
	flow.UpdatedAt = time.Now().UnixMilli()

	raw, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("encode flow %s: %w", flow.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(flowKey(flow.ID), raw)
	})
}

// DeleteFlow implements Store.
func (s *BadgerStore) DeleteFlow(ctx context.Context, id, ownerID string) error {
	// Reuse the ownership check; a non-owner sees NotFound here too.
	if _, err := s.GetFlow(ctx, id, ownerID); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(flowKey(id))
	})
}

var _ Store = (*BadgerStore)(nil)
