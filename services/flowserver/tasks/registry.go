// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// registry holds task records for the local backend. It enforces the status
// state machine: once a record is terminal no transition can touch it.
//
// Retention is bounded: past the cap, the oldest terminal records
// are evicted so a long-lived process does not keep one record per dispatch
// forever. In-flight records are never evicted; an evicted task id reads as
// ErrNotFound, the same as an expired record on the distributed backend.
type registry struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string
	cap     int
}

const defaultRegistryCap = 4096

func newRegistry() *registry {
	return newRegistryWithCap(defaultRegistryCap)
}

func newRegistryWithCap(cap int) *registry {
	if cap <= 0 {
		cap = defaultRegistryCap
	}
	return &registry{records: make(map[string]*Record), cap: cap}
}

// create registers a pending record for the handle and session.
func (r *registry) create(taskID, sessionID string) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &Record{
		TaskID:    taskID,
		Status:    StatusPending,
		SessionID: sessionID,
		UpdatedAt: time.Now().UnixMilli(),
	}
	r.records[taskID] = rec
	r.order = append(r.order, taskID)
	r.evictLocked()
	return copyRecord(rec)
}

// evictLocked drops the oldest terminal records while over capacity. Caller
// holds the write lock.
func (r *registry) evictLocked() {
	for len(r.records) > r.cap {
		idx := -1
		for i, id := range r.order {
			if r.records[id].Status.Terminal() {
				idx = i
				break
			}
		}
		if idx == -1 {
			return
		}
		delete(r.records, r.order[idx])
		r.order = append(r.order[:idx], r.order[idx+1:]...)
	}
}

// transition advances a record. Transitions out of a terminal state are
// refused; the stored terminal record stays exactly as it completed.
func (r *registry) transition(taskID string, status Status, result any, taskErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[taskID]
	if !ok {
		return fmt.Errorf("task %s: %w", taskID, datatypes.ErrNotFound)
	}
	if rec.Status.Terminal() {
		return fmt.Errorf("task %s already %s", taskID, rec.Status)
	}
	rec.Status = status
	rec.Result = result
	rec.Error = taskErr
	rec.UpdatedAt = time.Now().UnixMilli()
	return nil
}

// get returns a copy of the record so readers never alias writer state.
func (r *registry) get(taskID string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, datatypes.ErrNotFound)
	}
	return copyRecord(rec), nil
}

func copyRecord(rec *Record) *Record {
	c := *rec
	return &c
}
