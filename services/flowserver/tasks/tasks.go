// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tasks dispatches graph evaluations and tracks their lifecycle.
//
// Two backends implement one contract: LocalBackend runs evaluations inline
// on the caller's goroutine, RedisBackend hands them to a decoupled worker
// pool. The backend is chosen once at startup and injected into the
// Dispatcher. The observable shape of a dispatch (handle, record, status
// transitions, result normalization) is identical either way, so a deployment
// can switch execution strategy without changing its clients.
package tasks

import (
	"time"

	"github.com/google/uuid"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// BackendKind identifies the execution strategy of a backend.
type BackendKind string

const (
	// BackendLocal executes inline on the request goroutine.
	BackendLocal BackendKind = "local"

	// BackendDistributed executes on the worker pool.
	BackendDistributed BackendKind = "distributed"
)

// Status is the lifecycle state of a task.
//
// The machine is pending -> running -> {succeeded, failed}. Terminal states
// are immutable; repeated status queries on a terminal record are idempotent.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Handle identifies one dispatched execution. Immutable after dispatch.
type Handle struct {
	ID        string      `json:"id"`
	Backend   BackendKind `json:"backend"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewHandle mints a handle for the given backend.
func NewHandle(kind BackendKind) *Handle {
	return &Handle{
		ID:        uuid.NewString(),
		Backend:   kind,
		CreatedAt: time.Now(),
	}
}

// Record is the mutable state attached to a handle. Only the backend
// executing the task writes it; the tracker and the handlers read it.
type Record struct {
	TaskID    string `json:"task_id"`
	Status    Status `json:"status"`
	Result    any    `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	UpdatedAt int64  `json:"updated_at"`
}

// Spec describes one evaluation to dispatch. The graph definition is the
// post-tweak derived copy; the stored flow is never handed to a backend.
type Spec struct {
	Graph      datatypes.GraphDefinition `json:"graph"`
	Inputs     map[string]any            `json:"inputs,omitempty"`
	ClearCache bool                      `json:"clear_cache,omitempty"`
	SessionID  string                    `json:"session_id,omitempty"`
}
