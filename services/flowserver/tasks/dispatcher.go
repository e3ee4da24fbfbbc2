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
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vbarsoum1/langflow/services/flowserver/observability"
)

// Outcome is what a synchronous dispatch hands back to the caller: the
// task identity plus the result already unwrapped into its final shape.
type Outcome struct {
	TaskID    string
	Result    any
	SessionID string
}

// Dispatcher routes evaluations to the configured backend. Callers never
// see which backend ran the work; both produce the same task identity,
// record lifecycle, and result shape.
type Dispatcher struct {
	backend Backend
	log     *slog.Logger
	metrics *observability.Metrics
}

// NewDispatcher wires a dispatcher over a backend.
func NewDispatcher(backend Backend, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		backend: backend,
		log:     log,
		metrics: observability.DefaultMetrics(),
	}
}

// Backend reports which backend kind is in use.
func (d *Dispatcher) Backend() BackendKind { return d.backend.Kind() }

// LaunchAndAwait runs the evaluation to completion and returns the
// normalized outcome. The session id is pinned before dispatch so the
// cache key and the response agree on it.
func (d *Dispatcher) LaunchAndAwait(ctx context.Context, spec *Spec) (*Outcome, error) {
	d.ensureSession(spec)
	d.metrics.TasksDispatched.WithLabelValues(string(d.backend.Kind()), "sync").Inc()

	handle, record, err := d.backend.Execute(ctx, spec)
	if err != nil {
		d.metrics.TasksFailed.WithLabelValues(string(d.backend.Kind())).Inc()
		if handle != nil {
			return &Outcome{TaskID: handle.ID, SessionID: spec.SessionID}, err
		}
		return nil, err
	}

	normalized := Normalize(record.Result)
	session := normalized.SessionID
	if session == "" {
		session = spec.SessionID
	}
	return &Outcome{
		TaskID:    handle.ID,
		Result:    normalized.Value,
		SessionID: session,
	}, nil
}

// Launch enqueues the evaluation and returns immediately with the pending
// record. Results are retrieved later through the tracker.
func (d *Dispatcher) Launch(ctx context.Context, spec *Spec) (*Handle, *Record, error) {
	d.ensureSession(spec)
	d.metrics.TasksDispatched.WithLabelValues(string(d.backend.Kind()), "async").Inc()

	handle, record, err := d.backend.Submit(ctx, spec)
	if err != nil {
		d.metrics.TasksFailed.WithLabelValues(string(d.backend.Kind())).Inc()
		return nil, nil, err
	}
	d.log.Info("task launched", "task_id", handle.ID, "backend", handle.Backend)
	return handle, record, nil
}

// ensureSession pins a session id before the spec reaches the cache key.
func (d *Dispatcher) ensureSession(spec *Spec) {
	if spec.SessionID == "" {
		spec.SessionID = uuid.NewString()
	}
}
