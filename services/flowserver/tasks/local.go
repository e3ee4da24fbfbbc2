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
	"time"

	"github.com/vbarsoum1/langflow/services/flowserver/observability"
)

// Backend launches evaluations and answers status queries. Implementations
// must present identical observable behavior; see the package comment.
type Backend interface {
	// Kind identifies the execution strategy.
	Kind() BackendKind

	// Execute dispatches spec and blocks until the task is terminal.
	// The returned record is terminal; err is non-nil when it failed.
	Execute(ctx context.Context, spec *Spec) (*Handle, *Record, error)

	// Submit dispatches spec without waiting and returns the current,
	// typically pending or running, record.
	Submit(ctx context.Context, spec *Spec) (*Handle, *Record, error)

	// Status returns the record for a task id, or ErrNotFound.
	Status(ctx context.Context, taskID string) (*Record, error)
}

// LocalBackend evaluates on the calling goroutine for Execute and on a
// spawned goroutine for Submit. Records live in an in-process registry, so
// task ids from one flowserver process cannot be queried from another.
// Deployments that need that use the distributed backend.
type LocalBackend struct {
	runner   *Runner
	registry *registry
	log      *slog.Logger
	metrics  *observability.Metrics
}

// NewLocalBackend creates a local backend over the shared runner.
func NewLocalBackend(runner *Runner, log *slog.Logger) *LocalBackend {
	if log == nil {
		log = slog.Default()
	}
	return &LocalBackend{
		runner:   runner,
		registry: newRegistry(),
		log:      log,
		metrics:  observability.DefaultMetrics(),
	}
}

// Kind implements Backend.
func (b *LocalBackend) Kind() BackendKind { return BackendLocal }

// Execute implements Backend. The caller's goroutine is suspended for the
// full duration of graph evaluation.
func (b *LocalBackend) Execute(ctx context.Context, spec *Spec) (*Handle, *Record, error) {
	handle := NewHandle(BackendLocal)
	b.registry.create(handle.ID, spec.SessionID)

	record, err := b.run(ctx, handle.ID, spec)
	return handle, record, err
}

// Submit implements Backend. Evaluation continues on a background goroutine
// after Submit returns; the record is pollable via Status.
func (b *LocalBackend) Submit(ctx context.Context, spec *Spec) (*Handle, *Record, error) {
	handle := NewHandle(BackendLocal)
	pending := b.registry.create(handle.ID, spec.SessionID)

	go func() {
		// The request context dies with the HTTP response; the detached
		// task keeps only its values' lifetime, not its deadline.
		if _, err := b.run(context.WithoutCancel(ctx), handle.ID, spec); err != nil {
			b.log.Error("background task failed", "task_id", handle.ID, "error", err)
		}
	}()

	return handle, pending, nil
}

// Status implements Backend.
func (b *LocalBackend) Status(_ context.Context, taskID string) (*Record, error) {
	return b.registry.get(taskID)
}

// run drives one task through the state machine.
func (b *LocalBackend) run(ctx context.Context, taskID string, spec *Spec) (*Record, error) {
	if err := b.registry.transition(taskID, StatusRunning, nil, ""); err != nil {
		return nil, err
	}

	started := time.Now()
	value, err := b.runner.Run(ctx, spec)
	b.metrics.EvaluationSeconds.WithLabelValues(string(BackendLocal)).
		Observe(time.Since(started).Seconds())
	if err != nil {
		_ = b.registry.transition(taskID, StatusFailed, nil, err.Error())
		record, _ := b.registry.get(taskID)
		return record, err
	}

	if terr := b.registry.transition(taskID, StatusSucceeded, value, ""); terr != nil {
		return nil, terr
	}
	record, _ := b.registry.get(taskID)
	return record, nil
}

var _ Backend = (*LocalBackend)(nil)
