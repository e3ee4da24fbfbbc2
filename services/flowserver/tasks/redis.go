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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

const (
	queueKey        = "langflow:tasks:queue"
	recordKeyPrefix = "langflow:tasks:record:"
)

// RedisBackendConfig tunes the distributed backend.
type RedisBackendConfig struct {
	// RecordTTL is how long task records outlive their last write.
	// Default: 24h.
	RecordTTL time.Duration

	// PollInterval is how often Execute re-reads the record while
	// awaiting completion. Default: 250ms.
	PollInterval time.Duration

	// AwaitTimeout bounds Execute. On expiry the task is marked failed;
	// a timeout surfaces as a failure record, not a distinct state.
	// Default: 5m.
	AwaitTimeout time.Duration
}

// DefaultRedisBackendConfig returns production defaults.
func DefaultRedisBackendConfig() RedisBackendConfig {
	return RedisBackendConfig{
		RecordTTL:    24 * time.Hour,
		PollInterval: 250 * time.Millisecond,
		AwaitTimeout: 5 * time.Minute,
	}
}

// queuedTask is the wire shape pushed onto the work queue.
type queuedTask struct {
	TaskID string `json:"task_id"`
	Spec   *Spec  `json:"spec"`
}

// RedisBackend hands evaluations to a worker pool through a Redis list and
// reads results back from Redis-held records. Records carry a TTL, so the
// backend owns its own retention; an expired record reads as NotFound.
type RedisBackend struct {
	client *redis.Client
	config RedisBackendConfig
}

// NewRedisBackend creates a distributed backend over an existing client.
func NewRedisBackend(client *redis.Client, config RedisBackendConfig) (*RedisBackend, error) {
	if client == nil {
		return nil, errors.New("client must not be nil")
	}
	if config.RecordTTL <= 0 {
		config.RecordTTL = DefaultRedisBackendConfig().RecordTTL
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultRedisBackendConfig().PollInterval
	}
	if config.AwaitTimeout <= 0 {
		config.AwaitTimeout = DefaultRedisBackendConfig().AwaitTimeout
	}
	return &RedisBackend{client: client, config: config}, nil
}

// Kind implements Backend.
func (b *RedisBackend) Kind() BackendKind { return BackendDistributed }

// Ping reports whether the worker-pool transport is reachable. Used for the
// startup capability check before the backend is selected.
func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %s", datatypes.ErrBackendUnavailable, err)
	}
	return nil
}

// Submit implements Backend: write a pending record, enqueue, return.
func (b *RedisBackend) Submit(ctx context.Context, spec *Spec) (*Handle, *Record, error) {
	handle := NewHandle(BackendDistributed)
	record := &Record{
		TaskID:    handle.ID,
		Status:    StatusPending,
		SessionID: spec.SessionID,
		UpdatedAt: time.Now().UnixMilli(),
	}
	if err := b.writeRecord(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", datatypes.ErrBackendUnavailable, err)
	}

	payload, err := json.Marshal(queuedTask{TaskID: handle.ID, Spec: spec})
	if err != nil {
		return nil, nil, fmt.Errorf("encode task %s: %w", handle.ID, err)
	}
	if err := b.client.LPush(ctx, queueKey, payload).Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", datatypes.ErrBackendUnavailable, err)
	}
	return handle, record, nil
}

// Execute implements Backend: Submit, then poll the record until terminal.
func (b *RedisBackend) Execute(ctx context.Context, spec *Spec) (*Handle, *Record, error) {
	handle, _, err := b.Submit(ctx, spec)
	if err != nil {
		return nil, nil, err
	}

	deadline := time.NewTimer(b.config.AwaitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(b.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return handle, nil, ctx.Err()
		case <-deadline.C:
			record := &Record{
				TaskID:    handle.ID,
				Status:    StatusFailed,
				Error:     fmt.Sprintf("timed out after %s awaiting worker", b.config.AwaitTimeout),
				SessionID: spec.SessionID,
				UpdatedAt: time.Now().UnixMilli(),
			}
			// Best effort: a worker that finishes later loses the race
			// and its terminal write is refused.
			_ = b.completeRecord(ctx, record)
			return handle, record, fmt.Errorf("task %s: %w", handle.ID, datatypes.ErrBackendUnavailable)
		case <-ticker.C:
			record, err := b.Status(ctx, handle.ID)
			if err != nil {
				return handle, nil, err
			}
			if !record.Status.Terminal() {
				continue
			}
			if record.Status == StatusFailed {
				return handle, record, fmt.Errorf("%w: %s", datatypes.ErrEvaluation, record.Error)
			}
			return handle, record, nil
		}
	}
}

// Status implements Backend.
func (b *RedisBackend) Status(ctx context.Context, taskID string) (*Record, error) {
	raw, err := b.client.Get(ctx, recordKeyPrefix+taskID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("task %s: %w", taskID, datatypes.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", datatypes.ErrBackendUnavailable, err)
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode task record %s: %w", taskID, err)
	}
	return &record, nil
}

// writeRecord unconditionally stores a record with the configured TTL.
func (b *RedisBackend) writeRecord(ctx context.Context, record *Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode task record %s: %w", record.TaskID, err)
	}
	return b.client.Set(ctx, recordKeyPrefix+record.TaskID, raw, b.config.RecordTTL).Err()
}

// completeRecord stores a terminal record unless the existing one is already
// terminal, so two writers cannot both land a terminal state.
func (b *RedisBackend) completeRecord(ctx context.Context, record *Record) error {
	_, err := b.writeUnlessTerminal(ctx, record)
	return err
}

// markRunning records the running transition for a popped task. A false
// return means the record already reached a terminal state (the submitter
// timed out first) and the task must not execute.
func (b *RedisBackend) markRunning(ctx context.Context, record *Record) (bool, error) {
	return b.writeUnlessTerminal(ctx, record)
}

// writeUnlessTerminal stores record unless the existing one is already
// terminal. The read-check-write runs under a WATCH transaction; every
// transition after submit goes through here, so no writer can move a record
// out of a terminal state. Reports whether the write happened.
func (b *RedisBackend) writeUnlessTerminal(ctx context.Context, record *Record) (bool, error) {
	key := recordKeyPrefix + record.TaskID
	wrote := false
	err := b.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var existing Record
			if jerr := json.Unmarshal(raw, &existing); jerr == nil && existing.Status.Terminal() {
				// Terminal states are immutable.
				return nil
			}
		}
		encoded, err := json.Marshal(record)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, b.config.RecordTTL)
			return nil
		})
		if err == nil {
			wrote = true
		}
		return err
	}, key)
	return wrote, err
}

var _ Backend = (*RedisBackend)(nil)
