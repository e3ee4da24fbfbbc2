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
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vbarsoum1/langflow/services/flowserver/observability"
)

// WorkerPool consumes the distributed task queue and executes evaluations
// through the shared runner. It runs inside flowserver by default, but the
// same pool can be hosted in a dedicated worker process pointed at the same
// Redis; the queue is the only coupling.
//
// Concurrency across distinct cache keys is bounded only by Size; same-key
// dedup still holds because every worker runs through the one cache.
type WorkerPool struct {
	backend *RedisBackend
	runner  *Runner
	size    int
	log     *slog.Logger
	metrics *observability.Metrics

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewWorkerPool creates a pool of size workers. Size defaults to 4.
func NewWorkerPool(backend *RedisBackend, runner *Runner, size int, log *slog.Logger) *WorkerPool {
	if size <= 0 {
		size = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &WorkerPool{
		backend: backend,
		runner:  runner,
		size:    size,
		log:     log,
		metrics: observability.DefaultMetrics(),
	}
}

// Start launches the worker goroutines. Idempotent start is not supported;
// call once per pool.
func (p *WorkerPool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.loop(ctx, i)
	}
	p.log.Info("task worker pool started", "workers", p.size)
}

// Stop signals the workers and waits for in-flight tasks to finish. Tasks
// are never cancelled mid-evaluation; once popped they run to completion.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	p.log.Info("task worker pool stopped")
}

// loop pops tasks until the context is cancelled.
func (p *WorkerPool) loop(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.log.With("worker", id)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// The pop timeout doubles as the shutdown poll interval.
		values, err := p.backend.client.BRPop(ctx, 2*time.Second, queueKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("failed to pop task from queue", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if len(values) != 2 {
			continue
		}

		var task queuedTask
		if err := json.Unmarshal([]byte(values[1]), &task); err != nil {
			log.Error("dropping undecodable task payload", "error", err)
			continue
		}
		p.execute(ctx, log, &task)
	}
}

// execute drives one popped task through the record state machine.
func (p *WorkerPool) execute(ctx context.Context, log *slog.Logger, task *queuedTask) {
	started := time.Now()
	running := &Record{
		TaskID:    task.TaskID,
		Status:    StatusRunning,
		SessionID: task.Spec.SessionID,
		UpdatedAt: started.UnixMilli(),
	}
	claimed, err := p.backend.markRunning(ctx, running)
	if err != nil {
		log.Error("failed to mark task running", "task_id", task.TaskID, "error", err)
	} else if !claimed {
		// The submitter timed out and landed a failure record first.
		log.Info("dropping task with terminal record", "task_id", task.TaskID)
		return
	}

	terminal := &Record{
		TaskID:    task.TaskID,
		SessionID: task.Spec.SessionID,
	}
	value, err := p.runner.Run(context.WithoutCancel(ctx), task.Spec)
	p.metrics.EvaluationSeconds.WithLabelValues(string(BackendDistributed)).
		Observe(time.Since(started).Seconds())
	if err != nil {
		terminal.Status = StatusFailed
		terminal.Error = err.Error()
		log.Error("task failed", "task_id", task.TaskID, "error", err,
			"duration_ms", time.Since(started).Milliseconds())
	} else {
		terminal.Status = StatusSucceeded
		terminal.Result = value
		log.Info("task succeeded", "task_id", task.TaskID,
			"duration_ms", time.Since(started).Milliseconds())
	}
	terminal.UpdatedAt = time.Now().UnixMilli()

	if err := p.backend.completeRecord(context.WithoutCancel(ctx), terminal); err != nil {
		log.Error("failed to store task result", "task_id", task.TaskID, "error", err)
	}
}
