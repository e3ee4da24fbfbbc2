// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for flowserver.
//
// # Description
//
// This package implements Prometheus metrics for monitoring flow execution.
// Metrics include:
//   - Request counters (by endpoint and status)
//   - Task dispatch counters (by backend and mode)
//   - Evaluation latency histograms
//   - Cache hit/miss counters
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "langflow"

// Subsystem for flow execution metrics
const flowSubsystem = "flows"

// Metrics holds all Prometheus metrics for flow execution.
//
// # Fields
//
//   - RequestsTotal: Counter of API requests by endpoint and status
//   - TasksDispatched: Counter of dispatched tasks by backend and mode
//   - TasksFailed: Counter of failed dispatches by backend
//   - EvaluationSeconds: Histogram of graph evaluation duration
//   - CacheHits / CacheMisses: Computation cache effectiveness counters
//   - TweaksApplied / TweaksSkipped: Tweak merge outcome counters
//
// # Thread Safety
//
// All operations are thread-safe.
type Metrics struct {
	// RequestsTotal counts API requests by endpoint and status.
	// Labels: endpoint (process, task_status, all, custom_component, upload),
	// status (success, error)
	RequestsTotal *prometheus.CounterVec

	// TasksDispatched counts dispatched evaluations.
	// Labels: backend (local, distributed), mode (sync, async)
	TasksDispatched *prometheus.CounterVec

	// TasksFailed counts dispatches that ended in error.
	// Labels: backend (local, distributed)
	TasksFailed *prometheus.CounterVec

	// EvaluationSeconds measures graph evaluation duration as observed by
	// the executing backend. Cache-served runs land in the lowest buckets.
	// Labels: backend (local, distributed)
	EvaluationSeconds *prometheus.HistogramVec

	// CacheHits counts computation cache hits.
	CacheHits prometheus.Counter

	// CacheMisses counts computation cache misses.
	CacheMisses prometheus.Counter

	// TweaksApplied counts tweak paths that landed on an existing field.
	TweaksApplied prometheus.Counter

	// TweaksSkipped counts tweak paths dropped for not matching the graph.
	TweaksSkipped prometheus.Counter
}

var (
	defaultMetrics *Metrics
	metricsOnce    sync.Once
)

// DefaultMetrics returns the process-wide metrics instance, registering it
// on the default Prometheus registry on first use.
func DefaultMetrics() *Metrics {
	metricsOnce.Do(func() {
		defaultMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: flowSubsystem,
					Name:      "requests_total",
					Help:      "Total number of API requests by endpoint and status",
				},
				[]string{"endpoint", "status"},
			),

			TasksDispatched: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: flowSubsystem,
					Name:      "tasks_dispatched_total",
					Help:      "Total dispatched evaluations by backend and mode",
				},
				[]string{"backend", "mode"},
			),

			TasksFailed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: flowSubsystem,
					Name:      "tasks_failed_total",
					Help:      "Total dispatches that ended in error by backend",
				},
				[]string{"backend"},
			),

			EvaluationSeconds: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: flowSubsystem,
					Name:      "evaluation_seconds",
					Help:      "Graph evaluation duration in seconds",
					Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
				[]string{"backend"},
			),

			CacheHits: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: flowSubsystem,
					Name:      "cache_hits_total",
					Help:      "Total computation cache hits",
				},
			),

			CacheMisses: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: flowSubsystem,
					Name:      "cache_misses_total",
					Help:      "Total computation cache misses",
				},
			),

			TweaksApplied: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: flowSubsystem,
					Name:      "tweaks_applied_total",
					Help:      "Total tweak paths that landed on an existing field",
				},
			),

			TweaksSkipped: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: flowSubsystem,
					Name:      "tweaks_skipped_total",
					Help:      "Total tweak paths dropped for not matching the graph",
				},
			),
		}
	})
	return defaultMetrics
}
