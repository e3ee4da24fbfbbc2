// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
	"github.com/vbarsoum1/langflow/services/flowserver/flows"
	"github.com/vbarsoum1/langflow/services/flowserver/middleware"
	"github.com/vbarsoum1/langflow/services/flowserver/observability"
	"github.com/vbarsoum1/langflow/services/flowserver/tasks"
	"github.com/vbarsoum1/langflow/services/flowserver/tweaks"
)

// ProcessFlow runs a stored flow: resolve, tweak, dispatch, respond.
//
// The flow id is validated before storage is consulted, so a malformed id
// reads as 400 while a missing flow reads as 404. Tweak merge problems are
// logged and swallowed; evaluation proceeds with whatever merged.
func ProcessFlow(store flows.Store, dispatcher *tasks.Dispatcher) gin.HandlerFunc {
	metrics := observability.DefaultMetrics()

	return func(c *gin.Context) {
		flowID := c.Param("flowId")

		var req datatypes.ProcessRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			metrics.RequestsTotal.WithLabelValues("process", "error").Inc()
			respondError(c, datatypes.ErrInvalidInput)
			return
		}

		if err := flows.ValidateFlowID(flowID); err != nil {
			metrics.RequestsTotal.WithLabelValues("process", "error").Inc()
			respondError(c, err)
			return
		}

		user := middleware.GetUser(c)
		if user == nil {
			metrics.RequestsTotal.WithLabelValues("process", "error").Inc()
			respondError(c, datatypes.ErrUnauthorized)
			return
		}

		flow, err := store.GetFlow(c.Request.Context(), flowID, user.OwnerID)
		if err != nil {
			metrics.RequestsTotal.WithLabelValues("process", "error").Inc()
			respondError(c, err)
			return
		}

		graphData := flow.Data
		if len(req.Tweaks) > 0 {
			merged, applied := tweaks.Apply(flow.Data, req.Tweaks)
			graphData = merged
			metrics.TweaksApplied.Add(float64(applied))
			if skipped := len(req.Tweaks) - applied; skipped > 0 {
				metrics.TweaksSkipped.Add(float64(skipped))
				slog.Warn("some tweaks did not match the graph",
					"flow_id", flowID, "applied", applied, "skipped", skipped)
			}
		}

		spec := &tasks.Spec{
			Graph:      graphData,
			Inputs:     req.Inputs,
			ClearCache: req.ClearCache,
			SessionID:  req.SessionID,
		}

		if req.Synchronous() {
			outcome, err := dispatcher.LaunchAndAwait(c.Request.Context(), spec)
			if err != nil {
				metrics.RequestsTotal.WithLabelValues("process", "error").Inc()
				respondError(c, err)
				return
			}
			metrics.RequestsTotal.WithLabelValues("process", "success").Inc()
			c.JSON(http.StatusOK, datatypes.ProcessResponse{
				ID:        outcome.TaskID,
				Result:    outcome.Result,
				SessionID: outcome.SessionID,
			})
			return
		}

		handle, record, err := dispatcher.Launch(c.Request.Context(), spec)
		if err != nil {
			metrics.RequestsTotal.WithLabelValues("process", "error").Inc()
			respondError(c, err)
			return
		}
		metrics.RequestsTotal.WithLabelValues("process", "success").Inc()
		c.JSON(http.StatusOK, datatypes.ProcessResponse{
			ID:        handle.ID,
			Result:    string(record.Status),
			SessionID: spec.SessionID,
		})
	}
}
