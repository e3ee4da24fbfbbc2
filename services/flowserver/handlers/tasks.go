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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
	"github.com/vbarsoum1/langflow/services/flowserver/tasks"
)

// GetTaskStatus reports the lifecycle state of a dispatched task. The
// result field is present only once the task has succeeded.
func GetTaskStatus(tracker *tasks.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := tracker.Status(c.Request.Context(), c.Param("taskId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, datatypes.TaskStatusResponse{
			Status: string(view.Status),
			Result: view.Result,
		})
	}
}
