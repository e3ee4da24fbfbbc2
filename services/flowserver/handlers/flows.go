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
	"github.com/google/uuid"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
	"github.com/vbarsoum1/langflow/services/flowserver/flows"
	"github.com/vbarsoum1/langflow/services/flowserver/middleware"
)

// CreateFlow stores a new flow owned by the caller.
func CreateFlow(store flows.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.GetUser(c)
		if user == nil {
			respondError(c, datatypes.ErrUnauthorized)
			return
		}

		var req datatypes.CreateFlowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, datatypes.ErrInvalidInput)
			return
		}

		flow := &datatypes.Flow{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			OwnerID:     user.OwnerID,
			Data:        req.Data,
		}
		if err := store.SaveFlow(c.Request.Context(), flow); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, flow)
	}
}

// GetFlow returns one of the caller's flows.
func GetFlow(store flows.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.GetUser(c)
		if user == nil {
			respondError(c, datatypes.ErrUnauthorized)
			return
		}

		flowID := c.Param("flowId")
		if err := flows.ValidateFlowID(flowID); err != nil {
			respondError(c, err)
			return
		}

		flow, err := store.GetFlow(c.Request.Context(), flowID, user.OwnerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, flow)
	}
}

// DeleteFlow removes one of the caller's flows.
func DeleteFlow(store flows.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.GetUser(c)
		if user == nil {
			respondError(c, datatypes.ErrUnauthorized)
			return
		}

		flowID := c.Param("flowId")
		if err := flows.ValidateFlowID(flowID); err != nil {
			respondError(c, err)
			return
		}

		if err := store.DeleteFlow(c.Request.Context(), flowID, user.OwnerID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "flow_id": flowID})
	}
}
