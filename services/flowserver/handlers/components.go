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

	"github.com/vbarsoum1/langflow/services/flowserver/components"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// GetAllComponents serves the merged component catalog.
func GetAllComponents(catalog *components.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, catalog.All())
	}
}

// CustomComponent validates a submitted component and returns its template
// descriptor. Rejections are 400s; the code is never executed.
func CustomComponent() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CustomComponentCode
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, datatypes.ErrInvalidInput)
			return
		}

		component, err := components.ValidateCustomComponent(req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, component.BuildTemplate())
	}
}
