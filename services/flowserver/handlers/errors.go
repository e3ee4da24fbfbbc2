// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements flowserver's HTTP handlers. The error
// taxonomy maps to HTTP status codes here and nowhere else; lower layers
// return typed sentinels and never see gin.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// respondError translates a typed error into an HTTP response.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, datatypes.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, datatypes.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, datatypes.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}
