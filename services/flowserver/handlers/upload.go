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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
	"github.com/vbarsoum1/langflow/services/flowserver/uploads"
)

// UploadFile stores a multipart file under the flow's upload folder and
// returns the stored path. 201 on success.
func UploadFile(store *uploads.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		flowID := c.Param("flowId")

		header, err := c.FormFile("file")
		if err != nil {
			respondError(c, datatypes.ErrInvalidInput)
			return
		}

		file, err := header.Open()
		if err != nil {
			slog.Error("cannot open uploaded file", "flow_id", flowID, "error", err)
			respondError(c, err)
			return
		}
		defer file.Close()

		path, err := store.Save(flowID, header.Filename, file)
		if err != nil {
			slog.Error("cannot store uploaded file", "flow_id", flowID, "error", err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, datatypes.UploadFileResponse{
			FlowID:   flowID,
			FilePath: path,
		})
	}
}
