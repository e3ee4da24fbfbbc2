// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// ProcessRequest is the body of POST /v1/process/:flowId.
//
// Sync defaults to true: a missing field means "block for the result", which
// matches what interactive clients expect. Use a pointer so the zero value is
// distinguishable from an explicit false.
type ProcessRequest struct {
	Inputs     map[string]any `json:"inputs,omitempty"`
	Tweaks     TweakSet       `json:"tweaks,omitempty"`
	ClearCache bool           `json:"clear_cache"`
	SessionID  string         `json:"session_id,omitempty"`
	Sync       *bool          `json:"sync,omitempty"`
}

// Synchronous reports the effective dispatch mode for the request.
func (r *ProcessRequest) Synchronous() bool {
	return r.Sync == nil || *r.Sync
}

// ProcessResponse is returned by the process/predict endpoints.
type ProcessResponse struct {
	ID        string `json:"id"`
	Result    any    `json:"result"`
	SessionID string `json:"session_id"`
}

// TaskStatusResponse is returned by GET /v1/task/:taskId/status.
type TaskStatusResponse struct {
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
}

// UploadFileResponse is returned by POST /v1/upload/:flowId.
type UploadFileResponse struct {
	FlowID   string `json:"flowId"`
	FilePath string `json:"file_path"`
}

// CustomComponentCode is the body of POST /v1/custom_component.
type CustomComponentCode struct {
	Code string `json:"code" binding:"required"`
}

// CreateFlowRequest is the body of POST /v1/flows.
type CreateFlowRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description,omitempty"`
	Data        GraphDefinition `json:"data" binding:"required"`
}
