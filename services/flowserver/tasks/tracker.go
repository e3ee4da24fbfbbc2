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

import "context"

// StatusView is what the status endpoint serves. For succeeded tasks the
// result is already unwrapped; pending and running views carry no result.
type StatusView struct {
	TaskID    string
	Status    Status
	Result    any
	Error     string
	SessionID string
}

// Tracker answers status queries against whichever backend dispatched the
// task. Unknown and expired ids read identically as NotFound.
type Tracker struct {
	backend Backend
}

// NewTracker wires a tracker over a backend.
func NewTracker(backend Backend) *Tracker {
	return &Tracker{backend: backend}
}

// Status fetches the current record for a task. Succeeded results are
// normalized here so the stored record keeps its original shape.
func (t *Tracker) Status(ctx context.Context, taskID string) (*StatusView, error) {
	record, err := t.backend.Status(ctx, taskID)
	if err != nil {
		return nil, err
	}

	view := &StatusView{
		TaskID:    record.TaskID,
		Status:    record.Status,
		Error:     record.Error,
		SessionID: record.SessionID,
	}
	if record.Status == StatusSucceeded {
		normalized := Normalize(record.Result)
		view.Result = normalized.Value
		if normalized.SessionID != "" {
			view.SessionID = normalized.SessionID
		}
	}
	return view, nil
}
