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

import "github.com/vbarsoum1/langflow/services/flowserver/graph"

// NormalizedResult is the tagged union the dispatch and status boundary
// reduces every task payload to: either a plain value, or a value wrapped
// together with its session id.
type NormalizedResult struct {
	Value     any
	SessionID string

	// Wrapped records which arm of the union the payload matched.
	Wrapped bool
}

// Normalize reduces the shapes a backend may hand back (a typed evaluator
// result, a map carrying a "result" key as persistent stores round-trip
// them, or a raw value) to one NormalizedResult.
//
// Unwrapping happens exactly once, here. Callers never peel payloads
// themselves, and a value that itself contains a "result" key stays intact.
func Normalize(raw any) NormalizedResult {
	switch v := raw.(type) {
	case *graph.Result:
		if v == nil {
			return NormalizedResult{}
		}
		return NormalizedResult{Value: v.Value, SessionID: v.SessionID, Wrapped: true}
	case graph.Result:
		return NormalizedResult{Value: v.Value, SessionID: v.SessionID, Wrapped: true}
	case map[string]any:
		if inner, ok := v["result"]; ok {
			out := NormalizedResult{Value: inner, Wrapped: true}
			if sid, ok := v["session_id"].(string); ok {
				out.SessionID = sid
			}
			return out
		}
		return NormalizedResult{Value: v}
	default:
		return NormalizedResult{Value: raw}
	}
}
