// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes holds the request/response shapes and the core data
// model shared by the flowserver handlers and services.
package datatypes

// GraphDefinition is the stored node/edge document of a flow.
//
// The orchestration layer treats it as an opaque structured document: it is
// read, and for tweaks a derived deep copy is produced. The stored original
// is never mutated.
type GraphDefinition map[string]any

// Clone returns a deep copy of the definition.
//
// Only the JSON value kinds (map[string]any, []any, scalars) are copied
// structurally; anything else is carried over by value.
func (g GraphDefinition) Clone() GraphDefinition {
	if g == nil {
		return nil
	}
	return GraphDefinition(deepCopyMap(map[string]any(g)))
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

// Flow is a stored computation graph plus ownership metadata.
type Flow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	OwnerID     string          `json:"owner_id"`
	Data        GraphDefinition `json:"data"`
	UpdatedAt   int64           `json:"updated_at,omitempty"`
}

// TweakSet maps a dotted target path ("nodeID.field" or deeper) to an
// override value. Keys that resolve to nothing in the graph are skipped
// silently; the merge is best-effort, not validating.
type TweakSet map[string]any
