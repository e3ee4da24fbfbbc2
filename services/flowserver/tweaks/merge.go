// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tweaks applies sparse runtime overrides onto a graph definition.
//
// A tweak names one field of one node with a dotted path ("nodeA.value",
// "nodeB.template.temperature") and carries a replacement value. The merge is
// permissive: overrides only replace targets that already exist, and any key
// that fails to resolve is skipped without aborting the rest. Callers may
// legitimately send tweaks for components that are absent from a particular
// flow revision.
package tweaks

import (
	"strings"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// Apply returns a deep copy of graph with the resolvable entries of tweaks
// applied. The input graph is never mutated. The second return value is the
// number of tweaks that actually landed; the caller decides whether a
// shortfall is worth logging.
func Apply(graph datatypes.GraphDefinition, tweaks datatypes.TweakSet) (datatypes.GraphDefinition, int) {
	merged := graph.Clone()
	if merged == nil || len(tweaks) == 0 {
		return merged, 0
	}

	applied := 0
	for path, value := range tweaks {
		segments := strings.Split(path, ".")
		if len(segments) < 2 || segments[0] == "" {
			continue
		}
		node := findNode(merged, segments[0])
		if node == nil {
			continue
		}
		if setField(paramRoot(node), segments[1:], value) {
			applied++
		}
	}
	return merged, applied
}

// findNode locates a node map by id in the definition's "nodes" list.
func findNode(graph datatypes.GraphDefinition, id string) map[string]any {
	nodes, ok := graph["nodes"].([]any)
	if !ok {
		return nil
	}
	for _, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if nodeID, ok := node["id"].(string); ok && nodeID == id {
			return node
		}
	}
	return nil
}

// paramRoot picks the map tweak paths resolve against. Stored flows keep
// node parameters under data.node.template; hand-written fixtures often put
// them under data or directly on the node.
func paramRoot(node map[string]any) map[string]any {
	data, ok := node["data"].(map[string]any)
	if !ok {
		return node
	}
	inner, ok := data["node"].(map[string]any)
	if !ok {
		return data
	}
	if template, ok := inner["template"].(map[string]any); ok {
		return template
	}
	return inner
}

// setField walks the remaining path segments and replaces the target value.
// Returns false when any segment fails to resolve; it never creates keys.
func setField(root map[string]any, segments []string, value any) bool {
	cur := root
	for i, seg := range segments {
		existing, ok := cur[seg]
		if !ok {
			return false
		}
		if i == len(segments)-1 {
			// Template fields are maps carrying the live value under
			// "value"; replace that slot rather than the whole field.
			if field, ok := existing.(map[string]any); ok {
				if _, ok := field["value"]; ok {
					field["value"] = value
					return true
				}
			}
			cur[seg] = value
			return true
		}
		next, ok := existing.(map[string]any)
		if !ok {
			return false
		}
		cur = next
	}
	return false
}
