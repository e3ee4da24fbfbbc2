// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tweaks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// testGraph builds a two-node definition in the stored template shape.
func testGraph() datatypes.GraphDefinition {
	return datatypes.GraphDefinition{
		"nodes": []any{
			map[string]any{
				"id": "nodeA",
				"data": map[string]any{
					"node": map[string]any{
						"template": map[string]any{
							"value": map[string]any{"type": "int", "value": 1},
							"label": "Node A",
						},
					},
				},
			},
			map[string]any{
				"id": "nodeB",
				"data": map[string]any{
					"temperature": 0.7,
				},
			},
		},
		"edges": []any{
			map[string]any{"source": "nodeA", "target": "nodeB"},
		},
	}
}

func TestApply_ValidPaths(t *testing.T) {
	graph := testGraph()

	merged, applied := Apply(graph, datatypes.TweakSet{
		"nodeA.value":       5,
		"nodeB.temperature": 0.2,
	})

	assert.Equal(t, 2, applied)

	// Template fields keep their wrapper map; only the value slot changes.
	nodeA := findNode(merged, "nodeA")
	require.NotNil(t, nodeA)
	field := paramRoot(nodeA)["value"].(map[string]any)
	assert.Equal(t, 5, field["value"])
	assert.Equal(t, "int", field["type"])

	nodeB := findNode(merged, "nodeB")
	require.NotNil(t, nodeB)
	assert.Equal(t, 0.2, paramRoot(nodeB)["temperature"])
}

func TestApply_SourceGraphUntouched(t *testing.T) {
	graph := testGraph()

	_, applied := Apply(graph, datatypes.TweakSet{"nodeA.value": 99})
	require.Equal(t, 1, applied)

	original := paramRoot(findNode(graph, "nodeA"))["value"].(map[string]any)
	assert.Equal(t, 1, original["value"], "stored definition must not be mutated")
}

func TestApply_InvalidPathsAreSkipped(t *testing.T) {
	t.Run("unknown node", func(t *testing.T) {
		merged, applied := Apply(testGraph(), datatypes.TweakSet{
			"ghost.value": 5,
			"nodeA.value": 7,
		})
		assert.Equal(t, 1, applied)
		field := paramRoot(findNode(merged, "nodeA"))["value"].(map[string]any)
		assert.Equal(t, 7, field["value"])
	})

	t.Run("unknown field", func(t *testing.T) {
		_, applied := Apply(testGraph(), datatypes.TweakSet{"nodeA.missing": 1})
		assert.Equal(t, 0, applied)
	})

	t.Run("path without field segment", func(t *testing.T) {
		_, applied := Apply(testGraph(), datatypes.TweakSet{"nodeA": 1, "": 2})
		assert.Equal(t, 0, applied)
	})

	t.Run("scalar in mid path", func(t *testing.T) {
		_, applied := Apply(testGraph(), datatypes.TweakSet{"nodeB.temperature.deep": 1})
		assert.Equal(t, 0, applied)
	})
}

func TestApply_EmptyInputs(t *testing.T) {
	merged, applied := Apply(nil, datatypes.TweakSet{"nodeA.value": 5})
	assert.Nil(t, merged)
	assert.Equal(t, 0, applied)

	graph := testGraph()
	merged, applied = Apply(graph, nil)
	assert.Equal(t, 0, applied)
	assert.Equal(t, graph, merged)
}
