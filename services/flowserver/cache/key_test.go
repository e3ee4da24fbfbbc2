// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

func TestKey_Deterministic(t *testing.T) {
	graph := datatypes.GraphDefinition{"nodes": []any{map[string]any{"id": "a"}}}
	inputs := map[string]any{"x": 1, "y": "two"}

	k1 := Key(graph, inputs, "sess-1")
	k2 := Key(graph, map[string]any{"y": "two", "x": 1}, "sess-1")
	assert.Equal(t, k1, k2, "key must not depend on map insertion order")
	assert.Len(t, k1, 64)
}

func TestKey_DiscriminatesComponents(t *testing.T) {
	graph := datatypes.GraphDefinition{"nodes": []any{}}
	inputs := map[string]any{"x": 1}
	base := Key(graph, inputs, "s")

	assert.NotEqual(t, base, Key(graph, inputs, "other"), "session id must participate")
	assert.NotEqual(t, base, Key(graph, map[string]any{"x": 2}, "s"), "inputs must participate")
	assert.NotEqual(t, base,
		Key(datatypes.GraphDefinition{"nodes": []any{map[string]any{"id": "n"}}}, inputs, "s"),
		"graph must participate")
}

func TestKey_UnserializableInputNeverAliases(t *testing.T) {
	graph := datatypes.GraphDefinition{}
	bad := map[string]any{"ch": make(chan int)}

	k1 := Key(graph, bad, "s")
	k2 := Key(graph, bad, "s")
	assert.NotEqual(t, k1, k2, "unserializable inputs must yield one-off keys")
}
