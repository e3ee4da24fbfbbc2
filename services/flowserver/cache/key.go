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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// Key derives the deterministic cache key for one evaluation.
//
// The key covers the post-tweak graph definition, the input values and the
// session id: two evaluations may only share a cached result when all three
// agree. encoding/json sorts map keys, so structurally equal documents hash
// identically regardless of insertion order.
func Key(graph datatypes.GraphDefinition, inputs map[string]any, sessionID string) string {
	payload := struct {
		Graph   datatypes.GraphDefinition `json:"graph"`
		Inputs  map[string]any            `json:"inputs"`
		Session string                    `json:"session"`
	}{graph, inputs, sessionID}

	// Marshal of plain JSON value kinds cannot fail; a non-serializable
	// input value degrades to an unshared one-off key rather than an error,
	// so it can never alias another request's cached result.
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(uuid.NewString())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
