// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph defines the evaluator contract the orchestration layer
// dispatches to. The interpreter that turns a graph definition into a result
// lives behind this interface; the orchestration layer only launches it,
// caches around it, and normalizes what comes back.
package graph

import (
	"context"
	"fmt"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// Result is what one evaluation produces.
//
// The msgpack tags must mirror the json tags: persistent cache stores
// serialize results with msgpack, and a cached result has to decode to the
// same {"result", "session_id"} envelope the normalization layer unwraps.
type Result struct {
	// Value is the evaluation output. Shape is evaluator-defined.
	Value any `json:"result" msgpack:"result"`

	// SessionID correlates follow-up calls of one interactive exchange.
	// Evaluators echo the incoming id or mint one when absent.
	SessionID string `json:"session_id" msgpack:"session_id"`
}

// Evaluator evaluates a graph definition with the given inputs.
//
// Implementations must be safe for concurrent use: the local backend calls
// Evaluate on request goroutines and the worker pool calls it from several
// workers at once.
type Evaluator interface {
	Evaluate(ctx context.Context, def datatypes.GraphDefinition, inputs map[string]any, sessionID string) (*Result, error)
}

// EchoEvaluator is a minimal evaluator for development and tests. It walks
// the definition's nodes and reports each node's effective parameters merged
// with the request inputs, so tweak application is observable end to end.
type EchoEvaluator struct{}

// Evaluate implements Evaluator.
func (EchoEvaluator) Evaluate(_ context.Context, def datatypes.GraphDefinition, inputs map[string]any, sessionID string) (*Result, error) {
	if def == nil {
		return nil, fmt.Errorf("graph definition is empty")
	}

	nodes := map[string]any{}
	if rawNodes, ok := def["nodes"].([]any); ok {
		for _, raw := range rawNodes {
			node, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			id, ok := node["id"].(string)
			if !ok {
				continue
			}
			nodes[id] = nodeParams(node)
		}
	}

	return &Result{
		Value: map[string]any{
			"nodes":  nodes,
			"inputs": inputs,
		},
		SessionID: sessionID,
	}, nil
}

// nodeParams flattens a node's template into field -> live value.
func nodeParams(node map[string]any) map[string]any {
	params := map[string]any{}
	root := node
	if data, ok := node["data"].(map[string]any); ok {
		root = data
		if inner, ok := data["node"].(map[string]any); ok {
			if template, ok := inner["template"].(map[string]any); ok {
				root = template
			} else {
				root = inner
			}
		}
	}
	for field, raw := range root {
		if wrapper, ok := raw.(map[string]any); ok {
			if v, ok := wrapper["value"]; ok {
				params[field] = v
				continue
			}
		}
		params[field] = raw
	}
	return params
}

var _ Evaluator = EchoEvaluator{}
