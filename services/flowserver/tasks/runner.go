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

import (
	"context"
	"fmt"

	"github.com/vbarsoum1/langflow/services/flowserver/cache"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
	"github.com/vbarsoum1/langflow/services/flowserver/graph"
)

// Runner is the one evaluation path both backends share: derive the cache
// key, then evaluate through the computation cache. Keeping it in one place
// is what makes "same key, one computation" hold across backends that share
// a cache store.
type Runner struct {
	cache     *cache.ComputationCache
	evaluator graph.Evaluator
}

// NewRunner wires an evaluator behind the computation cache.
func NewRunner(c *cache.ComputationCache, evaluator graph.Evaluator) *Runner {
	return &Runner{cache: c, evaluator: evaluator}
}

// Run evaluates the spec, serving repeated identical requests from the
// cache. Evaluator failures propagate as ErrEvaluation and are never cached.
func (r *Runner) Run(ctx context.Context, spec *Spec) (any, error) {
	key := cache.Key(spec.Graph, spec.Inputs, spec.SessionID)
	return r.cache.GetOrCompute(ctx, key, spec.ClearCache, func(ctx context.Context) (any, error) {
		result, err := r.evaluator.Evaluate(ctx, spec.Graph, spec.Inputs, spec.SessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", datatypes.ErrEvaluation, err)
		}
		return result, nil
	})
}
