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

import "errors"

// Error taxonomy for the flow execution layer.
//
// Lower components wrap these sentinels with context via fmt.Errorf and %w.
// Only the HTTP handlers translate them into status codes; nothing below the
// handler layer is allowed to produce HTTP-shaped errors.
var (
	// ErrNotFound indicates an unknown flow or task handle.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the caller's identity does not own the
	// requested flow.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput indicates a malformed flow identifier or a tweak
	// payload broken at a level the merge engine cannot skip.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEvaluation indicates graph evaluation failed. The underlying
	// message is preserved for diagnostics.
	ErrEvaluation = errors.New("evaluation failed")

	// ErrBackendUnavailable indicates the distributed worker pool is
	// unreachable. Not retried at this layer.
	ErrBackendUnavailable = errors.New("execution backend unavailable")
)

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsUnauthorized reports whether err is (or wraps) ErrUnauthorized.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsInvalidInput reports whether err is (or wraps) ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
