// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package components

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// Custom component validation is structural: the code is never executed
// here. A submission must define a class deriving from CustomComponent with
// a build method; everything else is the author's business.

var (
	classPattern = regexp.MustCompile(`(?m)^class\s+(\w+)\s*\(\s*CustomComponent\s*\)\s*:`)
	buildPattern = regexp.MustCompile(`(?m)^\s+def\s+build\s*\(`)
)

// CustomComponent is one validated code submission.
type CustomComponent struct {
	Code      string
	ClassName string
}

// ValidateCustomComponent checks a code submission structurally. All
// failures wrap ErrInvalidInput so the HTTP layer reports them as 400.
func ValidateCustomComponent(code string) (*CustomComponent, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: code must not be empty", datatypes.ErrInvalidInput)
	}

	match := classPattern.FindStringSubmatch(code)
	if match == nil {
		return nil, fmt.Errorf("%w: code must define a class deriving from CustomComponent",
			datatypes.ErrInvalidInput)
	}
	if !buildPattern.MatchString(code) {
		return nil, fmt.Errorf("%w: component class must define a build method",
			datatypes.ErrInvalidInput)
	}

	return &CustomComponent{Code: code, ClassName: match[1]}, nil
}

// BuildTemplate renders a validated component into the catalog descriptor
// shape, with the source carried in a code template field.
func (c *CustomComponent) BuildTemplate() map[string]any {
	template := map[string]any{
		"_type": c.ClassName,
		"code": map[string]any{
			"type":     "code",
			"required": true,
			"show":     true,
			"value":    c.Code,
		},
	}
	for _, param := range c.buildParams() {
		template[param] = map[string]any{
			"type":     "str",
			"required": false,
			"show":     true,
		}
	}

	return map[string]any{
		"display_name": c.ClassName,
		"description":  c.docstring(),
		"template":     template,
		"base_classes": []any{"CustomComponent"},
	}
}

var buildSignaturePattern = regexp.MustCompile(`(?m)^\s+def\s+build\s*\(([^)]*)\)`)

// buildParams extracts the build method's parameter names, self excluded.
func (c *CustomComponent) buildParams() []string {
	match := buildSignaturePattern.FindStringSubmatch(c.Code)
	if match == nil {
		return nil
	}
	var params []string
	for _, raw := range strings.Split(match[1], ",") {
		name := strings.TrimSpace(raw)
		// Drop type annotations and defaults.
		if idx := strings.IndexAny(name, ":="); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
		if name == "" || name == "self" {
			continue
		}
		params = append(params, name)
	}
	return params
}

var docstringPattern = regexp.MustCompile(`(?s)"""(.*?)"""`)

// docstring returns the first docstring in the code, if any.
func (c *CustomComponent) docstring() string {
	match := docstringPattern.FindStringSubmatch(c.Code)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}
