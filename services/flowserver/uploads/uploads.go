// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package uploads stores files attached to flows. Each flow gets its own
// folder under the configured root; file names are sanitized to their base
// name so a crafted name cannot escape the folder.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// Store writes uploaded files under root/<flowID>/<name>.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: upload root must not be empty", datatypes.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Save writes the content under the flow's folder and returns the stored
// path. An existing file with the same name is overwritten.
func (s *Store) Save(flowID, name string, content io.Reader) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: file name must not be empty", datatypes.ErrInvalidInput)
	}

	folder := filepath.Join(s.root, flowID)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("creating flow folder: %w", err)
	}

	path := filepath.Join(folder, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return path, nil
}
