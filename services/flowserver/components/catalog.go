// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package components serves the component catalog: the native component set
// merged with descriptors loaded from configured custom component
// directories. Collisions never overwrite; the incoming component is
// renamed. A directory watcher invalidates the merged catalog on change, so
// edits to descriptor files show up without a restart.
package components

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog assembles and caches the merged component set.
type Catalog struct {
	paths []string
	log   *slog.Logger

	mu     sync.Mutex
	merged map[string]any
}

// NewCatalog creates a catalog over zero or more custom component
// directories. Duplicate paths are loaded once.
func NewCatalog(paths []string, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	seen := map[string]bool{}
	var unique []string
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}
	return &Catalog{paths: unique, log: log}
}

// All returns the merged catalog, building it on first use. Unreadable
// descriptor files are logged and skipped; they never fail the whole
// catalog.
func (c *Catalog) All() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.merged == nil {
		c.merged = c.build()
	}
	return c.merged
}

// Invalidate discards the cached merge. The next All rebuilds from disk.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.merged = nil
	c.mu.Unlock()
}

func (c *Catalog) build() map[string]any {
	merged := MergeWithRenaming(map[string]any{}, builtinComponents())

	for _, dir := range c.paths {
		custom, err := loadDirectory(dir)
		if err != nil {
			c.log.Warn("skipping custom component directory", "path", dir, "error", err)
			continue
		}
		for category := range custom {
			if inner, ok := custom[category].(map[string]any); ok {
				c.log.Info("loaded custom components",
					"category", category, "count", len(inner), "path", dir)
			}
		}
		merged = MergeWithRenaming(merged, custom)
	}
	return merged
}

// loadDirectory reads every descriptor file under dir. Each file holds one
// or more categories mapping component names to descriptors.
func loadDirectory(dir string) (map[string]any, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	out := map[string]any{}
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		doc, err := loadDescriptorFile(path)
		if err != nil {
			// One bad file never hides the rest of the directory.
			slog.Warn("skipping component descriptor", "path", path, "error", err)
			return nil
		}
		if doc != nil {
			out = MergeWithRenaming(out, doc)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

func loadDescriptorFile(path string) (map[string]any, error) {
	var unmarshal func([]byte, any) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		unmarshal = json.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
