// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesToStderr(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Stderr: &buf})

	logger.Info("flow started", "flow_id", "f-1")
	assert.Contains(t, buf.String(), "flow started")
	assert.Contains(t, buf.String(), "f-1")
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Stderr: &buf})

	logger.Debug("too quiet")
	logger.Info("still too quiet")
	logger.Warn("loud enough")

	out := buf.String()
	assert.NotContains(t, out, "too quiet")
	assert.Contains(t, out, "loud enough")
}

func TestLoggerFileOutput(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, LogDir: dir, Service: "testsvc", Stderr: &buf})

	logger.Info("persisted line")
	require.NoError(t, logger.Close())

	files, err := filepath.Glob(filepath.Join(dir, "testsvc_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "persisted line")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(content)), "{"))
}

func TestLoggerExporter(t *testing.T) {
	exporter := NewBufferedExporter()
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Exporter: exporter, Stderr: &buf})

	logger.Error("evaluation failed", "task_id", "t-1")
	require.NoError(t, logger.Close())

	entries := exporter.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0].Level)
	assert.Equal(t, "evaluation failed", entries[0].Message)
	assert.Equal(t, "t-1", entries[0].Attrs["task_id"])
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Stderr: &buf}).With("session_id", "s-1")

	logger.Info("hello")
	assert.Contains(t, buf.String(), "s-1")
}

func TestBadLogDirDegradesToStderr(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, LogDir: "/dev/null/nope", Stderr: &buf})

	logger.Info("still works")
	assert.Contains(t, buf.String(), "still works")
	assert.NoError(t, logger.Close())
}
