// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

func TestSaveStoresUnderFlowFolder(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save("flow-1", "data.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, "flow-1", filepath.Base(filepath.Dir(path)))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(content))
}

func TestSaveSanitizesName(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	require.NoError(t, err)

	path, err := store.Save("flow-1", "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "flow-1", "passwd"), path)
}

func TestSaveRejectsEmptyName(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("flow-1", "  ", strings.NewReader("x"))
	assert.ErrorIs(t, err, datatypes.ErrInvalidInput)
}

func TestNewStoreRequiresRoot(t *testing.T) {
	_, err := NewStore("")
	assert.ErrorIs(t, err, datatypes.ErrInvalidInput)
}
