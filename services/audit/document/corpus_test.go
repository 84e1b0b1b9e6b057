// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o640))
}

func TestCorpusLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "guides/setup.md", "# Setup\n")
	writeFile(t, root, "architecture/data-model.md", "# Data Model\n")
	writeFile(t, root, "readme.txt", "not markdown")
	writeFile(t, root, ".hidden/skipped.md", "# Hidden\n")
	writeFile(t, root, "node_modules/dep/readme.md", "# Vendored\n")

	corpus, err := Load(context.Background(), root)
	require.NoError(t, err)

	require.Equal(t, 2, corpus.Len())
	// Docs come back sorted by relative path.
	assert.Equal(t, "architecture/data-model.md", corpus.Docs[0].RelPath)
	assert.Equal(t, "guides/setup.md", corpus.Docs[1].RelPath)

	assert.True(t, corpus.Contains("guides/setup.md"))
	assert.False(t, corpus.Contains("guides/missing.md"))

	doc, ok := corpus.Get("architecture/data-model.md")
	require.True(t, ok)
	assert.Equal(t, TypeArchitecture, doc.Type)
}

func TestCorpusLoadNilContext(t *testing.T) {
	_, err := Load(nil, t.TempDir()) //nolint:staticcheck
	assert.Error(t, err)
}

func TestCorpusLoadEmptyRoot(t *testing.T) {
	corpus, err := Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, corpus.Len())
}
