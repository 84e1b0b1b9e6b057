// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/DocAudit/services/audit/document"
)

var planNow = time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

func buildCorpus(t *testing.T, files map[string]string) (*document.Corpus, string) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o640))
	}
	corpus, err := document.Load(context.Background(), root)
	require.NoError(t, err)
	return corpus, root
}

func expiredLedger() *Ledger {
	return &Ledger{Entries: []Entry{
		{
			Feature:         "v1-auth",
			RemovalDate:     "2025-06-01",
			MigrationPath:   "guides/oauth.md",
			OwningDocuments: []string{"guides/v1-auth.md", "guides/gone.md"},
		},
		{
			Feature:     "future-thing",
			RemovalDate: "2099-01-01",
		},
	}}
}

func TestBuildPlan(t *testing.T) {
	corpus, _ := buildCorpus(t, map[string]string{
		"guides/v1-auth.md": "# V1 Auth\n\nThe old flow.\n",
		"guides/other.md":   "# Other\n\nStill talks about v1-auth here.\n",
		"guides/clean.md":   "# Clean\n\nNothing deprecated.\n",
	})

	plan := BuildPlan(corpus, expiredLedger(), "archive", planNow)

	require.Len(t, plan.Moves, 1)
	assert.Equal(t, Move{
		Feature: "v1-auth",
		From:    "guides/v1-auth.md",
		To:      "archive/guides--v1-auth.md",
	}, plan.Moves[0])

	require.Len(t, plan.References, 1)
	assert.Equal(t, Reference{
		Feature:       "v1-auth",
		Path:          "guides/other.md",
		Line:          3,
		MigrationPath: "guides/oauth.md",
	}, plan.References[0])

	assert.Equal(t, []string{"guides/gone.md"}, plan.MissingOwners)
	assert.False(t, plan.Empty())
}

func TestBuildPlanNothingExpired(t *testing.T) {
	corpus, _ := buildCorpus(t, map[string]string{
		"a.md": "# A\n\nMentions future-thing freely.\n",
	})
	led := &Ledger{Entries: []Entry{{Feature: "future-thing", RemovalDate: "2099-01-01"}}}

	plan := BuildPlan(corpus, led, "archive", planNow)
	assert.True(t, plan.Empty())
	assert.Empty(t, plan.MissingOwners)
}

func TestBuildPlanSkipsArchivedOwnersInReferences(t *testing.T) {
	// The owned document obviously mentions its own feature; it must
	// not also show up as a lingering reference.
	corpus, _ := buildCorpus(t, map[string]string{
		"guides/v1-auth.md": "# V1 Auth\n\nAll about v1-auth.\n",
	})
	led := &Ledger{Entries: []Entry{{
		Feature:         "v1-auth",
		RemovalDate:     "2025-06-01",
		OwningDocuments: []string{"guides/v1-auth.md"},
	}}}

	plan := BuildPlan(corpus, led, "archive", planNow)
	assert.Len(t, plan.Moves, 1)
	assert.Empty(t, plan.References)
}

func TestBuildPlanIgnoresFencedMentions(t *testing.T) {
	corpus, _ := buildCorpus(t, map[string]string{
		"a.md": "# A\n\n```\nv1-auth in code\n```\n",
	})
	led := &Ledger{Entries: []Entry{{Feature: "v1-auth", RemovalDate: "2025-06-01"}}}

	plan := BuildPlan(corpus, led, "archive", planNow)
	assert.Empty(t, plan.References)
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("uses v1-auth today", "v1-auth"))
	assert.True(t, containsWord("v1-auth", "v1-auth"))
	assert.False(t, containsWord("xv1-auth", "v1-auth"), "leading word rune breaks the boundary")
	assert.False(t, containsWord("v1-authz", "v1-auth"))
	assert.False(t, containsWord("anything", ""))
}

func TestApply(t *testing.T) {
	corpus, root := buildCorpus(t, map[string]string{
		"guides/v1-auth.md": "---\ntitle: V1 Auth\n---\n# V1 Auth\n",
	})
	led := &Ledger{Entries: []Entry{{
		Feature:         "v1-auth",
		RemovalDate:     "2025-06-01",
		OwningDocuments: []string{"guides/v1-auth.md"},
	}}}

	plan := BuildPlan(corpus, led, "archive", planNow)
	require.Len(t, plan.Moves, 1)

	require.NoError(t, Apply(plan, root, planNow))

	// Source is gone, destination carries the archive stamp inside the
	// existing front-matter block.
	_, err := os.Stat(filepath.Join(root, "guides", "v1-auth.md"))
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(filepath.Join(root, "archive", "guides--v1-auth.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `archived_at: "2025-11-03T12:00:00Z"`)
	assert.Contains(t, content, `archived_feature: "v1-auth"`)
	assert.Contains(t, content, "title: V1 Auth")
	assert.Contains(t, content, "# V1 Auth")

	// Re-applying the same plan is a no-op.
	require.NoError(t, Apply(plan, root, planNow))
}

func TestApplyCreatesFrontmatterWhenAbsent(t *testing.T) {
	corpus, root := buildCorpus(t, map[string]string{
		"old.md": "# Old\n",
	})
	led := &Ledger{Entries: []Entry{{
		Feature:         "old-feature",
		RemovalDate:     "2025-06-01",
		OwningDocuments: []string{"old.md"},
	}}}

	plan := BuildPlan(corpus, led, "archive", planNow)
	require.NoError(t, Apply(plan, root, planNow))

	data, err := os.ReadFile(filepath.Join(root, "archive", "old.md"))
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "---\n",
		"a front-matter block is created for the stamp")
	assert.Contains(t, string(data), "archived_feature: \"old-feature\"")
}

func TestApplyFailsWhenDocumentVanished(t *testing.T) {
	root := t.TempDir()
	plan := &Plan{Moves: []Move{{Feature: "x", From: "gone.md", To: "archive/gone.md"}}}

	err := Apply(plan, root, planNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source missing and destination absent")
}
