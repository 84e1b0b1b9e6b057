// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalLinksResolve(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"guides/a.md": "# A\n\nSee [B](b.md) and [deep](../reference/api.md).\n",
		"guides/b.md": "# B\n",
		"reference/api.md": "# API\n",
	})

	rule := NewInternalLinks()
	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "guides/a.md"), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestInternalLinksBroken(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"guides/a.md": "# A\n\nSee [gone](deleted.md).\n",
	})

	rule := NewInternalLinks()
	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "guides/a.md"), vctx)
	require.NoError(t, err)

	require.Len(t, findings, 1)
	assert.Equal(t, "guides/a.md", findings[0].Path)
	assert.Equal(t, 3, findings[0].Line)
	assert.Contains(t, findings[0].Message, "deleted.md")
}

func TestInternalLinksIgnoresExternalAndAnchors(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"a.md": "# A\n\n[ext](https://example.com) [mail](mailto:x@y.z) [frag](#section) [self](a.md#section)\n",
	})

	rule := NewInternalLinks()
	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "a.md"), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestInternalLinksEscapeCorpus(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"a.md": "# A\n\n[out](../outside.md)\n",
	})

	rule := NewInternalLinks()
	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "a.md"), vctx)
	require.NoError(t, err)

	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "outside the corpus")
}

func TestRequiredSections(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"architecture/good.md": "# X\n\n## Overview\n\ntext\n\n## Components\n\ntext\n",
		"architecture/bad.md":  "# X\n\n## Overview\n\ntext\n",
		"notes/free.md":        "anything goes\n",
	})

	rule := NewRequiredSections()

	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "architecture/good.md"), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings)

	findings, err = rule.Evaluate(context.Background(), mustDoc(t, vctx, "architecture/bad.md"), vctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "Components")
	assert.Equal(t, 1, findings[0].Line)

	// Types without configured sections are unconstrained.
	findings, err = rule.Evaluate(context.Background(), mustDoc(t, vctx, "notes/free.md"), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestTerminology(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"a.md": "# A\n\nUse the changeset to review.\n\n```\nchangeset in code is fine\n```\n",
	})
	vctx.Glossary = map[string]string{"changeset": "change-set"}

	rule := NewTerminology()
	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "a.md"), vctx)
	require.NoError(t, err)

	require.Len(t, findings, 1, "code fences are not prose")
	assert.Equal(t, 3, findings[0].Line)
	assert.Contains(t, findings[0].Suggestion, "change-set")
}

func TestVagueLanguageOnlySpecDocs(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"specs/payment.md": "# P\n\nThe API must be fast and robust.\n",
		"guides/setup.md":  "# S\n\nThis guide makes setup fast.\n",
	})

	rule := NewVagueLanguage()

	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "specs/payment.md"), vctx)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Contains(t, findings[0].Message, "fast")
	assert.Contains(t, findings[1].Message, "robust")

	findings, err = rule.Evaluate(context.Background(), mustDoc(t, vctx, "guides/setup.md"), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings, "guides are allowed informal language")
}

func TestParseFailureSurfacesDiagnostics(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"a.md": "---\nstatus: [unclosed\n---\n# A\n",
	})

	rule := NewParseFailure()
	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "a.md"), vctx)
	require.NoError(t, err)

	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "frontmatter-invalid")
}
