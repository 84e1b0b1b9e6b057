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

func TestFileNaming(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"guides/getting-started.md": "# ok\n",
		"guides/GettingStarted.md":  "# bad\n",
		"guides/setup_notes.md":     "# bad\n",
		"README.md":                 "# allowed\n",
	})

	rule := NewFileNaming()

	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "guides/getting-started.md"), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings)

	findings, err = rule.Evaluate(context.Background(), mustDoc(t, vctx, "README.md"), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings, "conventional upper-case names are allow-listed")

	findings, err = rule.Evaluate(context.Background(), mustDoc(t, vctx, "guides/GettingStarted.md"), vctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Suggestion, "getting-started.md")

	findings, err = rule.Evaluate(context.Background(), mustDoc(t, vctx, "guides/setup_notes.md"), vctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Suggestion, "setup-notes.md")
}

func TestKebabSuggestion(t *testing.T) {
	cases := []struct{ in, want string }{
		{"GettingStarted.md", "getting-started.md"},
		{"setup_notes.md", "setup-notes.md"},
		{"API Design.md", "api-design.md"},
		{"v2.md", "v2.md"},
		{"___.md", "document.md"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, kebabSuggestion(tc.in))
		})
	}
}

const sharedProse = "The billing pipeline retries failed charges twice. " +
	"Each retry doubles the backoff interval between attempts. " +
	"After the final failure the invoice moves to manual review."

func TestDuplicationAcrossDocuments(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"guides/billing.md":   "# Billing\n\n" + sharedProse + "\n",
		"reference/errors.md": "# Errors\n\nIntro sentence about error handling here. " + sharedProse + "\n",
	})

	rule := NewDuplication()
	findings, err := rule.EvaluateCorpus(context.Background(), vctx)
	require.NoError(t, err)

	// One shared three-sentence window, one finding referencing both
	// documents.
	require.Len(t, findings, 1)
	assert.Equal(t, "guides/billing.md", findings[0].Path)
	assert.Contains(t, findings[0].Message, "reference/errors.md")
}

func TestDuplicationShortOverlapIsSilent(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"a.md": "# A\n\nThe billing pipeline retries failed charges twice. Everything else here is unique to this file.\n",
		"b.md": "# B\n\nThe billing pipeline retries failed charges twice. This document continues differently afterwards.\n",
	})

	rule := NewDuplication()
	findings, err := rule.EvaluateCorpus(context.Background(), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings, "overlaps shorter than the window carry no signal")
}

func TestDuplicationBoilerplateAllowed(t *testing.T) {
	boiler := "This page is a work in progress. Please check back later for updates. Content lands here as it stabilizes."

	vctx := newContext(t, map[string]string{
		"a.md": "# A\n\n" + boiler + "\n",
		"b.md": "# B\n\n" + boiler + "\n",
	})

	rule := NewDuplication()
	findings, err := rule.EvaluateCorpus(context.Background(), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings, "allow-listed boilerplate is not duplication")
}

func TestDuplicationDeterministic(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"a.md": "# A\n\n" + sharedProse + "\n",
		"b.md": "# B\n\n" + sharedProse + "\n",
		"c.md": "# C\n\n" + sharedProse + "\n",
	})

	rule := NewDuplication()
	first, err := rule.EvaluateCorpus(context.Background(), vctx)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := rule.EvaluateCorpus(context.Background(), vctx)
		require.NoError(t, err)
		assert.Equal(t, first, again, "repeated runs must report the same pair")
	}
}
