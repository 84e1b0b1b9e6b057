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

func TestHeadingHierarchy(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"good.md": "# One\n\n## Two\n\n### Three\n\n## Two again\n",
		"bad.md":  "# One\n\n### Skipped\n",
	})

	rule := NewHeadingHierarchy()

	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "good.md"), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings, "descending and sibling levels are fine")

	findings, err = rule.Evaluate(context.Background(), mustDoc(t, vctx, "bad.md"), vctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 3, findings[0].Line)
	assert.Contains(t, findings[0].Message, "H1 to H3")
}

func TestHeadingHierarchyFirstHeadingUnconstrained(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"a.md": "### Deep start\n\n#### Deeper\n",
	})

	rule := NewHeadingHierarchy()
	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "a.md"), vctx)
	require.NoError(t, err)
	assert.Empty(t, findings, "only skips between consecutive headings count")
}

func TestAltText(t *testing.T) {
	vctx := newContext(t, map[string]string{
		"a.md": "# A\n\n![](missing.png)\n\n![screenshot](generic.png)\n\n![the deploy pipeline stages](good.png)\n",
	})

	rule := NewAltText()
	findings, err := rule.Evaluate(context.Background(), mustDoc(t, vctx, "a.md"), vctx)
	require.NoError(t, err)

	require.Len(t, findings, 2)
	assert.Contains(t, findings[0].Message, "no alternative text")
	assert.Equal(t, 3, findings[0].Line)
	assert.Contains(t, findings[1].Message, `"screenshot" is generic`)
	assert.Equal(t, 5, findings[1].Line)
}
