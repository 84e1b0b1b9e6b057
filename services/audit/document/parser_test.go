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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	raw := []byte(`---
status: draft
type: spec
exempt:
  - quality/vague-language
subjects:
  - schema
---
# Title

Body text.
`)
	doc := Parse("/abs/notes/doc.md", "notes/doc.md", raw)

	assert.Equal(t, "draft", doc.Status)
	assert.Equal(t, TypeSpec, doc.Type, "front-matter type overrides the path-derived one")
	assert.Equal(t, []string{"quality/vague-language"}, doc.ExemptRules)
	assert.True(t, doc.OwnsSubject("schema"))
	assert.True(t, doc.IsExempt("quality/vague-language"))
	assert.False(t, doc.IsExempt("quality/terminology"))
	assert.Equal(t, 9, doc.BodyLine)
	assert.Empty(t, doc.Diagnostics)
}

func TestParseWithoutFrontmatter(t *testing.T) {
	doc := Parse("/abs/guides/setup.md", "guides/setup.md", []byte("# Setup\n\nHello.\n"))

	assert.Nil(t, doc.Meta)
	assert.Equal(t, 1, doc.BodyLine)
	assert.Equal(t, TypeGuide, doc.Type)
	assert.Empty(t, doc.Diagnostics)
}

func TestParseInvalidFrontmatter(t *testing.T) {
	raw := []byte("---\nstatus: [unclosed\n---\n# Title\n")
	doc := Parse("/abs/a.md", "a.md", raw)

	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, "frontmatter-invalid", doc.Diagnostics[0].Code)
	// The body is still parsed so other rules can run.
	require.NotEmpty(t, doc.Headings())
	assert.Equal(t, "Title", doc.Headings()[0].Text)
}

func TestParseInvalidUTF8(t *testing.T) {
	doc := Parse("/abs/a.md", "a.md", []byte{0xff, 0xfe, '#', ' ', 'x'})

	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, "not-utf8", doc.Diagnostics[0].Code)
	assert.Empty(t, doc.Nodes)
}

func TestParseNodeLines(t *testing.T) {
	raw := []byte(`# Title

Some paragraph.

## Section

See [other](other.md) for details.

![diagram of the pipeline](img/pipeline.png)
`)
	doc := Parse("/abs/a.md", "a.md", raw)

	headings := doc.Headings()
	require.Len(t, headings, 2)
	assert.Equal(t, 1, headings[0].Line)
	assert.Equal(t, 1, headings[0].Level)
	assert.Equal(t, 5, headings[1].Line)
	assert.Equal(t, 2, headings[1].Level)

	links := doc.Links()
	require.Len(t, links, 1)
	assert.Equal(t, "other.md", links[0].Destination)
	assert.Equal(t, 7, links[0].Line)
	assert.Equal(t, "other", links[0].Text)

	images := doc.Images()
	require.Len(t, images, 1)
	assert.Equal(t, "img/pipeline.png", images[0].Destination)
	assert.Equal(t, "diagram of the pipeline", images[0].Text)
	assert.Equal(t, 9, images[0].Line)
}

func TestParseNodeLinesAfterFrontmatter(t *testing.T) {
	raw := []byte(`---
status: complete
---
# Title

[ref](target.md)
`)
	doc := Parse("/abs/a.md", "a.md", raw)

	require.Len(t, doc.Headings(), 1)
	assert.Equal(t, 4, doc.Headings()[0].Line, "lines are numbered in the raw file, front-matter included")

	require.Len(t, doc.Links(), 1)
	assert.Equal(t, 6, doc.Links()[0].Line)
}

func TestParseFencedCodeBlock(t *testing.T) {
	raw := []byte("# T\n\n```go\nfunc main() {}\n```\n")
	doc := Parse("/abs/a.md", "a.md", raw)

	var blocks []Node
	for _, n := range doc.Nodes {
		if n.Kind == NodeCodeBlock {
			blocks = append(blocks, n)
		}
	}
	require.Len(t, blocks, 1)
	assert.Equal(t, "go", blocks[0].Language)
}

func TestParseAutoLink(t *testing.T) {
	doc := Parse("/abs/a.md", "a.md", []byte("Visit <https://example.com/docs> today.\n"))

	require.Len(t, doc.Links(), 1)
	assert.Equal(t, "https://example.com/docs", doc.Links()[0].Destination)
}

func TestParseContentHashDeterministic(t *testing.T) {
	raw := []byte("# Same\n")
	a := Parse("/x/a.md", "a.md", raw)
	b := Parse("/y/b.md", "b.md", raw)

	assert.Equal(t, a.ContentHash, b.ContentHash)
	assert.Len(t, a.ContentHash, 64)

	c := Parse("/x/a.md", "a.md", []byte("# Different\n"))
	assert.NotEqual(t, a.ContentHash, c.ContentHash)
}

func TestSplitFrontmatterCRLF(t *testing.T) {
	raw := []byte("---\r\nstatus: draft\r\n---\r\nbody\r\n")
	meta, body, bodyLine, err := splitFrontmatter(raw)

	require.NoError(t, err)
	assert.Equal(t, "draft", meta["status"])
	assert.Equal(t, 4, bodyLine)
	assert.True(t, strings.HasPrefix(string(body), "body"))
}
