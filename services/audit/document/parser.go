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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// markdown is the shared goldmark instance. Parsing is stateless, so a
// single instance is safe for concurrent use.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// Parse turns raw file content into a Document.
//
// # Description
//
// Splits front-matter from the body, decodes metadata, flattens the
// markdown tree into Nodes, classifies the document type, and hashes
// the content. Parse never returns an error: every degradation is
// recorded as a Diagnostic on the returned Document so downstream
// rules can flag it without aborting the run.
//
// # Inputs
//
//   - path: Absolute path of the source file.
//   - relPath: Path relative to the corpus root (forward slashes).
//   - raw: Full file content.
//
// # Outputs
//
//   - *Document: The parsed document, possibly with a partial AST.
func Parse(path, relPath string, raw []byte) *Document {
	sum := sha256.Sum256(raw)

	doc := &Document{
		Path:        path,
		RelPath:     relPath,
		Raw:         raw,
		Body:        raw,
		BodyLine:    1,
		ContentHash: hex.EncodeToString(sum[:]),
		ParsedAt:    time.Now().UTC(),
	}

	if !utf8.Valid(raw) {
		doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
			Code:    "not-utf8",
			Message: "file contains invalid UTF-8; skipping structural parse",
		})
		doc.Type = ClassifyPath(relPath)
		return doc
	}

	meta, body, bodyLine, err := splitFrontmatter(raw)
	doc.Body = body
	doc.BodyLine = bodyLine
	if err != nil {
		doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
			Code:    "frontmatter-invalid",
			Message: err.Error(),
			Line:    1,
		})
	}
	doc.Meta = meta
	doc.Status = metaString(meta, "status")
	doc.ExemptRules = metaStringList(meta, "exempt")
	doc.Subjects = metaStringList(meta, "subjects")
	doc.Type = Classify(relPath, metaString(meta, "type"))

	nodes, parseErr := flatten(body, bodyLine)
	doc.Nodes = nodes
	if parseErr != nil {
		doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
			Code:    "unparseable",
			Message: parseErr.Error(),
		})
	}

	return doc
}

// flatten walks the markdown tree and emits flattened nodes.
//
// goldmark does not return parse errors for malformed markdown, but a
// defensive recover converts any parser panic into an "unparseable"
// degradation instead of unwinding the whole run.
func flatten(body []byte, bodyLine int) (nodes []Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("markdown parse panic: %v", r)
		}
	}()

	lines := lineIndex(body)
	root := markdown.Parser().Parse(text.NewReader(body))

	walkErr := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch t := n.(type) {
		case *ast.Heading:
			nodes = append(nodes, Node{
				Kind:  NodeHeading,
				Line:  lines.lineAt(blockOffset(n)) + bodyLine - 1,
				Level: t.Level,
				Text:  nodeText(n, body),
			})

		case *ast.Paragraph:
			nodes = append(nodes, Node{
				Kind: NodeParagraph,
				Line: lines.lineAt(blockOffset(n)) + bodyLine - 1,
				Text: nodeText(n, body),
			})

		case *ast.Link:
			nodes = append(nodes, Node{
				Kind:        NodeLink,
				Line:        lines.lineAt(blockOffset(n)) + bodyLine - 1,
				Text:        nodeText(n, body),
				Destination: string(t.Destination),
			})

		case *ast.AutoLink:
			nodes = append(nodes, Node{
				Kind:        NodeLink,
				Line:        lines.lineAt(blockOffset(n)) + bodyLine - 1,
				Destination: string(t.URL(body)),
			})

		case *ast.Image:
			nodes = append(nodes, Node{
				Kind:        NodeImage,
				Line:        lines.lineAt(blockOffset(n)) + bodyLine - 1,
				Text:        nodeText(n, body),
				Destination: string(t.Destination),
			})
			// Alt text children would double as paragraph text.
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			lang := ""
			if t.Info != nil {
				lang = string(t.Info.Segment.Value(body))
			}
			nodes = append(nodes, Node{
				Kind:     NodeCodeBlock,
				Line:     lines.lineAt(blockOffset(n)) + bodyLine - 1,
				Language: lang,
			})
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			nodes = append(nodes, Node{
				Kind: NodeCodeBlock,
				Line: lines.lineAt(blockOffset(n)) + bodyLine - 1,
			})
			return ast.WalkSkipChildren, nil

		case *east.Table:
			nodes = append(nodes, Node{
				Kind: NodeTable,
				Line: lines.lineAt(blockOffset(n)) + bodyLine - 1,
			})
		}

		return ast.WalkContinue, nil
	})
	if walkErr != nil {
		return nodes, fmt.Errorf("walk markdown tree: %w", walkErr)
	}

	return nodes, nil
}

// blockOffset returns the byte offset of the first source segment of n,
// falling back to the nearest ancestor block for inline nodes.
func blockOffset(n ast.Node) int {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() == ast.TypeBlock {
			if lines := cur.Lines(); lines != nil && lines.Len() > 0 {
				return lines.At(0).Start
			}
		}
		// Tables carry no direct lines; use the first row that does.
		if cur.Type() == ast.TypeBlock && cur.HasChildren() {
			if off, ok := firstChildOffset(cur); ok {
				return off
			}
		}
	}
	return 0
}

func firstChildOffset(n ast.Node) (int, bool) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if lines := c.Lines(); lines != nil && lines.Len() > 0 {
			return lines.At(0).Start, true
		}
		if off, ok := firstChildOffset(c); ok {
			return off, true
		}
	}
	return 0, false
}

// nodeText renders the plain text of a node by concatenating its
// descendant text segments.
func nodeText(n ast.Node, src []byte) string {
	var buf []byte
	var walk func(ast.Node)
	walk = func(cur ast.Node) {
		switch t := cur.(type) {
		case *ast.Text:
			buf = append(buf, t.Segment.Value(src)...)
		case *ast.String:
			buf = append(buf, t.Value...)
		}
		for c := cur.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return string(buf)
}

// =============================================================================
// LINE INDEX
// =============================================================================

// lineStarts maps byte offsets to 1-based line numbers.
type lineStarts []int

func lineIndex(src []byte) lineStarts {
	starts := lineStarts{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (ls lineStarts) lineAt(offset int) int {
	idx := sort.Search(len(ls), func(i int) bool { return ls[i] > offset })
	return idx
}
