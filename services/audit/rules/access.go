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
	"fmt"
	"strings"

	"github.com/AleutianAI/DocAudit/services/audit/document"
	"github.com/AleutianAI/DocAudit/services/audit/engine"
)

// =============================================================================
// ACCESSIBILITY: HEADING HIERARCHY
// =============================================================================

// HeadingHierarchy flags heading level skips (e.g. an H1 followed
// directly by an H3), which break screen-reader navigation.
type HeadingHierarchy struct{ meta }

// NewHeadingHierarchy creates the access/heading-hierarchy rule.
func NewHeadingHierarchy() *HeadingHierarchy {
	return &HeadingHierarchy{meta{
		id:  "access/heading-hierarchy",
		cat: engine.CategoryAccessibility,
		sev: engine.SeverityMedium,
	}}
}

// Evaluate walks the heading sequence in source order.
func (r *HeadingHierarchy) Evaluate(ctx context.Context, doc *document.Document, vctx *engine.Context) ([]engine.Finding, error) {
	var out []engine.Finding

	prev := 0
	for _, h := range doc.Headings() {
		if prev > 0 && h.Level > prev+1 {
			out = append(out, engine.Finding{
				Path:       doc.RelPath,
				Line:       h.Line,
				Message:    fmt.Sprintf("heading level skips from H%d to H%d", prev, h.Level),
				Suggestion: fmt.Sprintf("use H%d here or restructure the section", prev+1),
				Snippet:    h.Text,
			})
		}
		prev = h.Level
	}

	return out, nil
}

// =============================================================================
// ACCESSIBILITY: IMAGE ALT TEXT
// =============================================================================

// genericAltText lists alternative texts that describe nothing.
var genericAltText = map[string]bool{
	"image":      true,
	"img":        true,
	"picture":    true,
	"photo":      true,
	"screenshot": true,
	"diagram":    true,
	"icon":       true,
	"untitled":   true,
}

// AltText flags images with empty or generically-worded alternative
// text.
type AltText struct{ meta }

// NewAltText creates the access/image-alt-text rule.
func NewAltText() *AltText {
	return &AltText{meta{
		id:  "access/image-alt-text",
		cat: engine.CategoryAccessibility,
		sev: engine.SeverityMedium,
	}}
}

// Evaluate inspects every image node.
func (r *AltText) Evaluate(ctx context.Context, doc *document.Document, vctx *engine.Context) ([]engine.Finding, error) {
	var out []engine.Finding

	for _, img := range doc.Images() {
		alt := strings.TrimSpace(img.Text)
		switch {
		case alt == "":
			out = append(out, engine.Finding{
				Path:       doc.RelPath,
				Line:       img.Line,
				Message:    fmt.Sprintf("image %q has no alternative text", img.Destination),
				Suggestion: "describe what the image shows",
			})
		case genericAltText[strings.ToLower(alt)]:
			out = append(out, engine.Finding{
				Path:       doc.RelPath,
				Line:       img.Line,
				Message:    fmt.Sprintf("image alternative text %q is generic", alt),
				Suggestion: "describe what the image shows, not that it is an image",
			})
		}
	}

	return out, nil
}
