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
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/DocAudit/services/audit/document"
	"github.com/AleutianAI/DocAudit/services/audit/engine"
)

// =============================================================================
// QUALITY: INTERNAL LINK INTEGRITY
// =============================================================================

// InternalLinks flags intra-corpus links whose target does not resolve.
// Broken navigation is worst-case for a reader, hence critical.
type InternalLinks struct{ meta }

// NewInternalLinks creates the quality/internal-links rule.
func NewInternalLinks() *InternalLinks {
	return &InternalLinks{meta{
		id:  "quality/internal-links",
		cat: engine.CategoryQuality,
		sev: engine.SeverityCritical,
	}}
}

// Evaluate resolves every relative link against the corpus.
func (r *InternalLinks) Evaluate(ctx context.Context, doc *document.Document, vctx *engine.Context) ([]engine.Finding, error) {
	var out []engine.Finding

	for _, link := range doc.Links() {
		dest := strings.TrimSpace(link.Destination)
		if dest == "" || isExternalURL(dest) || strings.HasPrefix(dest, "#") {
			continue
		}

		// Drop fragment and query; only the file part must resolve.
		if i := strings.IndexAny(dest, "#?"); i >= 0 {
			dest = dest[:i]
		}
		if dest == "" {
			continue
		}

		target := path.Clean(path.Join(path.Dir(doc.RelPath), dest))
		if strings.HasPrefix(target, "..") {
			out = append(out, engine.Finding{
				Path:    doc.RelPath,
				Line:    link.Line,
				Message: fmt.Sprintf("link %q points outside the corpus", link.Destination),
			})
			continue
		}

		if vctx.Corpus.Contains(target) {
			continue
		}
		// Non-markdown assets (images, downloads) live on disk only.
		if _, err := os.Stat(filepath.Join(vctx.Corpus.Root, filepath.FromSlash(target))); err == nil {
			continue
		}

		out = append(out, engine.Finding{
			Path:       doc.RelPath,
			Line:       link.Line,
			Message:    fmt.Sprintf("link target %q does not exist", link.Destination),
			Suggestion: "fix the relative path or remove the link",
			Snippet:    link.Text,
		})
	}

	return out, nil
}

// =============================================================================
// QUALITY: REQUIRED SECTIONS
// =============================================================================

// RequiredSections enforces the mandatory headings declared per
// document type.
type RequiredSections struct{ meta }

// NewRequiredSections creates the quality/required-sections rule.
func NewRequiredSections() *RequiredSections {
	return &RequiredSections{meta{
		id:  "quality/required-sections",
		cat: engine.CategoryQuality,
		sev: engine.SeverityCritical,
	}}
}

// Evaluate flags each missing mandatory heading.
func (r *RequiredSections) Evaluate(ctx context.Context, doc *document.Document, vctx *engine.Context) ([]engine.Finding, error) {
	required := vctx.Config.RequiredSections[string(doc.Type)]
	if len(required) == 0 {
		return nil, nil
	}

	present := make(map[string]bool)
	for _, h := range doc.Headings() {
		present[strings.ToLower(strings.TrimSpace(h.Text))] = true
	}

	var out []engine.Finding
	for _, want := range required {
		if present[strings.ToLower(want)] {
			continue
		}
		out = append(out, engine.Finding{
			Path:       doc.RelPath,
			Line:       1,
			Message:    fmt.Sprintf("missing required section %q for %s documents", want, doc.Type),
			Suggestion: fmt.Sprintf("add a %q heading", want),
		})
	}

	return out, nil
}

// =============================================================================
// QUALITY: TERMINOLOGY CONSISTENCY
// =============================================================================

// Terminology flags glossary-declared deprecated synonyms with their
// canonical replacement.
type Terminology struct{ meta }

// NewTerminology creates the quality/terminology rule.
func NewTerminology() *Terminology {
	return &Terminology{meta{
		id:  "quality/terminology",
		cat: engine.CategoryQuality,
		sev: engine.SeverityMedium,
	}}
}

// Evaluate scans prose lines for deprecated synonyms.
func (r *Terminology) Evaluate(ctx context.Context, doc *document.Document, vctx *engine.Context) ([]engine.Finding, error) {
	if len(vctx.Glossary) == 0 {
		return nil, nil
	}

	var out []engine.Finding
	for _, lt := range proseLines(doc) {
		for deprecated, canonical := range vctx.Glossary {
			idx := wordIndex(lt.text, deprecated)
			if idx < 0 {
				continue
			}
			out = append(out, engine.Finding{
				Path:       doc.RelPath,
				Line:       lt.line,
				Column:     idx + 1,
				Message:    fmt.Sprintf("deprecated term %q; the canonical term is %q", deprecated, canonical),
				Suggestion: fmt.Sprintf("replace %q with %q", deprecated, canonical),
				Snippet:    truncate(strings.TrimSpace(lt.text), 120),
			})
		}
	}

	return out, nil
}

// =============================================================================
// QUALITY: VAGUE LANGUAGE
// =============================================================================

// VagueLanguage flags subjective adjectives in specification
// documents, where untestable wording hides real requirements.
type VagueLanguage struct{ meta }

// NewVagueLanguage creates the quality/vague-language rule.
func NewVagueLanguage() *VagueLanguage {
	return &VagueLanguage{meta{
		id:  "quality/vague-language",
		cat: engine.CategoryQuality,
		sev: engine.SeverityLow,
	}}
}

// Evaluate scans spec-type documents for denylisted adjectives.
func (r *VagueLanguage) Evaluate(ctx context.Context, doc *document.Document, vctx *engine.Context) ([]engine.Finding, error) {
	if doc.Type != document.TypeSpec {
		return nil, nil
	}

	var out []engine.Finding
	for _, lt := range proseLines(doc) {
		for _, word := range vctx.Config.VagueWords {
			idx := wordIndex(lt.text, word)
			if idx < 0 {
				continue
			}
			out = append(out, engine.Finding{
				Path:       doc.RelPath,
				Line:       lt.line,
				Column:     idx + 1,
				Message:    fmt.Sprintf("vague term %q in a specification document", word),
				Suggestion: "state a concrete, measurable requirement instead",
				Snippet:    truncate(strings.TrimSpace(lt.text), 120),
			})
		}
	}

	return out, nil
}

// =============================================================================
// QUALITY: PARSE FAILURE
// =============================================================================

// ParseFailure surfaces parser-level degradations as findings. The
// parser itself never aborts the run; this rule is how a malformed
// document shows up in the report.
type ParseFailure struct{ meta }

// NewParseFailure creates the quality/parse-failure rule.
func NewParseFailure() *ParseFailure {
	return &ParseFailure{meta{
		id:  "quality/parse-failure",
		cat: engine.CategoryQuality,
		sev: engine.SeverityHigh,
	}}
}

// Evaluate converts each parse diagnostic into a finding.
func (r *ParseFailure) Evaluate(ctx context.Context, doc *document.Document, vctx *engine.Context) ([]engine.Finding, error) {
	var out []engine.Finding
	for _, d := range doc.Diagnostics {
		out = append(out, engine.Finding{
			Path:    doc.RelPath,
			Line:    d.Line,
			Message: fmt.Sprintf("document did not fully parse (%s): %s", d.Code, d.Message),
		})
	}
	return out, nil
}
