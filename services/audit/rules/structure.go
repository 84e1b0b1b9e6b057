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
	"hash/fnv"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/AleutianAI/DocAudit/services/audit/document"
	"github.com/AleutianAI/DocAudit/services/audit/engine"
)

// =============================================================================
// STRUCTURE: FILE NAMING
// =============================================================================

// kebabNameRE is the corpus file-naming convention.
var kebabNameRE = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*\.md$`)

// FileNaming enforces kebab-case markdown file names.
type FileNaming struct{ meta }

// NewFileNaming creates the structure/file-naming rule.
func NewFileNaming() *FileNaming {
	return &FileNaming{meta{
		id:  "structure/file-naming",
		cat: engine.CategoryStructure,
		sev: engine.SeverityMedium,
	}}
}

// Evaluate checks the base name against the convention, honoring the
// configured allow-list of conventional upper-case files.
func (r *FileNaming) Evaluate(ctx context.Context, doc *document.Document, vctx *engine.Context) ([]engine.Finding, error) {
	base := path.Base(doc.RelPath)

	for _, allowed := range vctx.Config.NamingAllow {
		if base == allowed {
			return nil, nil
		}
	}
	if kebabNameRE.MatchString(base) {
		return nil, nil
	}

	return []engine.Finding{{
		Path:       doc.RelPath,
		Line:       0,
		Message:    fmt.Sprintf("file name %q does not follow the kebab-case convention", base),
		Suggestion: fmt.Sprintf("rename to %q", kebabSuggestion(base)),
	}}, nil
}

// kebabSuggestion lowercases and re-joins a file name on hyphens.
func kebabSuggestion(base string) string {
	stem := strings.TrimSuffix(base, path.Ext(base))
	var parts []string
	var cur strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'A' && r <= 'Z':
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
			cur.WriteRune(r + ('a' - 'A'))
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			cur.WriteRune(r)
		default:
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	if len(parts) == 0 {
		return "document.md"
	}
	return strings.Join(parts, "-") + ".md"
}

// =============================================================================
// STRUCTURE: DUPLICATE CONTENT
// =============================================================================

// Duplication detects verbatim prose shared across documents.
//
// # Description
//
// Builds a sliding window of N consecutive normalized sentences per
// document, hashes each window, and flags any hash shared by two
// different documents. Windows containing an allow-listed boilerplate
// phrase are skipped. Shared runs shorter than the window size yield
// nothing.
type Duplication struct{ meta }

// NewDuplication creates the structure/duplication rule.
func NewDuplication() *Duplication {
	return &Duplication{meta{
		id:  "structure/duplication",
		cat: engine.CategoryStructure,
		sev: engine.SeverityMedium,
	}}
}

// Evaluate is unused; the rule runs corpus-wide.
func (r *Duplication) Evaluate(ctx context.Context, doc *document.Document, vctx *engine.Context) ([]engine.Finding, error) {
	return nil, nil
}

// occurrence is one window occurrence in one document.
type occurrence struct {
	path string
	line int
	text string
}

// EvaluateCorpus hashes sentence windows across the whole corpus.
func (r *Duplication) EvaluateCorpus(ctx context.Context, vctx *engine.Context) ([]engine.Finding, error) {
	window := vctx.Config.DuplicationWindow
	if window < 2 {
		window = 3
	}

	allow := make([]string, 0, len(vctx.Config.BoilerplateAllow))
	for _, phrase := range vctx.Config.BoilerplateAllow {
		allow = append(allow, normalizeSentence(phrase))
	}

	byHash := make(map[uint64][]occurrence)

	for _, doc := range vctx.Corpus.Docs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if doc.IsExempt(r.ID()) {
			continue
		}

		sents := splitSentences(doc)
		for i := 0; i+window <= len(sents); i++ {
			norms := make([]string, window)
			for j := 0; j < window; j++ {
				norms[j] = sents[i+j].norm
			}
			joined := strings.Join(norms, " ")

			if allowlisted(joined, allow) {
				continue
			}

			h := fnv.New64a()
			h.Write([]byte(joined))
			byHash[h.Sum64()] = append(byHash[h.Sum64()], occurrence{
				path: doc.RelPath,
				line: sents[i].line,
				text: sents[i].text,
			})
		}
	}

	var out []engine.Finding
	for _, occs := range byHash {
		first, second, ok := crossDocPair(occs)
		if !ok {
			continue
		}
		out = append(out, engine.Finding{
			Path: first.path,
			Line: first.line,
			Message: fmt.Sprintf("%d consecutive sentences duplicated in %s:%d",
				window, second.path, second.line),
			Suggestion: "extract the shared content into one document and link to it",
			Snippet:    truncate(first.text, 120),
		})
	}

	return out, nil
}

// crossDocPair returns the two lexicographically-first occurrences in
// distinct documents, so repeated runs report the same pair.
func crossDocPair(occs []occurrence) (occurrence, occurrence, bool) {
	sort.Slice(occs, func(i, j int) bool {
		if occs[i].path != occs[j].path {
			return occs[i].path < occs[j].path
		}
		return occs[i].line < occs[j].line
	})
	for i := 1; i < len(occs); i++ {
		if occs[i].path != occs[0].path {
			return occs[0], occs[i], true
		}
	}
	return occurrence{}, occurrence{}, false
}

func allowlisted(norm string, allow []string) bool {
	for _, phrase := range allow {
		if phrase != "" && strings.Contains(norm, phrase) {
			return true
		}
	}
	return false
}
