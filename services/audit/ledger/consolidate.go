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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/AleutianAI/DocAudit/services/audit/document"
)

// =============================================================================
// CONSOLIDATION PLAN
// =============================================================================

// Move is one planned document relocation.
type Move struct {
	// Feature is the expired feature that owns the document.
	Feature string `json:"feature"`

	// From is the corpus-relative source path.
	From string `json:"from"`

	// To is the corpus-relative destination under the archive
	// directory.
	To string `json:"to"`
}

// Reference is a lingering mention of an expired feature in a
// document that is not being archived.
type Reference struct {
	// Feature is the expired feature mentioned.
	Feature string `json:"feature"`

	// Path is the corpus-relative document path.
	Path string `json:"path"`

	// Line is the 1-based line of the first mention.
	Line int `json:"line"`

	// MigrationPath is the replacement pointer from the ledger, when
	// one exists.
	MigrationPath string `json:"migration_path,omitempty"`
}

// Plan is the outcome of a consolidation dry run.
//
// Planning is idempotent: running it twice against an unchanged
// corpus yields the same plan, and a plan whose moves were already
// applied comes back empty.
type Plan struct {
	// Moves are the planned relocations, sorted by source path.
	Moves []Move `json:"moves"`

	// References are lingering mentions needing manual cleanup, sorted
	// by path then line.
	References []Reference `json:"references"`

	// MissingOwners lists ledger-declared owning documents absent from
	// the corpus, sorted.
	MissingOwners []string `json:"missing_owners,omitempty"`
}

// Empty reports whether the plan has no work.
func (p *Plan) Empty() bool {
	return len(p.Moves) == 0 && len(p.References) == 0
}

// BuildPlan computes the consolidation plan for expired ledger
// entries against the corpus. Nothing is mutated.
//
// # Inputs
//
//   - corpus: The parsed corpus.
//   - led: The loaded ledger.
//   - archiveDir: Archive directory relative to the corpus root.
//   - now: Expiry reference time.
func BuildPlan(corpus *document.Corpus, led *Ledger, archiveDir string, now time.Time) *Plan {
	plan := &Plan{}
	expired := led.ExpiredEntries(now)
	if len(expired) == 0 {
		return plan
	}

	archived := make(map[string]bool)
	for _, e := range expired {
		for _, rel := range e.OwningDocuments {
			if _, ok := corpus.Get(rel); !ok {
				plan.MissingOwners = append(plan.MissingOwners, rel)
				continue
			}
			if archived[rel] {
				continue
			}
			archived[rel] = true
			plan.Moves = append(plan.Moves, Move{
				Feature: e.Feature,
				From:    rel,
				To:      archivePath(archiveDir, rel),
			})
		}
	}

	for _, e := range expired {
		for _, doc := range corpus.Docs {
			if archived[doc.RelPath] {
				continue
			}
			if line, ok := firstMention(doc, e.Feature); ok {
				plan.References = append(plan.References, Reference{
					Feature:       e.Feature,
					Path:          doc.RelPath,
					Line:          line,
					MigrationPath: e.MigrationPath,
				})
			}
		}
	}

	sort.Slice(plan.Moves, func(i, j int) bool { return plan.Moves[i].From < plan.Moves[j].From })
	sort.Slice(plan.References, func(i, j int) bool {
		a, b := plan.References[i], plan.References[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Feature < b.Feature
	})
	sort.Strings(plan.MissingOwners)

	return plan
}

// archivePath flattens the source path into the archive directory so
// two same-named documents from different directories cannot collide.
func archivePath(archiveDir, rel string) string {
	flat := strings.ReplaceAll(rel, "/", "--")
	return archiveDir + "/" + flat
}

// firstMention finds the first word-bounded, case-insensitive mention
// of feature in the document body, skipping fenced code blocks.
func firstMention(doc *document.Document, feature string) (int, bool) {
	needle := strings.ToLower(feature)
	inFence := false
	for i, raw := range strings.Split(string(doc.Body), "\n") {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if containsWord(strings.ToLower(raw), needle) {
			return doc.BodyLine + i, true
		}
	}
	return 0, false
}

// containsWord reports whether needle occurs in line bounded by
// non-word runes.
func containsWord(line, needle string) bool {
	if needle == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(line[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(needle)
		beforeOK := idx == 0 || !isWordByte(line[idx-1])
		afterOK := end == len(line) || !isWordByte(line[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isWordByte(b byte) bool {
	r := rune(b)
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

// =============================================================================
// APPLY
// =============================================================================

// Apply executes a plan's moves against the corpus on disk.
//
// # Description
//
// Each move relocates the document into the archive directory and
// stamps an archived_at front-matter key so the relocation is visible
// in the document itself. References are never touched; they are the
// operator's cleanup list. Already-applied moves (source gone,
// destination present) are skipped, keeping Apply idempotent.
func Apply(plan *Plan, corpusRoot string, now time.Time) error {
	for _, m := range plan.Moves {
		src := filepath.Join(corpusRoot, filepath.FromSlash(m.From))
		dst := filepath.Join(corpusRoot, filepath.FromSlash(m.To))

		if _, err := os.Stat(src); os.IsNotExist(err) {
			if _, derr := os.Stat(dst); derr == nil {
				slog.Info("Move already applied, skipping", "from", m.From, "to", m.To)
				continue
			}
			return fmt.Errorf("consolidate %s: source missing and destination absent", m.From)
		}

		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("consolidate %s: %w", m.From, err)
		}

		annotated := annotateArchived(data, m.Feature, now)

		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return fmt.Errorf("consolidate %s: %w", m.From, err)
		}
		if err := os.WriteFile(dst, annotated, 0o640); err != nil {
			return fmt.Errorf("consolidate %s: %w", m.From, err)
		}
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("consolidate %s: remove source: %w", m.From, err)
		}

		slog.Info("Document archived",
			"feature", m.Feature,
			"from", m.From,
			"to", m.To)
	}
	return nil
}

// annotateArchived stamps archived_at and archived_feature into the
// document's front-matter, creating the block when absent.
func annotateArchived(raw []byte, feature string, now time.Time) []byte {
	stamp := fmt.Sprintf("archived_at: %q\narchived_feature: %q\n",
		now.UTC().Format(time.RFC3339), feature)

	s := string(raw)
	if strings.HasPrefix(s, "---\n") {
		if end := strings.Index(s[4:], "\n---\n"); end >= 0 {
			insert := 4 + end + 1
			return []byte(s[:insert] + stamp + s[insert:])
		}
	}
	return []byte("---\n" + stamp + "---\n" + s)
}
