// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine runs the validation rule registry over a document
// corpus and aggregates findings into one deterministic, ordered list.
//
// Rules are pure: they never mutate the Document or the Context. That
// invariant is what makes unrestricted parallel execution safe.
package engine

import (
	"context"
	"fmt"

	"github.com/AleutianAI/DocAudit/services/audit/changeset"
	"github.com/AleutianAI/DocAudit/services/audit/config"
	"github.com/AleutianAI/DocAudit/services/audit/document"
	"github.com/AleutianAI/DocAudit/services/audit/probe"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the fixed four-tier finding severity.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the lowercase tier name.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so findings serialize
// with tier names instead of integers.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown tier
// names are an error: a corrupt artifact must surface on decode, not
// silently rescore as medium on re-render.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, ok := ParseSeverity(string(text))
	if !ok {
		return fmt.Errorf("unknown severity tier %q", string(text))
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a tier name.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "critical":
		return SeverityCritical, true
	case "high":
		return SeverityHigh, true
	case "medium":
		return SeverityMedium, true
	case "low":
		return SeverityLow, true
	}
	return SeverityLow, false
}

// =============================================================================
// CATEGORY
// =============================================================================

// Category groups rules by concern.
type Category string

const (
	CategoryQuality       Category = "quality"
	CategorySync          Category = "sync"
	CategoryStructure     Category = "structure"
	CategoryAccessibility Category = "accessibility"
)

// =============================================================================
// FINDING
// =============================================================================

// Finding is one reported issue.
//
// # Thread Safety
//
// Immutable value object. Many are produced per run and never mutated
// afterward.
type Finding struct {
	// RuleID identifies the producing rule. Always present in the
	// active registry.
	RuleID string `json:"rule_id"`

	// Category is the producing rule's category.
	Category Category `json:"category"`

	// Severity is the effective tier after configuration overrides.
	Severity Severity `json:"severity"`

	// Path is the corpus-relative path of the affected document.
	Path string `json:"path"`

	// Line is the 1-based line, when known. Zero otherwise.
	Line int `json:"line,omitempty"`

	// Column is the 1-based column, when known.
	Column int `json:"column,omitempty"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Suggestion is the optional suggested fix.
	Suggestion string `json:"suggestion,omitempty"`

	// Snippet is the optional surrounding text.
	Snippet string `json:"snippet,omitempty"`
}

// =============================================================================
// RULES
// =============================================================================

// Rule is one named, versioned unit of validation logic evaluated per
// document.
//
// Evaluate must be pure: no mutation of the document or the context,
// no retained references. Results for one rule are ordered by the
// runner, so implementations may emit in any order.
type Rule interface {
	// ID is the stable rule identifier (e.g. "quality/internal-links").
	ID() string

	// Category is the rule's concern group.
	Category() Category

	// DefaultSeverity is the tier used unless configuration overrides.
	DefaultSeverity() Severity

	// Evaluate produces findings for one document.
	Evaluate(ctx context.Context, doc *document.Document, vctx *Context) ([]Finding, error)
}

// CorpusRule is a rule that evaluates the whole corpus at once
// (duplication detection, drift analysis). The runner invokes
// EvaluateCorpus exactly once per run instead of per document.
type CorpusRule interface {
	Rule

	EvaluateCorpus(ctx context.Context, vctx *Context) ([]Finding, error)
}

// =============================================================================
// CONTEXT
// =============================================================================

// LinkProber verifies external URLs. Implemented by probe.Prober.
type LinkProber interface {
	Check(ctx context.Context, rawURL string) probe.Result
}

// Context is the per-run shared, read-only validation state.
//
// # Thread Safety
//
// Built once per run and shared by reference across all rule
// evaluations. Nothing here may be mutated after construction.
type Context struct {
	// Config is the loaded, immutable configuration.
	Config *config.Config

	// Glossary maps lowercased deprecated synonyms to canonical terms.
	Glossary map[string]string

	// Corpus is the full document set for this run.
	Corpus *document.Corpus

	// Changes is the computed change-set in incremental mode. Nil for
	// full runs; synchronization rules degrade to silence.
	Changes *changeset.ChangeSet

	// Prober is the external resource prober. Nil when external link
	// checking is disabled.
	Prober LinkProber
}
