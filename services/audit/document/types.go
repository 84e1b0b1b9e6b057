// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package document parses the documentation corpus into immutable
// Document values: front-matter metadata, a flattened markdown AST,
// and a derived document type classification.
//
// Parsing never fails hard. A malformed document degrades to a partial
// AST plus diagnostics so validation rules can still run against the
// raw text and report the parse failure itself.
package document

import (
	"time"
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Type classifies a document by its role in the corpus.
type Type string

const (
	TypeArchitecture Type = "architecture"
	TypeFeature      Type = "feature"
	TypeGuide        Type = "guide"
	TypeReference    Type = "reference"
	TypeSpec         Type = "spec"
	TypeNote         Type = "note"
	TypeUnknown      Type = "unknown"
)

// Document is one parsed unit of the corpus.
//
// # Thread Safety
//
// Immutable after parsing. Safe to share by reference across
// concurrent rule evaluations.
type Document struct {
	// Path is the absolute path of the source file.
	Path string `json:"path"`

	// RelPath is the path relative to the corpus root, using forward
	// slashes. All findings reference documents by RelPath.
	RelPath string `json:"rel_path"`

	// Raw is the full file content, front-matter included.
	Raw []byte `json:"-"`

	// Body is the content after the front-matter block.
	Body []byte `json:"-"`

	// BodyLine is the 1-based line on which Body starts in Raw.
	BodyLine int `json:"body_line"`

	// Meta is the decoded front-matter map. Nil when the document has
	// no front-matter block.
	Meta map[string]any `json:"meta,omitempty"`

	// Status is the lifecycle status from front-matter (draft,
	// complete, ...). Empty when unset.
	Status string `json:"status,omitempty"`

	// ExemptRules lists rule identifiers this document is exempt from,
	// taken from the front-matter "exempt" key.
	ExemptRules []string `json:"exempt_rules,omitempty"`

	// Subjects lists code subjects this document claims ownership of
	// (e.g. "schema", "routes", "env"), from front-matter.
	Subjects []string `json:"subjects,omitempty"`

	// Type is the derived document classification.
	Type Type `json:"type"`

	// Nodes is the flattened AST in source order.
	Nodes []Node `json:"-"`

	// ContentHash is the SHA-256 of Raw, hex encoded.
	ContentHash string `json:"content_hash"`

	// Diagnostics records parse-level degradations. A non-empty list
	// means the AST is partial; rules still run against Body.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// ParsedAt is when this document was parsed.
	ParsedAt time.Time `json:"parsed_at"`
}

// IsExempt reports whether the document opted out of the given rule.
func (d *Document) IsExempt(ruleID string) bool {
	for _, id := range d.ExemptRules {
		if id == ruleID {
			return true
		}
	}
	return false
}

// OwnsSubject reports whether the document declares ownership of a
// code subject such as "schema" or "routes".
func (d *Document) OwnsSubject(subject string) bool {
	for _, s := range d.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// =============================================================================
// AST NODES
// =============================================================================

// NodeKind identifies the kind of a flattened AST node.
type NodeKind string

const (
	NodeHeading   NodeKind = "heading"
	NodeParagraph NodeKind = "paragraph"
	NodeLink      NodeKind = "link"
	NodeImage     NodeKind = "image"
	NodeCodeBlock NodeKind = "code_block"
	NodeTable     NodeKind = "table"
)

// Node is one element of the flattened AST.
//
// The parser walks the markdown tree depth-first and emits one Node
// per element the rules care about. Inline elements (links, images)
// carry the line of their enclosing block.
type Node struct {
	// Kind is the node kind.
	Kind NodeKind `json:"kind"`

	// Line is the 1-based line in the source file.
	Line int `json:"line"`

	// Level is the heading level (1-6). Zero for non-headings.
	Level int `json:"level,omitempty"`

	// Text is the rendered plain text of the node. For images this is
	// the alternative text; for links, the link label.
	Text string `json:"text,omitempty"`

	// Destination is the link or image target. Empty otherwise.
	Destination string `json:"destination,omitempty"`

	// Language is the info string of a fenced code block.
	Language string `json:"language,omitempty"`
}

// Headings returns the document's headings in source order.
func (d *Document) Headings() []Node {
	return d.nodesOfKind(NodeHeading)
}

// Links returns the document's links in source order.
func (d *Document) Links() []Node {
	return d.nodesOfKind(NodeLink)
}

// Images returns the document's images in source order.
func (d *Document) Images() []Node {
	return d.nodesOfKind(NodeImage)
}

func (d *Document) nodesOfKind(kind NodeKind) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// Diagnostic records a parse-level degradation.
//
// Diagnostics are data, not errors. The parser never unwinds the run;
// a document that cannot be fully parsed carries the reason here and
// the quality/parse-failure rule converts it into a finding.
type Diagnostic struct {
	// Code identifies the degradation (e.g. "frontmatter-invalid",
	// "not-utf8", "unparseable").
	Code string `json:"code"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Line is the 1-based line the degradation was detected at, when
	// known. Zero otherwise.
	Line int `json:"line,omitempty"`
}
