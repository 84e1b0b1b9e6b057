// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// GLOSSARY
// =============================================================================

// GlossaryTerm is one canonical term definition.
type GlossaryTerm struct {
	// Term is the canonical term.
	Term string `yaml:"term"`

	// Definition explains the term.
	Definition string `yaml:"definition,omitempty"`

	// Synonyms are acceptable alternatives.
	Synonyms []string `yaml:"synonyms,omitempty"`

	// DeprecatedSynonyms are forbidden alternatives; the terminology
	// rule flags these with the canonical replacement.
	DeprecatedSynonyms []string `yaml:"deprecated_synonyms,omitempty"`

	// UsageNote is a short authoring hint.
	UsageNote string `yaml:"usage_note,omitempty"`
}

// Glossary is the canonical terminology list.
type Glossary struct {
	Terms []GlossaryTerm `yaml:"terms"`
}

// Deprecated returns a map of lowercased deprecated synonym to its
// canonical replacement.
func (g *Glossary) Deprecated() map[string]string {
	out := make(map[string]string)
	if g == nil {
		return out
	}
	for _, t := range g.Terms {
		for _, dep := range t.DeprecatedSynonyms {
			out[normalizeTerm(dep)] = t.Term
		}
	}
	return out
}

// normalizeTerm lowercases and trims a term for map lookup.
func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LoadGlossary reads the glossary file. A missing path yields an
// empty glossary; a malformed file is a fatal configuration error.
func LoadGlossary(path string) (*Glossary, error) {
	if path == "" {
		return &Glossary{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FatalError{Path: path, Err: err}
	}

	var g Glossary
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, &FatalError{Path: path, Err: err}
	}

	return &g, nil
}

// =============================================================================
// PROBE EXEMPTIONS
// =============================================================================

// Exemptions lists external resources the prober must never contact.
type Exemptions struct {
	// URLs are exempted by exact match.
	URLs []string `yaml:"exempted_urls,omitempty"`

	// Origins are exempted by network origin (host[:port]).
	Origins []string `yaml:"exempted_origins,omitempty"`

	// Reasons maps an origin or URL to the operator-supplied reason.
	Reasons map[string]string `yaml:"reasons,omitempty"`
}

// LoadExemptions reads the exemption list. A missing path yields an
// empty list; a malformed file is a fatal configuration error.
func LoadExemptions(path string) (*Exemptions, error) {
	if path == "" {
		return &Exemptions{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FatalError{Path: path, Err: err}
	}

	var e Exemptions
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, &FatalError{Path: path, Err: err}
	}

	return &e, nil
}
