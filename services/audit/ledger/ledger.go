// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ledger implements the deprecation ledger and the document
// consolidation utility built on it.
//
// Consolidation is the only component that mutates the corpus, and
// only behind an explicit apply flag. The default mode produces a
// plan and touches nothing.
package ledger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/DocAudit/services/audit/config"
)

// dateLayout is the ledger's removal-date format.
const dateLayout = "2006-01-02"

// =============================================================================
// LEDGER
// =============================================================================

// Entry is one deprecated feature in the ledger.
type Entry struct {
	// Feature is the deprecated feature name, matched word-bounded and
	// case-insensitively in document prose.
	Feature string `yaml:"feature"`

	// RemovalDate is the YYYY-MM-DD date after which the feature is
	// considered expired.
	RemovalDate string `yaml:"removal_date"`

	// Reason explains the deprecation.
	Reason string `yaml:"reason,omitempty"`

	// MigrationPath points readers at the replacement.
	MigrationPath string `yaml:"migration_path,omitempty"`

	// OwningDocuments lists corpus-relative paths of documents whose
	// primary subject is this feature. These are the consolidation
	// candidates; other documents merely referencing the feature are
	// reported, not moved.
	OwningDocuments []string `yaml:"owning_documents,omitempty"`
}

// Expired reports whether the entry's removal date is on or before
// now. Entries with malformed dates are never expired; Load already
// rejected those.
func (e Entry) Expired(now time.Time) bool {
	d, err := time.Parse(dateLayout, e.RemovalDate)
	if err != nil {
		return false
	}
	return !d.After(now)
}

// Ledger is the parsed deprecation ledger.
type Ledger struct {
	Entries []Entry `yaml:"deprecations"`
}

// Load reads and validates the ledger file.
//
// # Outputs
//
//   - *Ledger: Entries sorted by feature name. A missing file yields
//     an empty ledger.
//   - error: A *config.FatalError when the file is malformed or an
//     entry has no feature or an unparseable removal date.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Ledger{}, nil
		}
		return nil, &config.FatalError{Path: path, Err: err}
	}

	var led Ledger
	if err := yaml.Unmarshal(data, &led); err != nil {
		return nil, &config.FatalError{Path: path, Err: err}
	}

	for i, e := range led.Entries {
		if strings.TrimSpace(e.Feature) == "" {
			return nil, &config.FatalError{Path: path, Err: fmt.Errorf("entry %d: feature is required", i)}
		}
		if _, err := time.Parse(dateLayout, e.RemovalDate); err != nil {
			return nil, &config.FatalError{Path: path, Err: fmt.Errorf("entry %d (%s): removal_date %q is not YYYY-MM-DD", i, e.Feature, e.RemovalDate)}
		}
	}

	sort.Slice(led.Entries, func(i, j int) bool {
		return led.Entries[i].Feature < led.Entries[j].Feature
	})

	return &led, nil
}

// ExpiredEntries returns the entries whose removal date has passed,
// in ledger order.
func (l *Ledger) ExpiredEntries(now time.Time) []Entry {
	var out []Entry
	for _, e := range l.Entries {
		if e.Expired(now) {
			out = append(out, e)
		}
	}
	return out
}
