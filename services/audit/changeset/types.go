// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package changeset computes the set of files changed between two
// repository revisions and attaches content-aware signals used by the
// synchronization rules.
//
// Classification is advisory by design: false negatives silence the
// drift rules, false positives add ignorable findings. Both are
// acceptable because findings never block anything; the matchers
// therefore favor recall over precision.
package changeset

// ChangeKind classifies a single file change.
type ChangeKind string

const (
	KindAdded    ChangeKind = "added"
	KindModified ChangeKind = "modified"
	KindRemoved  ChangeKind = "removed"
	KindRenamed  ChangeKind = "renamed"
)

// Signal is a structural classification of a change.
type Signal string

const (
	// SignalSchema marks a change touching a schema-migration-shaped
	// file (SQL migrations, model definitions).
	SignalSchema Signal = "schema"

	// SignalRoutes marks a change touching HTTP route registration.
	SignalRoutes Signal = "routes"

	// SignalEnv marks a change touching environment variable surface.
	SignalEnv Signal = "env"
)

// Change is one changed file with its classifications.
type Change struct {
	// Path is the repository-relative path after the change. For
	// removals it is the pre-change path.
	Path string `json:"path"`

	// OldPath is set for renames.
	OldPath string `json:"old_path,omitempty"`

	// Kind is the change classification.
	Kind ChangeKind `json:"kind"`

	// Signals are the attached content signals, sorted and unique.
	Signals []Signal `json:"signals,omitempty"`
}

// HasSignal reports whether the change carries the given signal.
func (c *Change) HasSignal(s Signal) bool {
	for _, sig := range c.Signals {
		if sig == s {
			return true
		}
	}
	return false
}

// ChangeSet is the ordered list of changes between two revisions.
type ChangeSet struct {
	// Base and Head are the compared revision references.
	Base string `json:"base"`
	Head string `json:"head"`

	// Changes are ordered by path.
	Changes []Change `json:"changes"`
}

// Touched reports whether the given path was changed.
func (cs *ChangeSet) Touched(path string) bool {
	if cs == nil {
		return false
	}
	for _, c := range cs.Changes {
		if c.Path == path || c.OldPath == path {
			return true
		}
	}
	return false
}

// WithSignal returns the changes carrying the given signal.
func (cs *ChangeSet) WithSignal(s Signal) []Change {
	if cs == nil {
		return nil
	}
	var out []Change
	for _, c := range cs.Changes {
		if c.HasSignal(s) {
			out = append(out, c)
		}
	}
	return out
}
