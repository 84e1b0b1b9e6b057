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
	"sort"
	"strings"

	"github.com/AleutianAI/DocAudit/services/audit/changeset"
	"github.com/AleutianAI/DocAudit/services/audit/document"
	"github.com/AleutianAI/DocAudit/services/audit/engine"
)

// =============================================================================
// SYNCHRONIZATION: CODE/DOC DRIFT
// =============================================================================

// Drift flags documents that likely went stale when code they own
// changed without a matching documentation update.
//
// # Description
//
// One Drift instance exists per change signal (schema, routes, env).
// Given a change-set entry carrying the signal, the rule checks
// whether any owning document was modified in the same change-set;
// if none was, every owning document is flagged. This is a heuristic
// built on path-pattern matching, not semantic analysis; findings
// say so, and the matchers deliberately favor recall: a false
// positive costs one ignorable advisory line, a false negative only
// silence.
type Drift struct {
	meta
	perDoc
	signal changeset.Signal
}

// NewSchemaDrift creates the sync/schema-drift rule.
func NewSchemaDrift() *Drift {
	return &Drift{
		meta: meta{
			id:  "sync/schema-drift",
			cat: engine.CategorySync,
			sev: engine.SeverityHigh,
		},
		signal: changeset.SignalSchema,
	}
}

// NewRouteDrift creates the sync/route-drift rule.
func NewRouteDrift() *Drift {
	return &Drift{
		meta: meta{
			id:  "sync/route-drift",
			cat: engine.CategorySync,
			sev: engine.SeverityHigh,
		},
		signal: changeset.SignalRoutes,
	}
}

// NewEnvDrift creates the sync/env-drift rule.
func NewEnvDrift() *Drift {
	return &Drift{
		meta: meta{
			id:  "sync/env-drift",
			cat: engine.CategorySync,
			sev: engine.SeverityHigh,
		},
		signal: changeset.SignalEnv,
	}
}

// EvaluateCorpus checks change-set signals against owning documents.
func (r *Drift) EvaluateCorpus(ctx context.Context, vctx *engine.Context) ([]engine.Finding, error) {
	// Full (non-incremental) runs have no change-set to compare.
	if vctx.Changes == nil {
		return nil, nil
	}

	triggering := vctx.Changes.WithSignal(r.signal)
	if len(triggering) == 0 {
		return nil, nil
	}

	owners := r.owningDocuments(vctx)
	if len(owners) == 0 {
		return nil, nil
	}

	for _, owner := range owners {
		if vctx.Changes.Touched(owner.RelPath) {
			// The documentation moved with the code; no drift.
			return nil, nil
		}
	}

	paths := make([]string, 0, len(triggering))
	for _, c := range triggering {
		paths = append(paths, c.Path)
	}

	var out []engine.Finding
	for _, owner := range owners {
		if owner.IsExempt(r.ID()) {
			continue
		}
		out = append(out, engine.Finding{
			Path: owner.RelPath,
			Line: 1,
			Message: fmt.Sprintf(
				"%s-shaped code changed (%s) without a matching update here; this document is likely stale (best-effort signal, not proof)",
				r.signal, strings.Join(paths, ", ")),
			Suggestion: "review the code change and update this document, or dismiss if unaffected",
		})
	}

	return out, nil
}

// owningDocuments resolves the documents owning this signal's subject:
// configured paths plus documents declaring the subject in
// front-matter, deduplicated and sorted.
func (r *Drift) owningDocuments(vctx *engine.Context) []*document.Document {
	seen := make(map[string]*document.Document)

	for _, rel := range vctx.Config.DriftOwners[string(r.signal)] {
		if doc, ok := vctx.Corpus.Get(rel); ok {
			seen[rel] = doc
		}
	}
	for _, doc := range vctx.Corpus.Docs {
		if doc.OwnsSubject(string(r.signal)) {
			seen[doc.RelPath] = doc
		}
	}

	out := make([]*document.Document, 0, len(seen))
	for _, doc := range seen {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out
}
