// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report builds, persists, and renders the MetricsReport, the
// single artifact every reporter consumes.
//
// The machine-readable JSON form is authoritative: the console and
// review renderers read only the persisted report, so any form can be
// regenerated from it exactly.
package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/DocAudit/services/audit/engine"
	"github.com/AleutianAI/DocAudit/services/audit/scoring"
	"github.com/AleutianAI/DocAudit/services/audit/store"
)

// historyPrefix namespaces reports inside the shared store.
const historyPrefix = "report:"

// historyKeyLayout is a fixed-width RFC 3339 form. The fractional
// seconds are zero-padded, never truncated, so lexicographic key order
// stays chronological even for runs within the same second.
const historyKeyLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MetricsReport is the final, persisted artifact of one run.
//
// # Thread Safety
//
// Written once at the end of a run, never mutated afterward.
type MetricsReport struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Timestamp is when the run finished, UTC.
	Timestamp time.Time `json:"timestamp"`

	// CorpusRoot is the validated corpus root.
	CorpusRoot string `json:"corpus_root"`

	// DocsScanned is the corpus size.
	DocsScanned int `json:"docs_scanned"`

	// Incremental marks a change-set-restricted run, with the
	// compared revisions.
	Incremental bool   `json:"incremental,omitempty"`
	Base        string `json:"base,omitempty"`
	Head        string `json:"head,omitempty"`

	// Partial marks a run cancelled before all rules finished.
	Partial bool `json:"partial,omitempty"`

	// RuleIDs are the rules that executed.
	RuleIDs []string `json:"rule_ids"`

	// Findings is the full ordered result list.
	Findings []engine.Finding `json:"findings"`

	// Summary is the aggregate counts and quality score.
	Summary scoring.Summary `json:"summary"`

	// TrendDelta is the signed score difference against the most
	// recent prior report. Nil when no prior report exists.
	TrendDelta *float64 `json:"trend_delta,omitempty"`
}

// Build assembles a MetricsReport from a run result.
func Build(run *engine.RunResult, corpusRoot string, summary scoring.Summary) *MetricsReport {
	return &MetricsReport{
		RunID:       uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		CorpusRoot:  corpusRoot,
		DocsScanned: run.DocsScanned,
		Partial:     run.Partial,
		RuleIDs:     run.RuleIDs,
		Findings:    run.Findings,
		Summary:     summary,
	}
}

// =============================================================================
// HISTORY
// =============================================================================

// History is the rolling window of persisted reports used for trend
// computation.
//
// Reports are keyed by their UTC timestamp in RFC 3339 form, so
// lexicographic key order is chronological order.
type History struct {
	store *store.Store
	keep  int
}

// NewHistory wraps a store as report history retaining keep reports.
func NewHistory(s *store.Store, keep int) *History {
	if keep <= 0 {
		keep = 30
	}
	return &History{store: s, keep: keep}
}

// Latest returns the most recent persisted report.
func (h *History) Latest() (*MetricsReport, bool, error) {
	keys, err := h.store.Keys(historyPrefix)
	if err != nil {
		return nil, false, err
	}
	if len(keys) == 0 {
		return nil, false, nil
	}

	data, found, err := h.store.Get(keys[len(keys)-1])
	if err != nil || !found {
		return nil, false, err
	}

	var rep MetricsReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, false, fmt.Errorf("decode stored report %s: %w", keys[len(keys)-1], err)
	}
	return &rep, true, nil
}

// Append persists a report and prunes beyond the retention window.
// Prior reports are never mutated; retention only removes whole
// entries from the old end.
func (h *History) Append(rep *MetricsReport) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	key := historyPrefix + rep.Timestamp.UTC().Format(historyKeyLayout)
	if err := h.store.Set(key, data); err != nil {
		return fmt.Errorf("persist report: %w", err)
	}

	keys, err := h.store.Keys(historyPrefix)
	if err != nil {
		return err
	}
	sort.Strings(keys)
	for len(keys) > h.keep {
		if err := h.store.Delete(keys[0]); err != nil {
			return err
		}
		keys = keys[1:]
	}

	return nil
}

// AttachTrend sets the report's trend delta from the latest prior
// report, when one exists. Call before Append so the current report
// is not its own prior.
func (h *History) AttachTrend(rep *MetricsReport) error {
	prior, found, err := h.Latest()
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	delta := scoring.TrendDelta(rep.Summary.Score, prior.Summary.Score)
	rep.TrendDelta = &delta
	return nil
}

// =============================================================================
// ARTIFACT
// =============================================================================

// WriteArtifact writes the machine-readable report under dir using
// atomic replace semantics (temp file + rename).
//
// # Outputs
//
//   - string: The artifact path.
//   - error: Non-nil if the file cannot be written.
func WriteArtifact(rep *MetricsReport, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	name := fmt.Sprintf("docaudit-%s.json", rep.Timestamp.Format("20060102-150405"))
	final := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".docaudit-*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("replace artifact: %w", err)
	}

	slog.Info("Report artifact written",
		"path", final,
		"findings", rep.Summary.Total,
		"score", rep.Summary.Score)

	return final, nil
}

// ReadArtifact loads a previously written artifact.
func ReadArtifact(path string) (*MetricsReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var rep MetricsReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return &rep, nil
}
