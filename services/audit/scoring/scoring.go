// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scoring maps findings to a quality score and per-category
// breakdown.
//
// Scoring is a pure function of the finding list and the corpus size.
// A persisted report therefore always reproduces its own score; no
// hidden run-time state participates.
package scoring

import (
	"math"

	"github.com/AleutianAI/DocAudit/services/audit/config"
	"github.com/AleutianAI/DocAudit/services/audit/engine"
)

// Summary is the aggregated view of one run's findings.
type Summary struct {
	// Score is the overall quality score in [0, 100].
	Score float64 `json:"score"`

	// Total is the number of findings.
	Total int `json:"total"`

	// BySeverity counts findings per tier name.
	BySeverity map[string]int `json:"by_severity"`

	// ByCategory counts findings per rule category.
	ByCategory map[string]int `json:"by_category"`
}

// Weights resolves the severity-to-weight mapping from configuration.
// Missing tiers fall back to the built-in defaults.
func Weights(cfg *config.Config) map[engine.Severity]float64 {
	defaults := config.Default().SeverityWeights
	get := func(tier string) float64 {
		if cfg != nil {
			if w, ok := cfg.SeverityWeights[tier]; ok {
				return w
			}
		}
		return defaults[tier]
	}
	return map[engine.Severity]float64{
		engine.SeverityCritical: get("critical"),
		engine.SeverityHigh:     get("high"),
		engine.SeverityMedium:   get("medium"),
		engine.SeverityLow:      get("low"),
	}
}

// Summarize aggregates findings into counts and the quality score.
//
// # Description
//
// Score = 100 − Σ(weight(severity) × count(severity)) / norm, clamped
// to [0, 100], where norm is the corpus size (minimum 1) so large
// corpora are not penalized per-document. Weights are monotonically
// decreasing from critical to low, so a single critical finding
// always scores below a single low finding on the same corpus.
//
// # Inputs
//
//   - findings: The run's full result list.
//   - docsScanned: Corpus size used for normalization.
//   - weights: Severity weight mapping (from Weights).
//
// # Outputs
//
//   - Summary: Counts and score. Deterministic for fixed inputs.
func Summarize(findings []engine.Finding, docsScanned int, weights map[engine.Severity]float64) Summary {
	s := Summary{
		Total:      len(findings),
		BySeverity: map[string]int{"critical": 0, "high": 0, "medium": 0, "low": 0},
		ByCategory: map[string]int{},
	}

	var weighted float64
	for _, f := range findings {
		s.BySeverity[f.Severity.String()]++
		s.ByCategory[string(f.Category)]++
		weighted += weights[f.Severity]
	}

	norm := float64(docsScanned)
	if norm < 1 {
		norm = 1
	}

	s.Score = clamp(100-weighted/norm, 0, 100)
	return s
}

// TrendDelta is the signed difference between the current score and a
// prior one. Callers handle the no-prior case; absence of a prior
// report yields no trend, not a zero delta.
func TrendDelta(current, prior float64) float64 {
	return round2(current - prior)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
