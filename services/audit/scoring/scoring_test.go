// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/DocAudit/services/audit/config"
	"github.com/AleutianAI/DocAudit/services/audit/engine"
)

func finding(sev engine.Severity, cat engine.Category) engine.Finding {
	return engine.Finding{Severity: sev, Category: cat}
}

func TestSummarizeCleanCorpus(t *testing.T) {
	s := Summarize(nil, 10, Weights(config.Default()))

	assert.Equal(t, 100.0, s.Score)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.BySeverity["critical"])
	assert.Empty(t, s.ByCategory)
}

func TestSummarizeSeverityOrdering(t *testing.T) {
	weights := Weights(config.Default())

	critical := Summarize([]engine.Finding{
		finding(engine.SeverityCritical, engine.CategoryQuality),
	}, 5, weights)
	low := Summarize([]engine.Finding{
		finding(engine.SeverityLow, engine.CategoryQuality),
	}, 5, weights)

	assert.Less(t, critical.Score, low.Score,
		"one critical must always cost more than one low")
}

func TestSummarizeCounts(t *testing.T) {
	findings := []engine.Finding{
		finding(engine.SeverityCritical, engine.CategoryQuality),
		finding(engine.SeverityHigh, engine.CategorySync),
		finding(engine.SeverityHigh, engine.CategorySync),
		finding(engine.SeverityMedium, engine.CategoryAccessibility),
		finding(engine.SeverityLow, engine.CategoryStructure),
	}

	s := Summarize(findings, 10, Weights(config.Default()))

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.BySeverity["critical"])
	assert.Equal(t, 2, s.BySeverity["high"])
	assert.Equal(t, 1, s.BySeverity["medium"])
	assert.Equal(t, 1, s.BySeverity["low"])
	assert.Equal(t, 2, s.ByCategory["sync"])

	// 100 - (50 + 20 + 20 + 5 + 1)/10 = 90.4
	assert.InDelta(t, 90.4, s.Score, 1e-9)
}

func TestSummarizeClampsAtZero(t *testing.T) {
	findings := make([]engine.Finding, 0, 10)
	for i := 0; i < 10; i++ {
		findings = append(findings, finding(engine.SeverityCritical, engine.CategoryQuality))
	}

	s := Summarize(findings, 1, Weights(config.Default()))
	assert.Equal(t, 0.0, s.Score, "score never goes negative")
}

func TestSummarizeEmptyCorpusNormalization(t *testing.T) {
	findings := []engine.Finding{finding(engine.SeverityLow, engine.CategoryQuality)}

	zero := Summarize(findings, 0, Weights(config.Default()))
	one := Summarize(findings, 1, Weights(config.Default()))

	assert.Equal(t, one.Score, zero.Score, "norm floors at one document")
}

func TestWeightsFallback(t *testing.T) {
	cfg := config.Default()
	cfg.SeverityWeights = map[string]float64{"critical": 80}

	w := Weights(cfg)
	assert.Equal(t, 80.0, w[engine.SeverityCritical])
	assert.Equal(t, 20.0, w[engine.SeverityHigh], "missing tiers use defaults")
	assert.Equal(t, 1.0, w[engine.SeverityLow])

	require.NotNil(t, Weights(nil))
	assert.Equal(t, 50.0, Weights(nil)[engine.SeverityCritical])
}

func TestTrendDelta(t *testing.T) {
	assert.Equal(t, 2.35, TrendDelta(92.351, 90.0))
	assert.Equal(t, -5.0, TrendDelta(85, 90))
	assert.Equal(t, 0.0, TrendDelta(90, 90))
}
