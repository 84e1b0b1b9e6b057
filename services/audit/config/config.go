// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the run configuration, glossary, and probe
// exemption list.
//
// Configuration errors are the only fatal error class in the engine:
// a malformed file here aborts the run before any rule executes, with
// the offending file and parse location surfaced to the operator.
// Everything else in the pipeline degrades to findings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIG
// =============================================================================

// RuleSetting is the per-rule configuration.
type RuleSetting struct {
	// Enabled toggles the rule. Rules default to enabled; only an
	// explicit false disables.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Severity overrides the rule's default tier. One of critical,
	// high, medium, low.
	Severity string `yaml:"severity,omitempty"`
}

// ProbeConfig configures the external resource prober.
type ProbeConfig struct {
	// RatePerOrigin is the maximum requests per second per origin.
	RatePerOrigin float64 `yaml:"rate_per_origin"`

	// Timeout bounds a single probe request.
	Timeout time.Duration `yaml:"timeout"`

	// CacheTTL is how long a probe result stays valid.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// MaxWait bounds how long a probe may queue behind the origin
	// rate limiter before being skipped. Zero means wait forever.
	MaxWait time.Duration `yaml:"max_wait"`
}

// ReportConfig configures report output and retention.
type ReportConfig struct {
	// Dir is where report artifacts and history are written.
	Dir string `yaml:"dir"`

	// ReviewTopN is how many findings the condensed review summary
	// includes, highest severity first.
	ReviewTopN int `yaml:"review_top_n"`

	// Keep is how many historical reports to retain for trends.
	Keep int `yaml:"keep"`
}

// ConsolidateConfig configures the deprecation utility.
type ConsolidateConfig struct {
	// LedgerPath is the deprecation ledger file.
	LedgerPath string `yaml:"ledger"`

	// ArchiveDir is where expired documents are relocated, relative
	// to the corpus root.
	ArchiveDir string `yaml:"archive_dir"`
}

// Config is the immutable per-run configuration.
//
// # Thread Safety
//
// Treat as immutable after Load. The validation context shares it by
// reference across all rule evaluations.
type Config struct {
	// Rules holds per-rule settings keyed by rule identifier.
	Rules map[string]RuleSetting `yaml:"rules,omitempty"`

	// SeverityWeights maps severity tier to scoring weight. Weights
	// must be monotonically decreasing from critical to low.
	SeverityWeights map[string]float64 `yaml:"severity_weights,omitempty"`

	// RequiredSections maps document type to the ordered headings a
	// document of that type must contain.
	RequiredSections map[string][]string `yaml:"required_sections,omitempty"`

	// VagueWords is the denylist of subjective adjectives flagged in
	// spec-type documents.
	VagueWords []string `yaml:"vague_words,omitempty"`

	// BoilerplateAllow lists phrases exempt from duplicate detection.
	BoilerplateAllow []string `yaml:"boilerplate_allow,omitempty"`

	// NamingAllow lists file names exempt from the naming convention
	// (conventional upper-case files like README.md).
	NamingAllow []string `yaml:"naming_allow,omitempty"`

	// DriftOwners maps a change signal (schema, routes, env) to the
	// corpus-relative paths of documents owning that subject, in
	// addition to documents that declare the subject in front-matter.
	DriftOwners map[string][]string `yaml:"drift_owners,omitempty"`

	// DuplicationWindow is the sliding-window size in sentences.
	DuplicationWindow int `yaml:"duplication_window"`

	Probe       ProbeConfig       `yaml:"probe"`
	Report      ReportConfig      `yaml:"report"`
	Consolidate ConsolidateConfig `yaml:"consolidate"`
}

// Default returns the built-in configuration.
//
// # Outputs
//
//	*Config - Ready-to-use defaults; Load layers file values on top.
func Default() *Config {
	return &Config{
		Rules: map[string]RuleSetting{},
		SeverityWeights: map[string]float64{
			"critical": 50,
			"high":     20,
			"medium":   5,
			"low":      1,
		},
		RequiredSections: map[string][]string{
			"architecture": {"Overview", "Components"},
			"feature":      {"Summary", "Behavior"},
		},
		VagueWords: []string{
			"fast", "easy", "simple", "robust", "scalable",
			"user-friendly", "performant", "seamless", "efficient",
			"flexible",
		},
		BoilerplateAllow: []string{
			"see the readme",
			"all rights reserved",
			"this page is a work in progress",
		},
		NamingAllow: []string{
			"README.md", "CHANGELOG.md", "CONTRIBUTING.md",
			"LICENSE.md", "SECURITY.md",
		},
		DriftOwners: map[string][]string{
			"schema": {"architecture/data-model.md"},
			"routes": {"reference/api.md"},
			"env":    {"guides/configuration.md"},
		},
		DuplicationWindow: 3,
		Probe: ProbeConfig{
			RatePerOrigin: 1.0,
			Timeout:       10 * time.Second,
			CacheTTL:      24 * time.Hour,
		},
		Report: ReportConfig{
			Dir:        ".docaudit/reports",
			ReviewTopN: 10,
			Keep:       30,
		},
		Consolidate: ConsolidateConfig{
			LedgerPath: "deprecations.yaml",
			ArchiveDir: "archive",
		},
	}
}

// validTiers is the closed severity vocabulary accepted in overrides
// and weight maps.
var validTiers = map[string]bool{
	"critical": true,
	"high":     true,
	"medium":   true,
	"low":      true,
}

// Load reads a YAML configuration file layered over Default.
//
// # Inputs
//
//   - path: Configuration file path. Empty returns Default unchanged.
//
// # Outputs
//
//   - *Config: The merged configuration.
//   - error: A *FatalError when the file is unreadable, malformed, or
//     references an unknown severity tier.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FatalError{Path: path, Err: err}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &FatalError{Path: path, Err: err}
	}

	if err := cfg.validate(); err != nil {
		return nil, &FatalError{Path: path, Err: err}
	}

	return cfg, nil
}

func (c *Config) validate() error {
	for id, rs := range c.Rules {
		if rs.Severity != "" && !validTiers[rs.Severity] {
			return fmt.Errorf("rule %q: unknown severity tier %q (want critical, high, medium, or low)", id, rs.Severity)
		}
	}
	for tier := range c.SeverityWeights {
		if !validTiers[tier] {
			return fmt.Errorf("severity_weights: unknown tier %q", tier)
		}
	}
	if c.SeverityWeights["critical"] < c.SeverityWeights["high"] ||
		c.SeverityWeights["high"] < c.SeverityWeights["medium"] ||
		c.SeverityWeights["medium"] < c.SeverityWeights["low"] {
		return fmt.Errorf("severity_weights must be monotonically decreasing from critical to low")
	}
	if c.DuplicationWindow < 2 {
		return fmt.Errorf("duplication_window must be at least 2, got %d", c.DuplicationWindow)
	}
	if c.Probe.RatePerOrigin <= 0 {
		return fmt.Errorf("probe.rate_per_origin must be positive, got %g", c.Probe.RatePerOrigin)
	}
	return nil
}

// RuleEnabled reports whether a rule is active under this config.
func (c *Config) RuleEnabled(id string) bool {
	rs, ok := c.Rules[id]
	if !ok || rs.Enabled == nil {
		return true
	}
	return *rs.Enabled
}

// SeverityOverride returns the configured override tier for a rule,
// or "" when the rule keeps its default.
func (c *Config) SeverityOverride(id string) string {
	return c.Rules[id].Severity
}
