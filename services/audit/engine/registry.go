// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"fmt"
	"sort"

	"github.com/AleutianAI/DocAudit/services/audit/config"
)

// Registry is the closed set of validation rules for a run.
//
// # Description
//
// Rules are registered once at startup; there is no reflection-based
// plugin loading. New rules are added by extending the rule set at
// compile time, which keeps dispatch exhaustive and identifiers
// stable.
//
// # Thread Safety
//
// Immutable after construction.
type Registry struct {
	rules []Rule
	byID  map[string]Rule
}

// NewRegistry builds a registry from the given rules.
//
// # Outputs
//
//   - *Registry: Rules sorted by identifier.
//   - error: Non-nil on a duplicate or empty rule identifier.
func NewRegistry(rules ...Rule) (*Registry, error) {
	r := &Registry{byID: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		id := rule.ID()
		if id == "" {
			return nil, fmt.Errorf("rule with empty identifier")
		}
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("duplicate rule identifier %q", id)
		}
		r.byID[id] = rule
		r.rules = append(r.rules, rule)
	}

	sort.Slice(r.rules, func(i, j int) bool { return r.rules[i].ID() < r.rules[j].ID() })
	return r, nil
}

// Lookup returns the rule with the given identifier.
func (r *Registry) Lookup(id string) (Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// Has reports whether id exists in the registry.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns every registered rule, sorted by identifier.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Active returns the rules enabled under the given configuration,
// sorted by identifier.
func (r *Registry) Active(cfg *config.Config) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		if cfg == nil || cfg.RuleEnabled(rule.ID()) {
			out = append(out, rule)
		}
	}
	return out
}

// EffectiveSeverity resolves a rule's tier under configuration
// overrides. An unparseable override keeps the default; config.Load
// validates override values, so that path only occurs with
// programmatically built configs.
func EffectiveSeverity(rule Rule, cfg *config.Config) Severity {
	if cfg != nil {
		if o := cfg.SeverityOverride(rule.ID()); o != "" {
			if sev, ok := ParseSeverity(o); ok {
				return sev
			}
		}
	}
	return rule.DefaultSeverity()
}
