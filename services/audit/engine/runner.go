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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/DocAudit/services/audit/document"
)

// State tracks the runner's lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateLoading          State = "loading"
	StateExecuting        State = "executing"
	StateAggregating      State = "aggregating"
	StateDone             State = "done"
	StateFatalConfigError State = "fatal_config_error"
)

// RunResult is the raw outcome of one engine run, before scoring.
type RunResult struct {
	// Findings is the flat result list, ordered by path, line, rule
	// identifier, then message for stable report diffing.
	Findings []Finding `json:"findings"`

	// DocsScanned is the corpus size of this run.
	DocsScanned int `json:"docs_scanned"`

	// RuleIDs are the identifiers of all rules that executed.
	RuleIDs []string `json:"rule_ids"`

	// Partial marks a run that was cancelled before every rule
	// finished. The findings present are complete for the rules that
	// did finish.
	Partial bool `json:"partial,omitempty"`
}

// Runner executes the active rule set over a corpus.
//
// # Thread Safety
//
// A Runner is single-use per run. Create one per Run call; the
// registry it wraps is shared freely.
type Runner struct {
	registry *Registry

	mu    sync.Mutex
	state State
}

// NewRunner creates a runner over the given registry.
func NewRunner(registry *Registry) *Runner {
	return &Runner{registry: registry, state: StateIdle}
}

// State returns the runner's current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Run evaluates every active rule against the corpus.
//
// # Description
//
// Rules fan out in parallel; rules are pure and the context is
// read-only, so no synchronization beyond the final merge is needed.
// A rule that panics or returns an error is converted into a single
// synthetic "rule crashed" finding tagged with that rule's identifier
// and execution continues; one rule's defect never suppresses the
// rest of the report. Cancellation stops scheduling new evaluations
// and returns the findings of completed ones, marked Partial.
//
// # Inputs
//
//   - ctx: Context for cancellation.
//   - vctx: The per-run validation context.
//
// # Outputs
//
//   - *RunResult: Ordered findings. Non-nil even on cancellation.
//   - error: Non-nil only for invalid invocation (nil context/corpus).
func (r *Runner) Run(ctx context.Context, vctx *Context) (*RunResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	r.setState(StateLoading)
	if vctx == nil || vctx.Corpus == nil || vctx.Config == nil {
		r.setState(StateFatalConfigError)
		return nil, fmt.Errorf("validation context is incomplete")
	}

	active := r.registry.Active(vctx.Config)
	ruleIDs := make([]string, 0, len(active))
	for _, rule := range active {
		ruleIDs = append(ruleIDs, rule.ID())
	}

	r.setState(StateExecuting)
	slog.Info("Rule execution started",
		"rules", len(active),
		"documents", vctx.Corpus.Len(),
		"incremental", vctx.Changes != nil)

	perRule := make([][]Finding, len(active))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, rule := range active {
		i, rule := i, rule
		g.Go(func() error {
			perRule[i] = r.evaluateRule(gctx, rule, vctx)
			return nil
		})
	}
	// Workers never return errors; crashes become findings.
	_ = g.Wait()

	r.setState(StateAggregating)

	var all []Finding
	for _, findings := range perRule {
		all = append(all, findings...)
	}

	// Stable merge: execution interleaving must not show in output.
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Message < b.Message
	})

	result := &RunResult{
		Findings:    all,
		DocsScanned: vctx.Corpus.Len(),
		RuleIDs:     ruleIDs,
		Partial:     ctx.Err() != nil,
	}

	r.setState(StateDone)
	slog.Info("Rule execution finished",
		"findings", len(all),
		"partial", result.Partial)

	return result, nil
}

// evaluateRule runs one rule over the corpus (or once, for corpus
// rules), normalizing severity and capturing crashes.
func (r *Runner) evaluateRule(ctx context.Context, rule Rule, vctx *Context) []Finding {
	severity := EffectiveSeverity(rule, vctx.Config)

	var out []Finding
	collect := func(findings []Finding, err error, docPath string) {
		if err != nil {
			// Cancellation is not a rule defect; the result's Partial
			// flag already records it.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			out = append(out, crashFinding(rule, severity, docPath, err))
			return
		}
		for _, f := range findings {
			f.RuleID = rule.ID()
			f.Category = rule.Category()
			f.Severity = severity
			out = append(out, f)
		}
	}

	if cr, ok := rule.(CorpusRule); ok {
		findings, err := safeEvalCorpus(ctx, cr, vctx)
		collect(findings, err, "")
		return out
	}

	for _, doc := range vctx.Corpus.Docs {
		if ctx.Err() != nil {
			return out
		}
		if doc.IsExempt(rule.ID()) {
			continue
		}
		findings, err := safeEval(ctx, rule, doc, vctx)
		collect(findings, err, doc.RelPath)
	}

	return out
}

// safeEval invokes Evaluate with panic capture.
func safeEval(ctx context.Context, rule Rule, doc *document.Document, vctx *Context) (findings []Finding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			findings = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return rule.Evaluate(ctx, doc, vctx)
}

// safeEvalCorpus invokes EvaluateCorpus with panic capture.
func safeEvalCorpus(ctx context.Context, rule CorpusRule, vctx *Context) (findings []Finding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			findings = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return rule.EvaluateCorpus(ctx, vctx)
}

// crashFinding converts a rule failure into a synthetic finding so the
// defect shows up in the report instead of suppressing it.
func crashFinding(rule Rule, severity Severity, docPath string, err error) Finding {
	slog.Error("Rule crashed",
		"rule", rule.ID(),
		"path", docPath,
		"error", err)

	return Finding{
		RuleID:   rule.ID(),
		Category: rule.Category(),
		Severity: severity,
		Path:     docPath,
		Message:  fmt.Sprintf("rule crashed during evaluation: %v", err),
	}
}
