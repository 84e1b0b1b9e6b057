// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DocAudit/services/audit/changeset"
	"github.com/AleutianAI/DocAudit/services/audit/config"
	"github.com/AleutianAI/DocAudit/services/audit/document"
	"github.com/AleutianAI/DocAudit/services/audit/engine"
	"github.com/AleutianAI/DocAudit/services/audit/probe"
	"github.com/AleutianAI/DocAudit/services/audit/report"
	"github.com/AleutianAI/DocAudit/services/audit/rules"
	"github.com/AleutianAI/DocAudit/services/audit/scoring"
	"github.com/AleutianAI/DocAudit/services/audit/store"
)

// runValidate is the entry point of the validate command.
func runValidate(cmd *cobra.Command, args []string) {
	// SIGINT/SIGTERM cancel the run; a cancelled run still writes a
	// partial report from the rules that finished.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode = validate(ctx)
}

// validate runs the full audit pipeline once and returns an exit code.
func validate(ctx context.Context) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		return exitFor(err)
	}
	glossary, err := config.LoadGlossary(glossaryPath)
	if err != nil {
		return exitFor(err)
	}
	exemptions, err := config.LoadExemptions(exemptionsPath)
	if err != nil {
		return exitFor(err)
	}

	corpus, err := document.Load(ctx, docsDir)
	if err != nil {
		return exitFor(err)
	}

	vctx := &engine.Context{
		Config:   cfg,
		Glossary: glossary.Deprecated(),
		Corpus:   corpus,
	}

	if incremental {
		analyzer := changeset.NewAnalyzer(".")
		changes, aerr := analyzer.Analyze(ctx, baseRev, headRev)
		if aerr != nil {
			// Drift rules degrade to silence without a change-set; the
			// rest of the audit still runs.
			slog.Warn("Change-set analysis failed, drift rules disabled",
				"base", baseRev,
				"head", headRev,
				"error", aerr)
		} else {
			vctx.Changes = changes
		}
	}

	var db *store.Store
	if checkLinks || !noReport {
		db, err = store.Open(store.Config{Path: filepath.Join(cfg.Report.Dir, "state")})
		if err != nil {
			// State is an optimization (cache, trends), not a
			// prerequisite. Run without it.
			slog.Warn("State store unavailable, running without cache and history",
				"error", err)
			db = nil
		} else {
			defer db.Close()
		}
	}

	if checkLinks {
		opts := probe.Options{
			RatePerOrigin: cfg.Probe.RatePerOrigin,
			Timeout:       cfg.Probe.Timeout,
			MaxWait:       cfg.Probe.MaxWait,
			Exemptions:    exemptions,
		}
		if db != nil {
			opts.Cache = probe.NewStoreCache(db, cfg.Probe.CacheTTL)
		}
		vctx.Prober = probe.New(opts)
	}

	runner := engine.NewRunner(rules.NewRegistry())
	run, err := runner.Run(ctx, vctx)
	if err != nil {
		return exitFor(err)
	}

	summary := scoring.Summarize(run.Findings, run.DocsScanned, scoring.Weights(cfg))
	rep := report.Build(run, corpus.Root, summary)
	if incremental && vctx.Changes != nil {
		rep.Incremental = true
		rep.Base = baseRev
		rep.Head = headRev
	}

	artifactPath := ""
	if !noReport && db != nil {
		history := report.NewHistory(db, cfg.Report.Keep)
		if err := history.AttachTrend(rep); err != nil {
			slog.Warn("Trend computation failed", "error", err)
		}
		if err := history.Append(rep); err != nil {
			slog.Warn("Report history write failed", "error", err)
		}
		artifactPath, err = report.WriteArtifact(rep, cfg.Report.Dir)
		if err != nil {
			slog.Warn("Report artifact write failed", "error", err)
		}
	}

	// The review summary accompanies the persisted artifact regardless
	// of how this run's output is printed.
	if artifactPath != "" {
		review := report.RenderReview(rep, artifactPath, cfg.Report.ReviewTopN)
		reviewPath := filepath.Join(cfg.Report.Dir, "review.md")
		if werr := os.WriteFile(reviewPath, []byte(review), 0o640); werr != nil {
			slog.Warn("Review summary write failed", "error", werr)
		}
	}

	if jsonOutput {
		if err := OutputJSON(rep); err != nil {
			return exitFor(err)
		}
	} else {
		report.RenderConsole(os.Stdout, rep)
	}

	return CLIExitSuccess
}
