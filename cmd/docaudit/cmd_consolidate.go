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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DocAudit/services/audit/config"
	"github.com/AleutianAI/DocAudit/services/audit/document"
	"github.com/AleutianAI/DocAudit/services/audit/ledger"
)

// runConsolidate is the entry point of the consolidate command.
func runConsolidate(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode = consolidate(ctx)
}

// consolidate plans archival of expired deprecated documents and,
// behind --apply, executes the plan. The default is a dry run that
// mutates nothing.
func consolidate(ctx context.Context) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		return exitFor(err)
	}

	led, err := ledger.Load(cfg.Consolidate.LedgerPath)
	if err != nil {
		return exitFor(err)
	}

	corpus, err := document.Load(ctx, docsDir)
	if err != nil {
		return exitFor(err)
	}

	now := time.Now().UTC()
	plan := ledger.BuildPlan(corpus, led, cfg.Consolidate.ArchiveDir, now)

	if applyPlan {
		if err := ledger.Apply(plan, corpus.Root, now); err != nil {
			return exitFor(err)
		}
	}

	if jsonOutput {
		if err := OutputJSON(plan); err != nil {
			return exitFor(err)
		}
		return CLIExitSuccess
	}

	renderPlan(plan, applyPlan)
	return CLIExitSuccess
}

// renderPlan prints the plan for the operator.
func renderPlan(plan *ledger.Plan, applied bool) {
	if plan.Empty() {
		fmt.Println("Nothing to consolidate: no expired deprecations reference the corpus.")
		return
	}

	if len(plan.Moves) > 0 {
		verb := "Would archive"
		if applied {
			verb = "Archived"
		}
		fmt.Printf("%s %d document(s):\n", verb, len(plan.Moves))
		for _, m := range plan.Moves {
			fmt.Printf("  %s -> %s  (feature: %s)\n", m.From, m.To, m.Feature)
		}
	}

	if len(plan.References) > 0 {
		fmt.Printf("\nLingering references needing manual cleanup:\n")
		for _, r := range plan.References {
			line := fmt.Sprintf("  %s:%d  mentions %q", r.Path, r.Line, r.Feature)
			if r.MigrationPath != "" {
				line += "  (migrate to: " + r.MigrationPath + ")"
			}
			fmt.Println(line)
		}
	}

	if len(plan.MissingOwners) > 0 {
		fmt.Printf("\nLedger references documents missing from the corpus:\n")
		for _, p := range plan.MissingOwners {
			fmt.Printf("  %s\n", p)
		}
	}

	if !applied {
		fmt.Println("\nDry run. Re-run with --apply to execute the plan.")
	}
}
