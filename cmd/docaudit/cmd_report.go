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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DocAudit/services/audit/config"
	"github.com/AleutianAI/DocAudit/services/audit/report"
	"github.com/AleutianAI/DocAudit/services/audit/store"
)

// runReport is the entry point of the report command.
func runReport(cmd *cobra.Command, args []string) {
	exitCode = renderReport(args)
}

// renderReport re-renders a persisted report: a named artifact when
// given, otherwise the most recent report in history. Every rendered
// form is derived from the same stored data.
func renderReport(args []string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		return exitFor(err)
	}

	var rep *report.MetricsReport
	if len(args) == 1 {
		rep, err = report.ReadArtifact(args[0])
		if err != nil {
			return exitFor(err)
		}
	} else {
		db, oerr := store.Open(store.Config{Path: filepath.Join(cfg.Report.Dir, "state")})
		if oerr != nil {
			return exitFor(fmt.Errorf("no artifact given and history unavailable: %w", oerr))
		}
		defer db.Close()

		history := report.NewHistory(db, cfg.Report.Keep)
		latest, found, herr := history.Latest()
		if herr != nil {
			return exitFor(herr)
		}
		if !found {
			return exitFor(fmt.Errorf("no reports in history; run validate first"))
		}
		rep = latest
	}

	if jsonOutput {
		if err := OutputJSON(rep); err != nil {
			return exitFor(err)
		}
		return CLIExitSuccess
	}

	report.RenderConsole(os.Stdout, rep)
	return CLIExitSuccess
}
