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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/DocAudit/pkg/logging"
)

// --- Global Command Variables ---
var (
	configPath     string
	docsDir        string
	glossaryPath   string
	exemptionsPath string
	logLevel       string
	logDir         string
	jsonOutput     bool
	quietLogs      bool

	// validate flags
	incremental bool
	baseRev     string
	headRev     string
	checkLinks  bool
	noReport    bool

	// consolidate flags
	applyPlan bool

	// exitCode carries the command outcome to main.
	exitCode int

	logCloser func() error

	rootCmd = &cobra.Command{
		Use:   "docaudit",
		Short: "A cli to validate documentation quality and code/doc synchronization",
		Long: `docaudit parses a markdown corpus, evaluates quality, structure,
accessibility, and synchronization rules, and produces a scored report.
Findings are advisory; only a fatal configuration error fails the run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logCloser = logging.Init(logging.Config{
				Level:   logging.ParseLevel(logLevel),
				LogDir:  logDir,
				Service: "docaudit",
				Quiet:   quietLogs,
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				_ = logCloser()
			}
		},
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Run all validation rules over the corpus and write a report",
		Run:   runValidate, // Defined in cmd_validate.go
	}

	consolidateCmd = &cobra.Command{
		Use:   "consolidate",
		Short: "Plan (and optionally apply) archival of expired deprecated documents",
		Run:   runConsolidate, // Defined in cmd_consolidate.go
	}

	reportCmd = &cobra.Command{
		Use:   "report [artifact.json]",
		Short: "Re-render a previously written report artifact",
		Args:  cobra.MaximumNArgs(1),
		Run:   runReport, // Defined in cmd_report.go
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Re-run validation whenever the corpus changes on disk",
		Run:   runWatch, // Defined in cmd_watch.go
	}
)

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return exitFor(err)
	}
	return exitCode
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Configuration file (YAML); defaults apply when omitted")
	pf.StringVar(&docsDir, "docs", "docs", "Documentation corpus root directory")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&logDir, "log-dir", "", "Directory for JSON log files (disabled when empty)")
	pf.BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON on stdout")
	pf.BoolVar(&quietLogs, "quiet", false, "Suppress stderr logging")

	vf := validateCmd.Flags()
	vf.StringVar(&glossaryPath, "glossary", "", "Canonical terminology glossary (YAML)")
	vf.StringVar(&exemptionsPath, "exemptions", "", "External link exemption list (YAML)")
	vf.BoolVar(&incremental, "incremental", false, "Analyze the git change-set for drift signals")
	vf.StringVar(&baseRev, "base", "main", "Base revision for incremental analysis")
	vf.StringVar(&headRev, "head", "HEAD", "Head revision for incremental analysis")
	vf.BoolVar(&checkLinks, "check-links", false, "Probe external links (network access)")
	vf.BoolVar(&noReport, "no-report", false, "Skip writing the report artifact and history")

	cf := consolidateCmd.Flags()
	cf.BoolVar(&applyPlan, "apply", false, "Apply the plan: move expired documents to the archive")

	rootCmd.AddCommand(validateCmd, consolidateCmd, reportCmd, watchCmd)
}
