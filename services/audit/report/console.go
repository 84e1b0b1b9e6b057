// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/DocAudit/services/audit/engine"
)

// =============================================================================
// CONSOLE RENDERER
// =============================================================================

var (
	styleTitle    = lipgloss.NewStyle().Bold(true)
	styleCritical = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleHigh     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleMedium   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleLow      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleGood     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleDim      = lipgloss.NewStyle().Faint(true)
)

// severityStyle maps a tier to its console style.
func severityStyle(sev engine.Severity) lipgloss.Style {
	switch sev {
	case engine.SeverityCritical:
		return styleCritical
	case engine.SeverityHigh:
		return styleHigh
	case engine.SeverityMedium:
		return styleMedium
	default:
		return styleLow
	}
}

// RenderConsole writes the human-readable form of a report.
//
// # Description
//
// Renders only from the persisted report, grouping findings by
// document in their stored order. Findings are advisory; nothing here
// influences exit status.
func RenderConsole(w io.Writer, rep *MetricsReport) {
	fmt.Fprintln(w, styleTitle.Render("Documentation Audit"))
	fmt.Fprintf(w, "  run %s at %s\n", rep.RunID, rep.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  %d documents scanned, %d rules\n", rep.DocsScanned, len(rep.RuleIDs))
	if rep.Incremental {
		fmt.Fprintf(w, "  incremental: %s...%s\n", rep.Base, rep.Head)
	}
	if rep.Partial {
		fmt.Fprintln(w, styleHigh.Render("  partial: run was cancelled before all rules finished"))
	}
	fmt.Fprintln(w)

	if len(rep.Findings) == 0 {
		fmt.Fprintln(w, styleGood.Render("  No findings."))
	} else {
		lastPath := ""
		for _, f := range rep.Findings {
			if f.Path != lastPath {
				fmt.Fprintln(w, styleTitle.Render("  "+f.Path))
				lastPath = f.Path
			}
			loc := fmt.Sprintf("%d", f.Line)
			if f.Column > 0 {
				loc = fmt.Sprintf("%d:%d", f.Line, f.Column)
			}
			fmt.Fprintf(w, "    %s %s %s %s\n",
				styleDim.Render(loc),
				severityStyle(f.Severity).Render(strings.ToUpper(f.Severity.String())),
				styleDim.Render(f.RuleID),
				f.Message)
			if f.Suggestion != "" {
				fmt.Fprintf(w, "        %s\n", styleDim.Render("hint: "+f.Suggestion))
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  critical=%d high=%d medium=%d low=%d\n",
		styleTitle.Render(fmt.Sprintf("Score %.2f", rep.Summary.Score)),
		rep.Summary.BySeverity["critical"],
		rep.Summary.BySeverity["high"],
		rep.Summary.BySeverity["medium"],
		rep.Summary.BySeverity["low"])
	if rep.TrendDelta != nil {
		delta := *rep.TrendDelta
		switch {
		case delta > 0:
			fmt.Fprintf(w, "  trend: %s\n", styleGood.Render(fmt.Sprintf("+%.2f since last run", delta)))
		case delta < 0:
			fmt.Fprintf(w, "  trend: %s\n", styleHigh.Render(fmt.Sprintf("%.2f since last run", delta)))
		default:
			fmt.Fprintln(w, "  trend: unchanged since last run")
		}
	} else {
		fmt.Fprintln(w, styleDim.Render("  trend: no prior run to compare against"))
	}
}
