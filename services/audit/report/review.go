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
	"sort"
	"strings"

	"github.com/AleutianAI/DocAudit/services/audit/engine"
)

// =============================================================================
// REVIEW SUMMARY
// =============================================================================

// RenderReview produces the condensed markdown summary for change
// review: the most severe findings up to topN, aggregate counts, and
// a pointer to the full artifact.
//
// Renders only from the persisted report, so it can be regenerated
// at any time without a re-run.
func RenderReview(rep *MetricsReport, artifactPath string, topN int) string {
	if topN <= 0 {
		topN = 10
	}

	var b strings.Builder
	b.WriteString("## Documentation Audit\n\n")
	fmt.Fprintf(&b, "**Score: %.2f**", rep.Summary.Score)
	if rep.TrendDelta != nil {
		fmt.Fprintf(&b, " (%+.2f since last run)", *rep.TrendDelta)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%d findings across %d documents", rep.Summary.Total, rep.DocsScanned)
	if rep.Partial {
		b.WriteString(" *(partial run)*")
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "| Severity | Count |\n|---|---|\n")
	for _, tier := range []string{"critical", "high", "medium", "low"} {
		fmt.Fprintf(&b, "| %s | %d |\n", tier, rep.Summary.BySeverity[tier])
	}
	b.WriteString("\n")

	top := topFindings(rep.Findings, topN)
	if len(top) > 0 {
		fmt.Fprintf(&b, "### Top %d findings\n\n", len(top))
		for _, f := range top {
			fmt.Fprintf(&b, "- **%s** `%s` %s:%d — %s\n",
				f.Severity.String(), f.RuleID, f.Path, f.Line, f.Message)
		}
		if rep.Summary.Total > len(top) {
			fmt.Fprintf(&b, "\n…and %d more in the full report.\n", rep.Summary.Total-len(top))
		}
	}

	if artifactPath != "" {
		fmt.Fprintf(&b, "\nFull report: `%s`\n", artifactPath)
	}

	return b.String()
}

// topFindings returns up to n findings ordered by severity descending,
// then by the report's stored path/line order.
func topFindings(findings []engine.Finding, n int) []engine.Finding {
	out := make([]engine.Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity > out[j].Severity
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
