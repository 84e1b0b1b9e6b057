// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package changeset

import (
	"regexp"
	"sort"
	"strings"
)

// signalMatcher pairs path and content patterns for one signal.
// A match on either attaches the signal.
type signalMatcher struct {
	signal  Signal
	paths   []*regexp.Regexp
	content []*regexp.Regexp
}

var matchers = []signalMatcher{
	{
		signal: SignalSchema,
		paths: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(^|/)migrations?(/|$)`),
			regexp.MustCompile(`(?i)(^|/)schema[^/]*\.(sql|go|py|prisma)$`),
			regexp.MustCompile(`(?i)\.sql$`),
			regexp.MustCompile(`(?i)(^|/)models?(/|\.)`),
		},
		content: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(CREATE|ALTER|DROP)\s+(TABLE|INDEX|COLUMN)\b`),
			regexp.MustCompile(`(?i)\bADD\s+CONSTRAINT\b`),
		},
	},
	{
		signal: SignalRoutes,
		paths: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(^|/)(routes?|routing|handlers?|controllers?|endpoints?)(/|[^/]*\.\w+$)`),
			regexp.MustCompile(`(?i)(^|/)(api|urls)[^/]*\.\w+$`),
		},
		content: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\.(Get|Post|Put|Patch|Delete|Handle|HandleFunc)\(\s*"/`),
			regexp.MustCompile(`(?i)\b(GET|POST|PUT|PATCH|DELETE)\s+/[a-z0-9_\-/{}:]*`),
			regexp.MustCompile(`(?i)@(app|router)\.(get|post|put|patch|delete)\(`),
		},
	},
	{
		signal: SignalEnv,
		paths: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(^|/)\.env(\.|$)`),
			regexp.MustCompile(`(?i)(^|/)(config|settings)[^/]*\.\w+$`),
			regexp.MustCompile(`(?i)(^|/)docker-compose[^/]*\.ya?ml$`),
		},
		content: []*regexp.Regexp{
			regexp.MustCompile(`\bos\.Getenv\(\s*"`),
			regexp.MustCompile(`\bos\.LookupEnv\(\s*"`),
			regexp.MustCompile(`(?m)^\s*[A-Z][A-Z0-9_]{2,}=`),
			regexp.MustCompile(`\bprocess\.env\.[A-Z]`),
		},
	},
}

// detectSignals attaches zero or more signals to a change from its
// path and hunk content. Deliberately loose: the drift rules present
// their findings as best-effort heuristics, so over-matching only
// costs an ignorable advisory line.
func detectSignals(path, content string) []Signal {
	seen := map[Signal]bool{}

	for _, m := range matchers {
		for _, re := range m.paths {
			if re.MatchString(path) {
				seen[m.signal] = true
				break
			}
		}
		if seen[m.signal] {
			continue
		}
		for _, re := range m.content {
			if re.MatchString(content) {
				seen[m.signal] = true
				break
			}
		}
	}

	// Documentation changes never carry code signals.
	if strings.HasSuffix(strings.ToLower(path), ".md") {
		return nil
	}

	out := make([]Signal, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if len(out) == 0 {
		return nil
	}
	return out
}
