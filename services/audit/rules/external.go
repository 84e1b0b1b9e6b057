// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/DocAudit/services/audit/engine"
	"github.com/AleutianAI/DocAudit/services/audit/probe"
)

// =============================================================================
// QUALITY: EXTERNAL LINKS
// =============================================================================

// ExternalLinks verifies externally-referenced URLs through the
// prober.
//
// # Description
//
// Runs corpus-wide so each unique URL is probed once regardless of
// how many documents reference it. All requests funnel through the
// prober's per-origin token bucket; this rule only adds bounded
// fan-out across distinct URLs. Unreachable URLs produce one finding
// per referencing location. Exempted and rate-limit-skipped URLs
// produce none: the former by operator decision, the latter because
// the URL will be probed on a later run.
type ExternalLinks struct {
	meta
	perDoc
}

// NewExternalLinks creates the quality/external-links rule.
func NewExternalLinks() *ExternalLinks {
	return &ExternalLinks{meta: meta{
		id:  "quality/external-links",
		cat: engine.CategoryQuality,
		sev: engine.SeverityMedium,
	}}
}

// linkRef is one (document, line) reference to a URL.
type linkRef struct {
	path string
	line int
}

// EvaluateCorpus probes every unique external URL in the corpus.
func (r *ExternalLinks) EvaluateCorpus(ctx context.Context, vctx *engine.Context) ([]engine.Finding, error) {
	if vctx.Prober == nil {
		return nil, nil
	}

	refs := make(map[string][]linkRef)
	for _, doc := range vctx.Corpus.Docs {
		if doc.IsExempt(r.ID()) {
			continue
		}
		for _, link := range doc.Links() {
			dest := strings.TrimSpace(link.Destination)
			if !strings.HasPrefix(dest, "http://") && !strings.HasPrefix(dest, "https://") {
				continue
			}
			refs[dest] = append(refs[dest], linkRef{path: doc.RelPath, line: link.Line})
		}
	}
	if len(refs) == 0 {
		return nil, nil
	}

	results := make(map[string]probe.Result, len(refs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for url := range refs {
		url := url
		g.Go(func() error {
			res := vctx.Prober.Check(gctx, url)
			mu.Lock()
			results[url] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var out []engine.Finding
	for url, res := range results {
		if res.Status != probe.StatusUnreachable {
			continue
		}
		for _, ref := range refs[url] {
			out = append(out, engine.Finding{
				Path:       ref.path,
				Line:       ref.line,
				Message:    fmt.Sprintf("external link %s is unreachable: %s", url, res.Reason),
				Suggestion: "fix or remove the link, or add it to the exemption list with a reason",
			})
		}
	}

	return out, nil
}
