// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package probe verifies externally-referenced URLs without exceeding
// a configured request rate per network origin.
//
// Every probe request, regardless of how many rules or documents ask
// for the same origin, funnels through one token bucket per origin.
// Results are cached with a TTL so unchanged, recently-verified URLs
// cost no network call on subsequent runs. Probe failures are data,
// never fatal: a timeout or DNS error yields an "unreachable" result.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/DocAudit/services/audit/config"
)

// =============================================================================
// RESULTS
// =============================================================================

// Status is the per-URL probe outcome.
type Status string

const (
	// StatusReachable means the origin answered with a non-error code.
	StatusReachable Status = "reachable"

	// StatusUnreachable means timeout, network error, DNS failure, or
	// an HTTP error code.
	StatusUnreachable Status = "unreachable"

	// StatusExempted means the URL or its origin is on the exemption
	// list and was never contacted.
	StatusExempted Status = "exempted"

	// StatusSkipped means the origin's rate budget would be exceeded
	// within the allowed wait; the URL was not contacted this run.
	StatusSkipped Status = "rate-limited-skip"
)

// Result is the outcome of one URL check.
type Result struct {
	// URL is the probed URL.
	URL string `json:"url"`

	// Status is the probe outcome.
	Status Status `json:"status"`

	// HTTPStatus is the observed response code, when a request was
	// made and answered.
	HTTPStatus int `json:"http_status,omitempty"`

	// CheckedAt is when the result was produced.
	CheckedAt time.Time `json:"checked_at"`

	// Cached indicates the result was served from the cross-run cache.
	Cached bool `json:"cached,omitempty"`

	// Reason carries the exemption reason or the network error text.
	Reason string `json:"reason,omitempty"`
}

// Cache persists probe results across runs, keyed by URL.
type Cache interface {
	// Get returns a previously stored result that is still within its
	// TTL window.
	Get(rawURL string) (Result, bool)

	// Put stores a result.
	Put(rawURL string, r Result)
}

// Fetcher issues one probe request and returns the HTTP status code.
// Swapped out in tests.
type Fetcher func(ctx context.Context, rawURL string) (int, error)

// =============================================================================
// PROBER
// =============================================================================

// Options configures a Prober.
type Options struct {
	// RatePerOrigin is the maximum requests per second per origin.
	// Default: 1.
	RatePerOrigin float64

	// Timeout bounds one probe request. Default: 10s.
	Timeout time.Duration

	// MaxWait bounds how long a request may queue behind its origin's
	// token bucket before it is skipped. Zero waits indefinitely.
	MaxWait time.Duration

	// Exemptions lists URLs and origins that are never probed.
	Exemptions *config.Exemptions

	// Cache is the cross-run result cache. Nil disables caching.
	Cache Cache

	// Fetcher overrides the HTTP fetch. Nil uses the default client.
	Fetcher Fetcher

	// Concurrency bounds simultaneous in-flight probes across all
	// origins. Default: 8.
	Concurrency int
}

// Prober is the rate-limited external resource verifier.
//
// # Thread Safety
//
// Safe for concurrent use. Per-origin limiters are created lazily
// under a mutex; everything else is immutable after construction.
type Prober struct {
	opts Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	exemptURLs    map[string]bool
	exemptOrigins map[string]bool
	reasons       map[string]string
}

// New creates a Prober.
func New(opts Options) *Prober {
	if opts.RatePerOrigin <= 0 {
		opts.RatePerOrigin = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Fetcher == nil {
		opts.Fetcher = defaultFetcher(opts.Timeout)
	}

	p := &Prober{
		opts:          opts,
		limiters:      make(map[string]*rate.Limiter),
		exemptURLs:    make(map[string]bool),
		exemptOrigins: make(map[string]bool),
		reasons:       make(map[string]string),
	}

	if ex := opts.Exemptions; ex != nil {
		for _, u := range ex.URLs {
			p.exemptURLs[u] = true
		}
		for _, o := range ex.Origins {
			p.exemptOrigins[strings.ToLower(o)] = true
		}
		for k, v := range ex.Reasons {
			p.reasons[k] = v
		}
	}

	return p
}

// Check probes a single URL, honoring exemptions, the cache, and the
// per-origin rate limit.
//
// # Description
//
// Exempted URLs are reported without contact. A cached result within
// its TTL is reused. Otherwise the request waits its turn on the
// origin's token bucket; if the wait would exceed MaxWait the URL is
// skipped for this run. Network failures of any kind degrade to
// StatusUnreachable, never an error.
func (p *Prober) Check(ctx context.Context, rawURL string) Result {
	now := time.Now().UTC()

	if reason, ok := p.exempt(rawURL); ok {
		return Result{URL: rawURL, Status: StatusExempted, CheckedAt: now, Reason: reason}
	}

	if p.opts.Cache != nil {
		if r, ok := p.opts.Cache.Get(rawURL); ok {
			r.Cached = true
			return r
		}
	}

	origin, err := Origin(rawURL)
	if err != nil {
		return Result{
			URL:       rawURL,
			Status:    StatusUnreachable,
			CheckedAt: now,
			Reason:    fmt.Sprintf("invalid URL: %v", err),
		}
	}

	if !p.waitTurn(ctx, origin) {
		return Result{URL: rawURL, Status: StatusSkipped, CheckedAt: now,
			Reason: "origin rate budget exhausted"}
	}

	code, fetchErr := p.opts.Fetcher(ctx, rawURL)
	r := Result{URL: rawURL, CheckedAt: time.Now().UTC(), HTTPStatus: code}
	switch {
	case fetchErr != nil:
		r.Status = StatusUnreachable
		r.Reason = fetchErr.Error()
	case code >= 400:
		r.Status = StatusUnreachable
		r.Reason = fmt.Sprintf("HTTP %d", code)
	default:
		r.Status = StatusReachable
	}

	if p.opts.Cache != nil {
		p.opts.Cache.Put(rawURL, r)
	}

	slog.Debug("Probed external URL",
		"url", rawURL,
		"status", string(r.Status),
		"http_status", code)

	return r
}

// CheckAll probes a set of URLs concurrently.
//
// # Description
//
// URLs are deduplicated and probed with bounded concurrency; the
// per-origin token bucket still serializes requests to one origin at
// the configured rate, so total wall-clock time is bounded by the
// busiest origin. Results are returned sorted by URL for
// deterministic reports.
func (p *Prober) CheckAll(ctx context.Context, urls []string) []Result {
	unique := make([]string, 0, len(urls))
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	sort.Strings(unique)

	results := make([]Result, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, u := range unique {
		i, u := i, u
		g.Go(func() error {
			results[i] = p.Check(gctx, u)
			return nil
		})
	}
	// Workers never return errors; failures are represented as data.
	_ = g.Wait()

	return results
}

// exempt reports whether rawURL is exempted, and the configured reason.
func (p *Prober) exempt(rawURL string) (string, bool) {
	if p.exemptURLs[rawURL] {
		return p.reasons[rawURL], true
	}
	if origin, err := Origin(rawURL); err == nil && p.exemptOrigins[origin] {
		return p.reasons[origin], true
	}
	return "", false
}

// waitTurn blocks until the origin's token bucket admits one request.
// Returns false when the wait would exceed MaxWait or the context is
// cancelled.
func (p *Prober) waitTurn(ctx context.Context, origin string) bool {
	limiter := p.limiter(origin)

	if p.opts.MaxWait > 0 {
		res := limiter.Reserve()
		if !res.OK() {
			return false
		}
		delay := res.Delay()
		if delay > p.opts.MaxWait {
			res.Cancel()
			return false
		}
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return true
		case <-ctx.Done():
			res.Cancel()
			return false
		}
	}

	return limiter.Wait(ctx) == nil
}

func (p *Prober) limiter(origin string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[origin]
	if !ok {
		l = rate.NewLimiter(rate.Limit(p.opts.RatePerOrigin), 1)
		p.limiters[origin] = l
	}
	return l
}

// Origin extracts the lowercased host[:port] rate-limiting unit of a
// URL.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL has no host: %s", rawURL)
	}
	return strings.ToLower(u.Host), nil
}

// defaultFetcher issues a HEAD request, falling back to GET when the
// server rejects HEAD.
func defaultFetcher(timeout time.Duration) Fetcher {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context, rawURL string) (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
		if err != nil {
			return 0, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return 0, err
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusMethodNotAllowed {
			req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return 0, err
			}
			resp, err = client.Do(req)
			if err != nil {
				return 0, err
			}
			resp.Body.Close()
		}

		return resp.StatusCode, nil
	}
}

// MarshalResult encodes a Result for cache storage.
func MarshalResult(r Result) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalResult decodes a cached Result.
func UnmarshalResult(data []byte) (Result, error) {
	var r Result
	err := json.Unmarshal(data, &r)
	return r, err
}
