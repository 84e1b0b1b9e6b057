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
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/go-diff/diff"
)

// Analyzer computes change-sets from the underlying git repository.
//
// # Thread Safety
//
// Safe for concurrent use; the analyzer holds no mutable state.
type Analyzer struct {
	repoDir string
	timeout time.Duration
}

// NewAnalyzer creates an analyzer rooted at the given repository.
func NewAnalyzer(repoDir string) *Analyzer {
	return &Analyzer{
		repoDir: repoDir,
		timeout: 30 * time.Second,
	}
}

// Analyze computes the ChangeSet between base and head.
//
// # Description
//
// Runs `git diff --find-renames base...head` (merge-base semantics,
// matching what a review workflow compares) and parses the unified
// output. Each changed file is classified by kind and annotated with
// content signals derived from its path and hunk content.
//
// # Inputs
//
//   - ctx: Context for cancellation.
//   - base: Base revision (e.g. "main").
//   - head: Head revision (e.g. "HEAD").
//
// # Outputs
//
//   - *ChangeSet: Changes ordered by path.
//   - error: Non-nil when git itself fails; an empty diff is not an
//     error.
func (a *Analyzer) Analyze(ctx context.Context, base, head string) (*ChangeSet, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	if base == "" || head == "" {
		return nil, fmt.Errorf("base and head revisions are required")
	}

	cmdCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "git", "diff", "--find-renames",
		fmt.Sprintf("%s...%s", base, head))
	cmd.Dir = a.repoDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("git diff timed out after %s", a.timeout)
		}
		return nil, fmt.Errorf("git diff %s...%s: %v: %s", base, head, err,
			strings.TrimSpace(stderr.String()))
	}

	cs, err := ParseDiff(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	cs.Base = base
	cs.Head = head

	slog.Debug("Change-set computed",
		"base", base,
		"head", head,
		"changes", len(cs.Changes))

	return cs, nil
}

// ParseDiff parses unified git diff output into a ChangeSet.
//
// Split out from Analyze so tests can feed diff text directly without
// a repository.
func ParseDiff(raw []byte) (*ChangeSet, error) {
	cs := &ChangeSet{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return cs, nil
	}

	fileDiffs, err := diff.ParseMultiFileDiff(raw)
	if err != nil {
		return nil, fmt.Errorf("parse diff output: %w", err)
	}

	for _, fd := range fileDiffs {
		change := classifyFileDiff(fd)
		change.Signals = detectSignals(change.Path, hunkText(fd))
		cs.Changes = append(cs.Changes, change)
	}

	sort.Slice(cs.Changes, func(i, j int) bool {
		return cs.Changes[i].Path < cs.Changes[j].Path
	})

	return cs, nil
}

// classifyFileDiff derives path, old path, and change kind from one
// file diff.
func classifyFileDiff(fd *diff.FileDiff) Change {
	orig := stripDiffPrefix(fd.OrigName)
	next := stripDiffPrefix(fd.NewName)

	c := Change{Path: next, OldPath: ""}

	switch {
	case orig == "" || fd.OrigName == "/dev/null":
		c.Kind = KindAdded
	case next == "" || fd.NewName == "/dev/null":
		c.Kind = KindRemoved
		c.Path = orig
	case orig != next:
		c.Kind = KindRenamed
		c.OldPath = orig
	default:
		c.Kind = KindModified
	}

	// Pure renames carry no hunks but still have rename headers.
	if c.Kind == KindModified {
		for _, ext := range fd.Extended {
			if strings.HasPrefix(ext, "rename from ") {
				c.Kind = KindRenamed
				c.OldPath = strings.TrimPrefix(ext, "rename from ")
			}
		}
	}

	return c
}

// stripDiffPrefix removes the a/ or b/ prefix git puts on diff paths.
func stripDiffPrefix(name string) string {
	if name == "/dev/null" || name == "" {
		return ""
	}
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}

// hunkText concatenates the added/removed lines of all hunks for
// lightweight content inspection.
func hunkText(fd *diff.FileDiff) string {
	var sb strings.Builder
	for _, h := range fd.Hunks {
		sb.Write(h.Body)
		sb.WriteByte('\n')
	}
	return sb.String()
}
