// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package document

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Corpus is the full set of documents processed in one run.
//
// # Thread Safety
//
// Immutable after Load. Safe to share by reference.
type Corpus struct {
	// Root is the absolute corpus root directory.
	Root string

	// Docs are the parsed documents, sorted by RelPath.
	Docs []*Document

	byRel map[string]*Document
}

// Get returns the document at the given corpus-relative path.
func (c *Corpus) Get(relPath string) (*Document, bool) {
	d, ok := c.byRel[relPath]
	return d, ok
}

// Contains reports whether relPath is part of the corpus.
func (c *Corpus) Contains(relPath string) bool {
	_, ok := c.byRel[relPath]
	return ok
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.Docs)
}

// Load walks root and parses every markdown file into a Corpus.
//
// # Description
//
// Files are parsed in parallel; parsing is independent per file.
// Unreadable files degrade to a Document carrying only a diagnostic,
// never an error: a single bad file must not abort the run. Hidden
// directories and common vendor directories are skipped, matching the
// traversal conventions used elsewhere in the codebase.
//
// # Inputs
//
//   - ctx: Context for cancellation.
//   - root: Corpus root directory.
//
// # Outputs
//
//   - *Corpus: Documents sorted by RelPath for deterministic output.
//   - error: Non-nil only when the root itself cannot be walked or the
//     context is cancelled before the walk completes.
func Load(ctx context.Context, root string) (*Corpus, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving corpus root: %w", err)
	}

	var paths []string
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if p != absRoot && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(p), ".md") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus: %w", err)
	}

	docs := make([]*Document, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			rel, relErr := filepath.Rel(absRoot, p)
			if relErr != nil {
				rel = p
			}
			rel = filepath.ToSlash(rel)

			raw, readErr := os.ReadFile(p)
			if readErr != nil {
				slog.Warn("Skipping unreadable document",
					"path", rel,
					"error", readErr)
				mu.Lock()
				docs[i] = &Document{
					Path:    p,
					RelPath: rel,
					Type:    ClassifyPath(rel),
					Diagnostics: []Diagnostic{{
						Code:    "unreadable",
						Message: readErr.Error(),
					}},
				}
				mu.Unlock()
				return nil
			}

			doc := Parse(p, rel, raw)
			mu.Lock()
			docs[i] = doc
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].RelPath < docs[j].RelPath })

	corpus := &Corpus{
		Root:  absRoot,
		Docs:  docs,
		byRel: make(map[string]*Document, len(docs)),
	}
	for _, d := range docs {
		corpus.byRel[d.RelPath] = d
	}

	slog.Debug("Corpus loaded",
		"root", absRoot,
		"documents", len(docs))

	return corpus, nil
}
