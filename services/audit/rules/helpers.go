// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rules implements the validation rule set: quality,
// synchronization, structure, and accessibility checks evaluated by
// the engine runner.
//
// Every rule here is pure. Rules read the document and the shared
// validation context and emit findings; they never mutate either.
package rules

import (
	"context"
	"strings"
	"unicode"

	"github.com/AleutianAI/DocAudit/services/audit/document"
	"github.com/AleutianAI/DocAudit/services/audit/engine"
)

// meta carries the identity shared by all rule implementations.
type meta struct {
	id  string
	cat engine.Category
	sev engine.Severity
}

func (m meta) ID() string                       { return m.id }
func (m meta) Category() engine.Category        { return m.cat }
func (m meta) DefaultSeverity() engine.Severity { return m.sev }

// perDoc adapts a corpus rule that has no per-document evaluation.
// The runner only calls EvaluateCorpus for CorpusRule implementations;
// Evaluate still exists to satisfy the Rule interface.
type perDoc struct{}

func (perDoc) Evaluate(ctx context.Context, doc *document.Document, vctx *engine.Context) ([]engine.Finding, error) {
	return nil, nil
}

// isExternalURL reports whether a link destination leaves the corpus.
func isExternalURL(dest string) bool {
	return strings.HasPrefix(dest, "http://") ||
		strings.HasPrefix(dest, "https://") ||
		strings.HasPrefix(dest, "//") ||
		strings.HasPrefix(dest, "mailto:")
}

// lineText is one prose line with its 1-based source line number.
type lineText struct {
	line int
	text string
}

// proseLines returns the document body lines that are prose: fenced
// code regions are excluded so code samples never trip terminology or
// duplication checks.
func proseLines(doc *document.Document) []lineText {
	var out []lineText
	inFence := false
	fence := ""

	for i, raw := range strings.Split(string(doc.Body), "\n") {
		line := doc.BodyLine + i
		trimmed := strings.TrimSpace(raw)

		if inFence {
			if strings.HasPrefix(trimmed, fence) {
				inFence = false
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = true
			fence = trimmed[:3]
			continue
		}

		if trimmed == "" {
			continue
		}
		out = append(out, lineText{line: line, text: raw})
	}

	return out
}

// wordIndex finds the first case-insensitive, word-bounded occurrence
// of word in s. Returns the 0-based byte index, or -1.
func wordIndex(s, word string) int {
	if word == "" {
		return -1
	}
	lower := strings.ToLower(s)
	target := strings.ToLower(word)

	from := 0
	for {
		idx := strings.Index(lower[from:], target)
		if idx < 0 {
			return -1
		}
		idx += from

		beforeOK := idx == 0 || !isWordRune(rune(lower[idx-1]))
		end := idx + len(target)
		afterOK := end >= len(lower) || !isWordRune(rune(lower[end]))
		if beforeOK && afterOK {
			return idx
		}
		from = idx + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

// sentence is one normalized sentence with its source line.
type sentence struct {
	line int
	text string
	norm string
}

// sentenceEnders terminate a sentence when followed by whitespace or
// end of block.
func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitSentences extracts sentences from the document's prose,
// tracking the line each sentence starts on.
func splitSentences(doc *document.Document) []sentence {
	lines := proseLines(doc)

	var out []sentence
	var buf strings.Builder
	startLine := 0

	flush := func() {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		norm := normalizeSentence(text)
		// Fragments shorter than a few words carry no signal.
		if len(strings.Fields(norm)) < 3 {
			return
		}
		out = append(out, sentence{line: startLine, text: text, norm: norm})
	}

	for _, lt := range lines {
		if buf.Len() == 0 {
			startLine = lt.line
		} else {
			buf.WriteByte(' ')
		}

		runes := []rune(lt.text)
		for i, r := range runes {
			buf.WriteRune(r)
			if isSentenceEnd(r) {
				atEnd := i == len(runes)-1
				followedBySpace := !atEnd && unicode.IsSpace(runes[i+1])
				if atEnd || followedBySpace {
					flush()
					if !atEnd {
						startLine = lt.line
					}
				}
			}
		}
	}
	flush()

	return out
}

// normalizeSentence lowercases, strips markdown punctuation, and
// collapses whitespace so formatting differences do not defeat
// duplicate detection.
func normalizeSentence(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// truncate shortens s for snippets.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
