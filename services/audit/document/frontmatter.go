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
	"bytes"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// frontmatterRE matches a complete YAML front-matter block at the start
// of a file. The closing "---" must appear unindented; "---" inside YAML
// block scalars is always indented, so the boundary is unambiguous.
var frontmatterRE = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n`)

// splitFrontmatter separates a raw file into front-matter YAML and body.
//
// # Outputs
//
//   - map[string]any: Decoded front-matter. Nil when no block exists.
//   - []byte: The body after the block (the whole input when absent).
//   - int: 1-based line on which the body starts.
//   - error: Non-nil when a block exists but its YAML is invalid. The
//     body is still returned so parsing can degrade instead of abort.
func splitFrontmatter(raw []byte) (map[string]any, []byte, int, error) {
	loc := frontmatterRE.FindSubmatchIndex(raw)
	if loc == nil {
		return nil, raw, 1, nil
	}

	block := raw[loc[2]:loc[3]]
	body := raw[loc[1]:]
	bodyLine := bytes.Count(raw[:loc[1]], []byte("\n")) + 1

	meta := map[string]any{}
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return nil, body, bodyLine, fmt.Errorf("decode front-matter: %w", err)
	}

	return meta, body, bodyLine, nil
}

// metaString reads a scalar front-matter value as a string.
func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// metaStringList reads a front-matter value as a list of strings.
// A bare scalar is treated as a single-element list.
func metaStringList(meta map[string]any, key string) []string {
	if meta == nil {
		return nil
	}
	v, ok := meta[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
