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
	"path"
	"strings"
)

// pathTypes maps a path segment to a document type. The first matching
// segment wins, scanning left to right.
var pathTypes = map[string]Type{
	"architecture": TypeArchitecture,
	"adr":          TypeArchitecture,
	"design":       TypeArchitecture,
	"features":     TypeFeature,
	"feature":      TypeFeature,
	"guides":       TypeGuide,
	"guide":        TypeGuide,
	"howto":        TypeGuide,
	"reference":    TypeReference,
	"api":          TypeReference,
	"specs":        TypeSpec,
	"spec":         TypeSpec,
	"rfc":          TypeSpec,
	"notes":        TypeNote,
}

// Classify derives the document type from its path and an optional
// front-matter override. Classification is deterministic; an explicit
// override always wins over the path-derived type.
func Classify(relPath, override string) Type {
	if override != "" {
		if t := typeFromString(override); t != TypeUnknown {
			return t
		}
	}
	return ClassifyPath(relPath)
}

// ClassifyPath derives the document type from path segments alone.
func ClassifyPath(relPath string) Type {
	clean := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	for _, seg := range strings.Split(clean, "/") {
		if t, ok := pathTypes[strings.ToLower(seg)]; ok {
			return t
		}
	}
	return TypeUnknown
}

func typeFromString(s string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeArchitecture:
		return TypeArchitecture
	case TypeFeature:
		return TypeFeature
	case TypeGuide:
		return TypeGuide
	case TypeReference:
		return TypeReference
	case TypeSpec:
		return TypeSpec
	case TypeNote:
		return TypeNote
	}
	return TypeUnknown
}
