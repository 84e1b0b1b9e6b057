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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPath(t *testing.T) {
	cases := []struct {
		path string
		want Type
	}{
		{"architecture/data-model.md", TypeArchitecture},
		{"adr/0001-use-postgres.md", TypeArchitecture},
		{"docs/design/overview.md", TypeArchitecture},
		{"features/login.md", TypeFeature},
		{"guides/setup.md", TypeGuide},
		{"howto/deploy.md", TypeGuide},
		{"reference/api.md", TypeReference},
		{"api/endpoints.md", TypeReference},
		{"specs/payment.md", TypeSpec},
		{"rfc/0042.md", TypeSpec},
		{"notes/meeting.md", TypeNote},
		{"README.md", TypeUnknown},
		{"misc/random.md", TypeUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyPath(tc.path))
		})
	}
}

func TestClassifyOverride(t *testing.T) {
	// Explicit front-matter type wins over the path.
	assert.Equal(t, TypeSpec, Classify("guides/setup.md", "spec"))
	assert.Equal(t, TypeSpec, Classify("guides/setup.md", " Spec "))

	// Unknown override falls back to the path.
	assert.Equal(t, TypeGuide, Classify("guides/setup.md", "bogus"))
	assert.Equal(t, TypeGuide, Classify("guides/setup.md", ""))
}
