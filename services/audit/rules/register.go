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
	"github.com/AleutianAI/DocAudit/services/audit/engine"
)

// All returns the complete built-in rule set.
//
// This is the closed set of tagged variants the engine dispatches
// over. New rules are added here at compile time; there is no runtime
// plugin loading.
func All() []engine.Rule {
	return []engine.Rule{
		// quality
		NewInternalLinks(),
		NewRequiredSections(),
		NewTerminology(),
		NewVagueLanguage(),
		NewParseFailure(),
		NewExternalLinks(),

		// synchronization
		NewSchemaDrift(),
		NewRouteDrift(),
		NewEnvDrift(),

		// structure
		NewFileNaming(),
		NewDuplication(),

		// accessibility
		NewHeadingHierarchy(),
		NewAltText(),
	}
}

// NewRegistry builds the default registry. Panics on duplicate rule
// identifiers, which can only happen from a programming error in All.
func NewRegistry() *engine.Registry {
	reg, err := engine.NewRegistry(All()...)
	if err != nil {
		panic(err)
	}
	return reg
}
