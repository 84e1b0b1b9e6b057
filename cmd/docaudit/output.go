// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/AleutianAI/DocAudit/services/audit/config"
)

// Exit codes. Findings never fail the run; only a broken
// configuration does.
const (
	CLIExitSuccess     = 0 // Run completed; findings (if any) are advisory
	CLIExitConfigError = 2 // Fatal configuration error, nothing ran
)

// OutputJSON writes structured data as indented JSON to stdout.
func OutputJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// exitFor maps an error to the process exit code, printing it for the
// operator. Fatal configuration errors carry the offending file.
func exitFor(err error) int {
	if err == nil {
		return CLIExitSuccess
	}

	var fatal *config.FatalError
	if errors.As(err, &fatal) {
		fmt.Fprintf(os.Stderr, "docaudit: fatal configuration error: %v\n", fatal)
		return CLIExitConfigError
	}

	fmt.Fprintf(os.Stderr, "docaudit: %v\n", err)
	return CLIExitConfigError
}
