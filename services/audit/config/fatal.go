// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
)

// FatalError is a fatal configuration defect.
//
// # Description
//
// This is the only error class that aborts a run. It names the
// offending file so the operator gets an actionable message; YAML
// decode errors already carry line/column information in their text.
//
// # Example
//
//	cfg, err := config.Load(path)
//	var fatal *config.FatalError
//	if errors.As(err, &fatal) {
//	    fmt.Fprintln(os.Stderr, fatal.Error())
//	    os.Exit(CLIExitConfigError)
//	}
type FatalError struct {
	// Path is the file that failed to load.
	Path string

	// Err is the underlying decode or validation error.
	Err error
}

// Error returns a formatted message naming the offending file.
func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal configuration error in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err is (or wraps) a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
