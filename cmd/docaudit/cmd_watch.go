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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DocAudit/services/audit/watch"
)

// runWatch is the entry point of the watch command.
func runWatch(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Watch mode keeps state writes off so repeated editor saves do
	// not churn the report history.
	noReport = true

	w := watch.New(docsDir, 0, func(runCtx context.Context) error {
		if code := validate(runCtx); code != CLIExitSuccess {
			return fmt.Errorf("validation exited with code %d", code)
		}
		return nil
	})

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		exitCode = exitFor(err)
	}
}
