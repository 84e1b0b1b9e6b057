// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging configures structured logging for the audit engine.
//
// All packages log through the process-wide slog default; this package
// owns its construction. Output follows Unix CLI conventions: logs go
// to stderr so stdout stays clean for report output, with optional
// JSON file logging for machine processing.
//
// Basic usage:
//
//	closer := logging.Init(logging.Config{
//	    Level:   logging.LevelInfo,
//	    Service: "docaudit",
//	})
//	defer closer()
//
// # Security Considerations
//
// Nothing here redacts sensitive data. Callers must not log secrets
// or tokens; log metadata instead (e.g. "token_present", true).
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// =============================================================================
// Log Levels
// =============================================================================

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for recoverable, unexpected situations.
	LevelWarn

	// LevelError is for failed operations the process survives.
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a flag value to a Level. Unknown values default to
// Info.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures logging. The zero value writes Info+ text to
// stderr.
type Config struct {
	// Level sets the minimum log level. Messages below it are
	// discarded.
	Level Level

	// LogDir enables file logging in addition to stderr. The file is
	// named "{Service}_{YYYY-MM-DD}.log" and is always JSON. Supports
	// ~ expansion. Empty disables file logging.
	LogDir string

	// Service is stamped on every entry as the "service" attribute.
	Service string

	// JSON switches stderr output to JSON. File output is always
	// JSON regardless.
	JSON bool

	// Quiet disables stderr output. Logs then go only to the file,
	// when one is configured.
	Quiet bool
}

// =============================================================================
// Setup
// =============================================================================

// Init builds the configured handler and installs it as the slog
// default.
//
// # Outputs
//
//   - func() error: Closer that syncs and closes the log file. Safe
//     to call when no file was opened.
func Init(config Config) func() error {
	logger, closer := New(config)
	slog.SetDefault(logger)
	return closer
}

// New builds a logger without touching the process default.
func New(config Config) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	var handlers []slog.Handler
	if !config.Quiet {
		if config.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	var file *os.File
	if config.LogDir != "" {
		if f, err := openLogFile(config.LogDir, config.Service); err == nil {
			file = f
			handlers = append(handlers, slog.NewJSONHandler(file, opts))
		} else {
			fmt.Fprintf(os.Stderr, "docaudit: file logging disabled: %v\n", err)
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(os.Stderr, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	closer := func() error {
		if file == nil {
			return nil
		}
		if err := file.Sync(); err != nil {
			file.Close()
			return fmt.Errorf("sync log file: %w", err)
		}
		return file.Close()
	}

	return slog.New(handler), closer
}

// openLogFile creates the log directory and opens today's log file in
// append mode.
func openLogFile(dir, service string) (*os.File, error) {
	dir = expandPath(dir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	if service == "" {
		service = "docaudit"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
}

// =============================================================================
// Multi-Handler (Internal)
// =============================================================================

// multiHandler fans out records to multiple slog handlers, enabling
// simultaneous stderr text and file JSON output.
type multiHandler struct {
	handlers []slog.Handler
}

// Enabled returns true if any handler is enabled for the level.
func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle sends the record to all enabled handlers.
func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WithAttrs returns a new handler with additional attributes.
func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

// WithGroup returns a new handler with a group name.
func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// =============================================================================
// Helper Functions
// =============================================================================

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
