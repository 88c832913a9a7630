// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger shared by every keyai component.
//
// The keyboard TUI owns the terminal, so it logs to a file. CLI commands
// log to stderr only with --verbose and are silent otherwise.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/keyai/internal/config"
)

// Target selects where log output goes.
type Target int

const (
	// Discard drops everything.
	Discard Target = iota
	// File writes JSON lines to log.file.
	File
	// Stderr writes human-readable lines to standard error.
	Stderr
)

// New builds a logger for cfg. verbose forces the debug level.
func New(cfg *config.Config, target Target, verbose bool) (*zap.Logger, error) {
	if target == Discard {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch target {
	case File:
		path, err := cfg.LogFilePath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = []string{path}
		zc.ErrorOutputPaths = []string{path}
	case Stderr:
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.DisableStacktrace = true
		zc.OutputPaths = []string{"stderr"}
		zc.ErrorOutputPaths = []string{"stderr"}
	default:
		return nil, fmt.Errorf("unknown log target %d", target)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("keyai"), nil
}
