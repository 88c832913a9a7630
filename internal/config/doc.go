// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for keyai.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Sections
//
//   - [chat]: knowledge-chat endpoint, timeout, regenerate phrase, limits
//   - [account]: account API and the shared user file
//   - [input]: settle delay and delete-repeat interval for gesture routing
//   - [overlay]: animation and focus timings
//   - [log]: zap level and log file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (KEYAI_*)
//   - ~/.keyai/config.toml
//   - ~/.keyai/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := chat.NewClient(cfg.ChatClientConfig(), store, logger)
package config
