// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds the small helpers shared across keyai packages.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writes (config, stored credentials)
//   - TruncateForLog: rune-safe previews of question and answer text for logs
//   - TruncateWidth: display-width truncation for CJK-heavy terminal lines
package util
