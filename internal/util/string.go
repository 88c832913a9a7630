// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateForLog returns at most maxRunes runes of s with newlines flattened,
// appending "..." when something was cut. Never splits a UTF-8 sequence.
func TruncateForLog(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", `\n`)
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateWidth cuts s to fit in maxWidth terminal columns, counting
// double-width (CJK) characters as two.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// TruncateWidthLeft keeps the tail of s that fits in maxWidth columns,
// prefixing "..." when the head was dropped. Used for input lines where the
// caret sits at the end.
func TruncateWidthLeft(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.TruncateLeft(s, runewidth.StringWidth(s)-maxWidth, "")
	}
	return runewidth.TruncateLeft(s, runewidth.StringWidth(s)-(maxWidth-3), "...")
}
