// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package overlay

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Buffer is the question being typed: an append-only sequence of
// user-perceived characters (grapheme clusters) that can only shrink from
// the end.
type Buffer struct {
	clusters []string
	limit    int
}

// NewBuffer returns an empty buffer holding at most limit characters.
// limit <= 0 means no limit.
func NewBuffer(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// Append adds text at the end. It reports false, leaving the buffer
// unchanged, when text is empty or would exceed the limit.
func (b *Buffer) Append(text string) bool {
	if text == "" {
		return false
	}

	var add []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		add = append(add, g.Str())
	}
	if b.limit > 0 && len(b.clusters)+len(add) > b.limit {
		return false
	}
	b.clusters = append(b.clusters, add...)
	return true
}

// DeleteLast removes the last character. It reports false on an empty buffer.
func (b *Buffer) DeleteLast() bool {
	if len(b.clusters) == 0 {
		return false
	}
	b.clusters[len(b.clusters)-1] = ""
	b.clusters = b.clusters[:len(b.clusters)-1]
	return true
}

// String returns the buffer's text.
func (b *Buffer) String() string {
	return strings.Join(b.clusters, "")
}

// Len returns the number of characters.
func (b *Buffer) Len() int {
	return len(b.clusters)
}

// Limit returns the character limit, 0 when unlimited.
func (b *Buffer) Limit() int {
	return b.limit
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.clusters = b.clusters[:0]
}
