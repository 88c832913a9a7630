// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAppendDelete(t *testing.T) {
	b := NewBuffer(0)
	assert.False(t, b.DeleteLast(), "empty buffer has nothing to delete")
	assert.Equal(t, "", b.String())

	require.True(t, b.Append("今天"))
	require.True(t, b.Append("天气"))
	assert.Equal(t, "今天天气", b.String())
	assert.Equal(t, 4, b.Len())

	assert.True(t, b.DeleteLast())
	assert.Equal(t, "今天天", b.String())
}

func TestBufferDeleteUndoesAppend(t *testing.T) {
	inputs := []string{"a", "好", "👩‍💻", "é", "🇨🇳", "hello 世界"}
	for _, in := range inputs {
		b := NewBuffer(0)
		require.True(t, b.Append("prefix"))
		before := b.String()

		require.True(t, b.Append(in))
		added := b.Len() - len("prefix")
		for i := 0; i < added; i++ {
			require.True(t, b.DeleteLast())
		}
		assert.Equal(t, before, b.String(), "input %q", in)
	}
}

func TestBufferGraphemeClusters(t *testing.T) {
	b := NewBuffer(0)
	b.Append("👩‍💻")
	assert.Equal(t, 1, b.Len(), "a ZWJ sequence is one character")

	b.Append("🇨🇳")
	assert.Equal(t, 2, b.Len())

	b.DeleteLast()
	assert.Equal(t, "👩‍💻", b.String())
}

func TestBufferLimit(t *testing.T) {
	b := NewBuffer(3)
	assert.Equal(t, 3, b.Limit())
	require.True(t, b.Append("ab"))
	assert.False(t, b.Append("cd"), "append that would overflow is rejected whole")
	assert.Equal(t, "ab", b.String())
	assert.True(t, b.Append("c"))
	assert.False(t, b.Append("d"))
}

func TestBufferRejectsEmpty(t *testing.T) {
	b := NewBuffer(0)
	assert.False(t, b.Append(""))
	assert.Zero(t, b.Len())
}

func TestBufferReset(t *testing.T) {
	b := NewBuffer(0)
	b.Append("something")
	b.Reset()
	assert.Zero(t, b.Len())
	assert.Equal(t, "", b.String())
	assert.True(t, b.Append("x"))
}
