// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/keyai/internal/router"
)

func typeKeys(t *Table, keys string) {
	for _, r := range keys {
		t.Forward(router.Gesture{Kind: router.KindRelease, Action: router.Character(string(r))})
	}
}

func key(a router.Action) router.Gesture {
	return router.Gesture{Kind: router.KindRelease, Action: a}
}

func TestUniqueCodeCommitsImmediately(t *testing.T) {
	e := NewDefault()
	typeKeys(e, "hao")
	assert.False(t, e.HasPendingInput())
	assert.True(t, e.Handled())
	assert.Equal(t, "好", e.TakeCommitText())
	assert.Empty(t, e.TakeCommitText(), "commit buffer clears on take")
}

func TestAmbiguousCodeWaits(t *testing.T) {
	e := NewDefault()
	typeKeys(e, "ni")
	assert.True(t, e.HasPendingInput())
	assert.Equal(t, "ni", e.Pending())
	assert.Equal(t, "你", e.Candidate())
	assert.Empty(t, e.TakeCommitText())

	typeKeys(e, "hao")
	assert.False(t, e.HasPendingInput())
	assert.Equal(t, "你好", e.TakeCommitText())
}

func TestSpaceCommitsCandidate(t *testing.T) {
	e := NewDefault()
	typeKeys(e, "ni")
	e.Forward(key(router.Space()))
	assert.True(t, e.Handled())
	assert.Equal(t, "你", e.TakeCommitText())

	e.Forward(key(router.Space()))
	assert.False(t, e.Handled(), "space with nothing pending is the host's")
}

func TestSpaceCommitsRawWhenNoEntry(t *testing.T) {
	e := NewDefault()
	typeKeys(e, "zh")
	e.Forward(key(router.Space()))
	assert.Equal(t, "zh", e.TakeCommitText())
}

func TestReturnCommitsRawKeystrokes(t *testing.T) {
	e := NewDefault()
	typeKeys(e, "ni")
	e.Forward(key(router.Return()))
	assert.Equal(t, "ni", e.TakeCommitText())
}

func TestBackspaceTrimsPending(t *testing.T) {
	e := NewDefault()
	typeKeys(e, "nih")
	e.Forward(key(router.Backspace()))
	assert.True(t, e.Handled())
	assert.Equal(t, "ni", e.Pending())

	e.Reset()
	e.Forward(key(router.Backspace()))
	assert.False(t, e.Handled())
}

func TestLongPressBackspaceClearsPending(t *testing.T) {
	e := NewDefault()
	typeKeys(e, "zhon")
	e.Forward(router.Gesture{Kind: router.KindLongPress, Action: router.Backspace()})
	assert.True(t, e.Handled())
	assert.False(t, e.HasPendingInput())
}

func TestNonCodeKeyIsUnhandled(t *testing.T) {
	e := NewDefault()
	typeKeys(e, "v")
	assert.False(t, e.Handled())
	assert.False(t, e.HasPendingInput())
	assert.Empty(t, e.TakeCommitText())

	e.Forward(key(router.Symbol("?")))
	assert.False(t, e.Handled())
}

func TestBreakingKeyFinalizesComposition(t *testing.T) {
	e := NewDefault()
	typeKeys(e, "niv")
	assert.Equal(t, "你v", e.TakeCommitText())
	assert.False(t, e.HasPendingInput())

	typeKeys(e, "shiw")
	assert.Equal(t, "是", e.TakeCommitText())
	assert.Equal(t, "w", e.Pending())

	e.Reset()
	typeKeys(e, "ni")
	e.Forward(key(router.Symbol("，")))
	assert.Equal(t, "你，", e.TakeCommitText())
}

func TestSwipeIsUnhandled(t *testing.T) {
	e := NewDefault()
	e.Forward(router.Gesture{Kind: router.KindSwipeUp, Action: router.Character("1")})
	assert.False(t, e.Handled())
}

func TestNewTableSkipsInvalidCodes(t *testing.T) {
	e := NewTable(map[string]string{"ab": "x", "A1": "y", "": "z"})
	assert.Equal(t, []string{"ab"}, e.codes)
}
