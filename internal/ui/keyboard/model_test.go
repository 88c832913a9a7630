// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keyboard

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/keyai/internal/auth"
	"github.com/jeranaias/keyai/internal/chat"
	"github.com/jeranaias/keyai/internal/compose"
	"github.com/jeranaias/keyai/internal/config"
	"github.com/jeranaias/keyai/internal/loop"
	"github.com/jeranaias/keyai/internal/overlay"
)

// cannedAsker answers every question at once.
type cannedAsker struct {
	mu        sync.Mutex
	questions []string
	resp      chat.Response
}

func (a *cannedAsker) Ask(_ context.Context, _ *chat.Session, question string, _ bool) (chat.Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.questions = append(a.questions, question)
	return a.resp, nil
}

type harness struct {
	t     *testing.T
	sched *loop.Manual
	asker *cannedAsker
	cfg   *config.Config
	m     *Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sched := loop.NewManual()
	asker := &cannedAsker{resp: chat.Response{Text: "答案", Refers: []string{}}}
	cfg := config.Default()
	m := New(sched, Deps{
		Config:        cfg,
		Asker:         asker,
		Engine:        compose.NewTable(map[string]string{"ni": "你", "hao": "好"}),
		MarkdownStyle: "notty",
	})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	h := &harness{t: t, sched: sched, asker: asker, cfg: cfg, m: m}
	t.Cleanup(func() {
		m.Shutdown()
		m.Overlay().Wait()
	})
	return h
}

func (h *harness) key(k tea.KeyMsg) tea.Cmd {
	_, cmd := h.m.Update(k)
	return cmd
}

// typeKeys sends each rune as its own key press and lets the settle
// sample run after each, as a person typing would.
func (h *harness) typeKeys(s string) {
	for _, r := range s {
		if r == ' ' {
			h.key(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{r}})
		} else {
			h.key(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
		h.sched.Advance(h.cfg.SettleDelay())
	}
}

func (h *harness) openOverlay() {
	h.key(tea.KeyMsg{Type: tea.KeyCtrlA})
	h.sched.Advance(h.cfg.Animation())
	h.sched.Advance(h.cfg.FocusDelay())
	v := h.m.Overlay().View()
	require.Equal(h.t, overlay.Visible, v.State)
	require.True(h.t, v.Focused)
}

func TestModel_PassthroughTypesIntoDocument(t *testing.T) {
	h := newHarness(t)

	h.typeKeys("ni")
	assert.Equal(t, "你", h.m.Document())

	h.typeKeys("1 ")
	assert.Equal(t, "你1 ", h.m.Document(), "keys the engine ignores get their default effect")

	h.key(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "你1", h.m.Document())
}

func TestModel_PassthroughBackspaceEditsComposition(t *testing.T) {
	h := newHarness(t)

	h.typeKeys("ha")
	assert.Equal(t, "", h.m.Document())
	assert.Equal(t, "ha", h.m.engine.Pending())

	h.key(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "h", h.m.engine.Pending())
	assert.Equal(t, "", h.m.Document(), "the document is untouched while composing")
}

func TestModel_OverlayQuestionAnswerInsert(t *testing.T) {
	h := newHarness(t)
	h.typeKeys("x")

	h.openOverlay()
	h.typeKeys("ni hao?")
	assert.Equal(t, "你 好?", h.m.Overlay().View().Question)
	assert.Equal(t, "x", h.m.Document(), "overlay input never reaches the document")

	h.key(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, h.m.Overlay().View().Loading)

	h.m.Overlay().Wait()
	h.sched.Flush()
	v := h.m.Overlay().View()
	assert.Equal(t, "答案", v.Answer)
	assert.True(t, v.CanInsert)
	assert.Equal(t, []string{"你 好?"}, h.asker.questions)

	h.key(tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, "x答案", h.m.Document())
	assert.Equal(t, overlay.Hidden, h.m.Overlay().State())
	assert.False(t, h.m.router.Mode().Active())
}

func TestModel_UnfocusedOverlayFallsThroughToDocument(t *testing.T) {
	h := newHarness(t)
	h.openOverlay()
	h.typeKeys("ni")

	h.key(tea.KeyMsg{Type: tea.KeyEnter})
	h.m.Overlay().Wait()
	h.sched.Flush()
	require.False(t, h.m.Overlay().View().Focused, "submitting releases focus")

	h.typeKeys(" ")
	assert.Equal(t, " ", h.m.Document())

	h.key(tea.KeyMsg{Type: tea.KeyCtrlF})
	h.typeKeys(" ")
	assert.Equal(t, "你 ", h.m.Overlay().View().Question)
}

func TestModel_UnfocusedOverlayPassesLettersAndSyllables(t *testing.T) {
	h := newHarness(t)
	h.openOverlay()
	h.typeKeys("ni")

	h.key(tea.KeyMsg{Type: tea.KeyEnter})
	h.m.Overlay().Wait()
	h.sched.Flush()
	require.False(t, h.m.Overlay().View().Focused)

	h.typeKeys("b1 ni")
	assert.Equal(t, "b1 你", h.m.Document())
	assert.Equal(t, "你", h.m.Overlay().View().Question)
}

func TestModel_OpeningOverlayPassesKeysToDocument(t *testing.T) {
	h := newHarness(t)
	h.key(tea.KeyMsg{Type: tea.KeyCtrlA})
	require.Equal(t, overlay.Opening, h.m.Overlay().State())

	h.typeKeys("ni")
	assert.Equal(t, "你", h.m.Document())

	h.sched.Advance(h.cfg.Animation())
	h.sched.Advance(h.cfg.FocusDelay())
	h.typeKeys("hao")
	assert.Equal(t, "好", h.m.Overlay().View().Question)
	assert.Equal(t, "你", h.m.Document())
}

func TestModel_CloseBeforeSettleKeepsKeystroke(t *testing.T) {
	h := newHarness(t)
	h.openOverlay()

	h.key(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	h.key(tea.KeyMsg{Type: tea.KeyCtrlA})
	require.Equal(t, overlay.Closing, h.m.Overlay().State())
	h.sched.Advance(h.cfg.SettleDelay())

	assert.Empty(t, h.m.Overlay().View().Question)
	assert.Equal(t, "x", h.m.Document())
}

func TestModel_PasteGoesToFocusedOverlay(t *testing.T) {
	h := newHarness(t)
	h.openOverlay()

	h.key(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("how are you")})
	assert.Equal(t, "how are you", h.m.Overlay().View().Question)
	assert.Empty(t, h.m.Document())

	h.key(tea.KeyMsg{Type: tea.KeyCtrlA})
	h.key(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pasted")})
	assert.Equal(t, "pasted", h.m.Document(), "a closing overlay no longer takes input")
}

func TestModel_LongPressRepeatsUntilReleased(t *testing.T) {
	h := newHarness(t)
	h.openOverlay()
	h.key(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abcdef")})

	h.key(tea.KeyMsg{Type: tea.KeyBackspace, Alt: true})
	require.True(t, h.m.router.Repeating())

	h.sched.Advance(2 * h.cfg.RepeatInterval())
	assert.Equal(t, "abcd", h.m.Overlay().View().Question)

	h.key(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.False(t, h.m.router.Repeating())
	assert.Equal(t, "abc", h.m.Overlay().View().Question)

	h.sched.Advance(5 * h.cfg.RepeatInterval())
	assert.Equal(t, "abc", h.m.Overlay().View().Question)
}

func TestModel_ViewShowsPanelOnlyWhileOverlayShown(t *testing.T) {
	h := newHarness(t)
	h.m.SetUser(auth.User{Username: "alice"}, true)

	view := h.m.View()
	assert.Contains(t, view, "已登录: alice")
	assert.NotContains(t, view, placeholder)

	h.openOverlay()
	h.m.Update(frameMsg(time.Now()))
	view = h.m.View()
	assert.Contains(t, view, "AI 问答")
	assert.Contains(t, view, placeholder)
}

func TestModel_StateChangeStartsAnimationFrames(t *testing.T) {
	h := newHarness(t)

	cmd := h.key(tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.NotNil(t, cmd, "opening schedules redraw frames")
	assert.Equal(t, overlay.Opening, h.m.lastState)

	h.sched.Advance(h.cfg.Animation())
	h.m.Update(frameMsg(time.Now()))
	assert.Equal(t, overlay.Visible, h.m.lastState)
}

func TestModel_QuitShutsDown(t *testing.T) {
	h := newHarness(t)
	h.openOverlay()

	cmd := h.key(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, overlay.Hidden, h.m.Overlay().State())
	assert.Equal(t, "", h.m.View())
	assert.Zero(t, h.sched.Pending(), "no timers survive shutdown")
}
