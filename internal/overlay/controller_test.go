// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package overlay

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/keyai/internal/chat"
	"github.com/jeranaias/keyai/internal/loop"
	"github.com/jeranaias/keyai/internal/router"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// FAKES
// =============================================================================

type askCall struct {
	sess       *chat.Session
	question   string
	regenerate bool
}

type fakeAsker struct {
	mu      sync.Mutex
	calls   []askCall
	gate    chan struct{}
	respond func(askCall) (chat.Response, error)
}

func (f *fakeAsker) Ask(ctx context.Context, sess *chat.Session, question string, regenerate bool) (chat.Response, error) {
	call := askCall{sess: sess, question: question, regenerate: regenerate}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	gate := f.gate
	respond := f.respond
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return chat.Response{}, ctx.Err()
		}
	}
	if respond == nil {
		return chat.Response{Text: "answer to " + question}, nil
	}
	return respond(call)
}

func (f *fakeAsker) callList() []askCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]askCall(nil), f.calls...)
}

type fakeHost struct {
	inserted []string
}

func (h *fakeHost) Insert(text string) { h.inserted = append(h.inserted, text) }

type recordingRoutes struct {
	modes []router.Mode
}

func (r *recordingRoutes) SetMode(m router.Mode) { r.modes = append(r.modes, m) }

func (r *recordingRoutes) current() router.Mode {
	if len(r.modes) == 0 {
		return router.Passthrough
	}
	return r.modes[len(r.modes)-1]
}

type harness struct {
	sched  *loop.Manual
	routes *recordingRoutes
	asker  *fakeAsker
	host   *fakeHost
	c      *Controller
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		sched:  loop.NewManual(),
		routes: &recordingRoutes{},
		asker:  &fakeAsker{},
		host:   &fakeHost{},
	}
	h.c = NewController(h.sched, h.routes, h.asker, h.host, opts)
	t.Cleanup(func() {
		h.c.Close()
		h.c.Wait()
	})
	return h
}

// show opens the overlay and waits out the animation and focus delay.
func (h *harness) show() {
	h.c.Toggle()
	h.sched.Advance(DefaultAnimation + DefaultFocusDelay)
}

// settle waits for outstanding requests and runs their completions.
func (h *harness) settle() {
	h.c.Wait()
	h.sched.Flush()
}

func (h *harness) typeText(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		require.True(t, h.c.Accept(string(r)), "accept %q", r)
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestLifecycle(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	assert.Equal(t, Hidden, h.c.State())
	assert.False(t, h.routes.current().Active())

	h.c.Toggle()
	assert.Equal(t, Opening, h.c.State())
	assert.True(t, h.routes.current().Active(), "routing switches as soon as the overlay opens")

	h.sched.Advance(DefaultAnimation)
	assert.Equal(t, Visible, h.c.State())
	assert.False(t, h.c.View().Focused)

	h.sched.Advance(DefaultFocusDelay)
	assert.True(t, h.c.View().Focused)

	h.typeText(t, "hi")
	h.c.Toggle()
	assert.Equal(t, Closing, h.c.State())
	assert.False(t, h.routes.current().Active(), "routing stops before the collapse animation")
	assert.Equal(t, "hi", h.c.View().Question)

	h.sched.Advance(DefaultAnimation)
	assert.Equal(t, Hidden, h.c.State())
	assert.Zero(t, h.c.Len())
	assert.Empty(t, h.c.View().Question)
}

func TestToggleIgnoredWhileAnimating(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.c.Toggle()
	h.c.Toggle()
	assert.Equal(t, Opening, h.c.State())

	h.sched.Advance(DefaultAnimation)
	h.c.Toggle()
	h.c.Toggle()
	assert.Equal(t, Closing, h.c.State())

	h.sched.Advance(DefaultAnimation)
	assert.Equal(t, Hidden, h.c.State())
}

func TestReopenStartsFresh(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.show()
	h.typeText(t, "first")
	h.c.Submit()
	h.settle()
	firstSession := h.asker.callList()[0].sess

	h.c.Toggle()
	h.sched.Advance(DefaultAnimation)
	h.show()

	v := h.c.View()
	assert.Empty(t, v.Question)
	assert.Empty(t, v.Answer)
	assert.False(t, v.CanRegenerate)

	h.typeText(t, "second")
	h.c.Submit()
	h.settle()
	calls := h.asker.callList()
	require.Len(t, calls, 2)
	assert.NotSame(t, firstSession, calls[1].sess, "each opening gets a new chat session")
}

// =============================================================================
// INPUT
// =============================================================================

func TestInputNeedsVisibleAndFocused(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	assert.False(t, h.c.Accept("a"), "hidden")
	assert.False(t, h.c.Backspace())

	h.c.Toggle()
	assert.False(t, h.c.Accepting())
	assert.False(t, h.c.Accept("a"), "opening")

	h.sched.Advance(DefaultAnimation)
	assert.False(t, h.c.Accepting())
	assert.False(t, h.c.Accept("a"), "visible but not yet focused")

	h.sched.Advance(DefaultFocusDelay)
	assert.True(t, h.c.Accepting())
	assert.True(t, h.c.Accept("a"))
	assert.True(t, h.c.Backspace())
	assert.False(t, h.c.Backspace(), "question is empty")
}

func TestClearSequence(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.show()
	h.typeText(t, "abc")
	assert.True(t, h.c.Accept("\x1b[2J"))
	assert.Empty(t, h.c.View().Question)
}

func TestQuestionLengthLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxQuestionLength = 3
	h := newHarness(t, opts)
	h.show()

	h.typeText(t, "abc")
	assert.False(t, h.c.Accept("d"))
	assert.Equal(t, "abc", h.c.View().Question)
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestSubmitShowsAnswer(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.asker.respond = func(askCall) (chat.Response, error) {
		return chat.Response{Text: "晴", Refers: []string{"天气.pdf"}}, nil
	}
	h.asker.gate = make(chan struct{})
	h.show()
	h.typeText(t, "天气")

	assert.True(t, h.c.Accept("\n"), "return submits")
	v := h.c.View()
	assert.True(t, v.Loading)
	assert.False(t, v.CanInsert)
	assert.False(t, v.CanSubmit)
	assert.False(t, v.Focused, "submitting releases input focus")
	assert.False(t, h.c.Accepting())
	assert.False(t, h.c.Accept("x"), "input falls through until refocused")

	close(h.asker.gate)
	h.settle()

	v = h.c.View()
	assert.False(t, v.Loading)
	assert.Equal(t, "晴\n\n引用文档：天气.pdf", v.Answer)
	assert.Empty(t, v.Error)
	assert.True(t, v.CanInsert)
	assert.True(t, v.CanRegenerate)

	calls := h.asker.callList()
	require.Len(t, calls, 1)
	assert.Equal(t, "天气", calls[0].question)
	assert.False(t, calls[0].regenerate)

	h.c.Focus()
	assert.True(t, h.c.Accept("x"))
}

func TestBlankQuestionIgnored(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.show()
	h.typeText(t, "  ")

	h.c.Submit()
	h.c.Regenerate()
	h.settle()
	assert.Empty(t, h.asker.callList())
	assert.True(t, h.c.View().Focused)
}

func TestRegenerateUsesSameSession(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.show()
	h.typeText(t, "q")
	h.c.Submit()
	h.settle()

	h.c.Regenerate()
	h.settle()

	calls := h.asker.callList()
	require.Len(t, calls, 2)
	assert.True(t, calls[1].regenerate)
	assert.Equal(t, "q", calls[1].question)
	assert.Same(t, calls[0].sess, calls[1].sess)
}

func TestErrorShownInAnswerArea(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.asker.respond = func(askCall) (chat.Response, error) {
		return chat.Response{}, chat.ErrNotAuthenticated
	}
	h.show()
	h.typeText(t, "q")
	h.c.Submit()
	h.settle()

	v := h.c.View()
	assert.Equal(t, "错误: 请先登录", v.Error)
	assert.Empty(t, v.Answer)
	assert.False(t, v.CanInsert)
	assert.True(t, v.CanRegenerate)
	assert.False(t, h.c.InsertAnswer())
}

func TestNewerRequestWins(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.asker.gate = make(chan struct{})
	h.asker.respond = func(call askCall) (chat.Response, error) {
		if call.regenerate {
			return chat.Response{Text: "newer"}, nil
		}
		return chat.Response{Text: "older"}, nil
	}
	h.show()
	h.typeText(t, "q")

	h.c.Submit()
	h.c.Regenerate()
	close(h.asker.gate)
	h.settle()

	assert.Equal(t, "newer", h.c.View().Answer)
}

func TestSupersededCompletionStopsLoading(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.asker.gate = make(chan struct{})
	h.show()
	h.typeText(t, "q")
	h.c.Submit()
	require.True(t, h.c.View().Loading)

	h.c.complete(h.c.reqGen, h.c.sess, chat.Response{}, chat.ErrSuperseded)

	v := h.c.View()
	assert.False(t, v.Loading)
	assert.Empty(t, v.Error)
	assert.Empty(t, v.Answer)
}

func TestCompletionAfterCloseIsDropped(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.asker.gate = make(chan struct{})
	h.show()
	h.typeText(t, "q")
	h.c.Submit()

	h.c.Toggle()
	close(h.asker.gate)
	h.settle()

	v := h.c.View()
	assert.Equal(t, Closing, v.State)
	assert.Empty(t, v.Answer)
	assert.False(t, v.Loading)

	h.sched.Advance(DefaultAnimation)
	assert.Equal(t, Hidden, h.c.State())
}

// =============================================================================
// INSERTION
// =============================================================================

func TestInsertAnswer(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.show()
	assert.False(t, h.c.InsertAnswer(), "nothing to insert yet")

	h.typeText(t, "q")
	h.c.Submit()
	h.settle()

	require.True(t, h.c.InsertAnswer())
	assert.Equal(t, []string{"answer to q"}, h.host.inserted)
	assert.Equal(t, Hidden, h.c.State(), "insertion closes without animating")
	assert.False(t, h.routes.current().Active())
	assert.Zero(t, h.c.Len())
}

func TestCloseTearsDown(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.asker.gate = make(chan struct{})
	h.show()
	h.typeText(t, "q")
	h.c.Submit()

	h.c.Close()
	h.settle()

	assert.Equal(t, Hidden, h.c.State())
	assert.False(t, h.routes.current().Active())
	assert.False(t, h.c.View().Loading)
}

// =============================================================================
// WITH THE ROUTER
// =============================================================================

type idleEngine struct {
	forwarded int
}

func (e *idleEngine) HasPendingInput() bool  { return false }
func (e *idleEngine) TakeCommitText() string { return "" }
func (e *idleEngine) Forward(router.Gesture) { e.forwarded++ }

func TestRouterDrivesOverlay(t *testing.T) {
	sched := loop.NewManual()
	engine := &idleEngine{}
	r := router.New(engine, sched, router.DefaultOptions())
	c := NewController(sched, r, &fakeAsker{}, &fakeHost{}, DefaultOptions())
	defer func() {
		c.Close()
		c.Wait()
	}()

	char := func(s string) router.Gesture {
		return router.Gesture{Kind: router.KindRelease, Action: router.Character(s)}
	}

	// Hidden: nothing reaches the overlay.
	r.Handle(char("x"))
	sched.Advance(router.DefaultSettleDelay)
	assert.Zero(t, c.Len())

	c.Toggle()
	sched.Advance(DefaultAnimation + DefaultFocusDelay)
	for _, s := range []string{"a", "b", "c"} {
		assert.Equal(t, router.OutcomeDeferred, r.Handle(char(s)))
		sched.Advance(router.DefaultSettleDelay)
	}
	assert.Equal(t, "abc", c.View().Question)

	// Long-press deletes until the question is empty, then stops.
	r.Handle(router.Gesture{Kind: router.KindLongPress, Action: router.Backspace()})
	sched.Advance(10 * router.DefaultRepeatInterval)
	assert.Zero(t, c.Len())
	assert.False(t, r.Repeating())

	// Closing mid-repeat stops the timer.
	r.Handle(char("d"))
	sched.Advance(router.DefaultSettleDelay)
	r.Handle(char("e"))
	sched.Advance(router.DefaultSettleDelay)
	r.Handle(router.Gesture{Kind: router.KindLongPress, Action: router.Backspace()})
	assert.True(t, r.Repeating())
	c.Toggle()
	assert.False(t, r.Repeating())
	sched.Advance(DefaultAnimation - 1)
	assert.Equal(t, "de", c.View().Question, "no deletes after closing began")

	sched.Advance(1)
	assert.Equal(t, Hidden, c.State())
	assert.Zero(t, sched.Pending())
}
