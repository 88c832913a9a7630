// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package overlay

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/chat"
	"github.com/jeranaias/keyai/internal/loop"
	"github.com/jeranaias/keyai/internal/router"
	"github.com/jeranaias/keyai/internal/util"
)

const (
	// DefaultAnimation is the expand/collapse duration.
	DefaultAnimation = 300 * time.Millisecond

	// DefaultFocusDelay is how long after becoming visible the input
	// surface takes focus.
	DefaultFocusDelay = 100 * time.Millisecond

	// DefaultMaxQuestionLength caps the question, in characters.
	DefaultMaxQuestionLength = 500

	// clearSequence wipes the question when sent as input.
	clearSequence = "\x1b[2J"
)

// Asker sends a question. *chat.Client satisfies it.
type Asker interface {
	Ask(ctx context.Context, sess *chat.Session, question string, regenerate bool) (chat.Response, error)
}

// Inserter is the host's text-insertion interface.
type Inserter interface {
	Insert(text string)
}

// ModeSetter receives routing changes. *router.Router satisfies it.
type ModeSetter interface {
	SetMode(m router.Mode)
}

// Options configures a Controller.
type Options struct {
	Animation         time.Duration
	FocusDelay        time.Duration
	MaxQuestionLength int
	Logger            *zap.Logger
}

// DefaultOptions returns the stock timings and limits.
func DefaultOptions() Options {
	return Options{
		Animation:         DefaultAnimation,
		FocusDelay:        DefaultFocusDelay,
		MaxQuestionLength: DefaultMaxQuestionLength,
		Logger:            zap.NewNop(),
	}
}

// Controller owns the overlay: its visibility, its question buffer and
// its chat session. It implements router.Sink.
type Controller struct {
	sched  loop.Scheduler
	routes ModeSetter
	asker  Asker
	host   Inserter
	opts   Options
	log    *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	requests sync.WaitGroup

	state State
	timer loop.Cancel
	buf   *Buffer
	sess  *chat.Session

	focused   bool
	loading   bool
	answer    string
	errMsg    string
	responded bool
	reqGen    uint64
}

// NewController creates a hidden overlay.
func NewController(sched loop.Scheduler, routes ModeSetter, asker Asker, host Inserter, opts Options) *Controller {
	if opts.Animation < 0 {
		opts.Animation = 0
	}
	if opts.FocusDelay < 0 {
		opts.FocusDelay = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		sched:  sched,
		routes: routes,
		asker:  asker,
		host:   host,
		opts:   opts,
		log:    opts.Logger.Named("overlay"),
		ctx:    ctx,
		cancel: cancel,
		state:  Hidden,
	}
}

// State returns the current visibility state.
func (c *Controller) State() State {
	return c.state
}

// =============================================================================
// VISIBILITY
// =============================================================================

// Toggle opens a hidden overlay or closes a visible one. Toggles while the
// overlay is animating are ignored.
func (c *Controller) Toggle() {
	switch c.state {
	case Hidden:
		c.open()
	case Visible:
		c.beginClose()
	default:
		c.log.Debug("toggle ignored during animation", zap.Stringer("state", c.state))
	}
}

func (c *Controller) open() {
	c.buf = NewBuffer(c.opts.MaxQuestionLength)
	c.sess = chat.NewSession()
	c.clearAnswer()
	c.focused = false
	c.setState(Opening)
	c.routes.SetMode(router.Overlay(c))
	c.schedule(c.opts.Animation, Opening, c.finishOpen)
}

func (c *Controller) finishOpen() {
	c.setState(Visible)
	c.schedule(c.opts.FocusDelay, Visible, func() {
		c.focused = true
		c.log.Debug("overlay input focused")
	})
}

func (c *Controller) beginClose() {
	c.setState(Closing)
	// Stop diverting gestures before the collapse animation runs.
	c.routes.SetMode(router.Passthrough)
	c.focused = false
	c.abortRequest()
	c.schedule(c.opts.Animation, Closing, c.finishClose)
}

func (c *Controller) finishClose() {
	c.teardown()
}

// teardown discards the buffer and session and hides the overlay.
func (c *Controller) teardown() {
	c.stopTimer()
	c.abortRequest()
	c.buf = nil
	c.sess = nil
	c.focused = false
	c.clearAnswer()
	c.setState(Hidden)
}

// schedule runs fn after d if the overlay is still in state by then.
func (c *Controller) schedule(d time.Duration, state State, fn func()) {
	c.stopTimer()
	c.timer = c.sched.After(d, func() {
		if c.state != state {
			return
		}
		c.timer = nil
		fn()
	})
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer()
		c.timer = nil
	}
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.log.Debug("overlay state", zap.Stringer("from", c.state), zap.Stringer("to", s))
	c.state = s
}

// Focus gives the input surface focus again, e.g. after a submit.
func (c *Controller) Focus() {
	if c.state == Visible {
		c.focused = true
	}
}

// Close tears the overlay down with its host view. Outstanding requests
// are cancelled; their completions are dropped.
func (c *Controller) Close() {
	if c.state != Hidden {
		c.routes.SetMode(router.Passthrough)
	}
	c.teardown()
	c.cancel()
}

// Wait blocks until every request goroutine has returned. For shutdown and
// tests; never call it on the scheduler's queue while requests may still
// need to post there.
func (c *Controller) Wait() {
	c.requests.Wait()
}

// =============================================================================
// INPUT (router.Sink)
// =============================================================================

// Accepting reports whether the question takes input: the overlay is
// fully shown and focused.
func (c *Controller) Accepting() bool {
	return c.state == Visible && c.focused && c.buf != nil
}

// Accept takes finalized text from the router. Return submits the
// question and the clear sequence empties it. False means the overlay is
// not taking input or the question is full.
func (c *Controller) Accept(text string) bool {
	if !c.Accepting() {
		return false
	}

	switch text {
	case clearSequence:
		c.buf.Reset()
		return true
	case "\n", "\r":
		c.Submit()
		return true
	}

	if !c.buf.Append(text) {
		c.log.Debug("question input rejected", zap.Int("len", c.buf.Len()), zap.Int("limit", c.buf.Limit()))
		return false
	}
	return true
}

// Backspace removes the last character of the question.
func (c *Controller) Backspace() bool {
	if !c.Accepting() {
		return false
	}
	return c.buf.DeleteLast()
}

// Len returns the question length in characters.
func (c *Controller) Len() int {
	if c.buf == nil {
		return 0
	}
	return c.buf.Len()
}

// =============================================================================
// REQUESTS
// =============================================================================

// Submit sends the question. Blank questions are ignored. Input focus is
// released until Focus is called again.
func (c *Controller) Submit() {
	q, ok := c.question()
	if !ok {
		return
	}
	c.focused = false
	c.ask(q, false)
}

// Regenerate asks the service for a different answer in the same thread.
func (c *Controller) Regenerate() {
	q, ok := c.question()
	if !ok {
		return
	}
	c.ask(q, true)
}

func (c *Controller) question() (string, bool) {
	if c.state != Visible || c.buf == nil {
		return "", false
	}
	q := c.buf.String()
	if strings.TrimSpace(q) == "" {
		c.log.Debug("empty question ignored")
		return "", false
	}
	return q, true
}

func (c *Controller) ask(question string, regenerate bool) {
	c.reqGen++
	gen := c.reqGen
	sess := c.sess
	c.loading = true
	c.errMsg = ""

	c.log.Info("asking",
		zap.String("question", util.TruncateForLog(question, 40)),
		zap.Bool("regenerate", regenerate),
		zap.Uint64("request", gen))

	c.requests.Add(1)
	go func() {
		defer c.requests.Done()
		resp, err := c.asker.Ask(c.ctx, sess, question, regenerate)
		c.sched.Post(func() {
			c.complete(gen, sess, resp, err)
		})
	}()
}

// complete applies a finished request, unless the overlay has moved on.
func (c *Controller) complete(gen uint64, sess *chat.Session, resp chat.Response, err error) {
	if gen != c.reqGen || sess != c.sess || c.state != Visible {
		c.log.Debug("stale completion dropped", zap.Uint64("request", gen))
		return
	}
	c.loading = false
	if errors.Is(err, chat.ErrSuperseded) {
		c.log.Debug("superseded completion dropped", zap.Uint64("request", gen))
		return
	}

	c.responded = true
	if err != nil {
		c.answer = ""
		c.errMsg = chat.UserMessage(err)
		c.log.Warn("ask failed", zap.Uint64("request", gen), zap.Error(err))
		return
	}

	c.answer = chat.Format(resp)
	c.errMsg = ""
	c.log.Info("answer shown",
		zap.Uint64("request", gen),
		zap.Int("refers", len(resp.Refers)),
		zap.String("preview", util.TruncateForLog(resp.Text, 40)))
}

// abortRequest cancels the in-flight request and orphans its completion.
func (c *Controller) abortRequest() {
	c.reqGen++
	c.loading = false
	if c.sess != nil {
		c.sess.Cancel()
	}
}

// InsertAnswer closes the overlay at once and hands the answer to the
// host. It reports false when there is no answer to insert.
func (c *Controller) InsertAnswer() bool {
	if c.state != Visible || c.loading || c.answer == "" {
		return false
	}
	text := c.answer

	c.routes.SetMode(router.Passthrough)
	c.teardown()
	c.log.Info("answer inserted", zap.Int("bytes", len(text)))
	c.host.Insert(text)
	return true
}

func (c *Controller) clearAnswer() {
	c.loading = false
	c.answer = ""
	c.errMsg = ""
	c.responded = false
}
