// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/loop"
)

const (
	// DefaultSettleDelay is how long after forwarding a character key the
	// router waits before sampling the engine's commit buffer.
	DefaultSettleDelay = 10 * time.Millisecond

	// DefaultRepeatInterval is the delete-repeat period while backspace is held.
	DefaultRepeatInterval = 100 * time.Millisecond
)

// Options configures a Router.
type Options struct {
	SettleDelay    time.Duration
	RepeatInterval time.Duration
	Logger         *zap.Logger

	// Fallback receives settled text the overlay rejected, so it still gets
	// the host's normal handling. Nil drops it.
	Fallback func(text string)
}

// DefaultOptions returns the stock timings and a no-op logger.
func DefaultOptions() Options {
	return Options{
		SettleDelay:    DefaultSettleDelay,
		RepeatInterval: DefaultRepeatInterval,
		Logger:         zap.NewNop(),
	}
}

// Router routes gestures between the composition engine and the overlay.
// It is not safe for concurrent use; drive it from the scheduler's queue.
type Router struct {
	engine Engine
	sched  loop.Scheduler
	log    *zap.Logger

	settleDelay    time.Duration
	repeatInterval time.Duration
	fallback       func(text string)

	mode   Mode
	repeat repeatTimer
}

// New creates a router in Passthrough mode.
func New(engine Engine, sched loop.Scheduler, opts Options) *Router {
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	if opts.RepeatInterval <= 0 {
		opts.RepeatInterval = DefaultRepeatInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Fallback == nil {
		opts.Fallback = func(string) {}
	}
	return &Router{
		engine:         engine,
		sched:          sched,
		log:            opts.Logger.Named("router"),
		settleDelay:    opts.SettleDelay,
		repeatInterval: opts.RepeatInterval,
		fallback:       opts.Fallback,
		mode:           Passthrough,
	}
}

// Mode returns the current routing mode.
func (r *Router) Mode() Mode {
	return r.mode
}

// SetMode switches routing. Any change of activation stops the
// delete-repeat timer and orphans pending settle samples.
func (r *Router) SetMode(m Mode) {
	if r.mode.Same(m) {
		return
	}
	r.stopRepeat("mode changed")
	r.mode = m
	r.log.Debug("routing mode changed", zap.Bool("overlay", m.Active()))
}

// Close tears the router down with its host view: the repeat timer is
// stopped and routing returns to Passthrough.
func (r *Router) Close() {
	r.stopRepeat("closed")
	r.mode = Passthrough
}

// Handle routes one gesture and reports what happened to it.
func (r *Router) Handle(g Gesture) Outcome {
	out := r.route(g)
	r.log.Debug("gesture routed",
		zap.Stringer("gesture", g),
		zap.Stringer("outcome", out),
		zap.Bool("overlay", r.mode.Active()))
	return out
}

func (r *Router) route(g Gesture) Outcome {
	if !r.mode.Active() {
		return r.forward(g)
	}
	sink := r.mode.sink
	if !sink.Accepting() {
		r.stopRepeat("overlay not accepting")
		return r.forward(g)
	}

	switch g.Kind {
	case KindRelease:
		return r.routeRelease(g, sink)

	case KindLongPress:
		if g.Action.Type != ActionBackspace || r.engine.HasPendingInput() {
			return r.forward(g)
		}
		r.startRepeat()
		return OutcomeConsumed

	case KindSwipeUp, KindSwipeDown:
		if !g.Action.HasPayload() {
			return r.forward(g)
		}
		if sink.Accept(g.Action.Char) {
			return OutcomeConsumed
		}
		return r.forward(g)
	}

	return r.forward(g)
}

func (r *Router) routeRelease(g Gesture, sink Sink) Outcome {
	switch g.Action.Type {
	case ActionBackspace:
		// Lifting the key ends any long-press repeat.
		r.stopRepeat("backspace released")
		if r.engine.HasPendingInput() {
			return r.forward(g)
		}
		if sink.Backspace() {
			return OutcomeConsumed
		}
		return r.forward(g)

	case ActionSpace:
		return r.acceptOrForward(g, sink, " ")

	case ActionReturn:
		return r.acceptOrForward(g, sink, "\n")

	case ActionCharacter, ActionSymbol:
		r.engine.Forward(g)
		if !g.Action.HasPayload() {
			return OutcomeForwarded
		}
		r.scheduleSettle(g.Action.Char)
		return OutcomeDeferred
	}

	return r.forward(g)
}

// acceptOrForward hands text to the overlay unless the engine is mid
// composition or the overlay declines it.
func (r *Router) acceptOrForward(g Gesture, sink Sink, text string) Outcome {
	if r.engine.HasPendingInput() {
		return r.forward(g)
	}
	if sink.Accept(text) {
		return OutcomeConsumed
	}
	return r.forward(g)
}

func (r *Router) forward(g Gesture) Outcome {
	r.engine.Forward(g)
	return OutcomeForwarded
}

// scheduleSettle samples the engine once it has had time to finalize the
// keystroke. Committed text wins; an idle engine with nothing committed
// means the key was not part of a composition, so the raw character goes
// to the overlay; an engine still composing keeps the keystroke. Text the
// overlay rejects, or that settles after its activation ended, goes to the
// fallback.
func (r *Router) scheduleSettle(raw string) {
	mode := r.mode
	r.sched.After(r.settleDelay, func() {
		sink := mode.sink
		if !r.mode.Same(mode) {
			r.log.Debug("settle sample after overlay activation ended")
			sink = nil
		}
		if commit := r.engine.TakeCommitText(); commit != "" {
			r.deliver(sink, commit)
			return
		}
		if r.engine.HasPendingInput() {
			return
		}
		r.deliver(sink, raw)
	})
}

func (r *Router) deliver(sink Sink, text string) {
	if sink != nil && sink.Accepting() && sink.Accept(text) {
		return
	}
	r.log.Debug("settled text falls back to the host", zap.Int("bytes", len(text)))
	r.fallback(text)
}
