// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/loop"
)

// repeatTimer is the delete-repeat state. At most one timer is live; gen
// is bumped on every start and stop so a tick that was already queued when
// its timer was replaced can recognise itself as stale.
type repeatTimer struct {
	gen    uint64
	active bool
	cancel loop.Cancel
}

// Repeating reports whether the delete-repeat timer is running.
func (r *Router) Repeating() bool {
	return r.repeat.active
}

func (r *Router) startRepeat() {
	r.stopRepeat("restarted")

	r.repeat.gen++
	gen := r.repeat.gen
	mode := r.mode
	r.repeat.active = true
	r.repeat.cancel = r.sched.Every(r.repeatInterval, func() {
		r.repeatTick(gen, mode)
	})
	r.log.Debug("delete repeat started", zap.Duration("interval", r.repeatInterval))
}

func (r *Router) repeatTick(gen uint64, mode Mode) {
	if !r.repeat.active || gen != r.repeat.gen {
		return
	}
	if !r.mode.Active() || !r.mode.Same(mode) {
		r.stopRepeat("overlay deactivated")
		return
	}
	if !mode.sink.Backspace() {
		r.stopRepeat("buffer empty")
		return
	}
	if l, ok := mode.sink.(lener); ok && l.Len() == 0 {
		r.stopRepeat("buffer empty")
	}
}

func (r *Router) stopRepeat(reason string) {
	if !r.repeat.active {
		return
	}
	r.repeat.active = false
	r.repeat.gen++
	if r.repeat.cancel != nil {
		r.repeat.cancel()
		r.repeat.cancel = nil
	}
	r.log.Debug("delete repeat stopped", zap.String("reason", reason))
}
