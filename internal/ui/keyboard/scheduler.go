// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keyboard

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/keyai/internal/loop"
)

// runQueueMsg asks Update to drain the scheduler's queue.
type runQueueMsg struct {
	s *programScheduler
}

// programScheduler is a loop.Scheduler whose queue is drained inside the
// bubbletea Update loop, so router, controller and engine state is only
// ever touched on the program goroutine.
//
// Post never blocks: callbacks are queued and a single wake-up message is
// sent from a separate goroutine, since Program.Send blocks while Update
// is running.
type programScheduler struct {
	loop.Timers

	send func(tea.Msg)

	mu      sync.Mutex
	queue   []func()
	stopped bool
	done    chan struct{}
}

func newProgramScheduler(send func(tea.Msg)) *programScheduler {
	s := &programScheduler{send: send, done: make(chan struct{})}
	s.Timers = loop.NewTimers(s.Post, s.done)
	return s
}

// Post queues fn for the next drain.
func (s *programScheduler) Post(fn func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, fn)
	wake := len(s.queue) == 1
	s.mu.Unlock()

	if wake {
		go s.send(runQueueMsg{s: s})
	}
}

// drain runs everything queued so far, in order. Callbacks posted while
// draining wait for the next wake-up.
func (s *programScheduler) drain() {
	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
}

// Stop drops queued and future callbacks and ends Every goroutines.
func (s *programScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.queue = nil
	close(s.done)
}
