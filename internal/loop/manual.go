// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by a virtual clock. Nothing runs until the
// test calls Flush or Advance, and everything runs on the caller's goroutine.
// Post is safe from any goroutine, which lets HTTP completions queue up
// while the test decides when to deliver them.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	posted  []func()
	pending []*manualTimer
}

type manualTimer struct {
	due      time.Duration
	period   time.Duration
	seq      int
	fn       func()
	canceled bool
}

// NewManual returns a scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Post queues fn for the next Flush.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, fn)
}

// After schedules fn at now+d.
func (m *Manual) After(d time.Duration, fn func()) Cancel {
	return m.schedule(d, 0, fn)
}

// Every schedules fn at now+d, now+2d, ...
func (m *Manual) Every(d time.Duration, fn func()) Cancel {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.schedule(d, d, fn)
}

func (m *Manual) schedule(d, period time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{due: m.now + d, period: period, seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.canceled = true
	}
}

// Pending reports how many live timers are scheduled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Flush runs posted callbacks, including ones posted while flushing.
func (m *Manual) Flush() {
	for {
		m.mu.Lock()
		if len(m.posted) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.posted[0]
		m.posted = m.posted[1:]
		m.mu.Unlock()
		fn()
	}
}

// Advance moves the clock forward by d, firing due timers in order and
// flushing posted work after each one.
func (m *Manual) Advance(d time.Duration) {
	m.Flush()

	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.nextDue(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.due
		if t.period > 0 {
			t.due += t.period
		} else {
			t.canceled = true
		}
		fn := t.fn
		m.mu.Unlock()

		fn()
		m.Flush()
	}
}

// nextDue returns the earliest live timer due at or before target.
// Caller holds m.mu.
func (m *Manual) nextDue(target time.Duration) *manualTimer {
	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.canceled {
			live = append(live, t)
		}
	}
	m.pending = live
	if len(live) == 0 {
		return nil
	}
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].due == live[j].due {
			return live[i].seq < live[j].seq
		}
		return live[i].due < live[j].due
	})
	if live[0].due > target {
		return nil
	}
	return live[0]
}
