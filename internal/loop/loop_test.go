// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loop

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

// chanQueue posts callbacks onto a channel the test drains.
type chanQueue struct {
	Timers
	work chan func()
	done chan struct{}
}

func newChanQueue() *chanQueue {
	q := &chanQueue{work: make(chan func(), 16), done: make(chan struct{})}
	q.Timers = NewTimers(q.Post, q.done)
	return q
}

func (q *chanQueue) Post(fn func()) {
	select {
	case q.work <- fn:
	case <-q.done:
	}
}

var _ Scheduler = (*chanQueue)(nil)

func TestTimers_AfterPostsOnce(t *testing.T) {
	defer goleak.VerifyNone(t)
	q := newChanQueue()
	defer close(q.done)

	var fired atomic.Int32
	q.After(5*time.Millisecond, func() { fired.Add(1) })

	select {
	case fn := <-q.work:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("After never posted")
	}
	assert.Equal(t, int32(1), fired.Load())
}

func TestTimers_AfterCancelled(t *testing.T) {
	q := newChanQueue()
	defer close(q.done)

	cancel := q.After(20*time.Millisecond, func() { t.Error("cancelled callback ran") })
	cancel()
	cancel()

	select {
	case <-q.work:
		t.Fatal("cancelled timer posted")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimers_EveryStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)
	q := newChanQueue()
	defer close(q.done)

	var ticks atomic.Int32
	stop := q.Every(2*time.Millisecond, func() { ticks.Add(1) })
	for ticks.Load() < 3 {
		select {
		case fn := <-q.work:
			fn()
		case <-time.After(2 * time.Second):
			t.Fatal("Every stopped ticking")
		}
	}
	stop()
	stop()
	assert.GreaterOrEqual(t, ticks.Load(), int32(3))
}

func TestTimers_DoneEndsEveryAndDropsAfter(t *testing.T) {
	defer goleak.VerifyNone(t)
	q := newChanQueue()

	q.Every(time.Millisecond, func() {})
	q.After(time.Millisecond, func() {})
	close(q.done)

	// Nothing drains q.work; the deferred leak check fails if either timer
	// blocks after done is closed.
	time.Sleep(10 * time.Millisecond)
}

func TestManual_AfterFiresAtDueTime(t *testing.T) {
	m := NewManual()
	var fired bool
	m.After(10*time.Millisecond, func() { fired = true })

	m.Advance(9 * time.Millisecond)
	assert.False(t, fired)
	m.Advance(time.Millisecond)
	assert.True(t, fired)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_EveryAndCancel(t *testing.T) {
	m := NewManual()
	n := 0
	var stop Cancel
	stop = m.Every(100*time.Millisecond, func() {
		n++
		if n == 3 {
			stop()
		}
	})

	m.Advance(time.Second)
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_OrdersTimersAndFlushesPosts(t *testing.T) {
	m := NewManual()
	var order []string
	m.After(20*time.Millisecond, func() { order = append(order, "b") })
	m.After(10*time.Millisecond, func() {
		order = append(order, "a")
		m.Post(func() { order = append(order, "a-posted") })
	})
	m.Post(func() { order = append(order, "first") })

	m.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"first", "a", "a-posted", "b"}, order)
	assert.Equal(t, 50*time.Millisecond, m.Now())
}
