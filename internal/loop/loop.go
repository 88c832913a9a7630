// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loop

import (
	"sync"
	"time"
)

// Cancel stops a scheduled callback. Calling it more than once is safe.
// A callback already handed to the queue may still run, so callbacks must
// check their own generation if that matters.
type Cancel func()

// Scheduler runs callbacks on a single serial queue.
type Scheduler interface {
	// Post enqueues fn. Safe to call from any goroutine.
	Post(fn func())
	// After runs fn on the queue once d has elapsed.
	After(d time.Duration, fn func()) Cancel
	// Every runs fn on the queue every d until cancelled.
	Every(d time.Duration, fn func()) Cancel
}

// Timers implements After and Every with real timers on top of a post
// function, for schedulers that own their queue. Embed it to complete a
// Scheduler.
type Timers struct {
	post func(fn func())
	done <-chan struct{}
}

// NewTimers creates timers that deliver through post. Closing done ends
// every Every goroutine; post must drop callbacks once done is closed.
func NewTimers(post func(fn func()), done <-chan struct{}) Timers {
	return Timers{post: post, done: done}
}

// After posts fn once d has elapsed.
func (t Timers) After(d time.Duration, fn func()) Cancel {
	timer := time.AfterFunc(d, func() {
		select {
		case <-t.done:
		default:
			t.post(fn)
		}
	})
	return func() { timer.Stop() }
}

// Every posts fn every d until the returned Cancel is called or done is
// closed. Intervals below a millisecond are raised to one.
func (t Timers) Every(d time.Duration, fn func()) Cancel {
	if d < time.Millisecond {
		d = time.Millisecond
	}
	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.done:
				return
			case <-ticker.C:
				t.post(fn)
			}
		}
	}()

	return func() { once.Do(func() { close(stop) }) }
}
