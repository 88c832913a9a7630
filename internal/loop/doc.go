// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package loop provides the serial queue every keyboard instance runs on.
//
// Gesture handling, overlay state changes, and the completion of network
// calls all execute on one logical actor. Work that originates elsewhere
// (timer ticks, HTTP responses) re-enters the actor through Post.
//
// # Key Types
//
//   - Scheduler: Post / After / Every, the contract the router and overlay use
//   - Timers: After and Every on real timers, for a queue that supplies Post
//   - Manual: a virtual-clock scheduler for deterministic tests
//
// # Usage
//
//	type queue struct {
//	    loop.Timers
//	    // ...
//	}
//
//	q := &queue{done: make(chan struct{})}
//	q.Timers = loop.NewTimers(q.Post, q.done)
//	cancel := q.After(10*time.Millisecond, func() { /* runs on q */ })
//	defer cancel()
package loop
