// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router decides, per keyboard gesture, whether input goes to the
// composition engine or to the AI overlay's question buffer.
//
// The overlay only ever receives finalized text. While the composition
// engine holds pending (uncommitted) input, backspace and space belong to
// the engine; character keys always pass through the engine first and the
// router samples the engine's commit buffer after a short settle delay.
//
// # Key Types
//
//   - Gesture: a key action plus how it was performed (release, long press, swipe)
//   - Engine: the composition engine contract (pending input, commit text, forward)
//   - Sink: the overlay's input surface (accept text, backspace)
//   - Mode: the routing token; Passthrough or Overlay(sink)
//   - Router: the per-keyboard decision logic and the delete-repeat timer
//
// # Usage
//
//	r := router.New(engine, scheduler, router.DefaultOptions())
//	r.SetMode(router.Overlay(controller))
//	outcome := r.Handle(router.Gesture{Kind: router.KindRelease, Action: router.Character("n")})
//
// All Router methods must be called on the scheduler's serial queue.
package router
