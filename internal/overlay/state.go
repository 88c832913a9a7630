// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package overlay

import "fmt"

// State is the overlay's visibility.
type State int

const (
	// Hidden: no buffer, no session, gestures pass through.
	Hidden State = iota
	// Opening: expanding; routing is active but input is not yet
	// accepted, so keys keep their host effect.
	Opening
	// Visible: fully shown; input is accepted while focused.
	Visible
	// Closing: collapsing; gestures already pass through.
	Closing
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Opening:
		return "opening"
	case Visible:
		return "visible"
	case Closing:
		return "closing"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Shown reports whether any part of the overlay is on screen.
func (s State) Shown() bool {
	return s != Hidden
}
