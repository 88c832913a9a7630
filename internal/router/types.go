// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"fmt"
	"sync/atomic"
)

// ============================================================================
// GESTURES
// ============================================================================

// Kind is how a key was performed.
type Kind int

const (
	// KindRelease is an ordinary tap, reported on key-up.
	KindRelease Kind = iota
	// KindLongPress is a press held past the long-press threshold.
	KindLongPress
	// KindSwipeUp is an upward flick on a key carrying a secondary character.
	KindSwipeUp
	// KindSwipeDown is a downward flick on a key carrying a secondary character.
	KindSwipeDown
)

// String returns the name of the gesture kind.
func (k Kind) String() string {
	switch k {
	case KindRelease:
		return "release"
	case KindLongPress:
		return "longPress"
	case KindSwipeUp:
		return "swipeUp"
	case KindSwipeDown:
		return "swipeDown"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsSwipe reports whether the kind is a swipe in either direction.
func (k Kind) IsSwipe() bool {
	return k == KindSwipeUp || k == KindSwipeDown
}

// ActionType identifies the key that was hit.
type ActionType int

const (
	ActionBackspace ActionType = iota
	ActionSpace
	ActionReturn
	ActionCharacter
	ActionSymbol
)

// String returns the name of the action type.
func (a ActionType) String() string {
	switch a {
	case ActionBackspace:
		return "backspace"
	case ActionSpace:
		return "space"
	case ActionReturn:
		return "return"
	case ActionCharacter:
		return "character"
	case ActionSymbol:
		return "symbol"
	default:
		return fmt.Sprintf("ActionType(%d)", a)
	}
}

// Action is a key plus, for character and symbol keys, its payload.
type Action struct {
	Type ActionType
	Char string
}

// Backspace returns the backspace action.
func Backspace() Action { return Action{Type: ActionBackspace} }

// Space returns the space action.
func Space() Action { return Action{Type: ActionSpace} }

// Return returns the return/enter action.
func Return() Action { return Action{Type: ActionReturn} }

// Character returns a character-key action carrying c.
func Character(c string) Action { return Action{Type: ActionCharacter, Char: c} }

// Symbol returns a symbol-key action carrying c.
func Symbol(c string) Action { return Action{Type: ActionSymbol, Char: c} }

// HasPayload reports whether the action carries text.
func (a Action) HasPayload() bool {
	return (a.Type == ActionCharacter || a.Type == ActionSymbol) && a.Char != ""
}

// Gesture is one transient key event produced by the host keyboard.
type Gesture struct {
	Kind   Kind
	Action Action
}

// String renders the gesture for logs, e.g. "release/character(n)".
func (g Gesture) String() string {
	if g.Action.HasPayload() {
		return fmt.Sprintf("%s/%s(%s)", g.Kind, g.Action.Type, g.Action.Char)
	}
	return fmt.Sprintf("%s/%s", g.Kind, g.Action.Type)
}

// ============================================================================
// OUTCOME
// ============================================================================

// Outcome records what Handle did with a gesture.
type Outcome int

const (
	// OutcomeForwarded means the gesture went to the composition engine only.
	OutcomeForwarded Outcome = iota
	// OutcomeConsumed means the overlay took the gesture; the engine never saw it.
	OutcomeConsumed
	// OutcomeDeferred means the gesture went to the engine and a settle
	// sample was scheduled to pull finalized text into the overlay.
	OutcomeDeferred
)

// String returns the name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeForwarded:
		return "forwarded"
	case OutcomeConsumed:
		return "consumed"
	case OutcomeDeferred:
		return "deferred"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// ============================================================================
// COLLABORATORS
// ============================================================================

// Engine is the composition engine that turns raw keystrokes into finalized
// text on its own schedule.
type Engine interface {
	// HasPendingInput reports whether a composition is in progress.
	HasPendingInput() bool
	// TakeCommitText returns finalized text and clears it.
	TakeCommitText() string
	// Forward runs the engine's default handling for g.
	Forward(g Gesture)
}

// Sink is the overlay's input surface.
type Sink interface {
	// Accepting reports whether the overlay takes input right now. While
	// it does not, gestures get the engine's and host's default handling.
	Accepting() bool
	// Accept appends text to the question. False means rejected.
	Accept(text string) bool
	// Backspace removes the last character. False means nothing was removed.
	Backspace() bool
}

// lener is implemented by sinks that can report their length, letting the
// repeat timer stop as soon as the buffer is empty.
type lener interface {
	Len() int
}

// ============================================================================
// MODE
// ============================================================================

var modeSeq atomic.Uint64

// Mode is the routing token handed to the router by whoever owns the
// overlay. Each Overlay call yields a distinct activation, so work scheduled
// under one activation can tell when it has been superseded.
type Mode struct {
	sink Sink
	id   uint64
}

// Passthrough routes every gesture to the composition engine.
var Passthrough = Mode{}

// Overlay returns an active mode that diverts finalized input to sink.
func Overlay(sink Sink) Mode {
	if sink == nil {
		return Passthrough
	}
	return Mode{sink: sink, id: modeSeq.Add(1)}
}

// Active reports whether gestures are being diverted to an overlay.
func (m Mode) Active() bool {
	return m.sink != nil
}

// Same reports whether m and other are the same activation.
func (m Mode) Same(other Mode) bool {
	return m.id == other.id
}
