// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package overlay

import "strings"

// ErrorPrefix introduces error text in the answer area.
const ErrorPrefix = "错误: "

// View is a snapshot of what the overlay shows.
type View struct {
	State    State
	Question string
	Focused  bool
	Loading  bool

	// Answer is the formatted answer, empty while loading or after an error.
	Answer string
	// Error is the user-facing failure, already prefixed.
	Error string

	CanSubmit     bool
	CanRegenerate bool
	CanInsert     bool
}

// View returns the current view model.
func (c *Controller) View() View {
	v := View{
		State:   c.state,
		Focused: c.focused,
		Loading: c.loading,
	}
	if c.buf != nil {
		v.Question = c.buf.String()
	}
	if c.state != Visible {
		return v
	}

	if !c.loading {
		v.Answer = c.answer
		if c.errMsg != "" {
			v.Error = ErrorPrefix + c.errMsg
		}
	}
	hasQuestion := strings.TrimSpace(v.Question) != ""
	v.CanSubmit = hasQuestion && !c.loading
	v.CanRegenerate = hasQuestion && c.responded && !c.loading
	v.CanInsert = !c.loading && c.answer != ""
	return v
}
