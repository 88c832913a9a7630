// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keyboard

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/keyai/internal/router"
)

// command is a host-level action that is not a keyboard gesture.
type command int

const (
	cmdNone command = iota
	cmdToggle
	cmdRegenerate
	cmdInsert
	cmdFocus
	cmdQuit
)

// translate maps a terminal key to gestures or a host command.
//
//	printable      release, character or symbol
//	space          release, space
//	backspace      release, backspace
//	alt+backspace  long press, backspace
//	alt+<char>     swipe up with the character as payload
//	enter          release, return
//	ctrl+a         toggle overlay
//	ctrl+r         regenerate
//	ctrl+o         insert answer
//	ctrl+f         focus overlay input
//	ctrl+c         quit
func translate(k tea.KeyMsg) ([]router.Gesture, command) {
	switch k.Type {
	case tea.KeyCtrlC:
		return nil, cmdQuit
	case tea.KeyCtrlA:
		return nil, cmdToggle
	case tea.KeyCtrlR:
		return nil, cmdRegenerate
	case tea.KeyCtrlO:
		return nil, cmdInsert
	case tea.KeyCtrlF:
		return nil, cmdFocus

	case tea.KeyBackspace, tea.KeyCtrlH:
		if k.Alt {
			return []router.Gesture{{Kind: router.KindLongPress, Action: router.Backspace()}}, cmdNone
		}
		return []router.Gesture{{Kind: router.KindRelease, Action: router.Backspace()}}, cmdNone

	case tea.KeySpace:
		return []router.Gesture{{Kind: router.KindRelease, Action: router.Space()}}, cmdNone

	case tea.KeyEnter:
		return []router.Gesture{{Kind: router.KindRelease, Action: router.Return()}}, cmdNone

	case tea.KeyRunes:
		if k.Alt {
			if len(k.Runes) == 0 {
				return nil, cmdNone
			}
			return []router.Gesture{{Kind: router.KindSwipeUp, Action: charAction(k.Runes[0])}}, cmdNone
		}
		gestures := make([]router.Gesture, 0, len(k.Runes))
		for _, r := range k.Runes {
			switch {
			case r == ' ':
				gestures = append(gestures, router.Gesture{Kind: router.KindRelease, Action: router.Space()})
			case r == '\n' || r == '\r':
				gestures = append(gestures, router.Gesture{Kind: router.KindRelease, Action: router.Return()})
			case unicode.IsPrint(r):
				gestures = append(gestures, router.Gesture{Kind: router.KindRelease, Action: charAction(r)})
			}
		}
		return gestures, cmdNone
	}
	return nil, cmdNone
}

// charAction classifies a rune as a character key or a symbol key.
func charAction(r rune) router.Action {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return router.Character(string(r))
	}
	return router.Symbol(string(r))
}
