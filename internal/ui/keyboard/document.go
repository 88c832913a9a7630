// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keyboard

import (
	"github.com/jeranaias/keyai/internal/overlay"
	"github.com/jeranaias/keyai/internal/router"
)

// document is the host text field the keyboard types into. Answers
// accepted from the overlay arrive through Insert.
type document struct {
	buf *overlay.Buffer
}

func newDocument() *document {
	return &document{buf: overlay.NewBuffer(0)}
}

// Insert implements overlay.Inserter.
func (d *document) Insert(text string) {
	d.buf.Append(text)
}

func (d *document) deleteBackward() {
	d.buf.DeleteLast()
}

func (d *document) String() string {
	return d.buf.String()
}

// applyDefault performs a key's ordinary effect on the document, for keys
// the composition engine did not absorb.
func (d *document) applyDefault(g router.Gesture) {
	switch g.Action.Type {
	case router.ActionBackspace:
		d.deleteBackward()
	case router.ActionSpace:
		d.Insert(" ")
	case router.ActionReturn:
		d.Insert("\n")
	case router.ActionCharacter, router.ActionSymbol:
		d.Insert(g.Action.Char)
	}
}
