// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the palette and lipgloss styles shared by the keyai
CLI and the keyboard host.

All colors are lipgloss AdaptiveColor values, so they follow the terminal's
light or dark background.

# Colors (colors.go)

  - Purple: overlay accent
  - Cyan: brand, focused input, key hints
  - Emerald: success, insert action
  - Amber: warnings, pending composition
  - Rose: errors

Status helpers (RenderSuccess, RenderError, ...) prefix an ASCII indicator
so meaning never depends on color alone.

# Theme (theme.go)

Theme groups the styles of the keyboard host: the document area, the
overlay panel and the status bar.

# Animations (animations.go)

Spinner frames for the loading indicator and easing helpers used to draw
the overlay panel while it expands or collapses:

	rows := styles.Rows(panelHeight, styles.Progress(elapsed, animation), styles.EaseOutCubic)
*/
package styles
