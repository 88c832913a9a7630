// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the keyboard host.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HOST DOCUMENT
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	Document    lipgloss.Style
	Cursor      lipgloss.Style
	Composing   lipgloss.Style // pending composition, shown after the cursor

	// ==========================================================================
	// OVERLAY PANEL
	// ==========================================================================

	Panel        lipgloss.Style
	PanelTitle   lipgloss.Style
	Question     lipgloss.Style
	QuestionIdle lipgloss.Style // unfocused input
	Placeholder  lipgloss.Style
	Answer       lipgloss.Style
	Error        lipgloss.Style
	Loading      lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar   lipgloss.Style
	StatusMode  lipgloss.Style
	KeyHint     lipgloss.Style
	KeyHintDesc lipgloss.Style
}

// NewTheme detects the terminal and builds the styles.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Document = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.Cursor = lipgloss.NewStyle().
		Foreground(Cyan).
		Blink(true)

	t.Composing = lipgloss.NewStyle().
		Foreground(Amber).
		Underline(true)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Question = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Cyan)

	t.QuestionIdle = t.Question.Copy().
		Foreground(TextSecondary).
		BorderForeground(OverlayDim)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Answer = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Error = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.Loading = lipgloss.NewStyle().
		Foreground(Cyan)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusMode = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald)

	t.KeyHint = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.KeyHintDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// SetSize updates the layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// PanelWidth is the inner width of the overlay panel.
func (t *Theme) PanelWidth() int {
	w := t.Width - t.Panel.GetHorizontalFrameSize()
	if w < 10 {
		return 10
	}
	return w
}
