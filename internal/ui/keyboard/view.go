// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keyboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/keyai/internal/overlay"
	"github.com/jeranaias/keyai/internal/ui/styles"
	"github.com/jeranaias/keyai/internal/util"
)

const (
	cursorGlyph = "_"
	placeholder = "输入问题..."
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	v := m.ctrl.View()

	sections := []string{m.renderHeader(), m.renderDocument()}
	if v.State != overlay.Hidden {
		if panel := m.renderPanel(v); panel != "" {
			sections = append(sections, panel)
		}
	}
	sections = append(sections, m.renderStatus(v))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	account := "未登录 (keyai login)"
	if m.loggedIn {
		account = "已登录: " + m.user
	}
	return m.theme.Header.Render(m.theme.HeaderTitle.Render("keyai") + "  " + account)
}

// renderDocument draws the host text field with the cursor and any
// composition in progress.
func (m *Model) renderDocument() string {
	var b strings.Builder
	b.WriteString(m.doc.String())
	if pending := m.engine.Pending(); pending != "" {
		b.WriteString(m.theme.Composing.Render(pending + "→" + m.engine.Candidate()))
	}
	b.WriteString(m.theme.Cursor.Render(cursorGlyph))
	return m.theme.Document.Render(b.String())
}

// renderPanel draws the overlay, clipped to its animated height while it
// opens or closes.
func (m *Model) renderPanel(v overlay.View) string {
	width := m.theme.PanelWidth()
	lines := []string{m.theme.PanelTitle.Render("AI 问答"), m.renderQuestion(v, width)}

	switch {
	case v.Loading:
		lines = append(lines, m.spinner.View()+m.theme.Loading.Render(" 思考中"))
	case v.Error != "":
		lines = append(lines, m.theme.Error.Render(v.Error))
	case v.Answer != "":
		lines = append(lines, m.answer.View())
	}
	lines = append(lines, m.renderActions(v))

	panel := m.theme.Panel.Width(width).Render(strings.Join(lines, "\n"))
	if !animating(v.State) {
		return panel
	}

	rows := strings.Split(panel, "\n")
	p := styles.Progress(m.now().Sub(m.animStart), m.animation)
	ease := styles.EaseOutCubic
	if v.State == overlay.Closing {
		// Collapse mirrors the expansion: quick at first, settling at the end.
		p, ease = 1-p, styles.EaseInCubic
	}
	n := styles.Rows(len(rows), p, ease)
	return strings.Join(rows[:n], "\n")
}

// renderQuestion shows the tail of the question so the cursor stays visible.
func (m *Model) renderQuestion(v overlay.View, width int) string {
	style := m.theme.QuestionIdle
	if v.Focused {
		style = m.theme.Question
	}
	if v.Question == "" {
		text := m.theme.Placeholder.Render(placeholder)
		if v.Focused {
			text = m.theme.Cursor.Render(cursorGlyph) + text
		}
		return style.Width(width).Render(text)
	}
	text := v.Question
	if v.Focused {
		text += cursorGlyph
	}
	return style.Width(width).Render(util.TruncateWidthLeft(text, width))
}

func (m *Model) renderActions(v overlay.View) string {
	var hints []string
	add := func(enabled bool, key, desc string) {
		if enabled {
			hints = append(hints, m.theme.KeyHint.Render(key)+" "+m.theme.KeyHintDesc.Render(desc))
		}
	}
	add(v.State == overlay.Visible && !v.Focused, "ctrl+f", "输入")
	add(v.CanSubmit, "enter", "提交")
	add(v.CanRegenerate, "ctrl+r", "重新生成")
	add(v.CanInsert, "ctrl+o", "插入")
	add(v.State == overlay.Visible, "ctrl+a", "关闭")
	return strings.Join(hints, "  ")
}

func (m *Model) renderStatus(v overlay.View) string {
	mode := "键盘"
	if m.router.Mode().Active() {
		mode = "AI"
	}
	parts := []string{m.theme.StatusMode.Render(mode)}
	if m.router.Repeating() {
		parts = append(parts, m.theme.KeyHintDesc.Render("连续删除 (backspace 停止)"))
	}
	if v.State == overlay.Hidden {
		parts = append(parts, m.theme.KeyHint.Render("ctrl+a")+" "+m.theme.KeyHintDesc.Render("AI 问答"))
	}
	parts = append(parts, m.theme.KeyHint.Render("ctrl+c")+" "+m.theme.KeyHintDesc.Render("退出"))
	return m.theme.StatusBar.Render(strings.Join(parts, "  "))
}
