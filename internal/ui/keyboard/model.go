// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keyboard

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/auth"
	"github.com/jeranaias/keyai/internal/compose"
	"github.com/jeranaias/keyai/internal/config"
	"github.com/jeranaias/keyai/internal/loop"
	"github.com/jeranaias/keyai/internal/overlay"
	"github.com/jeranaias/keyai/internal/router"
	"github.com/jeranaias/keyai/internal/ui/styles"
)

// frameInterval paces redraws while the overlay animates.
const frameInterval = 16 * time.Millisecond

// answerHeight is the number of rows given to the answer area.
const answerHeight = 8

// =============================================================================
// MESSAGES
// =============================================================================

// frameMsg redraws an animating overlay.
type frameMsg time.Time

// =============================================================================
// MODEL
// =============================================================================

// Deps are the collaborators a Model is built from.
type Deps struct {
	Config *config.Config
	Asker  overlay.Asker
	Engine *compose.Table
	Logger *zap.Logger

	// MarkdownStyle is a glamour standard style; empty picks dark or light
	// from the terminal.
	MarkdownStyle string

	// Now is the clock used for animation progress.
	Now func() time.Time
}

// Model is the keyboard host: a document, a composition engine, the
// gesture router and the AI-query overlay.
type Model struct {
	sched  loop.Scheduler
	theme  *styles.Theme
	log    *zap.Logger
	now    func() time.Time
	engine *compose.Table
	router *router.Router
	ctrl   *overlay.Controller
	doc    *document

	// Account status, fed by the credential store watcher.
	user     string
	loggedIn bool

	spinner  spinner.Model
	spinning bool
	answer   viewport.Model
	shown    string // answer text currently in the viewport

	md      *glamour.TermRenderer
	mdStyle string
	mdWidth int

	animation time.Duration
	animStart time.Time
	lastState overlay.State

	quitting bool
}

// New builds a Model on sched. Every callback the router and overlay
// schedule runs on sched, so it must be drained on the Update goroutine.
func New(sched loop.Scheduler, deps Deps) *Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := deps.Engine
	if engine == nil {
		engine = compose.NewDefault()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	theme := styles.NewTheme()
	mdStyle := deps.MarkdownStyle
	if mdStyle == "" {
		mdStyle = "light"
		if theme.IsDark {
			mdStyle = "dark"
		}
	}

	m := &Model{
		sched:     sched,
		theme:     theme,
		log:       logger.Named("keyboard"),
		now:       now,
		engine:    engine,
		doc:       newDocument(),
		mdStyle:   mdStyle,
		animation: cfg.Animation(),
		spinner:   spinner.New(spinner.WithSpinner(styles.DotsSpinner.Bubbles())),
		answer:    viewport.New(40, answerHeight),
	}
	m.spinner.Style = theme.Loading

	m.router = router.New(engine, sched, router.Options{
		SettleDelay:    cfg.SettleDelay(),
		RepeatInterval: cfg.RepeatInterval(),
		Logger:         logger,
		Fallback:       m.doc.Insert,
	})
	m.ctrl = overlay.NewController(sched, m.router, deps.Asker, m.doc, overlay.Options{
		Animation:         cfg.Animation(),
		FocusDelay:        cfg.FocusDelay(),
		MaxQuestionLength: cfg.Input.MaxQuestionLength,
		Logger:            logger,
	})
	return m
}

// SetUser updates the account line. Call it on the Update goroutine.
func (m *Model) SetUser(u auth.User, loggedIn bool) {
	m.user = u.Username
	m.loggedIn = loggedIn
}

// Document returns the host document's text.
func (m *Model) Document() string {
	return m.doc.String()
}

// Overlay exposes the overlay controller.
func (m *Model) Overlay() *overlay.Controller {
	return m.ctrl
}

// Shutdown tears the overlay and router down. Safe to call more than once.
func (m *Model) Shutdown() {
	m.ctrl.Close()
	m.router.Close()
}

// =============================================================================
// BUBBLETEA
// =============================================================================

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case runQueueMsg:
		msg.s.drain()

	case tea.WindowSizeMsg:
		m.theme.SetSize(msg.Width, msg.Height)
		m.answer.Width = m.theme.PanelWidth()
		m.shown = "" // re-render at the new width

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}

	case spinner.TickMsg:
		if m.spinning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case frameMsg:
		// handled by sync below
	}

	cmds = append(cmds, m.sync(msg)...)
	return m, tea.Batch(cmds...)
}

// handleKey routes one key press. It returns a command only when the
// program should quit.
func (m *Model) handleKey(k tea.KeyMsg) tea.Cmd {
	if k.Type == tea.KeyRunes && !k.Alt && len(k.Runes) > 1 {
		m.paste(string(k.Runes))
		return nil
	}

	gestures, command := translate(k)
	switch command {
	case cmdQuit:
		m.quitting = true
		m.Shutdown()
		return tea.Quit
	case cmdToggle:
		m.ctrl.Toggle()
	case cmdRegenerate:
		m.ctrl.Regenerate()
	case cmdInsert:
		m.ctrl.InsertAnswer()
	case cmdFocus:
		m.ctrl.Focus()
	}

	for _, g := range gestures {
		m.handleGesture(g)
	}
	return nil
}

// handleGesture sends g through the router and applies the host side of
// a forwarded gesture: committed text goes to the overlay when it is
// active, otherwise to the document, and keys the engine ignored get
// their default effect on the document.
func (m *Model) handleGesture(g router.Gesture) {
	active := m.router.Mode().Active()
	if m.router.Handle(g) != router.OutcomeForwarded {
		return
	}
	if commit := m.engine.TakeCommitText(); commit != "" {
		if !active || !m.ctrl.Accept(commit) {
			m.doc.Insert(commit)
		}
	}
	if !m.engine.Handled() {
		m.doc.applyDefault(g)
	}
}

// paste delivers a multi-rune key event as text, bypassing composition.
func (m *Model) paste(text string) {
	if m.router.Mode().Active() && m.ctrl.Accept(text) {
		return
	}
	m.doc.Insert(text)
}

// sync reacts to controller state changes after every message.
func (m *Model) sync(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	v := m.ctrl.View()

	if v.State != m.lastState {
		m.log.Debug("overlay state", zap.Stringer("from", m.lastState), zap.Stringer("to", v.State))
		m.lastState = v.State
		if animating(v.State) {
			m.animStart = m.now()
			cmds = append(cmds, frame())
		}
	} else if _, ok := msg.(frameMsg); ok && animating(v.State) {
		cmds = append(cmds, frame())
	}

	if v.Loading && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	} else if !v.Loading {
		m.spinning = false
	}

	if text := answerText(v); text != m.shown {
		m.shown = text
		m.answer.SetContent(m.renderMarkdown(text))
		m.answer.GotoTop()
	}
	return cmds
}

func animating(s overlay.State) bool {
	return s == overlay.Opening || s == overlay.Closing
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// answerText is what the answer area shows, before rendering.
func answerText(v overlay.View) string {
	if v.Error != "" {
		return ""
	}
	return v.Answer
}

// renderMarkdown renders an answer for the panel width, falling back to
// the raw text.
func (m *Model) renderMarkdown(text string) string {
	if text == "" {
		return ""
	}
	width := m.theme.PanelWidth()
	if m.md == nil || m.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.mdStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.log.Warn("markdown renderer unavailable", zap.Error(err))
			return text
		}
		m.md, m.mdWidth = r, width
	}
	out, err := m.md.Render(text)
	if err != nil {
		return text
	}
	return out
}
