// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - The runtime a command executes against, and helpers shared
// across commands.

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/jeranaias/keyai/internal/auth"
	"github.com/jeranaias/keyai/internal/config"
	"github.com/jeranaias/keyai/internal/logging"
	"github.com/jeranaias/keyai/internal/storage"
)

// Env is what a command runs against: configuration, a logger and the
// standard streams.
type Env struct {
	Config *config.Config
	Logger *zap.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	in *bufio.Reader
}

// NewEnv loads the configuration and builds the CLI logger: stderr with
// --verbose, otherwise discarded.
func NewEnv(args Args) (*Env, error) {
	cfg, loadErr := config.Load()
	if cfg == nil {
		return nil, loadErr
	}
	config.SetGlobal(cfg)

	target := logging.Discard
	if args.Verbose {
		target = logging.Stderr
	}
	logger, err := logging.New(cfg, target, args.Verbose)
	if err != nil {
		return nil, err
	}
	if loadErr != nil {
		// Load falls back to defaults when the file is unreadable.
		logger.Warn("using default configuration", zap.Error(loadErr))
	}

	return &Env{
		Config: cfg,
		Logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// reader returns the buffered stdin shared by every prompt, so that
// consecutive prompts on piped input see consecutive lines.
func (e *Env) reader() *bufio.Reader {
	if e.in == nil {
		e.in = bufio.NewReader(e.Stdin)
	}
	return e.in
}

// userStore opens the shared credential store.
func (e *Env) userStore() (*auth.Store, error) {
	path, err := e.Config.UserFilePath()
	if err != nil {
		return nil, err
	}
	return auth.NewStore(path, e.Logger), nil
}

// threadStore opens the saved-thread store in the config directory.
func (e *Env) threadStore() (*storage.ThreadStore, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return storage.NewThreadStore(dir), nil
}

// =============================================================================
// PROMPTS
// =============================================================================

// promptInput prints prompt to stderr and reads one line.
func (e *Env) promptInput(prompt string) (string, error) {
	fmt.Fprint(e.Stderr, prompt)
	line, err := e.reader().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a password without echo when stdin is a terminal,
// otherwise as a plain line (for --password-stdin and scripts).
func (e *Env) readPassword(prompt string) (string, error) {
	f, ok := e.Stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(e.Stderr, prompt)
		line, err := e.reader().ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(e.Stderr, prompt)
	passBytes, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(e.Stderr) // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passBytes), nil
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// renderMarkdown renders an answer for a terminal of the given width,
// returning the original text if rendering fails.
func renderMarkdown(content string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayAnswer writes an answer, rendering markdown only when stdout is a
// terminal so piped output stays byte-for-byte.
func (e *Env) displayAnswer(text string) {
	if isTerminal(e.Stdout) {
		fmt.Fprint(e.Stdout, renderMarkdown(text, terminalWidth(e.Stdout)))
		return
	}
	fmt.Fprintln(e.Stdout, text)
}
