// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive question session for keyai.
//
// USABILITY: Markdown rendering and history for better CLI experience
//
// Command: chat
// Short:   Ask questions in one thread until you quit
//
// Examples:
//   keyai chat                   Start a new thread
//   keyai chat --continue        Continue the saved thread
//   keyai chat "first question"  Ask straight away
//
// Interactive Commands (during chat):
//   /regen, /r          Regenerate the last answer
//   /new, /n            Start a new thread
//   /help, /h           Show available commands
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel the question in flight
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/auth"
	"github.com/jeranaias/keyai/internal/chat"
	"github.com/jeranaias/keyai/internal/config"
	"github.com/jeranaias/keyai/internal/storage"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader is where the REPL gets its input.
type lineReader interface {
	ReadInput(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
	log         *zap.Logger
}

// NewChatCLI creates a ChatCLI and loads saved history.
func NewChatCLI(logger *zap.Logger) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
		log:         logger,
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		if _, err := c.line.ReadHistory(f); err != nil {
			c.log.Debug("chat history unreadable", zap.Error(err))
		}
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with 0600 permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		c.log.Debug("chat history not saved", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := c.line.WriteHistory(f); err != nil {
		c.log.Debug("chat history not saved", zap.Error(err))
	}
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(ctx context.Context, env *Env, args Args) error {
	if !isTerminal(env.Stdin) {
		return &TTYRequiredError{Operation: "chat"}
	}
	input := NewChatCLI(env.Logger)
	defer input.Close()
	return runChat(ctx, env, args, input)
}

// chatREPL is the state of one chat run.
type chatREPL struct {
	env     *Env
	client  *chat.Client
	store   *auth.Store
	threads *storage.ThreadStore
	sess    *chat.Session
}

func runChat(ctx context.Context, env *Env, args Args, input lineReader) error {
	store, err := env.userStore()
	if err != nil {
		return err
	}
	threads, err := env.threadStore()
	if err != nil {
		return err
	}
	sess, err := openSession(threads, args)
	if err != nil {
		return err
	}

	r := &chatREPL{
		env:     env,
		client:  chat.NewClient(env.Config.ChatClientConfig(), store, env.Logger),
		store:   store,
		threads: threads,
		sess:    sess,
	}
	r.printWelcome()

	if q := strings.TrimSpace(args.Query); q != "" || args.Regenerate {
		r.ask(ctx, q, args.Regenerate)
	}

	for {
		line, err := input.ReadInput(PromptStyle.Render("keyai> "))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D, or EOF on piped input.
			fmt.Fprintln(env.Stdout)
			return nil
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "/"):
			if !r.command(ctx, line) {
				return nil
			}
		case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
			return nil
		default:
			r.ask(ctx, line, false)
		}
	}
}

// ask sends one question. Errors are printed, never returned: one failed
// question does not end the session.
func (r *chatREPL) ask(ctx context.Context, question string, regenerate bool) {
	if regenerate && r.sess.LastQuestion() == "" && r.sess.ID() == "" {
		fmt.Fprintln(r.env.Stdout, WarningStyle.Render("还没有可以重新生成的回答"))
		return
	}

	// Ctrl+C while waiting cancels this question only.
	reqCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	resp, err := r.client.Ask(reqCtx, r.sess, question, regenerate)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(r.env.Stdout, RenderStatus("cancelled")+" "+WarningStyle.Render("已取消"))
		return
	default:
		fmt.Fprintln(r.env.Stdout, RenderStatus("error")+" "+ErrorStyle.Render(chat.UserMessage(err)))
		return
	}

	saveThread(r.env, r.threads, r.sess)
	r.env.displayAnswer(chat.Format(resp))
}

// command runs a slash command. It returns false when chat should exit.
func (r *chatREPL) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/q", "/exit":
		return false
	case "/regen", "/r", "/regenerate":
		r.ask(ctx, "", true)
	case "/new", "/n":
		r.sess.Cancel()
		r.sess = chat.NewSession()
		if err := r.threads.Clear(); err != nil {
			r.env.Logger.Warn("could not clear thread", zap.Error(err))
		}
		fmt.Fprintln(r.env.Stdout, DimStyle.Render("已开始新的对话"))
	case "/help", "/h", "/?":
		r.printHelp()
	default:
		fmt.Fprintf(r.env.Stdout, "%s 未知命令 %s (输入 /help 查看命令)\n", RenderStatus("warn"), fields[0])
	}
	return true
}

func (r *chatREPL) printWelcome() {
	out := r.env.Stdout
	fmt.Fprintln(out, TitleStyle.Render("keyai chat"))
	if u, ok := r.store.CurrentUser(); ok {
		fmt.Fprintf(out, "%s %s\n", RenderLabel("账号"), ValueStyle.Render(u.Username))
	} else {
		fmt.Fprintf(out, "%s %s\n", RenderStatus("warn"), WarningStyle.Render("未登录，请先运行 keyai login"))
	}
	fmt.Fprintf(out, "%s %s\n", RenderLabel("对话"), DimStyle.Render(describeSession(r.sess)))
	fmt.Fprintln(out, DimStyle.Render("/help 查看命令, /quit 退出"))
	fmt.Fprintln(out)
}

func (r *chatREPL) printHelp() {
	out := r.env.Stdout
	fmt.Fprintln(out, TitleStyle.Render("命令"))
	for _, c := range [][2]string{
		{"/regen", "重新生成上一个回答"},
		{"/new", "开始新的对话"},
		{"/help", "显示本帮助"},
		{"/quit", "退出"},
		{"Ctrl+C", "取消正在进行的提问"},
	} {
		fmt.Fprintf(out, "  %s %s\n", RenderLabel(c[0]), c[1])
	}
}
