// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command for keyai.
//
// Command: ask
// Short:   Ask a single question
// Aliases: q
//
// Examples:
//   keyai ask "如何申请报销?"
//   keyai ask --continue "那出差呢?"       Continue the saved thread
//   keyai ask --continue --regenerate      Ask for a better answer
//   keyai ask --json "question"            {text, refers, sessionId}
//
// Flags:
//   -s, --session ID     Continue the given server thread
//   -c, --continue       Continue the thread saved by the last ask/chat
//   -r, --regenerate     Regenerate the last answer (ignores the question)
//   --json               Output in JSON format
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/chat"
	"github.com/jeranaias/keyai/internal/storage"
	"github.com/jeranaias/keyai/internal/util"
)

// HandleAsk handles the "ask" command.
func HandleAsk(ctx context.Context, env *Env, args Args) error {
	question := strings.TrimSpace(args.Query)
	if question == "" && !args.Regenerate {
		return ErrMissingArgument("question", `keyai ask "如何申请报销?"`)
	}

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

	client := chat.NewClient(env.Config.ChatClientConfig(), store, env.Logger)

	// Ctrl+C cancels the request instead of killing the process.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	env.Logger.Debug("ask",
		zap.String("question", util.TruncateForLog(question, 50)),
		zap.Bool("regenerate", args.Regenerate),
		zap.String("session", sess.ID()))

	resp, err := client.Ask(ctx, sess, question, args.Regenerate)
	if err != nil {
		return &ChatError{Err: err}
	}

	saveThread(env, threads, sess)

	if args.JSON {
		return NewJSONResponse("ask", answerData(resp, sess.ID())).Print(env.Stdout)
	}
	env.displayAnswer(chat.Format(resp))
	return nil
}

// openSession picks the thread a command continues: --session wins over
// --continue, and neither starts a fresh one.
func openSession(threads *storage.ThreadStore, args Args) (*chat.Session, error) {
	if args.Session != "" {
		return chat.ResumeSession(args.Session, ""), nil
	}
	if !args.Continue {
		return chat.NewSession(), nil
	}

	t, err := threads.Load()
	if errors.Is(err, storage.ErrNoThread) {
		return chat.NewSession(), nil
	}
	if err != nil {
		return nil, err
	}
	return chat.ResumeSession(t.SessionID, t.LastQuestion), nil
}

// saveThread remembers the session for the next --continue. Failing to
// save never fails the command.
func saveThread(env *Env, threads *storage.ThreadStore, sess *chat.Session) {
	if sess.ID() == "" {
		return
	}
	t := storage.Thread{SessionID: sess.ID(), LastQuestion: sess.LastQuestion()}
	if err := threads.Save(t); err != nil {
		env.Logger.Warn("could not save thread", zap.Error(err))
	}
}

func answerData(resp chat.Response, sessionID string) AnswerData {
	refers := resp.Refers
	if refers == nil {
		refers = []string{}
	}
	if sessionID == "" {
		sessionID = resp.SessionID
	}
	return AnswerData{
		Text:      resp.Text,
		Refers:    refers,
		SessionID: sessionID,
		Formatted: chat.Format(resp),
	}
}

// describeSession is the one-line thread summary used by chat and ask -v.
func describeSession(sess *chat.Session) string {
	if id := sess.ID(); id != "" {
		return fmt.Sprintf("thread %s", id)
	}
	return "new thread"
}
