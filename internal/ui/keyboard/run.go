// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keyboard

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/auth"
	"github.com/jeranaias/keyai/internal/chat"
	"github.com/jeranaias/keyai/internal/compose"
	"github.com/jeranaias/keyai/internal/config"
)

// Run starts the keyboard host and blocks until the user quits or ctx ends.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	userFile, err := cfg.UserFilePath()
	if err != nil {
		return err
	}
	store := auth.NewStore(userFile, logger)
	client := chat.NewClient(cfg.ChatClientConfig(), store, logger)

	var program *tea.Program
	sched := newProgramScheduler(func(msg tea.Msg) { program.Send(msg) })
	defer sched.Stop()

	m := New(sched, Deps{
		Config: cfg,
		Asker:  client,
		Engine: compose.NewDefault(),
		Logger: logger,
	})
	u, ok := store.CurrentUser()
	m.SetUser(u, ok)

	program = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Another process (keyai login/logout) may rewrite the user file.
	watcher, err := store.Watch(ctx, func(u auth.User, ok bool) {
		sched.Post(func() { m.SetUser(u, ok) })
	})
	if err != nil {
		logger.Warn("credential watch unavailable", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	logger.Info("keyboard host started",
		zap.String("endpoint", client.Endpoint()),
		zap.Bool("logged_in", ok))

	_, runErr := program.Run()
	sched.Stop()
	m.Shutdown()
	m.Overlay().Wait()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("keyboard host: %w", runErr)
	}
	return nil
}
