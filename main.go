// keyai - Ask the knowledge assistant without leaving the keyboard.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/cli"
	"github.com/jeranaias/keyai/internal/config"
	"github.com/jeranaias/keyai/internal/logging"
	"github.com/jeranaias/keyai/internal/ui/keyboard"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	if err := run(cmd, args); err != nil {
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
}

func run(cmd cli.Command, args cli.Args) error {
	ctx := context.Background()

	switch cmd {
	case cli.CmdTUI:
		return runTUI(ctx, args)
	case cli.CmdUnknown:
		return cli.UnknownCommandError(args.Subcommand)
	}

	env, err := cli.NewEnv(args)
	if err != nil {
		return err
	}
	defer env.Logger.Sync() //nolint:errcheck

	switch cmd {
	case cli.CmdAsk:
		return cli.HandleAsk(ctx, env, args)
	case cli.CmdChat:
		return cli.HandleChat(ctx, env, args)
	case cli.CmdLogin:
		return cli.HandleLogin(ctx, env, args)
	case cli.CmdRegister:
		return cli.HandleRegister(ctx, env, args)
	case cli.CmdLogout:
		return cli.HandleLogout(env, args)
	case cli.CmdWhoami:
		return cli.HandleWhoami(env, args)
	case cli.CmdConfig:
		return cli.HandleConfig(env, args)
	case cli.CmdParse:
		return cli.HandleParse(env, args)
	case cli.CmdVersion:
		return cli.HandleVersion(env, args)
	case cli.CmdHelp:
		cli.HandleHelp(env)
		return nil
	default:
		return fmt.Errorf("unhandled command %s", cmd)
	}
}

// runTUI starts the keyboard host. It owns the terminal, so logs go to the
// log file instead of stderr.
func runTUI(ctx context.Context, args cli.Args) error {
	if !cli.IsTTY() || !cli.IsStdoutTTY() {
		return &cli.TTYRequiredError{Operation: "start the keyboard host"}
	}

	cfg, loadErr := config.Load()
	if cfg == nil {
		return loadErr
	}
	config.SetGlobal(cfg)

	logger, err := logging.New(cfg, logging.File, args.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	if loadErr != nil {
		logger.Warn("using default configuration", zap.Error(loadErr))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	logger.Info("keyboard host starting", zap.String("version", Version))
	return keyboard.Run(ctx, cfg, logger)
}
