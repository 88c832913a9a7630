// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// commands of keyai.
//
// The keyboard host itself lives in internal/ui/keyboard; everything else
// a user can do from a shell is here.
//
// # Usage
//
//	cmd, args := cli.Parse()
//	env, err := cli.NewEnv(args)
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(ctx, env, args)
//	case cli.CmdChat:
//	    err = cli.HandleChat(ctx, env, args)
//	// ...
//	}
//	if err != nil {
//	    cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
//	    os.Exit(cli.GetExitCode(err))
//	}
//
// # Commands
//
//   - ask: one question, optionally continuing the saved thread
//   - chat: interactive questions in one thread
//   - login, register, logout, whoami: the shared account
//   - config: show and change ~/.keyai/config.toml
//   - parse: decode a stored chat response
//   - version, help
//
// # Output
//
// Every command accepts --json and then prints a single JSONResponse on
// stdout. Handlers return errors instead of printing them; the caller
// displays the error once and exits with GetExitCode.
package cli
