// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// account.go - Account commands for keyai.
//
// Commands:
//   login      Sign in and save the account to the shared user file
//   register   Create an account (does not sign in)
//   logout     Forget the saved account and the saved thread
//   whoami     Show the signed-in account
//
// Examples:
//   keyai login
//   keyai login --username alice
//   echo "$PASS" | keyai login --username alice --password-stdin
//   keyai register --username alice --email alice@example.com
//   keyai whoami --json
//
// The keyboard host watches the user file, so signing in or out here takes
// effect in a running host without a restart.
package cli

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/auth"
)

// =============================================================================
// LOGIN / REGISTER
// =============================================================================

// HandleLogin handles the "login" command.
func HandleLogin(ctx context.Context, env *Env, args Args) error {
	store, err := env.userStore()
	if err != nil {
		return err
	}

	username, err := env.option(args, "username", "用户名: ")
	if err != nil {
		return err
	}
	password, err := env.password(args, "密码: ")
	if err != nil {
		return err
	}

	client := auth.NewClient(env.Config.Account.APIBase, env.Config.AccountTimeout(), env.Logger)
	user, err := client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := store.Save(user); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	if args.JSON {
		return NewJSONResponse("login", accountData(store)).Print(env.Stdout)
	}
	fmt.Fprintf(env.Stdout, "%s 已登录: %s\n", RenderStatus("ok"), ValueStyle.Render(user.Username))
	return nil
}

// HandleRegister handles the "register" command.
func HandleRegister(ctx context.Context, env *Env, args Args) error {
	username, err := env.option(args, "username", "用户名: ")
	if err != nil {
		return err
	}
	email, err := env.option(args, "email", "邮箱: ")
	if err != nil {
		return err
	}
	password, err := env.password(args, "密码: ")
	if err != nil {
		return err
	}
	if args.Options["password-stdin"] == "" {
		confirm, err := env.readPassword("确认密码: ")
		if err != nil {
			return err
		}
		if confirm != password {
			return &ValidationError{Field: "password", Reason: "passwords do not match"}
		}
	}
	if !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Value: email, Reason: "not an email address", Example: "alice@example.com"}
	}

	client := auth.NewClient(env.Config.Account.APIBase, env.Config.AccountTimeout(), env.Logger)
	if err := client.Register(ctx, username, email, password); err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("register", map[string]string{"username": username, "email": email}).Print(env.Stdout)
	}
	fmt.Fprintf(env.Stdout, "%s 注册成功: %s\n", RenderStatus("ok"), ValueStyle.Render(username))
	fmt.Fprintln(env.Stdout, DimStyle.Render("运行 keyai login 登录"))
	return nil
}

// option returns a named option, prompting for it when it was not given.
func (e *Env) option(args Args, name, prompt string) (string, error) {
	if v := strings.TrimSpace(args.Options[name]); v != "" {
		return v, nil
	}
	v, err := e.promptInput(prompt)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", ErrMissingArgument(name, "--"+name+" VALUE")
	}
	return v, nil
}

// password reads the password from the first stdin line with
// --password-stdin, otherwise from a hidden prompt.
func (e *Env) password(args Args, prompt string) (string, error) {
	if args.Options["password-stdin"] != "" {
		prompt = ""
	}
	p, err := e.readPassword(prompt)
	if err != nil {
		return "", err
	}
	if p == "" {
		return "", auth.ErrMissingCredentials
	}
	return p, nil
}

// =============================================================================
// LOGOUT / WHOAMI
// =============================================================================

// HandleLogout handles the "logout" command. The saved thread belongs to
// the account, so it is cleared too.
func HandleLogout(env *Env, args Args) error {
	store, err := env.userStore()
	if err != nil {
		return err
	}
	_, wasLoggedIn := store.CurrentUser()
	if err := store.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if threads, err := env.threadStore(); err == nil {
		if err := threads.Clear(); err != nil {
			env.Logger.Warn("could not clear thread", zap.Error(err))
		}
	}

	if args.JSON {
		return NewJSONResponse("logout", accountData(store)).Print(env.Stdout)
	}
	if !wasLoggedIn {
		fmt.Fprintf(env.Stdout, "%s 当前未登录\n", RenderStatus("info"))
		return nil
	}
	fmt.Fprintf(env.Stdout, "%s 已退出登录\n", RenderStatus("ok"))
	return nil
}

// HandleWhoami handles the "whoami" command.
func HandleWhoami(env *Env, args Args) error {
	store, err := env.userStore()
	if err != nil {
		return err
	}
	data := accountData(store)

	if args.JSON {
		// Logged out is a normal answer in JSON mode, not an error.
		return NewJSONResponse("whoami", data).Print(env.Stdout)
	}
	if !data.LoggedIn {
		return auth.ErrNotLoggedIn
	}

	fmt.Fprintf(env.Stdout, "%s%s\n", RenderLabel("用户名"), ValueStyle.Render(data.Username))
	if data.Email != "" {
		fmt.Fprintf(env.Stdout, "%s%s\n", RenderLabel("邮箱"), ValueStyle.Render(data.Email))
	}
	fmt.Fprintf(env.Stdout, "%s%s\n", RenderLabel("账号文件"), DimStyle.Render(data.UserFile))
	return nil
}

func accountData(store *auth.Store) AccountData {
	u, ok := store.CurrentUser()
	return AccountData{
		LoggedIn: ok,
		Username: u.Username,
		Email:    u.Email,
		UserFile: store.Path(),
	}
}
