// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command for keyai.
//
// Command: config [subcommand]
// Short:   View and change configuration
//
// Subcommands:
//   show (default)      Show every setting
//   get KEY             Show one setting
//   set KEY VALUE       Change a setting and save it to config.toml
//   path                Show the config file location
//   keys                List every setting key
//
// Examples:
//   keyai config
//   keyai config get chat.endpoint
//   keyai config set input.settle_delay_ms 25
//   keyai config show --json
package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/config"
	"github.com/jeranaias/keyai/internal/util"
)

// HandleConfig handles the "config" command.
func HandleConfig(env *Env, args Args) error {
	switch args.Subcommand {
	case "", "show", "list":
		return configShow(env, args)
	case "get":
		return configGet(env, args)
	case "set":
		return configSet(env, args)
	case "path":
		return configPath(env, args)
	case "keys":
		return configKeys(env, args)
	default:
		return &ValidationError{
			Field:   "config subcommand",
			Value:   args.Subcommand,
			Reason:  fmt.Sprintf("unknown subcommand %q", args.Subcommand),
			Example: "keyai config [show|get|set|path|keys]",
		}
	}
}

func configShow(env *Env, args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}

	values := make(map[string]interface{})
	keys := config.GetAllKeys()
	for _, key := range keys {
		v, err := env.Config.Get(key)
		if err != nil {
			return err
		}
		values[key] = v
	}

	if args.JSON {
		return NewJSONResponse("config show", ConfigData{Path: path, Values: values}).Print(env.Stdout)
	}

	out := env.Stdout
	valueWidth := max(terminalWidth(out)-33, 16)
	fmt.Fprintln(out, TitleStyle.Render("keyai configuration"))
	fmt.Fprintln(out, RenderSeparator())
	for _, key := range keys {
		value := util.TruncateWidth(display(values[key]), valueWidth)
		fmt.Fprintf(out, "  %s %s\n", DimStyle.Render(fmt.Sprintf("%-30s", key)), ValueStyle.Render(value))
	}
	fmt.Fprintln(out, RenderSeparator())
	fmt.Fprintf(out, "Config file: %s\n", DimStyle.Render(path))
	return nil
}

func configGet(env *Env, args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "keyai config get chat.endpoint")
	}
	v, err := env.Config.Get(args.ConfigKey)
	if err != nil {
		return &ValidationError{Field: "key", Value: args.ConfigKey, Reason: err.Error(), Example: "keyai config keys"}
	}

	if args.JSON {
		return NewJSONResponse("config get", ConfigData{
			Values: map[string]interface{}{args.ConfigKey: v},
		}).Print(env.Stdout)
	}
	fmt.Fprintln(env.Stdout, display(v))
	return nil
}

// configSet changes one value on a copy, validates the copy and only then
// writes it, so an invalid value never reaches the file.
func configSet(env *Env, args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("key and value", "keyai config set input.settle_delay_ms 25")
	}

	cfg := env.Config.Clone()
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return &ValidationError{Field: args.ConfigKey, Value: args.ConfigVal, Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	env.Config = cfg
	config.SetGlobal(cfg)
	env.Logger.Info("config changed", zap.String("key", args.ConfigKey))

	v, _ := cfg.Get(args.ConfigKey)
	if args.JSON {
		return NewJSONResponse("config set", ConfigData{
			Values: map[string]interface{}{args.ConfigKey: v},
		}).Print(env.Stdout)
	}
	fmt.Fprintf(env.Stdout, "%s %s = %s\n", RenderStatus("ok"), args.ConfigKey, display(v))
	return nil
}

func configPath(env *Env, args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)

	if args.JSON {
		return NewJSONResponse("config path", map[string]interface{}{
			"path":   path,
			"exists": statErr == nil,
		}).Print(env.Stdout)
	}
	fmt.Fprintln(env.Stdout, path)
	return nil
}

func configKeys(env *Env, args Args) error {
	keys := config.GetAllKeys()
	if args.JSON {
		return NewJSONResponse("config keys", keys).Print(env.Stdout)
	}
	for _, key := range keys {
		fmt.Fprintln(env.Stdout, key)
	}
	return nil
}

// display renders a config value, marking empty strings.
func display(v interface{}) string {
	if s, ok := v.(string); ok && s == "" {
		return "(default)"
	}
	return fmt.Sprint(v)
}
