// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for keyai.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdLogin
	CmdRegister
	CmdLogout
	CmdWhoami
	CmdConfig
	CmdParse
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdLogin:
		return "login"
	case CmdRegister:
		return "register"
	case CmdLogout:
		return "logout"
	case CmdWhoami:
		return "whoami"
	case CmdConfig:
		return "config"
	case CmdParse:
		return "parse"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose bool
	JSON    bool // Output in JSON format

	// Command-specific
	Query      string
	File       string
	ConfigKey  string
	ConfigVal  string
	Subcommand string
	Session    string // --session: continue this server thread
	Continue   bool   // --continue: continue the saved thread
	Regenerate bool

	// Raw args (remaining after flag parsing)
	Raw []string

	// Options holds command-specific named options (e.g., --username, --email)
	Options map[string]string
}

const usageText = `keyai - ask the knowledge assistant from your keyboard

Usage:
  keyai                          Start the keyboard host (default)
  keyai ask "question"           Ask a single question
  keyai chat                     Interactive question session
  keyai login                    Sign in and save the account
  keyai register                 Create an account
  keyai logout                   Forget the saved account
  keyai whoami                   Show the signed-in account
  keyai config [show|get|set|path|keys]
                                 Configuration
  keyai parse [FILE|-]           Decode a stored chat response
  keyai version                  Show version information

Ask Options:
  --session ID                   Continue the given server thread
  --continue, -c                 Continue the thread saved by the last ask/chat
  --regenerate, -r               Ask the server to answer the last question again

Chat Commands (during chat):
  /regen                         Regenerate the last answer
  /new                           Start a new thread
  /help                          Show chat commands
  /quit                          Exit chat
  Ctrl+C                         Cancel the question in flight

Account Options:
  --username NAME                Account name (prompted when omitted)
  --email ADDRESS                Email address (register only)
  --password-stdin               Read the password from the first stdin line

Config Commands:
  keyai config show              Show all settings
  keyai config get KEY           Show one setting (e.g. input.settle_delay_ms)
  keyai config set KEY VALUE     Change a setting and save it
  keyai config path              Show the config file location
  keyai config keys              List every setting key

Keyboard Host Keys:
  ctrl+a                         Open or close the AI overlay
  enter                          Submit the question
  ctrl+r                         Regenerate the answer
  ctrl+o                         Insert the answer into the document
  ctrl+f                         Focus the overlay input
  alt+backspace                  Keep deleting until backspace is pressed
  alt+<key>                      Type <key> straight into the overlay
  ctrl+c                         Quit

Global Flags:
  -v, --verbose                  Debug logging to stderr
  --json                         Output in JSON format

Examples:
  keyai ask "如何申请报销?"
  keyai ask --continue --regenerate
  keyai config set input.settle_delay_ms 25
  curl -s $URL | keyai parse -

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "keyai version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments (without the program name).
func ParseArgs(args []string) (Command, Args) {
	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui", "keyboard":
		return CmdTUI, parsedArgs

	case "ask", "q":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		parseAskArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "login", "signin":
		parseAccountArgs(&parsedArgs, remaining)
		return CmdLogin, parsedArgs

	case "register", "signup":
		parseAccountArgs(&parsedArgs, remaining)
		return CmdRegister, parsedArgs

	case "logout", "signout":
		return CmdLogout, parsedArgs

	case "whoami", "me":
		return CmdWhoami, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "parse":
		if len(remaining) > 0 {
			parsedArgs.File = remaining[0]
		}
		return CmdParse, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Subcommand = cmd
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	parsedArgs := Args{
		Options: make(map[string]string),
	}

	for _, arg := range args {
		switch arg {
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask and chat arguments. Everything that is not a
// flag is part of the question.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch {
		case arg == "--session" || arg == "-s":
			if i+1 < len(remaining) {
				i++
				args.Session = remaining[i]
			}
		case strings.HasPrefix(arg, "--session="):
			args.Session = strings.TrimPrefix(arg, "--session=")
		case arg == "--continue" || arg == "-c":
			args.Continue = true
		case arg == "--regenerate" || arg == "-r":
			args.Regenerate = true
		case arg == "--":
			query = append(query, remaining[i+1:]...)
			i = len(remaining)
		default:
			query = append(query, arg)
		}
	}

	args.Query = strings.Join(query, " ")
}

// parseAccountArgs parses login and register options.
func parseAccountArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	for _, name := range []string{"username", "email"} {
		if v := p.Flag(name); v != "" {
			args.Options[name] = v
		}
	}
	if p.BoolFlag("password-stdin") {
		args.Options["password-stdin"] = "true"
	}
}

// parseConfigArgs parses config subcommand arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "show"
		return
	}
	args.Subcommand = strings.ToLower(remaining[0])
	if len(remaining) > 1 {
		args.ConfigKey = remaining[1]
	}
	if len(remaining) > 2 {
		args.ConfigVal = strings.Join(remaining[2:], " ")
	}
}

// =============================================================================
// SIMPLE COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command with JSON output support.
func HandleVersion(env *Env, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(env.Stdout)
	}
	PrintVersion(env.Stdout)
	return nil
}

// HandleHelp handles the "help" command.
func HandleHelp(env *Env) {
	PrintUsage(env.Stdout)
}

// UnknownCommandError reports a command name keyai does not have.
func UnknownCommandError(name string) error {
	msg := fmt.Sprintf("unknown command %q", name)
	if s := SuggestCommand(name); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return &ValidationError{Field: "command", Value: name, Reason: msg, Example: "keyai help"}
}
