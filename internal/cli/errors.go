// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error handling for all keyai CLI commands.
//
// STANDARDIZED PATTERN:
//   - Handlers return errors; they never print and return nil
//   - main displays the error once and exits with GetExitCode(err)
//   - Chat and account errors keep their sentinels so the exit code can be
//     chosen with errors.Is instead of message matching

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/keyai/internal/auth"
	"github.com/jeranaias/keyai/internal/chat"
	"github.com/jeranaias/keyai/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates authentication or authorization failure
	ExitAuthError = 4
	// ExitNetworkError indicates network or connectivity error
	ExitNetworkError = 5
	// ExitServerError indicates the server answered with an error status
	ExitServerError = 6
	// ExitCancelled indicates the user interrupted the command
	ExitCancelled = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ValidationError represents invalid user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid usage (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required argument missing", Example: usage}
}

// ChatError carries the user-facing message for a failed question along
// with the underlying chat error.
type ChatError struct {
	Err error
}

func (e *ChatError) Error() string {
	return chat.UserMessage(e.Err)
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err in the format of the current output mode.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Print(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", RenderStatus("error"), err.Error())
}

// GetExitCode determines the exit code for err.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	var configErrs config.ValidateErrors
	var apiErr *auth.APIError
	var serverErr *chat.ServerError

	switch {
	case errors.As(err, &validationErr):
		return ExitUsageError
	case errors.As(err, &configErrs):
		return ExitConfigError
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.Is(err, chat.ErrNotAuthenticated),
		errors.Is(err, chat.ErrUnauthorized),
		errors.Is(err, chat.ErrForbidden),
		errors.Is(err, auth.ErrNotLoggedIn),
		errors.Is(err, auth.ErrMissingCredentials):
		return ExitAuthError
	case errors.Is(err, chat.ErrNetwork):
		return ExitNetworkError
	case errors.As(err, &apiErr):
		if apiErr.Kind == auth.KindNetwork {
			return ExitNetworkError
		}
		return ExitAuthError
	case errors.As(err, &serverErr):
		return ExitServerError
	default:
		return ExitGeneralError
	}
}
