// json_output.go - JSON output for scripting.
//
// Every command run with --json prints one JSONResponse to stdout.
// Human-readable messages go to stderr in that mode.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope for all --json output.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response as indented JSON.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// AnswerData is returned by ask and parse: the resolved answer and the
// text as it is displayed.
type AnswerData struct {
	Text      string   `json:"text"`
	Refers    []string `json:"refers"`
	SessionID string   `json:"sessionId,omitempty"`
	Formatted string   `json:"formatted"`
}

// AccountData represents the data returned by login and whoami.
type AccountData struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	UserFile string `json:"user_file"`
}

// ConfigData represents the data returned by config show and get.
type ConfigData struct {
	Path   string                 `json:"config_path,omitempty"`
	Values map[string]interface{} `json:"values"`
}
