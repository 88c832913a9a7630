// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat talks to the knowledge-chat service.
//
// A Client sends one question at a time per Session: starting a new Ask on
// a session cancels the previous one, and a completion that lost that race
// reports ErrSuperseded instead of touching the session. The session id
// returned by the server is carried into the next request so that
// regenerate continues the same thread.
//
// The service's response schema is loose. Parse never fails: it tries the
// known text fields, unwraps one level of JSON-inside-a-string, and falls
// back to the raw body as plain text.
//
// # Errors
//
// All failures are sentinels or typed errors that unwrap to sentinels
// (ServerError, NetworkError). UserMessage turns any of them into the
// message shown in the overlay's answer area.
package chat
