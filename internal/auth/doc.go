// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth holds the signed-in account shared by every keyai process.
//
// The account is a small JSON file (see Store) written by `keyai login`
// and read by the keyboard host, the REPL and one-shot asks. The chat
// client treats the Store as its credential source and clears it when the
// server rejects the token.
//
// Client talks to the account API (login, register).
package auth
