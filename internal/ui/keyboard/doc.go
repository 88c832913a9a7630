// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package keyboard is a terminal stand-in for the keyboard extension: a
// bubbletea program hosting a text document, the composition engine, the
// gesture router and the AI-query overlay.
//
// Terminal keys become gestures (see translate). Everything the router and
// overlay schedule runs inside Update, drained from a programScheduler, so
// the whole keyboard is a single serial actor.
package keyboard
