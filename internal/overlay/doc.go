// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package overlay implements the AI question overlay: the question buffer
// and the controller that drives its show/hide lifecycle, submits
// questions and hands accepted answers back to the host.
//
// The controller is the single writer of the router's routing mode and the
// recovery boundary for chat errors: failures become a message in the
// answer area and never reach gesture handling.
//
// All Controller methods run on the scheduler's serial queue. Network
// completions are posted back onto that queue before any state changes.
package overlay
