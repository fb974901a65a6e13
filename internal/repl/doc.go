// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repl runs chat sessions: a single turn for piped input, or the
// interactive read-eval loop with /exit, /help and /clear.
//
// A Controller moves through INIT, READY, AWAITING_INPUT and
// PROCESSING_TURN to EXITED. It is the only writer of the conversation
// history; after every turn the full session is saved unless persistence
// is disabled.
package repl
