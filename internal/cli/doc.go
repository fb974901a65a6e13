// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the r9s command line.
//
// # Commands
//
//   - chat: interactive or piped chat session
//   - chat resume: pick a saved session and continue it
//   - bot create|list|show|delete: manage named presets
//
// Running r9s without a command prints usage examples in the selected
// language.
//
// # Usage
//
//	os.Exit(cli.Execute())
//
// Execute prints a failing command's error once and maps it to an exit
// code with ExitCode; an interrupt prints a short farewell and exits 130.
package cli
