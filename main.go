// r9s - Chat with OpenAI-compatible endpoints from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/r9s-ai/r9s-cli/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
