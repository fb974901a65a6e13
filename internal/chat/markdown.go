// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWrap is used when the terminal width is unknown.
const DefaultWrap = 80

// MarkdownRenderer returns a Renderer backed by glamour. Rendering errors
// fall back to the plain text. A nil return means glamour could not be
// initialized.
func MarkdownRenderer(width int) Renderer {
	if width <= 0 {
		width = DefaultWrap
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return func(text string) string {
		out, err := tr.Render(text)
		if err != nil {
			return text
		}
		// glamour pads the document with blank lines.
		return "\n" + strings.Trim(out, "\n")
	}
}
