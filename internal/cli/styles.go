// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for r9s commands.
//
// Colors are disabled for non-TTY output and honor NO_COLOR / FORCE_COLOR.

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/r9s-ai/r9s-cli/internal/repl"
)

// init configures lipgloss color profile based on terminal capabilities.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	// TitleStyle is used for banners and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	// ErrorStyle is used for error messages and failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// InfoStyle is used for informational notes
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")) // Light blue

	// DimStyle is used for secondary text
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	// SuccessStyle is used for completed operations
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// WarningStyle is used for confirmations
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	// AssistantStyle is used for the assistant label
	AssistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

// Theme returns the console decorations used by chat sessions.
func Theme() repl.Theme {
	return repl.Theme{
		Header: func(s string) string { return TitleStyle.Render(s) },
		Info:   func(s string) string { return DimStyle.Render(s) },
		Error:  func(s string) string { return ErrorStyle.Render(s) },
		Label:  func(s string) string { return AssistantStyle.Render(s) },
	}
}
