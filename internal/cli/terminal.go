// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for r9s.
//
// Interactive terminals get prompts, colors and the spinner; piped input
// and output get plain text.

package cli

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// fdHolder is satisfied by *os.File.
type fdHolder interface {
	Fd() uintptr
}

// IsTerminal reports whether v is a file attached to a terminal. Readers
// and writers that are not files are never terminals.
func IsTerminal(v any) bool {
	f, ok := v.(fdHolder)
	if !ok {
		return false
	}
	fd := f.Fd()
	return term.IsTerminal(int(fd)) || isatty.IsCygwinTerminal(fd)
}

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return IsTerminal(os.Stdin)
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return IsTerminal(os.Stdout)
}

// =============================================================================
// TERMINAL WIDTH
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width we'll use for wrapping
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

var (
	colorsEnabled     bool
	colorsEnabledOnce sync.Once
)

// ColorsEnabled returns true if colored output should be used.
// See https://no-color.org/ for the NO_COLOR specification.
func ColorsEnabled() bool {
	colorsEnabledOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" {
			colorsEnabled = false
			return
		}
		if os.Getenv("FORCE_COLOR") != "" {
			colorsEnabled = true
			return
		}
		colorsEnabled = IsStdoutTTY()
	})
	return colorsEnabled
}

// GetColorProfile returns the appropriate termenv color profile.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// =============================================================================
// INTERACTIVE INPUT
// =============================================================================

// TTYRequiredError is returned when an operation requires a TTY but none is available.
type TTYRequiredError struct {
	Operation string
	Message   string
}

func (e *TTYRequiredError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Operation != "" {
		return "stdin is not a terminal; cannot " + e.Operation + " interactively"
	}
	return "stdin is not a terminal; interactive input not available"
}
