// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended by Ellipsize when text is cut.
const Ellipsis = "…"

// Ellipsize keeps the first maxRunes runes of s, appending Ellipsis when
// anything was removed. Counting is by rune so multi-byte text is never
// split mid-character.
func Ellipsize(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + Ellipsis
}

// FlattenLines replaces line breaks with spaces and trims the result.
func FlattenLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}

// FitWidth clips s to at most width terminal columns, marking the cut with
// Ellipsis. Wide characters count as two columns. A width of zero or less
// disables clipping.
func FitWidth(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, Ellipsis)
}
