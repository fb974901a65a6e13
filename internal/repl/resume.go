// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repl

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/r9s-ai/r9s-cli/internal/i18n"
	"github.com/r9s-ai/r9s-cli/internal/storage"
	"github.com/r9s-ai/r9s-cli/internal/util"
)

// ErrNoSessions is returned by Picker.Select when there is nothing to
// resume.
var ErrNoSessions = errors.New("no saved sessions")

// FormatSummary renders one listing line: file name, last update, model,
// endpoint and preview, clipped to width columns (0 disables clipping).
func FormatSummary(s storage.Summary, width int) string {
	model, base := s.Meta.Model, s.Meta.BaseURL
	if model == "" {
		model = "?"
	}
	if base == "" {
		base = "?"
	}
	line := fmt.Sprintf("%s  [%s]  %s  %s", s.Name, s.Meta.UpdatedAt, model, base)
	if s.Preview != "" {
		line += "  - " + s.Preview
	}
	return util.FitWidth(line, width)
}

// Picker lets the operator choose a saved session.
type Picker struct {
	Reader LineReader
	Out    io.Writer
	Err    io.Writer
	Lang   string
	Width  int
	Theme  Theme
}

// Select lists sessions (newest first, as returned by the store) numbered
// from 1 and prompts until a valid number is entered. It returns the
// chosen path.
func (p *Picker) Select(root string, sessions []storage.Summary) (string, error) {
	if len(sessions) == 0 {
		return "", ErrNoSessions
	}

	fmt.Fprintln(p.Out, apply(p.Theme.Info, i18n.T("chat.resume.list", p.Lang, "dir", root)))
	for i, s := range sessions {
		prefix := strconv.Itoa(i+1) + ") "
		width := 0
		if p.Width > 0 {
			width = max(p.Width-len(prefix), 1)
		}
		fmt.Fprintln(p.Out, prefix+FormatSummary(s, width))
	}

	for {
		answer, err := p.Reader.Prompt(i18n.T("chat.resume.select", p.Lang))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return "", ErrInterrupted
			}
			return "", err
		}
		n, err := strconv.Atoi(strings.TrimSpace(answer))
		if err == nil && n >= 1 && n <= len(sessions) {
			return sessions[n-1].Path, nil
		}
		fmt.Fprintln(p.Err, apply(p.Theme.Error, i18n.T("chat.resume.invalid", p.Lang)))
	}
}
