// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/r9s-ai/r9s-cli/internal/config"
)

// LineInput provides readline-style editing with persisted input history.
// It satisfies repl.LineReader.
type LineInput struct {
	line        *liner.State
	historyFile string
	log         *zap.Logger
}

// NewLineInput puts the terminal under liner's control and loads the input
// history. Ctrl+C at a prompt returns liner.ErrPromptAborted.
func NewLineInput(log *zap.Logger) *LineInput {
	if log == nil {
		log = zap.NewNop()
	}
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &LineInput{line: line, log: log}
	if path, err := config.InputHistoryPath(); err == nil {
		in.historyFile = path
		in.loadHistory()
	}
	return in
}

func (in *LineInput) loadHistory() {
	f, err := os.Open(in.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := in.line.ReadHistory(f); err != nil {
		in.log.Debug("input history not loaded", zap.String("path", in.historyFile), zap.Error(err))
	}
}

// Prompt reads one line. Non-blank input is added to the history.
func (in *LineInput) Prompt(prompt string) (string, error) {
	text, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		in.line.AppendHistory(text)
	}
	return text, nil
}

// Close writes the history (0600) and restores the terminal.
func (in *LineInput) Close() error {
	if in.historyFile != "" {
		in.saveHistory()
	}
	return in.line.Close()
}

func (in *LineInput) saveHistory() {
	if err := os.MkdirAll(filepath.Dir(in.historyFile), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		in.log.Debug("input history not saved", zap.String("path", in.historyFile), zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := in.line.WriteHistory(f); err != nil {
		in.log.Debug("input history not saved", zap.String("path", in.historyFile), zap.Error(err))
	}
}
