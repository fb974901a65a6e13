// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package builtin holds the extension modules compiled into r9s.
package builtin

import (
	"regexp"
	"strings"

	"github.com/r9s-ai/r9s-cli/internal/extensions"
	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

// Catalog returns the built-in modules, addressable by name with --ext.
func Catalog() extensions.Catalog {
	return extensions.Catalog{
		"demo":   {extensions.SymbolRegister: registerDemo},
		"redact": {extensions.SymbolGetExtension: Redact},
	}
}

// registerDemo adds an extension that trims surrounding whitespace from
// user input.
func registerDemo(r *chatext.Registry) {
	_ = r.Add(chatext.Extension{
		Name: "demo",
		OnUserInput: func(text string, _ *chatext.Context) (string, error) {
			return strings.TrimSpace(text), nil
		},
	})
}

var secretPattern = regexp.MustCompile(`\b(sk|rk|pk)-[A-Za-z0-9_\-]{16,}`)

// RedactedSecret replaces masked credentials in outgoing messages.
const RedactedSecret = "[REDACTED]"

// Redact returns an extension that masks API-key-like tokens in every
// outgoing message. History on disk keeps the original text.
func Redact() chatext.Extension {
	return chatext.Extension{
		Name: "redact",
		BeforeRequest: func(msgs []chatext.Message, _ *chatext.Context) ([]chatext.Message, error) {
			out := make([]chatext.Message, len(msgs))
			for i, m := range msgs {
				m.Content = secretPattern.ReplaceAllString(m.Content, RedactedSecret)
				out[i] = m
			}
			return out, nil
		},
	}
}
