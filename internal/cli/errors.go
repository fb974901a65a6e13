// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and error display for r9s commands.
//
// Commands ALWAYS return errors; Execute prints them once and maps them
// to an exit code.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/r9s-ai/r9s-cli/internal/bots"
	"github.com/r9s-ai/r9s-cli/internal/cloud"
	"github.com/r9s-ai/r9s-cli/internal/config"
	"github.com/r9s-ai/r9s-cli/internal/extensions"
	"github.com/r9s-ai/r9s-cli/internal/i18n"
	"github.com/r9s-ai/r9s-cli/internal/repl"
	"github.com/r9s-ai/r9s-cli/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration, credential or extension errors
	ExitConfigError = 3
	// ExitAuthError indicates the endpoint rejected the credential
	ExitAuthError = 4
	// ExitNetworkError indicates network or connectivity error
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
	// ExitInterrupted is the conventional status for SIGINT (128 + 2).
	ExitInterrupted = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports invalid command usage.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, repl.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	var usageErr *UsageError
	var ttyErr *TTYRequiredError
	if errors.As(err, &usageErr) || errors.As(err, &ttyErr) {
		return ExitUsageError
	}

	var configErr *config.ConfigError
	var contractErr *extensions.ContractError
	var loadErr *extensions.LoadError
	if errors.As(err, &configErr) || errors.As(err, &contractErr) || errors.As(err, &loadErr) {
		return ExitConfigError
	}
	if errors.Is(err, bots.ErrMissingModel) || errors.Is(err, bots.ErrInvalidName) {
		return ExitConfigError
	}

	if errors.Is(err, cloud.ErrAuthFailed) || errors.Is(err, cloud.ErrInsufficientCredits) {
		return ExitAuthError
	}
	if errors.Is(err, bots.ErrNotFound) || errors.Is(err, cloud.ErrModelNotFound) {
		return ExitNotFoundError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	var apiErr *cloud.APIError
	if errors.As(err, &apiErr) {
		return ExitNetworkError
	}

	// Transport failures carry no type of their own.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial") {
		return ExitNetworkError
	}

	return ExitGeneralError
}

// =============================================================================
// DISPLAY
// =============================================================================

// Describe returns the operator-facing message for err in lang.
func Describe(err error, lang string) string {
	var parseErr *storage.ParseError
	if errors.As(err, &parseErr) {
		return i18n.T("chat.err.history_not_json", lang, "path", parseErr.Path, "err", parseErr.Err)
	}
	var shapeErr *storage.ShapeError
	if errors.As(err, &shapeErr) {
		return i18n.T("chat.err.history_shape", lang, "path", shapeErr.Path)
	}
	var loadErr *extensions.LoadError
	if errors.As(err, &loadErr) {
		return i18n.T("chat.err.ext_load_file", lang, "path", loadErr.Spec) + ": " + errorText(loadErr.Err)
	}
	var contractErr *extensions.ContractError
	if errors.As(err, &contractErr) {
		if contractErr.Reason != "" {
			return contractErr.Error()
		}
		return i18n.T("chat.err.ext_contract", lang) + ": " + contractErr.Spec
	}
	var configErr *config.ConfigError
	if errors.As(err, &configErr) && configErr.Message != "" {
		if configErr.Err != nil {
			return configErr.Message + ": " + configErr.Err.Error()
		}
		return configErr.Message
	}
	var apiErr *cloud.APIError
	var streamErr *cloud.StreamError
	if errors.As(err, &apiErr) || errors.As(err, &streamErr) ||
		errors.Is(err, cloud.ErrAuthFailed) ||
		errors.Is(err, cloud.ErrRateLimited) ||
		errors.Is(err, cloud.ErrModelNotFound) ||
		errors.Is(err, cloud.ErrInsufficientCredits) {
		return i18n.T("chat.err.request", lang, "err", err)
	}
	return err.Error()
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// DisplayError prints err to w. Interrupts print nothing.
func DisplayError(w io.Writer, err error, lang string) {
	if err == nil || ExitCode(err) == ExitInterrupted {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), Describe(err, lang))
}
