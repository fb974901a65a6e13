// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DirName is the per-user state directory under the home directory.
	DirName = ".r9s"

	// FileName is the optional configuration file inside DirName.
	FileName = "config.toml"

	// DefaultBaseURL is the completion service used when nothing else is set.
	DefaultBaseURL = "https://api.r9s.ai"

	// DefaultLang is the UI language used when nothing else is set.
	DefaultLang = "en"
)

// Environment variables consulted by Resolve.
const (
	EnvAPIKey       = "R9S_API_KEY"
	EnvBaseURL      = "R9S_BASE_URL"
	EnvModel        = "R9S_MODEL"
	EnvSystemPrompt = "R9S_SYSTEM_PROMPT"
	EnvExtensions   = "R9S_CHAT_EXTENSIONS"
	EnvLang         = "R9S_LANG"
	EnvHistoryDir   = "R9S_HISTORY_DIR"
)

// =============================================================================
// CONFIG FILE
// =============================================================================

// File is the on-disk configuration. Every field is optional.
type File struct {
	APIKey           string   `toml:"api_key"`
	BaseURL          string   `toml:"base_url"`
	Model            string   `toml:"model"`
	SystemPrompt     string   `toml:"system_prompt"`
	SystemPromptFile string   `toml:"system_prompt_file"`
	Extensions       []string `toml:"extensions"`
	Lang             string   `toml:"lang"`
	HistoryDir       string   `toml:"history_dir"`
	NoStream         bool     `toml:"no_stream"`
	Markdown         bool     `toml:"markdown"`
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// ConfigDir returns the r9s state directory (~/.r9s).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// ConfigPath returns the path of the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// HistoryRoot returns the default session directory (~/.r9s/chat).
func HistoryRoot() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chat"), nil
}

// InputHistoryPath returns the line editor history file.
func InputHistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "input_history"), nil
}

// ensureSecurePermissions tightens a config file holding an API key to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the configuration file from its default location.
func Load(log *zap.Logger) (*File, error) {
	path, err := ConfigPath()
	if err != nil {
		return &File{}, nil
	}
	return LoadFile(path, log)
}

// LoadFile reads and validates a TOML configuration file. A missing file
// yields an empty configuration.
func LoadFile(path string, log *zap.Logger) (*File, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := &File{}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if err := ensureSecurePermissions(path); err != nil {
		log.Warn("could not ensure secure permissions", zap.String("path", path), zap.Error(err))
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, &ConfigError{Field: "config", Message: "failed to decode " + path, Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Warn("unknown config keys ignored", zap.String("path", path), zap.Strings("keys", keys))
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Field: "config", Message: "invalid " + path, Err: err}
	}
	return cfg, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration file values.
func (f *File) Validate() error {
	var errs ValidateErrors

	if f.BaseURL != "" {
		if err := ValidateBaseURL(f.BaseURL); err != nil {
			errs = append(errs, ValidationError{Field: "base_url", Message: err.Error()})
		}
	}
	for i, spec := range f.Extensions {
		if strings.TrimSpace(spec) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("extensions[%d]", i),
				Message: "must not be empty",
			})
		}
	}
	if f.SystemPrompt != "" && f.SystemPromptFile != "" {
		errs = append(errs, ValidationError{
			Field:   "system_prompt_file",
			Message: "cannot be combined with system_prompt",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateBaseURL checks that raw is an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ConfigError reports a missing or unusable setting. It is fatal at
// startup.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
