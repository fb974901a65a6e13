// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"strings"

	"github.com/r9s-ai/r9s-cli/internal/extensions"
)

// =============================================================================
// SOURCES
// =============================================================================

// Source identifies the layer a setting came from.
type Source int

const (
	SourceUnset Source = iota
	SourceDefault
	SourceFile
	SourceEnv
	SourceProfile
	SourceExplicit
)

func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceFile:
		return "config"
	case SourceEnv:
		return "env"
	case SourceProfile:
		return "bot"
	case SourceExplicit:
		return "flag"
	default:
		return "unset"
	}
}

// Value is a resolved setting and where it came from.
type Value struct {
	Value  string
	Source Source
}

// Set reports whether the value came from any layer, including defaults.
func (v Value) Set() bool {
	return v.Source != SourceUnset
}

// Inherited reports whether a saved session may replace this value: it
// was neither given explicitly nor configured anywhere.
func (v Value) Inherited() bool {
	return v.Source == SourceUnset || v.Source == SourceDefault
}

// =============================================================================
// INPUTS
// =============================================================================

// Overrides holds one layer of per-invocation settings. Empty strings are
// treated as unset.
type Overrides struct {
	APIKey           string
	BaseURL          string
	Model            string
	SystemPrompt     string
	SystemPromptFile string
	Lang             string
	Extensions       []string
}

// Inputs are the layers passed to Resolve.
type Inputs struct {
	// Explicit holds command line flags.
	Explicit Overrides

	// Profile holds values from a bot profile.
	Profile Overrides

	// File is the loaded configuration file, or nil.
	File *File

	// NoStream and Markdown are command line switches.
	NoStream bool
	Markdown bool

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// ReadFile defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)

	// HistoryRoot overrides the default session directory.
	HistoryRoot string
}

// Settings are the resolved values for one chat invocation.
type Settings struct {
	APIKey       Value
	BaseURL      Value
	Model        Value
	SystemPrompt Value
	Lang         Value
	HistoryDir   Value

	// Extensions lists specs in load order: environment (or config file),
	// then profile, then flags.
	Extensions []string

	NoStream bool
	Markdown bool
}

// =============================================================================
// RESOLVE
// =============================================================================

// Resolve merges the layers, per field: explicit > profile > environment >
// config file > default. The API key has no profile layer.
func Resolve(in Inputs) (*Settings, error) {
	env := in.LookupEnv
	if env == nil {
		env = os.LookupEnv
	}
	read := in.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	file := in.File
	if file == nil {
		file = &File{}
	}
	getenv := func(key string) string {
		v, _ := env(key)
		return v
	}

	s := &Settings{
		NoStream: in.NoStream || file.NoStream,
		Markdown: in.Markdown || file.Markdown,
	}

	s.APIKey = pick(
		layer(in.Explicit.APIKey, SourceExplicit),
		layer(getenv(EnvAPIKey), SourceEnv),
		layer(file.APIKey, SourceFile),
	)
	s.BaseURL = pick(
		layer(in.Explicit.BaseURL, SourceExplicit),
		layer(in.Profile.BaseURL, SourceProfile),
		layer(getenv(EnvBaseURL), SourceEnv),
		layer(file.BaseURL, SourceFile),
		layer(DefaultBaseURL, SourceDefault),
	)
	s.Model = pick(
		layer(in.Explicit.Model, SourceExplicit),
		layer(in.Profile.Model, SourceProfile),
		layer(getenv(EnvModel), SourceEnv),
		layer(file.Model, SourceFile),
	)
	s.Lang = pick(
		layer(in.Explicit.Lang, SourceExplicit),
		layer(in.Profile.Lang, SourceProfile),
		layer(getenv(EnvLang), SourceEnv),
		layer(file.Lang, SourceFile),
		layer(DefaultLang, SourceDefault),
	)

	histDefault := in.HistoryRoot
	if histDefault == "" {
		root, err := HistoryRoot()
		if err != nil {
			return nil, &ConfigError{Field: "history_dir", Message: "cannot locate session directory", Err: err}
		}
		histDefault = root
	}
	s.HistoryDir = pick(
		layer(getenv(EnvHistoryDir), SourceEnv),
		layer(file.HistoryDir, SourceFile),
		layer(histDefault, SourceDefault),
	)

	prompt, err := resolvePrompt(read,
		promptLayer{in.Explicit.SystemPrompt, in.Explicit.SystemPromptFile, false, SourceExplicit},
		promptLayer{in.Profile.SystemPrompt, in.Profile.SystemPromptFile, true, SourceProfile},
		promptLayer{prompt: getenv(EnvSystemPrompt), source: SourceEnv},
		promptLayer{file.SystemPrompt, file.SystemPromptFile, false, SourceFile},
	)
	if err != nil {
		return nil, err
	}
	s.SystemPrompt = prompt

	if s.BaseURL.Source != SourceDefault {
		if err := ValidateBaseURL(s.BaseURL.Value); err != nil {
			return nil, &ConfigError{Field: "base_url", Message: "invalid base URL " + s.BaseURL.Value, Err: err}
		}
	}

	envExt := extensions.ParseSpecs(getenv(EnvExtensions))
	if len(envExt) == 0 {
		envExt = extensions.ParseSpecs("", file.Extensions)
	}
	s.Extensions = extensions.ParseSpecs("", envExt, in.Profile.Extensions, in.Explicit.Extensions)

	return s, nil
}

func layer(v string, src Source) Value {
	if strings.TrimSpace(v) == "" {
		return Value{}
	}
	return Value{Value: strings.TrimSpace(v), Source: src}
}

func pick(layers ...Value) Value {
	for _, l := range layers {
		if l.Set() {
			return l
		}
	}
	return Value{}
}

type promptLayer struct {
	prompt     string
	file       string
	preferFile bool
	source     Source
}

// resolvePrompt returns the first layer that yields a non-empty prompt.
// File contents are trimmed; an empty file leaves the prompt unset.
func resolvePrompt(read func(string) ([]byte, error), layers ...promptLayer) (Value, error) {
	for _, l := range layers {
		order := []bool{false, true}
		if l.preferFile {
			order = []bool{true, false}
		}
		for _, fromFile := range order {
			if !fromFile {
				if strings.TrimSpace(l.prompt) != "" {
					return Value{Value: strings.TrimSpace(l.prompt), Source: l.source}, nil
				}
				continue
			}
			path := strings.TrimSpace(l.file)
			if path == "" {
				continue
			}
			data, err := read(path)
			if err != nil {
				return Value{}, &ConfigError{
					Field:   "system_prompt_file",
					Message: "cannot read system prompt file " + path,
					Err:     err,
				}
			}
			if text := strings.TrimSpace(string(data)); text != "" {
				return Value{Value: text, Source: l.source}, nil
			}
			// An empty file selects no prompt at this layer.
			return Value{}, nil
		}
	}
	return Value{}, nil
}
