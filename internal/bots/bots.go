// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bots stores named chat presets (model, endpoint, prompt,
// extensions) under ~/.r9s/bots.
//
// Profiles are written as YAML. Files written by older releases as JSON
// (<name>.json) are still read, since JSON is valid YAML.
package bots

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/r9s-ai/r9s-cli/internal/config"
	"github.com/r9s-ai/r9s-cli/internal/util"
)

const (
	yamlExt = ".yaml"
	jsonExt = ".json"
)

var (
	// ErrNotFound is returned when no profile file exists for a name.
	ErrNotFound = errors.New("bot not found")

	// ErrInvalidName is returned for empty names or names containing path
	// separators.
	ErrInvalidName = errors.New("invalid bot name")

	// ErrMissingModel is returned for profiles without a model.
	ErrMissingModel = errors.New("bot config missing 'model'")
)

// Bot is a named chat preset.
type Bot struct {
	Name             string   `yaml:"name" json:"name"`
	Model            string   `yaml:"model" json:"model"`
	BaseURL          string   `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	SystemPrompt     string   `yaml:"system_prompt,omitempty" json:"system_prompt,omitempty"`
	SystemPromptFile string   `yaml:"system_prompt_file,omitempty" json:"system_prompt_file,omitempty"`
	Lang             string   `yaml:"lang,omitempty" json:"lang,omitempty"`
	Extensions       []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

// Overrides returns the profile as a configuration layer.
func (b *Bot) Overrides() config.Overrides {
	return config.Overrides{
		BaseURL:          b.BaseURL,
		Model:            b.Model,
		SystemPrompt:     b.SystemPrompt,
		SystemPromptFile: b.SystemPromptFile,
		Lang:             b.Lang,
		Extensions:       b.Extensions,
	}
}

// Store reads and writes profiles in a directory.
type Store struct {
	Root string
}

// NewStore returns a store rooted at root.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// DefaultStore returns the store at ~/.r9s/bots.
func DefaultStore() (*Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(dir, "bots")), nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// Path returns the file a profile is written to.
func (s *Store) Path(name string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, name+yamlExt), nil
}

// find returns the existing file for name, preferring YAML.
func (s *Store) find(name string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	for _, ext := range []string{yamlExt, jsonExt} {
		p := filepath.Join(s.Root, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Load reads a profile. Blank optional fields are normalized away.
func (s *Store) Load(name string) (*Bot, error) {
	path, err := s.find(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bot %s: %w", name, err)
	}

	var b Bot
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("invalid bot config %s: %w", path, err)
	}
	b.normalize()
	if b.Name == "" {
		b.Name = strings.TrimSpace(name)
	}
	if b.Model == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingModel, path)
	}
	return &b, nil
}

func (b *Bot) normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Model = strings.TrimSpace(b.Model)
	b.BaseURL = strings.TrimSpace(b.BaseURL)
	b.SystemPromptFile = strings.TrimSpace(b.SystemPromptFile)
	b.Lang = strings.TrimSpace(b.Lang)
	exts := b.Extensions[:0]
	for _, e := range b.Extensions {
		if e = strings.TrimSpace(e); e != "" {
			exts = append(exts, e)
		}
	}
	if len(exts) == 0 {
		exts = nil
	}
	b.Extensions = exts
}

// Save writes a profile as YAML and removes a legacy JSON file of the same
// name. It returns the written path.
func (s *Store) Save(b *Bot) (string, error) {
	b.normalize()
	if b.Model == "" {
		return "", ErrMissingModel
	}
	path, err := s.Path(b.Name)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode bot %s: %w", b.Name, err)
	}
	if err := util.AtomicWriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write bot %s: %w", b.Name, err)
	}

	legacy := strings.TrimSuffix(path, yamlExt) + jsonExt
	if err := os.Remove(legacy); err != nil && !errors.Is(err, os.ErrNotExist) {
		return path, fmt.Errorf("remove legacy bot file: %w", err)
	}
	return path, nil
}

// List returns the profile names in lexical order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list bots: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != yamlExt && ext != jsonExt {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a profile and returns the removed path.
func (s *Store) Delete(name string) (string, error) {
	path, err := s.find(name)
	if err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("delete bot %s: %w", name, err)
	}
	return path, nil
}
