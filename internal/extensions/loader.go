// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extensions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

// Contract symbol names, in resolution order.
const (
	SymbolRegister     = "Register"
	SymbolGetExtension = "GetExtension"
	SymbolUpper        = "EXTENSION"
	SymbolExtension    = "Extension"
)

var contractSymbols = []string{SymbolRegister, SymbolGetExtension, SymbolUpper, SymbolExtension}

// Symbols is the exported surface of one built-in module, keyed by
// contract symbol name.
type Symbols map[string]any

// Catalog maps built-in module names to their symbols.
type Catalog map[string]Symbols

// symbolTable resolves contract symbols of one loaded unit. A missing
// symbol returns ok == false.
type symbolTable interface {
	lookup(name string) (value any, ok bool, err error)
}

func (s Symbols) lookup(name string) (any, bool, error) {
	v, ok := s[name]
	if !ok || v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

// Loader resolves extension specs.
type Loader struct {
	catalog Catalog
	log     *zap.Logger
}

// NewLoader returns a loader that resolves module names against catalog.
func NewLoader(catalog Catalog, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{catalog: catalog, log: log.Named("extensions")}
}

// Load resolves every spec in order and returns the registered
// extensions. The first failure aborts loading.
func (l *Loader) Load(specs []string) ([]chatext.Extension, error) {
	reg := chatext.NewRegistry()
	for _, spec := range specs {
		table, err := l.open(spec)
		if err != nil {
			return nil, err
		}
		before := len(reg.Extensions())
		if err := registerFrom(spec, table, reg); err != nil {
			return nil, err
		}
		for _, ext := range reg.Extensions()[before:] {
			l.log.Debug("extension loaded", zap.String("spec", spec), zap.String("name", ext.Name))
		}
	}
	return reg.Extensions(), nil
}

// open classifies spec and loads the unit it names.
func (l *Loader) open(spec string) (symbolTable, error) {
	info, statErr := os.Stat(spec)
	isFile := statErr == nil && !info.IsDir()
	ext := strings.ToLower(filepath.Ext(spec))

	switch {
	case ext == ".go" && (isFile || looksLikePath(spec)):
		if !isFile {
			return nil, &LoadError{Spec: spec, Err: missingFile(statErr)}
		}
		return openSource(spec)
	case ext == ".so" && (isFile || looksLikePath(spec)):
		if !isFile {
			return nil, &LoadError{Spec: spec, Err: missingFile(statErr)}
		}
		return openPlugin(spec)
	case isFile:
		return nil, &LoadError{Spec: spec, Err: fmt.Errorf("unsupported extension file type %q (want .go or .so)", ext)}
	case looksLikePath(spec):
		return nil, &LoadError{Spec: spec, Err: missingFile(statErr)}
	}

	if syms, ok := l.catalog[spec]; ok {
		return syms, nil
	}
	return nil, &LoadError{Spec: spec, Err: fmt.Errorf("unknown extension module %q", spec)}
}

func looksLikePath(spec string) bool {
	return strings.ContainsRune(spec, '/') || strings.ContainsRune(spec, filepath.Separator) ||
		strings.HasSuffix(spec, ".go") || strings.HasSuffix(spec, ".so")
}

func missingFile(statErr error) error {
	if statErr != nil {
		return statErr
	}
	return fs.ErrNotExist
}

// registerFrom applies the first contract symbol that table exposes.
func registerFrom(spec string, table symbolTable, reg *chatext.Registry) error {
	for _, name := range contractSymbols {
		v, ok, err := table.lookup(name)
		if err != nil {
			return &LoadError{Spec: spec, Err: err}
		}
		if !ok {
			continue
		}
		if err := apply(name, v, reg); err != nil {
			return &ContractError{Spec: spec, Reason: err.Error()}
		}
		return nil
	}
	return &ContractError{Spec: spec}
}

func apply(name string, v any, reg *chatext.Registry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", name, r)
		}
	}()

	switch name {
	case SymbolRegister:
		switch fn := v.(type) {
		case func(*chatext.Registry):
			fn(reg)
			return reg.Err()
		case func(*chatext.Registry) error:
			if err := fn(reg); err != nil {
				return fmt.Errorf("Register: %w", err)
			}
			return reg.Err()
		}
	case SymbolGetExtension:
		switch fn := v.(type) {
		case func() chatext.Extension:
			return reg.Add(fn())
		case func() *chatext.Extension:
			ext := fn()
			if ext == nil {
				return errors.New("GetExtension returned nil")
			}
			return reg.Add(*ext)
		}
	default:
		switch ext := v.(type) {
		case chatext.Extension:
			return reg.Add(ext)
		case *chatext.Extension:
			if ext == nil {
				return fmt.Errorf("%s is nil", name)
			}
			return reg.Add(*ext)
		case **chatext.Extension:
			if ext == nil || *ext == nil {
				return fmt.Errorf("%s is nil", name)
			}
			return reg.Add(**ext)
		}
	}
	return fmt.Errorf("symbol %s has unsupported type %T", name, v)
}
