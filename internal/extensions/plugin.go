// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extensions

import (
	"plugin"
	"strings"
)

// pluginUnit is a shared object built with -buildmode=plugin against the
// same chatext package as the host binary.
type pluginUnit struct {
	p *plugin.Plugin
}

func openPlugin(path string) (symbolTable, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, &LoadError{Spec: path, Err: err}
	}
	return &pluginUnit{p: p}, nil
}

func (u *pluginUnit) lookup(name string) (any, bool, error) {
	sym, err := u.p.Lookup(name)
	if err != nil {
		// plugin reports missing symbols only as a formatted error.
		if strings.Contains(err.Error(), "not found") {
			return nil, false, nil
		}
		return nil, false, err
	}
	return sym, true, nil
}
