// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extensions

import "fmt"

// Contract describes the symbols an extension unit may expose.
const Contract = "Register(*chatext.Registry) / GetExtension() / EXTENSION / Extension"

// ContractError reports a loaded unit that does not satisfy the extension
// contract.
type ContractError struct {
	Spec   string
	Reason string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("extension %s: %s", e.Spec, e.Reason)
	}
	return fmt.Sprintf("extension %s must provide one of: %s", e.Spec, Contract)
}

// LoadError reports a spec that could not be read, compiled, or found.
type LoadError struct {
	Spec string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load extension %s: %v", e.Spec, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}
