// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extensions loads chat extensions and runs their hook chains.
//
// An extension spec is one of:
//
//   - a path to a Go source file, interpreted with yaegi
//   - a path to a Go plugin (.so) built with -buildmode=plugin
//   - the name of a module in the built-in Catalog passed to NewLoader
//
// Each loaded unit must expose Register, GetExtension, EXTENSION or
// Extension (checked in that order; see package chatext). Load failures
// are fatal and are reported as *LoadError or *ContractError.
//
// # Hook Chains
//
// Pipeline runs the four hooks of every extension in load order. A nil
// hook is the identity. A hook that returns an error, panics, or (for
// BeforeRequest) returns a nil slice is skipped: the running value is
// kept, the skip is logged, and it is counted in the returned total.
//
//	exts, err := extensions.NewLoader(builtin.Catalog(), log).Load(specs)
//	p := extensions.NewPipeline(exts, log)
//	text, ignored := p.UserInput(text, cctx)
package extensions
