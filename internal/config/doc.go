// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the optional r9s configuration file and resolves
// per-invocation chat settings.
//
// # Key Types
//
//   - File: the TOML file at ~/.r9s/config.toml
//   - Settings: resolved values, each tagged with its Source
//   - ConfigError: a missing or unusable setting, fatal at startup
//
// # Precedence
//
// Each setting is taken from the first layer that provides it:
//   - command line flags
//   - the selected bot profile
//   - environment variables (R9S_*)
//   - ~/.r9s/config.toml
//   - built-in defaults
//
// # Usage
//
//	file, err := config.Load(log)
//	if err != nil {
//	    return err
//	}
//	s, err := config.Resolve(config.Inputs{Explicit: flags, File: file})
package config
