// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extensions

import "strings"

// EnvVar lists default extension specs, comma separated.
const EnvVar = "R9S_CHAT_EXTENSIONS"

// ParseSpecs returns the effective spec list: the comma-separated env
// entries first, then each explicit group in order. Blank entries are
// dropped; duplicates are kept.
func ParseSpecs(env string, groups ...[]string) []string {
	var specs []string
	for _, s := range strings.Split(env, ",") {
		if s = strings.TrimSpace(s); s != "" {
			specs = append(specs, s)
		}
	}
	for _, g := range groups {
		for _, s := range g {
			if s = strings.TrimSpace(s); s != "" {
				specs = append(specs, s)
			}
		}
	}
	return specs
}
