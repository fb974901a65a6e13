// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extensions

import (
	"go/constant"
	"go/token"
	"reflect"

	"github.com/traefik/yaegi/interp"

	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

// Exports makes package chatext importable from interpreted extension
// sources.
var Exports = interp.Exports{
	"github.com/r9s-ai/r9s-cli/pkg/chatext/chatext": {
		// constants
		"RoleAssistant": reflect.ValueOf(constant.MakeFromLiteral(`"assistant"`, token.STRING, 0)),
		"RoleSystem":    reflect.ValueOf(constant.MakeFromLiteral(`"system"`, token.STRING, 0)),
		"RoleTool":      reflect.ValueOf(constant.MakeFromLiteral(`"tool"`, token.STRING, 0)),
		"RoleUser":      reflect.ValueOf(constant.MakeFromLiteral(`"user"`, token.STRING, 0)),

		// functions
		"NewRegistry": reflect.ValueOf(chatext.NewRegistry),
		"ValidRole":   reflect.ValueOf(chatext.ValidRole),

		// variables
		"ErrUnnamed": reflect.ValueOf(&chatext.ErrUnnamed).Elem(),

		// types
		"AfterResponseHook": reflect.ValueOf((*chatext.AfterResponseHook)(nil)),
		"BeforeRequestHook": reflect.ValueOf((*chatext.BeforeRequestHook)(nil)),
		"Context":           reflect.ValueOf((*chatext.Context)(nil)),
		"Extension":         reflect.ValueOf((*chatext.Extension)(nil)),
		"Message":           reflect.ValueOf((*chatext.Message)(nil)),
		"Registry":          reflect.ValueOf((*chatext.Registry)(nil)),
		"StreamDeltaHook":   reflect.ValueOf((*chatext.StreamDeltaHook)(nil)),
		"UserInputHook":     reflect.ValueOf((*chatext.UserInputHook)(nil)),
	},
}
