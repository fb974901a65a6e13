// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", English},
		{"  ", English},
		{"en", English},
		{"EN", English},
		{"en-US", English},
		{"en_us", English},
		{"en-GB", English},
		{"zh", SimplifiedChinese},
		{"zh-CN", SimplifiedChinese},
		{"zh_cn", SimplifiedChinese},
		{"ZH CN", English},
		{"cn", SimplifiedChinese},
		{"zh-Hans", SimplifiedChinese},
		{"fr", English},
		{"???", English},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in))
		})
	}
}

func TestT_Substitution(t *testing.T) {
	got := T("chat.err.unknown_command", English, "cmd", "/foo")
	assert.Equal(t, "Unknown command: /foo (try /help)", got)

	got = T("chat.msg.dropped", SimplifiedChinese, "count", 2, "path", "a.json")
	assert.Equal(t, "已跳过 a.json 中 2 条格式错误的历史记录。", got)
}

func TestT_Fallbacks(t *testing.T) {
	// Missing in zh-CN falls back to English.
	assert.Equal(t, "NAME", T("bot.col.name", SimplifiedChinese))
	// Unknown language uses English.
	assert.Equal(t, "Commands:", T("chat.commands.title", "de"))
	// Unknown key returns the key.
	assert.Equal(t, "no.such.key", T("no.such.key", English))
	// Unused placeholders are left alone; odd trailing kv is ignored.
	assert.Equal(t, "No saved sessions found in: {dir}", T("chat.resume.none", English, "dir"))
}

func TestTables_ChineseKeysExistInEnglish(t *testing.T) {
	for key := range tables[SimplifiedChinese] {
		_, ok := tables[English][key]
		assert.True(t, ok, "zh-CN key %q missing from English table", key)
	}
	assert.NotEmpty(t, Keys())
	for _, k := range Keys() {
		assert.False(t, strings.TrimSpace(T(k, English)) == "", "empty string for %q", k)
	}
}
