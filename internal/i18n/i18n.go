// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package i18n holds the localized strings shown by the r9s CLI.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Supported UI languages.
const (
	English           = "en"
	SimplifiedChinese = "zh-CN"
)

var aliases = map[string]string{
	"en":    English,
	"en-us": English,
	"zh":    SimplifiedChinese,
	"zh-cn": SimplifiedChinese,
	"cn":    SimplifiedChinese,
}

var (
	supported = []language.Tag{language.English, language.SimplifiedChinese}
	matcher   = language.NewMatcher(supported)
)

// Resolve maps a user supplied language name to a supported language.
// Unknown or empty values resolve to English.
func Resolve(value string) string {
	norm := strings.ToLower(strings.TrimSpace(value))
	norm = strings.ReplaceAll(strings.ReplaceAll(norm, " ", ""), "_", "-")
	if norm == "" {
		return English
	}
	if lang, ok := aliases[norm]; ok {
		return lang
	}

	tag, err := language.Parse(norm)
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No || idx != 1 {
		return English
	}
	return SimplifiedChinese
}

// T returns the string for key in lang, falling back to English and then
// to the key itself. kv holds name/value pairs substituted for {name}.
func T(key, lang string, kv ...any) string {
	tmpl, ok := tables[lang][key]
	if !ok {
		tmpl, ok = tables[English][key]
	}
	if !ok {
		tmpl = key
	}
	if len(kv) == 0 {
		return tmpl
	}

	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(kv[i])+"}", fmt.Sprint(kv[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Keys returns the keys defined for English.
func Keys() []string {
	keys := make([]string, 0, len(tables[English]))
	for k := range tables[English] {
		keys = append(keys, k)
	}
	return keys
}
