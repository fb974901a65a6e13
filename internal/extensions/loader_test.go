// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extensions

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

func named(name string) chatext.Extension {
	return chatext.Extension{Name: name}
}

// =============================================================================
// SPEC PARSING
// =============================================================================

func TestParseSpecs(t *testing.T) {
	got := ParseSpecs(" env1 ,, env2,", []string{"bot1", ""}, []string{"cli1", " cli2 "})
	assert.Equal(t, []string{"env1", "env2", "bot1", "cli1", "cli2"}, got)

	assert.Empty(t, ParseSpecs(""))
}

// =============================================================================
// CATALOG CONTRACT RESOLUTION
// =============================================================================

func TestLoader_ContractVariants(t *testing.T) {
	ext := named("x")
	catalog := Catalog{
		"register": {SymbolRegister: func(r *chatext.Registry) { _ = r.Add(named("reg")) }},
		"register-err": {SymbolRegister: func(r *chatext.Registry) error {
			return r.Add(named("reg-err"))
		}},
		"getter":     {SymbolGetExtension: func() chatext.Extension { return named("get") }},
		"getter-ptr": {SymbolGetExtension: func() *chatext.Extension { e := named("get-ptr"); return &e }},
		"upper":      {SymbolUpper: named("upper")},
		"lower-ptr":  {SymbolExtension: &ext},
	}
	l := NewLoader(catalog, nil)

	tests := []struct {
		spec string
		want string
	}{
		{"register", "reg"},
		{"register-err", "reg-err"},
		{"getter", "get"},
		{"getter-ptr", "get-ptr"},
		{"upper", "upper"},
		{"lower-ptr", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			exts, err := l.Load([]string{tt.spec})
			require.NoError(t, err)
			require.Len(t, exts, 1)
			assert.Equal(t, tt.want, exts[0].Name)
		})
	}
}

func TestLoader_ContractPriority(t *testing.T) {
	catalog := Catalog{
		"all": {
			SymbolExtension:    named("lower"),
			SymbolUpper:        named("upper"),
			SymbolGetExtension: func() chatext.Extension { return named("getter") },
		},
		"attrs": {
			SymbolExtension: named("lower"),
			SymbolUpper:     named("upper"),
		},
	}
	exts, err := NewLoader(catalog, nil).Load([]string{"all", "attrs"})
	require.NoError(t, err)
	require.Len(t, exts, 2)
	assert.Equal(t, "getter", exts[0].Name)
	assert.Equal(t, "upper", exts[1].Name)
}

func TestLoader_PreservesSpecOrder(t *testing.T) {
	catalog := Catalog{
		"a": {SymbolExtension: named("a")},
		"b": {SymbolRegister: func(r *chatext.Registry) {
			_ = r.Add(named("b1"))
			_ = r.Add(named("b2"))
		}},
		"c": {SymbolExtension: named("c")},
	}
	exts, err := NewLoader(catalog, nil).Load(ParseSpecs("c", []string{"a"}, []string{"b"}))
	require.NoError(t, err)

	var names []string
	for _, e := range exts {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"c", "a", "b1", "b2"}, names)
}

func TestLoader_ContractErrors(t *testing.T) {
	var nilExt *chatext.Extension
	catalog := Catalog{
		"empty":    {},
		"wrong":    {SymbolGetExtension: func() string { return "nope" }},
		"unnamed":  {SymbolUpper: chatext.Extension{}},
		"nil-ptr":  {SymbolExtension: nilExt},
		"panics":   {SymbolRegister: func(*chatext.Registry) { panic("boom") }},
		"reg-fail": {SymbolRegister: func(*chatext.Registry) error { return errors.New("nope") }},
	}
	l := NewLoader(catalog, nil)

	for spec := range catalog {
		t.Run(spec, func(t *testing.T) {
			_, err := l.Load([]string{spec})
			var ce *ContractError
			require.True(t, errors.As(err, &ce), "error = %v", err)
			assert.Equal(t, spec, ce.Spec)
		})
	}

	_, err := l.Load([]string{"empty"})
	assert.Contains(t, err.Error(), Contract)
}

func TestLoader_UnknownModule(t *testing.T) {
	_, err := NewLoader(Catalog{}, nil).Load([]string{"nosuchmodule"})
	var le *LoadError
	require.True(t, errors.As(err, &le), "error = %v", err)
	assert.Equal(t, "nosuchmodule", le.Spec)
}

func TestLoader_FailureAbortsLoading(t *testing.T) {
	catalog := Catalog{"ok": {SymbolExtension: named("ok")}}
	exts, err := NewLoader(catalog, nil).Load([]string{"ok", "missing"})
	assert.Error(t, err)
	assert.Nil(t, exts)
}

// =============================================================================
// FILE LOADING
// =============================================================================

func TestLoader_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, spec := range []string{
		filepath.Join(dir, "gone.go"),
		filepath.Join(dir, "gone.so"),
		filepath.Join(dir, "sub", "module"),
	} {
		_, err := NewLoader(nil, nil).Load([]string{spec})
		var le *LoadError
		require.True(t, errors.As(err, &le), "spec %s: error = %v", spec, err)
		assert.ErrorIs(t, err, fs.ErrNotExist, spec)
	}
}

func TestLoader_UnsupportedFileType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ext.py")
	require.NoError(t, os.WriteFile(path, []byte("print(1)"), 0o600))

	_, err := NewLoader(nil, nil).Load([]string{path})
	var le *LoadError
	require.True(t, errors.As(err, &le), "error = %v", err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestLoader_InvalidPlugin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.so")
	require.NoError(t, os.WriteFile(path, []byte("not an object file"), 0o600))

	_, err := NewLoader(nil, nil).Load([]string{path})
	var le *LoadError
	assert.True(t, errors.As(err, &le), "error = %v", err)
}

func TestLoader_SourceExtensionVariable(t *testing.T) {
	exts, err := NewLoader(nil, nil).Load([]string{filepath.Join("testdata", "shout.go")})
	require.NoError(t, err)
	require.Len(t, exts, 1)
	assert.Equal(t, "shout", exts[0].Name)
	require.NotNil(t, exts[0].AfterResponse)

	got, err := exts[0].AfterResponse("hello", &chatext.Context{})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", got)
}

func TestLoader_SourceRegister(t *testing.T) {
	exts, err := NewLoader(nil, nil).Load([]string{filepath.Join("testdata", "register.go")})
	require.NoError(t, err)
	require.Len(t, exts, 2)
	assert.Equal(t, "prefix", exts[0].Name)
	assert.Equal(t, "suffix", exts[1].Name)

	p := NewPipeline(exts, nil)
	cctx := &chatext.Context{Model: "m1"}
	text, _ := p.UserInput("hi", cctx)
	assert.Equal(t, "[m1] hi", text)
	delta, _ := p.StreamDelta("a", cctx)
	assert.Equal(t, "a!", delta)
}

func TestLoader_SourceWithoutContract(t *testing.T) {
	_, err := NewLoader(nil, nil).Load([]string{filepath.Join("testdata", "nocontract.go")})
	var ce *ContractError
	assert.True(t, errors.As(err, &ce), "error = %v", err)
}

func TestLoader_SourceSyntaxError(t *testing.T) {
	_, err := NewLoader(nil, nil).Load([]string{filepath.Join("testdata", "broken.go")})
	var le *LoadError
	assert.True(t, errors.As(err, &le), "error = %v", err)
}

func TestTopLevelNames(t *testing.T) {
	src := []byte(`package p

type Registry struct{}

func (Registry) Register() {}

func GetExtension() int { return 0 }

var (
	EXTENSION, other = 1, 2
)

const Extension = 3
`)
	pkg, names, err := topLevelNames("p.go", src)
	require.NoError(t, err)
	assert.Equal(t, "p", pkg)
	assert.Equal(t, map[string]bool{"GetExtension": true, "EXTENSION": true}, names)
}
