// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bots

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "bots"))
	in := &Bot{
		Name:         "helper",
		Model:        " gpt-4o-mini ",
		BaseURL:      "https://example.test",
		SystemPrompt: "Be brief.",
		Lang:         "zh-CN",
		Extensions:   []string{"demo", " ", "./ext.go"},
	}

	path, err := s.Save(in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "helper.yaml"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := s.Load("helper")
	require.NoError(t, err)
	assert.Equal(t, &Bot{
		Name:         "helper",
		Model:        "gpt-4o-mini",
		BaseURL:      "https://example.test",
		SystemPrompt: "Be brief.",
		Lang:         "zh-CN",
		Extensions:   []string{"demo", "./ext.go"},
	}, got)
}

func TestStore_LoadLegacyJSON(t *testing.T) {
	root := t.TempDir()
	legacy := `{
  "name": "old",
  "model": "m1",
  "base_url": null,
  "system_prompt_file": "/tmp/prompt.txt",
  "extensions": ["redact"]
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.json"), []byte(legacy), 0o600))

	s := NewStore(root)
	b, err := s.Load("old")
	require.NoError(t, err)
	assert.Equal(t, "m1", b.Model)
	assert.Empty(t, b.BaseURL)
	assert.Equal(t, "/tmp/prompt.txt", b.SystemPromptFile)
	assert.Equal(t, []string{"redact"}, b.Extensions)

	// Saving migrates the profile to YAML.
	_, err = s.Save(b)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "old.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "old.yaml"))
	assert.NoError(t, err)
}

func TestStore_LoadErrors(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "nomodel.yaml"), []byte("name: x\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.yaml"), []byte("model: [\n"), 0o600))
	s := NewStore(root)

	_, err := s.Load("absent")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Load("nomodel")
	assert.ErrorIs(t, err, ErrMissingModel)

	_, err = s.Load("broken")
	assert.Error(t, err)

	for _, name := range []string{"", "  ", "../escape", "a/b", ".."} {
		_, err = s.Load(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestStore_LoadDefaultsName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "anon.yaml"), []byte("model: m\n"), 0o600))

	b, err := NewStore(root).Load("anon")
	require.NoError(t, err)
	assert.Equal(t, "anon", b.Name)
}

func TestStore_SaveRequiresModel(t *testing.T) {
	_, err := NewStore(t.TempDir()).Save(&Bot{Name: "x", Model: "  "})
	assert.ErrorIs(t, err, ErrMissingModel)
}

func TestStore_ListAndDelete(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, n := range []string{"zeta", "alpha"} {
		_, err := s.Save(&Bot{Name: n, Model: "m"})
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "legacy.json"), []byte(`{"model":"m"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o600))

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "legacy", "zeta"}, names)

	path, err := s.Delete("legacy")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "legacy.json"), path)

	_, err = s.Delete("legacy")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestStore_ListMissingRoot(t *testing.T) {
	names, err := NewStore(filepath.Join(t.TempDir(), "missing")).List()
	assert.NoError(t, err)
	assert.Nil(t, names)
}

func TestBot_Overrides(t *testing.T) {
	b := &Bot{Name: "n", Model: "m", BaseURL: "u", SystemPromptFile: "f", Lang: "en", Extensions: []string{"e"}}
	o := b.Overrides()
	assert.Equal(t, "m", o.Model)
	assert.Equal(t, "u", o.BaseURL)
	assert.Equal(t, "f", o.SystemPromptFile)
	assert.Equal(t, "en", o.Lang)
	assert.Equal(t, []string{"e"}, o.Extensions)
	assert.Empty(t, o.APIKey)
}
