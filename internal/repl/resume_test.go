// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/r9s-cli/internal/storage"
	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

func TestFormatSummary(t *testing.T) {
	s := storage.Summary{
		Name:    "a.json",
		Meta:    storage.Meta{UpdatedAt: "2025-03-04T05:06:07+00:00", Model: "m"},
		Preview: "hello there",
	}
	assert.Equal(t, "a.json  [2025-03-04T05:06:07+00:00]  m  ?  - hello there", FormatSummary(s, 0))

	s.Preview = ""
	assert.Equal(t, "a.json  [2025-03-04T05:06:07+00:00]  m  ?", FormatSummary(s, 0))

	s.Preview = "你好你好你好你好你好"
	clipped := FormatSummary(s, 50)
	assert.LessOrEqual(t, runewidth.StringWidth(clipped), 50)
	assert.True(t, strings.HasSuffix(clipped, "…"))
}

func TestPicker_Select(t *testing.T) {
	sessions := []storage.Summary{
		{Path: "/s/new.json", Name: "new.json", Meta: storage.Meta{Model: "m2"}},
		{Path: "/s/old.json", Name: "old.json", Meta: storage.Meta{Model: "m1"}},
	}
	var out, errOut bytes.Buffer
	lr := &scriptReader{lines: []string{"x", "0", "3", " 2 "}}
	p := &Picker{Reader: lr, Out: &out, Err: &errOut, Lang: "en"}

	path, err := p.Select("/s", sessions)
	require.NoError(t, err)
	assert.Equal(t, "/s/old.json", path)
	assert.Equal(t, 4, lr.prompts)
	assert.Equal(t, 3, strings.Count(errOut.String(), "Invalid selection, try again."))

	listing := out.String()
	assert.Contains(t, listing, "Sessions in: /s")
	assert.Less(t, strings.Index(listing, "1) new.json"), strings.Index(listing, "2) old.json"))
}

func TestPicker_SelectEmptyAndEOF(t *testing.T) {
	p := &Picker{Reader: &scriptReader{}, Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}

	_, err := p.Select("/s", nil)
	assert.ErrorIs(t, err, ErrNoSessions)

	_, err = p.Select("/s", []storage.Summary{{Path: "p"}})
	assert.Error(t, err)

	p.Reader = abortReader{}
	_, err = p.Select("/s", []storage.Summary{{Path: "p"}})
	assert.ErrorIs(t, err, ErrInterrupted)
}

// The listing skips unparseable files and puts the newest first; the
// chosen file then becomes the active session.
func TestResume_EndToEnd(t *testing.T) {
	f := newFixture(t)
	base := time.Now().Add(-time.Hour)

	write := func(name, model string, age time.Duration) string {
		path := filepath.Join(f.dir, name)
		rec := storage.NewRecord(strings.TrimSuffix(name, ".json"), "https://x.test", model, nil, base)
		rec.Messages = []chatext.Message{{Role: "user", Content: "from " + name}}
		require.NoError(t, f.store.Save(path, rec))
		mt := base.Add(age)
		require.NoError(t, os.Chtimes(path, mt, mt))
		return path
	}
	older := write("older.json", "m-old", 0)
	newer := write("newer.json", "m-new", 10*time.Minute)
	broken := filepath.Join(f.dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o600))
	require.NoError(t, os.Chtimes(broken, base.Add(20*time.Minute), base.Add(20*time.Minute)))

	sessions, err := f.store.List()
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	p := &Picker{Reader: &scriptReader{lines: []string{"2"}}, Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}
	path, err := p.Select(f.dir, sessions)
	require.NoError(t, err)
	assert.Equal(t, older, path)
	assert.NotEqual(t, newer, path)

	c, err := New(f.options(settings(""), path))
	require.NoError(t, err)
	assert.Equal(t, "m-old", c.Model())
	assert.Equal(t, "https://x.test", c.BaseURL())
	assert.Equal(t, "older", c.Record().Meta.SessionID)
}
