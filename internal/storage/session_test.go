// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 891, time.UTC)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	s := NewSessionStore(t.TempDir(), nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

// =============================================================================
// LOAD / SAVE TESTS
// =============================================================================

func TestSessionStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Root, "nested", "a.json")

	prompt := "be brief"
	rec := NewRecord("a", "https://api.example.com", "m1", &prompt, fixedNow)
	rec.Messages = []chatext.Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "héllo <b>"},
		{Role: "assistant", Content: "line1\nline2"},
		{Role: "tool", Content: ""},
	}

	if err := s.Save(path, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, dropped, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if !reflect.DeepEqual(got.Messages, rec.Messages) {
		t.Errorf("Messages = %+v, want %+v", got.Messages, rec.Messages)
	}
	if got.Meta.SessionID != "a" || got.Meta.Model != "m1" || got.Meta.BaseURL != "https://api.example.com" {
		t.Errorf("Meta = %+v", got.Meta)
	}
	if got.Meta.SystemPrompt == nil || *got.Meta.SystemPrompt != prompt {
		t.Errorf("SystemPrompt = %v, want %q", got.Meta.SystemPrompt, prompt)
	}
}

func TestSessionStore_SaveFormat(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Root, "fmt.json")

	rec := NewRecord("fmt", "", "m", nil, fixedNow)
	rec.Messages = append(rec.Messages, chatext.Message{Role: "user", Content: "你好 <tag>"})
	if err := s.Save(path, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)

	if !strings.HasSuffix(text, "}\n") {
		t.Error("saved file should end with a newline")
	}
	if !strings.Contains(text, "\n  \"meta\": {") {
		t.Errorf("saved file should be indented with two spaces:\n%s", text)
	}
	if !strings.Contains(text, `"system_prompt": null`) {
		t.Errorf("unset system prompt should be null:\n%s", text)
	}
	if !strings.Contains(text, "你好 <tag>") {
		t.Errorf("content should be written unescaped:\n%s", text)
	}
	if !strings.Contains(text, `"updated_at": "2025-03-04T05:06:07+00:00"`) {
		t.Errorf("timestamps should be UTC with second precision:\n%s", text)
	}
}

func TestSessionStore_SaveEmptyHistoryWritesArray(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Root, "empty.json")

	rec := &Record{Meta: Meta{SessionID: "empty"}}
	if err := s.Save(path, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"messages": []`) {
		t.Errorf("empty history should be written as []:\n%s", data)
	}
}

func TestSessionStore_LoadLegacyArray(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Root, "legacy_chat.json")
	writeFile(t, path, `[{"role":"user","content":"hi"}]`)

	rec, dropped, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	want := []chatext.Message{{Role: "user", Content: "hi"}}
	if !reflect.DeepEqual(rec.Messages, want) {
		t.Errorf("Messages = %+v, want %+v", rec.Messages, want)
	}
	if rec.Meta.SessionID != "legacy_chat" {
		t.Errorf("SessionID = %q, want file stem", rec.Meta.SessionID)
	}
	if rec.Meta.CreatedAt != FormatTime(fixedNow) || rec.Meta.UpdatedAt != FormatTime(fixedNow) {
		t.Errorf("timestamps = %q/%q, want fresh", rec.Meta.CreatedAt, rec.Meta.UpdatedAt)
	}
	if rec.Meta.SystemPrompt != nil {
		t.Errorf("SystemPrompt = %q, want nil", *rec.Meta.SystemPrompt)
	}
}

func TestSessionStore_LoadDefaultsMissingMeta(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Root, "partial.json")
	writeFile(t, path, `{"meta":{"model":"m2","system_prompt":""},"messages":[]}`)

	rec, _, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec.Meta.SessionID != "partial" {
		t.Errorf("SessionID = %q, want %q", rec.Meta.SessionID, "partial")
	}
	if rec.Meta.Model != "m2" {
		t.Errorf("Model = %q, want m2", rec.Meta.Model)
	}
	if rec.Meta.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty", rec.Meta.BaseURL)
	}
	if rec.Meta.SystemPrompt != nil {
		t.Error("empty system_prompt should load as nil")
	}
	if rec.Meta.CreatedAt == "" || rec.Meta.UpdatedAt == "" {
		t.Error("missing timestamps should be defaulted")
	}
}

func TestSessionStore_LoadDropsMalformedEntries(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewSessionStore(t.TempDir(), zap.New(core))
	path := filepath.Join(s.Root, "mixed.json")
	writeFile(t, path, `{"messages":[
		{"role":"user","content":"keep me"},
		{"role":"robot","content":"bad role"},
		{"role":"assistant","content":[{"type":"text","text":"parts"}]},
		"not an object",
		{"content":"no role"},
		{"role":"assistant","content":"kept too"}
	]}`)

	rec, dropped, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if dropped != 4 {
		t.Errorf("dropped = %d, want 4", dropped)
	}
	want := []chatext.Message{
		{Role: "user", Content: "keep me"},
		{Role: "assistant", Content: "kept too"},
	}
	if !reflect.DeepEqual(rec.Messages, want) {
		t.Errorf("Messages = %+v, want %+v", rec.Messages, want)
	}

	entries := logs.FilterMessage("dropped malformed history entries").All()
	if len(entries) != 1 {
		t.Fatalf("got %d drop log entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["dropped"]; got != int64(4) {
		t.Errorf("logged dropped = %v, want 4", got)
	}
}

func TestSessionStore_LoadErrors(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name    string
		content string
		check   func(error) bool
	}{
		{"invalid json", `{"meta":`, func(err error) bool { var pe *ParseError; return errors.As(err, &pe) }},
		{"trailing data", `[] []`, func(err error) bool { var pe *ParseError; return errors.As(err, &pe) }},
		{"number", `42`, func(err error) bool { var se *ShapeError; return errors.As(err, &se) }},
		{"string", `"hello"`, func(err error) bool { var se *ShapeError; return errors.As(err, &se) }},
		{"messages not array", `{"messages":{"role":"user"}}`, func(err error) bool { var se *ShapeError; return errors.As(err, &se) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(s.Root, strings.ReplaceAll(tt.name, " ", "_")+".json")
			writeFile(t, path, tt.content)
			_, _, err := s.Load(path)
			if err == nil || !tt.check(err) {
				t.Errorf("Load error = %v (%T)", err, err)
			}
		})
	}

	_, _, err := s.Load(filepath.Join(s.Root, "missing.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v, want fs.ErrNotExist", err)
	}
}

func TestRecord_TouchIsMonotonic(t *testing.T) {
	rec := NewRecord("x", "", "", nil, fixedNow)

	rec.Touch(fixedNow.Add(-time.Hour))
	if rec.Meta.UpdatedAt != FormatTime(fixedNow) {
		t.Errorf("UpdatedAt moved backwards to %q", rec.Meta.UpdatedAt)
	}

	later := fixedNow.Add(90 * time.Second)
	rec.Touch(later)
	if rec.Meta.UpdatedAt != FormatTime(later) {
		t.Errorf("UpdatedAt = %q, want %q", rec.Meta.UpdatedAt, FormatTime(later))
	}
	if rec.Meta.CreatedAt != FormatTime(fixedNow) {
		t.Errorf("CreatedAt changed to %q", rec.Meta.CreatedAt)
	}
}

// =============================================================================
// LIST TESTS
// =============================================================================

func TestSessionStore_ListOrdersByModTimeAndSkipsBroken(t *testing.T) {
	s := newTestStore(t)

	files := []struct {
		name    string
		content string
		age     time.Duration
	}{
		{"old.json", `{"messages":[{"role":"user","content":"old question"}]}`, 3 * time.Hour},
		{"broken.json", `{not json`, 0},
		{"new.json", `[{"role":"user","content":"first"},{"role":"assistant","content":"a"},{"role":"user","content":"latest\nquestion"}]`, time.Minute},
		{"shape.json", `123`, 2 * time.Minute},
		{"notes.txt", `[]`, 0},
		{"middle.json", `{"meta":{"model":"m"},"messages":[]}`, time.Hour},
	}
	base := time.Now()
	for _, f := range files {
		p := filepath.Join(s.Root, f.name)
		writeFile(t, p, f.content)
		mt := base.Add(-f.age)
		if err := os.Chtimes(p, mt, mt); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var names []string
	for _, sum := range got {
		names = append(names, sum.Name)
	}
	want := []string{"new.json", "middle.json", "old.json"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("List names = %v, want %v", names, want)
	}
	if got[0].Preview != "latest question" {
		t.Errorf("Preview = %q, want %q", got[0].Preview, "latest question")
	}
	if got[0].Messages != 3 {
		t.Errorf("Messages = %d, want 3", got[0].Messages)
	}
	if got[1].Preview != "" || got[1].Meta.Model != "m" {
		t.Errorf("middle summary = %+v", got[1])
	}
}

func TestSessionStore_ListMissingRoot(t *testing.T) {
	s := NewSessionStore(filepath.Join(t.TempDir(), "nope"), nil)
	got, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List = %v, want empty", got)
	}
}

func TestPreview_Truncates(t *testing.T) {
	long := strings.Repeat("a", 75)
	got := Preview([]chatext.Message{{Role: "user", Content: long}, {Role: "assistant", Content: "x"}})
	want := strings.Repeat("a", 60) + "…"
	if got != want {
		t.Errorf("Preview = %q, want %q", got, want)
	}
}

func TestSessionStore_DefaultPath(t *testing.T) {
	s := newTestStore(t)
	p := s.DefaultPath()

	if filepath.Dir(p) != s.Root {
		t.Errorf("DefaultPath dir = %q, want %q", filepath.Dir(p), s.Root)
	}
	re := regexp.MustCompile(`^20250304_050607_[0-9a-f]{8}\.json$`)
	if !re.MatchString(filepath.Base(p)) {
		t.Errorf("DefaultPath base = %q does not match %s", filepath.Base(p), re)
	}
	if p == s.DefaultPath() {
		t.Error("DefaultPath should differ between calls")
	}
}
