// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/r9s-ai/r9s-cli/internal/util"
	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

// TimeLayout is the timestamp format stored in session metadata.
const TimeLayout = "2006-01-02T15:04:05-07:00"

// PreviewRunes is the length of a listing preview before it is cut.
const PreviewRunes = 60

// =============================================================================
// SESSION TYPES
// =============================================================================

// Meta describes a persisted session.
type Meta struct {
	SessionID    string  `json:"session_id"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	BaseURL      string  `json:"base_url"`
	Model        string  `json:"model"`
	SystemPrompt *string `json:"system_prompt"`
}

// Record is the unit of persistence: metadata plus the full conversation.
type Record struct {
	Meta     Meta              `json:"meta"`
	Messages []chatext.Message `json:"messages"`
}

// Summary is one entry of a session listing.
type Summary struct {
	Path     string
	Name     string
	ModTime  time.Time
	Meta     Meta
	Messages int
	Preview  string
}

// FormatTime renders t in TimeLayout at UTC with second precision.
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(TimeLayout)
}

// NewRecord returns an empty record stamped with now.
func NewRecord(sessionID, baseURL, model string, systemPrompt *string, now time.Time) *Record {
	ts := FormatTime(now)
	return &Record{
		Meta: Meta{
			SessionID:    sessionID,
			CreatedAt:    ts,
			UpdatedAt:    ts,
			BaseURL:      baseURL,
			Model:        model,
			SystemPrompt: systemPrompt,
		},
		Messages: []chatext.Message{},
	}
}

// Touch advances UpdatedAt to now. It never moves backwards, so a clock
// step or a file written by a faster clock keeps the stored value.
func (r *Record) Touch(now time.Time) {
	cur := now.UTC().Truncate(time.Second)
	if prev, err := time.Parse(TimeLayout, r.Meta.UpdatedAt); err == nil && cur.Before(prev) {
		return
	}
	r.Meta.UpdatedAt = cur.Format(TimeLayout)
}

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore reads and writes session files.
type SessionStore struct {
	// Root is the directory scanned by List and used by DefaultPath.
	// Default: ~/.r9s/chat
	Root string

	log *zap.Logger
	now func() time.Time
}

// NewSessionStore creates a store rooted at root. A nil logger disables
// logging.
func NewSessionStore(root string, log *zap.Logger) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionStore{
		Root: root,
		log:  log.Named("storage"),
		now:  time.Now,
	}
}

// DefaultPath returns a fresh session path under Root, named
// YYYYMMDD_HHMMSS_<8 hex>.json.
func (s *SessionStore) DefaultPath() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := s.now().Format("20060102_150405") + "_" + suffix + ".json"
	return filepath.Join(s.Root, name)
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the session at path.
//
// It returns the record and the number of malformed entries that were
// dropped. A file that is not valid JSON yields a *ParseError; a top-level
// value that is neither an object nor an array, or a "messages" value that
// is not an array, yields a *ShapeError. Read failures are returned
// wrapped, so errors.Is(err, fs.ErrNotExist) works.
func (s *SessionStore) Load(path string) (*Record, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read session %s: %w", path, err)
	}

	rec, dropped, err := decodeRecord(path, data, s.now())
	if err != nil {
		return nil, 0, err
	}
	if dropped > 0 {
		s.log.Warn("dropped malformed history entries",
			zap.String("path", path),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(rec.Messages)))
	}
	return rec, dropped, nil
}

func decodeRecord(path string, data []byte, now time.Time) (*Record, int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var top any
	if err := dec.Decode(&top); err != nil {
		return nil, 0, &ParseError{Path: path, Err: err}
	}
	if dec.More() {
		return nil, 0, &ParseError{Path: path, Err: fmt.Errorf("unexpected data after top-level value")}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ts := FormatTime(now)

	switch v := top.(type) {
	case []any:
		rec := NewRecord(stem, "", "", nil, now)
		msgs, dropped := coerceMessages(v)
		rec.Messages = msgs
		return rec, dropped, nil

	case map[string]any:
		var items []any
		if raw, ok := v["messages"]; ok && raw != nil {
			arr, ok := raw.([]any)
			if !ok {
				return nil, 0, &ShapeError{Path: path, Reason: `"messages" is not an array`}
			}
			items = arr
		}
		msgs, dropped := coerceMessages(items)

		metaRaw, _ := v["meta"].(map[string]any)
		meta := Meta{
			SessionID: metaString(metaRaw, "session_id", stem),
			CreatedAt: metaString(metaRaw, "created_at", ts),
			UpdatedAt: metaString(metaRaw, "updated_at", ts),
			BaseURL:   metaString(metaRaw, "base_url", ""),
			Model:     metaString(metaRaw, "model", ""),
		}
		if sp := metaString(metaRaw, "system_prompt", ""); sp != "" {
			meta.SystemPrompt = &sp
		}
		return &Record{Meta: meta, Messages: msgs}, dropped, nil

	default:
		return nil, 0, &ShapeError{Path: path, Reason: "top-level value is neither an object nor an array"}
	}
}

// coerceMessages keeps entries whose role is recognized and whose content
// is a string, and reports how many were dropped.
func coerceMessages(items []any) ([]chatext.Message, int) {
	out := make([]chatext.Message, 0, len(items))
	dropped := 0
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		role, _ := obj["role"].(string)
		content, ok := obj["content"].(string)
		if !ok || !chatext.ValidRole(role) {
			dropped++
			continue
		}
		out = append(out, chatext.Message{Role: role, Content: content})
	}
	return out, dropped
}

// metaString returns m[key] as text, or def when it is absent or empty.
func metaString(m map[string]any, key, def string) string {
	switch v := m[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
	}
	return def
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes rec to path, replacing any previous content. UpdatedAt is
// advanced before writing and parent directories are created as needed.
func (s *SessionStore) Save(path string, rec *Record) error {
	rec.Touch(s.now())
	if rec.Messages == nil {
		rec.Messages = []chatext.Message{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("save session %s: %w", path, err)
	}
	s.log.Debug("session saved",
		zap.String("path", path),
		zap.String("session_id", rec.Meta.SessionID),
		zap.Int("messages", len(rec.Messages)))
	return nil
}

// =============================================================================
// LIST
// =============================================================================

// List returns the sessions under Root, most recently modified first.
// Files that cannot be read or parsed are skipped. A missing Root yields
// an empty listing.
func (s *SessionStore) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	candidates := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(s.Root, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].modTime.After(candidates[j].modTime)
	})

	summaries := make([]Summary, 0, len(candidates))
	for _, c := range candidates {
		data, err := os.ReadFile(c.path)
		if err != nil {
			s.log.Debug("skipping unreadable session", zap.String("path", c.path), zap.Error(err))
			continue
		}
		rec, _, err := decodeRecord(c.path, data, s.now())
		if err != nil {
			s.log.Debug("skipping unparseable session", zap.String("path", c.path), zap.Error(err))
			continue
		}
		summaries = append(summaries, Summary{
			Path:     c.path,
			Name:     filepath.Base(c.path),
			ModTime:  c.modTime,
			Meta:     rec.Meta,
			Messages: len(rec.Messages),
			Preview:  Preview(rec.Messages),
		})
	}
	return summaries, nil
}

// Preview returns the most recent user message flattened to one line and
// cut to PreviewRunes.
func Preview(msgs []chatext.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chatext.RoleUser {
			return util.Ellipsize(util.FlattenLines(msgs[i].Content), PreviewRunes)
		}
	}
	return ""
}

// =============================================================================
// ERRORS
// =============================================================================

// ParseError reports a session file that is not valid JSON.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("session %s is not valid JSON: %v", e.Path, e.Err)
}

// Unwrap returns the decoder error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShapeError reports valid JSON with an unexpected structure.
type ShapeError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("session %s has unexpected shape: %s", e.Path, e.Reason)
}
