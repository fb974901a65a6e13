// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/r9s-ai/r9s-cli/internal/chat"
	"github.com/r9s-ai/r9s-cli/internal/config"
	"github.com/r9s-ai/r9s-cli/internal/extensions"
	"github.com/r9s-ai/r9s-cli/internal/i18n"
	"github.com/r9s-ai/r9s-cli/internal/storage"
	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

// =============================================================================
// STATES & ERRORS
// =============================================================================

// State is the lifecycle position of a Controller.
type State int

const (
	StateInit State = iota
	StateReady
	StateAwaitingInput
	StateProcessingTurn
	StateExited
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateProcessingTurn:
		return "processing_turn"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInterrupted is returned when the operator interrupts a prompt or an
// in-flight request.
var ErrInterrupted = errors.New("interrupted")

// LineReader reads one line of interactive input. *liner.State satisfies
// it; liner.ErrPromptAborted is treated as an interrupt and io.EOF as
// /exit.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// ClientFactory builds the completion client once the endpoint is known.
type ClientFactory func(baseURL, apiKey string) chat.Completer

// Theme decorates console output. Nil fields leave text unchanged.
type Theme struct {
	Header func(string) string
	Info   func(string) string
	Error  func(string) string
	Label  func(string) string
}

func apply(f func(string) string, s string) string {
	if f == nil {
		return s
	}
	return f(s)
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configure a Controller.
type Options struct {
	// Settings are the resolved chat settings.
	Settings *config.Settings

	// Store reads and writes session files.
	Store *storage.SessionStore

	// HistoryFile is the session file to use. Empty selects a fresh path
	// under Store.Root.
	HistoryFile string

	// NoHistory disables persistence.
	NoHistory bool

	// Pipeline holds the loaded extensions. Nil means none.
	Pipeline *extensions.Pipeline

	// NewClient builds the completion client.
	NewClient ClientFactory

	// Interactive enables the spinner.
	Interactive bool

	// Render formats buffered replies for display.
	Render chat.Renderer

	Out   io.Writer
	Err   io.Writer
	Lang  string
	Theme Theme
	Log   *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the conversation state and runs turns.
type Controller struct {
	opts  Options
	log   *zap.Logger
	now   func() time.Time
	state State

	path         string
	record       *storage.Record
	baseURL      string
	model        string
	systemPrompt string
	dropped      int

	cctx      *chatext.Context
	pipeline  *extensions.Pipeline
	responder *chat.Responder
}

// New prepares a session: it loads or creates the record, inherits
// unspecified settings from saved metadata, and validates that a
// credential and a model are available. The Controller is READY on
// success.
func New(opts Options) (*Controller, error) {
	if opts.Settings == nil {
		return nil, errors.New("repl: settings required")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Lang == "" {
		opts.Lang = i18n.English
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		opts:     opts,
		log:      log.Named("repl"),
		now:      now,
		state:    StateInit,
		pipeline: opts.Pipeline,
	}
	if c.pipeline == nil {
		c.pipeline = extensions.NewPipeline(nil, log)
	}

	s := opts.Settings
	if !s.APIKey.Set() {
		return nil, &config.ConfigError{Field: "api_key", Message: i18n.T("chat.err.missing_api_key", opts.Lang)}
	}

	if err := c.openRecord(); err != nil {
		return nil, err
	}

	if c.model == "" {
		return nil, &config.ConfigError{Field: "model", Message: i18n.T("chat.err.missing_model", opts.Lang)}
	}
	if opts.NewClient == nil {
		return nil, errors.New("repl: client factory required")
	}

	c.cctx = &chatext.Context{
		BaseURL:      c.baseURL,
		Model:        c.model,
		SystemPrompt: c.systemPrompt,
		HistoryFile:  c.path,
		History:      c.record.Messages,
	}
	c.responder = &chat.Responder{
		Client:      opts.NewClient(c.baseURL, s.APIKey.Value),
		Pipeline:    c.pipeline,
		Out:         opts.Out,
		Stream:      !s.NoStream,
		Interactive: opts.Interactive,
		Render:      opts.Render,
		Log:         log,
	}

	c.state = StateReady
	c.log.Debug("session ready",
		zap.String("path", c.path),
		zap.String("session_id", c.record.Meta.SessionID),
		zap.String("model", c.model),
		zap.Int("messages", len(c.record.Messages)))
	return c, nil
}

// openRecord loads the session file if it exists, or starts a fresh one,
// and settles the effective endpoint, model and system prompt.
func (c *Controller) openRecord() error {
	s := c.opts.Settings
	c.baseURL = s.BaseURL.Value
	c.model = s.Model.Value
	c.systemPrompt = s.SystemPrompt.Value

	if !c.opts.NoHistory {
		c.path = c.opts.HistoryFile
		if c.path == "" {
			c.path = c.opts.Store.DefaultPath()
		}
	}

	var rec *storage.Record
	if c.path != "" {
		if _, err := os.Stat(c.path); err == nil {
			loaded, dropped, err := c.opts.Store.Load(c.path)
			if err != nil {
				return err
			}
			rec, c.dropped = loaded, dropped
			if dropped > 0 {
				c.errorf("%s", i18n.T("chat.msg.dropped", c.opts.Lang, "count", dropped, "path", c.path))
			}
		}
	}

	if rec == nil {
		var prompt *string
		if c.systemPrompt != "" {
			p := c.systemPrompt
			prompt = &p
		}
		c.record = storage.NewRecord(c.sessionID(), c.baseURL, c.model, prompt, c.now())
		return nil
	}

	// Saved metadata supplies whatever was not configured.
	m := &rec.Meta
	if s.BaseURL.Inherited() && m.BaseURL != "" {
		c.baseURL = m.BaseURL
	}
	if !s.Model.Set() && m.Model != "" {
		c.model = m.Model
	}
	if !s.SystemPrompt.Set() && m.SystemPrompt != nil {
		c.systemPrompt = *m.SystemPrompt
	}

	// Older files may lack metadata; fill it from the effective values.
	if m.BaseURL == "" {
		m.BaseURL = c.baseURL
	}
	if m.Model == "" {
		m.Model = c.model
	}
	if m.SystemPrompt == nil && c.systemPrompt != "" {
		p := c.systemPrompt
		m.SystemPrompt = &p
	}
	rec.Touch(c.now())
	c.record = rec
	return nil
}

func (c *Controller) sessionID() string {
	if c.path != "" {
		return strings.TrimSuffix(filepath.Base(c.path), filepath.Ext(c.path))
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Path returns the session file, or "" when persistence is disabled.
func (c *Controller) Path() string { return c.path }

// Record returns the live session record.
func (c *Controller) Record() *storage.Record { return c.record }

// Model returns the effective model.
func (c *Controller) Model() string { return c.model }

// BaseURL returns the effective endpoint.
func (c *Controller) BaseURL() string { return c.baseURL }

// SystemPrompt returns the effective system prompt, or "".
func (c *Controller) SystemPrompt() string { return c.systemPrompt }

// Dropped returns the number of malformed entries skipped on load.
func (c *Controller) Dropped() int { return c.dropped }

// =============================================================================
// RUN MODES
// =============================================================================

// RunPiped reads all of in as one user message and runs a single turn. An
// input that is empty after trimming does nothing.
func (c *Controller) RunPiped(ctx context.Context, in io.Reader) error {
	defer c.exit()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil
	}
	return c.turn(ctx, text, "")
}

// RunInteractive prints the banner and runs the read-eval loop until
// /exit, end of input, or an interrupt.
func (c *Controller) RunInteractive(ctx context.Context, lr LineReader) error {
	defer c.exit()

	c.printBanner()
	for {
		c.state = StateAwaitingInput
		line, err := lr.Prompt(i18n.T("chat.prompt.user", c.opts.Lang))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return ErrInterrupted
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.opts.Out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		if ctx.Err() != nil {
			return ErrInterrupted
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if c.command(line) {
				return nil
			}
			continue
		}

		label := apply(c.opts.Theme.Label, i18n.T("chat.prompt.assistant", c.opts.Lang))
		if err := c.turn(ctx, line, label); err != nil {
			if errors.Is(err, ErrInterrupted) || errors.Is(err, errSaveFailed) {
				return err
			}
			c.errorf("%s", i18n.T("chat.err.request", c.opts.Lang, "err", err))
		}
	}
}

// command handles a slash command and reports whether the loop should end.
func (c *Controller) command(cmd string) bool {
	switch cmd {
	case "/exit":
		return true
	case "/help":
		c.printHelp()
	case "/clear":
		c.record.Messages = []chatext.Message{}
		c.cctx.History = c.record.Messages
		c.infof("%s", i18n.T("chat.msg.history_cleared", c.opts.Lang))
	default:
		c.errorf("%s", i18n.T("chat.err.unknown_command", c.opts.Lang, "cmd", cmd))
	}
	return false
}

func (c *Controller) exit() {
	c.state = StateExited
}

// =============================================================================
// TURN
// =============================================================================

var errSaveFailed = errors.New("save session")

// turn runs one exchange. On a request failure the unanswered user message
// is withdrawn from memory and nothing is saved.
func (c *Controller) turn(ctx context.Context, text, label string) error {
	c.state = StateProcessingTurn

	text, _ = c.pipeline.UserInput(text, c.cctx)
	c.appendMessage(chatext.Message{Role: chatext.RoleUser, Content: text})

	msgs, _ := c.pipeline.BeforeRequest(c.requestMessages(), c.cctx)

	res, err := c.responder.Run(ctx, c.model, msgs, c.cctx, label)
	if err != nil {
		c.record.Messages = c.record.Messages[:len(c.record.Messages)-1]
		c.cctx.History = c.record.Messages
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return ErrInterrupted
		}
		c.log.Warn("turn failed", zap.Error(err))
		return err
	}
	if res.Ignored > 0 {
		c.log.Debug("extension results ignored during turn", zap.Int("count", res.Ignored))
	}

	c.appendMessage(chatext.Message{Role: chatext.RoleAssistant, Content: res.Text})
	return c.save()
}

func (c *Controller) appendMessage(m chatext.Message) {
	c.record.Messages = append(c.record.Messages, m)
	c.cctx.History = c.record.Messages
}

// requestMessages is the system prompt, if any, followed by the history.
func (c *Controller) requestMessages() []chatext.Message {
	msgs := make([]chatext.Message, 0, len(c.record.Messages)+1)
	if c.systemPrompt != "" {
		msgs = append(msgs, chatext.Message{Role: chatext.RoleSystem, Content: c.systemPrompt})
	}
	return append(msgs, c.record.Messages...)
}

func (c *Controller) save() error {
	if c.path == "" {
		return nil
	}
	if err := c.opts.Store.Save(c.path, c.record); err != nil {
		return fmt.Errorf("%w: %w", errSaveFailed, err)
	}
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func (c *Controller) printBanner() {
	lang := c.opts.Lang
	fmt.Fprintln(c.opts.Out, apply(c.opts.Theme.Header, i18n.T("chat.title", lang)))
	c.infof("%s: %s", i18n.T("chat.base_url", lang), c.baseURL)
	c.infof("%s: %s", i18n.T("chat.model", lang), c.model)
	if c.systemPrompt != "" {
		c.infof("%s", i18n.T("chat.system_prompt_set", lang))
	}
	if names := c.pipeline.Names(); len(names) > 0 {
		c.infof("%s: %s", i18n.T("chat.extensions", lang), strings.Join(names, ", "))
	}
	c.printHelp()
	fmt.Fprintln(c.opts.Out)
}

func (c *Controller) printHelp() {
	lang := c.opts.Lang
	c.infof("%s", i18n.T("chat.commands.title", lang))
	fmt.Fprintln(c.opts.Out, i18n.T("chat.commands.exit", lang))
	fmt.Fprintln(c.opts.Out, i18n.T("chat.commands.clear", lang))
	fmt.Fprintln(c.opts.Out, i18n.T("chat.commands.help", lang))
}

func (c *Controller) infof(format string, args ...any) {
	fmt.Fprintln(c.opts.Out, apply(c.opts.Theme.Info, fmt.Sprintf(format, args...)))
}

func (c *Controller) errorf(format string, args ...any) {
	fmt.Fprintln(c.opts.Err, apply(c.opts.Theme.Error, fmt.Sprintf(format, args...)))
}
