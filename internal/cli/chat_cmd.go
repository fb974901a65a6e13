// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/r9s-ai/r9s-cli/internal/bots"
	"github.com/r9s-ai/r9s-cli/internal/chat"
	"github.com/r9s-ai/r9s-cli/internal/cloud"
	"github.com/r9s-ai/r9s-cli/internal/config"
	"github.com/r9s-ai/r9s-cli/internal/extensions"
	"github.com/r9s-ai/r9s-cli/internal/extensions/builtin"
	"github.com/r9s-ai/r9s-cli/internal/i18n"
	"github.com/r9s-ai/r9s-cli/internal/repl"
	"github.com/r9s-ai/r9s-cli/internal/storage"
)

// chatFlags are the options of `r9s chat`.
type chatFlags struct {
	apiKey           string
	baseURL          string
	model            string
	bot              string
	systemPrompt     string
	systemPromptFile string
	historyFile      string
	noHistory        bool
	exts             []string
	noStream         bool
	markdown         bool
}

func (f *chatFlags) overrides(lang string) config.Overrides {
	return config.Overrides{
		APIKey:           f.apiKey,
		BaseURL:          f.baseURL,
		Model:            f.model,
		SystemPrompt:     f.systemPrompt,
		SystemPromptFile: f.systemPromptFile,
		Lang:             lang,
		Extensions:       f.exts,
	}
}

func newChatCmd(a *app) *cobra.Command {
	f := &chatFlags{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat (supports piping stdin)",
		Long: `Start a chat session.

With a terminal on stdin, chat runs interactively (/exit, /help, /clear).
With piped stdin, the whole input is sent as one message and the reply
is printed without decoration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, a, f, false)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&f.apiKey, "api-key", "", "API key (overrides R9S_API_KEY)")
	flags.StringVar(&f.baseURL, "base-url", "", "Base URL (overrides R9S_BASE_URL)")
	flags.StringVar(&f.model, "model", "", "Model name (overrides R9S_MODEL)")
	flags.StringVar(&f.bot, "bot", "", "Bot name (load defaults from ~/.r9s/bots/<bot>.yaml)")
	flags.StringVar(&f.systemPrompt, "system-prompt", "", "System prompt text (overrides R9S_SYSTEM_PROMPT)")
	flags.StringVar(&f.systemPromptFile, "system-prompt-file", "", "Load system prompt from file")
	flags.StringVar(&f.historyFile, "history-file", "", "Session file to load and save (default: new file under ~/.r9s/chat)")
	flags.BoolVar(&f.noHistory, "no-history", false, "Do not load or save the session")
	flags.StringArrayVar(&f.exts, "ext", nil, "Extension to load: .go or .so file, or built-in name (repeatable)")
	flags.BoolVar(&f.noStream, "no-stream", false, "Wait for the full reply instead of streaming")
	flags.BoolVar(&f.markdown, "markdown", false, "Render buffered replies as Markdown on a terminal")

	cmd.AddCommand(&cobra.Command{
		Use:   "resume",
		Short: "Pick a saved session and continue it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, a, f, true)
		},
	})
	return cmd
}

// chatDeps are the process hooks runChat depends on.
type chatDeps struct {
	interactive func(in any) bool
	newInput    func(log *zap.Logger) repl.LineReader
	newClient   repl.ClientFactory
	signals     []os.Signal
}

var defaultChatDeps = chatDeps{
	interactive: IsTerminal,
	newInput: func(log *zap.Logger) repl.LineReader {
		return NewLineInput(log)
	},
	signals: []os.Signal{os.Interrupt},
}

func runChat(cmd *cobra.Command, a *app, f *chatFlags, resume bool) error {
	return runChatWith(cmd, a, f, resume, defaultChatDeps)
}

func runChatWith(cmd *cobra.Command, a *app, f *chatFlags, resume bool, deps chatDeps) error {
	log := a.logger()
	stdin, out, errOut := cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()

	settings, err := resolveChatSettings(a, f, log)
	if err != nil {
		return err
	}
	lang := i18n.Resolve(settings.Lang.Value)
	a.resolved = lang
	theme := Theme()

	interactive := deps.interactive(stdin)
	store := storage.NewSessionStore(settings.HistoryDir.Value, log)

	var input repl.LineReader
	closeInput := func() {
		if c, ok := input.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
	defer closeInput()

	historyFile := f.historyFile
	if resume {
		if !interactive {
			return &TTYRequiredError{Operation: "resume", Message: i18n.T("chat.err.resume_requires_tty", lang)}
		}
		sessions, err := store.List()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, i18n.T("chat.resume.none", lang, "dir", store.Root))
			return nil
		}
		input = deps.newInput(log)
		picker := &repl.Picker{
			Reader: input,
			Out:    out,
			Err:    errOut,
			Lang:   lang,
			Width:  GetTerminalWidth(),
			Theme:  theme,
		}
		historyFile, err = picker.Select(store.Root, sessions)
		if err != nil {
			return err
		}
	}

	exts, err := extensions.NewLoader(builtin.Catalog(), log).Load(settings.Extensions)
	if err != nil {
		return err
	}
	pipeline := extensions.NewPipeline(exts, log)

	var render chat.Renderer
	if settings.Markdown && deps.interactive(out) {
		render = chat.MarkdownRenderer(GetTerminalWidth())
	}

	newClient := deps.newClient
	if newClient == nil {
		newClient = func(baseURL, apiKey string) chat.Completer {
			return cloud.NewClient(baseURL, apiKey).WithLogger(log)
		}
	}

	opts := repl.Options{
		Settings:    settings,
		Store:       store,
		HistoryFile: historyFile,
		NoHistory:   f.noHistory,
		Pipeline:    pipeline,
		NewClient:   newClient,
		Interactive: interactive,
		Render:      render,
		Out:         out,
		Err:         errOut,
		Lang:        lang,
		Log:         log,
	}
	if interactive {
		opts.Theme = theme
	}
	ctrl, err := repl.New(opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if len(deps.signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, deps.signals...)
		defer stop()
	}

	if !interactive {
		return ctrl.RunPiped(ctx, stdin)
	}
	if input == nil {
		input = deps.newInput(log)
	}
	err = ctrl.RunInteractive(ctx, input)
	if err != nil && !errors.Is(err, repl.ErrInterrupted) {
		log.Debug("chat ended", zap.Error(err))
	}
	return err
}

// resolveChatSettings merges flags, the selected bot, the environment and
// the config file.
func resolveChatSettings(a *app, f *chatFlags, log *zap.Logger) (*config.Settings, error) {
	file, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	var profile config.Overrides
	if f.bot != "" {
		store, err := botStore()
		if err != nil {
			return nil, err
		}
		b, err := store.Load(f.bot)
		if err != nil {
			if errors.Is(err, bots.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", i18n.T("bot.not_found", a.uiLang(), "name", f.bot), err)
			}
			return nil, err
		}
		profile = b.Overrides()
		log.Debug("bot loaded", zap.String("bot", b.Name))
	}

	return config.Resolve(config.Inputs{
		Explicit:  f.overrides(a.lang),
		Profile:   profile,
		File:      file,
		NoStream:  f.noStream,
		Markdown:  f.markdown,
		LookupEnv: a.lookupEnv,
	})
}
