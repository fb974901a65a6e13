// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/r9s-ai/r9s-cli/internal/config"
	"github.com/r9s-ai/r9s-cli/internal/i18n"
	"github.com/r9s-ai/r9s-cli/internal/repl"
)

// Build metadata, set with -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// app carries the global flags and process-wide state shared by commands.
type app struct {
	lang    string
	verbose bool
	log     *zap.Logger

	// resolved is the language settled by a command's configuration.
	resolved string

	// lookupEnv defaults to os.LookupEnv.
	lookupEnv func(string) (string, bool)
}

func (a *app) getenv(key string) string {
	v, _ := a.lookupEnv(key)
	return v
}

// uiLang returns the display language: the one a command resolved, or
// else --lang, then R9S_LANG, then English.
func (a *app) uiLang() string {
	if a.resolved != "" {
		return a.resolved
	}
	if a.lang != "" {
		return i18n.Resolve(a.lang)
	}
	return i18n.Resolve(a.getenv(config.EnvLang))
}

func (a *app) logger() *zap.Logger {
	if a.log == nil {
		return zap.NewNop()
	}
	return a.log
}

// NewRootCmd builds the r9s command tree.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCmd(os.LookupEnv)
	return root
}

func newRootCmd(lookupEnv func(string) (string, bool)) (*cobra.Command, *app) {
	a := &app{lookupEnv: lookupEnv}

	root := &cobra.Command{
		Use:   "r9s",
		Short: "Chat with OpenAI-compatible endpoints from the terminal",
		Long: `r9s runs chat sessions against an OpenAI-compatible endpoint.

Sessions are saved under ~/.r9s/chat and can be resumed. Bots store
named presets (model, endpoint, system prompt, extensions).`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(a.verbose, a.getenv(EnvLogLevel))
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			printExamples(cmd, a.uiLang())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.lang, "lang", "", "UI language (en, zh-CN)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Message: err.Error()}
	})

	root.AddCommand(newChatCmd(a), newBotCmd(a))
	return root, a
}

func printExamples(cmd *cobra.Command, lang string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render(i18n.T("cli.title", lang)))
	fmt.Fprintln(out, InfoStyle.Render(i18n.T("cli.tagline", lang)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, InfoStyle.Render(i18n.T("cli.examples.title", lang)))
	for _, key := range []string{"cli.examples.chat_interactive", "cli.examples.chat_pipe", "cli.examples.resume", "cli.examples.bots"} {
		fmt.Fprintln(out, i18n.T(key, lang))
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, InfoStyle.Render(i18n.T("cli.examples.more", lang)))
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root, a := newRootCmd(os.LookupEnv)
	err := root.Execute()
	if errors.Is(err, repl.ErrInterrupted) {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, WarningStyle.Render(i18n.T("chat.msg.farewell", a.uiLang())))
	}
	DisplayError(os.Stderr, err, a.uiLang())
	return ExitCode(err)
}
