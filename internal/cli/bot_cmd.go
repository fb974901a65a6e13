// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/r9s-ai/r9s-cli/internal/bots"
	"github.com/r9s-ai/r9s-cli/internal/i18n"
)

// botStore opens the bot directory; tests point it elsewhere.
var botStore = bots.DefaultStore

func newBotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Manage local bots (~/.r9s/bots)",
	}
	cmd.AddCommand(
		newBotCreateCmd(a),
		newBotListCmd(a),
		newBotShowCmd(a),
		newBotDeleteCmd(a),
	)
	return cmd
}

func newBotCreateCmd(a *app) *cobra.Command {
	b := &bots.Bot{}

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or update a bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := a.uiLang()
			store, err := botStore()
			if err != nil {
				return err
			}
			b.Name = strings.TrimSpace(args[0])
			b.Model = strings.TrimSpace(b.Model)
			if b.Model == "" && IsTerminal(cmd.InOrStdin()) {
				model, err := promptModel(cmd.InOrStdin(), cmd.OutOrStdout(), lang)
				if err != nil {
					return err
				}
				b.Model = model
			}
			path, err := store.Save(b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(i18n.T("bot.created", lang, "name", b.Name, "path", path)))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&b.Model, "model", "", "Model name")
	flags.StringVar(&b.BaseURL, "base-url", "", "Base URL")
	flags.StringVar(&b.SystemPrompt, "system-prompt", "", "System prompt text")
	flags.StringVar(&b.SystemPromptFile, "system-prompt-file", "", "System prompt file path")
	flags.StringVar(&b.Lang, "lang", "", "Default UI language (en, zh-CN)")
	flags.StringArrayVar(&b.Extensions, "ext", nil, "Default chat extension (repeatable)")
	return cmd
}

// promptModel asks until a non-empty model is entered.
func promptModel(in io.Reader, out io.Writer, lang string) (string, error) {
	reader := bufio.NewReader(in)
	prompt := i18n.T("bot.model_prompt", lang)
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if model := strings.TrimSpace(line); model != "" {
			return model, nil
		}
		if err != nil {
			return "", bots.ErrMissingModel
		}
		prompt = ErrorStyle.Render(i18n.T("bot.model_empty", lang))
	}
}

func newBotListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := a.uiLang()
			store, err := botStore()
			if err != nil {
				return err
			}
			names, err := store.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), InfoStyle.Render(i18n.T("bot.none", lang)))
				return nil
			}

			list := make([]*bots.Bot, 0, len(names))
			for _, name := range names {
				b, err := store.Load(name)
				if err != nil {
					// Listed but unreadable; show the name only.
					b = &bots.Bot{Name: name}
				}
				list = append(list, b)
			}
			writeBotTable(cmd.OutOrStdout(), list, lang)
			return nil
		},
	}
}

func writeBotTable(w io.Writer, list []*bots.Bot, lang string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 48},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 40},
	})
	tw.AppendHeader(table.Row{
		i18n.T("bot.col.name", lang),
		i18n.T("bot.col.model", lang),
		i18n.T("bot.col.base_url", lang),
		i18n.T("bot.col.extensions", lang),
	})
	for _, b := range list {
		tw.AppendRow(table.Row{b.Name, orDash(b.Model), orDash(b.BaseURL), orDash(strings.Join(b.Extensions, ", "))})
	}
	_ = tw.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newBotShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show bot config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := botStore()
			if err != nil {
				return err
			}
			b, err := store.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render(i18n.T("bot.show.title", a.uiLang(), "name", b.Name)))
			fmt.Fprintf(out, "- model: %s\n", b.Model)
			if b.BaseURL != "" {
				fmt.Fprintf(out, "- base_url: %s\n", b.BaseURL)
			}
			if b.SystemPromptFile != "" {
				fmt.Fprintf(out, "- system_prompt_file: %s\n", b.SystemPromptFile)
			}
			if b.SystemPrompt != "" {
				fmt.Fprintln(out, "- system_prompt: (set)")
			}
			if b.Lang != "" {
				fmt.Fprintf(out, "- lang: %s\n", b.Lang)
			}
			if len(b.Extensions) > 0 {
				fmt.Fprintf(out, "- extensions: %s\n", strings.Join(b.Extensions, ", "))
			}
			return nil
		},
	}
}

func newBotDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := a.uiLang()
			name := strings.TrimSpace(args[0])
			store, err := botStore()
			if err != nil {
				return err
			}

			if !yes {
				if !IsTerminal(cmd.InOrStdin()) {
					return &TTYRequiredError{Operation: "confirm deletion (use --yes)"}
				}
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), WarningStyle.Render(i18n.T("bot.delete.confirm", lang, "name", name)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), i18n.T("bot.delete.cancelled", lang))
					return nil
				}
			}

			path, err := store.Delete(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(i18n.T("bot.deleted", lang, "name", name, "path", path)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

// confirm prints prompt and reports whether the answer is y or yes.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
