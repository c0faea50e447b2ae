// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"switchyard-cli/internal/activation"
	"switchyard-cli/internal/tui"
	"switchyard-cli/pkg/types"
)

var activateCmd = &cobra.Command{
	Use:   "activate <branch-name>",
	Short: "Interactively map discovered commands to shortcut phrases",
	Args:  cobra.ArbitraryArgs,
	RunE:  runActivate,
}

func runActivate(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("usage: switchyard activate <branch-name>"))
		return &ExitError{Code: types.ExitUsage}
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	rec, err := app.Resolver.LookupByName(args[0])
	if err != nil {
		return app.failNotFound("resolve branch", args[0], err)
	}

	records, err := app.Store.LoadBranchRegistry(rec.Name)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, WarningStyle.Render(
			fmt.Sprintf("no registered commands for %s; run 'switchyard scan @%s' first", rec.Name, rec.Name)))
		return &ExitError{Code: types.ExitFailure}
	}

	// Commands already carrying a shortcut are listed but marked.
	activated, err := app.Activation.ListForBranch(rec.Name)
	if err != nil {
		return err
	}
	taken := map[string]string{}
	for _, a := range activated {
		taken[a.TargetCommandName] = a.ShortcutPhrase
	}

	var options []tui.ChooseOption
	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		r := records[key]
		label := r.CommandName
		if phrase, ok := taken[r.CommandName]; ok {
			label = fmt.Sprintf("%s (currently %q)", r.CommandName, phrase)
		}
		options = append(options, tui.ChooseOption{Label: label, Value: r.CommandName})
	}

	command, err := tui.Choose(tui.ChooseOptions{
		Title:   fmt.Sprintf("Command in %s to activate", rec.DisplayName),
		Options: options,
	})
	if err != nil {
		return err
	}

	phrase, err := tui.Input(tui.InputOptions{
		Title:       fmt.Sprintf("Shortcut phrase for %s", command),
		Placeholder: fmt.Sprintf("%s %s", rec.Name, command),
		Validate: func(s string) error {
			return activation.ValidatePhrase(activation.NormalizePhrase(s))
		},
	})
	if err != nil {
		return err
	}
	description, err := tui.Input(tui.InputOptions{
		Title:       "Description (optional)",
		Placeholder: "shown in shortcut listings",
	})
	if err != nil {
		return err
	}

	target := records[rec.Name+":"+command]
	if err := app.Activation.Activate(rec.Name, command, target.ModulePath, phrase, description); err != nil {
		app.Logger.Warn("activation refused", "phrase", phrase, "error", err)
		fmt.Fprintln(os.Stderr, WarningStyle.Render(err.Error()))
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s:%s\n",
		SuccessStyle.Render("activated"),
		CmdStyle.Render(strings.TrimSpace(activation.NormalizePhrase(phrase))),
		rec.Name, command)
	return nil
}
