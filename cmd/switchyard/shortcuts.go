// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"switchyard-cli/internal/activation"
	"switchyard-cli/internal/registry"
	"switchyard-cli/internal/tui"
	"switchyard-cli/pkg/types"
)

var (
	listCmd = &cobra.Command{
		Use:   "list [scope]",
		Short: "List activated shortcuts",
		Long: `List every activated shortcut, or only those of one branch when a
scope (branch name or @handle) is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runList,
	}

	editCmd = &cobra.Command{
		Use:   "edit",
		Short: "Interactively rename one shortcut",
		Args:  cobra.NoArgs,
		RunE:  runEdit,
	}

	removeCmd = &cobra.Command{
		Use:   "remove <phrase>",
		Short: "Deactivate one shortcut",
		Args:  cobra.ArbitraryArgs,
		RunE:  runRemove,
	}
)

func runList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	var records []registry.ActivatedCommand
	if len(args) == 1 {
		scope := strings.TrimPrefix(args[0], "@")
		records, err = app.Activation.ListForBranch(scope)
	} else {
		records, err = app.Activation.ListAll()
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("no activated shortcuts"))
		return nil
	}

	for _, rec := range records {
		line := fmt.Sprintf("  %s → %s:%s",
			CmdStyle.Render(fmt.Sprintf("%-24s", rec.ShortcutPhrase)),
			rec.TargetBranch, rec.TargetCommandName)
		if rec.Description != "" {
			line += SubtitleStyle.Render("  " + rec.Description)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func runEdit(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	records, err := app.Activation.ListAll()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("no activated shortcuts to edit"))
		return &ExitError{Code: types.ExitFailure}
	}

	options := make([]tui.ChooseOption, len(records))
	for i, rec := range records {
		options[i] = tui.ChooseOption{
			Label: fmt.Sprintf("%s → %s:%s", rec.ShortcutPhrase, rec.TargetBranch, rec.TargetCommandName),
			Value: rec.ShortcutPhrase,
		}
	}

	oldPhrase, err := tui.Choose(tui.ChooseOptions{Title: "Shortcut to rename", Options: options})
	if err != nil {
		return err
	}
	newPhrase, err := tui.Input(tui.InputOptions{
		Title:       fmt.Sprintf("New phrase for %q", oldPhrase),
		Placeholder: oldPhrase,
		Validate: func(s string) error {
			return activation.ValidatePhrase(activation.NormalizePhrase(s))
		},
	})
	if err != nil {
		return err
	}

	if err := app.Activation.Rename(oldPhrase, newPhrase); err != nil {
		app.Logger.Warn("rename refused", "old", oldPhrase, "new", newPhrase, "error", err)
		fmt.Fprintln(os.Stderr, WarningStyle.Render(err.Error()))
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s\n",
		SuccessStyle.Render("renamed"), oldPhrase, CmdStyle.Render(activation.NormalizePhrase(newPhrase)))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("usage: switchyard remove <phrase>"))
		return &ExitError{Code: types.ExitUsage}
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	phrase := strings.Join(args, " ")
	if err := app.Activation.Deactivate(phrase); err != nil {
		var nf *activation.NotFoundError
		if errors.As(err, &nf) {
			app.Logger.Warn("unknown shortcut", "phrase", phrase)
			fmt.Fprintln(os.Stderr, WarningStyle.Render(err.Error()))
			return &ExitError{Code: types.ExitFailure, Err: err}
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("removed"), CmdStyle.Render(phrase))
	return nil
}
