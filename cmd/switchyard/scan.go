// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"switchyard-cli/internal/branch"
	"switchyard-cli/internal/registry"
	"switchyard-cli/internal/tui"
	"switchyard-cli/pkg/types"
)

var (
	// scanAll scans every branch in the directory.
	scanAll bool

	scanCmd = &cobra.Command{
		Use:   "scan [@branch]",
		Short: "Discover and register a branch's commands",
		Long: `Run discovery against a branch: invoke its entry point with the help
flag, scan its module sources for dispatch patterns, and register every
new command with a fresh global ID. Already-registered commands keep
their IDs. With a terminal attached, newly registered commands can be
mapped to shortcut phrases on the spot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, true)
		},
	}

	refreshCmd = &cobra.Command{
		Use:   "refresh @branch",
		Short: "Re-run discovery, merging with the existing registry",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				fmt.Fprintln(os.Stderr, WarningStyle.Render("usage: switchyard refresh @branch"))
				return &ExitError{Code: types.ExitUsage}
			}
			return runScan(cmd, args, false)
		},
	}
)

func init() {
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "scan every branch in the directory")
}

// runScan drives discovery for one branch or the whole directory.
func runScan(cmd *cobra.Command, args []string, offerActivation bool) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	targets, err := scanTargets(app, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, rec := range targets {
		result, err := app.Discovery.Discover(ctx, rec)
		if err != nil {
			return err
		}
		if len(result.Commands) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				CmdStyle.Render(rec.Handle), SubtitleStyle.Render("no commands detected"))
			continue
		}

		outcome, err := app.Discovery.Register(result)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s registered, %d new, %d existing (%s)\n",
			CmdStyle.Render(rec.Handle),
			SuccessStyle.Render(fmt.Sprintf("%d commands", len(result.Commands))),
			len(outcome.NewRecords), outcome.Existing,
			result.Classification)

		if offerActivation && len(outcome.NewRecords) > 0 && isatty.IsTerminal(os.Stdin.Fd()) {
			if err := offerActivations(cmd, app, outcome.NewRecords); err != nil {
				return err
			}
		}
	}
	return nil
}

// scanTargets resolves the scan arguments to branch records.
func scanTargets(app *App, args []string) ([]registry.BranchRecord, error) {
	if scanAll {
		dir, err := app.Store.LoadBranchDirectory()
		if err != nil {
			return nil, err
		}
		var targets []registry.BranchRecord
		for _, rec := range dir.Branches {
			if rec.Status == registry.StatusArchived {
				continue
			}
			targets = append(targets, rec)
		}
		return targets, nil
	}

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("usage: switchyard scan @branch [--all]"))
		return nil, &ExitError{Code: types.ExitUsage}
	}

	res, err := app.Resolver.Resolve(args[0])
	if err != nil || res.Kind != branch.KindBranch {
		return nil, app.failNotFound("resolve branch", args[0], err)
	}
	return []registry.BranchRecord{res.Branch}, nil
}

// offerActivations interactively maps freshly registered commands to
// shortcut phrases.
func offerActivations(cmd *cobra.Command, app *App, records []registry.CommandRecord) error {
	for _, rec := range records {
		ok, err := tui.Confirm(tui.ConfirmOptions{
			Title:       fmt.Sprintf("Activate a shortcut for %s:%s?", rec.BranchName, rec.CommandName),
			Description: "Shortcuts are 1-4 word phrases routed to this command.",
		})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		phrase, err := tui.Input(tui.InputOptions{
			Title:       fmt.Sprintf("Shortcut phrase for %s", rec.CommandName),
			Placeholder: fmt.Sprintf("%s %s", rec.BranchName, rec.CommandName),
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

		if err := app.Activation.Activate(rec.BranchName, rec.CommandName, rec.ModulePath, phrase, description); err != nil {
			app.Logger.Warn("activation refused", "phrase", phrase, "error", err)
			fmt.Fprintln(os.Stderr, WarningStyle.Render(err.Error()))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s:%s\n",
			SuccessStyle.Render("activated"), CmdStyle.Render(phrase), rec.BranchName, rec.CommandName)
	}
	return nil
}
