// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "Summarize known branches and their registered/activated counts",
	Args:  cobra.NoArgs,
	RunE:  runSystems,
}

func runSystems(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	dir, err := app.Store.LoadBranchDirectory()
	if err != nil {
		return err
	}
	central, err := app.Store.LoadCentralRegistry()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("switchyard")+SubtitleStyle.Render(" systems"))
	fmt.Fprintln(out)

	if len(dir.Branches) == 0 {
		fmt.Fprintln(out, SubtitleStyle.Render("no branches in the directory"))
	}
	for _, rec := range dir.Branches {
		registered, err := app.Store.LoadBranchRegistry(rec.Name)
		if err != nil {
			return err
		}
		activated, err := app.Activation.ListForBranch(rec.Name)
		if err != nil {
			return err
		}
		classification := ""
		if info, ok := central.Modules[rec.Name]; ok {
			classification = "  " + SubtitleStyle.Render(info.Classification)
		}
		fmt.Fprintf(out, "  %s %-10s %d registered, %d activated%s\n",
			CmdStyle.Render(fmt.Sprintf("%-12s", rec.Handle)),
			string(rec.Status), len(registered), len(activated), classification)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, SubtitleStyle.Render("total commands: %d  ·  id counter: %d  ·  heals: %d")+"\n",
		central.Statistics.TotalCommands,
		central.GlobalIDCounter,
		central.Statistics.AutoHealingCount)
	return nil
}
