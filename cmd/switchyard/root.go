// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for switchyard.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"switchyard-cli/pkg/types"
)

// Build-time variables set via ldflags.
var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

var (
	// verbose enables verbose output.
	verbose bool
	// cfgFile allows specifying a custom config file.
	cfgFile string
	// debugFlag routes verbose diagnostics to the terminal.
	debugFlag bool
)

// rootCmd represents the base command. Flag parsing is disabled so that
// branch invocations (@flow create --title x) and shortcut phrases pass
// their argv through untouched; internal subcommands still resolve by
// name and parse their own flags.
var rootCmd = &cobra.Command{
	Use:   "switchyard <command> [args...]",
	Short: "A command router for multi-branch workspaces",
	Long: TitleStyle.Render("switchyard") + SubtitleStyle.Render(" - a command router for multi-branch workspaces") + `

switchyard gives a workspace of self-contained branch subprojects a
single invocation surface. It dispatches to branch entry points,
rewrites @handle references into absolute paths, and learns branch
commands by interrogating them at runtime.

` + SubtitleStyle.Render("Routing:") + `
  switchyard @flow create @seed Title   Direct branch invocation
  switchyard @seed/imports audit        Branch-relative module
  switchyard plan create @seed Title    Activated shortcut phrase

` + SubtitleStyle.Render("Examples:") + `
  switchyard scan @flow                 Discover and register commands
  switchyard activate flow              Map commands to shortcuts
  switchyard list @flow                 List activated shortcuts
  switchyard systems                    Summarize known branches`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceErrors:      true,
	SilenceUsage:       true,
	RunE:               routeArgs,
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the router's exit
// code: 0 success, 1 general error, 2 usage, 130 interrupt.
func Execute() {
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(int(exitErr.Code))
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(int(types.ExitInterrupt))
	}
	os.Exit(int(types.ExitFailure))
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/switchyard/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "print verbose diagnostics to the terminal")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(systemsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
}
