// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"switchyard-cli/internal/argv"
	"switchyard-cli/internal/branch"
	"switchyard-cli/internal/supervise"
	"switchyard-cli/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <command-token> <module-file> [args...]",
	Short: "Low-level pass-through: spawn a module file directly",
	Long: `Resolve a module file against the known search paths (current
directory, workspace root, workspace core), preprocess the argv tail,
and spawn it. The command token feeds the timeout policy exactly as it
would for a routed invocation.`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	RunE:               runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("usage: switchyard run <command-token> <module-file> [args...]"))
		return &ExitError{Code: types.ExitUsage}
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	command, moduleArg, tail := args[0], args[1], args[2:]
	modulePath, err := resolveModuleFile(app, moduleArg)
	if err != nil {
		app.Logger.Error("module file not found", "module", moduleArg)
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	childArgs := argv.Preprocess(append([]string{command}, tail...), app.Resolver)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	branchName := branch.NameFromPath(filepath.Dir(modulePath))
	return app.dispatch(ctx, "run", branchName, supervise.Request{
		BranchName: branchName,
		ModulePath: modulePath,
		Args:       childArgs,
		Timeout:    app.Policy.Effective(command, app.Policy.WantsUnlimited(args)),
	})
}

// resolveModuleFile locates a module file: absolute paths are used as
// given; relative ones are probed against the search paths.
func resolveModuleFile(app *App, module string) (string, error) {
	if filepath.IsAbs(module) {
		return module, nil
	}
	searchPaths := []string{
		".",
		app.Config.WorkspaceRoot,
		filepath.Join(app.Config.WorkspaceRoot, "core"),
	}
	for _, base := range searchPaths {
		candidate := filepath.Join(base, module)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", err
			}
			return abs, nil
		}
	}
	return "", fmt.Errorf("module file not found in search paths: %s", module)
}
