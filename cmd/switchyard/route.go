// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"switchyard-cli/internal/argv"
	"switchyard-cli/internal/branch"
	"switchyard-cli/internal/issue"
	"switchyard-cli/internal/registry"
	"switchyard-cli/internal/supervise"
	"switchyard-cli/pkg/types"
)

// timeRounding trims sub-tenth noise from durations in terminal output.
const timeRounding = 100 * time.Millisecond

// timeNow is the clock used for operation-log stamps.
var timeNow = time.Now

// RouteClass is the routing path an invocation takes. Internal
// subcommands are resolved by Cobra before classification runs, so they
// never appear here.
type RouteClass int

const (
	// RouteModules prints the internal module listing (no arguments).
	RouteModules RouteClass = iota
	// RouteHelp prints the help text.
	RouteHelp
	// RouteSlash dispatches to a branch-relative module (@branch/module).
	RouteSlash
	// RouteDirect dispatches to a branch entry point (@branch).
	RouteDirect
	// RouteShortcut tries progressive shortcut matching.
	RouteShortcut
)

// Classify maps argv to its routing path. First match wins, in the
// documented order.
func Classify(args []string) RouteClass {
	if len(args) == 0 {
		return RouteModules
	}
	switch args[0] {
	case "help", "--help", "-h":
		return RouteHelp
	}
	if strings.HasPrefix(args[0], "@") {
		if strings.Contains(args[0], "/") {
			return RouteSlash
		}
		return RouteDirect
	}
	return RouteShortcut
}

// routeArgs is the root fallback handler: everything that is not an
// internal subcommand lands here and is routed.
func routeArgs(cmd *cobra.Command, args []string) error {
	switch Classify(args) {
	case RouteModules:
		printInternalModules(cmd)
		return nil
	case RouteHelp:
		return cmd.Help()
	}

	app, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	ctx := cmd.Context()
	switch Classify(args) {
	case RouteSlash:
		return app.routeSlash(ctx, args)
	case RouteDirect:
		return app.routeDirect(ctx, args)
	default:
		return app.routeShortcut(ctx, args)
	}
}

// printInternalModules renders the static dispatch table of internal
// router commands.
func printInternalModules(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("switchyard")+SubtitleStyle.Render(" internal modules"))
	fmt.Fprintln(out)
	for _, sub := range cmd.Root().Commands() {
		if sub.Hidden {
			continue
		}
		fmt.Fprintf(out, "  %s  %s\n", CmdStyle.Render(fmt.Sprintf("%-10s", sub.Name())), sub.Short)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, SubtitleStyle.Render("Use @<branch> to invoke a branch, or an activated shortcut phrase."))
}

// routeDirect handles "@branch args...": resolve the branch, spawn its
// entry point with the preprocessed tail.
func (a *App) routeDirect(ctx context.Context, args []string) error {
	res, err := a.Resolver.Resolve(args[0])
	if err != nil || res.Kind != branch.KindBranch {
		return a.failNotFound("resolve branch", args[0], err)
	}

	entryPoint, err := a.Resolver.EntryPoint(res.Branch)
	if err != nil {
		ae := issue.NewErrorContext().
			WithKind(issue.KindDispatch).
			WithOperation("locate entry point").
			WithResource(res.Branch.Handle).
			WithSuggestion("Branches expose an entry point at {root}/apps/{name}").
			Wrap(err).
			Build()
		return a.fail(ae)
	}

	childArgs := argv.Preprocess(args[1:], a.Resolver)
	command := ""
	if len(childArgs) > 0 {
		command = childArgs[0]
	}

	return a.dispatch(ctx, "direct", res.Branch.Name, supervise.Request{
		BranchName: res.Branch.Name,
		ModulePath: entryPoint,
		Args:       childArgs,
		Timeout:    a.Policy.Effective(command, a.Policy.WantsUnlimited(args)),
	})
}

// routeSlash handles "@branch/module args...": the path right of the
// first slash is appended to the branch root and spawned directly. The
// subpath is not validated here; a missing module surfaces as the
// child's own launch error.
func (a *App) routeSlash(ctx context.Context, args []string) error {
	handle, subpath, _ := strings.Cut(args[0], "/")

	res, err := a.Resolver.Resolve(handle)
	if err != nil {
		return a.failNotFound("resolve branch", handle, err)
	}

	var root, branchName string
	switch res.Kind {
	case branch.KindBranch:
		root = res.Branch.RootPath
		branchName = res.Branch.Name
	case branch.KindWorkspace:
		root = res.Path
	default:
		return a.failNotFound("resolve branch", handle, nil)
	}

	modulePath := root + "/" + subpath
	childArgs := argv.Preprocess(args[1:], a.Resolver)
	command := ""
	if len(childArgs) > 0 {
		command = childArgs[0]
	}

	return a.dispatch(ctx, "slash", branchName, supervise.Request{
		BranchName: branchName,
		ModulePath: modulePath,
		Args:       childArgs,
		Timeout:    a.Policy.Effective(command, a.Policy.WantsUnlimited(args)),
	})
}

// routeShortcut runs progressive matching over the activation set. The
// matched command name is prepended to the unconsumed tail and the result
// is preprocessed, so "plan create @seed Title" reaches the child as
// "create /ws/seed Title" for the shortcut "plan create".
func (a *App) routeShortcut(ctx context.Context, args []string) error {
	match, ok, err := a.Activation.MatchProgressive(args[0], args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	if !ok {
		a.Logger.Warn("unknown command", "token", args[0])
		fmt.Fprintln(os.Stderr, WarningStyle.Render("unknown command: "+args[0]))
		return &ExitError{Code: types.ExitFailure}
	}

	childArgs := append([]string{match.Activation.TargetCommandName}, match.Tail...)
	childArgs = argv.Preprocess(childArgs, a.Resolver)

	return a.dispatch(ctx, "shortcut", match.Activation.TargetBranch, supervise.Request{
		BranchName: match.Activation.TargetBranch,
		ModulePath: match.Activation.TargetModulePath,
		Args:       childArgs,
		Timeout: a.Policy.Effective(match.Activation.TargetCommandName,
			a.Policy.WantsUnlimited(args)),
	})
}

// dispatch runs the child under supervision, records the operation, and
// maps the outcome to the router's exit behavior.
func (a *App) dispatch(ctx context.Context, op, target string, req supervise.Request) error {
	if ctx == nil {
		ctx = context.Background()
	}
	result := a.Supervisor.Run(ctx, req)
	a.recordOperation(op, target, result)

	if errors.Is(ctx.Err(), context.Canceled) {
		return &ExitError{Code: types.ExitInterrupt, Err: ctx.Err()}
	}

	switch result.Class {
	case supervise.OutcomeSuccess:
		return nil
	case supervise.OutcomeTimeout:
		return a.fail(issue.NewErrorContext().
			WithKind(issue.KindTimeout).
			WithOperation(fmt.Sprintf("wait for %s (killed after %s)", req.ModulePath, result.Duration.Round(timeRounding))).
			Wrap(result.Err).
			Build())
	case supervise.OutcomeLaunchError:
		return a.fail(issue.NewErrorContext().
			WithKind(issue.KindDispatch).
			WithOperation("launch module").
			WithResource(req.ModulePath).
			Wrap(result.Err).
			Build())
	default:
		return a.fail(issue.NewErrorContext().
			WithKind(issue.KindChildFailure).
			WithOperation(fmt.Sprintf("run %s (exit code %s)", req.ModulePath, result.ExitCode)).
			Build())
	}
}

// fail renders one terminal line for a classified failure and maps it to
// the router's exit code. WARNING-band kinds render in the warning
// style; everything else is an error. The supervisor already logged
// child outcomes, so only the terminal line is produced here.
func (a *App) fail(ae *issue.ActionableError) error {
	msg := ae.Format(debugFlag)
	if ae.Kind().IsWarning() {
		fmt.Fprintln(os.Stderr, WarningStyle.Render(msg))
	} else {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+msg)
	}
	return &ExitError{Code: ae.Kind().ExitCode(), Err: ae}
}

// recordOperation appends to the bounded operation ring and bumps the
// data counters. Bookkeeping failures never affect routing.
func (a *App) recordOperation(op, target string, result supervise.Result) {
	if err := a.Store.AppendOperation(registry.OperationEntry{
		Timestamp:  timeNow(),
		Op:         op,
		Target:     target,
		Outcome:    string(result.Class),
		DurationMS: result.Duration.Milliseconds(),
	}); err != nil {
		a.Logger.Debug("failed to append operation log", "error", err)
	}

	data, err := a.Store.LoadOperationalData()
	if err != nil {
		a.Logger.Debug("failed to load operational data", "error", err)
		return
	}
	data.Invocations++
	if result.Class != supervise.OutcomeSuccess {
		data.Failures++
	}
	if err := a.Store.SaveOperationalData(data); err != nil {
		a.Logger.Debug("failed to save operational data", "error", err)
	}
}

// failNotFound logs at WARNING and renders the not-found line.
func (a *App) failNotFound(operation, target string, cause error) error {
	a.Logger.Warn(operation+" failed", "target", target)
	msg := fmt.Sprintf("branch not found: %s", target)
	if cause != nil {
		msg = cause.Error()
	}
	fmt.Fprintln(os.Stderr, WarningStyle.Render(msg))
	return &ExitError{Code: types.ExitFailure, Err: cause}
}
