// SPDX-License-Identifier: MPL-2.0

package supervise

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"

	"switchyard-cli/internal/notify"
	"switchyard-cli/pkg/types"
)

// OutcomeClass classifies how a child run ended.
type OutcomeClass string

const (
	// OutcomeSuccess is exit 0.
	OutcomeSuccess OutcomeClass = "success"
	// OutcomeFailed is a nonzero exit.
	OutcomeFailed OutcomeClass = "failed"
	// OutcomeTimeout is a child killed by its deadline.
	OutcomeTimeout OutcomeClass = "timeout"
	// OutcomeLaunchError is a child that never started: missing file,
	// permission denied, loader failure.
	OutcomeLaunchError OutcomeClass = "launch_error"
)

type (
	// Request describes one child execution.
	Request struct {
		// BranchName is the target branch, when known (events only).
		BranchName string
		// ModulePath is the absolute module file to spawn.
		ModulePath string
		// Args is the preprocessed argv tail for the child.
		Args []string
		// Timeout is the effective deadline; Unlimited means none.
		Timeout time.Duration
		// Stdin/Stdout/Stderr default to the router's own stdio so
		// children print directly.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result is the supervision outcome.
	Result struct {
		// Class is the outcome classification.
		Class OutcomeClass
		// ExitCode is the child's exit code (meaningful for success and
		// failed).
		ExitCode types.ExitCode
		// Duration is the child's wall time.
		Duration time.Duration
		// Err carries launch or wait errors for the dispatch layer.
		Err error
	}

	// Supervisor spawns children and reports failures upstream.
	Supervisor struct {
		invocationID string
		notifier     notify.Notifier
		logger       *log.Logger
		now          func() time.Time
	}
)

// NewSupervisor creates a Supervisor. The invocation ID tags failure
// events from this router run.
func NewSupervisor(invocationID string, notifier notify.Notifier, logger *log.Logger) *Supervisor {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Supervisor{
		invocationID: invocationID,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// Run spawns the module as a child process, waits for it within the
// request's deadline, and classifies the outcome. Stdio is inherited by
// default. Every non-success outcome emits a failure notification whose
// own delivery failure is swallowed.
func (s *Supervisor) Run(ctx context.Context, req Request) Result {
	runCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > Unlimited {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, req.ModulePath, req.Args...)
	cmd.Stdin = req.Stdin
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	// Once the deadline kills the child, stop waiting for piped stdio
	// that a surviving grandchild may still hold open.
	cmd.WaitDelay = time.Second

	start := s.now()
	if err := cmd.Start(); err != nil {
		result := Result{Class: OutcomeLaunchError, ExitCode: types.ExitFailure, Err: err}
		s.report(ctx, req, result)
		return result
	}

	err := cmd.Wait()
	result := Result{Duration: s.now().Sub(start)}

	switch {
	case err == nil:
		result.Class = OutcomeSuccess
		result.ExitCode = types.ExitSuccess
	case runCtx.Err() == context.DeadlineExceeded:
		result.Class = OutcomeTimeout
		result.ExitCode = types.ExitFailure
		result.Err = runCtx.Err()
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Class = OutcomeFailed
			result.ExitCode = types.FromChildStatus(exitErr.ExitCode())
			result.Err = err
		} else {
			result.Class = OutcomeLaunchError
			result.ExitCode = types.ExitFailure
			result.Err = err
		}
	}

	if result.Class != OutcomeSuccess {
		s.report(ctx, req, result)
	}
	return result
}

// report logs the failure and emits the outbound event.
func (s *Supervisor) report(ctx context.Context, req Request, result Result) {
	s.logger.Error("child did not succeed",
		"module", req.ModulePath,
		"outcome", string(result.Class),
		"exit_code", int(result.ExitCode),
		"duration", result.Duration,
		"error", result.Err)

	s.notifier.NotifyFailure(ctx, notify.Event{
		InvocationID: s.invocationID,
		BranchName:   req.BranchName,
		ModulePath:   req.ModulePath,
		ArgvSummary:  notify.SummarizeArgv(req.Args),
		Outcome:      string(result.Class),
		ExitCode:     int(result.ExitCode),
		DurationMS:   result.Duration.Milliseconds(),
		Timestamp:    s.now(),
	})
}
