// SPDX-License-Identifier: MPL-2.0

package issue_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"switchyard-cli/internal/issue"
	"switchyard-cli/pkg/types"
)

func TestActionableErrorMessage(t *testing.T) {
	t.Parallel()

	cause := errors.New("no such file")
	err := issue.NewErrorContext().
		WithKind(issue.KindDispatch).
		WithOperation("spawn entry point").
		WithResource("/ws/core/flow/apps/flow").
		Wrap(cause).
		Build()

	want := "spawn entry point: /ws/core/flow/apps/flow: no such file"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() does not reach the cause")
	}
	if err.Kind() != issue.KindDispatch {
		t.Errorf("Kind() = %v, want KindDispatch", err.Kind())
	}
}

func TestFormatRendersSuggestionsAsHints(t *testing.T) {
	t.Parallel()

	err := issue.NewErrorContext().
		WithKind(issue.KindNotFound).
		WithOperation("resolve branch").
		WithResource("@nope").
		WithSuggestion("Run 'switchyard systems' to list known branches").
		Build()

	out := err.Format(false)
	if !strings.Contains(out, "hint: Run 'switchyard systems'") {
		t.Errorf("Format() missing hint line: %q", out)
	}
}

func TestFormatVerboseChainsErrorBandOnly(t *testing.T) {
	t.Parallel()

	root := errors.New("socket closed")
	mid := fmt.Errorf("loader failed: %w", root)

	errorBand := issue.NewErrorContext().
		WithKind(issue.KindDispatch).
		WithOperation("launch module").
		Wrap(mid).
		Build()
	out := errorBand.Format(true)
	if !strings.Contains(out, "caused by: socket closed") {
		t.Errorf("Format(true) on error-band kind missing cause chain: %q", out)
	}

	// User mistakes stay terse even in verbose mode.
	warnBand := issue.NewErrorContext().
		WithKind(issue.KindNotFound).
		WithOperation("resolve branch").
		Wrap(mid).
		Build()
	out = warnBand.Format(true)
	if strings.Contains(out, "caused by:") {
		t.Errorf("Format(true) on warning-band kind rendered a chain: %q", out)
	}
}

func TestFormatNonVerboseOmitsChain(t *testing.T) {
	t.Parallel()

	root := errors.New("root cause")
	err := issue.NewErrorContext().
		WithKind(issue.KindTimeout).
		WithOperation("wait for child").
		Wrap(fmt.Errorf("deadline: %w", root)).
		Build()

	if out := err.Format(false); strings.Contains(out, "caused by:") {
		t.Errorf("Format(false) rendered a chain: %q", out)
	}
}

func TestBuildRequiresOperation(t *testing.T) {
	t.Parallel()

	if err := issue.NewErrorContext().WithResource("x").BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}
}

func TestKindSeverityAndExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind        issue.Kind
		wantWarning bool
		wantExit    types.ExitCode
	}{
		{issue.KindUserInput, true, types.ExitUsage},
		{issue.KindNotFound, true, types.ExitFailure},
		{issue.KindDuplicatePhrase, true, types.ExitFailure},
		{issue.KindRegistryCorruption, false, types.ExitFailure},
		{issue.KindDispatch, false, types.ExitFailure},
		{issue.KindChildFailure, false, types.ExitFailure},
		{issue.KindTimeout, false, types.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			if got := tt.kind.IsWarning(); got != tt.wantWarning {
				t.Errorf("IsWarning() = %v, want %v", got, tt.wantWarning)
			}
			if got := tt.kind.ExitCode(); got != tt.wantExit {
				t.Errorf("ExitCode() = %v, want %v", got, tt.wantExit)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	err := issue.WrapWithOperation(errors.New("boom"), issue.KindTimeout, "wait for child")
	if got := issue.KindOf(err); got != issue.KindTimeout {
		t.Errorf("KindOf() = %v, want KindTimeout", got)
	}
	if got := issue.KindOf(errors.New("plain")); got != 0 {
		t.Errorf("KindOf(plain) = %v, want 0", got)
	}
}
