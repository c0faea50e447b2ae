// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"testing"

	"switchyard-cli/pkg/types"
)

func TestExitErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("child exited with code 7")
	err := &ExitError{Code: types.ExitFailure, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is() does not reach the cause")
	}
	if err.Error() != cause.Error() {
		t.Errorf("Error() = %q, want cause message", err.Error())
	}
}

func TestExitErrorWithoutCause(t *testing.T) {
	t.Parallel()

	err := &ExitError{Code: types.ExitUsage}
	if err.Error() == "" {
		t.Error("Error() is empty")
	}
}
