// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"switchyard-cli/pkg/types"
)

// ExitError carries a specific process exit code out of a command
// handler. The user-facing message, if any, was already rendered by the
// handler; Execute only maps the code.
type ExitError struct {
	// Code is the router's exit code.
	Code types.ExitCode
	// Err is the underlying error, when one exists.
	Err error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %s", e.Code)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ExitError) Unwrap() error { return e.Err }
