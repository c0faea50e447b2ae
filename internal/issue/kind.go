// SPDX-License-Identifier: MPL-2.0

package issue

import "switchyard-cli/pkg/types"

// Kind classifies a router failure. Kinds determine log severity and the
// process exit code; they are deliberately coarse — kinds, not types.
type Kind int

const (
	// KindUserInput is malformed argv or a missing required positional
	// for an internal subcommand. Unknown commands and shortcuts are not
	// of this kind; they exit with ExitFailure.
	KindUserInput Kind = iota + 1
	// KindNotFound is a symbolic name or activation phrase that does not
	// resolve.
	KindNotFound
	// KindRegistryCorruption is JSON on disk that failed to parse and was
	// auto-healed.
	KindRegistryCorruption
	// KindDispatch is a child entry point that is missing, unexecutable,
	// or failed to launch.
	KindDispatch
	// KindChildFailure is a child that exited nonzero.
	KindChildFailure
	// KindTimeout is a child killed by its deadline.
	KindTimeout
	// KindDuplicatePhrase is an activation conflict.
	KindDuplicatePhrase
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindUserInput:
		return "user input error"
	case KindNotFound:
		return "not found"
	case KindRegistryCorruption:
		return "registry corruption"
	case KindDispatch:
		return "dispatch error"
	case KindChildFailure:
		return "child failure"
	case KindTimeout:
		return "timeout"
	case KindDuplicatePhrase:
		return "duplicate phrase"
	default:
		return "unknown"
	}
}

// IsWarning reports whether the kind logs at WARNING rather than ERROR.
// Unknown commands and malformed input are user mistakes, not router
// failures, and must never be logged as errors.
func (k Kind) IsWarning() bool {
	switch k {
	case KindUserInput, KindNotFound, KindDuplicatePhrase:
		return true
	default:
		return false
	}
}

// ExitCode maps the kind to the router's exit code.
func (k Kind) ExitCode() types.ExitCode {
	if k == KindUserInput {
		return types.ExitUsage
	}
	return types.ExitFailure
}
