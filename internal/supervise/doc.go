// SPDX-License-Identifier: MPL-2.0

// Package supervise runs branch modules as child processes. It owns the
// two-layer timeout policy, classifies outcomes (success, failed,
// timeout, launch_error), and emits best-effort failure notifications
// for every non-success outcome.
package supervise
