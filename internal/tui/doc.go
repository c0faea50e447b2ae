// SPDX-License-Identifier: MPL-2.0

// Package tui wraps the interactive prompt components the router's scan,
// activate, and edit flows use. The functional cores of those flows stay
// pure; these prompts are the thin interactive shell over them.
package tui
