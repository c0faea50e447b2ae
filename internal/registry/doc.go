// SPDX-License-Identifier: MPL-2.0

// Package registry is the persistent source of truth for the router.
//
// Four JSON artifacts live under its care: the workspace branch directory,
// the central registry (global ID counter, statistics), per-branch
// discovered-command registries, and per-branch activated-shortcut files.
// All writes are atomic (temp sibling + fsync + rename); activation saves
// merge with existing content so sequential invocations never lose each
// other's edits. Corrupt files are auto-healed to a minimal valid
// structure, counted in the central statistics.
//
// Global command IDs are assigned under an advisory file lock so that two
// concurrent router invocations never hand out the same ID.
package registry
