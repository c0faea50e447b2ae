// SPDX-License-Identifier: MPL-2.0

// Package branch resolves symbolic branch references. It is the single
// source of truth for "what is this name": @handle, bare name, or
// absolute path in, canonical BranchRecord out. The resolver is strictly
// read-only over the branch directory; ad-hoc records produced by the
// filesystem fallback are never persisted.
package branch
