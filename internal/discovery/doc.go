// SPDX-License-Identifier: MPL-2.0

// Package discovery learns what commands a branch exposes.
//
// Two methods feed one merged result: runtime introspection (spawn the
// entry point with a help flag and parse its command line) and a static
// source scan of the branch's module files for dispatch patterns. The
// runtime method is authoritative on conflicts. Newly seen commands are
// registered with globally unique, monotonic IDs; re-scanning a branch
// assigns nothing new.
package discovery
