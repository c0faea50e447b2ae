// SPDX-License-Identifier: MPL-2.0

// Package argv rewrites argument vectors before a child is spawned.
// Tokens beginning with "@" become absolute branch paths; everything else
// passes through untouched. Preprocessing is pure and idempotent.
package argv
