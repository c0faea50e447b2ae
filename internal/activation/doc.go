// SPDX-License-Identifier: MPL-2.0

// Package activation maps discovered commands to the shortcut phrases
// humans type. Phrases are 1-4 lowercase tokens, globally unique across
// every branch's activation file; uniqueness is checked with a single
// pass over all files. The interactive surfaces live in the CLI layer;
// the engine here is a pure API over the registry store.
package activation
