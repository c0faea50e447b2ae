// SPDX-License-Identifier: MPL-2.0

package activation

import (
	"strings"

	"switchyard-cli/internal/registry"
)

// Match is the outcome of progressive shortcut matching.
type Match struct {
	// Activation is the matched shortcut.
	Activation registry.ActivatedCommand
	// Tail is the argv remainder after the matched phrase tokens.
	Tail []string
}

// MatchProgressive tries candidate phrases built from the command token
// plus a growing prefix of args, longest first: command + args[0..k-1]
// for k = 3, 2, 1, 0. The 4-token ceiling is fixed. The first candidate
// with an activation wins and the unconsumed args become the tail.
//
// Returns false when no candidate matches; the router reports an unknown
// command in that case.
func (e *Engine) MatchProgressive(command string, args []string) (Match, bool, error) {
	all, err := e.loadAll()
	if err != nil {
		return Match{}, false, err
	}

	maxExtra := MaxPhraseTokens - 1
	if len(args) < maxExtra {
		maxExtra = len(args)
	}
	for k := maxExtra; k >= 0; k-- {
		candidate := strings.ToLower(strings.Join(append([]string{command}, args[:k]...), " "))
		if rec, ok := all[candidate]; ok {
			return Match{Activation: rec, Tail: args[k:]}, true, nil
		}
	}
	return Match{}, false, nil
}
