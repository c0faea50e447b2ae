// SPDX-License-Identifier: MPL-2.0

package argv

import (
	"strings"

	"switchyard-cli/internal/branch"
)

// Resolver is the subset of the branch resolver preprocessing needs.
type Resolver interface {
	Resolve(target string) (branch.Resolution, error)
}

// Preprocess walks args and replaces each token that begins with "@" with
// the resolved absolute path. The "@all" sentinel passes through
// verbatim, as does any token whose name cannot be resolved — the
// downstream child produces its own error for those. Subpaths after a
// "/" are appended without existence validation.
//
// Preprocess is idempotent: running it on its own output is a no-op,
// because every rewritten token is an absolute path that no longer
// starts with "@".
func Preprocess(args []string, resolver Resolver) []string {
	out := make([]string, len(args))
	for i, tok := range args {
		out[i] = preprocessToken(tok, resolver)
	}
	return out
}

// preprocessToken rewrites a single token per the contract above.
func preprocessToken(tok string, resolver Resolver) string {
	if tok == branch.AllSentinel {
		return tok
	}
	if !strings.HasPrefix(tok, "@") {
		return tok
	}

	handle, rest, hasSub := strings.Cut(tok, "/")
	res, err := resolver.Resolve(handle)
	if err != nil {
		return tok
	}

	var root string
	switch res.Kind {
	case branch.KindBranch:
		root = res.Branch.RootPath
	case branch.KindWorkspace:
		root = res.Path
	default:
		return tok
	}

	if hasSub {
		return root + "/" + rest
	}
	return root
}
