// SPDX-License-Identifier: MPL-2.0

package supervise

import (
	"strings"
	"time"

	"switchyard-cli/internal/config"
)

// Unlimited is the timeout value meaning "no deadline".
const Unlimited time.Duration = 0

// TimeoutPolicy computes child deadlines from the configured keyword
// lists. Two layers cooperate:
//
//   - Layer 1 (caller hint): any argv token matching the long-running
//     keyword list makes the caller pass an unlimited hint.
//   - Layer 2 (supervisor default): an unlimited hint is mapped back to
//     the long bounded timeout when the command sits in the smaller
//     allowlist; other hinted commands truly run without deadline.
//     Without a hint, the default timeout applies.
type TimeoutPolicy struct {
	cfg config.SuperviseConfig
}

// NewTimeoutPolicy creates a policy over the supervision config.
func NewTimeoutPolicy(cfg config.SuperviseConfig) TimeoutPolicy {
	return TimeoutPolicy{cfg: cfg}
}

// WantsUnlimited is Layer 1: it reports whether any argv token matches
// the long-running keyword list (case-insensitive).
func (p TimeoutPolicy) WantsUnlimited(argv []string) bool {
	for _, tok := range argv {
		for _, kw := range p.cfg.LongRunningKeywords {
			if strings.EqualFold(tok, kw) {
				return true
			}
		}
	}
	return false
}

// Effective is Layer 2: it maps the caller's hint and the command token
// to the deadline the child actually gets. Zero means no deadline.
func (p TimeoutPolicy) Effective(command string, unlimitedHint bool) time.Duration {
	if !unlimitedHint {
		return time.Duration(p.cfg.DefaultTimeoutSeconds) * time.Second
	}
	for _, allowed := range p.cfg.LongBoundedCommands {
		if strings.EqualFold(command, allowed) {
			return time.Duration(p.cfg.LongTimeoutSeconds) * time.Second
		}
	}
	return Unlimited
}
