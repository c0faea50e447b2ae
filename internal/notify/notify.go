// SPDX-License-Identifier: MPL-2.0

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type (
	// Event is the structured failure record sent to the event sink.
	Event struct {
		// InvocationID identifies the router run that observed the
		// failure.
		InvocationID string `json:"invocation_id"`
		// BranchName is the target branch, when known.
		BranchName string `json:"branch_name,omitempty"`
		// ModulePath is the module the supervisor attempted to spawn.
		ModulePath string `json:"module_path"`
		// ArgvSummary is the child argv with secret-looking values
		// redacted.
		ArgvSummary string `json:"argv_summary"`
		// Outcome is the supervision outcome class.
		Outcome string `json:"outcome"`
		// ExitCode is the child's exit code, when it ran.
		ExitCode int `json:"exit_code"`
		// DurationMS is the child's wall time in milliseconds.
		DurationMS int64 `json:"duration_ms"`
		// Timestamp is when the outcome was observed.
		Timestamp time.Time `json:"timestamp"`
	}

	// Notifier delivers failure events.
	Notifier interface {
		NotifyFailure(ctx context.Context, event Event)
	}

	// HTTPNotifier posts events as JSON to a sink URL.
	HTTPNotifier struct {
		sinkURL string
		client  *http.Client
		logger  *log.Logger
	}

	// NopNotifier discards events. Used when no sink is configured.
	NopNotifier struct{}
)

// sensitiveArg matches key=value tokens whose key suggests a secret.
var sensitiveArg = regexp.MustCompile(`(?i)^(?:--?)?([\w-]*(?:token|secret|password|passwd|key|credential)[\w-]*)=(.+)$`)

// NewHTTPNotifier creates a Notifier posting to sinkURL. An empty URL
// yields a NopNotifier.
func NewHTTPNotifier(sinkURL string, timeout time.Duration, logger *log.Logger) Notifier {
	if sinkURL == "" {
		return NopNotifier{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPNotifier{
		sinkURL: sinkURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// NotifyFailure posts the event. Failures are logged at debug level and
// swallowed — the notification must never alter the router's outcome.
func (n *HTTPNotifier) NotifyFailure(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Debug("failed to encode failure event", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.sinkURL, bytes.NewReader(payload))
	if err != nil {
		n.logger.Debug("failed to build failure notification", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Debug("failure notification not delivered", "error", err)
		return
	}
	resp.Body.Close()
}

// NotifyFailure discards the event.
func (NopNotifier) NotifyFailure(context.Context, Event) {}

// SummarizeArgv joins argv for the event payload, masking values of
// secret-looking key=value tokens.
func SummarizeArgv(args []string) string {
	out := make([]string, len(args))
	for i, arg := range args {
		if m := sensitiveArg.FindStringSubmatch(arg); m != nil {
			out[i] = strings.TrimSuffix(arg, m[2]) + "***"
			continue
		}
		out[i] = arg
	}
	return strings.Join(out, " ")
}
