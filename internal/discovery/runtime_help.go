// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// helpLinePattern matches the structured command line a routable branch
// prints in response to the help flag: a keyword token, a colon, and a
// comma-separated list of command tokens (whitespace tolerated).
var helpLinePattern = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9_-]*)\s*:\s*(\S.*)$`)

// commandTokenPattern validates a single command verb.
var commandTokenPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// IntrospectHelp invokes the branch entry point with the help flag and
// parses the first structured command line from its stdout. A timeout,
// non-zero exit, or unparseable output yields the empty set — runtime
// introspection failing is a recognized outcome, not an error.
func IntrospectHelp(ctx context.Context, entryPoint, helpFlag string, timeout time.Duration) []string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, entryPoint, helpFlag)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return nil
	}
	return ParseHelpOutput(stdout.String())
}

// ParseHelpOutput extracts command tokens from help text: the first line
// matching the keyword-colon-list pattern wins. Tokens beginning with
// "-" are flags, not commands, and are dropped.
func ParseHelpOutput(output string) []string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		m := helpLinePattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		commands := parseCommandList(m[2])
		if len(commands) > 0 {
			return commands
		}
	}
	return nil
}

// parseCommandList splits a comma-separated token list, dropping flags.
// Any other token that is not a bare command verb rejects the whole list
// (nil), since the line is then not a command list.
func parseCommandList(list string) []string {
	var commands []string
	for _, raw := range strings.Split(list, ",") {
		tok := strings.TrimSpace(raw)
		if tok == "" || strings.HasPrefix(tok, "-") {
			continue
		}
		if !commandTokenPattern.MatchString(tok) {
			return nil // not the structured command line after all
		}
		commands = append(commands, strings.ToLower(tok))
	}
	return commands
}
