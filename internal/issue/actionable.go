// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"slices"
	"strings"
)

type (
	// ActionableError is a classified router failure with the context the
	// terminal line needs: what operation failed, on which resource, how
	// to fix it, and which Kind it belongs to. The Kind drives
	// presentation — user mistakes render terse, router failures carry
	// their diagnostic chain. Fields are unexported for immutability; use
	// the accessors.
	//
	// Use the ErrorContext builder for construction:
	//
	//	err := issue.NewErrorContext().
	//		WithKind(issue.KindNotFound).
	//		WithOperation("resolve branch").
	//		WithResource("@flow").
	//		WithSuggestion("Run 'switchyard systems' to list known branches").
	//		Wrap(originalErr).
	//		Build()
	ActionableError struct {
		kind        Kind
		operation   string
		resource    string
		suggestions []string
		cause       error
	}

	// ErrorContext is a builder for ActionableError instances.
	ErrorContext struct {
		kind        Kind
		operation   string
		resource    string
		suggestions []string
		cause       error
	}
)

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WrapWithOperation classifies an existing error under a kind and
// operation, for paths that need no resource or suggestions.
func WrapWithOperation(err error, kind Kind, operation string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{kind: kind, operation: operation, cause: err}
}

// --- Accessors ---

// Kind returns the failure classification.
func (e *ActionableError) Kind() Kind { return e.kind }

// Operation returns the operation that was being attempted.
func (e *ActionableError) Operation() string { return e.operation }

// Resource returns the file, path, or entity involved (may be empty).
func (e *ActionableError) Resource() string { return e.resource }

// Suggestions returns a copy of the fix suggestions (may be empty).
func (e *ActionableError) Suggestions() []string { return slices.Clone(e.suggestions) }

// Cause returns the underlying error (may be nil).
func (e *ActionableError) Cause() error { return e.cause }

// --- ActionableError methods ---

// Error implements the error interface: operation, resource, and cause
// joined into one line. Severity styling belongs to the caller; the
// message itself stays band-neutral so logs and terminals can frame it
// differently.
func (e *ActionableError) Error() string {
	parts := make([]string, 0, 3)
	if e.operation != "" {
		parts = append(parts, e.operation)
	}
	if e.resource != "" {
		parts = append(parts, e.resource)
	}
	if e.cause != nil {
		parts = append(parts, e.cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause for use with errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.cause
}

// Format renders the terminal text for the failure, routed by Kind.
//
// WARNING-band kinds (user mistakes: unknown names, duplicate phrases,
// malformed input) stay terse in every mode — one line plus hints; a
// diagnostic chain would be noise for a typo. ERROR-band kinds append
// the full cause chain when verbose is set:
//
//	<operation>: <resource>: <cause>
//	hint: <suggestion>
//	caused by: <next cause in the chain>
func (e *ActionableError) Format(verbose bool) string {
	lines := []string{e.Error()}

	for _, suggestion := range e.suggestions {
		lines = append(lines, "hint: "+suggestion)
	}

	if verbose && !e.kind.IsWarning() && e.cause != nil {
		for err := errors.Unwrap(e.cause); err != nil; err = errors.Unwrap(err) {
			lines = append(lines, "caused by: "+err.Error())
		}
	}

	return strings.Join(lines, "\n")
}

// HasSuggestions returns true if the error has any suggestions.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.suggestions) > 0
}

// --- ErrorContext methods ---

// WithKind sets the failure classification.
func (c *ErrorContext) WithKind(k Kind) *ErrorContext {
	c.kind = k
	return c
}

// WithOperation sets the operation being performed. The operation should
// be a verb phrase like "resolve branch" or "activate shortcut".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the resource (file, path, entity) involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion adds a suggestion for how to fix the issue. Can be
// called multiple times.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// Wrap wraps an underlying error as the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build creates an ActionableError from the context. Returns nil if no
// operation is set (operation is required).
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}

	return &ActionableError{
		kind:        c.kind,
		operation:   c.operation,
		resource:    c.resource,
		suggestions: c.suggestions,
		cause:       c.cause,
	}
}

// BuildError creates an ActionableError typed as error, for direct use in
// return statements. Returns nil if no operation is set.
func (c *ErrorContext) BuildError() error {
	ae := c.Build()
	if ae == nil {
		return nil
	}
	return ae
}

// KindOf extracts the Kind from an error chain; zero means unclassified.
func KindOf(err error) Kind {
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae.kind
	}
	return 0
}
