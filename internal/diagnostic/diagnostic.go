// Package diagnostic is the home for the validator's error taxonomy:
// every failure the pipeline parser, shell linter, conditional validator
// and semantic checker can produce carries a Category, a message, and a
// span locating the offending token in the original DSL text.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/buildkite/pipeline-validator/internal/span"
)

// Category classifies a Diagnostic per the error taxonomy.
type Category string

const (
	Structural         Category = "structural"
	DuplicateKey       Category = "duplicate-key"
	UnknownDependency  Category = "unknown-dependency"
	RawCommandRejected Category = "raw-command-rejected"
	ShellLint          Category = "shell-lint"
	UnknownCommand     Category = "unknown-command"
	MissingPath        Category = "missing-path"
	MissingEnvVar      Category = "missing-env-var"
	BadRegex           Category = "bad-regex"
	BadConditional     Category = "bad-conditional"
)

// accumulated reports whether diagnostics of this category are accumulated
// (validation continues) rather than fatal-and-abort-on-first.
var accumulated = map[Category]bool{
	BadRegex:       true,
	BadConditional: true,
}

// Accumulated reports whether c's recovery policy is "accumulate and keep
// validating" (per spec §7) as opposed to "abort the enclosing unit".
func (c Category) Accumulated() bool { return accumulated[c] }

// Diagnostic is a single validator error or warning.
type Diagnostic struct {
	Category Category
	Message  string
	Span     span.Span

	// Hints are additional remediation lines appended to Message when
	// rendered, e.g. "add FOO to env: or expected_env:".
	Hints []string
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", d.Span, d.Category, d.Message)
	for _, h := range d.Hints {
		fmt.Fprintf(&b, "\n  hint: %s", h)
	}
	return b.String()
}

// New builds a Diagnostic with no hints.
func New(cat Category, sp span.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Category: cat, Message: fmt.Sprintf(format, args...), Span: sp}
}

// WithHints returns a copy of d with the given remediation hints appended.
func (d Diagnostic) WithHints(hints ...string) Diagnostic {
	d.Hints = append(append([]string{}, d.Hints...), hints...)
	return d
}

// Diagnostics accumulates Diagnostic values across a validation pass. A
// Diagnostics is itself an error (its Error method joins every item's
// message, one per line) so callers that only care whether validation failed can treat it as one.
type Diagnostics struct {
	items []Diagnostic
}

// Add appends a diagnostic.
func (d *Diagnostics) Add(diag Diagnostic) {
	d.items = append(d.items, diag)
}

// Addf is a convenience wrapper around Add(New(...)).
func (d *Diagnostics) Addf(cat Category, sp span.Span, format string, args ...any) {
	d.Add(New(cat, sp, format, args...))
}

// Merge appends every diagnostic in other to d.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// HasFatal reports whether any accumulated diagnostic is of a non-accumulated
// (i.e. fatal) category. Per spec §7, any non-empty diagnostic list aborts
// emission regardless, so in practice callers check Len() == 0 before
// emitting; HasFatal exists for callers that want to keep validating after
// an accumulated-only failure (e.g. to report every bad conditional in one
// pass) but still need to distinguish severities for exit-code purposes.
func (d *Diagnostics) HasFatal() bool {
	for _, it := range d.items {
		if !it.Category.Accumulated() {
			return true
		}
	}
	return false
}

// Len reports the number of accumulated diagnostics.
func (d *Diagnostics) Len() int { return len(d.items) }

// Items returns the accumulated diagnostics in the order they were added.
func (d *Diagnostics) Items() []Diagnostic { return d.items }

// Err returns nil if d is empty, else d itself as an error.
func (d *Diagnostics) Err() error {
	if d.Len() == 0 {
		return nil
	}
	return d
}

func (d *Diagnostics) Error() string {
	var b strings.Builder
	for i, it := range d.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(it.Error())
	}
	return b.String()
}
