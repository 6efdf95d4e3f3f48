// Package shelllint classifies command strings embedded in command steps
// and submits them to a shell linter, per spec §4.2. There is no
// shellcheck-equivalent Go library available to depend on, so Linter is an
// interface: DefaultLinter is a small linter that uses
// github.com/buildkite/shellwords, the same tokenizer the teacher trusts
// for its own command execution, to check that a command splits cleanly.
package shelllint

import "strings"

// Severity mirrors a shellcheck-style diagnostic severity.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// UndefinedVarCode is the linter code used for a referenced-but-undeclared
// shell variable, matching the original's SC2154.
const UndefinedVarCode = "SC2154"

// Diagnostic is one finding from a Linter pass over a command string.
type Diagnostic struct {
	Code     string
	Severity Severity
	Message  string
}

// Linter lints a shell command string and returns its diagnostics. It is
// externally provided per spec §4.2 ("the command text is submitted to a
// shell linter (externally provided)").
type Linter interface {
	Lint(command string) ([]Diagnostic, error)
}

// Classification is the result of classifying one command string: its head
// token, whether that head is path-bearing (and so exempt from the
// allowlist check), and the undefined variable names the linter flagged.
type Classification struct {
	Head          string
	PathBased     bool
	UndefinedVars []string

	// Fatal holds lint diagnostics other than undefined-var. The builder
	// reports each one as its own diagnostic on the command's span; they
	// are not combined into a single message.
	Fatal []Diagnostic
}

// Classify runs cmd through linter and extracts the head token, path-based
// flag, and undefined-variable list per §4.2.
func Classify(linter Linter, cmd string) (Classification, error) {
	head := HeadToken(cmd)
	c := Classification{
		Head:      head,
		PathBased: IsPathBased(head),
	}

	diags, err := linter.Lint(cmd)
	if err != nil {
		return c, err
	}

	for _, d := range diags {
		if d.Code == UndefinedVarCode {
			if name, ok := ExtractQuoted(d.Message); ok {
				c.UndefinedVars = append(c.UndefinedVars, name)
			}
			continue
		}
		if d.Severity == SeverityError || d.Severity == SeverityWarning {
			c.Fatal = append(c.Fatal, d)
		}
	}

	return c, nil
}

// HeadToken returns the first whitespace-separated word of cmd.
func HeadToken(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// IsPathBased reports whether head is a path-prefixed command: it begins
// with "/" or "./", or contains a "/" anywhere.
func IsPathBased(head string) bool {
	return strings.HasPrefix(head, "/") || strings.HasPrefix(head, "./") || strings.Contains(head, "/")
}
