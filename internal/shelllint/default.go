package shelllint

import (
	"fmt"
	"strings"

	"github.com/buildkite/shellwords"
)

// bashSpecialParams never count as undefined references: they're populated
// by the shell itself, not by the pipeline author.
var bashSpecialParams = map[byte]bool{
	'@': true, '*': true, '#': true, '?': true, '$': true, '!': true, '-': true, '_': true,
}

// DefaultLinter is a minimal shell linter built on
// github.com/buildkite/shellwords's word-splitting rules. It checks that
// the command is syntactically splittable (unbalanced quotes are a fatal
// "SC1009"-style diagnostic) and flags every `$VAR`/`${VAR}` reference that
// isn't satisfied by a same-command `VAR=value` assignment as an
// undefined-var diagnostic, the same contract the original's bashrs-backed
// linter exposes (severity-tagged diagnostics, with code "SC2154" reserved
// for undefined variables).
type DefaultLinter struct{}

var _ Linter = DefaultLinter{}

func (DefaultLinter) Lint(command string) ([]Diagnostic, error) {
	var diags []Diagnostic

	if _, err := shellwords.Split(command); err != nil {
		diags = append(diags, Diagnostic{
			Code:     "SC1009",
			Severity: SeverityError,
			Message:  fmt.Sprintf("syntax error: %s", err),
		})
		return diags, nil
	}

	assigned := localAssignments(command)
	for _, name := range referencedVars(command) {
		if assigned[name] {
			continue
		}
		diags = append(diags, Diagnostic{
			Code:     UndefinedVarCode,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("variable '%s' is referenced but not assigned in this command", name),
		})
	}

	return diags, nil
}

// localAssignments finds every `NAME=` assignment token in command, the way
// a shell linter recognises a variable as locally defined.
func localAssignments(command string) map[string]bool {
	out := map[string]bool{}
	for _, word := range strings.Fields(command) {
		name, _, ok := strings.Cut(word, "=")
		if !ok || name == "" {
			continue
		}
		if isIdent(name) {
			out[name] = true
		}
	}
	return out
}

func isIdent(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return len(s) > 0
}

// referencedVars scans command for $VAR and ${VAR} fragments outside
// single-quoted sections (POSIX shells don't expand variables inside
// single quotes), skipping bash's special parameters.
func referencedVars(command string) []string {
	var names []string
	seen := map[string]bool{}

	inSingle := false
	for i := 0; i < len(command); i++ {
		c := command[i]
		switch {
		case c == '\'':
			inSingle = !inSingle
		case c == '$' && !inSingle && i+1 < len(command):
			next := command[i+1]
			switch {
			case next == '{':
				end := strings.IndexByte(command[i+2:], '}')
				if end < 0 {
					continue
				}
				name := command[i+2 : i+2+end]
				name, _, _ = strings.Cut(name, ":") // ${VAR:-default}
				if isIdent(name) && !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
				i += 2 + end
			case bashSpecialParams[next] || (next >= '0' && next <= '9'):
				i++
			case next == '_' || (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z'):
				j := i + 1
				for j < len(command) && isIdent(command[i+1:j+1]) {
					j++
				}
				name := command[i+1 : j]
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
				i = j - 1
			}
		}
	}

	return names
}
