package shelllint

import "strings"

// ExtractQuoted pulls the first single-quoted substring out of msg, the way
// the original's undefined-var diagnostics name the offending variable
// (e.g. "variable 'FOO' is referenced but not assigned"). It returns false if
// msg does not contain a complete 'quoted' substring.
func ExtractQuoted(msg string) (string, bool) {
	start := strings.IndexByte(msg, '\'')
	if start < 0 {
		return "", false
	}
	rest := msg[start+1:]
	end := strings.IndexByte(rest, '\'')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
