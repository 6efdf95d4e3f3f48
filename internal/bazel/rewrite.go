package bazel

import "strings"

// RewriteFlagValues rewrites unquoted --flag=VALUE tails in cmd to
// --flag='VALUE', so a bare word value does not trigger shell-lint noise
// when the command is submitted to the shell linter (spec §4.2). The scan
// is quote-state-aware: single- and double-quoted regions are passed
// through untouched, and a value that already begins with a quote or '$'
// is left alone.
func RewriteFlagValues(cmd string) string {
	var out strings.Builder
	var inSingle, inDouble bool

	i := 0
	for i < len(cmd) {
		c := cmd[i]

		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			out.WriteByte(c)
			i++
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			out.WriteByte(c)
			i++
			continue
		case inSingle || inDouble:
			out.WriteByte(c)
			i++
			continue
		case c == '-' && i+1 < len(cmd) && cmd[i+1] == '-':
			flagStart := i
			j := i + 2
			for j < len(cmd) && isFlagNameByte(cmd[j]) {
				j++
			}
			if j < len(cmd) && cmd[j] == '=' {
				valStart := j + 1
				valEnd := valStart
				for valEnd < len(cmd) && !isWordBreak(cmd[valEnd]) {
					valEnd++
				}
				value := cmd[valStart:valEnd]
				if value != "" && value[0] != '\'' && value[0] != '"' && value[0] != '$' {
					out.WriteString(cmd[flagStart:valStart])
					out.WriteByte('\'')
					out.WriteString(value)
					out.WriteByte('\'')
					i = valEnd
					continue
				}
			}
			out.WriteByte(c)
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String()
}

func isFlagNameByte(c byte) bool {
	return c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isWordBreak(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\'' || c == '"'
}
