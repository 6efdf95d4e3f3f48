// Package bazel is the build-tool extension named in spec §4.2: an
// optional collaborator consulted only for commands the classifier
// recognizes as a build-tool invocation (the bazel!(...) macro). There is
// no Bazel query/analysis client in the retrieved corpus, so the target
// pattern and dry-run checks below are fast-path syntactic ones, in the
// spirit of shellwords' own small hand-rolled parsers rather than a real
// Bazel client.
package bazel

import (
	"fmt"
	"strings"
)

// DefaultVerbs is the fixed whitelist of recognized Bazel-style verbs,
// augmented per-pipeline by custom_verbs (spec §3's field table).
var DefaultVerbs = []string{
	"build", "test", "run", "query", "cquery", "aquery", "fetch", "sync",
	"clean", "info", "version", "mobile-install", "coverage", "shutdown",
}

// testVerbSuffixes are the target-name suffixes treated as "of a test
// kind" by AnalyzeDryRun's fast-path check, in the absence of a real
// query command to classify targets authoritatively.
var testVerbSuffixes = []string{"_test", "_tests"}

// ResolveVerbs builds the verb whitelist for one pipeline: DefaultVerbs
// plus any author-declared custom_verbs.
func ResolveVerbs(custom []string) map[string]bool {
	verbs := make(map[string]bool, len(DefaultVerbs)+len(custom))
	for _, v := range DefaultVerbs {
		verbs[v] = true
	}
	for _, v := range custom {
		verbs[v] = true
	}
	return verbs
}

// ValidateVerb reports whether verb is in the resolved whitelist.
func ValidateVerb(verbs map[string]bool, verb string) bool {
	return verbs[verb]
}

// IsValidTargetPattern is the fast-path check on a Bazel label or pattern:
// it must start with "//", ":", or "@" (an external repository
// reference), or be the "..." wildcard alone. A relative pattern such as
// "foo/..." is rejected. It does not resolve the pattern against a workspace - that is the
// "optional authoritative query command" spec §4.2 treats as a further,
// unimplemented collaborator.
func IsValidTargetPattern(pattern string) bool {
	if pattern == "" {
		return false
	}
	switch {
	case pattern == "...":
		return true
	case len(pattern) >= 2 && pattern[:2] == "//":
		return true
	case pattern[0] == ':':
		return true
	case pattern[0] == '@':
		return true
	default:
		return false
	}
}

// isTestKind reports whether target looks like a test target, by a name
// suffix heuristic, in lieu of an authoritative query command.
func isTestKind(target string) bool {
	for _, suffix := range testVerbSuffixes {
		if len(target) > len(suffix) && target[len(target)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}

// ExtractTargets pulls the target-pattern arguments out of a bazel!()
// command string: every whitespace-separated token after the verb that
// doesn't look like a flag (doesn't start with "-"). It is the fast-path,
// non-authoritative extraction spec §4.2 allows in lieu of a real query
// command.
func ExtractTargets(commandText string) []string {
	fields := strings.Fields(commandText)
	if len(fields) <= 2 {
		return nil
	}
	var targets []string
	for _, f := range fields[2:] {
		if strings.HasPrefix(f, "-") {
			continue
		}
		targets = append(targets, f)
	}
	return targets
}

// AnalyzeDryRun implements spec §4.2's dry-run analysis: `run` must
// resolve to exactly one target, `test` must resolve to at least one
// target of a test kind. Other verbs are not analyzed.
func AnalyzeDryRun(verb string, targets []string) error {
	switch verb {
	case "run":
		if len(targets) != 1 {
			return fmt.Errorf("bazel run requires exactly one target, got %d", len(targets))
		}
	case "test":
		for _, t := range targets {
			if isTestKind(t) {
				return nil
			}
		}
		return fmt.Errorf("bazel test requires at least one target of a test kind")
	}
	return nil
}
