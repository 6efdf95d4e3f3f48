package pipelinedef

// KnownEnvList expands the three reserved names an `expected_env:` entry may
// use in place of an explicit name, to a concrete literal roster, at parse
// time. This is a pure source-level convenience: the expanded names are
// indistinguishable from ones the author typed out by hand.
func KnownEnvList(name string) ([]string, bool) {
	list, ok := knownEnvLists[name]
	return list, ok
}

var knownEnvLists = map[string][]string{
	"SHELL_ENV": {
		"HOME", "PATH", "USER", "SHELL", "PWD", "OLDPWD", "TERM", "HOSTNAME",
		"LANG", "LC_ALL", "TZ", "TMPDIR",
	},
	"BUILDKITE_ENV": {
		"BUILDKITE", "BUILDKITE_AGENT_ID", "BUILDKITE_AGENT_NAME",
		"BUILDKITE_BRANCH", "BUILDKITE_BUILD_AUTHOR", "BUILDKITE_BUILD_AUTHOR_EMAIL",
		"BUILDKITE_BUILD_CHECKOUT_PATH", "BUILDKITE_BUILD_CREATOR", "BUILDKITE_BUILD_CREATOR_EMAIL",
		"BUILDKITE_BUILD_ID", "BUILDKITE_BUILD_NUMBER", "BUILDKITE_BUILD_URL",
		"BUILDKITE_COMMAND", "BUILDKITE_COMMAND_EXIT_STATUS", "BUILDKITE_COMMIT",
		"BUILDKITE_GROUP_ID", "BUILDKITE_GROUP_KEY", "BUILDKITE_GROUP_LABEL",
		"BUILDKITE_JOB_ID", "BUILDKITE_LABEL", "BUILDKITE_MESSAGE",
		"BUILDKITE_ORGANIZATION_ID", "BUILDKITE_ORGANIZATION_SLUG",
		"BUILDKITE_PARALLEL_JOB", "BUILDKITE_PARALLEL_JOB_COUNT",
		"BUILDKITE_PIPELINE_DEFAULT_BRANCH", "BUILDKITE_PIPELINE_ID",
		"BUILDKITE_PIPELINE_NAME", "BUILDKITE_PIPELINE_SLUG",
		"BUILDKITE_PULL_REQUEST", "BUILDKITE_PULL_REQUEST_BASE_BRANCH",
		"BUILDKITE_PULL_REQUEST_DRAFT", "BUILDKITE_PULL_REQUEST_REPO",
		"BUILDKITE_REBUILT_FROM_BUILD_ID", "BUILDKITE_REBUILT_FROM_BUILD_NUMBER",
		"BUILDKITE_REPO", "BUILDKITE_RETRY_COUNT", "BUILDKITE_SOURCE",
		"BUILDKITE_STEP_ID", "BUILDKITE_STEP_KEY", "BUILDKITE_TAG", "BUILDKITE_TIMEOUT",
		"BUILDKITE_TRIGGERED_FROM_BUILD_ID", "BUILDKITE_TRIGGERED_FROM_BUILD_NUMBER",
		"BUILDKITE_TRIGGERED_FROM_BUILD_PIPELINE_SLUG", "CI",
	},
	"CI_ENV": {"CI", "CI_BUILD_NUMBER", "CI_COMMIT_SHA", "CI_BRANCH"},
}

// ShellBuiltins is the fixed roster of POSIX-mandated plus Bash-shipped
// shell builtins that seeds the default command allowlist alongside the
// host PATH scan (§4.4.2).
var ShellBuiltins = []string{
	// POSIX builtins
	".", ":", "[", "alias", "bg", "cd", "command", "eval", "exec", "exit",
	"export", "fc", "fg", "getopts", "hash", "jobs", "kill", "newgrp",
	"pwd", "read", "readonly", "return", "set", "shift", "source", "test",
	"times", "trap", "type", "ulimit", "umask", "unalias", "unset", "wait",
	// bash builtins; Buildkite agents always run steps under bash.
	"bind", "builtin", "caller", "compgen", "complete", "compopt", "declare",
	"dirs", "disown", "enable", "help", "history", "let", "local", "logout",
	"mapfile", "popd", "printf", "pushd", "readarray", "shopt", "suspend",
	"typeset",
}
