package pipelinedef

import "github.com/buildkite/pipeline-validator/internal/span"

// CommandValueKind tags which CommandValue variant is populated.
type CommandValueKind int

const (
	CommandShell CommandValueKind = iota
	CommandBuildTool
	CommandDynamic
)

// CommandValue is the value of a command step's `command` field: a shell
// command, a build-tool invocation, or a host-runtime-assembled value that
// static validation treats as opaque.
type CommandValue struct {
	Kind CommandValueKind

	Shell     *CmdExpr
	BuildTool *BuildToolExpr
	Dynamic   *DynamicCommand
}

// CmdExpr is a statically known shell command string, as produced by a
// cmd!(...) macro call.
type CmdExpr struct {
	// Text is the original command text, exactly as written.
	Text string

	// Head is the first whitespace-separated word of Text.
	Head string

	// UndefinedVars are the variable names the shell linter flagged as
	// referenced but not declared anywhere in the command text itself.
	// The semantic checker decides whether each is authorized.
	UndefinedVars []string

	Span span.Span
}

// BuildToolExpr is a statically known build-tool command string, as
// produced by a bazel!(...) macro call.
type BuildToolExpr struct {
	CmdExpr

	// Verb is the second token of Text, e.g. "build", "test", "run".
	Verb string
}

// DynamicCommand is assembled at pipeline-emit time from values only known
// at host-language run-time, as produced by a runtime!(...) macro call. The
// shell linter is never invoked on it and its env-var/allowlist/path checks
// are skipped (it is opaque to static validation).
type DynamicCommand struct {
	Head  string
	Flags []string
}
