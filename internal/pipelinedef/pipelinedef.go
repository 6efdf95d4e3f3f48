// Package pipelinedef models the validator's intermediate form: the tree
// produced by parsing a DSL pipeline declaration, before semantic checking
// and before it is lowered into a github.com/buildkite/go-pipeline document
// for emission. Every value here is built once during DSL-form evaluation,
// is immutable thereafter, and is discarded once emission succeeds - there
// is no persistent or shared state.
package pipelinedef

import (
	"github.com/buildkite/go-pipeline/ordered"
	"github.com/buildkite/pipeline-validator/internal/span"
)

// PipelineDef is the root of the intermediate form.
type PipelineDef struct {
	Steps []StepDef

	Env *ordered.MapSS

	// ExpectedEnv is the authorized set of external environment variables,
	// already expanded from any KnownList reference (SHELL_ENV, BUILDKITE_ENV,
	// CI_ENV). Nil means "not declared": the semantic checker falls back to
	// the host process environment's names.
	ExpectedEnv []string

	// ExpectedEnvIsHostDefined records that ExpectedEnv was declared using a
	// compile-time-only reference to an externally defined list, whose
	// contents can't be known at validation time. When true, env-var closure
	// checking (§4.4.4) is suppressed for the whole pipeline.
	ExpectedEnvIsHostDefined bool

	// AllowedCommands is the author-declared allowlist. Nil means "not
	// declared": the semantic checker falls back to shell builtins plus the
	// host PATH.
	AllowedCommands []string

	AdditionalCommands []string

	// ExpectPaths lists path-prefixed command strings exempted from the
	// filesystem existence check.
	ExpectPaths []string

	Agents *ordered.MapSS

	Notify []NotifyValue

	Image    *string
	Secrets  *NestedValue
	Priority *int

	DefaultPlugins []NestedValue

	// CustomVerbs augments the build-tool extension's verb whitelist.
	CustomVerbs []string
}

// Key is a step's declared identifier, with the span of the literal that
// declared it so duplicate-key diagnostics can point at the right token.
type Key struct {
	Name string
	Span span.Span
}

// DependencyRef is one entry of a step's depends_on list, before resolution
// against the collected key set.
type DependencyRef struct {
	Key  string
	Span span.Span
}

// Common holds the fields shared by every StepDef variant.
type Common struct {
	Key                    *Key
	DependsOn              []DependencyRef
	IfCond                 *IfCondition
	Branches               []string
	Skip                   *SkipValue
	AllowDependencyFailure bool
}

// IfCondition is a conditional-expression string attached to a step or
// notify entry, carrying the span of the whole expression literal.
type IfCondition struct {
	Text string
	Span span.Span
}

// SkipValue is a step's skip attribute: either a boolean or a string reason,
// both of which Buildkite's schema accepts.
type SkipValue struct {
	Bool   *bool
	Reason *string
}

// StepKind tags which StepDef variant is populated.
type StepKind int

const (
	StepCommand StepKind = iota
	StepWait
	StepBlock
	StepInput
	StepTrigger
	StepGroup
)

// StepDef is the tagged union of the six step variants. Exactly one of the
// *Step fields matching Kind is populated; the rest are nil.
type StepDef struct {
	Kind StepKind
	Common

	CommandStep *CommandStepDef
	WaitStep    *WaitStepDef
	BlockStep   *BlockStepDef
	InputStep   *InputStepDef
	TriggerStep *TriggerStepDef
	GroupStep   *GroupStepDef
}

// CommandStepDef is a `command` step.
type CommandStepDef struct {
	Label   string
	Command CommandValue
	Env     *ordered.MapSS
	Plugins []NestedValue
	Agents  *ordered.MapSS
	Matrix  *NestedValue
}

// WaitStepDef is a `wait` step. It never carries a Key (spec §3 invariant).
type WaitStepDef struct {
	ContinueOnFailure bool
}

// BlockStepDef is a `block` step: a pipeline-pausing manual gate with an
// optional set of input fields.
type BlockStepDef struct {
	Label  string
	Prompt string
	Fields []FieldDef
}

// InputStepDef is an `input` step: like block, but does not pause later
// steps that don't depend on it.
type InputStepDef struct {
	Label  string
	Prompt string
	Fields []FieldDef
}

// TriggerStepDef triggers another pipeline.
type TriggerStepDef struct {
	Label   string
	Trigger string
	Build   *NestedValue
	Async   bool
}

// GroupStepDef nests a sequence of non-group steps under a label. Spec §3
// forbids a Group containing another Group; the parser enforces this.
type GroupStepDef struct {
	Label string
	Steps []StepDef
}
