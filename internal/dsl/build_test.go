package dsl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
	"github.com/buildkite/pipeline-validator/internal/shelllint"
)

func mustParse(t *testing.T, src string) *pipelinedef.PipelineDef {
	t.Helper()
	pd, diags := Parse("p.bkdsl", src, shelllint.DefaultLinter{})
	require.Equalf(t, 0, diags.Len(), "unexpected diagnostics: %v", diags.Items())
	require.NotNil(t, pd)
	return pd
}

func TestParseBracedCommandStep(t *testing.T) {
	pd := mustParse(t, `pipeline {
		steps: [
			command { label: "build", command: cmd!("make build") },
			wait,
		],
	}`)

	require.Len(t, pd.Steps, 2)
	require.Equal(t, pipelinedef.StepCommand, pd.Steps[0].Kind)
	assert.Equal(t, "make", pd.Steps[0].CommandStep.Command.Shell.Head)
	require.Equal(t, pipelinedef.StepWait, pd.Steps[1].Kind)
}

func TestParseFluentCommandStep(t *testing.T) {
	pd := mustParse(t, `pipeline {
		steps: [
			command(cmd!("make build")).label("build").key("build-step"),
		],
	}`)

	require.Len(t, pd.Steps, 1)
	s := pd.Steps[0]
	require.Equal(t, pipelinedef.StepCommand, s.Kind)
	require.NotNil(t, s.Common.Key)
	assert.Equal(t, "build-step", s.Common.Key.Name)
}

// equivalentStepShape projects the fields that must match between the
// braced and fluent forms of the same step, so the comparison is a single
// structural diff instead of one assertion per field.
type equivalentStepShape struct {
	Kind        pipelinedef.StepKind
	Label       string
	CommandText string
	Key         string
}

func shapeOf(s pipelinedef.StepDef) equivalentStepShape {
	return equivalentStepShape{
		Kind:        s.Kind,
		Label:       s.CommandStep.Label,
		CommandText: s.CommandStep.Command.Shell.Text,
		Key:         s.Common.Key.Name,
	}
}

func TestFluentAndBracedFormsProduceEquivalentSteps(t *testing.T) {
	braced := mustParse(t, `pipeline {
		steps: [ command { label: "build", command: cmd!("make build"), key: "build-step" } ],
	}`)
	fluent := mustParse(t, `pipeline {
		steps: [ command(cmd!("make build")).label("build").key("build-step") ],
	}`)

	if diff := cmp.Diff(shapeOf(braced.Steps[0]), shapeOf(fluent.Steps[0])); diff != "" {
		t.Errorf("braced and fluent forms produced different steps (-braced +fluent):\n%s", diff)
	}
}

func TestWaitRejectsFluentForm(t *testing.T) {
	_, diags := Parse("p.bkdsl", `pipeline {
		steps: [ wait(), ],
	}`, shelllint.DefaultLinter{})

	assert.NotZero(t, diags.Len(), "expected wait() fluent form to be rejected")
}

func TestNonWaitRejectsBareIdent(t *testing.T) {
	_, diags := Parse("p.bkdsl", `pipeline {
		steps: [ command, ],
	}`, shelllint.DefaultLinter{})

	assert.NotZero(t, diags.Len(), "expected a bare non-wait step identifier to be rejected")
}

func TestGroupStepRejectsNestedGroup(t *testing.T) {
	_, diags := Parse("p.bkdsl", `pipeline {
		steps: [
			group { label: "outer", steps: [ group { label: "inner", steps: [ wait ] } ] },
		],
	}`, shelllint.DefaultLinter{})

	assert.NotZero(t, diags.Len(), "expected a nested group step to be rejected")
}

func TestRawCommandStringIsRejected(t *testing.T) {
	_, diags := Parse("p.bkdsl", `pipeline {
		steps: [ command { label: "build", command: "make build" } ],
	}`, shelllint.DefaultLinter{})

	assert.NotZero(t, diags.Len(), "expected a raw command string to be rejected")
}

func TestExpectedEnvKnownListExpansion(t *testing.T) {
	pd := mustParse(t, `pipeline {
		steps: [ wait ],
		expected_env: CI_ENV,
	}`)

	assert.NotEmpty(t, pd.ExpectedEnv, "expected CI_ENV to expand to a non-empty roster")
	assert.False(t, pd.ExpectedEnvIsHostDefined, "a known list name should not be treated as host-defined")
}

func TestExpectedEnvUnknownIdentIsHostDefined(t *testing.T) {
	pd := mustParse(t, `pipeline {
		steps: [ wait ],
		expected_env: VAULT_ENV,
	}`)

	assert.True(t, pd.ExpectedEnvIsHostDefined, "an unrecognised bare identifier should be treated as host-defined")
}

func TestBazelMacroProducesBuildToolCommand(t *testing.T) {
	pd := mustParse(t, `pipeline {
		steps: [ command { label: "test", command: bazel!("bazel test //foo:bar_test") } ],
	}`)

	cmd := pd.Steps[0].CommandStep.Command
	require.Equal(t, pipelinedef.CommandBuildTool, cmd.Kind)
	assert.Equal(t, "test", cmd.BuildTool.Verb)
}

func TestUnknownPipelineFieldIsStructural(t *testing.T) {
	_, diags := Parse("p.bkdsl", `pipeline {
		steps: [ wait ],
		bogus_field: "x",
	}`, shelllint.DefaultLinter{})

	assert.NotZero(t, diags.Len(), "expected an unknown pipeline field to be rejected")
}

func TestMissingStepsFieldIsStructural(t *testing.T) {
	_, diags := Parse("p.bkdsl", `pipeline {
		env: { FOO: "bar" },
	}`, shelllint.DefaultLinter{})

	assert.NotZero(t, diags.Len(), "expected a missing steps field to be rejected")
}

func TestComptimeMacroValidatesLikeLiteral(t *testing.T) {
	pd := mustParse(t, `pipeline {
		steps: [ command { label: "build", command: comptime!("make build") } ],
	}`)

	cmd := pd.Steps[0].CommandStep.Command
	require.Equal(t, pipelinedef.CommandShell, cmd.Kind)
	assert.Equal(t, "make", cmd.Shell.Head)
}

func TestComptimeShellMacroSubstitutesTrimmedStdout(t *testing.T) {
	pd := mustParse(t, `pipeline {
		steps: [ command { label: "build", command: comptime_shell!("echo make build") } ],
	}`)

	cmd := pd.Steps[0].CommandStep.Command
	require.Equal(t, pipelinedef.CommandShell, cmd.Kind)
	assert.Equal(t, "make build", cmd.Shell.Text)
	assert.Equal(t, "make", cmd.Shell.Head)
}

func TestComptimeShellMacroFailureIsFatal(t *testing.T) {
	_, diags := Parse("p.bkdsl", `pipeline {
		steps: [ command { label: "build", command: comptime_shell!("exit 7") } ],
	}`, shelllint.DefaultLinter{})

	require.NotZero(t, diags.Len(), "expected a failing comptime_shell!() command to be rejected")
	assert.Contains(t, diags.Items()[0].Message, "exit 7")
}

func TestRuntimeMacroIsOpaque(t *testing.T) {
	pd := mustParse(t, `pipeline {
		steps: [ command { label: "build", command: runtime!("secret-tool", "--env=prod") } ],
	}`)

	cmd := pd.Steps[0].CommandStep.Command
	require.Equal(t, pipelinedef.CommandDynamic, cmd.Kind)
	assert.Equal(t, "secret-tool", cmd.Dynamic.Head)
	assert.Equal(t, []string{"--env=prod"}, cmd.Dynamic.Flags)
}

func TestIfAndConditionMutuallyExclusive(t *testing.T) {
	_, diags := Parse("p.bkdsl", `pipeline {
		steps: [
			command { label: "x", command: cmd!("make"), if: "build.branch == \"main\"", condition: "build.branch == \"main\"" },
		],
	}`, shelllint.DefaultLinter{})

	assert.NotZero(t, diags.Len(), "expected declaring both if and condition to be rejected")
}
