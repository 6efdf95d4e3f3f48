package emit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildkite/pipeline-validator/internal/dsl"
	"github.com/buildkite/pipeline-validator/internal/emit"
	"github.com/buildkite/pipeline-validator/internal/shelllint"
)

func TestPipelineAndSerializeRoundTrip(t *testing.T) {
	src := `pipeline {
		steps: [
			command { label: "build", command: cmd!("make build"), key: "build" },
			wait,
			command { label: "deploy", command: cmd!("make deploy"), depends_on: "build" },
		],
		env: { STAGE: "prod" },
	}`

	pd, diags := dsl.Parse("p.bkdsl", src, shelllint.DefaultLinter{})
	require.Equalf(t, 0, diags.Len(), "unexpected diagnostics: %v", diags.Items())

	p := emit.Pipeline(pd)
	require.NotNil(t, p)

	yamlOut, err := emit.Serialize(p, emit.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(yamlOut), "make build")

	jsonOut, err := emit.Serialize(p, emit.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(jsonOut), "make deploy")
}

func TestGroupStepEmitsNestedSteps(t *testing.T) {
	src := `pipeline {
		steps: [
			group {
				label: "tests",
				steps: [
					command { label: "unit", command: cmd!("make test-unit") },
					command { label: "integration", command: cmd!("make test-integration") },
				],
			},
		],
	}`

	pd, diags := dsl.Parse("p.bkdsl", src, shelllint.DefaultLinter{})
	require.Equalf(t, 0, diags.Len(), "unexpected diagnostics: %v", diags.Items())

	p := emit.Pipeline(pd)
	out, err := emit.Serialize(p, emit.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "make test-unit")
	assert.Contains(t, string(out), "make test-integration")
}
