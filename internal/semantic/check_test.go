package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildkite/pipeline-validator/internal/dsl"
	"github.com/buildkite/pipeline-validator/internal/semantic"
	"github.com/buildkite/pipeline-validator/internal/shelllint"
)

func parseAndCheck(t *testing.T, src string) (bool, []string) {
	t.Helper()
	pd, diags := dsl.Parse("p.bkdsl", src, shelllint.DefaultLinter{})
	require.Equalf(t, 0, diags.Len(), "unexpected parse diagnostics: %v", diags.Items())

	checked := semantic.Check(pd)
	var msgs []string
	for _, d := range checked.Items() {
		msgs = append(msgs, d.Error())
	}
	return checked.Len() == 0, msgs
}

func TestCheckCleanPipelinePasses(t *testing.T) {
	ok, msgs := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "build", command: cmd!("make build"), key: "build" },
			command { label: "deploy", command: cmd!("make deploy"), depends_on: "build" },
		],
		allowed_commands: ["make"],
	}`)
	assert.Truef(t, ok, "expected no diagnostics, got %v", msgs)
}

func TestCheckDuplicateKeyRejected(t *testing.T) {
	ok, msgs := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: cmd!("make a"), key: "dup" },
			command { label: "b", command: cmd!("make b"), key: "dup" },
		],
		allowed_commands: ["make"],
	}`)
	require.False(t, ok, "expected a duplicate key to be rejected")
	assert.NotEmpty(t, msgs)
}

func TestCheckUnknownDependencyRejected(t *testing.T) {
	ok, _ := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: cmd!("make a"), depends_on: "missing" },
		],
		allowed_commands: ["make"],
	}`)
	assert.False(t, ok, "expected an unresolved depends_on to be rejected")
}

func TestCheckUnknownCommandRejected(t *testing.T) {
	ok, _ := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: cmd!("frobnicate --now") },
		],
		allowed_commands: ["make"],
	}`)
	assert.False(t, ok, "expected a command outside the allowlist to be rejected")
}

func TestCheckAdditionalCommandsExtendsAllowlist(t *testing.T) {
	ok, msgs := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: cmd!("frobnicate --now") },
		],
		allowed_commands: ["make"],
		additional_commands: ["frobnicate"],
	}`)
	assert.Truef(t, ok, "expected additional_commands to authorize frobnicate, got %v", msgs)
}

func TestCheckMissingEnvVarRejected(t *testing.T) {
	ok, _ := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: cmd!("echo $UNDECLARED_TOKEN") },
		],
		expected_env: ["PATH"],
		allowed_commands: ["echo"],
	}`)
	assert.False(t, ok, "expected an undeclared env var reference to be rejected")
}

func TestCheckEnvVarAuthorizedByStepEnv(t *testing.T) {
	ok, msgs := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: cmd!("echo $TOKEN"), env: { TOKEN: "x" } },
		],
		expected_env: ["PATH"],
		allowed_commands: ["echo"],
	}`)
	assert.Truef(t, ok, "expected step env to authorize the variable, got %v", msgs)
}

func TestCheckBadConditionalAccumulates(t *testing.T) {
	ok, _ := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: cmd!("make a"), if: "bogus.ref == \"x\"" },
		],
		allowed_commands: ["make"],
	}`)
	assert.False(t, ok, "expected an unknown conditional reference to be rejected")
}

func TestCheckUnknownBazelVerbRejected(t *testing.T) {
	ok, _ := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: bazel!("bazel frobnicate //foo:bar") },
		],
		allowed_commands: ["bazel"],
	}`)
	assert.False(t, ok, "expected an unrecognized bazel verb to be rejected")
}

func TestCheckCustomVerbAuthorizesBazelCommand(t *testing.T) {
	ok, msgs := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: bazel!("bazel gazelle //foo:bar") },
		],
		custom_verbs: ["gazelle"],
		allowed_commands: ["bazel"],
	}`)
	assert.Truef(t, ok, "expected custom_verbs to authorize gazelle, got %v", msgs)
}

func TestCheckBazelInvalidTargetPatternRejected(t *testing.T) {
	ok, _ := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: bazel!("bazel build foo/bar") },
		],
		allowed_commands: ["bazel"],
	}`)
	assert.False(t, ok, "expected a target pattern missing //, :, or @ to be rejected")
}

func TestCheckBazelRunRequiresExactlyOneTarget(t *testing.T) {
	ok, _ := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: bazel!("bazel run //foo:bar //foo:baz") },
		],
		allowed_commands: ["bazel"],
	}`)
	assert.False(t, ok, "expected bazel run with two targets to be rejected")
}

func TestCheckBazelTestRequiresATestKindTarget(t *testing.T) {
	ok, _ := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: bazel!("bazel test //foo:bar") },
		],
		allowed_commands: ["bazel"],
	}`)
	assert.False(t, ok, "expected bazel test with no test-kind target to be rejected")
}

func TestCheckBazelTestWithTestKindTargetPasses(t *testing.T) {
	ok, msgs := parseAndCheck(t, `pipeline {
		steps: [
			command { label: "a", command: bazel!("bazel test //foo:bar_test") },
		],
		allowed_commands: ["bazel"],
	}`)
	assert.Truef(t, ok, "expected bazel test with a test-kind target to pass, got %v", msgs)
}
