package conditional

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildkite/pipeline-validator/internal/span"
)

func TestValidateValidExpressions(t *testing.T) {
	tests := []string{
		`build.branch == "main"`,
		`build.branch == "main" && build.tag != "nightly"`,
		`build.message =~ /^release/`,
		`build.message =~ /^release/i`,
		`!build.pull_request.draft`,
		`build.creator.teams @> ["release-team"]`,
		`env("DEPLOY") == "true"`,
		`build.branch == "main" || build.branch == "develop"`,
		`(build.branch == "main") && !build.pull_request.draft`,
	}

	for _, expr := range tests {
		diags := Validate(expr, span.Span{File: "p.bkdsl"})
		assert.Equalf(t, 0, diags.Len(), "Validate(%q) reported diagnostics: %v", expr, diags.Items())
	}
}

func TestValidateUnknownReference(t *testing.T) {
	diags := Validate(`bogus.ref == "x"`, span.Span{})
	require.Equal(t, 1, diags.Len())
}

func TestValidateUnknownFunction(t *testing.T) {
	diags := Validate(`bogus("x") == "y"`, span.Span{})
	require.Equal(t, 1, diags.Len())
}

func TestValidateBadRegex(t *testing.T) {
	diags := Validate(`build.branch =~ /[/`, span.Span{})
	require.NotZero(t, diags.Len(), "expected an invalid regex to produce a diagnostic")
	assert.True(t, diags.Items()[0].Category.Accumulated(), "expected a bad-regex diagnostic to be accumulated")
}

func TestValidateMalformedExpression(t *testing.T) {
	diags := Validate(`build.branch ==`, span.Span{})
	assert.NotZero(t, diags.Len(), "expected a malformed expression to produce a diagnostic")
}

func TestValidateTrailingGarbage(t *testing.T) {
	diags := Validate(`build.branch == "main" extra`, span.Span{})
	assert.NotZero(t, diags.Len(), "expected trailing tokens after a full expression to be rejected")
}

func TestValidateAccumulatesMultipleDiagnostics(t *testing.T) {
	diags := Validate(`bogus.ref == "x" && other.nonsense == "y"`, span.Span{})
	assert.GreaterOrEqual(t, diags.Len(), 2, "expected both unknown references to be reported")
}
