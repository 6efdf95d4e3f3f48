package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildkite/pipeline-validator/internal/span"
)

func TestCategoryAccumulated(t *testing.T) {
	assert.True(t, BadRegex.Accumulated())
	assert.True(t, BadConditional.Accumulated())
	assert.False(t, Structural.Accumulated())
	assert.False(t, ShellLint.Accumulated())
}

func TestDiagnosticError(t *testing.T) {
	sp := span.Span{File: "p.bkdsl", Line: 4, Col: 2}
	d := New(Structural, sp, "unknown field %q", "bogus")

	assert.Equal(t, `p.bkdsl:4:2: structural: unknown field "bogus"`, d.Error())
}

func TestDiagnosticWithHints(t *testing.T) {
	d := New(MissingEnvVar, span.Span{}, "FOO is not declared").WithHints("add FOO to env: or expected_env:")

	assert.Contains(t, d.Error(), "hint: add FOO to env: or expected_env:")
}

func TestDiagnosticsAccumulate(t *testing.T) {
	var diags Diagnostics
	diags.Addf(Structural, span.Span{}, "bad thing %d", 1)
	diags.Addf(DuplicateKey, span.Span{}, "dup key")

	require.Equal(t, 2, diags.Len())
	assert.True(t, diags.HasFatal(), "expected HasFatal when a non-accumulated diagnostic is present")
}

func TestDiagnosticsHasFatalAllAccumulated(t *testing.T) {
	var diags Diagnostics
	diags.Addf(BadRegex, span.Span{}, "bad regex")
	diags.Addf(BadConditional, span.Span{}, "bad conditional")

	assert.False(t, diags.HasFatal(), "did not expect HasFatal when every diagnostic is accumulated")
}

func TestDiagnosticsMerge(t *testing.T) {
	var a, b Diagnostics
	a.Addf(Structural, span.Span{}, "a")
	b.Addf(Structural, span.Span{}, "b")

	a.Merge(&b)
	require.Equal(t, 2, a.Len())

	a.Merge(nil)
	assert.Equal(t, 2, a.Len(), "merging nil should be a no-op")
}

func TestDiagnosticsErr(t *testing.T) {
	var empty Diagnostics
	assert.NoError(t, empty.Err())

	var nonEmpty Diagnostics
	nonEmpty.Addf(Structural, span.Span{}, "oops")
	assert.Error(t, nonEmpty.Err())
}
