package bazel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVerbsIncludesCustom(t *testing.T) {
	verbs := ResolveVerbs([]string{"gazelle"})

	assert.True(t, verbs["build"], "expected default verb build to be present")
	assert.True(t, verbs["gazelle"], "expected custom verb gazelle to be present")
	assert.False(t, verbs["frobnicate"], "did not expect an unlisted verb to validate")
}

func TestValidateVerb(t *testing.T) {
	verbs := ResolveVerbs(nil)

	tests := []struct {
		verb string
		want bool
	}{
		{"build", true},
		{"test", true},
		{"shutdown", true},
		{"frobnicate", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, ValidateVerb(verbs, tt.verb), "ValidateVerb(%q)", tt.verb)
	}
}

func TestIsValidTargetPattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{"...", true},
		{"//foo/bar:baz", true},
		{"//foo/...", true},
		{":local_target", true},
		{"@repo//pkg:target", true},
		{"foo/bar", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, IsValidTargetPattern(tt.pattern), "IsValidTargetPattern(%q)", tt.pattern)
	}
}

func TestAnalyzeDryRunRun(t *testing.T) {
	assert.NoError(t, AnalyzeDryRun("run", []string{"//foo:bar"}))
	assert.Error(t, AnalyzeDryRun("run", []string{"//foo:bar", "//foo:baz"}), "expected multiple run targets to be rejected")
	assert.Error(t, AnalyzeDryRun("run", nil), "expected zero run targets to be rejected")
}

func TestAnalyzeDryRunTest(t *testing.T) {
	assert.NoError(t, AnalyzeDryRun("test", []string{"//foo:bar_test"}))
	assert.NoError(t, AnalyzeDryRun("test", []string{"//foo:bar_tests"}))
	assert.Error(t, AnalyzeDryRun("test", []string{"//foo:bar"}), "expected a non-test-kind target to be rejected")
}

func TestExtractTargets(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"bazel build //foo:bar", []string{"//foo:bar"}},
		{"bazel run //foo:bar --config=ci", []string{"//foo:bar"}},
		{"bazel test //foo:bar //foo:baz_test", []string{"//foo:bar", "//foo:baz_test"}},
		{"bazel build", nil},
		{"bazel", nil},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, ExtractTargets(tt.text), "ExtractTargets(%q)", tt.text)
	}
}

func TestAnalyzeDryRunOtherVerbsUnchecked(t *testing.T) {
	assert.NoError(t, AnalyzeDryRun("build", nil))
	assert.NoError(t, AnalyzeDryRun("query", []string{"//..."}))
}
