package shelllint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultLinterUndefinedVar(t *testing.T) {
	diags, err := DefaultLinter{}.Lint("echo $FOO")
	require.NoError(t, err)
	require.Lenf(t, diags, 1, "expected one undefined-var diagnostic, got %+v", diags)
	require.Equal(t, UndefinedVarCode, diags[0].Code)

	name, ok := ExtractQuoted(diags[0].Message)
	require.True(t, ok)
	require.Equal(t, "FOO", name)
}

func TestDefaultLinterLocalAssignmentSuppressesUndefined(t *testing.T) {
	diags, err := DefaultLinter{}.Lint("FOO=bar echo $FOO")
	require.NoError(t, err)
	require.Emptyf(t, diags, "expected no diagnostics when FOO is locally assigned, got %+v", diags)
}

func TestDefaultLinterIgnoresSingleQuoted(t *testing.T) {
	diags, err := DefaultLinter{}.Lint(`echo '$FOO'`)
	require.NoError(t, err)
	require.Empty(t, diags)
}

func TestDefaultLinterIgnoresSpecialParams(t *testing.T) {
	diags, err := DefaultLinter{}.Lint("echo $@ $1 $?")
	require.NoError(t, err)
	require.Empty(t, diags)
}

func TestDefaultLinterBraceForm(t *testing.T) {
	diags, err := DefaultLinter{}.Lint("echo ${FOO:-default}")
	require.NoError(t, err)
	require.Lenf(t, diags, 1, "expected one undefined-var diagnostic for ${FOO:-default}, got %+v", diags)
	require.Equal(t, UndefinedVarCode, diags[0].Code)

	name, _ := ExtractQuoted(diags[0].Message)
	require.Equal(t, "FOO", name)
}

func TestDefaultLinterUnbalancedQuotes(t *testing.T) {
	diags, err := DefaultLinter{}.Lint(`echo "unterminated`)
	require.NoError(t, err)
	require.Lenf(t, diags, 1, "expected a fatal syntax diagnostic, got %+v", diags)
	require.Equal(t, SeverityError, diags[0].Severity)
}

func TestClassifyPathBased(t *testing.T) {
	c, err := Classify(DefaultLinter{}, "./scripts/deploy.sh $ENV")
	require.NoError(t, err)
	require.Equal(t, "./scripts/deploy.sh", c.Head)
	require.True(t, c.PathBased)
	require.Equal(t, []string{"ENV"}, c.UndefinedVars)
}

func TestClassifyNonPathBased(t *testing.T) {
	c, err := Classify(DefaultLinter{}, "make test")
	require.NoError(t, err)
	require.Equal(t, "make", c.Head)
	require.False(t, c.PathBased)
}

func TestHeadToken(t *testing.T) {
	require.Equal(t, "make", HeadToken("  make   test  "))
	require.Equal(t, "", HeadToken(""))
}

func TestIsPathBased(t *testing.T) {
	tests := []struct {
		head string
		want bool
	}{
		{"/usr/bin/make", true},
		{"./run.sh", true},
		{"bin/run.sh", true},
		{"make", false},
		{"", false},
	}
	for _, tt := range tests {
		require.Equalf(t, tt.want, IsPathBased(tt.head), "IsPathBased(%q)", tt.head)
	}
}
