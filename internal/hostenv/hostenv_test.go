package hostenv

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverPathCommandsFindsExecutables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute-bit semantics differ on windows")
	}

	dir := t.TempDir()
	exe := filepath.Join(dir, "my-tool")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	nonExe := filepath.Join(dir, "readme.txt")
	require.NoError(t, os.WriteFile(nonExe, []byte("hi"), 0o644))

	t.Setenv("PATH", dir)

	names := DiscoverPathCommands()
	assert.Containsf(t, names, "my-tool", "expected my-tool to be discovered, got %v", names)
	assert.NotContainsf(t, names, "readme.txt", "did not expect a non-executable file to be discovered, got %v", names)
}

func TestDiscoverHostEnvVars(t *testing.T) {
	t.Setenv("PIPELINE_VALIDATOR_TEST_VAR", "1")

	names := DiscoverHostEnvVars()
	assert.Contains(t, names, "PIPELINE_VALIDATOR_TEST_VAR")
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/usr/bin/make", ResolvePath("/usr/bin/make", "/workspace"))
	assert.Equal(t, "/workspace/scripts/run.sh", ResolvePath("./scripts/run.sh", "/workspace"))
	assert.Equal(t, "make", ResolvePath("make", "/workspace"))
}

func TestWorkspaceRootPrefersBuildWorkspaceDirectory(t *testing.T) {
	t.Setenv("BUILD_WORKSPACE_DIRECTORY", "/bazel/workspace")
	t.Setenv("BUILDKITE_BUILD_CHECKOUT_PATH", "/buildkite/checkout")

	assert.Equal(t, "/bazel/workspace", WorkspaceRoot())
}

func TestWorkspaceRootFallsBackToCheckoutPath(t *testing.T) {
	t.Setenv("BUILD_WORKSPACE_DIRECTORY", "")
	t.Setenv("BUILDKITE_BUILD_CHECKOUT_PATH", "/buildkite/checkout")

	assert.Equal(t, "/buildkite/checkout", WorkspaceRoot())
}

func TestExists(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute-bit semantics differ on windows")
	}

	dir := t.TempDir()
	exe := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(exe, []byte("x"), 0o755))

	assert.True(t, Exists(exe))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}
