// Package hostenv reads the two pieces of host-process state the
// validator is allowed to consult (spec §6.4): the PATH directories, to
// build the default command allowlist, and the full environment, to build
// the default expected_env. It also resolves and checks path-based
// commands for the path-existence check (§4.4.3).
package hostenv

import (
	"os"
	"path/filepath"

	"github.com/buildkite/pipeline-validator/env"
)

// DiscoverPathCommands scans every directory on the host PATH and returns
// the names of every executable file found, for the default allowlist
// (§4.4.2). Unreadable directories are skipped rather than failing the
// whole scan, matching a `PATH` entry that no longer exists.
func DiscoverPathCommands() []string {
	seen := map[string]bool{}
	var names []string

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil || !isExecutable(info.Mode()) {
				continue
			}
			name := entry.Name()
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	return names
}

// DiscoverHostEnvVars returns the names (not values) of every variable set
// in the host process environment, for the default expected_env (§3). It
// goes through env.Environment rather than reparsing os.Environ() by hand,
// so name lookups share the same case-normalization rules as the rest of
// the validator's environment handling.
func DiscoverHostEnvVars() []string {
	e := env.FromSlice(os.Environ())
	dump := e.Dump()
	names := make([]string, 0, len(dump))
	for k := range dump {
		names = append(names, k)
	}
	return names
}

// isExecutable reports whether m has at least one execute bit set, the
// same check buildkite-agent's own shell package uses to decide whether a
// PATH entry is runnable.
func isExecutable(m os.FileMode) bool {
	return m&0o111 != 0
}

// ResolvePath resolves a path-based command head to an absolute path per
// §4.4.3: "./…" is resolved against workspaceRoot (falling back to the
// current working directory if workspaceRoot is empty), "/…" is used
// as-is, and anything else is returned unresolved.
func ResolvePath(head, workspaceRoot string) string {
	switch {
	case len(head) > 0 && head[0] == '/':
		return head
	case len(head) >= 2 && head[:2] == "./":
		root := workspaceRoot
		if root == "" {
			if wd, err := os.Getwd(); err == nil {
				root = wd
			}
		}
		return filepath.Join(root, head)
	default:
		return head
	}
}

// Exists reports whether path exists and has at least one execute bit set.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return isExecutable(info.Mode())
}

// WorkspaceRoot resolves the documented workspace-locator environment
// variables (§4.4.3): a host build-tool's base-path variable, or the
// Buildkite-provided checkout path, in that preference order.
func WorkspaceRoot() string {
	for _, name := range []string{"BUILD_WORKSPACE_DIRECTORY", "BUILDKITE_BUILD_CHECKOUT_PATH"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
