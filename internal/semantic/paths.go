package semantic

import (
	"github.com/buildkite/pipeline-validator/internal/diagnostic"
	"github.com/buildkite/pipeline-validator/internal/hostenv"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
)

// CheckPaths verifies that every path-based command head (§4.4.3) exists
// and is executable, unless exempted by expect_paths.
func CheckPaths(pd *pipelinedef.PipelineDef) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	exempt := map[string]bool{}
	for _, p := range pd.ExpectPaths {
		exempt[p] = true
	}

	root := hostenv.WorkspaceRoot()

	for _, cmd := range commandExprs(pd) {
		if !isPathBased(cmd.Head) || exempt[cmd.Head] {
			continue
		}

		resolved := hostenv.ResolvePath(cmd.Head, root)
		if !hostenv.Exists(resolved) {
			diags.Add(diagnostic.New(diagnostic.MissingPath, cmd.Span,
				"command %q does not exist or is not executable", cmd.Head).
				WithHints("add it to expect_paths if it is created earlier in the build"))
		}
	}

	return diags
}
