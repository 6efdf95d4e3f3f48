package semantic

import (
	"github.com/buildkite/pipeline-validator/internal/diagnostic"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
)

// Check runs every cross-cutting check over pd and returns the full set of
// accumulated diagnostics (§4.4). Any non-empty result aborts emission.
func Check(pd *pipelinedef.PipelineDef) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	diags.Merge(CheckKeys(pd))

	allowlist := ResolveAllowlist(pd)
	diags.Merge(CheckAllowlist(pd, allowlist))

	diags.Merge(CheckPaths(pd))
	diags.Merge(CheckEnvClosure(pd))
	diags.Merge(CheckConditionals(pd))
	diags.Merge(CheckBuildTool(pd))

	return diags
}
