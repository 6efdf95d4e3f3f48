package semantic

import (
	"github.com/buildkite/pipeline-validator/internal/bazel"
	"github.com/buildkite/pipeline-validator/internal/diagnostic"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
)

func buildToolExprs(pd *pipelinedef.PipelineDef) []*pipelinedef.BuildToolExpr {
	var out []*pipelinedef.BuildToolExpr
	walkSteps(pd.Steps, func(s pipelinedef.StepDef) {
		if s.Kind != pipelinedef.StepCommand || s.CommandStep == nil {
			return
		}
		if s.CommandStep.Command.Kind == pipelinedef.CommandBuildTool {
			out = append(out, s.CommandStep.Command.BuildTool)
		}
	})
	return out
}

// CheckBuildTool verifies every bazel!(...) invocation's verb against the
// resolved whitelist - the fixed set plus any author-declared custom_verbs
// - and, per §4.2's build-tool extension, its target patterns: each target
// goes through the fast-path pattern validator, and the resolved targets as
// a set go through the dry-run analysis (`run` wants exactly one target,
// `test` wants at least one of a test kind).
func CheckBuildTool(pd *pipelinedef.PipelineDef) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	verbs := bazel.ResolveVerbs(pd.CustomVerbs)
	for _, bt := range buildToolExprs(pd) {
		if !bazel.ValidateVerb(verbs, bt.Verb) {
			diags.Addf(diagnostic.UnknownCommand, bt.Span,
				"bazel verb %q is not recognized; add it to custom_verbs if intentional", bt.Verb)
			continue
		}

		targets := bazel.ExtractTargets(bt.Text)
		for _, t := range targets {
			if !bazel.IsValidTargetPattern(t) {
				diags.Addf(diagnostic.UnknownCommand, bt.Span, "bazel target pattern %q is not valid", t)
			}
		}
		if err := bazel.AnalyzeDryRun(bt.Verb, targets); err != nil {
			diags.Addf(diagnostic.UnknownCommand, bt.Span, "%s", err)
		}
	}

	return diags
}
