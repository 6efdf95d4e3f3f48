package semantic

import (
	"github.com/buildkite/pipeline-validator/internal/conditional"
	"github.com/buildkite/pipeline-validator/internal/diagnostic"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
)

// CheckConditionals validates every `if:` expression in the step tree and
// in notify entries against the conditional grammar (§4.3). Unlike the
// other checks, a bad conditional does not abort sibling validation - its
// diagnostics are accumulated, per spec §7's recovery policy for the
// bad-regex and bad-conditional categories.
func CheckConditionals(pd *pipelinedef.PipelineDef) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	walkSteps(pd.Steps, func(s pipelinedef.StepDef) {
		if s.IfCond != nil {
			diags.Merge(conditional.Validate(s.IfCond.Text, s.IfCond.Span))
		}
	})

	for _, n := range pd.Notify {
		if n.If != nil {
			diags.Merge(conditional.Validate(n.If.Text, n.If.Span))
		}
	}

	return diags
}
