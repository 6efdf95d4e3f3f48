// Package semantic is the cross-cutting checker (spec §4.4): it runs after
// every step has been parsed, and enforces key uniqueness, the command
// allowlist, path existence, environment-variable closure, and conditional
// validity across the whole step tree.
package semantic

import (
	"sort"
	"strings"

	"github.com/buildkite/pipeline-validator/internal/diagnostic"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
)

// walkSteps calls fn for every step in the tree, including steps nested
// inside groups (a Group may not itself contain a Group, per spec §3, so
// this never needs to recurse more than one level into GroupStep.Steps).
func walkSteps(steps []pipelinedef.StepDef, fn func(pipelinedef.StepDef)) {
	for _, s := range steps {
		fn(s)
		if s.Kind == pipelinedef.StepGroup && s.GroupStep != nil {
			for _, inner := range s.GroupStep.Steps {
				fn(inner)
			}
		}
	}
}

// CheckKeys enforces key uniqueness and depends_on closure across the
// entire step tree (§4.4.1).
func CheckKeys(pd *pipelinedef.PipelineDef) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	keys := map[string]bool{}
	var known []string

	walkSteps(pd.Steps, func(s pipelinedef.StepDef) {
		if s.Key == nil {
			return
		}
		if keys[s.Key.Name] {
			diags.Addf(diagnostic.DuplicateKey, s.Key.Span,
				"duplicate step key %q", s.Key.Name)
			return
		}
		keys[s.Key.Name] = true
		known = append(known, s.Key.Name)
	})

	sort.Strings(known)

	walkSteps(pd.Steps, func(s pipelinedef.StepDef) {
		for _, dep := range s.DependsOn {
			if !keys[dep.Key] {
				diags.Addf(diagnostic.UnknownDependency, dep.Span,
					"depends_on references unknown key %q; known keys: %s",
					dep.Key, strings.Join(known, ", "))
			}
		}
	})

	return diags
}
