package semantic

import (
	"sort"
	"strings"

	"github.com/buildkite/pipeline-validator/internal/diagnostic"
	"github.com/buildkite/pipeline-validator/internal/hostenv"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
)

// ResolveAllowlist computes the resolved command allowlist *A* per §4.4.2:
// the author-declared allowed_commands if given, otherwise shell builtins
// plus every executable found on the host PATH, unioned with
// additional_commands either way.
func ResolveAllowlist(pd *pipelinedef.PipelineDef) map[string]bool {
	a := map[string]bool{}

	if pd.AllowedCommands != nil {
		for _, c := range pd.AllowedCommands {
			a[c] = true
		}
	} else {
		for _, b := range pipelinedef.ShellBuiltins {
			a[b] = true
		}
		for _, c := range hostenv.DiscoverPathCommands() {
			a[c] = true
		}
	}

	for _, c := range pd.AdditionalCommands {
		a[c] = true
	}

	return a
}

// commandExprs yields every CmdExpr embedded in pd's step tree, both shell
// and build-tool commands - a Dynamic command yields nothing, since it is
// opaque to static checks.
func commandExprs(pd *pipelinedef.PipelineDef) []*pipelinedef.CmdExpr {
	var out []*pipelinedef.CmdExpr
	walkSteps(pd.Steps, func(s pipelinedef.StepDef) {
		if s.Kind != pipelinedef.StepCommand || s.CommandStep == nil {
			return
		}
		switch s.CommandStep.Command.Kind {
		case pipelinedef.CommandShell:
			out = append(out, s.CommandStep.Command.Shell)
		case pipelinedef.CommandBuildTool:
			out = append(out, &s.CommandStep.Command.BuildTool.CmdExpr)
		}
	})
	return out
}

// CheckAllowlist verifies every command step's head token against the
// resolved allowlist, skipping path-based commands (§4.4.3 handles those).
func CheckAllowlist(pd *pipelinedef.PipelineDef, allowlist map[string]bool) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	for _, cmd := range commandExprs(pd) {
		if cmd.Head == "" || isPathBased(cmd.Head) {
			continue
		}
		if !allowlist[cmd.Head] {
			diags.Addf(diagnostic.UnknownCommand, cmd.Span,
				"command %q is not in the allowlist; allowed commands: %s",
				cmd.Head, strings.Join(sortedKeys(allowlist), ", "))
		}
	}

	return diags
}

func isPathBased(head string) bool {
	return strings.HasPrefix(head, "/") || strings.HasPrefix(head, "./") || strings.Contains(head, "/")
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
