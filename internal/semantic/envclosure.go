package semantic

import (
	"github.com/buildkite/pipeline-validator/internal/diagnostic"
	"github.com/buildkite/pipeline-validator/internal/hostenv"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
)

// CheckEnvClosure verifies every undefined variable the shell linter
// flagged in a command is authorized by the pipeline's environment closure
// (§4.4.4): pipeline env, step env, or expected_env (falling back to the
// host process environment's names when expected_env is unset).
func CheckEnvClosure(pd *pipelinedef.PipelineDef) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	if pd.ExpectedEnvIsHostDefined {
		// The referenced list's contents can't be known at validation
		// time; closure checking is suppressed for the whole pipeline.
		return diags
	}

	pipelineEnv := map[string]bool{}
	if pd.Env != nil {
		pd.Env.Range(func(k, _ string) error {
			pipelineEnv[k] = true
			return nil
		})
	}

	expected := map[string]bool{}
	if pd.ExpectedEnv != nil {
		for _, e := range pd.ExpectedEnv {
			expected[e] = true
		}
	} else {
		for _, e := range hostenv.DiscoverHostEnvVars() {
			expected[e] = true
		}
	}

	walkSteps(pd.Steps, func(s pipelinedef.StepDef) {
		if s.Kind != pipelinedef.StepCommand || s.CommandStep == nil {
			return
		}

		stepEnv := map[string]bool{}
		if s.CommandStep.Env != nil {
			s.CommandStep.Env.Range(func(k, _ string) error {
				stepEnv[k] = true
				return nil
			})
		}

		var cmd *pipelinedef.CmdExpr
		switch s.CommandStep.Command.Kind {
		case pipelinedef.CommandShell:
			cmd = s.CommandStep.Command.Shell
		case pipelinedef.CommandBuildTool:
			cmd = &s.CommandStep.Command.BuildTool.CmdExpr
		default:
			return // Dynamic commands have no undefined_vars by construction.
		}
		if cmd == nil {
			return
		}

		for _, v := range cmd.UndefinedVars {
			if pipelineEnv[v] || stepEnv[v] || expected[v] {
				continue
			}
			diags.Add(diagnostic.New(diagnostic.MissingEnvVar, cmd.Span,
				"command references undeclared variable $%s", v).
				WithHints(
					"add "+v+" to the pipeline or step env: block",
					"or add \""+v+"\" to expected_env:",
				))
		}
	})

	return diags
}
