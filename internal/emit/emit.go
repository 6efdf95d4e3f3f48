// Package emit lowers a validated pipelinedef.PipelineDef into a
// github.com/buildkite/go-pipeline document - the typed builder API spec.md
// names as an external, out-of-scope collaborator - and serializes it to
// YAML or JSON for upload, mirroring clicommand/pipeline_upload.go's own
// dry-run output switch.
package emit

import (
	pipeline "github.com/buildkite/go-pipeline"
	"github.com/buildkite/go-pipeline/ordered"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
)

// Pipeline lowers pd into a *pipeline.Pipeline. Callers are expected to
// have already run semantic.Check(pd) and confirmed it returned no
// diagnostics: emission never itself re-validates.
func Pipeline(pd *pipelinedef.PipelineDef) *pipeline.Pipeline {
	steps := make(pipeline.Steps, 0, len(pd.Steps))
	for _, s := range pd.Steps {
		steps = append(steps, step(s, pd.DefaultPlugins))
	}

	p := &pipeline.Pipeline{
		Steps: steps,
		Env:   pd.Env,
	}

	p.RemainingFields = passthroughFields(pd)
	return p
}

// passthroughFields collects the pipeline-level attributes that flow
// straight to the emitted document without their own dedicated field on
// pipeline.Pipeline (agents, notify, image, secrets, priority).
func passthroughFields(pd *pipelinedef.PipelineDef) map[string]any {
	out := map[string]any{}

	if pd.Agents != nil && !pd.Agents.IsZero() {
		out["agents"] = pd.Agents
	}
	if len(pd.Notify) > 0 {
		notify := make([]any, 0, len(pd.Notify))
		for _, n := range pd.Notify {
			notify = append(notify, notifyEntry(n))
		}
		out["notify"] = notify
	}
	if pd.Image != nil {
		out["image"] = *pd.Image
	}
	if pd.Secrets != nil {
		out["secrets"] = toAny(*pd.Secrets)
	}
	if pd.Priority != nil {
		out["priority"] = *pd.Priority
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func notifyEntry(n pipelinedef.NotifyValue) any {
	key := map[pipelinedef.NotifyKind]string{
		pipelinedef.NotifySlack:             "slack",
		pipelinedef.NotifyEmail:             "email",
		pipelinedef.NotifyWebhook:           "webhook",
		pipelinedef.NotifyPagerduty:         "pagerduty_change_event",
		pipelinedef.NotifyGithubCommitStatus: "github_commit_status",
		pipelinedef.NotifyGithubCheck:       "github_check",
		pipelinedef.NotifyBasecamp:          "basecamp_campfire",
	}[n.Kind]

	entry := ordered.NewMap[string, any](2)
	if key != "" {
		entry.Set(key, n.Target)
	}
	if n.If != nil {
		entry.Set("if", n.If.Text)
	}
	return entry
}

func step(s pipelinedef.StepDef, defaultPlugins []pipelinedef.NestedValue) pipeline.Step {
	switch s.Kind {
	case pipelinedef.StepCommand:
		return commandStep(s, defaultPlugins)
	case pipelinedef.StepWait:
		return waitStep(s)
	case pipelinedef.StepBlock:
		return inputLikeStep(s, "block", s.BlockStep.Label, s.BlockStep.Prompt, s.BlockStep.Fields)
	case pipelinedef.StepInput:
		return inputLikeStep(s, "input", s.InputStep.Label, s.InputStep.Prompt, s.InputStep.Fields)
	case pipelinedef.StepTrigger:
		return triggerStep(s)
	case pipelinedef.StepGroup:
		return groupStep(s, defaultPlugins)
	default:
		return nil
	}
}

func commonFields(c pipelinedef.Common) map[string]any {
	fields := map[string]any{}
	if c.Key != nil {
		fields["key"] = c.Key.Name
	}
	if len(c.DependsOn) > 0 {
		deps := make([]any, len(c.DependsOn))
		for i, d := range c.DependsOn {
			deps[i] = d.Key
		}
		fields["depends_on"] = deps
	}
	if c.IfCond != nil {
		fields["if"] = c.IfCond.Text
	}
	if len(c.Branches) > 0 {
		fields["branches"] = c.Branches
	}
	if c.Skip != nil {
		if c.Skip.Bool != nil {
			fields["skip"] = *c.Skip.Bool
		} else if c.Skip.Reason != nil {
			fields["skip"] = *c.Skip.Reason
		}
	}
	if c.AllowDependencyFailure {
		fields["allow_dependency_failure"] = true
	}
	return fields
}

// mergedPlugins implements §4.4.5: default_plugins ++ step.plugins, an
// emission-time transform that never mutates the StepDef.
func mergedPlugins(defaults, own []pipelinedef.NestedValue) pipeline.Plugins {
	if len(defaults) == 0 && len(own) == 0 {
		return nil
	}
	out := make(pipeline.Plugins, 0, len(defaults)+len(own))
	for _, d := range defaults {
		if p := toPlugin(d); p != nil {
			out = append(out, p)
		}
	}
	for _, o := range own {
		if p := toPlugin(o); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func commandStep(s pipelinedef.StepDef, defaultPlugins []pipelinedef.NestedValue) *pipeline.CommandStep {
	cs := s.CommandStep

	cmd := &pipeline.CommandStep{
		Command: commandText(cs.Command),
		Plugins: mergedPlugins(defaultPlugins, cs.Plugins),
	}

	if cs.Env != nil && !cs.Env.IsZero() {
		env := map[string]string{}
		_ = cs.Env.Range(func(k, v string) error {
			env[k] = v
			return nil
		})
		cmd.Env = env
	}
	if cs.Matrix != nil {
		cmd.Matrix = toAny(*cs.Matrix)
	}

	fields := commonFields(s.Common)
	if cs.Label != "" {
		fields["label"] = cs.Label
	}
	if cs.Agents != nil && !cs.Agents.IsZero() {
		fields["agents"] = cs.Agents
	}
	cmd.RemainingFields = fields

	return cmd
}

func commandText(v pipelinedef.CommandValue) string {
	switch v.Kind {
	case pipelinedef.CommandShell:
		return v.Shell.Text
	case pipelinedef.CommandBuildTool:
		return v.BuildTool.Text
	case pipelinedef.CommandDynamic:
		return dynamicCommandText(v.Dynamic)
	default:
		return ""
	}
}

func dynamicCommandText(d *pipelinedef.DynamicCommand) string {
	text := d.Head
	for _, f := range d.Flags {
		text += " " + f
	}
	return text
}

func waitStep(s pipelinedef.StepDef) *pipeline.WaitStep {
	fields := commonFields(s.Common)
	if s.WaitStep.ContinueOnFailure {
		fields["continue_on_failure"] = true
	}
	if len(fields) == 0 {
		return &pipeline.WaitStep{Scalar: "wait"}
	}
	return &pipeline.WaitStep{Contents: fields}
}

func inputLikeStep(s pipelinedef.StepDef, kind, label, prompt string, formFields []pipelinedef.FieldDef) *pipeline.InputStep {
	fields := commonFields(s.Common)
	fields[kind] = label
	if prompt != "" {
		fields["prompt"] = prompt
	}
	if len(formFields) > 0 {
		fields["fields"] = fieldList(formFields)
	}
	return &pipeline.InputStep{Contents: fields}
}

func fieldList(defs []pipelinedef.FieldDef) []any {
	out := make([]any, 0, len(defs))
	for _, f := range defs {
		out = append(out, fieldEntry(f))
	}
	return out
}

func fieldEntry(f pipelinedef.FieldDef) *ordered.Map[string, any] {
	m := ordered.NewMap[string, any](8)
	switch f.Kind {
	case pipelinedef.FieldText:
		t := f.Text
		m.Set("key", t.Key)
		if t.Text != "" {
			m.Set("text", t.Text)
		}
		setOptional(m, t.Hint, t.Required, t.Default, t.Format)
	case pipelinedef.FieldSelect:
		sel := f.Select
		m.Set("key", sel.Key)
		if sel.Select != "" {
			m.Set("select", sel.Select)
		}
		setOptional(m, sel.Hint, sel.Required, sel.Default, "")
		if sel.Multiple {
			m.Set("multiple", true)
		}
		if len(sel.Options) > 0 {
			opts := make([]any, 0, len(sel.Options))
			for _, o := range sel.Options {
				om := ordered.NewMap[string, any](2)
				om.Set("label", o.Label)
				om.Set("value", o.Value)
				opts = append(opts, om)
			}
			m.Set("options", opts)
		}
	}
	return m
}

func setOptional(m *ordered.Map[string, any], hint string, required bool, def, format string) {
	if hint != "" {
		m.Set("hint", hint)
	}
	if required {
		m.Set("required", true)
	}
	if def != "" {
		m.Set("default", def)
	}
	if format != "" {
		m.Set("format", format)
	}
}

func triggerStep(s pipelinedef.StepDef) *pipeline.TriggerStep {
	ts := s.TriggerStep
	fields := commonFields(s.Common)
	fields["trigger"] = ts.Trigger
	if ts.Label != "" {
		fields["label"] = ts.Label
	}
	if ts.Build != nil {
		fields["build"] = toAny(*ts.Build)
	}
	if ts.Async {
		fields["async"] = true
	}
	return &pipeline.TriggerStep{Contents: fields}
}

func groupStep(s pipelinedef.StepDef, defaultPlugins []pipelinedef.NestedValue) *pipeline.GroupStep {
	gs := s.GroupStep

	inner := make(pipeline.Steps, 0, len(gs.Steps))
	for _, st := range gs.Steps {
		inner = append(inner, step(st, defaultPlugins))
	}

	g := &pipeline.GroupStep{
		Steps:           inner,
		RemainingFields: commonFields(s.Common),
	}
	if gs.Label != "" {
		g.Group = pipeline.NewGroupString(gs.Label)
	}
	return g
}
