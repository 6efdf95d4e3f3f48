// Package dsl continued: build.go walks the raw parse tree produced by
// parser.go into a pipelinedef.PipelineDef, reporting structural errors
// (spec §7's "structural" category) and invoking the shell linter on every
// statically-known command string along the way.
package dsl

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"

	"github.com/buildkite/go-pipeline/ordered"
	"github.com/buildkite/pipeline-validator/internal/bazel"
	"github.com/buildkite/pipeline-validator/internal/diagnostic"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
	"github.com/buildkite/pipeline-validator/internal/ptr"
	"github.com/buildkite/pipeline-validator/internal/shelllint"
	"github.com/buildkite/pipeline-validator/internal/span"
)

// Parse parses and builds a DSL source document into a PipelineDef. file
// names the source for diagnostic spans; linter submits command text to
// the shell linter (§4.2).
func Parse(file, src string, linter shelllint.Linter) (*pipelinedef.PipelineDef, *diagnostic.Diagnostics) {
	diags := &diagnostic.Diagnostics{}

	obj, kw, kwSpan, err := parseDocument(file, src)
	if err != nil {
		diags.Addf(diagnostic.Structural, span.Span{File: file}, "%s", err)
		return nil, diags
	}
	if kw != "pipeline" {
		diags.Addf(diagnostic.Structural, kwSpan, "expected top-level %q block, got %q", "pipeline", kw)
		return nil, diags
	}

	b := &builder{diags: diags, linter: linter}
	pd := b.buildPipeline(obj)
	return pd, diags
}

type builder struct {
	diags  *diagnostic.Diagnostics
	linter shelllint.Linter
}

var pipelineFields = map[string]bool{
	"steps": true, "env": true, "expected_env": true, "allowed_commands": true,
	"additional_commands": true, "expect_paths": true, "agents": true, "notify": true,
	"image": true, "secrets": true, "priority": true, "default_plugins": true, "custom_verbs": true,
}

func (b *builder) buildPipeline(obj *object) *pipelinedef.PipelineDef {
	pd := &pipelinedef.PipelineDef{}

	for _, f := range obj.fields {
		if !pipelineFields[f.key] {
			b.diags.Addf(diagnostic.Structural, f.keySpan, "unknown pipeline field %q", f.key)
			continue
		}
	}

	stepsVal, ok := obj.get("steps")
	if !ok {
		b.diags.Addf(diagnostic.Structural, span.Span{}, "pipeline block is missing required field %q", "steps")
	} else if stepsVal.kind != vArray {
		b.diags.Addf(diagnostic.Structural, stepsVal.span, "%q must be an array of steps", "steps")
	} else {
		pd.Steps = b.buildSteps(stepsVal.array, false)
	}

	if v, ok := obj.get("env"); ok {
		pd.Env = b.buildStringMap(v)
	}
	if v, ok := obj.get("expected_env"); ok {
		pd.ExpectedEnv, pd.ExpectedEnvIsHostDefined = b.buildExpectedEnv(v)
	}
	if v, ok := obj.get("allowed_commands"); ok {
		pd.AllowedCommands = b.buildStringList(v)
	}
	if v, ok := obj.get("additional_commands"); ok {
		pd.AdditionalCommands = b.buildStringList(v)
	}
	if v, ok := obj.get("expect_paths"); ok {
		pd.ExpectPaths = b.buildStringList(v)
	}
	if v, ok := obj.get("agents"); ok {
		pd.Agents = b.buildStringMap(v)
	}
	if v, ok := obj.get("notify"); ok {
		pd.Notify = b.buildNotifyList(v)
	}
	if v, ok := obj.get("image"); ok {
		if s, ok := b.str(v); ok {
			pd.Image = ptr.To(s)
		}
	}
	if v, ok := obj.get("secrets"); ok {
		pd.Secrets = ptr.To(b.buildNested(v))
	}
	if v, ok := obj.get("priority"); ok {
		if n, ok := b.int(v); ok {
			pd.Priority = ptr.To(n)
		}
	}
	if v, ok := obj.get("default_plugins"); ok {
		pd.DefaultPlugins = b.buildNestedList(v)
	}
	if v, ok := obj.get("custom_verbs"); ok {
		pd.CustomVerbs = b.buildStringList(v)
	}

	return pd
}

// buildExpectedEnv resolves §6's KnownList expansion: a bare identifier
// naming one of SHELL_ENV/BUILDKITE_ENV/CI_ENV expands to its literal
// roster at parse time; any other identifier is treated as a host-defined
// reference whose contents are unknowable statically.
func (b *builder) buildExpectedEnv(v value) ([]string, bool) {
	if v.kind == vIdent {
		if list, ok := pipelinedef.KnownEnvList(v.ident); ok {
			return list, false
		}
		return nil, true
	}
	if v.kind != vArray {
		b.diags.Addf(diagnostic.Structural, v.span, "%q must be an array or a known env list name", "expected_env")
		return nil, false
	}
	var out []string
	hostDefined := false
	for _, e := range v.array {
		if e.kind == vIdent {
			if list, ok := pipelinedef.KnownEnvList(e.ident); ok {
				out = append(out, list...)
				continue
			}
			hostDefined = true
			continue
		}
		if s, ok := b.str(e); ok {
			out = append(out, s)
		}
	}
	return out, hostDefined
}

func (b *builder) buildSteps(vals []value, insideGroup bool) []pipelinedef.StepDef {
	steps := make([]pipelinedef.StepDef, 0, len(vals))
	for _, v := range vals {
		s := b.buildStep(v)
		if s.Kind == pipelinedef.StepGroup && insideGroup {
			b.diags.Addf(diagnostic.Structural, v.span, "a group step may not contain another group step")
			continue
		}
		steps = append(steps, s)
	}
	return steps
}

func (b *builder) buildStep(v value) pipelinedef.StepDef {
	switch v.kind {
	case vIdent:
		if v.ident != "wait" {
			b.diags.Addf(diagnostic.Structural, v.span, "step %q must use a call or braced form", v.ident)
			return pipelinedef.StepDef{}
		}
		return pipelinedef.StepDef{Kind: pipelinedef.StepWait, WaitStep: &pipelinedef.WaitStepDef{}}

	case vChain:
		if v.chain.head.name == "wait" {
			b.diags.Addf(diagnostic.Structural, v.span, "wait does not take the fluent call form; write it bare or as wait { ... }")
			return pipelinedef.StepDef{}
		}
		return b.buildStepChain(v.chain.head.name, v.chain.head.args, v.chain.methods, v.span)

	case vObject:
		if v.tag == "" {
			b.diags.Addf(diagnostic.Structural, v.span, "step must be tagged with a kind (command, wait, block, input, trigger, group)")
			return pipelinedef.StepDef{}
		}
		return b.buildStepObject(v.tag, v.object, v.span)

	default:
		b.diags.Addf(diagnostic.Structural, v.span, "invalid step value")
		return pipelinedef.StepDef{}
	}
}

// buildStepChain handles the fluent form: kind(primaryArgs...).method(args)...
func (b *builder) buildStepChain(kind string, primary []value, methods []call, sp span.Span) pipelinedef.StepDef {
	fields := &object{}
	switch kind {
	case "command":
		if len(primary) == 1 {
			fields.fields = append(fields.fields, field{key: "command", val: primary[0]})
		}
	case "block", "input":
		if len(primary) == 1 {
			fields.fields = append(fields.fields, field{key: "label", val: primary[0]})
		}
	case "trigger":
		if len(primary) == 1 {
			fields.fields = append(fields.fields, field{key: "trigger", val: primary[0]})
		}
	case "group":
		if len(primary) == 1 {
			fields.fields = append(fields.fields, field{key: "label", val: primary[0]})
		}
	default:
		b.diags.Addf(diagnostic.Structural, sp, "unknown step kind %q", kind)
		return pipelinedef.StepDef{}
	}

	for _, m := range methods {
		fields.fields = append(fields.fields, field{key: m.name, keySpan: m.span, val: singleOrArray(m.args)})
	}

	return b.buildStepObject(kind, fields, sp)
}

// singleOrArray collapses a method's argument list into one value: a
// single argument passes through unwrapped, more than one is wrapped as an
// array so field builders that expect list values (depends_on, branches)
// see a uniform shape regardless of whether the author wrote varargs or
// an explicit array literal.
func singleOrArray(args []value) value {
	if len(args) == 1 {
		return args[0]
	}
	return value{kind: vArray, array: args}
}

var stepKindFields = map[string]map[string]bool{
	"command": {"command": true, "label": true, "env": true, "plugins": true, "agents": true, "matrix": true},
	"wait":    {"continue_on_failure": true},
	"block":   {"label": true, "prompt": true, "fields": true},
	"input":   {"label": true, "prompt": true, "fields": true},
	"trigger": {"trigger": true, "label": true, "build": true, "async": true},
	"group":   {"label": true, "steps": true},
}

func (b *builder) buildStepObject(kind string, obj *object, sp span.Span) pipelinedef.StepDef {
	allowed, ok := stepKindFields[kind]
	if !ok {
		b.diags.Addf(diagnostic.Structural, sp, "unknown step kind %q", kind)
		return pipelinedef.StepDef{}
	}

	common := pipelinedef.Common{}
	hasIf, hasCondition := false, false

	for _, f := range obj.fields {
		switch f.key {
		case "key":
			common.Key = b.buildKey(f.val)
		case "depends_on":
			common.DependsOn = b.buildDependsOn(f.val)
		case "if":
			hasIf = true
			common.IfCond = b.buildIfCond(f.val)
		case "condition":
			hasCondition = true
			common.IfCond = b.buildIfCond(f.val)
		case "branches":
			common.Branches = b.buildStringList(f.val)
		case "skip":
			common.Skip = b.buildSkip(f.val)
		case "allow_dependency_failure":
			if v, ok := b.bool_(f.val); ok {
				common.AllowDependencyFailure = v
			}
		default:
			if !allowed[f.key] {
				b.diags.Addf(diagnostic.Structural, f.keySpan, "field %q is not valid on a %s step", f.key, kind)
			}
		}
	}

	if hasIf && hasCondition {
		b.diags.Addf(diagnostic.Structural, sp, "a step may declare %q or %q but not both", "if", "condition")
	}

	if kind == "wait" && common.Key != nil {
		b.diags.Addf(diagnostic.Structural, sp, "a wait step may not declare a key")
		common.Key = nil
	}

	s := pipelinedef.StepDef{Common: common}

	switch kind {
	case "command":
		s.Kind = pipelinedef.StepCommand
		s.CommandStep = b.buildCommandStep(obj)
	case "wait":
		s.Kind = pipelinedef.StepWait
		s.WaitStep = &pipelinedef.WaitStepDef{ContinueOnFailure: b.optBool(obj, "continue_on_failure")}
	case "block":
		s.Kind = pipelinedef.StepBlock
		s.BlockStep = &pipelinedef.BlockStepDef{
			Label:  b.optStr(obj, "label"),
			Prompt: b.optStr(obj, "prompt"),
			Fields: b.buildFieldDefs(obj),
		}
	case "input":
		s.Kind = pipelinedef.StepInput
		s.InputStep = &pipelinedef.InputStepDef{
			Label:  b.optStr(obj, "label"),
			Prompt: b.optStr(obj, "prompt"),
			Fields: b.buildFieldDefs(obj),
		}
	case "trigger":
		s.Kind = pipelinedef.StepTrigger
		s.TriggerStep = b.buildTriggerStep(obj)
	case "group":
		s.Kind = pipelinedef.StepGroup
		s.GroupStep = b.buildGroupStep(obj)
	}

	return s
}

func (b *builder) buildCommandStep(obj *object) *pipelinedef.CommandStepDef {
	cs := &pipelinedef.CommandStepDef{Label: b.optStr(obj, "label")}
	if v, ok := obj.get("command"); ok {
		cs.Command = b.buildCommandValue(v)
	} else {
		b.diags.Addf(diagnostic.Structural, span.Span{}, "a command step is missing required field %q", "command")
	}
	if v, ok := obj.get("env"); ok {
		cs.Env = b.buildStringMap(v)
	}
	if v, ok := obj.get("plugins"); ok {
		cs.Plugins = b.buildNestedList(v)
	}
	if v, ok := obj.get("agents"); ok {
		cs.Agents = b.buildStringMap(v)
	}
	if v, ok := obj.get("matrix"); ok {
		cs.Matrix = ptr.To(b.buildNested(v))
	}
	return cs
}

func (b *builder) buildTriggerStep(obj *object) *pipelinedef.TriggerStepDef {
	ts := &pipelinedef.TriggerStepDef{Label: b.optStr(obj, "label")}
	if v, ok := obj.get("trigger"); ok {
		if s, ok := b.str(v); ok {
			ts.Trigger = s
		}
	} else {
		b.diags.Addf(diagnostic.Structural, span.Span{}, "a trigger step is missing required field %q", "trigger")
	}
	if v, ok := obj.get("build"); ok {
		ts.Build = ptr.To(b.buildNested(v))
	}
	ts.Async = b.optBool(obj, "async")
	return ts
}

func (b *builder) buildGroupStep(obj *object) *pipelinedef.GroupStepDef {
	gs := &pipelinedef.GroupStepDef{Label: b.optStr(obj, "label")}
	if v, ok := obj.get("steps"); ok {
		if v.kind != vArray {
			b.diags.Addf(diagnostic.Structural, v.span, "%q must be an array of steps", "steps")
		} else {
			gs.Steps = b.buildSteps(v.array, true)
		}
	} else {
		b.diags.Addf(diagnostic.Structural, span.Span{}, "a group step is missing required field %q", "steps")
	}
	return gs
}

func (b *builder) buildFieldDefs(obj *object) []pipelinedef.FieldDef {
	v, ok := obj.get("fields")
	if !ok {
		return nil
	}
	if v.kind != vArray {
		b.diags.Addf(diagnostic.Structural, v.span, "%q must be an array", "fields")
		return nil
	}
	out := make([]pipelinedef.FieldDef, 0, len(v.array))
	for _, e := range v.array {
		if e.kind != vObject {
			b.diags.Addf(diagnostic.Structural, e.span, "a form field must be an object literal")
			continue
		}
		out = append(out, b.buildFieldDef(e.object, e.span))
	}
	return out
}

func (b *builder) buildFieldDef(obj *object, sp span.Span) pipelinedef.FieldDef {
	_, isSelect := obj.get("select")
	if isSelect {
		sel := &pipelinedef.SelectFieldDef{
			Key:      b.optStr(obj, "key"),
			Select:   b.optStr(obj, "select"),
			Hint:     b.optStr(obj, "hint"),
			Required: b.optBool(obj, "required"),
			Default:  b.optStr(obj, "default"),
			Multiple: b.optBool(obj, "multiple"),
		}
		if v, ok := obj.get("options"); ok && v.kind == vArray {
			for _, e := range v.array {
				if e.kind != vObject {
					continue
				}
				sel.Options = append(sel.Options, pipelinedef.SelectOption{
					Label: b.optStr(e.object, "label"),
					Value: b.optStr(e.object, "value"),
				})
			}
		}
		return pipelinedef.FieldDef{Kind: pipelinedef.FieldSelect, Select: sel}
	}

	txt := &pipelinedef.TextFieldDef{
		Key:      b.optStr(obj, "key"),
		Text:     b.optStr(obj, "text"),
		Hint:     b.optStr(obj, "hint"),
		Required: b.optBool(obj, "required"),
		Default:  b.optStr(obj, "default"),
		Format:   b.optStr(obj, "format"),
	}
	return pipelinedef.FieldDef{Kind: pipelinedef.FieldText, Text: txt}
}

var notifyKinds = map[string]pipelinedef.NotifyKind{
	"slack": pipelinedef.NotifySlack, "email": pipelinedef.NotifyEmail,
	"webhook": pipelinedef.NotifyWebhook, "pagerduty": pipelinedef.NotifyPagerduty,
	"github_commit_status": pipelinedef.NotifyGithubCommitStatus, "github_check": pipelinedef.NotifyGithubCheck,
	"basecamp": pipelinedef.NotifyBasecamp,
}

func (b *builder) buildNotifyList(v value) []pipelinedef.NotifyValue {
	if v.kind != vArray {
		b.diags.Addf(diagnostic.Structural, v.span, "%q must be an array", "notify")
		return nil
	}
	out := make([]pipelinedef.NotifyValue, 0, len(v.array))
	for _, e := range v.array {
		if e.kind != vObject {
			b.diags.Addf(diagnostic.Structural, e.span, "a notify entry must be an object literal")
			continue
		}
		out = append(out, b.buildNotifyEntry(e.object, e.span))
	}
	return out
}

func (b *builder) buildNotifyEntry(obj *object, sp span.Span) pipelinedef.NotifyValue {
	n := pipelinedef.NotifyValue{}
	found := false
	for key, kind := range notifyKinds {
		if v, ok := obj.get(key); ok {
			n.Kind = kind
			found = true
			if s, ok := b.str(v); ok {
				n.Target = s
			}
			break
		}
	}
	if !found {
		b.diags.Addf(diagnostic.Structural, sp, "notify entry names none of the known notify channels")
	}
	if v, ok := obj.get("if"); ok {
		n.If = b.buildIfCond(v)
	}
	return n
}

// --- command values ---

func (b *builder) buildCommandValue(v value) pipelinedef.CommandValue {
	if v.kind == vString {
		b.diags.Add(diagnostic.New(diagnostic.RawCommandRejected, v.span,
			"raw command string literal must be wrapped in cmd!(...) or another command macro"))
		return pipelinedef.CommandValue{}
	}
	if v.kind != vMacro {
		b.diags.Addf(diagnostic.Structural, v.span, "command must be a macro call such as cmd!(...)")
		return pipelinedef.CommandValue{}
	}

	switch v.macro.name {
	case "cmd":
		ce := b.buildCmdExpr(v.macro)
		if ce == nil {
			return pipelinedef.CommandValue{}
		}
		return pipelinedef.CommandValue{Kind: pipelinedef.CommandShell, Shell: ce}

	case "bazel":
		ce := b.buildBuildToolCmdExpr(v.macro)
		if ce == nil {
			return pipelinedef.CommandValue{}
		}
		verb := ""
		if fields := strings.Fields(ce.Text); len(fields) > 1 {
			verb = fields[1]
		}
		return pipelinedef.CommandValue{Kind: pipelinedef.CommandBuildTool, BuildTool: &pipelinedef.BuildToolExpr{CmdExpr: *ce, Verb: verb}}

	case "comptime":
		// Per spec §4.1, a compile-time expression is evaluated and then
		// validated like a literal. This validator has no compile-time
		// expression language of its own to evaluate, so the argument is
		// already the reduced literal; it goes through the same
		// head-token/shell-lint/env path as cmd!(...).
		ce := b.buildCmdExpr(v.macro)
		if ce == nil {
			return pipelinedef.CommandValue{}
		}
		return pipelinedef.CommandValue{Kind: pipelinedef.CommandShell, Shell: ce}

	case "comptime_shell":
		ce := b.buildComptimeShellCmdExpr(v.macro)
		if ce == nil {
			return pipelinedef.CommandValue{}
		}
		return pipelinedef.CommandValue{Kind: pipelinedef.CommandShell, Shell: ce}

	case "runtime":
		// A runtime expression bypasses static validation entirely (spec
		// §4.1): its value is only known to the host language at pipeline
		// generation time, so it is carried opaquely.
		return pipelinedef.CommandValue{Kind: pipelinedef.CommandDynamic, Dynamic: b.buildDynamicCommand(v.macro)}

	default:
		b.diags.Addf(diagnostic.Structural, v.macro.span, "unknown command macro %q!()", v.macro.name)
		return pipelinedef.CommandValue{}
	}
}

func (b *builder) buildCmdExpr(m *macroCall) *pipelinedef.CmdExpr {
	if len(m.args) != 1 || m.args[0].kind != vString {
		b.diags.Addf(diagnostic.Structural, m.span, "%s!() expects exactly one string argument", m.name)
		return nil
	}
	return b.validateLiteralCmd(m.args[0].str, m.args[0].span)
}

// validateLiteralCmd runs text through the shell linter (or, with no
// linter configured, just extracts its head token) and returns the
// resulting CmdExpr. Shared by cmd!(...) and by comptime!(...)/
// comptime_shell!(...) once their value has been reduced to a literal
// string, since spec §4.1 validates both the same way.
func (b *builder) validateLiteralCmd(text string, sp span.Span) *pipelinedef.CmdExpr {
	ce := &pipelinedef.CmdExpr{Text: text, Span: sp}
	if b.linter == nil {
		ce.Head = shelllint.HeadToken(text)
		return ce
	}

	cls, err := shelllint.Classify(b.linter, text)
	if err != nil {
		b.diags.Addf(diagnostic.ShellLint, sp, "%s", err)
		ce.Head = shelllint.HeadToken(text)
		return ce
	}
	ce.Head = cls.Head
	ce.UndefinedVars = cls.UndefinedVars
	for _, d := range cls.Fatal {
		b.diags.Addf(diagnostic.ShellLint, sp, "%s: %s", d.Code, d.Message)
	}
	return ce
}

// buildComptimeShellCmdExpr implements comptime_shell!("cmd") (spec §4.1):
// the argument is run as a shell command during validation: on success its
// trimmed stdout becomes the literal command text and is validated exactly
// like a cmd!(...) literal; on failure the diagnostic is fatal and carries
// the process's exit code and stderr.
func (b *builder) buildComptimeShellCmdExpr(m *macroCall) *pipelinedef.CmdExpr {
	if len(m.args) != 1 || m.args[0].kind != vString {
		b.diags.Addf(diagnostic.Structural, m.span, "%s!() expects exactly one string argument", m.name)
		return nil
	}
	shellCmd := m.args[0].str
	sp := m.args[0].span

	var stdout, stderr bytes.Buffer
	cmd := exec.Command("sh", "-c", shellCmd)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		b.diags.Addf(diagnostic.Structural, sp, "comptime_shell!(%q) failed (exit %d): %s",
			shellCmd, exitCode, strings.TrimSpace(stderr.String()))
		return nil
	}

	return b.validateLiteralCmd(strings.TrimSpace(stdout.String()), sp)
}

// buildBuildToolCmdExpr is buildCmdExpr's bazel!() counterpart: per spec
// §4.2's build-tool extension, unquoted --flag=VALUE tails are rewritten
// to --flag='VALUE' before the text reaches the shell linter, so a bare
// flag value doesn't trigger lint noise. The rewrite only affects what is
// submitted to the linter; CmdExpr.Text keeps the command exactly as
// written.
func (b *builder) buildBuildToolCmdExpr(m *macroCall) *pipelinedef.CmdExpr {
	if len(m.args) != 1 || m.args[0].kind != vString {
		b.diags.Addf(diagnostic.Structural, m.span, "%s!() expects exactly one string argument", m.name)
		return nil
	}
	text := m.args[0].str
	sp := m.args[0].span

	ce := &pipelinedef.CmdExpr{Text: text, Head: shelllint.HeadToken(text), Span: sp}
	if b.linter == nil {
		return ce
	}

	cls, err := shelllint.Classify(b.linter, bazel.RewriteFlagValues(text))
	if err != nil {
		b.diags.Addf(diagnostic.ShellLint, sp, "%s", err)
		return ce
	}
	ce.UndefinedVars = cls.UndefinedVars
	for _, d := range cls.Fatal {
		b.diags.Addf(diagnostic.ShellLint, sp, "%s: %s", d.Code, d.Message)
	}
	return ce
}

// buildDynamicCommand builds the opaque value of a runtime!(...) command:
// every argument is a positional string fragment only the host language
// resolves, so beyond requiring each to be a string literal none of them
// is validated here (spec §4.1/§4.2 treat the whole thing as Dynamic).
func (b *builder) buildDynamicCommand(m *macroCall) *pipelinedef.DynamicCommand {
	dc := &pipelinedef.DynamicCommand{}
	for i, a := range m.args {
		s, ok := b.str(a)
		if !ok {
			continue
		}
		switch {
		case i == 0:
			dc.Head = s
		default:
			dc.Flags = append(dc.Flags, s)
		}
	}
	return dc
}

// --- scalar and collection helpers ---

func (b *builder) str(v value) (string, bool) {
	if v.kind != vString {
		b.diags.Addf(diagnostic.Structural, v.span, "expected a string")
		return "", false
	}
	return v.str, true
}

func (b *builder) bool_(v value) (bool, bool) {
	if v.kind != vBool {
		b.diags.Addf(diagnostic.Structural, v.span, "expected a boolean")
		return false, false
	}
	return v.b, true
}

func (b *builder) int(v value) (int, bool) {
	if v.kind != vInt {
		b.diags.Addf(diagnostic.Structural, v.span, "expected an integer")
		return 0, false
	}
	return v.i, true
}

func (b *builder) optStr(obj *object, key string) string {
	v, ok := obj.get(key)
	if !ok {
		return ""
	}
	s, _ := b.str(v)
	return s
}

func (b *builder) optBool(obj *object, key string) bool {
	v, ok := obj.get(key)
	if !ok {
		return false
	}
	v2, _ := b.bool_(v)
	return v2
}

func (b *builder) buildStringList(v value) []string {
	if v.kind != vArray {
		b.diags.Addf(diagnostic.Structural, v.span, "expected an array of strings")
		return nil
	}
	out := make([]string, 0, len(v.array))
	for _, e := range v.array {
		if s, ok := b.str(e); ok {
			out = append(out, s)
		}
	}
	return out
}

func (b *builder) buildKey(v value) *pipelinedef.Key {
	s, ok := b.str(v)
	if !ok {
		return nil
	}
	return &pipelinedef.Key{Name: s, Span: v.span}
}

func (b *builder) buildDependsOn(v value) []pipelinedef.DependencyRef {
	var elems []value
	if v.kind == vArray {
		elems = v.array
	} else {
		elems = []value{v}
	}
	out := make([]pipelinedef.DependencyRef, 0, len(elems))
	for _, e := range elems {
		if s, ok := b.str(e); ok {
			out = append(out, pipelinedef.DependencyRef{Key: s, Span: e.span})
		}
	}
	return out
}

func (b *builder) buildIfCond(v value) *pipelinedef.IfCondition {
	s, ok := b.str(v)
	if !ok {
		return nil
	}
	return &pipelinedef.IfCondition{Text: s, Span: v.span}
}

func (b *builder) buildSkip(v value) *pipelinedef.SkipValue {
	switch v.kind {
	case vBool:
		return &pipelinedef.SkipValue{Bool: ptr.To(v.b)}
	case vString:
		return &pipelinedef.SkipValue{Reason: ptr.To(v.str)}
	default:
		b.diags.Addf(diagnostic.Structural, v.span, "%q must be a boolean or a string reason", "skip")
		return nil
	}
}

func (b *builder) buildStringMap(v value) *ordered.MapSS {
	if v.kind != vObject {
		b.diags.Addf(diagnostic.Structural, v.span, "expected an object of string values")
		return nil
	}
	m := ordered.NewMap[string, string](len(v.object.fields))
	for _, f := range v.object.fields {
		if s, ok := b.str(f.val); ok {
			m.Set(f.key, s)
		}
	}
	return m
}

func (b *builder) buildNested(v value) pipelinedef.NestedValue {
	switch v.kind {
	case vString:
		return pipelinedef.NewNestedString(v.str)
	case vInt:
		return pipelinedef.NewNestedInt(v.i)
	case vBool:
		return pipelinedef.NewNestedBool(v.b)
	case vArray:
		elems := make([]pipelinedef.NestedValue, 0, len(v.array))
		for _, e := range v.array {
			elems = append(elems, b.buildNested(e))
		}
		return pipelinedef.NewNestedArray(elems)
	case vObject:
		m := ordered.NewMap[string, pipelinedef.NestedValue](len(v.object.fields))
		for _, f := range v.object.fields {
			m.Set(f.key, b.buildNested(f.val))
		}
		return pipelinedef.NewNestedObject(m)
	default:
		b.diags.Addf(diagnostic.Structural, v.span, "value is not representable as plain data")
		return pipelinedef.NestedValue{}
	}
}

func (b *builder) buildNestedList(v value) []pipelinedef.NestedValue {
	if v.kind != vArray {
		b.diags.Addf(diagnostic.Structural, v.span, "expected an array")
		return nil
	}
	out := make([]pipelinedef.NestedValue, 0, len(v.array))
	for _, e := range v.array {
		out = append(out, b.buildNested(e))
	}
	return out
}
