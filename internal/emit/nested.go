package emit

import (
	pipeline "github.com/buildkite/go-pipeline"
	"github.com/buildkite/go-pipeline/ordered"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
)

// toAny lowers a pipelinedef.NestedValue into the plain Go value
// (string/int/bool/*ordered.Map[string,any]/[]any) that go-pipeline's
// schema types expect for free-form attributes (plugin config, matrix,
// secrets, trigger build), preserving Object key order.
func toAny(v pipelinedef.NestedValue) any {
	switch v.Kind {
	case pipelinedef.NestedString:
		return v.String
	case pipelinedef.NestedInt:
		return v.Int
	case pipelinedef.NestedBool:
		return v.Bool
	case pipelinedef.NestedObject:
		out := ordered.NewMap[string, any](v.Object.Len())
		_ = v.Object.Range(func(k string, val pipelinedef.NestedValue) error {
			out.Set(k, toAny(val))
			return nil
		})
		return out
	case pipelinedef.NestedArray:
		out := make([]any, len(v.Array))
		for i, elem := range v.Array {
			out[i] = toAny(elem)
		}
		return out
	default:
		return nil
	}
}

// toPlugin lowers a default_plugins/plugins entry, which is always an
// Object of exactly one key (the plugin source) mapping to its config, into
// a go-pipeline Plugin.
func toPlugin(v pipelinedef.NestedValue) *pipeline.Plugin {
	if v.Kind != pipelinedef.NestedObject {
		return nil
	}
	var p *pipeline.Plugin
	_ = v.Object.Range(func(name string, cfg pipelinedef.NestedValue) error {
		if p != nil {
			return nil // one-key object per spec §3; extras are ignored defensively
		}
		cfgMap, _ := toAny(cfg).(*ordered.Map[string, any])
		p = &pipeline.Plugin{Name: name, Config: cfgMap}
		return nil
	})
	return p
}
