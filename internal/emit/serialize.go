package emit

import (
	"bytes"
	"encoding/json"

	pipeline "github.com/buildkite/go-pipeline"
	"gopkg.in/yaml.v3"
)

// Format selects the emitted document's serialization, mirroring
// clicommand/pipeline_upload.go's own `--format json|yaml` dry-run switch.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Serialize renders p in the requested format.
func Serialize(p *pipeline.Pipeline, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case FormatYAML:
		return yaml.Marshal(p)

	default:
		return yaml.Marshal(p)
	}
}
