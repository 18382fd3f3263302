package formats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"funcgraph/internal/engine/payload"

	"gopkg.in/yaml.v3"
)

const (
	PayloadJSON = "json"
	PayloadYAML = "yaml"
)

// EncodePayload renders the function records in the requested format. JSON is
// two-space indented without a trailing newline and without HTML escaping.
func EncodePayload(records []payload.FunctionRecord, format string) ([]byte, error) {
	if records == nil {
		records = []payload.FunctionRecord{}
	}
	switch strings.ToLower(format) {
	case "", PayloadJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return nil, fmt.Errorf("encode json payload: %w", err)
		}
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	case PayloadYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return nil, fmt.Errorf("encode yaml payload: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml payload: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported payload format %q", format)
	}
}
