package runner

import (
	"strings"

	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/tidwall/gjson"
)

// normalizePath strips the JSONPath-style `$.` prefix so stored configs may
// use either dialect; everything else is a plain gjson path.
func normalizePath(path string) string {
	if path == "$" {
		return "@this"
	}
	return strings.TrimPrefix(path, "$.")
}

// ExtractPath evaluates one path expression against a JSON document,
// returning nil when the path has no match. It never fails: a missing path
// degrades to a null value so sibling mappings still resolve.
func ExtractPath(body []byte, path string) any {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil
	}
	result := gjson.GetBytes(body, normalizePath(path))
	if !result.Exists() {
		return nil
	}
	return result.Value()
}

// ExtractOutputs applies an output mapping against a response body. A body
// that is not structured JSON yields null for every mapped name; the
// execution itself still succeeds.
func ExtractOutputs(mapping map[string]string, body []byte) core.Output {
	if len(mapping) == 0 {
		return nil
	}
	outputs := make(core.Output, len(mapping))
	for name, path := range mapping {
		outputs[name] = ExtractPath(body, path)
	}
	return outputs
}
