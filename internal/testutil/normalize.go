package testutil

import (
	"bytes"
	"encoding/json"
	"testing"
)

// VolatileKeys are object keys whose values differ between runs. Their values
// are replaced with a placeholder before comparison.
var VolatileKeys = map[string]bool{
	"created_at": true,
	"timestamp":  true,
	"uptime":     true,
}

// Normalize deep-copies data through JSON and masks volatile values.
// Object keys come out sorted.
func Normalize(t *testing.T, data any) any {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal data for normalization: %v", err)
	}

	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		t.Fatalf("Failed to unmarshal data for normalization: %v", err)
	}
	return normalizeValue(normalized)
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			if VolatileKeys[k] {
				val[k] = "<" + k + ">"
				continue
			}
			val[k] = normalizeValue(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = normalizeValue(inner)
		}
		return val
	default:
		return v
	}
}

// MarshalNormalized normalizes data and renders it as indented JSON with a
// trailing newline.
func MarshalNormalized(t *testing.T, data any) []byte {
	t.Helper()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Normalize(t, data)); err != nil {
		t.Fatalf("Failed to marshal normalized data: %v", err)
	}
	return buf.Bytes()
}
