package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeSchema(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want map[string]any
	}{
		{"string", String, map[string]any{"type": "string"}},
		{"integer", Integer, map[string]any{"type": "integer"}},
		{"number", Number, map[string]any{"type": "number"}},
		{"boolean", Boolean, map[string]any{"type": "boolean"}},
		{"array of string", ArrayOf(String), map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}},
		{"map of string to integer", MapOf(Integer), map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "integer"},
		}},
		{"optional string", Nullable(String), map[string]any{
			"anyOf": []any{map[string]any{"type": "string"}, map[string]any{"type": "null"}},
		}},
		{"enum", Enum("celsius", "fahrenheit"), map[string]any{
			"type": "string",
			"enum": []any{"celsius", "fahrenheit"},
		}},
		{"unrecognized falls back to string", Type{}, map[string]any{"type": "string"}},
		{"nested", ArrayOf(MapOf(Nullable(Number))), map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"anyOf": []any{map[string]any{"type": "number"}, map[string]any{"type": "null"}},
				},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Schema())
		})
	}
}

func TestEnumCopiesValues(t *testing.T) {
	values := []string{"a", "b"}
	typ := Enum(values...)
	values[0] = "z"
	assert.Equal(t, []any{"a", "b"}, typ.Schema()["enum"])
}
