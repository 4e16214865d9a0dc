package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgsInt(t *testing.T) {
	tests := []struct {
		name   string
		args   Args
		want   int64
		wantOK bool
	}{
		{"float64", Args{"id": float64(42)}, 42, true},
		{"int64", Args{"id": int64(99)}, 99, true},
		{"int", Args{"id": 3}, 3, true},
		{"json number", Args{"id": json.Number("7")}, 7, true},
		{"invalid json number", Args{"id": json.Number("not_a_number")}, 0, false},
		{"missing", Args{}, 0, false},
		{"wrong type", Args{"id": "hello"}, 0, false},
		{"nil map", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.args.Int("id")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArgsString(t *testing.T) {
	a := Args{"key": "value", "empty": "", "num": 123}

	v, ok := a.String("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	v, ok = a.String("empty")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = a.String("num")
	assert.False(t, ok)

	_, ok = a.String("missing")
	assert.False(t, ok)
}

func TestArgsFloatBool(t *testing.T) {
	a := Args{"f": 0.5, "n": json.Number("1.25"), "b": true}

	f, ok := a.Float("f")
	assert.True(t, ok)
	assert.Equal(t, 0.5, f)

	f, ok = a.Float("n")
	assert.True(t, ok)
	assert.Equal(t, 1.25, f)

	b, ok := a.Bool("b")
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = a.Bool("f")
	assert.False(t, ok)
}

func TestArgsStrings(t *testing.T) {
	a := Args{"tags": []any{"a", 1, "b"}, "native": []string{"x"}}

	got, ok := a.Strings("tags")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	got, ok = a.Strings("native")
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, got)

	_, ok = a.Strings("missing")
	assert.False(t, ok)
}
