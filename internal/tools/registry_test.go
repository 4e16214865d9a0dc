package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherProvider struct {
	calls []Args
}

func (w *weatherProvider) Operations() []Operation {
	return []Operation{
		{
			Name: "get_weather",
			Doc: `Get weather of a location, the user should supply a location first.

Args:
    location: The city and state, e.g. San Francisco, CA
    unit: Temperature unit.`,
			Params: []Param{
				Arg("location", String),
				ArgDefault("unit", Enum("celsius", "fahrenheit"), "celsius"),
				ArgDefault("days", Integer, 1),
			},
			Func: func(_ context.Context, args Args) (any, error) {
				w.calls = append(w.calls, args)
				return "24℃", nil
			},
		},
		{
			Name: "fail",
			Doc:  "Always fails.",
			Func: func(context.Context, Args) (any, error) {
				return nil, errors.New("disk full")
			},
		},
		{
			Name: "explode",
			Doc:  "Panics.",
			Func: func(context.Context, Args) (any, error) {
				panic("boom")
			},
		},
	}
}

func newTestRegistry(t *testing.T) (*Registry, *weatherProvider) {
	t.Helper()
	p := &weatherProvider{}
	r, err := NewRegistry([]Provider{p})
	require.NoError(t, err)
	return r, p
}

func TestRegistry_SchemaRequiredAndProperties(t *testing.T) {
	r, _ := newTestRegistry(t)

	s, ok := r.Lookup("get_weather")
	require.True(t, ok)
	assert.Equal(t, "Get weather of a location, the user should supply a location first.", s.Description)
	assert.Equal(t, []string{"location"}, s.Required())

	props := s.Properties()
	require.Len(t, props, 3)
	assert.Equal(t, "The city and state, e.g. San Francisco, CA", props["location"].(map[string]any)["description"])
	unit := props["unit"].(map[string]any)
	assert.Equal(t, "celsius", unit["default"])
	assert.Equal(t, []any{"celsius", "fahrenheit"}, unit["enum"])
	assert.Equal(t, "The days parameter", props["days"].(map[string]any)["description"])
}

func TestRegistry_NoParams(t *testing.T) {
	r, _ := newTestRegistry(t)
	s, ok := r.Lookup("fail")
	require.True(t, ok)
	assert.Empty(t, s.Required())
	assert.Empty(t, s.Properties())
	assert.Equal(t, "object", s.Parameters["type"])
	assert.Equal(t, false, s.Parameters["additionalProperties"])
}

func TestRegistry_SchemasSortedAndCopied(t *testing.T) {
	r, _ := newTestRegistry(t)

	schemas := r.Schemas()
	require.Len(t, schemas, 3)
	assert.Equal(t, []string{"explode", "fail", "get_weather"}, []string{schemas[0].Name, schemas[1].Name, schemas[2].Name})
	assert.Equal(t, []string{"explode", "fail", "get_weather"}, r.Names())
	assert.Equal(t, 3, r.Len())

	schemas[2].Parameters["properties"].(map[string]any)["location"] = "mutated"
	again, _ := r.Lookup("get_weather")
	assert.NotEqual(t, "mutated", again.Properties()["location"])
}

func TestRegistry_CallFillsDefaults(t *testing.T) {
	r, p := newTestRegistry(t)

	got, err := r.Call(context.Background(), "get_weather", map[string]any{"location": "SF"})
	require.NoError(t, err)
	assert.Equal(t, "24℃", got)

	require.Len(t, p.calls, 1)
	assert.Equal(t, Args{"location": "SF", "unit": "celsius", "days": 1}, p.calls[0])
}

func TestRegistry_CallDoesNotMutateInput(t *testing.T) {
	r, _ := newTestRegistry(t)
	in := map[string]any{"location": "SF"}
	_, err := r.Call(context.Background(), "get_weather", in)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"location": "SF"}, in)
}

func TestRegistry_UnknownTool(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Call(context.Background(), "delete_everything", nil)
	require.ErrorIs(t, err, ErrUnknownTool)
	assert.Contains(t, err.Error(), "delete_everything")
}

func TestRegistry_InvalidArguments(t *testing.T) {
	r, p := newTestRegistry(t)

	_, err := r.Call(context.Background(), "get_weather", map[string]any{})
	require.ErrorIs(t, err, ErrInvalidArguments)

	_, err = r.Call(context.Background(), "get_weather", map[string]any{"location": "SF", "unit": "kelvin"})
	require.ErrorIs(t, err, ErrInvalidArguments)

	_, err = r.Call(context.Background(), "get_weather", map[string]any{"location": "SF", "days": "two"})
	require.ErrorIs(t, err, ErrInvalidArguments)

	_, err = r.Call(context.Background(), "get_weather", map[string]any{"location": "SF", "country": "US"})
	require.ErrorIs(t, err, ErrInvalidArguments)
	assert.Contains(t, err.Error(), "country")

	assert.Empty(t, p.calls)
}

func TestRegistry_IntegerFromJSONNumber(t *testing.T) {
	r, p := newTestRegistry(t)
	_, err := r.Call(context.Background(), "get_weather", map[string]any{"location": "SF", "days": float64(3)})
	require.NoError(t, err)
	days, ok := p.calls[0].Int("days")
	assert.True(t, ok)
	assert.Equal(t, int64(3), days)
}

func TestRegistry_ToolExecutionError(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Call(context.Background(), "fail", nil)
	var te *ToolExecutionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "fail", te.Tool)
	assert.EqualError(t, te.Err, "disk full")
}

func TestRegistry_PanicRecovered(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Call(context.Background(), "explode", nil)
	var te *ToolExecutionError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "boom")
}

func TestNewRegistry_Duplicate(t *testing.T) {
	p := ProviderFunc(func() []Operation {
		noop := func(context.Context, Args) (any, error) { return nil, nil }
		return []Operation{{Name: "a", Func: noop}, {Name: "a", Func: noop}}
	})
	_, err := NewRegistry([]Provider{p})
	assert.Error(t, err)
}

func TestRegister_DuplicateAcrossProvidersKeepsRegistryIntact(t *testing.T) {
	r, _ := newTestRegistry(t)
	noop := func(context.Context, Args) (any, error) { return nil, nil }
	err := r.Register(ProviderFunc(func() []Operation {
		return []Operation{{Name: "new_tool", Func: noop}, {Name: "get_weather", Func: noop}}
	}))
	require.Error(t, err)
	_, ok := r.Lookup("new_tool")
	assert.False(t, ok)
}

func TestNewRegistry_Malformed(t *testing.T) {
	noop := func(context.Context, Args) (any, error) { return nil, nil }
	tests := map[string]Operation{
		"no name":       {Func: noop},
		"no func":       {Name: "x"},
		"dup param":     {Name: "x", Func: noop, Params: []Param{Arg("a", String), Arg("a", Integer)}},
		"unnamed param": {Name: "x", Func: noop, Params: []Param{Arg("", String)}},
	}
	for name, op := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry([]Provider{ProviderFunc(func() []Operation { return []Operation{op} })})
			assert.Error(t, err)
		})
	}
}

func TestSchemaRequiredCountProperty(t *testing.T) {
	noop := func(context.Context, Args) (any, error) { return nil, nil }
	for n := 0; n <= 3; n++ {
		for m := 0; m <= 3; m++ {
			var params []Param
			for i := 0; i < n; i++ {
				params = append(params, Arg(string(rune('a'+i)), String))
			}
			for i := 0; i < m; i++ {
				params = append(params, ArgDefault(string(rune('p'+i)), Integer, i))
			}
			s, err := buildSchema(Operation{Name: "op", Func: noop, Params: params})
			require.NoError(t, err)
			assert.Len(t, s.Required(), n)
			assert.Len(t, s.Properties(), n+m)
		}
	}
}

func TestSchemaTool(t *testing.T) {
	r, _ := newTestRegistry(t)
	s, _ := r.Lookup("get_weather")
	tool := s.Tool()
	assert.Equal(t, "get_weather", tool.Name)
	assert.Equal(t, s.Parameters, tool.Parameters)
}
