package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/chris/tablemate/internal/llm"
)

// Schema is the machine-readable description of one operation.
type Schema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Tool converts the schema to the transport's tool definition.
func (s Schema) Tool() llm.Tool {
	return llm.Tool{Name: s.Name, Description: s.Description, Parameters: cloneMap(s.Parameters)}
}

// Required lists the names of the required parameters.
func (s Schema) Required() []string {
	req, _ := s.Parameters["required"].([]string)
	return append([]string(nil), req...)
}

// Properties returns the per-parameter schema fragments.
func (s Schema) Properties() map[string]any {
	props, _ := s.Parameters["properties"].(map[string]any)
	return cloneMap(props)
}

func (s Schema) clone() Schema {
	s.Parameters = cloneMap(s.Parameters)
	return s
}

// buildSchema derives the schema of op from its parameters and documentation.
func buildSchema(op Operation) (Schema, error) {
	if op.Name == "" {
		return Schema{}, errors.New("operation has no name")
	}
	if op.Func == nil {
		return Schema{}, fmt.Errorf("operation %s has no func", op.Name)
	}

	summary, descs := parseDoc(op.Doc)
	props := map[string]any{}
	required := []string{}
	for _, p := range op.Params {
		if p.Name == "" {
			return Schema{}, fmt.Errorf("operation %s: parameter with no name", op.Name)
		}
		if _, dup := props[p.Name]; dup {
			return Schema{}, fmt.Errorf("operation %s: duplicate parameter %q", op.Name, p.Name)
		}
		prop := p.Type.Schema()
		if d, ok := descs[p.Name]; ok && d != "" {
			prop["description"] = d
		} else {
			prop["description"] = placeholder(p.Name)
		}
		if p.Optional {
			prop["default"] = p.Default
		} else {
			required = append(required, p.Name)
		}
		props[p.Name] = prop
	}

	return Schema{
		Name:        op.Name,
		Description: summary,
		Parameters: map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             required,
			"additionalProperties": false,
		},
	}, nil
}

// compileSchema compiles a parameters object for argument validation.
func compileSchema(s Schema) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(s.Parameters)
	if err != nil {
		return nil, fmt.Errorf("encoding schema %s: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding schema %s: %w", s.Name, err)
	}
	url := "mem://tools/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("adding schema %s: %w", s.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", s.Name, err)
	}
	return sch, nil
}

// validate checks args against sch. Values are round-tripped through JSON so
// Go-native numbers and slices are judged the way the model's JSON would be.
func validate(sch *jsonschema.Schema, args map[string]any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	return sch.Validate(v)
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
