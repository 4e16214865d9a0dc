package tools

import "slices"

type kind int

const (
	kindUnknown kind = iota
	kindString
	kindInteger
	kindNumber
	kindBoolean
	kindArray
	kindMap
	kindNullable
	kindEnum
)

// Type describes a parameter's type. The zero Type maps to string.
type Type struct {
	kind   kind
	elem   *Type
	values []string
}

var (
	String  = Type{kind: kindString}
	Integer = Type{kind: kindInteger}
	Number  = Type{kind: kindNumber}
	Boolean = Type{kind: kindBoolean}
)

// ArrayOf is a sequence of elem.
func ArrayOf(elem Type) Type {
	return Type{kind: kindArray, elem: &elem}
}

// MapOf is a string-keyed mapping to values of type value.
func MapOf(value Type) Type {
	return Type{kind: kindMap, elem: &value}
}

// Nullable accepts t or null.
func Nullable(t Type) Type {
	return Type{kind: kindNullable, elem: &t}
}

// Enum is a string restricted to values.
func Enum(values ...string) Type {
	return Type{kind: kindEnum, values: slices.Clone(values)}
}

// Schema returns the JSON Schema fragment for t. Every call builds a fresh map.
func (t Type) Schema() map[string]any {
	switch t.kind {
	case kindInteger:
		return map[string]any{"type": "integer"}
	case kindNumber:
		return map[string]any{"type": "number"}
	case kindBoolean:
		return map[string]any{"type": "boolean"}
	case kindArray:
		return map[string]any{"type": "array", "items": t.elem.Schema()}
	case kindMap:
		return map[string]any{"type": "object", "additionalProperties": t.elem.Schema()}
	case kindNullable:
		return map[string]any{"anyOf": []any{t.elem.Schema(), map[string]any{"type": "null"}}}
	case kindEnum:
		values := make([]any, len(t.values))
		for i, v := range t.values {
			values[i] = v
		}
		return map[string]any{"type": "string", "enum": values}
	default:
		return map[string]any{"type": "string"}
	}
}
