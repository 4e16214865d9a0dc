package tools

import "context"

// Func is the body of an operation. args has already been validated and has
// defaults filled in for omitted optional parameters.
type Func func(ctx context.Context, args Args) (any, error)

// Operation is a named, documented callable offered to the model.
//
// Doc's first non-empty line becomes the tool description. An "Args:" block
// supplies per-parameter descriptions:
//
//	Get the weather for a location.
//
//	Args:
//	    location: The city and state, e.g. San Francisco, CA.
//	    unit (string): Temperature unit.
type Operation struct {
	Name   string
	Doc    string
	Params []Param
	Func   Func
}

// Param is one named parameter of an operation.
type Param struct {
	Name     string
	Type     Type
	Optional bool
	Default  any
}

// Arg declares a required parameter.
func Arg(name string, t Type) Param {
	return Param{Name: name, Type: t}
}

// ArgDefault declares an optional parameter whose value is def when omitted.
func ArgDefault(name string, t Type, def any) Param {
	return Param{Name: name, Type: t, Optional: true, Default: def}
}

// Provider groups related operations, such as everything backed by one
// service or store.
type Provider interface {
	Operations() []Operation
}

// ProviderFunc adapts a plain list of operations to Provider.
type ProviderFunc func() []Operation

func (f ProviderFunc) Operations() []Operation { return f() }
