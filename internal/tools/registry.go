package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.opentelemetry.io/otel/trace"

	"github.com/chris/tablemate/internal/tracer"
)

// Registry holds the operations offered to the model and dispatches calls to
// them by name. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *slog.Logger
}

type entry struct {
	op        Operation
	schema    Schema
	validator *jsonschema.Schema
}

// Option configures a Registry.
type Option func(*Registry)

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry registers every operation of every provider. Schemas are
// derived here, once; a duplicate or malformed operation fails construction.
func NewRegistry(providers []Provider, opts ...Option) (*Registry, error) {
	r := &Registry{entries: map[string]*entry{}}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds all operations of p. Nothing is added if any operation fails.
func (r *Registry) Register(p Provider) error {
	ops := p.Operations()
	built := make([]*entry, 0, len(ops))
	seen := map[string]bool{}
	for _, op := range ops {
		schema, err := buildSchema(op)
		if err != nil {
			return fmt.Errorf("registering tool: %w", err)
		}
		if seen[op.Name] {
			return fmt.Errorf("registering tool: duplicate name %q", op.Name)
		}
		seen[op.Name] = true
		validator, err := compileSchema(schema)
		if err != nil {
			return fmt.Errorf("registering tool: %w", err)
		}
		built = append(built, &entry{op: op, schema: schema, validator: validator})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range built {
		if _, exists := r.entries[e.op.Name]; exists {
			return fmt.Errorf("registering tool: duplicate name %q", e.op.Name)
		}
	}
	for _, e := range built {
		r.entries[e.op.Name] = e
	}
	return nil
}

// Call validates args against the named operation's schema, fills in
// defaults for omitted optional parameters, and runs the operation. The
// operation's result is returned unchanged.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (result any, err error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	ctx, span := tracer.StartSpan(ctx, "tool.call", trace.WithAttributes(tracer.StringAttr("tool.name", name)))
	defer span.End()

	if args == nil {
		args = map[string]any{}
	}
	if verr := validate(e.validator, args); verr != nil {
		err = fmt.Errorf("%w for %s: %v", ErrInvalidArguments, name, verr)
		tracer.RecordError(span, err)
		return nil, err
	}

	call := make(Args, len(e.op.Params))
	for k, v := range args {
		call[k] = v
	}
	for _, p := range e.op.Params {
		if _, present := call[p.Name]; !present && p.Optional {
			call[p.Name] = p.Default
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = &ToolExecutionError{Tool: name, Err: fmt.Errorf("panic: %v", rec)}
			tracer.RecordError(span, err)
		}
	}()

	start := time.Now()
	result, err = e.op.Func(ctx, call)
	if err != nil {
		r.logger.Warn("tool failed", "tool", name, "error", err)
		err = &ToolExecutionError{Tool: name, Err: err}
		tracer.RecordError(span, err)
		return nil, err
	}
	r.logger.Debug("tool called", "tool", name, "duration", time.Since(start))
	tracer.SetOK(span)
	return result, nil
}

// Lookup returns the schema of the named operation.
func (r *Registry) Lookup(name string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Schema{}, false
	}
	return e.schema.clone(), true
}

// Schemas returns a copy of every schema, sorted by name.
func (r *Registry) Schemas() []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Schema, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.schema.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
