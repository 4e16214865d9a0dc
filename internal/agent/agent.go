package agent

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/chris/tablemate/internal/llm"
	"github.com/chris/tablemate/internal/session"
	"github.com/chris/tablemate/internal/tools"
	"github.com/chris/tablemate/internal/tracer"
)

const defaultMaxToolRounds = 10

// Model answers user input, calling local tools as the backend requests.
type Model interface {
	// SingleRequest answers input in a fresh one-turn conversation. The
	// session history is neither read nor changed.
	SingleRequest(ctx context.Context, input string, opts ...RequestOption) (string, error)
	// MultipleRequests answers input as the next turn of the session. With
	// restart the session is cleared and begins with input.
	MultipleRequests(ctx context.Context, input string, restart bool, opts ...RequestOption) (string, error)
}

// Agent runs the tool-calling loop for one backend and one conversation. It
// is not safe for concurrent use.
type Agent struct {
	name          string
	dispatcher    *Dispatcher
	registry      *tools.Registry
	conv          *session.Conversation
	systemPrompt  string
	maxToolRounds int
	contextBudget int
	logger        *slog.Logger
}

var _ Model = (*Agent)(nil)

// New returns an agent talking to client. registry may be nil, in which
// case no tools are offered.
func New(client llm.Client, registry *tools.Registry, opts ...Option) *Agent {
	a := &Agent{
		name:          client.Name(),
		dispatcher:    newDispatcher(client),
		registry:      registry,
		conv:          session.New(),
		maxToolRounds: defaultMaxToolRounds,
	}
	for _, o := range opts {
		o(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	a.logger = a.logger.With("model", a.name)
	a.dispatcher.system = a.systemPrompt
	a.dispatcher.logger = a.logger
	return a
}

func (a *Agent) Name() string { return a.name }

// Conversation exposes the session history.
func (a *Agent) Conversation() *session.Conversation { return a.conv }

func (a *Agent) SingleRequest(ctx context.Context, input string, opts ...RequestOption) (string, error) {
	conv := session.New()
	conv.Append(llm.Message{Role: llm.RoleUser, Content: input})
	return a.run(ctx, conv, opts)
}

func (a *Agent) MultipleRequests(ctx context.Context, input string, restart bool, opts ...RequestOption) (string, error) {
	user := llm.Message{Role: llm.RoleUser, Content: input}
	if restart {
		if err := a.conv.Reset(user); err != nil {
			return "", err
		}
	} else {
		a.conv.Append(user)
	}
	return a.run(ctx, a.conv, opts)
}

// run drives send, interpret and tool execution until the model answers
// with text. The final answer, including the fallback reply, is appended to
// conv.
func (a *Agent) run(ctx context.Context, conv *session.Conversation, opts []RequestOption) (string, error) {
	cfg := defaultRequestConfig()
	for _, o := range opts {
		o(&cfg)
	}

	ctx, span := tracer.StartSpan(ctx, "agent.run", trace.WithAttributes(
		tracer.StringAttr("llm.provider", a.name),
		tracer.BoolAttr("llm.stream", cfg.stream),
	))
	defer span.End()

	var schemas []tools.Schema
	if cfg.tools && a.registry != nil {
		schemas = a.registry.Schemas()
	}

	for rounds := 0; ; rounds++ {
		resp := a.dispatcher.Send(ctx, a.contextView(conv.Messages(), schemas), cfg.stream, schemas)
		t := interpret(resp, cfg.onText)

		if t.fallback && ctx.Err() != nil {
			tracer.RecordError(span, ctx.Err())
			return "", ctx.Err()
		}
		if t.call == nil {
			conv.Append(llm.Message{Role: llm.RoleAssistant, Content: t.text})
			tracer.SetOK(span)
			return t.text, nil
		}

		if rounds >= a.maxToolRounds {
			err := fmt.Errorf("%w (%d)", ErrMaxToolRounds, a.maxToolRounds)
			tracer.RecordError(span, err)
			return "", err
		}
		if a.registry == nil {
			err := fmt.Errorf("%w: %s", tools.ErrUnknownTool, t.call.ToolCalls[0].Name)
			tracer.RecordError(span, err)
			return "", err
		}
		msgs, err := a.executeToolCalls(ctx, *t.call)
		if err != nil {
			tracer.RecordError(span, err)
			return "", err
		}
		conv.Append(msgs...)
	}
}
