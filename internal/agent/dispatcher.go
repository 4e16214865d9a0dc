package agent

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/chris/tablemate/internal/llm"
	"github.com/chris/tablemate/internal/tools"
	"github.com/chris/tablemate/internal/tracer"
)

const (
	defaultAttempts = 4

	// FallbackContent is the assistant reply used when every attempt failed.
	FallbackContent = "request failed, please retry"
)

// Response is the raw outcome of one dispatch: a whole message, a stream of
// fragments, or the fallback message when the backend could not be reached.
type Response struct {
	Message  *llm.Message
	Stream   llm.Stream
	Fallback bool
}

func fallbackResponse() Response {
	return Response{
		Message:  &llm.Message{Role: llm.RoleAssistant, Content: FallbackContent},
		Fallback: true,
	}
}

// Dispatcher sends conversations to a backend with bounded retry.
type Dispatcher struct {
	client    llm.Client
	system    string
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func newDispatcher(client llm.Client) *Dispatcher {
	return &Dispatcher{
		client:   client,
		attempts: defaultAttempts,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// Send delivers messages and schemas to the backend. Transport failures are
// retried; once attempts run out the fallback message is returned. Send
// never fails.
func (d *Dispatcher) Send(ctx context.Context, messages []llm.Message, stream bool, schemas []tools.Schema) Response {
	req := llm.Request{System: d.system, Messages: messages}
	for _, s := range schemas {
		req.Tools = append(req.Tools, s.Tool())
	}

	for attempt := 0; attempt < d.attempts; attempt++ {
		if attempt > 0 && !d.wait(ctx, attempt) {
			break
		}
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				break
			}
		}

		resp, err := d.try(ctx, req, stream, attempt)
		if err == nil {
			return resp
		}
		d.logger.Warn("llm request failed",
			"provider", d.client.Name(),
			"attempt", attempt+1,
			"of", d.attempts,
			"error", err,
		)
		if ctx.Err() != nil {
			break
		}
	}
	return fallbackResponse()
}

func (d *Dispatcher) try(ctx context.Context, req llm.Request, stream bool, attempt int) (Response, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.dispatch", trace.WithAttributes(
		tracer.StringAttr("llm.provider", d.client.Name()),
		tracer.IntAttr("llm.attempt", attempt+1),
		tracer.BoolAttr("llm.stream", stream),
		tracer.IntAttr("llm.messages", len(req.Messages)),
	))
	defer span.End()

	var resp Response
	var err error
	if stream {
		resp.Stream, err = d.client.Stream(ctx, req)
		if err == nil && resp.Stream == nil {
			resp.Message = &llm.Message{Role: llm.RoleAssistant}
		}
	} else {
		resp.Message, err = d.client.Complete(ctx, req)
		if err == nil && resp.Message == nil {
			resp.Message = &llm.Message{Role: llm.RoleAssistant}
		}
	}
	if err != nil {
		tracer.RecordError(span, err)
		return Response{}, err
	}
	tracer.SetOK(span)
	return resp, nil
}

// wait sleeps before a retry. It reports false if ctx ended first.
func (d *Dispatcher) wait(ctx context.Context, attempt int) bool {
	delay := retryBackoff(d.baseDelay, d.maxDelay, attempt-1)
	if delay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryBackoff doubles base once per attempt and adds up to 25% jitter. The
// result never exceeds max when one is set, however large attempt grows.
func retryBackoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	limit := time.Duration(math.MaxInt64 / 2)
	if max > 0 && max < limit {
		limit = max
	}
	delay := min(base, limit)
	for i := 0; i < attempt && delay < limit; i++ {
		delay = min(delay*2, limit)
	}
	delay += time.Duration(rand.Int64N(int64(delay/4) + 1))
	if max > 0 && delay > max {
		delay = max
	}
	return delay
}
