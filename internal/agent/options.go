package agent

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Option configures an Agent.
type Option func(*Agent)

func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) { a.systemPrompt = prompt }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithMaxToolRounds caps the tool round-trips of a single request.
func WithMaxToolRounds(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxToolRounds = n
		}
	}
}

// WithContextBudget trims what is sent to the model to roughly tokens
// tokens. The stored conversation is never trimmed.
func WithContextBudget(tokens int) Option {
	return func(a *Agent) { a.contextBudget = tokens }
}

// WithAttempts sets how many times a failed request is tried in total.
func WithAttempts(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.dispatcher.attempts = n
		}
	}
}

// WithBackoff waits between attempts, doubling from base up to max with
// jitter. Without it retries are immediate.
func WithBackoff(base, max time.Duration) Option {
	return func(a *Agent) {
		a.dispatcher.baseDelay = base
		a.dispatcher.maxDelay = max
	}
}

// WithRateLimit paces requests to the backend.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(a *Agent) {
		if perSecond <= 0 {
			a.dispatcher.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		a.dispatcher.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	stream bool
	onText func(string)
	tools  bool
}

func defaultRequestConfig() requestConfig {
	return requestConfig{tools: true}
}

// WithStream selects streaming transport for the request and every tool
// round-trip it triggers.
func WithStream(stream bool) RequestOption {
	return func(c *requestConfig) { c.stream = stream }
}

// WithOnText registers a callback invoked synchronously for each streamed
// text fragment, in arrival order.
func WithOnText(fn func(string)) RequestOption {
	return func(c *requestConfig) { c.onText = fn }
}

// WithTools controls whether tool schemas are offered to the model.
func WithTools(enabled bool) RequestOption {
	return func(c *requestConfig) { c.tools = enabled }
}
