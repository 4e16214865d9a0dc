package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures the circuit breaker around a Client.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// BreakerClient fails fast once the wrapped client has failed repeatedly.
// For streams only the initial request counts; errors surfaced while reading
// a stream do not trip the breaker.
type BreakerClient struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker[any]
}

func NewBreakerClient(inner Client, cfg BreakerConfig, logger *slog.Logger) *BreakerClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "llm:" + inner.Name(),
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return &BreakerClient{inner: inner, breaker: cb}
}

func (b *BreakerClient) Name() string { return b.inner.Name() }

func (b *BreakerClient) Complete(ctx context.Context, req Request) (*Message, error) {
	out, err := b.breaker.Execute(func() (any, error) {
		return b.inner.Complete(ctx, req)
	})
	if err != nil {
		return nil, b.wrap(err)
	}
	msg, _ := out.(*Message)
	return msg, nil
}

func (b *BreakerClient) Stream(ctx context.Context, req Request) (Stream, error) {
	out, err := b.breaker.Execute(func() (any, error) {
		return b.inner.Stream(ctx, req)
	})
	if err != nil {
		return nil, b.wrap(err)
	}
	s, _ := out.(Stream)
	return s, nil
}

// State reports the breaker state for monitoring.
func (b *BreakerClient) State() gobreaker.State {
	return b.breaker.State()
}

func (b *BreakerClient) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &TransportError{
			Provider: b.inner.Name(),
			Err:      fmt.Errorf("circuit open: %w", err),
		}
	}
	return err
}
