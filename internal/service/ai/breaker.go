package ai

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerProvider shields callers from a flapping completion backend.
// Once the failure ratio trips the breaker, calls fail fast instead of
// stacking up timeouts.
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps a provider with a circuit breaker. The breaker
// opens after 3 consecutive failures and probes again after 30 seconds.
func NewBreakerProvider(inner Provider, logger *zap.Logger) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        "completion",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("completion breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &BreakerProvider{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

// Complete runs the wrapped provider through the breaker.
func (b *BreakerProvider) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Complete(ctx, prompt, opts)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
