package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// GuardConfig controls Guard's limiter and breaker.
type GuardConfig struct {
	// PerMinute is the sustained rate. 0 disables rate limiting.
	PerMinute int

	// Burst is the number of messages allowed back to back.
	Burst int

	// FailureThreshold opens the breaker after this many consecutive
	// failures. 0 disables the breaker.
	FailureThreshold int

	// ResetTimeout is how long the breaker stays open before probing again.
	ResetTimeout time.Duration
}

// Logger is the logging surface used by Guard.
type Logger interface {
	Warn(msg string, args ...any)
}

// Guard wraps a Sink with a token-bucket rate limiter and a circuit breaker.
//
// Thread Safety: Send is safe for concurrent use.
type Guard struct {
	next    Sink
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuard wraps next. A nil logger silences breaker state changes.
func NewGuard(next Sink, cfg GuardConfig, logger Logger) *Guard {
	g := &Guard{next: next}

	if cfg.PerMinute > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.PerMinute)), burst)
	}

	if cfg.FailureThreshold > 0 {
		threshold := uint32(cfg.FailureThreshold) // #nosec G115 -- checked positive above
		g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "pushover",
			MaxRequests: 1,
			Timeout:     cfg.ResetTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// Shutdown cancellations say nothing about the API's health.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				if logger != nil {
					logger.Warn("notification circuit breaker state changed",
						"sink", name,
						"from", from.String(),
						"to", to.String(),
					)
				}
			},
		})
	}

	return g
}

// Send implements Sink.
func (g *Guard) Send(ctx context.Context, msg Message) error {
	if g.limiter != nil && !g.limiter.Allow() {
		return ErrRateLimited
	}

	if g.breaker == nil {
		return g.next.Send(ctx, msg)
	}

	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, g.next.Send(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return err
}

// State returns the breaker state name, or "disabled".
func (g *Guard) State() string {
	if g.breaker == nil {
		return "disabled"
	}
	return g.breaker.State().String()
}
