package ai

import (
	"fmt"

	"hiredly/internal/config"
	"hiredly/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// Breaker guards calls returning T with the circuit breaker pattern. A nil
// *Breaker is valid and executes calls directly.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// tripRule decides when the breaker opens
type tripRule func(counts gobreaker.Counts) bool

func ratioTrip(minRequests uint32, threshold float64) tripRule {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests == 0 {
			return false
		}
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= minRequests && failureRatio >= threshold
	}
}

// NewBreaker creates a breaker named after its purpose, or nil when disabled.
func NewBreaker[T any](name string, cfg config.CircuitBreakerConfig, trip tripRule, logger *errors.Logger) *Breaker[T] {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.Discard()
	}
	if trip == nil {
		trip = ratioTrip(cfg.MinRequests, cfg.FailureThreshold)
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("oracle-%s", name),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: trip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn under breaker protection
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (b *Breaker[T]) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy reports whether the breaker is closed
func (b *Breaker[T]) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}

// isBreakerRejection reports whether err came from an open or saturated breaker
func isBreakerRejection(err error) bool {
	return err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests
}
