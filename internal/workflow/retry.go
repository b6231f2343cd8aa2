package workflow

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"hiredly/internal/ai"
	"hiredly/internal/errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const maxBackoff = 30 * time.Second

// RetryPolicy controls how often a stage's oracle call is repeated.
// The zero value never retries.
type RetryPolicy struct {
	MaxRetries int
	// BaseDelay is the first backoff, doubled per attempt. Defaults to 1s.
	BaseDelay time.Duration
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	delay := time.Duration(math.Pow(2, float64(attempt-1))) * base

	// up to 10% jitter
	if jitterMax := int64(float64(delay) * 0.1); jitterMax > 0 {
		if j, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			delay += time.Duration(j.Int64())
		}
	}
	return min(delay, maxBackoff)
}

// retryingOracle repeats retryable failures of the wrapped oracle.
type retryingOracle struct {
	next   ai.Oracle
	policy RetryPolicy
	logger *errors.Logger
}

func withRetry(next ai.Oracle, policy RetryPolicy, logger *errors.Logger) ai.Oracle {
	if policy.MaxRetries <= 0 {
		return next
	}
	return &retryingOracle{next: next, policy: policy, logger: logger}
}

func (r *retryingOracle) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			r.logger.Warn("Retrying oracle call",
				"attempt", attempt,
				"max_retries", r.policy.MaxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(r.policy.backoff(attempt)):
			case <-ctx.Done():
				return "", lastErr
			}
		}

		text, err := r.next.Generate(ctx, prompt)
		if err == nil {
			if attempt > 0 {
				r.logger.Info("Oracle call succeeded after retry", "attempts", attempt+1)
			}
			return text, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			r.logger.Debug("Error is not retryable, stopping retry attempts", "error", err.Error())
			break
		}
	}

	return "", lastErr
}

// isRetryableError reports whether err is transient: network failures,
// per-call timeouts and HTTP 429/5xx responses from the provider.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Code {
		case errors.ErrCodeOracleCircuitOpen, errors.ErrCodeOracleEmptyPrompt:
			return false
		case errors.ErrCodeOracleTimeout:
			return true
		}
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}

	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
