package ai

import (
	"context"
	stderrors "errors"
	"fmt"

	"hiredly/internal/errors"
)

// Oracle turns a prompt into generated text. Implementations never panic;
// every failure is reported as *OracleError.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HealthReporter is implemented by oracles that can probe their backing model.
type HealthReporter interface {
	GetModelInfo(ctx context.Context) *ModelInfo
	GetCircuitBreakerStats() map[string]any
}

// OracleError is the single failure type crossing the oracle boundary.
type OracleError struct {
	Op      string
	Message string
	Cause   error
}

func (e *OracleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("oracle %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("oracle %s: %s", e.Op, e.Message)
}

func (e *OracleError) Unwrap() error {
	return e.Cause
}

// IsOracleError reports whether err is or wraps an *OracleError.
func IsOracleError(err error) bool {
	var oe *OracleError
	return stderrors.As(err, &oe)
}

func newOracleError(op, code, message string, cause error) *OracleError {
	return &OracleError{
		Op:      op,
		Message: message,
		Cause:   errors.NewOracleError(code, message, cause),
	}
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// UsageObserver receives per-call accounting from an oracle.
type UsageObserver interface {
	ObserveOracleCall(ctx context.Context, model string, err error, seconds float64, usage *TokenUsage)
}

// NopOracle fails every call. It stands in when no provider is configured so
// that workflows still run and degrade to empty values.
type NopOracle struct {
	Reason string
}

func (n NopOracle) Generate(ctx context.Context, prompt string) (string, error) {
	reason := n.Reason
	if reason == "" {
		reason = "no oracle configured"
	}
	return "", newOracleError("generate", errors.ErrCodeMissingAPIKey, reason, nil)
}
