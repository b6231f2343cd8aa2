package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"hiredly/internal/config"
	"hiredly/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// modelsAPI is the slice of genai.Models the oracle uses
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// GeminiOracle implements Oracle on Google Gemini
type GeminiOracle struct {
	models            modelsAPI
	config            config.AIConfig
	systemInstruction string
	breaker           *Breaker[*genai.GenerateContentResponse]
	modelBreaker      *Breaker[*genai.Model]
	usage             UsageObserver
	logger            *errors.Logger
}

var (
	_ Oracle         = (*GeminiOracle)(nil)
	_ HealthReporter = (*GeminiOracle)(nil)
)

// GeminiOption customises a GeminiOracle
type GeminiOption func(*GeminiOracle)

// WithUsageObserver reports duration and token usage of every call.
func WithUsageObserver(observer UsageObserver) GeminiOption {
	return func(g *GeminiOracle) {
		g.usage = observer
	}
}

// WithSystemInstruction sets the instruction sent with every prompt.
func WithSystemInstruction(instruction string) GeminiOption {
	return func(g *GeminiOracle) {
		g.systemInstruction = instruction
	}
}

// NewGeminiOracle creates a Gemini-backed oracle
func NewGeminiOracle(ctx context.Context, cfg config.AIConfig, logger *errors.Logger, opts ...GeminiOption) (*GeminiOracle, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewOracleError(errors.ErrCodeOracleFailed, "failed to create Gemini client", err)
	}
	return newGeminiOracle(client.Models, cfg, logger, opts...), nil
}

func newGeminiOracle(models modelsAPI, cfg config.AIConfig, logger *errors.Logger, opts ...GeminiOption) *GeminiOracle {
	if logger == nil {
		logger = errors.Discard()
	}
	g := &GeminiOracle{
		models:       models,
		config:       cfg,
		breaker:      NewBreaker[*genai.GenerateContentResponse]("generate", cfg.CircuitBreaker, nil, logger),
		modelBreaker: NewBreaker[*genai.Model]("model-info", cfg.CircuitBreaker, ratioTrip(5, 0.8), logger),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends prompt to the configured model and returns the text of the
// first candidate.
func (g *GeminiOracle) Generate(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = newOracleError("generate", errors.ErrCodeOracleFailed, fmt.Sprintf("provider panic: %v", r), nil)
		}
	}()

	if strings.TrimSpace(prompt) == "" {
		return "", newOracleError("generate", errors.ErrCodeOracleEmptyPrompt, "prompt must not be empty", nil)
	}

	ctx, span := otel.Tracer("hiredly.ai.gemini").Start(ctx, "gemini.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("ai.prompt_length", len(prompt)),
	)

	callCtx := ctx
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, callErr := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.models.GenerateContent(callCtx, g.config.Model, genai.Text(prompt), g.generateConfig())
	})
	if callErr == nil {
		if result != nil {
			text = result.Text()
		}
		if strings.TrimSpace(text) == "" {
			callErr = errEmptyResponse
		}
	}

	usage := extractTokenUsage(result)
	if g.usage != nil {
		g.usage.ObserveOracleCall(ctx, g.config.Model, callErr, time.Since(start).Seconds(), usage)
	}

	if callErr != nil {
		oe := g.classify(callCtx, callErr)
		span.RecordError(oe)
		span.SetAttributes(attribute.Bool("success", false))
		g.logger.LogError(oe.Cause, "Oracle call failed", "model", g.config.Model)
		return "", oe
	}

	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return text, nil
}

var errEmptyResponse = stderrors.New("response contained no text")

// classify maps a provider failure onto an OracleError with a stable code
func (g *GeminiOracle) classify(ctx context.Context, err error) *OracleError {
	switch {
	case isBreakerRejection(err):
		return newOracleError("generate", errors.ErrCodeOracleCircuitOpen, "circuit breaker rejected call", err)
	case stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return newOracleError("generate", errors.ErrCodeOracleTimeout, "provider call timed out", err)
	case stderrors.Is(err, errEmptyResponse):
		return newOracleError("generate", errors.ErrCodeOracleEmptyResponse, "provider returned no text", err)
	default:
		return newOracleError("generate", errors.ErrCodeOracleFailed, "provider call failed", err)
	}
}

func (g *GeminiOracle) generateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if g.config.Temperature > 0 {
		temperature := g.config.Temperature
		cfg.Temperature = &temperature
	}
	if g.config.UseSystemPrompts && g.systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(g.systemInstruction, genai.RoleUser)
	}
	return cfg
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiOracle) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{Name: g.config.Model}

	timeout := g.config.ModelCheckTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed", "model", g.config.Model, "error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version
	return modelInfo
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiOracle) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"generate":        g.breaker.GetStats(),
		"model_info":      g.modelBreaker.GetStats(),
		"overall_healthy": g.breaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
