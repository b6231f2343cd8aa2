package ai

import (
	"context"
	"fmt"

	"hiredly/internal/config"
	"hiredly/internal/errors"
)

// NewOracle builds the oracle selected by cfg.AI.Provider
func NewOracle(ctx context.Context, cfg *config.Config, logger *errors.Logger, opts ...GeminiOption) (Oracle, error) {
	logger.Debug("Initializing oracle",
		"provider", cfg.AI.Provider,
		"model", cfg.AI.Model,
		"temperature", cfg.AI.Temperature,
		"timeout", cfg.AI.Timeout,
		"use_system_prompts", cfg.AI.UseSystemPrompts)

	switch cfg.AI.Provider {
	case "gemini":
		if cfg.AI.APIKey == "" {
			return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
				"Gemini API key is required (set HIREDLY_AI_APIKEY or GEMINI_API_KEY)", nil)
		}
		opts = append([]GeminiOption{
			WithSystemInstruction(cfg.Prompts.SystemInstruction(DefaultSystemInstruction)),
		}, opts...)
		oracle, err := NewGeminiOracle(ctx, cfg.AI, logger, opts...)
		if err != nil {
			return nil, err
		}
		return oracle, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.AI.Provider), nil)
	}
}
