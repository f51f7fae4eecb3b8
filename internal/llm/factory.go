package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"nuverify/internal/config"
)

// Providers supported by the factory.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// NewClientFromConfig builds the oracle client for the configured provider.
// Config-file capability overrides are applied to the table, then the
// filtered request parameters are resolved once and handed to the client.
// Returns the client and its "provider/model" identifier.
func NewClientFromConfig(ctx context.Context, cfg *config.Config, table *CapabilityTable, logger *zap.Logger) (LLMClient, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for modelID, support := range cfg.ModelCapabilities {
		table.Override(modelID, ParamSupport(support))
	}

	modelID := cfg.ModelID()
	cred, err := ResolveCredential(cfg.LLMProvider, cfg.APIKey)
	if err != nil {
		return nil, "", err
	}
	params := table.SafeParams(modelID, cfg.Temperature, cfg.LLMParams)

	switch cfg.LLMProvider {
	case ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			Credential: cred,
			Model:      cfg.LLMModel,
			Params:     params,
			Logger:     logger,
		}), modelID, nil

	case ProviderAnthropic:
		return NewAnthropicClient(AnthropicConfig{
			Credential: cred,
			Model:      cfg.LLMModel,
			Params:     params,
			Logger:     logger,
		}), modelID, nil

	case ProviderGoogle:
		client, err := NewGeminiClient(ctx, GeminiConfig{
			Credential: cred,
			Model:      cfg.LLMModel,
			Params:     params,
			Logger:     logger,
		})
		if err != nil {
			return nil, "", err
		}
		return client, modelID, nil

	default:
		return nil, "", fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}
