package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient implements LLMClient via the Google GenAI SDK. The SDK owns
// transport and streaming internals, so this client exposes only the
// blocking path; the oracle's capability probing selects it automatically.
type GeminiClient struct {
	client *genai.Client
	model  string
	params RequestParams
	logger *zap.Logger
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	Credential Credential
	Model      string
	Params     RequestParams
	Logger     *zap.Logger
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.Credential.APIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.Credential.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		params: cfg.Params,
		logger: cfg.Logger,
	}, nil
}

// Complete sends a prompt and returns the completion.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system message.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{}
	if c.params.Temperature != nil {
		genCfg.Temperature = genai.Ptr(float32(*c.params.Temperature))
	}
	if c.params.TopP != nil {
		genCfg.TopP = genai.Ptr(float32(*c.params.TopP))
	}
	if c.params.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(c.params.MaxTokens)
	}
	if systemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("GenAI request failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("no completion returned")
	}
	return strings.TrimSpace(text), nil
}

// Model returns the model name used for completions.
func (c *GeminiClient) Model() string {
	return c.model
}
