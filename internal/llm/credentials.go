package llm

import (
	"fmt"
	"os"
	"strings"
)

// Credential is a resolved provider credential. It is passed explicitly into
// client constructors; the resolver never mutates process environment state.
type Credential struct {
	Provider string
	APIKey   string
	// Source names where the key came from: "config" or the environment
	// variable that supplied it.
	Source string
}

var providerEnvVars = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"google":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// ResolveCredential resolves the API key for a provider: the configured key
// wins, then the provider's environment variables.
func ResolveCredential(provider, configKey string) (Credential, error) {
	if configKey != "" {
		return Credential{Provider: provider, APIKey: configKey, Source: "config"}, nil
	}

	envVars, ok := providerEnvVars[provider]
	if !ok {
		return Credential{}, fmt.Errorf("unknown LLM provider: %s", provider)
	}
	for _, envVar := range envVars {
		if key := os.Getenv(envVar); key != "" {
			return Credential{Provider: provider, APIKey: key, Source: envVar}, nil
		}
	}
	return Credential{}, fmt.Errorf("no API key for provider %s; set api_key in the config file or %s",
		provider, strings.Join(envVars, " or "))
}
