package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCredentialConfigWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	cred, err := ResolveCredential("openai", "config-key")
	require.NoError(t, err)
	assert.Equal(t, "config-key", cred.APIKey)
	assert.Equal(t, "config", cred.Source)
}

func TestResolveCredentialEnvFallback(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	cred, err := ResolveCredential("anthropic", "")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cred.APIKey)
	assert.Equal(t, "ANTHROPIC_API_KEY", cred.Source)
}

func TestResolveCredentialGoogleAliases(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	cred, err := ResolveCredential("google", "")
	require.NoError(t, err)
	assert.Equal(t, "GOOGLE_API_KEY", cred.Source)
}

func TestResolveCredentialMissing(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := ResolveCredential("openai", "")
	assert.Error(t, err)
}

func TestResolveCredentialUnknownProvider(t *testing.T) {
	_, err := ResolveCredential("bogus", "")
	assert.Error(t, err)
}
