package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownModel(t *testing.T) {
	table := NewCapabilityTable()
	s := table.Lookup("openai/gpt-4")
	assert.True(t, s.Temperature)
	assert.True(t, s.MaxTokens)
	assert.True(t, s.TopP)
}

func TestLookupUnknownModelFallsBack(t *testing.T) {
	table := NewCapabilityTable()
	s := table.Lookup("acme/brand-new-model")
	assert.False(t, s.Temperature)
	assert.True(t, s.MaxTokens)
	assert.False(t, s.TopP)
}

func TestOverride(t *testing.T) {
	table := NewCapabilityTable()
	table.Override("acme/brand-new-model", ParamSupport{Temperature: true, MaxTokens: true})
	assert.True(t, table.Lookup("acme/brand-new-model").Temperature)
}

func TestSafeParamsAppliesDefaults(t *testing.T) {
	table := NewCapabilityTable()
	p := table.SafeParams("openai/gpt-4", nil, nil)
	require.NotNil(t, p.Temperature)
	assert.InDelta(t, defaultTemperature, *p.Temperature, 1e-9)
	assert.Equal(t, maxOutputTokens, p.MaxTokens)
	assert.Nil(t, p.TopP)
}

func TestSafeParamsFiltersUnsupported(t *testing.T) {
	table := NewCapabilityTable()
	temp := 0.7
	p := table.SafeParams("openai/gpt-5", &temp, map[string]float64{"top_p": 0.9})
	assert.Nil(t, p.Temperature, "gpt-5 rejects temperature")
	require.NotNil(t, p.TopP)
	assert.InDelta(t, 0.9, *p.TopP, 1e-9)
}

func TestSafeParamsUserOverrides(t *testing.T) {
	table := NewCapabilityTable()
	p := table.SafeParams("openai/gpt-4", nil, map[string]float64{
		"temperature": 0.5,
		"max_tokens":  1000,
	})
	require.NotNil(t, p.Temperature)
	assert.InDelta(t, 0.5, *p.Temperature, 1e-9)
	assert.Equal(t, 1000, p.MaxTokens)
}
