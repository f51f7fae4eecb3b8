package llm

// ParamSupport records which request parameters a model accepts. Models
// absent from the table fall back to the "_default" entry, which is
// deliberately conservative: no temperature, no top_p.
type ParamSupport struct {
	Temperature bool
	MaxTokens   bool
	TopP        bool
}

// defaultKey is the fallback entry for models not in the table.
const defaultKey = "_default"

const (
	// defaultTemperature keeps analysis output near-deterministic.
	defaultTemperature = 0.1
	// maxOutputTokens is sized for instruction synthesis over large
	// release blog posts.
	maxOutputTokens = 32000
)

func builtinCapabilities() map[string]ParamSupport {
	full := ParamSupport{Temperature: true, MaxTokens: true, TopP: true}
	return map[string]ParamSupport{
		// OpenAI
		"openai/gpt-3.5-turbo": full,
		"openai/gpt-4":         full,
		"openai/gpt-4-turbo":   full,
		"openai/gpt-4o":        full,
		"openai/gpt-4o-mini":   full,
		// gpt-5 rejects non-default temperature
		"openai/gpt-5": {MaxTokens: true, TopP: true},

		// Anthropic
		"anthropic/claude-3-sonnet":   full,
		"anthropic/claude-3-opus":     full,
		"anthropic/claude-3-haiku":    full,
		"anthropic/claude-3-5-sonnet": full,

		// Google
		"google/gemini-pro":     full,
		"google/gemini-1.5-pro": full,

		defaultKey: {MaxTokens: true},
	}
}

// CapabilityTable maps model identifiers to their supported parameters. It
// is an explicit, overridable lookup so new models can be onboarded from
// configuration without touching call sites.
type CapabilityTable struct {
	entries map[string]ParamSupport
}

// NewCapabilityTable returns a table seeded with the built-in entries.
func NewCapabilityTable() *CapabilityTable {
	return &CapabilityTable{entries: builtinCapabilities()}
}

// Override replaces or adds the entry for a model identifier.
func (t *CapabilityTable) Override(modelID string, support ParamSupport) {
	t.entries[modelID] = support
}

// Lookup returns the support entry for a model, or the default fallback.
func (t *CapabilityTable) Lookup(modelID string) ParamSupport {
	if s, ok := t.entries[modelID]; ok {
		return s
	}
	return t.entries[defaultKey]
}

// RequestParams is the filtered parameter set attached to one oracle
// request. Nil pointer fields are omitted from the provider request.
type RequestParams struct {
	Temperature *float64
	MaxTokens   int
	TopP        *float64
}

// SafeParams builds the request parameters for a model, applying only what
// the capability table says the model supports. The configured temperature
// and the user's llm_params overrides are filtered the same way.
func (t *CapabilityTable) SafeParams(modelID string, temperature *float64, overrides map[string]float64) RequestParams {
	support := t.Lookup(modelID)

	var p RequestParams
	if support.Temperature {
		temp := defaultTemperature
		if temperature != nil {
			temp = *temperature
		}
		p.Temperature = &temp
	}
	if support.MaxTokens {
		p.MaxTokens = maxOutputTokens
	}

	for key, value := range overrides {
		switch key {
		case "temperature":
			if support.Temperature {
				v := value
				p.Temperature = &v
			}
		case "top_p":
			if support.TopP {
				v := value
				p.TopP = &v
			}
		case "max_tokens":
			if support.MaxTokens {
				p.MaxTokens = int(value)
			}
		}
	}
	return p
}
