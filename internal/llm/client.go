// Package llm provides the oracle collaborator: provider clients for the
// text-generation services, the per-model parameter capability table, typed
// credential resolution, and the streaming-or-blocking call wrapper used by
// the analysis pipeline.
package llm

import "context"

// LLMClient is the interface every oracle provider implements.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// StreamingClient is implemented by providers that can deliver the response
// as incremental deltas. Callers probe for it with a type assertion; both
// paths must produce the same final text.
type StreamingClient interface {
	LLMClient
	CompleteWithStreaming(ctx context.Context, systemPrompt, userPrompt string) (<-chan string, <-chan error)
}
