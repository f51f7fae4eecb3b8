package llm

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Oracle wraps a provider client with the single logical call the pipeline
// uses. Streaming is selected by probing the client's capabilities, not by
// catching a failed streaming attempt; both paths yield the same final text.
type Oracle struct {
	client  LLMClient
	modelID string
	logger  *zap.Logger
}

// NewOracle wraps a client under its "provider/model" identifier.
func NewOracle(client LLMClient, modelID string, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{client: client, modelID: modelID, logger: logger}
}

// ModelID returns the "provider/model" identifier, which doubles as the
// cache key's model component.
func (o *Oracle) ModelID() string {
	return o.modelID
}

// Generate submits a prompt and returns the complete response text. When the
// client can stream, each delta is forwarded to onDelta as it arrives (for
// progress display) while the full text accumulates; otherwise a single
// blocking call is made. onDelta may be nil.
func (o *Oracle) Generate(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	sc, ok := o.client.(StreamingClient)
	if !ok {
		return o.client.Complete(ctx, prompt)
	}

	contentChan, errorChan := sc.CompleteWithStreaming(ctx, "", prompt)

	var b strings.Builder
	for delta := range contentChan {
		b.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	// The error channel is closed after the content channel; a nil read
	// means the stream finished cleanly.
	if err := <-errorChan; err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
