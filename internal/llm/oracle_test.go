package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	// go.opencensus.io starts a background worker in its package init;
	// it is a transitive dependency, not a goroutine owned by this package.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// blockingClient implements only the blocking interface.
type blockingClient struct {
	response string
	calls    int
}

func (c *blockingClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls++
	return c.response, nil
}

func (c *blockingClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return c.Complete(ctx, user)
}

// streamingClient delivers the response in fixed-size chunks.
type streamingClient struct {
	blockingClient
	chunks []string
}

func (c *streamingClient) CompleteWithStreaming(ctx context.Context, system, user string) (<-chan string, <-chan error) {
	contentChan := make(chan string, len(c.chunks))
	errorChan := make(chan error, 1)
	go func() {
		defer close(contentChan)
		defer close(errorChan)
		for _, chunk := range c.chunks {
			contentChan <- chunk
		}
	}()
	return contentChan, errorChan
}

func TestGenerateBlockingPath(t *testing.T) {
	client := &blockingClient{response: "all good"}
	o := NewOracle(client, "openai/gpt-4", zap.NewNop())

	got, err := o.Generate(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "all good", got)
	assert.Equal(t, 1, client.calls)
}

func TestGenerateStreamingPathMatchesBlocking(t *testing.T) {
	full := "the complete streamed answer"
	client := &streamingClient{chunks: []string{"the complete ", "streamed ", "answer"}}
	o := NewOracle(client, "openai/gpt-4", zap.NewNop())

	var deltas []string
	got, err := o.Generate(context.Background(), "prompt", func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)
	assert.Equal(t, full, got)
	assert.Equal(t, full, strings.Join(deltas, ""))
	assert.Equal(t, 0, client.calls, "streaming path must not invoke the blocking call")
}

func TestGenerateStreamingNilCallback(t *testing.T) {
	client := &streamingClient{chunks: []string{"a", "b"}}
	o := NewOracle(client, "openai/gpt-4", zap.NewNop())

	got, err := o.Generate(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "ab", got)
}
