package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(3))
	assert.Equal(t, 256, EstimateTokens(1024))
}

func TestDisabledManagerWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(&buf, Config{Enabled: false})

	sp := m.StartScript("/tmp/deploy.nu", 400)
	sp.SetPhase("analyzing")
	sp.AddTokens(50)
	sp.Complete(true, 0)

	assert.Empty(t, buf.String())
}

func TestCompleteRendersVerdict(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(&buf, Config{Enabled: true})

	sp := m.StartScript("/tmp/deploy.nu", 400)
	sp.Complete(false, 2)

	out := buf.String()
	assert.Contains(t, out, "deploy.nu")
	assert.Contains(t, out, "2 issue(s)")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestSkipAndFail(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(&buf, Config{Enabled: true})

	m.StartScript("/tmp/a.nu", 0).Skip("already compatible")
	m.StartScript("/tmp/b.nu", 0).Fail(errors.New("model unavailable"))

	out := buf.String()
	assert.Contains(t, out, "already compatible")
	assert.Contains(t, out, "model unavailable")
}
