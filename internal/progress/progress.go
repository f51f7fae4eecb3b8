// Package progress renders per-script activity on the terminal while the
// verifier works. Output is a single rewritten line per script, so the
// display stays readable when dozens of files are processed in one run.
package progress

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	pathStyle    = lipgloss.NewStyle().Bold(true)
	phaseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Config controls whether progress lines are drawn at all. Disabled managers
// swallow every call, which keeps call sites unconditional.
type Config struct {
	Enabled bool
}

// Manager creates per-script progress lines on one writer.
type Manager struct {
	out     io.Writer
	enabled bool
}

// NewManager builds a manager writing to out.
func NewManager(out io.Writer, cfg Config) *Manager {
	return &Manager{out: out, enabled: cfg.Enabled}
}

// EstimateTokens approximates how many tokens a script of the given byte size
// contributes to a prompt. Four bytes per token is the usual rule of thumb
// for code-heavy text.
func EstimateTokens(size int64) int {
	return int(size / 4)
}

// StartScript begins a progress line for one script. The returned handle must
// be finished with Complete, Skip, or Fail.
func (m *Manager) StartScript(path string, sizeBytes int64) *ScriptProgress {
	sp := &ScriptProgress{
		out:     m.out,
		enabled: m.enabled,
		name:    filepath.Base(path),
		phase:   "starting",
		tokens:  EstimateTokens(sizeBytes),
	}
	if !m.enabled {
		return sp
	}
	sp.done = make(chan struct{})
	sp.stopped = make(chan struct{})
	go sp.spin()
	return sp
}

// ScriptProgress is the live line for one script under analysis.
type ScriptProgress struct {
	out     io.Writer
	enabled bool
	name    string

	mu     sync.Mutex
	phase  string
	tokens int
	frame  int

	done    chan struct{}
	stopped chan struct{}
}

func (sp *ScriptProgress) spin() {
	defer close(sp.stopped)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-sp.done:
			return
		case <-ticker.C:
			sp.draw()
		}
	}
}

func (sp *ScriptProgress) draw() {
	sp.mu.Lock()
	frame := spinnerFrames[sp.frame%len(spinnerFrames)]
	sp.frame++
	line := fmt.Sprintf("\r%s %s %s",
		spinnerStyle.Render(frame),
		pathStyle.Render(sp.name),
		phaseStyle.Render(fmt.Sprintf("%s (~%d tokens)", sp.phase, sp.tokens)))
	sp.mu.Unlock()
	fmt.Fprint(sp.out, line+"\x1b[K")
}

// SetPhase updates the displayed activity, e.g. "fetching instructions" or
// "analyzing".
func (sp *ScriptProgress) SetPhase(phase string) {
	sp.mu.Lock()
	sp.phase = phase
	sp.mu.Unlock()
}

// AddTokens adds streamed response tokens to the running count.
func (sp *ScriptProgress) AddTokens(n int) {
	sp.mu.Lock()
	sp.tokens += n
	sp.mu.Unlock()
}

func (sp *ScriptProgress) stop() {
	if !sp.enabled {
		return
	}
	close(sp.done)
	<-sp.stopped
}

func (sp *ScriptProgress) finish(mark, note string) {
	sp.stop()
	if !sp.enabled {
		return
	}
	fmt.Fprintf(sp.out, "\r\x1b[K%s %s %s\n", mark, pathStyle.Render(sp.name), note)
}

// Complete ends the line with a verdict.
func (sp *ScriptProgress) Complete(compatible bool, issueCount int) {
	if compatible {
		sp.finish(okStyle.Render("✓"), phaseStyle.Render("compatible"))
		return
	}
	sp.finish(badStyle.Render("✗"), badStyle.Render(fmt.Sprintf("%d issue(s)", issueCount)))
}

// Skip ends the line for a script that needed no analysis.
func (sp *ScriptProgress) Skip(reason string) {
	sp.finish(okStyle.Render("✓"), phaseStyle.Render(reason))
}

// Fail ends the line for a script whose analysis errored.
func (sp *ScriptProgress) Fail(err error) {
	sp.finish(failStyle.Render("!"), failStyle.Render(err.Error()))
}
