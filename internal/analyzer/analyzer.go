// Package analyzer orchestrates the verification pipeline: scan scripts,
// resolve the release window, derive per-release instructions, and judge each
// script against the target version.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"nuverify/internal/llm"
	"nuverify/internal/progress"
	"nuverify/internal/release"
	"nuverify/internal/scanner"
	"nuverify/internal/version"
)

// ReleaseSource provides release metadata and notes. *release.Client is the
// production implementation.
type ReleaseSource interface {
	LatestVersion(ctx context.Context) (string, error)
	ReleasesBetween(ctx context.Context, start, end string) ([]*release.Release, error)
	ReleaseByVersion(ctx context.Context, v string) (*release.Release, bool, error)
	FetchBlogContent(ctx context.Context, rel *release.Release) (string, bool)
}

// OracleClient is the single LLM call the pipeline makes. *llm.Oracle is the
// production implementation.
type OracleClient interface {
	Generate(ctx context.Context, prompt string, onDelta func(string)) (string, error)
	ModelID() string
}

// Config holds the per-run knobs of the orchestrator.
type Config struct {
	// TargetVersion is the version to verify against; empty means the
	// latest published release.
	TargetVersion string
	// DryRun suppresses the compatibility-comment write-back.
	DryRun bool
}

// Summary aggregates one run's outcome.
type Summary struct {
	TargetVersion string
	Total         int
	Compatible    int
	Incompatible  int
	Failed        int
	Updated       int
	CacheHits     int
	CacheMisses   int
	Elapsed       time.Duration
}

// Orchestrator runs the pipeline end to end.
type Orchestrator struct {
	scanner  *scanner.Scanner
	source   ReleaseSource
	oracle   OracleClient
	synth    *Synthesizer
	progress *progress.Manager
	logger   *zap.Logger
	cfg      Config
}

// New wires an orchestrator from its collaborators.
func New(sc *scanner.Scanner, source ReleaseSource, oracle OracleClient, synth *Synthesizer, prog *progress.Manager, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prog == nil {
		prog = progress.NewManager(io.Discard, progress.Config{})
	}
	return &Orchestrator{
		scanner:  sc,
		source:   source,
		oracle:   oracle,
		synth:    synth,
		progress: prog,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run executes the full pipeline and returns one Analysis per discovered
// script. Failing to resolve the target version or the release window aborts
// the run; failures scoped to one release or one script are degraded and the
// run continues.
func (o *Orchestrator) Run(ctx context.Context) ([]Analysis, Summary, error) {
	started := time.Now()

	target := o.cfg.TargetVersion
	if target == "" {
		latest, err := o.source.LatestVersion(ctx)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("resolving target version: %w", err)
		}
		target = latest
		o.logger.Info("using latest release as target", zap.String("version", target))
	}

	scripts := o.scanner.ScanAll()
	o.logger.Info("scan complete", zap.Int("scripts", len(scripts)))

	// The default assumption depends on the target, which was not known at
	// scan time.
	for i := range scripts {
		if scripts[i].Method == scanner.MethodDefaultAssumption {
			scripts[i].CompatibleVersion = version.DefaultVersion(target)
		}
	}

	summary := Summary{TargetVersion: target, Total: len(scripts)}
	if len(scripts) == 0 {
		summary.Elapsed = time.Since(started)
		return nil, summary, nil
	}

	versions := make([]string, len(scripts))
	for i, s := range scripts {
		versions[i] = s.CompatibleVersion
	}
	earliest := version.Earliest(versions)

	releases, err := o.source.ReleasesBetween(ctx, earliest, target)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("resolving release window %s..%s: %w", earliest, target, err)
	}
	o.logger.Info("release window resolved",
		zap.String("from", earliest), zap.String("to", target),
		zap.Int("releases", len(releases)))

	// Instructions are derived once per release, then shared by every script
	// whose window includes that release.
	o.synth.Ensure(ctx, releases)

	analyses := make([]Analysis, 0, len(scripts))
	for _, script := range scripts {
		if err := ctx.Err(); err != nil {
			return analyses, summary, err
		}
		a := o.analyzeScript(ctx, script, target, releases)
		switch {
		case a.Err != nil:
			summary.Failed++
		case a.IsCompatible:
			summary.Compatible++
		default:
			summary.Incompatible++
		}
		if o.maybeStamp(a) {
			summary.Updated++
		}
		analyses = append(analyses, a)
	}

	summary.CacheHits = o.synth.CacheHits()
	summary.CacheMisses = o.synth.CacheMisses()
	summary.Elapsed = time.Since(started)
	return analyses, summary, nil
}

func (o *Orchestrator) analyzeScript(ctx context.Context, script scanner.ScriptFile, target string, releases []*release.Release) Analysis {
	a := Analysis{Script: script, TargetVersion: target}

	var size int64
	if info, err := os.Stat(script.Path); err == nil {
		size = info.Size()
	}
	sp := o.progress.StartScript(script.Path, size)

	if version.IsSameOrAfter(script.CompatibleVersion, target) {
		a.IsCompatible = true
		a.Skipped = true
		sp.Skip("already compatible")
		return a
	}

	// Only releases strictly after the script's known-compatible version can
	// break it. The oracle is consulted even when the window yields no
	// instructions: compatibility is its verdict to give, and the version
	// stamp is only ever written on a verdict it produced.
	var parts []string
	for _, rel := range releases {
		if rel.Instructions == "" || !version.IsAfter(rel.Version, script.CompatibleVersion) {
			continue
		}
		parts = append(parts, fmt.Sprintf("## Changes in %s\n\n%s", rel.Version, rel.Instructions))
	}

	content, err := os.ReadFile(script.Path)
	if err != nil {
		a.Err = fmt.Errorf("reading script: %w", err)
		sp.Fail(a.Err)
		return a
	}

	sp.SetPhase("analyzing")
	prompt := llm.AnalysisPrompt(script.Path, script.CompatibleVersion, target,
		strings.Join(parts, "\n\n"), string(content))
	response, err := o.oracle.Generate(ctx, prompt, func(delta string) {
		sp.AddTokens(progress.EstimateTokens(int64(len(delta))))
	})
	if err != nil {
		a.Err = fmt.Errorf("analysis failed: %w", err)
		o.logger.Warn("script analysis failed",
			zap.String("path", script.Path), zap.Error(err))
		sp.Fail(a.Err)
		return a
	}

	a.Issues = ParseIssues(response)
	a.IsCompatible = len(a.Issues) == 0
	sp.Complete(a.IsCompatible, len(a.Issues))
	return a
}

// maybeStamp writes the compatibility comment into a script that just proved
// compatible with a newer version. Directory-marker scripts are never
// touched, since the marker file owns their version.
func (o *Orchestrator) maybeStamp(a Analysis) bool {
	if o.cfg.DryRun || !a.IsCompatible || a.Err != nil {
		return false
	}
	if a.Script.Method == scanner.MethodDirectoryFile {
		return false
	}
	if !version.IsAfter(a.TargetVersion, a.Script.CompatibleVersion) {
		return false
	}

	data, err := os.ReadFile(a.Script.Path)
	if err != nil {
		o.logger.Warn("could not read script for version update",
			zap.String("path", a.Script.Path), zap.Error(err))
		return false
	}
	lines := strings.Split(string(data), "\n")
	updated := version.UpdateComment(lines, a.TargetVersion)
	if err := os.WriteFile(a.Script.Path, []byte(strings.Join(updated, "\n")), 0o644); err != nil {
		o.logger.Warn("could not update script version comment",
			zap.String("path", a.Script.Path), zap.Error(err))
		return false
	}
	o.logger.Debug("stamped script",
		zap.String("path", a.Script.Path), zap.String("version", a.TargetVersion))
	return true
}

// PrimeCache derives and caches instructions for specific release versions
// ahead of time. Unknown versions are reported but do not stop the rest.
func (o *Orchestrator) PrimeCache(ctx context.Context, versions []string) (added int, err error) {
	for _, v := range versions {
		rel, found, lookupErr := o.source.ReleaseByVersion(ctx, v)
		if lookupErr != nil {
			return added, fmt.Errorf("looking up release %s: %w", v, lookupErr)
		}
		if !found {
			o.logger.Warn("no such release", zap.String("version", v))
			continue
		}
		o.synth.Ensure(ctx, []*release.Release{rel})
		if rel.Instructions != "" {
			added++
		}
	}
	return added, nil
}
