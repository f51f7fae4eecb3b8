package analyzer

import (
	"context"

	"go.uber.org/zap"

	"nuverify/internal/cache"
	"nuverify/internal/llm"
	"nuverify/internal/release"
)

// Synthesizer turns release notes into compatibility-checking instructions,
// consulting the cache before asking the oracle. A nil cache disables
// persistence entirely.
type Synthesizer struct {
	source ReleaseSource
	oracle OracleClient
	store  *cache.Cache
	logger *zap.Logger

	hits   int
	misses int
}

// NewSynthesizer wires a synthesizer. store may be nil when caching is off.
func NewSynthesizer(source ReleaseSource, oracle OracleClient, store *cache.Cache, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{source: source, oracle: oracle, store: store, logger: logger}
}

// CacheHits reports how many instruction sets came from the cache this run.
func (s *Synthesizer) CacheHits() int { return s.hits }

// CacheMisses reports how many instruction sets had to be synthesized.
func (s *Synthesizer) CacheMisses() int { return s.misses }

// Ensure fills in Instructions for every release in the slice. A release
// whose blog post is missing or whose synthesis fails is logged and left with
// empty instructions; one bad release must not abort the run.
func (s *Synthesizer) Ensure(ctx context.Context, releases []*release.Release) {
	for _, rel := range releases {
		if rel.Instructions != "" {
			continue
		}
		instructions, err := s.ensureOne(ctx, rel)
		if err != nil {
			s.logger.Warn("skipping release, could not derive instructions",
				zap.String("version", rel.Version), zap.Error(err))
			continue
		}
		rel.Instructions = instructions
	}
}

func (s *Synthesizer) ensureOne(ctx context.Context, rel *release.Release) (string, error) {
	if s.store != nil {
		if instructions, ok := s.store.Get(rel.Version, s.oracle.ModelID()); ok {
			s.hits++
			s.logger.Debug("instruction cache hit", zap.String("version", rel.Version))
			return instructions, nil
		}
	}
	s.misses++

	content := rel.BlogPostContent
	if content == "" {
		fetched, ok := s.source.FetchBlogContent(ctx, rel)
		if !ok {
			s.logger.Info("release has no reachable blog post",
				zap.String("version", rel.Version))
			return "", nil
		}
		content = fetched
		rel.BlogPostContent = fetched
	}

	instructions, err := s.oracle.Generate(ctx, llm.InstructionsPrompt(rel.Version, content), nil)
	if err != nil {
		return "", err
	}

	if s.store != nil {
		s.store.Put(rel.Version, s.oracle.ModelID(), instructions)
	}
	return instructions, nil
}
