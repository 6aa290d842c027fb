package inference

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/curationd/taxora/internal/common"
	"github.com/curationd/taxora/internal/model"
	"github.com/curationd/taxora/internal/semantic"
	"github.com/curationd/taxora/internal/service"
)

// Context bounds for the structured-inference call.
const (
	// MaxContextPaths caps the candidate paths included in the prompt.
	MaxContextPaths = 20
	// MaxPromptChars caps the fragment text included in the prompt.
	MaxPromptChars = 500
	// FallbackConfidence is the fixed confidence of semantic-fallback results.
	FallbackConfidence = 0.5
	// MinReasoningStrings is the minimum reasoning entries a structured
	// response must carry to be accepted.
	MinReasoningStrings = 2
)

// Stage performs the model-inference step of the pipeline.
type Stage struct {
	provider  service.InferenceProvider
	embedder  service.EmbeddingProvider
	ranker    *semantic.Ranker
	cache     *resultCache
	limiter   *rateLimiter
	logger    *slog.Logger
	retryOpts service.RetryOptions
	timeout   time.Duration
}

// StageConfig holds configuration for the inference stage.
type StageConfig struct {
	CacheTTL    time.Duration
	RateLimit   int
	CallTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// NewStage creates an inference stage over the given provider and embedder.
func NewStage(provider service.InferenceProvider, embedder service.EmbeddingProvider, ranker *semantic.Ranker, cfg StageConfig, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	if ranker == nil {
		ranker = semantic.NewRanker(0)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 2
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = 500 * time.Millisecond
	}

	return &Stage{
		provider:  provider,
		embedder:  embedder,
		ranker:    ranker,
		cache:     newResultCache(cfg.CacheTTL),
		limiter:   newRateLimiter(cfg.RateLimit),
		logger:    logger,
		retryOpts: retryOpts,
		timeout:   cfg.CallTimeout,
	}
}

// Classify runs one structured-inference call for the fragment and returns a
// stage result. It never returns an error: provider failure of any kind
// (timeout, malformed payload, unavailable capability) degrades to the
// semantic fallback, and total fallback failure degrades to the fixed
// uncategorized result.
func (s *Stage) Classify(ctx context.Context, text string, hintPaths []model.Path, leaves []model.TaxonomyLeaf) *model.StageResult {
	// A nil provider means inference is disabled by configuration; the stage
	// degrades to pure semantic ranking.
	if s.provider == nil {
		return s.fallback(ctx, text, leaves)
	}

	key := cacheKey(text)
	if cached, found := s.cache.get(key); found {
		s.logger.Debug("inference cache hit")
		return cached
	}

	if err := s.limiter.wait(ctx); err != nil {
		s.logger.Warn("rate limiter interrupted, using semantic fallback", "error", err)
		return s.fallback(ctx, text, leaves)
	}

	pc := buildPromptContext(text, hintPaths, leaves)

	var result *service.InferenceResult
	err := common.WithRetry(ctx, func() error {
		callCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		r, inferErr := s.provider.Infer(callCtx, pc)
		if inferErr != nil {
			// Malformed payloads are worth a second attempt too; models are
			// not deterministic about output shape.
			retryable := common.IsRetryable(inferErr) || errors.Is(inferErr, common.ErrMalformedResponse)
			return &common.RetryableError{Err: inferErr, Retryable: retryable}
		}
		result = r
		return nil
	}, s.retryOpts)

	if err != nil {
		s.logger.Warn("inference provider failed, using semantic fallback", "error", err)
		return s.fallback(ctx, text, leaves)
	}

	stageResult := &model.StageResult{
		CanonicalPath:  result.CanonicalPath.Clone(),
		CandidatePaths: truncateCandidates(result.CandidatePaths),
		Confidence:     result.Confidence,
		Method:         model.MethodLLM,
		Reasoning:      result.Reasoning,
	}

	s.cache.set(key, stageResult)

	s.logger.Info("fragment classified by inference",
		"path", stageResult.CanonicalPath.String(),
		"confidence", stageResult.Confidence)

	return stageResult
}

// fallback ranks taxonomy leaves by embedding similarity and returns the best
// match at the fixed fallback confidence. Every failure inside the fallback
// degrades further to the uncategorized result; nothing escapes.
func (s *Stage) fallback(ctx context.Context, text string, leaves []model.TaxonomyLeaf) *model.StageResult {
	uncategorized := &model.StageResult{
		CanonicalPath: model.UncategorizedPath(),
		Confidence:    FallbackConfidence,
		Method:        model.MethodSemanticFallback,
		Reasoning:     []string{"all classification sources unavailable"},
	}

	if s.embedder == nil || len(leaves) == 0 {
		return uncategorized
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("embedding provider failed during fallback", "error", err)
		return uncategorized
	}

	ranked := s.ranker.Rank(embedding, leaves)
	if len(ranked) == 0 {
		return uncategorized
	}

	candidates := make([]model.Path, 0, model.MaxCandidatePaths)
	for _, sp := range ranked[1:] {
		if len(candidates) == model.MaxCandidatePaths {
			break
		}
		candidates = append(candidates, sp.Path)
	}

	return &model.StageResult{
		CanonicalPath:  ranked[0].Path,
		CandidatePaths: candidates,
		Confidence:     FallbackConfidence,
		Method:         model.MethodSemanticFallback,
		Reasoning: []string{
			fmt.Sprintf("semantic fallback: best similarity %.3f", ranked[0].Score),
		},
	}
}

// Close stops background goroutines and cleans up resources.
func (s *Stage) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	if s.limiter != nil {
		s.limiter.Close()
	}
	return nil
}

// buildPromptContext bounds the fragment text and candidate path list before
// they reach the provider. Hint paths come first so caller knowledge is never
// crowded out by a large taxonomy.
func buildPromptContext(text string, hintPaths []model.Path, leaves []model.TaxonomyLeaf) service.PromptContext {
	// Truncate on rune boundaries; slicing bytes would split a multibyte
	// character and send invalid UTF-8 to the provider.
	if utf8.RuneCountInString(text) > MaxPromptChars {
		text = string([]rune(text)[:MaxPromptChars])
	}

	candidates := make([]model.Path, 0, MaxContextPaths)
	seen := make(map[string]struct{}, MaxContextPaths)

	add := func(p model.Path) {
		if len(candidates) == MaxContextPaths || len(p) == 0 {
			return
		}
		key := p.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, p.Clone())
	}

	for _, hp := range hintPaths {
		add(hp)
	}
	for _, leaf := range leaves {
		add(leaf.Path)
	}

	return service.PromptContext{
		Text:           text,
		CandidatePaths: candidates,
		HintPaths:      clonePaths(hintPaths),
	}
}

func truncateCandidates(paths []model.Path) []model.Path {
	if len(paths) > model.MaxCandidatePaths {
		paths = paths[:model.MaxCandidatePaths]
	}
	return clonePaths(paths)
}

func clonePaths(paths []model.Path) []model.Path {
	if paths == nil {
		return nil
	}
	out := make([]model.Path, len(paths))
	for i, p := range paths {
		out[i] = p.Clone()
	}
	return out
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum)
}
