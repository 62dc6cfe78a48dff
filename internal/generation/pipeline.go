package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
)

// DefaultRequestTimeout bounds the backend phase of a single generation.
const DefaultRequestTimeout = 60 * time.Second

// PipelineConfig holds the tunables of a Pipeline.
type PipelineConfig struct {
	Limits         Limits
	DefaultCount   int
	RequestTimeout time.Duration
}

// Result is the output of a successful generation.
type Result struct {
	Cards    []Card
	Method   domain.GenerationMethod
	Category Category
	// Strategy names the backend strategy that produced the cards, empty for fallback.
	Strategy string
	// Dropped counts candidates removed by normalization.
	Dropped int
}

// Pipeline turns notes into normalized flashcards. It holds no mutable state
// and is safe for concurrent use.
type Pipeline struct {
	cfg     PipelineConfig
	backend Backend
	logger  *slog.Logger
}

// NewPipeline creates a Pipeline. backend may be nil, in which case every
// generation uses the fallback heuristics.
func NewPipeline(cfg PipelineConfig, backend Backend, log *slog.Logger) (*Pipeline, error) {
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}
	if cfg.Limits.MinLength < 0 || cfg.Limits.MaxLength < cfg.Limits.MinLength {
		return nil, fmt.Errorf("%w: content length bounds %d..%d",
			ErrInvalidConfig, cfg.Limits.MinLength, cfg.Limits.MaxLength)
	}
	if cfg.DefaultCount == 0 {
		cfg.DefaultCount = DefaultCardCount
	}
	if cfg.DefaultCount < MinCards {
		return nil, fmt.Errorf("%w: default card count must be at least %d", ErrInvalidConfig, MinCards)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		cfg:     cfg,
		backend: backend,
		logger:  log.With(slog.String("component", "generation_pipeline")),
	}, nil
}

// Limits returns the content length bounds enforced by the pipeline.
func (p *Pipeline) Limits() Limits {
	return p.cfg.Limits
}

// BackendConfigured reports whether the pipeline will consult a backend.
func (p *Pipeline) BackendConfigured() bool {
	return p.backend != nil
}

// Generate validates content and produces between MinCards and count cards.
// A count of zero selects the configured default. It returns a
// *ValidationError for rejected notes, ErrInvalidCardCount for counts below
// MinCards and ErrInsufficientCards when even the fallback falls short.
func (p *Pipeline) Generate(ctx context.Context, content string, count int) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	if count == 0 {
		count = p.cfg.DefaultCount
	}
	if count < MinCards {
		return nil, fmt.Errorf("%w: requested %d, minimum is %d", ErrInvalidCardCount, count, MinCards)
	}

	cleaned, err := ValidateContent(content, p.cfg.Limits)
	if err != nil {
		log.Debug("notes rejected", slog.String("reason", err.Error()))
		return nil, err
	}

	category := Classify(cleaned)
	log.Debug("notes classified",
		slog.String("category", string(category)),
		slog.Int("content_length", len([]rune(cleaned))))

	if p.backend != nil {
		backendCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
		outcome, ok := p.backend.Generate(backendCtx, cleaned, count)
		cancel()

		if ok && len(outcome.Cards) >= MinCards {
			cards := outcome.Cards
			if len(cards) > count {
				cards = cards[:count]
			}
			log.Info("flashcards generated",
				slog.String("method", string(domain.GenerationMethodAI)),
				slog.String("strategy", outcome.Strategy),
				slog.Int("cards", len(cards)),
				slog.Int("dropped", outcome.Dropped))
			return &Result{
				Cards:    cards,
				Method:   domain.GenerationMethodAI,
				Category: category,
				Strategy: outcome.Strategy,
				Dropped:  outcome.Dropped,
			}, nil
		}
		log.Info("backend produced no usable result, using fallback")
	}

	normalized := Normalize(GenerateFallback(cleaned, count))
	if normalized.Dropped > 0 {
		log.Warn("fallback candidates dropped by normalization", slog.Int("dropped", normalized.Dropped))
	}
	if len(normalized.Cards) < MinCards {
		log.Warn("fallback produced too few cards", slog.Int("cards", len(normalized.Cards)))
		return nil, ErrInsufficientCards
	}

	log.Info("flashcards generated",
		slog.String("method", string(domain.GenerationMethodFallback)),
		slog.String("category", string(category)),
		slog.Int("cards", len(normalized.Cards)))

	return &Result{
		Cards:    normalized.Cards,
		Method:   domain.GenerationMethodFallback,
		Category: category,
		Dropped:  normalized.Dropped,
	}, nil
}
