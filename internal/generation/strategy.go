package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
)

// Strategy is one way of asking an external service for cards. Implementations
// make their own network calls and enforce their own per-call timeouts. A
// strategy returns raw candidates; the cascade normalizes them.
type Strategy interface {
	// Name identifies the strategy in logs and generation results.
	Name() string

	// Attempt requests up to count cards for content. Any error means the
	// strategy failed and the next one should be tried.
	Attempt(ctx context.Context, content string, count int) ([]Card, error)
}

// Outcome is a successful backend generation.
type Outcome struct {
	Cards    []Card `json:"cards"`
	Strategy string `json:"strategy"`
	Dropped  int    `json:"dropped"`
}

// Backend produces cards from an external service. ok is false when no
// usable result was obtained, in which case the caller falls back.
type Backend interface {
	Generate(ctx context.Context, content string, count int) (Outcome, bool)
}

// Cascade tries its strategies in order and returns the first result with at
// least MinCards normalized cards, truncated to the requested count. Strategy
// failures are logged and never surfaced.
type Cascade struct {
	strategies []Strategy
	logger     *slog.Logger
}

// Ensure Cascade implements Backend
var _ Backend = (*Cascade)(nil)

// NewCascade creates a Cascade over the given strategies.
func NewCascade(strategies []Strategy, log *slog.Logger) (*Cascade, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: at least one strategy is required", ErrInvalidConfig)
	}
	for i, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("%w: strategy %d is nil", ErrInvalidConfig, i)
		}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cascade{
		strategies: strategies,
		logger:     log.With(slog.String("component", "generation_cascade")),
	}, nil
}

// Strategies returns the names of the configured strategies in order.
func (c *Cascade) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Generate implements Backend.
func (c *Cascade) Generate(ctx context.Context, content string, count int) (Outcome, bool) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	for i, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			log.Warn("generation deadline reached, skipping remaining strategies",
				slog.String("error", err.Error()),
				slog.Int("skipped", len(c.strategies)-i))
			return Outcome{}, false
		}

		candidates, err := strategy.Attempt(ctx, content, count)
		if err != nil {
			level := slog.LevelWarn
			if errors.Is(err, context.Canceled) {
				level = slog.LevelDebug
			}
			log.Log(ctx, level, "generation strategy failed",
				slog.String("strategy", strategy.Name()),
				slog.String("error", err.Error()))
			continue
		}

		normalized := Normalize(candidates)
		if len(normalized.Cards) < MinCards {
			log.Warn("generation strategy produced too few usable cards",
				slog.String("strategy", strategy.Name()),
				slog.Int("candidates", len(candidates)),
				slog.Int("usable", len(normalized.Cards)))
			continue
		}

		cards := normalized.Cards
		if len(cards) > count {
			cards = cards[:count]
		}

		log.Info("generation strategy succeeded",
			slog.String("strategy", strategy.Name()),
			slog.Int("cards", len(cards)),
			slog.Int("dropped", normalized.Dropped))

		return Outcome{Cards: cards, Strategy: strategy.Name(), Dropped: normalized.Dropped}, true
	}

	log.Warn("all generation strategies failed", slog.Int("strategies", len(c.strategies)))
	return Outcome{}, false
}
