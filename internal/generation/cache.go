package generation

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

// ResultStore persists backend outcomes keyed by content fingerprint.
type ResultStore interface {
	// Get returns the cached outcome for key. found is false on a miss.
	Get(ctx context.Context, key string) (outcome Outcome, found bool, err error)

	// Set stores outcome under key.
	Set(ctx context.Context, key string, outcome Outcome) error
}

// Fingerprint derives the cache key for a generation request.
func Fingerprint(content string, count int) string {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(count))
	_, _ = h.Write(n[:])
	_, _ = h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// CachedBackend serves repeated requests from a ResultStore and collapses
// concurrent identical requests into one call to the wrapped Backend. Only
// successful outcomes are stored. Store errors are logged and treated as misses.
//
// The shared call runs detached from any single caller's cancellation and is
// bounded by the flight timeout. Each caller stops waiting when its own
// context ends.
type CachedBackend struct {
	next          Backend
	store         ResultStore
	group         singleflight.Group
	flightTimeout time.Duration
	logger        *slog.Logger
}

// Ensure CachedBackend implements Backend
var _ Backend = (*CachedBackend)(nil)

// CachedBackendOption configures a CachedBackend.
type CachedBackendOption func(*CachedBackend)

// WithFlightTimeout bounds a shared backend call. Non-positive values keep
// DefaultRequestTimeout.
func WithFlightTimeout(d time.Duration) CachedBackendOption {
	return func(c *CachedBackend) {
		if d > 0 {
			c.flightTimeout = d
		}
	}
}

// NewCachedBackend wraps next with store.
func NewCachedBackend(next Backend, store ResultStore, log *slog.Logger, opts ...CachedBackendOption) *CachedBackend {
	if next == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("next backend cannot be nil for CachedBackend")
	}
	if store == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("result store cannot be nil for CachedBackend")
	}
	if log == nil {
		log = slog.Default()
	}
	c := &CachedBackend{
		next:          next,
		store:         store,
		flightTimeout: DefaultRequestTimeout,
		logger:        log.With(slog.String("component", "generation_cache")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type flightResult struct {
	outcome Outcome
	ok      bool
}

// Generate implements Backend.
func (c *CachedBackend) Generate(ctx context.Context, content string, count int) (Outcome, bool) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	key := Fingerprint(content, count)

	if outcome, found, err := c.store.Get(ctx, key); err != nil {
		log.Warn("generation cache lookup failed", slog.String("error", err.Error()))
	} else if found {
		log.Debug("generation cache hit", slog.String("strategy", outcome.Strategy))
		return outcome, true
	}

	ch := c.group.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.flightTimeout)
		defer cancel()

		outcome, ok := c.next.Generate(flightCtx, content, count)
		if ok {
			if err := c.store.Set(flightCtx, key, outcome); err != nil {
				log.Warn("generation cache store failed", slog.String("error", err.Error()))
			}
		}
		return flightResult{outcome: outcome, ok: ok}, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Debug("generation request collapsed with a concurrent identical request")
		}
		r := res.Val.(flightResult)
		return r.outcome, r.ok
	case <-ctx.Done():
		log.Debug("stopped waiting for generation backend", slog.String("reason", ctx.Err().Error()))
		return Outcome{}, false
	}
}
